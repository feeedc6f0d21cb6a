package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "neelosewa/internal/db"
	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const userColumns = `id, name, email, password_hash, phone, role, wallet_balance, avatar_url, created_at, updated_at`

type UserRepository struct {
	DB sqlx.ExtContext
}

func (r UserRepository) get(ctx context.Context, query string, args ...any) (models.User, error) {
	var u models.User
	if err := sqlx.GetContext(ctx, r.DB, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r UserRepository) Get(ctx context.Context, id string) (models.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r UserRepository) GetForUpdate(ctx context.Context, id string) (models.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? FOR UPDATE`, id)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r UserRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := sqlx.SelectContext(ctx, r.DB, &out, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Role, u.WalletBalance, u.AvatarURL, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if _, dup := intdb.DuplicateKey(err); dup {
			return domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r UserRepository) UpdateProfile(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET name = ?, email = ?, phone = ?, avatar_url = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, u.Email, u.Phone, u.AvatarURL, u.PasswordHash, u.UpdatedAt, u.ID,
	)
	if err != nil {
		if _, dup := intdb.DuplicateKey(err); dup {
			return domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r UserRepository) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE users SET wallet_balance = ?, updated_at = NOW(3) WHERE id = ?`, balance, id); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func (r UserRepository) SetRole(ctx context.Context, id, role string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE users SET role = ?, updated_at = NOW(3) WHERE id = ?`, role, id); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// expectOne turns a zero-row write into NotFound. MySQL counts changed rows,
// so it is only used where the statement always changes the row.
func expectOne(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
