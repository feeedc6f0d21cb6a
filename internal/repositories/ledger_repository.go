package repositories

import (
	"context"
	"fmt"

	"neelosewa/internal/domain/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const ledgerColumns = `id, user_id, type, amount, description, created_at`

// LedgerRepository only inserts and reads; entries are never changed.
type LedgerRepository struct {
	DB sqlx.ExtContext
}

func (r LedgerRepository) Append(ctx context.Context, e models.LedgerEntry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ledger_entries (`+ledgerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Type, e.Amount, e.Description, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r LedgerRepository) ListByUser(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	err := sqlx.SelectContext(ctx, r.DB, &out, `
		SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE user_id = ?
		ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return out, nil
}

func (r LedgerRepository) Sum(ctx context.Context, userID string) (decimal.Decimal, int, error) {
	var row struct {
		Total   decimal.Decimal `db:"total"`
		Entries int             `db:"entries"`
	}
	err := sqlx.GetContext(ctx, r.DB, &row, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE -amount END), 0) AS total,
			COUNT(*) AS entries
		FROM ledger_entries
		WHERE user_id = ?`, userID)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("sum ledger: %w", err)
	}
	return row.Total, row.Entries, nil
}
