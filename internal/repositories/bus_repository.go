package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

const busColumns = `id, operator, origin, destination, travel_date, departure_time, arrival_time, price,
	total_seats, filled_seats, bus_type, amenities, main_image_url, gallery_images, created_at, updated_at`

type BusRepository struct {
	DB sqlx.ExtContext
}

func (r BusRepository) get(ctx context.Context, query string, id string) (models.Bus, error) {
	var b models.Bus
	if err := sqlx.GetContext(ctx, r.DB, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "bus", Err: err}
		}
		return models.Bus{}, fmt.Errorf("get bus: %w", err)
	}
	return b, nil
}

func (r BusRepository) Get(ctx context.Context, id string) (models.Bus, error) {
	return r.get(ctx, `SELECT `+busColumns+` FROM buses WHERE id = ?`, id)
}

func (r BusRepository) GetForUpdate(ctx context.Context, id string) (models.Bus, error) {
	return r.get(ctx, `SELECT `+busColumns+` FROM buses WHERE id = ? FOR UPDATE`, id)
}

func (r BusRepository) GetMany(ctx context.Context, ids []string) ([]models.Bus, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+busColumns+` FROM buses WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build bus batch: %w", err)
	}
	var out []models.Bus
	if err := sqlx.SelectContext(ctx, r.DB, &out, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("batch buses: %w", err)
	}
	return out, nil
}

func (r BusRepository) Search(ctx context.Context, q models.BusSearch) ([]models.Bus, error) {
	var (
		where []string
		args  []any
	)
	if from := strings.TrimSpace(q.From); from != "" {
		where = append(where, "LOWER(origin) = LOWER(?)")
		args = append(args, from)
	}
	if to := strings.TrimSpace(q.To); to != "" {
		where = append(where, "LOWER(destination) = LOWER(?)")
		args = append(args, to)
	}
	if date := strings.TrimSpace(q.Date); date != "" {
		where = append(where, "travel_date = ?")
		args = append(args, date)
	}

	query := `SELECT ` + busColumns + ` FROM buses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY travel_date ASC, departure_time ASC`

	var out []models.Bus
	if err := sqlx.SelectContext(ctx, r.DB, &out, query, args...); err != nil {
		return nil, fmt.Errorf("search buses: %w", err)
	}
	return out, nil
}

func (r BusRepository) Create(ctx context.Context, b models.Bus) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO buses (`+busColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Operator, b.From, b.To, b.Date, b.Time, b.Arrival, b.Price,
		b.TotalSeats, b.FilledSeats, b.BusType, b.Amenities, b.MainImageURL, b.GalleryImages, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bus: %w", err)
	}
	return nil
}

// Update writes descriptive fields, price and total seats. filled_seats is
// left to SetFilledSeats.
func (r BusRepository) Update(ctx context.Context, b models.Bus) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE buses
		SET operator = ?, origin = ?, destination = ?, travel_date = ?, departure_time = ?, arrival_time = ?,
		    price = ?, total_seats = ?, bus_type = ?, amenities = ?, main_image_url = ?, gallery_images = ?, updated_at = ?
		WHERE id = ?`,
		b.Operator, b.From, b.To, b.Date, b.Time, b.Arrival,
		b.Price, b.TotalSeats, b.BusType, b.Amenities, b.MainImageURL, b.GalleryImages, b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update bus: %w", err)
	}
	return nil
}

func (r BusRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM buses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bus: %w", err)
	}
	return expectOne(res, "bus")
}

func (r BusRepository) SetFilledSeats(ctx context.Context, id string, filled int) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE buses SET filled_seats = ? WHERE id = ?`, filled, id); err != nil {
		return fmt.Errorf("update filled seats: %w", err)
	}
	return nil
}
