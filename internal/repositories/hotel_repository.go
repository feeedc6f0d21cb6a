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

const hotelColumns = `id, name, location, rating, price_per_night, rooms_available, hotel_type, image_url,
	amenities, check_in, check_out, gallery_images, created_at, updated_at`

type HotelRepository struct {
	DB sqlx.ExtContext
}

func (r HotelRepository) get(ctx context.Context, query string, id string) (models.Hotel, error) {
	var h models.Hotel
	if err := sqlx.GetContext(ctx, r.DB, &h, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Hotel{}, domain.NotFoundError{Resource: "hotel", Err: err}
		}
		return models.Hotel{}, fmt.Errorf("get hotel: %w", err)
	}
	return h, nil
}

func (r HotelRepository) Get(ctx context.Context, id string) (models.Hotel, error) {
	return r.get(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = ?`, id)
}

func (r HotelRepository) GetForUpdate(ctx context.Context, id string) (models.Hotel, error) {
	return r.get(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = ? FOR UPDATE`, id)
}

func (r HotelRepository) GetMany(ctx context.Context, ids []string) ([]models.Hotel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+hotelColumns+` FROM hotels WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build hotel batch: %w", err)
	}
	var out []models.Hotel
	if err := sqlx.SelectContext(ctx, r.DB, &out, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("batch hotels: %w", err)
	}
	return out, nil
}

// Search matches location case-insensitively; checkIn must fall inside the
// hotel's check-in/check-out window.
func (r HotelRepository) Search(ctx context.Context, q models.HotelSearch) ([]models.Hotel, error) {
	var (
		where []string
		args  []any
	)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		where = append(where, "LOWER(location) = LOWER(?)")
		args = append(args, loc)
	}
	if in := strings.TrimSpace(q.CheckIn); in != "" {
		where = append(where, "check_in <= ? AND check_out >= ?")
		args = append(args, in, in)
	}

	query := `SELECT ` + hotelColumns + ` FROM hotels`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rating DESC, name ASC`

	var out []models.Hotel
	if err := sqlx.SelectContext(ctx, r.DB, &out, query, args...); err != nil {
		return nil, fmt.Errorf("search hotels: %w", err)
	}
	return out, nil
}

func (r HotelRepository) Create(ctx context.Context, h models.Hotel) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO hotels (`+hotelColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.Location, h.Rating, h.PricePerNight, h.RoomsAvailable, h.Type, h.ImageURL,
		h.Amenities, h.CheckIn, h.CheckOut, h.GalleryImages, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert hotel: %w", err)
	}
	return nil
}

// Update writes descriptive fields and price. rooms_available is left to
// SetRoomsAvailable.
func (r HotelRepository) Update(ctx context.Context, h models.Hotel) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE hotels
		SET name = ?, location = ?, rating = ?, price_per_night = ?, hotel_type = ?, image_url = ?,
		    amenities = ?, check_in = ?, check_out = ?, gallery_images = ?, updated_at = ?
		WHERE id = ?`,
		h.Name, h.Location, h.Rating, h.PricePerNight, h.Type, h.ImageURL,
		h.Amenities, h.CheckIn, h.CheckOut, h.GalleryImages, h.UpdatedAt,
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("update hotel: %w", err)
	}
	return nil
}

func (r HotelRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete hotel: %w", err)
	}
	return expectOne(res, "hotel")
}

func (r HotelRepository) SetRoomsAvailable(ctx context.Context, id string, rooms int) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE hotels SET rooms_available = ? WHERE id = ?`, rooms, id); err != nil {
		return fmt.Errorf("update rooms available: %w", err)
	}
	return nil
}
