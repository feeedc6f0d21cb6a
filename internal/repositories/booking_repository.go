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
)

const bookingColumns = `id, user_id, item_type, item_id, ticket_number, price, status,
	COALESCE(seat_number, 0) AS seat_number,
	COALESCE(passenger_name, '') AS passenger_name,
	COALESCE(lead_guest_name, '') AS lead_guest_name,
	COALESCE(num_guests, 0) AS num_guests,
	COALESCE(check_in_date, '') AS check_in_date,
	COALESCE(check_out_date, '') AS check_out_date,
	created_at, updated_at`

const (
	keyTicketNumber = "uq_bookings_ticket"
	keySeatLock     = "uq_bookings_seat_lock"
)

type BookingRepository struct {
	DB sqlx.ExtContext
}

func (r BookingRepository) get(ctx context.Context, query string, arg string) (models.Booking, error) {
	var b models.Booking
	if err := sqlx.GetContext(ctx, r.DB, &b, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings (id, user_id, item_type, item_id, ticket_number, price, status, seat_number, seat_lock,
			passenger_name, lead_guest_name, num_guests, check_in_date, check_out_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.ItemType, b.ItemID, b.TicketNumber, b.Price, b.Status,
		intdb.NullIfZero(b.SeatNumber), intdb.NullIfEmpty(b.SeatLock()),
		intdb.NullIfEmpty(b.PassengerName), intdb.NullIfEmpty(b.LeadGuestName), intdb.NullIfZero(b.NumGuests),
		intdb.NullIfEmpty(b.CheckInDate), intdb.NullIfEmpty(b.CheckOutDate), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if key, dup := intdb.DuplicateKey(err); dup {
			switch key {
			case keySeatLock:
				return domain.SeatTakenError{BusID: b.ItemID, Seat: b.SeatNumber}
			case keyTicketNumber:
				return fmt.Errorf("%w: %s", domain.ErrTicketCollision, b.TicketNumber)
			}
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r BookingRepository) Get(ctx context.Context, id string) (models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
}

func (r BookingRepository) GetForUpdate(ctx context.Context, id string) (models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id)
}

func (r BookingRepository) GetByTicket(ctx context.Context, ticketNumber string) (models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE ticket_number = ?`, ticketNumber)
}

// SeatTaken locks any Confirmed booking holding the seat, so a concurrent
// cancellation cannot free it until this transaction ends.
func (r BookingRepository) SeatTaken(ctx context.Context, busID string, seat int) (bool, error) {
	var ids []string
	err := sqlx.SelectContext(ctx, r.DB, &ids, `
		SELECT id FROM bookings
		WHERE item_type = ? AND item_id = ? AND seat_number = ? AND status = ?
		LIMIT 1
		FOR UPDATE`,
		models.ItemBus, busID, seat, models.StatusConfirmed,
	)
	if err != nil {
		return false, fmt.Errorf("check seat: %w", err)
	}
	return len(ids) > 0, nil
}

func (r BookingRepository) TakenSeats(ctx context.Context, busID string) ([]int, error) {
	var seats []int
	err := sqlx.SelectContext(ctx, r.DB, &seats, `
		SELECT seat_number FROM bookings
		WHERE item_type = ? AND item_id = ? AND status = ? AND seat_number IS NOT NULL
		ORDER BY seat_number ASC`,
		models.ItemBus, busID, models.StatusConfirmed,
	)
	if err != nil {
		return nil, fmt.Errorf("taken seats: %w", err)
	}
	return seats, nil
}

func (r BookingRepository) ListByUser(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, seq DESC`

	var out []models.Booking
	if err := sqlx.SelectContext(ctx, r.DB, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// MarkCancelled moves a Confirmed booking to Cancelled and releases its seat
// lock. A booking that is not Confirmed is reported as AlreadyCancelled.
func (r BookingRepository) MarkCancelled(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = ?, seat_lock = NULL, updated_at = NOW(3)
		WHERE id = ? AND status = ?`,
		models.StatusCancelled, id, models.StatusConfirmed,
	)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.AlreadyCancelledError{}
	}
	return nil
}
