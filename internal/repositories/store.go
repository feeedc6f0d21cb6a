package repositories

import (
	"context"
	"fmt"

	"neelosewa/internal/domain/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Store opens units of work over the four record collections.
type Store interface {
	// WithinTx runs fn in one transaction. A non-nil error or a panic from fn
	// rolls back every write made through tx.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	// View runs read-only fn without a transaction.
	View(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx exposes the record collections bound to one unit of work.
type Tx interface {
	Users() UserStore
	Buses() BusStore
	Hotels() HotelStore
	Bookings() BookingStore
	Ledger() LedgerStore
}

type UserStore interface {
	Get(ctx context.Context, id string) (models.User, error)
	GetForUpdate(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u models.User) error
	UpdateProfile(ctx context.Context, u models.User) error
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) error
	SetRole(ctx context.Context, id, role string) error
}

type BusStore interface {
	Get(ctx context.Context, id string) (models.Bus, error)
	GetForUpdate(ctx context.Context, id string) (models.Bus, error)
	GetMany(ctx context.Context, ids []string) ([]models.Bus, error)
	Search(ctx context.Context, q models.BusSearch) ([]models.Bus, error)
	Create(ctx context.Context, b models.Bus) error
	Update(ctx context.Context, b models.Bus) error
	Delete(ctx context.Context, id string) error
	SetFilledSeats(ctx context.Context, id string, filled int) error
}

type HotelStore interface {
	Get(ctx context.Context, id string) (models.Hotel, error)
	GetForUpdate(ctx context.Context, id string) (models.Hotel, error)
	GetMany(ctx context.Context, ids []string) ([]models.Hotel, error)
	Search(ctx context.Context, q models.HotelSearch) ([]models.Hotel, error)
	Create(ctx context.Context, h models.Hotel) error
	Update(ctx context.Context, h models.Hotel) error
	Delete(ctx context.Context, id string) error
	SetRoomsAvailable(ctx context.Context, id string, rooms int) error
}

type BookingStore interface {
	// Create returns domain.ErrTicketCollision when the ticket number exists
	// and domain.SeatTakenError when the seat lock is held.
	Create(ctx context.Context, b models.Booking) error
	Get(ctx context.Context, id string) (models.Booking, error)
	GetForUpdate(ctx context.Context, id string) (models.Booking, error)
	GetByTicket(ctx context.Context, ticketNumber string) (models.Booking, error)
	SeatTaken(ctx context.Context, busID string, seat int) (bool, error)
	TakenSeats(ctx context.Context, busID string) ([]int, error)
	// ListByUser returns newest first; an empty status means every status.
	ListByUser(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error)
	MarkCancelled(ctx context.Context, id string) error
}

type LedgerStore interface {
	Append(ctx context.Context, e models.LedgerEntry) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]models.LedgerEntry, error)
	Sum(ctx context.Context, userID string) (decimal.Decimal, int, error)
}

// SQLStore is the MySQL-backed Store.
type SQLStore struct {
	DB *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(sqlTx{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return fn(sqlTx{q: s.DB})
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

type sqlTx struct {
	q sqlx.ExtContext
}

func (t sqlTx) Users() UserStore       { return UserRepository{DB: t.q} }
func (t sqlTx) Buses() BusStore        { return BusRepository{DB: t.q} }
func (t sqlTx) Hotels() HotelStore     { return HotelRepository{DB: t.q} }
func (t sqlTx) Bookings() BookingStore { return BookingRepository{DB: t.q} }
func (t sqlTx) Ledger() LedgerStore    { return LedgerRepository{DB: t.q} }
