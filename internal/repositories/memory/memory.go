// Package memory is an in-process implementation of the repositories
// interfaces. Transactions are serialized behind one mutex and applied by
// swapping in a modified copy of the data, so a failed unit of work leaves
// no trace.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/shopspring/decimal"
)

type state struct {
	seq      int64
	users    map[string]models.User
	buses    map[string]models.Bus
	hotels   map[string]models.Hotel
	bookings map[string]bookingRow
	ledger   []models.LedgerEntry
}

type bookingRow struct {
	models.Booking
	seq int64
}

func newState() *state {
	return &state{
		users:    map[string]models.User{},
		buses:    map[string]models.Bus{},
		hotels:   map[string]models.Hotel{},
		bookings: map[string]bookingRow{},
	}
}

func (s *state) clone() *state {
	c := &state{
		seq:      s.seq,
		users:    make(map[string]models.User, len(s.users)),
		buses:    make(map[string]models.Bus, len(s.buses)),
		hotels:   make(map[string]models.Hotel, len(s.hotels)),
		bookings: make(map[string]bookingRow, len(s.bookings)),
		ledger:   make([]models.LedgerEntry, len(s.ledger)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.buses {
		c.buses[k] = v
	}
	for k, v := range s.hotels {
		c.hotels[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	copy(c.ledger, s.ledger)
	return c
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func New() *Store {
	return &Store{data: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(memTx{s: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) View(ctx context.Context, fn func(tx repositories.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(memTx{s: s.data.clone()})
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type memTx struct {
	s *state
}

func (t memTx) Users() repositories.UserStore       { return users{t.s} }
func (t memTx) Buses() repositories.BusStore        { return buses{t.s} }
func (t memTx) Hotels() repositories.HotelStore     { return hotels{t.s} }
func (t memTx) Bookings() repositories.BookingStore { return bookings{t.s} }
func (t memTx) Ledger() repositories.LedgerStore    { return ledger{t.s} }

type users struct{ s *state }

func (r users) Get(_ context.Context, id string) (models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (r users) GetForUpdate(ctx context.Context, id string) (models.User, error) {
	return r.Get(ctx, id)
}

func (r users) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (r users) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r users) emailTaken(email, exceptID string) bool {
	for _, u := range r.s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r users) Create(_ context.Context, u models.User) error {
	if r.emailTaken(u.Email, "") {
		return domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}
	r.s.users[u.ID] = u
	return nil
}

func (r users) UpdateProfile(_ context.Context, u models.User) error {
	cur, ok := r.s.users[u.ID]
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	if r.emailTaken(u.Email, u.ID) {
		return domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}
	cur.Name, cur.Email, cur.Phone, cur.AvatarURL = u.Name, u.Email, u.Phone, u.AvatarURL
	cur.PasswordHash, cur.UpdatedAt = u.PasswordHash, u.UpdatedAt
	r.s.users[u.ID] = cur
	return nil
}

func (r users) SetBalance(_ context.Context, id string, balance decimal.Decimal) error {
	u, ok := r.s.users[id]
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	u.WalletBalance = balance
	r.s.users[id] = u
	return nil
}

func (r users) SetRole(_ context.Context, id, role string) error {
	u, ok := r.s.users[id]
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

type buses struct{ s *state }

func (r buses) Get(_ context.Context, id string) (models.Bus, error) {
	b, ok := r.s.buses[id]
	if !ok {
		return models.Bus{}, domain.NotFoundError{Resource: "bus"}
	}
	return b, nil
}

func (r buses) GetForUpdate(ctx context.Context, id string) (models.Bus, error) {
	return r.Get(ctx, id)
}

func (r buses) GetMany(_ context.Context, ids []string) ([]models.Bus, error) {
	var out []models.Bus
	for _, id := range ids {
		if b, ok := r.s.buses[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r buses) Search(_ context.Context, q models.BusSearch) ([]models.Bus, error) {
	var out []models.Bus
	for _, b := range r.s.buses {
		if q.From != "" && !strings.EqualFold(b.From, strings.TrimSpace(q.From)) {
			continue
		}
		if q.To != "" && !strings.EqualFold(b.To, strings.TrimSpace(q.To)) {
			continue
		}
		if q.Date != "" && b.Date != strings.TrimSpace(q.Date) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r buses) Create(_ context.Context, b models.Bus) error {
	r.s.buses[b.ID] = b
	return nil
}

func (r buses) Update(_ context.Context, b models.Bus) error {
	cur, ok := r.s.buses[b.ID]
	if !ok {
		return domain.NotFoundError{Resource: "bus"}
	}
	b.FilledSeats = cur.FilledSeats
	b.CreatedAt = cur.CreatedAt
	r.s.buses[b.ID] = b
	return nil
}

func (r buses) Delete(_ context.Context, id string) error {
	if _, ok := r.s.buses[id]; !ok {
		return domain.NotFoundError{Resource: "bus"}
	}
	delete(r.s.buses, id)
	return nil
}

func (r buses) SetFilledSeats(_ context.Context, id string, filled int) error {
	b, ok := r.s.buses[id]
	if !ok {
		return domain.NotFoundError{Resource: "bus"}
	}
	b.FilledSeats = filled
	r.s.buses[id] = b
	return nil
}

type hotels struct{ s *state }

func (r hotels) Get(_ context.Context, id string) (models.Hotel, error) {
	h, ok := r.s.hotels[id]
	if !ok {
		return models.Hotel{}, domain.NotFoundError{Resource: "hotel"}
	}
	return h, nil
}

func (r hotels) GetForUpdate(ctx context.Context, id string) (models.Hotel, error) {
	return r.Get(ctx, id)
}

func (r hotels) GetMany(_ context.Context, ids []string) ([]models.Hotel, error) {
	var out []models.Hotel
	for _, id := range ids {
		if h, ok := r.s.hotels[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r hotels) Search(_ context.Context, q models.HotelSearch) ([]models.Hotel, error) {
	var out []models.Hotel
	for _, h := range r.s.hotels {
		if q.Location != "" && !strings.EqualFold(h.Location, strings.TrimSpace(q.Location)) {
			continue
		}
		if q.CheckIn != "" && !utils.DateWithin(strings.TrimSpace(q.CheckIn), h.CheckIn, h.CheckOut) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r hotels) Create(_ context.Context, h models.Hotel) error {
	r.s.hotels[h.ID] = h
	return nil
}

func (r hotels) Update(_ context.Context, h models.Hotel) error {
	cur, ok := r.s.hotels[h.ID]
	if !ok {
		return domain.NotFoundError{Resource: "hotel"}
	}
	h.RoomsAvailable = cur.RoomsAvailable
	h.CreatedAt = cur.CreatedAt
	r.s.hotels[h.ID] = h
	return nil
}

func (r hotels) Delete(_ context.Context, id string) error {
	if _, ok := r.s.hotels[id]; !ok {
		return domain.NotFoundError{Resource: "hotel"}
	}
	delete(r.s.hotels, id)
	return nil
}

func (r hotels) SetRoomsAvailable(_ context.Context, id string, rooms int) error {
	h, ok := r.s.hotels[id]
	if !ok {
		return domain.NotFoundError{Resource: "hotel"}
	}
	h.RoomsAvailable = rooms
	r.s.hotels[id] = h
	return nil
}

type bookings struct{ s *state }

func (r bookings) Create(_ context.Context, b models.Booking) error {
	lock := b.SeatLock()
	for _, row := range r.s.bookings {
		if row.TicketNumber == b.TicketNumber {
			return domain.ErrTicketCollision
		}
		if lock != "" && row.SeatLock() == lock {
			return domain.SeatTakenError{BusID: b.ItemID, Seat: b.SeatNumber}
		}
	}
	r.s.seq++
	r.s.bookings[b.ID] = bookingRow{Booking: b, seq: r.s.seq}
	return nil
}

func (r bookings) Get(_ context.Context, id string) (models.Booking, error) {
	row, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return row.Booking, nil
}

func (r bookings) GetForUpdate(ctx context.Context, id string) (models.Booking, error) {
	return r.Get(ctx, id)
}

func (r bookings) GetByTicket(_ context.Context, ticketNumber string) (models.Booking, error) {
	for _, row := range r.s.bookings {
		if row.TicketNumber == ticketNumber {
			return row.Booking, nil
		}
	}
	return models.Booking{}, domain.NotFoundError{Resource: "booking"}
}

func (r bookings) SeatTaken(_ context.Context, busID string, seat int) (bool, error) {
	for _, row := range r.s.bookings {
		if row.ItemType == models.ItemBus && row.ItemID == busID && row.SeatNumber == seat && row.Status == models.StatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (r bookings) TakenSeats(_ context.Context, busID string) ([]int, error) {
	seats := []int{}
	for _, row := range r.s.bookings {
		if row.ItemType == models.ItemBus && row.ItemID == busID && row.Status == models.StatusConfirmed && row.SeatNumber > 0 {
			seats = append(seats, row.SeatNumber)
		}
	}
	sort.Ints(seats)
	return seats, nil
}

func (r bookings) ListByUser(_ context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	rows := make([]bookingRow, 0)
	for _, row := range r.s.bookings {
		if row.UserID != userID {
			continue
		}
		if status != "" && row.Status != status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]models.Booking, len(rows))
	for i, row := range rows {
		out[i] = row.Booking
	}
	return out, nil
}

func (r bookings) MarkCancelled(_ context.Context, id string) error {
	row, ok := r.s.bookings[id]
	if !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	if row.Status != models.StatusConfirmed {
		return domain.AlreadyCancelledError{TicketNumber: row.TicketNumber}
	}
	row.Status = models.StatusCancelled
	r.s.bookings[id] = row
	return nil
}

type ledger struct{ s *state }

func (r ledger) Append(_ context.Context, e models.LedgerEntry) error {
	r.s.ledger = append(r.s.ledger, e)
	return nil
}

func (r ledger) ListByUser(_ context.Context, userID string) ([]models.LedgerEntry, error) {
	out := []models.LedgerEntry{}
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].UserID == userID {
			out = append(out, r.s.ledger[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r ledger) Sum(_ context.Context, userID string) (decimal.Decimal, int, error) {
	total := decimal.Zero
	n := 0
	for _, e := range r.s.ledger {
		if e.UserID == userID {
			total = total.Add(e.Signed())
			n++
		}
	}
	return total, n, nil
}
