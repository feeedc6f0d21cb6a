package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busRequest(busID string, seat int) models.BusBookingRequest {
	return models.BusBookingRequest{BusID: busID, SeatNumber: seat, PassengerName: "Ram  Thapa"}
}

func TestBookBusDebitsWalletAndFillsSeat(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addBus(t, "bus1", "700", 40, 0)

	res, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	require.NoError(t, err)

	assert.True(t, res.NewBalance.Equal(money("300")))
	assert.Regexp(t, regexp.MustCompile(`^BUS-20250616-\d{6}$`), res.TicketNumber)
	assert.Equal(t, models.StatusConfirmed, res.Booking.Status)
	assert.Equal(t, "Ram Thapa", res.Booking.PassengerName)
	assert.True(t, res.Booking.Price.Equal(money("700")))

	assert.True(t, f.user(t, "u1").WalletBalance.Equal(money("300")))
	assert.Equal(t, 1, f.bus(t, "bus1").FilledSeats)

	entries := f.ledger(t, "u1")
	require.Len(t, entries, 2)
	assert.Equal(t, models.EntryDebit, entries[0].Type)
	assert.Equal(t, "Bus ticket: Kathmandu to Pokhara (Seat: 5)", entries[0].Description)
	f.requireBalanced(t, "u1")

	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.TypeBookingConfirmed, f.events.events[0].Type)
	assert.Equal(t, res.TicketNumber, f.events.events[0].TicketNumber)
}

func TestBookBusSeatTaken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addUser(t, "u2", "1000")
	f.addBus(t, "bus1", "700", 40, 0)

	_, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	require.NoError(t, err)

	_, err = f.bookings.BookBus(context.Background(), "u2", busRequest("bus1", 5))
	assert.True(t, domain.IsSeatTaken(err), "got %v", err)
	assert.True(t, f.user(t, "u2").WalletBalance.Equal(money("1000")))
	assert.Equal(t, 1, f.bus(t, "bus1").FilledSeats)
}

func TestBookBusFullyBooked(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addBus(t, "bus1", "700", 40, 40)

	_, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 1))
	assert.True(t, domain.IsCapacityExceeded(err), "got %v", err)
	assert.EqualError(t, err, "Bus is fully booked")
}

func TestBookBusSeatOutOfRange(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addBus(t, "bus1", "700", 40, 0)

	_, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 41))
	assert.True(t, domain.IsValidation(err), "got %v", err)

	_, err = f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 0))
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestBookBusInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "100")
	f.addBus(t, "bus1", "700", 40, 0)

	_, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	var insufficient domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Shortfall().Equal(money("600")))

	assert.True(t, f.user(t, "u1").WalletBalance.Equal(money("100")))
	assert.Equal(t, 0, f.bus(t, "bus1").FilledSeats)
	assert.Len(t, f.ledger(t, "u1"), 1)
	assert.Empty(t, f.events.events)
}

func TestBookBusUnknownBus(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")

	_, err := f.bookings.BookBus(context.Background(), "u1", busRequest("nope", 1))
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestBookHotelChargesPerNight(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addHotel(t, "h1", "1000", 3)

	res, err := f.bookings.BookHotel(context.Background(), "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 4,
		CheckInDate: "2025-07-01", CheckOutDate: "2025-07-04",
	})
	require.NoError(t, err)

	assert.True(t, res.Booking.Price.Equal(money("3000")))
	assert.True(t, res.NewBalance.Equal(money("2000")))
	assert.Regexp(t, `^HOTEL-20250616-\d{6}$`, res.TicketNumber)
	assert.Equal(t, 2, f.hotel(t, "h1").RoomsAvailable, "a booking takes one room regardless of guests")
	assert.Equal(t, "Hotel booking: Lakeside Inn (2025-07-01 to 2025-07-04)", f.ledger(t, "u1")[0].Description)
	f.requireBalanced(t, "u1")
}

func TestBookHotelSameDayIsOneNight(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addHotel(t, "h1", "1000", 3)

	res, err := f.bookings.BookHotel(context.Background(), "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 1,
		CheckInDate: "2025-07-01", CheckOutDate: "2025-07-01",
	})
	require.NoError(t, err)
	assert.True(t, res.Booking.Price.Equal(money("1000")))
}

func TestBookHotelNoRooms(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addHotel(t, "h1", "1000", 0)

	_, err := f.bookings.BookHotel(context.Background(), "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 1,
		CheckInDate: "2025-07-01", CheckOutDate: "2025-07-02",
	})
	assert.EqualError(t, err, "No rooms available at this hotel")
}

func TestBookHotelRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addHotel(t, "h1", "1000", 3)

	_, err := f.bookings.BookHotel(context.Background(), "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 0,
		CheckInDate: "2025-07-01", CheckOutDate: "2025-07-02",
	})
	assert.True(t, domain.IsValidation(err), "got %v", err)

	_, err = f.bookings.BookHotel(context.Background(), "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 1,
		CheckInDate: "01/07/2025", CheckOutDate: "2025-07-02",
	})
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestCancelRefundsNinetyPercent(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addBus(t, "bus1", "700", 40, 0)

	booked, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	require.NoError(t, err)

	res, err := f.bookings.Cancel(context.Background(), "u1", booked.Booking.ID)
	require.NoError(t, err)
	assert.True(t, res.RefundAmount.Equal(money("630")))
	assert.True(t, res.NewBalance.Equal(money("930")))
	assert.Equal(t, models.StatusCancelled, res.Booking.Status)
	assert.Equal(t, 0, f.bus(t, "bus1").FilledSeats)

	entries := f.ledger(t, "u1")
	require.Len(t, entries, 3)
	assert.Equal(t, models.EntryCredit, entries[0].Type)
	assert.Equal(t, "Refund for cancelled bus booking: "+booked.TicketNumber, entries[0].Description)
	f.requireBalanced(t, "u1")

	// the seat can be booked again
	_, err = f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	require.NoError(t, err)
}

func TestCancelTwiceIsAlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addBus(t, "bus1", "700", 40, 0)

	booked, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	require.NoError(t, err)
	_, err = f.bookings.Cancel(context.Background(), "u1", booked.Booking.ID)
	require.NoError(t, err)

	_, err = f.bookings.Cancel(context.Background(), "u1", booked.Booking.ID)
	assert.True(t, domain.IsAlreadyCancelled(err), "got %v", err)
	assert.True(t, f.user(t, "u1").WalletBalance.Equal(money("930")))
	assert.Len(t, f.ledger(t, "u1"), 3)
}

func TestCancelSomeoneElsesBookingIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addUser(t, "u2", "1000")
	f.addBus(t, "bus1", "700", 40, 0)

	booked, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	require.NoError(t, err)

	_, err = f.bookings.Cancel(context.Background(), "u2", booked.Booking.ID)
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestCancelUsesStoredPriceAfterAdminEdit(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "1000")
	f.addBus(t, "bus1", "700", 40, 0)

	booked, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 5))
	require.NoError(t, err)

	_, err = f.admin.UpdateBus(context.Background(), "bus1", models.BusInput{
		Operator: "Sajha Yatayat", From: "Kathmandu", To: "Pokhara", Date: "2025-06-20", Time: "07:00",
		Price: money("1500"), TotalSeats: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.bus(t, "bus1").FilledSeats)

	res, err := f.bookings.Cancel(context.Background(), "u1", booked.Booking.ID)
	require.NoError(t, err)
	assert.True(t, res.RefundAmount.Equal(money("630")))
}

func TestCancelAfterItemDeletedStillRefunds(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addHotel(t, "h1", "1000", 3)

	booked, err := f.bookings.BookHotel(context.Background(), "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 2,
		CheckInDate: "2025-07-01", CheckOutDate: "2025-07-02",
	})
	require.NoError(t, err)
	require.NoError(t, f.admin.DeleteHotel(context.Background(), "h1"))

	res, err := f.bookings.Cancel(context.Background(), "u1", booked.Booking.ID)
	require.NoError(t, err)
	assert.True(t, res.RefundAmount.Equal(money("900")))
	assert.True(t, res.NewBalance.Equal(money("4900")))
	f.requireBalanced(t, "u1")
}

func TestTicketCollisionRetries(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addBus(t, "bus1", "700", 40, 0)

	candidates := []string{"BUS-20250616-111111", "BUS-20250616-111111", "BUS-20250616-222222"}
	next := 0
	f.bookings.Tickets = func(models.ItemType, time.Time) (string, error) {
		ticket := candidates[next]
		next++
		return ticket, nil
	}

	first, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 1))
	require.NoError(t, err)
	assert.Equal(t, "BUS-20250616-111111", first.TicketNumber)

	second, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 2))
	require.NoError(t, err)
	assert.Equal(t, "BUS-20250616-222222", second.TicketNumber)
	assert.Equal(t, 3, next)
}

func TestTicketCollisionExhaustedRollsBack(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addBus(t, "bus1", "700", 40, 0)

	f.bookings.Tickets = func(models.ItemType, time.Time) (string, error) { return "BUS-20250616-111111", nil }
	_, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 1))
	require.NoError(t, err)

	calls := 0
	f.bookings.Tickets = func(models.ItemType, time.Time) (string, error) {
		calls++
		return "BUS-20250616-111111", nil
	}
	_, err = f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 2))
	assert.True(t, domain.IsInternal(err), "got %v", err)
	assert.True(t, errors.Is(err, domain.ErrTicketCollision))
	assert.Equal(t, defaultTicketRetries, calls)

	assert.True(t, f.user(t, "u1").WalletBalance.Equal(money("4300")))
	assert.Equal(t, 1, f.bus(t, "bus1").FilledSeats)
	assert.Len(t, f.ledger(t, "u1"), 2)
}

func TestConcurrentBookingsForLastSeat(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "bus1", "100", 1, 0)
	users := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, id := range users {
		f.addUser(t, id, "500")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for _, id := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.bookings.BookBus(context.Background(), userID, busRequest("bus1", 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case domain.IsCapacityExceeded(err) || domain.IsSeatTaken(err):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, len(users)-1, rejected)
	assert.Equal(t, 1, f.bus(t, "bus1").FilledSeats)
	for _, id := range users {
		f.requireBalanced(t, id)
	}
}

func TestGenerateTicketNumber(t *testing.T) {
	for i := 0; i < 50; i++ {
		ticket, err := GenerateTicketNumber(models.ItemHotel, fixedNow)
		require.NoError(t, err)
		assert.Regexp(t, `^HOTEL-20250616-[1-9]\d{5}$`, ticket)
	}
	_, err := GenerateTicketNumber(models.ItemType("train"), fixedNow)
	assert.Error(t, err)
}

func TestCancelHotelRestoresRoom(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addHotel(t, "h1", "1000", 1)

	res, err := f.bookings.BookHotel(context.Background(), "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 2,
		CheckInDate: "2025-07-01", CheckOutDate: "2025-07-04",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.hotel(t, "h1").RoomsAvailable)

	out, err := f.bookings.Cancel(context.Background(), "u1", res.Booking.ID)
	require.NoError(t, err)
	assert.True(t, out.RefundAmount.Equal(money("2700")), "refund %s", out.RefundAmount)
	assert.True(t, out.NewBalance.Equal(money("4700")), "balance %s", out.NewBalance)
	assert.Equal(t, 1, f.hotel(t, "h1").RoomsAvailable)
	f.requireBalanced(t, "u1")
}

func TestConcurrentBookingsForLastRoom(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "h1", "1000", 1)
	users := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, id := range users {
		f.addUser(t, id, "5000")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for _, id := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.bookings.BookHotel(context.Background(), userID, models.HotelBookingRequest{
				HotelID: "h1", LeadGuestName: "Guest " + userID, NumGuests: 1,
				CheckInDate: "2025-07-01", CheckOutDate: "2025-07-02",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case domain.IsCapacityExceeded(err):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, len(users)-1, rejected)
	assert.Equal(t, 0, f.hotel(t, "h1").RoomsAvailable)
	for _, id := range users {
		f.requireBalanced(t, id)
	}
}

func TestBookingRefreshesCachedListings(t *testing.T) {
	f := newFixture(t)
	cache := newMapCache()
	f.bookings.Cache = cache
	catalog := CatalogService{Store: f.store, Cache: cache}
	f.addUser(t, "u1", "5000")
	f.addBus(t, "bus1", "700", 1, 0)
	f.addHotel(t, "h1", "1000", 1)
	ctx := context.Background()

	filled := func() int {
		t.Helper()
		buses, err := catalog.SearchBuses(ctx, models.BusSearch{From: "Kathmandu"})
		require.NoError(t, err)
		require.Len(t, buses, 1)
		return buses[0].FilledSeats
	}
	rooms := func() int {
		t.Helper()
		hotels, err := catalog.SearchHotels(ctx, models.HotelSearch{Location: "Pokhara"})
		require.NoError(t, err)
		require.Len(t, hotels, 1)
		return hotels[0].RoomsAvailable
	}

	require.Equal(t, 0, filled())
	require.Equal(t, 1, rooms())

	bus, err := f.bookings.BookBus(ctx, "u1", busRequest("bus1", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, filled(), "sold-out bus must not be served from a stale listing")

	hotel, err := f.bookings.BookHotel(ctx, "u1", models.HotelBookingRequest{
		HotelID: "h1", LeadGuestName: "Sita", NumGuests: 1,
		CheckInDate: "2025-07-01", CheckOutDate: "2025-07-02",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rooms())

	_, err = f.bookings.Cancel(ctx, "u1", bus.Booking.ID)
	require.NoError(t, err)
	_, err = f.bookings.Cancel(ctx, "u1", hotel.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, filled())
	assert.Equal(t, 1, rooms())
	assert.Equal(t, 4, cache.invalidated)
}

func TestFailedBookingKeepsCachedListings(t *testing.T) {
	f := newFixture(t)
	cache := newMapCache()
	f.bookings.Cache = cache
	f.addUser(t, "u1", "100")
	f.addBus(t, "bus1", "700", 10, 0)

	_, err := f.bookings.BookBus(context.Background(), "u1", busRequest("bus1", 1))
	require.True(t, domain.IsInsufficientFunds(err), "got %v", err)
	assert.Equal(t, 0, cache.invalidated)
}
