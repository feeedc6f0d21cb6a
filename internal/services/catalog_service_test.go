package services

import (
	"context"
	"encoding/json"
	"testing"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is a ListingCache kept in process memory.
type mapCache struct {
	data        map[string][]byte
	invalidated int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, name string, dst any) (bool, error) {
	raw, ok := c.data[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(_ context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[name] = raw
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.data = map[string][]byte{}
	c.invalidated++
	return nil
}

func TestSearchBusesCaseInsensitiveAndCached(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "bus1", "700", 40, 0)
	cache := newMapCache()
	f.admin.Cache = cache
	catalog := CatalogService{Store: f.store, Cache: cache}
	ctx := context.Background()

	list, err := catalog.SearchBuses(ctx, models.BusSearch{From: "kathmandu", To: "POKHARA"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, cache.data, 1)

	_, err = f.admin.CreateBus(ctx, models.BusInput{
		Operator: "Greenline", From: "Kathmandu", To: "Pokhara", Date: "2025-06-21", Time: "06:30",
		Price: money("1200"), TotalSeats: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	list, err = catalog.SearchBuses(ctx, models.BusSearch{From: "Kathmandu", To: "Pokhara"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	none, err := catalog.SearchBuses(ctx, models.BusSearch{From: "Biratnagar"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSearchHotelsByCheckIn(t *testing.T) {
	f := newFixture(t)
	f.addHotel(t, "h1", "1000", 3)
	catalog := CatalogService{Store: f.store}
	ctx := context.Background()

	list, err := catalog.SearchHotels(ctx, models.HotelSearch{Location: "pokhara", CheckIn: "2025-07-01"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = catalog.SearchHotels(ctx, models.HotelSearch{Location: "pokhara", CheckIn: "2026-01-15"})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = catalog.SearchHotels(ctx, models.HotelSearch{CheckIn: "tomorrow"})
	assert.True(t, domain.IsValidation(err))
}

func TestSeatMap(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "5000")
	f.addBus(t, "bus1", "700", 40, 0)
	ctx := context.Background()
	for _, seat := range []int{9, 2} {
		_, err := f.bookings.BookBus(ctx, "u1", busRequest("bus1", seat))
		require.NoError(t, err)
	}

	seats, err := CatalogService{Store: f.store}.SeatMap(ctx, "bus1")
	require.NoError(t, err)
	assert.Equal(t, 40, seats.TotalSeats)
	assert.Equal(t, []int{2, 9}, seats.Taken)
}

func TestAdminUpdateBusCannotDropBelowSold(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "bus1", "700", 40, 10)

	_, err := f.admin.UpdateBus(context.Background(), "bus1", models.BusInput{
		Operator: "Sajha", From: "Kathmandu", To: "Pokhara", Date: "2025-06-20", Time: "07:00",
		Price: money("700"), TotalSeats: 5,
	})
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestAdminHotelRoomsOnlySetOnCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := models.HotelInput{
		Name: "Everest View", Location: "Namche", Rating: 4, PricePerNight: money("2500"),
		RoomsAvailable: 6, CheckIn: "2025-06-01", CheckOut: "2025-09-30",
	}
	hotel, err := f.admin.CreateHotel(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 6, hotel.RoomsAvailable)

	in.RoomsAvailable = 100
	in.PricePerNight = money("3000")
	_, err = f.admin.UpdateHotel(ctx, hotel.ID, in)
	require.NoError(t, err)

	stored := f.hotel(t, hotel.ID)
	assert.Equal(t, 6, stored.RoomsAvailable)
	assert.True(t, stored.PricePerNight.Equal(money("3000")))

	in.CheckOut = "2025-05-01"
	_, err = f.admin.CreateHotel(ctx, in)
	assert.True(t, domain.IsValidation(err))
}

func TestAdminUpdateRole(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "0")
	ctx := context.Background()

	u, err := f.admin.UpdateRole(ctx, "u1", "Admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	_, err = f.admin.UpdateRole(ctx, "u1", "superuser")
	assert.True(t, domain.IsValidation(err))

	users, err := f.admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
}
