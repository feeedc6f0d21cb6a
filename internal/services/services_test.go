package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"neelosewa/internal/domain/models"
	"neelosewa/internal/events"
	"neelosewa/internal/repositories"
	"neelosewa/internal/repositories/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store    *memory.Store
	wallet   WalletService
	bookings BookingService
	query    QueryService
	admin    AdminService
	events   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var seq int64
	ids := func() string { return fmt.Sprintf("id-%d", atomic.AddInt64(&seq, 1)) }
	now := func() time.Time { return fixedNow }

	store := memory.New()
	pub := &recordingPublisher{}
	wallet := WalletService{Store: store, Now: now, NewID: ids}
	return &fixture{
		store:  store,
		wallet: wallet,
		bookings: BookingService{
			Store:  store,
			Wallet: wallet,
			Events: pub,
			Now:    now,
			NewID:  ids,
		},
		query:  QueryService{Store: store},
		admin:  AdminService{Store: store, Now: now, NewID: ids},
		events: pub,
	}
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// addUser creates a user and funds the wallet through a ledgered top-up.
func (f *fixture) addUser(t *testing.T, id string, balance string) {
	t.Helper()
	err := f.store.WithinTx(context.Background(), func(tx repositories.Tx) error {
		return tx.Users().Create(context.Background(), models.User{
			ID: id, Name: "User " + id, Email: id + "@example.com", Role: "user",
			WalletBalance: decimal.Zero, CreatedAt: fixedNow, UpdatedAt: fixedNow,
		})
	})
	require.NoError(t, err)
	if b := money(balance); b.IsPositive() {
		_, err = f.wallet.TopUp(context.Background(), id, b)
		require.NoError(t, err)
	}
}

func (f *fixture) addBus(t *testing.T, id, price string, total, filled int) {
	t.Helper()
	err := f.store.WithinTx(context.Background(), func(tx repositories.Tx) error {
		return tx.Buses().Create(context.Background(), models.Bus{
			ID: id, Operator: "Sajha Yatayat", From: "Kathmandu", To: "Pokhara", Date: "2025-06-20", Time: "07:00",
			Price: money(price), TotalSeats: total, FilledSeats: filled, CreatedAt: fixedNow, UpdatedAt: fixedNow,
		})
	})
	require.NoError(t, err)
}

func (f *fixture) addHotel(t *testing.T, id, pricePerNight string, rooms int) {
	t.Helper()
	err := f.store.WithinTx(context.Background(), func(tx repositories.Tx) error {
		return tx.Hotels().Create(context.Background(), models.Hotel{
			ID: id, Name: "Lakeside Inn", Location: "Pokhara", Rating: 4.5,
			PricePerNight: money(pricePerNight), RoomsAvailable: rooms,
			CheckIn: "2025-06-01", CheckOut: "2025-12-31", CreatedAt: fixedNow, UpdatedAt: fixedNow,
		})
	})
	require.NoError(t, err)
}

func (f *fixture) user(t *testing.T, id string) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, f.store.View(context.Background(), func(tx repositories.Tx) error {
		var err error
		u, err = tx.Users().Get(context.Background(), id)
		return err
	}))
	return u
}

func (f *fixture) bus(t *testing.T, id string) models.Bus {
	t.Helper()
	var b models.Bus
	require.NoError(t, f.store.View(context.Background(), func(tx repositories.Tx) error {
		var err error
		b, err = tx.Buses().Get(context.Background(), id)
		return err
	}))
	return b
}

func (f *fixture) hotel(t *testing.T, id string) models.Hotel {
	t.Helper()
	var h models.Hotel
	require.NoError(t, f.store.View(context.Background(), func(tx repositories.Tx) error {
		var err error
		h, err = tx.Hotels().Get(context.Background(), id)
		return err
	}))
	return h
}

func (f *fixture) ledger(t *testing.T, userID string) []models.LedgerEntry {
	t.Helper()
	entries, err := f.wallet.History(context.Background(), userID)
	require.NoError(t, err)
	return entries
}

// requireBalanced checks the stored balance equals the ledger sum.
func (f *fixture) requireBalanced(t *testing.T, userID string) {
	t.Helper()
	rec, err := f.wallet.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, rec.Balanced, "balance %s != ledger %s", rec.Balance, rec.LedgerSum)
}
