package services

import (
	"context"
	"fmt"
	"strings"

	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/sirupsen/logrus"
)

// ListingCache stores public search results. A nil cache disables caching.
type ListingCache interface {
	Get(ctx context.Context, name string, dst any) (bool, error)
	Set(ctx context.Context, name string, v any) error
	Invalidate(ctx context.Context) error
}

// invalidateListings drops every cached listing. Cached rows carry the
// capacity counters, so any write that moves a counter must call it.
func invalidateListings(ctx context.Context, cache ListingCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		utils.Logger().WithError(err).WithField("request_id", utils.RequestIDFrom(ctx)).Warn("listing cache invalidation failed")
	}
}

// CatalogService serves the public, read-only bus and hotel listings.
type CatalogService struct {
	Store repositories.Store
	Cache ListingCache
}

func (s CatalogService) SearchBuses(ctx context.Context, q models.BusSearch) ([]models.Bus, error) {
	q.From, q.To, q.Date = strings.TrimSpace(q.From), strings.TrimSpace(q.To), strings.TrimSpace(q.Date)
	key := fmt.Sprintf("buses:%s|%s|%s", strings.ToLower(q.From), strings.ToLower(q.To), q.Date)

	var out []models.Bus
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Buses().Search(ctx, q)
		return err
	})
	if err != nil {
		return nil, internalErr(ctx, "search buses", logrus.Fields{"from": q.From, "to": q.To, "date": q.Date}, err)
	}
	if out == nil {
		out = []models.Bus{}
	}
	s.remember(ctx, key, out)
	return out, nil
}

func (s CatalogService) GetBus(ctx context.Context, id string) (models.Bus, error) {
	if err := requireID("id", id); err != nil {
		return models.Bus{}, err
	}
	var bus models.Bus
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		bus, err = tx.Buses().Get(ctx, id)
		return err
	})
	if err != nil {
		return models.Bus{}, internalErr(ctx, "get bus", logrus.Fields{"bus_id": id}, err)
	}
	return bus, nil
}

// SeatMap lists the seats currently held on a bus so a caller that lost a
// seat race can pick another one. It is never cached.
func (s CatalogService) SeatMap(ctx context.Context, busID string) (models.SeatMap, error) {
	if err := requireID("id", busID); err != nil {
		return models.SeatMap{}, err
	}
	var out models.SeatMap
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		bus, err := tx.Buses().Get(ctx, busID)
		if err != nil {
			return err
		}
		taken, err := tx.Bookings().TakenSeats(ctx, busID)
		if err != nil {
			return err
		}
		if taken == nil {
			taken = []int{}
		}
		out = models.SeatMap{BusID: bus.ID, TotalSeats: bus.TotalSeats, Taken: taken}
		return nil
	})
	if err != nil {
		return models.SeatMap{}, internalErr(ctx, "seat map", logrus.Fields{"bus_id": busID}, err)
	}
	return out, nil
}

func (s CatalogService) SearchHotels(ctx context.Context, q models.HotelSearch) ([]models.Hotel, error) {
	q.Location, q.CheckIn = strings.TrimSpace(q.Location), strings.TrimSpace(q.CheckIn)
	if q.CheckIn != "" {
		if _, err := utils.ParseDate(q.CheckIn); err != nil {
			return nil, validationDate("checkIn", err)
		}
	}
	key := fmt.Sprintf("hotels:%s|%s", strings.ToLower(q.Location), q.CheckIn)

	var out []models.Hotel
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = tx.Hotels().Search(ctx, q)
		return err
	})
	if err != nil {
		return nil, internalErr(ctx, "search hotels", logrus.Fields{"location": q.Location, "check_in": q.CheckIn}, err)
	}
	if out == nil {
		out = []models.Hotel{}
	}
	s.remember(ctx, key, out)
	return out, nil
}

func (s CatalogService) GetHotel(ctx context.Context, id string) (models.Hotel, error) {
	if err := requireID("id", id); err != nil {
		return models.Hotel{}, err
	}
	var hotel models.Hotel
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		hotel, err = tx.Hotels().Get(ctx, id)
		return err
	})
	if err != nil {
		return models.Hotel{}, internalErr(ctx, "get hotel", logrus.Fields{"hotel_id": id}, err)
	}
	return hotel, nil
}

// cache failures only cost a datastore read, so they are logged and ignored
func (s CatalogService) cached(ctx context.Context, key string, dst any) bool {
	if s.Cache == nil {
		return false
	}
	ok, err := s.Cache.Get(ctx, key, dst)
	if err != nil {
		utils.Logger().WithError(err).WithField("key", key).Warn("listing cache read failed")
		return false
	}
	return ok
}

func (s CatalogService) remember(ctx context.Context, key string, v any) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, key, v); err != nil {
		utils.Logger().WithError(err).WithField("key", key).Warn("listing cache write failed")
	}
}
