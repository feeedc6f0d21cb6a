package services

import (
	"context"
	"strings"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/sirupsen/logrus"
)

type QueryService struct {
	Store repositories.Store
}

// ParseStatus accepts an empty filter or a booking status in any case.
func ParseStatus(raw string) (models.BookingStatus, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", nil
	case strings.EqualFold(raw, string(models.StatusConfirmed)):
		return models.StatusConfirmed, nil
	case strings.EqualFold(raw, string(models.StatusCancelled)):
		return models.StatusCancelled, nil
	}
	return "", domain.ValidationError{Field: "status", Msg: "must be Confirmed or Cancelled"}
}

// ListBookings returns the user's bookings newest first, each joined with its
// bus or hotel. Bookings whose item no longer exists are logged and skipped.
func (s QueryService) ListBookings(ctx context.Context, userID string, status models.BookingStatus) ([]models.BookingView, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: "must be Confirmed or Cancelled"}
	}

	var (
		list   []models.Booking
		buses  = map[string]models.Bus{}
		hotels = map[string]models.Hotel{}
	)
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		list, err = tx.Bookings().ListByUser(ctx, userID, status)
		if err != nil {
			return err
		}
		busIDs, hotelIDs := collectTargets(list)

		found, err := tx.Buses().GetMany(ctx, busIDs)
		if err != nil {
			return err
		}
		for _, b := range found {
			buses[b.ID] = b
		}
		stays, err := tx.Hotels().GetMany(ctx, hotelIDs)
		if err != nil {
			return err
		}
		for _, h := range stays {
			hotels[h.ID] = h
		}
		return nil
	})
	if err != nil {
		return nil, internalErr(ctx, "list bookings", logrus.Fields{"user_id": userID}, err)
	}

	views := make([]models.BookingView, 0, len(list))
	for _, b := range list {
		target := b.Target()
		if busID, ok := target.Bus(); ok {
			if bus, found := buses[busID]; found {
				views = append(views, models.NewBusBookingView(b, bus))
				continue
			}
		} else if hotelID, ok := target.Hotel(); ok {
			if hotel, found := hotels[hotelID]; found {
				views = append(views, models.NewHotelBookingView(b, hotel))
				continue
			}
		}
		utils.Logger().WithFields(logrus.Fields{
			"booking_id": b.ID,
			"target":     target.String(),
			"request_id": utils.RequestIDFrom(ctx),
		}).Warn("dropping booking with missing inventory item")
	}
	return views, nil
}

func collectTargets(list []models.Booking) (busIDs, hotelIDs []string) {
	seen := map[models.BookingTarget]bool{}
	for _, b := range list {
		t := b.Target()
		if seen[t] {
			continue
		}
		seen[t] = true
		if id, ok := t.Bus(); ok {
			busIDs = append(busIDs, id)
		} else if id, ok := t.Hotel(); ok {
			hotelIDs = append(hotelIDs, id)
		}
	}
	return busIDs, hotelIDs
}
