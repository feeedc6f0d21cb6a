package services

import (
	"context"
	"strings"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"

	"github.com/sirupsen/logrus"
)

// TrackingService looks a ticket up for the public status page. It only reads.
type TrackingService struct {
	Store repositories.Store
}

func (s TrackingService) Track(ctx context.Context, ticketNumber string) (models.TrackingView, error) {
	ticketNumber = strings.ToUpper(strings.TrimSpace(ticketNumber))
	if ticketNumber == "" {
		return models.TrackingView{}, domain.ValidationError{Field: "ticketNumber", Msg: "is required"}
	}
	var view models.TrackingView
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		b, err := tx.Bookings().GetByTicket(ctx, ticketNumber)
		if err != nil {
			return err
		}
		view, err = trackingView(ctx, tx, b)
		return err
	})
	if err != nil {
		return models.TrackingView{}, internalErr(ctx, "track ticket", logrus.Fields{"ticket": ticketNumber}, err)
	}
	return view, nil
}

func trackingView(ctx context.Context, tx repositories.Tx, b models.Booking) (models.TrackingView, error) {
	view := models.TrackingView{
		TicketNumber: b.TicketNumber,
		ItemType:     b.ItemType,
		Status:       b.Status,
		BookedAt:     b.CreatedAt,
	}
	target := b.Target()
	if busID, ok := target.Bus(); ok {
		bus, err := tx.Buses().Get(ctx, busID)
		if err != nil {
			return view, err
		}
		view.Operator = bus.Operator
		view.From, view.To = bus.From, bus.To
		view.TravelDate, view.DepartureTime, view.Arrival = bus.Date, bus.Time, bus.Arrival
		view.PassengerName, view.SeatNumber = b.PassengerName, b.SeatNumber
		return view, nil
	}
	hotelID, _ := target.Hotel()
	hotel, err := tx.Hotels().Get(ctx, hotelID)
	if err != nil {
		return view, err
	}
	view.HotelName, view.Location = hotel.Name, hotel.Location
	view.CheckInDate, view.CheckOutDate = b.CheckInDate, b.CheckOutDate
	view.LeadGuestName, view.NumGuests = b.LeadGuestName, b.NumGuests
	return view, nil
}
