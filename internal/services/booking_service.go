package services

import (
	"context"
	"fmt"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/events"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BookingService books and cancels seats and rooms. Each operation locks the
// user row, then the inventory row, then the booking row, and applies the
// balance, ledger, capacity and booking writes in one transaction.
type BookingService struct {
	Store         repositories.Store
	Wallet        WalletService
	Events        events.Publisher
	Cache         ListingCache
	Tickets       TicketGenerator
	TicketRetries int
	Now           clock
	NewID         idSource
}

func (s BookingService) BookBus(ctx context.Context, userID string, req models.BusBookingRequest) (models.BookingResult, error) {
	req.PassengerName = utils.NormalizeSpace(req.PassengerName)
	if err := requireID("userId", userID); err != nil {
		return models.BookingResult{}, err
	}
	if err := validateStruct(req); err != nil {
		return models.BookingResult{}, err
	}

	var result models.BookingResult
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		bus, err := tx.Buses().GetForUpdate(ctx, req.BusID)
		if err != nil {
			return err
		}
		if bus.Full() {
			return domain.CapacityExceededError{Resource: "bus"}
		}
		if req.SeatNumber > bus.TotalSeats {
			return domain.ValidationError{Field: "seatNumber", Msg: fmt.Sprintf("must be between 1 and %d", bus.TotalSeats)}
		}
		if user.WalletBalance.LessThan(bus.Price) {
			return domain.InsufficientFundsError{Required: bus.Price, Available: user.WalletBalance}
		}
		taken, err := tx.Bookings().SeatTaken(ctx, bus.ID, req.SeatNumber)
		if err != nil {
			return err
		}
		if taken {
			return domain.SeatTakenError{BusID: bus.ID, Seat: req.SeatNumber}
		}

		desc := fmt.Sprintf("Bus ticket: %s to %s (Seat: %d)", bus.From, bus.To, req.SeatNumber)
		balance, err := s.Wallet.post(ctx, tx, user, models.EntryDebit, bus.Price, desc)
		if err != nil {
			return err
		}
		if err := tx.Buses().SetFilledSeats(ctx, bus.ID, bus.FilledSeats+1); err != nil {
			return err
		}

		now := s.Now.now()
		booking := models.Booking{
			ID:            s.NewID.next(),
			UserID:        user.ID,
			ItemType:      models.ItemBus,
			ItemID:        bus.ID,
			Price:         bus.Price,
			Status:        models.StatusConfirmed,
			SeatNumber:    req.SeatNumber,
			PassengerName: req.PassengerName,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := insertWithTicket(ctx, tx, s.Tickets, s.TicketRetries, &booking); err != nil {
			return err
		}
		result = models.BookingResult{TicketNumber: booking.TicketNumber, NewBalance: balance, Booking: booking}
		return nil
	})
	if err != nil {
		return models.BookingResult{}, internalErr(ctx, "book bus", logrus.Fields{"user_id": userID, "bus_id": req.BusID, "seat": req.SeatNumber}, err)
	}

	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "book_bus", "ticket="+result.TicketNumber+" user_id="+userID)
	invalidateListings(ctx, s.Cache)
	s.publish(ctx, events.TypeBookingConfirmed, result.Booking, result.Booking.Price)
	return result, nil
}

func (s BookingService) BookHotel(ctx context.Context, userID string, req models.HotelBookingRequest) (models.BookingResult, error) {
	req.LeadGuestName = utils.NormalizeSpace(req.LeadGuestName)
	if err := requireID("userId", userID); err != nil {
		return models.BookingResult{}, err
	}
	if err := validateStruct(req); err != nil {
		return models.BookingResult{}, err
	}
	checkIn, err := utils.ParseDate(req.CheckInDate)
	if err != nil {
		return models.BookingResult{}, validationDate("checkInDate", err)
	}
	checkOut, err := utils.ParseDate(req.CheckOutDate)
	if err != nil {
		return models.BookingResult{}, validationDate("checkOutDate", err)
	}
	nights := utils.Nights(checkIn, checkOut)

	var result models.BookingResult
	err = s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		hotel, err := tx.Hotels().GetForUpdate(ctx, req.HotelID)
		if err != nil {
			return err
		}
		if hotel.RoomsAvailable <= 0 {
			return domain.CapacityExceededError{Resource: "hotel"}
		}
		total := utils.StayPrice(hotel.PricePerNight, nights)
		if user.WalletBalance.LessThan(total) {
			return domain.InsufficientFundsError{Required: total, Available: user.WalletBalance}
		}

		desc := fmt.Sprintf("Hotel booking: %s (%s to %s)", hotel.Name, req.CheckInDate, req.CheckOutDate)
		balance, err := s.Wallet.post(ctx, tx, user, models.EntryDebit, total, desc)
		if err != nil {
			return err
		}
		// one booking always holds exactly one room
		if err := tx.Hotels().SetRoomsAvailable(ctx, hotel.ID, hotel.RoomsAvailable-1); err != nil {
			return err
		}

		now := s.Now.now()
		booking := models.Booking{
			ID:            s.NewID.next(),
			UserID:        user.ID,
			ItemType:      models.ItemHotel,
			ItemID:        hotel.ID,
			Price:         total,
			Status:        models.StatusConfirmed,
			LeadGuestName: req.LeadGuestName,
			NumGuests:     req.NumGuests,
			CheckInDate:   req.CheckInDate,
			CheckOutDate:  req.CheckOutDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := insertWithTicket(ctx, tx, s.Tickets, s.TicketRetries, &booking); err != nil {
			return err
		}
		result = models.BookingResult{TicketNumber: booking.TicketNumber, NewBalance: balance, Booking: booking}
		return nil
	})
	if err != nil {
		return models.BookingResult{}, internalErr(ctx, "book hotel", logrus.Fields{"user_id": userID, "hotel_id": req.HotelID}, err)
	}

	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "book_hotel", fmt.Sprintf("ticket=%s user_id=%s nights=%d", result.TicketNumber, userID, nights))
	invalidateListings(ctx, s.Cache)
	s.publish(ctx, events.TypeBookingConfirmed, result.Booking, result.Booking.Price)
	return result, nil
}

// Cancel refunds 90% of the stored price and gives the seat or room back.
// Cancelling twice fails with AlreadyCancelled and changes nothing.
func (s BookingService) Cancel(ctx context.Context, userID, bookingID string) (models.CancelResult, error) {
	if err := requireID("userId", userID); err != nil {
		return models.CancelResult{}, err
	}
	if err := requireID("bookingId", bookingID); err != nil {
		return models.CancelResult{}, err
	}

	var result models.CancelResult
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		booking, err := tx.Bookings().GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != user.ID {
			return domain.NotFoundError{Resource: "booking"}
		}
		if booking.Status == models.StatusCancelled {
			return domain.AlreadyCancelledError{TicketNumber: booking.TicketNumber}
		}

		refund := utils.RefundAmount(booking.Price)
		balance := user.WalletBalance
		if refund.IsPositive() {
			desc := fmt.Sprintf("Refund for cancelled %s booking: %s", booking.ItemType, booking.TicketNumber)
			balance, err = s.Wallet.post(ctx, tx, user, models.EntryCredit, refund, desc)
			if err != nil {
				return err
			}
		}
		if err := tx.Bookings().MarkCancelled(ctx, booking.ID); err != nil {
			return err
		}
		if err := releaseCapacity(ctx, tx, booking); err != nil {
			return err
		}

		booking.Status = models.StatusCancelled
		booking.UpdatedAt = s.Now.now()
		result = models.CancelResult{RefundAmount: refund, NewBalance: balance, Booking: booking}
		return nil
	})
	if err != nil {
		return models.CancelResult{}, internalErr(ctx, "cancel booking", logrus.Fields{"user_id": userID, "booking_id": bookingID}, err)
	}

	utils.LogEvent(utils.RequestIDFrom(ctx), "booking", "cancel", "ticket="+result.Booking.TicketNumber+" refund="+utils.FormatMoney(result.RefundAmount))
	invalidateListings(ctx, s.Cache)
	s.publish(ctx, events.TypeBookingCancelled, result.Booking, result.RefundAmount)
	return result, nil
}

// releaseCapacity returns one seat or room to the booked item. Items removed
// by an admin since the booking have nothing to release.
func releaseCapacity(ctx context.Context, tx repositories.Tx, b models.Booking) error {
	target := b.Target()
	if busID, ok := target.Bus(); ok {
		bus, err := tx.Buses().GetForUpdate(ctx, busID)
		if domain.IsNotFound(err) {
			logMissingItem(ctx, b)
			return nil
		}
		if err != nil {
			return err
		}
		filled := bus.FilledSeats - 1
		if filled < 0 {
			filled = 0
		}
		return tx.Buses().SetFilledSeats(ctx, bus.ID, filled)
	}
	if hotelID, ok := target.Hotel(); ok {
		hotel, err := tx.Hotels().GetForUpdate(ctx, hotelID)
		if domain.IsNotFound(err) {
			logMissingItem(ctx, b)
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Hotels().SetRoomsAvailable(ctx, hotel.ID, hotel.RoomsAvailable+1)
	}
	return fmt.Errorf("booking %s has unknown item type %q", b.ID, b.ItemType)
}

func logMissingItem(ctx context.Context, b models.Booking) {
	utils.Logger().WithFields(logrus.Fields{
		"booking_id": b.ID,
		"item_type":  b.ItemType,
		"item_id":    b.ItemID,
		"request_id": utils.RequestIDFrom(ctx),
	}).Warn("booked item no longer exists")
}

// publish is best effort; the booking is already committed.
func (s BookingService) publish(ctx context.Context, typ string, b models.Booking, amount decimal.Decimal) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.BookingEvent{
		Type:         typ,
		BookingID:    b.ID,
		TicketNumber: b.TicketNumber,
		UserID:       b.UserID,
		ItemType:     string(b.ItemType),
		ItemID:       b.ItemID,
		Amount:       amount,
		OccurredAt:   s.Now.now(),
	})
	if err != nil {
		utils.Logger().WithError(err).WithFields(logrus.Fields{
			"event":  typ,
			"ticket": b.TicketNumber,
		}).Warn("booking event not published")
	}
}
