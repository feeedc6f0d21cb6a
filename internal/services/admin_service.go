package services

import (
	"context"
	"strings"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AdminService manages inventory and user roles. It never touches the
// capacity counters of existing items or any wallet.
type AdminService struct {
	Store repositories.Store
	Cache ListingCache
	Now   clock
	NewID idSource
}

func (s AdminService) CreateBus(ctx context.Context, in models.BusInput) (models.Bus, error) {
	if err := checkBusInput(&in); err != nil {
		return models.Bus{}, err
	}
	now := s.Now.now()
	bus := busFromInput(in)
	bus.ID = s.NewID.next()
	bus.FilledSeats = 0
	bus.CreatedAt, bus.UpdatedAt = now, now

	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		return tx.Buses().Create(ctx, bus)
	})
	if err != nil {
		return models.Bus{}, internalErr(ctx, "create bus", logrus.Fields{"operator": bus.Operator}, err)
	}
	s.invalidate(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "admin", "create_bus", "bus_id="+bus.ID)
	return bus, nil
}

// UpdateBus edits a bus. Total seats may not drop below seats already sold;
// the new price only applies to future bookings.
func (s AdminService) UpdateBus(ctx context.Context, id string, in models.BusInput) (models.Bus, error) {
	if err := requireID("id", id); err != nil {
		return models.Bus{}, err
	}
	if err := checkBusInput(&in); err != nil {
		return models.Bus{}, err
	}
	var bus models.Bus
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		cur, err := tx.Buses().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if in.TotalSeats < cur.FilledSeats {
			return domain.ValidationError{Field: "totalSeats", Msg: "cannot be less than seats already booked"}
		}
		bus = busFromInput(in)
		bus.ID = cur.ID
		bus.FilledSeats = cur.FilledSeats
		bus.CreatedAt = cur.CreatedAt
		bus.UpdatedAt = s.Now.now()
		return tx.Buses().Update(ctx, bus)
	})
	if err != nil {
		return models.Bus{}, internalErr(ctx, "update bus", logrus.Fields{"bus_id": id}, err)
	}
	s.invalidate(ctx)
	return bus, nil
}

func (s AdminService) DeleteBus(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		return tx.Buses().Delete(ctx, id)
	})
	if err != nil {
		return internalErr(ctx, "delete bus", logrus.Fields{"bus_id": id}, err)
	}
	s.invalidate(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "admin", "delete_bus", "bus_id="+id)
	return nil
}

func (s AdminService) CreateHotel(ctx context.Context, in models.HotelInput) (models.Hotel, error) {
	if err := checkHotelInput(&in); err != nil {
		return models.Hotel{}, err
	}
	now := s.Now.now()
	hotel := hotelFromInput(in)
	hotel.ID = s.NewID.next()
	hotel.RoomsAvailable = in.RoomsAvailable
	hotel.CreatedAt, hotel.UpdatedAt = now, now

	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		return tx.Hotels().Create(ctx, hotel)
	})
	if err != nil {
		return models.Hotel{}, internalErr(ctx, "create hotel", logrus.Fields{"name": hotel.Name}, err)
	}
	s.invalidate(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "admin", "create_hotel", "hotel_id="+hotel.ID)
	return hotel, nil
}

// UpdateHotel edits descriptive fields and price; rooms available stays as
// the booking engine left it.
func (s AdminService) UpdateHotel(ctx context.Context, id string, in models.HotelInput) (models.Hotel, error) {
	if err := requireID("id", id); err != nil {
		return models.Hotel{}, err
	}
	if err := checkHotelInput(&in); err != nil {
		return models.Hotel{}, err
	}
	var hotel models.Hotel
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		cur, err := tx.Hotels().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		hotel = hotelFromInput(in)
		hotel.ID = cur.ID
		hotel.RoomsAvailable = cur.RoomsAvailable
		hotel.CreatedAt = cur.CreatedAt
		hotel.UpdatedAt = s.Now.now()
		return tx.Hotels().Update(ctx, hotel)
	})
	if err != nil {
		return models.Hotel{}, internalErr(ctx, "update hotel", logrus.Fields{"hotel_id": id}, err)
	}
	s.invalidate(ctx)
	return hotel, nil
}

func (s AdminService) DeleteHotel(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		return tx.Hotels().Delete(ctx, id)
	})
	if err != nil {
		return internalErr(ctx, "delete hotel", logrus.Fields{"hotel_id": id}, err)
	}
	s.invalidate(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "admin", "delete_hotel", "hotel_id="+id)
	return nil
}

func (s AdminService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	var list []models.User
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		list, err = tx.Users().List(ctx)
		return err
	})
	if err != nil {
		return nil, internalErr(ctx, "list users", nil, err)
	}
	out := make([]models.PublicUser, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToPublic())
	}
	return out, nil
}

func (s AdminService) UpdateRole(ctx context.Context, userID, role string) (models.PublicUser, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if err := requireID("id", userID); err != nil {
		return models.PublicUser{}, err
	}
	if !domain.ValidRole(role) {
		return models.PublicUser{}, domain.ValidationError{Field: "role", Msg: "must be user or admin"}
	}
	var user models.User
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		var err error
		user, err = tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		user.Role = role
		return tx.Users().SetRole(ctx, userID, role)
	})
	if err != nil {
		return models.PublicUser{}, internalErr(ctx, "update role", logrus.Fields{"user_id": userID}, err)
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "admin", "update_role", "user_id="+userID+" role="+role)
	return user.ToPublic(), nil
}

func (s AdminService) invalidate(ctx context.Context) {
	invalidateListings(ctx, s.Cache)
}

func checkBusInput(in *models.BusInput) error {
	in.Operator = utils.NormalizeSpace(in.Operator)
	in.From = utils.NormalizeSpace(in.From)
	in.To = utils.NormalizeSpace(in.To)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	if err := validateStruct(*in); err != nil {
		return err
	}
	return checkPrice("price", in.Price)
}

func checkHotelInput(in *models.HotelInput) error {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Location = utils.NormalizeSpace(in.Location)
	in.CheckIn = strings.TrimSpace(in.CheckIn)
	in.CheckOut = strings.TrimSpace(in.CheckOut)
	if err := validateStruct(*in); err != nil {
		return err
	}
	if in.CheckOut < in.CheckIn {
		return domain.ValidationError{Field: "checkOut", Msg: "must not be before checkIn"}
	}
	return checkPrice("pricePerNight", in.PricePerNight)
}

func checkPrice(field string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return domain.ValidationError{Field: field, Msg: "must be greater than zero"}
	}
	if !utils.HasMinorPrecision(price) {
		return domain.ValidationError{Field: field, Msg: "must have at most two decimal places"}
	}
	return nil
}

func busFromInput(in models.BusInput) models.Bus {
	return models.Bus{
		Operator:      in.Operator,
		From:          in.From,
		To:            in.To,
		Date:          in.Date,
		Time:          in.Time,
		Arrival:       strings.TrimSpace(in.Arrival),
		Price:         in.Price,
		TotalSeats:    in.TotalSeats,
		BusType:       strings.TrimSpace(in.BusType),
		Amenities:     nonNil(in.Amenities),
		MainImageURL:  strings.TrimSpace(in.MainImageURL),
		GalleryImages: nonNil(in.GalleryImages),
	}
}

func hotelFromInput(in models.HotelInput) models.Hotel {
	return models.Hotel{
		Name:          in.Name,
		Location:      in.Location,
		Rating:        in.Rating,
		PricePerNight: in.PricePerNight,
		Type:          strings.TrimSpace(in.Type),
		ImageURL:      strings.TrimSpace(in.ImageURL),
		Amenities:     nonNil(in.Amenities),
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		GalleryImages: nonNil(in.GalleryImages),
	}
}

func nonNil(l models.StringList) models.StringList {
	if l == nil {
		return models.StringList{}
	}
	return l
}
