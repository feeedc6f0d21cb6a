package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemBus   ItemType = "bus"
	ItemHotel ItemType = "hotel"
)

// TicketPrefix is the ticket number kind for the item type.
func (t ItemType) TicketPrefix() string {
	switch t {
	case ItemBus:
		return "BUS"
	case ItemHotel:
		return "HOTEL"
	}
	return ""
}

func (t ItemType) Valid() bool { return t == ItemBus || t == ItemHotel }

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCancelled BookingStatus = "Cancelled"
)

func (s BookingStatus) Valid() bool { return s == StatusConfirmed || s == StatusCancelled }

// BookingTarget names the inventory item a booking points at. Exactly one of
// the constructors BusTarget or HotelTarget produces a valid value.
type BookingTarget struct {
	kind ItemType
	id   string
}

func BusTarget(busID string) BookingTarget     { return BookingTarget{kind: ItemBus, id: busID} }
func HotelTarget(hotelID string) BookingTarget { return BookingTarget{kind: ItemHotel, id: hotelID} }

func (t BookingTarget) Kind() ItemType { return t.kind }
func (t BookingTarget) ID() string     { return t.id }

// Bus returns the bus id when the target is a bus trip.
func (t BookingTarget) Bus() (string, bool) { return t.id, t.kind == ItemBus }

// Hotel returns the hotel id when the target is a hotel.
func (t BookingTarget) Hotel() (string, bool) { return t.id, t.kind == ItemHotel }

func (t BookingTarget) String() string { return fmt.Sprintf("%s(%s)", t.kind, t.id) }

type Booking struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"userId"`
	ItemType      ItemType        `db:"item_type" json:"itemType"`
	ItemID        string          `db:"item_id" json:"itemId"`
	TicketNumber  string          `db:"ticket_number" json:"ticketNumber"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Status        BookingStatus   `db:"status" json:"status"`
	SeatNumber    int             `db:"seat_number" json:"seatNumber,omitempty"`
	PassengerName string          `db:"passenger_name" json:"passengerName,omitempty"`
	LeadGuestName string          `db:"lead_guest_name" json:"leadGuestName,omitempty"`
	NumGuests     int             `db:"num_guests" json:"numGuests,omitempty"`
	CheckInDate   string          `db:"check_in_date" json:"checkInDate,omitempty"`
	CheckOutDate  string          `db:"check_out_date" json:"checkOutDate,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

func (b Booking) Target() BookingTarget {
	return BookingTarget{kind: b.ItemType, id: b.ItemID}
}

// SeatLock is the unique key a Confirmed bus booking holds; empty otherwise.
func (b Booking) SeatLock() string {
	if b.ItemType != ItemBus || b.Status != StatusConfirmed {
		return ""
	}
	return fmt.Sprintf("%s:%d", b.ItemID, b.SeatNumber)
}

type BusBookingRequest struct {
	BusID         string `json:"busId" validate:"required"`
	SeatNumber    int    `json:"seatNumber" validate:"required,gt=0"`
	PassengerName string `json:"passengerName" validate:"required"`
}

type HotelBookingRequest struct {
	HotelID       string `json:"hotelId" validate:"required"`
	LeadGuestName string `json:"leadGuestName" validate:"required"`
	NumGuests     int    `json:"numGuests" validate:"required,gte=1"`
	CheckInDate   string `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate  string `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
}

type BookingResult struct {
	TicketNumber string          `json:"ticketNumber"`
	NewBalance   decimal.Decimal `json:"newBalance"`
	Booking      Booking         `json:"booking"`
}

type CancelResult struct {
	RefundAmount decimal.Decimal `json:"refundAmount"`
	NewBalance   decimal.Decimal `json:"newBalance"`
	Booking      Booking         `json:"booking"`
}

// BookingView is a booking flattened with the details of its inventory item.
type BookingView struct {
	ID            string          `json:"id"`
	ItemType      ItemType        `json:"itemType"`
	ItemID        string          `json:"itemId"`
	TicketNumber  string          `json:"ticketNumber"`
	Price         decimal.Decimal `json:"price"`
	Status        BookingStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	SeatNumber    int             `json:"seatNumber,omitempty"`
	PassengerName string          `json:"passengerName,omitempty"`
	LeadGuestName string          `json:"leadGuestName,omitempty"`
	NumGuests     int             `json:"numGuests,omitempty"`
	CheckInDate   string          `json:"checkInDate,omitempty"`
	CheckOutDate  string          `json:"checkOutDate,omitempty"`

	Title         string     `json:"title"`
	Operator      string     `json:"operator,omitempty"`
	From          string     `json:"from,omitempty"`
	To            string     `json:"to,omitempty"`
	TravelDate    string     `json:"date,omitempty"`
	DepartureTime string     `json:"time,omitempty"`
	Arrival       string     `json:"arrival,omitempty"`
	BusType       string     `json:"busType,omitempty"`
	HotelName     string     `json:"hotelName,omitempty"`
	Location      string     `json:"location,omitempty"`
	Rating        float64    `json:"rating,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	Amenities     StringList `json:"amenities"`
	GalleryImages StringList `json:"galleryImages"`
}

func bookingView(b Booking) BookingView {
	return BookingView{
		ID:            b.ID,
		ItemType:      b.ItemType,
		ItemID:        b.ItemID,
		TicketNumber:  b.TicketNumber,
		Price:         b.Price,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		SeatNumber:    b.SeatNumber,
		PassengerName: b.PassengerName,
		LeadGuestName: b.LeadGuestName,
		NumGuests:     b.NumGuests,
		CheckInDate:   b.CheckInDate,
		CheckOutDate:  b.CheckOutDate,
	}
}

func NewBusBookingView(b Booking, bus Bus) BookingView {
	v := bookingView(b)
	v.Title = fmt.Sprintf("%s to %s", bus.From, bus.To)
	v.Operator = bus.Operator
	v.From = bus.From
	v.To = bus.To
	v.TravelDate = bus.Date
	v.DepartureTime = bus.Time
	v.Arrival = bus.Arrival
	v.BusType = bus.BusType
	v.ImageURL = bus.MainImageURL
	v.Amenities = bus.Amenities
	v.GalleryImages = bus.GalleryImages
	return v
}

func NewHotelBookingView(b Booking, h Hotel) BookingView {
	v := bookingView(b)
	v.Title = h.Name
	v.HotelName = h.Name
	v.Location = h.Location
	v.Rating = h.Rating
	v.ImageURL = h.ImageURL
	v.Amenities = h.Amenities
	v.GalleryImages = h.GalleryImages
	return v
}

// TrackingView is the public, read-only status of a ticket.
type TrackingView struct {
	TicketNumber string        `json:"ticketNumber"`
	ItemType     ItemType      `json:"itemType"`
	Status       BookingStatus `json:"status"`
	BookedAt     time.Time     `json:"bookedAt"`

	Operator      string `json:"operator,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	TravelDate    string `json:"date,omitempty"`
	DepartureTime string `json:"time,omitempty"`
	Arrival       string `json:"arrival,omitempty"`
	PassengerName string `json:"passengerName,omitempty"`
	SeatNumber    int    `json:"seatNumber,omitempty"`

	HotelName     string `json:"hotelName,omitempty"`
	Location      string `json:"location,omitempty"`
	CheckInDate   string `json:"checkInDate,omitempty"`
	CheckOutDate  string `json:"checkOutDate,omitempty"`
	LeadGuestName string `json:"leadGuestName,omitempty"`
	NumGuests     int    `json:"numGuests,omitempty"`
}
