package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StringList is stored as a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("string list: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// UnmarshalJSON accepts either an array or a comma separated string.
func (l *StringList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*l = SplitList(strings.Join(arr, ","))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("string list: expected array or string")
	}
	*l = SplitList(s)
	return nil
}

// SplitList splits a comma separated value and drops empty items.
func SplitList(s string) StringList {
	out := StringList{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type Bus struct {
	ID            string          `db:"id" json:"id"`
	Operator      string          `db:"operator" json:"operator"`
	From          string          `db:"origin" json:"from"`
	To            string          `db:"destination" json:"to"`
	Date          string          `db:"travel_date" json:"date"`
	Time          string          `db:"departure_time" json:"time"`
	Arrival       string          `db:"arrival_time" json:"arrival"`
	Price         decimal.Decimal `db:"price" json:"price"`
	TotalSeats    int             `db:"total_seats" json:"totalSeats"`
	FilledSeats   int             `db:"filled_seats" json:"filledSeats"`
	BusType       string          `db:"bus_type" json:"busType"`
	Amenities     StringList      `db:"amenities" json:"amenities"`
	MainImageURL  string          `db:"main_image_url" json:"mainImageUrl"`
	GalleryImages StringList      `db:"gallery_images" json:"galleryImages"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

func (b Bus) SeatsLeft() int {
	if left := b.TotalSeats - b.FilledSeats; left > 0 {
		return left
	}
	return 0
}

func (b Bus) Full() bool { return b.FilledSeats >= b.TotalSeats }

type Hotel struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Location       string          `db:"location" json:"location"`
	Rating         float64         `db:"rating" json:"rating"`
	PricePerNight  decimal.Decimal `db:"price_per_night" json:"pricePerNight"`
	RoomsAvailable int             `db:"rooms_available" json:"roomsAvailable"`
	Type           string          `db:"hotel_type" json:"type"`
	ImageURL       string          `db:"image_url" json:"imageUrl"`
	Amenities      StringList      `db:"amenities" json:"amenities"`
	CheckIn        string          `db:"check_in" json:"checkIn"`
	CheckOut       string          `db:"check_out" json:"checkOut"`
	GalleryImages  StringList      `db:"gallery_images" json:"galleryImages"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// BusInput is the admin payload for creating or editing a bus trip.
type BusInput struct {
	Operator      string          `json:"operator" validate:"required"`
	From          string          `json:"from" validate:"required"`
	To            string          `json:"to" validate:"required"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string          `json:"time" validate:"required"`
	Arrival       string          `json:"arrival"`
	Price         decimal.Decimal `json:"price"`
	TotalSeats    int             `json:"totalSeats" validate:"gt=0"`
	BusType       string          `json:"busType"`
	Amenities     StringList      `json:"amenities"`
	MainImageURL  string          `json:"mainImageUrl"`
	GalleryImages StringList      `json:"galleryImages"`
}

// HotelInput is the admin payload for creating or editing a hotel.
// RoomsAvailable is only honoured on create.
type HotelInput struct {
	Name           string          `json:"name" validate:"required"`
	Location       string          `json:"location" validate:"required"`
	Rating         float64         `json:"rating" validate:"gte=1,lte=5"`
	PricePerNight  decimal.Decimal `json:"pricePerNight"`
	RoomsAvailable int             `json:"roomsAvailable" validate:"gte=0"`
	Type           string          `json:"type"`
	ImageURL       string          `json:"imageUrl"`
	Amenities      StringList      `json:"amenities"`
	CheckIn        string          `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut       string          `json:"checkOut" validate:"required,datetime=2006-01-02"`
	GalleryImages  StringList      `json:"galleryImages"`
}

type BusSearch struct {
	From string
	To   string
	Date string
}

type HotelSearch struct {
	Location string
	CheckIn  string
}

// SeatMap lists the seats held by Confirmed bookings on a bus.
type SeatMap struct {
	BusID      string `json:"busId"`
	TotalSeats int    `json:"totalSeats"`
	Taken      []int  `json:"taken"`
}
