package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrTicketCollision reports a duplicate ticket number on insert. The booking
// engine retries with a fresh number; callers only see it wrapped in an
// InternalError once retries are exhausted.
var ErrTicketCollision = errors.New("ticket number collision")

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// UnauthorizedError is returned for bad credentials or missing identity.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

// CapacityExceededError means the inventory item has no seat or room left.
type CapacityExceededError struct {
	Resource string
}

func (e CapacityExceededError) Error() string {
	switch e.Resource {
	case "bus":
		return "Bus is fully booked"
	case "hotel":
		return "No rooms available at this hotel"
	default:
		return "capacity exceeded"
	}
}

// SeatTakenError means a Confirmed booking already holds the seat on that bus.
type SeatTakenError struct {
	BusID string
	Seat  int
}

func (e SeatTakenError) Error() string {
	return fmt.Sprintf("Seat %d is already booked for this bus.", e.Seat)
}

// InsufficientFundsError carries the exact amount the user is short.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("Insufficient funds. Need Rs. %s more.", e.Shortfall().StringFixed(2))
}

type AlreadyCancelledError struct {
	TicketNumber string
}

func (e AlreadyCancelledError) Error() string {
	return "Booking is already cancelled"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsCapacityExceeded(err error) bool {
	var target CapacityExceededError
	return errors.As(err, &target)
}

func IsSeatTaken(err error) bool {
	var target SeatTakenError
	return errors.As(err, &target)
}

func IsInsufficientFunds(err error) bool {
	var target InsufficientFundsError
	return errors.As(err, &target)
}

func IsAlreadyCancelled(err error) bool {
	var target AlreadyCancelledError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// IsBusinessRule reports whether err is an expected outcome the caller can act on.
func IsBusinessRule(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsConflict(err) || IsUnauthorized(err) ||
		IsCapacityExceeded(err) || IsSeatTaken(err) || IsInsufficientFunds(err) || IsAlreadyCancelled(err)
}
