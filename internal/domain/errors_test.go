package domain

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientFundsShortfall(t *testing.T) {
	err := InsufficientFundsError{Required: decimal.NewFromInt(700), Available: decimal.NewFromInt(100)}
	assert.True(t, err.Shortfall().Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "Insufficient funds. Need Rs. 600.00 more.", err.Error())
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("book: %w", SeatTakenError{BusID: "b1", Seat: 5})
	assert.True(t, IsSeatTaken(wrapped))
	assert.True(t, IsBusinessRule(wrapped))
	assert.Equal(t, "book: Seat 5 is already booked for this bus.", wrapped.Error())

	internal := InternalError{Msg: "x", Err: ErrTicketCollision}
	assert.True(t, IsInternal(internal))
	assert.False(t, IsBusinessRule(internal))
	assert.ErrorIs(t, internal, ErrTicketCollision)
}

func TestCapacityMessages(t *testing.T) {
	assert.Equal(t, "Bus is fully booked", CapacityExceededError{Resource: "bus"}.Error())
	assert.Equal(t, "No rooms available at this hotel", CapacityExceededError{Resource: "hotel"}.Error())
}
