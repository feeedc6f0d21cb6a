package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHasMinorPrecision(t *testing.T) {
	assert.True(t, HasMinorPrecision(decimal.RequireFromString("10")))
	assert.True(t, HasMinorPrecision(decimal.RequireFromString("10.25")))
	assert.False(t, HasMinorPrecision(decimal.RequireFromString("10.255")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "300.00", FormatMoney(decimal.RequireFromString("300")))
	assert.Equal(t, "Rs. 12.50", FormatRupees(decimal.RequireFromString("12.5")))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "0.01", RoundMoney(decimal.RequireFromString("0.005")).String())
	assert.Equal(t, "629.99", RoundMoney(decimal.RequireFromString("629.991")).String())
}
