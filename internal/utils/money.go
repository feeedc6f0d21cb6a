package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the minor-unit precision of every stored amount.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to minor units.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// HasMinorPrecision reports whether d fits in minor units without rounding.
func HasMinorPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// FormatRupees renders an amount the way receipts show it.
func FormatRupees(d decimal.Decimal) string {
	return fmt.Sprintf("Rs. %s", FormatMoney(d))
}
