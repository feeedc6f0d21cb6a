package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// refundRate is the share of the booking price returned on cancellation.
var refundRate = decimal.RequireFromString("0.9")

// Nights counts billable nights between two calendar dates. The range is
// taken as absolute and partial days round up; the result is at least 1.
func Nights(checkIn, checkOut time.Time) int {
	days := math.Ceil(math.Abs(checkOut.Sub(checkIn).Hours()) / 24)
	if days < 1 {
		return 1
	}
	return int(days)
}

// StayPrice is pricePerNight times nights.
func StayPrice(pricePerNight decimal.Decimal, nights int) decimal.Decimal {
	return RoundMoney(pricePerNight.Mul(decimal.NewFromInt(int64(nights))))
}

// RefundAmount applies the flat cancellation fee to a stored booking price.
func RefundAmount(price decimal.Decimal) decimal.Decimal {
	return RoundMoney(price.Mul(refundRate))
}
