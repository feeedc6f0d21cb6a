package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
	layoutTicket   = "20060102"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.UTC)
}

// FormatDate formats time to YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(layoutDateTime)
}

// TicketDate is the date stamp embedded in ticket numbers.
func TicketDate(t time.Time) string {
	return t.UTC().Format(layoutTicket)
}

// DateWithin reports whether day lies in [from, to] (all YYYY-MM-DD).
func DateWithin(day, from, to string) bool {
	d, err := ParseDate(day)
	if err != nil {
		return false
	}
	f, err := ParseDate(from)
	if err != nil {
		return false
	}
	t, err := ParseDate(to)
	if err != nil {
		return false
	}
	return !d.Before(f) && !d.After(t)
}
