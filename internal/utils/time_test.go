package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketDateUsesUTC(t *testing.T) {
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)
	// 2025-06-17 02:00 local is still the 16th in UTC
	local := time.Date(2025, 6, 17, 2, 0, 0, 0, kathmandu)
	assert.Equal(t, "20250616", TicketDate(local))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-06-16 ")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, "2025-06-16", FormatDate(d))

	_, err = ParseDate("16/06/2025")
	assert.Error(t, err)
}

func TestDateWithin(t *testing.T) {
	assert.True(t, DateWithin("2025-07-01", "2025-07-01", "2025-07-31"))
	assert.True(t, DateWithin("2025-07-31", "2025-07-01", "2025-07-31"))
	assert.False(t, DateWithin("2025-08-01", "2025-07-01", "2025-07-31"))
	assert.False(t, DateWithin("bad", "2025-07-01", "2025-07-31"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Ram Bahadur", NormalizeSpace("  Ram   Bahadur "))
	assert.Equal(t, "ram@example.com", NormalizeEmail(" Ram@Example.COM "))
}

func TestRequestIDContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFrom(context.Background()))
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
}
