package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"
)

const defaultTicketRetries = 5

// TicketGenerator returns a candidate ticket number for the item kind.
type TicketGenerator func(kind models.ItemType, now time.Time) (string, error)

// GenerateTicketNumber builds <KIND>-<YYYYMMDD>-<NNNNNN> with a UTC date and a
// suffix drawn uniformly from [100000, 999999].
func GenerateTicketNumber(kind models.ItemType, now time.Time) (string, error) {
	prefix := kind.TicketPrefix()
	if prefix == "" {
		return "", fmt.Errorf("unknown ticket kind %q", kind)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("ticket suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, utils.TicketDate(now), n.Int64()+100000), nil
}

// insertWithTicket stores b under a freshly generated ticket number, drawing
// a new one whenever the number is already taken.
func insertWithTicket(ctx context.Context, tx repositories.Tx, gen TicketGenerator, retries int, b *models.Booking) error {
	if gen == nil {
		gen = GenerateTicketNumber
	}
	if retries <= 0 {
		retries = defaultTicketRetries
	}
	for attempt := 1; attempt <= retries; attempt++ {
		ticket, err := gen(b.ItemType, b.CreatedAt)
		if err != nil {
			return err
		}
		b.TicketNumber = ticket
		err = tx.Bookings().Create(ctx, *b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTicketCollision) {
			return err
		}
		utils.Logger().WithField("ticket", ticket).WithField("attempt", attempt).Warn("ticket number collision, retrying")
	}
	b.TicketNumber = ""
	return domain.InternalError{
		Msg: "could not allocate a ticket number",
		Err: fmt.Errorf("%w after %d attempts", domain.ErrTicketCollision, retries),
	}
}
