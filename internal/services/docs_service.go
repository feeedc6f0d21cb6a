package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DocsService renders e-ticket PDFs for a user's own bookings.
type DocsService struct {
	Store  repositories.Store
	Loader func(ctx context.Context, userID, bookingID string) (ticketDocData, error)
}

type ticketDocData struct {
	View  models.TrackingView
	Price decimal.Decimal
}

func (s DocsService) ETicket(ctx context.Context, userID, bookingID string) ([]byte, string, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, "", err
	}
	if err := requireID("bookingId", bookingID); err != nil {
		return nil, "", err
	}
	data, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, "", internalErr(ctx, "load e-ticket", logrus.Fields{"user_id": userID, "booking_id": bookingID}, err)
	}
	pdf, name, err := buildETicketPDF(data)
	if err != nil {
		return nil, "", internalErr(ctx, "render e-ticket", logrus.Fields{"booking_id": bookingID}, err)
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "docs", "generate_eticket", "ticket="+data.View.TicketNumber)
	return pdf, name, nil
}

func (s DocsService) load(ctx context.Context, userID, bookingID string) (ticketDocData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, userID, bookingID)
	}
	var out ticketDocData
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		b, err := tx.Bookings().Get(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != userID {
			return domain.NotFoundError{Resource: "booking"}
		}
		view, err := trackingView(ctx, tx, b)
		if err != nil {
			return err
		}
		out = ticketDocData{View: view, Price: b.Price}
		return nil
	})
	return out, err
}

func buildETicketPDF(d ticketDocData) ([]byte, string, error) {
	v := d.View
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+v.TicketNumber, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "NEELOSEWA E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Ticket No   : %s", v.TicketNumber),
		fmt.Sprintf("Status      : %s", v.Status),
		fmt.Sprintf("Booked On   : %s", utils.FormatDateTime(v.BookedAt)),
	}
	if v.ItemType == models.ItemBus {
		lines = append(lines,
			fmt.Sprintf("Operator    : %s", safe(v.Operator, "-")),
			fmt.Sprintf("Route       : %s -> %s", safe(v.From, "-"), safe(v.To, "-")),
			fmt.Sprintf("Departure   : %s %s", safe(v.TravelDate, "-"), safe(v.DepartureTime, "-")),
			fmt.Sprintf("Arrival     : %s", safe(v.Arrival, "-")),
			fmt.Sprintf("Passenger   : %s", safe(v.PassengerName, "-")),
			fmt.Sprintf("Seat        : %d", v.SeatNumber),
		)
	} else {
		lines = append(lines,
			fmt.Sprintf("Hotel       : %s", safe(v.HotelName, "-")),
			fmt.Sprintf("Location    : %s", safe(v.Location, "-")),
			fmt.Sprintf("Stay        : %s to %s", safe(v.CheckInDate, "-"), safe(v.CheckOutDate, "-")),
			fmt.Sprintf("Lead Guest  : %s", safe(v.LeadGuestName, "-")),
			fmt.Sprintf("Guests      : %d", v.NumGuests),
		)
	}
	lines = append(lines, fmt.Sprintf("Amount Paid : %s", utils.FormatRupees(d.Price)))
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	note := "Show this ticket when boarding. Cancellations are refunded at 90% of the amount paid."
	if v.ItemType == models.ItemHotel {
		note = "Show this voucher at check-in. One voucher covers one room. Cancellations are refunded at 90% of the amount paid."
	}
	pdf.MultiCell(0, 6, note, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(v.TicketNumber)), nil
}

func safe(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func safeFilenamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
