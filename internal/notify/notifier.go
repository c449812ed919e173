// Package notify turns booking events into guest-facing messages. Delivery
// itself is outside this service; messages are written to the log.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"go.uber.org/zap"
)

type Notifier struct {
	log *logger.Logger
}

func NewNotifier(log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Notifier{log: log}
}

// Handle logs one message per guest with a phone or email. Unknown event types
// are ignored.
func (n *Notifier) Handle(ctx context.Context, event kafka.BookingEvent) error {
	text, ok := Message(event)
	if !ok {
		return nil
	}
	for _, g := range event.Guests {
		if g.Phone == "" && g.Email == "" {
			continue
		}
		n.log.InfoContext(ctx, "guest notification",
			zap.String("event", event.Type),
			zap.String("booking_id", event.BookingID),
			zap.String("phone", g.Phone),
			zap.String("email", g.Email),
			zap.String("text", text))
	}
	return nil
}

// Message renders the text sent for an event, greeting the lead guest when
// the booking has one.
func Message(event kafka.BookingEvent) (string, bool) {
	text, ok := body(event)
	if !ok || event.LeadGuest == "" {
		return text, ok
	}
	return fmt.Sprintf("Dear %s, %s", event.LeadGuest, text), true
}

func body(event kafka.BookingEvent) (string, bool) {
	seats := "no assigned seats"
	if len(event.SeatIDs) > 0 {
		seats = "seats " + strings.Join(event.SeatIDs, ", ")
	}
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s for package %s is %s (%s). Paid %d, due %d.",
			event.BookingID, event.PackageID, event.Status, seats, event.AdvancePaid, event.DueAmount), true
	case kafka.EventBookingHeld:
		until := "soon"
		if event.HoldExpiresAt != nil {
			until = event.HoldExpiresAt.Format(time.RFC1123)
		}
		return fmt.Sprintf("We are holding %s on package %s until %s. Total %d.",
			seats, event.PackageID, until, event.TotalAmount), true
	case kafka.EventHoldConfirmed:
		return fmt.Sprintf("Your hold %s is confirmed (%s). Paid %d, due %d.",
			event.BookingID, seats, event.AdvancePaid, event.DueAmount), true
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s for package %s was cancelled.", event.BookingID, event.PackageID), true
	case kafka.EventHoldExpired:
		return fmt.Sprintf("Your hold %s expired and %s were released.", event.BookingID, seats), true
	}
	return "", false
}
