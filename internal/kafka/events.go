package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingHeld      = "booking_held"
	EventHoldConfirmed    = "hold_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventHoldExpired      = "hold_expired"
)

type EventGuest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
	SeatID string `json:"seat_id,omitempty"`
}

type BookingEvent struct {
	Type          string       `json:"type"`
	BookingID     string       `json:"booking_id"`
	CheckoutID    string       `json:"checkout_id"`
	AgencyID      string       `json:"agency_id"`
	PackageID     string       `json:"package_id"`
	Status        string       `json:"status"`
	SeatIDs       []string     `json:"seat_ids"`
	LeadGuest     string       `json:"lead_guest,omitempty"`
	Guests        []EventGuest `json:"guests"`
	TotalAmount   int64        `json:"total_amount"`
	AdvancePaid   int64        `json:"advance_paid"`
	DueAmount     int64        `json:"due_amount"`
	HoldExpiresAt *time.Time   `json:"hold_expires_at,omitempty"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b domain.Booking, at time.Time) BookingEvent {
	guests := make([]EventGuest, 0, len(b.Guests))
	for _, g := range b.Guests {
		guests = append(guests, EventGuest{Name: g.Name, Phone: g.Phone, Email: g.Email, SeatID: g.SeatID})
	}
	var lead string
	if g, ok := b.LeadGuest(); ok {
		lead = g.Name
	}
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		CheckoutID:    b.CheckoutID,
		AgencyID:      b.AgencyID,
		PackageID:     b.PackageID,
		Status:        string(b.Status),
		SeatIDs:       b.SeatIDs,
		LeadGuest:     lead,
		Guests:        guests,
		TotalAmount:   b.TotalAmount,
		AdvancePaid:   b.AdvancePaid,
		DueAmount:     b.DueAmount,
		HoldExpiresAt: b.HoldExpiresAt,
		OccurredAt:    at.UTC(),
	}
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if event.Type == "" || event.BookingID == "" {
		return BookingEvent{}, fmt.Errorf("decode booking event: missing type or booking id")
	}
	return event, nil
}
