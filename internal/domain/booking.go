package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusHold      BookingStatus = "hold"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// Terminal statuses never change again and own no seats.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusExpired
}

type GuestType string

const (
	GuestAdult  GuestType = "adult"
	GuestCouple GuestType = "couple"
	GuestChild  GuestType = "child"
)

func (t GuestType) Valid() bool {
	switch t {
	case GuestAdult, GuestCouple, GuestChild:
		return true
	}
	return false
}

type Guest struct {
	Name   string    `json:"name"`
	Phone  string    `json:"phone,omitempty"`
	Email  string    `json:"email,omitempty"`
	Age    int       `json:"age,omitempty"`
	Type   GuestType `json:"type"`
	Gender string    `json:"gender,omitempty"`
	SeatID string    `json:"seat_id,omitempty"`
}

// Named reports whether the guest counts for pricing and seat requirements.
func (g Guest) Named() bool {
	return strings.TrimSpace(g.Name) != ""
}

type PackageSnapshot struct {
	ID             string    `json:"id"`
	AgencyID       string    `json:"agency_id"`
	Title          string    `json:"title"`
	PricePerPerson int64     `json:"price_per_person"`
	CouplePrice    *int64    `json:"couple_price,omitempty"`
	ChildPrice     *int64    `json:"child_price,omitempty"`
	StartDate      time.Time `json:"start_date"`
}

type PackageBooking struct {
	PackageID       string          `json:"package_id"`
	Package         PackageSnapshot `json:"package"`
	Guests          []Guest         `json:"guests"`
	BoardingPoint   string          `json:"boarding_point,omitempty"`
	DroppingPoint   string          `json:"dropping_point,omitempty"`
	SelectedSeatIDs []string        `json:"selected_seat_ids"`
	Subtotal        int64           `json:"subtotal"`
}

// NamedGuests returns the guests with a non-blank name, in list order.
func (p PackageBooking) NamedGuests() []Guest {
	named := make([]Guest, 0, len(p.Guests))
	for _, g := range p.Guests {
		if g.Named() {
			named = append(named, g)
		}
	}
	return named
}

type Booking struct {
	ID             string        `json:"id"`
	CheckoutID     string        `json:"checkout_id"`
	AgencyID       string        `json:"agency_id"`
	PackageID      string        `json:"package_id"`
	Status         BookingStatus `json:"status"`
	Guests         []Guest       `json:"guests"`
	SeatIDs        []string      `json:"seat_ids"`
	BoardingPoint  string        `json:"boarding_point,omitempty"`
	DroppingPoint  string        `json:"dropping_point,omitempty"`
	Subtotal       int64         `json:"subtotal"`
	DiscountAmount int64         `json:"discount_amount"`
	TotalAmount    int64         `json:"total_amount"`
	AdvancePaid    int64         `json:"advance_paid"`
	DueAmount      int64         `json:"due_amount"`
	PaymentMethod  string        `json:"payment_method,omitempty"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
	HoldExpiresAt  *time.Time    `json:"hold_expires_at,omitempty"`
	CreatedBy      string        `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type Role string

const (
	RoleAgencyAdmin Role = "agency_admin"
	RoleSalesAgent  Role = "sales_agent"
)

type Initiator struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

type PaymentMethod struct {
	Name        string `json:"name"`
	RequiresTxn bool   `json:"requires_txn"`
}

type AgencyBookingSettings struct {
	AgencyID                 string  `json:"agency_id" yaml:"-"`
	MinimumAdvanceAmount     int64   `json:"minimum_advance_amount" yaml:"minimum_advance_amount"`
	MinimumAdvancePercentage float64 `json:"minimum_advance_percentage" yaml:"minimum_advance_percentage"`
	UsePercentage            bool    `json:"use_percentage" yaml:"use_percentage"`
	HoldDurationMinutes      int     `json:"hold_duration_minutes" yaml:"hold_duration_minutes"`
	AllowAgentHold           bool    `json:"allow_agent_hold" yaml:"allow_agent_hold"`
	RequireTransactionID     bool    `json:"require_transaction_id" yaml:"require_transaction_id"`
}

// PaymentUpdate settles a hold: it carries the new status and money fields.
type PaymentUpdate struct {
	Status         BookingStatus `json:"status"`
	AdvancePaid    int64         `json:"advance_paid"`
	DueAmount      int64         `json:"due_amount"`
	PaymentMethod  string        `json:"payment_method"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
}

// LeadGuest is the first named guest, used as the booking contact.
func (b Booking) LeadGuest() (Guest, bool) {
	for _, g := range b.Guests {
		if g.Named() {
			return g, true
		}
	}
	return Guest{}, false
}
