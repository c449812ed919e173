package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

type SeatLayoutRepository interface {
	// Save stores the layout and replaces every seat of the package. The
	// replacement is refused with ErrInvalidState while any current seat is
	// held, booked or sold, checked atomically with the replacement.
	Save(ctx context.Context, layout *domain.SeatLayout) error
	GetLayout(ctx context.Context, packageID string) (*domain.SeatLayout, error)
	CompareAndSwapSeatStatus(ctx context.Context, packageID, seatID string, expected domain.SeatStatus, change domain.SeatChange) error
}

type BookingRepository interface {
	CreateMany(ctx context.Context, bookings []domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, expected, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, id string, payment domain.PaymentUpdate) (*domain.Booking, error)
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error)
}

type SettingsRepository interface {
	GetAgencyBookingSettings(ctx context.Context, agencyID string) (*domain.AgencyBookingSettings, error)
}

// withDefaults returns the configured defaults stamped with the agency id.
func withDefaults(defaults domain.AgencyBookingSettings, agencyID string) *domain.AgencyBookingSettings {
	s := defaults
	s.AgencyID = agencyID
	return &s
}
