// Package holdexpiry defines when an unpaid hold lapses and what releasing it
// means. It runs no timers; a scheduler calls it.
package holdexpiry

import (
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

// ExpiresAt returns now + minutes. Non-positive durations expire immediately.
func ExpiresAt(now time.Time, minutes int) time.Time {
	if minutes <= 0 {
		return now
	}
	return now.Add(time.Duration(minutes) * time.Minute)
}

// IsExpired is true once now reaches holdExpiresAt.
func IsExpired(holdExpiresAt, now time.Time) bool {
	return !now.Before(holdExpiresAt)
}

// ReleasePlan is what the scheduler must do for one lapsed hold: put every seat
// back to available, then move the booking to FinalStatus.
type ReleasePlan struct {
	BookingID   string
	PackageID   string
	SeatIDs     []string
	FinalStatus domain.BookingStatus
}

// PlanRelease returns a plan for a hold booking whose deadline has passed.
// Any other booking, or a hold without a deadline, yields false.
func PlanRelease(b domain.Booking, now time.Time) (ReleasePlan, bool) {
	if b.Status != domain.BookingStatusHold || b.HoldExpiresAt == nil {
		return ReleasePlan{}, false
	}
	if !IsExpired(*b.HoldExpiresAt, now) {
		return ReleasePlan{}, false
	}
	seats := make([]string, len(b.SeatIDs))
	copy(seats, b.SeatIDs)
	return ReleasePlan{
		BookingID:   b.ID,
		PackageID:   b.PackageID,
		SeatIDs:     seats,
		FinalStatus: domain.BookingStatusExpired,
	}, true
}

// Remaining is the time left on a hold, zero when expired.
func Remaining(holdExpiresAt, now time.Time) time.Duration {
	if IsExpired(holdExpiresAt, now) {
		return 0
	}
	return holdExpiresAt.Sub(now)
}
