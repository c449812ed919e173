package holdexpiry

import (
	"testing"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func TestExpiresAt(t *testing.T) {
	assert.Equal(t, base.Add(30*time.Minute), ExpiresAt(base, 30))
	assert.Equal(t, base, ExpiresAt(base, 0))
	assert.Equal(t, base, ExpiresAt(base, -5))
}

func TestIsExpired(t *testing.T) {
	deadline := base.Add(time.Hour)

	assert.False(t, IsExpired(deadline, base))
	assert.False(t, IsExpired(deadline, deadline.Add(-time.Nanosecond)))
	assert.True(t, IsExpired(deadline, deadline))
	assert.True(t, IsExpired(deadline, deadline.Add(time.Second)))
}

func TestRemaining(t *testing.T) {
	deadline := base.Add(10 * time.Minute)
	assert.Equal(t, 10*time.Minute, Remaining(deadline, base))
	assert.Zero(t, Remaining(deadline, deadline.Add(time.Minute)))
}

func TestPlanRelease(t *testing.T) {
	deadline := base.Add(time.Hour)
	hold := domain.Booking{
		ID:            "bk-1",
		PackageID:     "pkg-1",
		Status:        domain.BookingStatusHold,
		SeatIDs:       []string{"L-A1", "L-A2"},
		HoldExpiresAt: &deadline,
	}

	_, ok := PlanRelease(hold, base)
	assert.False(t, ok, "hold still running")

	plan, ok := PlanRelease(hold, deadline)
	require.True(t, ok)
	assert.Equal(t, "bk-1", plan.BookingID)
	assert.Equal(t, "pkg-1", plan.PackageID)
	assert.Equal(t, []string{"L-A1", "L-A2"}, plan.SeatIDs)
	assert.Equal(t, domain.BookingStatusExpired, plan.FinalStatus)

	plan.SeatIDs[0] = "changed"
	assert.Equal(t, "L-A1", hold.SeatIDs[0])
}

func TestPlanRelease_IgnoresNonHolds(t *testing.T) {
	deadline := base
	confirmed := domain.Booking{ID: "bk-2", Status: domain.BookingStatusConfirmed, HoldExpiresAt: &deadline}
	_, ok := PlanRelease(confirmed, base.Add(time.Hour))
	assert.False(t, ok)

	noDeadline := domain.Booking{ID: "bk-3", Status: domain.BookingStatusHold}
	_, ok = PlanRelease(noDeadline, base.Add(time.Hour))
	assert.False(t, ok)
}
