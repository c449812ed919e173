package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLayout(t *testing.T, packageID string) *domain.SeatLayout {
	t.Helper()
	cfg := domain.BusConfiguration{
		VehicleCategory: domain.VehicleBus,
		NumberOfFloors:  1,
		LowerDeck:       domain.FloorConfiguration{Arrangement: domain.Arrangement2x2, SerialStart: "A", SerialEnd: "B"},
	}
	l, err := layout.NewSeatLayout(packageID, cfg, time.Now())
	require.NoError(t, err)
	return l
}

func TestMemorySeatLayoutRepository_SaveAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySeatLayoutRepository()

	_, err := repo.GetLayout(ctx, "pkg-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.Save(ctx, sampleLayout(t, "pkg-1")))

	change := domain.SeatChange{Status: domain.SeatHeld, HeldFor: "bk-1"}
	require.NoError(t, repo.CompareAndSwapSeatStatus(ctx, "pkg-1", "L-A1", domain.SeatAvailable, change))

	err = repo.CompareAndSwapSeatStatus(ctx, "pkg-1", "L-A1", domain.SeatAvailable, change)
	assert.True(t, errors.Is(err, domain.ErrSeatUnavailable))

	err = repo.CompareAndSwapSeatStatus(ctx, "pkg-1", "L-Z9", domain.SeatAvailable, change)
	assert.True(t, errors.Is(err, domain.ErrUnknownSeat))

	got, err := repo.GetLayout(ctx, "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatHeld, got.Seats[0].Status)
	assert.Equal(t, "bk-1", got.Seats[0].HeldFor)

	got.Seats[1].Status = domain.SeatSold
	again, _ := repo.GetLayout(ctx, "pkg-1")
	assert.Equal(t, domain.SeatAvailable, again.Seats[1].Status)
}

func TestMemorySeatLayoutRepository_SaveRefusesOccupiedLayout(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySeatLayoutRepository()
	require.NoError(t, repo.Save(ctx, sampleLayout(t, "pkg-1")))
	sold := domain.SeatChange{Status: domain.SeatSold, BookedBy: &domain.Passenger{Name: "Karim"}}
	require.NoError(t, repo.CompareAndSwapSeatStatus(ctx, "pkg-1", "L-B2", domain.SeatAvailable, sold))

	err := repo.Save(ctx, sampleLayout(t, "pkg-1"))

	require.True(t, errors.Is(err, domain.ErrInvalidState))
	got, err := repo.GetLayout(ctx, "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, "L-B2", got.Seats[5].ID)
	assert.Equal(t, domain.SeatSold, got.Seats[5].Status)

	require.NoError(t, repo.CompareAndSwapSeatStatus(ctx, "pkg-1", "L-B2", domain.SeatSold, domain.SeatChange{Status: domain.SeatAvailable}))
	stale, ok := repo.Registry("pkg-1")
	require.True(t, ok)
	require.NoError(t, repo.Save(ctx, sampleLayout(t, "pkg-1")))

	err = stale.CompareAndSwap("L-A1", domain.SeatAvailable, sold)
	assert.True(t, errors.Is(err, domain.ErrUnknownSeat), "the replaced registry takes no more claims")
	got, err = repo.GetLayout(ctx, "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, got.Seats[0].Status)
}

func TestMemoryBookingRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	expires := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	bookings := []domain.Booking{
		{ID: "bk-1", Status: domain.BookingStatusHold, HoldExpiresAt: &expires, SeatIDs: []string{"L-A1"}},
		{ID: "bk-2", Status: domain.BookingStatusConfirmed},
	}
	require.NoError(t, repo.CreateMany(ctx, bookings))

	err := repo.CreateMany(ctx, []domain.Booking{{ID: "bk-3"}, {ID: "bk-1"}})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	_, err = repo.GetByID(ctx, "bk-3")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "failed batch writes nothing")

	holds, err := repo.ListExpiredHolds(ctx, expires.Add(-time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, holds)

	holds, err = repo.ListExpiredHolds(ctx, expires, 10)
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, "bk-1", holds[0].ID)

	_, err = repo.UpdateStatus(ctx, "bk-2", domain.BookingStatusHold, domain.BookingStatusExpired)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	paid, err := repo.UpdatePayment(ctx, "bk-1", domain.PaymentUpdate{
		Status: domain.BookingStatusConfirmed, AdvancePaid: 100, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, paid.Status)
	assert.Nil(t, paid.HoldExpiresAt)

	_, err = repo.UpdatePayment(ctx, "bk-1", domain.PaymentUpdate{Status: domain.BookingStatusConfirmed})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	cancelled, err := repo.UpdateStatus(ctx, "bk-1", domain.BookingStatusConfirmed, domain.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
}

func TestStaticSettingsRepository(t *testing.T) {
	repo := NewStaticSettingsRepository(
		domain.AgencyBookingSettings{HoldDurationMinutes: 30},
		map[string]domain.AgencyBookingSettings{"ag-1": {HoldDurationMinutes: 90, AllowAgentHold: true}},
	)

	s, err := repo.GetAgencyBookingSettings(context.Background(), "ag-1")
	require.NoError(t, err)
	assert.Equal(t, 90, s.HoldDurationMinutes)
	assert.Equal(t, "ag-1", s.AgencyID)

	s, err = repo.GetAgencyBookingSettings(context.Background(), "ag-2")
	require.NoError(t, err)
	assert.Equal(t, 30, s.HoldDurationMinutes)
	assert.False(t, s.AllowAgentHold)
}
