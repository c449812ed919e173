package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/seatmap"
)

// MemorySeatLayoutRepository keeps one seat registry per package. Used for the
// inmemory storage mode and in tests.
type MemorySeatLayoutRepository struct {
	mu         sync.RWMutex
	registries map[string]*seatmap.Registry
}

func NewMemorySeatLayoutRepository() *MemorySeatLayoutRepository {
	return &MemorySeatLayoutRepository{registries: make(map[string]*seatmap.Registry)}
}

// Save retires the previous registry before swapping in the new one, so a
// claim racing the replacement either lands first and blocks it or fails with
// UnknownSeat.
func (r *MemorySeatLayoutRepository) Save(_ context.Context, layout *domain.SeatLayout) error {
	reg := seatmap.NewRegistry(*layout)
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.registries[layout.PackageID]; ok {
		if err := old.Retire(); err != nil {
			return err
		}
	}
	r.registries[layout.PackageID] = reg
	return nil
}

func (r *MemorySeatLayoutRepository) GetLayout(_ context.Context, packageID string) (*domain.SeatLayout, error) {
	reg, err := r.registry(packageID)
	if err != nil {
		return nil, err
	}
	snapshot := reg.Snapshot()
	return &snapshot, nil
}

func (r *MemorySeatLayoutRepository) CompareAndSwapSeatStatus(_ context.Context, packageID, seatID string, expected domain.SeatStatus, change domain.SeatChange) error {
	reg, err := r.registry(packageID)
	if err != nil {
		return err
	}
	return reg.CompareAndSwap(seatID, expected, change)
}

// Registry exposes the live registry of a package.
func (r *MemorySeatLayoutRepository) Registry(packageID string) (*seatmap.Registry, bool) {
	reg, err := r.registry(packageID)
	return reg, err == nil
}

func (r *MemorySeatLayoutRepository) registry(packageID string) (*seatmap.Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.registries[packageID]
	if !ok {
		return nil, domain.NotFound("seat layout", packageID)
	}
	return reg, nil
}

type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]domain.Booking
	now      func() time.Time
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[string]domain.Booking), now: time.Now}
}

func (r *MemoryBookingRepository) CreateMany(_ context.Context, bookings []domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bookings {
		if _, exists := r.bookings[b.ID]; exists {
			return domain.InvalidState("booking %s already exists", b.ID)
		}
	}
	for _, b := range bookings {
		r.bookings[b.ID] = cloneBooking(b)
	}
	return nil
}

func (r *MemoryBookingRepository) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking", id)
	}
	out := cloneBooking(b)
	return &out, nil
}

func (r *MemoryBookingRepository) UpdateStatus(_ context.Context, id string, expected, status domain.BookingStatus) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.expectLocked(id, expected)
	if err != nil {
		return nil, err
	}
	b.Status = status
	b.UpdatedAt = r.now().UTC()
	r.bookings[id] = b
	out := cloneBooking(b)
	return &out, nil
}

func (r *MemoryBookingRepository) UpdatePayment(_ context.Context, id string, payment domain.PaymentUpdate) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.expectLocked(id, domain.BookingStatusHold)
	if err != nil {
		return nil, err
	}
	b.Status = payment.Status
	b.AdvancePaid = payment.AdvancePaid
	b.DueAmount = payment.DueAmount
	b.PaymentMethod = payment.PaymentMethod
	b.TransactionRef = payment.TransactionRef
	b.HoldExpiresAt = nil
	b.UpdatedAt = r.now().UTC()
	r.bookings[id] = b
	out := cloneBooking(b)
	return &out, nil
}

func (r *MemoryBookingRepository) ListExpiredHolds(_ context.Context, now time.Time, limit int) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Booking
	for _, b := range r.bookings {
		if b.Status == domain.BookingStatusHold && b.HoldExpiresAt != nil && !now.Before(*b.HoldExpiresAt) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HoldExpiresAt.Before(*out[j].HoldExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryBookingRepository) expectLocked(id string, expected domain.BookingStatus) (domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return domain.Booking{}, domain.NotFound("booking", id)
	}
	if b.Status != expected {
		return domain.Booking{}, domain.InvalidState("booking %s is %s, expected %s", id, b.Status, expected)
	}
	return b, nil
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.Guests = append([]domain.Guest(nil), b.Guests...)
	b.SeatIDs = append([]string(nil), b.SeatIDs...)
	if b.HoldExpiresAt != nil {
		t := *b.HoldExpiresAt
		b.HoldExpiresAt = &t
	}
	return b
}

// StaticSettingsRepository serves agency settings from configuration.
type StaticSettingsRepository struct {
	defaults domain.AgencyBookingSettings
	agencies map[string]domain.AgencyBookingSettings
}

func NewStaticSettingsRepository(defaults domain.AgencyBookingSettings, agencies map[string]domain.AgencyBookingSettings) *StaticSettingsRepository {
	return &StaticSettingsRepository{defaults: defaults, agencies: agencies}
}

func (r *StaticSettingsRepository) GetAgencyBookingSettings(_ context.Context, agencyID string) (*domain.AgencyBookingSettings, error) {
	if s, ok := r.agencies[agencyID]; ok {
		return withDefaults(s, agencyID), nil
	}
	return withDefaults(r.defaults, agencyID), nil
}

var (
	_ SeatLayoutRepository = (*MemorySeatLayoutRepository)(nil)
	_ BookingRepository    = (*MemoryBookingRepository)(nil)
	_ SettingsRepository   = (*StaticSettingsRepository)(nil)
)
