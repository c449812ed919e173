// Package seatmap owns the seats of one package's layout. Reads return copies;
// every status change goes through the compare-and-swap entry points.
package seatmap

import (
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/layout"
)

type Registry struct {
	mu      sync.RWMutex
	layout  domain.SeatLayout
	index   map[string]int
	retired bool
	now     func() time.Time
}

type SeatFailure struct {
	SeatID string `json:"seat_id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

type BulkResult struct {
	Updated []string      `json:"updated"`
	Failed  []SeatFailure `json:"failed,omitempty"`
}

// NewRegistry copies the layout; later changes to the argument are not seen.
func NewRegistry(sl domain.SeatLayout) *Registry {
	r := &Registry{
		layout: cloneLayout(sl),
		index:  make(map[string]int, len(sl.Seats)),
		now:    time.Now,
	}
	for i, s := range r.layout.Seats {
		r.index[s.ID] = i
	}
	return r
}

func (r *Registry) Seat(id string) (domain.Seat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return domain.Seat{}, false
	}
	return cloneSeat(r.layout.Seats[i]), true
}

func (r *Registry) ByDeck(deck domain.Deck) []domain.Seat {
	return r.filter(func(s domain.Seat) bool { return s.Deck == deck })
}

func (r *Registry) ByStatus(status domain.SeatStatus) []domain.Seat {
	return r.filter(func(s domain.Seat) bool { return s.Status == status })
}

func (r *Registry) Available() []domain.Seat {
	return r.ByStatus(domain.SeatAvailable)
}

func (r *Registry) StatusCounts() map[domain.SeatStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.SeatStatus]int)
	for _, s := range r.layout.Seats {
		counts[s.Status]++
	}
	return counts
}

// Lookup fails with UnknownSeat on the first id not present in the layout.
func (r *Registry) Lookup(ids []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range ids {
		if _, ok := r.index[id]; !ok {
			return domain.UnknownSeat(r.layout.PackageID, id)
		}
	}
	return nil
}

// Rows groups the seats of a deck into display rows, split at the aisle.
func (r *Registry) Rows(deck domain.Deck) []layout.Row {
	return layout.Rows(r.ByDeck(deck))
}

func (r *Registry) Snapshot() domain.SeatLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneLayout(r.layout)
}

// CompareAndSwap moves a seat from expected to change.Status atomically.
func (r *Registry) CompareAndSwap(id string, expected domain.SeatStatus, change domain.SeatChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swapLocked(id, expected, change)
}

func (r *Registry) Block(id, reason string) error {
	return r.CompareAndSwap(id, domain.SeatAvailable, BlockChange(reason))
}

func (r *Registry) Unblock(id string) error {
	return r.CompareAndSwap(id, domain.SeatBlocked, ReleaseChange())
}

// Retire freezes the registry before its layout is replaced. It fails with
// InvalidState while any seat is held, booked or sold; afterwards every swap
// reports UnknownSeat.
func (r *Registry) Retire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	occupied := 0
	for _, s := range r.layout.Seats {
		switch s.Status {
		case domain.SeatHeld, domain.SeatBooked, domain.SeatSold:
			occupied++
		}
	}
	if occupied > 0 {
		return &domain.Error{
			Kind:      domain.ErrInvalidState,
			PackageID: r.layout.PackageID,
			Msg:       fmt.Sprintf("%d occupied seats, release them before regenerating the layout", occupied),
		}
	}
	r.retired = true
	return nil
}

// BlockSeats blocks each seat independently; failures do not undo other seats.
func (r *Registry) BlockSeats(ids []string, reason string) BulkResult {
	return r.bulk(ids, func(id string) error { return r.Block(id, reason) })
}

func (r *Registry) UnblockSeats(ids []string) BulkResult {
	return r.bulk(ids, r.Unblock)
}

func (r *Registry) bulk(ids []string, apply func(string) error) BulkResult {
	res := BulkResult{Updated: make([]string, 0, len(ids))}
	for _, id := range ids {
		if err := apply(id); err != nil {
			res.Failed = append(res.Failed, SeatFailure{SeatID: id, Reason: err.Error(), Err: err})
			continue
		}
		res.Updated = append(res.Updated, id)
	}
	return res
}

func (r *Registry) swapLocked(id string, expected domain.SeatStatus, change domain.SeatChange) error {
	i, ok := r.index[id]
	if !ok || r.retired {
		return domain.UnknownSeat(r.layout.PackageID, id)
	}
	if err := Transition(r.layout.PackageID, &r.layout.Seats[i], expected, change); err != nil {
		return err
	}
	r.layout.LastUpdated = r.now().UTC()
	return nil
}

func (r *Registry) filter(keep func(domain.Seat) bool) []domain.Seat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Seat, 0, len(r.layout.Seats))
	for _, s := range r.layout.Seats {
		if keep(s) {
			out = append(out, cloneSeat(s))
		}
	}
	return out
}

func cloneSeat(s domain.Seat) domain.Seat {
	if s.BookedBy != nil {
		p := *s.BookedBy
		s.BookedBy = &p
	}
	return s
}

func cloneLayout(l domain.SeatLayout) domain.SeatLayout {
	out := l
	if l.BusConfiguration.UpperDeck != nil {
		upper := *l.BusConfiguration.UpperDeck
		out.BusConfiguration.UpperDeck = &upper
	}
	out.Seats = make([]domain.Seat, len(l.Seats))
	for i, s := range l.Seats {
		out.Seats[i] = cloneSeat(s)
	}
	return out
}
