package layouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/layout"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/Domenick1991/tourbooking/internal/seatmap"
	"go.uber.org/zap"
)

type LayoutUseCase interface {
	Preview(cfg domain.BusConfiguration) (*Preview, error)
	Configure(ctx context.Context, packageID string, cfg domain.BusConfiguration) (*View, error)
	Get(ctx context.Context, packageID string) (*View, error)
	BlockSeats(ctx context.Context, packageID string, seatIDs []string, reason string) (*seatmap.BulkResult, error)
	UnblockSeats(ctx context.Context, packageID string, seatIDs []string) (*seatmap.BulkResult, error)
}

// Preview is a generated layout that has not been stored.
type Preview struct {
	Configuration domain.BusConfiguration `json:"configuration"`
	Seats         []domain.Seat           `json:"seats"`
	Rows          []layout.Row            `json:"rows"`
}

// View is a stored layout plus what a seat picker needs to draw it.
type View struct {
	Layout    domain.SeatLayout         `json:"layout"`
	Rows      []layout.Row              `json:"rows"`
	Counts    map[domain.SeatStatus]int `json:"counts"`
	Available int                       `json:"available"`
}

type LayoutService struct {
	store repository.SeatLayoutRepository
	log   *logger.Logger
	now   func() time.Time
}

func NewLayoutService(store repository.SeatLayoutRepository, log *logger.Logger) *LayoutService {
	if log == nil {
		log = logger.NewNop()
	}
	return &LayoutService{store: store, log: log, now: time.Now}
}

func (s *LayoutService) Preview(cfg domain.BusConfiguration) (*Preview, error) {
	normalized, err := layout.Normalize(cfg)
	if err != nil {
		return nil, err
	}
	seats, err := layout.Generate(normalized)
	if err != nil {
		return nil, err
	}
	return &Preview{Configuration: normalized, Seats: seats, Rows: layout.Rows(seats)}, nil
}

// Configure generates and stores a fresh layout. Seat ids of the previous
// layout stop existing, so the store refuses the replacement while any seat is
// held, booked or sold.
func (s *LayoutService) Configure(ctx context.Context, packageID string, cfg domain.BusConfiguration) (*View, error) {
	next, err := layout.NewSeatLayout(packageID, cfg, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			s.log.WarnContext(ctx, "layout regeneration refused", zap.String("package_id", packageID), zap.Error(err))
			return nil, err
		}
		return nil, fmt.Errorf("save layout: %w", err)
	}
	s.log.InfoContext(ctx, "seat layout configured",
		zap.String("package_id", packageID),
		zap.String("arrangement", string(cfg.LowerDeck.Arrangement)),
		zap.Int("total_seats", next.BusConfiguration.TotalSeats))
	return newView(*next), nil
}

func (s *LayoutService) Get(ctx context.Context, packageID string) (*View, error) {
	l, err := s.store.GetLayout(ctx, packageID)
	if err != nil {
		return nil, err
	}
	return newView(*l), nil
}

// BlockSeats blocks each seat on its own; one failure does not undo the rest.
func (s *LayoutService) BlockSeats(ctx context.Context, packageID string, seatIDs []string, reason string) (*seatmap.BulkResult, error) {
	return s.bulk(ctx, packageID, seatIDs, domain.SeatAvailable, seatmap.BlockChange(reason),
		func(reg *seatmap.Registry) seatmap.BulkResult { return reg.BlockSeats(seatIDs, reason) })
}

func (s *LayoutService) UnblockSeats(ctx context.Context, packageID string, seatIDs []string) (*seatmap.BulkResult, error) {
	return s.bulk(ctx, packageID, seatIDs, domain.SeatBlocked, seatmap.ReleaseChange(),
		func(reg *seatmap.Registry) seatmap.BulkResult { return reg.UnblockSeats(seatIDs) })
}

// bulk runs the operation against a registry over the current snapshot first,
// which settles unknown, repeated and unavailable ids, then persists every
// seat that passed through the store's compare-and-swap.
func (s *LayoutService) bulk(ctx context.Context, packageID string, seatIDs []string, expected domain.SeatStatus, change domain.SeatChange, plan func(*seatmap.Registry) seatmap.BulkResult) (*seatmap.BulkResult, error) {
	if len(seatIDs) == 0 {
		return nil, domain.EmptySelection()
	}
	current, err := s.store.GetLayout(ctx, packageID)
	if err != nil {
		return nil, err
	}

	draft := plan(seatmap.NewRegistry(*current))
	res := &seatmap.BulkResult{Updated: make([]string, 0, len(draft.Updated)), Failed: draft.Failed}
	for _, id := range draft.Updated {
		if err := s.store.CompareAndSwapSeatStatus(ctx, packageID, id, expected, change); err != nil {
			res.Failed = append(res.Failed, seatmap.SeatFailure{SeatID: id, Reason: err.Error(), Err: err})
			continue
		}
		res.Updated = append(res.Updated, id)
	}
	if len(res.Failed) > 0 {
		s.log.WarnContext(ctx, "some seats were not changed",
			zap.String("package_id", packageID),
			zap.String("target", string(change.Status)),
			zap.Int("failed", len(res.Failed)))
	}
	return res, nil
}

func newView(l domain.SeatLayout) *View {
	reg := seatmap.NewRegistry(l)
	rows := reg.Rows(domain.DeckLower)
	rows = append(rows, reg.Rows(domain.DeckUpper)...)
	return &View{
		Layout:    l,
		Rows:      rows,
		Counts:    reg.StatusCounts(),
		Available: len(reg.Available()),
	}
}

var _ LayoutUseCase = (*LayoutService)(nil)
