package cache

import (
	"context"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"go.uber.org/zap"
)

// LayoutCache keeps one layout per package together with a version that every
// invalidation bumps. SetLayout stores nothing when the version has moved past
// the one read before loading, so a slow reader cannot put back a layout that
// a concurrent write already replaced.
type LayoutCache interface {
	GetLayout(ctx context.Context, packageID string) (*domain.SeatLayout, error)
	LayoutVersion(ctx context.Context, packageID string) (int64, error)
	SetLayout(ctx context.Context, layout *domain.SeatLayout, version int64) error
	InvalidateLayout(ctx context.Context, packageID string) error
}

// LayoutStore reads layouts through the cache. Writes always go to the
// repository first and then drop the cached copy. Seat claims never trust the
// cache: the repository compare-and-swap is authoritative, and FreshReads gives
// them a view that reads the repository directly.
type LayoutStore struct {
	repo  repository.SeatLayoutRepository
	cache LayoutCache
	log   *logger.Logger
}

func NewLayoutStore(repo repository.SeatLayoutRepository, cache LayoutCache, log *logger.Logger) *LayoutStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &LayoutStore{repo: repo, cache: cache, log: log}
}

func (s *LayoutStore) Save(ctx context.Context, layout *domain.SeatLayout) error {
	if err := s.repo.Save(ctx, layout); err != nil {
		return err
	}
	s.invalidate(ctx, layout.PackageID)
	return nil
}

func (s *LayoutStore) GetLayout(ctx context.Context, packageID string) (*domain.SeatLayout, error) {
	if cached, err := s.cache.GetLayout(ctx, packageID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.log.WarnContext(ctx, "layout cache read failed", zap.String("package_id", packageID), zap.Error(err))
	}

	version, verr := s.cache.LayoutVersion(ctx, packageID)
	layout, err := s.repo.GetLayout(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		s.log.WarnContext(ctx, "layout cache version read failed", zap.String("package_id", packageID), zap.Error(verr))
		return layout, nil
	}
	if err := s.cache.SetLayout(ctx, layout, version); err != nil {
		s.log.WarnContext(ctx, "layout cache write failed", zap.String("package_id", packageID), zap.Error(err))
	}
	return layout, nil
}

// FreshReads returns a view of the store whose reads skip the cache. Its
// writes still invalidate the cached copy.
func (s *LayoutStore) FreshReads() repository.SeatLayoutRepository {
	return freshReads{s}
}

type freshReads struct {
	*LayoutStore
}

func (f freshReads) GetLayout(ctx context.Context, packageID string) (*domain.SeatLayout, error) {
	return f.repo.GetLayout(ctx, packageID)
}

func (s *LayoutStore) CompareAndSwapSeatStatus(ctx context.Context, packageID, seatID string, expected domain.SeatStatus, change domain.SeatChange) error {
	if err := s.repo.CompareAndSwapSeatStatus(ctx, packageID, seatID, expected, change); err != nil {
		return err
	}
	s.invalidate(ctx, packageID)
	return nil
}

func (s *LayoutStore) invalidate(ctx context.Context, packageID string) {
	if err := s.cache.InvalidateLayout(context.WithoutCancel(ctx), packageID); err != nil {
		s.log.WarnContext(ctx, "layout cache invalidation failed", zap.String("package_id", packageID), zap.Error(err))
	}
}

var _ repository.SeatLayoutRepository = (*LayoutStore)(nil)
