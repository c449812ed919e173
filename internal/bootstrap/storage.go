package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/cache"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage bundles the repositories of the configured backend.
type Storage struct {
	Layouts repository.SeatLayoutRepository
	// Seats serves seat claims: reads bypass the layout cache, writes still
	// invalidate it.
	Seats    repository.SeatLayoutRepository
	Bookings repository.BookingRepository
	Settings repository.SettingsRepository

	closers []func()
}

// OpenStorage connects to postgres (plus redis when an address is set) or
// builds in-memory repositories.
func OpenStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		layouts := repository.NewMemorySeatLayoutRepository()
		return &Storage{
			Layouts:  layouts,
			Seats:    layouts,
			Bookings: repository.NewMemoryBookingRepository(),
			Settings: repository.NewStaticSettingsRepository(cfg.Booking.AgencyDefaults, cfg.Booking.Agencies),
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	layouts := repository.NewSeatLayoutRepository(pool)
	s := &Storage{
		Layouts:  layouts,
		Seats:    layouts,
		Bookings: repository.NewBookingRepository(pool),
		Settings: repository.NewSettingsRepository(pool, cfg.Booking.AgencyDefaults),
		closers:  []func(){pool.Close},
	}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.LayoutCacheTTL())
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, layouts are read from postgres", zap.Error(err))
			_ = redisCache.Close()
		} else {
			store := cache.NewLayoutStore(layouts, redisCache, log)
			s.Layouts = store
			s.Seats = store.FreshReads()
			s.closers = append(s.closers, func() { _ = redisCache.Close() })
		}
	}
	return s, nil
}

func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
