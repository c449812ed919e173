package worker

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"go.uber.org/zap"
)

// HoldExpirer is the booking operation the worker drives.
type HoldExpirer interface {
	ExpireHolds(ctx context.Context) ([]domain.Booking, error)
}

type ExpiryWorkerConfig struct {
	ScanInterval time.Duration
	// BatchSize is informational here; the expirer applies its own limit.
	BatchSize int
}

func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: 5 * time.Second,
		BatchSize:    100,
	}
}

type ExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	TotalReleased    int64     `json:"total_released"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
	Failures         int64     `json:"failures"`
}

// ExpiryWorker periodically expires lapsed holds and releases their seats.
type ExpiryWorker struct {
	expirer HoldExpirer
	config  *ExpiryWorkerConfig
	log     *logger.Logger

	mu               sync.Mutex
	running          bool
	totalExpired     int64
	totalReleased    int64
	lastScanTime     time.Time
	lastExpiredCount int
	failures         int64
}

func NewExpiryWorker(expirer HoldExpirer, log *logger.Logger, config *ExpiryWorkerConfig) *ExpiryWorker {
	if config == nil {
		config = DefaultExpiryWorkerConfig()
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = DefaultExpiryWorkerConfig().ScanInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ExpiryWorker{expirer: expirer, config: config, log: log}
}

// Run scans immediately and then every ScanInterval until ctx is done.
func (w *ExpiryWorker) Run(ctx context.Context) {
	w.setRunning(true)
	defer w.setRunning(false)

	w.log.Info("expiry worker started", zap.Duration("interval", w.config.ScanInterval))
	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	for {
		w.RunOnce(ctx)
		select {
		case <-ctx.Done():
			w.log.Info("expiry worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep and returns how many holds expired.
func (w *ExpiryWorker) RunOnce(ctx context.Context) int {
	expired, err := w.expirer.ExpireHolds(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastScanTime = time.Now()
	if err != nil {
		w.failures++
		w.lastExpiredCount = 0
		w.log.ErrorContext(ctx, "expire holds failed", zap.Error(err))
		return 0
	}

	released := 0
	for _, b := range expired {
		released += len(b.SeatIDs)
	}
	w.totalExpired += int64(len(expired))
	w.totalReleased += int64(released)
	w.lastExpiredCount = len(expired)
	if len(expired) > 0 {
		w.log.InfoContext(ctx, "expired holds", zap.Int("bookings", len(expired)), zap.Int("seats", released))
	}
	return len(expired)
}

func (w *ExpiryWorker) GetStats() ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		TotalReleased:    w.totalReleased,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
		Failures:         w.failures,
	}
}

func (w *ExpiryWorker) setRunning(running bool) {
	w.mu.Lock()
	w.running = running
	w.mu.Unlock()
}
