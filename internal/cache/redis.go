package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	layoutTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, layoutTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		layoutTTL: layoutTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetLayout returns nil without error on a miss.
func (c *RedisCache) GetLayout(ctx context.Context, packageID string) (*domain.SeatLayout, error) {
	data, err := c.client.Get(ctx, layoutKey(packageID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var layout domain.SeatLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, err
	}
	return &layout, nil
}

func (c *RedisCache) LayoutVersion(ctx context.Context, packageID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(packageID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetLayout writes the layout only while the version key still holds version.
// A concurrent invalidation aborts the transaction and the write is dropped.
func (c *RedisCache) SetLayout(ctx context.Context, layout *domain.SeatLayout, version int64) error {
	payload, err := json.Marshal(layout)
	if err != nil {
		return err
	}
	vkey := versionKey(layout.PackageID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, layoutKey(layout.PackageID), payload, c.layoutTTL)
			return nil
		})
		return err
	}, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateLayout bumps the version before dropping the cached copy.
func (c *RedisCache) InvalidateLayout(ctx context.Context, packageID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(packageID))
		pipe.Del(ctx, layoutKey(packageID))
		return nil
	})
	return err
}

func layoutKey(packageID string) string {
	return fmt.Sprintf("cache:layout:%s", packageID)
}

func versionKey(packageID string) string {
	return fmt.Sprintf("cache:layout:%s:version", packageID)
}
