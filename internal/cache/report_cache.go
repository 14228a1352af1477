package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/dm-report/internal/config"
)

// ReportCache stores computed report payloads in Redis as JSON.
// A ReportCache built over a nil client is a permanent miss.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache creates a ReportCache. rdb may be nil.
func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a Redis client is behind the cache.
func (c *ReportCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Generation returns the current report generation. Payloads are stored per
// generation, so a write made under an older one is never read back.
func (c *ReportCache) Generation(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	gen, err := c.rdb.Get(ctx, config.CacheKey.ReportGenerationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// Get decodes the payload stored under key for generation gen into dst.
// It returns false on a miss.
func (c *ReportCache) Get(ctx context.Context, gen int64, key string, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	vkey := config.CacheKey.Versioned(key, gen)
	raw, err := c.rdb.Get(ctx, vkey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", vkey, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A payload we cannot read is as good as absent.
		_ = c.rdb.Del(ctx, vkey).Err()
		return false, nil
	}
	return true, nil
}

// Set stores v under key for generation gen with the configured TTL.
func (c *ReportCache) Set(ctx context.Context, gen int64, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	vkey := config.CacheKey.Versioned(key, gen)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", vkey, err)
	}
	return c.rdb.Set(ctx, vkey, raw, c.ttl).Err()
}

// Invalidate starts a new generation and drops the payloads of the previous one.
// A Set still in flight for the previous generation lands on a key nobody reads
// and expires with the TTL.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	gen, err := c.rdb.Incr(ctx, config.CacheKey.ReportGenerationKey()).Result()
	if err != nil {
		return fmt.Errorf("redis bump generation: %w", err)
	}

	keys := config.CacheKey.ReportKeys()
	stale := make([]string, 0, len(keys))
	for _, key := range keys {
		stale = append(stale, config.CacheKey.Versioned(key, gen-1))
	}
	return c.rdb.Del(ctx, stale...).Err()
}

// Ping checks the Redis connection. A disabled cache is always healthy.
func (c *ReportCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
