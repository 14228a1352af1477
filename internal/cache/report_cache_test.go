package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/dm-report/internal/config"
)

type payload struct {
	Total int64 `json:"total"`
}

func newRedisCache(t *testing.T, ttl time.Duration) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewReportCache(rdb, ttl), mr
}

func TestDisabledCacheIsAlwaysAMiss(t *testing.T) {
	c := NewReportCache(nil, 0)
	ctx := context.Background()

	if c.Enabled() {
		t.Fatal("cache without client must be disabled")
	}
	if err := c.Set(ctx, 0, "report:stats", map[string]int{"total": 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var dst map[string]int
	hit, err := c.Get(ctx, 0, "report:stats", &dst)
	if err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if gen, err := c.Generation(ctx); gen != 0 || err != nil {
		t.Fatalf("generation = %d err=%v", gen, err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestNilReceiverIsDisabled(t *testing.T) {
	var c *ReportCache
	if c.Enabled() {
		t.Fatal("nil cache must be disabled")
	}
	if hit, err := c.Get(context.Background(), 0, "k", new(int)); hit || err != nil {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
}

func TestRedisCacheSetThenGetHits(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()
	key := config.CacheKey.ReportStatsKey()

	if !c.Enabled() {
		t.Fatal("cache with client must be enabled")
	}
	var got payload
	if hit, err := c.Get(ctx, 0, key, &got); hit || err != nil {
		t.Fatalf("empty redis: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, 0, key, payload{Total: 45}); err != nil {
		t.Fatalf("set: %v", err)
	}
	hit, err := c.Get(ctx, 0, key, &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if got.Total != 45 {
		t.Fatalf("total = %d, want 45", got.Total)
	}
	if ttl := mr.TTL(config.CacheKey.Versioned(key, 0)); ttl != time.Minute {
		t.Fatalf("ttl = %v, want %v", ttl, time.Minute)
	}

	mr.FastForward(time.Minute + time.Second)
	if hit, _ := c.Get(ctx, 0, key, &got); hit {
		t.Fatal("payload outlived its ttl")
	}
}

func TestRedisCacheInvalidateDropsEveryReportKey(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	for _, key := range config.CacheKey.ReportKeys() {
		if err := c.Set(ctx, 0, key, payload{Total: 1}); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	unrelated := "session:abc"
	if err := mr.Set(unrelated, "keep"); err != nil {
		t.Fatalf("seed unrelated key: %v", err)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	for _, key := range config.CacheKey.ReportKeys() {
		if mr.Exists(config.CacheKey.Versioned(key, 0)) {
			t.Fatalf("%s survived invalidation", key)
		}
	}
	if !mr.Exists(unrelated) {
		t.Fatal("invalidate removed a key it does not own")
	}
	gen, err := c.Generation(ctx)
	if err != nil || gen != 1 {
		t.Fatalf("generation = %d err=%v, want 1", gen, err)
	}
}

func TestRedisCacheWriteUnderOldGenerationIsNeverRead(t *testing.T) {
	c, _ := newRedisCache(t, time.Minute)
	ctx := context.Background()
	key := config.CacheKey.ReportStatsKey()

	before, err := c.Generation(ctx)
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	// A reader that computed its payload before the write stores it late.
	if err := c.Set(ctx, before, key, payload{Total: 10}); err != nil {
		t.Fatalf("late set: %v", err)
	}

	current, err := c.Generation(ctx)
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	var got payload
	if hit, err := c.Get(ctx, current, key, &got); hit || err != nil {
		t.Fatalf("stale payload visible: hit=%v err=%v got=%+v", hit, err, got)
	}
}

func TestRedisCacheDropsUnreadablePayload(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()
	key := config.CacheKey.ReportTrendKey()
	stored := config.CacheKey.Versioned(key, 0)

	if err := mr.Set(stored, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got payload
	hit, err := c.Get(ctx, 0, key, &got)
	if hit || err != nil {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
	if mr.Exists(stored) {
		t.Fatal("unreadable payload was not removed")
	}
}

func TestRedisCacheReportsConnectionErrors(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	mr.Close()
	if err := c.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail once redis is gone")
	}
	if _, err := c.Get(ctx, 0, config.CacheKey.ReportStatsKey(), new(payload)); err == nil {
		t.Fatal("expected get to fail once redis is gone")
	}
}
