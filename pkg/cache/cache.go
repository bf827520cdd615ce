package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/metrics"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/redis"
	"golang.org/x/sync/singleflight"
)

// Remote is the external tier. *redis.Client satisfies it.
type Remote interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}

// Options configures a Cache.
type Options struct {
	// Remote is optional; nil keeps every operation in-process.
	Remote        Remote
	Logger        *logger.Logger
	Metrics       *metrics.CoreMetrics
	SweepInterval time.Duration
	// Now overrides the clock used by the in-process tier.
	Now func() time.Time
}

// Cache is the two-tier shop-scoped cache. Backend failures are never
// returned to callers: reads degrade to misses and writes to no-ops, and the
// first connection failure switches every operation to the in-process tier
// for the rest of the process lifetime.
type Cache struct {
	remote        Remote
	memory        *memoryStore
	fallback      atomic.Bool
	group         singleflight.Group
	logg          *logger.Logger
	metrics       *metrics.CoreMetrics
	sweepInterval time.Duration
}

// New constructs a Cache. Call Start to run the sweeper and Close on shutdown.
func New(opts Options) *Cache {
	c := &Cache{
		remote:        opts.Remote,
		memory:        newMemoryStore(opts.Now),
		logg:          opts.Logger,
		metrics:       opts.Metrics,
		sweepInterval: opts.SweepInterval,
	}
	if c.remote == nil {
		c.fallback.Store(true)
	}
	return c
}

// Start launches the background sweep of the in-process tier.
func (c *Cache) Start(ctx context.Context) {
	c.memory.start(ctx, c.sweepInterval)
}

// Close stops the sweeper.
func (c *Cache) Close() {
	c.memory.close()
}

// UsingFallback reports whether operations are served by the in-process tier.
func (c *Cache) UsingFallback() bool {
	return c.fallback.Load()
}

// Get decodes the value stored at key into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	raw, ok := c.getRaw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.warn(ctx, key, "cache entry decode failed", err)
		c.Delete(ctx, key)
		return false
	}
	return true
}

// Set stores value at key for ttl. A zero ttl keeps the entry until deleted.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.warn(ctx, key, "cache entry encode failed", err)
		return
	}
	if c.remoteActive() {
		if err := c.remote.Set(ctx, key, raw, ttl); err == nil {
			return
		} else if !c.degrade(ctx, key, err) {
			return
		}
	}
	c.memory.set(key, raw, ttl)
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c.remoteActive() {
		if _, err := c.remote.Del(ctx, key); err == nil {
			return
		} else if !c.degrade(ctx, key, err) {
			return
		}
	}
	c.memory.delete(key)
}

// DeletePattern removes every key matching the glob and returns the count removed.
// The error is always nil; it is kept so call sites read like any other store.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if c.remoteActive() {
		n, err := c.remote.DeletePattern(ctx, pattern)
		if err == nil {
			return int(n), nil
		}
		if !c.degrade(ctx, pattern, err) {
			return 0, nil
		}
	}
	return c.memory.deletePattern(pattern), nil
}

// Invalidate deletes every pattern, logging the total removed.
func (c *Cache) Invalidate(ctx context.Context, patterns ...string) int {
	total := 0
	for _, pattern := range patterns {
		n, _ := c.DeletePattern(ctx, pattern)
		total += n
	}
	if c.logg != nil {
		c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
			"patterns": patterns,
			"removed":  total,
		}), "cache invalidated")
	}
	return total
}

// GetOrSet implements cache-aside: a hit returns the cached value without
// calling fn; a miss calls fn once per key across concurrent callers, stores
// the result for ttl, and returns it. Errors from fn are returned and nothing
// is cached.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		var again T
		if c.Get(ctx, key, &again) {
			return again, nil
		}
		computed, err := fn(ctx)
		if err != nil {
			return computed, err
		}
		c.Set(ctx, key, computed, ttl)
		return computed, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

func (c *Cache) getRaw(ctx context.Context, key string) ([]byte, bool) {
	if c.remoteActive() {
		value, err := c.remote.Get(ctx, key)
		switch {
		case err == nil:
			c.metrics.IncCacheHit(metrics.TierRedis)
			return []byte(value), true
		case errors.Is(err, redis.Nil):
			c.metrics.IncCacheMiss(metrics.TierRedis)
			return nil, false
		case !c.degrade(ctx, key, err):
			return nil, false
		}
	}
	value, ok := c.memory.get(key)
	if ok {
		c.metrics.IncCacheHit(metrics.TierMemory)
	} else {
		c.metrics.IncCacheMiss(metrics.TierMemory)
	}
	return value, ok
}

func (c *Cache) remoteActive() bool {
	return c.remote != nil && !c.fallback.Load()
}

// degrade handles a remote error. Connection failures flip the sticky fallback
// and return true so the caller retries against memory. Anything else, a
// cancelled context or a command the server rejected, is a miss.
func (c *Cache) degrade(ctx context.Context, key string, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if !redis.IsConnError(err) {
		c.warn(ctx, key, "external cache command failed", err)
		return false
	}
	if c.fallback.CompareAndSwap(false, true) {
		c.metrics.IncCacheFallback()
		c.warn(ctx, key, "external cache unavailable, switching to in-process cache", err)
	}
	return true
}

func (c *Cache) warn(ctx context.Context, key, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.WarnErr(c.logg.WithField(ctx, "cache_key", key), msg, err)
}
