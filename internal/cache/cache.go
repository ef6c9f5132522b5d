// Package cache is a Redis cache-aside layer for API responses. A Cache
// without a client is valid and every operation is a no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"trendforge/internal/logging"
)

// DefaultTTL applies when New is given a non-positive ttl.
const DefaultTTL = 10 * time.Minute

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redisURL. Empty URLs, bad URLs and failed pings disable caching.
func New(redisURL string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if redisURL == "" {
		logging.Info("redis_disabled", map[string]any{"reason": "no url configured"})
		return &Cache{ttl: ttl}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Warn("redis_disabled", map[string]any{"reason": "invalid url", "error": err.Error()})
		return &Cache{ttl: ttl}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logging.Warn("redis_disabled", map[string]any{"reason": "ping failed", "error": err.Error()})
		return &Cache{ttl: ttl}
	}

	logging.Info("redis_connected", nil)
	return NewWithClient(rdb, ttl)
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a client is configured.
func (c *Cache) Enabled() bool { return c != nil && c.rdb != nil }

// Get returns the cached bytes for key, or nil if not cached.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.Enabled() {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// SetJSON stores v under key for the cache ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// Delete removes keys, typically after a new plan is stored.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// OpportunitiesKey is the cache key of a channel's ranked list.
func OpportunitiesKey(channelID string) string { return "trendforge:opportunities:" + channelID }
