// Package cache holds the Redis-backed helpers: a JSON value cache for
// reference data and the revoked-token denylist.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "foodgram:"

// Cache stores JSON-encoded values with a TTL.
type Cache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisCache implements Cache on a go-redis client
type RedisCache struct {
	redis *redis.Client
}

func NewRedisCache(rds *redis.Client) *RedisCache {
	return &RedisCache{redis: rds}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// stale or foreign payload; treat as a miss
		c.redis.Del(ctx, keyPrefix+key)
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, keyPrefix+key, raw, ttl).Err()
}

// Noop never stores anything. It is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Revoke(context.Context, string, time.Time) error       { return nil }
func (Noop) IsRevoked(context.Context, string) (bool, error)       { return false, nil }

// New returns Redis-backed helpers, or Noop ones when rds is nil.
func New(rds *redis.Client) (Cache, Denylist) {
	if rds == nil {
		return Noop{}, Noop{}
	}
	return NewRedisCache(rds), NewRedisDenylist(rds)
}
