package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisDenylist struct {
	redis *redis.Client
}

func NewRedisDenylist(rds *redis.Client) *RedisDenylist {
	return &RedisDenylist{redis: rds}
}

func (d *RedisDenylist) key(tokenID string) string {
	return keyPrefix + "revoked:" + tokenID
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.redis.Set(ctx, d.key(tokenID), 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.redis.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
