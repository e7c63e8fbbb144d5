// Package cache provides the fingerprint seen-set implementations. The
// cache is advisory: a miss only means the document store must be asked.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
	infraconfig "github.com/finkraft/expense-exporter/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const fingerprintKeyPrefix = "invoice:fingerprint:"

// RedisFingerprintCache implements pipeline.FingerprintCache using Redis.
// Suitable when multiple exporter instances share duplicate state.
type RedisFingerprintCache struct {
	client    *redis.Client
	keyPrefix string
}

var _ pipeline.FingerprintCache = (*RedisFingerprintCache)(nil)

// NewRedisFingerprintCache creates a Redis-backed fingerprint cache
func NewRedisFingerprintCache(cfg *infraconfig.RedisConfig) (*RedisFingerprintCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisFingerprintCache{
		client:    client,
		keyPrefix: fingerprintKeyPrefix,
	}, nil
}

// NewRedisFingerprintCacheWithClient creates a cache with an existing
// Redis client. Useful for testing or when sharing a client.
func NewRedisFingerprintCacheWithClient(client *redis.Client, keyPrefix string) *RedisFingerprintCache {
	if keyPrefix == "" {
		keyPrefix = fingerprintKeyPrefix
	}
	return &RedisFingerprintCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Seen checks whether the fingerprint was marked before
func (c *RedisFingerprintCache) Seen(ctx context.Context, fingerprint string) (bool, error) {
	exists, err := c.client.Exists(ctx, c.keyPrefix+fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return exists > 0, nil
}

// Mark records the fingerprint. Keys never expire; the backing stores keep
// the content forever too.
func (c *RedisFingerprintCache) Mark(ctx context.Context, fingerprint string) error {
	if err := c.client.SetNX(ctx, c.keyPrefix+fingerprint, "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to mark fingerprint: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisFingerprintCache) Close() error {
	return c.client.Close()
}
