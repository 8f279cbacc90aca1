// Package cache wraps the Redis client and a small JSON object cache used
// for product detail lookups during exports.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client and verifies connectivity.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// ErrMiss reports a cache miss.
var ErrMiss = errors.New("cache miss")

// JSONCache stores JSON-encoded values under a namespace prefix with a TTL.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJSONCache constructs a JSONCache. A nil client disables caching; Get
// then always misses and Set is a no-op.
func NewJSONCache(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *JSONCache) key(k string) string { return c.prefix + ":" + k }

// Get unmarshals the cached value for key into target.
func (c *JSONCache) Get(ctx context.Context, key string, target any) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("platform/cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		// A corrupt entry behaves like a miss so callers refetch.
		return ErrMiss
	}
	return nil
}

// Set stores value under key for the configured TTL.
func (c *JSONCache) Set(ctx context.Context, key string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("platform/cache: marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}
