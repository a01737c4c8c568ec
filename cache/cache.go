// Package cache provides the memoization backends used by the menu badge
// and dashboard metric layers. Values are opaque byte payloads with TTLs;
// both an in-memory and a Redis backend are provided.
package cache

import (
	"context"
	"time"

	"github.com/steward-admin/steward/config"
)

// Cache defines the interface for all cache backends
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// Flush removes all values from the cache
	Flush(ctx context.Context) error
}

// Config holds common configuration for cache backends
type Config struct {
	// DefaultTTL applies when Set is called with a zero TTL
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() Config {
	return ConfigFrom(config.Default().Cache)
}

// ConfigFrom maps the host cache configuration onto a backend config.
// The badge TTL doubles as the default for keys set without one; metric
// keys carry their own TTL through the dashboard layer.
func ConfigFrom(cfg config.CacheConfig) Config {
	return Config{
		DefaultTTL: cfg.BadgeTTL,
		Prefix:     cfg.Prefix,
	}
}

// ErrMiss is returned when a key is not found in the cache
type ErrMiss struct {
	Key string
}

func (e ErrMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsMiss checks if an error is a cache miss
func IsMiss(err error) bool {
	_, ok := err.(ErrMiss)
	return ok
}

// Remember returns the cached payload under key, or computes it, stores it
// with the given TTL, and returns it. Compute errors are passed through
// without poisoning the cache.
func Remember(ctx context.Context, c Cache, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if cached, err := c.Get(ctx, key); err == nil {
		return cached, nil
	} else if !IsMiss(err) {
		return nil, err
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		return nil, err
	}

	return value, nil
}
