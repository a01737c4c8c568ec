package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements a Redis-backed cache so badge and metric memoization
// is shared across panel instances.
type Redis struct {
	client *redis.Client
	config Config
}

// RedisOptions holds Redis-specific connection settings
type RedisOptions struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Config holds common cache configuration
	Config Config
}

// DefaultRedisOptions returns options for a local unauthenticated Redis
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Addr:   "localhost:6379",
		Config: DefaultConfig(),
	}
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{
		client: client,
		config: opts.Config,
	}, nil
}

// NewRedisWithClient wraps an existing client, for hosts that manage their
// own Redis connection pool.
func NewRedisWithClient(client *redis.Client, config Config) *Redis {
	return &Redis{
		client: client,
		config: config,
	}
}

// Get retrieves a value from the cache
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.config.Prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss{Key: key}
		}
		return nil, err
	}

	return value, nil
}

// Set stores a value in the cache with a TTL
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}

	return r.client.Set(ctx, r.config.Prefix+key, value, ttl).Err()
}

// Delete removes a value from the cache
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.config.Prefix+key).Err()
}

// Flush removes all values under the configured prefix
func (r *Redis) Flush(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.config.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the underlying Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
