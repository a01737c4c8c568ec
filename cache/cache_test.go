package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steward-admin/steward/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Minute, cfg.DefaultTTL)
	assert.Equal(t, "steward:", cfg.Prefix)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.CacheConfig{
		Prefix:    "panel:",
		BadgeTTL:  time.Minute,
		MetricTTL: 10 * time.Minute,
	})
	assert.Equal(t, "panel:", cfg.Prefix)
	assert.Equal(t, time.Minute, cfg.DefaultTTL, "badge TTL backs unscoped keys")
}

func TestErrMiss(t *testing.T) {
	err := ErrMiss{Key: "badge:users"}
	assert.Equal(t, "cache miss: badge:users", err.Error())
	assert.True(t, IsMiss(err))
	assert.False(t, IsMiss(assert.AnError))
	assert.False(t, IsMiss(nil))
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	defer c.Close()

	calls := 0
	compute := func(context.Context) ([]byte, error) {
		calls++
		return []byte("42"), nil
	}

	value, err := Remember(ctx, c, "badge:users", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), value)
	assert.Equal(t, 1, calls)

	// Second call must hit the cache
	value, err = Remember(ctx, c, "badge:users", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), value)
	assert.Equal(t, 1, calls)
}

func TestRememberComputeError(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	defer c.Close()

	boom := errors.New("query failed")
	_, err := Remember(ctx, c, "badge:orders", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	// Failed computes must not be cached
	_, err = c.Get(ctx, "badge:orders")
	assert.True(t, IsMiss(err))
}
