package cache

import (
	"context"
	"sync"
	"time"
)

// Memory implements an in-process cache with TTL support. It is the
// default backend for single-instance deployments.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]memoryItem
	config Config
	cancel context.CancelFunc
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// expired reports whether the item's TTL has lapsed. A zero expiry
// never expires.
func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// NewMemory creates a new in-memory cache with default configuration
func NewMemory() *Memory {
	return NewMemoryWithConfig(DefaultConfig())
}

// NewMemoryWithConfig creates a new in-memory cache with custom configuration
func NewMemoryWithConfig(config Config) *Memory {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Memory{
		items:  make(map[string]memoryItem),
		config: config,
		cancel: cancel,
	}

	go m.reap(ctx)

	return m
}

// Get retrieves a value from the cache
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullKey := m.config.Prefix + key

	m.mu.RLock()
	item, ok := m.items[fullKey]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrMiss{Key: key}
	}
	if item.expired(time.Now()) {
		m.mu.Lock()
		delete(m.items, fullKey)
		m.mu.Unlock()
		return nil, ErrMiss{Key: key}
	}

	return item.value, nil
}

// Set stores a value in the cache with a TTL
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[m.config.Prefix+key] = item
	m.mu.Unlock()
	return nil
}

// Delete removes a value from the cache
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, m.config.Prefix+key)
	m.mu.Unlock()
	return nil
}

// Flush removes all values from the cache
func (m *Memory) Flush(ctx context.Context) error {
	m.mu.Lock()
	m.items = make(map[string]memoryItem)
	m.mu.Unlock()
	return nil
}

// Close stops the background reaper
func (m *Memory) Close() {
	m.cancel()
}

// reap periodically evicts expired items so abandoned badge keys do not
// accumulate for the life of the process.
func (m *Memory) reap(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

// sweep drops every expired item in one pass under the write lock
func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, item := range m.items {
		if item.expired(now) {
			delete(m.items, key)
		}
	}
}
