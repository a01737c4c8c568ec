// Package dashboard provides the metric cards an admin frontend renders:
// single aggregate values with previous-range comparison, time-bucketed
// trends, and group-by partitions. Metrics run against a Querier and can
// memoize their payloads through the cache layer.
package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/steward-admin/steward/cache"
	"github.com/steward-admin/steward/resource"
)

// Aggregate selects the SQL aggregate a metric computes
type Aggregate string

const (
	Count Aggregate = "COUNT"
	Sum   Aggregate = "SUM"
	Avg   Aggregate = "AVG"
	Min   Aggregate = "MIN"
	Max   Aggregate = "MAX"
)

// Range is a selectable reporting window ending now
type Range struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// DefaultRanges are the windows offered when a card declares none
func DefaultRanges() []Range {
	return []Range{
		{Key: "7", Label: "7 Days", Days: 7},
		{Key: "30", Label: "30 Days", Days: 30},
		{Key: "60", Label: "60 Days", Days: 60},
		{Key: "90", Label: "90 Days", Days: 90},
	}
}

// Card is a renderable dashboard metric
type Card interface {
	// Key identifies the card for caching and frontend routing
	Key() string

	// Serialize computes the card payload for the given range
	Serialize(ctx context.Context, q resource.Querier, rng Range) (map[string]any, error)
}

// Cached wraps a card so its JSON payload memoizes through the cache,
// keyed per range.
type Cached struct {
	card  Card
	cache cache.Cache
	ttl   time.Duration
}

// WithCache memoizes a card's payloads with the given TTL
func WithCache(card Card, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{card: card, cache: c, ttl: ttl}
}

// Key identifies the underlying card
func (c *Cached) Key() string { return c.card.Key() }

// Serialize returns the cached payload or computes and stores it
func (c *Cached) Serialize(ctx context.Context, q resource.Querier, rng Range) (map[string]any, error) {
	key := "dashboard:" + c.card.Key() + ":" + rng.Key

	payload, err := cache.Remember(ctx, c.cache, key, c.ttl,
		func(ctx context.Context) ([]byte, error) {
			computed, err := c.card.Serialize(ctx, q, rng)
			if err != nil {
				return nil, err
			}
			return json.Marshal(computed)
		})
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// window returns the [from, to) bounds for a range ending at now
func window(now time.Time, rng Range) (from, to time.Time) {
	to = now
	from = now.AddDate(0, 0, -rng.Days)
	return from, to
}

// previousWindow returns the same-length window immediately before
func previousWindow(now time.Time, rng Range) (from, to time.Time) {
	to = now.AddDate(0, 0, -rng.Days)
	from = to.AddDate(0, 0, -rng.Days)
	return from, to
}
