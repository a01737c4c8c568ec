// Package menu builds the sidebar navigation an admin frontend renders:
// items with optional badges, collapsable sections, and grouped links.
// Badge computations can be expensive (they usually count rows) and are
// memoized through the cache layer.
package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/steward-admin/steward/cache"
)

// BadgeFunc computes an item's badge text, typically a row count
type BadgeFunc func(ctx context.Context) (string, error)

// CanSeeFunc gates an entry per request context
type CanSeeFunc func(ctx context.Context) bool

// Entry is anything renderable in the menu tree
type Entry interface {
	Visible(ctx context.Context) bool
	Serialize(ctx context.Context) (map[string]any, error)
}

// BadgeType styles a badge ("info", "success", "danger", "warning")
type BadgeType string

// Item is a single navigation link
type Item struct {
	label     string
	path      string
	icon      string
	external  bool
	badge     BadgeFunc
	badgeType BadgeType
	canSee    CanSeeFunc

	cache    cache.Cache
	cacheKey string
	badgeTTL time.Duration
}

// NewItem creates a menu item linking to a path
func NewItem(label, path string) *Item {
	return &Item{label: label, path: path}
}

// Icon sets the item's icon name
func (i *Item) Icon(icon string) *Item {
	i.icon = icon
	return i
}

// External marks the path as an external URL opened in a new tab
func (i *Item) External() *Item {
	i.external = true
	return i
}

// Badge sets the badge computation with a style
func (i *Item) Badge(fn BadgeFunc, badgeType BadgeType) *Item {
	i.badge = fn
	i.badgeType = badgeType
	return i
}

// CanSee gates the item per request
func (i *Item) CanSee(fn CanSeeFunc) *Item {
	i.canSee = fn
	return i
}

// CacheBadge memoizes the badge computation under the given key
func (i *Item) CacheBadge(c cache.Cache, key string, ttl time.Duration) *Item {
	i.cache = c
	i.cacheKey = key
	i.badgeTTL = ttl
	return i
}

// Visible reports whether the item passes its authorization gate
func (i *Item) Visible(ctx context.Context) bool {
	return i.canSee == nil || i.canSee(ctx)
}

// badgeValue computes the badge, going through the cache when wired
func (i *Item) badgeValue(ctx context.Context) (string, error) {
	if i.badge == nil {
		return "", nil
	}
	if i.cache == nil {
		return i.badge(ctx)
	}

	payload, err := cache.Remember(ctx, i.cache, i.cacheKey, i.badgeTTL,
		func(ctx context.Context) ([]byte, error) {
			value, err := i.badge(ctx)
			if err != nil {
				return nil, err
			}
			return []byte(value), nil
		})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Serialize renders the item payload
func (i *Item) Serialize(ctx context.Context) (map[string]any, error) {
	payload := map[string]any{
		"label":    i.label,
		"path":     i.path,
		"icon":     i.icon,
		"external": i.external,
	}

	if i.badge != nil {
		value, err := i.badgeValue(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute badge for %s: %w", i.label, err)
		}
		payload["badge"] = map[string]any{
			"value": value,
			"type":  string(i.badgeType),
		}
	}

	return payload, nil
}

// Section is a collapsable group of entries with its own icon
type Section struct {
	label       string
	icon        string
	collapsable bool
	path        string
	canSee      CanSeeFunc
	items       []Entry
}

// NewSection creates a menu section holding entries
func NewSection(label string, items ...Entry) *Section {
	return &Section{label: label, items: items}
}

// Icon sets the section's icon name
func (s *Section) Icon(icon string) *Section {
	s.icon = icon
	return s
}

// Collapsable lets the frontend fold the section
func (s *Section) Collapsable() *Section {
	s.collapsable = true
	return s
}

// Path makes the section header itself a link
func (s *Section) Path(path string) *Section {
	s.path = path
	return s
}

// CanSee gates the section per request
func (s *Section) CanSee(fn CanSeeFunc) *Section {
	s.canSee = fn
	return s
}

// Append adds entries to the section
func (s *Section) Append(items ...Entry) *Section {
	s.items = append(s.items, items...)
	return s
}

// Visible reports whether the section passes its gate. A section with
// every child pruned stays visible only if it links somewhere itself.
func (s *Section) Visible(ctx context.Context) bool {
	if s.canSee != nil && !s.canSee(ctx) {
		return false
	}
	if s.path != "" {
		return true
	}
	for _, item := range s.items {
		if item.Visible(ctx) {
			return true
		}
	}
	return false
}

// Serialize renders the section with unauthorized children pruned
func (s *Section) Serialize(ctx context.Context) (map[string]any, error) {
	items, err := serializeVisible(ctx, s.items)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"label":       s.label,
		"icon":        s.icon,
		"path":        s.path,
		"collapsable": s.collapsable,
		"items":       items,
	}, nil
}

// Group is a labeled run of entries without section chrome
type Group struct {
	label  string
	canSee CanSeeFunc
	items  []Entry
}

// NewGroup creates a labeled group of entries
func NewGroup(label string, items ...Entry) *Group {
	return &Group{label: label, items: items}
}

// CanSee gates the group per request
func (g *Group) CanSee(fn CanSeeFunc) *Group {
	g.canSee = fn
	return g
}

// Visible reports whether the group has anything to show
func (g *Group) Visible(ctx context.Context) bool {
	if g.canSee != nil && !g.canSee(ctx) {
		return false
	}
	for _, item := range g.items {
		if item.Visible(ctx) {
			return true
		}
	}
	return false
}

// Serialize renders the group with unauthorized children pruned
func (g *Group) Serialize(ctx context.Context) (map[string]any, error) {
	items, err := serializeVisible(ctx, g.items)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"label": g.label,
		"items": items,
	}, nil
}

// Menu is the whole navigation tree
type Menu struct {
	entries []Entry
}

// New creates a menu from top-level entries
func New(entries ...Entry) *Menu {
	return &Menu{entries: entries}
}

// Append adds top-level entries
func (m *Menu) Append(entries ...Entry) *Menu {
	m.entries = append(m.entries, entries...)
	return m
}

// Serialize renders the full tree with unauthorized entries pruned
func (m *Menu) Serialize(ctx context.Context) ([]map[string]any, error) {
	return serializeVisible(ctx, m.entries)
}

// JSON renders the tree as a JSON payload
func (m *Menu) JSON(ctx context.Context) ([]byte, error) {
	payload, err := m.Serialize(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

func serializeVisible(ctx context.Context, entries []Entry) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if !entry.Visible(ctx) {
			continue
		}
		payload, err := entry.Serialize(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, nil
}
