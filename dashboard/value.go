package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/steward-admin/steward/resource"
)

// ValueMetric is a single aggregate over a reporting window, compared
// against the same-length window before it.
type ValueMetric struct {
	key       string
	title     string
	table     string
	aggregate Aggregate
	column    string
	dateCol   string
	ranges    []Range
	now       func() time.Time
}

// NewValue creates a value card counting rows of a table. The aggregate
// and column can be changed with the builder methods.
func NewValue(key, title, table string) *ValueMetric {
	return &ValueMetric{
		key:       key,
		title:     title,
		table:     table,
		aggregate: Count,
		column:    "*",
		dateCol:   "created_at",
		ranges:    DefaultRanges(),
		now:       time.Now,
	}
}

// Sum aggregates the sum of a column instead of a row count
func (m *ValueMetric) Sum(column string) *ValueMetric {
	m.aggregate = Sum
	m.column = column
	return m
}

// Average aggregates the mean of a column
func (m *ValueMetric) Average(column string) *ValueMetric {
	m.aggregate = Avg
	m.column = column
	return m
}

// Minimum aggregates the smallest value of a column
func (m *ValueMetric) Minimum(column string) *ValueMetric {
	m.aggregate = Min
	m.column = column
	return m
}

// Maximum aggregates the largest value of a column
func (m *ValueMetric) Maximum(column string) *ValueMetric {
	m.aggregate = Max
	m.column = column
	return m
}

// DateColumn overrides the timestamp column bounding the window
func (m *ValueMetric) DateColumn(column string) *ValueMetric {
	m.dateCol = column
	return m
}

// Ranges overrides the selectable reporting windows
func (m *ValueMetric) Ranges(ranges ...Range) *ValueMetric {
	m.ranges = ranges
	return m
}

// Key identifies the card
func (m *ValueMetric) Key() string { return m.key }

func (m *ValueMetric) aggregateIn(ctx context.Context, q resource.Querier, from, to time.Time) (float64, error) {
	query := fmt.Sprintf("SELECT %s(%s) FROM %s WHERE %s >= ? AND %s < ?",
		m.aggregate, m.column, m.table, m.dateCol, m.dateCol)

	var value *float64
	if err := q.QueryRowContext(ctx, query, from, to).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to compute %s: %w", m.key, err)
	}
	if value == nil {
		// SUM/AVG over an empty window scans as NULL
		return 0, nil
	}
	return *value, nil
}

// Serialize computes the current and previous aggregates and the
// percentage change between them.
func (m *ValueMetric) Serialize(ctx context.Context, q resource.Querier, rng Range) (map[string]any, error) {
	now := m.now()

	from, to := window(now, rng)
	current, err := m.aggregateIn(ctx, q, from, to)
	if err != nil {
		return nil, err
	}

	prevFrom, prevTo := previousWindow(now, rng)
	previous, err := m.aggregateIn(ctx, q, prevFrom, prevTo)
	if err != nil {
		return nil, err
	}

	var increase *float64
	if previous != 0 {
		change := (current - previous) / previous * 100
		increase = &change
	}

	return map[string]any{
		"component": "ValueMetric",
		"key":       m.key,
		"title":     m.title,
		"value":     current,
		"previous":  previous,
		"increase":  increase,
		"ranges":    m.ranges,
	}, nil
}
