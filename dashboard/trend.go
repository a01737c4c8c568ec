package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/steward-admin/steward/resource"
)

// Unit selects the bucket width of a trend
type Unit string

const (
	ByDay   Unit = "day"
	ByWeek  Unit = "week"
	ByMonth Unit = "month"
)

// TrendMetric buckets an aggregate over time. Rows in the window are
// fetched with their timestamps and bucketed here rather than with
// database date functions, so the SQL stays driver-neutral.
type TrendMetric struct {
	key       string
	title     string
	table     string
	aggregate Aggregate
	column    string
	dateCol   string
	unit      Unit
	now       func() time.Time
}

// NewTrend creates a trend card counting rows per day
func NewTrend(key, title, table string) *TrendMetric {
	return &TrendMetric{
		key:       key,
		title:     title,
		table:     table,
		aggregate: Count,
		dateCol:   "created_at",
		unit:      ByDay,
		now:       time.Now,
	}
}

// Sum makes each bucket the sum of a column instead of a row count
func (m *TrendMetric) Sum(column string) *TrendMetric {
	m.aggregate = Sum
	m.column = column
	return m
}

// Average makes each bucket the mean of a column
func (m *TrendMetric) Average(column string) *TrendMetric {
	m.aggregate = Avg
	m.column = column
	return m
}

// PerWeek buckets by ISO week
func (m *TrendMetric) PerWeek() *TrendMetric {
	m.unit = ByWeek
	return m
}

// PerMonth buckets by calendar month
func (m *TrendMetric) PerMonth() *TrendMetric {
	m.unit = ByMonth
	return m
}

// DateColumn overrides the timestamp column
func (m *TrendMetric) DateColumn(column string) *TrendMetric {
	m.dateCol = column
	return m
}

// Key identifies the card
func (m *TrendMetric) Key() string { return m.key }

func (m *TrendMetric) bucketLabel(ts time.Time) string {
	switch m.unit {
	case ByWeek:
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case ByMonth:
		return ts.Format("2006-01")
	default:
		return ts.Format("2006-01-02")
	}
}

// point is one serialized trend bucket
type point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Serialize fetches the window's rows and buckets them by the unit,
// emitting every bucket in the window so gaps serialize as zero.
func (m *TrendMetric) Serialize(ctx context.Context, q resource.Querier, rng Range) (map[string]any, error) {
	now := m.now()
	from, to := window(now, rng)

	selectCols := m.dateCol
	if m.aggregate != Count {
		selectCols += ", " + m.column
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s >= ? AND %s < ?",
		selectCols, m.table, m.dateCol, m.dateCol)

	rows, err := q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend %s: %w", m.key, err)
	}
	defer rows.Close()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for rows.Next() {
		var ts time.Time
		var value float64

		if m.aggregate == Count {
			if err := rows.Scan(&ts); err != nil {
				return nil, err
			}
			value = 1
		} else {
			if err := rows.Scan(&ts, &value); err != nil {
				return nil, err
			}
		}

		label := m.bucketLabel(ts)
		sums[label] += value
		counts[label]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trend := m.fillBuckets(from, to, sums, counts)

	return map[string]any{
		"component": "TrendMetric",
		"key":       m.key,
		"title":     m.title,
		"unit":      string(m.unit),
		"trend":     trend,
	}, nil
}

// fillBuckets walks the window emitting one point per bucket, zero for
// buckets with no rows.
func (m *TrendMetric) fillBuckets(from, to time.Time, sums map[string]float64, counts map[string]int) []point {
	var trend []point
	seen := make(map[string]bool)

	// The window end is "now", so the final partial bucket is included
	for ts := from; !ts.After(to); ts = ts.AddDate(0, 0, 1) {
		label := m.bucketLabel(ts)
		if seen[label] {
			continue
		}
		seen[label] = true

		value := sums[label]
		if m.aggregate == Avg && counts[label] > 0 {
			value /= float64(counts[label])
		}
		trend = append(trend, point{Label: label, Value: value})
	}
	return trend
}
