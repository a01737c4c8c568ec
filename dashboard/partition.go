package dashboard

import (
	"context"
	"fmt"

	"github.com/steward-admin/steward/resource"
)

// PartitionMetric groups an aggregate by a column, rendering the share
// of each group.
type PartitionMetric struct {
	key       string
	title     string
	table     string
	aggregate Aggregate
	column    string
	groupBy   string
	labels    map[string]string
}

// NewPartition creates a partition card counting rows per group
func NewPartition(key, title, table, groupBy string) *PartitionMetric {
	return &PartitionMetric{
		key:       key,
		title:     title,
		table:     table,
		aggregate: Count,
		column:    "*",
		groupBy:   groupBy,
	}
}

// Sum makes each group the sum of a column instead of a row count
func (m *PartitionMetric) Sum(column string) *PartitionMetric {
	m.aggregate = Sum
	m.column = column
	return m
}

// Labels maps raw group values to display labels
func (m *PartitionMetric) Labels(labels map[string]string) *PartitionMetric {
	m.labels = labels
	return m
}

// Key identifies the card
func (m *PartitionMetric) Key() string { return m.key }

// slice is one serialized partition group
type slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Serialize groups the table by the partition column. Groups come back
// in the database's order; the query sorts by value so the biggest
// slice renders first.
func (m *PartitionMetric) Serialize(ctx context.Context, q resource.Querier, _ Range) (map[string]any, error) {
	query := fmt.Sprintf("SELECT %s, %s(%s) AS aggregate FROM %s GROUP BY %s ORDER BY aggregate DESC",
		m.groupBy, m.aggregate, m.column, m.table, m.groupBy)

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition %s: %w", m.key, err)
	}
	defer rows.Close()

	var partitions []slice
	var total float64
	for rows.Next() {
		var group any
		var value float64
		if err := rows.Scan(&group, &value); err != nil {
			return nil, err
		}

		label := fmt.Sprintf("%v", group)
		if b, ok := group.([]byte); ok {
			label = string(b)
		}
		if mapped, ok := m.labels[label]; ok {
			label = mapped
		}

		partitions = append(partitions, slice{Label: label, Value: value})
		total += value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"component":  "PartitionMetric",
		"key":        m.key,
		"title":      m.title,
		"partitions": partitions,
		"total":      total,
	}, nil
}
