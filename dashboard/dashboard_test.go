package dashboard

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steward-admin/steward/cache"
	"github.com/steward-admin/steward/resource"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (sqlmock.Sqlmock, resource.Querier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, db
}

func TestValueMetricSerialize(t *testing.T) {
	mock, db := newMock(t)

	m := NewValue("new-users", "New Users", "users")
	m.now = func() time.Time { return testNow }

	query := regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?")
	mock.ExpectQuery(query).
		WithArgs(testNow.AddDate(0, 0, -30), testNow).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(150))
	mock.ExpectQuery(query).
		WithArgs(testNow.AddDate(0, 0, -60), testNow.AddDate(0, 0, -30)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))

	payload, err := m.Serialize(context.Background(), db, Range{Key: "30", Days: 30})
	require.NoError(t, err)

	assert.Equal(t, "ValueMetric", payload["component"])
	assert.Equal(t, "New Users", payload["title"])
	assert.Equal(t, 150.0, payload["value"])
	assert.Equal(t, 100.0, payload["previous"])

	increase, ok := payload["increase"].(*float64)
	require.True(t, ok)
	require.NotNil(t, increase)
	assert.InDelta(t, 50.0, *increase, 0.001)
}

func TestValueMetricNoPrevious(t *testing.T) {
	mock, db := newMock(t)

	m := NewValue("revenue", "Revenue", "orders").Sum("total")
	m.now = func() time.Time { return testNow }

	query := regexp.QuoteMeta("SELECT SUM(total) FROM orders WHERE created_at >= ? AND created_at < ?")
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1234.5))
	// Empty previous window scans as NULL
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	payload, err := m.Serialize(context.Background(), db, Range{Key: "7", Days: 7})
	require.NoError(t, err)

	assert.Equal(t, 1234.5, payload["value"])
	assert.Equal(t, 0.0, payload["previous"])
	increase := payload["increase"].(*float64)
	assert.Nil(t, increase, "no previous value means no percentage")
}

func TestTrendMetricSerialize(t *testing.T) {
	mock, db := newMock(t)

	m := NewTrend("signups", "Signups", "users")
	m.now = func() time.Time { return testNow }

	query := regexp.QuoteMeta("SELECT created_at FROM users WHERE created_at >= ? AND created_at < ?")
	mock.ExpectQuery(query).
		WithArgs(testNow.AddDate(0, 0, -3), testNow).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).
			AddRow(time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)))

	payload, err := m.Serialize(context.Background(), db, Range{Key: "3", Days: 3})
	require.NoError(t, err)

	assert.Equal(t, "TrendMetric", payload["component"])
	trend := payload["trend"].([]point)
	require.Len(t, trend, 4, "every day in the window gets a bucket")

	assert.Equal(t, point{Label: "2026-03-07", Value: 0}, trend[0])
	assert.Equal(t, point{Label: "2026-03-08", Value: 2}, trend[1])
	assert.Equal(t, point{Label: "2026-03-09", Value: 1}, trend[2])
	assert.Equal(t, point{Label: "2026-03-10", Value: 0}, trend[3])
}

func TestTrendMetricAverage(t *testing.T) {
	mock, db := newMock(t)

	m := NewTrend("order-size", "Order Size", "orders").Average("total")
	m.now = func() time.Time { return testNow }

	query := regexp.QuoteMeta("SELECT created_at, total FROM orders WHERE created_at >= ? AND created_at < ?")
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "total"}).
			AddRow(time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), 10.0).
			AddRow(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC), 30.0))

	payload, err := m.Serialize(context.Background(), db, Range{Key: "1", Days: 1})
	require.NoError(t, err)

	trend := payload["trend"].([]point)
	require.Len(t, trend, 2)
	assert.Equal(t, point{Label: "2026-03-09", Value: 20}, trend[0])
	assert.Equal(t, point{Label: "2026-03-10", Value: 0}, trend[1])
}

func TestTrendMetricMonthlyBuckets(t *testing.T) {
	m := NewTrend("x", "X", "t").PerMonth()

	assert.Equal(t, "2026-03", m.bucketLabel(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))

	weekly := NewTrend("x", "X", "t").PerWeek()
	assert.Equal(t, "2026-W11", weekly.bucketLabel(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestPartitionMetricSerialize(t *testing.T) {
	mock, db := newMock(t)

	m := NewPartition("by-status", "Orders by Status", "orders", "status").
		Labels(map[string]string{"pending": "Awaiting payment"})

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT status, COUNT(*) AS aggregate FROM orders GROUP BY status ORDER BY aggregate DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "aggregate"}).
			AddRow("shipped", 60).
			AddRow("pending", 40))

	payload, err := m.Serialize(context.Background(), db, Range{})
	require.NoError(t, err)

	assert.Equal(t, "PartitionMetric", payload["component"])
	assert.Equal(t, 100.0, payload["total"])

	partitions := payload["partitions"].([]slice)
	require.Len(t, partitions, 2)
	assert.Equal(t, slice{Label: "shipped", Value: 60}, partitions[0])
	assert.Equal(t, slice{Label: "Awaiting payment", Value: 40}, partitions[1])
}

func TestCachedCard(t *testing.T) {
	mock, db := newMock(t)
	c := cache.NewMemory()
	t.Cleanup(c.Close)

	m := NewValue("new-users", "New Users", "users")
	m.now = func() time.Time { return testNow }
	card := WithCache(m, c, time.Minute)

	query := regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?")
	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rng := Range{Key: "30", Days: 30}
	first, err := card.Serialize(context.Background(), db, rng)
	require.NoError(t, err)
	assert.Equal(t, 5.0, first["value"])

	// Second call serves from cache without touching the database
	second, err := card.Serialize(context.Background(), db, rng)
	require.NoError(t, err)
	assert.Equal(t, 5.0, second["value"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
