package resource

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBulkMock(t *testing.T, opts BulkOptions) (*Bulk, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewBulk(db, Define("users"), opts, nil), mock
}

func bulkIDs(n int) []any {
	ids := make([]any, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func TestBulkRunBatching(t *testing.T) {
	bulk, _ := newBulkMock(t, DefaultBulkOptions())

	var progress []Progress
	result, err := bulk.Run(context.Background(), bulkIDs(250),
		func(ctx context.Context, q Querier, id any) error { return nil },
		func(p Progress) { progress = append(progress, p) })

	require.NoError(t, err)
	assert.Equal(t, 250, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, result.Batches, "250 ids in batches of 100")

	require.Len(t, progress, 3)
	assert.Equal(t, 3, progress[2].TotalBatches)
	assert.InDelta(t, 100.0, progress[2].Percent, 0.01)
}

func TestBulkRunAccumulatesErrors(t *testing.T) {
	bulk, _ := newBulkMock(t, DefaultBulkOptions())

	result, err := bulk.Run(context.Background(), bulkIDs(250),
		func(ctx context.Context, q Querier, id any) error {
			if id.(int)%50 == 0 {
				return fmt.Errorf("boom")
			}
			return nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Failed)
	assert.Equal(t, 245, result.Processed)
	assert.Equal(t, 250, result.Processed+result.Failed, "every id is accounted for")
	assert.Len(t, result.Errors, 5)
	assert.Equal(t, 50, result.Errors[0].ID)
}

func TestBulkRunStopsOnError(t *testing.T) {
	bulk, _ := newBulkMock(t, BulkOptions{BatchSize: 10, ContinueOnError: false})

	result, err := bulk.Run(context.Background(), bulkIDs(30),
		func(ctx context.Context, q Querier, id any) error {
			if id.(int) == 15 {
				return fmt.Errorf("boom")
			}
			return nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Batches, "later batches are skipped")
	assert.Equal(t, 19, result.Processed)
	assert.Equal(t, 1, result.Failed)
}

func TestBulkRunEmpty(t *testing.T) {
	bulk, _ := newBulkMock(t, DefaultBulkOptions())

	result, err := bulk.Run(context.Background(), nil,
		func(ctx context.Context, q Querier, id any) error { return nil }, nil)

	require.NoError(t, err)
	assert.Zero(t, result.Batches)
	assert.Zero(t, result.Processed)
}

func TestBulkDelete(t *testing.T) {
	bulk, mock := newBulkMock(t, DefaultBulkOptions())

	query := regexp.QuoteMeta("DELETE FROM users WHERE id = ?")
	mock.ExpectExec(query).WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(3).WillReturnError(fmt.Errorf("constraint violation"))

	result, err := bulk.Delete(context.Background(), []any{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Errors[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdate(t *testing.T) {
	bulk, mock := newBulkMock(t, DefaultBulkOptions())

	// Columns are applied in sorted order
	query := regexp.QuoteMeta("UPDATE users SET active = ?, role = ? WHERE id = ?")
	mock.ExpectExec(query).WithArgs(true, "editor", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(true, "editor", 2).WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := bulk.Update(context.Background(), []any{1, 2},
		Record{"role": "editor", "active": true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateRequiresChanges(t *testing.T) {
	bulk, _ := newBulkMock(t, DefaultBulkOptions())

	_, err := bulk.Update(context.Background(), []any{1}, Record{}, nil)
	assert.Error(t, err)
}

func TestBulkTransactionalBatchRollsBack(t *testing.T) {
	bulk, mock := newBulkMock(t, BulkOptions{
		BatchSize:       3,
		ContinueOnError: true,
		UseTransactions: true,
	})

	query := regexp.QuoteMeta("DELETE FROM users WHERE id = ?")

	// First batch fails on its second item and rolls back entirely
	mock.ExpectBegin()
	mock.ExpectExec(query).WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(2).WillReturnError(fmt.Errorf("boom"))
	mock.ExpectRollback()

	// Second batch commits
	mock.ExpectBegin()
	mock.ExpectExec(query).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := bulk.Delete(context.Background(), []any{1, 2, 3, 4, 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 3, result.Failed, "the whole failed batch counts as failed")
	assert.Len(t, result.Errors, 3)

	assert.NoError(t, mock.ExpectationsWereMet())
}
