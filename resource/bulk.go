package resource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultBatchSize is the number of ids processed per bulk batch
const DefaultBatchSize = 100

// BulkOptions configures a bulk run
type BulkOptions struct {
	// BatchSize is the chunk size ids are processed in
	BatchSize int
	// ContinueOnError keeps processing later batches after a failure
	ContinueOnError bool
	// UseTransactions wraps each batch in a database transaction,
	// rolling the whole batch back on the first item failure.
	UseTransactions bool
}

// DefaultBulkOptions returns the standard bulk configuration
func DefaultBulkOptions() BulkOptions {
	return BulkOptions{
		BatchSize:       DefaultBatchSize,
		ContinueOnError: true,
	}
}

// BulkError records one failed item
type BulkError struct {
	ID  any
	Err error
}

func (e BulkError) Error() string {
	return fmt.Sprintf("item %v: %v", e.ID, e.Err)
}

// BulkResult accumulates the outcome of a bulk run
type BulkResult struct {
	Processed int
	Failed    int
	Batches   int
	Errors    []BulkError
}

// Progress reports per-batch completion
type Progress struct {
	Batch        int
	TotalBatches int
	Percent      float64
}

// ItemFunc processes a single id within a bulk run. The Querier is the
// batch transaction when transactions are enabled, the base connection
// otherwise.
type ItemFunc func(ctx context.Context, q Querier, id any) error

// ProgressFunc observes batch completion
type ProgressFunc func(Progress)

// Bulk runs batched operations over a resource's records
type Bulk struct {
	db     Querier
	res    Resource
	opts   BulkOptions
	logger *zap.Logger
}

// NewBulk creates a bulk runner. A nil logger disables logging.
func NewBulk(db Querier, res Resource, opts BulkOptions, logger *zap.Logger) *Bulk {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bulk{db: db, res: res, opts: opts, logger: logger}
}

// Run processes the ids in batches through fn, accumulating per-item
// failures. When ContinueOnError is false, the first failing batch
// aborts the remaining batches; the partial result is still returned.
func (b *Bulk) Run(ctx context.Context, ids []any, fn ItemFunc, onProgress ProgressFunc) (*BulkResult, error) {
	result := &BulkResult{}
	if len(ids) == 0 {
		return result, nil
	}

	totalBatches := (len(ids) + b.opts.BatchSize - 1) / b.opts.BatchSize

	for start := 0; start < len(ids); start += b.opts.BatchSize {
		end := start + b.opts.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		result.Batches++

		var batchErrs []BulkError
		if b.opts.UseTransactions {
			batchErrs = b.runBatchTx(ctx, batch, fn)
		} else {
			batchErrs = b.runBatch(ctx, b.db, batch, fn)
		}

		result.Processed += len(batch) - len(batchErrs)
		result.Failed += len(batchErrs)
		result.Errors = append(result.Errors, batchErrs...)

		if onProgress != nil {
			onProgress(Progress{
				Batch:        result.Batches,
				TotalBatches: totalBatches,
				Percent:      float64(end) / float64(len(ids)) * 100,
			})
		}

		b.logger.Debug("bulk batch finished",
			zap.String("resource", b.res.Name()),
			zap.Int("batch", result.Batches),
			zap.Int("failed", len(batchErrs)))

		if len(batchErrs) > 0 && !b.opts.ContinueOnError {
			b.logger.Warn("bulk run aborted",
				zap.String("resource", b.res.Name()),
				zap.Int("processed", result.Processed),
				zap.Int("failed", result.Failed))
			break
		}
	}

	return result, nil
}

// runBatch processes items independently; one failure does not affect
// the rest of the batch.
func (b *Bulk) runBatch(ctx context.Context, q Querier, batch []any, fn ItemFunc) []BulkError {
	var errs []BulkError
	for _, id := range batch {
		if err := fn(ctx, q, id); err != nil {
			errs = append(errs, BulkError{ID: id, Err: err})
		}
	}
	return errs
}

// runBatchTx wraps a batch in a transaction: the first item failure
// rolls back the whole batch and every item in it counts as failed.
// When the connection cannot begin transactions the batch degrades to
// independent processing.
func (b *Bulk) runBatchTx(ctx context.Context, batch []any, fn ItemFunc) []BulkError {
	beginner, ok := b.db.(TxBeginner)
	if !ok {
		return b.runBatch(ctx, b.db, batch, fn)
	}

	tx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return b.batchFailure(batch, fmt.Errorf("failed to begin transaction: %w", err))
	}

	for _, id := range batch {
		if err := fn(ctx, tx, id); err != nil {
			tx.Rollback()
			return b.batchFailure(batch, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return b.batchFailure(batch, fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (b *Bulk) batchFailure(batch []any, err error) []BulkError {
	errs := make([]BulkError, len(batch))
	for i, id := range batch {
		errs[i] = BulkError{ID: id, Err: err}
	}
	return errs
}

// Delete bulk-deletes records by id
func (b *Bulk) Delete(ctx context.Context, ids []any, onProgress ProgressFunc) (*BulkResult, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", b.res.Table())
	return b.Run(ctx, ids, func(ctx context.Context, q Querier, id any) error {
		_, err := q.ExecContext(ctx, query, id)
		return err
	}, onProgress)
}

// Update bulk-applies the same column changes to records by id
func (b *Bulk) Update(ctx context.Context, ids []any, changes Record, onProgress ProgressFunc) (*BulkResult, error) {
	if len(changes) == 0 {
		return &BulkResult{}, fmt.Errorf("bulk update requires at least one change")
	}

	columns := make([]string, 0, len(changes))
	for column := range changes {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		assignments[i] = column + " = ?"
		args[i] = changes[column]
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
		b.res.Table(), strings.Join(assignments, ", "))

	return b.Run(ctx, ids, func(ctx context.Context, q Querier, id any) error {
		_, err := q.ExecContext(ctx, query, append(append([]any{}, args...), id)...)
		return err
	}, onProgress)
}
