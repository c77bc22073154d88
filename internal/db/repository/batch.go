package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// BatchRepository persists the round-robin cursor over the channel list. A
// single-row table: there is exactly one cursor.
type BatchRepository interface {
	Get(ctx context.Context) (*model.BatchState, error)
	Advance(ctx context.Context, totalBatches int) (*model.BatchState, error)
	Reset(ctx context.Context) error
}

type batchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository creates a new PostgreSQL-backed batch cursor repository.
func NewBatchRepository(pool *pgxpool.Pool) BatchRepository {
	return &batchRepository{pool: pool}
}

// Get returns the current cursor position.
func (r *batchRepository) Get(ctx context.Context) (*model.BatchState, error) {
	var state model.BatchState
	err := r.pool.QueryRow(ctx, `
		SELECT current_batch, total_batches, COALESCE(last_run, 'epoch'::timestamptz)
		FROM batch_state
		WHERE id`).Scan(&state.CurrentBatch, &state.TotalBatches, &state.LastRun)
	if err != nil {
		return nil, db.WrapError(err, "get batch state")
	}
	return &state, nil
}

// Advance moves the cursor to the next batch, wrapping to zero after the
// last, and stamps the run time. The caller supplies the batch count for the
// current channel list so list growth between runs is picked up.
func (r *batchRepository) Advance(ctx context.Context, totalBatches int) (*model.BatchState, error) {
	var state model.BatchState
	err := r.pool.QueryRow(ctx, `
		UPDATE batch_state SET
			current_batch = CASE WHEN $1 <= 0 THEN 0 ELSE (current_batch + 1) % $1 END,
			total_batches = $1,
			last_run = NOW()
		WHERE id
		RETURNING current_batch, total_batches, last_run`,
		totalBatches,
	).Scan(&state.CurrentBatch, &state.TotalBatches, &state.LastRun)
	if err != nil {
		return nil, db.WrapError(err, "advance batch state")
	}
	return &state, nil
}

// Reset rewinds the cursor to the first batch.
func (r *batchRepository) Reset(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE batch_state SET current_batch = 0 WHERE id`)
	return db.WrapError(err, "reset batch state")
}
