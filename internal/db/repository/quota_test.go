package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-intel/outperformer-scanner-go/internal/db/testutil"
)

func TestQuotaRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewQuotaRepository(td.Pool)
	ctx := context.Background()
	today := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	t.Run("accumulates across runs", func(t *testing.T) {
		td.TruncateTables(t)

		require.NoError(t, repo.Record(ctx, today, 120, 60))
		require.NoError(t, repo.Record(ctx, today, 80, 40))

		info, err := repo.Usage(ctx, today, 10_000)
		require.NoError(t, err)
		assert.Equal(t, 200, info.QuotaUsed)
		assert.Equal(t, 100, info.OperationsCount)
		assert.Equal(t, 9_800, info.QuotaRemaining)
	})

	t.Run("days are independent", func(t *testing.T) {
		td.TruncateTables(t)

		require.NoError(t, repo.Record(ctx, today, 500, 250))

		info, err := repo.Usage(ctx, today.AddDate(0, 0, 1), 10_000)
		require.NoError(t, err)
		assert.Equal(t, 0, info.QuotaUsed)
		assert.Equal(t, 10_000, info.QuotaRemaining)
	})

	t.Run("remaining never negative", func(t *testing.T) {
		td.TruncateTables(t)

		require.NoError(t, repo.Record(ctx, today, 11_000, 5_500))

		info, err := repo.Usage(ctx, today, 10_000)
		require.NoError(t, err)
		assert.Equal(t, 0, info.QuotaRemaining)
	})
}

func TestBatchRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewBatchRepository(td.Pool)
	ctx := context.Background()

	t.Run("advance wraps around", func(t *testing.T) {
		td.TruncateTables(t)

		state, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, state.CurrentBatch)

		state, err = repo.Advance(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, state.CurrentBatch)
		assert.Equal(t, 3, state.TotalBatches)
		assert.False(t, state.LastRun.IsZero())

		_, err = repo.Advance(ctx, 3)
		require.NoError(t, err)
		state, err = repo.Advance(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 0, state.CurrentBatch)
	})

	t.Run("reset rewinds cursor", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.Advance(ctx, 5)
		require.NoError(t, err)
		require.NoError(t, repo.Reset(ctx))

		state, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, state.CurrentBatch)
	})
}
