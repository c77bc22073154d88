package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// QuotaRepository tracks daily platform API quota consumption. The quota
// resets at midnight Pacific on the provider's side; callers pass the
// provider-local date.
type QuotaRepository interface {
	Record(ctx context.Context, date time.Time, units, operations int) error
	Usage(ctx context.Context, date time.Time, limit int) (*model.QuotaInfo, error)
}

type quotaRepository struct {
	pool *pgxpool.Pool
}

// NewQuotaRepository creates a new PostgreSQL-backed quota repository.
func NewQuotaRepository(pool *pgxpool.Pool) QuotaRepository {
	return &quotaRepository{pool: pool}
}

// Record adds quota units consumed by a run to the day's tally.
func (r *quotaRepository) Record(ctx context.Context, date time.Time, units, operations int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO quota_usage (usage_date, quota_used, operations_count, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (usage_date) DO UPDATE SET
			quota_used = quota_usage.quota_used + EXCLUDED.quota_used,
			operations_count = quota_usage.operations_count + EXCLUDED.operations_count,
			updated_at = NOW()`,
		date, units, operations,
	)
	return db.WrapError(err, "record quota usage")
}

// Usage returns the day's consumption against the given limit. Days with no
// recorded usage report zero used.
func (r *quotaRepository) Usage(ctx context.Context, date time.Time, limit int) (*model.QuotaInfo, error) {
	info := &model.QuotaInfo{Date: date, QuotaLimit: limit}

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(quota_used), 0), COALESCE(SUM(operations_count), 0)
		FROM quota_usage
		WHERE usage_date = $1`, date,
	).Scan(&info.QuotaUsed, &info.OperationsCount)
	if err != nil {
		return nil, db.WrapError(err, "quota usage")
	}

	info.QuotaRemaining = limit - info.QuotaUsed
	if info.QuotaRemaining < 0 {
		info.QuotaRemaining = 0
	}
	return info, nil
}
