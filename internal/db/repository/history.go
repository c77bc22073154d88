// Package repository contains the PostgreSQL data access layer.
package repository

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// HistoryRepository is the durable store for detected outperformers.
// Deduplication by video ID happens here, not in the detection engine: the
// same video can legitimately be re-detected across scans while it stays in
// the age window.
type HistoryRepository interface {
	AddEntries(ctx context.Context, entries []*model.HistoryEntry) (int, error)
	GetByVideoID(ctx context.Context, videoID string) (*model.HistoryEntry, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.HistoryEntry, error)
	EntriesInRange(ctx context.Context, from, to time.Time) ([]*model.HistoryEntry, error)
	Summary(ctx context.Context) (*model.HistorySummary, error)
	FindSimilar(ctx context.Context, videoID string, limit int) ([]*model.HistoryEntry, error)
	PatternStats(ctx context.Context) ([]model.TagStat, error)
	ThemeStats(ctx context.Context) ([]model.TagStat, error)
	Unsummarized(ctx context.Context, limit int) ([]*model.HistoryEntry, error)
	SetSummary(ctx context.Context, videoID, summary string) error
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new PostgreSQL-backed history repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

const historyColumns = `
	video_id, title, description, channel_name, channel_category,
	views, subscribers, ratio, velocity_score, age_hours, classification,
	patterns, themes, tags, is_noise, noise_type, summary,
	scan_id, scanned_at, url`

// AddEntries inserts a batch of history entries, skipping videos already in
// the store. Returns the number of newly inserted rows.
func (r *historyRepository) AddEntries(ctx context.Context, entries []*model.HistoryEntry) (int, error) {
	added := 0
	for _, e := range entries {
		tag, err := r.pool.Exec(ctx, `
			INSERT INTO outperformers (`+historyColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			ON CONFLICT (video_id) DO NOTHING`,
			e.VideoID, e.Title, e.Description, e.ChannelName, e.ChannelCategory,
			e.Views, e.Subscribers, e.Ratio, e.VelocityScore, e.AgeHours, e.Classification,
			e.Patterns, e.Themes, e.Tags, e.IsNoise, e.NoiseType, e.Summary,
			e.ScanID, e.ScannedAt, e.URL,
		)
		if err != nil {
			return added, db.WrapError(err, "add history entry")
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// GetByVideoID fetches a single entry; db.ErrNotFound when absent.
func (r *historyRepository) GetByVideoID(ctx context.Context, videoID string) (*model.HistoryEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+historyColumns+`
		FROM outperformers
		WHERE video_id = $1`, videoID)

	e, err := scanHistoryEntry(row)
	if err != nil {
		return nil, db.WrapError(err, "get history entry")
	}
	return e, nil
}

// ListRecent returns entries scanned at or after since, newest first.
func (r *historyRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+historyColumns+`
		FROM outperformers
		WHERE scanned_at >= $1
		ORDER BY scanned_at DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, db.WrapError(err, "list recent history")
	}
	defer rows.Close()

	return collectHistoryEntries(rows)
}

// EntriesInRange returns entries scanned within [from, to), oldest first.
func (r *historyRepository) EntriesInRange(ctx context.Context, from, to time.Time) ([]*model.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+historyColumns+`
		FROM outperformers
		WHERE scanned_at >= $1 AND scanned_at < $2
		ORDER BY scanned_at ASC`, from, to)
	if err != nil {
		return nil, db.WrapError(err, "history entries in range")
	}
	defer rows.Close()

	return collectHistoryEntries(rows)
}

// Summary aggregates the whole store: totals per classification, per
// category, and the scan time span.
func (r *historyRepository) Summary(ctx context.Context) (*model.HistorySummary, error) {
	s := &model.HistorySummary{Categories: map[string]int{}}

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE classification = $1),
			COUNT(*) FILTER (WHERE classification = $2),
			COUNT(*) FILTER (WHERE classification = $3),
			COALESCE(MIN(scanned_at), 'epoch'::timestamptz),
			COALESCE(MAX(scanned_at), 'epoch'::timestamptz)
		FROM outperformers`,
		model.ClassTrendJacker, model.ClassAuthorityBuilder, model.ClassStandard,
	).Scan(&s.TotalVideos, &s.TrendJackers, &s.AuthorityBuilders, &s.Standard, &s.FirstScanned, &s.LastScanned)
	if err != nil {
		return nil, db.WrapError(err, "history summary")
	}

	if s.TotalVideos == 0 {
		s.FirstScanned, s.LastScanned = time.Time{}, time.Time{}
		return s, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT channel_category, COUNT(*)
		FROM outperformers
		GROUP BY channel_category`)
	if err != nil {
		return nil, db.WrapError(err, "history summary categories")
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, db.WrapError(err, "history summary categories")
		}
		s.Categories[category] = count
	}
	return s, rows.Err()
}

// FindSimilar returns stored entries that share packaging signals with the
// given video, best match first. Pattern overlap counts double theme overlap:
// patterns are the repeatable part of a title, themes just describe the topic.
func (r *historyRepository) FindSimilar(ctx context.Context, videoID string, limit int) ([]*model.HistoryEntry, error) {
	anchor, err := r.GetByVideoID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+historyColumns+`
		FROM outperformers
		WHERE video_id <> $1 AND (patterns && $2 OR themes && $3)`,
		videoID, anchor.Patterns, anchor.Themes)
	if err != nil {
		return nil, db.WrapError(err, "find similar")
	}
	defer rows.Close()

	candidates, err := collectHistoryEntries(rows)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(candidates))
	for _, e := range candidates {
		scores[e.VideoID] = 2*tagOverlap(anchor.Patterns, e.Patterns) + tagOverlap(anchor.Themes, e.Themes)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i].VideoID], scores[candidates[j].VideoID]
		if si != sj {
			return si > sj
		}
		return candidates[i].VelocityScore > candidates[j].VelocityScore
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func tagOverlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	n := 0
	for _, t := range b {
		if set[t] {
			n++
		}
	}
	return n
}

// PatternStats aggregates title-pattern tags across the store with their
// average velocity. Noise entries are excluded: they carry no packaging
// lesson.
func (r *historyRepository) PatternStats(ctx context.Context) ([]model.TagStat, error) {
	return r.tagStats(ctx, "patterns")
}

// ThemeStats aggregates theme tags the same way PatternStats does.
func (r *historyRepository) ThemeStats(ctx context.Context) ([]model.TagStat, error) {
	return r.tagStats(ctx, "themes")
}

func (r *historyRepository) tagStats(ctx context.Context, column string) ([]model.TagStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tag, COUNT(*), AVG(velocity_score)
		FROM outperformers, unnest(`+column+`) AS tag
		WHERE NOT is_noise
		GROUP BY tag
		ORDER BY COUNT(*) DESC, tag ASC`)
	if err != nil {
		return nil, db.WrapError(err, "tag stats")
	}
	defer rows.Close()

	var stats []model.TagStat
	for rows.Next() {
		var s model.TagStat
		if err := rows.Scan(&s.Name, &s.Count, &s.AvgVelocity); err != nil {
			return nil, db.WrapError(err, "tag stats")
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Unsummarized returns entries still waiting for an AI summary, oldest first.
// Noise entries are excluded: there is no value in summarizing a game recap.
func (r *historyRepository) Unsummarized(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+historyColumns+`
		FROM outperformers
		WHERE summary = '' AND NOT is_noise
		ORDER BY scanned_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, db.WrapError(err, "list unsummarized")
	}
	defer rows.Close()

	return collectHistoryEntries(rows)
}

// SetSummary attaches an AI-generated summary to an entry. Idempotent: a
// second write for the same video simply overwrites.
func (r *historyRepository) SetSummary(ctx context.Context, videoID, summary string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE outperformers SET summary = $2 WHERE video_id = $1`, videoID, summary)
	if err != nil {
		return db.WrapError(err, "set summary")
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "set summary")
	}
	return nil
}

func scanHistoryEntry(row pgx.Row) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	err := row.Scan(
		&e.VideoID, &e.Title, &e.Description, &e.ChannelName, &e.ChannelCategory,
		&e.Views, &e.Subscribers, &e.Ratio, &e.VelocityScore, &e.AgeHours, &e.Classification,
		&e.Patterns, &e.Themes, &e.Tags, &e.IsNoise, &e.NoiseType, &e.Summary,
		&e.ScanID, &e.ScannedAt, &e.URL,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectHistoryEntries(rows pgx.Rows) ([]*model.HistoryEntry, error) {
	var entries []*model.HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan history entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
