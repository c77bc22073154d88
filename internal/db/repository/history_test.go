package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/db/testutil"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

func entry(videoID, classification string, scannedAt time.Time) *model.HistoryEntry {
	return &model.HistoryEntry{
		VideoID:         videoID,
		Title:           "title " + videoID,
		ChannelName:     "Test Channel",
		ChannelCategory: "basketball",
		Views:           120_000,
		Subscribers:     40_000,
		Ratio:           3.0,
		VelocityScore:   1.2,
		AgeHours:        60,
		Classification:  classification,
		Patterns:        []string{"listicle"},
		Themes:          []string{"basketball"},
		Tags:            []string{"nba"},
		ScanID:          uuid.New(),
		ScannedAt:       scannedAt,
		URL:             "https://youtube.com/watch?v=" + videoID,
	}
}

func TestHistoryRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewHistoryRepository(td.Pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("AddEntries deduplicates by video id", func(t *testing.T) {
		td.TruncateTables(t)

		added, err := repo.AddEntries(ctx, []*model.HistoryEntry{
			entry("vid1", model.ClassTrendJacker, now),
			entry("vid2", model.ClassStandard, now),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, added)

		// Re-detection of vid1 in a later scan is silently dropped.
		added, err = repo.AddEntries(ctx, []*model.HistoryEntry{
			entry("vid1", model.ClassTrendJacker, now.Add(time.Hour)),
			entry("vid3", model.ClassAuthorityBuilder, now.Add(time.Hour)),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, added)
	})

	t.Run("GetByVideoID round-trips arrays", func(t *testing.T) {
		td.TruncateTables(t)

		in := entry("vid4", model.ClassStandard, now)
		in.Patterns = []string{"versus", "question"}
		in.Themes = []string{"basketball", "drama"}
		_, err := repo.AddEntries(ctx, []*model.HistoryEntry{in})
		require.NoError(t, err)

		got, err := repo.GetByVideoID(ctx, "vid4")
		require.NoError(t, err)
		assert.Equal(t, in.Patterns, got.Patterns)
		assert.Equal(t, in.Themes, got.Themes)
		assert.Equal(t, in.ScanID, got.ScanID)

		_, err = repo.GetByVideoID(ctx, "missing")
		assert.True(t, db.IsNotFound(err))
	})

	t.Run("ListRecent respects cutoff and order", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.AddEntries(ctx, []*model.HistoryEntry{
			entry("old", model.ClassStandard, now.Add(-10*24*time.Hour)),
			entry("newer", model.ClassStandard, now.Add(-2*time.Hour)),
			entry("newest", model.ClassStandard, now),
		})
		require.NoError(t, err)

		got, err := repo.ListRecent(ctx, now.Add(-7*24*time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "newest", got[0].VideoID)
		assert.Equal(t, "newer", got[1].VideoID)
	})

	t.Run("EntriesInRange is half-open", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.AddEntries(ctx, []*model.HistoryEntry{
			entry("a", model.ClassStandard, now.Add(-48*time.Hour)),
			entry("b", model.ClassStandard, now.Add(-24*time.Hour)),
			entry("c", model.ClassStandard, now),
		})
		require.NoError(t, err)

		got, err := repo.EntriesInRange(ctx, now.Add(-48*time.Hour), now)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].VideoID)
		assert.Equal(t, "b", got[1].VideoID)
	})

	t.Run("Summary aggregates classifications and categories", func(t *testing.T) {
		td.TruncateTables(t)

		e1 := entry("s1", model.ClassTrendJacker, now.Add(-time.Hour))
		e2 := entry("s2", model.ClassStandard, now)
		e3 := entry("s3", model.ClassStandard, now)
		e3.ChannelCategory = "culture"
		_, err := repo.AddEntries(ctx, []*model.HistoryEntry{e1, e2, e3})
		require.NoError(t, err)

		s, err := repo.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, s.TotalVideos)
		assert.Equal(t, 1, s.TrendJackers)
		assert.Equal(t, 0, s.AuthorityBuilders)
		assert.Equal(t, 2, s.Standard)
		assert.Equal(t, 2, s.Categories["basketball"])
		assert.Equal(t, 1, s.Categories["culture"])
		assert.True(t, s.LastScanned.After(s.FirstScanned))
	})

	t.Run("Summary on empty store", func(t *testing.T) {
		td.TruncateTables(t)

		s, err := repo.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, s.TotalVideos)
		assert.True(t, s.FirstScanned.IsZero())
		assert.True(t, s.LastScanned.IsZero())
	})

	t.Run("FindSimilar ranks by weighted overlap", func(t *testing.T) {
		td.TruncateTables(t)

		anchor := entry("anchor", model.ClassStandard, now)
		anchor.Patterns = []string{"listicle", "versus"}
		anchor.Themes = []string{"basketball"}

		// Shares one pattern and one theme: score 3.
		near := entry("near", model.ClassStandard, now)
		near.Patterns = []string{"listicle"}
		near.Themes = []string{"basketball"}

		// Shares one theme only: score 1.
		far := entry("far", model.ClassStandard, now)
		far.Patterns = []string{"question"}
		far.Themes = []string{"basketball"}

		// No overlap at all.
		stranger := entry("stranger", model.ClassStandard, now)
		stranger.Patterns = []string{"question"}
		stranger.Themes = []string{"money"}

		_, err := repo.AddEntries(ctx, []*model.HistoryEntry{anchor, near, far, stranger})
		require.NoError(t, err)

		got, err := repo.FindSimilar(ctx, "anchor", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "near", got[0].VideoID)
		assert.Equal(t, "far", got[1].VideoID)

		_, err = repo.FindSimilar(ctx, "missing", 10)
		assert.True(t, db.IsNotFound(err))
	})

	t.Run("PatternStats excludes noise and averages velocity", func(t *testing.T) {
		td.TruncateTables(t)

		a := entry("p1", model.ClassStandard, now)
		a.Patterns = []string{"listicle"}
		a.VelocityScore = 2.0
		b := entry("p2", model.ClassStandard, now)
		b.Patterns = []string{"listicle", "versus"}
		b.VelocityScore = 4.0
		noisy := entry("p3", model.ClassStandard, now)
		noisy.Patterns = []string{"listicle"}
		noisy.IsNoise = true
		_, err := repo.AddEntries(ctx, []*model.HistoryEntry{a, b, noisy})
		require.NoError(t, err)

		stats, err := repo.PatternStats(ctx)
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "listicle", stats[0].Name)
		assert.Equal(t, 2, stats[0].Count)
		assert.InDelta(t, 3.0, stats[0].AvgVelocity, 1e-9)
		assert.Equal(t, "versus", stats[1].Name)
		assert.Equal(t, 1, stats[1].Count)
	})

	t.Run("Unsummarized and SetSummary", func(t *testing.T) {
		td.TruncateTables(t)

		plain := entry("u1", model.ClassStandard, now)
		noisy := entry("u2", model.ClassStandard, now)
		noisy.IsNoise = true
		noisy.NoiseType = model.NoiseEventRecap
		done := entry("u3", model.ClassStandard, now)
		done.Summary = "already annotated"
		_, err := repo.AddEntries(ctx, []*model.HistoryEntry{plain, noisy, done})
		require.NoError(t, err)

		pending, err := repo.Unsummarized(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "u1", pending[0].VideoID)

		require.NoError(t, repo.SetSummary(ctx, "u1", "a tight hook and a named rival"))

		pending, err = repo.Unsummarized(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)

		got, err := repo.GetByVideoID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "a tight hook and a named rival", got.Summary)

		err = repo.SetSummary(ctx, "missing", "x")
		assert.True(t, db.IsNotFound(err))
	})
}
