package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-intel/outperformer-scanner-go/internal/config"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

var scanTime = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func testConfig() *config.ScannerConfig {
	return &config.ScannerConfig{
		MinRatio:            1.0,
		MinRatioSports:      0.75,
		MinRatioMid:         0.5,
		MinViews:            10000,
		VideosPerChannel:    5,
		MinVideoDuration:    180,
		MinVideoAgeHours:    48,
		MaxVideoAgeHours:    168,
		SignalWindowHours:   72,
		VelocityTrendJacker: 2.0,
		VelocityAuthority:   0.5,
		SportsCategories:    []string{"athlete", "sports", "basketball", "football", "soccer", "training"},
	}
}

type fakeSource struct {
	stats     map[string]*ChannelStats
	videos    map[string][]model.VideoRecord
	statsErr  map[string]error
	videosErr map[string]error
}

func (f *fakeSource) ChannelStats(_ context.Context, id string) (*ChannelStats, error) {
	if err := f.statsErr[id]; err != nil {
		return nil, err
	}
	return f.stats[id], nil
}

func (f *fakeSource) RecentVideos(_ context.Context, id string, _ int64) ([]model.VideoRecord, error) {
	if err := f.videosErr[id]; err != nil {
		return nil, err
	}
	return f.videos[id], nil
}

func newTestEngine(src *fakeSource) *Engine {
	return NewEngine(testConfig(), src).WithClock(func() time.Time { return scanTime })
}

func video(id, title string, views int64, ageHours float64) model.VideoRecord {
	return model.VideoRecord{
		VideoID:         id,
		Title:           title,
		Views:           views,
		PublishedAt:     scanTime.Add(-time.Duration(ageHours * float64(time.Hour))),
		DurationSeconds: 600,
	}
}

func channel(id, name, category string) model.ChannelRecord {
	return model.ChannelRecord{ChannelID: id, Name: name, Category: category}
}

func TestFindOutperformersVelocityGate(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC1": {ChannelID: "UC1", Subscribers: 100_000},
		},
		videos: map[string][]model.VideoRecord{
			"UC1": {video("v1", "Morning shootaround routine", 250_000, 48)},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC1", "Hoops Daily", "basketball"),
	})
	require.NoError(t, err)
	require.Len(t, result.Outperformers, 1)

	op := result.Outperformers[0]
	assert.InDelta(t, 2.5, op.Ratio, 1e-9)
	assert.InDelta(t, 1.25, op.VelocityScore, 1e-9)
	// Inside the signal window but below the velocity floor.
	assert.Equal(t, model.ClassStandard, op.Classification)

	// Enough velocity flips it to trend_jacker.
	src.videos["UC1"] = []model.VideoRecord{video("v1", "Morning shootaround routine", 600_000, 48)}
	result, err = newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC1", "Hoops Daily", "basketball"),
	})
	require.NoError(t, err)
	require.Len(t, result.Outperformers, 1)
	assert.InDelta(t, 3.0, result.Outperformers[0].VelocityScore, 1e-9)
	assert.Equal(t, model.ClassTrendJacker, result.Outperformers[0].Classification)
}

func TestRatioGateNonSports(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC2": {ChannelID: "UC2", Subscribers: 50_000},
		},
		videos: map[string][]model.VideoRecord{
			"UC2": {video("v2", "Studio tour", 40_000, 150)},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC2", "Culture Desk", "culture"),
	})
	require.NoError(t, err)
	// Ratio 0.8 is below the 1.0 default and "culture" gets no sports
	// fallback: excluded from both lists.
	assert.Empty(t, result.Outperformers)
	assert.Empty(t, result.MidPerformers)
}

func TestClassifyAuthorityBoundary(t *testing.T) {
	e := NewEngine(testConfig(), nil)

	assert.Equal(t, model.ClassStandard, e.Classify(200, VelocityScore(1.2, 200)))
	assert.Equal(t, model.ClassStandard, e.Classify(200, VelocityScore(4.0, 200)))

	// Exactly at the floor qualifies.
	assert.Equal(t, model.ClassAuthorityBuilder, e.Classify(200, 0.5))
	assert.Equal(t, model.ClassAuthorityBuilder, e.Classify(168, 0.5))
	assert.Equal(t, model.ClassStandard, e.Classify(167.9, 0.5))
}

func TestClassifyTrendJackerWinsTie(t *testing.T) {
	cfg := testConfig()
	cfg.SignalWindowHours = 300 // overlaps the authority age floor
	e := NewEngine(cfg, nil)

	assert.Equal(t, model.ClassTrendJacker, e.Classify(200, 2.5))
}

func TestSportsMidPerformerFallback(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC3": {ChannelID: "UC3", Subscribers: 1_000_000},
		},
		videos: map[string][]model.VideoRecord{
			"UC3": {video("v3", "Film room: blitz packages", 550_000, 72)},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC3", "Gridiron Lab", "football"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Outperformers)
	require.Len(t, result.MidPerformers, 1)

	mid := result.MidPerformers[0]
	assert.InDelta(t, 0.55, mid.Ratio, 1e-9)
	assert.Equal(t, model.ClassStandard, mid.Classification)
	assert.False(t, mid.IsNoise)
	assert.Empty(t, mid.NoiseType)
}

func TestZeroSubscriberChannelSkipped(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC4": {ChannelID: "UC4", Subscribers: 0},
		},
		videos: map[string][]model.VideoRecord{
			"UC4": {video("v4", "Anything", 9_000_000, 72)},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC4", "Ghost Town", "basketball"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Outperformers)
	assert.Empty(t, result.MidPerformers)
	assert.Equal(t, 0, result.ChannelsScanned)
	assert.Equal(t, 1, result.ChannelsSkipped)
}

func TestShortFormExcluded(t *testing.T) {
	short := video("v5", "Insane buzzer beater", 500_000, 72)
	short.DurationSeconds = 45

	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC5": {ChannelID: "UC5", Subscribers: 1_000},
		},
		videos: map[string][]model.VideoRecord{"UC5": {short}},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC5", "Clips", "basketball"),
	})
	require.NoError(t, err)
	// Ratio 500 would qualify, but duration alone excludes it.
	assert.Empty(t, result.Outperformers)
	assert.Empty(t, result.MidPerformers)
}

func TestChannelFetchFailureDoesNotAbortScan(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC7": {ChannelID: "UC7", Subscribers: 10_000},
		},
		statsErr: map[string]error{
			"UC6": errors.New("api unavailable"),
		},
		videos: map[string][]model.VideoRecord{
			"UC7": {video("v7", "Offseason training plan", 50_000, 96)},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC6", "Broken", "basketball"),
		channel("UC7", "Works", "basketball"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChannelsSkipped)
	assert.Equal(t, 1, result.ChannelsScanned)
	require.Len(t, result.Outperformers, 1)
	assert.Equal(t, "v7", result.Outperformers[0].Video.VideoID)
}

func TestOutperformersSortedByVelocity(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC8": {ChannelID: "UC8", Subscribers: 10_000},
		},
		videos: map[string][]model.VideoRecord{
			"UC8": {
				video("slow", "Deep dive documentary", 30_000, 160),
				video("fast", "Breaking down the trade", 30_000, 50),
			},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC8", "Analysis", "basketball"),
	})
	require.NoError(t, err)
	require.Len(t, result.Outperformers, 2)
	assert.Equal(t, "fast", result.Outperformers[0].Video.VideoID)
	assert.Equal(t, "slow", result.Outperformers[1].Video.VideoID)
	assert.Greater(t, result.Outperformers[0].VelocityScore, result.Outperformers[1].VelocityScore)
}

func TestWindowBoundariesInclusive(t *testing.T) {
	e := NewEngine(testConfig(), nil)

	assert.True(t, e.WithinWindow(48))
	assert.True(t, e.WithinWindow(168))
	assert.True(t, e.WithinWindow(100))
	assert.False(t, e.WithinWindow(47.99))
	assert.False(t, e.WithinWindow(168.01))
}

func TestVelocityScore(t *testing.T) {
	assert.Equal(t, 0.0, VelocityScore(3.0, 0))
	assert.Equal(t, 0.0, VelocityScore(3.0, -5))
	assert.InDelta(t, 1.5, VelocityScore(3.0, 48), 1e-9)
	assert.InDelta(t, 3.0, VelocityScore(3.0, 24), 1e-9)
}

func TestIsShort(t *testing.T) {
	long := video("v", "Full breakdown", 1, 72)
	assert.False(t, IsShort(&long, 180))

	tagged := video("v", "Full breakdown", 1, 72)
	tagged.Tags = []string{"Shorts"}
	assert.True(t, IsShort(&tagged, 180))

	hashtag := video("v", "Crazy dunk #shorts", 1, 72)
	assert.True(t, IsShort(&hashtag, 180))

	unknown := video("v", "Full breakdown", 1, 72)
	unknown.DurationSeconds = 0
	assert.True(t, IsShort(&unknown, 180))

	// A tag merely containing the word is not a marker.
	shortstop := video("v", "Best shortstop plays", 1, 72)
	shortstop.Tags = []string{"shortstop"}
	assert.False(t, IsShort(&shortstop, 180))
}

func TestNoiseAnnotationPriority(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC9": {ChannelID: "UC9", Subscribers: 10_000},
		},
		videos: map[string][]model.VideoRecord{
			"UC9": {
				// Matches both event recap and live stream; recap wins.
				video("both", "Live Stream Replay: Lakers vs Warriors Highlights", 50_000, 72),
				video("live", "Draft Night Watch Party", 50_000, 72),
			},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC9", "Courtside", "basketball"),
	})
	require.NoError(t, err)
	require.Len(t, result.Outperformers, 2)

	byID := map[string]*model.Outperformer{}
	for _, op := range result.Outperformers {
		byID[op.Video.VideoID] = op
	}

	assert.True(t, byID["both"].IsNoise)
	assert.Equal(t, model.NoiseEventRecap, byID["both"].NoiseType)
	assert.True(t, byID["live"].IsNoise)
	assert.Equal(t, model.NoiseLiveStream, byID["live"].NoiseType)
}

func TestNoiseDoesNotChangeClassification(t *testing.T) {
	src := &fakeSource{
		stats: map[string]*ChannelStats{
			"UC10": {ChannelID: "UC10", Subscribers: 10_000},
		},
		videos: map[string][]model.VideoRecord{
			"UC10": {video("v10", "Lakers vs Warriors Full Game Highlights", 120_000, 48)},
		},
	}

	result, err := newTestEngine(src).FindOutperformers(context.Background(), []model.ChannelRecord{
		channel("UC10", "Courtside", "basketball"),
	})
	require.NoError(t, err)
	require.Len(t, result.Outperformers, 1)

	op := result.Outperformers[0]
	assert.True(t, op.IsNoise)
	assert.Equal(t, model.NoiseEventRecap, op.NoiseType)
	// velocity 12/2 = 6.0 at 48h: still classified on its own merits.
	assert.Equal(t, model.ClassTrendJacker, op.Classification)
}

func TestContextCancellationAbortsScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(&fakeSource{}).FindOutperformers(ctx, []model.ChannelRecord{
		channel("UC1", "Any", "basketball"),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
