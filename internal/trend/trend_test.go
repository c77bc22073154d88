package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

var trendNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func histEntry(videoID, channel string, daysAgo int, patterns, themes []string) *model.HistoryEntry {
	return &model.HistoryEntry{
		VideoID:         videoID,
		Title:           "title " + videoID,
		ChannelName:     channel,
		ChannelCategory: "basketball",
		VelocityScore:   1.0,
		Patterns:        patterns,
		Themes:          themes,
		ScannedAt:       trendNow.AddDate(0, 0, -daysAgo),
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name                   string
		current, previous, old int
		want                   string
	}{
		{"brand new", 3, 0, 0, StatusEmerging},
		{"sharp rise", 6, 3, 1, StatusEmerging},
		{"sharp fall", 1, 4, 2, StatusDeclining},
		{"vanished", 0, 3, 5, StatusDeclining},
		{"rose then plateaued", 5, 5, 2, StatusPeaking},
		{"flat throughout", 5, 5, 5, StatusStable},
		{"never seen recently", 0, 0, 4, ""},
		{"nothing anywhere", 0, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTrend(tt.current, tt.previous, tt.old))
		})
	}
}

func TestEntriesBetween(t *testing.T) {
	entries := []*model.HistoryEntry{
		histEntry("a", "ch", 2, nil, nil),
		histEntry("b", "ch", 10, nil, nil),
		histEntry("c", "ch", 20, nil, nil),
		{VideoID: "no-date"},
	}

	lastWeek := EntriesBetween(entries, trendNow, 7, 0)
	require.Len(t, lastWeek, 1)
	assert.Equal(t, "a", lastWeek[0].VideoID)

	prevWeek := EntriesBetween(entries, trendNow, 14, 7)
	require.Len(t, prevWeek, 1)
	assert.Equal(t, "b", prevWeek[0].VideoID)

	monthAgo := EntriesBetween(entries, trendNow, 30, 14)
	require.Len(t, monthAgo, 1)
	assert.Equal(t, "c", monthAgo[0].VideoID)
}

func TestAnalyzePatternLifecycle(t *testing.T) {
	var entries []*model.HistoryEntry
	// "listicle" only shows up this week: emerging.
	for i := 0; i < 3; i++ {
		entries = append(entries, histEntry("new"+string(rune('a'+i)), "ch", 2, []string{"listicle"}, []string{"basketball"}))
	}
	// "versus" was everywhere two weeks ago, gone now: declining.
	for i := 0; i < 4; i++ {
		entries = append(entries, histEntry("old"+string(rune('a'+i)), "ch", 10, []string{"versus"}, nil))
	}

	lc := AnalyzePatternLifecycle(entries, trendNow)
	assert.Equal(t, 3, lc.LastWeekVideos)
	assert.Equal(t, 4, lc.PrevWeekVideos)

	byName := map[string]LifecycleEntry{}
	for _, e := range lc.Patterns {
		byName[e.Name] = e
	}
	assert.Equal(t, StatusEmerging, byName["listicle"].Status)
	assert.Equal(t, StatusDeclining, byName["versus"].Status)
	assert.Equal(t, 4, byName["versus"].PrevWeek)
	assert.Equal(t, 0, byName["versus"].LastWeek)
}

func TestWeekOverWeekChanges(t *testing.T) {
	entries := []*model.HistoryEntry{
		histEntry("a", "Alpha", 1, []string{"versus"}, []string{"drama"}),
		histEntry("b", "Alpha", 2, []string{"versus"}, []string{"drama"}),
		histEntry("c", "Beta", 3, nil, []string{"money"}),
		histEntry("d", "Alpha", 9, []string{"versus"}, []string{"training"}),
	}

	wow := WeekOverWeekChanges(entries, trendNow)
	assert.Equal(t, 3, wow.TotalThisWeek)
	assert.Equal(t, 1, wow.TotalLastWeek)

	require.Len(t, wow.Patterns.Up, 1)
	assert.Equal(t, Delta{Name: "versus", This: 2, Last: 1, Change: 1}, wow.Patterns.Up[0])

	require.Len(t, wow.Themes.New, 2)
	assert.Equal(t, "drama", wow.Themes.New[0].Name)
	assert.Equal(t, "money", wow.Themes.New[1].Name)

	require.Len(t, wow.Themes.Gone, 1)
	assert.Equal(t, "training", wow.Themes.Gone[0].Name)
}

func TestTopPerformers(t *testing.T) {
	fast := histEntry("fast", "ch", 1, nil, nil)
	fast.VelocityScore = 9.0
	slow := histEntry("slow", "ch", 2, nil, nil)
	slow.VelocityScore = 0.2
	stale := histEntry("stale", "ch", 12, nil, nil)
	stale.VelocityScore = 50.0

	topVideos := TopPerformers([]*model.HistoryEntry{slow, fast, stale}, trendNow, 10)
	require.Len(t, topVideos, 2)
	assert.Equal(t, "fast", topVideos[0].VideoID)
	assert.Equal(t, "slow", topVideos[1].VideoID)
}

func TestEmergingChannels(t *testing.T) {
	entries := []*model.HistoryEntry{
		histEntry("a", "Rising", 1, nil, nil),
		histEntry("b", "Rising", 2, nil, nil),
		histEntry("c", "Rising", 3, nil, nil),
		histEntry("d", "OneHit", 2, nil, nil),
		histEntry("e", "Steady", 1, nil, nil),
		histEntry("f", "Steady", 2, nil, nil),
		histEntry("g", "Steady", 9, nil, nil),
		histEntry("h", "Steady", 16, nil, nil),
	}

	emerging := EmergingChannels(entries, trendNow)
	require.Len(t, emerging, 1)
	assert.Equal(t, "Rising", emerging[0].Channel)
	assert.Equal(t, 3, emerging[0].ThisWeek)
	assert.Equal(t, 0, emerging[0].Previous)
}

func TestFormatReport(t *testing.T) {
	entries := []*model.HistoryEntry{
		histEntry("a", "Alpha", 1, []string{"listicle"}, []string{"drama"}),
		histEntry("b", "Alpha", 2, []string{"listicle"}, []string{"drama"}),
		histEntry("c", "Beta", 3, nil, []string{"money"}),
		histEntry("d", "Gamma", 9, []string{"versus"}, []string{"training"}),
		histEntry("e", "Gamma", 10, []string{"versus"}, nil),
	}

	snap := &Snapshot{
		Lifecycle:        AnalyzePatternLifecycle(entries, trendNow),
		WeekOverWeek:     WeekOverWeekChanges(entries, trendNow),
		TopPerformers:    TopPerformers(entries, trendNow, 10),
		EmergingChannels: EmergingChannels(entries, trendNow),
		TotalEntries:     len(entries),
	}

	report := FormatReport(snap, trendNow)
	assert.Contains(t, report, "TREND ANALYSIS REPORT")
	assert.Contains(t, report, "This week: 3 outperformers")
	assert.Contains(t, report, "Last week: 2 outperformers")
	assert.Contains(t, report, "PATTERN LIFECYCLE")
	assert.Contains(t, report, "listicle")
	assert.Contains(t, report, "CHANNELS TO WATCH")
	assert.Contains(t, report, "Alpha")
}
