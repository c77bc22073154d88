package trend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creator-intel/outperformer-scanner-go/internal/db/repository"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// Analyzer runs trend analysis over the history store.
type Analyzer struct {
	repo repository.HistoryRepository
	now  func() time.Time
}

// NewAnalyzer builds an analyzer over the given history repository.
func NewAnalyzer(repo repository.HistoryRepository) *Analyzer {
	return &Analyzer{repo: repo, now: time.Now}
}

// WithClock overrides the analyzer's clock. Test hook.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Snapshot bundles every trend view over the same 30-day load.
type Snapshot struct {
	Lifecycle        *Lifecycle            `json:"lifecycle"`
	WeekOverWeek     *WeekOverWeek         `json:"week_over_week"`
	TopPerformers    []*model.HistoryEntry `json:"top_performers"`
	EmergingChannels []EmergingChannel     `json:"emerging_channels"`
	TotalEntries     int                   `json:"total_entries"`
}

// Snapshot loads the last 30 days of history and computes all trend views.
func (a *Analyzer) Snapshot(ctx context.Context) (*Snapshot, error) {
	now := a.now()
	entries, err := a.repo.EntriesInRange(ctx, now.AddDate(0, 0, -30), now.Add(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("load history for trends: %w", err)
	}

	return &Snapshot{
		Lifecycle:        AnalyzePatternLifecycle(entries, now),
		WeekOverWeek:     WeekOverWeekChanges(entries, now),
		TopPerformers:    TopPerformers(entries, now, 10),
		EmergingChannels: EmergingChannels(entries, now),
		TotalEntries:     len(entries),
	}, nil
}

// Report renders the trend analysis as a human-readable text report.
func (a *Analyzer) Report(ctx context.Context) (string, error) {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if snap.TotalEntries < MinEntriesForAnalysis {
		return "Not enough historical data yet. Need at least 5 outperformers to analyze trends.", nil
	}
	return FormatReport(snap, a.now()), nil
}

// FormatReport renders a snapshot as plain text.
func FormatReport(snap *Snapshot, now time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "TREND ANALYSIS REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "This week: %d outperformers\n", snap.WeekOverWeek.TotalThisWeek)
	fmt.Fprintf(&b, "Last week: %d outperformers\n", snap.WeekOverWeek.TotalLastWeek)

	fmt.Fprintf(&b, "\n%s\nWEEK OVER WEEK CHANGES\n%s\n", thin, thin)

	if len(snap.WeekOverWeek.Themes.Up) > 0 {
		fmt.Fprintln(&b, "\nThemes trending up:")
		for _, d := range top(snap.WeekOverWeek.Themes.Up, 5) {
			fmt.Fprintf(&b, "   - %s: %d -> %d (+%d)\n", d.Name, d.Last, d.This, d.Change)
		}
	}
	if len(snap.WeekOverWeek.Themes.Down) > 0 {
		fmt.Fprintln(&b, "\nThemes trending down:")
		for _, d := range top(snap.WeekOverWeek.Themes.Down, 5) {
			fmt.Fprintf(&b, "   - %s: %d -> %d (-%d)\n", d.Name, d.Last, d.This, d.Change)
		}
	}
	if len(snap.WeekOverWeek.Themes.New) > 0 {
		fmt.Fprintln(&b, "\nNew themes this week:")
		for _, d := range top(snap.WeekOverWeek.Themes.New, 5) {
			fmt.Fprintf(&b, "   - %s (%d videos)\n", d.Name, d.This)
		}
	}

	fmt.Fprintf(&b, "\n%s\nPATTERN LIFECYCLE\n%s\n", thin, thin)

	emerging := byStatus(snap.Lifecycle.Patterns, StatusEmerging)
	peaking := byStatus(snap.Lifecycle.Patterns, StatusPeaking)
	declining := byStatus(snap.Lifecycle.Patterns, StatusDeclining)

	if len(emerging) > 0 {
		fmt.Fprintln(&b, "\nEmerging patterns (catch these early):")
		for _, e := range top(emerging, 5) {
			fmt.Fprintf(&b, "   - %s: %d -> %d -> %d\n", e.Name, e.MonthAgo, e.PrevWeek, e.LastWeek)
		}
	}
	if len(peaking) > 0 {
		fmt.Fprintln(&b, "\nPeaking patterns (use now, watch for saturation):")
		for _, e := range top(peaking, 5) {
			fmt.Fprintf(&b, "   - %s: %d this week\n", e.Name, e.LastWeek)
		}
	}
	if len(declining) > 0 {
		fmt.Fprintln(&b, "\nDeclining patterns (may be played out):")
		for _, e := range top(declining, 5) {
			fmt.Fprintf(&b, "   - %s: was %d, now %d\n", e.Name, e.PrevWeek, e.LastWeek)
		}
	}

	if emergingThemes := byStatus(snap.Lifecycle.Themes, StatusEmerging); len(emergingThemes) > 0 {
		fmt.Fprintln(&b, "\nEmerging themes:")
		for _, e := range top(emergingThemes, 5) {
			fmt.Fprintf(&b, "   - %s: %d -> %d -> %d\n", e.Name, e.MonthAgo, e.PrevWeek, e.LastWeek)
		}
	}

	if len(snap.TopPerformers) > 0 {
		fmt.Fprintf(&b, "\n%s\nTOP PERFORMERS THIS WEEK\n%s\n", thin, thin)
		for i, v := range top(snap.TopPerformers, 5) {
			fmt.Fprintf(&b, "\n#%d - %s\n", i+1, truncate(v.Title, 50))
			fmt.Fprintf(&b, "    Channel: %s\n", v.ChannelName)
			fmt.Fprintf(&b, "    Velocity: %.2f | Ratio: %.1fx\n", v.VelocityScore, v.Ratio)
			fmt.Fprintf(&b, "    URL: %s\n", v.URL)
		}
	}

	if len(snap.EmergingChannels) > 0 {
		fmt.Fprintf(&b, "\n%s\nCHANNELS TO WATCH\n%s\n", thin, thin)
		fmt.Fprintln(&b, "(Multiple outperformers this week)")
		for _, ch := range top(snap.EmergingChannels, 5) {
			fmt.Fprintf(&b, "   - %s (%s): %d hits this week\n", ch.Channel, ch.Category, ch.ThisWeek)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	return b.String()
}

func byStatus(entries []LifecycleEntry, status string) []LifecycleEntry {
	var out []LifecycleEntry
	for _, e := range entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

func top[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
