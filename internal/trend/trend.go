// Package trend computes longitudinal pattern and theme lifecycle analysis
// over the history store: what is emerging, peaking, stable, or declining
// across the last 7 / 7-14 / 14-30 day windows.
package trend

import (
	"sort"
	"time"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// Lifecycle statuses.
const (
	StatusEmerging  = "emerging"
	StatusPeaking   = "peaking"
	StatusStable    = "stable"
	StatusDeclining = "declining"
)

// MinEntriesForAnalysis is the smallest history that produces a meaningful
// trend report.
const MinEntriesForAnalysis = 5

// LifecycleEntry is one pattern's or theme's trajectory across the three
// comparison windows.
type LifecycleEntry struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	LastWeek int    `json:"last_week"`
	PrevWeek int    `json:"prev_week"`
	MonthAgo int    `json:"month_ago"`
}

// Lifecycle is the full lifecycle analysis result.
type Lifecycle struct {
	Patterns       []LifecycleEntry `json:"patterns"`
	Themes         []LifecycleEntry `json:"themes"`
	LastWeekVideos int              `json:"last_week_videos"`
	PrevWeekVideos int              `json:"prev_week_videos"`
	MonthAgoVideos int              `json:"month_ago_videos"`
}

// Delta is one item's week-over-week count movement.
type Delta struct {
	Name   string `json:"name"`
	This   int    `json:"this_week"`
	Last   int    `json:"last_week"`
	Change int    `json:"change"`
}

// Changes buckets week-over-week movement for one dimension.
type Changes struct {
	Up   []Delta `json:"up"`
	Down []Delta `json:"down"`
	New  []Delta `json:"new"`
	Gone []Delta `json:"gone"`
}

// WeekOverWeek compares this week's detections to last week's across every
// counted dimension.
type WeekOverWeek struct {
	Patterns      Changes `json:"patterns"`
	Themes        Changes `json:"themes"`
	Channels      Changes `json:"channels"`
	Categories    Changes `json:"categories"`
	TotalThisWeek int     `json:"total_this_week"`
	TotalLastWeek int     `json:"total_last_week"`
}

// EmergingChannel is a channel producing noticeably more outperformers this
// week than over the preceding three.
type EmergingChannel struct {
	Channel  string `json:"channel"`
	Category string `json:"category"`
	ThisWeek int    `json:"this_week"`
	Previous int    `json:"previous"`
}

// EntriesBetween returns entries scanned between daysBack and daysEnd days
// ago, inclusive on both edges.
func EntriesBetween(entries []*model.HistoryEntry, now time.Time, daysBack, daysEnd int) []*model.HistoryEntry {
	start := now.AddDate(0, 0, -daysBack)
	end := now.AddDate(0, 0, -daysEnd)

	var out []*model.HistoryEntry
	for _, e := range entries {
		if e.ScannedAt.IsZero() {
			continue
		}
		if !e.ScannedAt.Before(start) && !e.ScannedAt.After(end) {
			out = append(out, e)
		}
	}
	return out
}

func countTags(entries []*model.HistoryEntry) (patterns, themes map[string]int) {
	patterns = map[string]int{}
	themes = map[string]int{}
	for _, e := range entries {
		for _, p := range e.Patterns {
			patterns[p]++
		}
		for _, t := range e.Themes {
			themes[t]++
		}
	}
	return patterns, themes
}

// classifyTrend assigns a lifecycle status from the three window counts. Rule
// order matters and is load-bearing: a count series that is flat across all
// three windows lands in "stable" only because the peaking rule requires
// prev > old first.
func classifyTrend(current, previous, old int) string {
	if current == 0 && previous == 0 {
		return ""
	}

	if current > 0 && previous == 0 && old == 0 {
		return StatusEmerging
	}
	if float64(current) > float64(previous)*1.5 && current > old {
		return StatusEmerging
	}

	if float64(current) < float64(previous)*0.5 && previous > 0 {
		return StatusDeclining
	}
	if current == 0 && (previous > 0 || old > 0) {
		return StatusDeclining
	}

	if current >= previous && current >= old && previous > old {
		return StatusPeaking
	}

	if current > 0 {
		return StatusStable
	}
	return ""
}

// AnalyzePatternLifecycle categorizes every pattern and theme seen in the
// last 30 days by comparing the last 7 days against the previous 7-14 and
// 14-30 day windows.
func AnalyzePatternLifecycle(entries []*model.HistoryEntry, now time.Time) *Lifecycle {
	lastWeek := EntriesBetween(entries, now, 7, 0)
	prevWeek := EntriesBetween(entries, now, 14, 7)
	monthAgo := EntriesBetween(entries, now, 30, 14)

	lastP, lastT := countTags(lastWeek)
	prevP, prevT := countTags(prevWeek)
	oldP, oldT := countTags(monthAgo)

	return &Lifecycle{
		Patterns:       lifecycleEntries(lastP, prevP, oldP),
		Themes:         lifecycleEntries(lastT, prevT, oldT),
		LastWeekVideos: len(lastWeek),
		PrevWeekVideos: len(prevWeek),
		MonthAgoVideos: len(monthAgo),
	}
}

func lifecycleEntries(last, prev, old map[string]int) []LifecycleEntry {
	names := map[string]bool{}
	for n := range last {
		names[n] = true
	}
	for n := range prev {
		names[n] = true
	}
	for n := range old {
		names[n] = true
	}

	var out []LifecycleEntry
	for n := range names {
		status := classifyTrend(last[n], prev[n], old[n])
		if status == "" {
			continue
		}
		out = append(out, LifecycleEntry{
			Name:     n,
			Status:   status,
			LastWeek: last[n],
			PrevWeek: prev[n],
			MonthAgo: old[n],
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastWeek != out[j].LastWeek {
			return out[i].LastWeek > out[j].LastWeek
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// WeekOverWeekChanges compares this week's detections to last week's.
func WeekOverWeekChanges(entries []*model.HistoryEntry, now time.Time) *WeekOverWeek {
	thisWeek := EntriesBetween(entries, now, 7, 0)
	lastWeek := EntriesBetween(entries, now, 14, 7)

	thisP, thisT := countTags(thisWeek)
	lastP, lastT := countTags(lastWeek)

	countBy := func(videos []*model.HistoryEntry, key func(*model.HistoryEntry) string) map[string]int {
		counts := map[string]int{}
		for _, v := range videos {
			counts[key(v)]++
		}
		return counts
	}
	channelName := func(e *model.HistoryEntry) string { return e.ChannelName }
	category := func(e *model.HistoryEntry) string { return e.ChannelCategory }

	return &WeekOverWeek{
		Patterns:      calcChanges(thisP, lastP),
		Themes:        calcChanges(thisT, lastT),
		Channels:      calcChanges(countBy(thisWeek, channelName), countBy(lastWeek, channelName)),
		Categories:    calcChanges(countBy(thisWeek, category), countBy(lastWeek, category)),
		TotalThisWeek: len(thisWeek),
		TotalLastWeek: len(lastWeek),
	}
}

func calcChanges(this, last map[string]int) Changes {
	names := map[string]bool{}
	for n := range this {
		names[n] = true
	}
	for n := range last {
		names[n] = true
	}

	var changes Changes
	for n := range names {
		tv, lv := this[n], last[n]
		switch {
		case tv > 0 && lv == 0:
			changes.New = append(changes.New, Delta{Name: n, This: tv})
		case tv == 0 && lv > 0:
			changes.Gone = append(changes.Gone, Delta{Name: n, Last: lv})
		case tv > lv:
			changes.Up = append(changes.Up, Delta{Name: n, This: tv, Last: lv, Change: tv - lv})
		case tv < lv:
			changes.Down = append(changes.Down, Delta{Name: n, This: tv, Last: lv, Change: lv - tv})
		}
	}

	byChange := func(s []Delta) {
		sort.Slice(s, func(i, j int) bool {
			if s[i].Change != s[j].Change {
				return s[i].Change > s[j].Change
			}
			return s[i].Name < s[j].Name
		})
	}
	byChange(changes.Up)
	byChange(changes.Down)
	sort.Slice(changes.New, func(i, j int) bool {
		if changes.New[i].This != changes.New[j].This {
			return changes.New[i].This > changes.New[j].This
		}
		return changes.New[i].Name < changes.New[j].Name
	})
	sort.Slice(changes.Gone, func(i, j int) bool {
		if changes.Gone[i].Last != changes.Gone[j].Last {
			return changes.Gone[i].Last > changes.Gone[j].Last
		}
		return changes.Gone[i].Name < changes.Gone[j].Name
	})

	return changes
}

// TopPerformers returns the highest-velocity detections from the past week.
func TopPerformers(entries []*model.HistoryEntry, now time.Time, limit int) []*model.HistoryEntry {
	thisWeek := EntriesBetween(entries, now, 7, 0)
	sort.SliceStable(thisWeek, func(i, j int) bool {
		return thisWeek[i].VelocityScore > thisWeek[j].VelocityScore
	})
	if len(thisWeek) > limit {
		thisWeek = thisWeek[:limit]
	}
	return thisWeek
}

// EmergingChannels finds channels producing repeated outperformers this week,
// more than they did over the preceding three weeks combined.
func EmergingChannels(entries []*model.HistoryEntry, now time.Time) []EmergingChannel {
	thisWeek := EntriesBetween(entries, now, 7, 0)
	prevWeeks := EntriesBetween(entries, now, 30, 7)

	thisCounts := map[string]int{}
	categories := map[string]string{}
	for _, e := range thisWeek {
		thisCounts[e.ChannelName]++
		if _, ok := categories[e.ChannelName]; !ok {
			categories[e.ChannelName] = e.ChannelCategory
		}
	}
	prevCounts := map[string]int{}
	for _, e := range prevWeeks {
		prevCounts[e.ChannelName]++
	}

	var emerging []EmergingChannel
	for name, count := range thisCounts {
		if count >= 2 && count > prevCounts[name] {
			emerging = append(emerging, EmergingChannel{
				Channel:  name,
				Category: categories[name],
				ThisWeek: count,
				Previous: prevCounts[name],
			})
		}
	}

	sort.Slice(emerging, func(i, j int) bool {
		if emerging[i].ThisWeek != emerging[j].ThisWeek {
			return emerging[i].ThisWeek > emerging[j].ThisWeek
		}
		return emerging[i].Channel < emerging[j].Channel
	})
	if len(emerging) > 10 {
		emerging = emerging[:10]
	}
	return emerging
}
