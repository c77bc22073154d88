package analyzer

import (
	"sort"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// TagCount is a pattern or theme with its occurrence count.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PatternSummary aggregates pattern and theme counts across a set of
// outperformers, sorted by count descending.
func PatternSummary(ops []*model.Outperformer) (patterns, themes []TagCount) {
	patternCounts := map[string]int{}
	themeCounts := map[string]int{}

	for _, op := range ops {
		for _, p := range op.TitlePatterns {
			patternCounts[p]++
		}
		for _, t := range op.Themes {
			themeCounts[t]++
		}
	}

	return sortedCounts(patternCounts), sortedCounts(themeCounts)
}

func sortedCounts(counts map[string]int) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, TagCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
