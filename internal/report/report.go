// Package report renders scan results for humans: console text, saved file
// reports, and Resend email delivery.
package report

import (
	"fmt"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// Grouped splits outperformers by classification, preserving input order.
type Grouped struct {
	TrendJackers      []*model.Outperformer
	AuthorityBuilders []*model.Outperformer
	Standard          []*model.Outperformer
}

// GroupByClassification splits a velocity-sorted outperformer list into its
// classification buckets.
func GroupByClassification(ops []*model.Outperformer) Grouped {
	var g Grouped
	for _, op := range ops {
		switch op.Classification {
		case model.ClassTrendJacker:
			g.TrendJackers = append(g.TrendJackers, op)
		case model.ClassAuthorityBuilder:
			g.AuthorityBuilders = append(g.AuthorityBuilders, op)
		default:
			g.Standard = append(g.Standard, op)
		}
	}
	return g
}

// AllNoise reports whether every outperformer carries a noise flag. Used to
// decide whether a delivery should fall back to mid-performers.
func AllNoise(ops []*model.Outperformer) bool {
	if len(ops) == 0 {
		return false
	}
	for _, op := range ops {
		if !op.IsNoise {
			return false
		}
	}
	return true
}

// FormatAge renders an age in hours as "Xh" under two days and "X.Yd" above.
func FormatAge(hours float64) string {
	if hours < 48 {
		return fmt.Sprintf("%.0fh", hours)
	}
	return fmt.Sprintf("%.1fd", hours/24)
}

func joinOrNone(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	out := tags[0]
	for _, t := range tags[1:] {
		out += ", " + t
	}
	return out
}
