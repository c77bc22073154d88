package report

import (
	"fmt"
	"strings"

	"github.com/creator-intel/outperformer-scanner-go/internal/analyzer"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

// Options carries the context lines rendered into report headers.
type Options struct {
	MinAgeHours float64
	MaxAgeHours float64
	BatchInfo   string // e.g. "batch 2/5", empty for full scans
	Ideas       string // optional generated content ideas
}

// FormatConsole renders the full scan report as console text, grouped by
// classification with a pattern and classification summary at the end.
func FormatConsole(ops []*model.Outperformer, mids []*model.Outperformer, opts Options) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	fmt.Fprintf(&b, "\n%s\nOUTPERFORMERS (sorted by velocity score)\n%s\n", rule, rule)

	if len(ops) == 0 {
		fmt.Fprintln(&b, "\nNo outperforming videos found in the time window.")
		fmt.Fprintf(&b, "Looking at videos %.0f-%.0f hours old.\n", opts.MinAgeHours, opts.MaxAgeHours)
		if len(mids) > 0 {
			writeMidPerformers(&b, mids, thin)
		}
		return b.String()
	}

	g := GroupByClassification(ops)

	writeGroup(&b, thin, "TREND-JACKERS (high velocity within 72h)", g.TrendJackers)
	writeGroup(&b, thin, "AUTHORITY BUILDERS (still strong at 7+ days)", g.AuthorityBuilders)
	writeGroup(&b, thin, "STANDARD OUTPERFORMERS", g.Standard)

	patterns, themes := analyzer.PatternSummary(ops)

	fmt.Fprintf(&b, "\n%s\nPATTERN SUMMARY\n%s\n", thin, thin)
	fmt.Fprintln(&b, "\nThemes:")
	writeCounts(&b, themes)
	fmt.Fprintln(&b, "\nTitle Patterns:")
	writeCounts(&b, patterns)

	fmt.Fprintf(&b, "\n%s\nCLASSIFICATION SUMMARY\n%s\n", thin, thin)
	fmt.Fprintf(&b, "  Trend-Jackers: %d\n", len(g.TrendJackers))
	fmt.Fprintf(&b, "  Authority Builders: %d\n", len(g.AuthorityBuilders))
	fmt.Fprintf(&b, "  Standard: %d\n", len(g.Standard))

	if len(mids) > 0 {
		writeMidPerformers(&b, mids, thin)
	}

	if opts.Ideas != "" {
		fmt.Fprintf(&b, "\n%s\nCONTENT IDEAS\n%s\n\n%s\n", rule, rule, opts.Ideas)
	}

	return b.String()
}

func writeGroup(b *strings.Builder, thin, heading string, ops []*model.Outperformer) {
	if len(ops) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n%s\n%s\n", thin, heading, thin)
	for i, op := range ops {
		writeVideo(b, i+1, op)
	}
}

func writeVideo(b *strings.Builder, n int, op *model.Outperformer) {
	fmt.Fprintf(b, "\n#%d - %s\n", n, op.Video.Title)
	fmt.Fprintf(b, "    Channel: %s (%s)\n", op.Channel.Name, op.Channel.Category)
	fmt.Fprintf(b, "    Views: %d | Subs: %d\n", op.Video.Views, op.Channel.Subscribers)
	fmt.Fprintf(b, "    Ratio: %.1fx | Velocity: %.2f/day | Age: %s\n", op.Ratio, op.VelocityScore, FormatAge(op.AgeHours))
	fmt.Fprintf(b, "    Themes: %s\n", joinOrNone(op.Themes))
	fmt.Fprintf(b, "    Patterns: %s\n", joinOrNone(op.TitlePatterns))
	if op.IsNoise {
		fmt.Fprintf(b, "    Noise: %s\n", op.NoiseType)
	}
	if op.Summary != "" {
		fmt.Fprintf(b, "    Summary: %s\n", op.Summary)
	}
	fmt.Fprintf(b, "    URL: %s\n", op.URL())
}

func writeMidPerformers(b *strings.Builder, mids []*model.Outperformer, thin string) {
	fmt.Fprintf(b, "\n%s\nMID-PERFORMERS (sports channels, ratio 0.5x+)\n%s\n", thin, thin)
	for i, op := range mids {
		fmt.Fprintf(b, "\n#%d - %s\n", i+1, op.Video.Title)
		fmt.Fprintf(b, "    Channel: %s (%s)\n", op.Channel.Name, op.Channel.Category)
		fmt.Fprintf(b, "    Ratio: %.2fx | Views: %d | Subs: %d\n", op.Ratio, op.Video.Views, op.Channel.Subscribers)
		fmt.Fprintf(b, "    URL: %s\n", op.URL())
	}
}

func writeCounts(b *strings.Builder, counts []analyzer.TagCount) {
	if len(counts) == 0 {
		fmt.Fprintln(b, "  none")
		return
	}
	for _, c := range counts {
		plural := "s"
		if c.Count == 1 {
			plural = ""
		}
		fmt.Fprintf(b, "  - %s: %d video%s\n", c.Name, c.Count, plural)
	}
}
