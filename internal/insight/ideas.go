package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/creator-intel/outperformer-scanner-go/internal/analyzer"
	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

const ideaVideoLimit = 10

// GenerateIdeas sends the top outperformers and their aggregate pattern
// summary to the LLM and returns generated content ideas as free text.
func (c *Client) GenerateIdeas(ctx context.Context, ops []*model.Outperformer) (string, error) {
	if len(ops) == 0 {
		return "", fmt.Errorf("no outperformers to generate ideas from")
	}

	ideas, err := c.Generate(ctx, buildIdeaPrompt(ops))
	if err != nil {
		return "", fmt.Errorf("generate ideas: %w", err)
	}
	return ideas, nil
}

func buildIdeaPrompt(ops []*model.Outperformer) string {
	patterns, themes := analyzer.PatternSummary(ops)

	var videos strings.Builder
	limit := len(ops)
	if limit > ideaVideoLimit {
		limit = ideaVideoLimit
	}
	for i, op := range ops[:limit] {
		fmt.Fprintf(&videos, `
%d. %q
   Channel: %s (%s)
   Subscribers: %d | Views: %d
   Ratio: %.1fx
   Themes: %s
   Patterns: %s
`,
			i+1, op.Video.Title, op.Channel.Name, op.Channel.Category,
			op.Channel.Subscribers, op.Video.Views, op.Ratio,
			joinOrNone(op.Themes), joinOrNone(op.TitlePatterns))
	}

	return fmt.Sprintf(`You are a content strategist for a sports media company targeting Gen Z audiences.

I've analyzed recent videos that significantly outperformed their channel's subscriber count (views > subscribers). Here are the top performers and trending patterns:

## TOP OUTPERFORMING VIDEOS
%s
## TRENDING THEMES (across all outperformers)
%s

## TRENDING TITLE PATTERNS (across all outperformers)
%s

Based on these insights, generate 5 specific content ideas.

For each idea, provide:
1. Ready-to-use title (incorporate winning patterns)
2. Format/Length: short-form (<60s), mid-form (2-5min), or long-form (10+min)
3. Why it works: connect to the patterns and themes that are performing
4. Talent/Assets needed: what's required to produce this

Focus on ideas that leverage the patterns that are clearly working, feel authentic to Gen Z audiences, and have viral potential based on what's already performing.`,
		videos.String(), countLines(themes), countLines(patterns))
}

func countLines(counts []analyzer.TagCount) string {
	if len(counts) == 0 {
		return "  No clear patterns"
	}
	var b strings.Builder
	for _, c := range counts {
		fmt.Fprintf(&b, "  - %s: %d videos\n", c.Name, c.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func joinOrNone(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}
