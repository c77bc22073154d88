package insight

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creator-intel/outperformer-scanner-go/internal/model"
)

const summaryDescLimit = 400

// reNumberedMarker locates the "[n]" markers that delimit per-video sections
// in the model's completion.
var reNumberedMarker = regexp.MustCompile(`\[(\d+)\]`)

// SummarizeEntries generates 1-2 sentence summaries for a batch of history
// entries in a single LLM call and returns them keyed by video ID. Entries
// the model skipped are simply absent from the result.
func (c *Client) SummarizeEntries(ctx context.Context, entries []*model.HistoryEntry) (map[string]string, error) {
	if len(entries) == 0 {
		return map[string]string{}, nil
	}

	response, err := c.Generate(ctx, buildSummaryPrompt(entries))
	if err != nil {
		return nil, fmt.Errorf("generate summaries: %w", err)
	}

	summaries := map[string]string{}
	for idx, text := range parseNumberedResponse(response) {
		if idx >= 1 && idx <= len(entries) && text != "" {
			summaries[entries[idx-1].VideoID] = text
		}
	}
	return summaries, nil
}

func buildSummaryPrompt(entries []*model.HistoryEntry) string {
	var blocks []string
	for i, e := range entries {
		desc := e.Description
		if desc == "" {
			desc = "(none)"
		} else if len(desc) > summaryDescLimit {
			desc = desc[:summaryDescLimit]
		}

		blocks = append(blocks, fmt.Sprintf(`[%d]
   Title: %s
   Channel: %s (%s, %d subscribers)
   Description: %s`,
			i+1, e.Title, e.ChannelName, e.ChannelCategory, e.Subscribers, desc))
	}

	return fmt.Sprintf(`For each numbered video below, provide:
1. A 1-2 sentence summary of what the video is about based on its title and description.
2. A brief note about who the channel is.

Combine both into a single concise paragraph (max 3 sentences total).
If the description is empty, summarize based on the title alone.
Do not speculate about content not mentioned in the title or description.

Format your response as:
[1] <summary>
[2] <summary>
...

VIDEOS:

%s`, strings.Join(blocks, "\n\n"))
}

// parseNumberedResponse extracts "[n] text" sections from a completion.
// Indexes are 1-based as written by the model; each section runs until the
// next marker or end of text.
func parseNumberedResponse(response string) map[int]string {
	out := map[int]string{}
	markers := reNumberedMarker.FindAllStringSubmatchIndex(response, -1)
	for i, m := range markers {
		idx, err := strconv.Atoi(response[m[2]:m[3]])
		if err != nil {
			continue
		}
		end := len(response)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		out[idx] = strings.TrimSpace(response[m[1]:end])
	}
	return out
}
