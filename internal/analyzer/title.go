// Package analyzer provides the pure-function classifiers the detection
// engine layers onto outperformers: title pattern extraction, theme tagging,
// and noise detection. All matching is keyword/regex based and side-effect
// free.
package analyzer

import (
	"regexp"
	"strings"
)

// Title pattern tags. Patterns are non-exclusive: a title accumulates every
// tag it matches.
const (
	PatternFirstPersonAction = "first_person_action"
	PatternExposeTruth       = "expose_truth"
	PatternChallengeBet      = "challenge_bet"
	PatternListicle          = "listicle"
	PatternVersus            = "versus"
	PatternReaction          = "reaction"
	PatternVlogBTS           = "vlog_bts"
	PatternInterview         = "interview"
	PatternHighlights        = "highlights"
	PatternQuestion          = "question"
	PatternNumberStart       = "number_start"
	PatternAllCaps           = "all_caps"
	PatternEmoji             = "emoji"
)

var (
	reFirstPerson = regexp.MustCompile(`\bi\s+(tried|spent|went|made|built|bought|got|did|ate|lived)`)
	reExposeTruth = regexp.MustCompile(`(the\s+real\s+reason|exposed|the\s+truth\s+about|what\s+they\s+don'?t|secret|revealed)`)
	reChallenge   = regexp.MustCompile(`(challenge|\$\d+|bet\b|wager|competition)`)
	reListicle    = regexp.MustCompile(`(top\s+\d+|\d+\s+best|\d+\s+worst|ranking|tier\s+list)`)
	reVersus      = regexp.MustCompile(`(\bvs\.?\b|versus|\d+v\d+|\bv\b)`)
	reReaction    = regexp.MustCompile(`(reacts?|reaction|responding\s+to|watching|reacting)`)
	reVlogBTS     = regexp.MustCompile(`(day\s+in\s+(the\s+)?life|behind\s+the\s+scenes|vlog|bts|24\s+hours)`)
	reInterview   = regexp.MustCompile(`(interview|sat\s+down\s+with|talked\s+to|speaks\s+on|opens\s+up)`)
	reHighlights  = regexp.MustCompile(`(highlights?|best\s+plays|mixtape|compilation|moments)`)
	reNumberStart = regexp.MustCompile(`^\d+`)
	reCapsWord    = regexp.MustCompile(`\b[A-Z]{2,}\b`)

	reEmoji = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{2702}-\x{27B0}\x{24C2}-\x{1F251}]`)
)

// AnalyzeTitle extracts packaging patterns from a video title. The returned
// slice is empty (nil) when no pattern matches.
func AnalyzeTitle(title string) []string {
	var patterns []string
	lower := strings.ToLower(title)

	if reFirstPerson.MatchString(lower) {
		patterns = append(patterns, PatternFirstPersonAction)
	}
	if reExposeTruth.MatchString(lower) {
		patterns = append(patterns, PatternExposeTruth)
	}
	if reChallenge.MatchString(lower) {
		patterns = append(patterns, PatternChallengeBet)
	}
	if reListicle.MatchString(lower) {
		patterns = append(patterns, PatternListicle)
	}
	if reVersus.MatchString(lower) {
		patterns = append(patterns, PatternVersus)
	}
	if reReaction.MatchString(lower) {
		patterns = append(patterns, PatternReaction)
	}
	if reVlogBTS.MatchString(lower) {
		patterns = append(patterns, PatternVlogBTS)
	}
	if reInterview.MatchString(lower) {
		patterns = append(patterns, PatternInterview)
	}
	if reHighlights.MatchString(lower) {
		patterns = append(patterns, PatternHighlights)
	}
	if strings.HasSuffix(strings.TrimSpace(title), "?") {
		patterns = append(patterns, PatternQuestion)
	}
	if reNumberStart.MatchString(strings.TrimSpace(title)) {
		patterns = append(patterns, PatternNumberStart)
	}
	if len(reCapsWord.FindAllString(title, 2)) >= 2 {
		patterns = append(patterns, PatternAllCaps)
	}
	if reEmoji.MatchString(title) {
		patterns = append(patterns, PatternEmoji)
	}

	return patterns
}
