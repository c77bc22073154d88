package analyzer

import (
	"regexp"
	"strings"
)

// Noise detection separates videos that spike for reasons other than
// packaging: game recaps, live streams, political outrage, and off-topic
// uploads. Checks run in a fixed priority order; see Annotate in the scanner
// package for how the first match wins.

var (
	recapKeywords = []string{
		"recap", "highlights", "full game", "full match", "extended highlights",
		"all goals", "best plays", "condensed game", "game recap", "post game",
		"postgame", "match report",
	}

	eventNouns = []string{"match", "game", "cup", "league", "final"}

	liveStreamPhrases = []string{
		"live stream", "livestream", "watch party", "play by play",
		"play-by-play", "live reaction", "watch along",
	}

	politicalTerms = []string{
		"trump", "biden", "epstein", "congress", "senate", "leftist",
		"right-wing", "left-wing", "democrat", "republican", "pam bondi",
		"white house", "election", "politician",
	}

	dramaKeywords = []string{
		"meltdown", "exposed", "scandal", "destroyed", "slams", "outrage",
		"furious", "lost her mind", "lost his mind", "corrupt", "impeach",
		"arrested", "fired",
	}

	politicalCategories = map[string]bool{
		"news":       true,
		"politics":   true,
		"culture":    true,
		"media":      true,
		"commentary": true,
	}

	reScore = regexp.MustCompile(`\d+\s*-\s*\d+`)
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hasVersus(title string) bool {
	return reVersus.MatchString(title)
}

// IsEventRecap reports whether a title reads like coverage of a specific
// sporting event rather than original content.
func IsEventRecap(title, category string) bool {
	lower := strings.ToLower(title)

	recap := containsAny(lower, recapKeywords)
	versus := hasVersus(lower)
	score := reScore.MatchString(lower)

	if recap && (versus || score) {
		return true
	}
	if versus && score {
		return true
	}
	if strings.ToLower(category) == "highlights" && versus {
		return true
	}
	if recap && containsAny(lower, eventNouns) {
		return true
	}
	return false
}

// IsLiveStream reports whether a title signals a live broadcast or watch-along.
func IsLiveStream(title string) bool {
	return containsAny(strings.ToLower(title), liveStreamPhrases)
}

// IsPoliticalNews reports whether a title rides a political outrage cycle: a
// political term paired with drama framing, or a political term on a channel
// whose category is commentary-adjacent.
func IsPoliticalNews(title, category string) bool {
	lower := strings.ToLower(title)

	if !containsAny(lower, politicalTerms) {
		return false
	}
	if containsAny(lower, dramaKeywords) {
		return true
	}
	return politicalCategories[strings.ToLower(category)]
}

// expectedThemes lists the themes a channel category is expected to produce.
// Categories absent from this table are never flagged off-topic.
var expectedThemes = map[string]map[string]bool{
	"basketball": {"basketball": true, "athlete": true, "training": true, "highlights": true, "competition": true, "interview": true, "reaction": true},
	"football":   {"football": true, "athlete": true, "training": true, "highlights": true, "competition": true, "interview": true, "reaction": true},
	"soccer":     {"soccer": true, "athlete": true, "training": true, "highlights": true, "competition": true, "interview": true, "reaction": true},
	"athlete":    sportsWideThemes,
	"sports":     sportsWideThemes,
	"training":   sportsWideThemes,
	"fitness":    sportsWideThemes,
}

var sportsWideThemes = map[string]bool{
	"basketball": true, "football": true, "soccer": true, "athlete": true,
	"training": true, "competition": true, "highlights": true,
	"lifestyle": true, "interview": true, "reaction": true,
}

// IsNotRelevant reports whether a video's detected themes have zero overlap
// with what its channel category is expected to produce. Videos with no
// detected themes are never flagged: absence of signal is not evidence of
// irrelevance.
func IsNotRelevant(category string, themes []string) bool {
	expected, ok := expectedThemes[strings.ToLower(category)]
	if !ok || len(themes) == 0 {
		return false
	}
	for _, t := range themes {
		if expected[t] {
			return false
		}
	}
	return true
}
