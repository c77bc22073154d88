package analyzer

import "strings"

// themeKeywords maps a content theme to the keywords that signal it. Matching
// runs over the concatenation of title, description, and tags, lowercased.
// Order is fixed so theme lists come out deterministic.
var themeKeywords = []struct {
	theme    string
	keywords []string
}{
	{"basketball", []string{"nba", "basketball", "hoops", "dunk", "lebron", "curry", "wnba", "march madness"}},
	{"football", []string{"nfl", "football", "touchdown", "quarterback", "super bowl", "college football"}},
	{"soccer", []string{"soccer", "messi", "ronaldo", "premier league", "world cup", "champions league", "futbol", "mls", "goal"}},
	{"athlete", []string{"athlete", "mvp", "rookie", "draft pick", "pro athlete"}},
	{"training", []string{"workout", "training", "gym", "exercise", "drills", "practice", "routine"}},
	{"lifestyle", []string{"day in the life", "vlog", "house tour", "car collection", "shopping", "routine"}},
	{"competition", []string{"challenge", "1v1", "tournament", "bet", "wager", "competition", "race"}},
	{"reaction", []string{"reacts", "reaction", "responds", "watching"}},
	{"interview", []string{"interview", "podcast", "sat down", "exclusive", "opens up"}},
	{"highlights", []string{"highlights", "best plays", "top plays", "mixtape", "compilation"}},
	{"drama", []string{"beef", "exposed", "called out", "response", "drama", "controversy"}},
	{"money", []string{"salary", "contract", "million", "net worth", "paid", "earnings"}},
	{"celebrity", []string{"celebrity", "famous", "star", "meets"}},
}

// ClassifyThemes tags a video with content themes based on keyword presence
// across its title, description, and tags.
func ClassifyThemes(title, description string, tags []string) []string {
	parts := make([]string, 0, len(tags)+2)
	parts = append(parts, title, description)
	parts = append(parts, tags...)
	text := strings.ToLower(strings.Join(parts, " "))

	var themes []string
	for _, entry := range themeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				themes = append(themes, entry.theme)
				break
			}
		}
	}
	return themes
}
