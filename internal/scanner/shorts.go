package scanner

import "strings"

var (
	shortsTitleMarkers = []string{"#shorts", "#short", "#ytshorts"}
	shortsTagMarkers   = map[string]bool{"shorts": true, "short": true, "ytshorts": true}
)

func titleMarksShort(title string) bool {
	lower := strings.ToLower(title)
	for _, m := range shortsTitleMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func tagMarksShort(tag string) bool {
	return shortsTagMarkers[strings.ToLower(tag)]
}
