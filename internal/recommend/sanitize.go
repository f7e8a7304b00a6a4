package recommend

import (
	"html"
	"strings"
)

var emphasisMarkers = strings.NewReplacer("**", "", "__", "", "*", "", "`", "")

// CleanText decodes HTML entities and removes markdown emphasis markers so the
// text can be displayed as-is.
func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = emphasisMarkers.Replace(s)
	return strings.TrimSpace(s)
}

func cleanAll(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if c := CleanText(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}
