package assistant

import (
	"regexp"
	"strings"
)

var (
	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	bulletPrefix  = regexp.MustCompile(`(?m)^\s*(?:[-*+•]|\d+\.)\s+`)
	emphasisMarks = strings.NewReplacer("**", "", "__", "", "*", "", "_", "", "#", "", "`", "", "•", "", "→", "")
)

// SpeechText flattens markdown into plain prose for the speech channel.
func SpeechText(markdown string) string {
	text := markdownLink.ReplaceAllString(markdown, "$1")
	text = bulletPrefix.ReplaceAllString(text, "")
	text = emphasisMarks.Replace(text)

	lines := strings.Split(text, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
