package generator

import (
	"regexp"
	"strings"
)

var titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

func newPost(topic string, length int, prompt, text string) Post {
	return Post{
		Topic:     topic,
		Length:    length,
		Prompt:    prompt,
		Title:     extractTitle(text),
		WordCount: countWords(text),
		Text:      text,
	}
}

// extractTitle returns the first level-one markdown heading, if any.
func extractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "*"))
	}
	return ""
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
