// Package formatter splits free-form analysis text into titled sections and
// locates the links embedded in it.
package formatter

import (
	"regexp"
	"strings"
)

const fallbackTitle = "Analysis"

// Section is a titled group of content lines. Never persisted.
type Section struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

var (
	numberedHeader = regexp.MustCompile(`^\d+\.\s`)
	keywordHeader  = regexp.MustCompile(`(?i)^(good|bad|benefits?|drawbacks?|health|ingredients?|analysis|product|name|type|claims?|concerns?|recommendations?|summary):`)
	phraseHeader   = regexp.MustCompile(`(?i)^(what.*(good|bad)|if there is any difference|clearly tell)`)
	numberPrefix   = regexp.MustCompile(`^\d+\.\s*`)
)

func isHeader(line string) bool {
	return numberedHeader.MatchString(line) ||
		keywordHeader.MatchString(line) ||
		phraseHeader.MatchString(line)
}

// ParseSections groups non-blank lines under the nearest preceding header.
// Sections without content are dropped, as are lines before the first
// header. Text with no recognizable header becomes a single "Analysis"
// section.
func ParseSections(text string) []Section {
	lines := nonBlankLines(text)
	sections := []Section{}
	var current Section

	flush := func() {
		if current.Title != "" && len(current.Content) > 0 {
			sections = append(sections, current)
		}
	}

	for _, line := range lines {
		if isHeader(line) {
			flush()
			current = Section{Title: numberPrefix.ReplaceAllString(line, "")}
			continue
		}
		current.Content = append(current.Content, line)
	}
	flush()

	if len(sections) == 0 && len(lines) > 0 {
		sections = append(sections, Section{Title: fallbackTitle, Content: lines})
	}
	return sections
}

func nonBlankLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}
