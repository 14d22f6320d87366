package search

import (
	"regexp"
	"strings"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	whitespace  = regexp.MustCompile(`\s+`)

	// a block left open by a truncated page runs to the end of the input
	openBlock = regexp.MustCompile(`(?is)<(script|style)\b.*$`)

	entities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// Sanitize reduces an HTML page to plain text. Script and style blocks go
// first so their bodies never survive tag stripping.
func Sanitize(html string) string {
	text := scriptBlock.ReplaceAllString(html, "")
	text = styleBlock.ReplaceAllString(text, "")
	text = openBlock.ReplaceAllString(text, "")
	text = anyTag.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	text = entities.Replace(text)
	return strings.TrimSpace(text)
}
