package formatter

import "regexp"

var urlPattern = regexp.MustCompile(`https?://\S+`)

// LinkSpan is a URL together with the plain text that precedes it.
type LinkSpan struct {
	Preceding string `json:"preceding"`
	URL       string `json:"url"`
}

// ExtractLinks cuts text into link spans plus the trailing text after the
// last link. Concatenating every Preceding and URL, then trailing, gives back
// the input.
func ExtractLinks(text string) ([]LinkSpan, string) {
	var spans []LinkSpan
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		spans = append(spans, LinkSpan{
			Preceding: text[last:loc[0]],
			URL:       text[loc[0]:loc[1]],
		})
		last = loc[1]
	}
	return spans, text[last:]
}

// ExtractURLs returns every http(s) URL in order of appearance.
func ExtractURLs(text string) []string {
	urls := urlPattern.FindAllString(text, -1)
	if urls == nil {
		return []string{}
	}
	return urls
}
