package formatter

import "strings"

const bullet = "•"

// RenderSections lays sections out as plain text: a title line followed by
// one bulleted line per item, sections separated by a blank line.
func RenderSections(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Title)
		b.WriteString("\n")
		for _, item := range s.Content {
			b.WriteString("  ")
			b.WriteString(bullet)
			b.WriteString(" ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderReport is the plain-text analysis report used for email delivery.
func RenderReport(foodName, ingredients, healthAnalysis string) string {
	var b strings.Builder
	b.WriteString("Food: ")
	b.WriteString(strings.TrimSpace(foodName))
	b.WriteString("\n\nIngredients:\n")
	b.WriteString(strings.TrimSpace(ingredients))
	b.WriteString("\n\n")
	b.WriteString(RenderSections(ParseSections(healthAnalysis)))

	if urls := ExtractURLs(healthAnalysis); len(urls) > 0 {
		b.WriteString("\nSources:\n")
		for _, u := range urls {
			b.WriteString("  - ")
			b.WriteString(u)
			b.WriteString("\n")
		}
	}
	return b.String()
}
