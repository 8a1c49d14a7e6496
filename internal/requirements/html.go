package requirements

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`[ \t]+`)
var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// NormalizeDescription strips HTML markup from a job description when it
// was submitted as raw HTML, and collapses whitespace. Plain text passes
// through unchanged apart from trimming.
func NormalizeDescription(text string) string {
	trimmed := strings.TrimSpace(text)
	if !looksLikeHTML(trimmed) {
		return trimmed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return trimmed
	}
	doc.Find("script, style, noscript, nav, footer").Remove()

	// Keep block boundaries as newlines so list items stay separated.
	var sb strings.Builder
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		chunk := strings.TrimSpace(s.Text())
		if chunk != "" {
			sb.WriteString(chunk)
			sb.WriteString("\n")
		}
	})

	extracted := strings.TrimSpace(sb.String())
	if extracted == "" {
		extracted = strings.TrimSpace(doc.Text())
	}
	if extracted == "" {
		return trimmed
	}

	extracted = whitespaceRe.ReplaceAllString(extracted, " ")
	extracted = blankLinesRe.ReplaceAllString(extracted, "\n\n")
	return extracted
}

func looksLikeHTML(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range []string{"<html", "<body", "<div", "<p>", "<br", "<ul", "<li"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
