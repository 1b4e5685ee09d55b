package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const textSeparator = "\n"

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var invisibleElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

// Text extracts the visible text of an HTML document.
//
// Text nodes are visited in document order, trimmed, and joined with a newline;
// whitespace-only nodes, comments and the bodies of script-like elements are dropped.
// Malformed markup is recovered by the HTML5 parser, so Text never fails.
func Text(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	var parts []string
	collectText(doc.Selection, &parts)

	return strings.TrimSpace(strings.Join(parts, textSeparator))
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)

		switch name {
		case "#text":
			if text := strings.TrimSpace(child.Text()); text != "" {
				*parts = append(*parts, text)
			}
		case "#comment":
		default:
			if _, skip := invisibleElements[name]; skip {
				return
			}
			collectText(child, parts)
		}
	})
}

// Preview returns at most n runes of text.
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[:n])
}
