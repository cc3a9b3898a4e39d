package edgar

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML converts filing HTML to plain text.
//
// Inline XBRL metadata, scripts, and styles are removed before text
// extraction. Non-HTML input passes through with whitespace cleanup only.
func StripHTML(content string) (string, error) {
	if !strings.Contains(content, "<") {
		return CleanText(content), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse filing HTML: %w", err)
	}

	doc.Find("script, style, ix\\:hidden, ix\\:header").Remove()

	text := doc.Text()
	return CleanText(text), nil
}
