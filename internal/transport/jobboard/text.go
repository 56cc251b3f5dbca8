package jobboard

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors end a line when converting HTML to text.
const blockSelectors = "p, div, li, br, h1, h2, h3, h4, h5, h6, tr, ul, ol"

// plainText converts provider HTML (Remotive descriptions, Adzuna snippets with <strong>) into
// whitespace-normalised text. Input without markup is only normalised.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find(blockSelectors).Each(func(_ int, sel *goquery.Selection) {
		sel.AfterHtml("\n")
	})

	return collapseWhitespace(doc.Text())
}

// collapseWhitespace trims each line, collapses runs of spaces and drops empty lines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
