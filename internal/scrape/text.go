package scrape

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Document parses html into a goquery document.
func Document(html []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}
	return doc, nil
}

// CleanText collapses runs of whitespace to single spaces and trims.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text returns the collapsed text of sel.
func Text(sel *goquery.Selection) string {
	return CleanText(sel.Text())
}

// PageText returns the document title and the visible body text with
// scripts, styles, navigation and footers removed. Text nodes are joined
// with single spaces so adjacent elements do not run together.
func PageText(doc *goquery.Document) (title, text string) {
	title = CleanText(doc.Find("title").First().Text())

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template, nav, header, footer, svg, iframe").Remove()

	var parts []string
	collectText(body, &parts)
	return title, strings.Join(parts, " ")
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := CleanText(c.Text()); t != "" {
				*parts = append(*parts, t)
			}
			return
		}
		collectText(c, parts)
	})
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
