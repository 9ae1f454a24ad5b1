// Package textutil turns rich job descriptions into short plain-text summaries.
package textutil

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultExcerptRunes is the excerpt length used for job listings.
const DefaultExcerptRunes = 200

// PlainText strips markup from an HTML or plain-text fragment and collapses
// whitespace. Script and style contents are dropped.
func PlainText(src string) string {
	if !strings.ContainsAny(src, "<&") {
		return strings.Join(strings.Fields(src), " ")
	}
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return strings.Join(strings.Fields(src), " ")
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			buf.WriteString(node.Data)
			buf.WriteString(" ")
		case html.ElementNode:
			switch node.Data {
			case "script", "style", "template":
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Excerpt returns at most maxRunes runes of the plain text of src, cut on a
// word boundary when one exists and suffixed with "…" when truncated.
func Excerpt(src string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptRunes
	}
	text := PlainText(src)
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	cut := string(runes[:maxRunes])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
