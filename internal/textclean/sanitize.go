// Package textclean turns rich-text product fields into plain prose.
package textclean

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	leakedStyleRe = regexp.MustCompile(`#html-body.*?}`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Sanitize drops style and script elements, joins the remaining text nodes
// with spaces, removes leaked "#html-body ... }" CSS rules and collapses
// whitespace. Empty input yields an empty string.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapse(raw)
	}
	doc.Find("style, script").Remove()

	var parts []string
	doc.Contents().Each(func(_ int, s *goquery.Selection) {
		collectText(s.Nodes[0], &parts)
	})

	return collapse(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func collapse(text string) string {
	text = leakedStyleRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
