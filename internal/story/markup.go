package story

import (
	"bytes"
	"strings"

	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"
)

// StripMarkup reduces a possibly-markdown paragraph to plain text by
// rendering it and extracting the text nodes. Models occasionally add
// emphasis markers the printed book must not show. Plain text passes
// through unchanged apart from whitespace normalization.
func StripMarkup(s string) string {
	rendered := blackfriday.Run([]byte(s))
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(textContent(doc)), " ")
}

func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return text.String()
}
