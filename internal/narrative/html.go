package narrative

import (
	"io"
	"strings"

	"github.com/nao1215/codebook/internal/codebook"
	"golang.org/x/net/html"
)

// blockElements end the current paragraph when they open or close.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"table": true, "tr": true, "blockquote": true, "section": true,
	"article": true, "br": true, "dd": true, "dt": true, "pre": true,
}

// ParseHTML converts an HTML document to a narrative section. Headings
// h1 to h6 become headings and the text of block elements becomes
// paragraphs. Scripts, styles, and comments are ignored.
func ParseHTML(r io.Reader) (*codebook.Narrative, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	s := &section{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head", "noscript":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				s.heading(textOf(n), int(n.Data[1]-'0'))
				return
			}
			if blockElements[n.Data] {
				s.flush()
				defer s.flush()
			}
		case html.TextNode:
			s.text(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return s.result(), nil
}

// textOf returns the whitespace-normalized text content of n.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
