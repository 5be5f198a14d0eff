package extractor

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// HTMLExtractor turns an HTML document into markdown text: headings keep
// their level, list items become bullets, script and style content is
// dropped.
type HTMLExtractor struct{}

var _ Extractor = (*HTMLExtractor)(nil)

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

func (e *HTMLExtractor) Extract(ctx context.Context, r io.Reader) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "parsing html")
	}

	var b strings.Builder
	renderNode(&b, doc)

	markdown := CleanText(b.String())
	if markdown == "" {
		return Result{}, errors.New("document contains no text")
	}
	return Result{Markdown: markdown, Pages: 1}, nil
}

func renderNode(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "head":
			return
		case "li":
			b.WriteString("\n- ")
			renderChildren(b, n)
			return
		case "p", "div", "section", "article", "tr", "br":
			b.WriteString("\n\n")
		default:
			if level, ok := headingLevels[n.Data]; ok {
				b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
				renderChildren(b, n)
				b.WriteString("\n\n")
				return
			}
		}
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			b.WriteString(text + " ")
		}
	}
	renderChildren(b, n)
}

func renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}
