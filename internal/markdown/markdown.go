// Package markdown flattens markdown documents to plain text so the
// translation pipeline always receives free text.
package markdown

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToPlainText renders markdown to HTML and strips the tags, which collapses
// headings, emphasis and links down to their visible text.
func ToPlainText(source []byte) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(source)

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := string(markdown.Render(doc, renderer))

	return strings.TrimSpace(stripTags(rendered))
}

// IsMarkdownPath reports whether the file extension marks a markdown
// document.
func IsMarkdownPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

func stripTags(htmlContent string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range htmlContent {
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}
