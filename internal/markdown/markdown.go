// Package markdown renders Markdown bodies (front matter already removed)
// into HTML fragments.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter renders Markdown into HTML. The underlying goldmark instance is
// safe for concurrent use, so a single Converter is shared across render
// workers.
type Converter struct {
	md goldmark.Markdown
}

// New constructs a Converter with GFM extensions and generated heading IDs.
// Raw HTML blocks in the source pass through unescaped.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert renders body into an HTML fragment.
func (c *Converter) Convert(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
