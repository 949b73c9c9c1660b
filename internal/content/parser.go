package content

import (
	"os"

	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/paths"
)

// Parser turns one content file into a Page. A single Parser is reused for
// every file in a build.
type Parser struct {
	converter *markdown.Converter
}

// NewParser creates a content parser.
func NewParser() *Parser {
	return &Parser{converter: markdown.New()}
}

// ParseFile reads and parses the content file at path into a Page. Any read,
// front matter or Markdown failure is reported as invalid content carrying
// the file's location.
func (p *Parser) ParseFile(path, contentRoot string) (*Page, error) {
	rel, err := paths.Relative(path, contentRoot)
	if err != nil {
		return nil, apperrors.InvalidContent(path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.InvalidContent(rel, err)
	}

	meta, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, apperrors.InvalidContent(rel, err)
	}

	fields, err := frontmatter.Fields(meta)
	if err != nil {
		return nil, apperrors.InvalidContent(rel, err)
	}

	html, err := p.converter.Convert(body)
	if err != nil {
		return nil, apperrors.InvalidContent(rel, err)
	}

	title := fields["title"]
	if title == "" {
		title = DefaultTitle
	}

	return &Page{
		RelativePath: rel,
		URL:          paths.URL(rel),
		Title:        title,
		Metadata:     fields,
		Content:      string(html),
	}, nil
}
