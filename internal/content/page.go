// Package content discovers and parses the Markdown pages a site is built
// from.
package content

import (
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/paths"
)

// DefaultTitle is used when front matter declares no title.
const DefaultTitle = "Untitled"

// postPathPrefix marks pages that are blog posts by location.
const postPathPrefix = "blog/"

// Page represents one parsed content file.
//
// Pages are constructed by the parser and treated as read-only afterwards;
// rendering never mutates them.
type Page struct {
	RelativePath string            // Slash-normalized path under the content root
	URL          string            // Site-absolute serving path, e.g. /blog/post.html
	Title        string            // Front matter title, or DefaultTitle
	Metadata     map[string]string // Flat front matter fields
	Content      string            // Rendered HTML fragment
}

// IsIndex reports whether this is the site index page. Only the root-level
// index.md qualifies.
func (p *Page) IsIndex() bool {
	return paths.IsIndexPage(p.RelativePath)
}

// IsPost reports whether the page belongs to the posts collection, either by
// declared type or by living under blog/.
func (p *Page) IsPost() bool {
	if p.Metadata["type"] == "post" {
		return true
	}
	return strings.HasPrefix(p.RelativePath, postPathPrefix)
}

// Date returns the front matter date, empty when the page is undated.
func (p *Page) Date() string {
	return p.Metadata["date"]
}
