package render

import (
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
)

// Reserved context keys. Front matter may shadow any of them; on collision
// the front matter value wins, including for content.
const (
	keyContent  = "content"
	keyPages    = "pages"
	keyPosts    = "posts"
	keyURL      = "url"
	keyTitle    = "title"
	keyMetadata = "metadata"
)

// BuildContext assembles the render context for a page.
//
// The context is seeded with the page's HTML under content, then every front
// matter key is overlaid on top. A page whose front matter declares its own
// content key therefore renders that value instead of the body; this mirrors
// the metadata-wins precedence pages rely on for every other key.
//
// When isIndex is set the context additionally carries the pages sequence in
// collector order and the filtered, date-sorted posts sequence. The result is
// purely a function of the arguments; no external state is read.
func BuildContext(page *content.Page, all []*content.Page, isIndex bool) Context {
	ctx := Context{keyContent: String(page.Content)}
	for k, v := range page.Metadata {
		ctx[k] = String(v)
	}

	if isIndex {
		ctx[keyPages] = pageSequence(all)
		ctx[keyPosts] = pageSequence(posts(all))
	}

	return ctx
}

// pageMapping is the context representation of one page inside a collection.
func pageMapping(p *content.Page) Mapping {
	meta := make(Mapping, len(p.Metadata))
	for k, v := range p.Metadata {
		meta[k] = String(v)
	}
	return Mapping{
		keyURL:      String(p.URL),
		keyTitle:    String(p.Title),
		keyMetadata: meta,
		keyContent:  String(p.Content),
	}
}

func pageSequence(pages []*content.Page) Sequence {
	seq := make(Sequence, 0, len(pages))
	for _, p := range pages {
		seq = append(seq, pageMapping(p))
	}
	return seq
}

// posts selects and orders the blog listing: newest first by date, dated
// pages before undated ones, undated pairs by ascending title.
func posts(all []*content.Page) []*content.Page {
	list := make([]*content.Page, 0)
	for _, p := range all {
		if p.IsPost() {
			list = append(list, p)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return postBefore(list[i], list[j])
	})
	return list
}

func postBefore(a, b *content.Page) bool {
	da, db := a.Date(), b.Date()
	switch {
	case da != "" && db != "":
		return da > db
	case da == "" && db == "":
		return a.Title < b.Title
	default:
		return da != ""
	}
}
