// Package linkcheck verifies that internal links in a built site resolve,
// using the same lookup rules the preview server applies to requests.
package linkcheck

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is one reference extracted from an HTML document.
type Link struct {
	URL       string // attribute value as written
	Tag       string // a, img, script or link
	Attribute string // href or src
	Internal  bool   // resolvable against this site rather than elsewhere
}

// ExtractLinks parses HTML from r and returns every link-bearing attribute
// of anchor, image, script and stylesheet elements, in document order.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if l, ok := elementLink(n); ok {
				links = append(links, l)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func elementLink(n *html.Node) (Link, bool) {
	var attrName string
	switch n.Data {
	case "a", "link":
		attrName = "href"
	case "img", "script":
		attrName = "src"
	default:
		return Link{}, false
	}

	value := getAttr(n, attrName)
	if value == "" {
		return Link{}, false
	}
	return Link{
		URL:       value,
		Tag:       n.Data,
		Attribute: attrName,
		Internal:  isInternal(value),
	}, true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isInternal reports whether a link targets this site: scheme-less,
// host-less and not a pure fragment or pseudo-protocol reference.
func isInternal(link string) bool {
	if strings.HasPrefix(link, "#") ||
		strings.HasPrefix(link, "mailto:") ||
		strings.HasPrefix(link, "tel:") ||
		strings.HasPrefix(link, "javascript:") {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.Path != ""
}
