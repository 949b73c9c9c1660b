package linkcheck

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
)

// Broken is an internal link that does not resolve to any file in the
// built output.
type Broken struct {
	Page string // output-relative path of the page containing the link
	Link Link
}

func (b Broken) String() string {
	return fmt.Sprintf("%s: <%s %s=%q> does not resolve", b.Page, b.Link.Tag, b.Link.Attribute, b.Link.URL)
}

// Checker walks a built site and verifies its internal links.
type Checker struct {
	root      string
	indexName string
}

// New returns a Checker over the output tree rooted at root. indexName is
// the bare index page name used when resolving directory links.
func New(root, indexName string) *Checker {
	return &Checker{root: root, indexName: indexName}
}

// Run extracts links from every HTML file under the output root and
// resolves the internal ones the way the preview server would. It returns
// the links that fail to resolve, in page walk order.
func (c *Checker) Run() ([]Broken, error) {
	var broken []Broken

	err := filepath.WalkDir(c.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return apperrors.FileSystemFailure("walking output", p, err)
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}

		rel, relErr := filepath.Rel(c.root, p)
		if relErr != nil {
			return apperrors.FileSystemFailure("relativizing output path", p, relErr)
		}
		pageBroken, pageErr := c.checkPage(p, filepath.ToSlash(rel))
		if pageErr != nil {
			return pageErr
		}
		broken = append(broken, pageBroken...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return broken, nil
}

func (c *Checker) checkPage(fullPath, relPath string) ([]Broken, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, apperrors.FileSystemFailure("opening page", fullPath, err)
	}
	defer f.Close()

	links, err := ExtractLinks(f)
	if err != nil {
		return nil, apperrors.FileSystemFailure("parsing page", fullPath, err)
	}

	var broken []Broken
	for _, link := range links {
		if !link.Internal {
			continue
		}
		if _, ok := c.resolve(relPath, link.URL); !ok {
			broken = append(broken, Broken{Page: relPath, Link: link})
		}
	}
	return broken, nil
}

// resolve turns a link found on a page into a request path and looks it up
// with the server's rules, so the checker accepts exactly what the preview
// server would serve.
func (c *Checker) resolve(pagePath, link string) (server.Resolution, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return server.Resolution{}, false
	}

	target := u.Path
	if !strings.HasPrefix(target, "/") {
		target = path.Join("/", path.Dir("/"+pagePath), target)
		if strings.HasSuffix(u.Path, "/") && target != "/" {
			target += "/"
		}
	}
	return server.Resolve(c.root, c.indexName, target)
}
