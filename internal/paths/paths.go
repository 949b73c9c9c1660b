// Package paths maps content file locations to site-relative paths, URLs and
// output locations. All site-relative paths use forward slashes regardless of
// platform so they are stable in URLs, templates and logs.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	markdownExt = ".md"
	htmlExt     = ".html"
	indexPage   = "index.md"
)

// Relative returns the slash-normalized path of file under contentRoot.
// Files outside the root are rejected rather than producing ../ paths.
func Relative(file, contentRoot string) (string, error) {
	rel, err := filepath.Rel(contentRoot, file)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s lies outside content root %s", file, contentRoot)
	}
	return rel, nil
}

// IsIndexPage reports whether rel is the site index. Only the root-level
// index.md qualifies; index.md files in subdirectories are ordinary pages.
func IsIndexPage(rel string) bool {
	return rel == indexPage
}

// IsMarkdown reports whether name has a Markdown extension, matched
// case-insensitively so Legacy.MD files are picked up.
func IsMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), markdownExt)
}

// IsHidden reports whether a file or directory name is dot-prefixed.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// URL returns the site-absolute URL a page is served under: a leading slash
// plus the relative path with the Markdown extension swapped for .html.
func URL(rel string) string {
	return "/" + withHTMLExt(rel)
}

// OutputPath returns the filesystem location the rendered page is written to
// under the output root.
func OutputPath(outputRoot, rel string) string {
	return filepath.Join(outputRoot, filepath.FromSlash(withHTMLExt(rel)))
}

func withHTMLExt(rel string) string {
	ext := filepath.Ext(rel)
	if strings.EqualFold(ext, markdownExt) {
		return rel[:len(rel)-len(ext)] + htmlExt
	}
	return rel
}
