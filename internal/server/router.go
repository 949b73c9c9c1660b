// Package server implements the local preview server for a built site. Its
// request routing mirrors the build's URL scheme: a page collected from
// blog/post.md is served at /blog/post.html, and directory-style paths fall
// back to the configured index page.
package server

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Resolution is the outcome of mapping a request path onto the output tree.
type Resolution struct {
	Path string // filesystem location to serve
	HTML bool   // serve as an HTML document
}

// Resolve maps an inbound request path to a file under root, applying the
// fallback chain in order, first match wins:
//
//  1. An empty path or one ending in a separator is extended with the index
//     name, then <path>.html is tried as an HTML document.
//  2. Any other path is tried as <path>.html first.
//  3. Failing that, the path as given is tried as a raw file.
//
// The request path is cleaned while rooted, so ../ segments can never escape
// root. Directories never match; only regular files are served.
func Resolve(root, indexName, requestPath string) (Resolution, bool) {
	cleaned := path.Clean("/" + requestPath)

	normalized := cleaned
	if requestPath == "" || strings.HasSuffix(requestPath, "/") || cleaned == "/" {
		normalized = path.Join(cleaned, indexName)
	}

	htmlPath := filepath.Join(root, filepath.FromSlash(normalized)+".html")
	if isRegularFile(htmlPath) {
		return Resolution{Path: htmlPath, HTML: true}, true
	}

	rawPath := filepath.Join(root, filepath.FromSlash(cleaned))
	if isRegularFile(rawPath) {
		return Resolution{Path: rawPath}, true
	}

	return Resolution{}, false
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
