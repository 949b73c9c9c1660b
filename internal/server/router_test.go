package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// publicTree writes a built output tree for router tests.
func publicTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":      "<h1>home</h1>",
		"about.html":      "<h1>about</h1>",
		"blog/index.html": "<h1>blog</h1>",
		"blog/post.html":  "<h1>post</h1>",
		"logo.png":        "png-bytes",
		"main.css":        "body{}",
	}
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func TestResolveRootFallsBackToIndex(t *testing.T) {
	root := publicTree(t)

	for _, reqPath := range []string{"", "/"} {
		res, ok := Resolve(root, "index", reqPath)
		require.True(t, ok, "path %q", reqPath)
		require.True(t, res.HTML)
		require.Equal(t, filepath.Join(root, "index.html"), res.Path)
	}
}

func TestResolveTrailingSlashAppendsIndexName(t *testing.T) {
	root := publicTree(t)

	res, ok := Resolve(root, "index", "/blog/")
	require.True(t, ok)
	require.True(t, res.HTML)
	require.Equal(t, filepath.Join(root, "blog", "index.html"), res.Path)
}

func TestResolveExtensionlessPageGetsHTMLSuffix(t *testing.T) {
	root := publicTree(t)

	res, ok := Resolve(root, "index", "/blog/post")
	require.True(t, ok)
	require.True(t, res.HTML)
	require.Equal(t, filepath.Join(root, "blog", "post.html"), res.Path)
}

func TestResolveRawAssetFallback(t *testing.T) {
	root := publicTree(t)

	res, ok := Resolve(root, "index", "/logo.png")
	require.True(t, ok)
	require.False(t, res.HTML, "assets are served raw, not as HTML documents")
	require.Equal(t, filepath.Join(root, "logo.png"), res.Path)
}

func TestResolveHTMLTakesPrecedenceOverRaw(t *testing.T) {
	root := publicTree(t)
	// A raw file named exactly like the request path exists alongside the
	// .html match; step 2 of the chain must win.
	require.NoError(t, os.WriteFile(filepath.Join(root, "about"), []byte("raw about"), 0o644))

	res, ok := Resolve(root, "index", "/about")
	require.True(t, ok)
	require.True(t, res.HTML)
	require.Equal(t, filepath.Join(root, "about.html"), res.Path)
}

func TestResolveMiss(t *testing.T) {
	root := publicTree(t)

	_, ok := Resolve(root, "index", "/missing")
	require.False(t, ok)

	// A bare directory with no index.html is not served.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	_, ok = Resolve(root, "index", "/empty/")
	require.False(t, ok)
}

func TestResolveCustomIndexName(t *testing.T) {
	root := publicTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "home.html"), []byte("<h1>custom</h1>"), 0o644))

	res, ok := Resolve(root, "home", "/")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "home.html"), res.Path)
}

func TestResolveTraversalCannotEscapeRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "public")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>home</h1>"), 0o644))

	for _, reqPath := range []string{
		"/../secret.txt",
		"/../../secret.txt",
		"/blog/../../secret.txt",
		"../secret.txt",
	} {
		res, ok := Resolve(root, "index", reqPath)
		if ok {
			require.Truef(t, strings.HasPrefix(res.Path, root+string(os.PathSeparator)),
				"path %q resolved outside root: %s", reqPath, res.Path)
		}
	}
}

func TestResolveMirrorsBuildURLScheme(t *testing.T) {
	// The build writes blog/post.md to blog/post.html and publishes it at
	// /blog/post.html; both that URL and the extensionless form must
	// resolve to the same file.
	root := publicTree(t)

	viaURL, ok := Resolve(root, "index", "/blog/post.html")
	require.True(t, ok)
	viaShort, ok2 := Resolve(root, "index", "/blog/post")
	require.True(t, ok2)
	require.Equal(t, viaShort.Path, viaURL.Path)
}
