// Package integration exercises the full pipeline the way the CLI wires it
// together: scaffold a project, build it, serve the output and verify links.
package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// scaffoldSite inits a project in a temp dir, adds a few pages on top of the
// starter files and chdirs into it so the relative configuration applies.
func scaffoldSite(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, config.Init(dir, false))

	writeFile(t, filepath.Join(dir, "templates", "index.html"),
		`<title>{{ title }}</title><nav>{{# posts }}<a href="{{ url }}">{{ title }}</a>{{/ posts }}</nav><main>{{{ content }}}</main>`)
	writeFile(t, filepath.Join(dir, "content", "index.md"),
		"---\ntemplate: index.html\ntitle: Home\n---\n[About](/about.html)\n")
	writeFile(t, filepath.Join(dir, "content", "about.md"),
		"---\ntemplate: default.html\ntitle: About\n---\n[Home](/) and the [first post](/blog/first.html).\n")
	writeFile(t, filepath.Join(dir, "content", "blog", "first.md"),
		"---\ntemplate: default.html\ntitle: First\ndate: \"2024-01-10\"\n---\nEarlier.\n")
	writeFile(t, filepath.Join(dir, "content", "blog", "second.md"),
		"---\ntemplate: default.html\ntitle: Second\ndate: \"2024-04-02\"\n---\nLater.\n")
	writeFile(t, filepath.Join(dir, "static", "logo.png"), "png bytes")

	t.Chdir(dir)
	cfg, err := config.Load(config.DefaultFileName)
	require.NoError(t, err)
	return cfg
}

func TestBuildProducesCompleteSite(t *testing.T) {
	cfg := scaffoldSite(t)

	report, err := build.New(cfg).Run(t.Context())
	require.NoError(t, err)
	require.Equal(t, build.OutcomeSuccess, report.Outcome)
	require.Equal(t, 4, report.Pages)

	for _, rel := range []string{
		"index.html", "about.html",
		"blog/first.html", "blog/second.html",
		"main.css", "logo.png",
	} {
		require.FileExists(t, filepath.Join(cfg.OutputDir(), filepath.FromSlash(rel)), rel)
	}

	index, err := os.ReadFile(filepath.Join(cfg.OutputDir(), "index.html"))
	require.NoError(t, err)
	require.Regexp(t, `(?s)/blog/second\.html.*?/blog/first\.html`, string(index),
		"posts listing is ordered newest first")
}

func TestServeBuiltSite(t *testing.T) {
	cfg := scaffoldSite(t)
	_, err := build.New(cfg).Run(t.Context())
	require.NoError(t, err)

	ts := httptest.NewServer(server.New(cfg).Handler())
	defer ts.Close()

	get := func(path string) (int, string, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
	}

	status, ctype, body := get("/")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, ctype, "text/html")
	require.Contains(t, body, "<title>Home</title>")

	status, _, body = get("/blog/first.html")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Earlier")

	status, _, body = get("/about")
	require.Equal(t, http.StatusOK, status, "extensionless request falls back to about.html")
	require.Contains(t, body, "first post")

	status, ctype, _ = get("/main.css")
	require.Equal(t, http.StatusOK, status)
	require.NotContains(t, ctype, "text/html")

	status, _, _ = get("/no-such-page")
	require.Equal(t, http.StatusNotFound, status)

	status, _, body = get("/healthz")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"status"`)
}

func TestRebuildPicksUpEdits(t *testing.T) {
	cfg := scaffoldSite(t)
	builder := build.New(cfg)

	_, err := builder.Run(t.Context())
	require.NoError(t, err)

	writeFile(t, filepath.Join("content", "about.md"),
		"---\ntemplate: default.html\ntitle: About\n---\nRewritten body.\n")

	_, err = builder.Run(t.Context())
	require.NoError(t, err)

	about, err := os.ReadFile(filepath.Join(cfg.OutputDir(), "about.html"))
	require.NoError(t, err)
	require.Contains(t, string(about), "Rewritten body.")
}

func TestBuiltSiteLinksResolve(t *testing.T) {
	cfg := scaffoldSite(t)
	_, err := build.New(cfg).Run(t.Context())
	require.NoError(t, err)

	broken, err := linkcheck.New(cfg.OutputDir(), cfg.Server.IndexName).Run()
	require.NoError(t, err)
	require.Empty(t, broken)
}
