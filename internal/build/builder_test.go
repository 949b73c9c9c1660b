package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// testSite scaffolds a small project in a temp dir and returns its config.
func testSite(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Dirs.Content = filepath.Join(root, "content")
	cfg.Dirs.Static = filepath.Join(root, "static")
	cfg.Dirs.Styles = filepath.Join(root, "styles")
	cfg.Dirs.Templates = filepath.Join(root, "templates")
	cfg.Dirs.Output = filepath.Join(root, "public")

	for _, dir := range []string{cfg.Dirs.Content, cfg.Dirs.Templates} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	writeFile(t, filepath.Join(cfg.Dirs.Templates, "default.html"),
		"<title>{{ title }}</title><main>{{{ content }}}</main>")
	writeFile(t, filepath.Join(cfg.Dirs.Templates, "index.html"),
		"<h1>{{ title }}</h1>{{# posts }}<a href=\"{{ url }}\">{{ title }}</a>{{/ posts }}<main>{{{ content }}}</main>")

	writeFile(t, filepath.Join(cfg.Dirs.Content, "index.md"),
		"---\ntemplate: index.html\ntitle: Home\n---\nWelcome.\n")
	writeFile(t, filepath.Join(cfg.Dirs.Content, "about.md"),
		"---\ntemplate: default.html\ntitle: About\n---\nAbout us.\n")
	writeFile(t, filepath.Join(cfg.Dirs.Content, "blog", "first.md"),
		"---\ntemplate: default.html\ntitle: First\ndate: \"2024-01-01\"\n---\nPost one.\n")
	writeFile(t, filepath.Join(cfg.Dirs.Content, "blog", "second.md"),
		"---\ntemplate: default.html\ntitle: Second\ndate: \"2024-03-01\"\n---\nPost two.\n")

	return cfg
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRunRendersEveryPage(t *testing.T) {
	cfg := testSite(t)

	report, err := New(cfg).Run(t.Context())
	require.NoError(t, err)
	require.Equal(t, 4, report.Pages)
	require.Equal(t, OutcomeSuccess, report.Outcome)

	for _, rel := range []string{"index.html", "about.html", "blog/first.html", "blog/second.html"} {
		_, err := os.Stat(filepath.Join(cfg.Dirs.Output, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
	}

	index, err := os.ReadFile(filepath.Join(cfg.Dirs.Output, "index.html"))
	require.NoError(t, err)
	// Posts listing is sorted newest first and linked by URL.
	require.Regexp(t, `(?s)/blog/second\.html.*?/blog/first\.html`, string(index))

	about, err := os.ReadFile(filepath.Join(cfg.Dirs.Output, "about.html"))
	require.NoError(t, err)
	require.Contains(t, string(about), "<title>About</title>")
	require.Contains(t, string(about), "<p>About us.</p>")
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testSite(t)
	b := New(cfg)

	_, err := b.Run(t.Context())
	require.NoError(t, err)
	first := snapshotTree(t, cfg.Dirs.Output)

	_, err = b.Run(t.Context())
	require.NoError(t, err)
	second := snapshotTree(t, cfg.Dirs.Output)

	require.Equal(t, first, second, "two builds of an unchanged tree must be byte-identical")
}

func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestRunWipesStaleOutput(t *testing.T) {
	cfg := testSite(t)
	stale := filepath.Join(cfg.Dirs.Output, "removed.html")
	writeFile(t, stale, "left over from a previous build")

	_, err := New(cfg).Run(t.Context())
	require.NoError(t, err)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err), "stale files must not survive a rebuild")
}

func TestRunCopiesAssetTreesIntoOutputRoot(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, filepath.Join(cfg.Dirs.Static, "logo.png"), "png-bytes")
	writeFile(t, filepath.Join(cfg.Dirs.Static, "img", "photo.jpg"), "jpg-bytes")
	writeFile(t, filepath.Join(cfg.Dirs.Styles, "main.css"), "body{}")

	_, err := New(cfg).Run(t.Context())
	require.NoError(t, err)

	logo, err := os.ReadFile(filepath.Join(cfg.Dirs.Output, "logo.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(logo))

	_, err = os.Stat(filepath.Join(cfg.Dirs.Output, "img", "photo.jpg"))
	require.NoError(t, err, "nested asset structure preserved")

	_, err = os.Stat(filepath.Join(cfg.Dirs.Output, "main.css"))
	require.NoError(t, err)
}

func TestRunSkipsAbsentAssetTrees(t *testing.T) {
	cfg := testSite(t)
	// static/ and styles/ were never created.
	_, err := New(cfg).Run(t.Context())
	require.NoError(t, err)
}

func TestRunAbortsOnMissingTemplateFile(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, filepath.Join(cfg.Dirs.Content, "broken.md"),
		"---\ntemplate: nope.html\ntitle: Broken\n---\nBody.\n")

	report, err := New(cfg).Run(t.Context())
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindTemplateNotFound))
	require.Equal(t, OutcomeFailed, report.Outcome)

	// The aborting page has no output file.
	_, statErr := os.Stat(filepath.Join(cfg.Dirs.Output, "broken.html"))
	require.True(t, os.IsNotExist(statErr))
}

func TestRunAbortsOnMissingTemplateDeclaration(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, filepath.Join(cfg.Dirs.Content, "undeclared.md"),
		"---\ntitle: No Template\n---\nBody.\n")

	_, err := New(cfg).Run(t.Context())
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindMissingTemplateDeclaration))
}

func TestRunAbortsOnUnparsableContent(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, filepath.Join(cfg.Dirs.Content, "bad.md"),
		"---\ntemplate: default.html\nbroken yaml: [\n---\nBody.\n")

	_, err := New(cfg).Run(t.Context())
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindInvalidContent))
}

func TestRunConcurrentRenderMatchesSequential(t *testing.T) {
	cfg := testSite(t)
	_, err := New(cfg).Run(t.Context())
	require.NoError(t, err)
	sequential := snapshotTree(t, cfg.Dirs.Output)

	cfg.Build.RenderWorkers = 4
	report, err := New(cfg).Run(t.Context())
	require.NoError(t, err)
	require.Equal(t, 4, report.Pages)

	require.Equal(t, sequential, snapshotTree(t, cfg.Dirs.Output),
		"worker count must not change the rendered output")
}

func TestRunCanceledContext(t *testing.T) {
	cfg := testSite(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report, err := New(cfg).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, OutcomeCanceled, report.Outcome)
}

func TestReportSummary(t *testing.T) {
	cfg := testSite(t)
	report, err := New(cfg).Run(t.Context())
	require.NoError(t, err)
	require.Contains(t, report.Summary(), "pages=4")
	require.Contains(t, report.Summary(), "outcome=success")
	require.NotEmpty(t, report.ID)
	require.Contains(t, report.StageDurations, "render")
}
