package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/paths"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// stageRender renders every collected page. With render_workers 1 pages are
// rendered strictly sequentially; with more workers the stage fans out over
// an errgroup. Either way pages are read-only, each render is a pure
// function of the full page list, and the first failure cancels the rest, so
// the output files are identical regardless of worker count or order.
func (b *Builder) stageRender(ctx context.Context, st *state) error {
	engine := render.NewEngine(b.cfg.TemplatesDir())

	var rendered atomic.Int64
	defer func() { st.report.Pages = int(rendered.Load()) }()

	workers := b.cfg.Build.RenderWorkers
	if workers <= 1 {
		for _, page := range st.pages {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := b.renderPage(engine, page, st.pages); err != nil {
				return err
			}
			rendered.Add(1)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, page := range st.pages {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if err := b.renderPage(engine, page, st.pages); err != nil {
				return err
			}
			rendered.Add(1)
			return nil
		})
	}
	return g.Wait()
}

// renderPage runs the per-page pipeline: resolve template, build context,
// render, write. Any failure aborts the page with no output file written for
// it; the build-level fail-fast policy is the caller's.
func (b *Builder) renderPage(engine *render.Engine, page *content.Page, all []*content.Page) error {
	tmpl, err := engine.Resolve(page)
	if err != nil {
		return err
	}

	rc := render.BuildContext(page, all, page.IsIndex())
	html, err := engine.Render(tmpl, rc)
	if err != nil {
		return apperrors.RenderFailure(page.RelativePath, tmpl.Name(), err)
	}

	outPath := paths.OutputPath(b.cfg.OutputDir(), page.RelativePath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return apperrors.FileSystemFailure("mkdir", filepath.Dir(outPath), err)
	}
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return apperrors.FileSystemFailure("write", outPath, err)
	}

	slog.Debug("Rendered page",
		logfields.Page(page.RelativePath),
		logfields.Template(tmpl.Name()),
		logfields.Path(outPath))
	return nil
}
