// Package build orchestrates the site build pipeline: wipe the output root,
// copy asset trees, collect every content page, then render each page
// through its declared template. The pipeline is fail-fast; the first error
// aborts the build and the output tree may be left partially populated.
package build

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Builder runs site builds for one project configuration. A Builder may run
// any number of builds sequentially; serve mode reuses one across rebuilds.
type Builder struct {
	cfg       *config.Config
	collector *content.Collector
	recorder  metrics.Recorder
}

// Option customizes a Builder.
type Option func(*Builder)

// WithRecorder attaches a metrics recorder to the build pipeline.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// New creates a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:       cfg,
		collector: content.NewCollector(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes one full build. The returned report is non-nil even when the
// build fails; its Err and Outcome fields carry the failure.
//
// Collection runs to completion before any page renders, so every page's
// index listing sees the same full page list regardless of render order.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := newReport()
	st := &state{report: report}

	slog.Info("Starting site build",
		logfields.BuildID(report.ID),
		logfields.Dir(b.cfg.ContentDir()))

	err := b.runStages(ctx, st, []stage{
		{stageResetOutput, b.stageResetOutput},
		{stageCopyAssets, b.stageCopyAssets},
		{stageCollect, b.stageCollect},
		{stageRender, b.stageRender},
	})

	report.finish(err, errors.Is(err, context.Canceled))
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))

	if err != nil {
		slog.Error("Build failed",
			logfields.BuildID(report.ID),
			logfields.Outcome(string(report.Outcome)),
			logfields.Error(err))
		return report, err
	}

	b.recorder.SetPagesRendered(report.Pages)
	slog.Info("Build completed",
		logfields.BuildID(report.ID),
		logfields.Pages(report.Pages),
		logfields.Outcome(string(report.Outcome)))
	return report, nil
}

// stageResetOutput wipes and recreates the output root. Builds are never
// additive; stale files must not survive.
func (b *Builder) stageResetOutput(_ context.Context, _ *state) error {
	out := b.cfg.OutputDir()
	if err := os.RemoveAll(out); err != nil {
		return apperrors.FileSystemFailure("remove", out, err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return apperrors.FileSystemFailure("mkdir", out, err)
	}
	return nil
}

// stageCollect discovers and parses every content page.
func (b *Builder) stageCollect(_ context.Context, st *state) error {
	pages, err := b.collector.Collect(b.cfg.ContentDir())
	if err != nil {
		return err
	}
	st.pages = pages
	return nil
}
