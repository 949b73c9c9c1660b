package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Stage names, also used as metric labels.
const (
	stageResetOutput = "reset_output"
	stageCopyAssets  = "copy_assets"
	stageCollect     = "collect"
	stageRender      = "render"
)

// stage is a discrete unit of work in the site build.
type stage struct {
	name string
	fn   func(ctx context.Context, st *state) error
}

// state carries mutable data across stages of one build run.
type state struct {
	pages  []*content.Page
	report *Report
}

// runStages executes stages in order, recording timing, and stops on the
// first error. Cancellation is checked between stages; long-running stages
// observe the context themselves.
func (b *Builder) runStages(ctx context.Context, st *state, stages []stage) error {
	for _, s := range stages {
		select {
		case <-ctx.Done():
			b.recorder.IncStageResult(s.name, metrics.ResultCanceled)
			return ctx.Err()
		default:
		}

		t0 := time.Now()
		err := s.fn(ctx, st)
		dur := time.Since(t0)
		st.report.StageDurations[s.name] = dur
		b.recorder.ObserveStageDuration(s.name, dur)

		if err != nil {
			result := metrics.ResultFatal
			if errors.Is(err, context.Canceled) {
				result = metrics.ResultCanceled
			}
			b.recorder.IncStageResult(s.name, result)
			return err
		}

		b.recorder.IncStageResult(s.name, metrics.ResultSuccess)
		slog.Debug("Stage completed",
			logfields.BuildID(st.report.ID),
			logfields.Stage(s.name),
			logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}
