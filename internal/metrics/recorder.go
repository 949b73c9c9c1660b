// Package metrics provides observability hooks for build and preview-server
// metrics. Components receive a Recorder by injection and default to the
// NoopRecorder, so metrics stay zero-overhead until the preview server
// enables the Prometheus endpoint.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines the observability hooks the build pipeline and preview
// server call into. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|failed|canceled
	SetPagesRendered(n int)
	IncHTTPRequest(status int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetPagesRendered(int)                       {}
func (NoopRecorder) IncHTTPRequest(int)                         {}
