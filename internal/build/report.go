package build

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures metrics about one site build run.
type Report struct {
	ID             string
	Start          time.Time
	End            time.Time
	Pages          int // pages rendered and written
	StageDurations map[string]time.Duration
	Outcome        Outcome
	Err            error // the aborting error, nil on success
}

func newReport() *Report {
	return &Report{
		ID:             uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
}

func (r *Report) finish(err error, canceled bool) {
	r.End = time.Now()
	r.Err = err
	switch {
	case err == nil:
		r.Outcome = OutcomeSuccess
	case canceled:
		r.Outcome = OutcomeCanceled
	default:
		r.Outcome = OutcomeFailed
	}
}

// Duration returns the wall-clock build time.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("pages=%d duration=%s stages=%d outcome=%s",
		r.Pages, r.Duration().Truncate(time.Millisecond), len(r.StageDurations), r.Outcome)
}
