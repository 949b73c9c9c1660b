// Package history persists build results across serve-mode rebuilds so the
// preview server can expose them at /api/builds.
package history

import (
	"context"
	"time"
)

// Rebuild reasons recorded with each build.
const (
	ReasonInitial = "initial" // first build when serve starts
	ReasonWatch   = "watch"   // triggered by a filesystem change
	ReasonPoll    = "poll"    // triggered by the periodic schedule
	ReasonManual  = "manual"  // requested via SIGHUP
)

// Build is one recorded build run.
type Build struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Pages     int           `json:"pages"`
	Outcome   string        `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	Reason    string        `json:"reason"`
}

// Store persists and retrieves build records.
type Store interface {
	// Record appends one build run.
	Record(ctx context.Context, b Build) error

	// Recent returns up to limit builds, most recent first.
	Recent(ctx context.Context, limit int) ([]Build, error)

	// Close releases the underlying resources.
	Close() error
}
