package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for periodic rebuilds, used with --poll on
// filesystems where inotify/kqueue events are unreliable (network mounts,
// some containers).
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// SchedulePeriodicRebuild registers rebuild to run every interval. Returns
// the job ID for later management.
func (s *Scheduler) SchedulePeriodicRebuild(interval time.Duration, rebuild func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(rebuild),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return "", fmt.Errorf("create periodic rebuild job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	slog.Debug("Starting rebuild scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts the scheduler down, waiting for a running job.
func (s *Scheduler) Stop() error {
	slog.Debug("Stopping rebuild scheduler")
	return s.scheduler.Shutdown()
}
