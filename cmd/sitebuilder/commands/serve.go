package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

const historyFileName = "builds.db"

// ServeCmd implements the 'serve' command: build once, then serve the output
// tree until interrupted. SIGHUP forces a rebuild.
type ServeCmd struct {
	Watch    bool          `help:"Rebuild when content, static, styles or templates change"`
	Poll     time.Duration `help:"Also rebuild on this fixed interval, for filesystems where change notification is unreliable"`
	StateDir string        `name:"state-dir" help:"Directory for the build history database (default from config)"`
	Port     int           `short:"p" help:"Override the configured server port"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.StateDir != "" {
		cfg.Server.StateDir = s.StateDir
	}
	if s.Port > 0 {
		cfg.Server.Port = s.Port
	}

	store, err := openHistory(cfg.Server.StateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, recorder := metricsFor(cfg)
	builder := build.New(cfg, build.WithRecorder(recorder))

	// Rebuild triggers (watch, poll, SIGHUP) run on separate goroutines;
	// the mutex keeps builds from interleaving on the output tree.
	var mu sync.Mutex
	rebuild := func(reason string) error {
		mu.Lock()
		defer mu.Unlock()
		report, err := builder.Run(sigctx)
		recordBuild(store, report, reason)
		return err
	}

	fmt.Println("Building site")
	if err := rebuild(history.ReasonInitial); err != nil {
		return err
	}

	if s.Watch {
		watcher, werr := watch.NewWatcher(watch.DefaultDebounce, func() {
			if err := rebuild(history.ReasonWatch); err != nil {
				slog.Warn("Rebuild failed, keeping previous output", logfields.Error(err))
			}
		})
		if werr != nil {
			return werr
		}
		defer watcher.Close()
		if err := watcher.Add(cfg.InputDirs()...); err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(sigctx); err != nil {
				slog.Error("Watcher stopped", logfields.Error(err))
			}
		}()
		slog.Info("Watching for changes", logfields.Dir(cfg.ContentDir()))
	}

	if s.Poll > 0 {
		sched, serr := watch.NewScheduler()
		if serr != nil {
			return serr
		}
		if _, err := sched.SchedulePeriodicRebuild(s.Poll, func() {
			if err := rebuild(history.ReasonPoll); err != nil {
				slog.Warn("Rebuild failed, keeping previous output", logfields.Error(err))
			}
		}); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	go rebuildOnSIGHUP(sigctx, rebuild)

	opts := []server.Option{server.WithHistory(store)}
	if registry != nil {
		opts = append(opts, server.WithMetrics(registry, recorder))
	}

	fmt.Printf("Serving %s at http://localhost:%d\n", cfg.OutputDir(), cfg.Server.Port)
	return server.New(cfg, opts...).ListenAndServe(sigctx)
}

// openHistory opens the build history store under the state directory.
func openHistory(stateDir string) (history.Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, apperrors.FileSystemFailure("mkdir", stateDir, err)
	}
	return history.NewSQLiteStore(filepath.Join(stateDir, historyFileName))
}

// metricsFor returns the prometheus registry and recorder when metrics are
// enabled in the configuration, or a nil registry with the no-op recorder.
func metricsFor(cfg *config.Config) (*prom.Registry, metrics.Recorder) {
	if !cfg.Server.Metrics.Enabled {
		return nil, metrics.NoopRecorder{}
	}
	registry := prom.NewRegistry()
	return registry, metrics.NewPrometheusRecorder(registry)
}

// recordBuild persists one build report. History is advisory; failures are
// logged and never fail the build that produced the report.
func recordBuild(store history.Store, report *build.Report, reason string) {
	b := history.Build{
		ID:        report.ID,
		StartedAt: report.Start,
		Duration:  report.Duration(),
		Pages:     report.Pages,
		Outcome:   string(report.Outcome),
		Reason:    reason,
	}
	if report.Err != nil {
		b.Error = report.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Record(ctx, b); err != nil {
		slog.Warn("Could not record build", logfields.BuildID(report.ID), logfields.Error(err))
	}
}

func rebuildOnSIGHUP(ctx context.Context, rebuild func(reason string) error) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			slog.Info("Rebuild requested via SIGHUP")
			if err := rebuild(history.ReasonManual); err != nil {
				slog.Warn("Rebuild failed, keeping previous output", logfields.Error(err))
			}
		}
	}
}
