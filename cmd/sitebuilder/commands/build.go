package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/source"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	FromGit string `name:"from-git" help:"Clone a site project from this Git URL and build it"`
	Ref     string `name:"ref" help:"Branch to check out when cloning with --from-git"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, cleanup, err := b.projectConfig(ctx, root)
	if err != nil {
		return err
	}
	defer cleanup()

	return RunBuild(ctx, cfg)
}

// projectConfig loads the local configuration, or fetches the remote project
// first and rebases the configuration into its workspace. The returned
// cleanup removes the workspace once the build is done with it.
func (b *BuildCmd) projectConfig(ctx context.Context, root *CLI) (*config.Config, func(), error) {
	if b.FromGit == "" {
		if b.Ref != "" {
			slog.Warn("Ignoring --ref without --from-git")
		}
		cfg, err := loadConfig(root)
		return cfg, func() {}, err
	}

	workspace, err := source.Fetch(ctx, source.Project{URL: b.FromGit, Ref: b.Ref})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(workspace); err != nil {
			slog.Warn("Could not remove workspace", logfields.Dir(workspace), logfields.Error(err))
		}
	}

	cfg, err := loadWorkspaceConfig(workspace, root.Config)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	rebased, err := cfg.Rebase(workspace)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return rebased, cleanup, nil
}

// loadWorkspaceConfig reads the configuration out of a fetched workspace.
// A project without one builds with the conventional defaults, same as a
// local project without a file.
func loadWorkspaceConfig(workspace, name string) (*config.Config, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, name)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Debug("No configuration file in workspace, using defaults", logfields.Dir(workspace))
		return config.Default(), nil
	}
	return config.Load(path)
}

// RunBuild executes one build and reports the page count on stdout.
func RunBuild(ctx context.Context, cfg *config.Config) error {
	fmt.Println("Building site")

	report, err := build.New(cfg).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Built %d pages into %s in %s\n",
		report.Pages, cfg.OutputDir(), report.Duration().Truncate(time.Millisecond))
	return nil
}
