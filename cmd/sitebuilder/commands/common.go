// Package commands defines the sitebuilder CLI subcommands.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init  InitCmd  `cmd:"" help:"Scaffold a new site project in the current directory"`
	Build BuildCmd `cmd:"" help:"Build the site into the output directory"`
	Serve ServeCmd `cmd:"" help:"Build the site and serve it with rebuild on change"`
	Check CheckCmd `cmd:"" help:"Verify that internal links in the built site resolve"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration named by the root --config flag.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}
