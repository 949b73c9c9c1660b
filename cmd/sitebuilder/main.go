package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/cmd/sitebuilder/commands"
	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("sitebuilder"),
		kong.Description("Markdown static site generator with a live preview server."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FormatError(err, cli.Verbose))
		os.Exit(apperrors.ExitCodeFor(err))
	}
}
