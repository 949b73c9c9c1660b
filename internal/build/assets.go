package build

import (
	"context"
	"errors"
	"log/slog"
	"os"

	cp "github.com/otiai10/copy"

	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

var errNotADirectory = errors.New("not a directory")

// stageCopyAssets copies the static and styles trees into the output root.
// Each tree's contents land directly under the output root with their
// directory structure preserved, so static/logo.png is served at /logo.png.
// Existing destination files are overwritten. A tree that does not exist is
// skipped; a project without assets is fine.
func (b *Builder) stageCopyAssets(_ context.Context, _ *state) error {
	out := b.cfg.OutputDir()
	for _, src := range b.cfg.AssetDirs() {
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			slog.Debug("Asset tree absent, skipping", logfields.Dir(src))
			continue
		}
		if err != nil {
			return apperrors.FileSystemFailure("stat", src, err)
		}
		if !info.IsDir() {
			return apperrors.FileSystemFailure("copy", src, errNotADirectory)
		}

		if err := cp.Copy(src, out); err != nil {
			return apperrors.FileSystemFailure("copy", src, err)
		}
		slog.Debug("Copied asset tree", logfields.Dir(src))
	}
	return nil
}
