package content

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/paths"
)

// Collector walks a content root and parses every Markdown file found.
type Collector struct {
	parser *Parser
}

// NewCollector creates a collector with a fresh parser.
func NewCollector() *Collector {
	return &Collector{parser: NewParser()}
}

// Collect enumerates and parses all pages under root.
//
// Hidden files and directories are skipped, as are files without a Markdown
// extension. The first parse or filesystem error aborts the walk. Pages are
// returned in filesystem enumeration order; callers must not rely on any
// particular ordering.
func (c *Collector) Collect(root string) ([]*Page, error) {
	var pages []*Page

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return apperrors.FileSystemFailure("walk", path, walkErr)
		}

		if d.IsDir() {
			if path != root && paths.IsHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if paths.IsHidden(d.Name()) || !paths.IsMarkdown(d.Name()) {
			return nil
		}

		page, err := c.parser.ParseFile(path, root)
		if err != nil {
			return err
		}

		pages = append(pages, page)
		slog.Debug("Collected page", logfields.Page(page.RelativePath))
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Content collected", logfields.Dir(root), logfields.Pages(len(pages)))
	return pages, nil
}
