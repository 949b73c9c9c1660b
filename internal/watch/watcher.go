// Package watch triggers rebuilds while serve mode is running: a recursive
// filesystem watcher for responsive rebuilds, and a periodic scheduler as a
// fallback for filesystems where change notification is unreliable.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultDebounce collapses save bursts (editors often write several events
// per save) into a single rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Watcher invokes a callback when any watched tree changes, debounced so a
// burst of events triggers one rebuild.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()
}

// NewWatcher creates a watcher that calls onChange after changes settle for
// the debounce interval. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsw: fsw, debounce: debounce, onChange: onChange}, nil
}

// Add watches each root recursively. Roots that do not exist are skipped;
// authors often have no static/ or styles/ tree yet.
func (w *Watcher) Add(roots ...string) error {
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			slog.Debug("Watch root absent, skipping", logfields.Dir(root))
			continue
		}
		if err := w.addTree(root); err != nil {
			return err
		}
		slog.Debug("Watching tree", logfields.Dir(root))
	}
	return nil
}

// addTree registers root and every directory below it. fsnotify watches are
// per-directory, not recursive.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Run processes filesystem events until ctx is canceled. It always runs the
// callback from this goroutine, so callers get serialized rebuilds for free.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))

			// New directories are not covered by existing watches.
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Warn("Could not watch new directory", logfields.Dir(ev.Name), logfields.Error(err))
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))

		case <-fire:
			timer = nil
			fire = nil
			w.onChange()
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
