package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	m "github.com/burnlist/burnlist/internal/model"
)

// ChangeFunc receives the de-duplicated set of files changed within one
// debounce window.
type ChangeFunc func(changed []m.Path) error

// Watcher notifies about source changes below a root directory.
type Watcher interface {
	// Watch blocks until ctx is done or fn returns an error.
	Watch(ctx context.Context, root m.Path, debounce time.Duration, fn ChangeFunc) error
}

// LocalWatcher is an fsnotify-backed Watcher. fsnotify is not recursive, so
// every non-ignored directory is registered, including ones created later.
type LocalWatcher struct {
	fs     SourceFSAdapter
	logger *slog.Logger
}

// NewLocalWatcher constructs a LocalWatcher.
func NewLocalWatcher(fs SourceFSAdapter, logger *slog.Logger) *LocalWatcher {
	return &LocalWatcher{fs: fs, logger: logger}
}

// Watch registers root recursively and batches relevant events.
func (w *LocalWatcher) Watch(ctx context.Context, root m.Path, debounce time.Duration, fn ChangeFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	if err := w.addTree(watcher, root); err != nil {
		return err
	}

	pending := map[m.Path]struct{}{}
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if err := w.addTree(watcher, m.Path(event.Name)); err != nil {
						w.logger.Warn("watch new directory", "path", event.Name, "error", err)
					}

					continue
				}
			}

			if !RelevantEvent(event) {
				continue
			}

			pending[m.Path(event.Name)] = struct{}{}

			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}

			changed := make([]m.Path, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}

			sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })
			pending = map[m.Path]struct{}{}

			if err := fn(changed); err != nil {
				return err
			}
		}
	}
}

func (w *LocalWatcher) addTree(watcher *fsnotify.Watcher, root m.Path) error {
	return w.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}

		w.logger.Debug("watching directory", "path", path)

		return nil
	})
}

// RelevantEvent reports whether an event touches a scannable source file.
func RelevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if _, skip := skippedFiles[filepath.Base(event.Name)]; skip {
		return false
	}

	return m.KindOf(m.Path(event.Name)) != m.KindOther
}
