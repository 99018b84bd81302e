package walker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a scanned tree and signals when its shape changed enough
// to warrant a re-scan.
type Watcher struct {
	root   string
	logger *slog.Logger
	Ready  chan struct{}

	newWatcher func() (*fsnotify.Watcher, error)
}

// NewWatcher creates a Watcher for the tree rooted at root.
func NewWatcher(root string, logger *slog.Logger) *Watcher {
	return &Watcher{
		root:       root,
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		newWatcher: fsnotify.NewWatcher,
	}
}

// Watch blocks until the context is cancelled, invoking callback with the
// watched root after each debounced burst of filesystem changes. Newly
// created directories are added to the watch; dot-prefixed entries below
// the root are ignored.
func (w *Watcher) Watch(ctx context.Context, callback func(root string)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, w.root); err != nil {
		return err
	}

	w.logger.Info("Watching for changes", "root", w.root)
	if w.Ready != nil {
		close(w.Ready)
	}

	var timer *time.Timer
	const debounceDuration = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case wErr := <-watcher.Errors:
			w.logger.Error("Watcher error", "error", wErr)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(watcher, event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, func() {
				callback(w.root)
			})
		}
	}
}

// handleEvent reports whether the event should trigger a re-scan. A created
// directory is also added to the watch so artifacts appearing inside it are
// seen.
func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	// Dot-prefixed entries never trigger; reacting to the in-root debug
	// log would turn every logged line into another scan.
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if aErr := w.addRecursive(watcher, event.Name); aErr != nil {
				w.logger.Error("Failed to watch new directory", "path", event.Name, "error", aErr)
			}
		}
	}

	return true
}

// addRecursive adds the given path and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
