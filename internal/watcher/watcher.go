// Package watcher re-runs work when a file changes on disk.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"siteinventory/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor or a copy produces
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a file for changes
type Watcher struct {
	path     string
	debounce time.Duration
	log      *logger.Logger
}

// New creates a new file watcher
func New(path string, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		log:      log,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch calls onChange after the file is written, created or replaced and
// then stays quiet for the debounce period. onChange runs on the calling
// goroutine, so invocations never overlap. Watch blocks until ctx is done
// and then returns nil.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory so that replacing the file (editors, atomic
	// copies) keeps being noticed
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	filename := filepath.Base(abs)

	w.log.Info("watching input for changes", "path", abs, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			w.log.Info("input changed", "path", abs)
			onChange(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(w.debounce)
			}
			w.log.Warning("watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
