// Package watch rebuilds shaders when their sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/spvbuild"
)

// DefaultDebounce is the quiet period after the last change before a
// rebuild starts.
const DefaultDebounce = 200 * time.Millisecond

// Watcher runs a full build whenever a source file matching Rules changes.
type Watcher struct {
	Dir      string
	Rules    spvbuild.Rules
	Debounce time.Duration

	// Build runs one full build. Its error is logged and does not stop
	// the watcher.
	Build func(ctx context.Context) error

	Logger *slog.Logger

	// ready, if set, is called once the directory is being watched.
	ready func()
}

// Run builds once, then rebuilds on every relevant change until ctx is
// cancelled. Builds never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}

	w.build(ctx, logger)
	if ctx.Err() != nil {
		return nil
	}
	logger.Info("watching for changes", "dir", w.Dir)
	if w.ready != nil {
		w.ready()
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			logger.Debug("source changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-timer.C:
			w.build(ctx, logger)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.Rules.Match(filepath.Base(ev.Name))
	return ok
}

func (w *Watcher) build(ctx context.Context, logger *slog.Logger) {
	if err := w.Build(ctx); err != nil {
		logger.Error("build failed", "err", err)
	}
}
