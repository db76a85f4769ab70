// Package watch reruns a callback when files in a directory change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/consts"
)

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

type (
	// Option configures a Watcher.
	Option func(*Watcher)

	// Watcher calls a function after files in a directory change. Bursts of
	// events are collapsed: the function runs once the directory has been
	// quiet for the debounce interval. Calls never overlap.
	Watcher struct {
		dir      string
		fn       func(context.Context) error
		debounce time.Duration
		logger   *slog.Logger
		initial  bool
	}
)

// WithDebounce sets the quiet period before fn runs. Defaults to 500ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger for the watcher.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithInitialRun makes Run call fn once before waiting for changes.
func WithInitialRun() Option {
	return func(w *Watcher) { w.initial = true }
}

// New creates a Watcher for dir.
func New(dir string, fn func(context.Context) error, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		fn:       fn,
		debounce: consts.DefaultDebounce,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run watches until ctx is done. Errors returned by fn are logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", w.dir)
	}

	w.logger.Info("Watching for changes", "dir", w.dir)
	if w.initial {
		w.invoke(ctx)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if !relevant(event) {
				continue
			}

			w.logger.Debug("File changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "err", err)

		case <-timer.C:
			w.invoke(ctx)
		}
	}
}

func (w *Watcher) invoke(ctx context.Context) {
	if err := w.fn(ctx); err != nil {
		w.logger.Error("Error handling change", "dir", w.dir, "err", err)
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op&changeOps == 0 {
		return false
	}

	name := filepath.Base(event.Name)
	return !strings.HasPrefix(name, ".") && !strings.HasSuffix(name, "~")
}
