// Package watch re-runs an action when any of a fixed set of input files
// changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/ixgest/fasta"
	"github.com/teranos/protix/logger"
)

// DefaultDebounce collapses bursts of writes from editors and copy tools
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers onChange after a quiet period following a change to one
// of its files. Parent directories are watched so files replaced by rename
// are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	onChange func() error
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	timer   *time.Timer
	pending chan struct{}
}

// New watches paths. Standard input ("-") is ignored; at least one real
// file is required.
func New(paths []string, debounce time.Duration, onChange func() error, log *zap.SugaredLogger) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.NewInvalidRequestError("watch callback is nil")
	}
	if debounce < 0 {
		return nil, errors.NewInvalidRequestError("negative debounce %s", debounce)
	}

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" || p == fasta.StdinPath {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	if len(files) == 0 {
		return nil, errors.WithHint(
			errors.NewInvalidRequestError("no files to watch"),
			"--watch needs at least one input read from a file rather than stdin")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.WrapMissingSource(err, dir)
		}
	}

	return &Watcher{
		watcher:  fw,
		files:    files,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.OrNop(log).With(logger.FieldComponent, "watch"),
		pending:  make(chan struct{}, 1),
	}, nil
}

// Run processes file events until ctx is done. onChange runs on the calling
// goroutine, so invocations never overlap. A failing onChange is logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugw("Input changed",
				logger.FieldPath, event.Name,
				"op", event.Op.String())
			w.schedule()

		case <-w.pending:
			start := time.Now()
			if err := w.onChange(); err != nil {
				w.logger.Errorw("Re-run after change failed", logger.FieldError, err)
				continue
			}
			w.logger.Debugw("Re-run after change finished",
				logger.FieldDurationMS, time.Since(start).Milliseconds())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// Close stops watching. Run returns once its event channel closes.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(event.Name)]
	return ok
}

// schedule restarts the debounce timer
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.pending <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
