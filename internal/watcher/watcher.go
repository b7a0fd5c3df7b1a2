// Package watcher monitors a flags file for changes and invokes a callback
// after a debounce period. It watches the file's directory rather than the
// file itself so that atomic saves (write-then-rename) are caught.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last relevant event before
// onChange fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher invokes onChange when the watched file is written, created, or
// renamed over, coalescing rapid event bursts into a single callback.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func()

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates a Watcher for path. onChange runs on the watcher goroutine.
func New(path string, onChange func(), opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		logger:   slog.Default(),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching the file's directory for changes.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: create fsnotify: %w", err)
	}
	w.fsWatcher = fsw

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watcher: watch %s: %w", dir, err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for the background goroutine to
// exit. It is safe to call Stop multiple times.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("flags file event", "op", event.Op.String(), "path", event.Name)
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

		case <-fire:
			w.onChange()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
