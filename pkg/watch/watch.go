// Package watch reloads a scene file whenever it changes on disk.
//
// A [Watcher] listens on the file's directory rather than the file itself,
// so editors that save by writing a temporary file and renaming it over the
// original are picked up too. Bursts of events are debounced into a single
// notification.
//
//	err := watch.Run(ctx, "scene.yaml", func(ctx context.Context) error {
//	    s, err := io.Load("scene.yaml")
//	    ...
//	})
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/sortgroup/pkg/observability"
)

// DefaultDebounce is how long the file has to stay quiet before a change is
// reported.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a single file.
//
// Events receives the watched path once per debounced burst of writes.
// Errors receives errors from the underlying notifier; when nobody reads
// them they are logged and dropped. Both channels are closed by Close.
type Watcher struct {
	Events chan string
	Errors chan error

	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *log.Logger

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for dropped errors and reload results.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New starts watching path. The file's directory must exist; the file
// itself may be created later.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		Events:   make(chan string, 1),
		Errors:   make(chan error, 1),
		fsw:      fsw,
		path:     abs,
		debounce: DefaultDebounce,
		logger:   log.Default(),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.Events <- w.path:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				w.logger.Warn("dropping watcher error", "err", err)
			}
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Run calls reload once, then again after every debounced change to path,
// until ctx is cancelled. Reload errors are logged and reported to the
// watch hooks but do not stop the loop, so a broken edit can be fixed in
// place. Run returns nil when ctx is cancelled.
func Run(ctx context.Context, path string, reload func(context.Context) error, opts ...Option) error {
	w, err := New(path, opts...)
	if err != nil {
		return err
	}
	defer w.Close()

	w.reload(ctx, reload)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			w.reload(ctx, reload)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "path", w.path, "err", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context, reload func(context.Context) error) {
	start := time.Now()
	err := reload(ctx)
	elapsed := time.Since(start)
	if err != nil {
		w.logger.Error("reload failed", "path", w.path, "err", err)
	} else {
		w.logger.Debug("reloaded", "path", w.path, "duration", elapsed)
	}
	observability.Watch().OnReload(ctx, w.path, elapsed, err)
}
