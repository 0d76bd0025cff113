package catalog

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/inkwell/internal/logging"
)

// Update is the result of one reload.
type Update struct {
	Snapshot Snapshot
	Err      error
}

// Watcher reloads a catalog file whenever it changes. Rapid successive
// writes are coalesced into one reload after the debounce delay.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file by rename keep being observed.
type Watcher struct {
	path  string
	delay time.Duration
	log   *logging.Logger

	fsw     *fsnotify.Watcher
	updates chan Update

	mu       sync.Mutex
	timer    *time.Timer
	reloads  sync.WaitGroup
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the delay between the last change and the reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = logging.OrNull(l).WithComponent("catalog")
	}
}

// NewWatcher starts watching path.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		delay:   100 * time.Millisecond,
		log:     logging.Null(),
		fsw:     fsw,
		updates: make(chan Update, 8),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Updates returns the reload channel. It is closed by Close.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil && w.timer.Stop() {
		w.reloads.Done()
	}
	w.mu.Unlock()

	w.closedWg.Wait()
	w.reloads.Wait()
	err := w.fsw.Close()
	close(w.updates)
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// schedule (re)arms the reload timer. A timer that already fired runs to
// completion on its own.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.reloads.Done()
	}
	w.reloads.Add(1)
	w.timer = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) reload() {
	defer w.reloads.Done()

	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	s, err := Load(w.path)
	if err != nil {
		w.log.Warn("reload failed: %v", err)
	} else {
		w.log.Debug("reloaded %d items, %d candidates", len(s.Items), len(s.Candidates))
	}

	select {
	case w.updates <- Update{Snapshot: s, Err: err}:
	case <-w.closeCh:
	}
}
