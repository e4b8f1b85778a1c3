package spool

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors a jobs directory for new job files using fsnotify with a
// polling fallback. Subdirectories (done/, failed/) are not watched.
type Watcher struct {
	// dir is the jobs directory being monitored.
	dir string
	// match reports whether a base file name is a job file.
	match func(name string) bool
	// events delivers a signal each time a job file appears or changes.
	// The channel is buffered to 1 so back-to-back writes coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to signal goroutines to exit.
	done chan struct{}
	// mu guards fsw, which is swapped to nil on fallback.
	mu  sync.Mutex
	fsw *fsnotify.Watcher
	// once ensures [Watcher.Close] is idempotent.
	once sync.Once
	// polling is true when the watcher has fallen back to directory scans.
	polling atomic.Bool
	// pollInterval is the duration between scans in polling mode.
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewWatcher creates a Watcher over dir. It fires when a file whose base
// name satisfies match is created or written. When fsnotify is unavailable
// or dir cannot be watched, the directory is scanned every interval.
func NewWatcher(dir string, match func(string) bool, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("jobs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("jobs directory: %s is not a directory", dir)
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	w := &Watcher{
		dir:          dir,
		match:        match,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: interval,
		logger:       logger,
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Info("fsnotify unavailable, falling back to directory polling", "error", err)
		w.startPolling()
		return w, nil
	}

	if err := fsw.Add(dir); err != nil {
		logger.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
		fsw.Close()
		w.startPolling()
		return w, nil
	}

	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// isJob reports whether an event or entry path names a job file.
func (w *Watcher) isJob(name string) bool {
	base := name
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		base = name[i+1:]
	}
	return base != "" && w.match(base)
}

// watch loops over fsnotify events, forwarding create and write
// notifications for job files. On an fsnotify error it closes the native
// watcher and switches to polling.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && w.isJob(event.Name) {
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Info("fsnotify error, switching to directory polling", "error", err)
			w.mu.Lock()
			w.fsw = nil
			w.mu.Unlock()
			fsw.Close()
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// poll periodically scans the directory and notifies whenever the set of
// job files (name, size, modification time) differs from the last scan.
// Files already present at startup count as a change, so a caller that
// drains on every event also sees them.
func (w *Watcher) poll() {
	var last string

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			snap, n := w.snapshot()
			if snap != last {
				last = snap
				if n > 0 {
					w.notify()
				}
			}
		}
	}
}

// snapshot returns a stable description of the job files in the directory
// and how many there are.
func (w *Watcher) snapshot() (string, int) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return "", 0
	}
	var lines []string
	for _, e := range entries {
		if e.IsDir() || !w.isJob(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\x00%d\x00%d", e.Name(), info.Size(), info.ModTime().UnixNano()))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), len(lines)
}

// Polling reports whether the watcher is scanning instead of using fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when job files change.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		fsw := w.fsw
		w.fsw = nil
		w.mu.Unlock()
		if fsw != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op, coalescing rapid successive changes.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
