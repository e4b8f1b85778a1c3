// Tests for the jobs directory watcher: construction, event delivery,
// filtering, close semantics, and the polling fallback.
package spool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/logger"
)

// ///////////////////////////////////////////////
// Constructor Tests
// ///////////////////////////////////////////////

func TestNewWatcherConstructor(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string // returns path to watch
		wantErr bool
	}{
		{
			name:  "existing dir",
			setup: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name: "missing dir",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			wantErr: true,
		},
		{
			name: "regular file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "jobs")
				os.WriteFile(path, nil, 0o644)
				return path
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWatcher(tt.setup(t), isTOML, time.Second, logger.Discard())
			if tt.wantErr {
				if err == nil {
					w.Close()
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewWatcher: %v", err)
			}
			if w.Events() == nil {
				t.Error("Events() channel is nil")
			}
			if err := w.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
			// Close is idempotent.
			if err := w.Close(); err != nil {
				t.Errorf("second Close: %v", err)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Event Tests
// ///////////////////////////////////////////////

func TestJobFileTriggersEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow watcher test in short mode")
	}

	dir := t.TempDir()
	w, err := NewWatcher(dir, isTOML, 200*time.Millisecond, logger.Discard())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "a.toml"), []byte("[text]\ntext = \"a\"\n"), 0o644)

	select {
	case <-w.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job event")
	}
}

func TestNonJobFileIgnored(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow watcher test in short mode")
	}

	dir := t.TempDir()
	w, err := NewWatcher(dir, isTOML, 100*time.Millisecond, logger.Discard())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	os.Mkdir(filepath.Join(dir, "done"), 0o755)

	select {
	case <-w.Events():
		t.Error("received event for a non-job file")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestMultipleWritesCoalesce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow watcher test in short mode")
	}

	dir := t.TempDir()
	w, err := NewWatcher(dir, isTOML, 200*time.Millisecond, logger.Discard())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	time.Sleep(100 * time.Millisecond)
	for i := range 10 {
		os.WriteFile(filepath.Join(dir, "job.toml"), []byte{byte('0' + i)}, 0o644)
	}

	select {
	case <-w.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for coalesced event")
	}
	if got := len(w.events); got > 1 {
		t.Errorf("pending events = %d, want at most 1", got)
	}
}

// ///////////////////////////////////////////////
// Polling Tests
// ///////////////////////////////////////////////

func TestPollingFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow watcher test in short mode")
	}

	dir := t.TempDir()
	w := &Watcher{
		dir:          dir,
		match:        isTOML,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: 50 * time.Millisecond,
		logger:       logger.Discard(),
	}
	w.startPolling()
	defer w.Close()

	if !w.Polling() {
		t.Fatal("Polling() = false after startPolling")
	}

	os.WriteFile(filepath.Join(dir, "a.toml"), []byte("x"), 0o644)
	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for polled event")
	}

	// An unchanged directory produces no further events.
	select {
	case <-w.Events():
		t.Error("event without a change")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	w := &Watcher{dir: dir, match: isTOML}

	if snap, n := w.snapshot(); snap != "" || n != 0 {
		t.Errorf("empty dir snapshot = %q, %d", snap, n)
	}
	os.WriteFile(filepath.Join(dir, "a.toml"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644)
	first, n := w.snapshot()
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	os.WriteFile(filepath.Join(dir, "a.toml"), []byte("xyz"), 0o644)
	if second, _ := w.snapshot(); second == first {
		t.Error("snapshot unchanged after rewrite")
	}
}

// ///////////////////////////////////////////////
// Close Tests
// ///////////////////////////////////////////////

func TestClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow watcher test in short mode")
	}

	dir := t.TempDir()
	w, err := NewWatcher(dir, isTOML, 100*time.Millisecond, logger.Discard())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "late.toml"), []byte("x"), 0o644)

	select {
	case <-w.Events():
		t.Error("received event after Close; watcher should be stopped")
	case <-time.After(500 * time.Millisecond):
	}
}
