package ingest

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type submitRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *submitRecorder) submit(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *submitRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *submitRecorder) waitFor(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if paths := r.snapshot(); len(paths) >= n {
			return paths
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d submissions, have %v", n, r.snapshot())
	return nil
}

func TestWatcherSubmitsNewSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &submitRecorder{}

	w, err := NewWatcher(dir, rec.submit, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "standup.md")
	if err := os.WriteFile(path, []byte("- John will send the notes"), 0644); err != nil {
		t.Fatal(err)
	}

	paths := rec.waitFor(t, 1)
	if paths[0] != path {
		t.Errorf("submitted %q, want %q", paths[0], path)
	}
}

func TestWatcherIgnoresUnsupportedAndHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &submitRecorder{}

	w, err := NewWatcher(dir, rec.submit, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "deck.pptx"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".draft.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	paths := rec.waitFor(t, 1)
	if len(paths) != 1 || filepath.Base(paths[0]) != "ok.txt" {
		t.Errorf("submitted %v, want only ok.txt", paths)
	}
}

func TestWatcherSubmitsEachFileOnce(t *testing.T) {
	dir := t.TempDir()
	rec := &submitRecorder{}

	w, err := NewWatcher(dir, rec.submit, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	rec.waitFor(t, 1)

	// Rewrites of an already-seen file must not resubmit it.
	if err := os.WriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if paths := rec.snapshot(); len(paths) != 1 {
		t.Errorf("submitted %d times, want 1: %v", len(paths), paths)
	}
}

func TestScanExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "backlog.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &submitRecorder{}
	w, err := NewWatcher(dir, rec.submit, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := w.ScanExisting(); err != nil {
		t.Fatalf("ScanExisting: %v", err)
	}
	paths := rec.waitFor(t, 1)
	if filepath.Base(paths[0]) != "backlog.txt" {
		t.Errorf("submitted %v", paths)
	}
}
