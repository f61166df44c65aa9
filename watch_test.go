package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitChanged(dw *diskWatcher, path string, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if dw.Changed(path) {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestDiskWatcherFlagsExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.c")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dw, err := newDiskWatcher(nil)
	if err != nil {
		t.Skipf("watcher unavailable: %v", err)
	}
	defer dw.Close()
	if err := dw.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if !waitChanged(dw, path, 3*time.Second) {
		t.Fatalf("external write should flag the file")
	}
	// Changed is a take: the flag is consumed.
	if dw.Changed(path) {
		t.Fatalf("flag should clear once read")
	}
}

func TestDiskWatcherSuppressesOwnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.c")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dw, err := newDiskWatcher(nil)
	if err != nil {
		t.Skipf("watcher unavailable: %v", err)
	}
	defer dw.Close()
	if err := dw.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	dw.SuppressNext(path)
	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if waitChanged(dw, path, 500*time.Millisecond) {
		t.Fatalf("our own save must not flag the file")
	}
}

func TestDiskWatcherForget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.c")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dw, err := newDiskWatcher(nil)
	if err != nil {
		t.Skipf("watcher unavailable: %v", err)
	}
	defer dw.Close()
	if err := dw.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}
	dw.Forget(path)

	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if waitChanged(dw, path, 300*time.Millisecond) {
		t.Fatalf("forgotten file must not be flagged")
	}
}
