package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 1)
	w := New(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond), WithLogger(discard()))

	if err := w.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
}

func TestWatcherCatchesAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 1)
	w := New(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond), WithLogger(discard()))

	if err := w.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer w.Stop()

	// Editor-style atomic save: write a temp file, rename it over the target.
	tmp := filepath.Join(dir, "flags.yml.tmp")
	if err := os.WriteFile(tmp, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rename callback")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 1)
	w := New(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond), WithLogger(discard()))

	if err := w.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.yml"), []byte("b: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Fatal("callback fired for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := New(path, func() {}, WithLogger(discard()))
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("first Stop() = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() = %v", err)
	}
}
