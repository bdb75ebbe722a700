package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherFiresOnStateReplace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewFileStore(path)

	// Seed the file so the directory watch has something to replace
	if err := store.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	fired := make(chan struct{}, 1)
	w, err := NewWatcher(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// Replace the file the same way SetData does
	if err := store.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire after state replace")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	fired := make(chan struct{}, 1)
	w, err := NewWatcher(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	other := NewFileStore(filepath.Join(dir, "other.json"))
	if err := other.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	select {
	case <-fired:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(1 * time.Second):
	}
}
