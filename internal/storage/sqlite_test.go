package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Empty database reads as empty default state
	state, err := store.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData on empty db failed: %v", err)
	}
	if len(state.Projects) != 0 || len(state.Snapshots) != 0 {
		t.Error("empty db should read as empty state")
	}

	if err := store.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	loaded, err := store.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if len(loaded.Projects) != 1 || loaded.Projects[0].ID != "p1" {
		t.Errorf("unexpected projects: %+v", loaded.Projects)
	}
	if len(loaded.Snapshots) != 1 || loaded.Snapshots[0].ID != "s1" {
		t.Errorf("unexpected snapshots: %+v", loaded.Snapshots)
	}

	// Second write replaces, not appends
	next := testState()
	next.Projects[0].Title = "Renamed"
	if err := store.SetData(ctx, next); err != nil {
		t.Fatalf("second SetData failed: %v", err)
	}
	loaded, err = store.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if len(loaded.Projects) != 1 || loaded.Projects[0].Title != "Renamed" {
		t.Errorf("expected replaced state, got %+v", loaded.Projects)
	}
}

func TestSQLiteStoreSnapshotHelpers(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if err := store.AddSnapshot(ctx, prompt.Snapshot{ID: "s1", ProjectID: "p1", Version: 1}); err != nil {
		t.Fatalf("AddSnapshot failed: %v", err)
	}
	if err := store.AddSnapshot(ctx, prompt.Snapshot{ID: "s2", ProjectID: "p2", Version: 1}); err != nil {
		t.Fatalf("AddSnapshot failed: %v", err)
	}

	snaps, err := store.GetSnapshots(ctx, "p1")
	if err != nil {
		t.Fatalf("GetSnapshots failed: %v", err)
	}
	if len(snaps) != 1 || snaps[0].ID != "s1" {
		t.Errorf("expected [s1], got %+v", snaps)
	}

	if err := store.DeleteSnapshot(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	if snaps, _ := store.GetSnapshots(ctx, "p1"); len(snaps) != 0 {
		t.Errorf("expected no snapshots after delete, got %+v", snaps)
	}
}
