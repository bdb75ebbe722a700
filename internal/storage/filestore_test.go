package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

func testState() *prompt.State {
	state := prompt.NewState()
	state.Projects = append(state.Projects, prompt.Project{
		ID:    "p1",
		Title: "Neon City",
		Tags:  []string{"city"},
		Content: prompt.Content{
			Positive: []prompt.Fragment{{ID: "f1", Text: "cyberpunk", Type: prompt.TypeStyle, Weight: 1.0}},
		},
	})
	state.Snapshots = append(state.Snapshots, prompt.Snapshot{
		ID:        "s1",
		ProjectID: "p1",
		Version:   1,
		Payload:   state.Projects[0].CapturePayload(),
		CreatedAt: 1000,
	})
	return state
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault", "state.json")
	store := NewFileStore(path)

	// Missing file reads as empty default state
	state, err := store.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData on missing file failed: %v", err)
	}
	if len(state.Projects) != 0 || len(state.Snapshots) != 0 {
		t.Error("missing file should read as empty state")
	}
	if state.Settings.DefaultModel != "midjourney" {
		t.Errorf("expected default settings, got model %q", state.Settings.DefaultModel)
	}

	if err := store.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	loaded, err := store.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if len(loaded.Projects) != 1 || loaded.Projects[0].Title != "Neon City" {
		t.Errorf("unexpected projects after round trip: %+v", loaded.Projects)
	}
	if len(loaded.Snapshots) != 1 || loaded.Snapshots[0].Version != 1 {
		t.Errorf("unexpected snapshots after round trip: %+v", loaded.Snapshots)
	}
}

func TestFileStoreAtRestShape(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	if err := store.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	// Field names are the import/export contract.
	for _, key := range []string{`"projects"`, `"snapshots"`, `"settings"`, `"projectId"`, `"snapshot"`, `"isLocked"`, `"createdAt"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("state file missing key %s", key)
		}
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"))

	for i := 0; i < 3; i++ {
		if err := store.SetData(ctx, testState()); err != nil {
			t.Fatalf("SetData failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only state.json, got %v", names)
	}
}

func TestFileStoreSnapshotHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	if err := store.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	extra := prompt.Snapshot{ID: "s2", ProjectID: "p1", Version: 2, CreatedAt: 2000}
	if err := store.AddSnapshot(ctx, extra); err != nil {
		t.Fatalf("AddSnapshot failed: %v", err)
	}

	snaps, err := store.GetSnapshots(ctx, "p1")
	if err != nil {
		t.Fatalf("GetSnapshots failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}

	if snaps, _ := store.GetSnapshots(ctx, "other"); len(snaps) != 0 {
		t.Errorf("expected no snapshots for unrelated project, got %d", len(snaps))
	}

	if err := store.DeleteSnapshot(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	snaps, _ = store.GetSnapshots(ctx, "p1")
	if len(snaps) != 1 || snaps[0].ID != "s2" {
		t.Errorf("expected only s2 to remain, got %+v", snaps)
	}

	// Deleting an unknown id is a no-op
	if err := store.DeleteSnapshot(ctx, "missing"); err != nil {
		t.Errorf("deleting unknown snapshot should not fail: %v", err)
	}
}
