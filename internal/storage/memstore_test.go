package storage

import (
	"context"
	"testing"
)

func TestMemStoreNoAliasing(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	state := testState()
	if err := store.SetData(ctx, state); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	// Mutating the state we handed in must not leak into the store
	state.Projects[0].Title = "mutated"
	state.Snapshots[0].Payload.Positive[0].Text = "mutated"

	loaded, err := store.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if loaded.Projects[0].Title != "Neon City" {
		t.Error("store aliased the written state")
	}
	if loaded.Snapshots[0].Payload.Positive[0].Text != "cyberpunk" {
		t.Error("store aliased the written snapshot payload")
	}

	// Mutating what we read back must not leak into the store either
	loaded.Projects[0].Title = "mutated again"
	reread, _ := store.GetData(ctx)
	if reread.Projects[0].Title != "Neon City" {
		t.Error("store aliased the read state")
	}
}

func TestMemStoreFailWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	if err := store.SetData(ctx, testState()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	store.FailWrites = context.DeadlineExceeded
	if err := store.SetData(ctx, testState()); err == nil {
		t.Fatal("expected SetData to fail")
	}

	// Prior committed state must be intact
	loaded, err := store.GetData(ctx)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if len(loaded.Projects) != 1 {
		t.Error("failed write should leave prior state intact")
	}
}
