// Package storage persists the whole prompt-vault state as a single blob.
// Every mutation is a read-entire-state, mutate-in-memory, write-entire-state
// cycle; SetData is all-or-nothing per call but gives no isolation between
// concurrent callers. Callers that mutate must serialize themselves (the
// version manager holds a single-writer lock around its operations).
package storage

import (
	"context"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// Store is the persistence contract consumed by the version manager.
// GetData returns a state the caller owns; implementations never hand out
// aliases of their internal state.
type Store interface {
	GetData(ctx context.Context) (*prompt.State, error)
	SetData(ctx context.Context, state *prompt.State) error

	// GetSnapshots returns all snapshots for a project, in store order.
	GetSnapshots(ctx context.Context, projectID string) ([]prompt.Snapshot, error)
	// AddSnapshot appends a snapshot to the state.
	AddSnapshot(ctx context.Context, snapshot prompt.Snapshot) error
	// DeleteSnapshot removes a snapshot by id. Unknown ids are a no-op.
	DeleteSnapshot(ctx context.Context, snapshotID string) error
}

// filterSnapshots returns the snapshots belonging to a project, preserving
// store order.
func filterSnapshots(state *prompt.State, projectID string) []prompt.Snapshot {
	out := []prompt.Snapshot{}
	for _, s := range state.Snapshots {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out
}

// removeSnapshot filters a snapshot id out of the state in place.
func removeSnapshot(state *prompt.State, snapshotID string) {
	kept := state.Snapshots[:0]
	for _, s := range state.Snapshots {
		if s.ID != snapshotID {
			kept = append(kept, s)
		}
	}
	state.Snapshots = kept
}
