package storage

import (
	"context"
	"sync"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// MemStore is an in-memory Store, used in tests and as a scratch backend.
// It deep-copies on every read and write, so it catches aliasing bugs the
// same way a serializing backend would.
type MemStore struct {
	mu    sync.Mutex
	state *prompt.State

	// FailWrites makes SetData fail, for exercising error paths.
	FailWrites error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: prompt.NewState()}
}

// GetData returns a deep copy of the current state.
func (m *MemStore) GetData(ctx context.Context) (*prompt.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

// SetData replaces the state with a deep copy of the argument.
func (m *MemStore) SetData(ctx context.Context, state *prompt.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.state = state.Clone()
	return nil
}

// GetSnapshots returns all snapshots for a project in store order.
func (m *MemStore) GetSnapshots(ctx context.Context, projectID string) ([]prompt.Snapshot, error) {
	state, err := m.GetData(ctx)
	if err != nil {
		return nil, err
	}
	return filterSnapshots(state, projectID), nil
}

// AddSnapshot appends a snapshot.
func (m *MemStore) AddSnapshot(ctx context.Context, snapshot prompt.Snapshot) error {
	state, err := m.GetData(ctx)
	if err != nil {
		return err
	}
	state.Snapshots = append(state.Snapshots, snapshot)
	return m.SetData(ctx, state)
}

// DeleteSnapshot removes a snapshot by id.
func (m *MemStore) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	state, err := m.GetData(ctx)
	if err != nil {
		return err
	}
	removeSnapshot(state, snapshotID)
	return m.SetData(ctx, state)
}
