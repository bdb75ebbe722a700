package vault

import (
	"context"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// Whole-state entry points used by bulk import/export. They exist so the
// data layer can run its read-modify-write cycles under the same
// single-writer lock as every other mutation.

// ExportState returns the whole persisted state.
func (m *Manager) ExportState(ctx context.Context) (*prompt.State, error) {
	state, err := m.store.GetData(ctx)
	if err != nil {
		return nil, NewStorageError("read", err)
	}
	return state, nil
}

// ReplaceState overwrites the whole persisted state.
func (m *Manager) ReplaceState(ctx context.Context, state *prompt.State) error {
	defer m.track("replaceState")()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}

// MutateState runs fn on a freshly read state and persists the result, all
// under the single-writer lock. fn returning an error aborts without
// persisting.
func (m *Manager) MutateState(ctx context.Context, fn func(*prompt.State) error) error {
	defer m.track("mutateState")()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}
	if err := fn(state); err != nil {
		return err
	}
	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}
