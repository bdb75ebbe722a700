package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// FileStore persists the state as one JSON document on disk. Writes go
// through a temp file and rename so a crashed write leaves the prior
// committed state intact. A missing file reads as an empty default state.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
// The parent directory is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the absolute location of the state file.
func (fs *FileStore) Path() string {
	return fs.path
}

// GetData reads the whole state from disk.
func (fs *FileStore) GetData(ctx context.Context) (*prompt.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return prompt.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state prompt.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	normalize(&state)
	return &state, nil
}

// SetData writes the whole state to disk atomically.
func (fs *FileStore) SetData(ctx context.Context, state *prompt.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to a temp file in the same directory, then rename over the
	// target so readers never observe a half-written state.
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// GetSnapshots returns all snapshots for a project in file order.
func (fs *FileStore) GetSnapshots(ctx context.Context, projectID string) ([]prompt.Snapshot, error) {
	state, err := fs.GetData(ctx)
	if err != nil {
		return nil, err
	}
	return filterSnapshots(state, projectID), nil
}

// AddSnapshot appends a snapshot and persists the state.
func (fs *FileStore) AddSnapshot(ctx context.Context, snapshot prompt.Snapshot) error {
	state, err := fs.GetData(ctx)
	if err != nil {
		return err
	}
	state.Snapshots = append(state.Snapshots, snapshot)
	return fs.SetData(ctx, state)
}

// DeleteSnapshot removes a snapshot and persists the state.
func (fs *FileStore) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	state, err := fs.GetData(ctx)
	if err != nil {
		return err
	}
	removeSnapshot(state, snapshotID)
	return fs.SetData(ctx, state)
}

// normalize repairs nil collections in a loaded state so callers can append
// without nil checks. Settings are left as stored.
func normalize(state *prompt.State) {
	if state.Projects == nil {
		state.Projects = []prompt.Project{}
	}
	if state.Snapshots == nil {
		state.Snapshots = []prompt.Snapshot{}
	}
}
