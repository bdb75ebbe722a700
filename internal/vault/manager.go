package vault

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChamsBouzaiene/promptvault/internal/monitor"
	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
	"github.com/ChamsBouzaiene/promptvault/internal/storage"
)

// BackupNote marks the snapshot automatically taken before a restore.
const BackupNote = "automatic backup before restore"

// Config tunes a Manager. The zero value gets working defaults.
type Config struct {
	DefaultModel string            // metrics.modelName when the caller supplies none
	Recorder     *monitor.Recorder // optional latency recorder
	Now          func() int64      // Unix-millisecond clock, for tests
	NewID        func() string     // id generator, for tests
}

// Manager is the only component with write authority over snapshot identity
// and version numbers. All mutating operations are serialized through a
// single-writer mutex: the store's read-modify-write cycles give no isolation
// between concurrent callers, so without this lock two overlapping mutations
// would silently discard each other's writes.
//
// The manager never caches state across calls; every operation re-reads
// before mutating.
type Manager struct {
	store storage.Store
	mu    sync.Mutex

	defaultModel string
	recorder     *monitor.Recorder
	now          func() int64
	newID        func() string
}

// NewManager creates a version manager on top of the given store.
func NewManager(store storage.Store, cfg Config) *Manager {
	m := &Manager{
		store:        store,
		defaultModel: cfg.DefaultModel,
		recorder:     cfg.Recorder,
		now:          cfg.Now,
		newID:        cfg.NewID,
	}
	if m.defaultModel == "" {
		m.defaultModel = "midjourney"
	}
	if m.now == nil {
		m.now = func() int64 { return time.Now().UnixMilli() }
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

// track records the latency of an operation when a recorder is configured.
func (m *Manager) track(op string) func() {
	if m.recorder == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.recorder.Record("vault."+op, time.Since(start)) }
}

// SnapshotOptions carries the optional annotation fields of a new snapshot.
type SnapshotOptions struct {
	ImageURL  string
	Rating    int // 1..5, 0 means unset
	Notes     string
	ModelName string // defaults to the manager's default model
}

// CreateSnapshot freezes the project's current content into a new immutable
// snapshot and persists it. The version number is derived from the current
// count of the project's snapshots (count+1), so after a delete-then-create
// sequence a previously used version number can be assigned again; this
// mirrors the historical behavior and is deliberately not "fixed".
//
// Prior snapshots are never mutated; the payload never aliases the live
// project's slices.
func (m *Manager) CreateSnapshot(ctx context.Context, project prompt.Project, opts SnapshotOptions) (prompt.Snapshot, error) {
	defer m.track("createSnapshot")()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createSnapshotLocked(ctx, project, opts)
}

func (m *Manager) createSnapshotLocked(ctx context.Context, project prompt.Project, opts SnapshotOptions) (prompt.Snapshot, error) {
	existing, err := m.store.GetSnapshots(ctx, project.ID)
	if err != nil {
		return prompt.Snapshot{}, NewStorageError("read", err)
	}

	snapshot := m.buildSnapshot(project, len(existing)+1, opts)
	if err := m.store.AddSnapshot(ctx, snapshot); err != nil {
		return prompt.Snapshot{}, NewStorageError("write", err)
	}
	return snapshot, nil
}

func (m *Manager) buildSnapshot(project prompt.Project, version int, opts SnapshotOptions) prompt.Snapshot {
	modelName := opts.ModelName
	if modelName == "" {
		modelName = m.defaultModel
	}
	return prompt.Snapshot{
		ID:         m.newID(),
		ProjectID:  project.ID,
		Version:    version,
		Payload:    project.CapturePayload(),
		FullString: prompt.BuildAll(project),
		ImageURL:   opts.ImageURL,
		Metrics: &prompt.Metrics{
			Rating:    opts.Rating,
			ModelName: modelName,
			Notes:     opts.Notes,
		},
		CreatedAt: m.now(),
	}
}

// GetProjectSnapshots returns the project's snapshots sorted by createdAt
// descending, most recent first. Equal timestamps keep store order: stable
// but unspecified across equal timestamps.
func (m *Manager) GetProjectSnapshots(ctx context.Context, projectID string) ([]prompt.Snapshot, error) {
	defer m.track("getProjectSnapshots")()

	snapshots, err := m.store.GetSnapshots(ctx, projectID)
	if err != nil {
		return nil, NewStorageError("read", err)
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt > snapshots[j].CreatedAt
	})
	return snapshots, nil
}

// GetSnapshot returns one snapshot by id.
func (m *Manager) GetSnapshot(ctx context.Context, snapshotID string) (prompt.Snapshot, error) {
	state, err := m.store.GetData(ctx)
	if err != nil {
		return prompt.Snapshot{}, NewStorageError("read", err)
	}
	for _, s := range state.Snapshots {
		if s.ID == snapshotID {
			return s, nil
		}
	}
	return prompt.Snapshot{}, NewSnapshotNotFound(snapshotID)
}

// DeleteSnapshot removes a snapshot unconditionally. Nothing references a
// snapshot by ownership, so there is no cascade.
func (m *Manager) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	defer m.track("deleteSnapshot")()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.DeleteSnapshot(ctx, snapshotID); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}

// RestoreFromSnapshot overwrites the live project's content from a chosen
// snapshot. The project's pre-restore content is checkpointed first as an
// automatic backup, which makes restore non-destructive and reversible.
//
// The backup is persisted before the project overwrite; the two persists are
// not atomic with respect to process failure between them. If the second
// write fails, the only observable effect is an extra backup snapshot and an
// untouched project, which is safe to retry.
func (m *Manager) RestoreFromSnapshot(ctx context.Context, projectID, snapshotID string) error {
	defer m.track("restoreFromSnapshot")()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}

	target, ok := findSnapshot(state, snapshotID)
	if !ok {
		return NewSnapshotNotFound(snapshotID)
	}
	idx := findProjectIndex(state, projectID)
	if idx < 0 {
		return NewProjectNotFound(projectID)
	}

	// Checkpoint the current, pre-restore content.
	current := state.Projects[idx]
	if _, err := m.createSnapshotLocked(ctx, current, SnapshotOptions{Notes: BackupNote}); err != nil {
		return err
	}

	// Fresh read-modify-write so the persisted backup stays in the blob.
	state, err = m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}
	idx = findProjectIndex(state, projectID)
	if idx < 0 {
		return NewProjectNotFound(projectID)
	}

	project := &state.Projects[idx]
	restored := target.Payload.Clone()
	project.Title = restored.Title
	project.Description = restored.Description
	project.Content.Positive = restored.Positive
	project.Content.Negative = restored.Negative
	project.Content.Params = restored.Params
	project.Tags = restored.Tags
	project.UpdatedAt = m.now()

	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}

// UpdateSnapshotRating merges rating and notes into the snapshot's metrics.
// The rating is overwritten unconditionally; empty notes preserve the stored
// notes; the stored modelName is preserved, or defaulted when absent.
func (m *Manager) UpdateSnapshotRating(ctx context.Context, snapshotID string, rating int, notes string) error {
	defer m.track("updateSnapshotRating")()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}

	idx := findSnapshotIndex(state, snapshotID)
	if idx < 0 {
		return NewSnapshotNotFound(snapshotID)
	}

	snapshot := &state.Snapshots[idx]
	merged := prompt.Metrics{Rating: rating}
	if snapshot.Metrics != nil {
		merged.ModelName = snapshot.Metrics.ModelName
		merged.GenerationTime = snapshot.Metrics.GenerationTime
		merged.Notes = snapshot.Metrics.Notes
	}
	if notes != "" {
		merged.Notes = notes
	}
	if merged.ModelName == "" {
		merged.ModelName = m.defaultModel
	}
	snapshot.Metrics = &merged

	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}

// AttachImageToSnapshot links a generated image to the snapshot.
func (m *Manager) AttachImageToSnapshot(ctx context.Context, snapshotID, imageURL string) error {
	defer m.track("attachImageToSnapshot")()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}

	idx := findSnapshotIndex(state, snapshotID)
	if idx < 0 {
		return NewSnapshotNotFound(snapshotID)
	}

	state.Snapshots[idx].ImageURL = imageURL
	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}

// CompareSnapshots is the pure diff entry point on the manager surface; it
// performs no I/O and takes no lock.
func (m *Manager) CompareSnapshots(a, b prompt.Snapshot) DiffResult {
	return CompareSnapshots(a, b)
}

func findSnapshot(state *prompt.State, snapshotID string) (prompt.Snapshot, bool) {
	if idx := findSnapshotIndex(state, snapshotID); idx >= 0 {
		return state.Snapshots[idx], true
	}
	return prompt.Snapshot{}, false
}

func findSnapshotIndex(state *prompt.State, snapshotID string) int {
	for i := range state.Snapshots {
		if state.Snapshots[i].ID == snapshotID {
			return i
		}
	}
	return -1
}

func findProjectIndex(state *prompt.State, projectID string) int {
	for i := range state.Projects {
		if state.Projects[i].ID == projectID {
			return i
		}
	}
	return -1
}
