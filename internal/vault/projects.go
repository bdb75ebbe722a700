package vault

import (
	"context"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// Project-level operations. These share the manager's single-writer lock
// with the snapshot operations because they mutate the same state blob.

// GetProjects returns all projects in store order.
func (m *Manager) GetProjects(ctx context.Context) ([]prompt.Project, error) {
	state, err := m.store.GetData(ctx)
	if err != nil {
		return nil, NewStorageError("read", err)
	}
	return state.Projects, nil
}

// GetProject returns one project by id.
func (m *Manager) GetProject(ctx context.Context, projectID string) (prompt.Project, error) {
	state, err := m.store.GetData(ctx)
	if err != nil {
		return prompt.Project{}, NewStorageError("read", err)
	}
	if idx := findProjectIndex(state, projectID); idx >= 0 {
		return state.Projects[idx], nil
	}
	return prompt.Project{}, NewProjectNotFound(projectID)
}

// AddProject appends a new project. A missing id is generated; zero
// timestamps are filled with the current time.
func (m *Manager) AddProject(ctx context.Context, project prompt.Project) (prompt.Project, error) {
	defer m.track("addProject")()

	m.mu.Lock()
	defer m.mu.Unlock()

	if project.ID == "" {
		project.ID = m.newID()
	}
	if project.CreatedAt == 0 {
		project.CreatedAt = m.now()
	}
	if project.UpdatedAt == 0 {
		project.UpdatedAt = project.CreatedAt
	}

	state, err := m.store.GetData(ctx)
	if err != nil {
		return prompt.Project{}, NewStorageError("read", err)
	}
	state.Projects = append(state.Projects, project.Clone())
	if err := m.store.SetData(ctx, state); err != nil {
		return prompt.Project{}, NewStorageError("write", err)
	}
	return project, nil
}

// UpdateProject replaces the stored project with the same id, preserving
// createdAt and bumping updatedAt.
func (m *Manager) UpdateProject(ctx context.Context, project prompt.Project) error {
	defer m.track("updateProject")()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}

	idx := findProjectIndex(state, project.ID)
	if idx < 0 {
		return NewProjectNotFound(project.ID)
	}

	updated := project.Clone()
	updated.CreatedAt = state.Projects[idx].CreatedAt
	updated.UpdatedAt = m.now()
	state.Projects[idx] = updated

	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}

// DeleteProject removes a project and cascades to all snapshots whose
// projectId matches. Unknown ids are a no-op.
func (m *Manager) DeleteProject(ctx context.Context, projectID string) error {
	defer m.track("deleteProject")()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}

	projects := state.Projects[:0]
	for _, p := range state.Projects {
		if p.ID != projectID {
			projects = append(projects, p)
		}
	}
	state.Projects = projects

	snapshots := state.Snapshots[:0]
	for _, s := range state.Snapshots {
		if s.ProjectID != projectID {
			snapshots = append(snapshots, s)
		}
	}
	state.Snapshots = snapshots

	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}

// Settings returns the stored application settings.
func (m *Manager) Settings(ctx context.Context) (prompt.Settings, error) {
	state, err := m.store.GetData(ctx)
	if err != nil {
		return prompt.Settings{}, NewStorageError("read", err)
	}
	return state.Settings, nil
}

// UpdateSettings replaces the stored settings.
func (m *Manager) UpdateSettings(ctx context.Context, settings prompt.Settings) error {
	defer m.track("updateSettings")()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetData(ctx)
	if err != nil {
		return NewStorageError("read", err)
	}
	state.Settings = settings
	if err := m.store.SetData(ctx, state); err != nil {
		return NewStorageError("write", err)
	}
	return nil
}
