package dataio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
	"github.com/ChamsBouzaiene/promptvault/internal/vault"
)

// stateSchema guards bulk imports: a backup must carry the projects and
// snapshots arrays; settings are optional and default when absent.
const stateSchema = `{
	"type": "object",
	"required": ["projects", "snapshots"],
	"properties": {
		"projects":  {"type": "array"},
		"snapshots": {"type": "array"},
		"settings":  {"type": "object"}
	}
}`

// ImportStats reports what a replace-import brought in.
type ImportStats struct {
	Projects  int
	Snapshots int
}

// MergeStats reports what a merge-import added and skipped.
type MergeStats struct {
	ProjectsAdded    int
	ProjectsSkipped  int
	SnapshotsAdded   int
	SnapshotsSkipped int
}

// DecodeState validates and parses a JSON backup. Malformed payloads,
// including missing required array fields, fail with a ValidationError.
func DecodeState(raw []byte) (*prompt.State, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(stateSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, &vault.ValidationError{Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &vault.ValidationError{Problems: problems}
	}

	var state prompt.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, &vault.ValidationError{Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	if state.Projects == nil {
		state.Projects = []prompt.Project{}
	}
	if state.Snapshots == nil {
		state.Snapshots = []prompt.Snapshot{}
	}
	if state.Settings == (prompt.Settings{}) {
		state.Settings = prompt.DefaultSettings()
	}
	return &state, nil
}

// ImportJSON replaces the whole persisted state with the backup payload.
func ImportJSON(ctx context.Context, mgr *vault.Manager, raw []byte) (ImportStats, error) {
	state, err := DecodeState(raw)
	if err != nil {
		return ImportStats{}, err
	}
	if err := mgr.ReplaceState(ctx, state); err != nil {
		return ImportStats{}, err
	}
	return ImportStats{
		Projects:  len(state.Projects),
		Snapshots: len(state.Snapshots),
	}, nil
}

// MergeImport unions the backup payload into the current state without
// overwriting existing data: projects and snapshots already present (by id)
// are skipped.
func MergeImport(ctx context.Context, mgr *vault.Manager, raw []byte) (MergeStats, error) {
	var incoming prompt.State
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return MergeStats{}, &vault.ValidationError{Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}

	var stats MergeStats
	err := mgr.MutateState(ctx, func(state *prompt.State) error {
		projectIDs := make(map[string]struct{}, len(state.Projects))
		for _, p := range state.Projects {
			projectIDs[p.ID] = struct{}{}
		}
		for _, p := range incoming.Projects {
			if _, exists := projectIDs[p.ID]; exists {
				stats.ProjectsSkipped++
				continue
			}
			state.Projects = append(state.Projects, p)
			projectIDs[p.ID] = struct{}{}
			stats.ProjectsAdded++
		}

		snapshotIDs := make(map[string]struct{}, len(state.Snapshots))
		for _, s := range state.Snapshots {
			snapshotIDs[s.ID] = struct{}{}
		}
		for _, s := range incoming.Snapshots {
			if _, exists := snapshotIDs[s.ID]; exists {
				stats.SnapshotsSkipped++
				continue
			}
			state.Snapshots = append(state.Snapshots, s)
			snapshotIDs[s.ID] = struct{}{}
			stats.SnapshotsAdded++
		}
		return nil
	})
	if err != nil {
		return MergeStats{}, err
	}
	return stats, nil
}
