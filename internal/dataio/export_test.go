package dataio

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

func sampleState() *prompt.State {
	desc := "a neon-soaked street scene, at night"
	state := prompt.NewState()
	state.Projects = []prompt.Project{{
		ID:          "p1",
		Title:       "Neon City",
		Description: &desc,
		Content: prompt.Content{
			Positive: []prompt.Fragment{
				{ID: "f1", Text: "cyberpunk city", Type: prompt.TypeSubject, Weight: 1},
				{ID: "f2", Text: "neon glow", Type: prompt.TypeLighting, Weight: 1.5},
			},
			Negative: []prompt.Fragment{
				{ID: "f3", Text: "blurry", Type: prompt.TypeCustom, Weight: 1},
			},
			Params: []prompt.Parameter{
				{Key: "--ar", Value: "16:9", Label: "Aspect Ratio"},
			},
		},
		Tags:      []string{"city", "night"},
		Starred:   true,
		CreatedAt: 1700000000000,
		UpdatedAt: 1700000005000,
	}}
	state.Snapshots = []prompt.Snapshot{{
		ID:        "s1",
		ProjectID: "p1",
		Version:   1,
		Payload:   prompt.Payload{Title: "Neon City"},
		Metrics:   &prompt.Metrics{Rating: 4, ModelName: "midjourney", Notes: "first pass"},
		CreatedAt: 1700000003000,
	}}
	return state
}

func TestExportJSONRoundTrip(t *testing.T) {
	state := sampleState()
	data, err := ExportJSON(state)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	decoded, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState of own export: %v", err)
	}
	if len(decoded.Projects) != 1 || decoded.Projects[0].Title != "Neon City" {
		t.Errorf("projects after round trip: %+v", decoded.Projects)
	}
	if len(decoded.Snapshots) != 1 || decoded.Snapshots[0].Version != 1 {
		t.Errorf("snapshots after round trip: %+v", decoded.Snapshots)
	}
	if decoded.Projects[0].Description == nil || *decoded.Projects[0].Description != *state.Projects[0].Description {
		t.Error("description lost in round trip")
	}
}

func TestProjectsCSV(t *testing.T) {
	out, err := ProjectsCSV(sampleState().Projects)
	if err != nil {
		t.Fatalf("ProjectsCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}
	header := strings.Join(records[0], ",")
	want := "ID,Title,Description,Positive Tags,Negative Tags,Parameters,Business Tags,Starred,Created At,Updated At"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}

	row := records[1]
	if row[3] != "cyberpunk city(1); neon glow(1.5)" {
		t.Errorf("positive column = %q", row[3])
	}
	if row[4] != "blurry(1)" {
		t.Errorf("negative column = %q", row[4])
	}
	if row[5] != "--ar=16:9" {
		t.Errorf("parameters column = %q", row[5])
	}
	if row[6] != "city; night" {
		t.Errorf("tags column = %q", row[6])
	}
	if row[7] != "Yes" {
		t.Errorf("starred column = %q", row[7])
	}
	if row[8] != "2023-11-14T22:13:20.000Z" {
		t.Errorf("created-at column = %q", row[8])
	}
	// The description contains a comma; the reader parsing it back as one
	// field proves the quoting.
	if !strings.Contains(row[2], ",") {
		t.Errorf("description column = %q, expected embedded comma", row[2])
	}
}

func TestSnapshotsCSV(t *testing.T) {
	snapshots := sampleState().Snapshots
	snapshots = append(snapshots, prompt.Snapshot{
		ID: "s2", ProjectID: "p1", Version: 2,
		Payload:   prompt.Payload{Title: "Neon City"},
		CreatedAt: 1700000004000,
	})

	out, err := SnapshotsCSV(snapshots)
	if err != nil {
		t.Fatalf("SnapshotsCSV: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if got := strings.Join(records[0], ","); got != "ID,Project ID,Version,Title,Rating,Notes,Created At" {
		t.Errorf("header = %q", got)
	}
	if records[1][4] != "4" || records[1][5] != "first pass" {
		t.Errorf("rated row = %v", records[1])
	}
	// Nil metrics render as empty rating and notes.
	if records[2][4] != "" || records[2][5] != "" {
		t.Errorf("unrated row = %v", records[2])
	}
}
