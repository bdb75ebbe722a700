// Package dataio converts vault state to and from interchange formats:
// whole-state JSON backups and flat CSV listings.
package dataio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// ExportJSON renders the whole state as an indented JSON backup. The output
// parses back through ImportJSON unchanged.
func ExportJSON(state *prompt.State) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

var projectsHeader = []string{
	"ID", "Title", "Description", "Positive Tags", "Negative Tags",
	"Parameters", "Business Tags", "Starred", "Created At", "Updated At",
}

// ProjectsCSV renders the projects as a flat CSV listing.
func ProjectsCSV(projects []prompt.Project) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(projectsHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range projects {
		description := ""
		if p.Description != nil {
			description = *p.Description
		}
		row := []string{
			p.ID,
			p.Title,
			description,
			joinFragments(p.Content.Positive),
			joinFragments(p.Content.Negative),
			joinParams(p.Content.Params),
			strings.Join(p.Tags, "; "),
			yesNo(p.Starred),
			isoTime(p.CreatedAt),
			isoTime(p.UpdatedAt),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.String(), nil
}

var snapshotsHeader = []string{
	"ID", "Project ID", "Version", "Title", "Rating", "Notes", "Created At",
}

// SnapshotsCSV renders the snapshots as a flat CSV listing.
func SnapshotsCSV(snapshots []prompt.Snapshot) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(snapshotsHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range snapshots {
		rating := ""
		notes := ""
		if s.Metrics != nil {
			if s.Metrics.Rating != 0 {
				rating = strconv.Itoa(s.Metrics.Rating)
			}
			notes = s.Metrics.Notes
		}
		row := []string{
			s.ID,
			s.ProjectID,
			strconv.Itoa(s.Version),
			s.Payload.Title,
			rating,
			notes,
			isoTime(s.CreatedAt),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.String(), nil
}

// joinFragments renders fragments as "text(weight)" pairs joined with "; ".
func joinFragments(fragments []prompt.Fragment) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		parts = append(parts, f.Text+"("+strconv.FormatFloat(f.Weight, 'f', -1, 64)+")")
	}
	return strings.Join(parts, "; ")
}

func joinParams(params []prompt.Parameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, "; ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// isoTime formats a Unix-millisecond timestamp as an ISO-8601 UTC string
// with millisecond precision.
func isoTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}
