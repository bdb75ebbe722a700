// Package search provides full-text lookup of prompt projects by title,
// description, fragment text and tags, backed by a bleve index.
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/ChamsBouzaiene/promptvault/internal/monitor"
	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// Hit is one search result.
type Hit struct {
	ProjectID string
	Title     string
	Score     float64
}

// Index is a full-text index over projects. It is derived data: the state
// blob stays the source of truth and the index can be rebuilt from it at
// any time.
type Index struct {
	index bleve.Index
	path  string
	cache *monitor.Cache
}

// cacheTTL bounds how stale a repeated query may be.
const cacheTTL = 30 * time.Second

// New creates or opens an index at path.
func New(path string) (*Index, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create search index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	return &Index{
		index: index,
		path:  path,
		cache: monitor.NewCache(cacheTTL),
	}, nil
}

// NewInMemory creates an index with no disk persistence, for tests and
// one-shot rebuilds.
func NewInMemory() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory search index: %w", err)
	}
	return &Index{index: index, cache: monitor.NewCache(cacheTTL)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	projectMapping := bleve.NewDocumentMapping()

	// Stored id field (not analyzed)
	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	idField.Store = true
	idField.Index = true
	projectMapping.AddFieldMappingsAt("project_id", idField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = true
	titleField.Index = true
	projectMapping.AddFieldMappingsAt("title", titleField)

	// Searchable text fields (analyzed, not stored)
	for _, name := range []string{"description", "fragments", "tags"} {
		field := bleve.NewTextFieldMapping()
		field.Analyzer = standard.Name
		field.Store = false
		field.Index = true
		projectMapping.AddFieldMappingsAt(name, field)
	}

	indexMapping.DefaultMapping = projectMapping
	return indexMapping
}

func projectDoc(p prompt.Project) map[string]interface{} {
	texts := make([]string, 0, len(p.Content.Positive)+len(p.Content.Negative))
	for _, f := range p.Content.Positive {
		texts = append(texts, f.Text)
	}
	for _, f := range p.Content.Negative {
		texts = append(texts, f.Text)
	}

	description := ""
	if p.Description != nil {
		description = *p.Description
	}

	return map[string]interface{}{
		"project_id":  p.ID,
		"title":       p.Title,
		"description": description,
		"fragments":   strings.Join(texts, " "),
		"tags":        strings.Join(p.Tags, " "),
	}
}

// Upsert indexes one project, replacing any previous document for its id.
func (ix *Index) Upsert(p prompt.Project) error {
	ix.cache.Clear()
	return ix.index.Index(p.ID, projectDoc(p))
}

// Remove drops a project from the index.
func (ix *Index) Remove(projectID string) error {
	ix.cache.Clear()
	return ix.index.Delete(projectID)
}

// Rebuild brings the index in line with the given projects in one batch:
// every project is reindexed and every indexed document whose project no
// longer exists is deleted, so a deleted project can never resurface as a
// hit from a previously persisted index.
func (ix *Index) Rebuild(projects []prompt.Project) error {
	keep := make(map[string]struct{}, len(projects))
	batch := ix.index.NewBatch()
	for _, p := range projects {
		keep[p.ID] = struct{}{}
		if err := batch.Index(p.ID, projectDoc(p)); err != nil {
			return fmt.Errorf("failed to add project %s to batch: %w", p.ID, err)
		}
	}

	indexed, err := ix.allDocIDs()
	if err != nil {
		return err
	}
	for _, id := range indexed {
		if _, ok := keep[id]; !ok {
			batch.Delete(id)
		}
	}

	ix.cache.Clear()
	return ix.index.Batch(batch)
}

// allDocIDs enumerates every document id currently in the index.
func (ix *Index) allDocIDs() ([]string, error) {
	count, err := ix.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count indexed documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	request := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	request.Size = int(count)
	result, err := ix.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate indexed documents: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Search returns the top limit projects matching the query, best first.
// Repeated identical queries are served from a short-lived cache.
func (ix *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%d:%s", limit, query)
	if cached, ok := ix.cache.Get(cacheKey); ok {
		return cached.([]Hit), nil
	}

	q := bleve.NewMatchQuery(query)
	request := bleve.NewSearchRequest(q)
	request.Size = limit
	request.Fields = []string{"project_id", "title"}

	result, err := ix.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := Hit{ProjectID: h.ID, Score: h.Score}
		if title, ok := h.Fields["title"].(string); ok {
			hit.Title = title
		}
		hits = append(hits, hit)
	}

	ix.cache.Set(cacheKey, hits)
	return hits, nil
}

// Close closes the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

// Path returns the on-disk location, or empty for in-memory indexes.
func (ix *Index) Path() string {
	return ix.path
}
