package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ChamsBouzaiene/promptvault/internal/prompt"
)

// SQLiteStore keeps the serialized state blob in a single-row table. The
// whole-blob contract is unchanged from FileStore; SQLite adds durable
// atomic replacement via its transaction log.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and initializes
// the schema.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	// Enable WAL mode and a busy timeout, same as any of our sqlite usage
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	-- Whole-state blob; the single row is replaced on every write
	CREATE TABLE IF NOT EXISTS state (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		data       BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// GetData reads and decodes the state blob. An empty database reads as an
// empty default state.
func (s *SQLiteStore) GetData(ctx context.Context) (*prompt.State, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM state WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return prompt.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state prompt.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	normalize(&state)
	return &state, nil
}

// SetData replaces the state blob in one statement.
func (s *SQLiteStore) SetData(ctx context.Context, state *prompt.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	query := `
		INSERT INTO state (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, data, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// GetSnapshots returns all snapshots for a project in store order.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, projectID string) ([]prompt.Snapshot, error) {
	state, err := s.GetData(ctx)
	if err != nil {
		return nil, err
	}
	return filterSnapshots(state, projectID), nil
}

// AddSnapshot appends a snapshot and persists the state.
func (s *SQLiteStore) AddSnapshot(ctx context.Context, snapshot prompt.Snapshot) error {
	state, err := s.GetData(ctx)
	if err != nil {
		return err
	}
	state.Snapshots = append(state.Snapshots, snapshot)
	return s.SetData(ctx, state)
}

// DeleteSnapshot removes a snapshot and persists the state.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	state, err := s.GetData(ctx)
	if err != nil {
		return err
	}
	removeSnapshot(state, snapshotID)
	return s.SetData(ctx, state)
}
