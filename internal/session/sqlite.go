package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite via modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed store.
// dbPath is the path to the SQLite database file; use ":memory:" for testing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: ping database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			mode         TEXT NOT NULL,
			findings     INTEGER DEFAULT 0,
			record_json  TEXT NOT NULL,
			started_at   DATETIME NOT NULL,
			finished_at  DATETIME NOT NULL
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create table: %w", err)
	}

	createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	if _, err := db.Exec(createIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save persists rec. If rec.ID is empty, a new UUID is generated and assigned.
func (s *SQLiteStore) Save(ctx context.Context, rec *RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = rec.StartedAt
	}

	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshal record: %w", err)
	}

	query := `
		INSERT INTO runs (id, mode, findings, record_json, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode        = excluded.mode,
			findings    = excluded.findings,
			record_json = excluded.record_json,
			started_at  = excluded.started_at,
			finished_at = excluded.finished_at
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Mode,
		len(rec.Findings),
		string(recJSON),
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("session: save record: %w", err)
	}
	return nil
}

// LoadByID retrieves a RunRecord by its unique ID.
// Returns (nil, nil) if no run is found.
func (s *SQLiteStore) LoadByID(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record_json FROM runs WHERE id = ?`, id)

	var recJSON string
	if err := row.Scan(&recJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: scan row: %w", err)
	}

	var rec RunRecord
	if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
		return nil, fmt.Errorf("session: unmarshal record: %w", err)
	}
	return &rec, nil
}

// List returns a summary of every stored run, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*RunSummary, error) {
	query := `SELECT id, mode, findings, started_at, finished_at FROM runs ORDER BY started_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("session: list runs: %w", err)
	}
	defer rows.Close()

	var summaries []*RunSummary
	for rows.Next() {
		var (
			sum               RunSummary
			started, finished string
		)
		if err := rows.Scan(&sum.ID, &sum.Mode, &sum.Findings, &started, &finished); err != nil {
			return nil, fmt.Errorf("session: scan summary: %w", err)
		}
		if sum.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if sum.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		summaries = append(summaries, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session: iterate rows: %w", err)
	}
	return summaries, nil
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		// Fall back to SQLite default format if RFC3339 fails.
		t, err = time.Parse("2006-01-02 15:04:05", v)
		if err != nil {
			return time.Time{}, fmt.Errorf("session: parse time %q: %w", v, err)
		}
	}
	return t, nil
}

// Delete removes a run by its ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("session: delete run: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
