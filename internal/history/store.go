// Package history keeps an append-only log of completed calculations in a
// local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"unprompted-mcp/internal/api"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Run is one stored calculation.
type Run struct {
	ID        string          `json:"id"`
	Kind      string          `json:"calculation_type"`
	CreatedAt time.Time       `json:"created_at"`
	ElapsedMS int64           `json:"elapsed_ms"`
	Headline  float64         `json:"expected_messages_total"`
	Request   json.RawMessage `json:"request"`
}

// Store persists runs in SQLite. It implements api.Recorder.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

var _ api.Recorder = (*Store)(nil)

// OpenStore opens (or creates) the database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT    PRIMARY KEY,
			kind        TEXT    NOT NULL,
			created_at  TEXT    NOT NULL,
			elapsed_ms  INTEGER NOT NULL,
			headline    REAL    NOT NULL,
			request     TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read row count: %w", err)
	}

	log.Info().Str("path", path).Int64("rows", count).Msg("Opened run history")

	return &Store{db: db, now: time.Now}, nil
}

// Record appends a completed run.
func (s *Store) Record(ctx context.Context, rec api.RunRecord) error {
	payload, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, elapsed_ms, headline, request) VALUES (?,?,?,?,?,?)`,
		uuid.NewString(),
		rec.Kind,
		s.now().UTC().Format(time.RFC3339Nano),
		rec.Elapsed.Milliseconds(),
		rec.Headline,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, created_at, elapsed_ms, headline, request FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created, req string
		if err := rows.Scan(&r.ID, &r.Kind, &created, &r.ElapsedMS, &r.Headline, &req); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		r.Request = json.RawMessage(req)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
