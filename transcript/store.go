// Package transcript keeps an on-disk audit trail of chat turns.
//
// Each finished turn (question, generated SQL, raw result, answer or
// error) is appended to a SQLite database, ~/.sqlchat/transcripts.db by
// default. The trail is write-only from the chat path: it is never
// loaded back into a conversation.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DachengChen/sqlchat/config"
)

// Entry is one recorded turn.
type Entry struct {
	ID         int64
	SessionID  string
	Connection string
	Provider   string
	Question   string
	Query      string
	Response   string
	Answer     string
	Error      string
	CreatedAt  time.Time
	Duration   time.Duration
}

// Store reads and writes transcript entries.
type Store struct {
	db *sql.DB
}

const createTurnsTable = `
CREATE TABLE IF NOT EXISTS turns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	connection TEXT NOT NULL,
	provider TEXT NOT NULL,
	question TEXT NOT NULL,
	query TEXT NOT NULL,
	response TEXT NOT NULL,
	answer TEXT NOT NULL,
	error TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL
)`

const createSessionIndex = `CREATE INDEX IF NOT EXISTS turns_session ON turns (session_id)`

// Open opens (creating if needed) the transcript database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenConfigured opens the store named by cfg. It returns nil, nil when
// transcripts are disabled.
func OpenConfigured(ctx context.Context, cfg *config.AppConfig) (*Store, error) {
	if !cfg.Transcript.Enabled {
		return nil, nil
	}
	path, err := cfg.TranscriptPath()
	if err != nil {
		return nil, err
	}
	return Open(ctx, path)
}

// New wraps an existing connection. Call Migrate before first use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTurnsTable); err != nil {
		return fmt.Errorf("create turns table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createSessionIndex); err != nil {
		return fmt.Errorf("create turns index: %w", err)
	}
	return nil
}

// Record appends e and returns its id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, connection, provider, question, query, response, answer, error, created_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Connection, e.Provider, e.Question, e.Query, e.Response, e.Answer, e.Error,
		e.CreatedAt.UTC(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert turn: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, connection, provider, question, query, response, answer, error, created_at, duration_ms
		FROM turns ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Connection, &e.Provider, &e.Question,
			&e.Query, &e.Response, &e.Answer, &e.Error, &e.CreatedAt, &ms); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FormatAge formats the time since t as a compact string:
//
//	<60s  → "Xs"   (e.g. "5s")
//	<60m  → "Xm"   (e.g. "30m")
//	<24h  → "Xh"   (e.g. "2h")
//	>=24h → "Xd"   (e.g. "3d")
func FormatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
