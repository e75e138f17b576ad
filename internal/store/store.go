// Package store provides SQLite persistence for time entries and sync runs.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB represents a SQLite database holding synced timelog data.
type DB struct {
	path string
	conn *sql.DB
}

// createEntriesTableSQL defines the schema for the time_entries table.
// (user_email, project_id, issue_id, spent_at) is deliberately not unique:
// a user can log time against the same issue several times a day.
const createEntriesTableSQL = `
CREATE TABLE IF NOT EXISTS time_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_email TEXT NOT NULL,
    project_id INTEGER NOT NULL,
    project_name TEXT NOT NULL,
    issue_id INTEGER NOT NULL,
    issue_title TEXT NOT NULL,
    spent_at TEXT NOT NULL,
    time_spent INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
`

// createRunsTableSQL defines the schema for the sync_runs table.
const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS sync_runs (
    id TEXT PRIMARY KEY,
    user_email TEXT NOT NULL,
    records_count INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error_message TEXT,
    started_at TEXT NOT NULL,
    completed_at TEXT
);
`

const createEntriesIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_time_entries_user_spent
ON time_entries (user_email, spent_at);
`

// Open creates or opens a SQLite database at the given path and
// initializes the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer, so we limit to one connection
	// to prevent "database is locked" errors.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	for _, stmt := range []string{createEntriesTableSQL, createRunsTableSQL, createEntriesIndexSQL} {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return &DB{path: path, conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
