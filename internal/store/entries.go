package store

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeEntry is one normalized record of time logged against an issue.
type TimeEntry struct {
	ID          int64
	UserEmail   string
	ProjectID   int64
	ProjectName string
	IssueID     int64
	IssueTitle  string
	SpentAt     time.Time
	TimeSpent   int64 // seconds
	CreatedAt   time.Time
}

// DeleteEntries removes every time entry belonging to the given user and
// returns the number of deleted rows. Other users' entries are untouched.
func (db *DB) DeleteEntries(userEmail string) (int64, error) {
	result, err := db.conn.Exec("DELETE FROM time_entries WHERE user_email = ?", userEmail)
	if err != nil {
		return 0, fmt.Errorf("failed to delete time entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// InsertEntries bulk-inserts the given time entries inside one transaction.
// Synthetic ids are assigned by the database; CreatedAt is stamped here.
func (db *DB) InsertEntries(entries []TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO time_entries (user_email, project_id, project_name, issue_id, issue_title, spent_at, time_spent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	for _, entry := range entries {
		_, err := stmt.Exec(
			entry.UserEmail,
			entry.ProjectID,
			entry.ProjectName,
			entry.IssueID,
			entry.IssueTitle,
			entry.SpentAt.UTC().Format(time.RFC3339),
			entry.TimeSpent,
			createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert time entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountEntries returns the number of time entries for the given user.
func (db *DB) CountEntries(userEmail string) (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM time_entries WHERE user_email = ?", userEmail).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count time entries: %w", err)
	}
	return count, nil
}

// ListEntriesByMonth retrieves all time entries of a user whose spent_at
// falls within the given month ("YYYY-MM"), ordered by spent_at ascending.
func (db *DB) ListEntriesByMonth(userEmail, month string) ([]TimeEntry, error) {
	query := `
		SELECT id, user_email, project_id, project_name, issue_id, issue_title, spent_at, time_spent, created_at
		FROM time_entries
		WHERE user_email = ? AND strftime('%Y-%m', spent_at) = ?
		ORDER BY spent_at ASC
	`

	rows, err := db.conn.Query(query, userEmail, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	entries := []TimeEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// scanEntry scans the current row into a TimeEntry.
func scanEntry(rows *sql.Rows) (*TimeEntry, error) {
	var entry TimeEntry
	var spentAt, createdAt string

	err := rows.Scan(
		&entry.ID,
		&entry.UserEmail,
		&entry.ProjectID,
		&entry.ProjectName,
		&entry.IssueID,
		&entry.IssueTitle,
		&spentAt,
		&entry.TimeSpent,
		&createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan time entry: %w", err)
	}

	if entry.SpentAt, err = time.Parse(time.RFC3339, spentAt); err != nil {
		return nil, fmt.Errorf("failed to parse spent_at: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &entry, nil
}
