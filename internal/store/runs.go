package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sync run statuses. A run only ever moves processing -> completed or
// processing -> error.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// SyncRun is one audited attempt to synchronize timelog data.
type SyncRun struct {
	ID           string
	UserEmail    string
	RecordsCount int
	Status       string
	ErrorMessage string
	StartedAt    time.Time
	CompletedAt  time.Time // zero while the run is processing
}

// BeginRun inserts a new sync run in the processing state.
func (db *DB) BeginRun(userEmail string) (*SyncRun, error) {
	run := &SyncRun{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		Status:    StatusProcessing,
		StartedAt: time.Now().UTC(),
	}

	_, err := db.conn.Exec(`
		INSERT INTO sync_runs (id, user_email, records_count, status, started_at)
		VALUES (?, ?, 0, ?, ?)
	`, run.ID, run.UserEmail, run.Status, run.StartedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert sync run: %w", err)
	}

	return run, nil
}

// CompleteRun marks a processing run as completed with the final record
// count. The terminal transition happens at most once; a run already in a
// terminal state is left unchanged.
func (db *DB) CompleteRun(id string, recordsCount int) error {
	return db.finishRun(id, StatusCompleted, recordsCount, "")
}

// FailRun marks a processing run as failed with the given error message.
func (db *DB) FailRun(id, errorMessage string) error {
	return db.finishRun(id, StatusError, 0, errorMessage)
}

func (db *DB) finishRun(id, status string, recordsCount int, errorMessage string) error {
	completedAt := time.Now().UTC().Format(time.RFC3339)

	result, err := db.conn.Exec(`
		UPDATE sync_runs
		SET status = ?, records_count = ?, error_message = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`, status, recordsCount, sql.NullString{String: errorMessage, Valid: errorMessage != ""}, completedAt, id, StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no processing sync run with id %s", id)
	}

	return nil
}

// ListRuns retrieves the most recent sync runs for a user, newest first.
func (db *DB) ListRuns(userEmail string, limit int) ([]SyncRun, error) {
	query := `
		SELECT id, user_email, records_count, status, error_message, started_at, completed_at
		FROM sync_runs
		WHERE user_email = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.conn.Query(query, userEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	runs := []SyncRun{}
	for rows.Next() {
		var run SyncRun
		var errorMessage, completedAt sql.NullString
		var startedAt string

		err := rows.Scan(&run.ID, &run.UserEmail, &run.RecordsCount, &run.Status, &errorMessage, &startedAt, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}

		run.ErrorMessage = errorMessage.String
		if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		if completedAt.Valid {
			if run.CompletedAt, err = time.Parse(time.RFC3339, completedAt.String); err != nil {
				return nil, fmt.Errorf("failed to parse completed_at: %w", err)
			}
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// GetRun retrieves a single sync run by id, or nil if it does not exist.
func (db *DB) GetRun(id string) (*SyncRun, error) {
	query := `
		SELECT id, user_email, records_count, status, error_message, started_at, completed_at
		FROM sync_runs
		WHERE id = ?
	`

	var run SyncRun
	var errorMessage, completedAt sql.NullString
	var startedAt string

	err := db.conn.QueryRow(query, id).Scan(&run.ID, &run.UserEmail, &run.RecordsCount, &run.Status, &errorMessage, &startedAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run.ErrorMessage = errorMessage.String
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if completedAt.Valid {
		if run.CompletedAt, err = time.Parse(time.RFC3339, completedAt.String); err != nil {
			return nil, fmt.Errorf("failed to parse completed_at: %w", err)
		}
	}

	return &run, nil
}
