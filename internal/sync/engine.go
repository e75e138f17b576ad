// Package sync provides the synchronization engine that pulls the
// authenticated user's GitLab timelogs into the local store.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/minhnd/timespent/internal/gitlab"
	"github.com/minhnd/timespent/internal/logger"
	"github.com/minhnd/timespent/internal/store"
)

// ErrSyncInProgress is returned when a sync is triggered for a user that
// already has one running. Overlapping runs would race on the
// delete-then-insert sequence, so they are rejected rather than queued.
var ErrSyncInProgress = errors.New("a sync is already running for this user")

// API is the subset of the GitLab client used by the engine.
type API interface {
	CurrentUser(ctx context.Context) (*gitlab.User, error)
	TimeSpentPage(ctx context.Context, after string) (*gitlab.ProjectPage, error)
}

// Store is the subset of the persistence layer used by the engine. The
// engine exclusively owns the write path to time entries and sync runs.
type Store interface {
	BeginRun(userEmail string) (*store.SyncRun, error)
	CompleteRun(id string, recordsCount int) error
	FailRun(id, errorMessage string) error
	DeleteEntries(userEmail string) (int64, error)
	InsertEntries(entries []store.TimeEntry) error
}

// Engine drives a full sync: resolve user, fetch all pages, extract and
// filter, then replace the user's persisted entries.
type Engine struct {
	store     Store
	client    API
	userEmail string

	mu      gosync.Mutex
	running map[string]bool
}

// NewEngine creates a sync engine for the given user.
func NewEngine(st Store, client API, userEmail string) *Engine {
	return &Engine{
		store:     st,
		client:    client,
		userEmail: userEmail,
		running:   make(map[string]bool),
	}
}

// Run performs one full sync and returns the number of records persisted.
// Progress is pushed to onProgress (which may be nil) with non-decreasing
// percentages ending at 100 on success. On any failure the sync run is
// marked as error and the failure is returned; nothing is retried.
func (e *Engine) Run(ctx context.Context, onProgress ProgressFunc) (int, error) {
	if !e.acquire(e.userEmail) {
		return 0, ErrSyncInProgress
	}
	defer e.release(e.userEmail)

	// The history row is written before identity resolution, so a failed
	// identity lookup still leaves an audited error run. History is
	// best-effort observability: if this write fails the sync proceeds
	// without it.
	var runID string
	if run, err := e.store.BeginRun(e.userEmail); err != nil {
		logger.Warn("sync: failed to record sync run: %v", err)
	} else {
		runID = run.ID
	}

	count, err := e.run(ctx, newProgressNotifier(onProgress))
	if err != nil {
		if runID != "" {
			// Never mask the original error with a ledger failure.
			if failErr := e.store.FailRun(runID, err.Error()); failErr != nil {
				logger.Warn("sync: failed to mark sync run as error: %v", failErr)
			}
		}
		return 0, err
	}

	if runID != "" {
		if completeErr := e.store.CompleteRun(runID, count); completeErr != nil {
			logger.Warn("sync: failed to mark sync run as completed: %v", completeErr)
		}
	}

	return count, nil
}

// run executes the sync pipeline: Identifying-User -> Fetching ->
// Replacing -> Inserting.
func (e *Engine) run(ctx context.Context, notify *progressNotifier) (int, error) {
	notify.emit(0, "resolving current user")
	user, err := e.client.CurrentUser(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current user: %w", err)
	}
	logger.Debug("sync: resolved current user %s", user.Username)

	notify.emit(10, "fetching timelogs from GitLab")
	var entries []store.TimeEntry
	after := ""
	progress := 10
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		page, err := e.client.TimeSpentPage(ctx, after)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch timelogs: %w", err)
		}

		entries = append(entries, extractPage(page, user.Username, e.userEmail)...)

		// Page progress advances in fixed steps and holds at 70 until
		// persistence begins; the total page count is unknown upfront.
		progress += 5
		if progress > 70 {
			progress = 70
		}
		notify.emit(progress, fmt.Sprintf("found %d records", len(entries)))

		if !page.PageInfo.HasNextPage {
			break
		}
		after = page.PageInfo.EndCursor
	}
	logger.Debug("sync: fetched %d records for %s", len(entries), e.userEmail)

	// Delete and insert are two separate calls, not one transaction: a
	// failure between them leaves the user with zero records and the run
	// marked as error until the next successful sync.
	notify.emit(80, "deleting previous entries")
	if _, err := e.store.DeleteEntries(e.userEmail); err != nil {
		return 0, fmt.Errorf("failed to delete previous entries: %w", err)
	}

	notify.emit(90, "saving new entries")
	if err := e.store.InsertEntries(entries); err != nil {
		return 0, fmt.Errorf("failed to save new entries: %w", err)
	}

	notify.emit(100, "done")
	return len(entries), nil
}

// acquire takes the per-user run slot. It returns false when a sync for
// the same user is already in flight.
func (e *Engine) acquire(userEmail string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[userEmail] {
		return false
	}
	e.running[userEmail] = true
	return true
}

func (e *Engine) release(userEmail string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, userEmail)
}
