// Package repo implements the journal store over the database.
package repo

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"mediavault/internal/database"
	"mediavault/internal/logging"
	"mediavault/internal/models"
)

// JournalStore records run and per-item events durably.
type JournalStore struct {
	DB *sql.DB
}

// GetJournalStore returns a journal store with injected database.
func GetJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{DB: db}
}

// BeginRun inserts a new run row and returns its model.
func (js *JournalStore) BeginRun(runType string) (*models.Run, error) {
	run := &models.Run{
		ID:        uuid.NewString(),
		Type:      runType,
		StartedAt: time.Now(),
	}

	query, args, err := sq.Insert(database.TableRuns).
		Columns(database.QRunID, database.QRunType, database.QRunStartedAt).
		Values(run.ID, run.Type, run.StartedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build run insert: %w", err)
	}

	if _, err := js.DB.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert run %q: %w", run.ID, err)
	}
	return run, nil
}

// EndRun closes a run row with its aggregate totals.
func (js *JournalStore) EndRun(run *models.Run, totals models.RunTotals) error {
	now := time.Now()
	run.EndedAt = &now
	run.Downloaded = totals.Downloaded
	run.Skipped = totals.Skipped
	run.Errored = totals.Errored

	query, args, err := sq.Update(database.TableRuns).
		Set(database.QRunEndedAt, now).
		Set(database.QRunDownloaded, totals.Downloaded).
		Set(database.QRunSkipped, totals.Skipped).
		Set(database.QRunErrored, totals.Errored).
		Where(sq.Eq{database.QRunID: run.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run update: %w", err)
	}

	if _, err := js.DB.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to close run %q: %w", run.ID, err)
	}
	return nil
}

// AddEvent appends one per-item event to a run.
func (js *JournalStore) AddEvent(runID, itemID, itemName, event, detail string) error {
	query, args, err := sq.Insert(database.TableEvents).
		Columns(
			database.QEvRunID,
			database.QEvItemID,
			database.QEvItemName,
			database.QEvEvent,
			database.QEvDetail,
			database.QEvCreatedAt,
		).
		Values(runID, itemID, itemName, event, detail, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build event insert: %w", err)
	}

	if _, err := js.DB.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert event %q for run %q: %w", event, runID, err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (js *JournalStore) RecentRuns(limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := sq.Select(
		database.QRunID,
		database.QRunType,
		database.QRunStartedAt,
		database.QRunEndedAt,
		database.QRunDownloaded,
		database.QRunSkipped,
		database.QRunErrored,
	).
		From(database.TableRuns).
		OrderBy(database.QRunStartedAt + " DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build runs query: %w", err)
	}

	rows, err := js.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.E("Could not close rows for runs: %v", closeErr)
		}
	}()

	var runs []*models.Run
	for rows.Next() {
		var (
			run   models.Run
			ended sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Type, &run.StartedAt, &ended,
			&run.Downloaded, &run.Skipped, &run.Errored); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if ended.Valid {
			t := ended.Time
			run.EndedAt = &t
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// RunEvents returns all events of one run in insertion order.
func (js *JournalStore) RunEvents(runID string) ([]*models.RunEvent, error) {
	query, args, err := sq.Select(
		database.QEvID,
		database.QEvRunID,
		database.QEvItemID,
		database.QEvItemName,
		database.QEvEvent,
		database.QEvDetail,
		database.QEvCreatedAt,
	).
		From(database.TableEvents).
		Where(sq.Eq{database.QEvRunID: runID}).
		OrderBy(database.QEvID + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build events query: %w", err)
	}

	rows, err := js.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for run %q: %w", runID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.E("Could not close rows for run events: %v", closeErr)
		}
	}()

	var events []*models.RunEvent
	for rows.Next() {
		var (
			ev     models.RunEvent
			name   sql.NullString
			detail sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.ItemID, &name, &ev.Event, &detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		ev.ItemName = name.String
		ev.Detail = detail.String
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run events: %w", err)
	}
	return events, nil
}
