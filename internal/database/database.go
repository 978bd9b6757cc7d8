// Package database opens the journal database and initializes its tables.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Table and column names.
const (
	TableRuns   = "runs"
	TableEvents = "run_events"

	QRunID         = "id"
	QRunType       = "run_type"
	QRunStartedAt  = "started_at"
	QRunEndedAt    = "ended_at"
	QRunDownloaded = "downloaded"
	QRunSkipped    = "skipped"
	QRunErrored    = "errored"

	QEvID        = "id"
	QEvRunID     = "run_id"
	QEvItemID    = "item_id"
	QEvItemName  = "item_name"
	QEvEvent     = "event"
	QEvDetail    = "detail"
	QEvCreatedAt = "created_at"
)

// DBControl holds the open journal database.
type DBControl struct {
	DB *sql.DB
}

// InitDB opens (or creates) the journal database at path and ensures tables
// exist.
func InitDB(path string) (*DBControl, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at path %q: %w", path, err)
	}

	dc := &DBControl{DB: db}
	if err := dc.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return dc, nil
}

// Close releases the database handle.
func (dc *DBControl) Close() error {
	return dc.DB.Close()
}

func (dc *DBControl) initTables() error {
	tx, err := dc.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := initRunsTable(tx); err != nil {
		return err
	}
	if err := initEventsTable(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func initRunsTable(tx *sql.Tx) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s TEXT PRIMARY KEY,
			%s TEXT NOT NULL,
			%s TIMESTAMP NOT NULL,
			%s TIMESTAMP,
			%s INTEGER NOT NULL DEFAULT 0,
			%s INTEGER NOT NULL DEFAULT 0,
			%s INTEGER NOT NULL DEFAULT 0
		)`,
		TableRuns,
		QRunID, QRunType, QRunStartedAt, QRunEndedAt,
		QRunDownloaded, QRunSkipped, QRunErrored,
	)
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

func initEventsTable(tx *sql.Tx) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s INTEGER PRIMARY KEY AUTOINCREMENT,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT,
			%s TEXT NOT NULL,
			%s TEXT,
			%s TIMESTAMP NOT NULL,
			FOREIGN KEY (%s) REFERENCES %s(%s)
		)`,
		TableEvents,
		QEvID, QEvRunID, QEvItemID, QEvItemName, QEvEvent, QEvDetail, QEvCreatedAt,
		QEvRunID, TableRuns, QRunID,
	)
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create run events table: %w", err)
	}
	return nil
}
