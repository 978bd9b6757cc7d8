package models

import "time"

// DownloadStats holds derived counts over the record collections.
//
// Recomputed on demand, never persisted.
type DownloadStats struct {
	Total                       int `json:"total"`
	Downloaded                  int `json:"downloaded"`
	Pending                     int `json:"pending"`
	Errors                      int `json:"errors"`
	VideosAwaitingTranscription int `json:"videos_for_transcription"`
}

// RunTotals holds the aggregate outcome of one transfer or transcription run.
type RunTotals struct {
	Downloaded int
	Skipped    int
	Errored    int
}

// Run models one orchestrator run recorded in the journal.
type Run struct {
	ID         string     `db:"id"`
	Type       string     `db:"run_type"`
	StartedAt  time.Time  `db:"started_at"`
	EndedAt    *time.Time `db:"ended_at"`
	Downloaded int        `db:"downloaded"`
	Skipped    int        `db:"skipped"`
	Errored    int        `db:"errored"`
}

// RunEvent models one per-item event within a run.
type RunEvent struct {
	ID        int64     `db:"id"`
	RunID     string    `db:"run_id"`
	ItemID    string    `db:"item_id"`
	ItemName  string    `db:"item_name"`
	Event     string    `db:"event"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

// ScanResult holds the outcome of one two-source scan.
type ScanResult struct {
	DriveFound  int
	PhotosFound int
	Stats       DownloadStats
	SourceErrs  []error
}
