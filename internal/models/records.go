// Package models holds structs for modelling data, e.g. file records,
// transcription records, configuration, etc.
package models

import (
	"strings"
	"time"

	"mediavault/internal/domain/consts"
)

// FileRecord tracks one remote item through its transfer and transcription
// lifecycle.
//
// Field names match the persisted state documents, do not alter.
type FileRecord struct {
	ID                  string                  `json:"id"`
	Name                string                  `json:"name"`
	Source              consts.SourceKind       `json:"source"`
	MimeType            string                  `json:"mime_type"`
	Size                int64                   `json:"size"`
	Status              consts.TransferStatus   `json:"status"`
	DownloadedAt        *time.Time              `json:"downloaded_at,omitempty"`
	LocalPath           string                  `json:"local_path,omitempty"`
	ErrorMessage        string                  `json:"error_message,omitempty"`
	ModifiedTime        *time.Time              `json:"modified_time,omitempty"`
	TranscriptionStatus consts.TranscribeStatus `json:"transcription_status"`
	TranscribedAt       *time.Time              `json:"transcribed_at,omitempty"`
}

// IsVideo checks if this record denotes a video file.
func (fr *FileRecord) IsVideo() bool {
	return strings.HasPrefix(fr.MimeType, "video/")
}

// NeedsExport checks if this record denotes a proprietary workspace document
// requiring server-side conversion before transfer.
func (fr *FileRecord) NeedsExport() bool {
	_, ok := consts.WorkspaceExportMap[fr.MimeType]
	return ok
}

// MarkComplete marks the record as transferred, storing the local path.
func (fr *FileRecord) MarkComplete(localPath string) {
	now := time.Now()
	fr.Status = consts.TransferComplete
	fr.LocalPath = localPath
	fr.DownloadedAt = &now
	fr.ErrorMessage = ""
}

// MarkError marks the record as failed with a message.
func (fr *FileRecord) MarkError(msg string) {
	fr.Status = consts.TransferError
	fr.ErrorMessage = msg
}

// AdoptProgress copies the progress fields from an existing record onto this
// freshly scanned one, so a rescan never regresses completed work.
func (fr *FileRecord) AdoptProgress(existing *FileRecord) {
	fr.Status = existing.Status
	fr.DownloadedAt = existing.DownloadedAt
	fr.LocalPath = existing.LocalPath
	fr.TranscriptionStatus = existing.TranscriptionStatus
	fr.TranscribedAt = existing.TranscribedAt
	fr.ErrorMessage = existing.ErrorMessage
}

// TranscriptionRecord tracks transcription state for one downloaded video,
// keyed by local file path.
type TranscriptionRecord struct {
	VideoPath      string                  `json:"video_path"`
	Status         consts.TranscribeStatus `json:"status"`
	TranscriptPath string                  `json:"transcript_path,omitempty"`
	TranscribedAt  *time.Time              `json:"transcribed_at,omitempty"`
	ErrorMessage   string                  `json:"error_message,omitempty"`
}
