// Package contracts defines interfaces that decouple the application layer
// from source and storage implementations.
package contracts

import (
	"context"

	"mediavault/internal/domain/consts"
	"mediavault/internal/models"
)

// ListFilters narrows which remote items a scan enumerates.
type ListFilters struct {
	IncludeVideos    bool
	IncludeDocuments bool
}

// Source wraps one remote source's listing/transfer capability.
type Source interface {
	// Kind identifies which record collection this source owns.
	Kind() consts.SourceKind

	// ListItems enumerates all items matching the filters, following
	// pagination until exhausted. Pages already fetched are discarded on
	// failure.
	ListItems(ctx context.Context, filters ListFilters) ([]*models.FileRecord, error)

	// Transfer downloads or exports the item to destPath, creating parent
	// directories as needed and rewriting the extension for exports.
	// onProgress receives a monotonic 0-100 percentage per chunk. A false
	// return means the transfer failed and any partial artifact was removed;
	// err is reserved for failures that make the source unusable (e.g.
	// missing credentials). finalPath reports the path actually written,
	// which differs from destPath for exported documents.
	Transfer(ctx context.Context, itemID, destPath, mimeHint string, onProgress func(pct int)) (ok bool, finalPath string, err error)

	// Stop sets the cooperative cancellation flag, checked between items.
	Stop()

	// Reset clears the cancellation flag for reuse.
	Reset()

	// InvalidateCache discards the cached remote-service handle so the next
	// call rebuilds it (required after re-authentication).
	InvalidateCache()
}

// StateStore owns all FileRecord/TranscriptionRecord instances and persists
// every mutation synchronously.
type StateStore interface {
	// Records returns the collection for one source in stable order.
	Records(kind consts.SourceKind) []*models.FileRecord

	// Get returns the record with the given id, if present.
	Get(kind consts.SourceKind, id string) (*models.FileRecord, bool)

	// MergeScan merges freshly scanned records into the collection,
	// preserving progress fields of records already present, then persists.
	MergeScan(kind consts.SourceKind, incoming []*models.FileRecord)

	// Update upserts a single record and persists the collection.
	Update(kind consts.SourceKind, rec *models.FileRecord)

	// Transcriptions returns the localPath → record mapping.
	Transcriptions() map[string]*models.TranscriptionRecord

	// UpdateTranscription upserts a transcription record and persists.
	UpdateTranscription(rec *models.TranscriptionRecord)

	// ClearAll wipes every collection and persists the empty state.
	ClearAll()

	// ResetErrors flips Error records back to Pending so a future run
	// retries them. Returns the number of records reset.
	ResetErrors() int
}

// Journal records run and per-item events durably.
type Journal interface {
	BeginRun(runType string) (*models.Run, error)
	EndRun(run *models.Run, totals models.RunTotals) error
	AddEvent(runID, itemID, itemName, event, detail string) error
	RecentRuns(limit int) ([]*models.Run, error)
	RunEvents(runID string) ([]*models.RunEvent, error)
}
