// Package photos implements the photo-library source adapter, which lists and
// downloads videos only.
package photos

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/araddon/dateparse"

	"mediavault/internal/contracts"
	"mediavault/internal/domain/consts"
	"mediavault/internal/logging"
	"mediavault/internal/models"
	"mediavault/internal/sources"
)

// MediaItem is the metadata shape the photo-library API returns per item.
type MediaItem struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	CreationTime string `json:"creationTime,omitempty"`
}

// Page is one page of search results.
type Page struct {
	Items     []MediaItem
	NextToken string
}

// Service is the remote capability the adapter is built over.
type Service interface {
	SearchVideos(ctx context.Context, pageToken string) (*Page, error)
	Fetch(ctx context.Context, itemID string) (io.ReadCloser, int64, error)
}

// Adapter wraps the photo-library source behind the contracts.Source
// interface.
type Adapter struct {
	newService func() (Service, error)

	mu  sync.Mutex
	svc Service

	stopped atomic.Bool
}

// New returns an adapter that lazily builds its service handle via factory.
func New(factory func() (Service, error)) *Adapter {
	return &Adapter{newService: factory}
}

// Kind identifies the record collection this adapter owns.
func (a *Adapter) Kind() consts.SourceKind { return consts.SourcePhotos }

func (a *Adapter) service() (Service, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.svc != nil {
		return a.svc, nil
	}
	svc, err := a.newService()
	if err != nil {
		return nil, err
	}
	a.svc = svc
	return svc, nil
}

// InvalidateCache discards the cached service handle so the next call
// rebuilds it.
func (a *Adapter) InvalidateCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.svc = nil
}

// Stop sets the cooperative cancellation flag.
func (a *Adapter) Stop() { a.stopped.Store(true) }

// Reset clears the cancellation flag for reuse.
func (a *Adapter) Reset() { a.stopped.Store(false) }

// ListItems enumerates all library videos, following pagination until
// exhausted. The photo library carries no documents, so the filter only
// gates on videos.
func (a *Adapter) ListItems(ctx context.Context, filters contracts.ListFilters) ([]*models.FileRecord, error) {
	if !filters.IncludeVideos {
		return nil, nil
	}

	svc, err := a.service()
	if err != nil {
		return nil, &sources.ListError{Source: a.Kind(), Err: err}
	}

	var (
		records   []*models.FileRecord
		pageToken string
		pageCount int
	)

	for {
		page, err := svc.SearchVideos(ctx, pageToken)
		if err != nil {
			return nil, &sources.ListError{Source: a.Kind(), Err: err}
		}
		pageCount++

		for _, item := range page.Items {
			records = append(records, a.toRecord(item))
		}
		logging.D(1, "Listed %d videos from page %d", len(page.Items), pageCount)

		pageToken = page.NextToken
		if pageToken == "" {
			break
		}
	}

	logging.I("Found %d videos in photo library", len(records))
	return records, nil
}

func (a *Adapter) toRecord(item MediaItem) *models.FileRecord {
	name := item.Filename
	if name == "" && len(item.ID) >= 8 {
		name = "video_" + item.ID[:8]
	}
	mime := item.MimeType
	if mime == "" {
		mime = "video/mp4"
	}

	rec := &models.FileRecord{
		ID:       item.ID,
		Name:     name,
		Source:   a.Kind(),
		MimeType: mime,
		// The photo-library API does not report file sizes.
		Size:                0,
		Status:              consts.TransferPending,
		TranscriptionStatus: consts.TranscribePending,
	}
	if item.CreationTime != "" {
		if t, err := dateparse.ParseAny(item.CreationTime); err == nil {
			rec.ModifiedTime = &t
		}
	}
	return rec
}

// Transfer downloads the video to destPath, removing any partial artifact and
// returning false on failure.
func (a *Adapter) Transfer(ctx context.Context, itemID, destPath, mimeHint string, onProgress func(pct int)) (bool, string, error) {
	svc, err := a.service()
	if err != nil {
		return false, "", err
	}

	rc, total, err := svc.Fetch(ctx, itemID)
	if err != nil {
		logging.E("Error fetching video %q: %v", itemID, err)
		return false, destPath, nil
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			logging.D(2, "Close failed for video %q stream: %v", itemID, cerr)
		}
	}()

	if !sources.WriteFile(destPath, rc, total, onProgress) {
		return false, destPath, nil
	}

	logging.D(1, "Downloaded video %q to %q", itemID, destPath)
	return true, destPath, nil
}
