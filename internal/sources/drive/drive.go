// Package drive implements the file-storage source adapter: listing,
// downloading, and server-side export of proprietary workspace documents.
package drive

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/araddon/dateparse"

	"mediavault/internal/contracts"
	"mediavault/internal/domain/consts"
	"mediavault/internal/logging"
	"mediavault/internal/models"
	"mediavault/internal/sources"
)

// Item is the metadata shape the file-storage listing API returns per file.
type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size,string,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

// Page is one page of listing results.
type Page struct {
	Items     []Item
	NextToken string
}

// Service is the remote capability the adapter is built over. Production uses
// the HTTP implementation in this package; tests inject fakes.
type Service interface {
	ListPage(ctx context.Context, query, pageToken string) (*Page, error)
	Fetch(ctx context.Context, fileID string) (io.ReadCloser, int64, error)
	Export(ctx context.Context, fileID, exportMime string) (io.ReadCloser, int64, error)
	Metadata(ctx context.Context, fileID string) (*Item, error)
}

// Adapter wraps the file-storage source behind the contracts.Source interface.
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
func (a *Adapter) Kind() consts.SourceKind { return consts.SourceDrive }

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

// buildQuery assembles the MIME allow-list query for listing.
func buildQuery(filters contracts.ListFilters) string {
	var mimes []string

	if filters.IncludeVideos {
		mimes = append(mimes, consts.VideoMimeTypes[:]...)
	}
	if filters.IncludeDocuments {
		mimes = append(mimes, consts.DocumentMimeTypes[:]...)
		for mime := range consts.WorkspaceExportMap {
			mimes = append(mimes, mime)
		}
	}
	if len(mimes) == 0 {
		return ""
	}

	parts := make([]string, 0, len(mimes))
	for _, m := range mimes {
		parts = append(parts, "mimeType='"+m+"'")
	}
	return "(" + strings.Join(parts, " or ") + ") and trashed=false"
}

// ListItems enumerates all matching items, following pagination until
// exhausted. Pages already fetched are discarded on failure.
func (a *Adapter) ListItems(ctx context.Context, filters contracts.ListFilters) ([]*models.FileRecord, error) {
	query := buildQuery(filters)
	if query == "" {
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
		page, err := svc.ListPage(ctx, query, pageToken)
		if err != nil {
			return nil, &sources.ListError{Source: a.Kind(), Err: err}
		}
		pageCount++

		for _, item := range page.Items {
			records = append(records, a.toRecord(item))
		}
		logging.D(1, "Listed %d files from page %d", len(page.Items), pageCount)

		pageToken = page.NextToken
		if pageToken == "" {
			break
		}
	}

	logging.I("Found %d files in file storage", len(records))
	return records, nil
}

func (a *Adapter) toRecord(item Item) *models.FileRecord {
	rec := &models.FileRecord{
		ID:                  item.ID,
		Name:                item.Name,
		Source:              a.Kind(),
		MimeType:            item.MimeType,
		Size:                item.Size,
		Status:              consts.TransferPending,
		TranscriptionStatus: consts.TranscribePending,
	}
	if !rec.IsVideo() {
		rec.TranscriptionStatus = consts.TranscribeNotApplicable
	}
	if item.ModifiedTime != "" {
		if t, err := dateparse.ParseAny(item.ModifiedTime); err == nil {
			rec.ModifiedTime = &t
		} else {
			logging.D(2, "Unparseable modified time %q for item %q", item.ModifiedTime, item.ID)
		}
	}
	return rec
}

// Transfer downloads or exports the item to destPath. Proprietary workspace
// documents are exported server-side, with the destination extension
// rewritten to match the export format before writing. Returns false after
// removing any partial artifact on failure.
func (a *Adapter) Transfer(ctx context.Context, itemID, destPath, mimeHint string, onProgress func(pct int)) (bool, string, error) {
	svc, err := a.service()
	if err != nil {
		return false, "", err
	}

	var (
		rc    io.ReadCloser
		total int64
	)

	if export, needsExport := consts.WorkspaceExportMap[mimeHint]; needsExport {
		if !strings.EqualFold(filepath.Ext(destPath), export.Ext) {
			destPath = strings.TrimSuffix(destPath, filepath.Ext(destPath)) + export.Ext
		}
		rc, total, err = svc.Export(ctx, itemID, export.Mime)
	} else {
		rc, total, err = svc.Fetch(ctx, itemID)
	}
	if err != nil {
		logging.E("Error fetching item %q: %v", itemID, err)
		return false, destPath, nil
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			logging.D(2, "Close failed for item %q stream: %v", itemID, cerr)
		}
	}()

	if !sources.WriteFile(destPath, rc, total, onProgress) {
		return false, destPath, nil
	}

	logging.D(1, "Downloaded item %q to %q", itemID, destPath)
	return true, destPath, nil
}
