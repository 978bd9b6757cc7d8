// Package app contains the orchestration cores: the download orchestrator and
// the transcription orchestrator.
package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"

	"mediavault/internal/auth"
	"mediavault/internal/contracts"
	"mediavault/internal/domain/consts"
	"mediavault/internal/domain/paths"
	"mediavault/internal/logging"
	"mediavault/internal/models"
	"mediavault/internal/stats"
)

const (
	// pausePollInterval is how often the paused loop rechecks its flags, so
	// stop stays responsive during a pause.
	pausePollInterval = 500 * time.Millisecond

	// stopJoinTimeout bounds how long Stop waits for the transfer loop. Past
	// it the orchestrator declares itself stopped regardless, trading a
	// possibly lingering final item for responsiveness.
	stopJoinTimeout = 5 * time.Second
)

// Downloader orchestrates scanning both sources and sequentially transferring
// pending items with pause/resume/stop and per-file error isolation.
type Downloader struct {
	store   contracts.StateStore
	journal contracts.Journal
	authMgr *auth.Manager
	sources []contracts.Source // Drive-like first; worklist order follows.
	cfgFn   func() *models.AppConfig
	hooks   models.DownloadHooks

	// onFinished chains into auto-transcription after a completed run.
	onFinished func(ctx context.Context)

	mu          sync.Mutex
	running     bool
	currentFile string
	done        chan struct{}

	paused   atomic.Bool
	stopFlag atomic.Bool
}

// NewDownloader wires a download orchestrator.
//
// cfgFn supplies the active configuration per run so saved config changes
// apply without rebuilding the orchestrator.
func NewDownloader(
	store contracts.StateStore,
	journal contracts.Journal,
	authMgr *auth.Manager,
	driveSrc, photosSrc contracts.Source,
	cfgFn func() *models.AppConfig,
) *Downloader {
	return &Downloader{
		store:   store,
		journal: journal,
		authMgr: authMgr,
		sources: []contracts.Source{driveSrc, photosSrc},
		cfgFn:   cfgFn,
	}
}

// SetHooks installs the optional UI callback slots.
func (d *Downloader) SetHooks(h models.DownloadHooks) { d.hooks = h }

// SetFinishedFunc installs the hook run after a completed (not stopped) run,
// used to chain auto-transcription.
func (d *Downloader) SetFinishedFunc(fn func(ctx context.Context)) { d.onFinished = fn }

// IsDownloading reports whether the transfer loop is active.
func (d *Downloader) IsDownloading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// IsPaused reports whether the transfer loop is paused.
func (d *Downloader) IsPaused() bool { return d.paused.Load() }

// CurrentFile returns the name of the item currently transferring.
func (d *Downloader) CurrentFile() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentFile
}

type scanOut struct {
	kind consts.SourceKind
	recs []*models.FileRecord
	err  error
}

// Scan lists both sources concurrently and merges the results into the state
// store. A failure in one source does not cancel the other; its error is
// collected in the result rather than returned. Only a missing-credentials
// condition fails the whole call.
func (d *Downloader) Scan(ctx context.Context) (*models.ScanResult, error) {
	if !d.authMgr.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}

	cfg := d.cfgFn()
	filters := contracts.ListFilters{
		IncludeVideos:    cfg.DownloadVideos,
		IncludeDocuments: cfg.DownloadDocuments,
	}

	var (
		wg   sync.WaitGroup
		outs = make(chan scanOut, len(d.sources))
	)

	for _, src := range d.sources {
		if src.Kind() == consts.SourcePhotos && !cfg.DownloadPhotos {
			continue
		}

		wg.Add(1)
		go func(src contracts.Source) {
			defer wg.Done()
			recs, err := src.ListItems(ctx, filters)
			outs <- scanOut{kind: src.Kind(), recs: recs, err: err}
		}(src)
	}

	wg.Wait()
	close(outs)

	excludes := compileExcludes(cfg.ExcludePatterns)
	result := &models.ScanResult{}

	for out := range outs {
		if out.err != nil {
			logging.E("Error scanning %s: %v", out.kind, out.err)
			result.SourceErrs = append(result.SourceErrs, out.err)
			continue
		}

		kept := filterExcluded(out.recs, excludes)
		d.store.MergeScan(out.kind, kept)

		switch out.kind {
		case consts.SourcePhotos:
			result.PhotosFound = len(kept)
		default:
			result.DriveFound = len(kept)
		}
	}

	result.Stats = stats.Derive(
		d.store.Records(consts.SourceDrive),
		d.store.Records(consts.SourcePhotos),
		d.store.Transcriptions(),
	)
	return result, nil
}

func compileExcludes(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			logging.W("Invalid exclude pattern %q: %v", p, err)
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

func filterExcluded(recs []*models.FileRecord, globs []glob.Glob) []*models.FileRecord {
	if len(globs) == 0 {
		return recs
	}
	kept := make([]*models.FileRecord, 0, len(recs))
	for _, rec := range recs {
		excluded := false
		for _, g := range globs {
			if g.Match(rec.Name) {
				excluded = true
				break
			}
		}
		if excluded {
			logging.D(1, "Excluding %q by pattern", rec.Name)
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// Start spawns the sequential transfer loop in the background and returns
// immediately. A warning no-op if already running.
func (d *Downloader) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		logging.W("Download already in progress")
		return
	}
	d.running = true
	d.done = make(chan struct{})
	d.mu.Unlock()

	d.paused.Store(false)
	d.stopFlag.Store(false)
	for _, src := range d.sources {
		src.Reset()
	}

	go d.worker(ctx)
}

// Pause pauses the transfer loop between items. No effect if not running.
func (d *Downloader) Pause() {
	if !d.IsDownloading() {
		return
	}
	d.paused.Store(true)
	logging.I("Download paused")
}

// Resume resumes a paused transfer loop. No effect if not running.
func (d *Downloader) Resume() {
	if !d.IsDownloading() {
		return
	}
	d.paused.Store(false)
	logging.I("Download resumed")
}

// Stop signals the transfer loop and both sources to stop, then waits for the
// loop with a bounded join before declaring stopped regardless.
func (d *Downloader) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	done := d.done
	d.mu.Unlock()

	d.stopFlag.Store(true)
	d.paused.Store(false)

	for _, src := range d.sources {
		src.Stop()
	}

	select {
	case <-done:
	case <-time.After(stopJoinTimeout):
		logging.W("Transfer loop did not exit within %s, declaring stopped", stopJoinTimeout)
	}

	d.mu.Lock()
	d.running = false
	d.currentFile = ""
	d.mu.Unlock()

	logging.I("Download stopped")
}

type workItem struct {
	rec *models.FileRecord
	src contracts.Source
}

// buildWorklist gathers every pending record across both sources in stable
// order: the Drive-like collection fully, then the Photos-like one.
func (d *Downloader) buildWorklist() []workItem {
	var items []workItem
	for _, src := range d.sources {
		for _, rec := range d.store.Records(src.Kind()) {
			if rec.Status == consts.TransferPending {
				items = append(items, workItem{rec: rec, src: src})
			}
		}
	}
	return items
}

func (d *Downloader) worker(ctx context.Context) {
	defer func() {
		d.mu.Lock()
		d.running = false
		d.currentFile = ""
		done := d.done
		d.mu.Unlock()
		d.paused.Store(false)
		close(done)
	}()

	cfg := d.cfgFn()
	worklist := d.buildWorklist()
	totals := models.RunTotals{}

	if len(worklist) == 0 {
		logging.I("No pending files to download")
		d.fireBatchComplete(totals)
		return
	}

	var run *models.Run
	if r, err := d.journal.BeginRun(consts.RunTypeDownload); err != nil {
		logging.E("Failed to begin journal run: %v", err)
	} else {
		run = r
	}

	logging.I("Starting download of %d pending file(s)", len(worklist))

	for i, item := range worklist {
		if d.stopFlag.Load() || ctx.Err() != nil {
			break
		}

		// Active wait, rechecked at a short interval so stop stays
		// responsive while paused.
		for d.paused.Load() {
			if d.stopFlag.Load() || ctx.Err() != nil {
				break
			}
			time.Sleep(pausePollInterval)
		}
		if d.stopFlag.Load() || ctx.Err() != nil {
			break
		}

		d.mu.Lock()
		d.currentFile = item.rec.Name
		d.mu.Unlock()

		d.transferOne(ctx, cfg, item, i, len(worklist), run, &totals)
	}

	logging.I("Download run finished: %d downloaded, %d skipped, %d errored",
		totals.Downloaded, totals.Skipped, totals.Errored)

	if run != nil {
		if err := d.journal.EndRun(run, totals); err != nil {
			logging.E("Failed to close journal run: %v", err)
		}
	}

	d.fireBatchComplete(totals)

	if !d.stopFlag.Load() && cfg.AutoTranscribe && totals.Downloaded > 0 && d.onFinished != nil {
		d.onFinished(ctx)
	}
}

func (d *Downloader) fireBatchComplete(totals models.RunTotals) {
	if d.hooks.OnBatchComplete == nil {
		return
	}
	st := stats.Derive(
		d.store.Records(consts.SourceDrive),
		d.store.Records(consts.SourcePhotos),
		d.store.Transcriptions(),
	)
	d.hooks.OnBatchComplete(st, totals)
}

// destinationDir routes video items to a source-specific videos subdirectory
// and everything else (including exported documents) to the documents
// subdirectory.
func destinationDir(cfg *models.AppConfig, rec *models.FileRecord) string {
	if rec.IsVideo() {
		if rec.Source == consts.SourcePhotos {
			return paths.PhotosVideosDir(cfg.DownloadPath)
		}
		return paths.DriveVideosDir(cfg.DownloadPath)
	}
	return paths.DocumentsDir(cfg.DownloadPath)
}

func (d *Downloader) transferOne(
	ctx context.Context,
	cfg *models.AppConfig,
	item workItem,
	index, total int,
	run *models.Run,
	totals *models.RunTotals,
) {
	rec := item.rec
	destPath := filepath.Join(destinationDir(cfg, rec), rec.Name)

	// Already on disk means an immediate success, counted separately.
	if _, err := os.Stat(destPath); err == nil {
		logging.D(1, "File already exists, skipping: %s", destPath)
		rec.MarkComplete(destPath)
		d.store.Update(rec.Source, rec)
		totals.Skipped++
		d.logEvent(run, rec, consts.EventTransferSkipped, "already present on disk")
		if d.hooks.OnFileComplete != nil {
			d.hooks.OnFileComplete(rec)
		}
		return
	}

	rec.Status = consts.TransferDownloading
	d.store.Update(rec.Source, rec)
	d.logEvent(run, rec, consts.EventTransferStarted, "")

	onProgress := func(pct int) {
		if d.hooks.OnProgress != nil {
			batchPct := (index*100 + pct) / total
			d.hooks.OnProgress(rec.Name, pct, batchPct)
		}
	}

	ok, finalPath, err := item.src.Transfer(ctx, rec.ID, destPath, rec.MimeType, onProgress)
	switch {
	case err != nil:
		logging.E("Error downloading %q: %v", rec.Name, err)
		rec.MarkError(err.Error())
		totals.Errored++
		d.logEvent(run, rec, consts.EventTransferFailed, err.Error())
		if d.hooks.OnError != nil {
			d.hooks.OnError(rec.Name, err.Error())
		}

	case !ok:
		rec.MarkError("download failed")
		totals.Errored++
		d.logEvent(run, rec, consts.EventTransferFailed, "download failed")
		if d.hooks.OnError != nil {
			d.hooks.OnError(rec.Name, "download failed")
		}

	default:
		rec.MarkComplete(finalPath)
		totals.Downloaded++
		logging.S("Downloaded: %s", rec.Name)
		d.logEvent(run, rec, consts.EventTransferComplete, finalPath)
		if d.hooks.OnFileComplete != nil {
			d.hooks.OnFileComplete(rec)
		}
	}

	d.store.Update(rec.Source, rec)
}

func (d *Downloader) logEvent(run *models.Run, rec *models.FileRecord, event, detail string) {
	if run == nil {
		return
	}
	if err := d.journal.AddEvent(run.ID, rec.ID, rec.Name, event, detail); err != nil {
		logging.E("Failed to journal event %q for %q: %v", event, rec.Name, err)
	}
}

// Statistics derives current aggregate counts from the state store.
func (d *Downloader) Statistics() models.DownloadStats {
	return stats.Derive(
		d.store.Records(consts.SourceDrive),
		d.store.Records(consts.SourcePhotos),
		d.store.Transcriptions(),
	)
}

// InvalidateSources discards both sources' cached service handles, required
// after re-authentication.
func (d *Downloader) InvalidateSources() {
	for _, src := range d.sources {
		src.InvalidateCache()
	}
}
