package app

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"mediavault/internal/contracts"
	"mediavault/internal/domain/consts"
	"mediavault/internal/logging"
	"mediavault/internal/models"
	"mediavault/internal/transcribe"
)

// TranscribeEngine abstracts the audio-extraction and speech-to-text pipeline.
type TranscribeEngine interface {
	TranscribeFile(ctx context.Context, videoPath string, opts transcribe.Options) (string, error)
}

// Transcriber orchestrates sequential transcription of downloaded videos.
type Transcriber struct {
	store   contracts.StateStore
	journal contracts.Journal
	engine  TranscribeEngine
	cfgFn   func() *models.AppConfig
	hooks   models.TranscribeHooks

	mu          sync.Mutex
	running     bool
	currentFile string
	done        chan struct{}

	stopFlag atomic.Bool
}

// NewTranscriber wires a transcription orchestrator.
func NewTranscriber(
	store contracts.StateStore,
	journal contracts.Journal,
	engine TranscribeEngine,
	cfgFn func() *models.AppConfig,
) *Transcriber {
	return &Transcriber{
		store:   store,
		journal: journal,
		engine:  engine,
		cfgFn:   cfgFn,
	}
}

// SetHooks installs the optional UI callback slots.
func (t *Transcriber) SetHooks(h models.TranscribeHooks) { t.hooks = h }

// IsTranscribing reports whether the transcription loop is active.
func (t *Transcriber) IsTranscribing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// CurrentFile returns the name of the video currently transcribing.
func (t *Transcriber) CurrentFile() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentFile
}

// PendingVideos returns the local paths of every downloaded video that has no
// successful or in-flight transcription yet, in collection order.
func (t *Transcriber) PendingVideos() []string {
	trans := t.store.Transcriptions()
	var pending []string

	for _, kind := range []consts.SourceKind{consts.SourceDrive, consts.SourcePhotos} {
		for _, rec := range t.store.Records(kind) {
			if rec.Status != consts.TransferComplete || !rec.IsVideo() || rec.LocalPath == "" {
				continue
			}
			tr, ok := trans[rec.LocalPath]
			if !ok || tr.Status == consts.TranscribePending {
				pending = append(pending, rec.LocalPath)
			}
		}
	}
	return pending
}

// Start spawns the sequential transcription loop in the background and
// returns immediately. A warning no-op if already running.
func (t *Transcriber) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		logging.W("Transcription already in progress")
		return
	}
	t.running = true
	t.done = make(chan struct{})
	t.mu.Unlock()

	t.stopFlag.Store(false)

	go t.worker(ctx)
}

// Stop signals the transcription loop to stop after the current video, then
// waits for it with a bounded join.
func (t *Transcriber) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	done := t.done
	t.mu.Unlock()

	t.stopFlag.Store(true)

	select {
	case <-done:
	case <-time.After(stopJoinTimeout):
		logging.W("Transcription loop did not exit within %s, declaring stopped", stopJoinTimeout)
	}

	t.mu.Lock()
	t.running = false
	t.currentFile = ""
	t.mu.Unlock()

	logging.I("Transcription stopped")
}

func (t *Transcriber) worker(ctx context.Context) {
	defer func() {
		t.mu.Lock()
		t.running = false
		t.currentFile = ""
		done := t.done
		t.mu.Unlock()
		close(done)
	}()

	cfg := t.cfgFn()
	pending := t.PendingVideos()
	completed, failed := 0, 0

	if len(pending) == 0 {
		logging.I("No videos pending transcription")
		if t.hooks.OnBatchComplete != nil {
			t.hooks.OnBatchComplete(0, 0)
		}
		return
	}

	var run *models.Run
	if r, err := t.journal.BeginRun(consts.RunTypeTranscribe); err != nil {
		logging.E("Failed to begin journal run: %v", err)
	} else {
		run = r
	}

	opts := transcribe.Options{
		Model:    cfg.TranscriptionModel,
		Language: cfg.TranscriptionLanguage,
		Format:   cfg.TranscriptionFormat,
	}

	logging.I("Starting transcription of %d video(s)", len(pending))

	for i, videoPath := range pending {
		if t.stopFlag.Load() || ctx.Err() != nil {
			break
		}

		name := filepath.Base(videoPath)

		t.mu.Lock()
		t.currentFile = name
		t.mu.Unlock()

		if t.hooks.OnProgress != nil {
			t.hooks.OnProgress(name, float64(i)/float64(len(pending)))
		}

		if t.transcribeOne(ctx, videoPath, opts, run) {
			completed++
		} else {
			failed++
		}
	}

	logging.I("Transcription run finished: %d completed, %d failed", completed, failed)

	if run != nil {
		totals := models.RunTotals{Downloaded: completed, Errored: failed}
		if err := t.journal.EndRun(run, totals); err != nil {
			logging.E("Failed to close journal run: %v", err)
		}
	}

	if t.hooks.OnBatchComplete != nil {
		t.hooks.OnBatchComplete(completed, failed)
	}
}

func (t *Transcriber) transcribeOne(
	ctx context.Context,
	videoPath string,
	opts transcribe.Options,
	run *models.Run,
) bool {
	name := filepath.Base(videoPath)

	t.setState(videoPath, consts.TranscribeActive, "", "")
	t.logEvent(run, videoPath, consts.EventTranscribeStarted, "")

	transcriptPath, err := t.engine.TranscribeFile(ctx, videoPath, opts)
	if err != nil {
		logging.E("Error transcribing %q: %v", name, err)
		t.setState(videoPath, consts.TranscribeError, "", err.Error())
		t.logEvent(run, videoPath, consts.EventTranscribeFailed, err.Error())
		if t.hooks.OnError != nil {
			t.hooks.OnError(name, err.Error())
		}
		return false
	}

	t.setState(videoPath, consts.TranscribeComplete, transcriptPath, "")
	t.logEvent(run, videoPath, consts.EventTranscribeComplete, transcriptPath)
	logging.S("Transcribed: %s", name)
	if t.hooks.OnFileComplete != nil {
		t.hooks.OnFileComplete(videoPath, transcriptPath)
	}
	return true
}

// setState updates both the transcription record and the transcription fields
// of the owning file record, persisting each.
func (t *Transcriber) setState(videoPath string, status consts.TranscribeStatus, transcriptPath, errMsg string) {
	tr, ok := t.store.Transcriptions()[videoPath]
	if !ok {
		tr = &models.TranscriptionRecord{VideoPath: videoPath}
	}
	tr.Status = status
	tr.ErrorMessage = errMsg
	if status == consts.TranscribeComplete {
		now := time.Now()
		tr.TranscriptPath = transcriptPath
		tr.TranscribedAt = &now
	}
	t.store.UpdateTranscription(tr)

	for _, kind := range []consts.SourceKind{consts.SourceDrive, consts.SourcePhotos} {
		for _, rec := range t.store.Records(kind) {
			if rec.LocalPath != videoPath {
				continue
			}
			rec.TranscriptionStatus = status
			rec.TranscribedAt = tr.TranscribedAt
			t.store.Update(kind, rec)
			return
		}
	}
}

func (t *Transcriber) logEvent(run *models.Run, videoPath, event, detail string) {
	if run == nil {
		return
	}
	name := filepath.Base(videoPath)
	if err := t.journal.AddEvent(run.ID, videoPath, name, event, detail); err != nil {
		logging.E("Failed to journal event %q for %q: %v", event, name, err)
	}
}
