package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mediavault/internal/domain/consts"
	"mediavault/internal/models"
	"mediavault/internal/state"
	"mediavault/internal/transcribe"
)

// fakeEngine records transcription calls and fails on request.
type fakeEngine struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]bool
	gotOpts transcribe.Options
}

func (f *fakeEngine) TranscribeFile(ctx context.Context, videoPath string, opts transcribe.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, videoPath)
	f.gotOpts = opts
	if f.failFor[videoPath] {
		return "", errors.New("inference failed")
	}
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".txt", nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type transcriberFixture struct {
	transcriber *Transcriber
	store       *state.Store
	journal     *fakeJournal
	engine      *fakeEngine
	cfg         *models.AppConfig
}

func newTranscriberFixture(t *testing.T) *transcriberFixture {
	t.Helper()

	dir := t.TempDir()
	store := state.NewStore(
		filepath.Join(dir, "drive_state.json"),
		filepath.Join(dir, "photos_state.json"),
		filepath.Join(dir, "transcription_state.json"),
	)

	cfg := models.DefaultConfig(filepath.Join(dir, "downloads"))
	engine := &fakeEngine{failFor: map[string]bool{}}
	journal := &fakeJournal{}

	tr := NewTranscriber(store, journal, engine,
		func() *models.AppConfig { return cfg })

	return &transcriberFixture{
		transcriber: tr,
		store:       store,
		journal:     journal,
		engine:      engine,
		cfg:         cfg,
	}
}

// addVideo seeds a completed video record with the given local path.
func (fx *transcriberFixture) addVideo(kind consts.SourceKind, id, localPath string) {
	rec := &models.FileRecord{
		ID: id, Name: filepath.Base(localPath), Source: kind,
		MimeType: "video/mp4", Status: consts.TransferComplete,
		LocalPath: localPath, TranscriptionStatus: consts.TranscribePending,
	}
	fx.store.Update(kind, rec)
}

func (fx *transcriberFixture) runToCompletion(t *testing.T) (completed, failed int) {
	t.Helper()

	doneCh := make(chan [2]int, 1)
	fx.transcriber.SetHooks(models.TranscribeHooks{
		OnBatchComplete: func(completed, failed int) {
			doneCh <- [2]int{completed, failed}
		},
	})

	fx.transcriber.Start(context.Background())

	select {
	case counts := <-doneCh:
		return counts[0], counts[1]
	case <-time.After(10 * time.Second):
		t.Fatal("transcription run did not complete")
		return 0, 0
	}
}

// TestPendingVideos tests the pending-set derivation rules.
func TestPendingVideos(t *testing.T) {
	t.Parallel()

	fx := newTranscriberFixture(t)
	fx.addVideo(consts.SourceDrive, "d1", "/dl/a.mp4")
	fx.addVideo(consts.SourceDrive, "d2", "/dl/b.mp4")
	fx.addVideo(consts.SourcePhotos, "p1", "/dl/c.mp4")

	// Non-video and non-complete records never qualify.
	fx.store.Update(consts.SourceDrive, &models.FileRecord{
		ID: "d3", Name: "notes.pdf", Source: consts.SourceDrive,
		MimeType: "application/pdf", Status: consts.TransferComplete, LocalPath: "/dl/notes.pdf",
	})
	fx.store.Update(consts.SourceDrive, &models.FileRecord{
		ID: "d4", Name: "later.mp4", Source: consts.SourceDrive,
		MimeType: "video/mp4", Status: consts.TransferPending,
	})

	// An already-transcribed video drops out; a pending record stays in.
	fx.store.UpdateTranscription(&models.TranscriptionRecord{
		VideoPath: "/dl/b.mp4", Status: consts.TranscribeComplete,
	})
	fx.store.UpdateTranscription(&models.TranscriptionRecord{
		VideoPath: "/dl/c.mp4", Status: consts.TranscribePending,
	})

	got := fx.transcriber.PendingVideos()
	want := []string{"/dl/a.mp4", "/dl/c.mp4"}
	if len(got) != len(want) {
		t.Fatalf("PendingVideos() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PendingVideos()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestTranscribeRun tests a successful run updating both state documents.
func TestTranscribeRun(t *testing.T) {
	t.Parallel()

	fx := newTranscriberFixture(t)
	fx.cfg.TranscriptionModel = "medium"
	fx.cfg.TranscriptionLanguage = "de"
	fx.addVideo(consts.SourceDrive, "d1", "/dl/talk.mp4")

	completed, failed := fx.runToCompletion(t)
	if completed != 1 || failed != 0 {
		t.Errorf("counts = %d/%d, want 1/0", completed, failed)
	}

	tr, ok := fx.store.Transcriptions()["/dl/talk.mp4"]
	if !ok {
		t.Fatal("transcription record missing")
	}
	if tr.Status != consts.TranscribeComplete {
		t.Errorf("transcription status = %q, want complete", tr.Status)
	}
	if tr.TranscriptPath != "/dl/talk.txt" {
		t.Errorf("transcript path = %q, want /dl/talk.txt", tr.TranscriptPath)
	}
	if tr.TranscribedAt == nil {
		t.Error("transcribed time not set")
	}

	rec, _ := fx.store.Get(consts.SourceDrive, "d1")
	if rec.TranscriptionStatus != consts.TranscribeComplete {
		t.Errorf("file record transcription status = %q, want complete", rec.TranscriptionStatus)
	}
	if rec.TranscribedAt == nil {
		t.Error("file record transcribed time not set")
	}

	if fx.engine.gotOpts.Model != "medium" || fx.engine.gotOpts.Language != "de" {
		t.Errorf("engine options = %+v, want configured model and language", fx.engine.gotOpts)
	}
}

// TestTranscribeErrorRecorded tests that a failed file is recorded without
// stopping the rest.
func TestTranscribeErrorRecorded(t *testing.T) {
	t.Parallel()

	fx := newTranscriberFixture(t)
	fx.addVideo(consts.SourceDrive, "d1", "/dl/bad.mp4")
	fx.addVideo(consts.SourceDrive, "d2", "/dl/good.mp4")
	fx.engine.failFor["/dl/bad.mp4"] = true

	completed, failed := fx.runToCompletion(t)
	if completed != 1 || failed != 1 {
		t.Errorf("counts = %d/%d, want 1/1", completed, failed)
	}

	tr := fx.store.Transcriptions()["/dl/bad.mp4"]
	if tr == nil || tr.Status != consts.TranscribeError {
		t.Errorf("failed record = %+v, want error status", tr)
	}
	if tr != nil && tr.ErrorMessage == "" {
		t.Error("error message not recorded")
	}

	names := fx.journal.eventNames()
	var sawFailed, sawComplete bool
	for _, n := range names {
		switch n {
		case consts.EventTranscribeFailed:
			sawFailed = true
		case consts.EventTranscribeComplete:
			sawComplete = true
		}
	}
	if !sawFailed || !sawComplete {
		t.Errorf("journal events = %v, want both failure and completion", names)
	}
}

// TestTranscribeNothingPending tests the empty-set short circuit.
func TestTranscribeNothingPending(t *testing.T) {
	t.Parallel()

	fx := newTranscriberFixture(t)
	completed, failed := fx.runToCompletion(t)
	if completed != 0 || failed != 0 {
		t.Errorf("counts = %d/%d, want 0/0", completed, failed)
	}
	if fx.engine.callCount() != 0 {
		t.Errorf("engine calls = %d, want 0", fx.engine.callCount())
	}
}

// TestTranscribeSkipsRetriedErrors tests that an errored transcription stays
// terminal until explicitly reset.
func TestTranscribeSkipsRetriedErrors(t *testing.T) {
	t.Parallel()

	fx := newTranscriberFixture(t)
	fx.addVideo(consts.SourceDrive, "d1", "/dl/bad.mp4")
	fx.store.UpdateTranscription(&models.TranscriptionRecord{
		VideoPath: "/dl/bad.mp4", Status: consts.TranscribeError, ErrorMessage: "inference failed",
	})

	if got := fx.transcriber.PendingVideos(); len(got) != 0 {
		t.Errorf("PendingVideos() = %v, want empty for errored record", got)
	}
}
