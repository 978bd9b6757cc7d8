package state

import (
	"os"
	"path/filepath"
	"testing"

	"mediavault/internal/domain/consts"
	"mediavault/internal/models"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewStore(
		filepath.Join(dir, "drive_state.json"),
		filepath.Join(dir, "photos_state.json"),
		filepath.Join(dir, "transcription_state.json"),
	)
	return s, dir
}

// TestMergeScanPreservesProgress tests that a rescan never regresses the
// progress fields of an already-downloaded record.
func TestMergeScanPreservesProgress(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	first := &models.FileRecord{
		ID: "f1", Name: "clip.mp4", Source: consts.SourceDrive,
		MimeType: "video/mp4", Status: consts.TransferPending,
	}
	s.MergeScan(consts.SourceDrive, []*models.FileRecord{first})

	first.MarkComplete("/downloads/clip.mp4")
	s.Update(consts.SourceDrive, first)

	// Rescan returns a fresh pending record for the same id.
	rescan := &models.FileRecord{
		ID: "f1", Name: "clip.mp4", Source: consts.SourceDrive,
		MimeType: "video/mp4", Status: consts.TransferPending,
	}
	s.MergeScan(consts.SourceDrive, []*models.FileRecord{rescan})

	got, ok := s.Get(consts.SourceDrive, "f1")
	if !ok {
		t.Fatal("record f1 missing after merge")
	}
	if got.Status != consts.TransferComplete {
		t.Errorf("status = %q, want %q", got.Status, consts.TransferComplete)
	}
	if got.LocalPath != "/downloads/clip.mp4" {
		t.Errorf("local path = %q, want %q", got.LocalPath, "/downloads/clip.mp4")
	}
	if got.DownloadedAt == nil {
		t.Error("downloaded time lost across rescan")
	}
}

// TestMergeScanIdempotent tests that merging the same scan twice does not
// duplicate records.
func TestMergeScanIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	recs := []*models.FileRecord{
		{ID: "a", Name: "a.mp4", Source: consts.SourceDrive, MimeType: "video/mp4", Status: consts.TransferPending},
		{ID: "b", Name: "b.pdf", Source: consts.SourceDrive, MimeType: "application/pdf", Status: consts.TransferPending},
	}
	s.MergeScan(consts.SourceDrive, recs)

	again := []*models.FileRecord{
		{ID: "a", Name: "a.mp4", Source: consts.SourceDrive, MimeType: "video/mp4", Status: consts.TransferPending},
		{ID: "b", Name: "b.pdf", Source: consts.SourceDrive, MimeType: "application/pdf", Status: consts.TransferPending},
	}
	s.MergeScan(consts.SourceDrive, again)

	if got := len(s.Records(consts.SourceDrive)); got != 2 {
		t.Errorf("record count = %d, want 2", got)
	}
}

// TestWriteThroughSurvivesRestart tests that every mutation is durable by
// rebuilding a store over the same files.
func TestWriteThroughSurvivesRestart(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t)

	rec := &models.FileRecord{
		ID: "v1", Name: "talk.mp4", Source: consts.SourcePhotos,
		MimeType: "video/mp4", Status: consts.TransferPending,
	}
	s.MergeScan(consts.SourcePhotos, []*models.FileRecord{rec})
	rec.MarkComplete("/downloads/talk.mp4")
	s.Update(consts.SourcePhotos, rec)
	s.UpdateTranscription(&models.TranscriptionRecord{
		VideoPath: "/downloads/talk.mp4",
		Status:    consts.TranscribeComplete,
	})

	// Fresh store over the same files simulates a restart.
	s2 := NewStore(
		filepath.Join(dir, "drive_state.json"),
		filepath.Join(dir, "photos_state.json"),
		filepath.Join(dir, "transcription_state.json"),
	)

	got, ok := s2.Get(consts.SourcePhotos, "v1")
	if !ok {
		t.Fatal("record v1 missing after restart")
	}
	if got.Status != consts.TransferComplete {
		t.Errorf("status = %q, want %q", got.Status, consts.TransferComplete)
	}

	tr, ok := s2.Transcriptions()["/downloads/talk.mp4"]
	if !ok {
		t.Fatal("transcription record missing after restart")
	}
	if tr.Status != consts.TranscribeComplete {
		t.Errorf("transcription status = %q, want %q", tr.Status, consts.TranscribeComplete)
	}
}

// TestCorruptStateFileStartsEmpty tests that an unparseable state file
// degrades to an empty collection instead of failing.
func TestCorruptStateFileStartsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	driveFile := filepath.Join(dir, "drive_state.json")
	if err := os.WriteFile(driveFile, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	s := NewStore(
		driveFile,
		filepath.Join(dir, "photos_state.json"),
		filepath.Join(dir, "transcription_state.json"),
	)

	if got := len(s.Records(consts.SourceDrive)); got != 0 {
		t.Errorf("record count = %d, want 0 for corrupt file", got)
	}

	// A subsequent merge must work and overwrite the corrupt file.
	s.MergeScan(consts.SourceDrive, []*models.FileRecord{
		{ID: "x", Name: "x.mp4", Source: consts.SourceDrive, MimeType: "video/mp4", Status: consts.TransferPending},
	})
	if got := len(s.Records(consts.SourceDrive)); got != 1 {
		t.Errorf("record count after merge = %d, want 1", got)
	}
}

// TestStableOrderAcrossRestart tests that the worklist order is deterministic
// after a reload.
func TestStableOrderAcrossRestart(t *testing.T) {
	t.Parallel()

	s, dir := newTestStore(t)

	s.MergeScan(consts.SourceDrive, []*models.FileRecord{
		{ID: "c", Name: "c.mp4", Source: consts.SourceDrive, MimeType: "video/mp4", Status: consts.TransferPending},
		{ID: "a", Name: "a.mp4", Source: consts.SourceDrive, MimeType: "video/mp4", Status: consts.TransferPending},
		{ID: "b", Name: "b.mp4", Source: consts.SourceDrive, MimeType: "video/mp4", Status: consts.TransferPending},
	})

	s2 := NewStore(
		filepath.Join(dir, "drive_state.json"),
		filepath.Join(dir, "photos_state.json"),
		filepath.Join(dir, "transcription_state.json"),
	)
	recs := s2.Records(consts.SourceDrive)
	if len(recs) != 3 {
		t.Fatalf("record count = %d, want 3", len(recs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if recs[i].ID != want {
			t.Errorf("recs[%d].ID = %q, want %q", i, recs[i].ID, want)
		}
	}
}

// TestResetErrors tests flipping errored records back to pending.
func TestResetErrors(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	errored := &models.FileRecord{
		ID: "e1", Name: "bad.mp4", Source: consts.SourceDrive,
		MimeType: "video/mp4", Status: consts.TransferPending,
	}
	done := &models.FileRecord{
		ID: "d1", Name: "good.mp4", Source: consts.SourceDrive,
		MimeType: "video/mp4", Status: consts.TransferPending,
	}
	s.MergeScan(consts.SourceDrive, []*models.FileRecord{errored, done})

	errored.MarkError("network timeout")
	s.Update(consts.SourceDrive, errored)
	done.MarkComplete("/downloads/good.mp4")
	s.Update(consts.SourceDrive, done)

	if n := s.ResetErrors(); n != 1 {
		t.Errorf("ResetErrors() = %d, want 1", n)
	}

	got, _ := s.Get(consts.SourceDrive, "e1")
	if got.Status != consts.TransferPending {
		t.Errorf("errored record status = %q, want %q", got.Status, consts.TransferPending)
	}
	if got.ErrorMessage != "" {
		t.Errorf("error message = %q, want empty", got.ErrorMessage)
	}

	kept, _ := s.Get(consts.SourceDrive, "d1")
	if kept.Status != consts.TransferComplete {
		t.Errorf("completed record status = %q, want untouched %q", kept.Status, consts.TransferComplete)
	}
}

// TestClearAll tests wiping every collection.
func TestClearAll(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	s.MergeScan(consts.SourceDrive, []*models.FileRecord{
		{ID: "a", Name: "a.mp4", Source: consts.SourceDrive, MimeType: "video/mp4", Status: consts.TransferPending},
	})
	s.UpdateTranscription(&models.TranscriptionRecord{VideoPath: "/x.mp4", Status: consts.TranscribePending})

	s.ClearAll()

	if got := len(s.Records(consts.SourceDrive)); got != 0 {
		t.Errorf("drive record count = %d, want 0", got)
	}
	if got := len(s.Transcriptions()); got != 0 {
		t.Errorf("transcription count = %d, want 0", got)
	}
}
