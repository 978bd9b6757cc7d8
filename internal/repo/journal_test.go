package repo

import (
	"path/filepath"
	"testing"
	"time"

	"mediavault/internal/database"
	"mediavault/internal/domain/consts"
	"mediavault/internal/models"
)

func newTestJournal(t *testing.T) *JournalStore {
	t.Helper()

	db, err := database.InitDB(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return GetJournalStore(db.DB)
}

// TestRunLifecycle tests beginning and closing a run with totals.
func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	js := newTestJournal(t)

	run, err := js.BeginRun(consts.RunTypeDownload)
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if run.ID == "" {
		t.Fatal("run ID empty")
	}

	totals := models.RunTotals{Downloaded: 3, Skipped: 1, Errored: 2}
	if err := js.EndRun(run, totals); err != nil {
		t.Fatalf("EndRun() error = %v", err)
	}

	runs, err := js.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("run count = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != run.ID || got.Type != consts.RunTypeDownload {
		t.Errorf("run = %+v, want id %q type %q", got, run.ID, consts.RunTypeDownload)
	}
	if got.EndedAt == nil {
		t.Error("ended time not persisted")
	}
	if got.Downloaded != 3 || got.Skipped != 1 || got.Errored != 2 {
		t.Errorf("totals = %d/%d/%d, want 3/1/2", got.Downloaded, got.Skipped, got.Errored)
	}
}

// TestRecentRunsOrderAndLimit tests newest-first ordering and the row limit.
func TestRecentRunsOrderAndLimit(t *testing.T) {
	t.Parallel()

	js := newTestJournal(t)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := js.BeginRun(consts.RunTypeDownload)
		if err != nil {
			t.Fatalf("BeginRun() error = %v", err)
		}
		ids = append(ids, run.ID)
		// Distinct start times keep the ordering deterministic.
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := js.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("run count = %d, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("order = [%s %s], want newest first", runs[0].ID, runs[1].ID)
	}

	// An open run reports no end time.
	if runs[0].EndedAt != nil {
		t.Error("open run has an end time")
	}
}

// TestRunEvents tests per-item event recording and retrieval order.
func TestRunEvents(t *testing.T) {
	t.Parallel()

	js := newTestJournal(t)

	run, err := js.BeginRun(consts.RunTypeTranscribe)
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	other, err := js.BeginRun(consts.RunTypeDownload)
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}

	events := []struct{ itemID, name, event, detail string }{
		{"v1", "talk.mp4", consts.EventTranscribeStarted, ""},
		{"v1", "talk.mp4", consts.EventTranscribeComplete, "/dl/talk.txt"},
	}
	for _, ev := range events {
		if err := js.AddEvent(run.ID, ev.itemID, ev.name, ev.event, ev.detail); err != nil {
			t.Fatalf("AddEvent() error = %v", err)
		}
	}
	if err := js.AddEvent(other.ID, "x", "x.mp4", consts.EventTransferStarted, ""); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	got, err := js.RunEvents(run.ID)
	if err != nil {
		t.Fatalf("RunEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("event count = %d, want 2 for run only", len(got))
	}
	for i, want := range events {
		if got[i].Event != want.event || got[i].ItemName != want.name || got[i].Detail != want.detail {
			t.Errorf("event[%d] = %+v, want %+v", i, got[i], want)
		}
	}
}
