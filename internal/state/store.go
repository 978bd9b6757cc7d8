// Package state implements the persisted state store: durable id → record
// collections hydrated lazily and written through on every mutation.
package state

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"mediavault/internal/domain/consts"
	"mediavault/internal/logging"
	"mediavault/internal/models"
)

// Store holds the in-memory record collections and their backing files.
//
// Every mutating call persists the full affected collection synchronously, so
// a crash leaves state no more than one update stale. Load failures degrade
// to an empty collection with a logged warning; save failures are logged and
// swallowed.
type Store struct {
	mu sync.Mutex

	drive  *collection
	photos *collection

	transFile   string
	trans       map[string]*models.TranscriptionRecord
	transLoaded bool
}

type collection struct {
	file   string
	recs   map[string]*models.FileRecord
	order  []string
	loaded bool
}

// NewStore returns a state store backed by the given collection files.
func NewStore(driveFile, photosFile, transFile string) *Store {
	return &Store{
		drive:     &collection{file: driveFile},
		photos:    &collection{file: photosFile},
		transFile: transFile,
	}
}

func (s *Store) coll(kind consts.SourceKind) *collection {
	if kind == consts.SourcePhotos {
		return s.photos
	}
	return s.drive
}

// hydrate loads a collection from disk on first access.
func (c *collection) hydrate() {
	if c.loaded {
		return
	}
	c.loaded = true
	c.recs = make(map[string]*models.FileRecord)

	data, err := os.ReadFile(c.file)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.W("Failed to read state file %q, starting empty: %v", c.file, err)
		}
		return
	}

	if err := json.Unmarshal(data, &c.recs); err != nil {
		logging.W("State file %q is corrupt, starting empty: %v", c.file, err)
		c.recs = make(map[string]*models.FileRecord)
		return
	}

	// Map order is lost across restarts. Sorted ids keep the worklist order
	// stable between runs.
	c.order = make([]string, 0, len(c.recs))
	for id := range c.recs {
		c.order = append(c.order, id)
	}
	sort.Strings(c.order)
}

func (c *collection) persist() {
	data, err := json.MarshalIndent(c.recs, "", "  ")
	if err != nil {
		logging.E("Failed to marshal state for %q: %v", c.file, err)
		return
	}
	if err := os.WriteFile(c.file, data, consts.PermsStateFile); err != nil {
		logging.E("Failed to save state to %q: %v", c.file, err)
	}
}

func (c *collection) upsert(rec *models.FileRecord) {
	if _, exists := c.recs[rec.ID]; !exists {
		c.order = append(c.order, rec.ID)
	}
	c.recs[rec.ID] = rec
}

// Records returns the collection for one source in stable order.
func (s *Store) Records(kind consts.SourceKind) []*models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(kind)
	c.hydrate()

	out := make([]*models.FileRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.recs[id])
	}
	return out
}

// Get returns the record with the given id, if present.
func (s *Store) Get(kind consts.SourceKind, id string) (*models.FileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(kind)
	c.hydrate()

	rec, ok := c.recs[id]
	return rec, ok
}

// MergeScan merges freshly scanned records into the collection, copying the
// progress fields of records already present so a rescan never regresses
// completed work, then persists the collection.
func (s *Store) MergeScan(kind consts.SourceKind, incoming []*models.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(kind)
	c.hydrate()

	for _, rec := range incoming {
		if existing, ok := c.recs[rec.ID]; ok {
			rec.AdoptProgress(existing)
		}
		c.upsert(rec)
	}
	c.persist()
}

// Update upserts a single record and persists the collection.
func (s *Store) Update(kind consts.SourceKind, rec *models.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(kind)
	c.hydrate()
	c.upsert(rec)
	c.persist()
}

func (s *Store) hydrateTrans() {
	if s.transLoaded {
		return
	}
	s.transLoaded = true
	s.trans = make(map[string]*models.TranscriptionRecord)

	data, err := os.ReadFile(s.transFile)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.W("Failed to read transcription state %q, starting empty: %v", s.transFile, err)
		}
		return
	}
	if err := json.Unmarshal(data, &s.trans); err != nil {
		logging.W("Transcription state %q is corrupt, starting empty: %v", s.transFile, err)
		s.trans = make(map[string]*models.TranscriptionRecord)
	}
}

func (s *Store) persistTrans() {
	data, err := json.MarshalIndent(s.trans, "", "  ")
	if err != nil {
		logging.E("Failed to marshal transcription state: %v", err)
		return
	}
	if err := os.WriteFile(s.transFile, data, consts.PermsStateFile); err != nil {
		logging.E("Failed to save transcription state to %q: %v", s.transFile, err)
	}
}

// Transcriptions returns a copy of the localPath → record mapping.
func (s *Store) Transcriptions() map[string]*models.TranscriptionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrateTrans()

	out := make(map[string]*models.TranscriptionRecord, len(s.trans))
	for k, v := range s.trans {
		out[k] = v
	}
	return out
}

// UpdateTranscription upserts a transcription record and persists.
func (s *Store) UpdateTranscription(rec *models.TranscriptionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrateTrans()
	s.trans[rec.VideoPath] = rec
	s.persistTrans()
}

// ClearAll wipes every collection and persists the empty state.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range []*collection{s.drive, s.photos} {
		c.loaded = true
		c.recs = make(map[string]*models.FileRecord)
		c.order = nil
		c.persist()
	}

	s.transLoaded = true
	s.trans = make(map[string]*models.TranscriptionRecord)
	s.persistTrans()

	logging.I("Cleared all state")
}

// ResetErrors flips Error records back to Pending so a future run retries
// them. Returns the number of records reset.
func (s *Store) ResetErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range []*collection{s.drive, s.photos} {
		c.hydrate()
		changed := false
		for _, rec := range c.recs {
			if rec.Status == consts.TransferError {
				rec.Status = consts.TransferPending
				rec.ErrorMessage = ""
				changed = true
				n++
			}
		}
		if changed {
			c.persist()
		}
	}
	return n
}
