package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]store.Run
	records map[string][]store.StoredRecord
	index   map[string]map[string]int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		runs:    make(map[string]store.Run),
		records: make(map[string][]store.StoredRecord),
		index:   make(map[string]map[string]int),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun stores r, assigning an id and start time when missing.
func (s *Store) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = store.NewRunID()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	r.Datasets = append([]string(nil), r.Datasets...)
	s.runs[r.ID] = r
	return r, nil
}

// FinishRun updates the totals of an existing run.
func (s *Store) FinishRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.runs[r.ID]
	if !ok {
		return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, r.ID)
	}
	cur.FinishedAt = r.FinishedAt
	if cur.FinishedAt.IsZero() {
		cur.FinishedAt = time.Now().UTC()
	}
	cur.TotalRecords = r.TotalRecords
	cur.TravelRecords = r.TravelRecords
	cur.MetadataJSON = r.MetadataJSON
	s.runs[r.ID] = cur
	return nil
}

// GetRun returns a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	r.Datasets = append([]string(nil), r.Datasets...)
	return r, nil
}

// ListRuns returns the newest runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveRecord upserts a record keyed by run and record id.
func (s *Store) SaveRecord(ctx context.Context, runID string, rec store.StoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, runID)
	}
	rec.MatchedKeywords = append([]string(nil), rec.MatchedKeywords...)
	idx := s.index[runID]
	if idx == nil {
		idx = make(map[string]int)
		s.index[runID] = idx
	}
	if pos, ok := idx[rec.RecordID]; ok {
		s.records[runID][pos] = rec
		return nil
	}
	idx[rec.RecordID] = len(s.records[runID])
	s.records[runID] = append(s.records[runID], rec)
	return nil
}

// ListRecords returns records of a run at or above minConfidence in
// insertion order.
func (s *Store) ListRecords(ctx context.Context, runID string, minConfidence float64) ([]store.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.StoredRecord
	for _, rec := range s.records[runID] {
		if rec.ConfidenceScore >= minConfidence {
			rec.MatchedKeywords = append([]string(nil), rec.MatchedKeywords...)
			out = append(out, rec)
		}
	}
	return out, nil
}
