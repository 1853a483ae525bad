// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store"
)

// Run exercises s. The store must be empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	run, err := s.CreateRun(ctx, store.Run{Datasets: []string{"dolly", "ultrachat"}, MinConfidence: 0.25, UseSemantic: true})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.ID == "" || run.StartedAt.IsZero() {
		t.Fatalf("CreateRun should assign id and start time: %+v", run)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Datasets) != 2 || got.Datasets[1] != "ultrachat" || !got.UseSemantic || got.MinConfidence != 0.25 {
		t.Errorf("GetRun = %+v", got)
	}

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetRun(missing) err = %v, want ErrNotFound", err)
	}

	recs := []store.StoredRecord{
		{RecordID: "dolly:1", Text: "Which hotel near the airport?", SourceDataset: "dolly", ConfidenceScore: 0.62,
			CategoryID: 3, Category: "Accommodation", CategoryConfidence: 1, FilterMethod: "hybrid",
			MatchedKeywords: []string{"airport", "hotel"}},
		{RecordID: "dolly:2", Text: "Plan a weekend in Lisbon", SourceDataset: "dolly", ConfidenceScore: 0.31,
			CategoryID: 4, Category: "Trip Planning", CategoryConfidence: 0.5, FilterMethod: "keyword"},
		{RecordID: "dolly:3", Text: "Ferry times to Naxos", SourceDataset: "dolly", ConfidenceScore: 0.5,
			CategoryID: 2, Category: "Transportation", CategoryConfidence: 1, FilterMethod: "keyword",
			MatchedKeywords: []string{"ferry"}},
	}
	for _, rec := range recs {
		if err := s.SaveRecord(ctx, run.ID, rec); err != nil {
			t.Fatalf("SaveRecord(%s): %v", rec.RecordID, err)
		}
	}

	// Upsert keeps position and replaces content.
	updated := recs[1]
	updated.ConfidenceScore = 0.55
	if err := s.SaveRecord(ctx, run.ID, updated); err != nil {
		t.Fatalf("SaveRecord(update): %v", err)
	}

	all, err := s.ListRecords(ctx, run.ID, 0)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].RecordID != "dolly:1" || all[1].RecordID != "dolly:2" || all[2].RecordID != "dolly:3" {
		t.Errorf("records out of insertion order: %v %v %v", all[0].RecordID, all[1].RecordID, all[2].RecordID)
	}
	if all[1].ConfidenceScore != 0.55 {
		t.Errorf("upsert not applied: %v", all[1].ConfidenceScore)
	}
	if len(all[0].MatchedKeywords) != 2 || all[0].MatchedKeywords[1] != "hotel" {
		t.Errorf("keywords = %v", all[0].MatchedKeywords)
	}

	high, err := s.ListRecords(ctx, run.ID, 0.5)
	if err != nil {
		t.Fatalf("ListRecords(0.5): %v", err)
	}
	if len(high) != 3 {
		t.Errorf("threshold is inclusive, got %d records", len(high))
	}
	high, _ = s.ListRecords(ctx, run.ID, 0.6)
	if len(high) != 1 || high[0].RecordID != "dolly:1" {
		t.Errorf("ListRecords(0.6) = %v", high)
	}

	run.TotalRecords = 10
	run.TravelRecords = 3
	run.MetadataJSON = `{"travel_records_found":3}`
	if err := s.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	got, _ = s.GetRun(ctx, run.ID)
	if got.FinishedAt.IsZero() || got.TotalRecords != 10 || got.TravelRecords != 3 || got.MetadataJSON == "" {
		t.Errorf("FinishRun not persisted: %+v", got)
	}
	if err := s.FinishRun(ctx, store.Run{ID: "missing"}); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("FinishRun(missing) err = %v", err)
	}

	second, err := s.CreateRun(ctx, store.Run{Datasets: []string{"vicuna"}})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID {
		t.Errorf("ListRuns should return newest first: %+v", runs)
	}
	runs, _ = s.ListRuns(ctx, 1)
	if len(runs) != 1 {
		t.Errorf("ListRuns(1) returned %d", len(runs))
	}
}
