package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/store/storetest"
)

func TestStoreBehaviour(t *testing.T) {
	storetest.Run(t, New())
}

func TestSaveRecordUnknownRun(t *testing.T) {
	s := New()
	err := s.SaveRecord(context.Background(), "nope", store.StoredRecord{RecordID: "x"})
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	run, _ := s.CreateRun(ctx, store.Run{Datasets: []string{"dolly"}})
	_ = s.SaveRecord(ctx, run.ID, store.StoredRecord{RecordID: "a", ConfidenceScore: 1, MatchedKeywords: []string{"hotel"}})

	recs, _ := s.ListRecords(ctx, run.ID, 0)
	recs[0].MatchedKeywords[0] = "mutated"
	got, _ := s.GetRun(ctx, run.ID)
	got.Datasets[0] = "mutated"

	recs, _ = s.ListRecords(ctx, run.ID, 0)
	if recs[0].MatchedKeywords[0] != "hotel" {
		t.Error("keywords leaked through ListRecords")
	}
	got, _ = s.GetRun(ctx, run.ID)
	if got.Datasets[0] != "dolly" {
		t.Error("datasets leaked through GetRun")
	}
}
