package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// Store persists pipeline runs and the records they accepted.
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) (Run, error)
	FinishRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Records
	SaveRecord(ctx context.Context, runID string, rec StoredRecord) error
	ListRecords(ctx context.Context, runID string, minConfidence float64) ([]StoredRecord, error)
}

// Run is one invocation of the pipeline.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Datasets      []string
	MinConfidence float64
	UseSemantic   bool
	TotalRecords  int
	TravelRecords int
	MetadataJSON  string
}

// StoredRecord is the persisted form of a categorized record.
type StoredRecord struct {
	RecordID           string
	Text               string
	SourceDataset      string
	ConfidenceScore    float64
	CategoryID         int
	Category           string
	CategoryConfidence float64
	FilterMethod       string
	MatchedKeywords    []string
	ScoringJSON        string
}

// FromRecord flattens a scored record for storage.
func FromRecord(rec record.Record) StoredRecord {
	sr := StoredRecord{
		RecordID:           rec.ID,
		Text:               rec.Text,
		SourceDataset:      rec.SourceDataset,
		ConfidenceScore:    rec.ConfidenceScore,
		CategoryID:         rec.TravelCategoryID,
		Category:           rec.TravelCategory,
		CategoryConfidence: rec.CategoryConfidence,
	}
	if m := rec.TravelMetadata; m != nil {
		sr.FilterMethod = string(m.FilterMethod)
		sr.MatchedKeywords = append([]string(nil), m.MatchedKeywords...)
		if data, err := json.Marshal(m); err == nil {
			sr.ScoringJSON = string(data)
		}
	}
	return sr
}

// IDs hands out lexically sortable run identifiers.
type IDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDs creates a generator.
func NewIDs() *IDs {
	return &IDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ULID string.
func (g *IDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}

var defaultIDs = NewIDs()

// NewRunID returns a fresh run identifier.
func NewRunID() string { return defaultIDs.New() }
