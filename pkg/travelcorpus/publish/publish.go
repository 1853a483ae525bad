// Package publish ships the output of a run to external sinks.
package publish

import (
	"context"
	"errors"
	"log"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// Publisher delivers accepted records and exported artifacts.
type Publisher interface {
	PublishRecords(ctx context.Context, runID string, records []record.Record) error
	PublishFile(ctx context.Context, runID, path string) error
	Close() error
}

// Config selects the sinks. A sink with an empty bucket or broker list is
// disabled.
type Config struct {
	GCS   GCSConfig   `yaml:"gcs"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// Message is the wire form of one accepted record.
type Message struct {
	RunID              string   `json:"run_id"`
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	SourceDataset      string   `json:"source_dataset"`
	ConfidenceScore    float64  `json:"confidence_score"`
	TravelCategoryID   int      `json:"travel_category_id"`
	TravelCategory     string   `json:"travel_category"`
	CategoryConfidence float64  `json:"category_confidence"`
	FilterMethod       string   `json:"filter_method,omitempty"`
	MatchedKeywords    []string `json:"matched_keywords,omitempty"`
}

// NewMessage flattens rec for publishing.
func NewMessage(runID string, rec record.Record) Message {
	m := Message{
		RunID:              runID,
		ID:                 rec.ID,
		Text:               rec.Text,
		SourceDataset:      rec.SourceDataset,
		ConfidenceScore:    rec.ConfidenceScore,
		TravelCategoryID:   rec.TravelCategoryID,
		TravelCategory:     rec.TravelCategory,
		CategoryConfidence: rec.CategoryConfidence,
	}
	if md := rec.TravelMetadata; md != nil {
		m.FilterMethod = string(md.FilterMethod)
		m.MatchedKeywords = md.MatchedKeywords
	}
	return m
}

// Open builds a publisher for every configured sink. With nothing
// configured it returns an empty Multi, which does nothing.
func Open(ctx context.Context, cfg Config) (Multi, error) {
	var out Multi
	if cfg.GCS.Bucket != "" {
		p, err := NewGCS(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := NewKafka(cfg.Kafka)
		if err != nil {
			out.Close()
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Multi fans out to several publishers. Every sink is attempted; errors
// are joined.
type Multi []Publisher

func (m Multi) PublishRecords(ctx context.Context, runID string, records []record.Record) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishRecords(ctx, runID, records); err != nil {
			log.Printf("publish: records for run %s failed: %v", runID, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) PublishFile(ctx context.Context, runID, path string) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishFile(ctx, runID, path); err != nil {
			log.Printf("publish: file %s for run %s failed: %v", path, runID, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
