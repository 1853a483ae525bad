// Package ingest streams raw prompt records out of upstream datasets.
package ingest

import (
	"context"
	"iter"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// Source yields records lazily. Each call to Records starts a fresh pass.
// A non-nil error ends the pass.
type Source interface {
	Name() string
	Records(ctx context.Context) iter.Seq2[record.Record, error]
}

// rowRecord builds a record from an extracted row, or reports false when the
// row has no usable text.
func rowRecord(id, source string, row map[string]any, extract Extractor) (record.Record, bool) {
	text, category := extract(row)
	text = Clean(text)
	if text == "" {
		return record.Record{}, false
	}
	return record.Record{
		ID:             id,
		Text:           text,
		SourceDataset:  source,
		SourceCategory: category,
		Fields:         row,
	}, true
}
