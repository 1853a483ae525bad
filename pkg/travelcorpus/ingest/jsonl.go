package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

const maxLineBytes = 16 << 20

// JSONLSource streams one JSON object per line from a local file.
// Malformed lines are logged and skipped.
type JSONLSource struct {
	Path    string
	Extract Extractor
	Logger  *log.Logger
}

// NewJSONLSource reads path with AutoExtractor.
func NewJSONLSource(path string) *JSONLSource {
	return &JSONLSource{Path: path, Extract: AutoExtractor}
}

// Name is the file name without extension, used when rows carry no
// source_dataset of their own.
func (s *JSONLSource) Name() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Records implements Source.
func (s *JSONLSource) Records(ctx context.Context) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		logger := s.Logger
		if logger == nil {
			logger = log.Default()
		}
		extract := s.Extract
		if extract == nil {
			extract = AutoExtractor
		}

		f, err := os.Open(s.Path)
		if err != nil {
			yield(record.Record{}, fmt.Errorf("open %s: %w", s.Path, err))
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		name := s.Name()
		lineNo := 0
		for sc.Scan() {
			lineNo++
			if err := ctx.Err(); err != nil {
				yield(record.Record{}, err)
				return
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			var row map[string]any
			if err := json.Unmarshal([]byte(line), &row); err != nil {
				logger.Printf("Warning: skipping malformed JSON at line %d in %s: %v", lineNo, s.Path, err)
				continue
			}
			source := stringField(row, "source_dataset")
			if source == "" {
				source = name
			}
			id := stringField(row, "id")
			if id == "" {
				id = fmt.Sprintf("%s:%d", name, lineNo)
			}
			rec, ok := rowRecord(id, source, row, extract)
			if !ok {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(record.Record{}, fmt.Errorf("read %s: %w", s.Path, err))
		}
	}
}
