// Package export writes scored records and run statistics to disk.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// Columns is the header of the exported table.
var Columns = []string{
	"id", "text", "source_dataset", "confidence_score",
	"travel_category_id", "travel_category", "category_confidence",
	"matched_keywords", "matched_categories",
}

// DefaultMinTextLength drops rows whose exported text is shorter than this
// once prompt extraction is applied.
const DefaultMinTextLength = 15

// CSVOptions tunes WriteCSV.
type CSVOptions struct {
	// PromptOnly cuts assistant answers that leaked into the prompt text.
	PromptOnly bool
	// MinTextLength skips shorter rows; zero keeps everything.
	MinTextLength int
}

// WriteCSV writes one row per record and returns how many were written and
// how many were skipped as too short. Ids are assigned 1..n over written
// rows.
func WriteCSV(w io.Writer, records []record.Record, opts CSVOptions) (written, skipped int, err error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		text := rec.Text
		if opts.PromptOnly {
			text = ExtractPrompt(text)
		}
		if opts.MinTextLength > 0 && len([]rune(text)) < opts.MinTextLength {
			skipped++
			continue
		}
		written++
		if err := cw.Write(row(written, text, rec)); err != nil {
			return written, skipped, fmt.Errorf("write csv row %d: %w", written, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, skipped, fmt.Errorf("flush csv: %w", err)
	}
	return written, skipped, nil
}

func row(id int, text string, rec record.Record) []string {
	var keywords, tags string
	if m := rec.TravelMetadata; m != nil {
		keywords = strings.Join(m.MatchedKeywords, ", ")
		names := make([]string, 0, len(m.MatchedCategories))
		for tag := range m.MatchedCategories {
			names = append(names, tag)
		}
		sort.Strings(names)
		tags = strings.Join(names, ", ")
	}
	return []string{
		strconv.Itoa(id),
		text,
		rec.SourceDataset,
		formatScore(rec.ConfidenceScore),
		strconv.Itoa(rec.TravelCategoryID),
		rec.TravelCategory,
		formatScore(rec.CategoryConfidence),
		keywords,
		tags,
	}
}

// Round3 rounds to three decimals.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func formatScore(x float64) string {
	return strconv.FormatFloat(Round3(x), 'f', -1, 64)
}
