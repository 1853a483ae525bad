package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Metadata summarizes one pipeline run.
type Metadata struct {
	RunID                     string         `json:"run_id,omitempty"`
	TotalRecordsLoaded        int            `json:"total_records_loaded"`
	TravelRecordsFound        int            `json:"travel_records_found"`
	TravelPercentage          float64        `json:"travel_percentage"`
	CategorizedRecords        int            `json:"categorized_records"`
	ExportedRecords           int            `json:"exported_records"`
	CategoryDistribution      map[string]int `json:"category_distribution"`
	SourceDistribution        map[string]int `json:"source_distribution"`
	AverageConfidenceScore    float64        `json:"average_confidence_score"`
	AverageCategoryConfidence float64        `json:"average_category_confidence"`
	FilterMethods             map[string]int `json:"filter_methods,omitempty"`
	PerSource                 []SourceStats  `json:"per_source,omitempty"`
}

// SourceStats is the per-dataset breakdown.
type SourceStats struct {
	Source        string  `json:"source"`
	Total         int     `json:"total"`
	TravelRelated int     `json:"travel_related"`
	Percentage    float64 `json:"percentage"`
	FilterMethod  string  `json:"filter_method"`
}

// WriteMetadata encodes meta as indented JSON.
func WriteMetadata(w io.Writer, meta Metadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads a metadata document written by WriteMetadata.
func ReadMetadata(path string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("read metadata %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	return meta, nil
}

// PrintSummary writes the human readable run summary.
func PrintSummary(w io.Writer, meta Metadata) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "TRAVEL DATA PIPELINE - SUMMARY")
	fmt.Fprintln(w, rule)
	if meta.RunID != "" {
		fmt.Fprintf(w, "Run ID: %s\n", meta.RunID)
	}
	fmt.Fprintf(w, "Total Records Loaded: %d\n", meta.TotalRecordsLoaded)
	fmt.Fprintf(w, "Travel Records Found: %d\n", meta.TravelRecordsFound)
	fmt.Fprintf(w, "Travel Percentage: %.2f%%\n", meta.TravelPercentage)
	fmt.Fprintf(w, "Avg Confidence Score: %.3f\n", meta.AverageConfidenceScore)
	fmt.Fprintf(w, "Avg Category Confidence: %.3f\n", meta.AverageCategoryConfidence)

	fmt.Fprintln(w, "\nCategory Distribution:")
	for _, kv := range sortedCounts(meta.CategoryDistribution) {
		pct := 0.0
		if meta.CategorizedRecords > 0 {
			pct = float64(kv.count) / float64(meta.CategorizedRecords) * 100
		}
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", kv.key, kv.count, pct)
	}
	if len(meta.PerSource) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, s := range meta.PerSource {
			fmt.Fprintf(w, "  %s: %d/%d (%.2f%%) [%s]\n", s.Source, s.TravelRelated, s.Total, s.Percentage, s.FilterMethod)
		}
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders by count descending, then key.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
