package travelcorpus

import (
	"fmt"
	"sort"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/categorize"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/export"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/filter"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// SourceCount is the filter outcome for one source dataset.
type SourceCount struct {
	Total         int
	TravelRelated int
	Method        record.FilterMethod
}

// RunStats accumulates a run. Every field is a sum, so stopping after any
// record leaves consistent numbers and partial stats merge by addition.
type RunStats struct {
	Filter   filter.FilterStats
	Category categorize.CategoryStats
	// SourceDistribution counts categorized records per source dataset.
	SourceDistribution map[string]int
	Sources            map[string]SourceCount
}

// NewRunStats returns empty statistics.
func NewRunStats() RunStats {
	return RunStats{
		Filter:             filter.NewFilterStats(),
		Category:           categorize.NewCategoryStats(),
		SourceDistribution: make(map[string]int),
		Sources:            make(map[string]SourceCount),
	}
}

// ObserveFiltered counts a record after the relatedness filter.
func (s *RunStats) ObserveFiltered(rec record.Record, method record.FilterMethod) {
	s.Filter.Observe(rec)
	if s.Sources == nil {
		s.Sources = make(map[string]SourceCount)
	}
	sc := s.Sources[rec.SourceDataset]
	sc.Total++
	if rec.IsTravel {
		sc.TravelRelated++
	}
	sc.Method = method
	s.Sources[rec.SourceDataset] = sc
}

// ObserveCategorized counts a record after categorization.
func (s *RunStats) ObserveCategorized(rec record.Record) {
	s.Category.Observe(rec)
	if s.SourceDistribution == nil {
		s.SourceDistribution = make(map[string]int)
	}
	s.SourceDistribution[rec.SourceDataset]++
}

// Merge adds other into s.
func (s *RunStats) Merge(other RunStats) {
	s.Filter.Merge(other.Filter)
	s.Category.Merge(other.Category)
	if s.SourceDistribution == nil {
		s.SourceDistribution = make(map[string]int)
	}
	for k, v := range other.SourceDistribution {
		s.SourceDistribution[k] += v
	}
	if s.Sources == nil {
		s.Sources = make(map[string]SourceCount)
	}
	for k, v := range other.Sources {
		cur := s.Sources[k]
		cur.Total += v.Total
		cur.TravelRelated += v.TravelRelated
		if v.Method != "" {
			cur.Method = v.Method
		}
		s.Sources[k] = cur
	}
}

// SourceNames returns the observed sources sorted by name.
func (s RunStats) SourceNames() []string {
	names := make([]string, 0, len(s.Sources))
	for n := range s.Sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SourceLine is the one-line per-source report.
func (s RunStats) SourceLine(source string) string {
	sc := s.Sources[source]
	return fmt.Sprintf("%s: %d/%d records (%.2f%%) are travel-related [%s]",
		source, sc.TravelRelated, sc.Total, percent(sc.TravelRelated, sc.Total), sc.Method)
}

// Metadata renders the statistics as the exported run document.
func (s RunStats) Metadata(runID string) export.Metadata {
	meta := export.Metadata{
		RunID:                     runID,
		TotalRecordsLoaded:        s.Filter.Total,
		TravelRecordsFound:        s.Filter.TravelRelated,
		TravelPercentage:          percent(s.Filter.TravelRelated, s.Filter.Total),
		CategorizedRecords:        s.Category.Total,
		CategoryDistribution:      copyCounts(s.Category.CategoryDistribution),
		SourceDistribution:        copyCounts(s.SourceDistribution),
		AverageConfidenceScore:    export.Round3(s.Filter.AverageConfidence),
		AverageCategoryConfidence: export.Round3(s.Category.AverageConfidence),
		FilterMethods:             make(map[string]int, len(s.Filter.FilterMethods)),
	}
	for m, n := range s.Filter.FilterMethods {
		meta.FilterMethods[string(m)] = n
	}
	for _, name := range s.SourceNames() {
		sc := s.Sources[name]
		meta.PerSource = append(meta.PerSource, export.SourceStats{
			Source:        name,
			Total:         sc.Total,
			TravelRelated: sc.TravelRelated,
			Percentage:    percent(sc.TravelRelated, sc.Total),
			FilterMethod:  string(sc.Method),
		})
	}
	return meta
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
