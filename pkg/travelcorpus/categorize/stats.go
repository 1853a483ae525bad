package categorize

import "github.com/cognicore/travelcorpus/pkg/travelcorpus/record"

// CategoryStats aggregates category assignments.
type CategoryStats struct {
	Total int
	// CategoryDistribution counts records per category label.
	CategoryDistribution map[string]int
	AverageConfidence    float64

	confidenceSum float64
}

// NewCategoryStats returns empty statistics.
func NewCategoryStats() CategoryStats {
	return CategoryStats{CategoryDistribution: make(map[string]int)}
}

// Observe counts one categorized record.
func (s *CategoryStats) Observe(rec record.Record) {
	if s.CategoryDistribution == nil {
		s.CategoryDistribution = make(map[string]int)
	}
	s.Total++
	s.CategoryDistribution[rec.TravelCategory]++
	s.confidenceSum += rec.CategoryConfidence
	s.AverageConfidence = s.confidenceSum / float64(s.Total)
}

// Merge adds other into s.
func (s *CategoryStats) Merge(other CategoryStats) {
	if s.CategoryDistribution == nil {
		s.CategoryDistribution = make(map[string]int)
	}
	s.Total += other.Total
	s.confidenceSum += other.confidenceSum
	for k, v := range other.CategoryDistribution {
		s.CategoryDistribution[k] += v
	}
	s.AverageConfidence = 0
	if s.Total > 0 {
		s.AverageConfidence = s.confidenceSum / float64(s.Total)
	}
}
