package filter

import "github.com/cognicore/travelcorpus/pkg/travelcorpus/record"

// FilterStats aggregates relatedness decisions over a batch. Counts are
// additive so partial batches can be merged.
type FilterStats struct {
	Total         int
	TravelRelated int
	// AverageConfidence is the mean final score of accepted records.
	AverageConfidence float64
	// CategoryDistribution counts accepted records per matched ontology tag.
	CategoryDistribution map[string]int
	FilterMethods        map[record.FilterMethod]int

	confidenceSum float64
}

// NewFilterStats returns empty statistics.
func NewFilterStats() FilterStats {
	return FilterStats{
		CategoryDistribution: make(map[string]int),
		FilterMethods: map[record.FilterMethod]int{
			record.MethodKeyword: 0,
			record.MethodHybrid:  0,
		},
	}
}

// Observe counts one scored record.
func (s *FilterStats) Observe(rec record.Record) {
	s.Total++
	if !rec.IsTravel {
		return
	}
	s.TravelRelated++
	s.confidenceSum += rec.ConfidenceScore
	s.AverageConfidence = s.confidenceSum / float64(s.TravelRelated)
	method := record.MethodKeyword
	if rec.TravelMetadata != nil {
		if rec.TravelMetadata.FilterMethod != "" {
			method = rec.TravelMetadata.FilterMethod
		}
		for tag := range rec.TravelMetadata.MatchedCategories {
			s.CategoryDistribution[tag]++
		}
	}
	s.FilterMethods[method]++
}

// Merge adds other into s.
func (s *FilterStats) Merge(other FilterStats) {
	if s.CategoryDistribution == nil {
		s.CategoryDistribution = make(map[string]int)
	}
	if s.FilterMethods == nil {
		s.FilterMethods = make(map[record.FilterMethod]int)
	}
	s.Total += other.Total
	s.TravelRelated += other.TravelRelated
	s.confidenceSum += other.confidenceSum
	for k, v := range other.CategoryDistribution {
		s.CategoryDistribution[k] += v
	}
	for k, v := range other.FilterMethods {
		s.FilterMethods[k] += v
	}
	s.AverageConfidence = 0
	if s.TravelRelated > 0 {
		s.AverageConfidence = s.confidenceSum / float64(s.TravelRelated)
	}
}
