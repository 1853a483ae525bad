package record

import "strings"

// FilterMethod records which signals the relatedness filter relied on.
type FilterMethod string

const (
	// MethodKeyword means only keyword and phrase scores were used.
	MethodKeyword FilterMethod = "keyword"
	// MethodHybrid means embedding similarity was blended in.
	MethodHybrid FilterMethod = "hybrid"
)

// Record is the unit flowing through the pipeline. Ingestion fills Text and
// the source fields; the filter and the categorizer add the rest.
type Record struct {
	ID             string
	Text           string
	SourceDataset  string
	SourceCategory string
	Fields         map[string]any

	IsTravel        bool
	ConfidenceScore float64
	TravelMetadata  *ScoringMetadata

	TravelCategoryID   int
	TravelCategory     string
	CategoryConfidence float64
	CategoryDetails    *CategorizationDetails
}

// ScoringMetadata explains a relatedness decision.
type ScoringMetadata struct {
	MatchedKeywords   []string       `json:"matched_keywords"`
	MatchedCategories map[string]int `json:"matched_categories"`
	PhraseMatches     int            `json:"phrase_matches"`
	KeywordScore      float64        `json:"keyword_score"`
	PhraseScore       float64        `json:"phrase_score"`
	CombinedScore     float64        `json:"combined_score"`
	SemanticScore     float64        `json:"semantic_score"`
	FinalScore        float64        `json:"final_score"`
	FilterMethod      FilterMethod   `json:"filter_method"`
}

// CategorizationDetails explains a category assignment.
type CategorizationDetails struct {
	CategoryName    string          `json:"category_name,omitempty"`
	AllScores       map[int]float64 `json:"all_scores"`
	MatchedKeywords []string        `json:"matched_keywords"`
	OntologyMatches map[string]int  `json:"ontology_matches,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// MatchedCategories returns the ontology tag counts carried by the filter
// metadata, or nil when the record was never filtered.
func (r Record) MatchedCategories() map[string]int {
	if r.TravelMetadata == nil {
		return nil
	}
	return r.TravelMetadata.MatchedCategories
}

// Normalize lower-cases and trims text for keyword comparison.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(text))
}
