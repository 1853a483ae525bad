package categorize

import (
	"fmt"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/ontology"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

const (
	// DefaultCategoryID is assigned when nothing matched.
	DefaultCategoryID = ontology.CategoryTripPlanning
	// DefaultConfidence goes with DefaultCategoryID.
	DefaultConfidence = 0.5

	carryoverWeight = 0.5
)

// Categorizer assigns one of the travel categories to a record. It holds no
// mutable state and is safe for concurrent use.
type Categorizer struct {
	categories []Category
	byTag      map[string][]int
}

// New builds a categorizer from a category table. Keywords are lower-cased;
// a keyword listed twice scores twice. Ontology tags are deduplicated.
func New(categories []Category) (*Categorizer, error) {
	c := &Categorizer{
		categories: make([]Category, 0, len(categories)),
		byTag:      make(map[string][]int),
	}
	seenIDs := make(map[int]struct{}, len(categories))
	for _, cat := range categories {
		if cat.ID <= 0 {
			return nil, fmt.Errorf("%w: category id %d", internalerr.ErrInvalidInput, cat.ID)
		}
		if _, dup := seenIDs[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category id %d", internalerr.ErrInvalidInput, cat.ID)
		}
		seenIDs[cat.ID] = struct{}{}

		keywords := lowerAll(cat.Keywords)
		tags := dedupe(cat.OntologyTags)
		idx := len(c.categories)
		for _, tag := range tags {
			c.byTag[tag] = append(c.byTag[tag], idx)
		}
		c.categories = append(c.categories, Category{ID: cat.ID, Keywords: keywords, OntologyTags: tags})
	}
	return c, nil
}

// NewDefault builds a categorizer over DefaultCategories.
func NewDefault() *Categorizer {
	c, err := New(DefaultCategories())
	if err != nil {
		panic(err)
	}
	return c
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Categorize scores the record text against every category and returns the
// winner with its normalized confidence. Keyword matching is plain substring
// containment. Ontology tag counts from the filter metadata add half a point
// per match to every category declaring that tag.
func (c *Categorizer) Categorize(rec record.Record) (int, float64, record.CategorizationDetails) {
	if rec.Text == "" {
		return 0, 0, record.CategorizationDetails{Error: "No text provided"}
	}
	// whitespace-only text is not empty; it falls through to the default
	text := record.Normalize(rec.Text)

	scores := make([]float64, len(c.categories))
	scored := make([]bool, len(c.categories))
	matches := make([][]string, len(c.categories))
	for i, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				scores[i]++
				scored[i] = true
				matches[i] = append(matches[i], kw)
			}
		}
	}

	carried := rec.MatchedCategories()
	for tag, count := range carried {
		for _, idx := range c.byTag[tag] {
			scores[idx] += float64(count) * carryoverWeight
			scored[idx] = true
		}
	}

	best, maxScore := -1, 0.0
	for i, s := range scores {
		if !scored[i] {
			continue
		}
		if best < 0 || s > maxScore {
			best, maxScore = i, s
		}
	}
	if best < 0 || maxScore <= 0 {
		return DefaultCategoryID, DefaultConfidence, record.CategorizationDetails{
			CategoryName:    ontology.Label(DefaultCategoryID),
			AllScores:       map[int]float64{},
			MatchedKeywords: []string{},
			Reason:          "No specific keywords matched, defaulting to Trip Planning",
		}
	}

	normalized := make(map[int]float64)
	for i, s := range scores {
		if scored[i] {
			normalized[c.categories[i].ID] = s / maxScore
		}
	}
	winner := c.categories[best].ID
	kw := matches[best]
	if kw == nil {
		kw = []string{}
	}
	return winner, normalized[winner], record.CategorizationDetails{
		CategoryName:    ontology.Label(winner),
		AllScores:       normalized,
		MatchedKeywords: kw,
		OntologyMatches: carried,
	}
}

// Apply returns a copy of rec annotated with its category.
func (c *Categorizer) Apply(rec record.Record) record.Record {
	id, conf, details := c.Categorize(rec)
	rec.TravelCategoryID = id
	rec.TravelCategory = ontology.Label(id)
	rec.CategoryConfidence = conf
	rec.CategoryDetails = &details
	return rec
}

// CategorizeBatch annotates every record, preserving order.
func (c *Categorizer) CategorizeBatch(records []record.Record) ([]record.Record, CategoryStats) {
	stats := NewCategoryStats()
	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		rec = c.Apply(rec)
		stats.Observe(rec)
		out = append(out, rec)
	}
	return out, stats
}
