package filter

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/ontology"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/scoring"
)

// MinTextLength is the shortest trimmed text that is scored at all.
const MinTextLength = 10

const (
	keywordShare = 0.7
	phraseShare  = 0.3
)

// Options configures a Filter.
type Options struct {
	// MinConfidence is taken as given; zero accepts every scored text.
	MinConfidence float64
	// UseSemantic requests hybrid scoring. It only takes effect when the
	// semantic scorer is available.
	UseSemantic bool
	Logger      *log.Logger
}

// Filter decides whether a text is travel related.
type Filter struct {
	keywords      *scoring.KeywordScorer
	phrases       *scoring.PhraseScorer
	semantic      scoring.SemanticScorer
	minConfidence float64
	hybrid        bool
}

// New assembles a filter from prebuilt scorers. The scorers are shared and
// never mutated, so one set can back many filters.
func New(keywords *scoring.KeywordScorer, phrases *scoring.PhraseScorer, semantic scoring.SemanticScorer, opts Options) *Filter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if semantic == nil {
		semantic = scoring.NullScorer{}
	}
	hybrid := opts.UseSemantic && semantic.Available()
	if opts.UseSemantic && !hybrid {
		logger.Printf("semantic scoring requested but unavailable, using keyword filter")
	}
	return &Filter{
		keywords:      keywords,
		phrases:       phrases,
		semantic:      semantic,
		minConfidence: opts.MinConfidence,
		hybrid:        hybrid,
	}
}

// NewDefault builds a filter over the built-in ontology and tiers.
func NewDefault(semantic scoring.SemanticScorer, opts Options) *Filter {
	table := ontology.BuildWeightTable(ontology.Default(), ontology.DefaultTiers())
	return New(scoring.NewKeywordScorer(table), scoring.NewPhraseScorer(), semantic, opts)
}

// Hybrid reports whether embedding similarity takes part in decisions.
func (f *Filter) Hybrid() bool { return f.hybrid }

// MinConfidence returns the acceptance threshold.
func (f *Filter) MinConfidence() float64 { return f.minConfidence }

// Method returns the filter method stamped on scored metadata.
func (f *Filter) Method() record.FilterMethod {
	if f.hybrid {
		return record.MethodHybrid
	}
	return record.MethodKeyword
}

// Classify scores text and returns the decision, the final score and the
// scoring breakdown. Texts shorter than MinTextLength are rejected with
// empty metadata.
func (f *Filter) Classify(ctx context.Context, text string) (bool, float64, record.ScoringMetadata) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return false, 0, record.ScoringMetadata{}
	}

	normalized := record.Normalize(text)
	kw := f.keywords.Score(normalized)
	ph := f.phrases.Score(normalized)
	combined := keywordShare*kw.Score + phraseShare*ph.Score

	meta := record.ScoringMetadata{
		MatchedKeywords:   kw.Matched,
		MatchedCategories: kw.Categories,
		PhraseMatches:     ph.Count,
		KeywordScore:      kw.Score,
		PhraseScore:       ph.Score,
		CombinedScore:     combined,
		FinalScore:        combined,
		FilterMethod:      record.MethodKeyword,
	}
	if f.hybrid {
		// raw text on purpose: the embedding model sees casing and punctuation
		meta.SemanticScore = f.semantic.Score(ctx, text)
		meta.FinalScore = Blend(combined, meta.SemanticScore)
		meta.FilterMethod = record.MethodHybrid
	}
	return meta.FinalScore >= f.minConfidence, meta.FinalScore, meta
}

// Apply classifies a record and returns a copy annotated with the decision.
func (f *Filter) Apply(ctx context.Context, rec record.Record) record.Record {
	ok, score, meta := f.Classify(ctx, rec.Text)
	rec.IsTravel = ok
	rec.ConfidenceScore = score
	rec.TravelMetadata = &meta
	return rec
}

// FilterBatch keeps the travel-related records in input order.
func (f *Filter) FilterBatch(ctx context.Context, records []record.Record) ([]record.Record, FilterStats) {
	stats := NewFilterStats()
	kept := make([]record.Record, 0, len(records))
	for _, rec := range records {
		scored := f.Apply(ctx, rec)
		stats.Observe(scored)
		if scored.IsTravel {
			kept = append(kept, scored)
		}
	}
	return kept, stats
}
