package scoring

import "regexp"

// PhraseSaturation is the match count at which the phrase score reaches 1.
const PhraseSaturation = 5.0

var travelPhrases = []string{
	`traveling\s+to`,
	`trip\s+to`,
	`visit\s+\w+`,
	`vacation\s+in`,
	`holiday\s+in`,
	`tour\s+of`,
	`explore\s+\w+`,
	`travel\s+guide`,
	`travel\s+tips`,
	`tourist\s+attractions`,
	`best\s+places\s+to`,
	`how\s+to\s+get\s+to`,
	`getting\s+around`,
}

// PhraseScorer counts multi-word travel intent phrases.
type PhraseScorer struct {
	patterns []*regexp.Regexp
}

// PhraseResult is the outcome of one phrase scoring pass.
type PhraseResult struct {
	Score float64
	Count int
}

// NewPhraseScorer compiles the fixed phrase patterns case-insensitively.
func NewPhraseScorer() *PhraseScorer {
	s := &PhraseScorer{patterns: make([]*regexp.Regexp, 0, len(travelPhrases))}
	for _, p := range travelPhrases {
		s.patterns = append(s.patterns, regexp.MustCompile(`(?i)`+p))
	}
	return s
}

// Score counts all non-overlapping matches of every pattern. Matches are not
// deduplicated across patterns.
func (s *PhraseScorer) Score(text string) PhraseResult {
	count := 0
	for _, re := range s.patterns {
		count += len(re.FindAllStringIndex(text, -1))
	}
	return PhraseResult{
		Count: count,
		Score: min(float64(count)/PhraseSaturation, 1.0),
	}
}
