package scoring

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/ontology"
)

// KeywordSaturation is the total weight at which the keyword score reaches 1.
// Two medium-or-better matches saturate it.
const KeywordSaturation = 1.5

type keywordPattern struct {
	row ontology.WeightedKeyword
	re  *regexp.Regexp
}

// KeywordScorer scores text against the keyword weight table using whole
// word matches, so "inn" never fires inside "winning". Letters and digits of
// any script count as word characters, so "hotel" does not fire in "hotelé".
type KeywordScorer struct {
	patterns []keywordPattern
}

// KeywordResult is the outcome of one keyword scoring pass.
type KeywordResult struct {
	Score       float64
	TotalWeight float64
	Matched     []string
	Categories  map[string]int
}

// NewKeywordScorer precompiles one boundary pattern per table row.
func NewKeywordScorer(table *ontology.WeightTable) *KeywordScorer {
	rows := table.Rows()
	s := &KeywordScorer{patterns: make([]keywordPattern, 0, len(rows))}
	for _, row := range rows {
		s.patterns = append(s.patterns, keywordPattern{
			row: row,
			re:  regexp.MustCompile(wholeWord(row.Keyword)),
		})
	}
	return s
}

// Score expects normalized text. Every keyword contributes its weight at most
// once no matter how often it occurs.
func (s *KeywordScorer) Score(text string) KeywordResult {
	res := KeywordResult{Categories: make(map[string]int)}
	for _, p := range s.patterns {
		if !p.re.MatchString(text) {
			continue
		}
		res.Matched = append(res.Matched, p.row.Keyword)
		res.Categories[p.row.Tag]++
		res.TotalWeight += p.row.Weight
	}
	sort.Strings(res.Matched)
	res.Score = min(res.TotalWeight/KeywordSaturation, 1.0)
	return res
}

const (
	wordClass    = `[\p{L}\p{N}_]`
	nonWordClass = `[^\p{L}\p{N}_]`
)

// wholeWord builds a pattern with Unicode-aware word boundaries around kw.
// RE2's \b only knows ASCII word characters.
func wholeWord(kw string) string {
	first, _ := utf8.DecodeRuneInString(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)
	before, after := wordClass, wordClass
	if isWordRune(first) {
		before = `(?:^|` + nonWordClass + `)`
	}
	if isWordRune(last) {
		after = `(?:$|` + nonWordClass + `)`
	}
	return before + regexp.QuoteMeta(kw) + after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
