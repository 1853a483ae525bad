package export

import (
	"regexp"
	"strings"
)

// answerStart finds where a model answer begins inside a conversation dump.
// Each pattern carries the offset from the match start to the cut point.
var answerStart = []struct {
	re   *regexp.Regexp
	skip int
}{
	{regexp.MustCompile(`(?i)\b(sure|certainly),`), 0},
	{regexp.MustCompile(`(?i)\b(here is|here are|here's|i'd be happy|i can help|as an ai|the following|below is)\b`), 0},
	{regexp.MustCompile(`\n1\.`), 0},
	// "...trip? 1. Day one" cuts after the question mark
	{regexp.MustCompile(`[a-z?]\s+1\.\s+[A-Z]`), 1},
	// "...as follows: The" cuts after the colon
	{regexp.MustCompile(`:\s+[A-Z]`), 1},
}

// ExtractPrompt returns the text before the earliest answer marker, or the
// whole text when there is none.
func ExtractPrompt(text string) string {
	cut := -1
	for _, p := range answerStart {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if at := loc[0] + p.skip; cut < 0 || at < cut {
			cut = at
		}
	}
	if cut < 0 {
		return text
	}
	return strings.TrimSpace(text[:cut])
}
