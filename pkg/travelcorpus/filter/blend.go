package filter

// Band edges and semantic gates of the hybrid policy.
const (
	StrongBand = 0.4
	WeakBand   = 0.1

	strongSemanticGate = 0.15
	mediumSemanticGate = 0.1
	weakSemanticGate   = 0.28
)

// Blend merges the keyword/phrase combined score with the semantic score.
// How much the semantic signal is trusted depends on how strongly the
// keywords already committed:
//
//	combined >= 0.4        keywords lead; weak semantics halve the score
//	0.1 <= combined < 0.4  weighted blend; no semantic support rejects
//	combined < 0.1         semantics alone decide
func Blend(combined, semantic float64) float64 {
	switch {
	case combined >= StrongBand:
		if semantic < strongSemanticGate {
			return combined * 0.5
		}
		return 0.8*combined + 0.2*semantic
	case combined >= WeakBand:
		if semantic < mediumSemanticGate {
			return 0
		}
		return 0.55*combined + 0.45*semantic
	default:
		if semantic >= weakSemanticGate {
			return semantic * 0.95
		}
		return 0
	}
}
