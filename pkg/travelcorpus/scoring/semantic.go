package scoring

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ReferenceSentences describe actual travel intent. Input text is compared
// against all of them and the mean similarity is the semantic score.
var ReferenceSentences = []string{
	"planning a trip to visit a new city",
	"booking a hotel for my vacation",
	"what are the best places to travel",
	"I want to travel to Paris",
	"how do I get a tourist visa",
	"packing list for my holiday",
	"best tourist attractions to visit",
	"booking a flight for my trip",
	"travel tips for backpackers",
	"itinerary for a 5 day vacation",
	"where should I go on vacation",
	"recommend travel destinations",
}

// TextEmbedder is the part of an embedding backend the semantic scorer needs.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// SemanticScorer rates how close a text is to travel intent.
type SemanticScorer interface {
	Score(ctx context.Context, text string) float64
	Available() bool
}

// NullScorer is used when no embedding backend is available.
type NullScorer struct{}

// Score always returns 0.
func (NullScorer) Score(context.Context, string) float64 { return 0 }

// Available reports false.
func (NullScorer) Available() bool { return false }

// EmbeddingScorer compares text embeddings to precomputed reference vectors.
// The reference vectors are never modified after construction.
type EmbeddingScorer struct {
	embedder   TextEmbedder
	references [][]float32
	timeout    time.Duration
}

// SemanticOptions tunes the embedding scorer.
type SemanticOptions struct {
	// Timeout bounds each embedding call; zero means no bound.
	Timeout time.Duration
	// References overrides ReferenceSentences.
	References []string
	Logger     *log.Logger
}

// NewSemanticScorer picks the scorer variant once. A nil embedder or a
// failure to embed the reference set yields a NullScorer; neither is fatal.
func NewSemanticScorer(ctx context.Context, embedder TextEmbedder, opts SemanticOptions) SemanticScorer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if embedder == nil {
		logger.Printf("semantic scoring unavailable: no embedding backend")
		return NullScorer{}
	}
	refs := opts.References
	if len(refs) == 0 {
		refs = ReferenceSentences
	}
	vecs, err := embedReferences(ctx, embedder, refs)
	if err != nil {
		logger.Printf("semantic scoring unavailable: %v", err)
		return NullScorer{}
	}
	logger.Printf("semantic scorer ready with %d reference embeddings", len(vecs))
	return &EmbeddingScorer{embedder: embedder, references: vecs, timeout: opts.Timeout}
}

func embedReferences(ctx context.Context, embedder TextEmbedder, refs []string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(refs))
	for i, ref := range refs {
		vec, err := embedder.EmbedText(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("embed reference %d: %w", i, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("embed reference %d: empty vector", i)
		}
		vecs = append(vecs, vec)
	}
	return vecs, nil
}

// Available reports true.
func (s *EmbeddingScorer) Available() bool { return true }

// Score embeds the raw text and returns the mean cosine similarity to the
// reference set, clamped to [0,1]. Failures score 0.
func (s *EmbeddingScorer) Score(ctx context.Context, text string) float64 {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	vec, err := s.embedder.EmbedText(ctx, text)
	if err != nil || len(vec) == 0 {
		return 0
	}
	var sum float64
	for _, ref := range s.references {
		sum += Cosine(vec, ref)
	}
	return Clamp01(sum / float64(len(s.references)))
}
