package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/categorize"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/embed"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/filter"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/ingest"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/ontology"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/scoring"
)

// Loader builds the scoring components described by a Config.
type Loader struct {
	Config *Config
	Logger *log.Logger
	// Embedder, when set, is used instead of opening the configured backend.
	Embedder embed.Embedder
}

// Components holds the wired scoring stack.
type Components struct {
	Ontology    *ontology.Ontology
	Weights     *ontology.WeightTable
	Keywords    *scoring.KeywordScorer
	Phrases     *scoring.PhraseScorer
	Embedder    embed.Embedder
	Semantic    scoring.SemanticScorer
	Keyword     *filter.Filter
	Hybrid      *filter.Filter
	Categorizer *categorize.Categorizer
	Registry    *ingest.Registry
}

// Close releases the embedding backend.
func (c *Components) Close() error {
	if c.Embedder == nil {
		return nil
	}
	return c.Embedder.Close()
}

// Load builds every component. A missing or failing embedding backend is
// not an error: the hybrid filter then behaves like the keyword filter.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	comp := &Components{}

	// Ontology
	if cfg.OntologyPath != "" {
		o, err := LoadOntology(cfg.OntologyPath)
		if err != nil {
			return nil, fmt.Errorf("load ontology: %w", err)
		}
		comp.Ontology = o
	} else {
		comp.Ontology = ontology.Default()
	}
	comp.Weights = ontology.BuildWeightTable(comp.Ontology, ontology.DefaultTiers())
	comp.Keywords = scoring.NewKeywordScorer(comp.Weights)
	comp.Phrases = scoring.NewPhraseScorer()

	// Embeddings are only opened when some dataset can use them.
	var sem scoring.SemanticScorer = scoring.NullScorer{}
	if cfg.UseSemantic {
		emb := l.Embedder
		if emb == nil {
			opened, err := embed.Open(cfg.EmbedConfig())
			switch {
			case errors.Is(err, internalerr.ErrEmbedderUnavailable):
				logger.Printf("semantic scoring disabled: %v", err)
			case err != nil:
				return nil, fmt.Errorf("open embedder: %w", err)
			default:
				emb = opened
			}
		}
		if emb != nil {
			comp.Embedder = emb
			sem = scoring.NewSemanticScorer(ctx, emb, scoring.SemanticOptions{
				Timeout: cfg.Embedder.Timeout,
				Logger:  logger,
			})
		}
	}
	comp.Semantic = sem

	comp.Keyword = filter.New(comp.Keywords, comp.Phrases, nil, filter.Options{
		MinConfidence: cfg.MinConfidence,
		Logger:        logger,
	})
	comp.Hybrid = filter.New(comp.Keywords, comp.Phrases, sem, filter.Options{
		MinConfidence: cfg.MinConfidence,
		UseSemantic:   cfg.UseSemantic,
		Logger:        logger,
	})

	cat, err := categorize.New(categorize.DefaultCategories())
	if err != nil {
		comp.Close()
		return nil, fmt.Errorf("build categorizer: %w", err)
	}
	comp.Categorizer = cat

	hf := ingest.HFOptions{
		BaseURL:  cfg.HF.BaseURL,
		Token:    cfg.HF.Token,
		PageSize: cfg.HF.PageSize,
	}
	if cfg.HF.Timeout > 0 {
		hf.Client = &http.Client{Timeout: cfg.HF.Timeout}
	}
	comp.Registry = ingest.NewRegistry(hf, logger)

	return comp, nil
}
