// Package embed provides the sentence embedding backends used for semantic
// travel scoring.
package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	ModelID() string
	Close() error
}

// Provider names accepted by Open.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
)

// Config selects and configures an embedding backend.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string

	// onnx only
	ModelPath     string
	TokenizerPath string
	OrtLibrary    string
	MaxSeqLen     int
	Dimensions    int

	CacheDir string
}

// Open builds the configured backend wrapped in a vector cache. The "none"
// provider (or an empty one) reports ErrEmbedderUnavailable so callers can
// fall back to keyword scoring.
func Open(cfg Config) (Embedder, error) {
	var (
		inner Embedder
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderNone:
		return nil, fmt.Errorf("%w: no embedding provider configured", internalerr.ErrEmbedderUnavailable)
	case ProviderOllama:
		inner = NewOllama(cfg.Model, cfg.BaseURL)
	case ProviderOpenAI:
		inner, err = NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderONNX:
		inner, err = NewOrt(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", internalerr.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewCached(inner, cfg.CacheDir)
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
