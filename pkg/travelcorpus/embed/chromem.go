package embed

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

// DefaultOllamaModel is used when no model is configured for Ollama.
const DefaultOllamaModel = "nomic-embed-text"

// FuncEmbedder adapts a chromem-go embedding function.
type FuncEmbedder struct {
	fn    chromem.EmbeddingFunc
	model string
}

// NewFuncEmbedder wraps fn under the given model id.
func NewFuncEmbedder(model string, fn chromem.EmbeddingFunc) *FuncEmbedder {
	return &FuncEmbedder{fn: fn, model: model}
}

// NewOllama embeds through a local Ollama server. An empty baseURL uses
// chromem's default (http://localhost:11434/api).
func NewOllama(model, baseURL string) *FuncEmbedder {
	if model == "" {
		model = DefaultOllamaModel
	}
	return NewFuncEmbedder("ollama:"+model, chromem.NewEmbeddingFuncOllama(model, baseURL))
}

// EmbedText calls the wrapped function.
func (f *FuncEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := f.fn(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", f.model, err)
	}
	return vec, nil
}

// ModelID implements Embedder.
func (f *FuncEmbedder) ModelID() string { return f.model }

// Close implements Embedder.
func (f *FuncEmbedder) Close() error { return nil }
