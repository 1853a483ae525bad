package embed

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
)

// OpenAIEmbedder calls the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAI creates an embedder. The model defaults to
// text-embedding-3-small; baseURL is only set for compatible gateways.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", internalerr.ErrEmbedderUnavailable)
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	m := openai.EmbeddingModel(model)
	if model == "" {
		m = openai.EmbeddingModelTextEmbedding3Small
	}
	return &OpenAIEmbedder{client: openai.NewClient(opts...), model: m}, nil
}

// EmbedText requests one embedding.
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	src := resp.Data[0].Embedding
	vec := make([]float32, len(src))
	for i, v := range src {
		vec[i] = float32(v)
	}
	return vec, nil
}

// ModelID implements Embedder.
func (e *OpenAIEmbedder) ModelID() string { return "openai:" + string(e.model) }

// Close implements Embedder.
func (e *OpenAIEmbedder) Close() error { return nil }
