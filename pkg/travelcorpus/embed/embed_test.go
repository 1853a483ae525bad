package embed

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
)

type countingEmbedder struct {
	calls  int
	closed bool
}

func (c *countingEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) ModelID() string { return "counting" }

func (c *countingEmbedder) Close() error {
	c.closed = true
	return nil
}

func TestOpenProviders(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"empty", Config{}, internalerr.ErrEmbedderUnavailable},
		{"none", Config{Provider: "none"}, internalerr.ErrEmbedderUnavailable},
		{"unknown", Config{Provider: "word2vec"}, internalerr.ErrInvalidConfig},
		{"openai without key", Config{Provider: "openai"}, internalerr.ErrEmbedderUnavailable},
		{"onnx without paths", Config{Provider: "onnx"}, internalerr.ErrInvalidConfig},
		{"onnx missing model", Config{
			Provider:      "onnx",
			ModelPath:     filepath.Join(t.TempDir(), "model.onnx"),
			TokenizerPath: filepath.Join(t.TempDir(), "tokenizer.json"),
		}, internalerr.ErrEmbedderUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emb, err := Open(tc.cfg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if emb != nil {
				t.Errorf("expected nil embedder on error")
			}
		})
	}
}

func TestOpenOllamaIsCached(t *testing.T) {
	emb, err := Open(Config{Provider: "Ollama"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer emb.Close()
	if _, ok := emb.(*CachedEmbedder); !ok {
		t.Fatalf("expected cached embedder, got %T", emb)
	}
	if emb.ModelID() != "ollama:"+DefaultOllamaModel {
		t.Errorf("model id = %q", emb.ModelID())
	}
}

func TestCachedEmbedderMemory(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCached(inner, "")
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	ctx := context.Background()
	first, _ := c.EmbedText(ctx, "trip to rome")
	first[0] = 99 // callers get copies
	second, _ := c.EmbedText(ctx, "trip to rome")
	if inner.calls != 1 {
		t.Errorf("expected one backend call, got %d", inner.calls)
	}
	if second[0] != float32(len("trip to rome")) {
		t.Errorf("cached vector was mutated: %v", second)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
	if err := c.Close(); err != nil || !inner.closed {
		t.Errorf("Close should close the backend")
	}
}

func TestCachedEmbedderDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	inner := &countingEmbedder{}
	c, err := NewCached(inner, dir)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	want, _ := c.EmbedText(ctx, "hostel in lisbon")

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".bin") {
		t.Fatalf("expected one cache file, got %v (%v)", entries, err)
	}

	fresh := &countingEmbedder{}
	c2, _ := NewCached(fresh, dir)
	got, err := c2.EmbedText(ctx, "hostel in lisbon")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if fresh.calls != 0 {
		t.Errorf("expected disk hit, backend called %d times", fresh.calls)
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("disk vector %v, want %v", got, want)
	}
}

func TestFuncEmbedder(t *testing.T) {
	f := NewFuncEmbedder("test", func(_ context.Context, text string) ([]float32, error) {
		if text == "" {
			return nil, errors.New("empty")
		}
		return []float32{1, 2, 3}, nil
	})
	vec, err := f.EmbedText(context.Background(), "beach")
	if err != nil || len(vec) != 3 {
		t.Fatalf("got %v, %v", vec, err)
	}
	if _, err := f.EmbedText(context.Background(), ""); err == nil {
		t.Error("expected error to propagate")
	}
}

func TestOpenAIEmbedder(t *testing.T) {
	var gotPath, gotModel, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.25, -0.5, 1.0]}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 3, "total_tokens": 3}
		}`))
	}))
	defer srv.Close()

	e, err := NewOpenAI("sk-test", "", srv.URL)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	vec, err := e.EmbedText(context.Background(), "flights to tokyo")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.25 || vec[1] != -0.5 || vec[2] != 1 {
		t.Errorf("vector = %v", vec)
	}
	if !strings.HasSuffix(gotPath, "/embeddings") {
		t.Errorf("path = %q", gotPath)
	}
	if gotModel != "text-embedding-3-small" {
		t.Errorf("model = %q", gotModel)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if e.ModelID() != "openai:text-embedding-3-small" {
		t.Errorf("model id = %q", e.ModelID())
	}
}

func TestMeanPoolAndNormalize(t *testing.T) {
	hidden := []float32{
		1, 3, // token 0
		3, 5, // token 1
		100, 100, // padding
	}
	vec := meanPool(hidden, []int{1, 1, 0}, 2)
	if vec[0] != 2 || vec[1] != 4 {
		t.Fatalf("mean pool = %v", vec)
	}
	l2Normalize(vec)
	norm := math.Sqrt(float64(vec[0]*vec[0] + vec[1]*vec[1]))
	if math.Abs(norm-1) > 1e-6 {
		t.Errorf("norm = %v", norm)
	}

	zero := meanPool(hidden, []int{0, 0, 0}, 2)
	l2Normalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("all-masked input should pool to zero, got %v", zero)
	}
}
