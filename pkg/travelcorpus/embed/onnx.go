package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
)

const (
	defaultMaxSeqLen  = 256
	defaultDimensions = 384 // all-MiniLM-L6-v2
)

var ortInit sync.Mutex

// OrtEmbedder runs a sentence-transformer ONNX export locally: WordPiece
// tokenization, one forward pass, attention-masked mean pooling and L2
// normalization.
type OrtEmbedder struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tk        *tokenizer.Tokenizer
	modelID   string
	maxSeqLen int
	dims      int
}

// NewOrt loads the model and tokenizer named in cfg.
func NewOrt(cfg Config) (*OrtEmbedder, error) {
	for _, p := range []string{cfg.ModelPath, cfg.TokenizerPath} {
		if p == "" {
			return nil, fmt.Errorf("%w: onnx provider needs model_path and tokenizer_path", internalerr.ErrInvalidConfig)
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrEmbedderUnavailable, err)
		}
	}
	if err := initRuntime(cfg.OrtLibrary); err != nil {
		return nil, err
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"}, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	o := &OrtEmbedder{
		session:   session,
		tk:        tk,
		modelID:   cfg.Model,
		maxSeqLen: cfg.MaxSeqLen,
		dims:      cfg.Dimensions,
	}
	if o.modelID == "" {
		o.modelID = filepath.Base(cfg.ModelPath)
	}
	if o.maxSeqLen <= 0 {
		o.maxSeqLen = defaultMaxSeqLen
	}
	if o.dims <= 0 {
		o.dims = defaultDimensions
	}
	return o, nil
}

func initRuntime(lib string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("%w: onnxruntime: %v", internalerr.ErrEmbedderUnavailable, err)
	}
	return nil
}

// EmbedText encodes a single text.
func (o *OrtEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, errors.New("embedder is closed")
	}

	enc, err := o.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, mask, types := enc.Ids, enc.AttentionMask, enc.TypeIds
	if len(ids) > o.maxSeqLen {
		ids, mask, types = ids[:o.maxSeqLen], mask[:o.maxSeqLen], types[:o.maxSeqLen]
	}
	n := len(ids)
	if n == 0 {
		return nil, errors.New("tokenize: no tokens")
	}

	shape := ort.NewShape(1, int64(n))
	idsT, err := ort.NewTensor(shape, toInt64(ids))
	if err != nil {
		return nil, err
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, toInt64(mask))
	if err != nil {
		return nil, err
	}
	defer maskT.Destroy()
	typesT, err := ort.NewTensor(shape, toInt64(types))
	if err != nil {
		return nil, err
	}
	defer typesT.Destroy()
	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(o.dims)))
	if err != nil {
		return nil, err
	}
	defer out.Destroy()

	if err := o.session.Run([]ort.Value{idsT, maskT, typesT}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	vec := meanPool(out.GetData(), mask, o.dims)
	l2Normalize(vec)
	return vec, nil
}

// ModelID implements Embedder.
func (o *OrtEmbedder) ModelID() string { return o.modelID }

// Close releases the session. The shared runtime environment stays up.
func (o *OrtEmbedder) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

// meanPool averages token vectors whose attention mask is set. hidden is
// laid out token-major: hidden[t*dims+d].
func meanPool(hidden []float32, mask []int, dims int) []float32 {
	vec := make([]float32, dims)
	var count float32
	for t, m := range mask {
		if m == 0 || (t+1)*dims > len(hidden) {
			continue
		}
		row := hidden[t*dims : (t+1)*dims]
		for d, v := range row {
			vec[d] += v
		}
		count++
	}
	if count == 0 {
		return vec
	}
	for d := range vec {
		vec[d] /= count
	}
	return vec
}

func l2Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
