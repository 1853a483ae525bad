package embed

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// CachedEmbedder memoizes vectors in memory and, when a directory is set,
// on disk so repeated runs over the same corpus skip the backend.
type CachedEmbedder struct {
	inner Embedder
	dir   string

	mu  sync.RWMutex
	mem map[string][]float32
}

// NewCached wraps inner. An empty dir keeps the cache in memory only.
func NewCached(inner Embedder, dir string) (*CachedEmbedder, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &CachedEmbedder{inner: inner, dir: dir, mem: make(map[string][]float32)}, nil
}

// EmbedText returns a cached vector or asks the wrapped backend.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	c.mu.RLock()
	vec, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return cloneVector(vec), nil
	}
	if vec, err := c.load(key); err == nil {
		c.remember(key, vec)
		return cloneVector(vec), nil
	}

	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.remember(key, vec)
	_ = c.save(key, vec)
	return cloneVector(vec), nil
}

// Len reports the number of vectors held in memory.
func (c *CachedEmbedder) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

// ModelID implements Embedder.
func (c *CachedEmbedder) ModelID() string { return c.inner.ModelID() }

// Close closes the wrapped backend and drops the memory cache.
func (c *CachedEmbedder) Close() error {
	c.mu.Lock()
	c.mem = make(map[string][]float32)
	c.mu.Unlock()
	return c.inner.Close()
}

func (c *CachedEmbedder) key(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.inner.ModelID())
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedEmbedder) remember(key string, vec []float32) {
	c.mu.Lock()
	c.mem[key] = cloneVector(vec)
	c.mu.Unlock()
}

// On-disk entries are a little-endian uint32 length followed by the float32
// components.
func (c *CachedEmbedder) load(key string) ([]float32, error) {
	if c.dir == "" {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(c.dir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("cache file too small: %s", path)
	}
	n := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != n*4 {
		return nil, fmt.Errorf("cache length mismatch: %s", path)
	}
	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

func (c *CachedEmbedder) save(key string, vec []float32) error {
	if c.dir == "" {
		return nil
	}
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf, uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+i*4:], math.Float32bits(v))
	}
	path := filepath.Join(c.dir, key+".bin")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
