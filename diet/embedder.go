package diet

import (
	"context"
	"errors"
	"sync"

	"dietcheck/emb"
)

// CachingEmbedder adapts emb.Encoder to the Embedder interface with an
// in-memory vector cache. Phrases repeat heavily across recipes, so the
// cache avoids re-running the ONNX session for identical inputs.
type CachingEmbedder struct {
	enc *emb.Encoder

	mu    sync.RWMutex
	cache map[string][]float32
}

// NewCachingEmbedder initializes the encoder from the given configuration.
func NewCachingEmbedder(cfg emb.Config) (*CachingEmbedder, error) {
	enc := &emb.Encoder{}
	if err := enc.Init(cfg); err != nil {
		return nil, err
	}
	return &CachingEmbedder{
		enc:   enc,
		cache: make(map[string][]float32),
	}, nil
}

// EmbedText embeds a single phrase, serving repeats from the cache.
func (e *CachingEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if e == nil || e.enc == nil {
		return nil, errors.New("embedder is not initialized")
	}
	e.mu.RLock()
	vec, ok := e.cache[text]
	e.mu.RUnlock()
	if ok {
		return cloneVector(vec), nil
	}
	vec, err := e.enc.Encode(text)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.cache[text] = cloneVector(vec)
	e.mu.Unlock()
	return vec, nil
}

// Close releases encoder resources.
func (e *CachingEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.enc != nil {
		e.enc.Close()
		e.enc = nil
	}
	e.cache = nil
	return nil
}
