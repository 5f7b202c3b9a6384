package diet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Embedder produces a fixed-size vector for a text. Implemented by
// emb.Encoder; the indirection keeps the model testable without ONNX.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// ExemplarModel is an embedding-based fallback classifier: the phrase is
// embedded and voted against the nearest labeled exemplar phrases. It is an
// interchangeable alternative to LinearModel for deployments that ship a
// sentence-encoder instead of a trained linear head.
type ExemplarModel struct {
	name     string
	embedder Embedder
	index    *exemplarIndex
	topK     int
}

// NewExemplarModel embeds every exemplar up front and builds the index.
// Exemplars must be non-empty; both labels should be represented for the
// vote to be meaningful.
func NewExemplarModel(ctx context.Context, name string, embedder Embedder, exemplars []Exemplar, topK int) (*ExemplarModel, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if len(exemplars) == 0 {
		return nil, errors.New("at least one exemplar is required")
	}
	if topK <= 0 {
		topK = 5
	}
	items := make([]exemplarItem, 0, len(exemplars))
	for _, ex := range exemplars {
		if ex.Phrase == "" {
			continue
		}
		vec, err := embedder.EmbedText(ctx, ex.Phrase)
		if err != nil {
			return nil, fmt.Errorf("embed exemplar %q: %w", ex.Phrase, err)
		}
		items = append(items, exemplarItem{phrase: ex.Phrase, match: ex.Match, vector: vec})
	}
	if len(items) == 0 {
		return nil, errors.New("no usable exemplars")
	}
	idx := &exemplarIndex{}
	idx.Replace(items)
	return &ExemplarModel{
		name:     "exemplar/" + name,
		embedder: embedder,
		index:    idx,
		topK:     topK,
	}, nil
}

// Name implements Model.
func (m *ExemplarModel) Name() string { return m.name }

// Predict embeds the phrase and takes a similarity-weighted vote over the
// top-k nearest exemplars.
func (m *ExemplarModel) Predict(phrase string) (bool, error) {
	vec, err := m.embedder.EmbedText(context.Background(), phrase)
	if err != nil {
		return false, fmt.Errorf("embed phrase: %w", err)
	}
	hits := m.index.Search(vec, m.topK)
	if len(hits) == 0 {
		return false, nil
	}
	var vote float32
	for _, h := range hits {
		if h.match {
			vote += h.score
		} else {
			vote -= h.score
		}
	}
	return vote > 0, nil
}

// Close releases the underlying encoder.
func (m *ExemplarModel) Close() error {
	if m.embedder != nil {
		return m.embedder.Close()
	}
	return nil
}

// loadExemplarModel builds an ExemplarModel from an exemplar file and a
// lazily-opened shared encoder.
func loadExemplarModel(ctx context.Context, name, path string, embedder func() (Embedder, error)) (Model, error) {
	exemplars, err := LoadExemplars(path)
	if err != nil {
		return nil, err
	}
	e, err := embedder()
	if err != nil {
		return nil, fmt.Errorf("open encoder: %w", err)
	}
	return NewExemplarModel(ctx, name, e, exemplars, 0)
}

// LoadExemplars reads a labeled exemplar list from a JSON file.
func LoadExemplars(path string) ([]Exemplar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exemplars: %w", err)
	}
	var out []Exemplar
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode exemplars %s: %w", path, err)
	}
	return out, nil
}
