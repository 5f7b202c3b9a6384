package diet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"dietcheck/emb"
)

// Model is a binary classifier consulted only when the deterministic
// vocabularies are inconclusive. Implementations accept a canonical phrase
// and return the predicate verdict. Any classifier satisfying this contract
// is interchangeable.
type Model interface {
	// Predict classifies one canonical phrase.
	Predict(phrase string) (bool, error)
	// Name identifies the model in logs and traces.
	Name() string
}

// LinearModel is a TF-IDF bag-of-words linear classifier loaded from a JSON
// artifact exported by offline training. Pure Go, deterministic, and
// read-only after load.
type LinearModel struct {
	name      string
	vocab     map[string]int
	idf       []float64
	coef      []float64
	intercept float64
}

type linearArtifact struct {
	Predicate  string         `json:"predicate"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Coef       []float64      `json:"coef"`
	Intercept  float64        `json:"intercept"`
}

// LoadLinearModel reads a linear classifier artifact from disk.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var art linearArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if len(art.Vocabulary) == 0 {
		return nil, fmt.Errorf("model artifact %s has an empty vocabulary", path)
	}
	if len(art.IDF) != len(art.Vocabulary) || len(art.Coef) != len(art.Vocabulary) {
		return nil, fmt.Errorf("model artifact %s has mismatched dimensions", path)
	}
	for term, idx := range art.Vocabulary {
		if idx < 0 || idx >= len(art.Coef) {
			return nil, fmt.Errorf("model artifact %s: term %q out of range", path, term)
		}
	}
	name := art.Predicate
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &LinearModel{
		name:      "linear/" + name,
		vocab:     art.Vocabulary,
		idf:       art.IDF,
		coef:      art.Coef,
		intercept: art.Intercept,
	}, nil
}

// Name implements Model.
func (m *LinearModel) Name() string { return m.name }

// Predict computes the l2-normalized TF-IDF representation of the phrase and
// returns the sign of the linear decision function.
func (m *LinearModel) Predict(phrase string) (bool, error) {
	counts := make(map[int]float64)
	for _, tok := range modelTokens(phrase) {
		if idx, ok := m.vocab[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return false, nil
	}
	var norm float64
	for idx, tf := range counts {
		w := tf * m.idf[idx]
		counts[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	score := m.intercept
	for idx, w := range counts {
		score += (w / norm) * m.coef[idx]
	}
	return score > 0, nil
}

var nonAlnumRE = regexp.MustCompile(`[^a-z0-9\s]`)

// modelTokens mirrors the normalization applied during training: lowercase,
// non-alphanumerics to spaces, whitespace split.
func modelTokens(phrase string) []string {
	t := nonAlnumRE.ReplaceAllString(strings.ToLower(phrase), " ")
	return strings.Fields(t)
}

// DefaultModelDirs are the well-known relative locations probed for trained
// artifacts, in order.
var DefaultModelDirs = []string{"models", filepath.Join("..", "models")}

// ModelLoader discovers one fallback model per predicate. Each probe
// directory is checked for a linear artifact "<predicate>.json" first, then
// for a labeled exemplar set "<predicate>.exemplars.json" classified with the
// ONNX sentence encoder described by Encoder. The encoder is opened once, on
// the first exemplar hit, and shared by every exemplar model.
type ModelLoader struct {
	Logger  *zap.Logger
	Encoder emb.Config

	// openEmbedder overrides encoder construction in tests.
	openEmbedder func(emb.Config) (Embedder, error)
}

// Load probes the given directories (or DefaultModelDirs when none are
// given). A missing artifact is a configured degraded mode, not an error: it
// is logged once here and the predicate runs rule-only with a default-false
// fallback.
func (l *ModelLoader) Load(ctx context.Context, dirs ...string) map[Predicate]Model {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(dirs) == 0 {
		dirs = DefaultModelDirs
	}
	open := l.openEmbedder
	if open == nil {
		open = func(cfg emb.Config) (Embedder, error) { return NewCachingEmbedder(cfg) }
	}
	var (
		shared    Embedder
		sharedErr error
	)
	embedder := func() (Embedder, error) {
		if shared == nil && sharedErr == nil {
			shared, sharedErr = open(l.Encoder)
		}
		return shared, sharedErr
	}

	models := make(map[Predicate]Model, len(Predicates))
	for _, pred := range Predicates {
		model, path, err := l.probe(ctx, string(pred), dirs, embedder)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("model artifact not found, running rule-only",
					zap.String("predicate", string(pred)),
					zap.Strings("searched", dirs))
			} else {
				logger.Warn("model artifact unusable, running rule-only",
					zap.String("predicate", string(pred)),
					zap.Error(err))
			}
			continue
		}
		logger.Info("loaded fallback model",
			zap.String("predicate", string(pred)),
			zap.String("path", path),
			zap.String("model", model.Name()))
		models[pred] = model
	}
	return models
}

func (l *ModelLoader) probe(ctx context.Context, name string, dirs []string, embedder func() (Embedder, error)) (Model, string, error) {
	var lastErr error = os.ErrNotExist
	for _, dir := range dirs {
		if path := filepath.Join(dir, name+".json"); fileExists(path) {
			model, err := LoadLinearModel(path)
			if err != nil {
				lastErr = err
				continue
			}
			return model, path, nil
		}
		if path := filepath.Join(dir, name+".exemplars.json"); fileExists(path) {
			model, err := loadExemplarModel(ctx, name, path, embedder)
			if err != nil {
				lastErr = err
				continue
			}
			return model, path, nil
		}
	}
	return nil, "", lastErr
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
