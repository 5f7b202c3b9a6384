package diet

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// EngineConfig carries the tunables of the classification pipeline.
type EngineConfig struct {
	// MaxPhraseLen bounds noun runs accepted as candidate phrases.
	MaxPhraseLen int `json:"maxPhraseLen"`
	// CacheSize bounds the preprocess memoization cache.
	CacheSize int `json:"cacheSize"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *EngineConfig) ApplyDefaults() {
	if c.MaxPhraseLen <= 0 {
		c.MaxPhraseLen = DefaultMaxPhraseLen
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
}

// Engine evaluates the dietary predicates over raw ingredient strings. The
// vocabulary and models are fixed at construction and never mutated, so one
// Engine is safe for concurrent use across workers.
type Engine struct {
	cfg    EngineConfig
	vocab  compiledVocabulary
	models map[Predicate]Model
	cache  *phraseCache
	logger *zap.Logger
}

// NewEngine builds an engine from an explicit vocabulary and optional
// per-predicate fallback models. A nil model for a predicate is the degraded
// rule-only mode: unmatched phrases default to false.
func NewEngine(cfg EngineConfig, vocab Vocabulary, models map[Predicate]Model, logger *zap.Logger) (*Engine, error) {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := newPhraseCache(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("init phrase cache: %w", err)
	}
	e := &Engine{
		cfg:    cfg,
		vocab:  compileVocabulary(vocab),
		models: make(map[Predicate]Model, len(models)),
		cache:  cache,
		logger: logger,
	}
	for pred, m := range models {
		if m != nil {
			e.models[pred] = m
		}
	}
	return e, nil
}

// Preprocess runs normalization plus phrase extraction and memoizes the
// result keyed by the exact raw string. If scrubbing removes everything the
// pre-scrub text is used instead, so an ingredient is never silently dropped.
func (e *Engine) Preprocess(raw string) string {
	if phrase, ok := e.cache.get(raw); ok {
		return phrase
	}
	scrubbed := Normalize(raw)
	if scrubbed == "" {
		scrubbed = strings.ToLower(strings.TrimSpace(raw))
	}
	phrase := ExtractPhrase(scrubbed, e.cfg.MaxPhraseLen)
	e.cache.put(raw, phrase)
	return phrase
}

// ClassifyIngredient evaluates one predicate for one raw ingredient string.
func (e *Engine) ClassifyIngredient(pred Predicate, raw string) bool {
	return e.TraceIngredient(pred, raw).Verdict
}

// TraceIngredient is ClassifyIngredient plus a record of which tier decided,
// for diagnostics.
func (e *Engine) TraceIngredient(pred Predicate, raw string) Trace {
	phrase := e.Preprocess(raw)
	tr := Trace{Raw: raw, Phrase: phrase, Predicate: pred}
	switch pred {
	case Vegan:
		e.decideVegan(&tr)
	default:
		e.decideKeto(&tr)
	}
	return tr
}

// decideKeto applies block → allow → model → false. Block runs first so a
// high-carbohydrate staple is never rescued by a co-occurring allow term.
func (e *Engine) decideKeto(tr *Trace) {
	if term, ok := matchTerm(tr.Phrase, e.vocab.ketoBlock); ok {
		tr.Verdict, tr.Tier, tr.Term = false, TierBlock, term
		return
	}
	if term, ok := matchTerm(tr.Phrase, e.vocab.ketoAllow); ok {
		tr.Verdict, tr.Tier, tr.Term = true, TierAllow, term
		return
	}
	e.decideByModel(tr)
}

// decideVegan applies plant-base first-token → block → model → false. The
// plant-base rule runs first so compounds like "almond milk" pass even
// though "milk" alone is blocked.
func (e *Engine) decideVegan(tr *Trace) {
	toks := strings.Fields(tr.Phrase)
	if len(toks) > 0 {
		if _, ok := e.vocab.plantBases[toks[0]]; ok {
			tr.Verdict, tr.Tier, tr.Term = true, TierPlantBase, toks[0]
			return
		}
	}
	for _, tok := range toks {
		if _, ok := e.vocab.veganBlock[tok]; ok {
			tr.Verdict, tr.Tier, tr.Term = false, TierBlock, tok
			return
		}
	}
	e.decideByModel(tr)
}

func (e *Engine) decideByModel(tr *Trace) {
	model, ok := e.models[tr.Predicate]
	if !ok {
		tr.Verdict, tr.Tier = false, TierDefault
		return
	}
	verdict, err := model.Predict(tr.Phrase)
	if err != nil {
		// Partial failure stays at ingredient granularity.
		e.logger.Debug("model prediction failed, defaulting to false",
			zap.String("predicate", string(tr.Predicate)),
			zap.String("phrase", tr.Phrase),
			zap.Error(err))
		tr.Verdict, tr.Tier = false, TierDefault
		return
	}
	tr.Verdict, tr.Tier = verdict, TierModel
}

// RecipeSatisfies reduces a recipe's ingredients field to one verdict: true
// iff every ingredient individually satisfies the predicate. Short-circuits
// on the first failure. An empty ingredient list is vacuously true; this is
// deliberate, preserved behavior (see DESIGN.md).
func (e *Engine) RecipeSatisfies(pred Predicate, field RawField) bool {
	for _, ing := range ToList(field) {
		if !e.ClassifyIngredient(pred, ing) {
			return false
		}
	}
	return true
}

// RecipeTraces evaluates every ingredient without short-circuiting and
// returns the per-ingredient traces, for debugging a verdict.
func (e *Engine) RecipeTraces(pred Predicate, field RawField) []Trace {
	ings := ToList(field)
	out := make([]Trace, 0, len(ings))
	for _, ing := range ings {
		out = append(out, e.TraceIngredient(pred, ing))
	}
	return out
}

// CacheLen reports how many preprocess results are currently memoized.
func (e *Engine) CacheLen() int { return e.cache.len() }

// HasModel reports whether a fallback model is loaded for the predicate.
func (e *Engine) HasModel(pred Predicate) bool {
	_, ok := e.models[pred]
	return ok
}
