package diet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	verdict bool
	err     error
	calls   int
}

func (s *stubModel) Predict(string) (bool, error) {
	s.calls++
	return s.verdict, s.err
}

func (s *stubModel) Name() string { return "stub" }

func newTestEngine(t *testing.T, models map[Predicate]Model) *Engine {
	t.Helper()
	e, err := NewEngine(EngineConfig{}, DefaultVocabulary(), models, nil)
	require.NoError(t, err)
	return e
}

func TestKetoBlockPrecedesAllow(t *testing.T) {
	e := newTestEngine(t, nil)
	// Phrase contains both a blocked term (sugar) and an allowed one (bacon);
	// block wins.
	tr := e.TraceIngredient(Keto, "1 cup sugar and bacon")
	assert.False(t, tr.Verdict)
	assert.Equal(t, TierBlock, tr.Tier)
	assert.Equal(t, "sugar", tr.Term)
}

func TestKetoAllow(t *testing.T) {
	e := newTestEngine(t, nil)
	tr := e.TraceIngredient(Keto, "4 slices bacon")
	assert.True(t, tr.Verdict)
	assert.Equal(t, TierAllow, tr.Tier)
}

func TestVeganPlantPrefixPrecedesBlock(t *testing.T) {
	e := newTestEngine(t, nil)
	// "milk" alone is blocked, but the almond prefix marks a plant milk.
	tr := e.TraceIngredient(Vegan, "1 cup almond milk")
	assert.True(t, tr.Verdict)
	assert.Equal(t, TierPlantBase, tr.Tier)
	assert.Equal(t, "almond", tr.Term)
}

func TestVeganBlock(t *testing.T) {
	e := newTestEngine(t, nil)
	tr := e.TraceIngredient(Vegan, "2 eggs")
	assert.False(t, tr.Verdict)
	assert.Equal(t, TierBlock, tr.Tier)
	assert.Equal(t, "egg", tr.Term)
}

func TestPredicatesIndependent(t *testing.T) {
	e := newTestEngine(t, nil)
	// Bacon is keto-true and vegan-false at the same time.
	assert.True(t, e.ClassifyIngredient(Keto, "4 slices bacon"))
	assert.False(t, e.ClassifyIngredient(Vegan, "4 slices bacon"))
}

func TestDegradedModeDefaultsFalse(t *testing.T) {
	e := newTestEngine(t, nil)
	tr := e.TraceIngredient(Keto, "dragon fruit")
	assert.False(t, tr.Verdict)
	assert.Equal(t, TierDefault, tr.Tier)
	assert.False(t, e.HasModel(Keto))
}

func TestModelFallbackFires(t *testing.T) {
	m := &stubModel{verdict: true}
	e := newTestEngine(t, map[Predicate]Model{Keto: m})
	tr := e.TraceIngredient(Keto, "dragon fruit")
	assert.True(t, tr.Verdict)
	assert.Equal(t, TierModel, tr.Tier)
	assert.Equal(t, 1, m.calls)
}

func TestModelErrorStaysAtIngredientGranularity(t *testing.T) {
	m := &stubModel{err: errors.New("boom")}
	e := newTestEngine(t, map[Predicate]Model{Vegan: m})
	tr := e.TraceIngredient(Vegan, "dragon fruit")
	assert.False(t, tr.Verdict)
	assert.Equal(t, TierDefault, tr.Tier)
}

func TestModelNotConsultedWhenRuleFires(t *testing.T) {
	m := &stubModel{verdict: true}
	e := newTestEngine(t, map[Predicate]Model{Keto: m})
	assert.False(t, e.ClassifyIngredient(Keto, "1 cup sugar"))
	assert.Equal(t, 0, m.calls)
}

func TestClassifyDeterministic(t *testing.T) {
	e := newTestEngine(t, nil)
	for _, raw := range []string{"2 cups chopped walnuts", "1 cup sugar", "4 slices bacon"} {
		first := e.ClassifyIngredient(Keto, raw)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, e.ClassifyIngredient(Keto, raw), "raw=%q", raw)
		}
	}
}

func TestPreprocessMemoized(t *testing.T) {
	e := newTestEngine(t, nil)
	before := e.CacheLen()
	p1 := e.Preprocess("2 cups chopped walnuts")
	assert.Equal(t, before+1, e.CacheLen())
	p2 := e.Preprocess("2 cups chopped walnuts")
	assert.Equal(t, p1, p2)
	assert.Equal(t, before+1, e.CacheLen())
}

func TestPreprocessFallsBackToRawWhenScrubEmpties(t *testing.T) {
	e := newTestEngine(t, nil)
	// Scrubbing removes everything; the pre-scrub text must survive so the
	// ingredient is not silently dropped.
	assert.NotEqual(t, "", e.Preprocess("2 cups"))
}

func TestRecipeVacuousTruth(t *testing.T) {
	e := newTestEngine(t, nil)
	for _, pred := range Predicates {
		assert.True(t, e.RecipeSatisfies(pred, SequenceField(nil)))
		assert.True(t, e.RecipeSatisfies(pred, TextField("")))
	}
}

func TestRecipeAllMustPass(t *testing.T) {
	e := newTestEngine(t, nil)
	field := SequenceField([]string{"2 eggs", "1 cup flour"})
	// Eggs are keto-allowed but flour is blocked; the conjunction fails.
	assert.False(t, e.RecipeSatisfies(Keto, field))
	// Both are animal/blocked for vegan.
	assert.False(t, e.RecipeSatisfies(Vegan, field))
}

func TestRecipeTracesCoverEveryIngredient(t *testing.T) {
	e := newTestEngine(t, nil)
	traces := e.RecipeTraces(Keto, SequenceField([]string{"2 eggs", "1 cup flour"}))
	require.Len(t, traces, 2)
	assert.Equal(t, "2 eggs", traces[0].Raw)
	assert.Equal(t, "1 cup flour", traces[1].Raw)
}

func TestRecipeSatisfiesBracketedField(t *testing.T) {
	e := newTestEngine(t, nil)
	assert.False(t, e.RecipeSatisfies(Keto, TextField("['egg', 'flour']")))
}
