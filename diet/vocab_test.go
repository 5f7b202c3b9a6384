package diet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabularyNonEmpty(t *testing.T) {
	v := DefaultVocabulary()
	assert.NotEmpty(t, v.KetoAllow)
	assert.NotEmpty(t, v.KetoBlock)
	assert.NotEmpty(t, v.VeganBlock)
	assert.NotEmpty(t, v.PlantBases)
}

func TestLoadVocabularyEmptyPathUsesDefaults(t *testing.T) {
	v, fromFile, err := LoadVocabulary("")
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.Equal(t, DefaultVocabulary(), v)
}

func TestLoadVocabularyWritesDefaultsWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules", "vocab.json")
	v, fromFile, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.Equal(t, DefaultVocabulary(), v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Vocabulary
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, DefaultVocabulary(), onDisk)
}

func TestLoadVocabularyPartialFileFallsBackPerSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ketoBlock":["tapioca"]}`), 0o644))

	v, fromFile, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.True(t, fromFile)
	assert.Equal(t, []string{"tapioca"}, v.KetoBlock)
	assert.Equal(t, DefaultVocabulary().PlantBases, v.PlantBases)
}

func TestLoadVocabularyBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	_, _, err := LoadVocabulary(path)
	assert.Error(t, err)
}

func TestMatchTermWordBoundary(t *testing.T) {
	terms := []string{"rice", "olive oil"}
	_, ok := matchTerm("price tag", terms)
	assert.False(t, ok, "rice must not fire inside price")

	term, ok := matchTerm("fried rice", terms)
	assert.True(t, ok)
	assert.Equal(t, "rice", term)

	term, ok = matchTerm("extra virgin olive oil", terms)
	assert.True(t, ok)
	assert.Equal(t, "olive oil", term)
}

func TestCompileVocabularyDedupesAndLowercases(t *testing.T) {
	c := compileVocabulary(Vocabulary{
		KetoAllow:  []string{" Bacon ", "bacon", ""},
		VeganBlock: []string{"Egg"},
		PlantBases: []string{"Almond"},
	})
	assert.Equal(t, []string{"bacon"}, c.ketoAllow)
	_, ok := c.veganBlock["egg"]
	assert.True(t, ok)
	_, ok = c.plantBases["almond"]
	assert.True(t, ok)
}
