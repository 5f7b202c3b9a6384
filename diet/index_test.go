package diet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExemplarIndexSearchRanksByCosine(t *testing.T) {
	idx := &exemplarIndex{}
	idx.Replace([]exemplarItem{
		{phrase: "bacon", match: true, vector: []float32{1, 0}},
		{phrase: "sugar", match: false, vector: []float32{0, 1}},
		{phrase: "butter", match: true, vector: []float32{0.9, 0.1}},
	})
	require.Equal(t, 3, idx.Size())

	hits := idx.Search([]float32{1, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "bacon", hits[0].phrase)
	assert.Equal(t, "butter", hits[1].phrase)
	assert.Greater(t, hits[0].score, hits[1].score)
}

func TestExemplarIndexSearchEdgeCases(t *testing.T) {
	idx := &exemplarIndex{}
	assert.Nil(t, idx.Search([]float32{1, 0}, 3))

	idx.Replace([]exemplarItem{{phrase: "bacon", match: true, vector: []float32{1, 0}}})
	assert.Nil(t, idx.Search(nil, 3))
	assert.Nil(t, idx.Search([]float32{1, 0}, 0))
	assert.Len(t, idx.Search([]float32{1, 0}, 10), 1)
}

func TestExemplarIndexTieBreaksByPhrase(t *testing.T) {
	idx := &exemplarIndex{}
	idx.Replace([]exemplarItem{
		{phrase: "walnut", vector: []float32{1, 0}},
		{phrase: "almond", vector: []float32{2, 0}}, // same direction, same cosine
	})
	hits := idx.Search([]float32{1, 0}, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "almond", hits[0].phrase)
}

func TestExemplarIndexReplaceClonesVectors(t *testing.T) {
	vec := []float32{1, 0}
	idx := &exemplarIndex{}
	idx.Replace([]exemplarItem{{phrase: "bacon", match: true, vector: vec}})
	vec[0] = 0 // caller mutation must not reach the index
	hits := idx.Search([]float32{1, 0}, 1)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, float64(hits[0].score), 1e-6)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, float64(cosineSimilarity([]float32{1, 2}, []float32{2, 4})), 1e-6)
	assert.InDelta(t, 0.0, float64(cosineSimilarity([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.InDelta(t, -1.0, float64(cosineSimilarity([]float32{1, 0}, []float32{-1, 0})), 1e-6)
	assert.Equal(t, float32(0), cosineSimilarity(nil, []float32{1}))
	assert.Equal(t, float32(0), cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
