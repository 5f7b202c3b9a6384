package diet

import (
	"math"
	"sort"
	"sync"
)

// Exemplar is a labeled training phrase used by the embedding fallback model.
type Exemplar struct {
	Phrase string `json:"phrase"`
	Match  bool   `json:"match"`
}

type exemplarItem struct {
	phrase string
	match  bool
	vector []float32
}

type exemplarHit struct {
	phrase string
	match  bool
	score  float32
}

// exemplarIndex is a brute-force cosine-similarity index over labeled
// exemplar vectors. Read-mostly: Replace swaps the whole set atomically.
type exemplarIndex struct {
	mu    sync.RWMutex
	items []exemplarItem
}

func (idx *exemplarIndex) Replace(items []exemplarItem) {
	cloned := make([]exemplarItem, len(items))
	for i, it := range items {
		cloned[i] = exemplarItem{
			phrase: it.phrase,
			match:  it.match,
			vector: cloneVector(it.vector),
		}
	}
	idx.mu.Lock()
	idx.items = cloned
	idx.mu.Unlock()
}

func (idx *exemplarIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items)
}

// Search returns the top-k nearest exemplars by cosine similarity.
func (idx *exemplarIndex) Search(vec []float32, k int) []exemplarHit {
	idx.mu.RLock()
	items := idx.items
	idx.mu.RUnlock()
	if len(items) == 0 || len(vec) == 0 || k <= 0 {
		return nil
	}
	hits := make([]exemplarHit, 0, len(items))
	for _, it := range items {
		hits = append(hits, exemplarHit{
			phrase: it.phrase,
			match:  it.match,
			score:  cosineSimilarity(vec, it.vector),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score == hits[j].score {
			return hits[i].phrase < hits[j].phrase
		}
		return hits[i].score > hits[j].score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
