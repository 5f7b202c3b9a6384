package diet

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the preprocess memoization cache. The pipeline is
// a pure function of the raw string, so eviction only costs recomputation.
const DefaultCacheSize = 8192

// phraseCache memoizes raw-ingredient → canonical-phrase results. Backed by
// a bounded, concurrency-safe LRU so long batch runs cannot grow memory
// without limit.
type phraseCache struct {
	lru *lru.Cache[string, string]
}

func newPhraseCache(size int) (*phraseCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &phraseCache{lru: c}, nil
}

func (c *phraseCache) get(raw string) (string, bool) {
	return c.lru.Get(raw)
}

func (c *phraseCache) put(raw, phrase string) {
	c.lru.Add(raw, phrase)
}

func (c *phraseCache) len() int {
	return c.lru.Len()
}
