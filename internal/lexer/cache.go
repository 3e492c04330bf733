package lexer

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/maypok86/otter"

	"github.com/mvp-joe/polyast/internal/token"
)

// DefaultCacheCapacity is the number of distinct lines kept when no capacity
// is configured.
const DefaultCacheCapacity = 10000

type cacheEntry struct {
	text   string
	tokens []token.Token
}

// LineCache memoizes line tokenization keyed by the xxhash of the line text.
// Safe for concurrent use. Cached slices are shared and must not be modified.
type LineCache struct {
	cache otter.Cache[uint64, cacheEntry]
}

// NewLineCache creates a cache holding up to capacity lines.
func NewLineCache(capacity int) (*LineCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	c, err := otter.MustBuilder[uint64, cacheEntry](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build line cache: %w", err)
	}
	return &LineCache{cache: c}, nil
}

// Get returns the cached tokens for text.
func (c *LineCache) Get(text string) ([]token.Token, bool) {
	e, ok := c.cache.Get(xxhash.Sum64String(text))
	if !ok || e.text != text {
		return nil, false
	}
	return e.tokens, true
}

// Set stores the tokens for text.
func (c *LineCache) Set(text string, toks []token.Token) {
	c.cache.Set(xxhash.Sum64String(text), cacheEntry{text: text, tokens: toks})
}

// Stats reports cache hits and misses.
func (c *LineCache) Stats() (hits, misses int64) {
	s := c.cache.Stats()
	return s.Hits(), s.Misses()
}

// Close releases the cache's background resources.
func (c *LineCache) Close() {
	c.cache.Close()
}
