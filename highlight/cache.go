package highlight

import "github.com/cespare/xxhash/v2"

// ClassifyFunc produces spans for one block of text.
type ClassifyFunc func(text string) []Span

// Cache memoizes per-block classification results. An entry is served
// only while its dirty bit is clear and its content hash matches the
// block's current text; either an explicit Invalidate or a text change
// forces reclassification. Entries are overwritten in place, so the
// cache never outgrows the block count.
type Cache struct {
	classify ClassifyFunc
	entries  []cacheEntry
}

type cacheEntry struct {
	valid bool
	sum   uint64
	spans []Span
}

// NewCache wraps classify with per-block memoization.
func NewCache(classify ClassifyFunc) *Cache {
	return &Cache{classify: classify}
}

// GetOrCompute returns the spans for block idx with text as its current
// content. Stale or missing entries are recomputed and stored.
func (c *Cache) GetOrCompute(idx int, text string) []Span {
	if idx < 0 {
		return nil
	}
	c.grow(idx + 1)
	sum := xxhash.Sum64String(text)
	e := &c.entries[idx]
	if e.valid && e.sum == sum {
		return e.spans
	}
	spans := c.classify(text)
	*e = cacheEntry{valid: true, sum: sum, spans: spans}
	return spans
}

// Invalidate marks one block stale. The next GetOrCompute for it
// reclassifies even if the text is unchanged.
func (c *Cache) Invalidate(idx int) {
	if idx >= 0 && idx < len(c.entries) {
		c.entries[idx].valid = false
	}
}

// InvalidateFrom marks block idx and everything after it stale. Used
// when a line insert or delete shifts the indices of later blocks.
func (c *Cache) InvalidateFrom(idx int) {
	if idx < 0 {
		idx = 0
	}
	for i := idx; i < len(c.entries); i++ {
		c.entries[i].valid = false
	}
}

// Truncate drops entries for blocks past n-1 after lines were deleted.
func (c *Cache) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(c.entries) {
		c.entries = c.entries[:n]
	}
}

// Len reports how many block slots the cache currently tracks.
func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) grow(n int) {
	for len(c.entries) < n {
		c.entries = append(c.entries, cacheEntry{})
	}
}
