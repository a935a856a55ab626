package img2ascii

import "math"

// lookupCache memoizes index matches for a Sampler. The key of the map is
// the cell vector quantized to a fixed number of levels per dimension, so
// cells whose samples differ by less than one level share a match. Matches
// are therefore approximate; a Sampler without a cache is exact.
type lookupCache struct {
	levels  int
	entries map[string]string
	key     []byte
	hits    int
	misses  int
}

// newLookupCache creates a cache quantizing each dimension to levels
// steps over [0, 1]. levels is clamped to 2..256.
func newLookupCache(levels int) *lookupCache {
	levels = min(max(levels, 2), 256)
	return &lookupCache{
		levels:  levels,
		entries: make(map[string]string),
	}
}

// quantize builds the cache key for vector into the reusable key buffer.
func (c *lookupCache) quantize(vector []float64) []byte {
	c.key = c.key[:0]
	top := float64(c.levels - 1)
	for _, v := range vector {
		q := math.Round(math.Min(math.Max(v, 0), 1) * top)
		c.key = append(c.key, byte(q))
	}
	return c.key
}

// get returns the cached match for vector.
func (c *lookupCache) get(vector []float64) (string, bool) {
	ch, ok := c.entries[string(c.quantize(vector))]
	if ok {
		c.hits++
	}
	return ch, ok
}

// add records the match for vector. It counts as a miss.
func (c *lookupCache) add(vector []float64, ch string) {
	c.misses++
	c.entries[string(c.quantize(vector))] = ch
}

// CacheStats reports lookup cache usage.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// HitRate returns the fraction of lookups served from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (c *lookupCache) stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
