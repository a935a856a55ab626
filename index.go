package img2ascii

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// blank is the internal stand-in for the space character. It is what the
// index stores for " " and what unmatched cells resolve to; it becomes an
// ordinary space only when a frame is joined into text.
const blank = ""

// Index is a read-only nearest-neighbour index over an AlphabetProfile.
// It never changes after construction and is safe for concurrent use.
type Index struct {
	profile *AlphabetProfile
	vectors *OrderedMap[string, []float64]
	tree    *KdTree[string]
}

// NewIndex validates profile and builds its k-d tree. A repeated character
// contributes only its first vector.
func NewIndex(profile *AlphabetProfile) (*Index, error) {
	if profile == nil || len(profile.Characters) == 0 {
		return nil, ErrEmptyAlphabet
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	vectors := profile.VectorMap()
	points := make([][]float64, 0, vectors.Len())
	chars := make([]string, 0, vectors.Len())
	vectors.Iterate(func(ch string, v []float64) {
		if ch == " " {
			ch = blank
		}
		points = append(points, v)
		chars = append(chars, ch)
	})

	tree, err := NewKdTree(points, chars)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	return &Index{profile: profile, vectors: vectors, tree: tree}, nil
}

// Profile returns the profile the index was built from.
func (ix *Index) Profile() *AlphabetProfile { return ix.profile }

// Sampling returns the sampling configuration query vectors must follow.
func (ix *Index) Sampling() SamplingConfig { return ix.profile.Metadata.SamplingConfig }

// Len returns the number of distinct characters indexed.
func (ix *Index) Len() int { return ix.tree.Len() }

// Dimensions returns the query vector length.
func (ix *Index) Dimensions() int { return ix.tree.Dimensions() }

// Characters returns the distinct indexed characters in profile order.
func (ix *Index) Characters() []string { return ix.vectors.Keys() }

// Vector returns the stored vector of char.
func (ix *Index) Vector(char string) ([]float64, bool) {
	return ix.vectors.Get(char)
}

// Match returns the character whose vector is closest to vector. Blank is
// returned as the empty string, as is any result not present in the
// profile's vector map.
func (ix *Index) Match(vector []float64) (string, error) {
	n, err := ix.tree.FindNearest(vector)
	if err != nil {
		return blank, err
	}
	if n == nil || n.Data == blank {
		return blank, nil
	}
	if _, ok := ix.vectors.Get(n.Data); !ok {
		return blank, nil
	}
	return n.Data, nil
}

// Nearest returns the k characters closest to vector in ascending distance.
// Blank is reported as " ".
func (ix *Index) Nearest(vector []float64, k int) ([]Neighbor[string], error) {
	neighbors, err := ix.tree.KNearest(vector, k)
	if err != nil {
		return nil, err
	}
	for i := range neighbors {
		if neighbors[i].Data == blank {
			neighbors[i].Data = " "
		}
	}
	return neighbors, nil
}

// IndexCache holds built indexes for the life of the process. Concurrent
// first callers for the same key share a single build.
type IndexCache struct {
	mu      sync.RWMutex
	indexes map[string]*Index
	group   singleflight.Group
	logger  *log.Logger
}

// NewIndexCache creates an empty cache. A nil logger uses log.Default().
func NewIndexCache(logger *log.Logger) *IndexCache {
	if logger == nil {
		logger = log.Default()
	}
	return &IndexCache{
		indexes: make(map[string]*Index),
		logger:  logger,
	}
}

// Get returns the index cached under key, building it from the profile
// returned by load on first use. A failed build is not cached.
func (c *IndexCache) Get(key string, load func() (*AlphabetProfile, error)) (*Index, error) {
	c.mu.RLock()
	ix, ok := c.indexes[key]
	c.mu.RUnlock()
	if ok {
		return ix, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		ix, ok := c.indexes[key]
		c.mu.RUnlock()
		if ok {
			return ix, nil
		}

		profile, err := load()
		if err != nil {
			return nil, err
		}
		ix, err = NewIndex(profile)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.indexes[key] = ix
		c.mu.Unlock()

		c.logger.Debug("index built",
			"key", key,
			"characters", ix.Len(),
			"dimensions", ix.Dimensions())
		return ix, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

// Len returns the number of cached indexes.
func (c *IndexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indexes)
}

var defaultIndexCache = sync.OnceValue(func() *IndexCache {
	return NewIndexCache(nil)
})

// DefaultIndexCache returns the process-wide index cache.
func DefaultIndexCache() *IndexCache {
	return defaultIndexCache()
}

// LoadIndex loads the profile at path and returns its index from the
// process-wide cache, building it only once per absolute path.
func LoadIndex(path string) (*Index, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}
	return DefaultIndexCache().Get(key, func() (*AlphabetProfile, error) {
		return LoadProfile(path)
	})
}
