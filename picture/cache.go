package picture

import "sync"

type cacheKey struct {
	picture string
	opt     Options
}

// Cache memoizes compiled clauses. Layouts tend to reuse a handful of
// pictures across many fields, so lookups dominate.
type Cache struct {
	mu sync.RWMutex
	m  map[cacheKey]*Clause
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{m: make(map[cacheKey]*Clause)} }

var defaultCache = NewCache()

// Cached compiles picture through a process-wide cache.
func Cached(picture string, opt Options) (*Clause, error) {
	return defaultCache.Compile(picture, opt)
}

// Compile returns the cached clause for (picture, opt), compiling it on first
// use. Errors are not cached.
func (c *Cache) Compile(picture string, opt Options) (*Clause, error) {
	k := cacheKey{picture: picture, opt: opt}
	c.mu.RLock()
	if cl, ok := c.m[k]; ok {
		c.mu.RUnlock()
		return cl, nil
	}
	c.mu.RUnlock()

	cl, err := CompileWith(picture, opt)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.m[k]; ok {
		return prev, nil
	}
	if c.m == nil {
		c.m = make(map[cacheKey]*Clause)
	}
	c.m[k] = cl
	return cl, nil
}

// Len reports the number of cached clauses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
