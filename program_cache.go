package props

import "sync"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the container type.
func WithProgramCache(cache ProgramCache) TypeOption {
	return func(cfg *typeConfig) {
		cfg.programCache = cache
	}
}

// MemoryProgramCache is a ProgramCache backed by an in-memory map, safe for
// concurrent use.
type MemoryProgramCache struct {
	mu    sync.RWMutex
	store map[string]any
}

// NewMemoryProgramCache returns an empty in-memory program cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{store: map[string]any{}}
}

func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.store[key]
	return value, ok
}

func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}
