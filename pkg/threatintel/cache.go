package threatintel

import (
	"phishguard/pkg/domain"
	"sync"
)

// MemoryCache is an unbounded, process-lifetime Cache guarded by a RWMutex.
// Entries are never evicted.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[domain.CandidateURL]domain.ThreatQueryResult
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[domain.CandidateURL]domain.ThreatQueryResult)}
}

// Get implements Cache.
func (c *MemoryCache) Get(URL domain.CandidateURL) (domain.ThreatQueryResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res, ok := c.items[URL]

	return res, ok
}

// Set implements Cache.
func (c *MemoryCache) Set(URL domain.CandidateURL, res domain.ThreatQueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[URL] = res
}

// Len returns the number of cached URLs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

var _ Cache = (*MemoryCache)(nil)
