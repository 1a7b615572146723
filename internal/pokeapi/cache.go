package pokeapi

import (
	"context"
	"sync"
)

// Cache memoizes successful fetches in memory. Failures are never cached.
// All methods are safe for concurrent use.
type Cache struct {
	next    Fetcher
	mu      sync.RWMutex
	records map[int]Pokemon
}

// NewCache wraps next with an unbounded in-memory cache keyed by catalog id.
//
// Precondition: next must be non-nil.
func NewCache(next Fetcher) *Cache {
	return &Cache{next: next, records: make(map[int]Pokemon)}
}

// FetchPokemon returns the cached record for id, fetching it on first use.
func (c *Cache) FetchPokemon(ctx context.Context, id int) (Pokemon, error) {
	c.mu.RLock()
	p, ok := c.records[id]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}
	p, err := c.next.FetchPokemon(ctx, id)
	if err != nil {
		return Pokemon{}, err
	}
	c.mu.Lock()
	c.records[id] = p
	c.mu.Unlock()
	return p, nil
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
