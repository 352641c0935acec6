// Package memory implements domain.OpportunityCache with an in-process map.
// It is the default cache when no Redis address is configured.
package memory

import (
	"context"
	"sync"

	"github.com/dkotenko/skinarb/internal/domain"
)

// Cache is a mutex-guarded per-key store of scan results. Entries carry their
// write time; staleness is the caller's call, so forced refreshes can bypass
// the age check without a second cache type.
type Cache struct {
	mu      sync.Mutex
	entries map[string]domain.CachedEntry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]domain.CachedEntry)}
}

// Get returns the entry for key and whether one exists.
func (c *Cache) Get(_ context.Context, key string) (domain.CachedEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry, ok, nil
}

// Set stores the entry under key, replacing any previous one.
func (c *Cache) Set(_ context.Context, key string, entry domain.CachedEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

// Delete removes the entry for key if present.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
