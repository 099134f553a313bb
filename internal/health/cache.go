package health

import (
	"context"
	"sync"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

// CacheStore keeps the last reference height fetched per network.
type CacheStore interface {
	Load(ctx context.Context, network string) (domain.CacheEntry, bool, error)
	Store(ctx context.Context, network string, entry domain.CacheEntry) error
}

// MemoryCache is a process-local CacheStore.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]domain.CacheEntry),
	}
}

// Load returns the entry for network, if any.
func (c *MemoryCache) Load(_ context.Context, network string) (domain.CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[network]
	return entry, ok, nil
}

// Store overwrites the entry for network.
func (c *MemoryCache) Store(_ context.Context, network string, entry domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[network] = entry
	return nil
}
