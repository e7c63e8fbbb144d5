package cache

import (
	"context"
	"sync"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
)

// InMemoryFingerprintCache implements pipeline.FingerprintCache with a
// process-local set. The default for single-instance runs without Redis.
type InMemoryFingerprintCache struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

var _ pipeline.FingerprintCache = (*InMemoryFingerprintCache)(nil)

// NewInMemoryFingerprintCache creates an empty in-memory cache
func NewInMemoryFingerprintCache() *InMemoryFingerprintCache {
	return &InMemoryFingerprintCache{
		seen: make(map[string]struct{}),
	}
}

// Seen checks whether the fingerprint was marked before
func (c *InMemoryFingerprintCache) Seen(ctx context.Context, fingerprint string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.seen[fingerprint]
	return ok, nil
}

// Mark records the fingerprint
func (c *InMemoryFingerprintCache) Mark(ctx context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[fingerprint] = struct{}{}
	return nil
}
