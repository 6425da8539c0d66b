package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/google/uuid"
)

// MemoryCache implements AccountCache using in-memory storage.
type MemoryCache struct {
	entries map[uuid.UUID]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

type cacheEntry struct {
	accounts  []*account.Account
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[uuid.UUID]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns copies so callers cannot mutate cached accounts.
func (c *MemoryCache) Get(_ context.Context, familyID uuid.UUID) ([]*account.Account, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[familyID]
	if !exists || c.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return clone(entry.accounts), true, nil
}

func (c *MemoryCache) Set(_ context.Context, familyID uuid.UUID, accounts []*account.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[familyID] = &cacheEntry{
		accounts:  clone(accounts),
		expiresAt: c.now().Add(c.ttl),
	}
	c.evictExpired()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, familyID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, familyID)
	return nil
}

func (c *MemoryCache) Flush(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uuid.UUID]*cacheEntry)
	return nil
}

// evictExpired must be called with the write lock held.
func (c *MemoryCache) evictExpired() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func clone(in []*account.Account) []*account.Account {
	out := make([]*account.Account, len(in))
	for i, a := range in {
		cp := *a
		out[i] = &cp
	}
	return out
}

var _ cache.AccountCache = (*MemoryCache)(nil)
