package price

import (
	"sync"
	"time"
)

// Cache is a process-local quote cache keyed by canonical symbol.
// Expiry is checked on read against the entry's stored timestamp, so
// lifetime is testable without a background sweeper.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	price    float64
	storedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached price for a symbol if the entry is still
// inside its TTL.
func (c *Cache) Get(symbol string) (float64, bool) {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		return 0, false
	}
	return entry.price, true
}

// Put stores a price, stamping it with the current time.
func (c *Cache) Put(symbol string, price float64) {
	c.mu.Lock()
	c.entries[symbol] = cacheEntry{price: price, storedAt: c.now()}
	c.mu.Unlock()
}

// Sweep drops expired entries so a long-lived cache does not grow
// without bound.
func (c *Cache) Sweep() {
	now := c.now()
	c.mu.Lock()
	for symbol, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, symbol)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of entries, expired included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
