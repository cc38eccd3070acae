package price

import (
	"testing"
	"time"
)

func TestCacheGetPut(t *testing.T) {
	c := NewCache(time.Minute)

	if _, ok := c.Get("NVDA"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Put("NVDA", 123.45)
	got, ok := c.Get("NVDA")
	if !ok || got != 123.45 {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Put("NVDA", 100)

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("NVDA"); !ok {
		t.Fatal("entry inside TTL should hit")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("NVDA"); ok {
		t.Fatal("entry past TTL should miss")
	}

	// Refreshing restarts the clock.
	c.Put("NVDA", 101)
	if got, ok := c.Get("NVDA"); !ok || got != 101 {
		t.Fatalf("Get after refresh = %v, %v", got, ok)
	}
}

func TestCacheSweep(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Put("NVDA", 100)
	now = now.Add(2 * time.Minute)
	c.Put("AAPL", 200)

	c.Sweep()
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get("AAPL"); !ok {
		t.Fatal("fresh entry dropped by sweep")
	}
}
