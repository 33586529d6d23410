package cache

import (
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache(WithMaxSize(10), WithCleanupInterval(time.Minute))
	defer mc.Close()

	mc.Set("k", 42, time.Minute)
	v, ok := mc.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("expected 42, got %v (present=%v)", v, ok)
	}

	if _, ok := mc.Get("missing"); ok {
		t.Fatalf("missing key must not be present")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(WithMaxSize(10), WithCleanupInterval(time.Minute))
	defer mc.Close()

	mc.Set("k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := mc.Get("k"); ok {
		t.Fatalf("expired entry must not be returned")
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMaxSize(2), WithCleanupInterval(time.Minute))
	defer mc.Close()

	mc.Set("a", 1, time.Minute)
	time.Sleep(2 * time.Millisecond)
	mc.Set("b", 2, time.Minute)
	time.Sleep(2 * time.Millisecond)
	mc.Get("a") // refresh a, making b the LRU entry
	time.Sleep(2 * time.Millisecond)
	mc.Set("c", 3, time.Minute)

	if _, ok := mc.Get("b"); ok {
		t.Fatalf("least recently used entry should have been evicted")
	}
	if _, ok := mc.Get("a"); !ok {
		t.Fatalf("recently used entry must survive eviction")
	}
	if mc.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", mc.Len())
	}
}

func TestMemoryCacheNonPositiveTTL(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	mc.Set("k", "v", 0)
	if _, ok := mc.Get("k"); ok {
		t.Fatalf("zero ttl must not store")
	}
}
