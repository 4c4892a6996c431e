package searchcache

import (
	"sync"
	"testing"
)

func TestLookup_Miss(t *testing.T) {
	c := New(4)
	if _, ok := c.Lookup([]byte("nonexistent")); ok {
		t.Fatal("expected miss on empty cache")
	}
	if _, misses := c.Stats(); misses != 1 {
		t.Fatalf("misses = %d, want 1", misses)
	}
}

func TestStore_ThenLookup(t *testing.T) {
	c := New(4)
	c.Store([]byte(".exe"), []int{16, 64})

	got, ok := c.Lookup([]byte(".exe"))
	if !ok {
		t.Fatal("expected hit after store")
	}
	if len(got) != 2 || got[0] != 16 || got[1] != 64 {
		t.Fatalf("offsets = %v, want [16 64]", got)
	}
}

func TestStore_UpdateExisting(t *testing.T) {
	c := New(4)
	c.Store([]byte("VID_"), []int{1})
	c.Store([]byte("VID_"), []int{2, 3})

	got, _ := c.Lookup([]byte("VID_"))
	if len(got) != 2 {
		t.Fatalf("offsets = %v, want [2 3]", got)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := New(3)
	c.Store([]byte("a"), []int{1})
	c.Store([]byte("b"), []int{2})
	c.Store([]byte("c"), []int{3})

	// touch "a" so "b" becomes least recently used
	c.Lookup([]byte("a"))
	c.Store([]byte("d"), []int{4})

	if _, ok := c.Lookup([]byte("b")); ok {
		t.Fatal("expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Lookup([]byte(k)); !ok {
			t.Fatalf("expected %q to survive eviction", k)
		}
	}
}

func TestZeroCapacityDisables(t *testing.T) {
	c := New(0)
	c.Store([]byte("x"), []int{1})
	if _, ok := c.Lookup([]byte("x")); ok {
		t.Fatal("zero-capacity cache should never hit")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestGetOrCompute_ScansOnce(t *testing.T) {
	c := New(8)
	calls := 0
	scan := func(p []byte) []int {
		calls++
		return []int{len(p)}
	}
	for range 3 {
		got := c.GetOrCompute([]byte("SCCA"), scan)
		if len(got) != 1 || got[0] != 4 {
			t.Fatalf("offsets = %v, want [4]", got)
		}
	}
	if calls != 1 {
		t.Fatalf("scan called %d times, want 1", calls)
	}
	if hits, _ := c.Stats(); hits != 2 {
		t.Fatalf("hits = %d, want 2", hits)
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	got := c.GetOrCompute([]byte("x"), func([]byte) []int { return []int{7} })
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("offsets = %v, want [7]", got)
	}
	c.Reset()
	if c.Len() != 0 {
		t.Fatal("nil cache should report zero length")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := []byte{byte('a' + i%4)}
			for range 100 {
				c.GetOrCompute(key, func([]byte) []int { return []int{i % 4} })
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}
}
