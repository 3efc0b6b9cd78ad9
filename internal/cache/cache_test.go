package cache

import (
	"errors"
	"testing"
)

// put stores v under k unless k is already cached.
func put[K comparable, V any](tb testing.TB, c *Cache[K, V], k K, v V) {
	tb.Helper()
	if _, err := c.GetOrCreate(k, func() (V, error) { return v, nil }); err != nil {
		tb.Fatalf("GetOrCreate(%v): %v", k, err)
	}
}

func TestCacheUnboundedNeverEvicts(t *testing.T) {
	c := New[int, string](0, func(int, string) {
		t.Fatal("unbounded cache must not evict")
	})
	for i := range 1000 {
		put(t, c, i, "v")
	}
	if c.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", c.Len())
	}
}

func TestCacheGetOrCreateOnce(t *testing.T) {
	c := New[uint64, *int](0, nil)
	calls := 0
	create := func() (*int, error) {
		calls++
		v := 7
		return &v, nil
	}

	first, err := c.GetOrCreate(1, create)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := c.GetOrCreate(1, create)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first != second {
		t.Error("second GetOrCreate returned a different value")
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Stats() hits=%d misses=%d, want 1/1", s.Hits, s.Misses)
	}
	if s.HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", s.HitRate)
	}
}

func TestCacheGetOrCreateError(t *testing.T) {
	c := New[string, int](0, nil)
	errBoom := errors.New("boom")
	if _, err := c.GetOrCreate("k", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want %v", err, errBoom)
	}
	if c.Contains("k") {
		t.Error("failed create must not store an entry")
	}
}

func TestCacheLRUEviction(t *testing.T) {
	var evicted []int
	c := New[int, int](2, func(k, _ int) { evicted = append(evicted, k) })

	put(t, c, 1, 10)
	put(t, c, 2, 20)
	put(t, c, 1, 99) // hit: 2 is now least recently used
	put(t, c, 3, 30)

	if len(evicted) != 1 || evicted[0] != 2 {
		t.Fatalf("evicted = %v, want [2]", evicted)
	}
	if c.Contains(2) {
		t.Error("key 2 should be gone")
	}
	if v, ok := c.Delete(1); !ok || v != 10 {
		t.Errorf("Delete(1) = %d, %v, want the first value", v, ok)
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestCacheDeleteAndPurge(t *testing.T) {
	var evicted int
	c := New[int, int](0, func(int, int) { evicted++ })
	put(t, c, 1, 1)
	put(t, c, 2, 2)
	put(t, c, 3, 3)

	if v, ok := c.Delete(2); !ok || v != 2 {
		t.Errorf("Delete(2) = %d, %v", v, ok)
	}
	if evicted != 0 {
		t.Error("Delete must not call onEvict")
	}

	c.Purge()
	if evicted != 2 {
		t.Errorf("Purge evicted %d, want 2", evicted)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d", c.Len())
	}
}

func TestLRUListOrder(t *testing.T) {
	var l lruList[int, int]
	a := l.pushFront(1, 1)
	l.pushFront(2, 2)
	l.pushFront(3, 3)
	if l.back().key != 1 {
		t.Errorf("back = %d, want 1", l.back().key)
	}
	l.moveToFront(a)
	if l.back().key != 2 || l.head.key != 1 {
		t.Errorf("after moveToFront: head=%d back=%d", l.head.key, l.back().key)
	}
	l.remove(l.back())
	if l.len != 2 {
		t.Errorf("len = %d, want 2", l.len)
	}
}

func TestCacheEvictFunc(t *testing.T) {
	var evicted []int
	c := New[int, string](0, func(k int, _ string) { evicted = append(evicted, k) })
	for i := range 6 {
		put(t, c, i, "v")
	}

	n := c.EvictFunc(func(k int, _ string) bool { return k%2 == 0 })
	if n != 3 || len(evicted) != 3 {
		t.Fatalf("EvictFunc removed %d, callback saw %v", n, evicted)
	}
	for _, k := range []int{0, 2, 4} {
		if c.Contains(k) {
			t.Errorf("key %d still cached", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}
