package tilecache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/analyze"
)

func testKey(imageID uint64, mode analyze.Mode) Key {
	return Key{ImageID: imageID, GrayDataID: 1, ScreenID: 1, Gamma: 2.2, Mode: mode}
}

func countingBuild(counter *int32) BuildFunc {
	return func(_ *colorscreen.ProgressHandle) (*analyze.Result, error) {
		atomic.AddInt32(counter, 1)
		return &analyze.Result{}, nil
	}
}

func TestCacheBuildsOnceUnderConcurrentMisses(t *testing.T) {
	c := New(4)
	key := testKey(1, analyze.Precise)
	var builds int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(key, countingBuild(&builds), nil); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&builds); got != 1 {
		t.Fatalf("expected exactly one build for 16 concurrent misses on the same key, got %d", got)
	}
	for i := 0; i < 16; i++ {
		c.Release(key)
	}
}

func TestCacheHitReturnsSameResultAndBumpsRefcount(t *testing.T) {
	c := New(4)
	key := testKey(2, analyze.Fast)
	var builds int32

	first, err := c.Get(key, countingBuild(&builds), nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := c.Get(key, countingBuild(&builds), nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Fatal("expected a cache hit to return the same *analyze.Result pointer")
	}
	if builds != 1 {
		t.Fatalf("expected one build across a miss then a hit, got %d", builds)
	}
	c.Release(key)
	c.Release(key)
}

func TestCachePinnedEntriesSurviveEviction(t *testing.T) {
	c := New(2)
	var builds int32

	keys := []Key{testKey(1, analyze.Fast), testKey(2, analyze.Fast), testKey(3, analyze.Fast)}
	for _, k := range keys[:2] {
		if _, err := c.Get(k, countingBuild(&builds), nil); err != nil {
			t.Fatalf("Get: %v", err)
		}
		// deliberately not released: both of the first two entries stay pinned
	}
	if _, err := c.Get(keys[2], countingBuild(&builds), nil); err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Over capacity with the first two entries pinned: eviction must
	// leave them alone even though it cannot bring Len() back down.
	if c.Len() != 3 {
		t.Fatalf("expected both pinned entries plus the new one to survive while over capacity, got Len()=%d", c.Len())
	}
	for _, k := range keys[:2] {
		if _, ok := c.entries[k]; !ok {
			t.Fatalf("expected pinned key %v to survive eviction", k)
		}
	}

	c.Release(keys[2])
	// keys[2] is now the only unpinned entry; it is evicted to bring the
	// cache back toward capacity even though it was the most recently used.
	if _, ok := c.entries[keys[2]]; ok {
		t.Fatal("expected the sole unpinned entry to be evicted once released")
	}
	for _, k := range keys[:2] {
		if _, ok := c.entries[k]; !ok {
			t.Fatalf("expected pinned key %v to still survive after eviction", k)
		}
	}
}

func TestCacheEvictsUnpinnedEntriesOverCapacity(t *testing.T) {
	c := New(2)
	var builds int32

	k1, k2, k3 := testKey(1, analyze.Fast), testKey(2, analyze.Fast), testKey(3, analyze.Fast)
	for _, k := range []Key{k1, k2} {
		if _, err := c.Get(k, countingBuild(&builds), nil); err != nil {
			t.Fatalf("Get: %v", err)
		}
		c.Release(k)
	}
	if _, err := c.Get(k3, countingBuild(&builds), nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.Release(k3)

	if c.Len() != 2 {
		t.Fatalf("expected eviction to keep Len() at capacity, got %d", c.Len())
	}
	if _, ok := c.entries[k1]; ok {
		t.Fatal("expected the least-recently-used unpinned entry (k1) to have been evicted")
	}
}

func TestOpenStitchProjectTriplesCapacity(t *testing.T) {
	c := New(5)
	if c.Capacity() != 5 {
		t.Fatalf("expected base capacity 5, got %d", c.Capacity())
	}
	c.OpenStitchProject()
	if c.Capacity() != 15 {
		t.Fatalf("expected tripled capacity 15, got %d", c.Capacity())
	}
	c.CloseStitchProject()
	if c.Capacity() != 5 {
		t.Fatalf("expected capacity restored to 5, got %d", c.Capacity())
	}
}

func TestBuildLimiterBoundsConcurrencyPerImage(t *testing.T) {
	l := newBuildLimiter()
	var current, maxSeen int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.acquire(42)
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			atomic.AddInt32(&current, -1)
			l.release(42)
		}()
	}
	wg.Wait()

	if maxSeen > maxBuildsPerImage {
		t.Fatalf("expected at most %d concurrent builds per image, observed %d", maxBuildsPerImage, maxSeen)
	}
}
