package tilecache

import (
	"sync"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/analyze"
)

// BuildFunc builds a fresh analyzer result on a cache miss. progress may
// be nil; implementations should poll progress.CancelRequested() between
// rows and return colorscreen.ErrCancelled promptly (§4.I, §5).
type BuildFunc func(progress *colorscreen.ProgressHandle) (*analyze.Result, error)

// entry is one cached analyzer result plus its pin count and its
// position in the eviction-order list.
type entry struct {
	result   *analyze.Result
	refcount int
	node     *lruNode
}

// pendingBuild lets concurrent Get calls for the same key that misses
// wait on the single in-flight build instead of duplicating it ("on
// cache miss, a fresh analyzer is built under a mutex", §4.I).
type pendingBuild struct {
	done   chan struct{}
	result *analyze.Result
	err    error
}

// Cache is the bounded, refcounted analyzer cache of §4.I. The zero
// value is not usable; construct with New.
type Cache struct {
	mu       sync.Mutex
	baseCap  int
	capacity int
	entries  map[Key]*entry
	pending  map[Key]*pendingBuild
	order    *lruList
	limiter  *buildLimiter
}

// New creates a Cache with the given base capacity (number of analyzer
// results held before LRU eviction of unpinned entries kicks in).
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		baseCap:  capacity,
		capacity: capacity,
		entries:  make(map[Key]*entry),
		pending:  make(map[Key]*pendingBuild),
		order:    newLRUList(),
		limiter:  newBuildLimiter(),
	}
}

// OpenStitchProject triples the cache's capacity so every tile's three
// analyzer modes (Fast/Precise/Color) can coexist during a stitch pass
// (§4.I: "capacity triples when a stitch project is opened").
func (c *Cache) OpenStitchProject() {
	c.mu.Lock()
	c.capacity = c.baseCap * 3
	c.mu.Unlock()
}

// CloseStitchProject restores the cache's base capacity and evicts down
// to it if needed.
func (c *Cache) CloseStitchProject() {
	c.mu.Lock()
	c.capacity = c.baseCap
	c.evictLocked()
	c.mu.Unlock()
}

// Get returns the analyzer result for key, building it via build on a
// miss. The caller must call Release(key) exactly once for every
// successful Get to unpin the entry. Concurrent misses on the same key
// share one in-flight build.
func (c *Cache) Get(key Key, build BuildFunc, progress *colorscreen.ProgressHandle) (*analyze.Result, error) {
	for {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			e.refcount++
			c.order.MoveToFront(e.node)
			c.mu.Unlock()
			return e.result, nil
		}
		if pb, ok := c.pending[key]; ok {
			c.mu.Unlock()
			<-pb.done
			if pb.err != nil {
				return nil, pb.err
			}
			continue // builder registered the entry before closing done
		}

		pb := &pendingBuild{done: make(chan struct{})}
		c.pending[key] = pb
		c.mu.Unlock()

		c.limiter.acquire(key.ImageID)
		result, err := build(progress)
		c.limiter.release(key.ImageID)

		c.mu.Lock()
		delete(c.pending, key)
		if err == nil {
			node := c.order.PushFront(key)
			c.entries[key] = &entry{result: result, refcount: 1, node: node}
			c.evictLocked()
		}
		pb.result, pb.err = result, err
		close(pb.done)
		c.mu.Unlock()
		return result, err
	}
}

// Release unpins the entry for key, making it eligible for eviction
// once its refcount reaches zero. Releasing a key that is not cached
// (e.g. its build failed) is a no-op.
func (c *Cache) Release(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return
	}
	if e.refcount > 0 {
		e.refcount--
	}
	c.evictLocked()
}

// Len reports the number of cached entries, pinned or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity reports the cache's current capacity (tripled while a stitch
// project is open).
func (c *Cache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// evictLocked drops unpinned entries, oldest first, until the cache is
// at or under capacity or no unpinned entry remains. Caller must hold
// c.mu.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.capacity {
		node := c.order.oldestUnpinned(func(k Key) bool {
			return c.entries[k].refcount > 0
		})
		if node == nil {
			return // everything left is pinned; over capacity is tolerated
		}
		c.order.Remove(node)
		delete(c.entries, node.key)
	}
}
