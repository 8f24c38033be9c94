package stitch

import "sync"

// residencyNode is one node of the image-residency eviction list, a
// head/tail doubly linked list keyed by tile index.
type residencyNode struct {
	key        uint64
	prev, next *residencyNode
}

type residencyList struct {
	head, tail *residencyNode
	nodes      map[uint64]*residencyNode
}

func newResidencyList() *residencyList {
	return &residencyList{nodes: make(map[uint64]*residencyNode)}
}

func (l *residencyList) touch(key uint64) {
	if n, ok := l.nodes[key]; ok {
		l.unlink(n)
		l.pushFront(n)
		return
	}
	n := &residencyNode{key: key}
	l.nodes[key] = n
	l.pushFront(n)
}

func (l *residencyList) pushFront(n *residencyNode) {
	n.prev, n.next = nil, l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *residencyList) unlink(n *residencyNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else if l.head == n {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if l.tail == n {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (l *residencyList) remove(key uint64) {
	if n, ok := l.nodes[key]; ok {
		l.unlink(n)
		delete(l.nodes, key)
	}
}

// ResidencyCache bounds how many decoded images a stitch project holds
// at once (§4.J.6). It is not sharded: a stitch project holds on the
// order of tens of tile images, and the budget is a single global count.
// It is a map plus a doubly linked eviction list under one mutex, with
// per-key pin counts so a tile's image can never be
// evicted out from under an in-flight render (mirrors
// tilecache.Cache's refcount discipline).
type ResidencyCache struct {
	mu       sync.Mutex
	budget   int
	loaded   map[uint64]bool
	pins     map[uint64]int
	order    *residencyList
	onEvict  func(key uint64)
}

// NewResidencyCache creates a cache with the given starting budget.
// onEvict, if non-nil, is called (with the cache's mutex released) when
// a key is dropped, so the caller can release the underlying decoded
// image.
func NewResidencyCache(budget int, onEvict func(key uint64)) *ResidencyCache {
	if budget < 1 {
		budget = 1
	}
	return &ResidencyCache{
		budget:  budget,
		loaded:  make(map[uint64]bool),
		pins:    make(map[uint64]int),
		order:   newResidencyList(),
		onEvict: onEvict,
	}
}

// SetBudget changes the resident-image budget, e.g. scaling to 2*W when
// a stitching pass begins and back to 1 once it ends.
func (c *ResidencyCache) SetBudget(budget int) {
	if budget < 1 {
		budget = 1
	}
	c.mu.Lock()
	c.budget = budget
	evicted := c.evictLocked()
	c.mu.Unlock()
	c.notify(evicted)
}

// Acquire marks key resident and pinned (not evictable) until a matching
// Release. It returns the keys evicted to make room, in case the caller
// needs to release matching decoded buffers.
func (c *ResidencyCache) Acquire(key uint64) (evicted []uint64) {
	c.mu.Lock()
	c.loaded[key] = true
	c.pins[key]++
	c.order.touch(key)
	evicted = c.evictLocked()
	c.mu.Unlock()
	c.notify(evicted)
	return evicted
}

// Release unpins key, allowing it to be evicted under budget pressure.
func (c *ResidencyCache) Release(key uint64) {
	c.mu.Lock()
	if c.pins[key] > 0 {
		c.pins[key]--
	}
	evicted := c.evictLocked()
	c.mu.Unlock()
	c.notify(evicted)
}

// Resident reports whether key is currently marked loaded.
func (c *ResidencyCache) Resident(key uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[key]
}

func (c *ResidencyCache) evictLocked() []uint64 {
	var evicted []uint64
	for len(c.loaded) > c.budget {
		n := c.order.tail
		for n != nil && c.pins[n.key] > 0 {
			n = n.prev
		}
		if n == nil {
			break
		}
		delete(c.loaded, n.key)
		delete(c.pins, n.key)
		c.order.remove(n.key)
		evicted = append(evicted, n.key)
	}
	return evicted
}

func (c *ResidencyCache) notify(keys []uint64) {
	if c.onEvict == nil {
		return
	}
	for _, k := range keys {
		c.onEvict(k)
	}
}
