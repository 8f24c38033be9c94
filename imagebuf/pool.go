package imagebuf

import "sync"

// RowPool is a thread-safe pool of reusable float32 row buffers, bucketed
// by size. Renderers and analyzers borrow scratch rows here instead of
// allocating per call.
//
// Thread safety: all methods are safe for concurrent use.
type RowPool struct {
	mu      sync.Mutex
	buckets map[int][][]float32
	maxSize int
}

// NewRowPool creates a pool retaining at most maxPerBucket buffers per
// distinct row length. A maxPerBucket of 0 means unlimited.
func NewRowPool(maxPerBucket int) *RowPool {
	return &RowPool{buckets: make(map[int][][]float32), maxSize: maxPerBucket}
}

// Get returns a zeroed float32 slice of exactly n elements, reused from
// the pool when possible.
func (p *RowPool) Get(n int) []float32 {
	p.mu.Lock()
	bucket := p.buckets[n]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[n] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		clear(buf)
		return buf
	}
	p.mu.Unlock()
	return make([]float32, n)
}

// Put returns a buffer to the pool for reuse.
func (p *RowPool) Put(buf []float32) {
	if buf == nil {
		return
	}
	n := len(buf)
	p.mu.Lock()
	defer p.mu.Unlock()
	bucket := p.buckets[n]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[n] = append(bucket, buf)
}

// defaultRowPool is the process-wide default pool behind GetRow and
// PutRow.
var defaultRowPool = NewRowPool(16)

// GetRow borrows a row buffer from the process-wide default pool.
func GetRow(n int) []float32 { return defaultRowPool.Get(n) }

// PutRow returns a row buffer to the process-wide default pool.
func PutRow(buf []float32) { defaultRowPool.Put(buf) }
