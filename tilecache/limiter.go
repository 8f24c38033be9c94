package tilecache

import "sync"

// maxBuildsPerImage bounds concurrent analyzer builds against one image
// (§4.I: "at most two analyzer builds in flight per image at once").
const maxBuildsPerImage = 2

// buildLimiter hands out per-image build slots via a lazily created
// buffered channel acting as a counting semaphore.
type buildLimiter struct {
	mu   sync.Mutex
	sems map[uint64]chan struct{}
}

func newBuildLimiter() *buildLimiter {
	return &buildLimiter{sems: make(map[uint64]chan struct{})}
}

func (l *buildLimiter) semFor(imageID uint64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[imageID]
	if !ok {
		sem = make(chan struct{}, maxBuildsPerImage)
		l.sems[imageID] = sem
	}
	return sem
}

// acquire blocks until a build slot for imageID is available.
func (l *buildLimiter) acquire(imageID uint64) {
	l.semFor(imageID) <- struct{}{}
}

// release returns a build slot for imageID.
func (l *buildLimiter) release(imageID uint64) {
	sem := l.semFor(imageID)
	select {
	case <-sem:
	default:
	}
}
