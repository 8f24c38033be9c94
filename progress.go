package colorscreen

import (
	"context"
	"sync"
	"sync/atomic"
)

// ProgressHandle is passed to every long-running operation (analyzer
// build, render precompute, solver run, stitch pass) so the caller can
// report task names, observe step counts, and cooperatively cancel (§5,
// §6). The zero value is a valid, never-cancelled handle.
//
// ProgressHandle is safe for concurrent use: IncProgress and SetProgress are
// called from parallel row/tile workers.
type ProgressHandle struct {
	ctx context.Context

	taskName string
	total    int64
	current  int64

	mu          sync.Mutex
	stdoutPaused bool
}

// NewProgressHandle creates a handle whose cancellation follows ctx. A nil
// ctx is treated as context.Background (never cancelled).
func NewProgressHandle(ctx context.Context) *ProgressHandle {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ProgressHandle{ctx: ctx}
}

// SetTask records the name of the current task and its total step count,
// for display by a caller's progress bar.
func (p *ProgressHandle) SetTask(name string, totalSteps int) {
	p.mu.Lock()
	p.taskName = name
	p.mu.Unlock()
	atomic.StoreInt64(&p.total, int64(totalSteps))
	atomic.StoreInt64(&p.current, 0)
}

// IncProgress advances the current step by one. Safe to call from many
// goroutines processing independent rows or tiles.
func (p *ProgressHandle) IncProgress() {
	atomic.AddInt64(&p.current, 1)
}

// SetProgress sets the current step count directly.
func (p *ProgressHandle) SetProgress(i int) {
	atomic.StoreInt64(&p.current, int64(i))
}

// Progress returns the (current, total) step counts most recently set.
func (p *ProgressHandle) Progress() (current, total int) {
	return int(atomic.LoadInt64(&p.current)), int(atomic.LoadInt64(&p.total))
}

// TaskName returns the name set by the most recent SetTask call.
func (p *ProgressHandle) TaskName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.taskName
}

// CancelRequested reports whether cancellation has been requested. Long
// loops poll this between rows or between outer iterations (§5); on a true
// result they must return ErrCancelled without leaving partial state
// visible to callers beyond what was already committed.
func (p *ProgressHandle) CancelRequested() bool {
	if p.ctx == nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return true
	default:
		return false
	}
}

// PauseStdout and ResumeStdout bracket a region where the caller wants to
// interleave its own stdout writes (e.g. a CLI log line) with library
// progress output without tearing a line in half. The core never writes to
// stdout outside of these guards and in fact never writes to stdout at
// all; the guard exists purely so callers sharing a ProgressHandle across
// goroutines can serialize their own output.
func (p *ProgressHandle) PauseStdout() {
	p.mu.Lock()
	p.stdoutPaused = true
	p.mu.Unlock()
}

// ResumeStdout ends a PauseStdout region.
func (p *ProgressHandle) ResumeStdout() {
	p.mu.Lock()
	p.stdoutPaused = false
	p.mu.Unlock()
}

// StdoutPaused reports whether a PauseStdout/ResumeStdout region is active.
func (p *ProgressHandle) StdoutPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdoutPaused
}
