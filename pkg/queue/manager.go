// ============================================================================
// Task Engine - Queue Managers
// ============================================================================
//
// Package: pkg/queue
// File: manager.go
// Purpose: WorkQueueManager - a single FIFO of task wrappers plus an
// auto-reset new-task event, the simplest manager family. The priority,
// access, and conveyor managers in this package are all built by reusing or
// lightly wrapping this core - a handful of map/slice operations layered
// behind a mutex rather than a generic collection type per task state.
//
// ============================================================================

package queue

import (
	"context"
	"sync"

	"github.com/ChuLiYu/taskengine/internal/metrics"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

// Manager is the worker-facing contract every task family's pending store
// satisfies: has-task / wait-for-task / get-task / revert-task.
// Arg is the argument type the held wrappers execute with. GetTask's meta
// return is opaque to the worker/processor and is handed back unchanged to
// RevertTask; plain FIFO managers ignore it (nil), the priority manager uses
// it to restore a wrapper to its originating lane.
type Manager[Arg any] interface {
	HasTask() bool
	WaitForTask(ctx context.Context) error
	GetTask() (w task.Wrapper[Arg], meta any, ok bool)
	RevertTask(w task.Wrapper[Arg], meta any)
}

// WorkQueueManager is a single FIFO of wrappers. Zero value is not usable;
// construct with NewWorkQueueManager.
type WorkQueueManager[Arg any] struct {
	mu       sync.Mutex
	pending  []task.Wrapper[Arg]
	newTask  *event
	maxAttpt int

	collector *metrics.Collector
	family    string
}

// SetMetrics attaches a collector this manager reports queue-depth and
// submission counts through, labeled family. Passing a nil collector
// disables reporting (the zero value already behaves this way).
func (m *WorkQueueManager[Arg]) SetMetrics(c *metrics.Collector, family string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collector = c
	m.family = family
}

// NewWorkQueueManager creates an empty FIFO manager. maxAttempts bounds
// submit-time attempt counts (clamped to [1, maxAttempts]); pass 0 for no
// configured ceiling (attempts still clamp to >=1 in the wrapper itself).
func NewWorkQueueManager[Arg any](maxAttempts int) *WorkQueueManager[Arg] {
	return &WorkQueueManager[Arg]{
		newTask:  newEvent(),
		maxAttpt: maxAttempts,
	}
}

// MaxAttempts returns the configured ceiling, or 0 if unbounded.
func (m *WorkQueueManager[Arg]) MaxAttempts() int { return m.maxAttpt }

// ClampAttempts applies this manager's configured ceiling to a
// submit-requested attempt count.
func (m *WorkQueueManager[Arg]) ClampAttempts(requested int) int {
	return clampAttempts(requested, m.maxAttpt)
}

func clampAttempts(requested, ceiling int) int {
	if requested < 1 {
		requested = 1
	}
	if ceiling > 0 && requested > ceiling {
		return ceiling
	}
	return requested
}

// Submit pushes w onto the tail of the FIFO and wakes one waiter.
func (m *WorkQueueManager[Arg]) Submit(w task.Wrapper[Arg]) {
	m.mu.Lock()
	m.pending = append(m.pending, w)
	n := len(m.pending)
	collector, family := m.collector, m.family
	m.mu.Unlock()
	m.newTask.set()
	if collector != nil {
		collector.RecordSubmit(family)
		collector.SetPending(family, n)
	}
}

// HasTask reports whether the FIFO is currently non-empty.
func (m *WorkQueueManager[Arg]) HasTask() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending) > 0
}

// WaitForTask returns immediately if the FIFO is non-empty, otherwise
// suspends until Submit/RevertTask signals or ctx is done.
func (m *WorkQueueManager[Arg]) WaitForTask(ctx context.Context) error {
	if m.HasTask() {
		return nil
	}
	return m.newTask.wait(ctx)
}

// GetTask pops the head wrapper. A false third return means the FIFO was
// empty at the instant of the attempt; callers retry immediately within the
// same pump iteration rather than backing off, since a lost race here means
// another consumer already made progress. meta is always nil for this
// manager family.
func (m *WorkQueueManager[Arg]) GetTask() (task.Wrapper[Arg], any, bool) {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		var zero task.Wrapper[Arg]
		return zero, nil, false
	}
	w := m.pending[0]
	m.pending = m.pending[1:]
	n := len(m.pending)
	collector, family := m.collector, m.family
	m.mu.Unlock()
	if collector != nil {
		collector.SetPending(family, n)
	}
	return w, nil, true
}

// RevertTask pushes w back onto the head of the FIFO (so a reverted task is
// the next one retried rather than going to the back of the line) and wakes
// a waiter. meta is ignored.
func (m *WorkQueueManager[Arg]) RevertTask(w task.Wrapper[Arg], _ any) {
	m.mu.Lock()
	m.pending = append([]task.Wrapper[Arg]{w}, m.pending...)
	n := len(m.pending)
	collector, family := m.collector, m.family
	m.mu.Unlock()
	m.newTask.set()
	if collector != nil {
		collector.SetPending(family, n)
	}
}

// Len reports the current queue depth, for metrics/status reporting.
func (m *WorkQueueManager[Arg]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
