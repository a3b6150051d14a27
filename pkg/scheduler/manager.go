// ============================================================================
// Task Engine - Scheduler
// ============================================================================
//
// Package: pkg/scheduler
// File: manager.go
// Purpose: WorkSchedulerManager - holds scheduled wrappers ordered by
// nextFireTime, conceptually an ordered multimap from time to wrapper list.
// Implemented as a container/heap min-heap keyed by (nextFireTime,
// insertion sequence); no suitable third-party library supplies a
// time-ordered priority queue, so this one component is built on the
// standard library by necessity (documented in DESIGN.md).
//
// ============================================================================

package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// schedulerHeap is a container/heap.Interface over pending scheduled
// wrappers, ordered by fire time then insertion order.
type schedulerHeap []*ScheduledWrapper

func (h schedulerHeap) Len() int { return len(h) }
func (h schedulerHeap) Less(i, j int) bool {
	if h[i].nextFireTime.Equal(h[j].nextFireTime) {
		return h[i].seq < h[j].seq
	}
	return h[i].nextFireTime.Before(h[j].nextFireTime)
}
func (h schedulerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *schedulerHeap) Push(x any) {
	w := x.(*ScheduledWrapper)
	w.heapIndex = len(*h)
	*h = append(*h, w)
}
func (h *schedulerHeap) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return w
}

// event is the same auto-reset signal primitive as pkg/queue's; duplicated
// here rather than exported from pkg/queue to keep the scheduler
// independent of the plain-queue manager's internals.
type event struct{ ch chan struct{} }

func newEvent() *event { return &event{ch: make(chan struct{}, 1)} }

func (e *event) set() {
	select {
	case e.ch <- struct{}{}:
	default:
	}
}

func (e *event) wait(ctx context.Context) error {
	select {
	case <-e.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WorkSchedulerManager holds pending scheduled wrappers, ordered by
// nextFireTime.
type WorkSchedulerManager struct {
	mu      sync.Mutex
	heap    schedulerHeap
	nextSeq uint64
	newTask *event
}

// NewWorkSchedulerManager creates an empty scheduler manager.
func NewWorkSchedulerManager() *WorkSchedulerManager {
	m := &WorkSchedulerManager{newTask: newEvent()}
	heap.Init(&m.heap)
	return m
}

// Submit inserts w, ordered by its current nextFireTime, and wakes the
// scheduler pump.
func (m *WorkSchedulerManager) Submit(w *ScheduledWrapper) {
	m.mu.Lock()
	m.nextSeq++
	w.seq = m.nextSeq
	heap.Push(&m.heap, w)
	m.mu.Unlock()
	m.newTask.set()
}

// WaitForNewTask suspends until a submission happens or ctx is done.
func (m *WorkSchedulerManager) WaitForNewTask(ctx context.Context) error {
	return m.newTask.wait(ctx)
}

// GetNextTaskTime returns the earliest pending fire time, or false if the
// manager holds nothing.
func (m *WorkSchedulerManager) GetNextTaskTime() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.heap) == 0 {
		return time.Time{}, false
	}
	return m.heap[0].nextFireTime, true
}

// GetUpcomingTasks pops every wrapper whose nextFireTime is <= now+horizon,
// ordered by fire time then insertion order.
func (m *WorkSchedulerManager) GetUpcomingTasks(now time.Time, horizon time.Duration) []*ScheduledWrapper {
	cutoff := now.Add(horizon)
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*ScheduledWrapper
	for len(m.heap) > 0 && !m.heap[0].nextFireTime.After(cutoff) {
		due = append(due, heap.Pop(&m.heap).(*ScheduledWrapper))
	}
	return due
}

// RevertWork re-inserts w under its current nextFireTime (already advanced
// by the caller via w.advance).
func (m *WorkSchedulerManager) RevertWork(w *ScheduledWrapper) {
	m.Submit(w)
}

// Len reports the number of pending scheduled wrappers.
func (m *WorkSchedulerManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.heap)
}
