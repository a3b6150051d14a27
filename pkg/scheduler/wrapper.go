// ============================================================================
// Task Engine - Scheduler
// ============================================================================
//
// Package: pkg/scheduler
// File: wrapper.go
// Purpose: ScheduledWrapper - a time-triggered wrapper: carries a
// nextFireTime, a RepeatPolicy, and the closure that actually dispatches the
// underlying work when due, either directly (executed by the scheduler's
// own pump) or by forwarding into a named work queue (the "queued"
// variant).
//
// ============================================================================

package scheduler

import (
	"context"
	"time"

	"github.com/ChuLiYu/taskengine/pkg/task"
)

// fireFunc runs one occurrence of a scheduled wrapper's underlying work.
type fireFunc func(ctx context.Context)

// ScheduledWrapper is one scheduled submission's mutable state.
type ScheduledWrapper struct {
	id                  task.ID
	nextFireTime        time.Time
	policy              RepeatPolicy
	executionsRemaining int // mirrors policy.Remaining(), kept for quick inspection
	seq                 uint64
	fire                fireFunc
	innerCtx            context.Context
	stopInnerWatch      context.CancelFunc

	heapIndex int // maintained by container/heap
}

// ID identifies this scheduled submission.
func (w *ScheduledWrapper) ID() task.ID { return w.id }

// NextFireTime reports when this wrapper is next due.
func (w *ScheduledWrapper) NextFireTime() time.Time { return w.nextFireTime }

// Canceled reports whether this submission's inner cancellation has fired.
func (w *ScheduledWrapper) Canceled() bool { return w.innerCtx.Err() != nil }

// advance applies the repeat policy, returning false if the wrapper has no
// further fires (executions exhausted).
func (w *ScheduledWrapper) advance(now time.Time) bool {
	next, more := w.policy.Advance(now)
	if !more {
		return false
	}
	w.nextFireTime = next
	w.executionsRemaining = w.policy.Remaining()
	return true
}
