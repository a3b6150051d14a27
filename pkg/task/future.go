// ============================================================================
// Task Engine - Completion Handles
// ============================================================================
//
// Package: pkg/task
// File: future.go
// Purpose: The caller-facing side of a submitted task: a Future[T] settles
// exactly once, to one of {value, failure, canceled}, and is observable to
// the caller immediately after settlement.
//
// ============================================================================

package task

import (
	"context"
	"sync"
)

// State is the lifecycle of a Future.
type State int

const (
	StatePending State = iota
	StateCompleted
	StateFailed
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	default:
		return "pending"
	}
}

// Future is the completion handle returned to a producer at submission
// time. It settles at most once; subsequent settle attempts are no-ops.
type Future[T any] struct {
	mu    sync.Mutex
	done  chan struct{}
	state State
	value T
	err   error
}

// NewFuture allocates a pending completion handle.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// trySettle settles the future if it has not already settled. Returns true
// if this call performed the settlement.
func (f *Future[T]) trySettle(state State, value T, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return false
	}
	f.state = state
	f.value = value
	f.err = err
	close(f.done)
	return true
}

// Complete settles the future with a successful value.
func (f *Future[T]) Complete(value T) bool {
	return f.trySettle(StateCompleted, value, nil)
}

// Fail settles the future with a TaskFailure-classified error.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	return f.trySettle(StateFailed, zero, WrapTaskFailure(err))
}

// FailRaw settles the future with err unwrapped (used internally for
// ErrNoAttemptsLeft, which already carries its own Kind).
func (f *Future[T]) FailRaw(err error) bool {
	var zero T
	return f.trySettle(StateFailed, zero, err)
}

// Cancel settles the future as canceled, carrying the cause (the firing
// token's identity, per spec: ErrCanceledByCaller or ErrCanceledByShutdown).
func (f *Future[T]) Cancel(cause error) bool {
	var zero T
	return f.trySettle(StateCanceled, zero, cause)
}

// Done returns a channel closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// State returns the current settlement state.
func (f *Future[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Wait blocks until the future settles or ctx is done, returning the
// settled value/error, or ctx.Err() if ctx fires first (the future itself
// remains pending in that case).
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryResult returns the settled (value, error) and true if the future has
// already settled, without blocking.
func (f *Future[T]) TryResult() (T, error, bool) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
