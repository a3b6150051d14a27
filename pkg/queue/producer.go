// ============================================================================
// Task Engine - Queue Managers
// ============================================================================
//
// Package: pkg/queue
// File: producer.go
// Purpose: Submit-side API: EnqueueWork/EnqueueResultWork and ProcessData,
// each in a plain and a priority-lane form, plus EnqueueAccess/
// EnqueueResultAccess and ProcessDataBatch in a plain form only.
// Attempts are clamped to the manager's configured ceiling before the
// wrapper is built; cancel, if nil, defaults to context.Background()
// (never cancels).
//
// ============================================================================

package queue

import (
	"context"

	"github.com/ChuLiYu/taskengine/pkg/task"
)

func orBackground(cancel context.Context) context.Context {
	if cancel == nil {
		return context.Background()
	}
	return cancel
}

// EnqueueWork submits a void, argument-free unit of work to a plain FIFO
// manager.
func EnqueueWork(m *WorkQueueManager[task.NullArg], work task.Work, attempts int, cancel context.Context) *task.Future[struct{}] {
	w, future := task.NewWorkWrapper(work, m.ClampAttempts(attempts), orBackground(cancel))
	m.Submit(w)
	return future
}

// EnqueueResultWork submits a result-bearing unit of work to a plain FIFO
// manager.
func EnqueueResultWork[T any](m *WorkQueueManager[task.NullArg], work task.ResultWork[T], attempts int, cancel context.Context) *task.Future[T] {
	w, future := task.NewResultWorkWrapper(work, m.ClampAttempts(attempts), orBackground(cancel))
	m.Submit(w)
	return future
}

// EnqueueWorkPriority submits a void unit of work at the given priority
// lane.
func EnqueueWorkPriority(m *PriorityWorkQueueManager[task.NullArg], work task.Work, attempts, priority int, cancel context.Context) (*task.Future[struct{}], error) {
	w, future := task.NewWorkWrapper(work, m.ClampAttempts(attempts), orBackground(cancel))
	if err := m.Submit(w, priority); err != nil {
		return nil, err
	}
	return future, nil
}

// EnqueueResultWorkPriority submits a result-bearing unit of work at the
// given priority lane.
func EnqueueResultWorkPriority[T any](m *PriorityWorkQueueManager[task.NullArg], work task.ResultWork[T], attempts, priority int, cancel context.Context) (*task.Future[T], error) {
	w, future := task.NewResultWorkWrapper(work, m.ClampAttempts(attempts), orBackground(cancel))
	if err := m.Submit(w, priority); err != nil {
		return nil, err
	}
	return future, nil
}

// EnqueueAccess submits a void mutator of the shared resource R.
func EnqueueAccess[R any](m *AccessQueueManager[R], access task.Access[R], attempts int, cancel context.Context) *task.Future[struct{}] {
	w, future := task.NewAccessWrapper(access, m.ClampAttempts(attempts), orBackground(cancel))
	m.Submit(w)
	return future
}

// EnqueueResultAccess submits a result-bearing mutator of the shared
// resource R.
func EnqueueResultAccess[R, T any](m *AccessQueueManager[R], access task.ResultAccess[R, T], attempts int, cancel context.Context) *task.Future[T] {
	w, future := task.NewResultAccessWrapper(access, m.ClampAttempts(attempts), orBackground(cancel))
	m.Submit(w)
	return future
}

// ProcessData submits one data item for conveyor processing and returns its
// result handle.
func ProcessData[D, R any](m *ConveyorManager[D, R], data D, attempts int, cancel context.Context) *task.Future[R] {
	w, future := task.NewConveyorWrapper[D, R](data, m.ClampAttempts(attempts), orBackground(cancel))
	m.Submit(w)
	return future
}

// ProcessDataPriority submits one data item at the given priority lane.
func ProcessDataPriority[D, R any](m *PriorityConveyorManager[D, R], data D, attempts, priority int, cancel context.Context) (*task.Future[R], error) {
	w, future := task.NewConveyorWrapper[D, R](data, m.ClampAttempts(attempts), orBackground(cancel))
	if err := m.Submit(w, priority); err != nil {
		return nil, err
	}
	return future, nil
}

// ProcessDataBatch submits a slice of data items and returns their result
// handles in the same order as the input, preserving input order as a
// lazy sequence: the caller awaits each future independently, but the i-th
// future always corresponds to the i-th input item regardless of
// completion order.
func ProcessDataBatch[D, R any](m *ConveyorManager[D, R], items []D, attempts int, cancel context.Context) []*task.Future[R] {
	futures := make([]*task.Future[R], len(items))
	for i, item := range items {
		futures[i] = ProcessData(m, item, attempts, cancel)
	}
	return futures
}
