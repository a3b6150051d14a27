// ============================================================================
// Task Engine - Queue Managers
// ============================================================================
//
// Package: pkg/queue
// File: conveyor.go
// Purpose: ConveyorManager[D,R] / PriorityConveyorManager[D,R] - same shape
// as the work/priority-work managers, but the argument type every held
// wrapper executes with is task.ConveyorMachine[D,R] rather than a plain
// struct{} or resource.
//
// ============================================================================

package queue

import "github.com/ChuLiYu/taskengine/pkg/task"

// ConveyorManager holds pending data items, each paired at submission with
// the ConveyorMachine that will process it.
type ConveyorManager[D, R any] struct {
	*WorkQueueManager[task.ConveyorMachine[D, R]]
}

// NewConveyorManager creates an empty conveyor manager with the given
// submit-time attempt ceiling.
func NewConveyorManager[D, R any](maxAttempts int) *ConveyorManager[D, R] {
	return &ConveyorManager[D, R]{WorkQueueManager: NewWorkQueueManager[task.ConveyorMachine[D, R]](maxAttempts)}
}

var _ Manager[task.ConveyorMachine[int, int]] = (*ConveyorManager[int, int])(nil)

// PriorityConveyorManager mirrors ConveyorManager but with priority lanes.
type PriorityConveyorManager[D, R any] struct {
	*PriorityWorkQueueManager[task.ConveyorMachine[D, R]]
}

// NewPriorityConveyorManager creates an empty priority conveyor manager.
func NewPriorityConveyorManager[D, R any](maxPriority, maxAttempts int) *PriorityConveyorManager[D, R] {
	return &PriorityConveyorManager[D, R]{
		PriorityWorkQueueManager: NewPriorityWorkQueueManager[task.ConveyorMachine[D, R]](maxPriority, maxAttempts),
	}
}

var _ Manager[task.ConveyorMachine[int, int]] = (*PriorityConveyorManager[int, int])(nil)
