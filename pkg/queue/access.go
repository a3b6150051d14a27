// ============================================================================
// Task Engine - Queue Managers
// ============================================================================
//
// Package: pkg/queue
// File: access.go
// Purpose: AccessQueueManager[R] - identical shape to WorkQueueManager but
// named for the shared-resource family: the processor driving it guarantees
// at-most-one in-flight execution against the resource, so the manager
// itself needs no extra locking beyond the plain FIFO's.
//
// ============================================================================

package queue

// AccessQueueManager serializes access to a single shared resource of type
// R. It is a thin rename of WorkQueueManager[R]; the serialization guarantee
// comes from pairing it with a SingleStatic/SingleReusable processor
// (pkg/processor), not from extra manager-side locking. All of Submit,
// HasTask, WaitForTask, GetTask, RevertTask, Len are inherited by
// embedding.
type AccessQueueManager[R any] struct {
	*WorkQueueManager[R]
}

// NewAccessQueueManager creates an access queue with the given submit-time
// attempt ceiling.
func NewAccessQueueManager[R any](maxAttempts int) *AccessQueueManager[R] {
	return &AccessQueueManager[R]{WorkQueueManager: NewWorkQueueManager[R](maxAttempts)}
}

var _ Manager[int] = (*AccessQueueManager[int])(nil)
