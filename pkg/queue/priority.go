// ============================================================================
// Task Engine - Queue Managers
// ============================================================================
//
// Package: pkg/queue
// File: priority.go
// Purpose: PriorityWorkQueueManager - maxPriority+1 FIFO lanes. Scan
// direction is highest-priority-first, consistently on both Submit-time
// validation and GetTask's scan: higher numeric priority dispatches first,
// so priority 2 always drains before 1 before 0.
//
// ============================================================================

package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/ChuLiYu/taskengine/internal/metrics"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

// PriorityWorkQueueManager holds maxPriority+1 independently-FIFO lanes.
type PriorityWorkQueueManager[Arg any] struct {
	mu          sync.Mutex
	lanes       [][]task.Wrapper[Arg]
	maxPriority int
	newTask     *event
	maxAttpt    int

	collector *metrics.Collector
	family    string
}

// SetMetrics attaches a collector this manager reports queue-depth and
// submission counts through, labeled family.
func (m *PriorityWorkQueueManager[Arg]) SetMetrics(c *metrics.Collector, family string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collector = c
	m.family = family
}

// taskMeta carries the originating lane so RevertTask can restore it there.
type taskMeta struct {
	priority int
}

// NewPriorityWorkQueueManager creates a manager with lanes 0..maxPriority.
func NewPriorityWorkQueueManager[Arg any](maxPriority, maxAttempts int) *PriorityWorkQueueManager[Arg] {
	if maxPriority < 0 {
		maxPriority = 0
	}
	return &PriorityWorkQueueManager[Arg]{
		lanes:       make([][]task.Wrapper[Arg], maxPriority+1),
		maxPriority: maxPriority,
		newTask:     newEvent(),
		maxAttpt:    maxAttempts,
	}
}

func (m *PriorityWorkQueueManager[Arg]) MaxPriority() int { return m.maxPriority }

func (m *PriorityWorkQueueManager[Arg]) ClampAttempts(requested int) int {
	return clampAttempts(requested, m.maxAttpt)
}

// ValidatePriority checks priority is in [0, maxPriority], returning
// task.ErrArgumentInvalid otherwise.
func (m *PriorityWorkQueueManager[Arg]) ValidatePriority(priority int) error {
	if priority < 0 || priority > m.maxPriority {
		return fmt.Errorf("%w: priority %d out of range [0,%d]", task.ErrArgumentInvalid, priority, m.maxPriority)
	}
	return nil
}

// totalLocked reports total pending wrappers across all lanes. Callers must
// hold m.mu.
func (m *PriorityWorkQueueManager[Arg]) totalLocked() int {
	total := 0
	for _, lane := range m.lanes {
		total += len(lane)
	}
	return total
}

// Submit validates and pushes w onto lane priority's tail.
func (m *PriorityWorkQueueManager[Arg]) Submit(w task.Wrapper[Arg], priority int) error {
	if err := m.ValidatePriority(priority); err != nil {
		return err
	}
	m.mu.Lock()
	m.lanes[priority] = append(m.lanes[priority], w)
	n := m.totalLocked()
	collector, family := m.collector, m.family
	m.mu.Unlock()
	m.newTask.set()
	if collector != nil {
		collector.RecordSubmit(family)
		collector.SetPending(family, n)
	}
	return nil
}

func (m *PriorityWorkQueueManager[Arg]) HasTask() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lane := range m.lanes {
		if len(lane) > 0 {
			return true
		}
	}
	return false
}

func (m *PriorityWorkQueueManager[Arg]) WaitForTask(ctx context.Context) error {
	if m.HasTask() {
		return nil
	}
	return m.newTask.wait(ctx)
}

// GetTask scans lanes highest-priority-first and pops the head of the first
// non-empty lane found. The returned meta is a *taskMeta carrying the
// originating lane, to be passed back unchanged to RevertTask.
func (m *PriorityWorkQueueManager[Arg]) GetTask() (task.Wrapper[Arg], any, bool) {
	m.mu.Lock()
	for p := m.maxPriority; p >= 0; p-- {
		lane := m.lanes[p]
		if len(lane) == 0 {
			continue
		}
		w := lane[0]
		m.lanes[p] = lane[1:]
		n := m.totalLocked()
		collector, family := m.collector, m.family
		m.mu.Unlock()
		if collector != nil {
			collector.SetPending(family, n)
		}
		return w, &taskMeta{priority: p}, true
	}
	m.mu.Unlock()
	var zero task.Wrapper[Arg]
	return zero, nil, false
}

// RevertTask pushes w back onto the head of its originating lane, as
// recorded in meta by a prior GetTask call.
func (m *PriorityWorkQueueManager[Arg]) RevertTask(w task.Wrapper[Arg], meta any) {
	priority := 0
	if tm, ok := meta.(*taskMeta); ok && tm != nil {
		priority = tm.priority
	}
	m.mu.Lock()
	m.lanes[priority] = append([]task.Wrapper[Arg]{w}, m.lanes[priority]...)
	n := m.totalLocked()
	collector, family := m.collector, m.family
	m.mu.Unlock()
	m.newTask.set()
	if collector != nil {
		collector.SetPending(family, n)
	}
}

// Len reports total pending wrappers across all lanes.
func (m *PriorityWorkQueueManager[Arg]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalLocked()
}
