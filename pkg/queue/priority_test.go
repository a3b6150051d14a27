package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

func TestPriorityQueueServicesHighestLaneFirst(t *testing.T) {
	m := NewPriorityWorkQueueManager[task.NullArg](2, 0)

	var order []string
	submit := func(label string, priority int) {
		work := func(ctx context.Context, services *registry.Registry) error {
			order = append(order, label)
			return nil
		}
		_, err := EnqueueWorkPriority(m, work, 1, priority, nil)
		require.NoError(t, err)
	}

	submit("low", 0)
	submit("mid", 1)
	submit("high", 2)

	for m.HasTask() {
		w, meta, ok := m.GetTask()
		require.True(t, ok)
		w.Execute(context.Background(), task.NullArg{}, registry.New(), nil, nil)
		_ = meta
	}
	assert.Equal(t, []string{"high", "mid", "low"}, order)
}

func TestPriorityQueueValidatesRange(t *testing.T) {
	m := NewPriorityWorkQueueManager[task.NullArg](2, 0)
	err := m.ValidatePriority(3)
	assert.ErrorIs(t, err, task.ErrArgumentInvalid)

	err = m.ValidatePriority(-1)
	assert.ErrorIs(t, err, task.ErrArgumentInvalid)

	assert.NoError(t, m.ValidatePriority(0))
	assert.NoError(t, m.ValidatePriority(2))
}

func TestPriorityQueueRevertRestoresOriginatingLane(t *testing.T) {
	m := NewPriorityWorkQueueManager[task.NullArg](2, 3)

	_, err := EnqueueWorkPriority(m, func(ctx context.Context, services *registry.Registry) error { return nil }, 1, 2, nil)
	require.NoError(t, err)

	w, meta, ok := m.GetTask()
	require.True(t, ok)
	m.RevertTask(w, meta)

	// Submit a higher-priority item would go first, but nothing else is in
	// lane 2; the reverted task must still come back out of lane 2, not
	// lane 0 (the zero-value fallback).
	w2, meta2, ok := m.GetTask()
	require.True(t, ok)
	assert.Equal(t, w.ID(), w2.ID())
	tm, ok := meta2.(*taskMeta)
	require.True(t, ok)
	assert.Equal(t, 2, tm.priority)
}

func TestPriorityQueueLen(t *testing.T) {
	m := NewPriorityWorkQueueManager[task.NullArg](1, 0)
	assert.Equal(t, 0, m.Len())

	_, err := EnqueueWorkPriority(m, func(ctx context.Context, services *registry.Registry) error { return nil }, 1, 0, nil)
	require.NoError(t, err)
	_, err = EnqueueWorkPriority(m, func(ctx context.Context, services *registry.Registry) error { return nil }, 1, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
}
