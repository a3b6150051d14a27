package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

type doubleMachine struct{}

func (doubleMachine) MaxAttempts() int { return 3 }
func (doubleMachine) Process(ctx context.Context, data int, attempt int, services *registry.Registry) (int, error) {
	return data * 2, nil
}

func TestProcessDataBatchPreservesInputOrder(t *testing.T) {
	m := NewConveyorManager[int, int](5)
	machine := doubleMachine{}

	items := []int{1, 2, 3, 4, 5}
	futures := ProcessDataBatch(m, items, 3, nil)
	require.Len(t, futures, len(items))

	for m.HasTask() {
		w, meta, ok := m.GetTask()
		require.True(t, ok)
		if !w.Execute(context.Background(), machine, registry.New(), nil, nil) {
			m.RevertTask(w, meta)
		}
	}

	for i, f := range futures {
		val, err := f.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, items[i]*2, val)
	}
}

func TestProcessDataPriorityValidatesLane(t *testing.T) {
	m := NewPriorityConveyorManager[int, int](1, 3)
	_, err := ProcessDataPriority[int, int](m, 1, 3, 5, nil)
	assert.ErrorIs(t, err, task.ErrArgumentInvalid)
}

func TestEnqueueResultWorkSettlesFuture(t *testing.T) {
	m := NewWorkQueueManager[task.NullArg](0)
	future := EnqueueResultWork(m, func(ctx context.Context, services *registry.Registry) (string, error) {
		return "hi", nil
	}, 1, nil)

	w, _, ok := m.GetTask()
	require.True(t, ok)
	w.Execute(context.Background(), task.NullArg{}, registry.New(), nil, nil)

	val, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", val)
}
