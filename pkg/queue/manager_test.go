package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

func TestWorkQueueManagerFIFOOrder(t *testing.T) {
	m := NewWorkQueueManager[task.NullArg](0)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		work := func(ctx context.Context, services *registry.Registry) error {
			order = append(order, i)
			return nil
		}
		EnqueueWork(m, work, 1, nil)
	}

	for m.HasTask() {
		w, meta, ok := m.GetTask()
		require.True(t, ok)
		w.Execute(context.Background(), task.NullArg{}, registry.New(), nil, nil)
		_ = meta
	}
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestWorkQueueManagerRevertGoesToHead(t *testing.T) {
	m := NewWorkQueueManager[task.NullArg](3)

	fut1 := EnqueueWork(m, func(ctx context.Context, services *registry.Registry) error { return nil }, 1, nil)
	fut2 := EnqueueWork(m, func(ctx context.Context, services *registry.Registry) error { return nil }, 1, nil)

	w1, meta1, ok := m.GetTask()
	require.True(t, ok)
	m.RevertTask(w1, meta1)

	w, _, ok := m.GetTask()
	require.True(t, ok)
	assert.Equal(t, w1.ID(), w.ID(), "reverted task must be retried before the next one in line")

	w.Execute(context.Background(), task.NullArg{}, registry.New(), nil, nil)
	_, err := fut1.Wait(context.Background())
	assert.NoError(t, err)

	w2, _, ok := m.GetTask()
	require.True(t, ok)
	w2.Execute(context.Background(), task.NullArg{}, registry.New(), nil, nil)
	_, err = fut2.Wait(context.Background())
	assert.NoError(t, err)
}

func TestWorkQueueManagerWaitForTaskWakesOnSubmit(t *testing.T) {
	m := NewWorkQueueManager[task.NullArg](1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.WaitForTask(ctx) }()

	time.Sleep(10 * time.Millisecond)
	EnqueueWork(m, func(ctx context.Context, services *registry.Registry) error { return nil }, 1, nil)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitForTask never woke up after Submit")
	}
}

func TestWorkQueueManagerWaitForTaskRespectsCancel(t *testing.T) {
	m := NewWorkQueueManager[task.NullArg](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.WaitForTask(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClampAttempts(t *testing.T) {
	assert.Equal(t, 1, clampAttempts(0, 5))
	assert.Equal(t, 5, clampAttempts(10, 5))
	assert.Equal(t, 3, clampAttempts(3, 5))
	assert.Equal(t, 10, clampAttempts(10, 0), "zero ceiling is unbounded")
}
