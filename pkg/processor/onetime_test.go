package processor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/queue"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

func TestOneTimeProcessorBuildsFreshArgumentPerTask(t *testing.T) {
	var builds int32
	factory := func(ctx context.Context) (*lifecycleArg, error) {
		n := atomic.AddInt32(&builds, 1)
		return &lifecycleArg{id: int(n)}, nil
	}
	p := NewSingleOneTime(factory)
	m := queue.NewWorkQueueManager[*lifecycleArg](1)

	for i := 0; i < 3; i++ {
		work := func(ctx context.Context, arg *lifecycleArg, services *registry.Registry) (struct{}, error) {
			return struct{}{}, nil
		}
		w, _ := task.NewResultAccessWrapper(task.ResultAccess[*lifecycleArg, struct{}](work), 1, context.Background())
		m.Submit(w)
	}

	p.ProcessPendingTasks(context.Background(), m, registry.New(), nil)
	p.Shutdown(context.Background())

	assert.Equal(t, int32(3), builds, "each task gets its own freshly built argument")
}

func TestOneTimeProcessorActivatesAndDeactivates(t *testing.T) {
	arg := &lifecycleArg{}
	factory := func(ctx context.Context) (*lifecycleArg, error) { return arg, nil }
	p := NewSingleOneTime(factory)
	m := queue.NewWorkQueueManager[*lifecycleArg](1)

	var activeDuringExecute bool
	work := func(ctx context.Context, a *lifecycleArg, services *registry.Registry) (struct{}, error) {
		activeDuringExecute = a.IsActive()
		return struct{}{}, nil
	}
	w, _ := task.NewResultAccessWrapper(task.ResultAccess[*lifecycleArg, struct{}](work), 1, context.Background())
	m.Submit(w)

	p.ProcessPendingTasks(context.Background(), m, registry.New(), nil)
	p.Shutdown(context.Background())

	assert.True(t, activeDuringExecute)
	assert.Equal(t, int32(1), atomic.LoadInt32(&arg.activate))
	assert.False(t, arg.IsActive(), "detached teardown deactivates after Execute returns")
}

func TestOneTimeProcessorRevertsOnActivateFailure(t *testing.T) {
	callCount := 0
	factory := func(ctx context.Context) (*failingActivateArg, error) {
		callCount++
		return &failingActivateArg{}, nil
	}
	p := NewSingleOneTime(factory)
	m := queue.NewWorkQueueManager[*failingActivateArg](1)

	work := func(ctx context.Context, a *failingActivateArg, services *registry.Registry) (struct{}, error) {
		t.Fatal("work must not run once activate fails")
		return struct{}{}, nil
	}
	w, future := task.NewResultAccessWrapper(task.ResultAccess[*failingActivateArg, struct{}](work), 1, context.Background())
	m.Submit(w)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	p.ProcessPendingTasks(ctx, m, registry.New(), nil)
	p.Shutdown(context.Background())

	_, _, ok := future.TryResult()
	require.False(t, ok, "task is reverted, not settled, on activation failure")
	assert.Greater(t, callCount, 0)
}

type failingActivateArg struct{}

func (*failingActivateArg) IsActive() bool                       { return false }
func (*failingActivateArg) Activate(ctx context.Context) error   { return context.DeadlineExceeded }
func (*failingActivateArg) Deactivate(ctx context.Context) error { return nil }
