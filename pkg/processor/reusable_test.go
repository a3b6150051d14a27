package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/queue"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

type lifecycleArg struct {
	id       int
	active   int32
	activate int32
	close    int32
}

func (a *lifecycleArg) IsActive() bool { return atomic.LoadInt32(&a.active) == 1 }
func (a *lifecycleArg) Activate(ctx context.Context) error {
	atomic.AddInt32(&a.activate, 1)
	atomic.StoreInt32(&a.active, 1)
	return nil
}
func (a *lifecycleArg) Deactivate(ctx context.Context) error {
	atomic.StoreInt32(&a.active, 0)
	return nil
}
func (a *lifecycleArg) Close() error {
	atomic.AddInt32(&a.close, 1)
	return nil
}

func TestSingleReusableBuildsLazilyAndReuses(t *testing.T) {
	var builds int32
	factory := func(ctx context.Context) (*lifecycleArg, error) {
		n := atomic.AddInt32(&builds, 1)
		return &lifecycleArg{id: int(n)}, nil
	}
	p := NewSingleReusable(factory, 0)
	m := queue.NewWorkQueueManager[*lifecycleArg](2)

	var used []int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		work := func(ctx context.Context, arg *lifecycleArg, services *registry.Registry) (struct{}, error) {
			mu.Lock()
			used = append(used, arg.id)
			mu.Unlock()
			return struct{}{}, nil
		}
		w, _ := task.NewResultAccessWrapper(task.ResultAccess[*lifecycleArg, struct{}](work), 1, context.Background())
		m.Submit(w)
	}

	p.ProcessPendingTasks(context.Background(), m, registry.New(), nil)
	p.Shutdown(context.Background())

	assert.Equal(t, int32(1), builds, "one slot should only build its argument once")
	assert.Equal(t, []int{1, 1, 1}, used)
}

func TestReusableProcessorTearsDownOnShutdown(t *testing.T) {
	factory := func(ctx context.Context) (*lifecycleArg, error) {
		return &lifecycleArg{}, nil
	}
	p := NewSingleReusable(factory, time.Hour)
	m := queue.NewWorkQueueManager[*lifecycleArg](1)

	var built *lifecycleArg
	work := func(ctx context.Context, arg *lifecycleArg, services *registry.Registry) (struct{}, error) {
		built = arg
		return struct{}{}, nil
	}
	w, _ := task.NewResultAccessWrapper(task.ResultAccess[*lifecycleArg, struct{}](work), 1, context.Background())
	m.Submit(w)

	p.ProcessPendingTasks(context.Background(), m, registry.New(), nil)
	require.NotNil(t, built)
	p.Shutdown(context.Background())

	assert.False(t, built.IsActive(), "shutdown must deactivate the built argument")
	assert.Equal(t, int32(1), atomic.LoadInt32(&built.close))
}

func TestReusableProcessorRevertsOnFactoryFailure(t *testing.T) {
	boom := 0
	factory := func(ctx context.Context) (*lifecycleArg, error) {
		boom++
		return nil, context.DeadlineExceeded
	}
	p := NewSingleReusable(factory, 0)
	m := queue.NewWorkQueueManager[*lifecycleArg](1)

	work := func(ctx context.Context, arg *lifecycleArg, services *registry.Registry) (struct{}, error) {
		t.Fatal("work must never run if the factory failed")
		return struct{}{}, nil
	}
	w, _ := task.NewResultAccessWrapper(task.ResultAccess[*lifecycleArg, struct{}](work), 1, context.Background())
	m.Submit(w)

	// Factory always fails, so the task is reverted (without consuming an
	// attempt) on every pass and never executes; ProcessPendingTasks itself
	// loops until the manager drains or ctx is done, so a bounded ctx is
	// required to observe the revert-without-progress behavior at all.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	p.ProcessPendingTasks(ctx, m, registry.New(), nil)

	assert.Greater(t, boom, 0)
	assert.True(t, m.HasTask(), "task stays pending since attempts are only spent by Execute")
}
