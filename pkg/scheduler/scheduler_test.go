package scheduler

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

func startTestScheduler(t *testing.T) (*Scheduler, *WorkSchedulerManager) {
	t.Helper()
	m := NewWorkSchedulerManager()
	s := New(m, nil, nil)
	s.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s, m
}

func TestAddScheduledWorkFiresExactlyOnce(t *testing.T) {
	_, m := startTestScheduler(t)

	var calls int32
	work := func(ctx context.Context, services *registry.Registry) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	handle, cancel := AddScheduledWork(m, work, time.Now().Add(10*time.Millisecond), 1, registry.New(), nil)
	defer cancel()

	select {
	case _, ok := <-handle.Results():
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("scheduled work never fired")
	}

	_, ok := <-handle.Results()
	assert.False(t, ok, "handle closes after the single fire")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAddRepeatedWorkFiresExactCount(t *testing.T) {
	_, m := startTestScheduler(t)

	const execCount = 5
	var calls int32
	work := func(ctx context.Context, services *registry.Registry) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	handle, cancel := AddRepeatedWork(m, work, time.Now().Add(5*time.Millisecond), 10*time.Millisecond, execCount, 1, registry.New(), nil)
	defer cancel()

	count := 0
	timeout := time.After(2 * time.Second)
drain:
	for {
		select {
		case _, ok := <-handle.Results():
			if !ok {
				break drain
			}
			count++
		case <-timeout:
			t.Fatal("repeated work did not complete its sequence in time")
		}
	}

	assert.Equal(t, execCount, count)
	assert.Equal(t, int32(execCount), atomic.LoadInt32(&calls))
}

func TestAddCronWorkFiresExactCount(t *testing.T) {
	_, m := startTestScheduler(t)

	const execCount = 3
	var calls int32
	work := func(ctx context.Context, services *registry.Registry) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	handle, cancel, err := AddCronWork(m, work, "@every 5ms", execCount, 1, registry.New(), nil)
	require.NoError(t, err)
	defer cancel()

	count := 0
	timeout := time.After(3 * time.Second)
drain:
	for {
		select {
		case _, ok := <-handle.Results():
			if !ok {
				break drain
			}
			count++
		case <-timeout:
			t.Fatal("cron work did not complete its sequence in time")
		}
	}

	assert.Equal(t, execCount, count)
}

func TestAddCronWorkRejectsMalformedExpression(t *testing.T) {
	_, m := startTestScheduler(t)
	_, _, err := AddCronWork(m, func(ctx context.Context, services *registry.Registry) error { return nil }, "nonsense", 1, 1, registry.New(), nil)
	assert.ErrorIs(t, err, task.ErrConfigurationError)
}

func TestAddRepeatedWorkCancelStopsFutureFirings(t *testing.T) {
	_, m := startTestScheduler(t)

	var calls int32
	work := func(ctx context.Context, services *registry.Registry) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	handle, cancel := AddRepeatedWork(m, work, time.Now().Add(5*time.Millisecond), 20*time.Millisecond, -1, 1, registry.New(), nil)

	// Let a couple of firings happen, then cancel mid-sequence. Cancellation
	// makes the pump silently drop the wrapper on its next due check (it
	// never reaches wrapDirectFinish), so the handle itself is never closed -
	// only further deliveries stop.
	<-handle.Results()
	<-handle.Results()
	cancel()

	observed := atomic.LoadInt32(&calls)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, observed, atomic.LoadInt32(&calls), "no further firings after cancel")
}

func TestAddQueuedScheduledWorkForwardsIntoTargetQueue(t *testing.T) {
	_, m := startTestScheduler(t)
	target := queue.NewWorkQueueManager[task.NullArg](4)

	var ran int32
	work := func(ctx context.Context, services *registry.Registry) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}

	handle, cancel := AddQueuedScheduledWork(m, target, work, time.Now().Add(5*time.Millisecond), 1)
	defer cancel()

	require.Eventually(t, func() bool { return target.HasTask() }, time.Second, time.Millisecond)

	w, _, ok := target.GetTask()
	require.True(t, ok)
	w.Execute(context.Background(), task.NullArg{}, registry.New(), nil, nil)

	<-handle.Results()
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestSchedulerStopIsIdempotentAndAwaitsPump(t *testing.T) {
	m := NewWorkSchedulerManager()
	s := New(m, nil, nil)
	s.Start()
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
	assert.NoError(t, s.Stop(ctx))
}
