package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/processor"
	"github.com/ChuLiYu/taskengine/pkg/queue"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

func TestWorkerExecutesSubmittedWork(t *testing.T) {
	m := queue.NewWorkQueueManager[task.NullArg](1)
	w := New[task.NullArg](m, processor.NewSingleNull(), registry.New(), nil)
	w.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = w.Stop(ctx)
	}()

	var ran int32
	future := queue.EnqueueWork(m, func(ctx context.Context, services *registry.Registry) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}, 1, nil)

	_, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestWorkerStopDrainsShutdownableProcessor(t *testing.T) {
	m := queue.NewWorkQueueManager[task.NullArg](1)
	proc := processor.NewMultipleNull(2)
	w := New[task.NullArg](m, proc, registry.New(), nil)
	w.Start()

	started := make(chan struct{})
	release := make(chan struct{})
	queue.EnqueueWork(m, func(ctx context.Context, services *registry.Registry) error {
		close(started)
		<-release
		return nil
	}, 1, nil)

	<-started
	stopped := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		stopped <- w.Stop(ctx)
	}()

	select {
	case err := <-stopped:
		t.Fatalf("Stop returned before in-flight work finished: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop never returned after in-flight work finished")
	}
}

func TestWorkerStartIsIdempotent(t *testing.T) {
	m := queue.NewWorkQueueManager[task.NullArg](1)
	w := New[task.NullArg](m, processor.NewSingleNull(), registry.New(), nil)
	w.Start()
	w.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, w.Stop(ctx))
}

func TestWorkerStopWithoutStartIsNoop(t *testing.T) {
	m := queue.NewWorkQueueManager[task.NullArg](1)
	w := New[task.NullArg](m, processor.NewSingleNull(), registry.New(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, w.Stop(ctx))
}
