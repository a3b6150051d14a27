package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/queue"
)

type countingResource struct {
	mu    sync.Mutex
	value int
}

func TestSingleStaticProcessorSerializesAccess(t *testing.T) {
	resource := &countingResource{}
	m := queue.NewAccessQueueManager[*countingResource](1)
	p := NewSingleStatic(resource)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		future := queue.EnqueueAccess[*countingResource](m, func(ctx context.Context, r *countingResource, services *registry.Registry) error {
			r.mu.Lock()
			r.value++
			r.mu.Unlock()
			return nil
		}, 1, nil)
		go func() {
			defer wg.Done()
			future.Wait(context.Background())
		}()
	}

	p.ProcessPendingTasks(context.Background(), m, registry.New(), nil)
	wg.Wait()
	assert.Equal(t, n, resource.value)
}

func TestMultipleStaticProcessorPoolSizeBoundsConcurrency(t *testing.T) {
	m := queue.NewAccessQueueManager[int](1)
	p := NewMultipleStatic([]int{1, 2})

	var mu sync.Mutex
	inUse := map[int]bool{}
	maxConcurrent := 0
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		future := queue.EnqueueAccess[int](m, func(ctx context.Context, arg int, services *registry.Registry) error {
			mu.Lock()
			inUse[arg] = true
			if len(inUse) > maxConcurrent {
				maxConcurrent = len(inUse)
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			delete(inUse, arg)
			mu.Unlock()
			return nil
		}, 1, nil)
		go func() {
			defer wg.Done()
			future.Wait(context.Background())
		}()
	}

	p.ProcessPendingTasks(context.Background(), m, registry.New(), nil)
	wg.Wait()
	require.LessOrEqual(t, maxConcurrent, 2)
}

func TestStaticProcessorShutdownAwaitsInFlight(t *testing.T) {
	resource := &countingResource{}
	m := queue.NewAccessQueueManager[*countingResource](1)
	p := NewSingleStatic(resource)

	queue.EnqueueAccess[*countingResource](m, func(ctx context.Context, r *countingResource, services *registry.Registry) error {
		time.Sleep(10 * time.Millisecond)
		r.mu.Lock()
		r.value = 1
		r.mu.Unlock()
		return nil
	}, 1, nil)

	p.ProcessPendingTasks(context.Background(), m, registry.New(), nil)
	p.Shutdown(context.Background())

	resource.mu.Lock()
	defer resource.mu.Unlock()
	assert.Equal(t, 1, resource.value)
}
