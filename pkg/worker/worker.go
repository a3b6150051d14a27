// ============================================================================
// Task Engine - Task Workers
// ============================================================================
//
// Package: pkg/worker
// File: worker.go
// Purpose: Worker ties one manager to one processor and pumps it in a
// long-lived background loop, started on host start and stopped on host
// stop. Mirrors a worker-pool's Start/Stop lifecycle, scaled down from a
// pool of N generic workers to one pump loop per manager+processor pair
// (pkg/scheduler reuses the same shape for its own, differently-structured
// pump).
//
// ============================================================================

package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/processor"
	"github.com/ChuLiYu/taskengine/pkg/queue"
)

// Worker is the long-lived pump loop connecting a manager and a processor.
type Worker[Arg any] struct {
	manager   queue.Manager[Arg]
	processor processor.Processor[Arg]
	services  *registry.Registry
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a worker over the given manager/processor pair. services is
// handed to every task value's Execute call; logger receives warn/error
// entries for retries and unhandled failures.
func New[Arg any](manager queue.Manager[Arg], proc processor.Processor[Arg], services *registry.Registry, logger *slog.Logger) *Worker[Arg] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker[Arg]{manager: manager, processor: proc, services: services, logger: logger}
}

// Start launches the pump goroutine. Calling Start twice is a no-op.
func (w *Worker[Arg]) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.started = true
	go w.pump(ctx)
}

// pump drains while the manager has tasks and
// shutdown has not been signaled, then suspend on WaitForTask until a new
// task arrives or cancel fires. WaitForTask returning ctx.Err() (shutdown)
// is the normal exit path; any other unexpected error is logged and the
// loop continues rather than exiting, since the manager/processor pairing
// has no other error path that should kill the worker.
func (w *Worker[Arg]) pump(ctx context.Context) {
	defer close(w.done)
	for {
		for w.manager.HasTask() && ctx.Err() == nil {
			w.processor.ProcessPendingTasks(ctx, w.manager, w.services, w.logger)
		}
		if ctx.Err() != nil {
			w.drainShutdown(ctx)
			return
		}
		if err := w.manager.WaitForTask(ctx); err != nil {
			if ctx.Err() != nil {
				w.drainShutdown(ctx)
				return
			}
			w.logger.Error("worker wait-for-task failed, continuing", "error", err)
		}
	}
}

func (w *Worker[Arg]) drainShutdown(ctx context.Context) {
	if sd, ok := w.processor.(processor.Shutdownable); ok {
		sd.Shutdown(context.Background())
	}
	_ = ctx
}

// Stop signals shutdown and blocks until the pump loop (and any
// Shutdownable processor teardown) has exited, or ctx is done first.
func (w *Worker[Arg]) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
