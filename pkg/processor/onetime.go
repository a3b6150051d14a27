// ============================================================================
// Task Engine - Task Processors
// ============================================================================
//
// Package: pkg/processor
// File: onetime.go
// Purpose: SingleOneTime / MultipleOneTime policies: a fresh argument is
// built per task. If it implements StartStoppable, Activate runs before
// Execute and Deactivate+dispose run afterwards on a detached, fire-and-
// forget goroutine. Factory/activation failure
// reverts the task without consuming an attempt (the failure happened
// before Execute ever ran, so no attempt was spent) and logs.
//
// ============================================================================

package processor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/queue"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

// OneTimeProcessor builds a fresh argument per task, bounded to
// maxSimultaneous concurrent in-flight tasks.
type OneTimeProcessor[Arg any] struct {
	factory Factory[Arg]
	sem     chan struct{}
	wg      sync.WaitGroup
	// cleanupWG tracks the detached Deactivate+dispose continuations so
	// Shutdown can await them without blocking the pump loop on teardown.
	cleanupWG sync.WaitGroup
}

// NewSingleOneTime creates a processor building one fresh argument at a
// time.
func NewSingleOneTime[Arg any](factory Factory[Arg]) *OneTimeProcessor[Arg] {
	return NewMultipleOneTime(factory, 1)
}

// NewMultipleOneTime creates a processor bounded to maxSimultaneous
// concurrently in-flight, independently-built arguments.
func NewMultipleOneTime[Arg any](factory Factory[Arg], maxSimultaneous int) *OneTimeProcessor[Arg] {
	if maxSimultaneous < 1 {
		maxSimultaneous = 1
	}
	return &OneTimeProcessor[Arg]{factory: factory, sem: make(chan struct{}, maxSimultaneous)}
}

func (p *OneTimeProcessor[Arg]) ProcessPendingTasks(ctx context.Context, m queue.Manager[Arg], services *registry.Registry, logger *slog.Logger) {
	for m.HasTask() && ctx.Err() == nil {
		w, meta, ok := m.GetTask()
		if !ok {
			continue
		}
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			m.RevertTask(w, meta)
			continue
		}
		p.wg.Add(1)
		go p.runOne(ctx, m, w, meta, services, logger)
	}
	p.wg.Wait()
}

func (p *OneTimeProcessor[Arg]) runOne(ctx context.Context, m queue.Manager[Arg], w task.Wrapper[Arg], meta any, services *registry.Registry, logger *slog.Logger) {
	defer p.wg.Done()
	defer func() { <-p.sem }()

	arg, err := p.factory(ctx)
	if err != nil {
		if logger != nil {
			logger.Error("one-time argument factory failed", "error", err, "task_id", w.ID().String())
		}
		m.RevertTask(w, meta)
		return
	}

	ss, hasLifecycle := any(arg).(StartStoppable)
	if hasLifecycle {
		if err := ss.Activate(ctx); err != nil {
			if logger != nil {
				logger.Error("one-time argument activate failed", "error", err, "task_id", w.ID().String())
			}
			m.RevertTask(w, meta)
			return
		}
	}

	terminal := w.Execute(ctx, arg, services, logger, ctx.Done())

	if hasLifecycle {
		p.cleanupWG.Add(1)
		go func() {
			defer p.cleanupWG.Done()
			disposeArg(context.Background(), arg, logger)
		}()
	}

	if !terminal {
		m.RevertTask(w, meta)
	}
}

// Shutdown awaits in-flight executions and their detached teardown
// continuations.
func (p *OneTimeProcessor[Arg]) Shutdown(ctx context.Context) {
	_ = ctx
	p.wg.Wait()
	p.cleanupWG.Wait()
}
