// ============================================================================
// Task Engine - Task Processors
// ============================================================================
//
// Package: pkg/processor
// File: nullarg.go
// Purpose: NullArgument policies for task families needing no argument
// (plain Work). SingleNull runs one task at a time; MultipleNull bounds
// concurrency with a semaphore.
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

// SingleNullProcessor executes one task at a time with a dummy argument.
type SingleNullProcessor struct{}

// NewSingleNull creates a single-concurrency null-argument processor.
func NewSingleNull() *SingleNullProcessor { return &SingleNullProcessor{} }

func (p *SingleNullProcessor) ProcessPendingTasks(ctx context.Context, m queue.Manager[task.NullArg], services *registry.Registry, logger *slog.Logger) {
	for m.HasTask() && ctx.Err() == nil {
		w, meta, ok := m.GetTask()
		if !ok {
			continue
		}
		if !w.Execute(ctx, task.NullArg{}, services, logger, ctx.Done()) {
			m.RevertTask(w, meta)
		}
	}
}

// MultipleNullProcessor executes up to maxSimultaneous tasks concurrently,
// each with a dummy argument.
type MultipleNullProcessor struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewMultipleNull creates a null-argument processor bounded to
// maxSimultaneous concurrent executions.
func NewMultipleNull(maxSimultaneous int) *MultipleNullProcessor {
	if maxSimultaneous < 1 {
		maxSimultaneous = 1
	}
	return &MultipleNullProcessor{sem: make(chan struct{}, maxSimultaneous)}
}

func (p *MultipleNullProcessor) ProcessPendingTasks(ctx context.Context, m queue.Manager[task.NullArg], services *registry.Registry, logger *slog.Logger) {
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
		go func(w task.Wrapper[task.NullArg], meta any) {
			defer p.wg.Done()
			defer func() { <-p.sem }()
			if !w.Execute(ctx, task.NullArg{}, services, logger, ctx.Done()) {
				m.RevertTask(w, meta)
			}
		}(w, meta)
	}
	p.wg.Wait()
}

// Shutdown awaits any in-flight executions still draining after the pump
// loop observed cancellation.
func (p *MultipleNullProcessor) Shutdown(ctx context.Context) {
	_ = ctx
	p.wg.Wait()
}
