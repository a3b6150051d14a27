// ============================================================================
// Task Engine - Task Processors
// ============================================================================
//
// Package: pkg/processor
// File: static.go
// Purpose: SingleStatic / MultipleStatic policies: one or N pre-built,
// long-lived arguments handed out from a pool. Acquiring a pool slot IS the
// mutual-exclusion mechanism and the concurrency bound, so no separate
// semaphore is needed.
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

// StaticProcessor hands out one of a fixed, pre-built set of arguments per
// execution; at-most-one concurrent user per argument instance.
type StaticProcessor[Arg any] struct {
	pool chan Arg
	wg   sync.WaitGroup
}

// NewSingleStatic creates a processor with exactly one fixed argument.
func NewSingleStatic[Arg any](arg Arg) *StaticProcessor[Arg] {
	return NewMultipleStatic([]Arg{arg})
}

// NewMultipleStatic creates a processor pooling the given pre-built
// arguments; concurrency equals len(args).
func NewMultipleStatic[Arg any](args []Arg) *StaticProcessor[Arg] {
	pool := make(chan Arg, len(args))
	for _, a := range args {
		pool <- a
	}
	return &StaticProcessor[Arg]{pool: pool}
}

func (p *StaticProcessor[Arg]) ProcessPendingTasks(ctx context.Context, m queue.Manager[Arg], services *registry.Registry, logger *slog.Logger) {
	for m.HasTask() && ctx.Err() == nil {
		w, meta, ok := m.GetTask()
		if !ok {
			continue
		}
		var arg Arg
		select {
		case arg = <-p.pool:
		case <-ctx.Done():
			m.RevertTask(w, meta)
			continue
		}
		p.wg.Add(1)
		go func(w task.Wrapper[Arg], meta any, arg Arg) {
			defer p.wg.Done()
			defer func() { p.pool <- arg }()
			if !w.Execute(ctx, arg, services, logger, ctx.Done()) {
				m.RevertTask(w, meta)
			}
		}(w, meta, arg)
	}
	p.wg.Wait()
}

// Shutdown awaits any in-flight executions.
func (p *StaticProcessor[Arg]) Shutdown(ctx context.Context) {
	_ = ctx
	p.wg.Wait()
}
