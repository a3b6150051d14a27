// ============================================================================
// Task Engine - Task Processors
// ============================================================================
//
// Package: pkg/processor
// File: reusable.go
// Purpose: SingleReusable / MultipleReusable policies: an argument is built
// lazily on first need, kept for subsequent tasks, and torn down (Deactivate
// + dispose, if it implements StartStoppable) after an idle period with no
// use. MultipleReusable generalizes the single-slot case to N independent
// single-slot pools for when more than one concurrent long-lived argument
// is wanted.
//
// ============================================================================

package processor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/queue"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

// Factory builds a fresh argument value on demand.
type Factory[Arg any] func(ctx context.Context) (Arg, error)

type reusableSlot[Arg any] struct {
	mu       sync.Mutex
	built    bool
	arg      Arg
	lastUsed time.Time
	inUse    bool
}

func (s *reusableSlot[Arg]) teardownLocked(ctx context.Context, logger *slog.Logger) {
	if !s.built {
		return
	}
	disposeArg(ctx, s.arg, logger)
	var zero Arg
	s.arg = zero
	s.built = false
}

// disposeArg runs an argument's StartStoppable.Deactivate (if implemented)
// and then Close (if it additionally implements io.Closer), logging but not
// propagating failures - teardown is best-effort.
func disposeArg(ctx context.Context, arg any, logger *slog.Logger) {
	if ss, ok := arg.(StartStoppable); ok && ss.IsActive() {
		if err := ss.Deactivate(ctx); err != nil && logger != nil {
			logger.Warn("reusable argument deactivate failed", "error", err)
		}
	}
	if closer, ok := arg.(io.Closer); ok {
		if err := closer.Close(); err != nil && logger != nil {
			logger.Warn("reusable argument close failed", "error", err)
		}
	}
}

// ReusableProcessor pools up to maxSimultaneous lazily-built, reused
// arguments, tearing each down after idleTimeout with no checkouts.
type ReusableProcessor[Arg any] struct {
	factory     Factory[Arg]
	idleTimeout time.Duration
	slots       []*reusableSlot[Arg]
	free        chan int
	wg          sync.WaitGroup
	stopReaper  context.CancelFunc
	reaperDone  chan struct{}
}

// NewSingleReusable creates a processor with one reusable argument slot.
func NewSingleReusable[Arg any](factory Factory[Arg], idleTimeout time.Duration) *ReusableProcessor[Arg] {
	return NewMultipleReusable(factory, 1, idleTimeout)
}

// NewMultipleReusable creates a processor pooling up to maxSimultaneous
// reusable argument slots.
func NewMultipleReusable[Arg any](factory Factory[Arg], maxSimultaneous int, idleTimeout time.Duration) *ReusableProcessor[Arg] {
	if maxSimultaneous < 1 {
		maxSimultaneous = 1
	}
	p := &ReusableProcessor[Arg]{
		factory:     factory,
		idleTimeout: idleTimeout,
		slots:       make([]*reusableSlot[Arg], maxSimultaneous),
		free:        make(chan int, maxSimultaneous),
	}
	for i := range p.slots {
		p.slots[i] = &reusableSlot[Arg]{}
		p.free <- i
	}
	if idleTimeout > 0 {
		reapCtx, cancel := context.WithCancel(context.Background())
		p.stopReaper = cancel
		p.reaperDone = make(chan struct{})
		go p.reapIdle(reapCtx)
	}
	return p
}

func (p *ReusableProcessor[Arg]) reapIdle(ctx context.Context) {
	defer close(p.reaperDone)
	ticker := time.NewTicker(p.idleTimeout)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			for _, slot := range p.slots {
				slot.mu.Lock()
				if slot.built && !slot.inUse && now.Sub(slot.lastUsed) >= p.idleTimeout {
					slot.teardownLocked(ctx, nil)
				}
				slot.mu.Unlock()
			}
		}
	}
}

func (p *ReusableProcessor[Arg]) ProcessPendingTasks(ctx context.Context, m queue.Manager[Arg], services *registry.Registry, logger *slog.Logger) {
	for m.HasTask() && ctx.Err() == nil {
		w, meta, ok := m.GetTask()
		if !ok {
			continue
		}
		var idx int
		select {
		case idx = <-p.free:
		case <-ctx.Done():
			m.RevertTask(w, meta)
			continue
		}
		slot := p.slots[idx]
		slot.mu.Lock()
		if !slot.built {
			arg, err := p.factory(ctx)
			if err != nil {
				slot.mu.Unlock()
				if logger != nil {
					logger.Error("reusable argument factory failed", "error", err)
				}
				m.RevertTask(w, meta)
				p.free <- idx
				continue
			}
			if ss, ok := any(arg).(StartStoppable); ok {
				if err := ss.Activate(ctx); err != nil {
					slot.mu.Unlock()
					if logger != nil {
						logger.Error("reusable argument activate failed", "error", err)
					}
					m.RevertTask(w, meta)
					p.free <- idx
					continue
				}
			}
			slot.arg = arg
			slot.built = true
		}
		slot.inUse = true
		arg := slot.arg
		slot.mu.Unlock()

		p.wg.Add(1)
		go func(w task.Wrapper[Arg], meta any, idx int, arg Arg) {
			defer p.wg.Done()
			terminal := w.Execute(ctx, arg, services, logger, ctx.Done())
			slot := p.slots[idx]
			slot.mu.Lock()
			slot.inUse = false
			slot.lastUsed = time.Now()
			slot.mu.Unlock()
			if !terminal {
				m.RevertTask(w, meta)
			}
			p.free <- idx
		}(w, meta, idx, arg)
	}
	p.wg.Wait()
}

// Shutdown awaits in-flight executions, stops the idle reaper, and tears
// down every built slot.
func (p *ReusableProcessor[Arg]) Shutdown(ctx context.Context) {
	p.wg.Wait()
	if p.stopReaper != nil {
		p.stopReaper()
		<-p.reaperDone
	}
	for _, slot := range p.slots {
		slot.mu.Lock()
		slot.teardownLocked(ctx, nil)
		slot.mu.Unlock()
	}
}
