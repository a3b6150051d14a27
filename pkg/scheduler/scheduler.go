// ============================================================================
// Task Engine - Scheduler
// ============================================================================
//
// Package: pkg/scheduler
// File: scheduler.go
// Purpose: Scheduler - the single-threaded cooperative pump loop promoting
// due wrappers. Structurally mirrors pkg/worker.Worker's
// Start/Stop lifecycle, but the pump itself follows the scheduler's own
// sleep-until-next-fire-time shape rather than the plain drain-then-wait
// shape of a task worker.
//
// ============================================================================

package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ChuLiYu/taskengine/internal/metrics"
	"github.com/ChuLiYu/taskengine/internal/registry"
)

// Scheduler promotes due ScheduledWrappers, executing them directly or
// forwarding them into a work queue per each wrapper's own dispatch
// closure.
type Scheduler struct {
	manager  *WorkSchedulerManager
	services *registry.Registry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a scheduler pump over manager. services may be nil (no
// metrics collector resolvable, the pump simply skips reporting); passing
// the engine's registry lets the pump report tick duration and upcoming
// task count through its *metrics.Collector, if one is registered.
func New(manager *WorkSchedulerManager, services *registry.Registry, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{manager: manager, services: services, logger: logger}
}

// Start launches the pump goroutine. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true
	go s.pump(ctx)
}

// Stop signals shutdown and blocks until the pump loop exits or ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pump sleeps until the earliest pending fire time, then promotes every
// wrapper due by then before looping again.
func (s *Scheduler) pump(ctx context.Context) {
	defer close(s.done)
	var collector *metrics.Collector
	if s.services != nil {
		collector, _ = registry.Resolve[*metrics.Collector](s.services)
	}
	for {
		next, ok := s.manager.GetNextTaskTime()
		if !ok {
			if err := s.manager.WaitForNewTask(ctx); err != nil {
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-s.manager.newTask.ch:
				timer.Stop()
				continue
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}

		tickStart := time.Now()
		due := s.manager.GetUpcomingTasks(time.Now(), 0)
		for _, w := range due {
			if w.Canceled() {
				continue
			}
			w.fire(ctx)
			if w.advance(w.NextFireTime()) {
				s.manager.RevertWork(w)
			}
		}
		if collector != nil && len(due) > 0 {
			collector.ObserveSchedulerTick(time.Since(tickStart))
		}
		if collector != nil {
			collector.SetSchedulerUpcoming(s.manager.Len())
		}

		if ctx.Err() != nil {
			return
		}
	}
}
