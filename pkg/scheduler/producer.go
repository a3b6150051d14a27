// ============================================================================
// Task Engine - Scheduler
// ============================================================================
//
// Package: pkg/scheduler
// File: producer.go
// Purpose: Submit-side API: AddScheduledWork, AddRepeatedWork,
// AddCronWork, each in a direct form (executed inline by the scheduler's
// own pump) and a queued form (forwarded into a named work queue, with its
// own attempts/priority, on each firing). Each returns a RecurringHandle
// publishing one Try[T] per occurrence and a cancel func stopping future
// firings.
//
// ============================================================================

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/queue"
	"github.com/ChuLiYu/taskengine/pkg/task"
)

const defaultHandleBuffer = 8

func newInnerCancel() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// --- direct, void -----------------------------------------------------

func directVoidFire(work task.Work, attempts int, innerCtx context.Context, services *registry.Registry, logger *slog.Logger, handle *RecurringHandle[struct{}]) fireFunc {
	return func(ctx context.Context) {
		w, future := task.NewWorkWrapper(work, attempts, innerCtx)
		for {
			if ctx.Err() != nil {
				future.Cancel(task.ErrCanceledByShutdown)
				break
			}
			if w.Execute(ctx, task.NullArg{}, services, logger, ctx.Done()) {
				break
			}
		}
		_, err := future.Wait(context.Background())
		handle.push(Try[struct{}]{Err: err}, innerCtx.Done())
	}
}

// AddScheduledWork schedules work to fire once at fireTime, executed
// directly by the scheduler's pump.
func AddScheduledWork(m *WorkSchedulerManager, work task.Work, fireTime time.Time, attempts int, services *registry.Registry, logger *slog.Logger) (*RecurringHandle[struct{}], context.CancelFunc) {
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[struct{}](1)
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: fireTime, policy: Once(), innerCtx: innerCtx}
	w.fire = wrapDirectFinish(directVoidFire(work, attempts, innerCtx, services, logger, handle), handle, w)
	m.Submit(w)
	return handle, cancel
}

// AddRepeatedWork schedules work to fire at start, start+interval, ...,
// execCount times (-1 for unbounded), executed directly.
func AddRepeatedWork(m *WorkSchedulerManager, work task.Work, start time.Time, interval time.Duration, execCount, attempts int, services *registry.Registry, logger *slog.Logger) (*RecurringHandle[struct{}], context.CancelFunc) {
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[struct{}](defaultHandleBuffer)
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: start, policy: FixedInterval(interval, execCount), innerCtx: innerCtx}
	w.fire = wrapDirectFinish(directVoidFire(work, attempts, innerCtx, services, logger, handle), handle, w)
	m.Submit(w)
	return handle, cancel
}

// AddCronWork schedules work to fire per cronExpr, execCount times (-1 for
// unbounded), executed directly. Returns task.ErrConfigurationError if
// cronExpr is malformed.
func AddCronWork(m *WorkSchedulerManager, work task.Work, cronExpr string, execCount, attempts int, services *registry.Registry, logger *slog.Logger) (*RecurringHandle[struct{}], context.CancelFunc, error) {
	oracle, err := NewCronOracle(cronExpr)
	if err != nil {
		return nil, nil, err
	}
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[struct{}](defaultHandleBuffer)
	policy := Cron(oracle, execCount)
	first, more := policy.Advance(time.Now())
	if !more {
		cancel()
		return nil, nil, task.ErrConfigurationError
	}
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: first, policy: policy, innerCtx: innerCtx}
	w.fire = wrapDirectFinish(directVoidFire(work, attempts, innerCtx, services, logger, handle), handle, w)
	m.Submit(w)
	return handle, cancel, nil
}

// --- direct, result-bearing --------------------------------------------

func directResultFire[T any](work task.ResultWork[T], attempts int, innerCtx context.Context, services *registry.Registry, logger *slog.Logger, handle *RecurringHandle[T]) fireFunc {
	return func(ctx context.Context) {
		w, future := task.NewResultWorkWrapper(work, attempts, innerCtx)
		for {
			if ctx.Err() != nil {
				future.Cancel(task.ErrCanceledByShutdown)
				break
			}
			if w.Execute(ctx, task.NullArg{}, services, logger, ctx.Done()) {
				break
			}
		}
		val, err := future.Wait(context.Background())
		handle.push(Try[T]{Value: val, Err: err}, innerCtx.Done())
	}
}

// AddScheduledResultWork is AddScheduledWork's result-bearing counterpart.
func AddScheduledResultWork[T any](m *WorkSchedulerManager, work task.ResultWork[T], fireTime time.Time, attempts int, services *registry.Registry, logger *slog.Logger) (*RecurringHandle[T], context.CancelFunc) {
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[T](1)
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: fireTime, policy: Once(), innerCtx: innerCtx}
	w.fire = wrapDirectFinishGeneric(directResultFire(work, attempts, innerCtx, services, logger, handle), handle, w)
	m.Submit(w)
	return handle, cancel
}

// AddRepeatedResultWork is AddRepeatedWork's result-bearing counterpart.
func AddRepeatedResultWork[T any](m *WorkSchedulerManager, work task.ResultWork[T], start time.Time, interval time.Duration, execCount, attempts int, services *registry.Registry, logger *slog.Logger) (*RecurringHandle[T], context.CancelFunc) {
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[T](defaultHandleBuffer)
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: start, policy: FixedInterval(interval, execCount), innerCtx: innerCtx}
	w.fire = wrapDirectFinishGeneric(directResultFire(work, attempts, innerCtx, services, logger, handle), handle, w)
	m.Submit(w)
	return handle, cancel
}

// AddCronResultWork is AddCronWork's result-bearing counterpart.
func AddCronResultWork[T any](m *WorkSchedulerManager, work task.ResultWork[T], cronExpr string, execCount, attempts int, services *registry.Registry, logger *slog.Logger) (*RecurringHandle[T], context.CancelFunc, error) {
	oracle, err := NewCronOracle(cronExpr)
	if err != nil {
		return nil, nil, err
	}
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[T](defaultHandleBuffer)
	policy := Cron(oracle, execCount)
	first, more := policy.Advance(time.Now())
	if !more {
		cancel()
		return nil, nil, task.ErrConfigurationError
	}
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: first, policy: policy, innerCtx: innerCtx}
	w.fire = wrapDirectFinishGeneric(directResultFire(work, attempts, innerCtx, services, logger, handle), handle, w)
	m.Submit(w)
	return handle, cancel, nil
}

// --- queued, void -------------------------------------------------------

func queuedVoidFire(target *queue.WorkQueueManager[task.NullArg], work task.Work, attempts int, innerCtx context.Context, handle *RecurringHandle[struct{}]) fireFunc {
	return func(ctx context.Context) {
		future := queue.EnqueueWork(target, work, attempts, innerCtx)
		// Wait on the pump goroutine, so the push happens before
		// wrapDirectFinish may close the handle.
		_, err := future.Wait(ctx)
		handle.push(Try[struct{}]{Err: err}, innerCtx.Done())
	}
}

// AddQueuedScheduledWork schedules work to fire once, forwarding it into
// target at fire time rather than executing it inline.
func AddQueuedScheduledWork(m *WorkSchedulerManager, target *queue.WorkQueueManager[task.NullArg], work task.Work, fireTime time.Time, attempts int) (*RecurringHandle[struct{}], context.CancelFunc) {
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[struct{}](1)
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: fireTime, policy: Once(), innerCtx: innerCtx}
	w.fire = wrapDirectFinish(queuedVoidFire(target, work, attempts, innerCtx, handle), handle, w)
	m.Submit(w)
	return handle, cancel
}

// AddQueuedRepeatedWork schedules work to fire repeatedly, forwarding each
// occurrence into target.
func AddQueuedRepeatedWork(m *WorkSchedulerManager, target *queue.WorkQueueManager[task.NullArg], work task.Work, start time.Time, interval time.Duration, execCount, attempts int) (*RecurringHandle[struct{}], context.CancelFunc) {
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[struct{}](defaultHandleBuffer)
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: start, policy: FixedInterval(interval, execCount), innerCtx: innerCtx}
	w.fire = wrapDirectFinish(queuedVoidFire(target, work, attempts, innerCtx, handle), handle, w)
	m.Submit(w)
	return handle, cancel
}

// AddQueuedCronWork schedules work to fire per cronExpr, forwarding each
// occurrence into target.
func AddQueuedCronWork(m *WorkSchedulerManager, target *queue.WorkQueueManager[task.NullArg], work task.Work, cronExpr string, execCount, attempts int) (*RecurringHandle[struct{}], context.CancelFunc, error) {
	oracle, err := NewCronOracle(cronExpr)
	if err != nil {
		return nil, nil, err
	}
	innerCtx, cancel := newInnerCancel()
	handle := newRecurringHandle[struct{}](defaultHandleBuffer)
	policy := Cron(oracle, execCount)
	first, more := policy.Advance(time.Now())
	if !more {
		cancel()
		return nil, nil, task.ErrConfigurationError
	}
	w := &ScheduledWrapper{id: task.NewID(), nextFireTime: first, policy: policy, innerCtx: innerCtx}
	w.fire = wrapDirectFinish(queuedVoidFire(target, work, attempts, innerCtx, handle), handle, w)
	m.Submit(w)
	return handle, cancel, nil
}

// --- sequence completion helpers ----------------------------------------

// wrapDirectFinish runs base, then closes handle once w has no further
// fires remaining (so the caller's Results() channel signals completion at
// the right moment regardless of which constructor built w).
func wrapDirectFinish(base fireFunc, handle *RecurringHandle[struct{}], w *ScheduledWrapper) fireFunc {
	return func(ctx context.Context) {
		base(ctx)
		if w.Canceled() || w.policy.Remaining() == 0 {
			handle.finish()
		}
	}
}

func wrapDirectFinishGeneric[T any](base fireFunc, handle *RecurringHandle[T], w *ScheduledWrapper) fireFunc {
	return func(ctx context.Context) {
		base(ctx)
		if w.Canceled() || w.policy.Remaining() == 0 {
			handle.finish()
		}
	}
}
