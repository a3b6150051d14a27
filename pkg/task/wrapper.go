// ============================================================================
// Task Engine - Task Wrapper
// ============================================================================
//
// Package: pkg/task
// File: wrapper.go
// Purpose: A TaskWrapper is one submission's mutable state: the task value,
// its remaining-attempts counter, its caller-facing Future, and the inner
// (submission) cancellation it was submitted with. It exposes the uniform
//
//	Execute(ctx, arg, services, logger, outerCancel) -> terminal bool
//
// contract every manager/processor/worker drives against, regardless of
// task family (work, access, conveyor).
//
// Execute contract:
//  1. attemptsRemaining < 1  -> settle NoAttemptsLeft, terminal.
//  2. decrement attemptsRemaining, compute effective cancel = inner|outer.
//  3. if effective cancel already fired -> go straight to cancel branch.
//  4. run the task value's function under the effective cancellation.
//  5. success -> settle value, terminal.
//  6. cancellation ->
//     - outer fired AND inner NOT fired: credit one attempt back, warn-log.
//     - attemptsRemaining > 0 AND inner NOT fired: not terminal (re-queue).
//     - else: settle canceled, terminal.
//  7. other failure -> error-log; attemptsRemaining>0 -> not terminal; else
//     settle failure, terminal.
//
// Sync vs. async task values: a tagged sum type would let dual execution
// paths avoid virtual dispatch, but Go has no sum types - a single function
// value already captures both: a "sync" Fn simply never yields to another
// goroutine before returning, an "async" Fn awaits channels/I-O. Both shapes
// satisfy the same Fn signature, so no separate Sync/Async wrapper type is
// needed.
//
// ============================================================================

package task

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ChuLiYu/taskengine/internal/metrics"
	"github.com/ChuLiYu/taskengine/internal/registry"
)

// Fn is a unit of work: given a context carrying the effective
// cancellation, the family-specific argument (struct{} for plain Work,
// a resource R for Access, a ConveyorMachine for conveyors), and the
// service registry, it produces a typed result or an error.
type Fn[Arg, T any] func(ctx context.Context, arg Arg, services *registry.Registry) (T, error)

// Wrapper is the type-erased (over the result type T) interface every
// manager stores and every processor drives. Erasure over T lets a single
// queue hold heterogeneous Work[T1], Work[T2], ... submissions side by
// side, so a manager holds one wrapper family without caring what each
// submission ultimately returns.
type Wrapper[Arg any] interface {
	// Execute runs one attempt. outerCancel is closed by the worker to
	// signal cooperative/shutdown cancellation. Returns true if the
	// wrapper reached a terminal state (settled or no more attempts to
	// spend) and should not be re-queued.
	Execute(ctx context.Context, arg Arg, services *registry.Registry, logger *slog.Logger, outerCancel <-chan struct{}) bool
	// ID identifies this submission for logging/metrics.
	ID() ID
	// InnerCanceled reports whether this wrapper's submission-time cancel
	// has already fired, without running it. Execute consults it; managers
	// do not, so a canceled wrapper stays queued until a processor hands it
	// to Execute, which settles it canceled without running its function.
	InnerCanceled() bool
}

// wrapperImpl is the concrete, generic implementation of Wrapper[Arg].
type wrapperImpl[Arg, T any] struct {
	id                ID
	fn                Fn[Arg, T]
	attemptsRemaining int32
	future            *Future[T]
	innerCtx          context.Context
	stopInnerWatch    context.CancelFunc

	family      string
	submittedAt time.Time
}

// NewWrapper creates a wrapper around fn with the given attempt budget and
// submission-scoped cancellation context (innerCtx). It returns the wrapper
// (for manager storage) and the Future the producer observes. innerCtx
// firing settles the future canceled pre-emptively even if the wrapper is
// still sitting unexecuted in a manager's queue - submission-time
// cancellation must settle canceled even with no execution in flight,
// implemented here with context.AfterFunc rather than a dedicated per-task
// goroutine.
func NewWrapper[Arg, T any](fn Fn[Arg, T], attempts int, innerCtx context.Context) (Wrapper[Arg], *Future[T]) {
	return newWrapper[Arg, T]("unlabeled", fn, attempts, innerCtx)
}

// newWrapper is NewWrapper with an explicit metrics family label, used by
// value.go's family-specific constructors (NewWorkWrapper, NewAccessWrapper,
// NewConveyorWrapper, ...) so Execute can report completions/failures/
// retries/cancellations through the right per-family counters.
func newWrapper[Arg, T any](family string, fn Fn[Arg, T], attempts int, innerCtx context.Context) (Wrapper[Arg], *Future[T]) {
	if attempts < 1 {
		attempts = 1
	}
	future := NewFuture[T]()
	w := &wrapperImpl[Arg, T]{
		id:                NewID(),
		fn:                fn,
		attemptsRemaining: int32(attempts),
		future:            future,
		innerCtx:          innerCtx,
		family:            family,
		submittedAt:       time.Now(),
	}

	stop := context.AfterFunc(innerCtx, func() {
		w.future.Cancel(ErrCanceledByCaller)
	})
	w.stopInnerWatch = func() { stop() }

	return w, future
}

func (w *wrapperImpl[Arg, T]) ID() ID { return w.id }

func (w *wrapperImpl[Arg, T]) InnerCanceled() bool {
	return w.innerCtx.Err() != nil
}

func (w *wrapperImpl[Arg, T]) release() {
	if w.stopInnerWatch != nil {
		w.stopInnerWatch()
	}
}

func closedSignal(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func (w *wrapperImpl[Arg, T]) Execute(ctx context.Context, arg Arg, services *registry.Registry, logger *slog.Logger, outerCancel <-chan struct{}) bool {
	var collector *metrics.Collector
	if services != nil {
		collector, _ = registry.Resolve[*metrics.Collector](services)
	}
	latency := func() time.Duration { return time.Since(w.submittedAt) }

	if atomic.LoadInt32(&w.attemptsRemaining) < 1 {
		w.future.FailRaw(ErrNoAttemptsLeft)
		w.release()
		if collector != nil {
			collector.RecordFailed(w.family, latency())
		}
		return true
	}

	// Already canceled before this attempt started: go straight to the
	// cancel branch without spending the attempt.
	if w.InnerCanceled() {
		w.future.Cancel(ErrCanceledByCaller)
		w.release()
		if collector != nil {
			collector.RecordCanceled(w.family, ErrKind(ErrCanceledByCaller).String())
		}
		return true
	}

	attemptsLeft := atomic.AddInt32(&w.attemptsRemaining, -1)

	effectiveCtx, cancelEffective := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-w.innerCtx.Done():
			cancelEffective()
		case <-outerCancel:
			cancelEffective()
		case <-effectiveCtx.Done():
		}
	}()

	result, err := w.fn(effectiveCtx, arg, services)
	cancelEffective()
	<-watchDone

	if err == nil {
		w.future.Complete(result)
		w.release()
		if collector != nil {
			collector.RecordCompleted(w.family, latency())
		}
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outerFired := closedSignal(outerCancel)
		innerFired := w.InnerCanceled()

		if outerFired && !innerFired {
			atomic.AddInt32(&w.attemptsRemaining, 1)
			if logger != nil {
				logger.Warn("task execution aborted by outer cancellation, attempt credited back",
					"task_id", w.id.String())
			}
		}

		if atomic.LoadInt32(&w.attemptsRemaining) > 0 && !innerFired {
			if collector != nil {
				collector.RecordRetried(w.family)
			}
			return false
		}

		cause := error(ErrCanceledByShutdown)
		if innerFired {
			cause = ErrCanceledByCaller
		}
		w.future.Cancel(cause)
		w.release()
		if collector != nil {
			collector.RecordCanceled(w.family, ErrKind(cause).String())
		}
		return true
	}

	if logger != nil {
		logger.Error("task execution failed", "task_id", w.id.String(), "error", err)
	}
	if attemptsLeft > 0 {
		if collector != nil {
			collector.RecordRetried(w.family)
		}
		return false
	}
	w.future.Fail(err)
	w.release()
	if collector != nil {
		collector.RecordFailed(w.family, latency())
	}
	return true
}
