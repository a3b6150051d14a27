// ============================================================================
// Task Engine - Task Values
// ============================================================================
//
// Package: pkg/task
// File: value.go
// Purpose: Immutable descriptions of one unit of work, parameterized by
// whether they need an argument and whether they produce a result. These
// are the producer-facing constructors; EnqueueWork/EnqueueAccess/
// ProcessData (pkg/queue) wrap them into a Wrapper + Future pair.
//
// ============================================================================

package task

import (
	"context"
	"sync/atomic"

	"github.com/ChuLiYu/taskengine/internal/registry"
)

// NullArg is the argument type for task families that need none (plain
// Work/AsyncWork submitted to a WorkQueueManager).
type NullArg struct{}

// Work is a synchronous, argument-free, result-free unit of work.
type Work func(ctx context.Context, services *registry.Registry) error

// AsyncWork is the same shape as Work; in Go the sync/async distinction is
// just whether the function blocks in-thread or awaits I/O, so AsyncWork
// and Work share one signature (see wrapper.go's design note).
type AsyncWork = Work

// ResultWork is a Work variant that produces a typed result.
type ResultWork[T any] func(ctx context.Context, services *registry.Registry) (T, error)

// Access is a unit of work requiring exclusive use of a shared resource R.
type Access[R any] func(ctx context.Context, resource R, services *registry.Registry) error

// AsyncAccess mirrors Access; see AsyncWork's note.
type AsyncAccess[R any] = Access[R]

// ResultAccess is an Access variant that produces a typed result.
type ResultAccess[R, T any] func(ctx context.Context, resource R, services *registry.Registry) (T, error)

// ConveyorMachine is a stateful processing unit: D in, R out, with its own
// attempt ceiling. Multiple submissions may share one machine instance
// (reused) or each get a fresh one, depending on the manager's processor
// policy (pkg/processor).
type ConveyorMachine[D, R any] interface {
	// MaxAttempts reports this machine's attempt ceiling. Chain2 clamps the
	// attempt number passed to each stage against it; ProcessData clamps
	// caller-requested attempts to the manager's ceiling, not to this one.
	MaxAttempts() int
	// Process runs the conveyor stage. attempt is the 1-based attempt
	// number being made, for machines that adapt behavior on retry.
	Process(ctx context.Context, data D, attempt int, services *registry.Registry) (R, error)
}

// asNullFn adapts a Work value into the Fn[NullArg, struct{}] shape stored
// by a WorkQueueManager's wrappers.
func asNullFn(w Work) Fn[NullArg, struct{}] {
	return func(ctx context.Context, _ NullArg, services *registry.Registry) (struct{}, error) {
		return struct{}{}, w(ctx, services)
	}
}

// asNullResultFn adapts a ResultWork[T] into Fn[NullArg, T].
func asNullResultFn[T any](w ResultWork[T]) Fn[NullArg, T] {
	return func(ctx context.Context, _ NullArg, services *registry.Registry) (T, error) {
		return w(ctx, services)
	}
}

// asAccessFn adapts an Access[R] into Fn[R, struct{}].
func asAccessFn[R any](a Access[R]) Fn[R, struct{}] {
	return func(ctx context.Context, resource R, services *registry.Registry) (struct{}, error) {
		return struct{}{}, a(ctx, resource, services)
	}
}

// asAccessResultFn adapts a ResultAccess[R,T] into Fn[R, T].
func asAccessResultFn[R, T any](a ResultAccess[R, T]) Fn[R, T] {
	return func(ctx context.Context, resource R, services *registry.Registry) (T, error) {
		return a(ctx, resource, services)
	}
}

// NewWorkWrapper builds a Wrapper[NullArg] + Future[struct{}] from a plain
// Work value.
func NewWorkWrapper(w Work, attempts int, innerCtx context.Context) (Wrapper[NullArg], *Future[struct{}]) {
	return newWrapper[NullArg, struct{}]("work", asNullFn(w), attempts, innerCtx)
}

// NewResultWorkWrapper builds a Wrapper[NullArg] + Future[T] from a
// ResultWork[T] value.
func NewResultWorkWrapper[T any](w ResultWork[T], attempts int, innerCtx context.Context) (Wrapper[NullArg], *Future[T]) {
	return newWrapper[NullArg, T]("work", asNullResultFn(w), attempts, innerCtx)
}

// NewAccessWrapper builds a Wrapper[R] + Future[struct{}] from an Access[R]
// value.
func NewAccessWrapper[R any](a Access[R], attempts int, innerCtx context.Context) (Wrapper[R], *Future[struct{}]) {
	return newWrapper[R, struct{}]("access", asAccessFn(a), attempts, innerCtx)
}

// NewResultAccessWrapper builds a Wrapper[R] + Future[T] from a
// ResultAccess[R,T] value.
func NewResultAccessWrapper[R, T any](a ResultAccess[R, T], attempts int, innerCtx context.Context) (Wrapper[R], *Future[T]) {
	return newWrapper[R, T]("access", asAccessResultFn(a), attempts, innerCtx)
}

// NewConveyorWrapper builds a Wrapper[ConveyorMachine[D,R]] + Future[R] for
// one data item submitted to a conveyor manager. attempts is the budget
// already clamped by the caller (pkg/queue) against the manager's ceiling.
// Each call to Execute is one attempt; this closure counts them itself so
// machines see a correct 1-based attempt number without the wrapper needing
// to expose its internal counter.
func NewConveyorWrapper[D, R any](data D, attempts int, innerCtx context.Context) (Wrapper[ConveyorMachine[D, R]], *Future[R]) {
	var attemptNumber int32
	fn := func(ctx context.Context, machine ConveyorMachine[D, R], services *registry.Registry) (R, error) {
		n := atomic.AddInt32(&attemptNumber, 1)
		return machine.Process(ctx, data, int(n), services)
	}
	return newWrapper[ConveyorMachine[D, R], R]("conveyor", fn, attempts, innerCtx)
}
