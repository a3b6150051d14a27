// ============================================================================
// Task Engine - Conveyor Chaining
// ============================================================================
//
// Package: pkg/task
// File: conveyor.go
// Purpose: Chain2 composes two conveyor stages into one aggregated
// ConveyorMachine. An N-stage chain is built by nesting:
// Chain2(c1, Chain2(c2, c3)) - Go's type system has no variadic generic
// parameter list, so composition (rather than a variadic ChainN) is the
// idiomatic way to generalize to any chain length.
//
// ============================================================================

package task

import (
	"context"

	"github.com/ChuLiYu/taskengine/internal/registry"
)

// chain2Machine aggregates two stages D->I and I->R into one D->R machine.
type chain2Machine[D, I, R any] struct {
	first  ConveyorMachine[D, I]
	second ConveyorMachine[I, R]
}

// Chain2 builds an aggregated conveyor machine running first then second.
// MaxAttempts is max(first.MaxAttempts(), second.MaxAttempts()); Process
// clamps the attempt number passed to each stage against that stage's own
// ceiling, propagates ctx cancellation between stages, and returns the
// first stage's failure without invoking the second.
func Chain2[D, I, R any](first ConveyorMachine[D, I], second ConveyorMachine[I, R]) ConveyorMachine[D, R] {
	return &chain2Machine[D, I, R]{first: first, second: second}
}

func (c *chain2Machine[D, I, R]) MaxAttempts() int {
	a, b := c.first.MaxAttempts(), c.second.MaxAttempts()
	if a > b {
		return a
	}
	return b
}

func (c *chain2Machine[D, I, R]) Process(ctx context.Context, data D, attempt int, services *registry.Registry) (R, error) {
	var zero R

	firstAttempt := clampAttemptNumber(attempt, c.first.MaxAttempts())
	intermediate, err := c.first.Process(ctx, data, firstAttempt, services)
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	secondAttempt := clampAttemptNumber(attempt, c.second.MaxAttempts())
	return c.second.Process(ctx, intermediate, secondAttempt, services)
}

func clampAttemptNumber(attempt, ceiling int) int {
	if ceiling > 0 && attempt > ceiling {
		return ceiling
	}
	return attempt
}
