// ============================================================================
// Task Engine - Task Processors
// ============================================================================
//
// Package: pkg/processor
// File: processor.go
// Purpose: The argument-acquisition policies a worker pairs with a manager.
// Every policy implements Processor[Arg].ProcessPendingTasks, which pumps
// while the manager has tasks; workers loop this until the manager goes
// empty, then suspend on WaitForTask.
//
// ============================================================================

package processor

import (
	"context"
	"log/slog"

	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/pkg/queue"
)

// Processor drains a manager's pending wrappers, supplying each with an
// argument per its acquisition policy, until the manager is empty or ctx is
// canceled.
type Processor[Arg any] interface {
	ProcessPendingTasks(ctx context.Context, m queue.Manager[Arg], services *registry.Registry, logger *slog.Logger)
}

// Shutdownable is implemented by processors holding background state
// (reusable argument pools, idle-teardown reapers) that must be drained or
// torn down once a worker's pump loop has exited, so Worker.Stop can await
// it without leaking a goroutine or an activated resource.
type Shutdownable interface {
	Shutdown(ctx context.Context)
}

// StartStoppable is an argument with activate/deactivate lifecycle
// semantics. Activate/Deactivate could each return a separate awaitable
// type, but Go has no such type distinct from a blocking call under a
// context, so both are modeled as ordinary blocking calls that honor ctx -
// the same sync/async collapsing documented in pkg/task/wrapper.go.
type StartStoppable interface {
	IsActive() bool
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
}
