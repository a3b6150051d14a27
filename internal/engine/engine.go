// ============================================================================
// Task Engine - Process Wiring
// ============================================================================
//
// Package: internal/engine
// File: engine.go
// Purpose: Wires one concrete topology of managers, processors, workers,
// and a scheduler into a single startable/stoppable unit, the way a
// Controller ties a JobManager, WAL, snapshot manager, and worker pool into
// one Start()/Stop() lifecycle. This is a demo/reference topology (a
// priority work queue, an access queue guarding a shared counter, and a
// scheduler) - applications embedding pkg/queue, pkg/processor, pkg/worker,
// and pkg/scheduler directly are free to wire their own.
//
// ============================================================================

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ChuLiYu/taskengine/internal/config"
	"github.com/ChuLiYu/taskengine/internal/metrics"
	"github.com/ChuLiYu/taskengine/internal/registry"
	"github.com/ChuLiYu/taskengine/internal/startup"
	"github.com/ChuLiYu/taskengine/pkg/processor"
	"github.com/ChuLiYu/taskengine/pkg/queue"
	"github.com/ChuLiYu/taskengine/pkg/scheduler"
	"github.com/ChuLiYu/taskengine/pkg/task"
	"github.com/ChuLiYu/taskengine/pkg/worker"
)

const (
	demoManagerName   = "demo"
	accessManagerName = "counter"
)

// Engine owns one demo topology's managers, processors, workers, and
// scheduler, started and stopped as a unit.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	services *registry.Registry
	metrics  *metrics.Collector
	startup  *startup.Registry

	demoQueue  *queue.PriorityWorkQueueManager[task.NullArg]
	demoWorker *worker.Worker[task.NullArg]

	counter      *Counter
	accessQueue  *queue.AccessQueueManager[*Counter]
	accessWorker *worker.Worker[*Counter]
	demoAttempts int

	schedulerManager *scheduler.WorkSchedulerManager
	schedulerPump    *scheduler.Scheduler
}

// New builds (but does not start) the engine's topology from cfg.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	services := registry.New()
	counter := &Counter{}
	registry.MustRegister(services, counter)

	collector := metrics.NewCollector()
	registry.MustRegister(services, collector)

	demoCfg, ok := cfg.ManagerConfigByName(demoManagerName)
	if !ok {
		demoCfg = config.ManagerConfig{MaxAttempts: 3, MaxPriority: 2, MaxSimultaneous: 4}
	}
	demoQueue := queue.NewPriorityWorkQueueManager[task.NullArg](demoCfg.MaxPriority, demoCfg.MaxAttempts)
	demoQueue.SetMetrics(collector, "work:"+demoManagerName)
	demoProc := processor.NewMultipleNull(demoCfg.MaxSimultaneous)
	demoW := worker.New[task.NullArg](demoQueue, demoProc, services, logger)

	accessCfg, ok := cfg.ManagerConfigByName(accessManagerName)
	if !ok {
		accessCfg = config.ManagerConfig{MaxAttempts: 3}
	}
	accessQueue := queue.NewAccessQueueManager[*Counter](accessCfg.MaxAttempts)
	accessQueue.SetMetrics(collector, "access:"+accessManagerName)
	accessProc := processor.NewSingleStatic[*Counter](counter)
	accessW := worker.New[*Counter](accessQueue, accessProc, services, logger)

	schedMgr := scheduler.NewWorkSchedulerManager()
	schedPump := scheduler.New(schedMgr, services, logger)

	startupRegistry := startup.NewRegistry()
	startupRegistry.Register(func(ctx context.Context, services *registry.Registry) error {
		logger.Info("task engine startup work complete")
		return nil
	})

	return &Engine{
		cfg:              cfg,
		logger:           logger,
		services:         services,
		metrics:          collector,
		startup:          startupRegistry,
		demoQueue:        demoQueue,
		demoWorker:       demoW,
		counter:          counter,
		accessQueue:      accessQueue,
		accessWorker:     accessW,
		demoAttempts:     demoCfg.MaxAttempts,
		schedulerManager: schedMgr,
		schedulerPump:    schedPump,
	}
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }

// Services returns the engine's typed service registry.
func (e *Engine) Services() *registry.Registry { return e.services }

// Counter returns the demo shared-resource counter, for tests/inspection.
func (e *Engine) Counter() *Counter { return e.counter }

// Start runs startup work, then launches every worker and the scheduler.
func (e *Engine) Start() {
	e.startup.Run(context.Background(), e.services, e.logger)
	e.demoWorker.Start()
	e.accessWorker.Start()
	e.schedulerPump.Start()
}

// Stop signals shutdown across every worker and the scheduler, returning
// once all have drained or ctx is done.
func (e *Engine) Stop(ctx context.Context) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(e.demoWorker.Stop(ctx))
	record(e.accessWorker.Stop(ctx))
	record(e.schedulerPump.Stop(ctx))
	return firstErr
}

// SubmitDemoWork enqueues a logging work item onto the demo priority queue,
// used by the CLI's enqueue command.
func (e *Engine) SubmitDemoWork(message string, priority int) error {
	work := func(ctx context.Context, services *registry.Registry) error {
		e.logger.Info("demo work executed", "message", message)
		return nil
	}
	_, err := queue.EnqueueWorkPriority(e.demoQueue, work, e.demoAttempts, priority, nil)
	if err != nil {
		return fmt.Errorf("submit demo work: %w", err)
	}
	return nil
}
