// ============================================================================
// Task Engine - Scheduler
// ============================================================================
//
// Package: pkg/scheduler
// File: cron.go
// Purpose: The "next fire time" oracle the engine consumes - the cron
// grammar itself is delegated to an external cron library, and the engine
// only consumes a next-fire-time oracle. Wraps robfig/cron/v3's parser,
// which accepts 5-field (minute precision), 6-field (second precision), and
// "@every"/"@daily"-style descriptor grammars.
//
// ============================================================================

package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ChuLiYu/taskengine/pkg/task"
)

// cronParser accepts an optional leading seconds field, the usual five
// fields, or an "@" descriptor ("@every 1h", "@daily", ...).
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CronOracle computes successive fire times from a parsed cron expression.
type CronOracle struct {
	expr     string
	schedule cron.Schedule
}

// NewCronOracle parses expr, returning task.ErrConfigurationError wrapped
// with the parse failure if expr is malformed, so malformed input surfaces
// a distinguishable configuration error at registration time.
func NewCronOracle(expr string) (*CronOracle, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid cron expression %q: %v", task.ErrConfigurationError, expr, err)
	}
	return &CronOracle{expr: expr, schedule: schedule}, nil
}

// Next returns the first fire time strictly after from.
func (c *CronOracle) Next(from time.Time) time.Time {
	return c.schedule.Next(from)
}

// Expr returns the original cron expression, for logging/metrics.
func (c *CronOracle) Expr() string { return c.expr }
