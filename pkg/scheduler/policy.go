// ============================================================================
// Task Engine - Scheduler
// ============================================================================
//
// Package: pkg/scheduler
// File: policy.go
// Purpose: RepeatPolicy - the three fire-time progressions a scheduled
// wrapper can follow: a single one-shot fire, a fixed-interval repeat, or
// a cron-driven repeat. Advance computes the next fire time and whether
// any executions remain.
//
// ============================================================================

package scheduler

import "time"

// RepeatPolicy computes successive fire times for a scheduled wrapper.
type RepeatPolicy interface {
	// Advance returns the next fire time after last, and whether the
	// policy has any more executions to offer (false once the policy's
	// execution count is exhausted).
	Advance(last time.Time) (next time.Time, more bool)
	// Remaining reports how many executions (including the one about to
	// fire, if any) are left, or -1 if unbounded.
	Remaining() int
}

// oncePolicy fires exactly once and never repeats.
type oncePolicy struct{ fired bool }

// Once creates a one-shot repeat policy.
func Once() RepeatPolicy { return &oncePolicy{} }

func (p *oncePolicy) Advance(last time.Time) (time.Time, bool) {
	_ = last
	return time.Time{}, false
}

func (p *oncePolicy) Remaining() int { return 0 }

// fixedIntervalPolicy fires at start, start+step, start+2*step, ...
type fixedIntervalPolicy struct {
	step      time.Duration
	remaining int // -1 = unbounded
}

// FixedInterval creates a repeat policy firing every step, for a total of
// count executions (count=-1 for unbounded). The first fire time is
// established by the caller (AddRepeatedWork's start parameter) without
// consuming an Advance call, so the internal counter is seeded at count-1:
// Advance is only ever asked for the *remaining* fires after the first.
func FixedInterval(step time.Duration, count int) RepeatPolicy {
	remaining := count
	if count > 0 {
		remaining = count - 1
	}
	return &fixedIntervalPolicy{step: step, remaining: remaining}
}

func (p *fixedIntervalPolicy) Advance(last time.Time) (time.Time, bool) {
	if p.remaining == 0 {
		return time.Time{}, false
	}
	if p.remaining > 0 {
		p.remaining--
	}
	return last.Add(p.step), true
}

func (p *fixedIntervalPolicy) Remaining() int { return p.remaining }

// cronPolicy fires at successive cron-computed times.
type cronPolicy struct {
	oracle    *CronOracle
	remaining int
}

// Cron creates a repeat policy driven by a cron oracle, counting down from
// count executions (count=-1 for unbounded).
func Cron(oracle *CronOracle, count int) RepeatPolicy {
	return &cronPolicy{oracle: oracle, remaining: count}
}

func (p *cronPolicy) Advance(last time.Time) (time.Time, bool) {
	if p.remaining == 0 {
		return time.Time{}, false
	}
	if p.remaining > 0 {
		p.remaining--
	}
	return p.oracle.Next(last), true
}

func (p *cronPolicy) Remaining() int { return p.remaining }
