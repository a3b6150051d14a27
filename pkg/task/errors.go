// ============================================================================
// Task Engine - Error Taxonomy
// ============================================================================
//
// Package: pkg/task
// File: errors.go
// Purpose: Defines the error kinds shared by every task family (work,
// access, conveyor, scheduler). Errors are classified by *kind*, not by
// Go type, following the taxonomy: ArgumentInvalid, AlreadyRegistered,
// NoAttemptsLeft, CanceledByCaller, CanceledByShutdown, TaskFailure,
// ConfigurationError, ResourceActivationError.
//
// Propagation:
//   - Submit-side validation errors (a priority outside the manager's
//     lanes) fail synchronously and are never observed through a Future.
//     Attempt counts are clamped rather than rejected, and work values are
//     not checked for nil.
//   - Execution-side failures settle the Future returned at submission time.
//   - The worker pump logs and continues on any error except a genuine
//     shutdown cancellation, which unwinds the loop.
//
// ============================================================================

package task

import "errors"

// Kind classifies an engine error without requiring a type switch.
type Kind int

const (
	KindUnknown Kind = iota
	KindArgumentInvalid
	KindAlreadyRegistered
	KindNoAttemptsLeft
	KindCanceledByCaller
	KindCanceledByShutdown
	KindTaskFailure
	KindConfigurationError
	KindResourceActivationError
)

func (k Kind) String() string {
	switch k {
	case KindArgumentInvalid:
		return "argument_invalid"
	case KindAlreadyRegistered:
		return "already_registered"
	case KindNoAttemptsLeft:
		return "no_attempts_left"
	case KindCanceledByCaller:
		return "canceled_by_caller"
	case KindCanceledByShutdown:
		return "canceled_by_shutdown"
	case KindTaskFailure:
		return "task_failure"
	case KindConfigurationError:
		return "configuration_error"
	case KindResourceActivationError:
		return "resource_activation_error"
	default:
		return "unknown"
	}
}

// kindError attaches a Kind to a sentinel so callers can classify an error
// with Kind(err) without a type assertion on a concrete error struct.
type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func newKindError(k Kind, msg string) error {
	return &kindError{kind: k, msg: msg}
}

var (
	// ErrArgumentInvalid is returned synchronously from Submit-side validation
	// (a priority outside [0, maxPriority]).
	ErrArgumentInvalid = newKindError(KindArgumentInvalid, "task: argument invalid")
	// ErrAlreadyRegistered classifies a duplicate service/task-type
	// registration. registry.Register reports duplicates with its own plain
	// error and does not return this sentinel.
	ErrAlreadyRegistered = newKindError(KindAlreadyRegistered, "task: already registered")
	// ErrNoAttemptsLeft settles a wrapper whose attempts were exhausted before
	// a successful execution.
	ErrNoAttemptsLeft = newKindError(KindNoAttemptsLeft, "task: no attempts left")
	// ErrCanceledByCaller settles a wrapper whose inner (submission) cancel fired.
	ErrCanceledByCaller = newKindError(KindCanceledByCaller, "task: canceled by caller")
	// ErrCanceledByShutdown marks an execution aborted by worker/outer cancel.
	ErrCanceledByShutdown = newKindError(KindCanceledByShutdown, "task: canceled by shutdown")
	// ErrConfigurationError marks a misconfiguration detected at registration
	// time (e.g. a malformed cron expression, or a cron schedule with no
	// executions).
	ErrConfigurationError = newKindError(KindConfigurationError, "task: configuration error")
	// ErrConfigurationNotImplemented is a distinguishable ConfigurationError
	// subtype, returned by config.Validate for an unrecognized reuse strategy.
	ErrConfigurationNotImplemented = newKindError(KindConfigurationError, "task: configuration not implemented")
	// ErrResourceActivationError marks a StartStoppable argument that failed
	// to Activate; the task is reverted without consuming an attempt.
	ErrResourceActivationError = newKindError(KindResourceActivationError, "task: resource activation failed")
)

// WrapTaskFailure classifies an arbitrary user error as a TaskFailure kind
// while preserving it for errors.Is/errors.As via %w.
func WrapTaskFailure(err error) error {
	if err == nil {
		return nil
	}
	return &taskFailure{err: err}
}

type taskFailure struct{ err error }

func (e *taskFailure) Error() string { return "task: failure: " + e.err.Error() }
func (e *taskFailure) Unwrap() error { return e.err }
func (e *taskFailure) Kind() Kind    { return KindTaskFailure }

// ErrKind returns the Kind an error was constructed with, or KindUnknown.
func ErrKind(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	var tf *taskFailure
	if errors.As(err, &tf) {
		return tf.Kind()
	}
	return KindUnknown
}
