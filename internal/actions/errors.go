package actions

import (
	"errors"
	"fmt"

	"server-actions/internal/platform"
)

// ValidationError means an action or trigger is structurally broken. Always
// fatal: the run stops at the offending action.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ExecutionError wraps an unexpected engine-internal failure (including
// recovered panics). Always fatal and marks the record status "error".
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return fmt.Sprintf("execution error: %v", e.Err) }
func (e *ExecutionError) Unwrap() error { return e.Err }

// NoTargetsError means a target spec resolved to zero principals.
type NoTargetsError struct {
	Spec TargetSpec
}

func (e *NoTargetsError) Error() string {
	return fmt.Sprintf("target %q resolved to no members", e.Spec.Kind)
}

// continuable reports whether a failed action should let the rest of the batch
// run. Missing resources and throttling are recoverable per-action conditions;
// anything structural or unexpected aborts the whole run.
func continuable(err error) bool {
	var nf *platform.NotFoundError
	var rl *platform.RateLimitError
	var nt *NoTargetsError
	return errors.As(err, &nf) || errors.As(err, &rl) || errors.As(err, &nt)
}

// isExecutionError reports whether err marks the record as "error" rather
// than "failed".
func isExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
