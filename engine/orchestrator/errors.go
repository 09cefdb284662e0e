package orchestrator

import "errors"

// Administrative-operation errors. Workflow-level failures never cross the
// Dispatch boundary as errors; they come back inside a failed Result.
var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrInvalidState     = errors.New("invalid workflow state for operation")
)

// Error codes attached to failed results.
const (
	codeUnitFailure = "unit_failure"
	codeNoUnit      = "no_unit"
	codeTimeout     = "timeout"
	codeCanceled    = "canceled"
)
