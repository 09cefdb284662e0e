package orchestrator

import (
	"time"

	"github.com/pulsehr/pulse/engine/core"
	"github.com/pulsehr/pulse/engine/trigger"
	"github.com/pulsehr/pulse/engine/workflow"
)

// Metadata tracks the execution bookkeeping of one workflow.
type Metadata struct {
	StartTime           time.Time `json:"start_time"`
	LastUpdate          time.Time `json:"last_update"`
	EstimatedCompletion time.Time `json:"estimated_completion,omitempty"`
	RetryCount          int       `json:"retry_count"`
	Errors              []string  `json:"errors,omitempty"`
}

// WorkflowContext is the orchestrator's record for one in-flight or
// completed execution. All mutation happens under the orchestrator's lock;
// callers only ever see copies.
type WorkflowContext struct {
	WorkflowID  core.ID          `json:"workflow_id"`
	Family      workflow.Family  `json:"workflow_family"`
	SubjectID   string           `json:"subject_id"`
	CurrentStep int              `json:"current_step"`
	TotalSteps  int              `json:"total_steps"`
	Status      core.StatusType  `json:"status"`
	Trigger     *trigger.Context `json:"trigger,omitempty"`
	Metadata    Metadata         `json:"metadata"`
}

// Progress returns the completion fraction in [0, 1].
func (w *WorkflowContext) Progress() float64 {
	if w.TotalSteps <= 0 {
		return 0
	}
	return float64(w.CurrentStep) / float64(w.TotalSteps)
}

// transitionTo applies the status state machine: pending -> in_progress ->
// {completed|failed}, failed -> pending via retry, in_progress -> failed via
// cancel. It returns false without mutating when the transition is illegal.
func (w *WorkflowContext) transitionTo(status core.StatusType, now time.Time) bool {
	allowed := false
	switch w.Status {
	case core.StatusPending:
		allowed = status == core.StatusInProgress
	case core.StatusInProgress:
		allowed = status == core.StatusCompleted || status == core.StatusFailed
	case core.StatusFailed:
		allowed = status == core.StatusPending
	case core.StatusCompleted:
		allowed = false
	}
	if !allowed {
		return false
	}
	w.Status = status
	w.Metadata.LastUpdate = now
	return true
}

// clone returns a deep-enough copy for handing out to callers: the errors
// slice is copied, the trigger context is immutable by construction.
func (w *WorkflowContext) clone() *WorkflowContext {
	cp := *w
	if len(w.Metadata.Errors) > 0 {
		cp.Metadata.Errors = make([]string, len(w.Metadata.Errors))
		copy(cp.Metadata.Errors, w.Metadata.Errors)
	}
	return &cp
}
