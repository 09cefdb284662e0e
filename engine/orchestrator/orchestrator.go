package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pulsehr/pulse/engine/core"
	"github.com/pulsehr/pulse/engine/trigger"
	"github.com/pulsehr/pulse/engine/workflow"
	"github.com/pulsehr/pulse/pkg/logger"
)

// DefaultHistorySize bounds how many terminal workflow contexts are kept
// around for inspection and retry.
const DefaultHistorySize = 1024

// Orchestrator owns the table of in-flight workflow contexts, dispatches
// normalized triggers to workflow units and supervises their execution.
// Active contexts live in a plain map; terminal ones move to an LRU-bounded
// history so a long-running process cannot grow without limit. Safe for
// concurrent use.
type Orchestrator struct {
	resolver    *workflow.Resolver
	units       workflow.Lookup
	metrics     *Metrics
	historySize int

	mu      sync.RWMutex
	active  map[core.ID]*WorkflowContext
	history *lru.Cache[core.ID, *WorkflowContext]
}

type Option func(*Orchestrator)

// WithResolver overrides the default trigger-type resolver.
func WithResolver(r *workflow.Resolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithMetrics attaches dispatch instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithHistorySize bounds the terminal-context history.
func WithHistorySize(n int) Option {
	return func(o *Orchestrator) { o.historySize = n }
}

// New creates an orchestrator resolving workflow units from the provided
// lookup.
func New(units workflow.Lookup, opts ...Option) (*Orchestrator, error) {
	if units == nil {
		return nil, fmt.Errorf("workflow unit lookup is required")
	}
	o := &Orchestrator{
		resolver:    workflow.NewResolver(),
		units:       units,
		historySize: DefaultHistorySize,
		active:      map[core.ID]*WorkflowContext{},
	}
	for _, opt := range opts {
		opt(o)
	}
	history, err := lru.New[core.ID, *WorkflowContext](o.historySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow history: %w", err)
	}
	o.history = history
	return o, nil
}

// Dispatch executes the workflow selected for the trigger context and
// supervises it to completion. Workflow-level failures never surface as
// errors: the result always comes back structured, with Success=false and
// the failure captured in its error list. The caller bounds execution
// through the context deadline; expiry is treated as a failure.
func (o *Orchestrator) Dispatch(ctx context.Context, tc *trigger.Context) *Result {
	start := time.Now()
	family := o.resolver.Resolve(tc.Type)
	wfc := &WorkflowContext{
		WorkflowID: core.MustNewID(),
		Family:     family,
		SubjectID:  tc.SubjectID,
		TotalSteps: o.resolver.StepCount(family),
		Status:     core.StatusPending,
		Trigger:    tc,
		Metadata:   Metadata{StartTime: start, LastUpdate: start},
	}
	if deadline, ok := ctx.Deadline(); ok {
		wfc.Metadata.EstimatedCompletion = deadline
	}
	o.mu.Lock()
	o.active[wfc.WorkflowID] = wfc
	o.mu.Unlock()
	o.metrics.recordDispatched(ctx, family.String())

	logger.FromContext(ctx).Debug("dispatching workflow",
		"workflow_id", wfc.WorkflowID,
		"family", family,
		"trigger_type", tc.Type,
		"subject_id", tc.SubjectID,
	)
	return o.run(ctx, wfc, start)
}

func (o *Orchestrator) run(ctx context.Context, wfc *WorkflowContext, start time.Time) *Result {
	o.mu.Lock()
	wfc.transitionTo(core.StatusInProgress, time.Now())
	family := wfc.Family
	tc := wfc.Trigger
	o.mu.Unlock()

	unit, ok := o.units.Get(family)
	if !ok {
		return o.fail(ctx, wfc, start, fmt.Errorf("no workflow unit registered for family %s", family), codeNoUnit)
	}

	type unitReturn struct {
		out core.Output
		err error
	}
	done := make(chan unitReturn, 1)
	go func() {
		out, err := unit.Execute(ctx, tc)
		done <- unitReturn{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return o.fail(ctx, wfc, start, r.err, codeUnitFailure)
		}
		return o.complete(ctx, wfc, start, unit, r.out)
	case <-ctx.Done():
		code := codeCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			code = codeTimeout
		}
		return o.fail(ctx, wfc, start, ctx.Err(), code)
	}
}

func (o *Orchestrator) complete(
	ctx context.Context,
	wfc *WorkflowContext,
	start time.Time,
	unit workflow.Unit,
	out core.Output,
) *Result {
	o.mu.Lock()
	ok := wfc.transitionTo(core.StatusCompleted, time.Now())
	if ok {
		wfc.CurrentStep = wfc.TotalSteps
	}
	status := wfc.Status
	o.mu.Unlock()
	if !ok {
		// The context was canceled while the unit was in flight.
		return o.fail(ctx, wfc, start,
			fmt.Errorf("workflow %s ended in state %s before the unit returned", wfc.WorkflowID, status),
			codeCanceled)
	}
	o.moveToHistory(wfc)

	confidence, reported := 0.0, false
	if cr, isReporter := unit.(workflow.ConfidenceReporter); isReporter {
		confidence, reported = cr.ConfidenceOf(out)
	}
	if !reported {
		confidence = workflow.AggregateConfidence(out)
	}
	var warnings []string
	if wr, isReporter := unit.(workflow.WarningsReporter); isReporter {
		warnings = wr.WarningsOf(out)
	} else {
		warnings = workflow.ExtractWarnings(out)
	}

	elapsed := time.Since(start)
	o.metrics.recordOutcome(ctx, wfc.Family.String(), true, elapsed)
	logger.FromContext(ctx).Info("workflow completed",
		"workflow_id", wfc.WorkflowID,
		"family", wfc.Family,
		"duration", elapsed,
		"confidence", confidence,
	)
	return &Result{
		Success:     true,
		WorkflowID:  wfc.WorkflowID,
		Output:      out,
		NextActions: mergeLabels(defaultNextActions[wfc.Family], outputLabels(out, "nextActions")),
		Triggers:    mergeLabels(defaultFollowOnTriggers[wfc.Family], outputLabels(out, "triggers")),
		Confidence:  confidence,
		Duration:    elapsed,
		Warnings:    warnings,
	}
}

func (o *Orchestrator) fail(ctx context.Context, wfc *WorkflowContext, start time.Time, cause error, code string) *Result {
	now := time.Now()
	o.mu.Lock()
	wfc.Metadata.Errors = append(wfc.Metadata.Errors, cause.Error())
	wfc.transitionTo(core.StatusFailed, now)
	o.mu.Unlock()
	o.moveToHistory(wfc)

	elapsed := time.Since(start)
	o.metrics.recordOutcome(ctx, wfc.Family.String(), false, elapsed)
	logger.FromContext(ctx).Warn("workflow failed",
		"workflow_id", wfc.WorkflowID,
		"family", wfc.Family,
		"code", code,
		"error", cause,
	)
	return &Result{
		Success:    false,
		WorkflowID: wfc.WorkflowID,
		Confidence: 0,
		Duration:   elapsed,
		Errors:     []core.Error{{Message: cause.Error(), Code: code}},
	}
}

// moveToHistory shifts a terminal context out of the active table.
func (o *Orchestrator) moveToHistory(wfc *WorkflowContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !wfc.Status.IsTerminal() {
		return
	}
	if _, ok := o.active[wfc.WorkflowID]; ok {
		delete(o.active, wfc.WorkflowID)
		o.history.Add(wfc.WorkflowID, wfc)
	}
}

// -----------------------------------------------------------------------------
// Administrative operations
// -----------------------------------------------------------------------------

// GetWorkflow returns a copy of the context for the given workflow.
func (o *Orchestrator) GetWorkflow(id core.ID) (*WorkflowContext, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if wfc, ok := o.active[id]; ok {
		return wfc.clone(), nil
	}
	if wfc, ok := o.history.Get(id); ok {
		return wfc.clone(), nil
	}
	return nil, fmt.Errorf("workflow %s: %w", id, ErrWorkflowNotFound)
}

// ListActive returns copies of every pending or in-progress context.
func (o *Orchestrator) ListActive() []*WorkflowContext {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*WorkflowContext, 0, len(o.active))
	for _, wfc := range o.active {
		out = append(out, wfc.clone())
	}
	return out
}

// CancelWorkflow marks an in-progress workflow failed. Cancellation is
// advisory bookkeeping; a unit already in flight is not interrupted.
func (o *Orchestrator) CancelWorkflow(id core.ID) error {
	o.mu.Lock()
	wfc, ok := o.active[id]
	if !ok {
		wfc, ok = o.history.Get(id)
	}
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("workflow %s: %w", id, ErrWorkflowNotFound)
	}
	if wfc.Status != core.StatusInProgress {
		o.mu.Unlock()
		return fmt.Errorf("cannot cancel workflow %s in status %s: %w", id, wfc.Status, ErrInvalidState)
	}
	wfc.Metadata.Errors = append(wfc.Metadata.Errors, "workflow canceled")
	wfc.transitionTo(core.StatusFailed, time.Now())
	o.mu.Unlock()
	o.moveToHistory(wfc)
	return nil
}

// RetryWorkflow re-dispatches the original trigger context of a failed
// workflow: the step counter resets, the retry count increments and the
// same workflow identifier is reused. Only failed workflows can be retried.
func (o *Orchestrator) RetryWorkflow(ctx context.Context, id core.ID) (*Result, error) {
	o.mu.Lock()
	wfc, ok := o.active[id]
	if !ok {
		wfc, ok = o.history.Get(id)
	}
	if !ok {
		o.mu.Unlock()
		return nil, fmt.Errorf("workflow %s: %w", id, ErrWorkflowNotFound)
	}
	if wfc.Status != core.StatusFailed {
		o.mu.Unlock()
		return nil, fmt.Errorf("cannot retry workflow %s in status %s: %w", id, wfc.Status, ErrInvalidState)
	}
	start := time.Now()
	wfc.transitionTo(core.StatusPending, start)
	wfc.CurrentStep = 0
	wfc.Metadata.RetryCount++
	o.history.Remove(id)
	o.active[id] = wfc
	o.mu.Unlock()

	o.metrics.recordDispatched(ctx, wfc.Family.String())
	logger.FromContext(ctx).Info("retrying workflow",
		"workflow_id", id,
		"family", wfc.Family,
		"retry_count", wfc.Metadata.RetryCount,
	)
	return o.run(ctx, wfc, start), nil
}

// Statistics counts contexts by status across the active table and the
// terminal history. Calling it has no side effects.
func (o *Orchestrator) Statistics() Statistics {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var stats Statistics
	count := func(wfc *WorkflowContext) {
		stats.Total++
		switch wfc.Status {
		case core.StatusPending:
			stats.Pending++
		case core.StatusInProgress:
			stats.InProgress++
		case core.StatusCompleted:
			stats.Completed++
		case core.StatusFailed:
			stats.Failed++
		}
	}
	for _, wfc := range o.active {
		count(wfc)
	}
	for _, wfc := range o.history.Values() {
		count(wfc)
	}
	return stats
}

// -----------------------------------------------------------------------------
// Result shaping
// -----------------------------------------------------------------------------

// Follow-on work each family produces besides whatever the unit declares.
var defaultNextActions = map[workflow.Family][]string{
	workflow.FamilyLearningPath:       {"review_learning_path"},
	workflow.FamilyProgressTracking:   {"update_progress_dashboard"},
	workflow.FamilyCompletionHandling: {"issue_completion_record"},
	workflow.FamilyAssessment:         {"schedule_assessment"},
	workflow.FamilyGoalSetting:        {"confirm_goals"},
	workflow.FamilyReviewGeneration:   {"schedule_review_meeting"},
	workflow.FamilyCoachingPlan:       {"assign_coach"},
	workflow.FamilyTracking:           {"monitor_milestones"},
}

var defaultFollowOnTriggers = map[workflow.Family][]string{
	workflow.FamilyLearningPath:       {trigger.TypeLearningProgressUpdate},
	workflow.FamilyCompletionHandling: {trigger.TypeSkillAssessmentDue},
	workflow.FamilyGoalSetting:        {trigger.TypeLearningProgressUpdate},
}

func outputLabels(out core.Output, key string) []string {
	switch raw := out[key].(type) {
	case []string:
		return raw
	case []any:
		labels := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				labels = append(labels, s)
			}
		}
		return labels
	default:
		return nil
	}
}

func mergeLabels(base, extra []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range append(append([]string{}, base...), extra...) {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
