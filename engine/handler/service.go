package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/pulsehr/pulse/engine/analysis"
	"github.com/pulsehr/pulse/engine/core"
	"github.com/pulsehr/pulse/engine/orchestrator"
	"github.com/pulsehr/pulse/engine/trigger"
	"github.com/pulsehr/pulse/pkg/logger"
)

const fallbackRetryBackoffBase = 500 * time.Millisecond

// Dispatcher is the orchestrator surface the handler layer depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, tc *trigger.Context) *orchestrator.Result
	RetryWorkflow(ctx context.Context, id core.ID) (*orchestrator.Result, error)
	GetWorkflow(id core.ID) (*orchestrator.WorkflowContext, error)
}

// Service validates, orders and dispatches triggers, records per-type
// statistics and runs the configured fallback when a primary dispatch
// fails. Safe for concurrent use; batches stay sequential by design.
type Service struct {
	registry       *Registry
	builder        *trigger.Builder
	disp           Dispatcher
	stats          *StatsStore
	filter         *CELEvaluator
	metrics        *Metrics
	defaultTimeout time.Duration
}

type ServiceOption func(*Service)

// WithRegistry replaces the seed policy registry.
func WithRegistry(r *Registry) ServiceOption {
	return func(s *Service) { s.registry = r }
}

// WithBuilder replaces the default trigger context builder.
func WithBuilder(b *trigger.Builder) ServiceOption {
	return func(s *Service) { s.builder = b }
}

// WithMetrics attaches processing instrumentation.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithFilter replaces the default CEL admission evaluator.
func WithFilter(f *CELEvaluator) ServiceOption {
	return func(s *Service) { s.filter = f }
}

// WithDefaultTimeout bounds dispatches whose handler policy carries no
// timeout of its own.
func WithDefaultTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.defaultTimeout = d }
}

// NewService creates a trigger handler service around the given dispatcher.
func NewService(disp Dispatcher, opts ...ServiceOption) (*Service, error) {
	if disp == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	s := &Service{
		registry: NewRegistry(),
		builder:  trigger.NewBuilder(),
		disp:     disp,
		stats:    NewStatsStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.filter == nil {
		filter, err := NewCELEvaluator()
		if err != nil {
			return nil, err
		}
		s.filter = filter
	}
	return s, nil
}

// Registry exposes the policy table for the administrative surface.
func (s *Service) Registry() *Registry {
	return s.registry
}

// ProcessTrigger runs the full pipeline for one trigger: admission,
// context construction, dispatch, stats, fallback. Every call yields a
// result; admission rejections come back with Success=false and no
// orchestration outcome.
func (s *Service) ProcessTrigger(
	ctx context.Context,
	triggerType string,
	payload core.Input,
	upstream trigger.Upstream,
) *Result {
	start := time.Now()
	s.metrics.recordReceived(ctx, triggerType)

	cfg, ok := s.registry.Get(triggerType)
	if !ok {
		return s.reject(ctx, triggerType, start, fmt.Errorf("%w: %s", ErrUnknownHandler, triggerType), codeUnknownHandler)
	}
	if !cfg.Enabled {
		return s.reject(ctx, triggerType, start, fmt.Errorf("%w: %s", ErrHandlerDisabled, triggerType), codeDisabled)
	}
	tc, err := s.builder.Build(triggerType, payload, upstream)
	if err != nil {
		return s.reject(ctx, triggerType, start, err, codeInvalidContext)
	}
	if admitErr := s.admit(ctx, cfg, tc); admitErr != nil {
		return s.reject(ctx, triggerType, start, admitErr, admissionCode(admitErr))
	}

	res := s.dispatch(ctx, cfg, tc)
	elapsed := time.Since(start)
	s.stats.Record(triggerType, res.Success, elapsed)
	s.metrics.recordProcessed(ctx, triggerType, res.Success, elapsed)

	fallbackUsed := false
	if !res.Success && cfg.FallbackAction != "" {
		fallbackUsed = true
		s.dispatchFallback(ctx, cfg, tc)
	}
	return &Result{
		HandlerID:     uuid.NewString(),
		TriggerType:   triggerType,
		Success:       res.Success,
		FallbackUsed:  fallbackUsed,
		Duration:      time.Since(start),
		Orchestration: res,
		NextTriggers:  res.Triggers,
		Errors:        res.Errors,
	}
}

// ProcessBatch processes triggers sequentially in configured-priority
// order. Sequential processing is deliberate: triggers from one snapshot
// for one subject may depend on each other, so ordering determinism wins
// over throughput here.
func (s *Service) ProcessBatch(ctx context.Context, batch []TriggerRequest, upstream trigger.Upstream) []*Result {
	ordered := make([]TriggerRequest, len(batch))
	copy(ordered, batch)
	sort.SliceStable(ordered, func(i, j int) bool {
		return s.priorityOf(ordered[i].Type) > s.priorityOf(ordered[j].Type)
	})
	results := make([]*Result, 0, len(ordered))
	for _, req := range ordered {
		results = append(results, s.ProcessTrigger(ctx, req.Type, req.Payload, upstream))
	}
	return results
}

// ProcessUnifiedResults extracts the trigger declarations targeting this
// orchestration domain from a cross-module analysis snapshot and processes
// them as one batch.
func (s *Service) ProcessUnifiedResults(ctx context.Context, snap *analysis.Snapshot) []*Result {
	extracted := analysis.ExtractTriggers(snap, analysis.ModuleDevelopment)
	batch := make([]TriggerRequest, 0, len(extracted))
	for _, ex := range extracted {
		batch = append(batch, TriggerRequest{Type: ex.Type, Payload: ex.Payload})
	}
	return s.ProcessBatch(ctx, batch, snap)
}

// RetryWithPolicy retries a failed workflow under the retry budget
// configured for its trigger type, with exponential backoff between
// attempts. Dispatch itself never retries; this is the caller-driven
// retry path.
func (s *Service) RetryWithPolicy(ctx context.Context, workflowID core.ID) (*orchestrator.Result, error) {
	wfc, err := s.disp.GetWorkflow(workflowID)
	if err != nil {
		return nil, err
	}
	attempts := 1
	if wfc.Trigger != nil {
		if cfg, ok := s.registry.Get(wfc.Trigger.Type); ok && cfg.RetryCount > 0 {
			attempts = cfg.RetryCount
		}
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(fallbackRetryBackoffBase))

	var res *orchestrator.Result
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, rerr := s.disp.RetryWorkflow(ctx, workflowID)
		if rerr != nil {
			return rerr
		}
		res = r
		if !r.Success {
			return retry.RetryableError(fmt.Errorf("workflow %s still failing", workflowID))
		}
		return nil
	})
	if err != nil {
		if res != nil {
			// budget exhausted; the last failed result stands
			return res, nil
		}
		return nil, err
	}
	return res, nil
}

// GetStats returns the counters for one trigger type.
func (s *Service) GetStats(triggerType string) (Stats, bool) {
	return s.stats.Get(triggerType)
}

// AllStats returns the counters for every trigger type seen so far.
func (s *Service) AllStats() map[string]Stats {
	return s.stats.All()
}

// Health classifies every configured handler and aggregates the counts.
func (s *Service) Health() HealthReport {
	report := HealthReport{Handlers: map[string]HandlerHealth{}}
	for _, t := range s.registry.SupportedTypes() {
		cfg, _ := s.registry.Get(t)
		st, _ := s.stats.Get(t)
		h := HandlerHealth{Enabled: cfg.Enabled, Healthy: st.Healthy(), Stats: st}
		report.Handlers[t] = h
		if cfg.Enabled {
			report.Enabled++
		} else {
			report.Disabled++
		}
		if h.Healthy {
			report.Healthy++
		} else {
			report.Unhealthy++
		}
	}
	return report
}

// -----------------------------------------------------------------------------
// Pipeline internals
// -----------------------------------------------------------------------------

func (s *Service) dispatch(ctx context.Context, cfg Config, tc *trigger.Context) *orchestrator.Result {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}
	dctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.disp.Dispatch(dctx, tc)
}

func (s *Service) admit(ctx context.Context, cfg Config, tc *trigger.Context) error {
	cond := cfg.Conditions
	if cond == nil {
		return nil
	}
	if cond.MinUrgency != "" && !tc.Urgency.AtLeast(cond.MinUrgency) {
		return fmt.Errorf("%w: %s below minimum %s", ErrUrgencyOutOfRange, tc.Urgency, cond.MinUrgency)
	}
	if cond.MaxUrgency != "" && !tc.Urgency.AtMost(cond.MaxUrgency) {
		return fmt.Errorf("%w: %s above maximum %s", ErrUrgencyOutOfRange, tc.Urgency, cond.MaxUrgency)
	}
	for _, field := range cond.RequiredFields {
		if _, ok := tc.Payload[field]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}
	for _, tenant := range cond.ExcludedTenants {
		if tenant == tc.TenantID {
			return fmt.Errorf("%w: %s", ErrTenantExcluded, tc.TenantID)
		}
	}
	if cond.Filter != "" {
		allowed, err := s.filter.Evaluate(ctx, cond.Filter, FilterContext(tc.Type, tc.TenantID, tc.SubjectID, tc.Payload.AsMap()))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrFilterRejected, err.Error())
		}
		if !allowed {
			return fmt.Errorf("%w: %s", ErrFilterRejected, tc.Type)
		}
	}
	return nil
}

// dispatchFallback runs the degraded re-attempt configured for the trigger
// type. Its failures are logged and swallowed: the primary failure remains
// the reported outcome.
func (s *Service) dispatchFallback(ctx context.Context, cfg Config, tc *trigger.Context) {
	log := logger.FromContext(ctx)
	fb, err := s.builder.Build(tc.Type+trigger.FallbackSuffix, fallbackPayload(tc, cfg.FallbackAction), nil)
	if err != nil {
		log.Warn("failed to build fallback context", "trigger_type", tc.Type, "error", err)
		s.metrics.recordFallback(ctx, tc.Type, false)
		return
	}
	res := s.dispatch(ctx, cfg, fb)
	s.metrics.recordFallback(ctx, tc.Type, res.Success)
	if !res.Success {
		log.Warn("fallback workflow failed",
			"trigger_type", tc.Type,
			"fallback_action", cfg.FallbackAction,
			"workflow_id", res.WorkflowID,
		)
	}
}

// fallbackPayload synthesizes the low-priority, low-urgency payload of a
// degraded re-attempt: same identity, trimmed scope, explicit markers.
func fallbackPayload(tc *trigger.Context, action string) core.Input {
	p := core.Input{
		"tenantId":        tc.TenantID,
		"employeeId":      tc.SubjectID,
		"isFallback":      true,
		"fallbackAction":  action,
		"originalTrigger": tc.Type,
		"urgencyLevel":    core.UrgencyLow.String(),
		"priority":        1,
	}
	if len(tc.TargetSkills) > 0 {
		p["targetSkills"] = tc.TargetSkills[:1]
	}
	if len(tc.Objectives) > 0 {
		p["objectives"] = tc.Objectives[:1]
	}
	return p
}

func (s *Service) reject(ctx context.Context, triggerType string, start time.Time, cause error, code string) *Result {
	elapsed := time.Since(start)
	s.stats.Record(triggerType, false, elapsed)
	s.metrics.recordRejected(ctx, triggerType, code)
	logger.FromContext(ctx).Warn("trigger rejected",
		"trigger_type", triggerType,
		"code", code,
		"error", cause,
	)
	return &Result{
		HandlerID:   uuid.NewString(),
		TriggerType: triggerType,
		Success:     false,
		Duration:    elapsed,
		Errors:      []core.Error{{Message: cause.Error(), Code: code}},
	}
}

func (s *Service) priorityOf(triggerType string) int {
	if cfg, ok := s.registry.Get(triggerType); ok {
		return cfg.Priority
	}
	return 0
}

func admissionCode(err error) string {
	switch {
	case errors.Is(err, ErrUrgencyOutOfRange):
		return codeUrgency
	case errors.Is(err, ErrMissingField):
		return codeMissingField
	case errors.Is(err, ErrTenantExcluded):
		return codeTenantExcluded
	case errors.Is(err, ErrFilterRejected):
		return codeFilterRejected
	default:
		return codeInvalidContext
	}
}
