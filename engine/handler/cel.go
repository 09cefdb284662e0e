package handler

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/cel-go/cel"
)

const (
	defaultCELCostLimit   = 1000
	celCacheNumCounters   = 10_000
	celCacheMaxCost       = 1_000
	celCacheBufferItems   = 64
	celProgramCacheWeight = 1
)

// CELEvaluator compiles and evaluates admission filter expressions.
// Compiled programs are cached in a ristretto cache keyed by expression.
type CELEvaluator struct {
	env          *cel.Env
	costLimit    uint64
	programCache *ristretto.Cache[string, cel.Program]
}

type CELOption func(*CELEvaluator)

// WithCostLimit caps the evaluation cost of a single expression.
func WithCostLimit(limit uint64) CELOption {
	return func(e *CELEvaluator) { e.costLimit = limit }
}

// NewCELEvaluator creates an evaluator exposing `trigger` and `payload`
// variables to filter expressions.
func NewCELEvaluator(opts ...CELOption) (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("trigger", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("payload", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, cel.Program]{
		NumCounters: celCacheNumCounters,
		MaxCost:     celCacheMaxCost,
		BufferItems: celCacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program cache: %w", err)
	}
	e := &CELEvaluator{env: env, costLimit: defaultCELCostLimit, programCache: cache}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate runs a filter expression against the provided data and returns
// its boolean outcome. Non-boolean results and compile failures are errors.
func (e *CELEvaluator) Evaluate(ctx context.Context, expression string, data map[string]any) (bool, error) {
	prg, err := e.program(expression)
	if err != nil {
		return false, err
	}
	val, _, err := prg.ContextEval(ctx, data)
	if err != nil {
		return false, fmt.Errorf("CEL evaluation failed: %w", err)
	}
	result, ok := val.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression must evaluate to a boolean, got %T", val.Value())
	}
	return result, nil
}

func (e *CELEvaluator) program(expression string) (cel.Program, error) {
	if prg, ok := e.programCache.Get(expression); ok {
		return prg, nil
	}
	ast, iss := e.env.Compile(expression)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("CEL compilation failed: %w", iss.Err())
	}
	prg, err := e.env.Program(ast, cel.CostLimit(e.costLimit))
	if err != nil {
		return nil, fmt.Errorf("CEL program construction failed: %w", err)
	}
	e.programCache.Set(expression, prg, celProgramCacheWeight)
	return prg, nil
}

// FilterContext shapes the data a filter expression sees.
func FilterContext(triggerType, tenantID, subjectID string, payload map[string]any) map[string]any {
	if payload == nil {
		payload = map[string]any{}
	}
	return map[string]any{
		"trigger": map[string]any{
			"type":       triggerType,
			"tenant_id":  tenantID,
			"subject_id": subjectID,
		},
		"payload": payload,
	}
}
