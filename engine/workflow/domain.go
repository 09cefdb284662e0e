package workflow

import (
	"context"

	"github.com/pulsehr/pulse/engine/core"
	"github.com/pulsehr/pulse/engine/trigger"
)

// Family is one of the fixed categories of work the platform executes.
type Family string

const (
	FamilyLearningPath       Family = "learning_path_creation"
	FamilyProgressTracking   Family = "progress_tracking"
	FamilyCompletionHandling Family = "completion_handling"
	FamilyAssessment         Family = "assessment"
	FamilyGoalSetting        Family = "goal_setting"
	FamilyReviewGeneration   Family = "review_generation"
	FamilyCoachingPlan       Family = "coaching_plan"
	FamilyTracking           Family = "tracking"
)

func (f Family) String() string {
	return string(f)
}

// Unit is an independently implemented handler for one workflow family.
// The orchestrator treats it as an opaque asynchronous unit of work: it
// takes a trigger context and either returns a structured output or fails.
// Execute must respect ctx cancellation; the orchestrator enforces the
// per-trigger-type timeout budget through the context deadline.
type Unit interface {
	Family() Family
	Execute(ctx context.Context, tc *trigger.Context) (core.Output, error)
}

// UnitFunc adapts a plain function into a Unit.
type UnitFunc struct {
	F    Family
	Exec func(ctx context.Context, tc *trigger.Context) (core.Output, error)
}

func (u UnitFunc) Family() Family {
	return u.F
}

func (u UnitFunc) Execute(ctx context.Context, tc *trigger.Context) (core.Output, error) {
	return u.Exec(ctx, tc)
}
