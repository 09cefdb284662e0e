package workflow

import "github.com/pulsehr/pulse/engine/trigger"

// DefaultFamily handles trigger types that no table entry claims. Routing
// unknown work into learning-path creation keeps it visible to operators
// instead of silently dropping it.
const DefaultFamily = FamilyLearningPath

// Resolver maps trigger types onto workflow families and knows the expected
// step count of each family. Step counts feed progress reporting only.
type Resolver struct {
	families map[string]Family
	steps    map[Family]int
}

func NewResolver() *Resolver {
	return &Resolver{
		families: map[string]Family{
			trigger.TypeSkillsGap:              FamilyLearningPath,
			trigger.TypeComplianceTraining:     FamilyLearningPath,
			trigger.TypeCertificationRenewal:   FamilyAssessment,
			trigger.TypeSkillAssessmentDue:     FamilyAssessment,
			trigger.TypeLearningProgressUpdate: FamilyProgressTracking,
			trigger.TypeCourseCompletion:       FamilyCompletionHandling,
			trigger.TypeGoalOverdue:            FamilyGoalSetting,
			trigger.TypeGoalSettingRequired:    FamilyGoalSetting,
			trigger.TypePerformanceReviewDue:   FamilyReviewGeneration,
			trigger.TypeCoachingRecommended:    FamilyCoachingPlan,
			trigger.TypeEngagementDrop:         FamilyCoachingPlan,
			trigger.TypeOnboardingStarted:      FamilyTracking,
		},
		steps: map[Family]int{
			FamilyLearningPath:       5,
			FamilyProgressTracking:   3,
			FamilyCompletionHandling: 4,
			FamilyAssessment:         4,
			FamilyGoalSetting:        4,
			FamilyReviewGeneration:   5,
			FamilyCoachingPlan:       4,
			FamilyTracking:           3,
		},
	}
}

// Resolve maps a trigger type to its workflow family. Fallback-flavored
// trigger types resolve like their primary type.
func (r *Resolver) Resolve(triggerType string) Family {
	if f, ok := r.families[triggerType]; ok {
		return f
	}
	if primary, ok := trimFallback(triggerType); ok {
		if f, found := r.families[primary]; found {
			return f
		}
	}
	return DefaultFamily
}

// StepCount returns the expected step count for a family.
func (r *Resolver) StepCount(family Family) int {
	if n, ok := r.steps[family]; ok {
		return n
	}
	return r.steps[DefaultFamily]
}

func trimFallback(triggerType string) (string, bool) {
	const suffix = trigger.FallbackSuffix
	if len(triggerType) > len(suffix) && triggerType[len(triggerType)-len(suffix):] == suffix {
		return triggerType[:len(triggerType)-len(suffix)], true
	}
	return triggerType, false
}
