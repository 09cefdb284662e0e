package trigger

// Trigger type vocabulary. The set is closed-ish: these are the types the
// platform's analysis modules emit today, but registries treat the type as
// an open string tag so new modules can add their own.
const (
	TypeSkillsGap              = "skills_gap"
	TypeComplianceTraining     = "compliance_training"
	TypeCertificationRenewal   = "certification_renewal"
	TypeSkillAssessmentDue     = "skill_assessment_due"
	TypeLearningProgressUpdate = "learning_progress_update"
	TypeCourseCompletion       = "course_completion"
	TypeGoalOverdue            = "goal_overdue"
	TypeGoalSettingRequired    = "goal_setting_required"
	TypePerformanceReviewDue   = "performance_review_due"
	TypeCoachingRecommended    = "coaching_recommended"
	TypeEngagementDrop         = "engagement_drop"
	TypeOnboardingStarted      = "onboarding_started"
)

// FallbackSuffix marks the trigger type of a degraded re-attempt synthesized
// after a primary dispatch failure.
const FallbackSuffix = "_fallback"

// Source module tags.
const (
	ModuleSkills      = "skills"
	ModuleLearning    = "learning"
	ModulePerformance = "performance"
	ModuleCulture     = "culture"
	ModuleHiring      = "hiring"
)
