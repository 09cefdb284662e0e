package trigger

import (
	"fmt"

	"github.com/pulsehr/pulse/engine/core"
)

// Upstream exposes the identity carried by the analysis artifact a trigger
// was extracted from. It takes precedence over payload-level identifiers.
type Upstream interface {
	GetTenantID() string
	GetSubjectID() string
}

// Extracted is the trigger-type-specific portion of a Context produced by an
// ExtractionRule.
type Extracted struct {
	TargetSkills      []string
	Objectives        []string
	EstimatedDuration string
	Constraints       *Constraints
}

// ExtractionRule derives skills, objectives, duration and constraints from a
// raw payload. Rules are pure functions: no I/O, no failure modes.
type ExtractionRule func(payload core.Input) Extracted

// Builder normalizes a raw (triggerType, payload) pair into a Context.
type Builder struct {
	urgencies map[string]core.UrgencyLevel
	sources   map[string]string
	rules     map[string]ExtractionRule
}

// NewBuilder returns a Builder seeded with the default urgency, source and
// extraction tables for the known trigger vocabulary.
func NewBuilder() *Builder {
	b := &Builder{
		urgencies: map[string]core.UrgencyLevel{
			TypeComplianceTraining:     core.UrgencyCritical,
			TypeSkillsGap:              core.UrgencyHigh,
			TypeCertificationRenewal:   core.UrgencyHigh,
			TypeGoalOverdue:            core.UrgencyHigh,
			TypeEngagementDrop:         core.UrgencyHigh,
			TypeSkillAssessmentDue:     core.UrgencyMedium,
			TypeCourseCompletion:       core.UrgencyMedium,
			TypeGoalSettingRequired:    core.UrgencyMedium,
			TypePerformanceReviewDue:   core.UrgencyMedium,
			TypeCoachingRecommended:    core.UrgencyMedium,
			TypeOnboardingStarted:      core.UrgencyMedium,
			TypeLearningProgressUpdate: core.UrgencyLow,
		},
		sources: map[string]string{
			TypeSkillsGap:              ModuleSkills,
			TypeComplianceTraining:     ModuleSkills,
			TypeCertificationRenewal:   ModuleSkills,
			TypeSkillAssessmentDue:     ModuleSkills,
			TypeLearningProgressUpdate: ModuleLearning,
			TypeCourseCompletion:       ModuleLearning,
			TypeGoalOverdue:            ModulePerformance,
			TypeGoalSettingRequired:    ModulePerformance,
			TypePerformanceReviewDue:   ModulePerformance,
			TypeCoachingRecommended:    ModulePerformance,
			TypeEngagementDrop:         ModuleCulture,
			TypeOnboardingStarted:      ModuleHiring,
		},
		rules: map[string]ExtractionRule{},
	}
	b.rules[TypeSkillsGap] = extractSkillsGap
	b.rules[TypeComplianceTraining] = extractComplianceTraining
	b.rules[TypeCertificationRenewal] = extractCertificationRenewal
	b.rules[TypeCourseCompletion] = extractCourseCompletion
	b.rules[TypeGoalOverdue] = extractGoalOverdue
	return b
}

// RegisterRule installs or replaces the extraction rule for a trigger type.
func (b *Builder) RegisterRule(triggerType string, rule ExtractionRule) {
	b.rules[triggerType] = rule
}

// Build constructs an immutable Context for the given trigger. Tenant and
// subject are resolved from upstream first, the payload second; a missing
// subject or tenant is the only failure mode.
func (b *Builder) Build(triggerType string, payload core.Input, upstream Upstream) (*Context, error) {
	tenantID, subjectID := resolveIdentity(payload, upstream)
	if subjectID == "" {
		return nil, fmt.Errorf("building context for %s: %w", triggerType, ErrMissingSubject)
	}
	if tenantID == "" {
		return nil, fmt.Errorf("building context for %s: %w", triggerType, ErrMissingTenant)
	}
	copied, err := core.DeepCopy(payload)
	if err != nil {
		return nil, fmt.Errorf("building context for %s: %w", triggerType, err)
	}
	extracted := b.extract(triggerType, payload)
	urgency := b.urgency(triggerType, payload)
	return &Context{
		TenantID:          tenantID,
		SubjectID:         subjectID,
		Type:              triggerType,
		Payload:           copied,
		Urgency:           urgency,
		Priority:          resolvePriority(payload, urgency),
		SourceModule:      b.sources[triggerType],
		TargetSkills:      extracted.TargetSkills,
		Objectives:        extracted.Objectives,
		EstimatedDuration: extracted.EstimatedDuration,
		Constraints:       extracted.Constraints,
	}, nil
}

func (b *Builder) urgency(triggerType string, payload core.Input) core.UrgencyLevel {
	if s := stringField(payload, "urgencyLevel", "urgency"); s != "" {
		return core.ToUrgency(s)
	}
	if u, ok := b.urgencies[triggerType]; ok {
		return u
	}
	return core.UrgencyMedium
}

func (b *Builder) extract(triggerType string, payload core.Input) Extracted {
	if rule, ok := b.rules[triggerType]; ok {
		return rule(payload)
	}
	return extractGeneric(payload)
}

func resolveIdentity(payload core.Input, upstream Upstream) (tenantID, subjectID string) {
	if upstream != nil {
		tenantID = upstream.GetTenantID()
		subjectID = upstream.GetSubjectID()
	}
	if tenantID == "" {
		tenantID = stringField(payload, "tenantId", "tenant_id", "organizationId")
	}
	if subjectID == "" {
		subjectID = stringField(payload, "employeeId", "employee_id", "subjectId", "subject_id", "userId")
	}
	return tenantID, subjectID
}

// resolvePriority honors an explicit payload priority, otherwise derives one
// from urgency so that more urgent triggers sort sooner by default.
func resolvePriority(payload core.Input, urgency core.UrgencyLevel) int {
	if payload != nil {
		switch v := payload["priority"].(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	switch urgency {
	case core.UrgencyCritical:
		return 9
	case core.UrgencyHigh:
		return 7
	case core.UrgencyLow:
		return 2
	default:
		return 4
	}
}

// -----------------------------------------------------------------------------
// Extraction rules
// -----------------------------------------------------------------------------

func extractGeneric(payload core.Input) Extracted {
	return Extracted{
		TargetSkills:      stringSlice(payload, "targetSkills"),
		Objectives:        stringSlice(payload, "objectives"),
		EstimatedDuration: stringField(payload, "estimatedDuration"),
		Constraints:       parseConstraints(payload),
	}
}

func extractSkillsGap(payload core.Input) Extracted {
	out := extractGeneric(payload)
	if skills := stringSlice(payload, "skillGaps"); len(skills) > 0 {
		out.TargetSkills = skills
		if len(out.Objectives) == 0 {
			for _, s := range skills {
				out.Objectives = append(out.Objectives, "close_gap:"+s)
			}
		}
	}
	return out
}

func extractComplianceTraining(payload core.Input) Extracted {
	out := extractGeneric(payload)
	if training := stringSlice(payload, "requiredTraining"); len(training) > 0 {
		out.TargetSkills = training
	}
	if len(out.Objectives) == 0 {
		out.Objectives = []string{"complete_compliance_training"}
	}
	if due := stringField(payload, "dueDate"); due != "" {
		if out.Constraints == nil {
			out.Constraints = &Constraints{}
		}
		out.Constraints.Deadline = due
	}
	return out
}

func extractCertificationRenewal(payload core.Input) Extracted {
	out := extractGeneric(payload)
	if certID := stringField(payload, "certificationId"); certID != "" {
		if out.Constraints == nil {
			out.Constraints = &Constraints{}
		}
		out.Constraints.RequiredCerts = append(out.Constraints.RequiredCerts, certID)
	}
	if exp := stringField(payload, "expiresAt"); exp != "" {
		if out.Constraints == nil {
			out.Constraints = &Constraints{}
		}
		out.Constraints.Deadline = exp
	}
	if len(out.Objectives) == 0 {
		out.Objectives = []string{"renew_certification"}
	}
	return out
}

func extractCourseCompletion(payload core.Input) Extracted {
	out := extractGeneric(payload)
	if next := stringSlice(payload, "recommendedNext"); len(next) > 0 {
		out.Objectives = next
	}
	return out
}

func extractGoalOverdue(payload core.Input) Extracted {
	out := extractGeneric(payload)
	if goalID := stringField(payload, "goalId"); goalID != "" && len(out.Objectives) == 0 {
		out.Objectives = []string{"revise_goal:" + goalID}
	}
	return out
}

func parseConstraints(payload core.Input) *Constraints {
	raw, ok := payload["constraints"].(map[string]any)
	if !ok {
		return nil
	}
	c := &Constraints{
		Deadline:      stringField(raw, "deadline"),
		Prerequisites: stringSlice(raw, "prerequisites"),
		RequiredCerts: stringSlice(raw, "requiredCertifications"),
	}
	switch v := raw["budget"].(type) {
	case float64:
		c.Budget = v
	case int:
		c.Budget = float64(v)
	}
	return c
}

// -----------------------------------------------------------------------------
// Payload helpers
// -----------------------------------------------------------------------------

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringSlice(m map[string]any, key string) []string {
	switch raw := m[key].(type) {
	case []string:
		out := make([]string, len(raw))
		copy(out, raw)
		return out
	case []any:
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
