package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsehr/pulse/engine/core"
	"github.com/pulsehr/pulse/engine/trigger"
)

func TestSeedConfigs(t *testing.T) {
	t.Run("Should cover the full trigger vocabulary", func(t *testing.T) {
		seed := SeedConfigs()
		for _, triggerType := range []string{
			trigger.TypeSkillsGap,
			trigger.TypeComplianceTraining,
			trigger.TypeCertificationRenewal,
			trigger.TypeSkillAssessmentDue,
			trigger.TypeLearningProgressUpdate,
			trigger.TypeCourseCompletion,
			trigger.TypeGoalOverdue,
			trigger.TypeGoalSettingRequired,
			trigger.TypePerformanceReviewDue,
			trigger.TypeCoachingRecommended,
			trigger.TypeEngagementDrop,
			trigger.TypeOnboardingStarted,
		} {
			cfg, ok := seed[triggerType]
			require.True(t, ok, "missing seed config for %s", triggerType)
			assert.True(t, cfg.Enabled, triggerType)
			assert.Positive(t, cfg.Priority, triggerType)
			assert.Positive(t, cfg.Timeout, triggerType)
		}
	})
	t.Run("Should rank compliance above progress updates", func(t *testing.T) {
		seed := SeedConfigs()
		assert.Greater(t,
			seed[trigger.TypeComplianceTraining].Priority,
			seed[trigger.TypeLearningProgressUpdate].Priority,
		)
	})
}

func TestParseConfigs(t *testing.T) {
	t.Run("Should parse a policy document", func(t *testing.T) {
		doc := []byte(`
skills_gap:
  priority: 9
  timeout: 2m
  retry_count: 3
  fallback_action: basic_learning_path
  conditions:
    min_urgency: high
    required_fields:
      - skillGaps
    filter: 'payload.gapScore >= 0.5'
course_completion:
  enabled: false
  priority: 1
  timeout: 30s
`)
		configs, err := ParseConfigs(doc)
		require.NoError(t, err)
		require.Len(t, configs, 2)

		sg := configs["skills_gap"]
		assert.True(t, sg.Enabled)
		assert.Equal(t, 9, sg.Priority)
		assert.Equal(t, 2*time.Minute, sg.Timeout)
		assert.Equal(t, 3, sg.RetryCount)
		require.NotNil(t, sg.Conditions)
		assert.Equal(t, core.UrgencyHigh, sg.Conditions.MinUrgency)
		assert.Equal(t, []string{"skillGaps"}, sg.Conditions.RequiredFields)
		assert.NotEmpty(t, sg.Conditions.Filter)

		cc := configs["course_completion"]
		assert.False(t, cc.Enabled)
		assert.Equal(t, 30*time.Second, cc.Timeout)
	})
	t.Run("Should reject invalid timeout strings", func(t *testing.T) {
		_, err := ParseConfigs([]byte("skills_gap:\n  timeout: soon\n"))
		assert.ErrorContains(t, err, "invalid timeout")
	})
	t.Run("Should reject malformed YAML", func(t *testing.T) {
		_, err := ParseConfigs([]byte(":\n: ["))
		assert.Error(t, err)
	})
}

func TestPartialApply(t *testing.T) {
	t.Run("Should only touch set fields", func(t *testing.T) {
		base := Config{Enabled: true, Priority: 5, Timeout: time.Minute, FallbackAction: "x"}
		enabled := false
		updated := base.apply(Partial{Enabled: &enabled})
		assert.False(t, updated.Enabled)
		assert.Equal(t, 5, updated.Priority)
		assert.Equal(t, time.Minute, updated.Timeout)
		assert.Equal(t, "x", updated.FallbackAction)
	})
	t.Run("Should replace conditions wholesale", func(t *testing.T) {
		base := Config{Conditions: &Conditions{MinUrgency: core.UrgencyHigh}}
		updated := base.apply(Partial{Conditions: &Conditions{RequiredFields: []string{"goalId"}}})
		assert.Empty(t, updated.Conditions.MinUrgency)
		assert.Equal(t, []string{"goalId"}, updated.Conditions.RequiredFields)
	})
}
