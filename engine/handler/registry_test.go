package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsehr/pulse/engine/trigger"
)

func TestRegistry(t *testing.T) {
	t.Run("Should start from the seed policy table", func(t *testing.T) {
		r := NewRegistry()
		cfg, ok := r.Get(trigger.TypeComplianceTraining)
		require.True(t, ok)
		assert.True(t, cfg.Enabled)
		assert.Equal(t, 10, cfg.Priority)
		assert.Equal(t, "compliance_reminder", cfg.FallbackAction)
		assert.Len(t, r.SupportedTypes(), len(SeedConfigs()))
	})
	t.Run("Should return sorted supported types", func(t *testing.T) {
		types := NewRegistry().SupportedTypes()
		assert.IsIncreasing(t, types)
	})
	t.Run("Should apply partial updates and keep other fields", func(t *testing.T) {
		r := NewRegistry()
		priority := 3
		timeout := 45 * time.Second
		require.True(t, r.Update(trigger.TypeSkillsGap, Partial{Priority: &priority, Timeout: &timeout}))
		cfg, ok := r.Get(trigger.TypeSkillsGap)
		require.True(t, ok)
		assert.Equal(t, 3, cfg.Priority)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
		assert.Equal(t, "basic_learning_path", cfg.FallbackAction)
		require.NotNil(t, cfg.Conditions)
		assert.Contains(t, cfg.Conditions.RequiredFields, "skillGaps")
	})
	t.Run("Should report unknown types on update", func(t *testing.T) {
		r := NewRegistry()
		assert.False(t, r.Update("nonexistent", Partial{}))
		assert.False(t, r.SetEnabled("nonexistent", true))
	})
	t.Run("Should toggle enablement", func(t *testing.T) {
		r := NewRegistry()
		require.True(t, r.SetEnabled(trigger.TypeCourseCompletion, false))
		cfg, _ := r.Get(trigger.TypeCourseCompletion)
		assert.False(t, cfg.Enabled)
		require.True(t, r.SetEnabled(trigger.TypeCourseCompletion, true))
		cfg, _ = r.Get(trigger.TypeCourseCompletion)
		assert.True(t, cfg.Enabled)
	})
	t.Run("Should register new trigger types", func(t *testing.T) {
		r := NewRegistry()
		r.Put("mentoring_match", Config{Enabled: true, Priority: 6, Timeout: time.Minute})
		cfg, ok := r.Get("mentoring_match")
		require.True(t, ok)
		assert.Equal(t, 6, cfg.Priority)
		assert.Contains(t, r.SupportedTypes(), "mentoring_match")
	})
	t.Run("Should snapshot without exposing internal state", func(t *testing.T) {
		r := NewRegistry()
		snap := r.Snapshot()
		snap[trigger.TypeSkillsGap] = Config{}
		cfg, _ := r.Get(trigger.TypeSkillsGap)
		assert.True(t, cfg.Enabled)
	})
}
