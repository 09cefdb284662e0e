package handler

import (
	"fmt"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/pulsehr/pulse/engine/core"
	"github.com/pulsehr/pulse/engine/trigger"
)

// Conditions are the static admission gates evaluated before dispatch.
type Conditions struct {
	MinUrgency      core.UrgencyLevel `json:"min_urgency,omitempty"`
	MaxUrgency      core.UrgencyLevel `json:"max_urgency,omitempty"`
	RequiredFields  []string          `json:"required_fields,omitempty"`
	ExcludedTenants []string          `json:"excluded_tenants,omitempty"`
	// Filter is an optional CEL expression over {trigger, payload}; a false
	// result rejects the trigger.
	Filter string `json:"filter,omitempty"`
}

// Config is the per-trigger-type processing policy.
type Config struct {
	Enabled        bool          `json:"enabled"`
	Priority       int           `json:"priority"`
	Timeout        time.Duration `json:"timeout"`
	RetryCount     int           `json:"retry_count"`
	FallbackAction string        `json:"fallback_action,omitempty"`
	Conditions     *Conditions   `json:"conditions,omitempty"`
}

// Partial carries the fields of a runtime configuration update; nil fields
// keep their current value.
type Partial struct {
	Enabled        *bool
	Priority       *int
	Timeout        *time.Duration
	RetryCount     *int
	FallbackAction *string
	Conditions     *Conditions
}

func (c Config) apply(p Partial) Config {
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Timeout != nil {
		c.Timeout = *p.Timeout
	}
	if p.RetryCount != nil {
		c.RetryCount = *p.RetryCount
	}
	if p.FallbackAction != nil {
		c.FallbackAction = *p.FallbackAction
	}
	if p.Conditions != nil {
		c.Conditions = p.Conditions
	}
	return c
}

// SeedConfigs is the policy table the registry starts from. Compliance and
// certification triggers carry the highest priorities and urgency gates;
// progress updates sit at the bottom with no gate at all.
func SeedConfigs() map[string]Config {
	return map[string]Config{
		trigger.TypeComplianceTraining: {
			Enabled:        true,
			Priority:       10,
			Timeout:        120 * time.Second,
			RetryCount:     2,
			FallbackAction: "compliance_reminder",
			Conditions:     &Conditions{MinUrgency: core.UrgencyHigh},
		},
		trigger.TypeCertificationRenewal: {
			Enabled:        true,
			Priority:       9,
			Timeout:        90 * time.Second,
			RetryCount:     2,
			FallbackAction: "renewal_reminder",
			Conditions:     &Conditions{RequiredFields: []string{"certificationId"}},
		},
		trigger.TypeSkillsGap: {
			Enabled:        true,
			Priority:       8,
			Timeout:        120 * time.Second,
			RetryCount:     1,
			FallbackAction: "basic_learning_path",
			Conditions:     &Conditions{RequiredFields: []string{"skillGaps", "employeeProfile"}},
		},
		trigger.TypeGoalOverdue: {
			Enabled:    true,
			Priority:   7,
			Timeout:    60 * time.Second,
			RetryCount: 1,
			Conditions: &Conditions{RequiredFields: []string{"goalId"}},
		},
		trigger.TypeEngagementDrop: {
			Enabled:    true,
			Priority:   7,
			Timeout:    60 * time.Second,
			RetryCount: 1,
			Conditions: &Conditions{MinUrgency: core.UrgencyMedium},
		},
		trigger.TypePerformanceReviewDue: {
			Enabled:        true,
			Priority:       6,
			Timeout:        90 * time.Second,
			RetryCount:     1,
			FallbackAction: "review_reminder",
		},
		trigger.TypeCourseCompletion: {
			Enabled:  true,
			Priority: 5,
			Timeout:  60 * time.Second,
		},
		trigger.TypeSkillAssessmentDue: {
			Enabled:    true,
			Priority:   5,
			Timeout:    90 * time.Second,
			RetryCount: 1,
		},
		trigger.TypeGoalSettingRequired: {
			Enabled:    true,
			Priority:   5,
			Timeout:    60 * time.Second,
			RetryCount: 1,
		},
		trigger.TypeCoachingRecommended: {
			Enabled:  true,
			Priority: 4,
			Timeout:  90 * time.Second,
		},
		trigger.TypeOnboardingStarted: {
			Enabled:  true,
			Priority: 4,
			Timeout:  60 * time.Second,
		},
		trigger.TypeLearningProgressUpdate: {
			Enabled:  true,
			Priority: 2,
			Timeout:  30 * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------
// YAML overlay
// -----------------------------------------------------------------------------

type yamlConditions struct {
	MinUrgency      string   `yaml:"min_urgency"`
	MaxUrgency      string   `yaml:"max_urgency"`
	RequiredFields  []string `yaml:"required_fields"`
	ExcludedTenants []string `yaml:"excluded_tenants"`
	Filter          string   `yaml:"filter"`
}

type yamlConfig struct {
	Enabled        *bool           `yaml:"enabled"`
	Priority       int             `yaml:"priority"`
	Timeout        string          `yaml:"timeout"`
	RetryCount     int             `yaml:"retry_count"`
	FallbackAction string          `yaml:"fallback_action"`
	Conditions     *yamlConditions `yaml:"conditions"`
}

// ParseConfigs decodes a YAML policy document. Entries replace the seed
// configuration for their trigger type wholesale. Timeouts are duration
// strings ("90s", "2m").
func ParseConfigs(data []byte) (map[string]Config, error) {
	var raw map[string]yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse handler configs: %w", err)
	}
	out := make(map[string]Config, len(raw))
	for triggerType, yc := range raw {
		cfg := Config{
			Enabled:        true,
			Priority:       yc.Priority,
			RetryCount:     yc.RetryCount,
			FallbackAction: yc.FallbackAction,
		}
		if yc.Enabled != nil {
			cfg.Enabled = *yc.Enabled
		}
		if yc.Timeout != "" {
			d, err := time.ParseDuration(yc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout for %s: %w", triggerType, err)
			}
			cfg.Timeout = d
		}
		if yc.Conditions != nil {
			cfg.Conditions = &Conditions{
				RequiredFields:  yc.Conditions.RequiredFields,
				ExcludedTenants: yc.Conditions.ExcludedTenants,
				Filter:          yc.Conditions.Filter,
			}
			if yc.Conditions.MinUrgency != "" {
				cfg.Conditions.MinUrgency = core.ToUrgency(yc.Conditions.MinUrgency)
			}
			if yc.Conditions.MaxUrgency != "" {
				cfg.Conditions.MaxUrgency = core.ToUrgency(yc.Conditions.MaxUrgency)
			}
		}
		out[triggerType] = cfg
	}
	return out, nil
}
