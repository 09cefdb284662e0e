package trigger

import (
	"github.com/pulsehr/pulse/engine/core"
)

// Constraints carries the optional boundaries a workflow must respect.
type Constraints struct {
	Budget        float64  `json:"budget,omitempty"`
	Deadline      string   `json:"deadline,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	RequiredCerts []string `json:"required_certifications,omitempty"`
}

// Context is the normalized unit of work handed to the orchestrator.
// It is constructed once by the Builder and never mutated afterwards; the
// payload is deep-copied at build time so callers keep no aliases into it.
type Context struct {
	TenantID          string            `json:"tenant_id"`
	SubjectID         string            `json:"subject_id"`
	Type              string            `json:"trigger_type"`
	Payload           core.Input        `json:"payload,omitempty"`
	Urgency           core.UrgencyLevel `json:"urgency"`
	Priority          int               `json:"priority"`
	SourceModule      string            `json:"source_module,omitempty"`
	TargetSkills      []string          `json:"target_skills,omitempty"`
	Objectives        []string          `json:"objectives,omitempty"`
	EstimatedDuration string            `json:"estimated_duration,omitempty"`
	Constraints       *Constraints      `json:"constraints,omitempty"`
}

// IsFallback reports whether this context was synthesized for a degraded
// re-attempt after a primary dispatch failure.
func (c *Context) IsFallback() bool {
	if c == nil {
		return false
	}
	if v, ok := c.Payload["isFallback"].(bool); ok && v {
		return true
	}
	return false
}
