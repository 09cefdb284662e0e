package analysis

import (
	"time"

	"github.com/pulsehr/pulse/engine/core"
)

// ModuleDevelopment is the target module tag for trigger declarations owned
// by this orchestration domain. Declarations tagged for other modules are
// left for their own orchestrators.
const ModuleDevelopment = "development"

// Declaration is a trigger embedded in a cross-module analysis result.
type Declaration struct {
	TriggerType  string     `json:"triggerType"`
	ModuleType   string     `json:"moduleType"`
	Data         core.Input `json:"data,omitempty"`
	UrgencyLevel string     `json:"urgencyLevel,omitempty"`
	Priority     *int       `json:"priority,omitempty"`
}

// DomainResult is one analysis module's contribution to a snapshot.
type DomainResult struct {
	Domain     string         `json:"domain"`
	Summary    map[string]any `json:"summary,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Triggers   []Declaration  `json:"triggers,omitempty"`
}

// Snapshot is the unified cross-module analysis artifact.
type Snapshot struct {
	TenantID    string                  `json:"tenantId"`
	SubjectID   string                  `json:"subjectId"`
	GeneratedAt time.Time               `json:"generatedAt,omitempty"`
	Results     map[string]DomainResult `json:"results,omitempty"`
}

// GetTenantID implements trigger.Upstream.
func (s *Snapshot) GetTenantID() string {
	if s == nil {
		return ""
	}
	return s.TenantID
}

// GetSubjectID implements trigger.Upstream.
func (s *Snapshot) GetSubjectID() string {
	if s == nil {
		return ""
	}
	return s.SubjectID
}
