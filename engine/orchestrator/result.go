package orchestrator

import (
	"time"

	"github.com/pulsehr/pulse/engine/core"
)

// Result is the outcome envelope of one dispatch. It is never mutated after
// construction and is JSON-serializable.
type Result struct {
	Success     bool          `json:"success"`
	WorkflowID  core.ID       `json:"workflow_id"`
	Output      core.Output   `json:"output,omitempty"`
	NextActions []string      `json:"next_actions,omitempty"`
	Triggers    []string      `json:"triggers,omitempty"`
	Confidence  float64       `json:"confidence"`
	Duration    time.Duration `json:"duration"`
	Errors      []core.Error  `json:"errors,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// Statistics reports context counts by status.
type Statistics struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
