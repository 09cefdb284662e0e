package handler

import (
	"time"

	"github.com/pulsehr/pulse/engine/core"
	"github.com/pulsehr/pulse/engine/orchestrator"
)

// TriggerRequest is one (type, payload) pair submitted for processing.
type TriggerRequest struct {
	Type    string     `json:"triggerType"`
	Payload core.Input `json:"data,omitempty"`
}

// Result wraps an orchestration outcome with handler-level bookkeeping.
// Admission rejections carry no orchestration result at all: the trigger
// never reached the orchestrator.
type Result struct {
	HandlerID     string               `json:"handler_id"`
	TriggerType   string               `json:"trigger_type"`
	Success       bool                 `json:"success"`
	FallbackUsed  bool                 `json:"fallback_used,omitempty"`
	Duration      time.Duration        `json:"duration"`
	Orchestration *orchestrator.Result `json:"orchestration,omitempty"`
	NextTriggers  []string             `json:"next_triggers,omitempty"`
	Errors        []core.Error         `json:"errors,omitempty"`
}

// HealthReport aggregates handler health for the administrative surface.
type HealthReport struct {
	Enabled   int                      `json:"enabled"`
	Disabled  int                      `json:"disabled"`
	Healthy   int                      `json:"healthy"`
	Unhealthy int                      `json:"unhealthy"`
	Handlers  map[string]HandlerHealth `json:"handlers"`
}

// HandlerHealth is one trigger type's health classification.
type HandlerHealth struct {
	Enabled bool  `json:"enabled"`
	Healthy bool  `json:"healthy"`
	Stats   Stats `json:"stats"`
}
