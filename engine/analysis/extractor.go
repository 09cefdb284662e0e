package analysis

import (
	"sort"

	"github.com/pulsehr/pulse/engine/core"
)

// ExtractedTrigger is a normalized (type, payload) pair ready for the
// trigger handler layer.
type ExtractedTrigger struct {
	Type    string
	Payload core.Input
}

// ExtractTriggers pulls every declaration targeting the given module out of
// the snapshot and tags each payload with the snapshot's tenant and subject.
// Declaration-level urgency and priority overrides are carried through the
// payload. Domains are walked in sorted order so extraction is
// deterministic.
func ExtractTriggers(s *Snapshot, module string) []ExtractedTrigger {
	if s == nil || len(s.Results) == 0 {
		return nil
	}
	domains := make([]string, 0, len(s.Results))
	for d := range s.Results {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var out []ExtractedTrigger
	for _, domain := range domains {
		result := s.Results[domain]
		for _, decl := range result.Triggers {
			if decl.ModuleType != module {
				continue
			}
			payload := core.Input{}
			for k, v := range decl.Data {
				payload[k] = v
			}
			payload["tenantId"] = s.TenantID
			payload["employeeId"] = s.SubjectID
			if decl.UrgencyLevel != "" {
				payload["urgencyLevel"] = decl.UrgencyLevel
			}
			if decl.Priority != nil {
				payload["priority"] = *decl.Priority
			}
			out = append(out, ExtractedTrigger{Type: decl.TriggerType, Payload: payload})
		}
	}
	return out
}
