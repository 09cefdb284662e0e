package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsehr/pulse/engine/core"
)

func snapshotFixture() *Snapshot {
	prio := 10
	return &Snapshot{
		TenantID:  "t1",
		SubjectID: "e1",
		Results: map[string]DomainResult{
			"skills": {
				Domain: "skills",
				Triggers: []Declaration{
					{
						TriggerType: "skills_gap",
						ModuleType:  ModuleDevelopment,
						Data:        core.Input{"skillGaps": []any{"leadership"}},
					},
					{
						TriggerType: "headcount_alert",
						ModuleType:  "workforce_planning",
						Data:        core.Input{"team": "platform"},
					},
				},
			},
			"learning": {
				Domain: "learning",
				Triggers: []Declaration{
					{
						TriggerType:  "course_completion",
						ModuleType:   ModuleDevelopment,
						Data:         core.Input{"courseId": "c-42"},
						UrgencyLevel: "high",
						Priority:     &prio,
					},
				},
			},
		},
	}
}

func TestExtractTriggers(t *testing.T) {
	t.Run("Should extract only declarations targeting the module", func(t *testing.T) {
		got := ExtractTriggers(snapshotFixture(), ModuleDevelopment)
		require.Len(t, got, 2)
		types := []string{got[0].Type, got[1].Type}
		assert.Contains(t, types, "skills_gap")
		assert.Contains(t, types, "course_completion")
		assert.NotContains(t, types, "headcount_alert")
	})

	t.Run("Should tag payloads with the snapshot identity", func(t *testing.T) {
		got := ExtractTriggers(snapshotFixture(), ModuleDevelopment)
		for _, ex := range got {
			assert.Equal(t, "t1", ex.Payload["tenantId"])
			assert.Equal(t, "e1", ex.Payload["employeeId"])
		}
	})

	t.Run("Should carry urgency and priority overrides", func(t *testing.T) {
		got := ExtractTriggers(snapshotFixture(), ModuleDevelopment)
		var completion *ExtractedTrigger
		for i := range got {
			if got[i].Type == "course_completion" {
				completion = &got[i]
			}
		}
		require.NotNil(t, completion)
		assert.Equal(t, "high", completion.Payload["urgencyLevel"])
		assert.Equal(t, 10, completion.Payload["priority"])
	})

	t.Run("Should not mutate the declaration data", func(t *testing.T) {
		snap := snapshotFixture()
		_ = ExtractTriggers(snap, ModuleDevelopment)
		_, tagged := snap.Results["skills"].Triggers[0].Data["tenantId"]
		assert.False(t, tagged)
	})

	t.Run("Should return nil for an empty snapshot", func(t *testing.T) {
		assert.Nil(t, ExtractTriggers(nil, ModuleDevelopment))
		assert.Nil(t, ExtractTriggers(&Snapshot{TenantID: "t1", SubjectID: "e1"}, ModuleDevelopment))
	})

	t.Run("Should walk domains deterministically", func(t *testing.T) {
		first := ExtractTriggers(snapshotFixture(), ModuleDevelopment)
		second := ExtractTriggers(snapshotFixture(), ModuleDevelopment)
		assert.Equal(t, first, second)
	})
}
