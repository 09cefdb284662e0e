package handler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsStore(t *testing.T) {
	t.Run("Should accumulate totals and rolling average", func(t *testing.T) {
		st := NewStatsStore()
		st.Record("skills_gap", true, 100*time.Millisecond)
		st.Record("skills_gap", true, 300*time.Millisecond)
		s, ok := st.Get("skills_gap")
		require.True(t, ok)
		assert.Equal(t, int64(2), s.TotalProcessed)
		assert.Equal(t, int64(2), s.Successful)
		assert.Equal(t, 200*time.Millisecond, s.AvgDuration)
	})
	t.Run("Should reset consecutive errors on success", func(t *testing.T) {
		st := NewStatsStore()
		for range 4 {
			st.Record("goal_overdue", false, time.Millisecond)
		}
		s, _ := st.Get("goal_overdue")
		assert.Equal(t, int64(4), s.ErrorCount)
		st.Record("goal_overdue", true, time.Millisecond)
		s, _ = st.Get("goal_overdue")
		assert.Zero(t, s.ErrorCount)
		assert.Equal(t, int64(4), s.Failed)
	})
	t.Run("Should report missing types", func(t *testing.T) {
		_, ok := NewStatsStore().Get("never_seen")
		assert.False(t, ok)
	})
	t.Run("Should survive concurrent recording", func(t *testing.T) {
		st := NewStatsStore()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(success bool) {
				defer wg.Done()
				st.Record("course_completion", success, time.Millisecond)
			}(i%2 == 0)
		}
		wg.Wait()
		s, _ := st.Get("course_completion")
		assert.Equal(t, int64(50), s.TotalProcessed)
		assert.Equal(t, s.TotalProcessed, s.Successful+s.Failed)
	})
}

func TestStatsHealthy(t *testing.T) {
	t.Run("Should be healthy with no traffic", func(t *testing.T) {
		assert.True(t, Stats{}.Healthy())
	})
	t.Run("Should be healthy while successes dominate", func(t *testing.T) {
		assert.True(t, Stats{TotalProcessed: 10, Successful: 8, Failed: 2, ErrorCount: 1}.Healthy())
	})
	t.Run("Should be unhealthy after five consecutive errors", func(t *testing.T) {
		assert.False(t, Stats{TotalProcessed: 20, Successful: 15, Failed: 5, ErrorCount: 5}.Healthy())
	})
	t.Run("Should be unhealthy when failures dominate", func(t *testing.T) {
		assert.False(t, Stats{TotalProcessed: 10, Successful: 4, Failed: 6}.Healthy())
	})
}
