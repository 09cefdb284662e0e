package handler

import (
	"sort"
	"sync"
	"time"
)

// Stats are the running counters for one trigger type. ErrorCount tracks
// consecutive failures and resets on success, so a recovered handler reports
// healthy again.
type Stats struct {
	TotalProcessed int64         `json:"total_processed"`
	Successful     int64         `json:"successful"`
	Failed         int64         `json:"failed"`
	AvgDuration    time.Duration `json:"avg_duration"`
	LastProcessed  time.Time     `json:"last_processed"`
	ErrorCount     int64         `json:"error_count"`
}

// Healthy classifies the handler: fewer than five consecutive errors and
// more successes than failures. A handler with no traffic yet is healthy.
func (s Stats) Healthy() bool {
	if s.TotalProcessed == 0 {
		return true
	}
	return s.ErrorCount < 5 && s.Successful > s.Failed
}

// StatsStore keeps per-trigger-type counters. Increments are atomic with
// respect to each other: concurrent updates are never lost.
type StatsStore struct {
	mu     sync.Mutex
	byType map[string]*Stats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{byType: map[string]*Stats{}}
}

// Record updates the counters for one processing attempt.
func (st *StatsStore) Record(triggerType string, success bool, elapsed time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byType[triggerType]
	if !ok {
		s = &Stats{}
		st.byType[triggerType] = s
	}
	s.TotalProcessed++
	if success {
		s.Successful++
		s.ErrorCount = 0
	} else {
		s.Failed++
		s.ErrorCount++
	}
	// rolling mean over all attempts
	s.AvgDuration += (elapsed - s.AvgDuration) / time.Duration(s.TotalProcessed)
	s.LastProcessed = time.Now()
}

// Get returns a copy of the counters for one trigger type.
func (st *StatsStore) Get(triggerType string) (Stats, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byType[triggerType]
	if !ok {
		return Stats{}, false
	}
	return *s, true
}

// All returns a copy of every counter set.
func (st *StatsStore) All() map[string]Stats {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[string]Stats, len(st.byType))
	for k, v := range st.byType {
		out[k] = *v
	}
	return out
}

// Types lists trigger types with recorded stats, sorted.
func (st *StatsStore) Types() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]string, 0, len(st.byType))
	for t := range st.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
