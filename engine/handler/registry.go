package handler

import (
	"sort"
	"sync"
)

// Registry holds the per-trigger-type processing policies. It is seeded at
// construction and may be mutated at runtime through the administrative
// surface; mutations are not persisted, a restart reverts to the seed.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Config
}

// NewRegistry returns a registry seeded with the default policy table.
func NewRegistry() *Registry {
	return &Registry{byType: SeedConfigs()}
}

// NewRegistryWithConfigs returns a registry seeded with the provided table.
func NewRegistryWithConfigs(configs map[string]Config) *Registry {
	byType := make(map[string]Config, len(configs))
	for k, v := range configs {
		byType[k] = v
	}
	return &Registry{byType: byType}
}

func (r *Registry) Get(triggerType string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.byType[triggerType]
	return cfg, ok
}

// Update applies a partial configuration change. Unknown trigger types are
// a no-op returning false, never an error.
func (r *Registry) Update(triggerType string, p Partial) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.byType[triggerType]
	if !ok {
		return false
	}
	r.byType[triggerType] = cfg.apply(p)
	return true
}

// SetEnabled flips the enabled flag. Unknown trigger types return false.
func (r *Registry) SetEnabled(triggerType string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.byType[triggerType]
	if !ok {
		return false
	}
	cfg.Enabled = enabled
	r.byType[triggerType] = cfg
	return true
}

// Put installs or replaces the configuration for a trigger type.
func (r *Registry) Put(triggerType string, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[triggerType] = cfg
}

// SupportedTypes lists the configured trigger types in sorted order.
func (r *Registry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of the full policy table for administrative reads.
func (r *Registry) Snapshot() map[string]Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Config, len(r.byType))
	for k, v := range r.byType {
		out[k] = v
	}
	return out
}
