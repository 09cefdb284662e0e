package workflow

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the workflow units available to the orchestrator, keyed by
// family. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byFamily map[Family]Unit
}

var ErrDuplicateFamily = fmt.Errorf("duplicate workflow family")

func NewRegistry() *Registry {
	return &Registry{byFamily: map[Family]Unit{}}
}

// Lookup resolves units by family. The orchestrator depends on this
// interface rather than the concrete registry.
type Lookup interface {
	Get(Family) (Unit, bool)
}

func (r *Registry) Add(u Unit) error {
	if u == nil {
		return fmt.Errorf("unit must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byFamily[u.Family()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFamily, u.Family())
	}
	r.byFamily[u.Family()] = u
	return nil
}

// Replace installs a unit, overwriting any existing registration.
func (r *Registry) Replace(u Unit) {
	if u == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFamily[u.Family()] = u
}

func (r *Registry) Get(f Family) (Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byFamily[f]
	return u, ok
}

func (r *Registry) Remove(f Family) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFamily, f)
}

func (r *Registry) Families() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Family, 0, len(r.byFamily))
	for f := range r.byFamily {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
