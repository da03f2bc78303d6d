package attribute

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the registered attribute definitions and field listeners
// for one deployment. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	defs      map[int64]Definition
	listeners []FieldListener
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[int64]Definition),
	}
}

// Register adds a definition. Registering a second definition with the same
// id is an error.
func (r *Registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.ID()]; exists {
		return fmt.Errorf("attribute id %d already registered", def.ID())
	}
	r.defs[def.ID()] = def
	return nil
}

// Definition looks up a definition by id.
func (r *Registry) Definition(id int64) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[id]
	return def, ok
}

// SimpleValues looks up a definition by id and reports whether it accepts
// plain string values.
func (r *Registry) SimpleValues(id int64) (SimpleValues, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[id]
	if !ok {
		return nil, false
	}
	sv, ok := def.(SimpleValues)
	return sv, ok
}

// Definitions returns all registered definitions ordered by id.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// AddListener registers a field listener. Listeners are notified in
// registration order.
func (r *Registry) AddListener(l FieldListener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, l)
}

// Listeners returns the registered listeners in registration order.
func (r *Registry) Listeners() []FieldListener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FieldListener, len(r.listeners))
	copy(out, r.listeners)
	return out
}
