package resource

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds all registered resources, indexed by resource name and
// by model identifier. Registration happens once at startup; lookups are
// request-path reads.
type Registry struct {
	byName  map[string]Resource
	byModel map[string]Resource
	mu      sync.RWMutex
}

// NewRegistry creates an empty resource registry
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Resource),
		byModel: make(map[string]Resource),
	}
}

// Register adds a resource, rejecting duplicate names or model identifiers
func (r *Registry) Register(res Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Name() == "" {
		return fmt.Errorf("resource name must not be empty")
	}
	if _, exists := r.byName[res.Name()]; exists {
		return fmt.Errorf("resource %s is already registered", res.Name())
	}
	if other, exists := r.byModel[res.Model()]; exists {
		return fmt.Errorf("model %s is already registered by resource %s", res.Model(), other.Name())
	}

	r.byName[res.Name()] = res
	r.byModel[res.Model()] = res
	return nil
}

// MustRegister registers resources and panics on conflict, for use in
// startup wiring.
func (r *Registry) MustRegister(resources ...Resource) {
	for _, res := range resources {
		if err := r.Register(res); err != nil {
			panic(err)
		}
	}
}

// Get retrieves a resource by name
func (r *Registry) Get(name string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, exists := r.byName[name]
	return res, exists
}

// ForModel retrieves the resource registered for a model identifier.
// This is the lookup polymorphic relations use to resolve type columns.
func (r *Registry) ForModel(model string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, exists := r.byModel[model]
	return res, exists
}

// Names returns the registered resource names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the registered resources keyed by name
func (r *Registry) All() map[string]Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Resource, len(r.byName))
	for name, res := range r.byName {
		out[name] = res
	}
	return out
}
