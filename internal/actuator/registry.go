package actuator

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a fresh actuator instance.
type Factory func() (Actuator, error)

// Registry maintains known actuator factories keyed by plugin type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register installs an actuator factory. Returns an error if the type
// already exists.
func (r *Registry) Register(pluginType string, factory Factory) error {
	if pluginType == "" {
		return fmt.Errorf("actuator: plugin type is required")
	}
	if factory == nil {
		return fmt.Errorf("actuator: factory is required for %s", pluginType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[pluginType]; exists {
		return fmt.Errorf("actuator: %s already registered", pluginType)
	}
	r.factories[pluginType] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(pluginType string, factory Factory) {
	if err := r.Register(pluginType, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs an actuator by plugin type.
func (r *Registry) Resolve(pluginType string) (Actuator, error) {
	r.mu.RLock()
	factory, ok := r.factories[pluginType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("actuator: unknown plugin type %s", pluginType)
	}
	act, err := factory()
	if err != nil {
		return nil, err
	}
	if err := act.Info().Validate(); err != nil {
		return nil, err
	}
	return act, nil
}

// Types returns a sorted list of registered plugin types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for pluginType := range r.factories {
		types = append(types, pluginType)
	}
	sort.Strings(types)
	return types
}
