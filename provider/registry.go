package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry manages named provider factories and the instances built from them.
type Registry[T Provider, C any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T, C]
	instances map[string]T
}

// NewRegistry creates a new empty Registry.
func NewRegistry[T Provider, C any]() *Registry[T, C] {
	return &Registry[T, C]{
		factories: make(map[string]Factory[T, C]),
		instances: make(map[string]T),
	}
}

// RegisterFactory registers a named factory.
func (r *Registry[T, C]) RegisterFactory(name string, factory Factory[T, C]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates a provider using the named factory without caching it.
func (r *Registry[T, C]) Create(name string, cfg C) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider factory %q not registered (known: %v)", name, r.List())
	}
	return factory(cfg)
}

// Resolve returns the cached instance for name, creating it on first use.
func (r *Registry[T, C]) Resolve(name string, cfg C) (T, error) {
	if inst, ok := r.Get(name); ok {
		return inst, nil
	}
	inst, err := r.Create(name, cfg)
	if err != nil {
		return inst, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.instances[name]; ok {
		return existing, nil
	}
	r.instances[name] = inst
	return inst, nil
}

// Get returns a cached provider instance by name.
func (r *Registry[T, C]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set caches a provider instance by name.
func (r *Registry[T, C]) Set(name string, instance T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = instance
}

// List returns sorted names of all registered factories.
func (r *Registry[T, C]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Availability reports IsAvailable for every cached instance.
func (r *Registry[T, C]) Availability(ctx context.Context) map[string]bool {
	r.mu.RLock()
	instances := make(map[string]T, len(r.instances))
	for name, inst := range r.instances {
		instances[name] = inst
	}
	r.mu.RUnlock()

	out := make(map[string]bool, len(instances))
	for name, inst := range instances {
		out[name] = inst.IsAvailable(ctx)
	}
	return out
}
