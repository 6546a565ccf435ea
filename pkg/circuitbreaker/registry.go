package circuitbreaker

import (
	"fmt"
	"slices"
)

// Registry owns exactly one breaker per name. It is built once and only
// breaker state changes afterwards, so lookups need no locking.
type Registry[T any] struct {
	breakers map[string]*CircuitBreaker[T]
	names    []string
}

type RegistryOption func(*registryOptions)

type registryOptions struct {
	overrides map[string]func(*Config)
}

// WithOverride adjusts the configuration of a single named breaker.
func WithOverride(name string, override func(*Config)) RegistryOption {
	return func(opts *registryOptions) {
		opts.overrides[name] = override
	}
}

// NewRegistry builds one breaker per distinct name from the base configuration.
func NewRegistry[T any](base Config, names []string, opts ...RegistryOption) (*Registry[T], error) {
	options := &registryOptions{overrides: make(map[string]func(*Config))}
	for _, opt := range opts {
		opt(options)
	}

	registry := &Registry[T]{
		breakers: make(map[string]*CircuitBreaker[T], len(names)),
		names:    make([]string, 0, len(names)),
	}

	for _, name := range names {
		if name == "" {
			return nil, ErrEmptyName
		}

		if _, exists := registry.breakers[name]; exists {
			continue
		}

		cfg := base
		cfg.Name = name

		if override, ok := options.overrides[name]; ok {
			override(&cfg)
		}

		registry.breakers[name] = New[T](cfg)
		registry.names = append(registry.names, name)
	}

	for name := range options.overrides {
		if _, ok := registry.breakers[name]; !ok {
			return nil, fmt.Errorf("override for %q: %w", name, ErrUnknownBreaker)
		}
	}

	slices.Sort(registry.names)

	return registry, nil
}

// Get returns the breaker registered under name. A disabled breaker is
// reported as present with a nil value.
func (r *Registry[T]) Get(name string) (*CircuitBreaker[T], bool) {
	cb, ok := r.breakers[name]

	return cb, ok
}

// Execute runs fn through the breaker registered under name.
func (r *Registry[T]) Execute(name string, fn func() (T, error)) (T, error) {
	cb, ok := r.breakers[name]
	if !ok {
		var zero T

		return zero, fmt.Errorf("%q: %w", name, ErrUnknownBreaker)
	}

	return Execute(cb, fn)
}

// Names returns the registered breaker names in lexical order.
func (r *Registry[T]) Names() []string {
	return slices.Clone(r.names)
}

// Snapshots returns a snapshot of every breaker in lexical order.
func (r *Registry[T]) Snapshots() []Snapshot {
	snapshots := make([]Snapshot, 0, len(r.names))

	for _, name := range r.names {
		snapshot := r.breakers[name].Snapshot()
		snapshot.Name = name
		snapshots = append(snapshots, snapshot)
	}

	return snapshots
}
