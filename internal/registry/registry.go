// ============================================================================
// Task Engine - Typed Service Registry
// ============================================================================
//
// Package: internal/registry
// File: registry.go
// Purpose: Replaces reflection-based DI-container lookups with a typed,
// compile-time-checked service registry. Every task value's Execute method
// receives a *Registry instead of resolving dependencies by type-name or
// reflection; Register/Resolve are ordinary generic functions since Go
// methods cannot themselves be generic.
//
// ============================================================================

package registry

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry is a process-wide or scoped collection of typed services,
// looked up by their static Go type.
type Registry struct {
	mu       sync.RWMutex
	services map[reflect.Type]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{services: make(map[reflect.Type]any)}
}

// Register installs value under its own static type T. Registering the
// same type twice returns a plain error; it is not classified with the task
// package's ErrAlreadyRegistered.
func Register[T any](r *Registry, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := reflect.TypeOf((*T)(nil)).Elem()
	if _, exists := r.services[t]; exists {
		return fmt.Errorf("registry: service %s already registered", t)
	}
	r.services[t] = value
	return nil
}

// MustRegister is Register but panics on failure; useful at process startup
// where a duplicate registration is a programming error.
func MustRegister[T any](r *Registry, value T) {
	if err := Register(r, value); err != nil {
		panic(err)
	}
}

// Resolve looks up the service registered under T. The zero value and false
// are returned if nothing is registered for T.
func Resolve[T any](r *Registry) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := r.services[t]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustResolve is Resolve but panics if T was never registered.
func MustResolve[T any](r *Registry) T {
	v, ok := Resolve[T](r)
	if !ok {
		t := reflect.TypeOf((*T)(nil)).Elem()
		panic(fmt.Sprintf("registry: no service registered for %s", t))
	}
	return v
}
