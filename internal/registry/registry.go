// Package registry provides the central glue for the module-type system.
//
// The Registry stores mappings between the type names used in
// configuration (e.g. "sine") and the compiled Go descriptors that
// implement them. It is populated once during application startup; a
// duplicate registration is a programmer error and panics.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/cueflow/internal/module"
)

// Module is the interface that all built-in module packages implement to
// be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds every registered module-type descriptor for a single
// application instance.
type Registry struct {
	descriptors map[string]*module.Descriptor
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{descriptors: make(map[string]*module.Descriptor)}
}

// RegisterType registers a module-type descriptor.
func (r *Registry) RegisterType(desc *module.Descriptor) {
	if _, exists := r.descriptors[desc.Type]; exists {
		panic(fmt.Sprintf("module type '%s' already registered", desc.Type))
	}
	slog.Debug("Registering module type.", "type", desc.Type)
	r.descriptors[desc.Type] = desc
}

// Descriptor looks up a registered type.
func (r *Registry) Descriptor(name string) (*module.Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Descriptors returns the full type table for container construction.
func (r *Registry) Descriptors() map[string]*module.Descriptor {
	return r.descriptors
}
