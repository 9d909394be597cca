// Package svccontext provides the service container and the immutable
// Context value every pool and component shares a clone of.
package svccontext

import (
	"fmt"
	"sync"
)

// Factory lazily builds a service the first time it is requested.
type Factory func(c *Container) (interface{}, error)

// Container resolves named services by type tag. Registration is
// write-serialized; lookup of an already-resolved singleton takes no
// lock beyond the initial RLock, per the read-lock-free-after-init
// policy.
type Container struct {
	mu        sync.RWMutex
	services  map[string]interface{}
	factories map[string]Factory
}

// New creates an empty Container.
func New() *Container {
	return &Container{
		services:  make(map[string]interface{}),
		factories: make(map[string]Factory),
	}
}

// Register binds name to an already-constructed singleton.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterFactory binds name to a lazy constructor, invoked at most
// once on first Get.
func (c *Container) RegisterFactory(name string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

// Get resolves name, invoking and caching its factory if needed.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	if service, ok := c.services[name]; ok {
		c.mu.RUnlock()
		return service, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if service, ok := c.services[name]; ok {
		return service, nil
	}

	factory, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("svccontext: service not registered: %s", name)
	}

	service, err := factory(c)
	if err != nil {
		return nil, fmt.Errorf("svccontext: factory for %s failed: %w", name, err)
	}
	c.services[name] = service
	return service, nil
}

// MustGet resolves name or panics; reserved for startup wiring where a
// missing dependency is a programming error, not a runtime condition.
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// Has reports whether name has either a resolved instance or a
// registered factory.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, hasService := c.services[name]
	_, hasFactory := c.factories[name]
	return hasService || hasFactory
}

// Clear removes every registered service and factory, primarily for
// test isolation between cases that share the global container.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services = make(map[string]interface{})
	c.factories = make(map[string]Factory)
}

var global = New()

// Global returns the process-wide Container used by
// Context.FromGlobalContainer.
func Global() *Container { return global }
