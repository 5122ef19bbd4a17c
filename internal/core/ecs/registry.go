package ecs

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Registry maps a component type to its store. Stores are created on first
// insertion or by an explicit Register and live as long as the world.
type Registry struct {
	mu     sync.RWMutex
	stores map[reflect.Type]erasedStore
	order  []erasedStore
	log    *zap.Logger
}

func newRegistry(log *zap.Logger) *Registry {
	return &Registry{
		stores: make(map[reflect.Type]erasedStore, 16),
		order:  make([]erasedStore, 0, 16),
		log:    log,
	}
}

// Len returns the number of registered component types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// TypeNames lists registered component types in registration order.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	for i, s := range r.order {
		names[i] = s.typeName()
	}
	return names
}

// RemoveAll clears the given entity from every registered component store and
// reports how many stores held a value for it. Stores are locked one at a time.
func (r *Registry) RemoveAll(id EntityID) int {
	r.mu.RLock()
	stores := make([]erasedStore, len(r.order))
	copy(stores, r.order)
	r.mu.RUnlock()

	removed := 0
	for _, s := range stores {
		if s.removeEntity(id) {
			removed++
		}
	}
	return removed
}

// lookup returns the store for T without creating it.
func lookup[T any](r *Registry) (*store[T], bool) {
	r.mu.RLock()
	s, ok := r.stores[typeOf[T]()]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return downcast[T](s), true
}

// obtain returns the store for T, creating it if needed.
func obtain[T any](r *Registry) *store[T] {
	if s, ok := lookup[T](r); ok {
		return s
	}
	key := typeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[key]; ok {
		return downcast[T](s)
	}
	return r.add(key, newStore[T]()).(*store[T])
}

func register[T any](r *Registry) error {
	key := typeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[key]; ok {
		return ComponentTypeError{Type: key.String(), Err: ErrComponentRegistered}
	}
	r.add(key, newStore[T]())
	return nil
}

// add assumes r.mu is held for writing.
func (r *Registry) add(key reflect.Type, s erasedStore) erasedStore {
	r.stores[key] = s
	r.order = append(r.order, s)
	r.log.Debug("component type registered", zap.String("type", s.typeName()))
	return s
}

// downcast is the single point where an erased store becomes typed again. The
// map key is derived from T, so a mismatch means the registry is corrupt.
func downcast[T any](s erasedStore) *store[T] {
	typed, ok := s.(*store[T])
	if !ok {
		panic(fmt.Sprintf("ecs: registry holds %s under key %s", s.typeName(), typeOf[T]()))
	}
	return typed
}
