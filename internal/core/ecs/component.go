package ecs

import (
	"reflect"
	"sync"
)

// erasedStore is what the registry keeps for each component type. Methods take
// the store's own lock; they serve whole-world operations such as entity
// deletion that cannot name T.
type erasedStore interface {
	typeName() string
	removeEntity(id EntityID) bool
	size() int
}

// store is the typed map for one component type. A single RWMutex guards the
// whole map; guards hold it for their lifetime.
type store[T any] struct {
	name string
	mu   sync.RWMutex
	data map[EntityID]*T
}

func newStore[T any]() *store[T] {
	return &store[T]{
		name: typeOf[T]().String(),
		data: make(map[EntityID]*T, 256),
	}
}

func (s *store[T]) typeName() string { return s.name }

func (s *store[T]) removeEntity(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return false
	}
	delete(s.data, id)
	return true
}

func (s *store[T]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// The helpers below assume the caller holds s.mu.

func (s *store[T]) set(id EntityID, v T) (T, bool) {
	prev, ok := s.data[id]
	s.data[id] = &v
	if !ok {
		var zero T
		return zero, false
	}
	return *prev, true
}

func (s *store[T]) take(id EntityID) (T, bool) {
	c, ok := s.data[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(s.data, id)
	return *c, true
}

func (s *store[T]) keys() Query {
	q := newQuery(len(s.data))
	for id := range s.data {
		q.ids[id] = struct{}{}
	}
	return q
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
