package ecs

import (
	"fmt"
	"iter"
)

// ReadGuard holds shared access to one component store. Any number of read
// guards on a type may coexist; they exclude writers until released. A guard
// must be released exactly once by its holder, and a goroutine must not
// request a write guard on a type while holding any guard on it.
type ReadGuard[T any] struct {
	composer
	s        *store[T]
	w        *World
	released bool
}

// Read blocks until shared access to T's store is available.
func Read[T any](w *World) (*ReadGuard[T], error) {
	s, ok := lookup[T](w.registry)
	if !ok {
		return nil, ComponentTypeError{Type: typeOf[T]().String(), Err: ErrComponentNotRegistered}
	}
	w.watch.rlock(&s.mu, s.name)
	g := &ReadGuard[T]{s: s, w: w}
	g.composer = composer{p: g}
	return g, nil
}

func (g *ReadGuard[T]) live() *store[T] {
	if g.released {
		panic(fmt.Sprintf("ecs: read guard on %s used after release", g.s.name))
	}
	return g.s
}

// Get returns a copy of the entity's component.
func (g *ReadGuard[T]) Get(id EntityID) (T, bool) {
	c, ok := g.live().data[id]
	if !ok {
		var zero T
		return zero, false
	}
	return *c, true
}

func (g *ReadGuard[T]) Contains(id EntityID) bool {
	_, ok := g.live().data[id]
	return ok
}

func (g *ReadGuard[T]) Len() int { return len(g.live().data) }

// Query snapshots the ids currently holding T.
func (g *ReadGuard[T]) Query() Query { return g.live().keys() }

// All iterates entity/value pairs. Values are copies.
func (g *ReadGuard[T]) All() iter.Seq2[EntityID, T] {
	s := g.live()
	return func(yield func(EntityID, T) bool) {
		for id, c := range s.data {
			if !yield(id, *c) {
				return
			}
		}
	}
}

func (g *ReadGuard[T]) universe() Query { return g.w.entities.snapshot() }

// Release gives up the lock. Calling it again is a no-op.
func (g *ReadGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.s.mu.RUnlock()
}

// WriteGuard holds exclusive access to one component store. Pointers handed
// out by GetMut, GetMany and All are valid only until Release.
type WriteGuard[T any] struct {
	composer
	s        *store[T]
	w        *World
	released bool
}

// Write blocks until exclusive access to T's store is available.
func Write[T any](w *World) (*WriteGuard[T], error) {
	s, ok := lookup[T](w.registry)
	if !ok {
		return nil, ComponentTypeError{Type: typeOf[T]().String(), Err: ErrComponentNotRegistered}
	}
	w.watch.lock(&s.mu, s.name)
	g := &WriteGuard[T]{s: s, w: w}
	g.composer = composer{p: g}
	return g, nil
}

func (g *WriteGuard[T]) live() *store[T] {
	if g.released {
		panic(fmt.Sprintf("ecs: write guard on %s used after release", g.s.name))
	}
	return g.s
}

// Get returns a copy of the entity's component.
func (g *WriteGuard[T]) Get(id EntityID) (T, bool) {
	c, ok := g.live().data[id]
	if !ok {
		var zero T
		return zero, false
	}
	return *c, true
}

// GetMut returns a pointer into the store.
func (g *WriteGuard[T]) GetMut(id EntityID) (*T, bool) {
	c, ok := g.live().data[id]
	return c, ok
}

// GetMany returns one pointer per id, in request order. Every id must be
// present and the ids must be pairwise distinct; otherwise nothing is returned.
func (g *WriteGuard[T]) GetMany(ids ...EntityID) ([]*T, error) {
	s := g.live()
	seen := make(map[EntityID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, DuplicateEntityError{Entity: id, Type: s.name}
		}
		seen[id] = struct{}{}
	}
	out := make([]*T, len(ids))
	for i, id := range ids {
		c, ok := s.data[id]
		if !ok {
			return nil, MissingComponentError{Entity: id, Type: s.name}
		}
		out[i] = c
	}
	return out, nil
}

// GetPair is GetMany for exactly two entities, without its allocations.
func (g *WriteGuard[T]) GetPair(a, b EntityID) (*T, *T, error) {
	s := g.live()
	if a == b {
		return nil, nil, DuplicateEntityError{Entity: a, Type: s.name}
	}
	pa, ok := s.data[a]
	if !ok {
		return nil, nil, MissingComponentError{Entity: a, Type: s.name}
	}
	pb, ok := s.data[b]
	if !ok {
		return nil, nil, MissingComponentError{Entity: b, Type: s.name}
	}
	return pa, pb, nil
}

// Insert upserts through the held lock and returns any previous value.
func (g *WriteGuard[T]) Insert(id EntityID, v T) (T, bool) {
	s := g.live()
	g.w.entities.add(id)
	return s.set(id, v)
}

// Remove deletes the entity's component through the held lock.
func (g *WriteGuard[T]) Remove(id EntityID) (T, bool) {
	return g.live().take(id)
}

// Clear drops every component of this type and reports how many were held.
func (g *WriteGuard[T]) Clear() int {
	s := g.live()
	n := len(s.data)
	clear(s.data)
	return n
}

func (g *WriteGuard[T]) Contains(id EntityID) bool {
	_, ok := g.live().data[id]
	return ok
}

func (g *WriteGuard[T]) Len() int { return len(g.live().data) }

// Query snapshots the ids currently holding T.
func (g *WriteGuard[T]) Query() Query { return g.live().keys() }

// All iterates entity/pointer pairs. Inserting or removing during iteration is
// not allowed; mutating through the pointers is.
func (g *WriteGuard[T]) All() iter.Seq2[EntityID, *T] {
	s := g.live()
	return func(yield func(EntityID, *T) bool) {
		for id, c := range s.data {
			if !yield(id, c) {
				return
			}
		}
	}
}

func (g *WriteGuard[T]) universe() Query { return g.w.entities.snapshot() }

// Release gives up the lock. Calling it again is a no-op.
func (g *WriteGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.s.mu.Unlock()
}

// View runs fn under a read guard on T. The guard is released on every exit
// path, including a panic inside fn.
func View[T any](w *World, fn func(*ReadGuard[T]) error) error {
	g, err := Read[T](w)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g)
}

// Update runs fn under a write guard on T. The guard is released on every exit
// path, including a panic inside fn.
func Update[T any](w *World, fn func(*WriteGuard[T]) error) error {
	g, err := Write[T](w)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g)
}
