package ecs

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// World is the top-level ECS container. It owns the id generator, the
// component registry, the resource store, and a deferred destruction queue
// flushed by the cleanup system each tick.
//
// A World is safe for concurrent use by systems that follow the guard
// discipline: never request a guard on a type the goroutine already holds,
// and never call World-level Insert/Remove/DeleteEntity for a type whose guard
// the goroutine holds (use the guard's own Insert/Remove, or
// MarkForDestruction, instead).
type World struct {
	ids       IDGenerator
	entities  *entitySet
	registry  *Registry
	resources *Resources
	watch     lockWatch
	log       *zap.Logger

	destroyMu    sync.Mutex
	destroyQueue []EntityID
}

type Option func(*World)

func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// WithIDGenerator replaces the default counter, e.g. for fixed id sequences in tests.
func WithIDGenerator(gen IDGenerator) Option {
	return func(w *World) {
		if gen != nil {
			w.ids = gen
		}
	}
}

// WithLockWarning logs a warning whenever a guard waits longer than d for its lock.
func WithLockWarning(d time.Duration) Option {
	return func(w *World) {
		w.watch.after = d
	}
}

func NewWorld(opts ...Option) *World {
	w := &World{
		ids:          NewCounter(1),
		entities:     newEntitySet(),
		log:          zap.NewNop(),
		destroyQueue: make([]EntityID, 0, 64),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.watch.log = w.log
	w.registry = newRegistry(w.log)
	w.resources = newResources(w.log)
	_ = CreateResource(w, Exit{})
	return w
}

func (w *World) Registry() *Registry   { return w.registry }
func (w *World) Resources() *Resources { return w.resources }
func (w *World) Logger() *zap.Logger   { return w.log }

func (w *World) CreateEntity() EntityID {
	id := w.ids.Generate()
	w.entities.add(id)
	return id
}

// Alive reports whether the id was created or given a component and has not
// been deleted since.
func (w *World) Alive(id EntityID) bool {
	return w.entities.has(id)
}

// Entities snapshots every live entity.
func (w *World) Entities() Query {
	return w.entities.snapshot()
}

// DeleteEntity removes the entity's value from every component store. Query
// snapshots taken earlier still list the id; lookups through them then find
// nothing. It reports whether the entity existed.
//
// Stores are cleared one at a time, so a composition over several stores that
// runs concurrently may see the entity half deleted. Delete through
// MarkForDestruction and the cleanup phase when other systems may be running.
func (w *World) DeleteEntity(id EntityID) bool {
	removed := w.registry.RemoveAll(id)
	known := w.entities.remove(id)
	if known || removed > 0 {
		w.log.Debug("entity deleted", zap.Uint64("entity", uint64(id)), zap.Int("components", removed))
		return true
	}
	return false
}

// MarkForDestruction queues an entity for end-of-tick cleanup. It takes no
// store lock, so it is safe while guards are held.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyMu.Lock()
	w.destroyQueue = append(w.destroyQueue, id)
	w.destroyMu.Unlock()
}

// PendingDestruction returns how many entities are queued.
func (w *World) PendingDestruction() int {
	w.destroyMu.Lock()
	defer w.destroyMu.Unlock()
	return len(w.destroyQueue)
}

// FlushDestroyQueue deletes all queued entities and returns how many existed.
// Called by the cleanup system at the end of each tick.
func (w *World) FlushDestroyQueue() int {
	w.destroyMu.Lock()
	queue := w.destroyQueue
	w.destroyQueue = make([]EntityID, 0, cap(queue))
	w.destroyMu.Unlock()

	n := 0
	for _, id := range queue {
		if w.DeleteEntity(id) {
			n++
		}
	}
	return n
}

// Register creates an empty store for T. Registering a type twice is an error;
// Insert registers lazily, so explicit registration is only needed to query a
// type before any entity has it.
func Register[T any](w *World) error {
	return register[T](w.registry)
}

func IsRegistered[T any](w *World) bool {
	_, ok := lookup[T](w.registry)
	return ok
}

// Insert upserts the entity's T component and returns the previous value, if any.
func Insert[T any](w *World, id EntityID, v T) (T, bool) {
	s := obtain[T](w.registry)
	w.entities.add(id)
	w.watch.lock(&s.mu, s.name)
	defer s.mu.Unlock()
	return s.set(id, v)
}

// Entry pairs an entity with a component value for InsertMany.
type Entry[T any] struct {
	Entity EntityID
	Value  T
}

// InsertMany upserts a batch under one lock acquisition and reports how many
// entries replaced an existing value.
func InsertMany[T any](w *World, entries []Entry[T]) int {
	s := obtain[T](w.registry)
	for _, e := range entries {
		w.entities.add(e.Entity)
	}
	w.watch.lock(&s.mu, s.name)
	defer s.mu.Unlock()
	replaced := 0
	for _, e := range entries {
		if _, ok := s.set(e.Entity, e.Value); ok {
			replaced++
		}
	}
	return replaced
}

// Remove deletes the entity's T component. An unregistered type or a missing
// component yields false, never an error.
func Remove[T any](w *World, id EntityID) (T, bool) {
	s, ok := lookup[T](w.registry)
	if !ok {
		var zero T
		return zero, false
	}
	w.watch.lock(&s.mu, s.name)
	defer s.mu.Unlock()
	return s.take(id)
}

func Contains[T any](w *World, id EntityID) bool {
	s, ok := lookup[T](w.registry)
	if !ok {
		return false
	}
	w.watch.rlock(&s.mu, s.name)
	defer s.mu.RUnlock()
	_, ok = s.data[id]
	return ok
}

// Get returns a copy of the entity's T component under a short read lock.
func Get[T any](w *World, id EntityID) (T, bool) {
	var zero T
	s, ok := lookup[T](w.registry)
	if !ok {
		return zero, false
	}
	w.watch.rlock(&s.mu, s.name)
	defer s.mu.RUnlock()
	c, ok := s.data[id]
	if !ok {
		return zero, false
	}
	return *c, true
}

// QueryOf snapshots the ids holding T. An unregistered type is an error since
// it usually means a system is wired to a component nothing produces.
func QueryOf[T any](w *World) (Query, error) {
	var q Query
	err := View(w, func(g *ReadGuard[T]) error {
		q = g.Query()
		return nil
	})
	return q, err
}

// Combine applies op between q and U's store under a short read lock.
func Combine[U any](w *World, q Query, op Op) (Query, error) {
	var out Query
	err := View(w, func(g *ReadGuard[U]) error {
		out = g.Combine(q, op)
		return nil
	})
	return out, err
}

// With keeps ids of q that have U.
func With[U any](w *World, q Query) (Query, error) { return Combine[U](w, q, OpAnd) }

// Without keeps ids of q that lack U.
func Without[U any](w *World, q Query) (Query, error) { return Combine[U](w, q, OpAndNot) }
