package ecs

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

type resourceCell interface {
	typeName() string
}

// resource holds the single value of one resource type behind its own lock.
// removed is set under mu once the cell leaves the store; a guard that locked
// it afterwards must look the type up again.
type resource[T any] struct {
	name    string
	mu      sync.RWMutex
	value   T
	removed bool
}

func (r *resource[T]) typeName() string { return r.name }

// Resources is the singleton store: at most one value per type, not keyed by
// entity. Resources are created explicitly, never lazily.
type Resources struct {
	mu    sync.RWMutex
	cells map[reflect.Type]resourceCell
	log   *zap.Logger
}

func newResources(log *zap.Logger) *Resources {
	return &Resources{
		cells: make(map[reflect.Type]resourceCell, 8),
		log:   log,
	}
}

// Len returns how many resources exist.
func (rs *Resources) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.cells)
}

func cellOf[T any](rs *Resources) (*resource[T], bool) {
	rs.mu.RLock()
	c, ok := rs.cells[typeOf[T]()]
	rs.mu.RUnlock()
	if !ok {
		return nil, false
	}
	typed, ok := c.(*resource[T])
	if !ok {
		panic(fmt.Sprintf("ecs: resource store holds %s under key %s", c.typeName(), typeOf[T]()))
	}
	return typed, true
}

func notFound[T any]() error {
	return ResourceError{Type: typeOf[T]().String(), Err: ErrResourceNotFound}
}

// CreateResource stores v as the resource of type T. A second resource of the
// same type is rejected.
func CreateResource[T any](w *World, v T) error {
	key := typeOf[T]()
	rs := w.resources
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if _, ok := rs.cells[key]; ok {
		return ResourceError{Type: key.String(), Err: ErrResourceExists}
	}
	rs.cells[key] = &resource[T]{name: key.String(), value: v}
	rs.log.Debug("resource created", zap.String("type", key.String()))
	return nil
}

// RemoveResource deletes the resource of type T once no guard holds it.
func RemoveResource[T any](w *World) (T, bool) {
	for {
		c, ok := cellOf[T](w.resources)
		if !ok {
			var zero T
			return zero, false
		}
		w.watch.lock(&c.mu, c.name)
		if c.removed {
			c.mu.Unlock()
			continue
		}
		rs := w.resources
		rs.mu.Lock()
		delete(rs.cells, typeOf[T]())
		c.removed = true
		rs.mu.Unlock()
		v := c.value
		c.mu.Unlock()
		rs.log.Debug("resource removed", zap.String("type", c.name))
		return v, true
	}
}

func HasResource[T any](w *World) bool {
	_, ok := cellOf[T](w.resources)
	return ok
}

// ResourceReadGuard holds shared access to one resource.
type ResourceReadGuard[T any] struct {
	c        *resource[T]
	released bool
}

// ResourceRef blocks until shared access to the resource of type T is available.
func ResourceRef[T any](w *World) (*ResourceReadGuard[T], error) {
	for {
		c, ok := cellOf[T](w.resources)
		if !ok {
			return nil, notFound[T]()
		}
		w.watch.rlock(&c.mu, c.name)
		if !c.removed {
			return &ResourceReadGuard[T]{c: c}, nil
		}
		c.mu.RUnlock()
	}
}

// Get returns a copy of the resource value.
func (g *ResourceReadGuard[T]) Get() T {
	if g.released {
		panic(fmt.Sprintf("ecs: resource guard on %s used after release", g.c.name))
	}
	return g.c.value
}

func (g *ResourceReadGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.c.mu.RUnlock()
}

// ResourceWriteGuard holds exclusive access to one resource.
type ResourceWriteGuard[T any] struct {
	c        *resource[T]
	released bool
}

// ResourceMut blocks until exclusive access to the resource of type T is
// available. A resource removed while waiting is looked up again, so the guard
// never holds a cell that has left the store.
func ResourceMut[T any](w *World) (*ResourceWriteGuard[T], error) {
	for {
		c, ok := cellOf[T](w.resources)
		if !ok {
			return nil, notFound[T]()
		}
		w.watch.lock(&c.mu, c.name)
		if !c.removed {
			return &ResourceWriteGuard[T]{c: c}, nil
		}
		c.mu.Unlock()
	}
}

// Get returns a pointer to the resource, valid until Release.
func (g *ResourceWriteGuard[T]) Get() *T {
	if g.released {
		panic(fmt.Sprintf("ecs: resource guard on %s used after release", g.c.name))
	}
	return &g.c.value
}

func (g *ResourceWriteGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.c.mu.Unlock()
}

// ViewResource runs fn with a copy of the resource under its read lock.
func ViewResource[T any](w *World, fn func(T) error) error {
	g, err := ResourceRef[T](w)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g.Get())
}

// UpdateResource runs fn with the resource under its write lock.
func UpdateResource[T any](w *World, fn func(*T) error) error {
	g, err := ResourceMut[T](w)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g.Get())
}

// Exit is the resource systems set to ask the outer run loop to stop. NewWorld
// creates it; acting on it is the scheduler's job.
type Exit struct {
	Requested bool
	Reason    string
}

// RequestExit sets the exit flag with a reason for the log.
func RequestExit(w *World, reason string) {
	err := UpdateResource(w, func(e *Exit) error {
		e.Requested = true
		e.Reason = reason
		return nil
	})
	if err != nil {
		// Exit was removed by a caller; recreate it already set.
		_ = CreateResource(w, Exit{Requested: true, Reason: reason})
	}
}

func ExitRequested(w *World) bool {
	requested := false
	_ = ViewResource(w, func(e Exit) error {
		requested = e.Requested
		return nil
	})
	return requested
}
