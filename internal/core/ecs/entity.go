package ecs

import (
	"sync"
	"sync/atomic"
)

// EntityID is an opaque entity handle. Ids are issued in increasing order and
// are never reused, so two equal ids always name the same logical entity.
type EntityID uint64

func (id EntityID) IsZero() bool { return id == 0 }

// IDGenerator issues entity ids. Implementations must be safe for concurrent use
// and must never return the same id twice.
type IDGenerator interface {
	Generate() EntityID
}

// Counter is the default IDGenerator, a lock-free monotonic counter.
type Counter struct {
	next atomic.Uint64
}

// NewCounter returns a Counter whose first id is first. Zero is reserved as the
// invalid id, so a first of 0 starts the sequence at 1.
func NewCounter(first uint64) *Counter {
	if first == 0 {
		first = 1
	}
	c := &Counter{}
	c.next.Store(first)
	return c
}

func (c *Counter) Generate() EntityID {
	return EntityID(c.next.Add(1) - 1)
}

// entitySet tracks every id the world knows about: ids it created and ids
// that received a component. Deleted ids leave the set for good.
type entitySet struct {
	mu    sync.RWMutex
	alive map[EntityID]struct{}
}

func newEntitySet() *entitySet {
	return &entitySet{
		alive: make(map[EntityID]struct{}, 1024),
	}
}

func (s *entitySet) add(id EntityID) {
	s.mu.Lock()
	s.alive[id] = struct{}{}
	s.mu.Unlock()
}

func (s *entitySet) remove(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alive[id]; !ok {
		return false
	}
	delete(s.alive, id)
	return true
}

func (s *entitySet) has(id EntityID) bool {
	s.mu.RLock()
	_, ok := s.alive[id]
	s.mu.RUnlock()
	return ok
}

func (s *entitySet) snapshot() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := newQuery(len(s.alive))
	for id := range s.alive {
		q.ids[id] = struct{}{}
	}
	return q
}
