package event

import (
	"reflect"
	"sync"
	"time"

	"github.com/l1jgo/ecsworld/internal/core/ecs"
	coresys "github.com/l1jgo/ecsworld/internal/core/system"
)

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1. SwapBuffers() is called at tick start by DispatchSystem.
// Emit is safe from pooled systems; swap and dispatch run on one goroutine.
type Bus struct {
	mu       sync.Mutex
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	t := keyOf[T]()
	b.mu.Lock()
	b.back[t] = append(b.back[t], event)
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := keyOf[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Pending reports how many events of type T wait in the back buffer.
func Pending[T any](b *Bus) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.back[keyOf[T]()])
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
// Handlers run without the bus lock held and may Emit.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	type batch struct {
		events   []any
		handlers []func(any)
	}
	batches := make([]batch, 0, len(b.front))
	for t, events := range b.front {
		if len(events) == 0 || len(b.handlers[t]) == 0 {
			continue
		}
		batches = append(batches, batch{events: events, handlers: b.handlers[t]})
	}
	b.mu.Unlock()

	for _, bt := range batches {
		for _, ev := range bt.events {
			for _, h := range bt.handlers {
				h(ev)
			}
		}
	}
}

// DispatchSystem swaps and dispatches the bus at the start of every tick.
type DispatchSystem struct {
	bus *Bus
}

func NewDispatchSystem(bus *Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Name() string         { return "event_dispatch" }
func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *DispatchSystem) Update(_ *ecs.World, _ time.Duration) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}
