package ecs

import (
	"errors"
	"sync"
	"testing"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ Value int }

func TestInsertUpsert(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()

	if _, replaced := Insert(w, e, Health{1}); replaced {
		t.Fatal("first insert reported a previous value")
	}
	prev, replaced := Insert(w, e, Health{2})
	if !replaced || prev.Value != 1 {
		t.Fatalf("second insert = (%v, %v), want ({1}, true)", prev, replaced)
	}
	got, ok := Get[Health](w, e)
	if !ok || got.Value != 2 {
		t.Errorf("Get = (%v, %v), want ({2}, true)", got, ok)
	}
}

func TestRemoveRoundTrip(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	Insert(w, e, Position{X: 3, Y: 4})

	got, ok := Remove[Position](w, e)
	if !ok || got != (Position{X: 3, Y: 4}) {
		t.Fatalf("first remove = (%v, %v)", got, ok)
	}
	if _, ok := Remove[Position](w, e); ok {
		t.Error("second remove should find nothing")
	}
	if Contains[Position](w, e) {
		t.Error("Contains after remove")
	}
}

func TestAbsenceIsNotAnError(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()

	if _, ok := Remove[Velocity](w, e); ok {
		t.Error("remove on unregistered type returned a value")
	}
	if Contains[Velocity](w, e) {
		t.Error("contains on unregistered type")
	}
	if _, ok := Get[Velocity](w, e); ok {
		t.Error("get on unregistered type returned a value")
	}
}

func TestRegister(t *testing.T) {
	w := NewWorld()
	if IsRegistered[Position](w) {
		t.Fatal("type registered before first use")
	}
	if err := Register[Position](w); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := Register[Position](w)
	if !errors.Is(err, ErrComponentRegistered) {
		t.Fatalf("duplicate register error = %v, want ErrComponentRegistered", err)
	}
	var typeErr ComponentTypeError
	if !errors.As(err, &typeErr) || typeErr.Type != "ecs.Position" {
		t.Errorf("error detail = %#v", err)
	}

	q, err := QueryOf[Position](w)
	if err != nil {
		t.Fatalf("query registered empty type: %v", err)
	}
	if !q.Empty() {
		t.Errorf("query of empty store has %d ids", q.Len())
	}
}

func TestInsertRegistersLazily(t *testing.T) {
	w := NewWorld()
	Insert(w, w.CreateEntity(), Velocity{})
	if !IsRegistered[Velocity](w) {
		t.Fatal("insert did not register the type")
	}
	if got := w.Registry().TypeNames(); len(got) != 1 || got[0] != "ecs.Velocity" {
		t.Errorf("TypeNames = %v", got)
	}
}

func TestQueryUnregisteredIsError(t *testing.T) {
	w := NewWorld()
	if _, err := QueryOf[Health](w); !errors.Is(err, ErrComponentNotRegistered) {
		t.Errorf("QueryOf error = %v, want ErrComponentNotRegistered", err)
	}
	if _, err := Read[Health](w); !errors.Is(err, ErrComponentNotRegistered) {
		t.Errorf("Read error = %v", err)
	}
	if _, err := Write[Health](w); !errors.Is(err, ErrComponentNotRegistered) {
		t.Errorf("Write error = %v", err)
	}
	if _, err := With[Health](w, QueryOfIDs(1)); !errors.Is(err, ErrComponentNotRegistered) {
		t.Errorf("With error = %v", err)
	}
}

func TestDeleteEntity(t *testing.T) {
	w := NewWorld()
	a, b := w.CreateEntity(), w.CreateEntity()
	Insert(w, a, Position{})
	Insert(w, a, Health{5})
	Insert(w, b, Health{7})

	before, err := QueryOf[Health](w)
	if err != nil {
		t.Fatal(err)
	}

	if !w.DeleteEntity(a) {
		t.Fatal("delete of live entity reported false")
	}
	if w.DeleteEntity(a) {
		t.Error("second delete reported true")
	}
	if w.Alive(a) {
		t.Error("deleted entity still alive")
	}

	if !before.Contains(a) {
		t.Error("snapshot taken before delete lost the entity")
	}
	for id := range before.All() {
		_, ok := Get[Health](w, id)
		if id == a && ok {
			t.Error("deleted entity still has Health")
		}
		if id == b && !ok {
			t.Error("survivor lost Health")
		}
	}
	if Contains[Position](w, a) {
		t.Error("deleted entity still has Position")
	}
}

func TestDestroyQueue(t *testing.T) {
	w := NewWorld()
	a, b := w.CreateEntity(), w.CreateEntity()
	Insert(w, a, Health{0})
	Insert(w, b, Health{1})

	err := Update(w, func(g *WriteGuard[Health]) error {
		for id, h := range g.All() {
			if h.Value <= 0 {
				w.MarkForDestruction(id)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := w.PendingDestruction(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
	if got := w.FlushDestroyQueue(); got != 1 {
		t.Errorf("flushed = %d, want 1", got)
	}
	if w.Alive(a) || !w.Alive(b) {
		t.Error("wrong entity destroyed")
	}
	if got := w.FlushDestroyQueue(); got != 0 {
		t.Errorf("second flush = %d, want 0", got)
	}
}

func TestInsertMany(t *testing.T) {
	w := NewWorld()
	a, b := w.CreateEntity(), w.CreateEntity()
	Insert(w, a, Health{1})

	replaced := InsertMany(w, []Entry[Health]{{a, Health{10}}, {b, Health{20}}})
	if replaced != 1 {
		t.Errorf("replaced = %d, want 1", replaced)
	}
	if h, _ := Get[Health](w, a); h.Value != 10 {
		t.Errorf("a = %d", h.Value)
	}
	if h, _ := Get[Health](w, b); h.Value != 20 {
		t.Errorf("b = %d", h.Value)
	}
}

func TestExternalIDsJoinUniverse(t *testing.T) {
	w := NewWorld()
	gen := NewCounter(500)
	id := gen.Generate()
	Insert(w, id, Health{1})
	if !w.Alive(id) {
		t.Error("entity given a component should be known to the world")
	}
	if !w.Entities().Contains(id) {
		t.Error("Entities snapshot misses externally issued id")
	}
}

func TestConcurrentDisjointTypes(t *testing.T) {
	w := NewWorld()
	const n = 200
	ids := make([]EntityID, n)
	for i := range ids {
		ids[i] = w.CreateEntity()
		Insert(w, ids[i], Position{})
		Insert(w, ids[i], Velocity{X: 1, Y: 2})
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	mover := func() {
		defer wg.Done()
		errs <- Update(w, func(pos *WriteGuard[Position]) error {
			return View(w, func(vel *ReadGuard[Velocity]) error {
				for id, p := range pos.All() {
					v, _ := vel.Get(id)
					p.X += v.X
					p.Y += v.Y
				}
				return nil
			})
		})
	}
	reader := func() {
		defer wg.Done()
		errs <- View(w, func(vel *ReadGuard[Velocity]) error {
			if vel.Len() != n {
				t.Errorf("velocity len = %d", vel.Len())
			}
			return nil
		})
	}
	for i := 0; i < 2; i++ {
		wg.Add(2)
		go mover()
		go reader()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range ids {
		p, _ := Get[Position](w, id)
		if p != (Position{X: 2, Y: 4}) {
			t.Fatalf("entity %d position = %v, want {2 4}", id, p)
		}
	}
}
