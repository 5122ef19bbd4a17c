package ecs

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type Camera struct {
	X, Y  float64
	Scale float64
}

func TestCreateResource(t *testing.T) {
	w := NewWorld()
	if err := CreateResource(w, Camera{Scale: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := CreateResource(w, Camera{Scale: 2})
	if !errors.Is(err, ErrResourceExists) {
		t.Fatalf("duplicate create = %v, want ErrResourceExists", err)
	}

	g, err := ResourceRef[Camera](w)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Get().Scale; got != 1 {
		t.Errorf("scale = %v, want the first value", got)
	}
	g.Release()
}

func TestResourceMut(t *testing.T) {
	w := NewWorld()
	_ = CreateResource(w, Camera{Scale: 1})

	err := UpdateResource(w, func(c *Camera) error {
		c.X, c.Scale = 10, 3
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	err = ViewResource(w, func(c Camera) error {
		if c.X != 10 || c.Scale != 3 {
			t.Errorf("camera = %+v", c)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMissingResource(t *testing.T) {
	w := NewWorld()
	if HasResource[Camera](w) {
		t.Fatal("resource exists before creation")
	}
	if _, err := ResourceRef[Camera](w); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("ref err = %v", err)
	}
	if _, err := ResourceMut[Camera](w); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("mut err = %v", err)
	}
	if _, ok := RemoveResource[Camera](w); ok {
		t.Error("remove of missing resource reported true")
	}
}

func TestRemoveResource(t *testing.T) {
	w := NewWorld()
	_ = CreateResource(w, Camera{Scale: 4})
	got, ok := RemoveResource[Camera](w)
	if !ok || got.Scale != 4 {
		t.Fatalf("remove = (%+v, %v)", got, ok)
	}
	if HasResource[Camera](w) {
		t.Error("resource still present")
	}
	if err := CreateResource(w, Camera{}); err != nil {
		t.Errorf("recreate after remove: %v", err)
	}
}

func TestResourceNotEntityScoped(t *testing.T) {
	w := NewWorld()
	_ = CreateResource(w, Camera{Scale: 1})
	e := w.CreateEntity()
	Insert(w, e, Health{1})
	w.DeleteEntity(e)
	if !HasResource[Camera](w) {
		t.Error("entity deletion touched resources")
	}
}

func TestExitFlag(t *testing.T) {
	w := NewWorld()
	if ExitRequested(w) {
		t.Fatal("new world already exiting")
	}
	RequestExit(w, "done")
	if !ExitRequested(w) {
		t.Fatal("exit not observed")
	}

	RemoveResource[Exit](w)
	if ExitRequested(w) {
		t.Error("missing Exit resource should read as not requested")
	}
	RequestExit(w, "again")
	if !ExitRequested(w) {
		t.Error("RequestExit should recreate a removed Exit resource")
	}
}

type Settings struct{ N int }

func TestResourceGuardFollowsReplacement(t *testing.T) {
	w := NewWorld()
	_ = CreateResource(w, Settings{})

	held, err := ResourceMut[Settings](w)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() {
		done <- UpdateResource(w, func(s *Settings) error {
			s.N = 7
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	// Swap the resource out from under the waiting writer while its cell is locked.
	rs := w.resources
	rs.mu.Lock()
	delete(rs.cells, typeOf[Settings]())
	held.c.removed = true
	rs.mu.Unlock()
	if err := CreateResource(w, Settings{N: 1}); err != nil {
		t.Fatal(err)
	}
	held.Release()

	if err := <-done; err != nil {
		t.Fatalf("waiting writer: %v", err)
	}
	err = ViewResource(w, func(s Settings) error {
		if s.N != 7 {
			t.Errorf("N = %d, want 7 written through the live resource", s.N)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestResourceMutExclusiveAcrossRemoval(t *testing.T) {
	w := NewWorld()
	_ = CreateResource(w, Settings{})

	var (
		holders atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				switch (worker + j) % 3 {
				case 0:
					RemoveResource[Settings](w)
				case 1:
					_ = CreateResource(w, Settings{})
				default:
					g, err := ResourceMut[Settings](w)
					if err != nil {
						continue
					}
					if holders.Add(1) > 1 {
						overlap.Store(true)
					}
					g.Get().N++
					holders.Add(-1)
					g.Release()
				}
			}
		}(i)
	}
	wg.Wait()
	if overlap.Load() {
		t.Error("two write guards on one resource type were live at once")
	}
}
