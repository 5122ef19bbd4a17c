package ecs

import (
	"slices"
	"testing"
)

type X struct{}
type Y struct{}

// abcWorld builds A, B, C with X on all three and Y on A and B, plus D with
// no components.
func abcWorld(t *testing.T) (w *World, a, b, c, d EntityID) {
	t.Helper()
	w = NewWorld()
	a, b, c, d = w.CreateEntity(), w.CreateEntity(), w.CreateEntity(), w.CreateEntity()
	for _, id := range []EntityID{a, b, c} {
		Insert(w, id, X{})
	}
	Insert(w, a, Y{})
	Insert(w, b, Y{})
	return w, a, b, c, d
}

func TestQueryComposition(t *testing.T) {
	w, a, b, c, _ := abcWorld(t)

	qx, err := QueryOf[X](w)
	if err != nil {
		t.Fatal(err)
	}
	qy, err := QueryOf[Y](w)
	if err != nil {
		t.Fatal(err)
	}

	withY, err := With[Y](w, qx)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := withY.IDs(), []EntityID{a, b}; !slices.Equal(got, want) {
		t.Errorf("X with Y = %v, want %v", got, want)
	}

	yWithoutX, err := Without[X](w, qy)
	if err != nil {
		t.Fatal(err)
	}
	if !yWithoutX.Empty() {
		t.Errorf("Y without X = %v, want empty", yWithoutX.IDs())
	}

	xWithoutY, err := Without[Y](w, qx)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := xWithoutY.IDs(), []EntityID{c}; !slices.Equal(got, want) {
		t.Errorf("X without Y = %v, want %v", got, want)
	}
}

func TestQueryBooleanOps(t *testing.T) {
	w, a, b, c, d := abcWorld(t)

	// Query holds {C, D}; the guarded store (Y) holds {A, B}.
	onlyC := QueryOfIDs(c, d)
	overlap := QueryOfIDs(a, c)

	tests := []struct {
		name string
		q    Query
		op   Op
		want []EntityID
	}{
		{"and overlap", overlap, OpAnd, []EntityID{a}},
		{"and not overlap", overlap, OpAndNot, []EntityID{c}},
		{"or", onlyC, OpOr, []EntityID{a, b, c, d}},
		{"xor overlap", overlap, OpXor, []EntityID{b, c}},
		{"nand overlap", overlap, OpNand, []EntityID{b, c, d}},
		{"nor overlap", overlap, OpNor, []EntityID{d}},
		{"xnor overlap", overlap, OpXnor, []EntityID{a, d}},
	}

	g, err := Read[Y](w)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Release()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Combine(tt.q, tt.op).IDs()
			if !slices.Equal(got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestGuardCombinatorsMatchCombine(t *testing.T) {
	w, a, _, c, _ := abcWorld(t)
	q := QueryOfIDs(a, c)

	g, err := Write[Y](w)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Release()

	pairs := []struct {
		op  Op
		got Query
	}{
		{OpAnd, g.With(q)},
		{OpAndNot, g.Without(q)},
		{OpOr, g.Or(q)},
		{OpXor, g.Xor(q)},
		{OpNand, g.Nand(q)},
		{OpNor, g.Nor(q)},
		{OpXnor, g.Xnor(q)},
	}
	for _, p := range pairs {
		if want := g.Combine(q, p.op); !slices.Equal(p.got.IDs(), want.IDs()) {
			t.Errorf("%s: method = %v, Combine = %v", p.op, p.got.IDs(), want.IDs())
		}
	}
}

func TestNestedQueries(t *testing.T) {
	w, _, b, _, _ := abcWorld(t)
	Insert(w, b, Health{1})

	err := View(w, func(xs *ReadGuard[X]) error {
		return View(w, func(ys *ReadGuard[Y]) error {
			return View(w, func(hs *ReadGuard[Health]) error {
				got := hs.Without(ys.With(xs.Query()))
				if got.Len() != 1 || got.Contains(b) {
					t.Errorf("X with Y without Health = %v", got.IDs())
				}
				return nil
			})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestQueryIsSnapshot(t *testing.T) {
	w, a, _, _, _ := abcWorld(t)
	q, err := QueryOf[X](w)
	if err != nil {
		t.Fatal(err)
	}
	copyOf := q

	late := w.CreateEntity()
	Insert(w, late, X{})
	Remove[X](w, a)

	if q.Contains(late) {
		t.Error("snapshot picked up a later insert")
	}
	if !q.Contains(a) {
		t.Error("snapshot lost a later removal")
	}

	first := slices.Collect(q.All())
	second := slices.Collect(q.All())
	if len(first) != 3 || len(second) != 3 {
		t.Errorf("re-iteration lengths %d, %d", len(first), len(second))
	}
	if !slices.Equal(copyOf.IDs(), q.IDs()) {
		t.Error("copy diverged")
	}
}

func TestQuerySetOps(t *testing.T) {
	l := QueryOfIDs(1, 2, 3)
	r := QueryOfIDs(3, 4)
	if got := l.Union(r).IDs(); !slices.Equal(got, []EntityID{1, 2, 3, 4}) {
		t.Errorf("union = %v", got)
	}
	if got := l.Intersect(r).IDs(); !slices.Equal(got, []EntityID{3}) {
		t.Errorf("intersect = %v", got)
	}
	if got := l.Difference(r).IDs(); !slices.Equal(got, []EntityID{1, 2}) {
		t.Errorf("difference = %v", got)
	}
	if got := l.IDs(); !slices.Equal(got, []EntityID{1, 2, 3}) {
		t.Errorf("operand mutated: %v", got)
	}
	var zero Query
	if zero.Len() != 0 || zero.Contains(1) || zero.Union(r).Len() != 2 {
		t.Error("zero Query misbehaves")
	}
}

func TestNegatedOpsKeepStaleMembers(t *testing.T) {
	w, a, b, c, d := abcWorld(t)
	q, err := QueryOf[X](w)
	if err != nil {
		t.Fatal(err)
	}
	w.DeleteEntity(c)
	const outsider EntityID = 99

	g, err := Read[Y](w)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Release()

	without, nand := g.Without(q), g.Nand(q)
	if !without.Contains(c) {
		t.Fatalf("without = %v, want deleted c kept", without.IDs())
	}
	if !without.Difference(nand).Empty() {
		t.Errorf("without %v is not a subset of nand %v", without.IDs(), nand.IDs())
	}
	if got, want := nand.IDs(), []EntityID{c, d}; !slices.Equal(got, want) {
		t.Errorf("nand = %v, want %v", got, want)
	}
	if got, want := g.Nor(q).IDs(), []EntityID{d}; !slices.Equal(got, want) {
		t.Errorf("nor = %v, want %v", got, want)
	}
	if got, want := g.Xnor(q).IDs(), []EntityID{a, b, d}; !slices.Equal(got, want) {
		t.Errorf("xnor = %v, want %v", got, want)
	}

	ext := QueryOfIDs(outsider)
	if !g.Nand(ext).Contains(outsider) || !g.Or(ext).Contains(outsider) {
		t.Error("explicit id dropped by nand or or")
	}
	if g.Nor(ext).Contains(outsider) {
		t.Error("nor kept an id that is in the query")
	}
}
