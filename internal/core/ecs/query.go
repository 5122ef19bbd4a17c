package ecs

import (
	"iter"
	"slices"
)

// Query is a snapshot set of entity ids. It is built from a store's key set at
// one instant and is not updated afterwards. Queries are immutable: every
// operation returns a new Query, so copying a Query by value is a full clone
// and re-iterating one is always safe. Iteration order is unspecified.
type Query struct {
	ids map[EntityID]struct{}
}

func newQuery(capacity int) Query {
	return Query{ids: make(map[EntityID]struct{}, capacity)}
}

// QueryOfIDs builds a query from explicit ids.
func QueryOfIDs(ids ...EntityID) Query {
	q := newQuery(len(ids))
	for _, id := range ids {
		q.ids[id] = struct{}{}
	}
	return q
}

func (q Query) Len() int { return len(q.ids) }

func (q Query) Empty() bool { return len(q.ids) == 0 }

func (q Query) Contains(id EntityID) bool {
	_, ok := q.ids[id]
	return ok
}

// All iterates the ids in unspecified order.
func (q Query) All() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		for id := range q.ids {
			if !yield(id) {
				return
			}
		}
	}
}

// IDs returns the members sorted ascending.
func (q Query) IDs() []EntityID {
	out := make([]EntityID, 0, len(q.ids))
	for id := range q.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (q Query) filter(keep func(EntityID) bool) Query {
	out := newQuery(len(q.ids))
	for id := range q.ids {
		if keep(id) {
			out.ids[id] = struct{}{}
		}
	}
	return out
}

func (q Query) Union(other Query) Query {
	out := newQuery(len(q.ids) + len(other.ids))
	for id := range q.ids {
		out.ids[id] = struct{}{}
	}
	for id := range other.ids {
		out.ids[id] = struct{}{}
	}
	return out
}

func (q Query) Intersect(other Query) Query {
	return q.filter(other.Contains)
}

func (q Query) Difference(other Query) Query {
	return q.filter(func(id EntityID) bool { return !other.Contains(id) })
}

// Op is a boolean combination of "in the query" and "has the component".
type Op int

const (
	OpAnd    Op = iota // with
	OpAndNot           // without
	OpOr
	OpXor
	OpNand
	OpNor
	OpXnor
)

func (op Op) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpAndNot:
		return "and_not"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpNand:
		return "nand"
	case OpNor:
		return "nor"
	case OpXnor:
		return "xnor"
	}
	return "unknown"
}

// presence is a held view of one component store.
type presence interface {
	Contains(id EntityID) bool
	Query() Query
	universe() Query
}

// combine evaluates op per id. NAND, NOR and XNOR are true for entities that
// are in neither operand, so they range over every entity the world knows plus
// both operands; ids of a stale snapshot still count as members of q.
func (q Query) combine(op Op, p presence) Query {
	switch op {
	case OpAnd:
		return q.filter(p.Contains)
	case OpAndNot:
		return q.filter(func(id EntityID) bool { return !p.Contains(id) })
	case OpOr:
		return q.Union(p.Query())
	case OpXor:
		other := p.Query()
		return q.Difference(other).Union(other.Difference(q))
	}
	var keep func(t, u bool) bool
	switch op {
	case OpNand:
		keep = func(t, u bool) bool { return !(t && u) }
	case OpNor:
		keep = func(t, u bool) bool { return !t && !u }
	case OpXnor:
		keep = func(t, u bool) bool { return t == u }
	default:
		return newQuery(0)
	}
	held := p.Query()
	return p.universe().Union(q).Union(held).filter(func(id EntityID) bool {
		return keep(q.Contains(id), held.Contains(id))
	})
}

// composer gives guards the query combinators against their own store. The
// guard already holds its lock, so none of these re-lock the store.
type composer struct {
	p presence
}

// With keeps ids of q that have the guarded component.
func (c composer) With(q Query) Query { return q.combine(OpAnd, c.p) }

// Without keeps ids of q that lack the guarded component.
func (c composer) Without(q Query) Query { return q.combine(OpAndNot, c.p) }

func (c composer) Or(q Query) Query   { return q.combine(OpOr, c.p) }
func (c composer) Xor(q Query) Query  { return q.combine(OpXor, c.p) }
func (c composer) Nand(q Query) Query { return q.combine(OpNand, c.p) }
func (c composer) Nor(q Query) Query  { return q.combine(OpNor, c.p) }
func (c composer) Xnor(q Query) Query { return q.combine(OpXnor, c.p) }

// Combine applies op between q and the guarded store.
func (c composer) Combine(q Query, op Op) Query { return q.combine(op, c.p) }
