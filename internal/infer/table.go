// Package infer implements the inference table, unifier, and query
// canonicalizer (spec.md sections 4.2 through 4.4): three independent
// union-find stores keyed by sort, transactional snapshot/commit/rollback,
// and the structural unification and canonicalization algorithms built on
// top of internal/fold.
package infer

import "github.com/latticelang/traitcore/internal/ir"

// InferenceValue is either Unbound (carrying the universe the variable was
// created in) or Bound (carrying the term it was unified to). Mirrors the
// teacher's `typesystem` error-struct-per-case texture in spirit, but the
// Rust original this is grounded on (`ena`-style `InferenceValue::{Unbound,
// Bound}`) is an enum; Go renders it the same way ir.ParameterKind renders
// a payload-bearing sum, a tagged struct.
type InferenceValue[V any] struct {
	Bound    bool
	Value    V
	Universe ir.UniverseIndex
}

func unbound[V any](universe ir.UniverseIndex) InferenceValue[V] {
	return InferenceValue[V]{Universe: universe}
}

func bound[V any](value V) InferenceValue[V] {
	return InferenceValue[V]{Bound: true, Value: value}
}

// unionFindSnapshot is a point-in-time copy of a unionFind's backing
// slices, sized to its length at the moment of the snapshot call. Rollback
// restores exactly these slices; any variables allocated after the
// snapshot are discarded along with whatever union/bind operations ran on
// existing ones.
type unionFindSnapshot[V any] struct {
	length int
	parent []int
	rank   []int
	values []InferenceValue[V]
}

// unionFind is a union-find store over variables of one sort, each
// carrying a universe when unbound and a value when bound.
type unionFind[V any] struct {
	parent []int
	rank   []int
	values []InferenceValue[V]
}

func newUnionFind[V any]() *unionFind[V] {
	return &unionFind[V]{}
}

func (u *unionFind[V]) newVariable(universe ir.UniverseIndex) int {
	idx := len(u.parent)
	u.parent = append(u.parent, idx)
	u.rank = append(u.rank, 0)
	u.values = append(u.values, unbound[V](universe))
	return idx
}

// find returns the root of v's union-find set, compressing the path.
func (u *unionFind[V]) find(v int) int {
	root := v
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[v] != root {
		next := u.parent[v]
		u.parent[v] = root
		v = next
	}
	return root
}

func (u *unionFind[V]) unioned(a, b int) bool { return u.find(a) == u.find(b) }

// probeValue returns the value stored at v's set, following union-find
// roots first — so a variable that has been merged with an already-bound
// variable reports that binding.
func (u *unionFind[V]) probeValue(v int) InferenceValue[V] {
	return u.values[u.find(v)]
}

// unifyVarVar merges a and b's sets, keeping the minimum of their
// universes (a variable visible from the shallower universe is visible
// from both, so the merged variable must be creatable there too). Both
// sides must be unbound; merging a variable already bound to a concrete
// value is a caller error; callers normalize-shallow first precisely to
// rule this out.
func (u *unionFind[V]) unifyVarVar(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	va, vb := u.values[ra], u.values[rb]
	if va.Bound || vb.Bound {
		panic("infer: unifyVarVar invoked on a bound variable")
	}
	minUniverse := va.Universe
	if vb.Universe.Counter < minUniverse.Counter {
		minUniverse = vb.Universe
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
	u.values[ra] = unbound[V](minUniverse)
}

// unifyVarValue binds v's set to val. v must currently be unbound.
func (u *unionFind[V]) unifyVarValue(v int, val InferenceValue[V]) {
	root := u.find(v)
	if u.values[root].Bound {
		panic("infer: unifyVarValue invoked on a bound variable")
	}
	u.values[root] = val
}

func (u *unionFind[V]) snapshot() unionFindSnapshot[V] {
	n := len(u.parent)
	return unionFindSnapshot[V]{
		length: n,
		parent: append([]int(nil), u.parent[:n]...),
		rank:   append([]int(nil), u.rank[:n]...),
		values: append([]InferenceValue[V](nil), u.values[:n]...),
	}
}

func (u *unionFind[V]) rollbackTo(s unionFindSnapshot[V]) {
	u.parent = append(u.parent[:0], s.parent...)
	u.rank = append(u.rank[:0], s.rank...)
	u.values = append(u.values[:0], s.values...)
}

// Table is the inference table: three independent union-find stores, one
// per sort, plus a LIFO snapshot stack enforcing properly nested
// transactions (spec.md section 4.2, invariant on Commit/RollbackTo
// nesting).
type Table struct {
	ty       *unionFind[ir.Ty]
	lifetime *unionFind[ir.Lifetime]
	krate    *unionFind[ir.Krate]
	stack    []int
	nextID   int
}

func NewTable() *Table {
	return &Table{
		ty:       newUnionFind[ir.Ty](),
		lifetime: newUnionFind[ir.Lifetime](),
		krate:    newUnionFind[ir.Krate](),
	}
}

func (t *Table) NewTyVariable(universe ir.UniverseIndex) ir.TyVar {
	return ir.TyVar{Depth: t.ty.newVariable(universe)}
}

func (t *Table) NewLifetimeVariable(universe ir.UniverseIndex) ir.LifetimeVar {
	return ir.LifetimeVar{Depth: t.lifetime.newVariable(universe)}
}

func (t *Table) NewKrateVariable(universe ir.UniverseIndex) ir.KrateVar {
	return ir.KrateVar{Depth: t.krate.newVariable(universe)}
}

// NormalizeShallowTy returns the bound value of ty if ty is a variable
// bound (possibly transitively, through union-find merges) to a concrete
// term, and false otherwise. It does not recurse into the returned term.
func (t *Table) NormalizeShallowTy(ty ir.Ty) (ir.Ty, bool) {
	v, ok := ty.(ir.TyVar)
	if !ok {
		return nil, false
	}
	val := t.ty.probeValue(v.Depth)
	if !val.Bound {
		return nil, false
	}
	return val.Value, true
}

func (t *Table) NormalizeShallowLifetime(l ir.Lifetime) (ir.Lifetime, bool) {
	v, ok := l.(ir.LifetimeVar)
	if !ok {
		return nil, false
	}
	val := t.lifetime.probeValue(v.Depth)
	if !val.Bound {
		return nil, false
	}
	return val.Value, true
}

func (t *Table) NormalizeShallowKrate(k ir.Krate) (ir.Krate, bool) {
	v, ok := k.(ir.KrateVar)
	if !ok {
		return nil, false
	}
	val := t.krate.probeValue(v.Depth)
	if !val.Bound {
		return nil, false
	}
	return val.Value, true
}

// Snapshot is an opaque handle returned by Table.Snapshot; it must be
// passed to exactly one of Commit or RollbackTo, and snapshots must be
// committed/rolled back in LIFO order.
type Snapshot struct {
	id       int
	ty       unionFindSnapshot[ir.Ty]
	lifetime unionFindSnapshot[ir.Lifetime]
	krate    unionFindSnapshot[ir.Krate]
}

func (t *Table) Snapshot() Snapshot {
	t.nextID++
	t.stack = append(t.stack, t.nextID)
	return Snapshot{
		id:       t.nextID,
		ty:       t.ty.snapshot(),
		lifetime: t.lifetime.snapshot(),
		krate:    t.krate.snapshot(),
	}
}

func (t *Table) assertTopOfStack(s Snapshot) {
	if len(t.stack) == 0 || t.stack[len(t.stack)-1] != s.id {
		panic("infer: Commit/RollbackTo calls are not properly nested with Snapshot")
	}
}

// Commit discards s, keeping every change made since it was taken.
func (t *Table) Commit(s Snapshot) {
	t.assertTopOfStack(s)
	t.stack = t.stack[:len(t.stack)-1]
}

// RollbackTo undoes every change made since s was taken.
func (t *Table) RollbackTo(s Snapshot) {
	t.assertTopOfStack(s)
	t.stack = t.stack[:len(t.stack)-1]
	t.ty.rollbackTo(s.ty)
	t.lifetime.rollbackTo(s.lifetime)
	t.krate.rollbackTo(s.krate)
}
