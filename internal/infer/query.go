package infer

import (
	"github.com/latticelang/traitcore/internal/fold"
	"github.com/latticelang/traitcore/internal/ir"
)

// querifier canonicalizes a value: every inference variable still unbound
// is renumbered to a dense, sort-local index in order of first appearance;
// every inference variable already bound is replaced by a canonicalized
// copy of its binding, shifted to the binder depth of the site it appears
// at (spec.md section 4.4).
type querifier struct {
	table        *Table
	tyRoots      []int
	lifetimeRoots []int
	krateRoots   []int
}

func (q *querifier) addTy(root int) int       { return addRoot(&q.tyRoots, root) }
func (q *querifier) addLifetime(root int) int { return addRoot(&q.lifetimeRoots, root) }
func (q *querifier) addKrate(root int) int    { return addRoot(&q.krateRoots, root) }

func addRoot(roots *[]int, root int) int {
	for i, r := range *roots {
		if r == root {
			return i
		}
	}
	*roots = append(*roots, root)
	return len(*roots) - 1
}

func (q *querifier) FoldFreeTyVar(depth, bindersCrossed int) (ir.Ty, error) {
	val := q.table.ty.probeValue(depth)
	if val.Bound {
		canonical, err := fold.Ty(q, val.Value, 0)
		if err != nil {
			return nil, err
		}
		return fold.ShiftTy(canonical, bindersCrossed), nil
	}
	root := q.table.ty.find(depth)
	position := q.addTy(root) + bindersCrossed
	return ir.TyVar{Depth: position}, nil
}

func (q *querifier) FoldFreeLifetimeVar(depth, bindersCrossed int) (ir.Lifetime, error) {
	val := q.table.lifetime.probeValue(depth)
	if val.Bound {
		canonical, err := fold.Lifetime(q, val.Value, 0)
		if err != nil {
			return nil, err
		}
		return fold.ShiftLifetime(canonical, bindersCrossed), nil
	}
	root := q.table.lifetime.find(depth)
	position := q.addLifetime(root) + bindersCrossed
	return ir.LifetimeVar{Depth: position}, nil
}

func (q *querifier) FoldFreeKrateVar(depth, bindersCrossed int) (ir.Krate, error) {
	val := q.table.krate.probeValue(depth)
	if val.Bound {
		canonical, err := fold.Krate(q, val.Value, 0)
		if err != nil {
			return nil, err
		}
		return fold.ShiftKrate(canonical, bindersCrossed), nil
	}
	root := q.table.krate.find(depth)
	position := q.addKrate(root) + bindersCrossed
	return ir.KrateVar{Depth: position}, nil
}

// intoBinders reads the universe of each free variable discovered during
// folding, in the dense order they were first seen, one sort-block at a
// time: every ty binder, then every lifetime binder, then every krate
// binder (spec.md invariant I3).
func (q *querifier) intoBinders() []ir.UniverseParam {
	binders := make([]ir.UniverseParam, 0, len(q.tyRoots)+len(q.lifetimeRoots)+len(q.krateRoots))
	for _, root := range q.tyRoots {
		val := q.table.ty.probeValue(root)
		if val.Bound {
			panic("infer: free variable became bound during canonicalization")
		}
		binders = append(binders, ir.UniverseParam{Tag: ir.ParamTy, TyVal: val.Universe})
	}
	for _, root := range q.lifetimeRoots {
		val := q.table.lifetime.probeValue(root)
		if val.Bound {
			panic("infer: free variable became bound during canonicalization")
		}
		binders = append(binders, ir.UniverseParam{Tag: ir.ParamLifetime, LifetimeVal: val.Universe})
	}
	for _, root := range q.krateRoots {
		val := q.table.krate.probeValue(root)
		if val.Bound {
			panic("infer: free variable became bound during canonicalization")
		}
		binders = append(binders, ir.UniverseParam{Tag: ir.ParamKrate, KrateVal: val.Universe})
	}
	return binders
}

// MakeQueryTy canonicalizes a type.
func MakeQueryTy(table *Table, value ir.Ty) (ir.Query[ir.Ty], error) {
	q := &querifier{table: table}
	v, err := fold.Ty(q, value, 0)
	if err != nil {
		return ir.Query[ir.Ty]{}, err
	}
	return ir.Query[ir.Ty]{Value: v, Binders: q.intoBinders()}, nil
}

// MakeQueryTraitRef canonicalizes a trait reference.
func MakeQueryTraitRef(table *Table, value ir.TraitRef) (ir.Query[ir.TraitRef], error) {
	q := &querifier{table: table}
	v, err := fold.TraitRef(q, value, 0)
	if err != nil {
		return ir.Query[ir.TraitRef]{}, err
	}
	return ir.Query[ir.TraitRef]{Value: v, Binders: q.intoBinders()}, nil
}

// MakeQueryWhereClauseGoal canonicalizes a leaf goal.
func MakeQueryWhereClauseGoal(table *Table, value ir.WhereClauseGoal) (ir.Query[ir.WhereClauseGoal], error) {
	q := &querifier{table: table}
	v, err := fold.WhereClauseGoal(q, value, 0)
	if err != nil {
		return ir.Query[ir.WhereClauseGoal]{}, err
	}
	return ir.Query[ir.WhereClauseGoal]{Value: v, Binders: q.intoBinders()}, nil
}

// MakeQueryGoal canonicalizes an arbitrary goal tree.
func MakeQueryGoal(table *Table, value *ir.Goal) (ir.Query[*ir.Goal], error) {
	q := &querifier{table: table}
	v, err := fold.Goal(q, value, 0)
	if err != nil {
		return ir.Query[*ir.Goal]{}, err
	}
	return ir.Query[*ir.Goal]{Value: v, Binders: q.intoBinders()}, nil
}

// MakeQueryInEnvironment canonicalizes a goal together with its
// environment's clause set, used by the solver before consulting or
// populating a cycle-detection/tabling cache keyed on canonical queries
// (spec.md section 4.6).
func MakeQueryInEnvironment(table *Table, env *ir.Environment, goal ir.WhereClauseGoal) (ir.Query[ir.InEnvironment[ir.WhereClauseGoal]], error) {
	q := &querifier{table: table}
	folded, err := fold.WhereClauseGoal(q, goal, 0)
	if err != nil {
		return ir.Query[ir.InEnvironment[ir.WhereClauseGoal]]{}, err
	}
	return ir.Query[ir.InEnvironment[ir.WhereClauseGoal]]{
		Value:   ir.NewInEnvironment(env, folded),
		Binders: q.intoBinders(),
	}, nil
}
