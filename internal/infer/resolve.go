package infer

import (
	"github.com/latticelang/traitcore/internal/fold"
	"github.com/latticelang/traitcore/internal/ir"
)

// resolver deep-normalizes a value against table: every inference variable
// that is (possibly transitively, through union-find merges) bound gets
// replaced by its binding, recursively resolved in turn; a variable that is
// still unbound is left exactly as it was. Unlike querifier, resolver never
// renumbers — it exists to materialize a human/test-facing view of a goal
// after solving, not to produce a canonical key.
type resolver struct {
	table *Table
}

func (r *resolver) FoldFreeTyVar(depth, bindersCrossed int) (ir.Ty, error) {
	val := r.table.ty.probeValue(depth)
	if val.Bound {
		resolved, err := fold.Ty(r, val.Value, 0)
		if err != nil {
			return nil, err
		}
		return fold.ShiftTy(resolved, bindersCrossed), nil
	}
	return ir.TyVar{Depth: depth + bindersCrossed}, nil
}

func (r *resolver) FoldFreeLifetimeVar(depth, bindersCrossed int) (ir.Lifetime, error) {
	val := r.table.lifetime.probeValue(depth)
	if val.Bound {
		resolved, err := fold.Lifetime(r, val.Value, 0)
		if err != nil {
			return nil, err
		}
		return fold.ShiftLifetime(resolved, bindersCrossed), nil
	}
	return ir.LifetimeVar{Depth: depth + bindersCrossed}, nil
}

func (r *resolver) FoldFreeKrateVar(depth, bindersCrossed int) (ir.Krate, error) {
	val := r.table.krate.probeValue(depth)
	if val.Bound {
		resolved, err := fold.Krate(r, val.Value, 0)
		if err != nil {
			return nil, err
		}
		return fold.ShiftKrate(resolved, bindersCrossed), nil
	}
	return ir.KrateVar{Depth: depth + bindersCrossed}, nil
}

// ResolveTy deep-normalizes t against table.
func ResolveTy(table *Table, t ir.Ty) (ir.Ty, error) {
	return fold.Ty(&resolver{table: table}, t, 0)
}

// ResolveParameter deep-normalizes p against table.
func ResolveParameter(table *Table, p ir.Parameter) (ir.Parameter, error) {
	return fold.Parameter(&resolver{table: table}, p, 0)
}

// ResolveWhereClauseGoal deep-normalizes w against table.
func ResolveWhereClauseGoal(table *Table, w ir.WhereClauseGoal) (ir.WhereClauseGoal, error) {
	return fold.WhereClauseGoal(&resolver{table: table}, w, 0)
}

// ResolveGoal deep-normalizes g against table — used to materialize the
// refined goal a solve result reports once existential witnesses have been
// bound by leaf solving (spec.md section 4.6, leaf solving step 4).
func ResolveGoal(table *Table, g *ir.Goal) (*ir.Goal, error) {
	return fold.Goal(&resolver{table: table}, g, 0)
}

// ResolveLifetime deep-normalizes l against table.
func ResolveLifetime(table *Table, l ir.Lifetime) (ir.Lifetime, error) {
	return fold.Lifetime(&resolver{table: table}, l, 0)
}

// ResolveConstraint deep-normalizes both sides of a deferred region
// constraint — a solution's constraints are reported against the table
// state at the end of the whole derivation, not at the point the unifier
// first recorded them.
func ResolveConstraint(table *Table, c ir.Constraint) (ir.Constraint, error) {
	a, err := ResolveLifetime(table, c.A)
	if err != nil {
		return ir.Constraint{}, err
	}
	b, err := ResolveLifetime(table, c.B)
	if err != nil {
		return ir.Constraint{}, err
	}
	return ir.Constraint{Kind: c.Kind, A: a, B: b}, nil
}
