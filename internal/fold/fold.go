// Package fold implements the structural rewrite and equality-walk
// machinery (spec.md section 4.1) that every other component — the
// unifier, the canonicalizer, the elaborator — builds substitution and
// shifting on top of.
package fold

import "github.com/latticelang/traitcore/internal/ir"

// Folder is the four-hook structural rewrite protocol. FoldWith-family
// functions below recurse through an IR node, tracking bindersCrossed as
// the number of binders that surround the currently visited node relative
// to the call site. A Var at depth i with i >= bindersCrossed is free and
// is delegated to the matching hook, called with depth-relative-to-
// bindersCrossed (i.e. i-bindersCrossed) so hooks reason in terms of "which
// free variable" rather than raw absolute depth; anything bound locally is
// copied through unchanged.
type Folder interface {
	FoldFreeTyVar(depth, bindersCrossed int) (ir.Ty, error)
	FoldFreeLifetimeVar(depth, bindersCrossed int) (ir.Lifetime, error)
	FoldFreeKrateVar(depth, bindersCrossed int) (ir.Krate, error)
}

// Ty structurally rewrites t, delegating free type variables to folder.
func Ty(folder Folder, t ir.Ty, bindersCrossed int) (ir.Ty, error) {
	switch v := t.(type) {
	case ir.TyVar:
		if v.Depth >= bindersCrossed {
			return folder.FoldFreeTyVar(v.Depth-bindersCrossed, bindersCrossed)
		}
		return v, nil

	case ir.TyApply:
		params, err := Parameters(folder, v.Params, bindersCrossed)
		if err != nil {
			return nil, err
		}
		return ir.TyApply{Name: v.Name, Params: params}, nil

	case ir.TyProjection:
		params, err := Parameters(folder, v.Params, bindersCrossed)
		if err != nil {
			return nil, err
		}
		return ir.TyProjection{AssocId: v.AssocId, Params: params}, nil

	case ir.TyForAll:
		inner, err := Ty(folder, v.Ty, bindersCrossed+v.NumBinders)
		if err != nil {
			return nil, err
		}
		return ir.TyForAll{NumBinders: v.NumBinders, Ty: inner}, nil

	default:
		panic("fold.Ty: unknown Ty variant")
	}
}

// Lifetime structurally rewrites l, delegating free lifetime variables to
// folder. Skolemized lifetimes (ForAll) carry no variables and fold to
// themselves.
func Lifetime(folder Folder, l ir.Lifetime, bindersCrossed int) (ir.Lifetime, error) {
	switch v := l.(type) {
	case ir.LifetimeVar:
		if v.Depth >= bindersCrossed {
			return folder.FoldFreeLifetimeVar(v.Depth-bindersCrossed, bindersCrossed)
		}
		return v, nil
	case ir.LifetimeForAll:
		return v, nil
	default:
		panic("fold.Lifetime: unknown Lifetime variant")
	}
}

// Krate structurally rewrites k, delegating free krate variables to folder.
func Krate(folder Folder, k ir.Krate, bindersCrossed int) (ir.Krate, error) {
	switch v := k.(type) {
	case ir.KrateVar:
		if v.Depth >= bindersCrossed {
			return folder.FoldFreeKrateVar(v.Depth-bindersCrossed, bindersCrossed)
		}
		return v, nil
	case ir.KrateName:
		return v, nil
	default:
		panic("fold.Krate: unknown Krate variant")
	}
}

// Parameter folds whichever of Ty/Lifetime/Krate the parameter carries.
func Parameter(folder Folder, p ir.Parameter, bindersCrossed int) (ir.Parameter, error) {
	switch p.Tag {
	case ir.ParamTy:
		t, err := Ty(folder, p.TyVal, bindersCrossed)
		if err != nil {
			return ir.Parameter{}, err
		}
		return ir.TyParameter(t), nil
	case ir.ParamLifetime:
		l, err := Lifetime(folder, p.LifetimeVal, bindersCrossed)
		if err != nil {
			return ir.Parameter{}, err
		}
		return ir.LifetimeParameter(l), nil
	case ir.ParamKrate:
		k, err := Krate(folder, p.KrateVal, bindersCrossed)
		if err != nil {
			return ir.Parameter{}, err
		}
		return ir.KrateParameter(k), nil
	default:
		panic("fold.Parameter: unknown parameter tag")
	}
}

// Parameters folds a slice of parameters, preserving order and length.
// A nil slice folds to nil.
func Parameters(folder Folder, ps []ir.Parameter, bindersCrossed int) ([]ir.Parameter, error) {
	if ps == nil {
		return nil, nil
	}
	out := make([]ir.Parameter, len(ps))
	for i, p := range ps {
		folded, err := Parameter(folder, p, bindersCrossed)
		if err != nil {
			return nil, err
		}
		out[i] = folded
	}
	return out, nil
}

// TraitRef folds a trait reference's parameter list; TraitId is opaque and
// carries no variables.
func TraitRef(folder Folder, r ir.TraitRef, bindersCrossed int) (ir.TraitRef, error) {
	params, err := Parameters(folder, r.Params, bindersCrossed)
	if err != nil {
		return ir.TraitRef{}, err
	}
	return ir.TraitRef{TraitId: r.TraitId, Params: params}, nil
}

// Normalize folds a projection-normalizes-to-ty goal.
func Normalize(folder Folder, n ir.Normalize, bindersCrossed int) (ir.Normalize, error) {
	proj, err := Ty(folder, n.Projection, bindersCrossed)
	if err != nil {
		return ir.Normalize{}, err
	}
	ty, err := Ty(folder, n.Ty, bindersCrossed)
	if err != nil {
		return ir.Normalize{}, err
	}
	return ir.Normalize{Projection: proj.(ir.TyProjection), Ty: ty}, nil
}

// WhereClause folds a declarable positive clause.
func WhereClause(folder Folder, w ir.WhereClause, bindersCrossed int) (ir.WhereClause, error) {
	switch w.Tag {
	case ir.WhereClauseImplemented:
		r, err := TraitRef(folder, w.TraitRef, bindersCrossed)
		if err != nil {
			return ir.WhereClause{}, err
		}
		return ir.Implemented(r), nil
	case ir.WhereClauseNormalize:
		n, err := Normalize(folder, w.Normalize, bindersCrossed)
		if err != nil {
			return ir.WhereClause{}, err
		}
		return ir.NormalizeClause(n), nil
	default:
		panic("fold.WhereClause: unknown tag")
	}
}

// WhereClauseGoal folds a leaf goal according to its tag.
func WhereClauseGoal(folder Folder, w ir.WhereClauseGoal, bindersCrossed int) (ir.WhereClauseGoal, error) {
	out := w
	var err error
	switch w.Tag {
	case ir.GoalImplemented, ir.GoalNotTraitRef, ir.GoalWellFormedTraitRef:
		out.TraitRef, err = TraitRef(folder, w.TraitRef, bindersCrossed)
	case ir.GoalNormalize, ir.GoalNotNormalize:
		out.Normalize, err = Normalize(folder, w.Normalize, bindersCrossed)
	case ir.GoalUnifyTys, ir.GoalNotUnifyTys:
		var a, b ir.Ty
		if a, err = Ty(folder, w.UnifyTys.A, bindersCrossed); err == nil {
			b, err = Ty(folder, w.UnifyTys.B, bindersCrossed)
		}
		out.UnifyTys = ir.UnifyTys{A: a, B: b}
	case ir.GoalUnifyKrates:
		var a, b ir.Krate
		if a, err = Krate(folder, w.UnifyKrates.A, bindersCrossed); err == nil {
			b, err = Krate(folder, w.UnifyKrates.B, bindersCrossed)
		}
		out.UnifyKrates = ir.UnifyKrates{A: a, B: b}
	case ir.GoalUnifyLifetimes:
		var a, b ir.Lifetime
		if a, err = Lifetime(folder, w.UnifyLifetimes.A, bindersCrossed); err == nil {
			b, err = Lifetime(folder, w.UnifyLifetimes.B, bindersCrossed)
		}
		out.UnifyLifetimes = ir.UnifyLifetimes{A: a, B: b}
	case ir.GoalWellFormedTy:
		out.WellFormed, err = Ty(folder, w.WellFormed, bindersCrossed)
	case ir.GoalTyLocalTo:
		var t ir.Ty
		t, err = Ty(folder, w.TyLocalTo.Ty, bindersCrossed)
		out.TyLocalTo = ir.TyLocalTo{Ty: t, Krate: w.TyLocalTo.Krate}
	default:
		panic("fold.WhereClauseGoal: unknown tag")
	}
	if err != nil {
		return ir.WhereClauseGoal{}, err
	}
	return out, nil
}

// Goal structurally rewrites a Goal tree, advancing bindersCrossed by
// Quantified's binder count when descending under it. And/Implies do not
// themselves bind variables.
func Goal(folder Folder, g *ir.Goal, bindersCrossed int) (*ir.Goal, error) {
	switch g.Tag {
	case ir.GoalLeaf:
		leaf, err := WhereClauseGoal(folder, g.Leaf, bindersCrossed)
		if err != nil {
			return nil, err
		}
		return ir.LeafGoal(leaf), nil

	case ir.GoalAnd:
		left, err := Goal(folder, g.AndLeft, bindersCrossed)
		if err != nil {
			return nil, err
		}
		right, err := Goal(folder, g.AndRight, bindersCrossed)
		if err != nil {
			return nil, err
		}
		return ir.AndGoal(left, right), nil

	case ir.GoalImplies:
		clauses := make([]ir.WhereClause, len(g.ImpliesClauses))
		for i, c := range g.ImpliesClauses {
			folded, err := WhereClause(folder, c, bindersCrossed)
			if err != nil {
				return nil, err
			}
			clauses[i] = folded
		}
		inner, err := Goal(folder, g.ImpliesGoal, bindersCrossed)
		if err != nil {
			return nil, err
		}
		return ir.ImpliesGoalNode(clauses, inner), nil

	case ir.GoalQuantified:
		inner, err := Goal(folder, g.QuantBinders.Value, bindersCrossed+g.QuantBinders.Len())
		if err != nil {
			return nil, err
		}
		return ir.QuantifiedGoal(g.QuantKind, ir.NewBinders(g.QuantBinders.Kinds, inner)), nil

	default:
		panic("fold.Goal: unknown tag")
	}
}

// ProgramClauseImplication folds a clause body; Conditions and Consequence
// are at the same binder depth, both abstracted by the enclosing Binders.
func ProgramClauseImplication(folder Folder, p ir.ProgramClauseImplication, bindersCrossed int) (ir.ProgramClauseImplication, error) {
	consequence, err := WhereClauseGoal(folder, p.Consequence, bindersCrossed)
	if err != nil {
		return ir.ProgramClauseImplication{}, err
	}
	conditions := make([]*ir.Goal, len(p.Conditions))
	for i, c := range p.Conditions {
		folded, err := Goal(folder, c, bindersCrossed)
		if err != nil {
			return ir.ProgramClauseImplication{}, err
		}
		conditions[i] = folded
	}
	return ir.ProgramClauseImplication{Consequence: consequence, Conditions: conditions}, nil
}

// Binders folds the value inside a Binders[T], advancing bindersCrossed by
// the binder's own kind count before folding. foldValue is the
// type-specific fold function for T (fold.Goal, fold.ProgramClauseImplication,
// ...); Go generics can't dispatch on T's own methods without an interface
// constraint that would have to be implemented by every instantiation, so
// this takes the fold function as a parameter instead, the same way
// sort.Slice takes a less function instead of requiring a Less method.
func Binders[T any](folder Folder, b ir.Binders[T], bindersCrossed int, foldValue func(Folder, T, int) (T, error)) (ir.Binders[T], error) {
	value, err := foldValue(folder, b.Value, bindersCrossed+b.Len())
	if err != nil {
		var zero ir.Binders[T]
		return zero, err
	}
	return ir.NewBinders(b.Kinds, value), nil
}
