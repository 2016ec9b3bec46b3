package fold

import "github.com/latticelang/traitcore/internal/ir"

// Substituter replaces Var(0)..Var(N-1), N = len(Values), with the
// parallel Values slice, shifting each replacement by bindersCrossed
// before splicing it in so that any variables free inside a replacement
// value remain correctly scoped once placed under the binders the
// substitution site sits beneath. A free variable at or beyond N is one
// that was already free with respect to the binder being instantiated;
// it is preserved, shifted down by N to account for the N binders this
// substitution removes.
type Substituter struct {
	Values []ir.Parameter
}

func (s Substituter) FoldFreeTyVar(depth, bindersCrossed int) (ir.Ty, error) {
	n := len(s.Values)
	if depth < n {
		p := s.Values[depth]
		if p.Tag != ir.ParamTy {
			panic("fold.Substituter: type variable position substituted with non-type value")
		}
		return ShiftTy(p.TyVal, bindersCrossed), nil
	}
	return ir.TyVar{Depth: bindersCrossed + depth - n}, nil
}

func (s Substituter) FoldFreeLifetimeVar(depth, bindersCrossed int) (ir.Lifetime, error) {
	n := len(s.Values)
	if depth < n {
		p := s.Values[depth]
		if p.Tag != ir.ParamLifetime {
			panic("fold.Substituter: lifetime variable position substituted with non-lifetime value")
		}
		return ShiftLifetime(p.LifetimeVal, bindersCrossed), nil
	}
	return ir.LifetimeVar{Depth: bindersCrossed + depth - n}, nil
}

func (s Substituter) FoldFreeKrateVar(depth, bindersCrossed int) (ir.Krate, error) {
	n := len(s.Values)
	if depth < n {
		p := s.Values[depth]
		if p.Tag != ir.ParamKrate {
			panic("fold.Substituter: krate variable position substituted with non-krate value")
		}
		return ShiftKrate(p.KrateVal, bindersCrossed), nil
	}
	return ir.KrateVar{Depth: bindersCrossed + depth - n}, nil
}

// SubstTy applies values to t, instantiating a ty binder's body.
func SubstTy(t ir.Ty, values []ir.Parameter) (ir.Ty, error) {
	return Ty(Substituter{Values: values}, t, 0)
}

// SubstGoal applies values to g, instantiating a Quantified binder's body
// (the quantifier's own n fresh parameters supply values).
func SubstGoal(g *ir.Goal, values []ir.Parameter) (*ir.Goal, error) {
	return Goal(Substituter{Values: values}, g, 0)
}

// SubstProgramClauseImplication instantiates a clause's Binders with a
// concrete parameter list, used once a clause has been selected as a
// candidate match and its universally quantified parameters replaced by
// fresh inference variables (spec.md section 4.6).
func SubstProgramClauseImplication(p ir.ProgramClauseImplication, values []ir.Parameter) (ir.ProgramClauseImplication, error) {
	return ProgramClauseImplication(Substituter{Values: values}, p, 0)
}

// SubstTraitRef applies values to r.
func SubstTraitRef(r ir.TraitRef, values []ir.Parameter) (ir.TraitRef, error) {
	return TraitRef(Substituter{Values: values}, r, 0)
}

// SubstNormalize applies values to n.
func SubstNormalize(n ir.Normalize, values []ir.Parameter) (ir.Normalize, error) {
	return Normalize(Substituter{Values: values}, n, 0)
}

// SubstWhereClauseGoal applies values to w.
func SubstWhereClauseGoal(w ir.WhereClauseGoal, values []ir.Parameter) (ir.WhereClauseGoal, error) {
	return WhereClauseGoal(Substituter{Values: values}, w, 0)
}

// SubstWhereClause applies values to w, instantiating a declared clause's
// universally quantified parameters — the substitution elaboration
// performs when expanding a trait's implied where-clauses against a
// concrete TraitRef (spec.md section 4.5).
func SubstWhereClause(w ir.WhereClause, values []ir.Parameter) (ir.WhereClause, error) {
	return WhereClause(Substituter{Values: values}, w, 0)
}

// SubstParameters shifts-and-substitutes every parameter in ps against
// values, used when elaborating nested projections whose own parameter
// list must itself be rewritten in terms of an outer substitution.
func SubstParameters(ps []ir.Parameter, values []ir.Parameter) ([]ir.Parameter, error) {
	return Parameters(Substituter{Values: values}, ps, 0)
}
