package infer

import (
	"errors"

	"github.com/latticelang/traitcore/internal/fold"
	"github.com/latticelang/traitcore/internal/ir"
)

// UnificationResult is the successful outcome of a unification: any
// projection-normalization subgoals and ForAll-vs-ForAll/Apply subgoals
// deferred to the caller as fresh goals to solve, plus any lifetime-equality
// constraints deferred past unification time (spec.md section 4.3).
type UnificationResult struct {
	Goals       []ir.InEnvironment[ir.WhereClauseGoal]
	Constraints []ir.InEnvironment[ir.Constraint]
}

// unifier drives one unification attempt: a snapshot taken at construction
// is committed on success and rolled back on any error, so a failed
// unification never leaves partial bindings behind (spec.md section 4.3,
// "unification is all-or-nothing").
type unifier struct {
	table       *Table
	environment *ir.Environment
	goals       []ir.InEnvironment[ir.WhereClauseGoal]
	constraints []ir.InEnvironment[ir.Constraint]
}

func runUnification(table *Table, env *ir.Environment, run func(*unifier) error) (*UnificationResult, error) {
	snap := table.Snapshot()
	u := &unifier{table: table, environment: env}
	if err := run(u); err != nil {
		table.RollbackTo(snap)
		var noMatch *fold.NoMatchError
		if errors.As(err, &noMatch) {
			err = &ir.UnificationMismatchError{A: noMatch.A, B: noMatch.B, Reason: "structural mismatch"}
		}
		return nil, err
	}
	table.Commit(snap)
	return &UnificationResult{Goals: u.goals, Constraints: u.constraints}, nil
}

// UnifyTys attempts to unify two types under env, in table.
func UnifyTys(table *Table, env *ir.Environment, a, b ir.Ty) (*UnificationResult, error) {
	return runUnification(table, env, func(u *unifier) error { return u.unifyTyTy(a, b) })
}

// UnifyLifetimes attempts to unify two lifetimes under env, in table.
func UnifyLifetimes(table *Table, env *ir.Environment, a, b ir.Lifetime) (*UnificationResult, error) {
	return runUnification(table, env, func(u *unifier) error { return u.unifyLifetimeLifetime(a, b) })
}

// UnifyKrates attempts to unify two crate references under env, in table.
func UnifyKrates(table *Table, env *ir.Environment, a, b ir.Krate) (*UnificationResult, error) {
	return runUnification(table, env, func(u *unifier) error { return u.unifyKrateKrate(a, b) })
}

// UnifyParameters attempts to unify two parameters of matching kind.
func UnifyParameters(table *Table, env *ir.Environment, a, b ir.Parameter) (*UnificationResult, error) {
	return runUnification(table, env, func(u *unifier) error { return fold.ZipParameter(u, a, b) })
}

// UnifyTraitRefs attempts to unify two trait references, used by leaf
// solving to match a goal's head against a candidate clause's consequence.
func UnifyTraitRefs(table *Table, env *ir.Environment, a, b ir.TraitRef) (*UnificationResult, error) {
	return runUnification(table, env, func(u *unifier) error { return fold.ZipTraitRef(u, a, b) })
}

// unifier implements fold.Zipper by routing every leaf comparison back
// through its own unify_ty_ty/unify_lifetime_lifetime/unify_krate_krate, so
// fold.ZipApplication/ZipTraitRef/ZipParameters can drive structural
// unification of compound terms without knowing unification exists.
func (u *unifier) ZipTys(a, b ir.Ty) error             { return u.unifyTyTy(a, b) }
func (u *unifier) ZipLifetimes(a, b ir.Lifetime) error { return u.unifyLifetimeLifetime(a, b) }
func (u *unifier) ZipKrates(a, b ir.Krate) error       { return u.unifyKrateKrate(a, b) }

func (u *unifier) unifyTyTy(a, b ir.Ty) error {
	if n, ok := u.table.NormalizeShallowTy(a); ok {
		return u.unifyTyTy(n, b)
	}
	if n, ok := u.table.NormalizeShallowTy(b); ok {
		return u.unifyTyTy(a, n)
	}

	switch av := a.(type) {
	case ir.TyVar:
		switch bv := b.(type) {
		case ir.TyVar:
			u.table.ty.unifyVarVar(av.Depth, bv.Depth)
			return nil
		case ir.TyProjection:
			return u.unifyProjectionTy(bv, a)
		default:
			return u.unifyVarTy(av, b)
		}

	case ir.TyApply:
		switch bv := b.(type) {
		case ir.TyVar:
			return u.unifyVarTy(bv, a)
		case ir.TyApply:
			return fold.ZipApplication(u, av, bv)
		case ir.TyForAll:
			return u.unifyForallApply(bv, a)
		case ir.TyProjection:
			return u.unifyProjectionTy(bv, a)
		default:
			panic("infer: unknown Ty variant")
		}

	case ir.TyForAll:
		switch bv := b.(type) {
		case ir.TyVar:
			return u.unifyVarTy(bv, a)
		case ir.TyForAll:
			return u.unifyForallTys(av, bv)
		case ir.TyApply:
			return u.unifyForallApply(av, b)
		case ir.TyProjection:
			return u.unifyProjectionTy(bv, a)
		default:
			panic("infer: unknown Ty variant")
		}

	case ir.TyProjection:
		if bv, ok := b.(ir.TyProjection); ok {
			return u.unifyProjectionTys(av, bv)
		}
		return u.unifyProjectionTy(av, b)

	default:
		panic("infer: unknown Ty variant")
	}
}

// unifyForallTys handles `for<...> T == for<...> U` by opening both sides
// into a shared, freshly deepened universe — the left side's binders become
// skolem constants (rigid, cannot unify with anything but themselves or a
// variable that can see that universe), the right side's binders become
// fresh variables in that same universe — and deferring the instantiated
// bodies as a fresh subgoal (spec.md section 4.3).
func (u *unifier) unifyForallTys(a, b ir.TyForAll) error {
	env := u.environment
	lifetimes1 := make([]ir.Parameter, a.NumBinders)
	for i := 0; i < a.NumBinders; i++ {
		env = env.NewUniverse()
		lifetimes1[i] = ir.LifetimeParameter(ir.LifetimeForAll{Universe: env.Universe})
	}
	lifetimes2 := make([]ir.Parameter, b.NumBinders)
	for i := 0; i < b.NumBinders; i++ {
		lifetimes2[i] = ir.LifetimeParameter(u.table.NewLifetimeVariable(env.Universe))
	}
	ty1, err := fold.SubstTy(a.Ty, lifetimes1)
	if err != nil {
		return err
	}
	ty2, err := fold.SubstTy(b.Ty, lifetimes2)
	if err != nil {
		return err
	}
	u.goals = append(u.goals, ir.NewInEnvironment(env, ir.WhereClauseGoal{
		Tag:      ir.GoalUnifyTys,
		UnifyTys: ir.UnifyTys{A: ty1, B: ty2},
	}))
	return nil
}

// unifyForallApply handles `for<...> T == U` (U not itself a ForAll): the
// left side's binders become skolem constants in a freshly deepened
// universe, and the instantiated body is deferred as a fresh subgoal
// against U.
func (u *unifier) unifyForallApply(a ir.TyForAll, b ir.Ty) error {
	env := u.environment
	lifetimes1 := make([]ir.Parameter, a.NumBinders)
	for i := 0; i < a.NumBinders; i++ {
		env = env.NewUniverse()
		lifetimes1[i] = ir.LifetimeParameter(ir.LifetimeForAll{Universe: env.Universe})
	}
	ty1, err := fold.SubstTy(a.Ty, lifetimes1)
	if err != nil {
		return err
	}
	u.goals = append(u.goals, ir.NewInEnvironment(env, ir.WhereClauseGoal{
		Tag:      ir.GoalUnifyTys,
		UnifyTys: ir.UnifyTys{A: ty1, B: b},
	}))
	return nil
}

// unifyProjectionTys equates two unnormalized projections by introducing a
// fresh variable and deferring both `proj1 == var` and `proj2 == var` as
// Normalize subgoals — equivalent to but not itself a normalization.
func (u *unifier) unifyProjectionTys(a, b ir.TyProjection) error {
	v := u.table.NewTyVariable(u.environment.Universe)
	if err := u.unifyProjectionTy(a, v); err != nil {
		return err
	}
	return u.unifyProjectionTy(b, v)
}

// unifyProjectionTy defers `proj == ty` as a Normalize subgoal rather than
// resolving it immediately — the solver, not the unifier, knows how to
// match a projection against associated-type values.
func (u *unifier) unifyProjectionTy(proj ir.TyProjection, ty ir.Ty) error {
	u.goals = append(u.goals, ir.NewInEnvironment(u.environment, ir.WhereClauseGoal{
		Tag:       ir.GoalNormalize,
		Normalize: ir.Normalize{Projection: proj, Ty: ty},
	}))
	return nil
}

// unifyVarTy binds a type variable to a concrete term after checking it
// does not occur in that term (directly, or transitively through a chain
// of other variable bindings) and that every skolem appearing in the term
// is visible from the variable's universe.
func (u *unifier) unifyVarTy(v ir.TyVar, ty ir.Ty) error {
	val := u.table.ty.probeValue(v.Depth)
	if val.Bound {
		panic("infer: unifyVarTy invoked on a bound variable")
	}
	check := &occursCheck{u: u, v: v, universeIndex: val.Universe}
	if err := check.checkTy(ty); err != nil {
		return err
	}
	u.table.ty.unifyVarValue(v.Depth, bound[ir.Ty](ty))
	return nil
}

func (u *unifier) unifyKrateKrate(a, b ir.Krate) error {
	if n, ok := u.table.NormalizeShallowKrate(a); ok {
		return u.unifyKrateKrate(n, b)
	}
	if n, ok := u.table.NormalizeShallowKrate(b); ok {
		return u.unifyKrateKrate(a, n)
	}

	switch av := a.(type) {
	case ir.KrateVar:
		switch bv := b.(type) {
		case ir.KrateVar:
			u.table.krate.unifyVarVar(av.Depth, bv.Depth)
			return nil
		case ir.KrateName:
			u.table.krate.unifyVarValue(av.Depth, bound[ir.Krate](bv))
			return nil
		default:
			panic("infer: unknown Krate variant")
		}
	case ir.KrateName:
		switch bv := b.(type) {
		case ir.KrateVar:
			u.table.krate.unifyVarValue(bv.Depth, bound[ir.Krate](av))
			return nil
		case ir.KrateName:
			if av.Id == bv.Id {
				return nil
			}
			return &ir.UnificationMismatchError{A: av, B: bv, Reason: "distinct crates"}
		default:
			panic("infer: unknown Krate variant")
		}
	default:
		panic("infer: unknown Krate variant")
	}
}

func (u *unifier) unifyLifetimeLifetime(a, b ir.Lifetime) error {
	if n, ok := u.table.NormalizeShallowLifetime(a); ok {
		return u.unifyLifetimeLifetime(n, b)
	}
	if n, ok := u.table.NormalizeShallowLifetime(b); ok {
		return u.unifyLifetimeLifetime(a, n)
	}

	switch av := a.(type) {
	case ir.LifetimeVar:
		switch bv := b.(type) {
		case ir.LifetimeVar:
			u.table.lifetime.unifyVarVar(av.Depth, bv.Depth)
			return nil
		case ir.LifetimeForAll:
			return u.unifyVarForAllLifetime(av, bv)
		default:
			panic("infer: unknown Lifetime variant")
		}
	case ir.LifetimeForAll:
		switch bv := b.(type) {
		case ir.LifetimeVar:
			return u.unifyVarForAllLifetime(bv, av)
		case ir.LifetimeForAll:
			if av.Universe == bv.Universe {
				return nil
			}
			u.constraints = append(u.constraints, ir.NewInEnvironment(u.environment, ir.LifetimeEqConstraint(av, bv)))
			return nil
		default:
			panic("infer: unknown Lifetime variant")
		}
	default:
		panic("infer: unknown Lifetime variant")
	}
}

// unifyVarForAllLifetime handles Var ~ ForAll(ui): if the variable's own
// universe can already see ui, bind it directly; otherwise the skolem is
// not yet visible where the variable lives, and equality is deferred as a
// region constraint rather than rejected outright (spec.md section 4.3).
func (u *unifier) unifyVarForAllLifetime(v ir.LifetimeVar, skolem ir.LifetimeForAll) error {
	val := u.table.lifetime.probeValue(v.Depth)
	if val.Bound {
		panic("infer: bound lifetime variable survived normalization")
	}
	if val.Universe.CanSee(skolem.Universe) {
		u.table.lifetime.unifyVarValue(v.Depth, bound[ir.Lifetime](skolem))
		return nil
	}
	u.constraints = append(u.constraints, ir.NewInEnvironment(u.environment, ir.LifetimeEqConstraint(v, skolem)))
	return nil
}

// occursCheck verifies that binding v to a term is legal: v must not occur
// (even transitively, through other variables unioned with it) in the
// term, and every skolem in the term must be visible from v's universe —
// unless the offending variable can legally be promoted to v's (narrower
// or equal) universe instead of failing outright (spec.md section 4.3,
// "universe promotion").
type occursCheck struct {
	u             *unifier
	binders       int
	v             ir.TyVar
	universeIndex ir.UniverseIndex
}

func (c *occursCheck) checkTy(ty ir.Ty) error {
	if n, ok := c.u.table.NormalizeShallowTy(ty); ok {
		return c.checkTy(n)
	}

	switch t := ty.(type) {
	case ir.TyApply:
		if err := c.universeCheck(t.Name.UniverseIndex()); err != nil {
			return err
		}
		for _, p := range t.Params {
			if err := c.checkParameter(p); err != nil {
				return err
			}
		}
		return nil

	case ir.TyForAll:
		c.binders += t.NumBinders
		err := c.checkTy(t.Ty)
		c.binders -= t.NumBinders
		return err

	case ir.TyVar:
		vIdx := t.Depth - c.binders
		val := c.u.table.ty.probeValue(vIdx)
		if val.Bound {
			panic("infer: occurs check expected a normalized type")
		}
		if c.u.table.ty.unioned(vIdx, c.v.Depth) {
			return &ir.OccursCycleError{Var: ir.TyVar{Depth: vIdx}.String()}
		}
		if c.universeIndex.Counter < val.Universe.Counter {
			// ?A = Foo<?B> where ?A's universe cannot see ?B's: legal if ?B
			// can be promoted (narrowed) to ?A's universe instead.
			c.u.table.ty.unifyVarValue(vIdx, unbound[ir.Ty](c.universeIndex))
		}
		return nil

	case ir.TyProjection:
		for _, p := range t.Params {
			if err := c.checkParameter(p); err != nil {
				return err
			}
		}
		return nil

	default:
		panic("infer: unknown Ty variant")
	}
}

func (c *occursCheck) checkParameter(p ir.Parameter) error {
	switch p.Tag {
	case ir.ParamTy:
		return c.checkTy(p.TyVal)
	case ir.ParamLifetime:
		return nil
	case ir.ParamKrate:
		panic("infer: krate used as a parameter to a type")
	default:
		panic("infer: unknown parameter tag")
	}
}

func (c *occursCheck) universeCheck(applicationUniverse ir.UniverseIndex) error {
	if c.universeIndex.Counter < applicationUniverse.Counter {
		return &ir.UniverseViolationError{VarUniverse: c.universeIndex, SkolemUniverse: applicationUniverse}
	}
	return nil
}

// UnifyWhereClauseGoal attempts to unify two leaf goals of the same shape —
// used by leaf solving to match a canonical goal against a candidate
// clause's (substituted) consequence. Goals of different tags never match.
func UnifyWhereClauseGoal(table *Table, env *ir.Environment, a, b ir.WhereClauseGoal) (*UnificationResult, error) {
	return runUnification(table, env, func(u *unifier) error { return u.unifyWhereClauseGoal(a, b) })
}

func (u *unifier) unifyWhereClauseGoal(a, b ir.WhereClauseGoal) error {
	if a.Tag != b.Tag {
		return &ir.UnificationMismatchError{A: a, B: b, Reason: "different goal shapes"}
	}
	switch a.Tag {
	case ir.GoalImplemented, ir.GoalWellFormedTraitRef, ir.GoalNotTraitRef:
		return fold.ZipTraitRef(u, a.TraitRef, b.TraitRef)
	case ir.GoalNormalize, ir.GoalNotNormalize:
		return u.unifyNormalize(a.Normalize, b.Normalize)
	case ir.GoalUnifyTys, ir.GoalNotUnifyTys:
		if err := u.unifyTyTy(a.UnifyTys.A, b.UnifyTys.A); err != nil {
			return err
		}
		return u.unifyTyTy(a.UnifyTys.B, b.UnifyTys.B)
	case ir.GoalUnifyKrates:
		if err := u.unifyKrateKrate(a.UnifyKrates.A, b.UnifyKrates.A); err != nil {
			return err
		}
		return u.unifyKrateKrate(a.UnifyKrates.B, b.UnifyKrates.B)
	case ir.GoalUnifyLifetimes:
		if err := u.unifyLifetimeLifetime(a.UnifyLifetimes.A, b.UnifyLifetimes.A); err != nil {
			return err
		}
		return u.unifyLifetimeLifetime(a.UnifyLifetimes.B, b.UnifyLifetimes.B)
	case ir.GoalWellFormedTy:
		return u.unifyTyTy(a.WellFormed, b.WellFormed)
	case ir.GoalTyLocalTo:
		if a.TyLocalTo.Krate != b.TyLocalTo.Krate {
			return &ir.UnificationMismatchError{A: a, B: b, Reason: "different crates"}
		}
		return u.unifyTyTy(a.TyLocalTo.Ty, b.TyLocalTo.Ty)
	default:
		panic("infer: unknown goal tag")
	}
}

func (u *unifier) unifyNormalize(a, b ir.Normalize) error {
	if err := fold.ZipProjection(u, a.Projection, b.Projection); err != nil {
		return err
	}
	return u.unifyTyTy(a.Ty, b.Ty)
}
