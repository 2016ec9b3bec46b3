package solve

import (
	"errors"
	"fmt"

	"github.com/latticelang/traitcore/internal/elaborate"
	"github.com/latticelang/traitcore/internal/fold"
	"github.com/latticelang/traitcore/internal/infer"
	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program"
	"github.com/latticelang/traitcore/internal/trace"
)

// Solver proves closed goals against a fixed lowered program, under a
// chosen cycle strategy and derivation-depth bound (spec.md section 6.2,
// "Solver::new(program, cycle_strategy, overflow_depth)").
type Solver struct {
	Program       *program.Program
	CycleStrategy CycleStrategy
	OverflowDepth int
}

// NewSolver constructs a Solver. overflowDepth of 0 means "use the
// spec-default bound of 10"; a solver proving only shallow goals can pass
// a smaller bound to fail faster instead.
func NewSolver(prog *program.Program, strategy CycleStrategy, overflowDepth int) *Solver {
	if overflowDepth == 0 {
		overflowDepth = 10
	}
	return &Solver{Program: prog, CycleStrategy: strategy, OverflowDepth: overflowDepth}
}

// SolveClosedGoal proves goal, which must carry no free inference
// variables of its own (spec.md section 6.2). It allocates a fresh
// inference table for the whole derivation; every existential witness in
// the returned Solution's RefinedGoal has been resolved against that
// table before it is handed back.
func (s *Solver) SolveClosedGoal(goal ir.InEnvironment[*ir.Goal]) (Solution, error) {
	table := infer.NewTable()
	stack := &derivationStack{}
	span := trace.NewSpan("solve")
	span.Logf("goal %s", goal.Goal)
	solution, err := s.solveGoal(table, goal.Environment, goal.Goal, stack, span, 0)
	if err != nil {
		span.Logf("failed: %v", err)
		return Solution{}, err
	}
	refined, err := infer.ResolveGoal(table, solution.RefinedGoal)
	if err != nil {
		return Solution{}, err
	}
	solution.RefinedGoal = refined
	for i, c := range solution.Constraints {
		resolved, err := infer.ResolveConstraint(table, c.Goal)
		if err != nil {
			return Solution{}, err
		}
		solution.Constraints[i] = ir.NewInEnvironment(c.Environment, resolved)
	}
	span.Logf("%s: %s", solution.Successful, refined)
	return solution, nil
}

func (s *Solver) solveGoal(table *infer.Table, env *ir.Environment, g *ir.Goal, stack *derivationStack, span trace.Span, depth int) (Solution, error) {
	if depth > s.OverflowDepth {
		return Solution{}, &ir.OverflowError{Depth: s.OverflowDepth}
	}

	switch g.Tag {
	case ir.GoalAnd:
		left, err := s.solveGoal(table, env, g.AndLeft, stack, span, depth+1)
		if err != nil {
			return Solution{}, err
		}
		right, err := s.solveGoal(table, env, g.AndRight, stack, span, depth+1)
		if err != nil {
			return Solution{}, err
		}
		return Solution{
			Successful:  combineSuccess(left.Successful, right.Successful),
			RefinedGoal: ir.AndGoal(left.RefinedGoal, right.RefinedGoal),
			Constraints: append(left.Constraints, right.Constraints...),
		}, nil

	case ir.GoalImplies:
		inner, err := s.solveGoal(table, env.AddClauses(g.ImpliesClauses), g.ImpliesGoal, stack, span, depth+1)
		if err != nil {
			return Solution{}, err
		}
		return Solution{
			Successful:  inner.Successful,
			RefinedGoal: ir.ImpliesGoalNode(g.ImpliesClauses, inner.RefinedGoal),
			Constraints: inner.Constraints,
		}, nil

	case ir.GoalQuantified:
		switch g.QuantKind {
		case ir.QuantForAll:
			return s.solveForAll(table, env, g, stack, span, depth)
		case ir.QuantExists:
			return s.solveExists(table, env, g, stack, span, depth)
		default:
			panic("solve: unknown quantifier kind")
		}

	case ir.GoalLeaf:
		switch g.Leaf.Tag {
		case ir.GoalNotTraitRef, ir.GoalNotNormalize, ir.GoalNotUnifyTys:
			return s.solveNegation(table, env, g.Leaf, stack, span, depth)
		case ir.GoalUnifyTys, ir.GoalUnifyKrates, ir.GoalUnifyLifetimes:
			return s.solveUnify(table, env, g.Leaf, stack, span, depth)
		default:
			return s.solveLeaf(table, env, g.Leaf, stack, span, depth)
		}

	default:
		panic("solve: unknown goal tag")
	}
}

// skolemParameter builds the rigid value a ForAll binder opens to: a fresh
// skolem whose universe gates what it may be unified with (spec.md section
// 4.6, "Quantified(ForAll, ...)").
func skolemParameter(k ir.Kind, universe ir.UniverseIndex, position int) ir.Parameter {
	switch k.Tag {
	case ir.ParamTy:
		return ir.TyParameter(ir.TyApply{Name: ir.TypeNameForAll{Universe: universe}})
	case ir.ParamLifetime:
		return ir.LifetimeParameter(ir.LifetimeForAll{Universe: universe})
	case ir.ParamKrate:
		name := ir.Intern(fmt.Sprintf("!skolem.%d.%d", universe.Counter, position))
		return ir.KrateParameter(ir.KrateName{Id: ir.KrateId{Name: name}})
	default:
		panic("solve: unknown parameter kind")
	}
}

func freshVariableParameter(table *infer.Table, k ir.Kind, universe ir.UniverseIndex) ir.Parameter {
	switch k.Tag {
	case ir.ParamTy:
		return ir.TyParameter(table.NewTyVariable(universe))
	case ir.ParamLifetime:
		return ir.LifetimeParameter(table.NewLifetimeVariable(universe))
	case ir.ParamKrate:
		return ir.KrateParameter(table.NewKrateVariable(universe))
	default:
		panic("solve: unknown parameter kind")
	}
}

// instantiationValues builds a Substituter-ready values slice for a
// Binders[T] with the given kinds, filling de Bruijn slot i with the
// parameter for Kinds[len(Kinds)-1-i] (binders.go's indexing convention).
func instantiationValues(kinds []ir.Kind, build func(ir.Kind, int) ir.Parameter) []ir.Parameter {
	values := make([]ir.Parameter, len(kinds))
	for i, k := range kinds {
		values[len(kinds)-1-i] = build(k, i)
	}
	return values
}

func (s *Solver) solveForAll(table *infer.Table, env *ir.Environment, g *ir.Goal, stack *derivationStack, span trace.Span, depth int) (Solution, error) {
	skolemEnv := env.NewUniverse()
	values := instantiationValues(g.QuantBinders.Kinds, func(k ir.Kind, pos int) ir.Parameter {
		return skolemParameter(k, skolemEnv.Universe, pos)
	})
	inner, err := fold.SubstGoal(g.QuantBinders.Value, values)
	if err != nil {
		return Solution{}, err
	}
	solved, err := s.solveGoal(table, skolemEnv, inner, stack, span, depth+1)
	if err != nil {
		return Solution{}, err
	}
	return Solution{Successful: solved.Successful, RefinedGoal: g, Constraints: solved.Constraints}, nil
}

func (s *Solver) solveExists(table *infer.Table, env *ir.Environment, g *ir.Goal, stack *derivationStack, span trace.Span, depth int) (Solution, error) {
	values := instantiationValues(g.QuantBinders.Kinds, func(k ir.Kind, _ int) ir.Parameter {
		return freshVariableParameter(table, k, env.Universe)
	})
	inner, err := fold.SubstGoal(g.QuantBinders.Value, values)
	if err != nil {
		return Solution{}, err
	}
	solved, err := s.solveGoal(table, env, inner, stack, span, depth+1)
	if err != nil {
		return Solution{}, err
	}
	witnessed, err := infer.ResolveGoal(table, solved.RefinedGoal)
	if err != nil {
		return Solution{}, err
	}
	return Solution{Successful: solved.Successful, RefinedGoal: witnessed, Constraints: solved.Constraints}, nil
}

// negationToPositive strips the Not from a negated leaf goal, recovering
// the positive goal that must fail to solve for the negation to succeed.
func negationToPositive(w ir.WhereClauseGoal) ir.WhereClauseGoal {
	switch w.Tag {
	case ir.GoalNotTraitRef:
		return ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: w.TraitRef}
	case ir.GoalNotNormalize:
		return ir.WhereClauseGoal{Tag: ir.GoalNormalize, Normalize: w.Normalize}
	case ir.GoalNotUnifyTys:
		return ir.WhereClauseGoal{Tag: ir.GoalUnifyTys, UnifyTys: w.UnifyTys}
	default:
		panic("solve: negationToPositive called on a non-negated goal")
	}
}

// solveNegation implements spec.md section 4.6 "Negation": Not<P> succeeds
// iff solving P yields NoSolution, a closed-world assertion evaluated
// locally (no bindings made while probing P escape, whichever way probing
// comes out).
func (s *Solver) solveNegation(table *infer.Table, env *ir.Environment, w ir.WhereClauseGoal, stack *derivationStack, span trace.Span, depth int) (Solution, error) {
	positive := negationToPositive(w)
	snap := table.Snapshot()
	_, err := s.solveGoal(table, env, ir.LeafGoal(positive), stack, span, depth+1)
	table.RollbackTo(snap)

	var overflow *ir.OverflowError
	switch {
	case err == nil:
		return Solution{}, &ir.NoSolutionError{Goal: w}
	case errors.As(err, &overflow):
		return Solution{}, err
	default:
		return Solution{Successful: SuccessUnique, RefinedGoal: ir.LeafGoal(w)}, nil
	}
}

// solveUnify discharges a primitive equality goal (type, crate, or
// lifetime) directly against the unifier rather than searching for a
// program clause whose consequence it might match: nothing in a lowered
// program ever declares "=" as a consequence, so candidate-clause matching
// can never apply here. Any sub-goals the unifier defers (projection
// normalization, ForAll-vs-ForAll obligations) are solved recursively, and
// any region constraints it defers are carried back up untouched for
// SolveClosedGoal to resolve once the whole derivation settles (spec.md
// section 4.3/8 scenario S5).
func (s *Solver) solveUnify(table *infer.Table, env *ir.Environment, w ir.WhereClauseGoal, stack *derivationStack, span trace.Span, depth int) (Solution, error) {
	var result *infer.UnificationResult
	var err error
	switch w.Tag {
	case ir.GoalUnifyTys:
		result, err = infer.UnifyTys(table, env, w.UnifyTys.A, w.UnifyTys.B)
	case ir.GoalUnifyKrates:
		result, err = infer.UnifyKrates(table, env, w.UnifyKrates.A, w.UnifyKrates.B)
	case ir.GoalUnifyLifetimes:
		result, err = infer.UnifyLifetimes(table, env, w.UnifyLifetimes.A, w.UnifyLifetimes.B)
	default:
		panic("solve: solveUnify called on a non-unification goal")
	}
	if err != nil {
		return Solution{}, err
	}

	successKind := SuccessUnique
	constraints := append([]ir.InEnvironment[ir.Constraint](nil), result.Constraints...)
	for _, g := range result.Goals {
		sol, err := s.solveGoal(table, g.Environment, ir.LeafGoal(g.Goal), stack, span, depth+1)
		if err != nil {
			return Solution{}, err
		}
		successKind = combineSuccess(successKind, sol.Successful)
		constraints = append(constraints, sol.Constraints...)
	}
	return Solution{Successful: successKind, RefinedGoal: ir.LeafGoal(w), Constraints: constraints}, nil
}

// canonicalForm canonicalizes w against table's current bindings, for both
// cycle-stack keying and the Unique/Refined distinction: a leaf goal that
// still carries free inference variables when it is dispatched can only be
// answered by refining it, never simply confirmed (spec.md section 4.6,
// "Refined (a unique applicable clause but the result still contains
// inference variables)" — read against the goal as handed to leaf solving,
// not the clause's substituted consequence, so that S2's `exists<X> { X:
// Eq }` still reports Refined once X is resolved to a ground Foo).
func (s *Solver) canonicalForm(table *infer.Table, env *ir.Environment, w ir.WhereClauseGoal) (ir.Query[ir.WhereClauseGoal], string, error) {
	q, err := infer.MakeQueryWhereClauseGoal(table, w)
	if err != nil {
		return ir.Query[ir.WhereClauseGoal]{}, "", err
	}
	key := fmt.Sprintf("%s|%v|u%d|c%d", q.Value, q.Binders, env.Universe.Counter, len(env.Clauses))
	return q, key, nil
}

// axiomClause lifts an elaborated environment clause into a zero-condition
// program clause, so leaf solving can treat "already known to hold" and
// "provable from an impl" uniformly as candidates (spec.md section 4.6,
// "candidate program clauses from the program and from the elaborated
// environment").
func axiomClause(c ir.WhereClause) ir.ProgramClause {
	var consequence ir.WhereClauseGoal
	switch c.Tag {
	case ir.WhereClauseImplemented:
		consequence = ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: c.TraitRef}
	case ir.WhereClauseNormalize:
		consequence = ir.WhereClauseGoal{Tag: ir.GoalNormalize, Normalize: c.Normalize}
	}
	return ir.NewBinders[ir.ProgramClauseImplication](nil, ir.ProgramClauseImplication{Consequence: consequence})
}

func (s *Solver) candidateClauses(env *ir.Environment) []ir.ProgramClause {
	candidates := append([]ir.ProgramClause(nil), s.Program.ProgramClauses...)
	for _, c := range elaborate.Clauses(env, s.Program) {
		candidates = append(candidates, axiomClause(c))
	}
	return candidates
}

// solveLeaf implements spec.md section 4.6's leaf solving contract in full:
// canonicalize for cycle detection, enumerate candidates, and classify the
// result as Unique/Ambiguous/Refined or fail with NoApplicableClause.
func (s *Solver) solveLeaf(table *infer.Table, env *ir.Environment, w ir.WhereClauseGoal, stack *derivationStack, span trace.Span, depth int) (Solution, error) {
	q, key, err := s.canonicalForm(table, env, w)
	if err != nil {
		return Solution{}, err
	}
	needsRefinement := len(q.Binders) > 0
	if stack.contains(key) {
		span.Logf("cycle at depth %d: %s", depth, w)
		switch s.CycleStrategy {
		case Tabling:
			return Solution{Successful: SuccessAmbiguous, RefinedGoal: ir.LeafGoal(w)}, nil
		case Recursive:
			return Solution{}, &ir.OverflowError{Depth: depth}
		default:
			panic("solve: unknown cycle strategy")
		}
	}
	stack.push(key)
	defer stack.pop()

	candidates := s.candidateClauses(env)

	matchCount := 0
	matchedIdx := -1
	for i, clause := range candidates {
		snap := table.Snapshot()
		_, ok, err := s.tryClause(table, env, w, clause, stack, span, depth)
		table.RollbackTo(snap)
		if err != nil {
			return Solution{}, err
		}
		if ok {
			matchCount++
			matchedIdx = i
		}
	}
	span.Logf("leaf %s: %d candidate(s) matched", w, matchCount)

	switch matchCount {
	case 0:
		return Solution{}, &ir.NoApplicableClauseError{Goal: w}
	case 1:
		snap := table.Snapshot()
		solution, ok, err := s.tryClause(table, env, w, candidates[matchedIdx], stack, span, depth)
		if err != nil {
			table.RollbackTo(snap)
			return Solution{}, err
		}
		if !ok {
			table.RollbackTo(snap)
			panic("solve: clause matched during counting but not on replay")
		}
		if needsRefinement && solution.Successful == SuccessUnique {
			solution.Successful = SuccessRefined
		}
		table.Commit(snap)
		return solution, nil
	default:
		return Solution{Successful: SuccessAmbiguous, RefinedGoal: ir.LeafGoal(w)}, nil
	}
}

// tryClause attempts to apply one candidate clause to w. ok is false
// whenever the clause simply does not apply (tag mismatch, unification
// failure, an unprovable condition) — expected, not exceptional, and the
// caller tries the next candidate. A non-nil error means the whole
// derivation must abort (overflow).
func (s *Solver) tryClause(table *infer.Table, env *ir.Environment, w ir.WhereClauseGoal, clause ir.ProgramClause, stack *derivationStack, span trace.Span, depth int) (Solution, bool, error) {
	values := instantiationValues(clause.Kinds, func(k ir.Kind, _ int) ir.Parameter {
		return freshVariableParameter(table, k, env.Universe)
	})
	instantiated, err := fold.SubstProgramClauseImplication(clause.Value, values)
	if err != nil {
		return Solution{}, false, nil
	}

	result, err := infer.UnifyWhereClauseGoal(table, env, w, instantiated.Consequence)
	if err != nil {
		return Solution{}, false, nil
	}

	worklist := make([]ir.InEnvironment[*ir.Goal], 0, len(instantiated.Conditions)+len(result.Goals))
	for _, c := range instantiated.Conditions {
		worklist = append(worklist, ir.NewInEnvironment(env, c))
	}
	for _, g := range result.Goals {
		worklist = append(worklist, ir.NewInEnvironment(g.Environment, ir.LeafGoal(g.Goal)))
	}

	successKind := SuccessUnique
	constraints := append([]ir.InEnvironment[ir.Constraint](nil), result.Constraints...)
	for _, item := range worklist {
		sol, err := s.solveGoal(table, item.Environment, item.Goal, stack, span, depth+1)
		if err != nil {
			var overflow *ir.OverflowError
			if errors.As(err, &overflow) {
				return Solution{}, false, err
			}
			return Solution{}, false, nil
		}
		successKind = combineSuccess(successKind, sol.Successful)
		constraints = append(constraints, sol.Constraints...)
	}

	resolvedConsequence, err := infer.ResolveWhereClauseGoal(table, instantiated.Consequence)
	if err != nil {
		return Solution{}, false, err
	}
	return Solution{Successful: successKind, RefinedGoal: ir.LeafGoal(resolvedConsequence), Constraints: constraints}, true, nil
}
