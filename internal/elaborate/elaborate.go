// Package elaborate computes the transitive closure of an environment's
// where-clauses: every clause implied by the ones already in scope,
// following a trait's own declared where-clauses and the
// projection-implies-impl rule (spec.md section 4.5).
package elaborate

import (
	"github.com/latticelang/traitcore/internal/fold"
	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program"
)

// Clauses returns the elaborated closure of env's clause set against prog:
// every clause in env.Clauses, plus every clause reachable from them by
// repeatedly applying
//
//	trait Foo<A> where Self: Bar<A> { }
//	T: Foo<U>
//	----------------------------------------------------------
//	T: Bar<U>
//
// and
//
//	<T as Trait<U>>::Foo == V
//	----------------------------------------------------------
//	T: Trait<U>
//
// until no new clause is produced. Clauses are deduplicated by their
// printed form: WhereClause holds slices internally, so it is not a valid
// Go map key on its own, and the printed form is already exactly the
// representation this engine treats two clauses as interchangeable under.
func Clauses(env *ir.Environment, prog *program.Program) []ir.WhereClause {
	seen := make(map[string]bool)
	var result []ir.WhereClause
	var stack []ir.WhereClause

	push := func(c ir.WhereClause) {
		key := c.String()
		if seen[key] {
			return
		}
		seen[key] = true
		result = append(result, c)
		stack = append(stack, c)
	}

	for _, c := range env.Clauses {
		push(c)
	}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch c.Tag {
		case ir.WhereClauseImplemented:
			traitDatum, ok := prog.TraitData[c.TraitRef.TraitId]
			if !ok {
				continue // an ill-formed reference; leaf solving will reject it later
			}
			// De Bruijn slot i holds the trait's parameter len-1-i
			// (ir.Binders' convention), so the declaration-ordered
			// TraitRef.Params are reversed before substituting.
			values := make([]ir.Parameter, len(c.TraitRef.Params))
			for i, p := range c.TraitRef.Params {
				values[len(values)-1-i] = p
			}
			for _, wc := range traitDatum.Binders.Value.WhereClauses {
				substituted, err := fold.SubstWhereClause(wc, values)
				if err != nil {
					panic(err) // substitution of a closed clause cannot fail
				}
				push(substituted)
			}

		case ir.WhereClauseNormalize:
			datum, traitParams, _ := prog.SplitProjection(c.Normalize.Projection)
			push(ir.Implemented(ir.TraitRef{TraitId: datum.TraitId, Params: traitParams}))
		}
	}

	return result
}

// Environment returns a copy of env whose Clauses field has been replaced
// with its elaborated closure, for callers that want an Environment they
// can pass straight into leaf solving without separately tracking the
// elaborated set.
func Environment(env *ir.Environment, prog *program.Program) *ir.Environment {
	return &ir.Environment{Universe: env.Universe, Clauses: Clauses(env, prog)}
}
