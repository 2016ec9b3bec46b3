// Package solve implements the public solving contract of spec.md section
// 4.6: goal decomposition (And/Implies/Quantified/Leaf), leaf solving
// against candidate program clauses, cycle handling, and the overflow
// bound. Its core algorithm — Fulfill-style worklist solving of a clause's
// conditions under the unifier's own deferred sub-goals — has no surviving
// counterpart in the retrieved chalk sources (solve/fulfill.rs and
// solve/solver.rs were filtered out of the pack; only the thin
// solve/match_clause.rs wrapper survived), so this package is built
// directly from spec.md's own prose description of the algorithm rather
// than transliterated from a specific Rust file. See DESIGN.md.
package solve

import "github.com/latticelang/traitcore/internal/ir"

// SuccessKind is the three-valued outcome of a successful solve (spec.md
// section 4.6): Unique (exactly one applicable clause), Ambiguous (more
// than one applicable clause), or Refined (a unique clause applied, but
// the resulting goal still carries unresolved inference variables).
type SuccessKind int

const (
	SuccessUnique SuccessKind = iota
	SuccessAmbiguous
	SuccessRefined
)

func (k SuccessKind) String() string {
	switch k {
	case SuccessUnique:
		return "unique"
	case SuccessAmbiguous:
		return "ambiguous"
	case SuccessRefined:
		return "refined"
	default:
		return "?"
	}
}

// Solution is the positive result of solving a goal: how certain the
// engine is (Successful), the goal as it stands after whatever
// substitution solving performed (RefinedGoal), with existential witnesses
// resolved for display (spec.md section 4.6, leaf solving step 4), and any
// region-equality constraints deferred rather than discharged during
// unification (spec.md section 4.3).
type Solution struct {
	Successful  SuccessKind
	RefinedGoal *ir.Goal
	Constraints []ir.InEnvironment[ir.Constraint]
}

// CycleStrategy selects what happens when a goal re-enters its own
// derivation stack (spec.md section 4.6 "Cycle strategy").
type CycleStrategy int

const (
	// Tabling treats a re-entrant goal as ambiguous, deferring the verdict
	// to whichever outer frame is already in the middle of proving it.
	Tabling CycleStrategy = iota
	// Recursive fails a re-entrant goal outright, as if the derivation had
	// hit the overflow bound.
	Recursive
)

// combineSuccess folds two SuccessKinds the way an And goal combines the
// confidence of its two conjuncts: the weakest of the two wins, with
// Ambiguous weakest and Unique strongest.
func combineSuccess(a, b SuccessKind) SuccessKind {
	if a == SuccessAmbiguous || b == SuccessAmbiguous {
		return SuccessAmbiguous
	}
	if a == SuccessRefined || b == SuccessRefined {
		return SuccessRefined
	}
	return SuccessUnique
}
