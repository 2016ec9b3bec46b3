package ir

import "fmt"

// The error taxonomy of spec.md section 7. Each kind is its own typed
// struct with an Error() string method, following the shape of the
// teacher's SymbolNotFoundError rather than a generic errors.New/wrapped
// string: callers that need to distinguish kinds do a type switch instead
// of matching on message text.

// UnificationMismatchError reports that two constructors cannot be
// equated: Apply types with different TypeNames or parameter lists of
// different lengths, two distinct crate names, or leaf goals of different
// shapes. A skolem escaping its universe is a UniverseViolationError
// instead.
type UnificationMismatchError struct {
	A, B   fmt.Stringer
	Reason string
}

func (e *UnificationMismatchError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: %s", e.A, e.B, e.Reason)
}

// OccursCycleError reports that a variable occurs, transitively, in its
// own proposed binding.
type OccursCycleError struct {
	Var string
}

func (e *OccursCycleError) Error() string {
	return fmt.Sprintf("cycle during unification: %s occurs in its own binding", e.Var)
}

// UniverseViolationError reports that binding a variable would force a
// skolem to be visible from a universe that cannot see it, and no
// promotion could fix it (promotion only helps when the *variable*, not
// the skolem, is the one that can be relaxed).
type UniverseViolationError struct {
	VarUniverse    UniverseIndex
	SkolemUniverse UniverseIndex
}

func (e *UniverseViolationError) Error() string {
	return fmt.Sprintf("incompatible universes: variable in %s cannot see skolem in %s",
		e.VarUniverse, e.SkolemUniverse)
}

// NoApplicableClauseError reports that leaf solving found no program
// clause whose consequence unifies with the goal.
type NoApplicableClauseError struct {
	Goal fmt.Stringer
}

func (e *NoApplicableClauseError) Error() string {
	return fmt.Sprintf("no applicable clause for %s", e.Goal)
}

// AmbiguousSolutionError reports that multiple clauses apply with
// incompatible refinements.
type AmbiguousSolutionError struct {
	Goal fmt.Stringer
}

func (e *AmbiguousSolutionError) Error() string {
	return fmt.Sprintf("ambiguous solution for %s", e.Goal)
}

// OverflowError reports that derivation depth exceeded the configured
// overflow-depth bound, or that the cycle strategy chose to fail a
// re-entrant goal outright.
type OverflowError struct {
	Depth int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("overflow: derivation exceeded depth %d", e.Depth)
}

// IllFormedProgramError is raised by lowering (out of scope here), never
// by the solver itself; it exists so the CLI boundary (spec.md section
// 6.3) can surface a lowering failure using the same taxonomy as the
// solver's own errors.
type IllFormedProgramError struct {
	Reason string
}

func (e *IllFormedProgramError) Error() string {
	return fmt.Sprintf("ill-formed program: %s", e.Reason)
}

// NoSolutionError is the negative result of SolveClosedGoal — not failure
// to search, but a proof that no clause derives the goal. Distinct from
// the error kinds above: a caller solving Not<P> treats this as success.
type NoSolutionError struct {
	Goal fmt.Stringer
}

func (e *NoSolutionError) Error() string {
	return fmt.Sprintf("no solution for %s", e.Goal)
}
