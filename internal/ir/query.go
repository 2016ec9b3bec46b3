package ir

// Query is a canonicalized T: a closed term in which every free inference
// variable has been renumbered to a dense prefix 0..len(Binders), each
// slot annotated with the universe of the variable it replaced (spec.md
// section 3.4, invariant I3). Binders lists all ty binders in order of
// first appearance, then all lifetime binders, then all krate binders
// (section 4.4 step 3) — each sort keeps its own de Bruijn index space, so
// "order of first appearance" only orders within a sort, not across sorts.
type Query[T any] struct {
	Value   T
	Binders []UniverseParam
}

// ConstraintKind discriminates the region-constraint algebra. LifetimeEq is
// the only variant spec.md's scenarios exercise (section 8, S5); this
// leaves room for a region checker built on top of this engine to extend
// the sum without touching the solver.
type ConstraintKind int

const (
	ConstraintLifetimeEq ConstraintKind = iota
)

// Constraint is a region-equality constraint deferred past unification
// time (spec.md section 4.3, lifetime unification "ForAll(u1) ~ ForAll(u2)"
// and "Var ~ ForAll(u)" cases).
type Constraint struct {
	Kind ConstraintKind
	A, B Lifetime
}

func LifetimeEqConstraint(a, b Lifetime) Constraint {
	return Constraint{Kind: ConstraintLifetimeEq, A: a, B: b}
}

func (c Constraint) String() string {
	switch c.Kind {
	case ConstraintLifetimeEq:
		return c.A.String() + " == " + c.B.String()
	default:
		return "?"
	}
}

// Constrained pairs a value with region-equality constraints that must
// hold for the value to be valid, but which are not discharged at
// unification time (spec.md section 3.4).
type Constrained[T any] struct {
	Value       T
	Constraints []InEnvironment[Constraint]
}
