package ir

// Environment is an immutable, shared set of in-scope where-clauses plus
// the universe a derivation currently stands in. It is never mutated in
// place: AddClauses and NewUniverse both return a new shared value,
// leaving every existing reference to the old Environment observably
// unchanged (spec.md section 3.6 lifecycle, section 5 "shared immutable
// values").
type Environment struct {
	Universe UniverseIndex
	Clauses  []WhereClause
}

// NewRootEnvironment returns the empty environment in the root universe.
func NewRootEnvironment() *Environment {
	return &Environment{Universe: RootUniverse}
}

// AddClauses returns a new Environment with clauses appended; the receiver
// is left untouched. Per spec.md invariant I7, this never changes Universe.
func (e *Environment) AddClauses(clauses []WhereClause) *Environment {
	merged := make([]WhereClause, 0, len(e.Clauses)+len(clauses))
	merged = append(merged, e.Clauses...)
	merged = append(merged, clauses...)
	return &Environment{Universe: e.Universe, Clauses: merged}
}

// NewUniverse returns a new Environment one universe deeper than the
// receiver, clauses unchanged. This is the single source of universe
// allocation inside a derivation (spec.md section 9): opening a ForAll
// binder, in the unifier or in the solver, always goes through this.
func (e *Environment) NewUniverse() *Environment {
	return &Environment{Universe: UniverseIndex{Counter: e.Universe.Counter + 1}, Clauses: e.Clauses}
}

// InEnvironment pairs a goal (or any other value) with the environment it
// is to be interpreted under.
type InEnvironment[G any] struct {
	Environment *Environment
	Goal        G
}

func NewInEnvironment[G any](env *Environment, goal G) InEnvironment[G] {
	return InEnvironment[G]{Environment: env, Goal: goal}
}

func (e InEnvironment[G]) Map(op func(G) G) InEnvironment[G] {
	return InEnvironment[G]{Environment: e.Environment, Goal: op(e.Goal)}
}
