package fold

import "github.com/latticelang/traitcore/internal/ir"

// Shifter adds K to every free variable's de Bruijn index. It is used
// whenever a term computed outside some binders needs to be placed inside
// them — most directly by Substituter, which shifts each replacement value
// by the number of binders crossed before splicing it in.
type Shifter struct {
	K int
}

func (s Shifter) FoldFreeTyVar(depth, bindersCrossed int) (ir.Ty, error) {
	return ir.TyVar{Depth: depth + bindersCrossed + s.K}, nil
}

func (s Shifter) FoldFreeLifetimeVar(depth, bindersCrossed int) (ir.Lifetime, error) {
	return ir.LifetimeVar{Depth: depth + bindersCrossed + s.K}, nil
}

func (s Shifter) FoldFreeKrateVar(depth, bindersCrossed int) (ir.Krate, error) {
	return ir.KrateVar{Depth: depth + bindersCrossed + s.K}, nil
}

// ShiftTy returns t with every free type variable's index raised by k.
func ShiftTy(t ir.Ty, k int) ir.Ty {
	out, err := Ty(Shifter{K: k}, t, 0)
	if err != nil {
		panic(err) // Shifter never errors
	}
	return out
}

// ShiftLifetime returns l with every free lifetime variable's index raised by k.
func ShiftLifetime(l ir.Lifetime, k int) ir.Lifetime {
	out, err := Lifetime(Shifter{K: k}, l, 0)
	if err != nil {
		panic(err)
	}
	return out
}

// ShiftKrate returns k with every free krate variable's index raised by n.
func ShiftKrate(k ir.Krate, n int) ir.Krate {
	out, err := Krate(Shifter{K: n}, k, 0)
	if err != nil {
		panic(err)
	}
	return out
}

// ShiftParameter shifts whichever of Ty/Lifetime/Krate p carries.
func ShiftParameter(p ir.Parameter, k int) ir.Parameter {
	out, err := Parameter(Shifter{K: k}, p, 0)
	if err != nil {
		panic(err)
	}
	return out
}

// ShiftGoal shifts every free variable in g by k, recursing through its
// quantifiers and connectives — used when a goal built in one binder
// context is spliced into a clause with additional binders around it.
func ShiftGoal(g *ir.Goal, k int) *ir.Goal {
	out, err := Goal(Shifter{K: k}, g, 0)
	if err != nil {
		panic(err) // Shifter never errors
	}
	return out
}
