package ir_test

import (
	"testing"

	"github.com/latticelang/traitcore/internal/ir"
)

func fooEqTraitRef() ir.TraitRef {
	eq := ir.NewItemId(1)
	foo := ir.TypeNameItemId{Id: ir.NewItemId(2)}
	return ir.TraitRef{
		TraitId: eq,
		Params:  []ir.Parameter{ir.TyParameter(ir.TyApply{Name: foo})},
	}
}

func TestWhereClauseStringRoundTripsImplemented(t *testing.T) {
	ref := fooEqTraitRef()
	clause := ir.Implemented(ref)
	if clause.String() != ref.String() {
		t.Fatalf("Implemented(ref).String() = %q, want %q", clause.String(), ref.String())
	}
}

func TestAsPositiveWhereClauseRoundTrips(t *testing.T) {
	ref := fooEqTraitRef()
	leaf := ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: ref}

	back := leaf.AsPositiveWhereClause()
	if back.Tag != ir.WhereClauseImplemented {
		t.Fatalf("AsPositiveWhereClause tag = %v, want WhereClauseImplemented", back.Tag)
	}
	if back.TraitRef.TraitId != ref.TraitId {
		t.Fatalf("round-tripped TraitRef lost its trait id")
	}
}

func TestAsPositiveWhereClausePanicsOnNonPositiveTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic converting a unification goal to a where-clause")
		}
	}()
	leaf := ir.WhereClauseGoal{Tag: ir.GoalUnifyTys}
	_ = leaf.AsPositiveWhereClause()
}

func TestGoalStringNestsConnectives(t *testing.T) {
	ref := fooEqTraitRef()
	leaf := ir.LeafGoal(ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: ref})
	and := ir.AndGoal(leaf, leaf)

	got := and.String()
	want := "(" + leaf.String() + " && " + leaf.String() + ")"
	if got != want {
		t.Fatalf("And goal String() = %q, want %q", got, want)
	}
}

func TestQuantifiedGoalStringNamesKindAndArity(t *testing.T) {
	leaf := ir.LeafGoal(ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: fooEqTraitRef()})
	binders := ir.NewBinders([]ir.Kind{ir.TyKind()}, leaf)
	forall := ir.QuantifiedGoal(ir.QuantForAll, binders)
	exists := ir.QuantifiedGoal(ir.QuantExists, binders)

	if forall.String()[:7] != "forall<" {
		t.Fatalf("forall goal String() = %q, want it to start with \"forall<\"", forall.String())
	}
	if exists.String()[:7] != "exists<" {
		t.Fatalf("exists goal String() = %q, want it to start with \"exists<\"", exists.String())
	}
}

func TestProgramClauseImplicationStringOmitsArrowWhenNoConditions(t *testing.T) {
	consequence := ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: fooEqTraitRef()}
	fact := ir.ProgramClauseImplication{Consequence: consequence}
	if fact.String() != consequence.String() {
		t.Fatalf("fact clause String() = %q, want bare consequence %q", fact.String(), consequence.String())
	}

	rule := ir.ProgramClauseImplication{
		Consequence: consequence,
		Conditions:  []*ir.Goal{ir.LeafGoal(consequence)},
	}
	if rule.String() == consequence.String() {
		t.Fatalf("rule with conditions should not print identically to a bare fact")
	}
}
