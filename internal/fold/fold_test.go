package fold_test

import (
	"testing"

	"github.com/latticelang/traitcore/internal/fold"
	"github.com/latticelang/traitcore/internal/ir"
)

func apply(name ir.TypeName, params ...ir.Parameter) ir.TyApply {
	return ir.TyApply{Name: name, Params: params}
}

func itemName(index uint64) ir.TypeName {
	return ir.TypeNameItemId{Id: ir.NewItemId(index)}
}

func TestShiftTyRaisesOnlyFreeVariables(t *testing.T) {
	// forall<1>. (^0, ^1) — ^0 is bound by the forall, ^1 is free relative to it.
	inner := apply(itemName(1), ir.TyParameter(ir.TyVar{Depth: 0}), ir.TyParameter(ir.TyVar{Depth: 1}))
	term := ir.TyForAll{NumBinders: 1, Ty: inner}

	shifted := fold.ShiftTy(term, 5)

	forall, ok := shifted.(ir.TyForAll)
	if !ok {
		t.Fatalf("shifted term is %T, want ir.TyForAll", shifted)
	}
	body, ok := forall.Ty.(ir.TyApply)
	if !ok {
		t.Fatalf("forall body is %T, want ir.TyApply", forall.Ty)
	}
	if got := body.Params[0].TyVal.(ir.TyVar).Depth; got != 0 {
		t.Fatalf("bound variable depth changed: got %d, want 0", got)
	}
	if got := body.Params[1].TyVal.(ir.TyVar).Depth; got != 1+5 {
		t.Fatalf("free variable was not shifted: got %d, want %d", got, 1+5)
	}
}

func TestShiftGoalDescendsThroughQuantifiers(t *testing.T) {
	ref := ir.TraitRef{TraitId: ir.NewItemId(1), Params: []ir.Parameter{ir.TyParameter(ir.TyVar{Depth: 1})}}
	leaf := ir.LeafGoal(ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: ref})
	quantified := ir.QuantifiedGoal(ir.QuantForAll, ir.NewBinders([]ir.Kind{ir.TyKind()}, leaf))

	shifted := fold.ShiftGoal(quantified, 3)

	got := shifted.QuantBinders.Value.Leaf.TraitRef.Params[0].TyVal.(ir.TyVar).Depth
	if got != 1+3 {
		t.Fatalf("free variable inside quantified goal was not shifted: got %d, want %d", got, 1+3)
	}
}

func TestSubstTyReplacesLowIndicesAndShiftsHigherOnesDown(t *testing.T) {
	// Substituting two values for Var(0), Var(1): Var(2) is free beyond the
	// substitution and must shift down by 2 to account for the binders removed.
	replacement := apply(itemName(9))
	values := []ir.Parameter{ir.TyParameter(replacement), ir.TyParameter(apply(itemName(10)))}

	term := apply(itemName(1),
		ir.TyParameter(ir.TyVar{Depth: 0}),
		ir.TyParameter(ir.TyVar{Depth: 2}),
	)

	out, err := fold.SubstTy(term, values)
	if err != nil {
		t.Fatalf("SubstTy: %v", err)
	}
	result := out.(ir.TyApply)

	if got := result.Params[0].TyVal.(ir.TyApply); got.Name != replacement.Name {
		t.Fatalf("Var(0) did not substitute to the expected value: got %v", got)
	}
	if got := result.Params[1].TyVal.(ir.TyVar).Depth; got != 0 {
		t.Fatalf("free variable beyond the substituted range did not shift down: got %d, want 0", got)
	}
}

func TestSubstTyShiftsReplacementUnderNestedBinders(t *testing.T) {
	// forall<1>. Var(1) — Var(1) at depth 1 inside one extra binder refers to
	// Var(0) at the substitution site; substituting it for a closed value
	// must leave the value unchanged regardless of the binder crossed.
	replacement := apply(itemName(7))
	term := ir.TyForAll{NumBinders: 1, Ty: ir.TyVar{Depth: 1}}

	out, err := fold.SubstTy(term, []ir.Parameter{ir.TyParameter(replacement)})
	if err != nil {
		t.Fatalf("SubstTy: %v", err)
	}
	got := out.(ir.TyForAll).Ty.(ir.TyApply)
	if got.Name != replacement.Name {
		t.Fatalf("substituted value changed shape under a binder: got %v", got)
	}
}

// recordingZipper counts how many ty pairs it was asked to compare and
// reports a mismatch only when told to.
type recordingZipper struct {
	tyCalls int
	fail    bool
}

func (z *recordingZipper) ZipTys(a, b ir.Ty) error {
	z.tyCalls++
	if z.fail {
		return &fold.NoMatchError{A: a, B: b}
	}
	return nil
}
func (z *recordingZipper) ZipLifetimes(a, b ir.Lifetime) error { return nil }
func (z *recordingZipper) ZipKrates(a, b ir.Krate) error       { return nil }

func TestZipApplicationRequiresMatchingTypeNames(t *testing.T) {
	a := apply(itemName(1))
	b := apply(itemName(2))
	z := &recordingZipper{}

	err := fold.ZipApplication(z, a, b)
	if err == nil {
		t.Fatalf("expected a NoMatchError for distinct TypeNames")
	}
	if z.tyCalls != 0 {
		t.Fatalf("zipper should not be consulted before the heads are found equal")
	}
}

func TestZipApplicationVisitsEachParameterPairwise(t *testing.T) {
	name := itemName(1)
	a := apply(name, ir.TyParameter(apply(itemName(2))), ir.TyParameter(apply(itemName(3))))
	b := apply(name, ir.TyParameter(apply(itemName(20))), ir.TyParameter(apply(itemName(30))))
	z := &recordingZipper{}

	if err := fold.ZipApplication(z, a, b); err != nil {
		t.Fatalf("ZipApplication: %v", err)
	}
	if z.tyCalls != 2 {
		t.Fatalf("expected 2 parameter comparisons, got %d", z.tyCalls)
	}
}

func TestZipParametersRejectsLengthMismatch(t *testing.T) {
	z := &recordingZipper{}
	as := []ir.Parameter{ir.TyParameter(apply(itemName(1)))}
	bs := []ir.Parameter{}

	if err := fold.ZipParameters(z, as, bs); err == nil {
		t.Fatalf("expected a NoMatchError for mismatched parameter list lengths")
	}
}

func TestTypeNameEqualDistinguishesSkolemUniverses(t *testing.T) {
	a := ir.TypeNameForAll{Universe: ir.UniverseIndex{Counter: 1}}
	b := ir.TypeNameForAll{Universe: ir.UniverseIndex{Counter: 2}}
	if fold.TypeNameEqual(a, a) != true {
		t.Fatalf("a skolem should equal itself")
	}
	if fold.TypeNameEqual(a, b) {
		t.Fatalf("distinct skolem universes must not compare equal")
	}
}

func TestTypeNameEqualAcrossVariants(t *testing.T) {
	item := itemName(1)
	skolem := ir.TypeNameForAll{Universe: ir.UniverseIndex{Counter: 1}}
	if fold.TypeNameEqual(item, skolem) {
		t.Fatalf("an item head must never equal a skolem head")
	}
}
