package program_test

import (
	"reflect"
	"testing"

	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program"
)

func TestSplitProjectionSeparatesTrailingTraitParams(t *testing.T) {
	prog := program.NewProgram()

	traitId := ir.NewItemId(1)
	prog.TraitData[traitId] = program.TraitDatum{
		Binders: ir.NewBinders([]ir.Kind{ir.TyKind()}, program.TraitDatumBound{
			TraitRef: ir.TraitRef{TraitId: traitId},
		}),
	}

	assocId := ir.NewItemId(2)
	prog.AssociatedTyData[assocId] = program.AssociatedTyDatum{
		TraitId:        traitId,
		Name:           ir.Intern("Item"),
		ParameterKinds: []ir.Kind{ir.TyKind()},
	}

	ownParam := ir.TyParameter(ir.TyApply{Name: ir.TypeNameItemId{Id: ir.NewItemId(3)}})
	selfParam := ir.TyParameter(ir.TyApply{Name: ir.TypeNameItemId{Id: ir.NewItemId(4)}})
	projection := ir.TyProjection{AssocId: assocId, Params: []ir.Parameter{ownParam, selfParam}}

	datum, traitParams, otherParams := prog.SplitProjection(projection)

	if datum.TraitId != traitId {
		t.Fatalf("SplitProjection returned datum for the wrong trait: %v", datum.TraitId)
	}
	if len(traitParams) != 1 || !reflect.DeepEqual(traitParams[0], selfParam) {
		t.Fatalf("expected the trailing parameter to belong to the trait, got %v", traitParams)
	}
	if len(otherParams) != 1 || !reflect.DeepEqual(otherParams[0], ownParam) {
		t.Fatalf("expected the leading parameter to belong to the associated type, got %v", otherParams)
	}
}

func TestSplitProjectionPanicsOnUnknownAssociatedType(t *testing.T) {
	prog := program.NewProgram()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic splitting a projection for an unregistered associated type")
		}
	}()
	prog.SplitProjection(ir.TyProjection{AssocId: ir.NewItemId(99)})
}

func TestSplitProjectionPanicsWhenParamsShorterThanTraitArity(t *testing.T) {
	prog := program.NewProgram()
	traitId := ir.NewItemId(1)
	prog.TraitData[traitId] = program.TraitDatum{
		Binders: ir.NewBinders([]ir.Kind{ir.TyKind(), ir.TyKind()}, program.TraitDatumBound{}),
	}
	assocId := ir.NewItemId(2)
	prog.AssociatedTyData[assocId] = program.AssociatedTyDatum{TraitId: traitId, Name: ir.Intern("Item")}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic when a projection carries fewer parameters than its trait requires")
		}
	}()
	prog.SplitProjection(ir.TyProjection{
		AssocId: assocId,
		Params:  []ir.Parameter{ir.TyParameter(ir.TyVar{Depth: 0})},
	})
}
