package infer_test

import (
	"reflect"
	"testing"

	"github.com/latticelang/traitcore/internal/infer"
	"github.com/latticelang/traitcore/internal/ir"
)

func TestResolveTyDeepNormalizesChainedBindings(t *testing.T) {
	table := infer.NewTable()
	env := ir.NewRootEnvironment()
	inner := table.NewTyVariable(ir.RootUniverse)
	outer := table.NewTyVariable(ir.RootUniverse)
	concrete := ir.TyApply{Name: itemName(1)}

	if _, err := infer.UnifyTys(table, env, inner, concrete); err != nil {
		t.Fatalf("UnifyTys: %v", err)
	}
	wrapper := ir.TyApply{Name: itemName(2), Params: []ir.Parameter{ir.TyParameter(inner)}}
	if _, err := infer.UnifyTys(table, env, outer, wrapper); err != nil {
		t.Fatalf("UnifyTys: %v", err)
	}

	resolved, err := infer.ResolveTy(table, outer)
	if err != nil {
		t.Fatalf("ResolveTy: %v", err)
	}
	got := resolved.(ir.TyApply)
	if !reflect.DeepEqual(got.Params[0].TyVal, ir.Ty(concrete)) {
		t.Fatalf("ResolveTy did not recursively resolve the inner binding: got %v", got.Params[0].TyVal)
	}
}

func TestResolveTyLeavesUnboundVariablesAlone(t *testing.T) {
	table := infer.NewTable()
	v := table.NewTyVariable(ir.RootUniverse)

	resolved, err := infer.ResolveTy(table, v)
	if err != nil {
		t.Fatalf("ResolveTy: %v", err)
	}
	if resolved != ir.Ty(v) {
		t.Fatalf("an unbound variable should resolve to itself, got %v", resolved)
	}
}

func TestResolveConstraintNormalizesBothSidesAtReportTime(t *testing.T) {
	table := infer.NewTable()
	skolem := ir.LifetimeForAll{Universe: ir.UniverseIndex{Counter: 1}}
	v := table.NewLifetimeVariable(ir.RootUniverse)
	constraint := ir.LifetimeEqConstraint(v, skolem)

	resolved, err := infer.ResolveConstraint(table, constraint)
	if err != nil {
		t.Fatalf("ResolveConstraint: %v", err)
	}
	if resolved.B != ir.Lifetime(skolem) {
		t.Fatalf("ResolveConstraint changed the skolem side: got %v", resolved.B)
	}
	if resolved.A != ir.Lifetime(v) {
		t.Fatalf("an unbound lifetime variable should resolve to itself, got %v", resolved.A)
	}
}
