package infer_test

import (
	"reflect"
	"testing"

	"github.com/latticelang/traitcore/internal/infer"
	"github.com/latticelang/traitcore/internal/ir"
)

func TestMakeQueryTyRenumbersUnboundVariablesByFirstAppearance(t *testing.T) {
	table := infer.NewTable()
	a := table.NewTyVariable(ir.UniverseIndex{Counter: 2})
	b := table.NewTyVariable(ir.RootUniverse)
	// Reference b before a in the term: the canonical numbering follows
	// order of appearance in the walk, not allocation order.
	term := ir.TyApply{
		Name:   itemName(1),
		Params: []ir.Parameter{ir.TyParameter(b), ir.TyParameter(a)},
	}

	query, err := infer.MakeQueryTy(table, term)
	if err != nil {
		t.Fatalf("MakeQueryTy: %v", err)
	}
	got := query.Value.(ir.TyApply)
	if got.Params[0].TyVal.(ir.TyVar).Depth != 0 {
		t.Fatalf("first-appearing variable should canonicalize to index 0")
	}
	if got.Params[1].TyVal.(ir.TyVar).Depth != 1 {
		t.Fatalf("second-appearing variable should canonicalize to index 1")
	}
	if len(query.Binders) != 2 {
		t.Fatalf("expected 2 canonical binders, got %d", len(query.Binders))
	}
	if query.Binders[0].TyVal != ir.RootUniverse {
		t.Fatalf("canonical binder 0 should carry b's universe (root), got %v", query.Binders[0].TyVal)
	}
	if query.Binders[1].TyVal.Counter != 2 {
		t.Fatalf("canonical binder 1 should carry a's universe (2), got %v", query.Binders[1].TyVal)
	}
}

func TestMakeQueryTySameSetCanonicalizesToOneBinder(t *testing.T) {
	table := infer.NewTable()
	env := ir.NewRootEnvironment()
	a := table.NewTyVariable(ir.RootUniverse)
	b := table.NewTyVariable(ir.RootUniverse)
	if _, err := infer.UnifyTys(table, env, a, b); err != nil {
		t.Fatalf("UnifyTys: %v", err)
	}

	term := ir.TyApply{Name: itemName(1), Params: []ir.Parameter{ir.TyParameter(a), ir.TyParameter(b)}}
	query, err := infer.MakeQueryTy(table, term)
	if err != nil {
		t.Fatalf("MakeQueryTy: %v", err)
	}
	if len(query.Binders) != 1 {
		t.Fatalf("two variables in the same union-find set should canonicalize to a single binder, got %d", len(query.Binders))
	}
	got := query.Value.(ir.TyApply)
	if got.Params[0].TyVal.(ir.TyVar).Depth != got.Params[1].TyVal.(ir.TyVar).Depth {
		t.Fatalf("unioned variables must canonicalize to the same index")
	}
}

func TestMakeQueryTyInlinesBoundVariables(t *testing.T) {
	table := infer.NewTable()
	env := ir.NewRootEnvironment()
	v := table.NewTyVariable(ir.RootUniverse)
	concrete := ir.TyApply{Name: itemName(1)}
	if _, err := infer.UnifyTys(table, env, v, concrete); err != nil {
		t.Fatalf("UnifyTys: %v", err)
	}

	query, err := infer.MakeQueryTy(table, v)
	if err != nil {
		t.Fatalf("MakeQueryTy: %v", err)
	}
	if !reflect.DeepEqual(query.Value, ir.Ty(concrete)) {
		t.Fatalf("canonicalizing a bound variable should inline its binding, got %v", query.Value)
	}
	if len(query.Binders) != 0 {
		t.Fatalf("a fully bound term has no free variables left to bind, got %d", len(query.Binders))
	}
}
