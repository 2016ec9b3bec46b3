package infer

import (
	"reflect"
	"testing"

	"github.com/latticelang/traitcore/internal/ir"
)

func TestNewTyVariableStartsUnbound(t *testing.T) {
	table := NewTable()
	v := table.NewTyVariable(ir.RootUniverse)

	if _, ok := table.NormalizeShallowTy(v); ok {
		t.Fatalf("a freshly created variable should not normalize to anything")
	}
}

func TestUnifyVarValueBindsAndNormalizeShallowSeesIt(t *testing.T) {
	table := NewTable()
	v := table.NewTyVariable(ir.RootUniverse)
	concrete := ir.TyApply{Name: ir.TypeNameItemId{Id: ir.NewItemId(1)}}

	table.ty.unifyVarValue(v.Depth, bound[ir.Ty](concrete))

	got, ok := table.NormalizeShallowTy(v)
	if !ok {
		t.Fatalf("expected the variable to normalize after binding")
	}
	if !reflect.DeepEqual(got, ir.Ty(concrete)) {
		t.Fatalf("NormalizeShallowTy = %v, want %v", got, concrete)
	}
}

func TestUnifyVarVarMergesSetsAndKeepsNarrowerUniverse(t *testing.T) {
	table := NewTable()
	shallow := ir.RootUniverse
	deep := ir.UniverseIndex{Counter: 3}

	a := table.NewTyVariable(deep)
	b := table.NewTyVariable(shallow)

	table.ty.unifyVarVar(a.Depth, b.Depth)

	if !table.ty.unioned(a.Depth, b.Depth) {
		t.Fatalf("expected a and b to be in the same union-find set")
	}
	merged := table.ty.probeValue(a.Depth)
	if merged.Bound {
		t.Fatalf("merging two unbound variables should not bind them")
	}
	if merged.Universe != shallow {
		t.Fatalf("merged universe = %v, want the narrower universe %v", merged.Universe, shallow)
	}
}

func TestUnifyVarVarPanicsOnAlreadyBoundVariable(t *testing.T) {
	table := NewTable()
	a := table.NewTyVariable(ir.RootUniverse)
	b := table.NewTyVariable(ir.RootUniverse)
	table.ty.unifyVarValue(a.Depth, bound[ir.Ty](ir.TyApply{Name: ir.TypeNameItemId{Id: ir.NewItemId(1)}}))

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic unioning a bound variable")
		}
	}()
	table.ty.unifyVarVar(a.Depth, b.Depth)
}

func TestSnapshotRollbackUndoesBindingsAndNewVariables(t *testing.T) {
	table := NewTable()
	before := table.NewTyVariable(ir.RootUniverse)

	snap := table.Snapshot()
	table.ty.unifyVarValue(before.Depth, bound[ir.Ty](ir.TyApply{Name: ir.TypeNameItemId{Id: ir.NewItemId(1)}}))
	_ = table.NewTyVariable(ir.RootUniverse)

	table.RollbackTo(snap)

	if _, ok := table.NormalizeShallowTy(before); ok {
		t.Fatalf("rollback should have undone the binding made after the snapshot")
	}
	if got := len(table.ty.parent); got != 1 {
		t.Fatalf("rollback should have discarded the variable allocated after the snapshot, got %d variables", got)
	}
}

func TestCommitKeepsChanges(t *testing.T) {
	table := NewTable()
	v := table.NewTyVariable(ir.RootUniverse)
	snap := table.Snapshot()
	concrete := ir.TyApply{Name: ir.TypeNameItemId{Id: ir.NewItemId(1)}}
	table.ty.unifyVarValue(v.Depth, bound[ir.Ty](concrete))
	table.Commit(snap)

	got, ok := table.NormalizeShallowTy(v)
	if !ok || !reflect.DeepEqual(got, ir.Ty(concrete)) {
		t.Fatalf("Commit should preserve the binding made under the snapshot")
	}
}

func TestRollbackOutOfOrderPanics(t *testing.T) {
	table := NewTable()
	outer := table.Snapshot()
	inner := table.Snapshot()
	_ = inner

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic rolling back out of LIFO order")
		}
	}()
	table.RollbackTo(outer)
}
