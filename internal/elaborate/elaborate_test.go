package elaborate_test

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/latticelang/traitcore/internal/elaborate"
	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program"
	"github.com/latticelang/traitcore/internal/program/fixture"
)

func buildProgram(t *testing.T, text string) *program.Program {
	t.Helper()
	var doc fixture.Doc
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	prog, _, err := fixture.Build(doc)
	if err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	return prog
}

func findAssocId(t *testing.T, prog *program.Program, traitId ir.ItemId, name string) ir.ItemId {
	t.Helper()
	for id, datum := range prog.AssociatedTyData {
		if datum.TraitId == traitId && datum.Name == ir.Intern(name) {
			return id
		}
	}
	t.Fatalf("no associated type named %q on trait %v", name, traitId)
	return ir.ItemId{}
}

func TestClausesElaboratesSupertraitObligation(t *testing.T) {
	prog := buildProgram(t, `
traits:
  - name: Eq
  - name: PartialEq
    where:
      - implemented: {name: Eq, params: [{var: 0}]}
structs:
  - name: Foo
`)

	partialEqId := prog.TypeIds[ir.Intern("PartialEq")]
	eqId := prog.TypeIds[ir.Intern("Eq")]
	fooId := prog.TypeIds[ir.Intern("Foo")]

	fooTy := ir.TyParameter(ir.TyApply{Name: ir.TypeNameItemId{Id: fooId}})
	env := ir.NewRootEnvironment().AddClauses([]ir.WhereClause{
		ir.Implemented(ir.TraitRef{TraitId: partialEqId, Params: []ir.Parameter{fooTy}}),
	})

	clauses := elaborate.Clauses(env, prog)

	if !hasImplemented(clauses, eqId) {
		t.Fatalf("elaboration did not derive the Eq obligation implied by PartialEq's where-clause; got %v", clauses)
	}
	if !hasImplemented(clauses, partialEqId) {
		t.Fatalf("elaboration dropped the original PartialEq clause")
	}
}

func TestClausesDeduplicatesRepeatedDerivations(t *testing.T) {
	prog := buildProgram(t, `
traits:
  - name: A
    where:
      - implemented: {name: Eq, params: [{var: 0}]}
  - name: B
    where:
      - implemented: {name: Eq, params: [{var: 0}]}
  - name: Eq
structs:
  - name: Foo
`)

	aId := prog.TypeIds[ir.Intern("A")]
	bId := prog.TypeIds[ir.Intern("B")]
	eqId := prog.TypeIds[ir.Intern("Eq")]
	fooId := prog.TypeIds[ir.Intern("Foo")]
	fooTy := ir.TyParameter(ir.TyApply{Name: ir.TypeNameItemId{Id: fooId}})

	env := ir.NewRootEnvironment().AddClauses([]ir.WhereClause{
		ir.Implemented(ir.TraitRef{TraitId: aId, Params: []ir.Parameter{fooTy}}),
		ir.Implemented(ir.TraitRef{TraitId: bId, Params: []ir.Parameter{fooTy}}),
	})

	clauses := elaborate.Clauses(env, prog)

	count := 0
	for _, c := range clauses {
		if c.Tag == ir.WhereClauseImplemented && c.TraitRef.TraitId == eqId {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("Eq obligation reached from two traits should appear once in the closure, got %d times", count)
	}
}

func TestClausesProjectionImpliesImpl(t *testing.T) {
	prog := buildProgram(t, `
traits:
  - name: Iter
    assoc_types:
      - name: Item
structs:
  - name: Vec
    arity: 1
`)

	iterId := prog.TypeIds[ir.Intern("Iter")]
	vecId := prog.TypeIds[ir.Intern("Vec")]
	itemId := findAssocId(t, prog, iterId, "Item")

	projection := ir.TyProjection{
		AssocId: itemId,
		Params: []ir.Parameter{ir.TyParameter(ir.TyApply{
			Name:   ir.TypeNameItemId{Id: vecId},
			Params: []ir.Parameter{ir.TyParameter(ir.TyVar{Depth: 0})},
		})},
	}
	env := ir.NewRootEnvironment().AddClauses([]ir.WhereClause{
		ir.NormalizeClause(ir.Normalize{Projection: projection, Ty: ir.TyVar{Depth: 0}}),
	})

	clauses := elaborate.Clauses(env, prog)

	if !hasImplemented(clauses, iterId) {
		t.Fatalf("a Normalize clause should elaborate to its trait's Implemented obligation; got %v", clauses)
	}
}

func hasImplemented(clauses []ir.WhereClause, traitId ir.ItemId) bool {
	for _, c := range clauses {
		if c.Tag == ir.WhereClauseImplemented && c.TraitRef.TraitId == traitId {
			return true
		}
	}
	return false
}
