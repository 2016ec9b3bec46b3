// Package program holds the lowered-program types that sit at the
// engine's consumed boundary (spec.md section 6.1): the AST-to-IR lowering
// pass itself is out of scope, but the solver needs somewhere to look up a
// trait's where-clauses, an impl's bound, or an associated type's defining
// trait. internal/program/fixture stands in for the missing lowering pass
// in tests and the CLI by decoding this shape from a plain-text format.
package program

import "github.com/latticelang/traitcore/internal/ir"

// TypeSort discriminates a TypeKind entry.
type TypeSort int

const (
	TypeSortStruct TypeSort = iota
	TypeSortTrait
)

// TypeKind records a struct or trait's name, defining crate, and arity —
// everything needed to pretty-print or well-formedness-check a reference
// to it, without the trait or impl bodies themselves.
type TypeKind struct {
	Sort    TypeSort
	KrateId ir.KrateId
	Name    ir.Identifier
	Binders ir.Binders[struct{}]
}

// ImplDatum is a lowered `impl<P...> Trait<Args...> for SelfTy where WC { ... }`.
type ImplDatum struct {
	KrateId ir.KrateId
	Binders ir.Binders[ImplDatumBound]
}

type ImplDatumBound struct {
	TraitRef           ir.TraitRef
	WhereClauses       []ir.WhereClause
	AssociatedTyValues []AssociatedTyValue
}

// StructDatum is a lowered `struct S<P...> where WC { ... }`.
type StructDatum struct {
	KrateId ir.KrateId
	Binders ir.Binders[StructDatumBound]
}

type StructDatumBound struct {
	SelfTy       ir.TyApply
	WhereClauses []ir.WhereClause
}

// TraitDatum is a lowered `trait Trait<P...> where WC { ... }`.
type TraitDatum struct {
	KrateId ir.KrateId
	Binders ir.Binders[TraitDatumBound]
}

type TraitDatumBound struct {
	TraitRef     ir.TraitRef
	WhereClauses []ir.WhereClause
}

// AssociatedTyDatum is a lowered `type Assoc<P...>;` declaration inside a
// trait. ParameterKinds begins with the enclosing trait's own parameters
// followed by any parameters introduced by the associated type itself —
// the split SplitProjection recovers.
type AssociatedTyDatum struct {
	TraitId        ir.ItemId
	Name           ir.Identifier
	ParameterKinds []ir.Kind
	WhereClauses   []ir.WhereClause
}

// AssociatedTyValue is a lowered `type Assoc<P...> = Ty where WC;` inside
// an impl, binding an associated type to a concrete definition. Its
// Binders are in addition to the enclosing impl's own.
type AssociatedTyValue struct {
	AssociatedTyId ir.ItemId
	Value          ir.Binders[AssociatedTyValueBound]
}

type AssociatedTyValueBound struct {
	Ty           ir.Ty
	WhereClauses []ir.WhereClause
}

// Program is the complete lowered program: every declared item plus the
// compiled program clauses derived from them (spec.md section 6.1).
type Program struct {
	TypeIds          map[ir.Identifier]ir.ItemId
	TypeKinds        map[ir.ItemId]TypeKind
	ImplData         map[ir.ItemId]ImplDatum
	TraitData        map[ir.ItemId]TraitDatum
	StructData       map[ir.ItemId]StructDatum
	AssociatedTyData map[ir.ItemId]AssociatedTyDatum
	ProgramClauses   []ir.ProgramClause
}

// NewProgram returns an empty program, ready to be populated by a loader.
func NewProgram() *Program {
	return &Program{
		TypeIds:          make(map[ir.Identifier]ir.ItemId),
		TypeKinds:        make(map[ir.ItemId]TypeKind),
		ImplData:         make(map[ir.ItemId]ImplDatum),
		TraitData:        make(map[ir.ItemId]TraitDatum),
		StructData:       make(map[ir.ItemId]StructDatum),
		AssociatedTyData: make(map[ir.ItemId]AssociatedTyDatum),
	}
}

// SplitProjection splits a projection's parameter list into the
// parameters belonging to the defining trait and whatever extra
// parameters the associated type itself introduces, using the trait's
// arity recorded in TraitData. The trailing len(trait.Binders) parameters
// belong to the trait; everything before them belongs to the associated
// type (spec.md's supplemented split_projection, needed by elaboration's
// projection-implies-impl rule and by leaf solving's Normalize matching).
func (p *Program) SplitProjection(projection ir.TyProjection) (datum AssociatedTyDatum, traitParams, otherParams []ir.Parameter) {
	datum, ok := p.AssociatedTyData[projection.AssocId]
	if !ok {
		panic("program: projection references an unknown associated type")
	}
	traitDatum, ok := p.TraitData[datum.TraitId]
	if !ok {
		panic("program: associated type references an unknown trait")
	}
	traitNumParams := traitDatum.Binders.Len()
	splitPoint := len(projection.Params) - traitNumParams
	if splitPoint < 0 {
		panic("program: projection has fewer parameters than its trait requires")
	}
	otherParams = projection.Params[:splitPoint]
	traitParams = projection.Params[splitPoint:]
	return datum, traitParams, otherParams
}
