package ir

import (
	"fmt"
	"strings"
)

// Ty is the tagged sum of type terms (spec.md section 3.2). The four
// concrete implementations below are the only legal values.
type Ty interface {
	isTy()
	String() string
}

// TyVar is a de Bruijn reference at depth i. Inside an inference context a
// depth at or beyond the surrounding binders denotes an inference variable;
// otherwise it denotes a variable bound by an enclosing ForAll/Binders.
type TyVar struct{ Depth int }

func (TyVar) isTy() {}
func (t TyVar) String() string { return fmt.Sprintf("^%d", t.Depth) }

// TyApply is a nominal or projection-head application: a named type
// constructor (or skolem, or associated-type head) applied to parameters.
type TyApply struct {
	Name   TypeName
	Params []Parameter
}

func (TyApply) isTy() {}
func (t TyApply) String() string {
	if len(t.Params) == 0 {
		return t.Name.String()
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

// TyProjection is an unnormalized associated-type projection
// <params... as Trait>::assoc.
type TyProjection struct {
	AssocId ItemId
	Params  []Parameter
}

func (TyProjection) isTy() {}
func (t TyProjection) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("<%s as _>::%s", strings.Join(parts, ", "), t.AssocId)
}

// TyForAll is a higher-ranked type: NumBinders universal binders followed
// by Ty, referenced inside Ty via de Bruijn shifts.
type TyForAll struct {
	NumBinders int
	Ty         Ty
}

func (TyForAll) isTy() {}
func (t TyForAll) String() string {
	return fmt.Sprintf("forall<%d>. %s", t.NumBinders, t.Ty)
}

// TypeName is the head of a TyApply: a nominal item, a skolemized
// (rigid) universal parameter, or an associated-type head.
type TypeName interface {
	isTypeName()
	String() string
	// UniverseIndex is RootUniverse for ItemId/AssociatedType heads, and the
	// skolem's own universe for a ForAll head.
	UniverseIndex() UniverseIndex
}

type TypeNameItemId struct{ Id ItemId }

func (TypeNameItemId) isTypeName()               {}
func (n TypeNameItemId) String() string          { return n.Id.String() }
func (n TypeNameItemId) UniverseIndex() UniverseIndex { return RootUniverse }

// TypeNameForAll is a skolemized type parameter, introduced by opening a
// universal binder into a fresh universe.
type TypeNameForAll struct{ Universe UniverseIndex }

func (TypeNameForAll) isTypeName()      {}
func (n TypeNameForAll) String() string { return fmt.Sprintf("!%s", n.Universe) }
func (n TypeNameForAll) UniverseIndex() UniverseIndex {
	if n.Universe.Counter <= 0 {
		panic("skolem type name must carry a non-root universe")
	}
	return n.Universe
}

type TypeNameAssociatedType struct{ Id ItemId }

func (TypeNameAssociatedType) isTypeName()               {}
func (n TypeNameAssociatedType) String() string          { return n.Id.String() }
func (n TypeNameAssociatedType) UniverseIndex() UniverseIndex { return RootUniverse }

// Lifetime is Var(i) or ForAll(universe) (skolemized lifetime).
type Lifetime interface {
	isLifetime()
	String() string
}

type LifetimeVar struct{ Depth int }

func (LifetimeVar) isLifetime()      {}
func (l LifetimeVar) String() string { return fmt.Sprintf("'^%d", l.Depth) }

type LifetimeForAll struct{ Universe UniverseIndex }

func (LifetimeForAll) isLifetime()      {}
func (l LifetimeForAll) String() string { return fmt.Sprintf("'!%s", l.Universe) }

// Krate is Var(i) or Id(name).
type Krate interface {
	isKrate()
	String() string
}

type KrateVar struct{ Depth int }

func (KrateVar) isKrate()      {}
func (k KrateVar) String() string { return fmt.Sprintf("crate^%d", k.Depth) }

type KrateName struct{ Id KrateId }

func (KrateName) isKrate()      {}
func (k KrateName) String() string { return k.Id.String() }

func (p ParameterKind[T, L, C]) String() string {
	switch p.Tag {
	case ParamTy:
		return fmt.Sprint(p.TyVal)
	case ParamLifetime:
		return fmt.Sprint(p.LifetimeVal)
	case ParamKrate:
		return fmt.Sprint(p.KrateVal)
	default:
		return "?"
	}
}
