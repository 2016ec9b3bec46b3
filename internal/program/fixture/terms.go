package fixture

import (
	"fmt"

	"github.com/latticelang/traitcore/internal/ir"
)

// ParamDecl is a single entry in a parameter list — exactly one of its
// fields is meaningful, selected by which is non-nil/non-empty. A bare
// integer under `var` is the common case: a de Bruijn depth for whichever
// sort the surrounding context expects.
type ParamDecl struct {
	Var      *int         `yaml:"var,omitempty"`
	Ty       *TyDecl      `yaml:"ty,omitempty"`
	Lifetime *LifetimeDecl `yaml:"lifetime,omitempty"`
	Krate    *KrateDecl   `yaml:"krate,omitempty"`
}

func (d ParamDecl) build(b *builder) (ir.Parameter, error) {
	switch {
	case d.Ty != nil:
		t, err := d.Ty.build(b)
		if err != nil {
			return ir.Parameter{}, err
		}
		return ir.TyParameter(t), nil
	case d.Lifetime != nil:
		l, err := d.Lifetime.build(b)
		if err != nil {
			return ir.Parameter{}, err
		}
		return ir.LifetimeParameter(l), nil
	case d.Krate != nil:
		k, err := d.Krate.build(b)
		if err != nil {
			return ir.Parameter{}, err
		}
		return ir.KrateParameter(k), nil
	case d.Var != nil:
		return ir.TyParameter(ir.TyVar{Depth: *d.Var}), nil
	default:
		return ir.Parameter{}, fmt.Errorf("fixture: empty parameter declaration")
	}
}

func buildParams(b *builder, decls []ParamDecl) ([]ir.Parameter, error) {
	out := make([]ir.Parameter, len(decls))
	for i, d := range decls {
		p, err := d.build(b)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// LifetimeDecl is either a free variable at a literal de Bruijn depth or a
// skolemized universe.
type LifetimeDecl struct {
	Var      *int `yaml:"var,omitempty"`
	Universe *int `yaml:"universe,omitempty"`
}

func (d LifetimeDecl) build(b *builder) (ir.Lifetime, error) {
	switch {
	case d.Universe != nil:
		return ir.LifetimeForAll{Universe: ir.UniverseIndex{Counter: *d.Universe}}, nil
	case d.Var != nil:
		return ir.LifetimeVar{Depth: *d.Var}, nil
	default:
		return nil, fmt.Errorf("fixture: lifetime must name a var or a universe")
	}
}

// KrateDecl is either a free variable at a literal de Bruijn depth or a
// named crate.
type KrateDecl struct {
	Var  *int   `yaml:"var,omitempty"`
	Name string `yaml:"name,omitempty"`
}

func (d KrateDecl) build(b *builder) (ir.Krate, error) {
	switch {
	case d.Name != "":
		return ir.KrateName{Id: krateID(d.Name)}, nil
	case d.Var != nil:
		return ir.KrateVar{Depth: *d.Var}, nil
	default:
		return nil, fmt.Errorf("fixture: krate must name a var or a name")
	}
}

// ApplyDecl is a named type constructor applied to parameters: `Name<Params...>`.
type ApplyDecl struct {
	Name   string      `yaml:"name"`
	Params []ParamDecl `yaml:"params,omitempty"`
}

func (d ApplyDecl) build(b *builder) (ir.Ty, error) {
	params, err := buildParams(b, d.Params)
	if err != nil {
		return nil, err
	}
	return ir.TyApply{Name: ir.TypeNameItemId{Id: b.itemID(d.Name)}, Params: params}, nil
}

// ForallDecl is a higher-ranked type: `forall<n> Ty`, with Ty's own free
// variables at depth >= n denoting whatever the forall itself closes over.
type ForallDecl struct {
	NumBinders int     `yaml:"num_binders"`
	Ty         *TyDecl `yaml:"ty"`
}

func (d ForallDecl) build(b *builder) (ir.Ty, error) {
	if d.Ty == nil {
		return nil, fmt.Errorf("fixture: forall type requires ty")
	}
	inner, err := d.Ty.build(b)
	if err != nil {
		return nil, err
	}
	return ir.TyForAll{NumBinders: d.NumBinders, Ty: inner}, nil
}

// ProjectionDecl is an unnormalized associated-type projection:
// `Trait.Assoc<Params...>`, whatever extra parameters the associated type
// itself introduces followed by the trait's own parameters, which come last.
type ProjectionDecl struct {
	Assoc  string      `yaml:"assoc"`
	Params []ParamDecl `yaml:"params,omitempty"`
}

func (d ProjectionDecl) build(b *builder) (ir.Ty, error) {
	traitName, assocName, err := splitAssocRef(d.Assoc)
	if err != nil {
		return nil, err
	}
	params, err := buildParams(b, d.Params)
	if err != nil {
		return nil, err
	}
	return ir.TyProjection{AssocId: b.assocID(traitName, assocName), Params: params}, nil
}

// TyDecl is a type term: exactly one of Var (a literal de Bruijn depth),
// Apply, Projection, or Forall is set.
type TyDecl struct {
	Var        *int            `yaml:"var,omitempty"`
	Apply      *ApplyDecl      `yaml:"apply,omitempty"`
	Projection *ProjectionDecl `yaml:"projection,omitempty"`
	Forall     *ForallDecl     `yaml:"forall,omitempty"`
}

func (d TyDecl) build(b *builder) (ir.Ty, error) {
	switch {
	case d.Apply != nil:
		return d.Apply.build(b)
	case d.Projection != nil:
		return d.Projection.build(b)
	case d.Forall != nil:
		return d.Forall.build(b)
	case d.Var != nil:
		return ir.TyVar{Depth: *d.Var}, nil
	default:
		return nil, fmt.Errorf("fixture: empty type declaration")
	}
}

// TraitRefDecl names a trait applied to parameters: `Name<Params...>`, the
// first parameter conventionally standing for Self.
type TraitRefDecl struct {
	Name   string      `yaml:"name"`
	Params []ParamDecl `yaml:"params,omitempty"`
}

func (d TraitRefDecl) build(b *builder) (ir.TraitRef, error) {
	params, err := buildParams(b, d.Params)
	if err != nil {
		return ir.TraitRef{}, err
	}
	return ir.TraitRef{TraitId: b.itemID(d.Name), Params: params}, nil
}

// NormalizeDecl asserts that a projection normalizes to a concrete type.
type NormalizeDecl struct {
	Projection ProjectionDecl `yaml:"projection"`
	Ty         TyDecl         `yaml:"ty"`
}

func (d NormalizeDecl) build(b *builder) (ir.Normalize, error) {
	proj, err := d.Projection.build(b)
	if err != nil {
		return ir.Normalize{}, err
	}
	projection, ok := proj.(ir.TyProjection)
	if !ok {
		return ir.Normalize{}, fmt.Errorf("fixture: normalize projection must build to a projection type")
	}
	ty, err := d.Ty.build(b)
	if err != nil {
		return ir.Normalize{}, err
	}
	return ir.Normalize{Projection: projection, Ty: ty}, nil
}

// WhereClauseDecl is one of the two declarable positive where-clauses:
// `implemented` or `normalize`.
type WhereClauseDecl struct {
	Implemented *TraitRefDecl  `yaml:"implemented,omitempty"`
	Normalize   *NormalizeDecl `yaml:"normalize,omitempty"`
}

func (d WhereClauseDecl) build(b *builder) (ir.WhereClause, error) {
	switch {
	case d.Implemented != nil:
		ref, err := d.Implemented.build(b)
		if err != nil {
			return ir.WhereClause{}, err
		}
		return ir.Implemented(ref), nil
	case d.Normalize != nil:
		n, err := d.Normalize.build(b)
		if err != nil {
			return ir.WhereClause{}, err
		}
		return ir.NormalizeClause(n), nil
	default:
		return ir.WhereClause{}, fmt.Errorf("fixture: where-clause must be implemented or normalize")
	}
}
