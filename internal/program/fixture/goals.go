package fixture

import (
	"fmt"

	"github.com/latticelang/traitcore/internal/ir"
)

// UnifyDecl is a leaf equality goal between two type terms.
type UnifyDecl struct {
	A TyDecl `yaml:"a"`
	B TyDecl `yaml:"b"`
}

func (d UnifyDecl) build(b *builder) (ir.UnifyTys, error) {
	a, err := d.A.build(b)
	if err != nil {
		return ir.UnifyTys{}, err
	}
	bb, err := d.B.build(b)
	if err != nil {
		return ir.UnifyTys{}, err
	}
	return ir.UnifyTys{A: a, B: bb}, nil
}

// UnifyLifetimesDecl is a leaf equality goal between two lifetimes.
type UnifyLifetimesDecl struct {
	A LifetimeDecl `yaml:"a"`
	B LifetimeDecl `yaml:"b"`
}

func (d UnifyLifetimesDecl) build(b *builder) (ir.UnifyLifetimes, error) {
	a, err := d.A.build(b)
	if err != nil {
		return ir.UnifyLifetimes{}, err
	}
	bb, err := d.B.build(b)
	if err != nil {
		return ir.UnifyLifetimes{}, err
	}
	return ir.UnifyLifetimes{A: a, B: bb}, nil
}

// NotDecl is a negated leaf goal, scoped to the crate under which
// non-implementation is asserted.
type NotDecl struct {
	Krate       string         `yaml:"krate,omitempty"`
	Implemented *TraitRefDecl  `yaml:"implemented,omitempty"`
	Normalize   *NormalizeDecl `yaml:"normalize,omitempty"`
	Unify       *UnifyDecl     `yaml:"unify,omitempty"`
}

func (d NotDecl) build(b *builder) (ir.WhereClauseGoal, error) {
	krate := krateID(d.Krate)
	switch {
	case d.Implemented != nil:
		ref, err := d.Implemented.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalNotTraitRef, TraitRef: ref, NotKrate: krate}, nil
	case d.Normalize != nil:
		n, err := d.Normalize.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalNotNormalize, Normalize: n, NotKrate: krate}, nil
	case d.Unify != nil:
		u, err := d.Unify.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalNotUnifyTys, UnifyTys: u, NotKrate: krate}, nil
	default:
		return ir.WhereClauseGoal{}, fmt.Errorf("fixture: not-goal must name implemented, normalize, or unify")
	}
}

// LeafGoalDecl is any of the leaf goal forms the solver addresses directly.
// Exactly one field should be set.
type LeafGoalDecl struct {
	Implemented    *TraitRefDecl       `yaml:"implemented,omitempty"`
	Normalize      *NormalizeDecl      `yaml:"normalize,omitempty"`
	Unify          *UnifyDecl          `yaml:"unify,omitempty"`
	UnifyLifetimes *UnifyLifetimesDecl `yaml:"unify_lifetimes,omitempty"`
	WellFormedTy   *TyDecl             `yaml:"well_formed_ty,omitempty"`
	WellFormed   *TraitRefDecl  `yaml:"well_formed,omitempty"`
	LocalTo      *struct {
		Ty    TyDecl `yaml:"ty"`
		Krate string `yaml:"krate"`
	} `yaml:"local_to,omitempty"`
	Not *NotDecl `yaml:"not,omitempty"`
}

func (d LeafGoalDecl) build(b *builder) (ir.WhereClauseGoal, error) {
	switch {
	case d.Implemented != nil:
		ref, err := d.Implemented.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: ref}, nil
	case d.Normalize != nil:
		n, err := d.Normalize.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalNormalize, Normalize: n}, nil
	case d.Unify != nil:
		u, err := d.Unify.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalUnifyTys, UnifyTys: u}, nil
	case d.UnifyLifetimes != nil:
		u, err := d.UnifyLifetimes.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalUnifyLifetimes, UnifyLifetimes: u}, nil
	case d.WellFormedTy != nil:
		t, err := d.WellFormedTy.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalWellFormedTy, WellFormed: t}, nil
	case d.WellFormed != nil:
		ref, err := d.WellFormed.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalWellFormedTraitRef, TraitRef: ref}, nil
	case d.LocalTo != nil:
		t, err := d.LocalTo.Ty.build(b)
		if err != nil {
			return ir.WhereClauseGoal{}, err
		}
		return ir.WhereClauseGoal{Tag: ir.GoalTyLocalTo, TyLocalTo: ir.TyLocalTo{Ty: t, Krate: krateID(d.LocalTo.Krate)}}, nil
	case d.Not != nil:
		return d.Not.build(b)
	default:
		return ir.WhereClauseGoal{}, fmt.Errorf("fixture: empty leaf goal declaration")
	}
}

// ImpliesDecl is `clauses... => goal`: the clauses are assumed true while
// proving goal; they are added to the ambient environment, whose universe
// is left unchanged.
type ImpliesDecl struct {
	Clauses []WhereClauseDecl `yaml:"clauses"`
	Goal    *GoalDecl         `yaml:"goal"`
}

func (d ImpliesDecl) build(b *builder) (*ir.Goal, error) {
	if d.Goal == nil {
		return nil, fmt.Errorf("fixture: implies goal requires goal")
	}
	clauses := make([]ir.WhereClause, len(d.Clauses))
	for i, c := range d.Clauses {
		w, err := c.build(b)
		if err != nil {
			return nil, err
		}
		clauses[i] = w
	}
	inner, err := d.Goal.build(b)
	if err != nil {
		return nil, err
	}
	return ir.ImpliesGoalNode(clauses, inner), nil
}

// QuantDecl is `forall<kinds...> goal` or `exists<kinds...> goal`.
type QuantDecl struct {
	Kind  string    `yaml:"kind"`
	Kinds []KindDecl `yaml:"kinds,omitempty"`
	Goal  *GoalDecl `yaml:"goal"`
}

func (d QuantDecl) build(b *builder) (*ir.Goal, error) {
	if d.Goal == nil {
		return nil, fmt.Errorf("fixture: quantified goal requires goal")
	}
	var kind ir.QuantifierKind
	switch d.Kind {
	case "forall", "":
		kind = ir.QuantForAll
	case "exists":
		kind = ir.QuantExists
	default:
		return nil, fmt.Errorf("fixture: unknown quantifier kind %q", d.Kind)
	}
	kinds, err := buildKinds(d.Kinds)
	if err != nil {
		return nil, err
	}
	inner, err := d.Goal.build(b)
	if err != nil {
		return nil, err
	}
	return ir.QuantifiedGoal(kind, ir.NewBinders(kinds, inner)), nil
}

// AndDecl is the conjunction of two goals.
type AndDecl struct {
	Left  *GoalDecl `yaml:"left"`
	Right *GoalDecl `yaml:"right"`
}

func (d AndDecl) build(b *builder) (*ir.Goal, error) {
	if d.Left == nil || d.Right == nil {
		return nil, fmt.Errorf("fixture: and-goal requires left and right")
	}
	left, err := d.Left.build(b)
	if err != nil {
		return nil, err
	}
	right, err := d.Right.build(b)
	if err != nil {
		return nil, err
	}
	return ir.AndGoal(left, right), nil
}

// GoalDecl is the recursive goal algebra: a leaf, a conjunction, an
// implication, or a quantifier. Exactly one field should be set.
type GoalDecl struct {
	Leaf    *LeafGoalDecl `yaml:"leaf,omitempty"`
	And     *AndDecl      `yaml:"and,omitempty"`
	Implies *ImpliesDecl  `yaml:"implies,omitempty"`
	Quant   *QuantDecl    `yaml:"quant,omitempty"`

	// Shorthand forms so a YAML document doesn't have to wrap every leaf
	// goal in `leaf: {...}`.
	Implemented    *TraitRefDecl       `yaml:"implemented,omitempty"`
	Normalize      *NormalizeDecl      `yaml:"normalize,omitempty"`
	Unify          *UnifyDecl          `yaml:"unify,omitempty"`
	UnifyLifetimes *UnifyLifetimesDecl `yaml:"unify_lifetimes,omitempty"`
}

func (d GoalDecl) build(b *builder) (*ir.Goal, error) {
	switch {
	case d.Leaf != nil:
		leaf, err := d.Leaf.build(b)
		if err != nil {
			return nil, err
		}
		return ir.LeafGoal(leaf), nil
	case d.And != nil:
		return d.And.build(b)
	case d.Implies != nil:
		return d.Implies.build(b)
	case d.Quant != nil:
		return d.Quant.build(b)
	case d.Implemented != nil:
		ref, err := d.Implemented.build(b)
		if err != nil {
			return nil, err
		}
		return ir.LeafGoal(ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: ref}), nil
	case d.Normalize != nil:
		n, err := d.Normalize.build(b)
		if err != nil {
			return nil, err
		}
		return ir.LeafGoal(ir.WhereClauseGoal{Tag: ir.GoalNormalize, Normalize: n}), nil
	case d.Unify != nil:
		u, err := d.Unify.build(b)
		if err != nil {
			return nil, err
		}
		return ir.LeafGoal(ir.WhereClauseGoal{Tag: ir.GoalUnifyTys, UnifyTys: u}), nil
	case d.UnifyLifetimes != nil:
		u, err := d.UnifyLifetimes.build(b)
		if err != nil {
			return nil, err
		}
		return ir.LeafGoal(ir.WhereClauseGoal{Tag: ir.GoalUnifyLifetimes, UnifyLifetimes: u}), nil
	default:
		return nil, fmt.Errorf("fixture: empty goal declaration")
	}
}
