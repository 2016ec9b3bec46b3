// Package fixture decodes a lowered program, plus any number of named
// goals, from a small YAML-based surface syntax — the stand-in for the
// AST-to-IR lowering pass spec.md places out of scope. The decoded shapes
// mirror the engine's own IR directly: a struct or trait declaration
// becomes a TypeKind/StructDatum/TraitDatum entry, an impl becomes both
// its ImplDatum and the ProgramClause(s) it contributes, and free variable
// references inside a term are written as literal de Bruijn depths (the
// author's job, the same way a hand-written chalk test fixture writes
// `^0`/`^1` directly rather than through named binders).
package fixture

import (
	"fmt"

	"github.com/latticelang/traitcore/internal/fold"
	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program"
)

// KindDecl names one of the three parameter sorts in a YAML binder list.
type KindDecl string

const (
	KindTy       KindDecl = "ty"
	KindLifetime KindDecl = "lifetime"
	KindKrate    KindDecl = "krate"
)

func buildKind(k KindDecl) (ir.Kind, error) {
	switch k {
	case KindTy, "":
		return ir.TyKind(), nil
	case KindLifetime:
		return ir.LifetimeKind(), nil
	case KindKrate:
		return ir.KrateKind(), nil
	default:
		return ir.Kind{}, fmt.Errorf("fixture: unknown kind %q", k)
	}
}

func buildKinds(ks []KindDecl) ([]ir.Kind, error) {
	out := make([]ir.Kind, len(ks))
	for i, k := range ks {
		kind, err := buildKind(k)
		if err != nil {
			return nil, err
		}
		out[i] = kind
	}
	return out, nil
}

// builder resolves item/associated-type names to ir.ItemId values,
// allocating a fresh id on first mention so declarations and references
// may appear in either order within a Doc.
type builder struct {
	nextID uint64
	types  map[string]ir.ItemId
	assocs map[string]ir.ItemId
}

func newBuilder() *builder {
	return &builder{types: make(map[string]ir.ItemId), assocs: make(map[string]ir.ItemId)}
}

func (b *builder) itemID(name string) ir.ItemId {
	if id, ok := b.types[name]; ok {
		return id
	}
	id := ir.NewItemId(b.nextID)
	b.nextID++
	b.types[name] = id
	return id
}

func (b *builder) assocID(traitName, assocName string) ir.ItemId {
	key := traitName + "." + assocName
	if id, ok := b.assocs[key]; ok {
		return id
	}
	id := ir.NewItemId(b.nextID)
	b.nextID++
	b.assocs[key] = id
	return id
}

func krateID(name string) ir.KrateId {
	if name == "" {
		name = "fixture"
	}
	return ir.KrateId{Name: ir.Intern(name)}
}

// identityTyParams builds the parameter list a declared item's own
// TraitRef/SelfTy uses to refer to its own binders in declaration order:
// the j'th declared parameter is read back at de Bruijn depth n-1-j, per
// Binders[T]'s "index i denotes Kinds[len(Kinds)-1-i]" convention.
func identityTyParams(n int) []ir.Parameter {
	params := make([]ir.Parameter, n)
	for j := 0; j < n; j++ {
		params[j] = ir.TyParameter(ir.TyVar{Depth: n - 1 - j})
	}
	return params
}

// Doc is the top-level decoded shape of one fixture document.
type Doc struct {
	Structs []StructDecl        `yaml:"structs,omitempty"`
	Traits  []TraitDecl         `yaml:"traits,omitempty"`
	Impls   []ImplDecl          `yaml:"impls,omitempty"`
	Clauses []ClauseDecl        `yaml:"clauses,omitempty"`
	Goals   map[string]GoalDecl `yaml:"goals,omitempty"`
}

type StructDecl struct {
	Name         string            `yaml:"name"`
	Krate        string            `yaml:"krate,omitempty"`
	Arity        int               `yaml:"arity,omitempty"`
	WhereClauses []WhereClauseDecl `yaml:"where,omitempty"`
}

type AssocTypeDecl struct {
	Name         string            `yaml:"name"`
	ExtraKinds   []KindDecl        `yaml:"extra_kinds,omitempty"`
	WhereClauses []WhereClauseDecl `yaml:"where,omitempty"`
}

type TraitDecl struct {
	Name         string            `yaml:"name"`
	Krate        string            `yaml:"krate,omitempty"`
	Arity        int               `yaml:"arity,omitempty"`
	WhereClauses []WhereClauseDecl `yaml:"where,omitempty"`
	AssocTypes   []AssocTypeDecl   `yaml:"assoc_types,omitempty"`
}

type AssocValueDecl struct {
	Assoc        string            `yaml:"assoc"`
	ExtraKinds   []KindDecl        `yaml:"extra_kinds,omitempty"`
	Ty           TyDecl            `yaml:"ty"`
	WhereClauses []WhereClauseDecl `yaml:"where,omitempty"`
}

type ImplDecl struct {
	Krate        string            `yaml:"krate,omitempty"`
	Kinds        []KindDecl        `yaml:"kinds,omitempty"`
	Trait        TraitRefDecl      `yaml:"trait"`
	WhereClauses []WhereClauseDecl `yaml:"where,omitempty"`
	AssocValues  []AssocValueDecl  `yaml:"assoc_values,omitempty"`
}

// ClauseDecl declares a raw program clause directly, for cases (like a
// deliberately self-referential trait) that don't arise from ordinary
// impl compilation.
type ClauseDecl struct {
	Kinds       []KindDecl   `yaml:"kinds,omitempty"`
	Consequence LeafGoalDecl `yaml:"consequence"`
	Conditions  []GoalDecl   `yaml:"conditions,omitempty"`
}

// Build decodes doc into a lowered Program plus its named goals, each
// closed over the root environment.
func Build(doc Doc) (*program.Program, map[string]ir.InEnvironment[*ir.Goal], error) {
	b := newBuilder()
	prog := program.NewProgram()

	for _, s := range doc.Structs {
		b.itemID(s.Name)
	}
	for _, t := range doc.Traits {
		b.itemID(t.Name)
		for _, a := range t.AssocTypes {
			b.assocID(t.Name, a.Name)
		}
	}

	for _, s := range doc.Structs {
		if err := b.buildStruct(prog, s); err != nil {
			return nil, nil, fmt.Errorf("fixture: struct %s: %w", s.Name, err)
		}
	}
	for _, t := range doc.Traits {
		if err := b.buildTrait(prog, t); err != nil {
			return nil, nil, fmt.Errorf("fixture: trait %s: %w", t.Name, err)
		}
	}
	for i, impl := range doc.Impls {
		if err := b.buildImpl(prog, impl); err != nil {
			return nil, nil, fmt.Errorf("fixture: impl[%d]: %w", i, err)
		}
	}
	for i, c := range doc.Clauses {
		clause, err := b.buildProgramClause(c)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture: clauses[%d]: %w", i, err)
		}
		prog.ProgramClauses = append(prog.ProgramClauses, clause)
	}

	goals := make(map[string]ir.InEnvironment[*ir.Goal], len(doc.Goals))
	for name, gd := range doc.Goals {
		g, err := b.buildGoal(gd)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture: goal %s: %w", name, err)
		}
		goals[name] = ir.NewInEnvironment(ir.NewRootEnvironment(), g)
	}

	return prog, goals, nil
}

func (b *builder) buildStruct(prog *program.Program, s StructDecl) error {
	id := b.itemID(s.Name)
	kinds := make([]ir.Kind, s.Arity)
	for i := range kinds {
		kinds[i] = ir.TyKind()
	}
	prog.TypeIds[ir.Intern(s.Name)] = id
	prog.TypeKinds[id] = program.TypeKind{
		Sort:    program.TypeSortStruct,
		KrateId: krateID(s.Krate),
		Name:    ir.Intern(s.Name),
		Binders: ir.NewBinders[struct{}](kinds, struct{}{}),
	}

	wc, err := b.buildWhereClauses(s.WhereClauses)
	if err != nil {
		return err
	}
	selfTy := ir.TyApply{Name: ir.TypeNameItemId{Id: id}, Params: identityTyParams(s.Arity)}
	prog.StructData[id] = program.StructDatum{
		KrateId: krateID(s.Krate),
		Binders: ir.NewBinders(kinds, program.StructDatumBound{SelfTy: selfTy, WhereClauses: wc}),
	}
	return nil
}

func (b *builder) buildTrait(prog *program.Program, t TraitDecl) error {
	id := b.itemID(t.Name)
	total := t.Arity + 1 // Self plus declared generics
	kinds := make([]ir.Kind, total)
	for i := range kinds {
		kinds[i] = ir.TyKind()
	}
	prog.TypeIds[ir.Intern(t.Name)] = id
	prog.TypeKinds[id] = program.TypeKind{
		Sort:    program.TypeSortTrait,
		KrateId: krateID(t.Krate),
		Name:    ir.Intern(t.Name),
		Binders: ir.NewBinders[struct{}](kinds, struct{}{}),
	}

	wc, err := b.buildWhereClauses(t.WhereClauses)
	if err != nil {
		return err
	}
	traitRef := ir.TraitRef{TraitId: id, Params: identityTyParams(total)}
	prog.TraitData[id] = program.TraitDatum{
		KrateId: krateID(t.Krate),
		Binders: ir.NewBinders(kinds, program.TraitDatumBound{TraitRef: traitRef, WhereClauses: wc}),
	}

	for _, a := range t.AssocTypes {
		assocID := b.assocID(t.Name, a.Name)
		extraKinds, err := buildKinds(a.ExtraKinds)
		if err != nil {
			return err
		}
		awc, err := b.buildWhereClauses(a.WhereClauses)
		if err != nil {
			return err
		}
		prog.AssociatedTyData[assocID] = program.AssociatedTyDatum{
			TraitId:        id,
			Name:           ir.Intern(a.Name),
			ParameterKinds: append(append([]ir.Kind(nil), kinds...), extraKinds...),
			WhereClauses:   awc,
		}
	}
	return nil
}

func (b *builder) buildImpl(prog *program.Program, decl ImplDecl) error {
	kinds, err := buildKinds(decl.Kinds)
	if err != nil {
		return err
	}
	traitRef, err := decl.Trait.build(b)
	if err != nil {
		return err
	}
	wc, err := b.buildWhereClauses(decl.WhereClauses)
	if err != nil {
		return err
	}

	var values []program.AssociatedTyValue
	for _, av := range decl.AssocValues {
		traitName, assocName, err := splitAssocRef(av.Assoc)
		if err != nil {
			return err
		}
		assocID := b.assocID(traitName, assocName)
		extraKinds, err := buildKinds(av.ExtraKinds)
		if err != nil {
			return err
		}
		ty, err := av.Ty.build(b)
		if err != nil {
			return err
		}
		vwc, err := b.buildWhereClauses(av.WhereClauses)
		if err != nil {
			return err
		}
		values = append(values, program.AssociatedTyValue{
			AssociatedTyId: assocID,
			Value: ir.NewBinders(extraKinds, program.AssociatedTyValueBound{
				Ty:           ty,
				WhereClauses: vwc,
			}),
		})
	}

	impl := program.ImplDatum{
		KrateId: krateID(decl.Krate),
		Binders: ir.NewBinders(kinds, program.ImplDatumBound{
			TraitRef:           traitRef,
			WhereClauses:       wc,
			AssociatedTyValues: values,
		}),
	}
	id := ir.NewItemId(b.nextID)
	b.nextID++
	prog.ImplData[id] = impl

	conditions := make([]*ir.Goal, len(wc))
	for i, w := range wc {
		conditions[i] = ir.LeafGoal(asGoalLeaf(w))
	}
	consequence := ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: traitRef}
	prog.ProgramClauses = append(prog.ProgramClauses, ir.NewBinders(kinds, ir.ProgramClauseImplication{
		Consequence: consequence,
		Conditions:  conditions,
	}))

	for _, av := range values {
		extra := len(av.Value.Kinds)
		allKinds := append(append([]ir.Kind(nil), kinds...), av.Value.Kinds...)

		// The impl's own where-clauses and trait reference were built as if
		// they sat directly inside the impl's Binders; here they are nested
		// one layer deeper, under the associated type's own (usually empty)
		// extra binders, so every reference into the impl's parameters needs
		// shifting outward by however many extra binders now sit between.
		shiftedTraitParams := make([]ir.Parameter, len(traitRef.Params))
		for i, p := range traitRef.Params {
			shiftedTraitParams[i] = fold.ShiftParameter(p, extra)
		}
		shiftedConditions := make([]*ir.Goal, len(conditions))
		for i, c := range conditions {
			shiftedConditions[i] = fold.ShiftGoal(c, extra)
		}
		// SplitProjection recovers the trait's own parameters from the
		// trailing slots of Params, so they must come last here.
		extraParams := identityTyParams(extra)
		normalize := ir.Normalize{
			Projection: ir.TyProjection{AssocId: av.AssociatedTyId, Params: append(extraParams, shiftedTraitParams...)},
			Ty:         av.Value.Value.Ty,
		}
		allConditions := append(shiftedConditions, goalsFromWhereClauses(av.Value.Value.WhereClauses)...)
		prog.ProgramClauses = append(prog.ProgramClauses, ir.NewBinders(allKinds, ir.ProgramClauseImplication{
			Consequence: ir.WhereClauseGoal{Tag: ir.GoalNormalize, Normalize: normalize},
			Conditions:  allConditions,
		}))
	}
	return nil
}

func goalsFromWhereClauses(wc []ir.WhereClause) []*ir.Goal {
	goals := make([]*ir.Goal, len(wc))
	for i, w := range wc {
		goals[i] = ir.LeafGoal(asGoalLeaf(w))
	}
	return goals
}

func splitAssocRef(ref string) (trait, assoc string, err error) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("fixture: associated type reference %q must be \"Trait.Name\"", ref)
}

func (b *builder) buildProgramClause(c ClauseDecl) (ir.ProgramClause, error) {
	kinds, err := buildKinds(c.Kinds)
	if err != nil {
		return ir.ProgramClause{}, err
	}
	consequence, err := c.Consequence.build(b)
	if err != nil {
		return ir.ProgramClause{}, err
	}
	conditions := make([]*ir.Goal, len(c.Conditions))
	for i, cond := range c.Conditions {
		g, err := cond.build(b)
		if err != nil {
			return ir.ProgramClause{}, err
		}
		conditions[i] = g
	}
	return ir.NewBinders(kinds, ir.ProgramClauseImplication{Consequence: consequence, Conditions: conditions}), nil
}

func (b *builder) buildWhereClauses(decls []WhereClauseDecl) ([]ir.WhereClause, error) {
	out := make([]ir.WhereClause, len(decls))
	for i, d := range decls {
		w, err := d.build(b)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (b *builder) buildGoal(g GoalDecl) (*ir.Goal, error) { return g.build(b) }

// asGoalLeaf converts a declarable WhereClause to the leaf-goal form
// program clauses and conditions are built from.
func asGoalLeaf(w ir.WhereClause) ir.WhereClauseGoal {
	switch w.Tag {
	case ir.WhereClauseImplemented:
		return ir.WhereClauseGoal{Tag: ir.GoalImplemented, TraitRef: w.TraitRef}
	case ir.WhereClauseNormalize:
		return ir.WhereClauseGoal{Tag: ir.GoalNormalize, Normalize: w.Normalize}
	default:
		panic("fixture: unknown where-clause tag")
	}
}
