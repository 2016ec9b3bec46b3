package fold

import (
	"fmt"

	"github.com/latticelang/traitcore/internal/ir"
)

// NoMatchError is returned by the Zip* functions when two terms differ
// structurally at a point the Zipper was never consulted about — different
// TypeNames, mismatched parameter-list lengths, mismatched trait ids. The
// unifier's own Zipper implementation turns mismatches like these into a
// richer UnificationMismatchError; NoMatchError is the generic signal the
// structural walk itself raises.
type NoMatchError struct {
	A, B fmt.Stringer
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("structural mismatch: %s vs %s", e.A, e.B)
}

// Zipper is consulted at every leaf Ty/Lifetime/Krate pair encountered
// while walking two terms in lockstep. The unifier implements Zipper by
// routing each hook to its own unify_ty_ty/unify_lifetime_lifetime/
// unify_krate_krate; a pure structural-equality check can implement it by
// just comparing the two arguments for equality and returning NoMatchError
// otherwise.
type Zipper interface {
	ZipTys(a, b ir.Ty) error
	ZipLifetimes(a, b ir.Lifetime) error
	ZipKrates(a, b ir.Krate) error
}

// ZipParameter dispatches a or b's shared kind to the matching Zipper hook.
func ZipParameter(z Zipper, a, b ir.Parameter) error {
	if a.Tag != b.Tag {
		return &NoMatchError{A: a, B: b}
	}
	switch a.Tag {
	case ir.ParamTy:
		return z.ZipTys(a.TyVal, b.TyVal)
	case ir.ParamLifetime:
		return z.ZipLifetimes(a.LifetimeVal, b.LifetimeVal)
	case ir.ParamKrate:
		return z.ZipKrates(a.KrateVal, b.KrateVal)
	default:
		panic("fold.ZipParameter: unknown parameter tag")
	}
}

// ZipParameters zips two parameter lists pairwise, failing with NoMatchError
// on any length mismatch.
func ZipParameters(z Zipper, as, bs []ir.Parameter) error {
	if len(as) != len(bs) {
		return &NoMatchError{A: paramList(as), B: paramList(bs)}
	}
	for i := range as {
		if err := ZipParameter(z, as[i], bs[i]); err != nil {
			return err
		}
	}
	return nil
}

type paramList []ir.Parameter

func (p paramList) String() string { return joinParamList(p) }

func joinParamList(ps []ir.Parameter) string {
	s := ""
	for i, p := range ps {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s
}

// ZipApplication zips two TyApply nodes: their TypeNames must compare
// equal before any parameter is zipped, matching chalk's rule that
// application heads never unify across different TypeNames (aliases are
// unwrapped to a concrete TypeName before this is ever reached).
func ZipApplication(z Zipper, a, b ir.TyApply) error {
	if !TypeNameEqual(a.Name, b.Name) {
		return &NoMatchError{A: a, B: b}
	}
	return ZipParameters(z, a.Params, b.Params)
}

// ZipProjection zips two TyProjection nodes: same associated-type item,
// same parameter list shape.
func ZipProjection(z Zipper, a, b ir.TyProjection) error {
	if a.AssocId != b.AssocId {
		return &NoMatchError{A: a, B: b}
	}
	return ZipParameters(z, a.Params, b.Params)
}

// ZipTraitRef zips two trait references: same trait item, same parameters.
func ZipTraitRef(z Zipper, a, b ir.TraitRef) error {
	if a.TraitId != b.TraitId {
		return &NoMatchError{A: a, B: b}
	}
	return ZipParameters(z, a.Params, b.Params)
}

// TypeNameEqual reports whether two TypeNames denote the same constructor.
// ForAll(u1) and ForAll(u2) compare equal only when u1 == u2: two distinct
// skolem constants are, by construction, distinct types.
func TypeNameEqual(a, b ir.TypeName) bool {
	switch av := a.(type) {
	case ir.TypeNameItemId:
		bv, ok := b.(ir.TypeNameItemId)
		return ok && av.Id == bv.Id
	case ir.TypeNameForAll:
		bv, ok := b.(ir.TypeNameForAll)
		return ok && av.Universe == bv.Universe
	case ir.TypeNameAssociatedType:
		bv, ok := b.(ir.TypeNameAssociatedType)
		return ok && av.Id == bv.Id
	default:
		panic("fold.TypeNameEqual: unknown TypeName variant")
	}
}
