package ir

// ParamTag discriminates the three parameter positions a ParameterKind can
// carry a payload for.
type ParamTag int

const (
	ParamTy ParamTag = iota
	ParamLifetime
	ParamKrate
)

func (t ParamTag) String() string {
	switch t {
	case ParamTy:
		return "type"
	case ParamLifetime:
		return "lifetime"
	case ParamKrate:
		return "krate"
	default:
		return "?"
	}
}

// ParameterKind is the three-variant carrier spec.md section 3.1 calls
// ParameterKind{T,L,C}: it discriminates a type/lifetime/crate position and
// is generic over the payload at each position, so the same shape expresses
// "a kind" (unit payload), "a bound parameter value" (Parameter, payload
// Ty/Lifetime/Krate), and "a parameter annotated with its universe" (the
// Query binder list, payload UniverseIndex for every variant).
//
// Go has no tagged-union-with-per-variant-payload-type construct, so this
// mirrors the Rust enum as a tagged struct: exactly one of TyVal/LifetimeVal/
// KrateVal is meaningful, selected by Tag.
type ParameterKind[T, L, C any] struct {
	Tag         ParamTag
	TyVal       T
	LifetimeVal L
	KrateVal    C
}

func NewTyParam[T, L, C any](v T) ParameterKind[T, L, C] {
	return ParameterKind[T, L, C]{Tag: ParamTy, TyVal: v}
}

func NewLifetimeParam[T, L, C any](v L) ParameterKind[T, L, C] {
	return ParameterKind[T, L, C]{Tag: ParamLifetime, LifetimeVal: v}
}

func NewKrateParam[T, L, C any](v C) ParameterKind[T, L, C] {
	return ParameterKind[T, L, C]{Tag: ParamKrate, KrateVal: v}
}

// Kind is a ParameterKind carrying no payload (unit type at every variant):
// it names which of the three sorts a binder abstracts over, nothing more.
type Kind = ParameterKind[struct{}, struct{}, struct{}]

func TyKind() Kind       { return Kind{Tag: ParamTy} }
func LifetimeKind() Kind { return Kind{Tag: ParamLifetime} }
func KrateKind() Kind    { return Kind{Tag: ParamKrate} }

// Parameter is a bound parameter value: a ParameterKind whose payload at
// each variant is the term of that sort.
type Parameter = ParameterKind[Ty, Lifetime, Krate]

func TyParameter(t Ty) Parameter       { return NewTyParam[Ty, Lifetime, Krate](t) }
func LifetimeParameter(l Lifetime) Parameter { return NewLifetimeParam[Ty, Lifetime, Krate](l) }
func KrateParameter(k Krate) Parameter  { return NewKrateParam[Ty, Lifetime, Krate](k) }

// UniverseParam is a ParameterKind annotated with the universe of the
// variable it stands for — the shape Query.Binders is built from.
type UniverseParam = ParameterKind[UniverseIndex, UniverseIndex, UniverseIndex]
