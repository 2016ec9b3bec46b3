// Package ir defines the intermediate representation consumed by the
// trait-resolution engine: terms, goals, clauses, binders, and the
// identifiers and universes they are built from.
package ir

import "fmt"

// Identifier is an interned symbol, compared by identity. Interning happens
// in the (out-of-scope) lowering pass; the core only ever sees the
// resulting opaque value and compares it with ==.
type Identifier struct {
	name string
}

// Intern returns the Identifier for name. Two calls with the same name
// yield Identifiers that compare equal with ==.
func Intern(name string) Identifier { return Identifier{name: name} }

func (id Identifier) String() string { return id.name }

// ItemId is an opaque handle to a declared item: a struct, a trait, an
// associated type, or an impl. The lowering pass assigns these; the core
// never constructs one on its own except in tests/fixtures.
type ItemId struct {
	index uint64
}

func NewItemId(index uint64) ItemId { return ItemId{index: index} }

func (id ItemId) String() string { return fmt.Sprintf("#%d", id.index) }

// KrateId names a compilation unit ("crate") that an item or a Not<...>
// assertion is local to.
type KrateId struct {
	Name Identifier
}

func (k KrateId) String() string { return k.Name.String() }

// UniverseIndex is a non-negative counter bounding which skolems an
// inference variable may see. Universe 0 is the root; universe u can see
// universe v iff v <= u.
type UniverseIndex struct {
	Counter int
}

// RootUniverse is universe 0, the universe every derivation starts in.
var RootUniverse = UniverseIndex{Counter: 0}

// CanSee reports whether a variable/skolem in universe u may see a skolem
// introduced in universe v: u can see v iff v <= u.
func (u UniverseIndex) CanSee(v UniverseIndex) bool { return v.Counter <= u.Counter }

func (u UniverseIndex) String() string { return fmt.Sprintf("U%d", u.Counter) }
