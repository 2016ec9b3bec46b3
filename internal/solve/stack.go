package solve

// derivationStack tracks the canonical form of every leaf goal currently
// being solved, innermost last, so solveLeaf can detect re-entry (spec.md
// section 4.6 "goals on the derivation stack tracked by canonical form").
// Canonical forms collide only when genuinely interchangeable, so a plain
// string key (see canonicalForm) is enough; no table is needed.
type derivationStack struct {
	frames []string
}

func (s *derivationStack) push(key string) { s.frames = append(s.frames, key) }

func (s *derivationStack) pop() { s.frames = s.frames[:len(s.frames)-1] }

func (s *derivationStack) contains(key string) bool {
	for _, f := range s.frames {
		if f == key {
			return true
		}
	}
	return false
}
