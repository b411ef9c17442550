package absint

import "sawja/internal/solver"

// AbLocals is the per-pc environment var-index -> AbVSet spec §4.4
// names. A nil map is Bot, representing an unreachable pc.
type AbLocals struct {
	m map[int]AbVSet
}

func LocalsBot() AbLocals { return AbLocals{} }

func (l AbLocals) IsBot() bool { return l.m == nil }

// Get returns the abstraction of variable v, or Bot if l is Bot or v
// has never been set.
func (l AbLocals) Get(v int) AbVSet {
	if l.m == nil {
		return Bot()
	}
	val, ok := l.m[v]
	if !ok {
		return Bot()
	}
	return val
}

// SetVar returns l with v updated to val. Per spec, set_var on a Bot
// environment returns Bot unchanged — an unreachable pc stays
// unreachable no matter what its (dead) code would assign.
func SetVar(l AbLocals, v int, val AbVSet) AbLocals {
	if l.IsBot() {
		return l
	}
	out := make(map[int]AbVSet, len(l.m)+1)
	for k, vv := range l.m {
		out[k] = vv
	}
	out[v] = val
	return AbLocals{m: out}
}

// EqualLocals reports whether a and b assign every variable the same AbVSet.
func EqualLocals(a, b AbLocals) bool {
	if a.IsBot() != b.IsBot() {
		return false
	}
	if len(a.m) != len(b.m) {
		return false
	}
	for k, v := range a.m {
		bv, ok := b.m[k]
		if !ok || !Equal(v, bv) {
			return false
		}
	}
	return true
}

// JoinLocals merges a and b variable-by-variable; a var missing from
// one side reads as that side's Bot, i.e. drops out of the join (spec's
// environment join is the per-variable lattice join, with the pc itself
// becoming reachable — not Bot — as soon as either side is).
func JoinLocals(a, b AbLocals) (AbLocals, bool) {
	if a.IsBot() && b.IsBot() {
		return a, false
	}
	if a.IsBot() {
		return b, true
	}
	if b.IsBot() {
		return a, false
	}
	out := make(map[int]AbVSet, len(a.m))
	for k, v := range a.m {
		out[k] = v
	}
	for k, v := range b.m {
		old, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		merged, _ := Join(old, v)
		out[k] = merged
	}
	merged := AbLocals{m: out}
	return merged, !EqualLocals(a, merged)
}

func (l AbLocals) JoinV(other solver.Value) (solver.Value, bool) {
	b := other.(AbLocals)
	r, changed := JoinLocals(l, b)
	return r, changed
}
