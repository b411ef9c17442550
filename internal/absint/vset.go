package absint

import (
	"golang.org/x/tools/container/intsets"

	"sawja/internal/classfile"
	"sawja/internal/hierarchy"
	"sawja/internal/solver"
)

type vsetKind uint8

const (
	vsBot vsetKind = iota
	vsPrimitive
	vsSet
	vsTop
)

// AbVSet is the four-point allocation-site powerset lattice spec §4.4
// names: Bot, Primitive, Set(s), Top. sites is non-nil only for vsSet.
type AbVSet struct {
	kind  vsetKind
	sites *intsets.Sparse
}

// WarnHook, if set, is called whenever Join coerces a Primitive/Set
// mismatch to Top (spec §9 Open Question iii: "retain this behaviour
// but surface a warning hook"). nil by default.
var WarnHook func(msg string)

func Bot() AbVSet       { return AbVSet{kind: vsBot} }
func Primitive() AbVSet { return AbVSet{kind: vsPrimitive} }
func Top() AbVSet       { return AbVSet{kind: vsTop} }

// Singleton builds a one-site Set.
func Singleton(site int) AbVSet { return NewSet(site) }

// NewSet builds a Set containing exactly the given site ids.
func NewSet(ids ...int) AbVSet {
	s := &intsets.Sparse{}
	for _, id := range ids {
		s.Insert(id)
	}
	return AbVSet{kind: vsSet, sites: s}
}

func (a AbVSet) IsBot() bool       { return a.kind == vsBot }
func (a AbVSet) IsPrimitive() bool { return a.kind == vsPrimitive }
func (a AbVSet) IsTop() bool       { return a.kind == vsTop }
func (a AbVSet) IsSet() bool       { return a.kind == vsSet }

// Sites reports the member site ids of a Set; empty for every other kind.
func (a AbVSet) Sites() []int {
	if a.kind != vsSet {
		return nil
	}
	return a.sites.AppendTo(nil)
}

// Equal reports whether a and b denote the same lattice element.
func Equal(a, b AbVSet) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == vsSet {
		return a.sites.Equals(b.sites)
	}
	return true
}

// Join computes the lub of a and b, and whether the result differs from
// a (spec §9's pair-returning join, used directly as the solver's
// `modifies` signal when a is the value already stored at some state
// variable). Joining Primitive with any Set yields Top rather than
// silently picking one: the value is ill-typed, and rather than an
// assertion, Join reports each such coercion through WarnHook when one
// is installed.
func Join(a, b AbVSet) (AbVSet, bool) {
	if Equal(a, b) {
		return a, false
	}
	if a.kind == vsTop {
		return a, false
	}
	if b.kind == vsTop {
		return Top(), true
	}
	if a.kind == vsBot {
		return b, true
	}
	if b.kind == vsBot {
		return a, false
	}
	if a.kind == vsPrimitive && b.kind == vsPrimitive {
		return a, false
	}
	if a.kind == vsPrimitive || b.kind == vsPrimitive {
		if WarnHook != nil {
			WarnHook("joining Primitive with a Set coerces to Top")
		}
		return Top(), true
	}
	merged := &intsets.Sparse{}
	merged.Copy(a.sites)
	merged.UnionWith(b.sites)
	if merged.Equals(a.sites) {
		return a, false
	}
	return AbVSet{kind: vsSet, sites: merged}, true
}

// JoinV adapts Join to solver.Value, so AbVSet can sit in the solver's
// uniform state map alongside AbFSet/AbLocals/AbMethod.
func (a AbVSet) JoinV(other solver.Value) (solver.Value, bool) {
	b := other.(AbVSet)
	r, changed := Join(a, b)
	return r, changed
}

// Inter computes the glb of a and b (spec's `inter`).
func Inter(a, b AbVSet) AbVSet {
	switch {
	case a.kind == vsBot || b.kind == vsBot:
		return Bot()
	case a.kind == vsTop:
		return b
	case b.kind == vsTop:
		return a
	case a.kind == vsPrimitive && b.kind == vsPrimitive:
		return a
	case a.kind == vsPrimitive || b.kind == vsPrimitive:
		return Bot()
	default:
		out := &intsets.Sparse{}
		out.Copy(a.sites)
		out.IntersectionWith(b.sites)
		if out.IsEmpty() {
			return Bot()
		}
		return AbVSet{kind: vsSet, sites: out}
	}
}

// Concretize drops the pc context of every member site, returning the
// set of object types a Set denotes, deduped and sorted so the result is
// stable across runs regardless of intsets.Sparse's internal iteration
// order. Non-Set kinds have nothing to concretize and return nil.
func Concretize(a AbVSet, table *SiteTable) []classfile.ClassName {
	if a.kind != vsSet {
		return nil
	}
	var classes []classfile.ClassName
	for _, id := range a.Sites() {
		classes = append(classes, table.Class(id))
	}
	return sortedUnique(classes)
}

// FilterWithCompatible keeps only the member sites whose concrete class
// is a subtype of objt (spec's `filter_with_compatible`).
func FilterWithCompatible(a AbVSet, table *SiteTable, hier *hierarchy.Hierarchy, objt classfile.ClassName) AbVSet {
	return filterSites(a, table, hier, objt, true)
}

// FilterWithUncompatible keeps only the member sites whose concrete
// class is NOT a subtype of objt (spec's `filter_with_uncompatible`).
func FilterWithUncompatible(a AbVSet, table *SiteTable, hier *hierarchy.Hierarchy, objt classfile.ClassName) AbVSet {
	return filterSites(a, table, hier, objt, false)
}

func filterSites(a AbVSet, table *SiteTable, hier *hierarchy.Hierarchy, objt classfile.ClassName, wantCompatible bool) AbVSet {
	if a.kind != vsSet {
		return a
	}
	target, ok := hier.Lookup(objt)
	if !ok {
		return a
	}
	var kept []int
	for _, id := range a.Sites() {
		sub, ok := hier.Lookup(table.Class(id))
		compatible := ok && hier.IsSubtypeOf(sub, target)
		if compatible == wantCompatible {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return Bot()
	}
	return NewSet(kept...)
}
