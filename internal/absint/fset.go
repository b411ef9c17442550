package absint

import "sawja/internal/solver"

// AbFSet is the map from allocation-site to AbVSet spec §4.4 names: a
// field's abstraction restricted to one receiver object's sites. A nil
// map is Bot; joining with Bot is identity.
type AbFSet struct {
	m map[int]AbVSet
}

func FSetBot() AbFSet { return AbFSet{} }

// Get returns the field abstraction recorded at site, or Bot if none.
func (f AbFSet) Get(site int) AbVSet {
	if f.m == nil {
		return Bot()
	}
	v, ok := f.m[site]
	if !ok {
		return Bot()
	}
	return v
}

// Var2FSet updates every site in objectAbs to point to valueAbs (spec's
// field-store transfer). Non-Set objectAbs kinds (Top/Primitive/Bot)
// have no enumerable sites to update and are a no-op — a caller
// tracking a field store through an unresolved receiver needs a
// separate "weak update everything" strategy, out of this lattice's
// scope.
func Var2FSet(f AbFSet, objectAbs, valueAbs AbVSet) (AbFSet, bool) {
	if !objectAbs.IsSet() {
		return f, false
	}
	out := make(map[int]AbVSet, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	changed := false
	for _, site := range objectAbs.Sites() {
		old := Bot()
		if v, ok := out[site]; ok {
			old = v
		}
		merged, ch := Join(old, valueAbs)
		if ch {
			out[site] = merged
			changed = true
		}
	}
	if !changed {
		return f, false
	}
	return AbFSet{m: out}, true
}

// FSet2Var reads the union of the field abstraction at every site in
// objectAbs (spec's field-read transfer). Top propagates conservatively;
// Primitive/Bot receivers have no sites and read as Bot.
func FSet2Var(f AbFSet, objectAbs AbVSet) AbVSet {
	if objectAbs.IsTop() {
		return Top()
	}
	if !objectAbs.IsSet() {
		return Bot()
	}
	result := Bot()
	for _, site := range objectAbs.Sites() {
		result, _ = Join(result, f.Get(site))
	}
	return result
}

// JoinFSet merges two AbFSets site-by-site.
func JoinFSet(a, b AbFSet) (AbFSet, bool) {
	if a.m == nil && b.m == nil {
		return a, false
	}
	out := make(map[int]AbVSet, len(a.m)+len(b.m))
	for k, v := range a.m {
		out[k] = v
	}
	changed := false
	for k, v := range b.m {
		old, ok := out[k]
		if !ok {
			out[k] = v
			changed = true
			continue
		}
		merged, ch := Join(old, v)
		if ch {
			out[k] = merged
			changed = true
		}
	}
	if !changed {
		return a, false
	}
	return AbFSet{m: out}, true
}

func (f AbFSet) JoinV(other solver.Value) (solver.Value, bool) {
	b := other.(AbFSet)
	r, changed := JoinFSet(f, b)
	return r, changed
}
