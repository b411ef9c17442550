package absint

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// sortedUnique dedups xs and returns the result in ascending order. Used to
// make lattice-to-concrete-type projections (Concretize) independent of
// intsets.Sparse's iteration order, which is a site-id order with no
// relation to class name — callers diffing or printing a Concretize result
// need it stable across runs on the same program.
func sortedUnique[T constraints.Ordered](xs []T) []T {
	seen := make(map[T]bool, len(xs))
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
