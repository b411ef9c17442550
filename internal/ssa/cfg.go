// Package ssa implements spec §4.2: converting a MethodIR into SSA form
// via dominance-frontier φ-placement over the CFG (fallthrough, Goto/Ifd
// targets, and exception edges), followed by dominator-tree-order
// variable renaming and a liveness-based φ-pruning pass. The shape —
// build a graph over program points, walk it to a fixed point, rewrite
// in place — mirrors the worklist/graph-walking style the teacher's own
// internal/vm module dependency resolution uses, generalized from
// "which module did I already load" to "which definition reaches this
// use".
package ssa

import "sawja/internal/ir"

// buildGraph returns, for the node set {-1, 0, ..., m.Len()-1}, the
// successor and predecessor edge sets, including the artificial entry
// edge -1 -> 0 (spec §4.2: "the artificial predecessor of pc 0 is -1").
func buildGraph(m *ir.MethodIR) (succ, pred map[int][]int) {
	succ = make(map[int][]int)
	pred = make(map[int][]int)
	succ[-1] = []int{0}
	pred[0] = append(pred[0], -1)
	n := m.Len()
	for pc := 0; pc < n; pc++ {
		ss := m.Successors(pc)
		succ[pc] = ss
		for _, s := range ss {
			pred[s] = append(pred[s], pc)
		}
	}
	return succ, pred
}

func indexOf(list []int, x int) int {
	for i, v := range list {
		if v == x {
			return i
		}
	}
	return -1
}
