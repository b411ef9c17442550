package ssa

import "sawja/internal/ir"

// Convert transforms m in place into SSA form (spec §4.2): build the
// CFG, compute dominance and its frontier, place φ-nodes at the
// iterated dominance frontier of every variable's def sites, rename
// every def/use in dominator-tree preorder, then prune φ-nodes that
// renaming placed but nothing ends up reading.
func Convert(m *ir.MethodIR) {
	succ, pred := buildGraph(m)
	idom := computeIdom(succ, pred, m.Len())
	df := dominanceFrontier(succ, pred, idom)
	phiVars := placePhis(m, df)

	newCode, phiNodes := rename(m, idom, pred, succ, phiVars)
	phiNodes = filterLivePhis(newCode, phiNodes)

	preds := make([][]int, m.Len())
	for pc := 0; pc < m.Len(); pc++ {
		preds[pc] = pred[pc]
	}

	m.Code = newCode
	m.SSA = &ir.SSAInfo{Preds: preds, PhiNodes: phiNodes}
}
