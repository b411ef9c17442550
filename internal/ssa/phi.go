package ssa

import "sawja/internal/ir"

// defSites collects, for every original variable, every pc at which it
// is defined: parameters at pc -1 (spec §4.2: "parameters are treated as
// defs at pc = -1"), catch variables at their handler entry, and every
// ordinary instruction def site.
func defSites(m *ir.MethodIR) map[ir.Var][]int {
	sites := map[ir.Var][]int{}
	add := func(v ir.Var, pc int) { sites[v] = append(sites[v], pc) }

	for _, p := range m.Params {
		add(p.Var, -1)
	}
	for _, h := range m.ExcTable {
		add(h.CatchVar, h.HandlerPC)
	}
	for pc, instr := range m.Code {
		switch in := instr.(type) {
		case ir.AffectVar:
			add(in.V, pc)
		case ir.New:
			add(in.V, pc)
		case ir.NewArray:
			add(in.V, pc)
		case ir.InvokeStatic:
			if in.V != nil {
				add(*in.V, pc)
			}
		case ir.InvokeVirtual:
			if in.V != nil {
				add(*in.V, pc)
			}
		case ir.InvokeNonVirtual:
			if in.V != nil {
				add(*in.V, pc)
			}
		}
	}
	return sites
}

// placePhis computes, for each join pc, the set of original variables
// requiring a φ-node there: the standard iterated-dominance-frontier
// worklist per variable (spec §4.2).
func placePhis(m *ir.MethodIR, df map[int]map[int]bool) map[int]map[ir.Var]bool {
	sites := defSites(m)
	hasPhi := map[int]map[ir.Var]bool{}

	for v, defs := range sites {
		placed := map[int]bool{}
		onWorklist := map[int]bool{}
		worklist := append([]int{}, defs...)
		for _, d := range defs {
			onWorklist[d] = true
		}
		for len(worklist) > 0 {
			n := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for d := range df[n] {
				if placed[d] {
					continue
				}
				placed[d] = true
				if hasPhi[d] == nil {
					hasPhi[d] = map[ir.Var]bool{}
				}
				hasPhi[d][v] = true
				if !onWorklist[d] {
					onWorklist[d] = true
					worklist = append(worklist, d)
				}
			}
		}
	}
	return hasPhi
}
