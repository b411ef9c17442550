package ssa

import "sawja/internal/ir"

// filterLivePhis drops φ-nodes whose def is never used, directly or
// transitively through another live φ's Use list. Renaming places a φ at
// every iterated-dominance-frontier join regardless of whether the
// merged value is ever read afterward; this pass trims those down to
// the ones spec §8 scenario 4 actually expects to survive.
func filterLivePhis(newCode []ir.Instr, phiNodes map[int][]ir.Phi) map[int][]ir.Phi {
	used := map[ir.Var]bool{}
	for _, instr := range newCode {
		markVarsInInstr(instr, used)
	}

	live := map[ir.Var]bool{}
	changed := true
	for changed {
		changed = false
		for _, phis := range phiNodes {
			for _, phi := range phis {
				if used[phi.Def] && !live[phi.Def] {
					live[phi.Def] = true
					changed = true
				}
			}
		}
		for _, phis := range phiNodes {
			for _, phi := range phis {
				if !live[phi.Def] {
					continue
				}
				for _, u := range phi.Use {
					if !used[u] {
						used[u] = true
						changed = true
					}
				}
			}
		}
	}

	result := map[int][]ir.Phi{}
	for pc, phis := range phiNodes {
		var kept []ir.Phi
		for _, phi := range phis {
			if live[phi.Def] {
				kept = append(kept, phi)
			}
		}
		if len(kept) > 0 {
			result[pc] = kept
		}
	}
	return result
}

func markVarsInInstr(instr ir.Instr, used map[ir.Var]bool) {
	mark := func(b ir.BasicExpr) {
		if b != nil {
			markVarsInExpr(b, used)
		}
	}
	markAll := func(bs []ir.BasicExpr) {
		for _, b := range bs {
			mark(b)
		}
	}

	switch in := instr.(type) {
	case ir.AffectVar:
		markVarsInExpr(in.E, used)
	case ir.AffectArray:
		mark(in.Array)
		mark(in.Index)
		mark(in.Value)
	case ir.AffectField:
		mark(in.Object)
		mark(in.Value)
	case ir.AffectStaticField:
		markVarsInExpr(in.Value, used)
	case ir.Ifd:
		mark(in.Cond.Left)
		mark(in.Cond.Right)
	case ir.Throw:
		mark(in.Value)
	case ir.Return:
		mark(in.Value)
	case ir.New:
		markAll(in.Args)
	case ir.NewArray:
		markAll(in.DimExprs)
	case ir.InvokeStatic:
		markAll(in.Args)
	case ir.InvokeVirtual:
		mark(in.Receiver)
		markAll(in.Args)
	case ir.InvokeNonVirtual:
		mark(in.Receiver)
		markAll(in.Args)
	case ir.MonitorEnter:
		mark(in.Value)
	case ir.MonitorExit:
		mark(in.Value)
	case ir.CheckInstr:
		markVarsInCheck(in.Check, used)
	}
}

func markVarsInExpr(e ir.Expr, used map[ir.Var]bool) {
	switch v := e.(type) {
	case ir.VarExpr:
		used[v.Var] = true
	case ir.Unop:
		markVarsInExpr(v.Operand, used)
	case ir.Binop:
		markVarsInExpr(v.Left, used)
		markVarsInExpr(v.Right, used)
	case ir.Field:
		markVarsInExpr(v.Object, used)
	case ir.ArrayRead:
		markVarsInExpr(v.Array, used)
		markVarsInExpr(v.Index, used)
	}
}

func markVarsInCheck(c ir.Check, used map[ir.Var]bool) {
	for _, b := range []ir.BasicExpr{c.Value, c.Array, c.Index, c.StoredVal, c.Size, c.CastValue, c.Divisor} {
		if b != nil {
			markVarsInExpr(b, used)
		}
	}
}
