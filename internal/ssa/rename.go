package ssa

import (
	"sort"

	"sawja/internal/ir"
)

// buildDomChildren inverts an idom map into a dominator tree's
// child-adjacency (sorted for deterministic walk order).
func buildDomChildren(idom map[int]int) map[int][]int {
	children := map[int][]int{}
	for node, id := range idom {
		if node == id {
			continue // entry: idom[-1] == -1
		}
		children[id] = append(children[id], node)
	}
	for k := range children {
		sort.Ints(children[k])
	}
	return children
}

// renamer carries the state of one dominator-tree-preorder SSA renaming
// pass (spec §4.2: Cytron/Ferrante/Rosen/Zadeck variable renaming).
type renamer struct {
	vt    *ir.VarTable
	types *ir.VarTypes

	preds    map[int][]int
	succ     map[int][]int
	children map[int][]int

	phiVars      map[int]map[ir.Var]bool
	phiIndexAt   map[int]map[ir.Var]int
	phiNodes     map[int][]ir.Phi
	handlersByPC map[int]ir.Handler

	stacks  map[ir.Var][]ir.Var
	newCode []ir.Instr
}

func (r *renamer) push(orig, v ir.Var) {
	r.stacks[orig] = append(r.stacks[orig], v)
}

func (r *renamer) pop(orig ir.Var) {
	s := r.stacks[orig]
	r.stacks[orig] = s[:len(s)-1]
}

func (r *renamer) current(orig ir.Var) ir.Var {
	s := r.stacks[orig]
	if len(s) == 0 {
		return orig
	}
	return s[len(s)-1]
}

func (r *renamer) mintDef(orig ir.Var, pc int) ir.Var {
	nv := r.vt.FreshBranch(pc)
	r.types.Set(nv, r.types.Get(orig))
	return nv
}

func (r *renamer) renameBasic(b ir.BasicExpr) ir.BasicExpr {
	switch v := b.(type) {
	case ir.VarExpr:
		return ir.VarExpr{Type: v.Type, Var: r.current(v.Var)}
	case ir.ConstExpr:
		return v
	default:
		return b
	}
}

func (r *renamer) renameBasicOrNil(b ir.BasicExpr) ir.BasicExpr {
	if b == nil {
		return nil
	}
	return r.renameBasic(b)
}

func (r *renamer) renameBasicSlice(bs []ir.BasicExpr) []ir.BasicExpr {
	if bs == nil {
		return nil
	}
	out := make([]ir.BasicExpr, len(bs))
	for i, b := range bs {
		out[i] = r.renameBasic(b)
	}
	return out
}

func (r *renamer) renameExpr(e ir.Expr) ir.Expr {
	switch v := e.(type) {
	case ir.ConstExpr:
		return v
	case ir.VarExpr:
		return ir.VarExpr{Type: v.Type, Var: r.current(v.Var)}
	case ir.Unop:
		return ir.Unop{Op: v.Op, Num: v.Num, InstanceOfClass: v.InstanceOfClass, Operand: r.renameBasic(v.Operand)}
	case ir.Binop:
		return ir.Binop{Op: v.Op, Num: v.Num, Left: r.renameBasic(v.Left), Right: r.renameBasic(v.Right)}
	case ir.Field:
		return ir.Field{Object: r.renameBasic(v.Object), Class: v.Class, Sig: v.Sig, Type: v.Type}
	case ir.StaticField:
		return v
	case ir.ArrayRead:
		return ir.ArrayRead{Array: r.renameBasic(v.Array), Index: r.renameBasic(v.Index), Elem: v.Elem}
	default:
		return e
	}
}

func (r *renamer) renameCheck(c ir.Check) ir.Check {
	out := c
	out.Value = r.renameBasicOrNil(c.Value)
	out.Array = r.renameBasicOrNil(c.Array)
	out.Index = r.renameBasicOrNil(c.Index)
	out.StoredVal = r.renameBasicOrNil(c.StoredVal)
	out.Size = r.renameBasicOrNil(c.Size)
	out.CastValue = r.renameBasicOrNil(c.CastValue)
	out.Divisor = r.renameBasicOrNil(c.Divisor)
	return out
}

// renameInstr rewrites every use operand in instr to its current SSA
// version and, if instr defines a variable, mints a fresh def. It
// returns the rewritten instruction, the pre-rename def (if any), the
// minted post-rename def, and whether a def occurred.
func (r *renamer) renameInstr(pc int, instr ir.Instr) (ir.Instr, ir.Var, ir.Var, bool) {
	switch in := instr.(type) {
	case ir.Nop:
		return in, 0, 0, false
	case ir.AffectVar:
		e := r.renameExpr(in.E)
		newV := r.mintDef(in.V, pc)
		return ir.AffectVar{V: newV, E: e}, in.V, newV, true
	case ir.AffectArray:
		return ir.AffectArray{
			Array: r.renameBasic(in.Array),
			Index: r.renameBasic(in.Index),
			Value: r.renameBasic(in.Value),
		}, 0, 0, false
	case ir.AffectField:
		return ir.AffectField{
			Object: r.renameBasic(in.Object),
			Class:  in.Class,
			Sig:    in.Sig,
			Value:  r.renameBasic(in.Value),
		}, 0, 0, false
	case ir.AffectStaticField:
		return ir.AffectStaticField{Class: in.Class, Sig: in.Sig, Value: r.renameExpr(in.Value)}, 0, 0, false
	case ir.Goto:
		return in, 0, 0, false
	case ir.Ifd:
		cond := ir.Cond{Op: in.Cond.Op, Left: r.renameBasic(in.Cond.Left), Right: r.renameBasic(in.Cond.Right)}
		return ir.Ifd{Cond: cond, Target: in.Target}, 0, 0, false
	case ir.Throw:
		return ir.Throw{Value: r.renameBasic(in.Value)}, 0, 0, false
	case ir.Return:
		return ir.Return{Value: r.renameBasicOrNil(in.Value)}, 0, 0, false
	case ir.New:
		args := r.renameBasicSlice(in.Args)
		newV := r.mintDef(in.V, pc)
		return ir.New{V: newV, Class: in.Class, ArgTypes: in.ArgTypes, Args: args}, in.V, newV, true
	case ir.NewArray:
		dims := r.renameBasicSlice(in.DimExprs)
		newV := r.mintDef(in.V, pc)
		return ir.NewArray{V: newV, ElemType: in.ElemType, DimExprs: dims}, in.V, newV, true
	case ir.InvokeStatic:
		args := r.renameBasicSlice(in.Args)
		if in.V == nil {
			return ir.InvokeStatic{Class: in.Class, Sig: in.Sig, Args: args}, 0, 0, false
		}
		newV := r.mintDef(*in.V, pc)
		nv := newV
		return ir.InvokeStatic{V: &nv, Class: in.Class, Sig: in.Sig, Args: args}, *in.V, newV, true
	case ir.InvokeVirtual:
		recv := r.renameBasic(in.Receiver)
		args := r.renameBasicSlice(in.Args)
		if in.V == nil {
			return ir.InvokeVirtual{Dispatch: in.Dispatch, Receiver: recv, Sig: in.Sig, Args: args}, 0, 0, false
		}
		newV := r.mintDef(*in.V, pc)
		nv := newV
		return ir.InvokeVirtual{V: &nv, Dispatch: in.Dispatch, Receiver: recv, Sig: in.Sig, Args: args}, *in.V, newV, true
	case ir.InvokeNonVirtual:
		recv := r.renameBasic(in.Receiver)
		args := r.renameBasicSlice(in.Args)
		if in.V == nil {
			return ir.InvokeNonVirtual{Class: in.Class, Receiver: recv, Sig: in.Sig, Args: args}, 0, 0, false
		}
		newV := r.mintDef(*in.V, pc)
		nv := newV
		return ir.InvokeNonVirtual{V: &nv, Class: in.Class, Receiver: recv, Sig: in.Sig, Args: args}, *in.V, newV, true
	case ir.MonitorEnter:
		return ir.MonitorEnter{Value: r.renameBasic(in.Value)}, 0, 0, false
	case ir.MonitorExit:
		return ir.MonitorExit{Value: r.renameBasic(in.Value)}, 0, 0, false
	case ir.MayInit:
		return in, 0, 0, false
	case ir.CheckInstr:
		return ir.CheckInstr{Check: r.renameCheck(in.Check)}, 0, 0, false
	default:
		return instr, 0, 0, false
	}
}

func (r *renamer) walk(pc int) {
	var phiOrigVars []ir.Var
	for v := range r.phiVars[pc] {
		phiOrigVars = append(phiOrigVars, v)
	}
	sort.Slice(phiOrigVars, func(i, j int) bool { return phiOrigVars[i] < phiOrigVars[j] })
	for _, origVar := range phiOrigVars {
		newVar := r.vt.FreshBranch2(pc)
		r.types.Set(newVar, r.types.Get(origVar))
		r.push(origVar, newVar)
		r.phiNodes[pc][r.phiIndexAt[pc][origVar]].Def = newVar
	}

	catchPushed := false
	if h, ok := r.handlersByPC[pc]; ok {
		r.push(h.CatchVar, h.CatchVar)
		catchPushed = true
	}

	newInstr, origDef, newDef, hasDef := r.renameInstr(pc, r.newCode[pc])
	r.newCode[pc] = newInstr
	if hasDef {
		r.push(origDef, newDef)
	}

	for _, s := range r.succ[pc] {
		vars, ok := r.phiVars[s]
		if !ok {
			continue
		}
		k := indexOf(r.preds[s], pc)
		for origVar := range vars {
			idx := r.phiIndexAt[s][origVar]
			r.phiNodes[s][idx].Use[k] = r.current(origVar)
		}
	}

	for _, c := range r.children[pc] {
		r.walk(c)
	}

	if hasDef {
		r.pop(origDef)
	}
	if catchPushed {
		r.pop(r.handlersByPC[pc].CatchVar)
	}
	for i := len(phiOrigVars) - 1; i >= 0; i-- {
		r.pop(phiOrigVars[i])
	}
}

// rename performs the full dominator-tree-preorder SSA renaming pass,
// returning the rewritten instruction stream and the φ-node table.
func rename(m *ir.MethodIR, idom map[int]int, preds, succ map[int][]int, phiVars map[int]map[ir.Var]bool) ([]ir.Instr, map[int][]ir.Phi) {
	r := &renamer{
		vt:           m.Vars,
		types:        m.Types,
		preds:        preds,
		succ:         succ,
		children:     buildDomChildren(idom),
		phiVars:      phiVars,
		phiIndexAt:   map[int]map[ir.Var]int{},
		phiNodes:     map[int][]ir.Phi{},
		handlersByPC: map[int]ir.Handler{},
		stacks:       map[ir.Var][]ir.Var{},
		newCode:      append([]ir.Instr(nil), m.Code...),
	}
	for _, h := range m.ExcTable {
		r.handlersByPC[h.HandlerPC] = h
	}
	// Pre-create every phi's slot (sized Use list, Def assigned later by
	// walk) so that a predecessor visited before its join block in
	// dominator-tree preorder still has somewhere to write its
	// incoming value.
	for pc, vars := range phiVars {
		var origVars []ir.Var
		for v := range vars {
			origVars = append(origVars, v)
		}
		sort.Slice(origVars, func(i, j int) bool { return origVars[i] < origVars[j] })
		r.phiIndexAt[pc] = map[ir.Var]int{}
		for _, v := range origVars {
			r.phiIndexAt[pc][v] = len(r.phiNodes[pc])
			r.phiNodes[pc] = append(r.phiNodes[pc], ir.Phi{Use: make([]ir.Var, len(preds[pc]))})
		}
	}
	for _, p := range m.Params {
		r.stacks[p.Var] = []ir.Var{p.Var}
	}
	for _, c := range r.children[-1] {
		r.walk(c)
	}
	return r.newCode, r.phiNodes
}
