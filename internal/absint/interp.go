package absint

import (
	"sawja/internal/classfile"
	"sawja/internal/ir"
	"sawja/internal/solver"
)

// fieldVar keys the one field_dom slot spec §4.4's State holds per field
// signature: every site's value for that field, across the whole
// program (AbFSet is already map[site]AbVSet, so one StateVar per field
// is enough — it is not further split per receiver).
func fieldVar(class classfile.ClassName, sig classfile.FieldSignature) solver.StateVar {
	return solver.StateVar{Kind: "field", Class: class, Sig: sig.Name + sig.Descriptor}
}

func pcVar(owner classfile.ClassName, sig classfile.MethodSignature, pc int) solver.StateVar {
	return solver.StateVar{Kind: "pc", Class: owner, Sig: sig.String(), PC: pc}
}

// AnalyzeMethod registers constraints implementing spec §4.4's pc_dom
// transfer for one method's CFG into s, seeding pc 0 with initial. It
// wires New (site creation), AffectField (field_dom write), and
// AffectVar reading a Field expression (field_dom read) — the three
// instruction shapes scenario 6 exercises. Every other instruction kind
// passes its incoming AbLocals through to its successors, apart from the
// variable it defines, if any:
// without call-graph edges wired in (the province of internal/rta, not
// this package), an invoke's result can only be soundly approximated as
// Top, which AnalyzeMethod does for any instruction defining a variable
// it does not otherwise special-case.
func AnalyzeMethod(s *solver.Solver, owner classfile.ClassName, sig classfile.MethodSignature, m *ir.MethodIR, sites *SiteTable, initial AbLocals) {
	preds := predecessors(m)
	preds[0] = append(preds[0], -1)
	s.Seed(pcVar(owner, sig, -1), initial)

	for pc := 0; pc < m.Len(); pc++ {
		pc := pc
		dest := pcVar(owner, sig, pc)

		var sources []solver.StateVar
		for _, p := range preds[pc] {
			sources = append(sources, pcVar(owner, sig, p))
		}

		switch instr := m.Code[pc].(type) {
		case ir.New:
			instr := instr
			s.AddConstraint(&solver.Constraint{
				Sources: sources,
				Dest:    dest,
				Eval: func(get func(solver.StateVar) solver.Value) solver.Value {
					in := joinPreds(get, sources)
					if in.IsBot() {
						return in
					}
					site := sites.Intern(pc, instr.Class)
					return SetVar(in, int(instr.V), Singleton(site))
				},
			})

		case ir.AffectField:
			instr := instr
			fv := fieldVar(instr.Class, instr.Sig)
			fSources := append(append([]solver.StateVar{}, sources...), fv)
			s.AddConstraint(&solver.Constraint{
				Sources: fSources,
				Dest:    fv,
				Eval: func(get func(solver.StateVar) solver.Value) solver.Value {
					in := joinPreds(get, sources)
					if in.IsBot() {
						return nil
					}
					objectAbs := evalBasic(instr.Object, in)
					valueAbs := evalBasic(instr.Value, in)
					cur, _ := get(fv).(AbFSet)
					out, changed := Var2FSet(cur, objectAbs, valueAbs)
					if !changed {
						return nil
					}
					return out
				},
			})
			// A field store never changes the local environment itself.
			s.AddConstraint(&solver.Constraint{
				Sources: sources,
				Dest:    dest,
				Eval: func(get func(solver.StateVar) solver.Value) solver.Value {
					return joinPreds(get, sources)
				},
			})

		case ir.AffectVar:
			instr := instr
			fieldSources := append([]solver.StateVar{}, sources...)
			if f, ok := instr.E.(ir.Field); ok {
				fieldSources = append(fieldSources, fieldVar(f.Class, f.Sig))
			}
			s.AddConstraint(&solver.Constraint{
				Sources: fieldSources,
				Dest:    dest,
				Eval: func(get func(solver.StateVar) solver.Value) solver.Value {
					in := joinPreds(get, sources)
					if in.IsBot() {
						return in
					}
					val := evalExpr(instr.E, in, get)
					return SetVar(in, int(instr.V), val)
				},
			})

		default:
			var defined *ir.Var
			switch d := instr.(type) {
			case ir.InvokeStatic:
				defined = d.V
			case ir.InvokeVirtual:
				defined = d.V
			case ir.InvokeNonVirtual:
				defined = d.V
			case ir.NewArray:
				defined = &d.V
			}
			s.AddConstraint(&solver.Constraint{
				Sources: sources,
				Dest:    dest,
				Eval: func(get func(solver.StateVar) solver.Value) solver.Value {
					in := joinPreds(get, sources)
					if defined == nil || in.IsBot() {
						return in
					}
					return SetVar(in, int(*defined), Top())
				},
			})
		}
	}
}

func joinPreds(get func(solver.StateVar) solver.Value, sources []solver.StateVar) AbLocals {
	result := LocalsBot()
	for _, src := range sources {
		v, ok := get(src).(AbLocals)
		if !ok {
			continue
		}
		result, _ = JoinLocals(result, v)
	}
	return result
}

func evalBasic(e ir.BasicExpr, locals AbLocals) AbVSet {
	switch v := e.(type) {
	case ir.VarExpr:
		return locals.Get(int(v.Var))
	case ir.ConstExpr:
		return Primitive()
	default:
		return Top()
	}
}

// evalExpr handles the Expr superset of BasicExpr: Field reads feed off
// field_dom via get; everything else that is not a BasicExpr is
// approximated as Top (arithmetic, array reads — not points-to relevant).
func evalExpr(e ir.Expr, locals AbLocals, get func(solver.StateVar) solver.Value) AbVSet {
	switch v := e.(type) {
	case ir.Field:
		objectAbs := evalBasic(v.Object, locals)
		fs, _ := get(fieldVar(v.Class, v.Sig)).(AbFSet)
		return FSet2Var(fs, objectAbs)
	case ir.BasicExpr:
		return evalBasic(v, locals)
	default:
		return Top()
	}
}

// predecessors inverts MethodIR.Successors, the same computation
// internal/ssa's CFG construction does, kept small and local here since
// this package has no other reason to depend on internal/ssa.
func predecessors(m *ir.MethodIR) map[int][]int {
	preds := make(map[int][]int, m.Len())
	for pc := 0; pc < m.Len(); pc++ {
		for _, s := range m.Successors(pc) {
			preds[s] = append(preds[s], pc)
		}
	}
	return preds
}
