package absint

import (
	"testing"

	"sawja/internal/classfile"
	"sawja/internal/ir"
	"sawja/internal/solver"
)

// buildFieldChase constructs the program from spec §8 scenario 6:
//
//	0: a = new A()
//	1: t = new B()
//	2: a.f = t
//	3: x = a.f
//	4: return
//
// with a single allocation context, AbLocals[x] at the last pc must equal
// Set({site_of_B}) — the field write at pc 2 must flow through field_dom
// and back out at the read in pc 3, not be lost or widened to Top.
func buildFieldChase() (*ir.MethodIR, ir.Var) {
	vt := ir.NewVarTable()
	objT := classfile.ObjectType{ClassName: "A"}
	bType := classfile.ObjectType{ClassName: "B"}
	fieldSig := classfile.FieldSignature{Name: "f", Descriptor: "LB;"}

	aVar := vt.Original(0, "a")
	xVar := vt.Original(1, "x")
	tVar := vt.FreshTemp()

	code := []ir.Instr{
		ir.New{V: aVar, Class: "A"},
		ir.New{V: tVar, Class: "B"},
		ir.AffectField{
			Object: ir.VarExpr{Type: objT, Var: aVar},
			Class:  "A",
			Sig:    fieldSig,
			Value:  ir.VarExpr{Type: bType, Var: tVar},
		},
		ir.AffectVar{
			V: xVar,
			E: ir.Field{
				Object: ir.VarExpr{Type: objT, Var: aVar},
				Class:  "A",
				Sig:    fieldSig,
				Type:   bType,
			},
		},
		ir.Return{},
	}

	m := &ir.MethodIR{
		Owner:  classfile.ClassName("Chase"),
		Sig:    classfile.MethodSignature{Name: "run", Descriptor: "()V"},
		Vars:   vt,
		Params: nil,
		Code:   code,
	}
	return m, xVar
}

func TestFieldChasePointsToFixpoint(t *testing.T) {
	m, xVar := buildFieldChase()

	s := solver.New()
	sites := NewSiteTable()
	// The method takes no parameters, so its entry environment is
	// reachable but assigns nothing — an empty, non-Bot AbLocals.
	AnalyzeMethod(s, m.Owner, m.Sig, m, sites, AbLocals{m: map[int]AbVSet{}})
	s.Run()

	lastPC := m.Len() - 1
	finalVal := s.Get(pcVar(m.Owner, m.Sig, lastPC))
	locals, ok := finalVal.(AbLocals)
	if !ok {
		t.Fatalf("expected AbLocals at final pc, got %T", finalVal)
	}

	bSite := sites.Intern(1, "B")
	xAbs := locals.Get(int(xVar))
	want := Singleton(bSite)
	if !Equal(xAbs, want) {
		t.Fatalf("AbLocals[x] = %+v, want Set({site_of_B}) = %+v", xAbs, want)
	}
}
