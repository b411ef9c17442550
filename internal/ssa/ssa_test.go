package ssa

import (
	"testing"

	"sawja/internal/classfile"
	"sawja/internal/ir"
)

// buildDiamond constructs the method from spec §8 scenario 4:
//
//	0: if (x<0) goto 3
//	1: y=1
//	2: goto 4
//	3: y=2
//	4: return y
func buildDiamond() (*ir.MethodIR, ir.Var) {
	vt := ir.NewVarTable()
	types := ir.NewVarTypes(0)
	intT := classfile.Primitive{Kind: classfile.TInt}

	xVar := vt.Original(0, "x")
	yVar := vt.Original(1, "y")
	types.Set(xVar, intT)
	types.Set(yVar, intT)

	code := []ir.Instr{
		ir.Ifd{
			Cond: ir.Cond{
				Op:    ir.OpCmpLt,
				Left:  ir.VarExpr{Type: intT, Var: xVar},
				Right: ir.ConstExpr{Value: ir.IntConst(0)},
			},
			Target: 3,
		},
		ir.AffectVar{V: yVar, E: ir.ConstExpr{Value: ir.IntConst(1)}},
		ir.Goto{Target: 4},
		ir.AffectVar{V: yVar, E: ir.ConstExpr{Value: ir.IntConst(2)}},
		ir.Return{Value: ir.VarExpr{Type: intT, Var: yVar}},
	}

	m := &ir.MethodIR{
		Owner:  classfile.ClassName("Diamond"),
		Sig:    classfile.MethodSignature{Name: "m", Descriptor: "(I)I"},
		Vars:   vt,
		Types:  types,
		Params: []ir.Param{{Type: intT, Var: xVar}},
		Code:   code,
	}
	return m, yVar
}

func TestDiamondSSA(t *testing.T) {
	m, _ := buildDiamond()
	Convert(m)

	if m.SSA == nil {
		t.Fatal("Convert did not populate SSA info")
	}

	phis := m.SSA.PhiNodes[4]
	if len(phis) != 1 {
		t.Fatalf("expected exactly one phi at pc 4, got %d", len(phis))
	}
	phi := phis[0]
	if len(phi.Use) != 2 {
		t.Fatalf("expected phi with 2 uses, got %d", len(phi.Use))
	}

	preds := m.SSA.Preds[4]
	if len(preds) != 2 {
		t.Fatalf("expected pc 4 to have 2 preds, got %d", len(preds))
	}
	idxOf := func(pc int) int {
		for i, p := range preds {
			if p == pc {
				return i
			}
		}
		t.Fatalf("pc %d not found among preds of 4: %v", pc, preds)
		return -1
	}

	useFromPC2 := phi.Use[idxOf(2)]
	useFromPC3 := phi.Use[idxOf(3)]
	if useFromPC2 == useFromPC3 {
		t.Fatalf("expected distinct incoming values from pc 2 and pc 3, got %v == %v", useFromPC2, useFromPC3)
	}

	ret, ok := m.Code[4].(ir.Return)
	if !ok {
		t.Fatalf("pc 4 is no longer a Return after SSA conversion: %T", m.Code[4])
	}
	retVar, ok := ret.Value.(ir.VarExpr)
	if !ok {
		t.Fatalf("return value is not a VarExpr: %T", ret.Value)
	}
	if retVar.Var != phi.Def {
		t.Fatalf("return should read the phi's def %v, got %v", phi.Def, retVar.Var)
	}
}

func TestDiamondNoPhiElsewhere(t *testing.T) {
	m, _ := buildDiamond()
	Convert(m)

	for pc, phis := range m.SSA.PhiNodes {
		if pc != 4 && len(phis) != 0 {
			t.Fatalf("unexpected phi at pc %d: %v", pc, phis)
		}
	}
}
