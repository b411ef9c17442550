package transform

import (
	"testing"

	"github.com/kr/pretty"

	"sawja/internal/classfile"
	"sawja/internal/ir"
)

func mustTransform(t *testing.T, instrs []classfile.Instr) *ir.MethodIR {
	t.Helper()
	code := &classfile.Code{
		MaxStack:  8,
		MaxLocals: 4,
		Instrs:    instrs,
		Lines:     classfile.LineNumberTable{},
	}
	m, err := Transform("C", classfile.MethodSignature{Name: "m", Descriptor: "()V"}, nil, false, code, Options{}, nil)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	return m
}

// scenario 1: new C; dup; iconst_1; invokespecial C.<init>(I)V
func TestFoldConstructor(t *testing.T) {
	instrs := []classfile.Instr{
		{PC: 0, Op: classfile.OpNew, ClassName: "C"},
		{PC: 1, Op: classfile.OpDup},
		{PC: 2, Op: classfile.OpIConst1},
		{PC: 3, Op: classfile.OpInvokeSpecial, ClassName: "C", MethodSig: classfile.MethodSignature{Name: "<init>", Descriptor: "(I)V"}},
		{PC: 4, Op: classfile.OpReturn},
	}
	m := mustTransform(t, instrs)

	var newInstr *ir.New
	for _, instr := range m.Code {
		if n, ok := instr.(ir.New); ok {
			nn := n
			newInstr = &nn
		}
	}
	if newInstr == nil {
		t.Fatalf("expected exactly one New instruction, code = %#v", m.Code)
	}
	if newInstr.Class != "C" {
		t.Errorf("New.Class = %q, want C", newInstr.Class)
	}
	if len(newInstr.Args) != 1 {
		t.Fatalf("New.Args = %v, want one arg", newInstr.Args)
	}
	c, ok := newInstr.Args[0].(ir.ConstExpr)
	if !ok || c.Value.Kind != ir.ConstInt || c.Value.Int != 1 {
		t.Errorf("New.Args[0] = %#v, want ConstExpr(IntConst(1))", newInstr.Args[0])
	}

	count := 0
	for _, instr := range m.Code {
		if _, ok := instr.(ir.New); ok {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d New instructions, want exactly 1", count)
	}
}

// scenario 2: aastore on a reference array emits checks in JVM order.
func TestCheckOrderingArrayStore(t *testing.T) {
	instrs := []classfile.Instr{
		{PC: 0, Op: classfile.OpALoad, LocalSlot: 1},
		{PC: 1, Op: classfile.OpILoad, LocalSlot: 2},
		{PC: 2, Op: classfile.OpALoad, LocalSlot: 3},
		{PC: 3, Op: classfile.OpAAStore},
		{PC: 4, Op: classfile.OpReturn},
	}
	m := mustTransform(t, instrs)

	var kinds []ir.CheckKind
	for _, instr := range m.Code {
		if ci, ok := instr.(ir.CheckInstr); ok {
			kinds = append(kinds, ci.Check.Kind)
		}
	}
	want := []ir.CheckKind{ir.CheckNullPointer, ir.CheckArrayBound, ir.CheckArrayStore}
	if len(kinds) != len(want) {
		t.Fatalf("checks = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("checks[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}

	var sawAffectArray bool
	for _, instr := range m.Code {
		if _, ok := instr.(ir.AffectArray); ok {
			sawAffectArray = true
		}
	}
	if !sawAffectArray {
		t.Error("expected a trailing AffectArray instruction")
	}
}

// scenario 3: idiv emits CheckArithmetic(divisor) before the division,
// folded into a single AffectVar on the three-address form.
func TestCheckOrderingDivision(t *testing.T) {
	instrs := []classfile.Instr{
		{PC: 0, Op: classfile.OpILoad, LocalSlot: 1},
		{PC: 1, Op: classfile.OpILoad, LocalSlot: 2},
		{PC: 2, Op: classfile.OpIDiv},
		{PC: 3, Op: classfile.OpIReturn},
	}
	m := mustTransform(t, instrs)

	var sawCheck, sawDiv bool
	for _, instr := range m.Code {
		if ci, ok := instr.(ir.CheckInstr); ok {
			if ci.Check.Kind != ir.CheckArithmetic {
				t.Errorf("unexpected check kind %v before division", ci.Check.Kind)
			}
			if sawDiv {
				t.Error("CheckArithmetic must precede the division, not follow it")
			}
			sawCheck = true
		}
		if av, ok := instr.(ir.AffectVar); ok {
			if b, ok := av.E.(ir.Binop); ok && b.Op == ir.OpDiv {
				sawDiv = true
			}
		}
	}
	if !sawCheck {
		t.Error("expected a CheckArithmetic instruction")
	}
	if !sawDiv {
		t.Error("expected the division folded into a single AffectVar(Binop(Div,...))")
	}
}

// pc-map invariant: pc_bc2ir[pc_ir2bc[i]] <= i for every IR pc, and
// pc_ir2bc[pc_bc2ir[b]] == b for every mapped bytecode pc.
func TestPCMapsAreInverses(t *testing.T) {
	instrs := []classfile.Instr{
		{PC: 0, Op: classfile.OpILoad, LocalSlot: 1},
		{PC: 1, Op: classfile.OpIfEq, Target: 4},
		{PC: 2, Op: classfile.OpILoad, LocalSlot: 1},
		{PC: 3, Op: classfile.OpIReturn},
		{PC: 4, Op: classfile.OpIConst0},
		{PC: 5, Op: classfile.OpIReturn},
	}
	m := mustTransform(t, instrs)

	for i, b := range m.PCIR2BC {
		got, ok := m.PCBC2IR[b]
		if !ok {
			t.Fatalf("pc_bc2ir missing entry for bytecode pc %d (from pc_ir2bc[%d])", b, i)
		}
		if got > i {
			t.Errorf("pc_bc2ir[pc_ir2bc[%d]] = %d, want <= %d", i, got, i)
		}
	}
	for b, irpc := range m.PCBC2IR {
		if m.PCIR2BC[irpc] != b {
			t.Errorf("pc_ir2bc[pc_bc2ir[%d]] = %d, want %d", b, m.PCIR2BC[irpc], b)
		}
	}
}

// A backward Goto taken with a non-empty stack is invalid input.
func TestNonemptyStackBackwardJumpRejected(t *testing.T) {
	instrs := []classfile.Instr{
		{PC: 0, Op: classfile.OpIConst0},
		{PC: 1, Op: classfile.OpGoto, Target: 0},
	}
	code := &classfile.Code{MaxStack: 4, MaxLocals: 1, Instrs: instrs, Lines: classfile.LineNumberTable{}}
	_, err := Transform("C", classfile.MethodSignature{Name: "m", Descriptor: "()V"}, nil, false, code, Options{}, nil)
	if err == nil {
		t.Fatal("expected an error for a backward goto with a non-empty stack")
	}
}

// Transform has no hidden state across calls: feeding the same bytecode
// through it twice must fold to byte-for-byte identical IR, var
// numbering included. reflect.DeepEqual's pass/fail gives no purchase on
// which instruction in a 2-element Code slice of tagged unions diverged,
// so this asserts it with pretty.Diff instead, which names the exact
// field and index per spec §4.8's IR/SSA deep-diff tooling.
func TestTransformIsDeterministic(t *testing.T) {
	instrs := []classfile.Instr{
		{PC: 0, Op: classfile.OpIConst1},
		{PC: 1, Op: classfile.OpIStore, LocalSlot: 0},
		{PC: 2, Op: classfile.OpILoad, LocalSlot: 0},
		{PC: 3, Op: classfile.OpIReturn},
	}
	first := mustTransform(t, append([]classfile.Instr{}, instrs...))
	second := mustTransform(t, append([]classfile.Instr{}, instrs...))

	if diff := pretty.Diff(first.Code, second.Code); len(diff) > 0 {
		t.Fatalf("two transforms of identical bytecode diverged: %v", diff)
	}
}

// multianewarray with 0 dimensions is rejected.
func TestBadMultiarrayDimension(t *testing.T) {
	instrs := []classfile.Instr{
		{PC: 0, Op: classfile.OpMultiANewArray, ClassName: "[[I", Dims: 0},
	}
	code := &classfile.Code{MaxStack: 4, MaxLocals: 1, Instrs: instrs, Lines: classfile.LineNumberTable{}}
	_, err := Transform("C", classfile.MethodSignature{Name: "m", Descriptor: "()V"}, nil, false, code, Options{}, nil)
	if err == nil {
		t.Fatal("expected an error for multianewarray with 0 dimensions")
	}
}
