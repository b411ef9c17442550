package ir

import "sawja/internal/classfile"

// Instr is the full IR instruction grammar (spec §3). Every operand
// position typed BasicExpr is guaranteed, by construction in
// internal/transform, to hold only a ConstExpr or a VarExpr.
type Instr interface{ isInstr() }

type Nop struct{}

func (Nop) isInstr() {}

type AffectVar struct {
	V Var
	E Expr
}

func (AffectVar) isInstr() {}

type AffectArray struct {
	Array BasicExpr
	Index BasicExpr
	Value BasicExpr
}

func (AffectArray) isInstr() {}

type AffectField struct {
	Object BasicExpr
	Class  classfile.ClassName
	Sig    classfile.FieldSignature
	Value  BasicExpr
}

func (AffectField) isInstr() {}

type AffectStaticField struct {
	Class classfile.ClassName
	Sig   classfile.FieldSignature
	Value Expr
}

func (AffectStaticField) isInstr() {}

// Goto is an unconditional jump to an absolute IR pc.
type Goto struct{ Target int }

func (Goto) isInstr() {}

// Cond is the (cmp, b1, b2) triple spec §3 describes for Ifd.
type Cond struct {
	Op    BinOp // one of OpCmpEq..OpCmpLe
	Left  BasicExpr
	Right BasicExpr
}

// Ifd is a conditional branch to an absolute IR pc; fallthrough to pc+1
// otherwise.
type Ifd struct {
	Cond   Cond
	Target int
}

func (Ifd) isInstr() {}

type Throw struct{ Value BasicExpr }

func (Throw) isInstr() {}

type Return struct{ Value BasicExpr } // Value == nil for a void return

func (Return) isInstr() {}

// New folds a `new C; ...; invokespecial C.<init>` pair into a single
// instruction (spec §4.1 step 7).
type New struct {
	V        Var
	Class    classfile.ClassName
	ArgTypes []classfile.Type
	Args     []BasicExpr
}

func (New) isInstr() {}

type NewArray struct {
	V        Var
	ElemType classfile.Type
	DimExprs []BasicExpr // one per declared dimension (multianewarray) or one (newarray/anewarray)
}

func (NewArray) isInstr() {}

type InvokeStatic struct {
	V      *Var // nil for a discarded/void result
	Class  classfile.ClassName
	Sig    classfile.MethodSignature
	Args   []BasicExpr
}

func (InvokeStatic) isInstr() {}

// DispatchKind selects how InvokeVirtual resolves its callee set: either
// ordinary virtual dispatch rooted at a declared object type, or
// interface dispatch rooted at an interface name (spec §3, §4.3).
type DispatchKind interface{ isDispatch() }

type Virtual struct{ ObjectType classfile.ClassName }

func (Virtual) isDispatch() {}

type Interface struct{ ClassName classfile.ClassName }

func (Interface) isDispatch() {}

type InvokeVirtual struct {
	V        *Var
	Dispatch DispatchKind
	Receiver BasicExpr
	Sig      classfile.MethodSignature
	Args     []BasicExpr
}

func (InvokeVirtual) isInstr() {}

// InvokeNonVirtual covers invokespecial call sites that are not folded
// into a New: superclass method calls, private methods, and <init>
// calls whose Uninit did not match a New fold (shouldn't occur for
// verifier-legal input, but the transformer still emits this shape so
// resolution logic has one consistent instruction for "statically
// known, non-overridable" calls).
type InvokeNonVirtual struct {
	V        *Var
	Class    classfile.ClassName // the class invokespecial names
	Receiver BasicExpr
	Sig      classfile.MethodSignature
	Args     []BasicExpr
}

func (InvokeNonVirtual) isInstr() {}

type MonitorEnter struct{ Value BasicExpr }

func (MonitorEnter) isInstr() {}

type MonitorExit struct{ Value BasicExpr }

func (MonitorExit) isInstr() {}

// MayInit marks a point where class initialization may be triggered,
// independent of any CheckLink (e.g. static field/method access always
// may-init regardless of the ch_link option).
type MayInit struct{ Class classfile.ClassName }

func (MayInit) isInstr() {}

// CheckInstr wraps a Check as a standalone instruction in the code
// stream (named to avoid colliding with the Check data type).
type CheckInstr struct{ Check Check }

func (CheckInstr) isInstr() {}
