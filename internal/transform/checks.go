package transform

import (
	"sawja/internal/classfile"
	"sawja/internal/ir"
)

func (t *transformer) emitCheck(bcpc int, c ir.Check) {
	t.emit(bcpc, ir.CheckInstr{Check: c})
}

func (t *transformer) checkNull(bcpc int, v ir.BasicExpr) {
	t.emitCheck(bcpc, ir.Check{Kind: ir.CheckNullPointer, Value: v})
}

func (t *transformer) checkBound(bcpc int, arr, idx ir.BasicExpr) {
	t.emitCheck(bcpc, ir.Check{Kind: ir.CheckArrayBound, Array: arr, Index: idx})
}

func (t *transformer) checkStore(bcpc int, arr, val ir.BasicExpr) {
	t.emitCheck(bcpc, ir.Check{Kind: ir.CheckArrayStore, Array: arr, StoredVal: val})
}

func (t *transformer) checkNegSize(bcpc int, sz ir.BasicExpr) {
	t.emitCheck(bcpc, ir.Check{Kind: ir.CheckNegativeArraySize, Size: sz})
}

func (t *transformer) checkCast(bcpc int, to classfile.Type, v ir.BasicExpr) {
	t.emitCheck(bcpc, ir.Check{Kind: ir.CheckCast, CastTo: to, CastValue: v})
}

func (t *transformer) checkArithmetic(bcpc int, divisor ir.BasicExpr) {
	t.emitCheck(bcpc, ir.Check{Kind: ir.CheckArithmetic, Divisor: divisor})
}

func (t *transformer) checkLink(bcpc int, op classfile.Opcode, class classfile.ClassName) {
	if !t.opt.CHLink {
		return
	}
	t.emitCheck(bcpc, ir.Check{Kind: ir.CheckLink, LinkOp: op, LinkClass: class})
}

// arrayLoadChecks emits, in JVM order, the null-pointer and bound checks
// every x?aload shares (spec §8 scenario 2's analog for loads).
func (t *transformer) arrayLoadChecks(bcpc int, arr, idx ir.BasicExpr) {
	t.checkNull(bcpc, arr)
	t.checkBound(bcpc, arr, idx)
}

// arrayStoreChecks emits, in JVM order, null -> bound -> (array-store,
// reference arrays only) — spec §8 scenario 2.
func (t *transformer) arrayStoreChecks(bcpc int, arr, idx, val ir.BasicExpr, refType bool) {
	t.checkNull(bcpc, arr)
	t.checkBound(bcpc, arr, idx)
	if refType {
		t.checkStore(bcpc, arr, val)
	}
}
