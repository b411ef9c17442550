package transform

import (
	"sawja/internal/classfile"
	sawjaerrors "sawja/internal/errors"
	"sawja/internal/ir"
)

func tInt() classfile.Type    { return classfile.Primitive{Kind: classfile.TInt} }
func tLong() classfile.Type   { return classfile.Primitive{Kind: classfile.TLong} }
func tFloat() classfile.Type  { return classfile.Primitive{Kind: classfile.TFloat} }
func tDouble() classfile.Type { return classfile.Primitive{Kind: classfile.TDouble} }
func tBool() classfile.Type   { return classfile.Primitive{Kind: classfile.TBoolean} }
func tObj(name string) classfile.Type { return classfile.ObjectType{ClassName: name} }

// step executes one bytecode instruction against the incoming symbolic
// stack and returns the outgoing stack, emitting IR as a side effect.
func (t *transformer) step(instr classfile.Instr, in []stackItem) ([]stackItem, error) {
	pc := instr.PC
	switch instr.Op {

	// ---- constants ----
	case classfile.OpAConstNull:
		return push(in, exprItem(ir.ConstExpr{Value: ir.Null()})), nil
	case classfile.OpIConstM1, classfile.OpIConst0, classfile.OpIConst1, classfile.OpIConst2, classfile.OpIConst3, classfile.OpIConst4, classfile.OpIConst5:
		v := int32(instr.Op) - int32(classfile.OpIConst0)
		return push(in, exprItem(ir.ConstExpr{Value: ir.IntConst(v)})), nil
	case classfile.OpLConst0, classfile.OpLConst1:
		return push(in, exprItem(ir.ConstExpr{Value: ir.LongConst(int64(instr.Op) - int64(classfile.OpLConst0))})), nil
	case classfile.OpFConst0, classfile.OpFConst1, classfile.OpFConst2:
		return push(in, exprItem(ir.ConstExpr{Value: ir.FloatConst(float32(int(instr.Op) - int(classfile.OpFConst0)))})), nil
	case classfile.OpDConst0, classfile.OpDConst1:
		return push(in, exprItem(ir.ConstExpr{Value: ir.DoubleConst(float64(int(instr.Op) - int(classfile.OpDConst0)))})), nil
	case classfile.OpBipush:
		return push(in, exprItem(ir.ConstExpr{Value: ir.IntConst(instr.IIncConst)})), nil
	case classfile.OpSipush:
		return push(in, exprItem(ir.ConstExpr{Value: ir.IntConst(instr.IIncConst)})), nil
	case classfile.OpLdc, classfile.OpLdcW, classfile.OpLdc2W:
		return push(in, exprItem(ir.ConstExpr{Value: t.ldcConst(instr)})), nil

	// ---- local loads/stores ----
	case classfile.OpILoad, classfile.OpALoad, classfile.OpFLoad:
		typ := tInt()
		if instr.Op == classfile.OpALoad {
			typ = tObj("java/lang/Object")
		} else if instr.Op == classfile.OpFLoad {
			typ = tFloat()
		}
		return push(in, exprItem(t.localVar(instr.LocalSlot, typ))), nil
	case classfile.OpLLoad:
		return push(in, exprItem(t.localVar(instr.LocalSlot, tLong()))), nil
	case classfile.OpDLoad:
		return push(in, exprItem(t.localVar(instr.LocalSlot, tDouble()))), nil

	case classfile.OpIStore, classfile.OpAStore, classfile.OpFStore, classfile.OpLStore, classfile.OpDStore:
		rest, top := pop(in, 1)
		v, err := t.basic(pc, top[0])
		if err != nil {
			return nil, err
		}
		typ := ir.TypeOf(v, t.types)
		lv := t.localVar(instr.LocalSlot, typ)
		t.emit(pc, ir.AffectVar{V: lv.Var, E: v})
		return rest, nil

	case classfile.OpIInc:
		lv := t.localVar(instr.LocalSlot, tInt())
		sum := ir.Binop{Op: ir.OpAdd, Num: ir.NumInt, Left: lv, Right: ir.ConstExpr{Value: ir.IntConst(instr.IIncConst)}}
		t.emit(pc, ir.AffectVar{V: lv.Var, E: sum})
		return in, nil

	// ---- array loads ----
	case classfile.OpIALoad, classfile.OpLALoad, classfile.OpFALoad, classfile.OpDALoad, classfile.OpAALoad, classfile.OpBALoad, classfile.OpCALoad, classfile.OpSALoad:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 2)
		arr, idx := top[0].expr.(ir.BasicExpr), top[1].expr.(ir.BasicExpr)
		t.arrayLoadChecks(pc, arr, idx)
		elemT := arrayLoadElemType(instr.Op)
		tmp := t.freshTemp(elemT)
		t.emit(pc, ir.AffectVar{V: tmp.Var, E: ir.ArrayRead{Array: arr, Index: idx, Elem: elemT}})
		return push(rest, exprItem(tmp)), nil

	// ---- array stores ----
	case classfile.OpIAStore, classfile.OpLAStore, classfile.OpFAStore, classfile.OpDAStore, classfile.OpAAStore, classfile.OpBAStore, classfile.OpCAStore, classfile.OpSAStore:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 3)
		arr, idx, val := top[0].expr.(ir.BasicExpr), top[1].expr.(ir.BasicExpr), top[2].expr.(ir.BasicExpr)
		t.arrayStoreChecks(pc, arr, idx, val, instr.Op == classfile.OpAAStore)
		t.emit(pc, ir.AffectArray{Array: arr, Index: idx, Value: val})
		return rest, nil

	// ---- stack ops ----
	case classfile.OpPop:
		rest, _ := pop(in, 1)
		return rest, nil
	case classfile.OpPop2:
		rest, _ := pop(in, 2)
		return rest, nil
	case classfile.OpDup:
		return push(in, in[len(in)-1]), nil
	case classfile.OpDupX1:
		n := len(in)
		top := in[n-1]
		out := append(append([]stackItem{}, in[:n-2]...), top, in[n-2], top)
		return out, nil
	case classfile.OpDupX2:
		n := len(in)
		top := in[n-1]
		out := append(append([]stackItem{}, in[:n-3]...), top, in[n-3], in[n-2], top)
		return out, nil
	case classfile.OpDup2:
		n := len(in)
		out := append(append([]stackItem{}, in...), in[n-2], in[n-1])
		return out, nil
	case classfile.OpDup2X1:
		n := len(in)
		out := append(append([]stackItem{}, in[:n-3]...), in[n-2], in[n-1], in[n-3], in[n-2], in[n-1])
		return out, nil
	case classfile.OpDup2X2:
		n := len(in)
		out := append(append([]stackItem{}, in[:n-4]...), in[n-2], in[n-1], in[n-4], in[n-3], in[n-2], in[n-1])
		return out, nil
	case classfile.OpSwap:
		n := len(in)
		out := append([]stackItem{}, in...)
		out[n-1], out[n-2] = out[n-2], out[n-1]
		return out, nil

	// ---- arithmetic ----
	case classfile.OpIAdd, classfile.OpISub, classfile.OpIMul, classfile.OpIAnd, classfile.OpIOr, classfile.OpIXor,
		classfile.OpLAdd, classfile.OpLSub, classfile.OpLMul, classfile.OpLAnd, classfile.OpLOr, classfile.OpLXor,
		classfile.OpFAdd, classfile.OpFSub, classfile.OpFMul, classfile.OpFDiv, classfile.OpFRem,
		classfile.OpDAdd, classfile.OpDSub, classfile.OpDMul, classfile.OpDDiv, classfile.OpDRem,
		classfile.OpIShl, classfile.OpIShr, classfile.OpIUshr, classfile.OpLShl, classfile.OpLShr, classfile.OpLUshr:
		rest, top := pop(in, 2)
		l, err := t.basic(pc, top[0])
		if err != nil {
			return nil, err
		}
		r, err := t.basic(pc, top[1])
		if err != nil {
			return nil, err
		}
		op, num := arithOpNum(instr.Op)
		return push(rest, exprItem(ir.Binop{Op: op, Num: num, Left: l, Right: r})), nil

	case classfile.OpIDiv, classfile.OpLDiv, classfile.OpIRem, classfile.OpLRem:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 2)
		l, r := top[0].expr.(ir.BasicExpr), top[1].expr.(ir.BasicExpr)
		t.checkArithmetic(pc, r)
		op, num := arithOpNum(instr.Op)
		tmp := t.freshTemp(numType2(num))
		t.emit(pc, ir.AffectVar{V: tmp.Var, E: ir.Binop{Op: op, Num: num, Left: l, Right: r}})
		return push(rest, exprItem(tmp)), nil

	case classfile.OpINeg, classfile.OpLNeg, classfile.OpFNeg, classfile.OpDNeg:
		rest, top := pop(in, 1)
		v, err := t.basic(pc, top[0])
		if err != nil {
			return nil, err
		}
		num := negNum(instr.Op)
		return push(rest, exprItem(ir.Unop{Op: ir.OpNeg, Num: num, Operand: v})), nil

	// ---- conversions ----
	case classfile.OpI2L, classfile.OpI2F, classfile.OpI2D, classfile.OpL2I, classfile.OpL2F, classfile.OpL2D,
		classfile.OpF2I, classfile.OpF2L, classfile.OpF2D, classfile.OpD2I, classfile.OpD2L, classfile.OpD2F,
		classfile.OpI2B, classfile.OpI2C, classfile.OpI2S:
		rest, top := pop(in, 1)
		v, err := t.basic(pc, top[0])
		if err != nil {
			return nil, err
		}
		return push(rest, exprItem(ir.Unop{Op: convOp(instr.Op), Operand: v})), nil

	// ---- comparisons (push an int result consumed by a following If*) ----
	case classfile.OpLCmp, classfile.OpFCmpL, classfile.OpFCmpG, classfile.OpDCmpL, classfile.OpDCmpG:
		rest, top := pop(in, 2)
		l, r := top[0].expr.(ir.BasicExpr), top[1].expr.(ir.BasicExpr)
		op := cmpOp(instr.Op)
		num := cmpNum(instr.Op)
		return push(rest, exprItem(ir.Binop{Op: op, Num: num, Left: l, Right: r})), nil

	// ---- control flow ----
	case classfile.OpGoto:
		flushed := t.flush(pc, in)
		if len(flushed) != 0 && instr.Target <= pc {
			return nil, t.fail(sawjaerrors.KindNonemptyStackBackwardJump, pc, "backward goto with non-empty stack")
		}
		irpc := t.emit(pc, ir.Goto{Target: -1}) // patched in finalize()
		t.recordPendingJump(irpc, instr.Target)
		t.recordJumpStack(instr.Target, flushed)
		return nil, nil

	case classfile.OpIfEq, classfile.OpIfNe, classfile.OpIfLt, classfile.OpIfGe, classfile.OpIfGt, classfile.OpIfLe:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		v := top[0].expr.(ir.BasicExpr)
		cond := ir.Cond{Op: ifOp(instr.Op), Left: v, Right: ir.ConstExpr{Value: ir.IntConst(0)}}
		return t.emitIf(pc, instr, cond, rest)

	case classfile.OpIfICmpEq, classfile.OpIfICmpNe, classfile.OpIfICmpLt, classfile.OpIfICmpGe, classfile.OpIfICmpGt, classfile.OpIfICmpLe,
		classfile.OpIfACmpEq, classfile.OpIfACmpNe:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 2)
		l, r := top[0].expr.(ir.BasicExpr), top[1].expr.(ir.BasicExpr)
		cond := ir.Cond{Op: ifCmpOp(instr.Op), Left: l, Right: r}
		return t.emitIf(pc, instr, cond, rest)

	case classfile.OpIfNull, classfile.OpIfNonNull:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		v := top[0].expr.(ir.BasicExpr)
		op := ir.OpCmpEq
		if instr.Op == classfile.OpIfNonNull {
			op = ir.OpCmpNe
		}
		cond := ir.Cond{Op: op, Left: v, Right: ir.ConstExpr{Value: ir.Null()}}
		return t.emitIf(pc, instr, cond, rest)

	case classfile.OpReturn:
		t.flush(pc, in)
		t.emit(pc, ir.Return{})
		return nil, nil
	case classfile.OpIReturn, classfile.OpLReturn, classfile.OpFReturn, classfile.OpDReturn, classfile.OpAReturn:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		v := top[0].expr.(ir.BasicExpr)
		t.emit(pc, ir.Return{Value: v})
		_ = rest
		return nil, nil

	case classfile.OpAThrow:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		v := top[0].expr.(ir.BasicExpr)
		t.checkNull(pc, v)
		t.emit(pc, ir.Throw{Value: v})
		_ = rest
		return nil, nil

	// ---- fields ----
	case classfile.OpGetStatic:
		t.emit(pc, ir.MayInit{Class: instr.ClassName})
		t.checkLink(pc, instr.Op, instr.ClassName)
		typ := descriptorType(instr.FieldSig.Descriptor)
		return push(in, exprItem(ir.StaticField{Class: instr.ClassName, Sig: instr.FieldSig, Type: typ})), nil

	case classfile.OpPutStatic:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		v := top[0].expr.(ir.BasicExpr)
		t.emit(pc, ir.MayInit{Class: instr.ClassName})
		t.checkLink(pc, instr.Op, instr.ClassName)
		t.emit(pc, ir.AffectStaticField{Class: instr.ClassName, Sig: instr.FieldSig, Value: v})
		return rest, nil

	case classfile.OpGetField:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		obj := top[0].expr.(ir.BasicExpr)
		t.checkNull(pc, obj)
		t.checkLink(pc, instr.Op, instr.ClassName)
		typ := descriptorType(instr.FieldSig.Descriptor)
		return push(rest, exprItem(ir.Field{Object: obj, Class: instr.ClassName, Sig: instr.FieldSig, Type: typ})), nil

	case classfile.OpPutField:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 2)
		obj, val := top[0].expr.(ir.BasicExpr), top[1].expr.(ir.BasicExpr)
		t.checkNull(pc, obj)
		t.checkLink(pc, instr.Op, instr.ClassName)
		t.emit(pc, ir.AffectField{Object: obj, Class: instr.ClassName, Sig: instr.FieldSig, Value: val})
		return rest, nil

	// ---- objects / arrays ----
	case classfile.OpNew:
		id := t.nextUninitID
		t.nextUninitID++
		return push(in, stackItem{uninit: &uninitMarker{id: id, pc: pc, class: instr.ClassName}}), nil

	case classfile.OpNewArray:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		sz := top[0].expr.(ir.BasicExpr)
		t.checkNegSize(pc, sz)
		elemT := primitiveArrayElem(instr.ArrayElemKind)
		tmp := t.freshTemp(classfile.ObjectType{Array: &classfile.ArrayType{Elem: elemT, Dims: 1}})
		t.emit(pc, ir.NewArray{V: tmp.Var, ElemType: elemT, DimExprs: []ir.BasicExpr{sz}})
		return push(rest, exprItem(tmp)), nil

	case classfile.OpANewArray:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		sz := top[0].expr.(ir.BasicExpr)
		t.checkNegSize(pc, sz)
		t.checkLink(pc, instr.Op, instr.ClassName)
		elemT := classfile.ObjectType{ClassName: instr.ClassName}
		tmp := t.freshTemp(classfile.ObjectType{Array: &classfile.ArrayType{Elem: elemT, Dims: 1}})
		t.emit(pc, ir.NewArray{V: tmp.Var, ElemType: elemT, DimExprs: []ir.BasicExpr{sz}})
		return push(rest, exprItem(tmp)), nil

	case classfile.OpMultiANewArray:
		if instr.Dims == 0 {
			return nil, t.fail(sawjaerrors.KindBadMultiarrayDimension, pc, "multianewarray with 0 dimensions")
		}
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, instr.Dims)
		var dimExprs []ir.BasicExpr
		for _, it := range top {
			b := it.expr.(ir.BasicExpr)
			t.checkNegSize(pc, b)
			dimExprs = append(dimExprs, b)
		}
		t.checkLink(pc, instr.Op, instr.ClassName)
		elemT := classfile.ObjectType{Array: &classfile.ArrayType{Elem: instr.ArrayElemType, Dims: instr.Dims}}
		tmp := t.freshTemp(elemT)
		t.emit(pc, ir.NewArray{V: tmp.Var, ElemType: instr.ArrayElemType, DimExprs: dimExprs})
		return push(rest, exprItem(tmp)), nil

	case classfile.OpArrayLength:
		rest, top := pop(in, 1)
		arr, err := t.basic(pc, top[0])
		if err != nil {
			return nil, err
		}
		t.checkNull(pc, arr)
		return push(rest, exprItem(ir.Unop{Op: ir.OpArrayLength, Operand: arr})), nil

	case classfile.OpCheckCast:
		rest, top := pop(in, 1)
		v, err := t.basic(pc, top[0])
		if err != nil {
			return nil, err
		}
		t.checkLink(pc, instr.Op, instr.ClassName)
		castTo := classfile.Type(classfile.ObjectType{ClassName: instr.ClassName})
		t.checkCast(pc, castTo, v)
		return push(rest, exprItem(v)), nil

	case classfile.OpInstanceOf:
		rest, top := pop(in, 1)
		v, err := t.basic(pc, top[0])
		if err != nil {
			return nil, err
		}
		t.checkLink(pc, instr.Op, instr.ClassName)
		return push(rest, exprItem(ir.Unop{Op: ir.OpInstanceOf, InstanceOfClass: instr.ClassName, Operand: v})), nil

	case classfile.OpMonitorEnter:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		v := top[0].expr.(ir.BasicExpr)
		t.checkNull(pc, v)
		t.emit(pc, ir.MonitorEnter{Value: v})
		return rest, nil
	case classfile.OpMonitorExit:
		flushed := t.flush(pc, in)
		rest, top := pop(flushed, 1)
		v := top[0].expr.(ir.BasicExpr)
		t.emit(pc, ir.MonitorExit{Value: v})
		return rest, nil

	// ---- invokes ----
	case classfile.OpInvokeStatic:
		return t.invokeStatic(instr, in)
	case classfile.OpInvokeSpecial:
		return t.invokeSpecial(instr, in)
	case classfile.OpInvokeVirtual:
		return t.invokeVirtual(instr, in, false)
	case classfile.OpInvokeInterface:
		return t.invokeVirtual(instr, in, true)

	case classfile.OpNop:
		t.emit(pc, ir.Nop{})
		return in, nil

	case classfile.OpJsr, classfile.OpRet:
		return nil, t.fail(sawjaerrors.KindSubroutine, pc, "JSR/RET subroutines are not supported")

	default:
		return in, nil
	}
}
