package transform

import (
	"sawja/internal/classfile"
	"sawja/internal/ir"
)

// ldcConst resolves an Ldc/LdcW/Ldc2W operand, already constant-pool
// resolved by the external decoder into instr.Const, to an ir.Constant.
func (t *transformer) ldcConst(instr classfile.Instr) ir.Constant {
	switch v := instr.Const.(type) {
	case int32:
		return ir.IntConst(v)
	case int64:
		return ir.LongConst(v)
	case float32:
		return ir.FloatConst(v)
	case float64:
		return ir.DoubleConst(v)
	case string:
		return ir.StringConst(v)
	case classfile.ObjectType:
		return ir.ClassConst(v)
	default:
		return ir.Null()
	}
}

func arrayLoadElemType(op classfile.Opcode) classfile.Type {
	switch op {
	case classfile.OpIALoad:
		return tInt()
	case classfile.OpLALoad:
		return tLong()
	case classfile.OpFALoad:
		return tFloat()
	case classfile.OpDALoad:
		return tDouble()
	case classfile.OpAALoad:
		return tObj("java/lang/Object")
	case classfile.OpBALoad:
		return classfile.Primitive{Kind: classfile.TByte}
	case classfile.OpCALoad:
		return classfile.Primitive{Kind: classfile.TChar}
	case classfile.OpSALoad:
		return classfile.Primitive{Kind: classfile.TShort}
	default:
		return tInt()
	}
}

// arithOpNum maps a binary arithmetic/bitwise/shift opcode to its
// (BinOp, NumKind) pair.
func arithOpNum(op classfile.Opcode) (ir.BinOp, ir.NumKind) {
	switch op {
	case classfile.OpIAdd:
		return ir.OpAdd, ir.NumInt
	case classfile.OpLAdd:
		return ir.OpAdd, ir.NumLong
	case classfile.OpFAdd:
		return ir.OpAdd, ir.NumFloat
	case classfile.OpDAdd:
		return ir.OpAdd, ir.NumDouble
	case classfile.OpISub:
		return ir.OpSub, ir.NumInt
	case classfile.OpLSub:
		return ir.OpSub, ir.NumLong
	case classfile.OpFSub:
		return ir.OpSub, ir.NumFloat
	case classfile.OpDSub:
		return ir.OpSub, ir.NumDouble
	case classfile.OpIMul:
		return ir.OpMul, ir.NumInt
	case classfile.OpLMul:
		return ir.OpMul, ir.NumLong
	case classfile.OpFMul:
		return ir.OpMul, ir.NumFloat
	case classfile.OpDMul:
		return ir.OpMul, ir.NumDouble
	case classfile.OpIDiv:
		return ir.OpDiv, ir.NumInt
	case classfile.OpLDiv:
		return ir.OpDiv, ir.NumLong
	case classfile.OpFDiv:
		return ir.OpDiv, ir.NumFloat
	case classfile.OpDDiv:
		return ir.OpDiv, ir.NumDouble
	case classfile.OpIRem:
		return ir.OpRem, ir.NumInt
	case classfile.OpLRem:
		return ir.OpRem, ir.NumLong
	case classfile.OpFRem:
		return ir.OpRem, ir.NumFloat
	case classfile.OpDRem:
		return ir.OpRem, ir.NumDouble
	case classfile.OpIAnd:
		return ir.OpAnd, ir.NumInt
	case classfile.OpLAnd:
		return ir.OpAnd, ir.NumLong
	case classfile.OpIOr:
		return ir.OpOr, ir.NumInt
	case classfile.OpLOr:
		return ir.OpOr, ir.NumLong
	case classfile.OpIXor:
		return ir.OpXor, ir.NumInt
	case classfile.OpLXor:
		return ir.OpXor, ir.NumLong
	case classfile.OpIShl:
		return ir.OpShl, ir.NumInt
	case classfile.OpLShl:
		return ir.OpShl, ir.NumLong
	case classfile.OpIShr:
		return ir.OpShr, ir.NumInt
	case classfile.OpLShr:
		return ir.OpShr, ir.NumLong
	case classfile.OpIUshr:
		return ir.OpUShr, ir.NumInt
	case classfile.OpLUshr:
		return ir.OpUShr, ir.NumLong
	default:
		return ir.OpAdd, ir.NumInt
	}
}

func numType2(n ir.NumKind) classfile.Type {
	switch n {
	case ir.NumInt:
		return tInt()
	case ir.NumLong:
		return tLong()
	case ir.NumFloat:
		return tFloat()
	case ir.NumDouble:
		return tDouble()
	default:
		return tInt()
	}
}

func negNum(op classfile.Opcode) ir.NumKind {
	switch op {
	case classfile.OpLNeg:
		return ir.NumLong
	case classfile.OpFNeg:
		return ir.NumFloat
	case classfile.OpDNeg:
		return ir.NumDouble
	default:
		return ir.NumInt
	}
}

func convOp(op classfile.Opcode) ir.UnOp {
	switch op {
	case classfile.OpI2L:
		return ir.OpI2L
	case classfile.OpI2F:
		return ir.OpI2F
	case classfile.OpI2D:
		return ir.OpI2D
	case classfile.OpL2I:
		return ir.OpL2I
	case classfile.OpL2F:
		return ir.OpL2F
	case classfile.OpL2D:
		return ir.OpL2D
	case classfile.OpF2I:
		return ir.OpF2I
	case classfile.OpF2L:
		return ir.OpF2L
	case classfile.OpF2D:
		return ir.OpF2D
	case classfile.OpD2I:
		return ir.OpD2I
	case classfile.OpD2L:
		return ir.OpD2L
	case classfile.OpD2F:
		return ir.OpD2F
	case classfile.OpI2B:
		return ir.OpI2B
	case classfile.OpI2C:
		return ir.OpI2C
	case classfile.OpI2S:
		return ir.OpI2S
	default:
		return ir.OpI2L
	}
}

func cmpOp(op classfile.Opcode) ir.BinOp {
	switch op {
	case classfile.OpLCmp:
		return ir.OpCmp
	case classfile.OpFCmpL, classfile.OpDCmpL:
		return ir.OpCmpL
	case classfile.OpFCmpG, classfile.OpDCmpG:
		return ir.OpCmpG
	default:
		return ir.OpCmp
	}
}

func cmpNum(op classfile.Opcode) ir.NumKind {
	switch op {
	case classfile.OpLCmp:
		return ir.NumLong
	case classfile.OpFCmpL, classfile.OpFCmpG:
		return ir.NumFloat
	case classfile.OpDCmpL, classfile.OpDCmpG:
		return ir.NumDouble
	default:
		return ir.NumInt
	}
}

// ifOp maps a unary If* opcode (compared against 0) to its comparison.
func ifOp(op classfile.Opcode) ir.BinOp {
	switch op {
	case classfile.OpIfEq:
		return ir.OpCmpEq
	case classfile.OpIfNe:
		return ir.OpCmpNe
	case classfile.OpIfLt:
		return ir.OpCmpLt
	case classfile.OpIfGe:
		return ir.OpCmpGe
	case classfile.OpIfGt:
		return ir.OpCmpGt
	case classfile.OpIfLe:
		return ir.OpCmpLe
	default:
		return ir.OpCmpEq
	}
}

// ifCmpOp maps a binary If*Cmp* opcode to its comparison.
func ifCmpOp(op classfile.Opcode) ir.BinOp {
	switch op {
	case classfile.OpIfICmpEq, classfile.OpIfACmpEq:
		return ir.OpCmpEq
	case classfile.OpIfICmpNe, classfile.OpIfACmpNe:
		return ir.OpCmpNe
	case classfile.OpIfICmpLt:
		return ir.OpCmpLt
	case classfile.OpIfICmpGe:
		return ir.OpCmpGe
	case classfile.OpIfICmpGt:
		return ir.OpCmpGt
	case classfile.OpIfICmpLe:
		return ir.OpCmpLe
	default:
		return ir.OpCmpEq
	}
}

func primitiveArrayElem(kind classfile.PrimitiveKind) classfile.Type {
	return classfile.Primitive{Kind: kind}
}

// descriptorType parses a single JVM field descriptor (e.g. "I",
// "[Ljava/lang/String;", "Z") into a classfile.Type.
func descriptorType(desc string) classfile.Type {
	return classfile.ParseFieldDescriptor(desc)
}
