package ir

import "sawja/internal/classfile"

// TypeOf computes the static type of an expression tree, used both to
// type the fresh temporaries the transformer's three-address
// normalization introduces and by the operand-shape invariant (spec §8:
// "type_of_expr(e) agrees with the declared type of its producing
// AffectVar").
func TypeOf(e Expr, vt *VarTypes) classfile.Type {
	switch v := e.(type) {
	case ConstExpr:
		return constType(v.Value)
	case VarExpr:
		return v.Type
	case Unop:
		return unopType(v)
	case Binop:
		if v.Op == OpCmp || v.Op == OpCmpL || v.Op == OpCmpG {
			return classfile.Primitive{Kind: classfile.TInt}
		}
		return numType(v.Num)
	case Field:
		return v.Type
	case StaticField:
		return v.Type
	case ArrayRead:
		return v.Elem
	default:
		return nil
	}
}

func constType(c Constant) classfile.Type {
	switch c.Kind {
	case ConstNull:
		return classfile.ObjectType{ClassName: "java/lang/Object"}
	case ConstByte:
		return classfile.Primitive{Kind: classfile.TByte}
	case ConstShort:
		return classfile.Primitive{Kind: classfile.TShort}
	case ConstInt:
		return classfile.Primitive{Kind: classfile.TInt}
	case ConstLong:
		return classfile.Primitive{Kind: classfile.TLong}
	case ConstFloat:
		return classfile.Primitive{Kind: classfile.TFloat}
	case ConstDouble:
		return classfile.Primitive{Kind: classfile.TDouble}
	case ConstString:
		return classfile.ObjectType{ClassName: "java/lang/String"}
	case ConstClass:
		return classfile.ObjectType{ClassName: "java/lang/Class"}
	default:
		return nil
	}
}

func numType(n NumKind) classfile.Type {
	switch n {
	case NumInt:
		return classfile.Primitive{Kind: classfile.TInt}
	case NumLong:
		return classfile.Primitive{Kind: classfile.TLong}
	case NumFloat:
		return classfile.Primitive{Kind: classfile.TFloat}
	case NumDouble:
		return classfile.Primitive{Kind: classfile.TDouble}
	default:
		return nil
	}
}

func unopType(u Unop) classfile.Type {
	switch u.Op {
	case OpArrayLength:
		return classfile.Primitive{Kind: classfile.TInt}
	case OpInstanceOf:
		return classfile.Primitive{Kind: classfile.TBoolean}
	case OpNeg:
		return numType(u.Num)
	case OpI2L, OpF2L, OpD2L:
		return classfile.Primitive{Kind: classfile.TLong}
	case OpI2F, OpL2F, OpD2F:
		return classfile.Primitive{Kind: classfile.TFloat}
	case OpI2D, OpL2D, OpF2D:
		return classfile.Primitive{Kind: classfile.TDouble}
	case OpL2I, OpF2I, OpD2I, OpI2B, OpI2C, OpI2S:
		return classfile.Primitive{Kind: classfile.TInt}
	default:
		return nil
	}
}
