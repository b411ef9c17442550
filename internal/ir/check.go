package ir

import "sawja/internal/classfile"

// CheckKind enumerates the explicit runtime guards the transformer
// materializes in place of implicit JVM exceptions (spec §3, §4.1 step
// 6). Order of emission per instruction is dictated by the JVM spec, not
// by this enum's declaration order.
type CheckKind uint8

const (
	CheckNullPointer CheckKind = iota
	CheckArrayBound
	CheckArrayStore
	CheckNegativeArraySize
	CheckCast
	CheckArithmetic
	CheckLink
)

// Check is a single runtime guard. Which operand fields are meaningful
// depends on Kind.
type Check struct {
	Kind CheckKind

	Value      BasicExpr // CheckNullPointer: the reference being dereferenced
	Array      BasicExpr // CheckArrayBound/CheckArrayStore/CheckNegativeArraySize
	Index      BasicExpr // CheckArrayBound
	StoredVal  BasicExpr // CheckArrayStore
	Size       BasicExpr // CheckNegativeArraySize
	CastTo     classfile.Type // CheckCast
	CastValue  BasicExpr      // CheckCast
	Divisor    BasicExpr // CheckArithmetic
	LinkOp     classfile.Opcode // CheckLink: the opcode whose resolution may load classes
	LinkClass  classfile.ClassName
}
