package ir

import "sawja/internal/classfile"

// ConstKind tags the Constant union (spec §3).
type ConstKind uint8

const (
	ConstNull ConstKind = iota
	ConstByte
	ConstShort
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstString
	ConstClass // a class literal, e.g. `Foo.class`
)

// Constant is the tagged union of literal values the IR can hold inline.
// Only one of the typed fields is meaningful, selected by Kind.
type Constant struct {
	Kind    ConstKind
	Int     int64
	Float   float64
	Str     string
	ClassOf classfile.ObjectType // ConstClass
}

func Null() Constant            { return Constant{Kind: ConstNull} }
func IntConst(v int32) Constant { return Constant{Kind: ConstInt, Int: int64(v)} }
func LongConst(v int64) Constant { return Constant{Kind: ConstLong, Int: v} }
func ByteConst(v int8) Constant  { return Constant{Kind: ConstByte, Int: int64(v)} }
func ShortConst(v int16) Constant { return Constant{Kind: ConstShort, Int: int64(v)} }
func FloatConst(v float32) Constant { return Constant{Kind: ConstFloat, Float: float64(v)} }
func DoubleConst(v float64) Constant { return Constant{Kind: ConstDouble, Float: v} }
func StringConst(v string) Constant { return Constant{Kind: ConstString, Str: v} }
func ClassConst(t classfile.ObjectType) Constant { return Constant{Kind: ConstClass, ClassOf: t} }
