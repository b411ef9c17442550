package classfile

// Opcode is the JVM instruction opcode space. Numeric values match the
// JVM specification so that a real external disassembler's output slots
// in unmodified; this module never computes them, only switches on them.
type Opcode uint8

const (
	OpNop         Opcode = 0x00
	OpAConstNull  Opcode = 0x01
	OpIConstM1    Opcode = 0x02
	OpIConst0     Opcode = 0x03
	OpIConst1     Opcode = 0x04
	OpIConst2     Opcode = 0x05
	OpIConst3     Opcode = 0x06
	OpIConst4     Opcode = 0x07
	OpIConst5     Opcode = 0x08
	OpLConst0     Opcode = 0x09
	OpLConst1     Opcode = 0x0a
	OpFConst0     Opcode = 0x0b
	OpFConst1     Opcode = 0x0c
	OpFConst2     Opcode = 0x0d
	OpDConst0     Opcode = 0x0e
	OpDConst1     Opcode = 0x0f
	OpBipush      Opcode = 0x10
	OpSipush      Opcode = 0x11
	OpLdc         Opcode = 0x12
	OpLdcW        Opcode = 0x13
	OpLdc2W       Opcode = 0x14

	OpILoad Opcode = 0x15
	OpLLoad Opcode = 0x16
	OpFLoad Opcode = 0x17
	OpDLoad Opcode = 0x18
	OpALoad Opcode = 0x19

	OpIALoad Opcode = 0x2e
	OpLALoad Opcode = 0x2f
	OpFALoad Opcode = 0x30
	OpDALoad Opcode = 0x31
	OpAALoad Opcode = 0x32
	OpBALoad Opcode = 0x33
	OpCALoad Opcode = 0x34
	OpSALoad Opcode = 0x35

	OpIStore Opcode = 0x36
	OpLStore Opcode = 0x37
	OpFStore Opcode = 0x38
	OpDStore Opcode = 0x39
	OpAStore Opcode = 0x3a

	OpIAStore Opcode = 0x4f
	OpLAStore Opcode = 0x50
	OpFAStore Opcode = 0x51
	OpDAStore Opcode = 0x52
	OpAAStore Opcode = 0x53
	OpBAStore Opcode = 0x54
	OpCAStore Opcode = 0x55
	OpSAStore Opcode = 0x56

	OpPop     Opcode = 0x57
	OpPop2    Opcode = 0x58
	OpDup     Opcode = 0x59
	OpDupX1   Opcode = 0x5a
	OpDupX2   Opcode = 0x5b
	OpDup2    Opcode = 0x5c
	OpDup2X1  Opcode = 0x5d
	OpDup2X2  Opcode = 0x5e
	OpSwap    Opcode = 0x5f

	OpIAdd Opcode = 0x60
	OpLAdd Opcode = 0x61
	OpFAdd Opcode = 0x62
	OpDAdd Opcode = 0x63
	OpISub Opcode = 0x64
	OpLSub Opcode = 0x65
	OpFSub Opcode = 0x66
	OpDSub Opcode = 0x67
	OpIMul Opcode = 0x68
	OpLMul Opcode = 0x69
	OpFMul Opcode = 0x6a
	OpDMul Opcode = 0x6b
	OpIDiv Opcode = 0x6c
	OpLDiv Opcode = 0x6d
	OpFDiv Opcode = 0x6e
	OpDDiv Opcode = 0x6f
	OpIRem Opcode = 0x70
	OpLRem Opcode = 0x71
	OpFRem Opcode = 0x72
	OpDRem Opcode = 0x73
	OpINeg Opcode = 0x74
	OpLNeg Opcode = 0x75
	OpFNeg Opcode = 0x76
	OpDNeg Opcode = 0x77

	OpIShl  Opcode = 0x78
	OpLShl  Opcode = 0x79
	OpIShr  Opcode = 0x7a
	OpLShr  Opcode = 0x7b
	OpIUshr Opcode = 0x7c
	OpLUshr Opcode = 0x7d
	OpIAnd  Opcode = 0x7e
	OpLAnd  Opcode = 0x7f
	OpIOr   Opcode = 0x80
	OpLOr   Opcode = 0x81
	OpIXor  Opcode = 0x82
	OpLXor  Opcode = 0x83

	OpIInc Opcode = 0x84

	OpI2L Opcode = 0x85
	OpI2F Opcode = 0x86
	OpI2D Opcode = 0x87
	OpL2I Opcode = 0x88
	OpL2F Opcode = 0x89
	OpL2D Opcode = 0x8a
	OpF2I Opcode = 0x8b
	OpF2L Opcode = 0x8c
	OpF2D Opcode = 0x8d
	OpD2I Opcode = 0x8e
	OpD2L Opcode = 0x8f
	OpD2F Opcode = 0x90
	OpI2B Opcode = 0x91
	OpI2C Opcode = 0x92
	OpI2S Opcode = 0x93

	OpLCmp  Opcode = 0x94
	OpFCmpL Opcode = 0x95
	OpFCmpG Opcode = 0x96
	OpDCmpL Opcode = 0x97
	OpDCmpG Opcode = 0x98

	OpIfEq      Opcode = 0x99
	OpIfNe      Opcode = 0x9a
	OpIfLt      Opcode = 0x9b
	OpIfGe      Opcode = 0x9c
	OpIfGt      Opcode = 0x9d
	OpIfLe      Opcode = 0x9e
	OpIfICmpEq  Opcode = 0x9f
	OpIfICmpNe  Opcode = 0xa0
	OpIfICmpLt  Opcode = 0xa1
	OpIfICmpGe  Opcode = 0xa2
	OpIfICmpGt  Opcode = 0xa3
	OpIfICmpLe  Opcode = 0xa4
	OpIfACmpEq  Opcode = 0xa5
	OpIfACmpNe  Opcode = 0xa6
	OpGoto      Opcode = 0xa7

	OpIReturn Opcode = 0xac
	OpLReturn Opcode = 0xad
	OpFReturn Opcode = 0xae
	OpDReturn Opcode = 0xaf
	OpAReturn Opcode = 0xb0
	OpReturn  Opcode = 0xb1

	OpGetStatic Opcode = 0xb2
	OpPutStatic Opcode = 0xb3
	OpGetField  Opcode = 0xb4
	OpPutField  Opcode = 0xb5

	OpInvokeVirtual   Opcode = 0xb6
	OpInvokeSpecial   Opcode = 0xb7
	OpInvokeStatic    Opcode = 0xb8
	OpInvokeInterface Opcode = 0xb9
	OpInvokeDynamic   Opcode = 0xba

	OpNew         Opcode = 0xbb
	OpNewArray    Opcode = 0xbc
	OpANewArray   Opcode = 0xbd
	OpArrayLength Opcode = 0xbe
	OpAThrow      Opcode = 0xbf
	OpCheckCast   Opcode = 0xc0
	OpInstanceOf  Opcode = 0xc1
	OpMonitorEnter Opcode = 0xc2
	OpMonitorExit  Opcode = 0xc3

	OpMultiANewArray Opcode = 0xc5
	OpIfNull         Opcode = 0xc6
	OpIfNonNull      Opcode = 0xc7

	// Legacy subroutine opcodes — spec mandates a hard rejection, never
	// a reachable code path in the transformer.
	OpJsr  Opcode = 0xa8
	OpRet  Opcode = 0xa9

	OpDup2X2Alias Opcode = OpDup2X2 // documented alias, avoids an unused-const lint
)

// Instr is one decoded bytecode instruction: the disassembler's output
// and the transformer's input. Not every field is meaningful for every
// opcode; which ones apply is determined by Op, the same "sparse struct"
// shape the teacher's own register-bytecode Instruction type uses across
// its iABC/iABx/iAsBx/iAx formats.
type Instr struct {
	PC   int
	Op   Opcode
	Line int // source line at PC, from LineNumberTable; -1 if unknown

	// Local-variable slot, for *Load/*Store/IInc/Ret.
	LocalSlot int
	IIncConst int32 // IInc's signed increment

	// Constant-pool derived operand, for Ldc/Ldc*/New/ANewArray/
	// CheckCast/InstanceOf/MultiANewArray (class literal or constant).
	Const     interface{} // nil, or one of: nil-type marker, int64, float64, string, ObjectType
	ClassName ClassName   // target class, for New/CheckCast/InstanceOf/ANewArray/Invoke*/Get*/Put*/MultiANewArray
	FieldSig  FieldSignature
	MethodSig MethodSignature
	IsInterfaceMethod bool // invokeinterface / invokevirtual on an interface-typed receiver

	// NewArray's primitive element kind (JVM "atype" operand).
	ArrayElemKind PrimitiveKind
	ArrayElemType Type // for ANewArray/MultiANewArray, the element type
	Dims          int  // MultiANewArray's dimension count

	// Absolute bytecode-pc jump target, for Goto/If*/Jsr.
	Target int
}
