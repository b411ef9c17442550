package ir

import "sawja/internal/classfile"

// Handler is an exception handler re-expressed over IR pcs (as opposed
// to classfile.ExceptionTableEntry, which is bytecode-pc indexed).
// CatchType == "" denotes a finally-equivalent catch-all (spec §3).
type Handler struct {
	Start     int // IR pc, inclusive
	End       int // IR pc, exclusive
	HandlerPC int // IR pc
	CatchType classfile.ClassName
	CatchVar  Var
}

// MethodIR is one method's transformed body (spec §3's MethodIR record).
type MethodIR struct {
	Owner  classfile.ClassName
	Sig    classfile.MethodSignature
	Vars   *VarTable
	Types  *VarTypes
	Params []Param

	Code []Instr // dense: index i is IR pc i

	ExcTable []Handler
	Lines    classfile.LineNumberTable // IR pc -> source line

	// PCBC2IR maps a bytecode pc to the first IR pc emitted for it. Not
	// every bytecode pc need appear (dead code under the verifier is
	// impossible, but a pc mid-multi-instruction expansion is not a
	// valid key).
	PCBC2IR map[int]int
	// PCIR2BC maps every IR pc back to its originating bytecode pc.
	PCIR2BC []int

	// JumpTarget[pc] holds iff pc is targeted by some Goto, Ifd, or
	// handler entry. Nothing in this module reads it; internal/ssa
	// builds its CFG from Successors alone.
	JumpTarget []bool

	// SSA extension (spec §3 "SSA form"); nil until internal/ssa has
	// converted this method.
	SSA *SSAInfo
}

type Param struct {
	Type classfile.Type
	Var  Var
}

// Phi is one φ-node: def is the merged variable, Use[k] is the incoming
// value from Preds[pc][k].
type Phi struct {
	Def Var
	Use []Var
}

// SSAInfo is the φ-node table and predecessor graph internal/ssa adds
// on top of a MethodIR once it is in SSA form (spec §3's "SSA form").
type SSAInfo struct {
	Preds    [][]int // pc -> predecessor pcs (pc 0's sole artificial predecessor is -1)
	PhiNodes map[int][]Phi
}

// Len returns the number of IR instructions (the dense code array's
// length, i.e. the exclusive upper bound on valid IR pcs).
func (m *MethodIR) Len() int { return len(m.Code) }

// Successors returns the CFG successor IR pcs of pc, including handler
// edges for any handler whose [Start,End) range contains pc (spec
// §4.2). Return and Throw have no fallthrough successor.
func (m *MethodIR) Successors(pc int) []int {
	var succs []int
	switch instr := m.Code[pc].(type) {
	case Goto:
		succs = append(succs, instr.Target)
	case Ifd:
		succs = append(succs, pc+1, instr.Target)
	case Throw:
		// no fallthrough
	case Return:
		// no fallthrough
	default:
		if pc+1 < len(m.Code) {
			succs = append(succs, pc+1)
		}
	}
	for _, h := range m.ExcTable {
		if pc >= h.Start && pc < h.End {
			succs = append(succs, h.HandlerPC)
		}
	}
	return succs
}
