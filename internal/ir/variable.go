// Package ir defines the stackless, three-address intermediate
// representation bytecode is transformed into (spec §3, §4.1): variables,
// constants, expressions, instructions, checks, exception handlers, and
// the per-method container that ties them together with bytecode/IR pc
// maps. Nothing in this package executes or simplifies anything — it is
// a data model, the same role vmregister's Value/Instruction types play
// for the teacher's interpreter, except here the audience is another
// analysis pass, not a dispatch loop.
package ir

import "sawja/internal/classfile"

// OriginKind tags how a Var came to exist, per spec §3.
type OriginKind uint8

const (
	OriginOriginal OriginKind = iota // a declared local slot
	OriginTemp                       // compiler-introduced temporary
	OriginCatch                      // exception-handler catch variable
	OriginBranch                     // value merged from one branch side
	OriginBranch2                    // value merged from a second branch side
)

// Origin explains why a Var exists. Two Origins compare equal by value
// (Kind + the relevant fields), which is exactly the condition under
// which the per-method interner (VarTable) assigns them the same index.
type Origin struct {
	Kind OriginKind

	LocalSlot int    // OriginOriginal
	DebugName string // OriginOriginal, optional

	K  int // OriginTemp / OriginCatch / OriginBranch / OriginBranch2 disambiguator
	PC int // OriginBranch / OriginBranch2: the bytecode pc of the merge
}

// Var is a stable per-method integer index into the method's variable
// table; equality is index equality (spec §3's invariant: no two
// distinct Origins share an index).
type Var int

// VarTable interns Origins to stable Var indices within one method.
// Invariant: for all o1, o2, intern(o1) == intern(o2) iff o1 == o2.
type VarTable struct {
	origins []Origin
	index   map[Origin]Var
}

func NewVarTable() *VarTable {
	return &VarTable{index: make(map[Origin]Var)}
}

func (t *VarTable) Intern(o Origin) Var {
	if v, ok := t.index[o]; ok {
		return v
	}
	v := Var(len(t.origins))
	t.origins = append(t.origins, o)
	t.index[o] = v
	return v
}

func (t *VarTable) Origin(v Var) Origin { return t.origins[v] }
func (t *VarTable) Len() int            { return len(t.origins) }

// Fresh* helpers build the Origin for the next instance of each kind.
func (t *VarTable) FreshTemp() Var {
	return t.Intern(Origin{Kind: OriginTemp, K: t.nextK(OriginTemp)})
}

func (t *VarTable) FreshCatch() Var {
	return t.Intern(Origin{Kind: OriginCatch, K: t.nextK(OriginCatch)})
}

func (t *VarTable) FreshBranch(pc int) Var {
	return t.Intern(Origin{Kind: OriginBranch, K: t.nextK(OriginBranch), PC: pc})
}

func (t *VarTable) FreshBranch2(pc int) Var {
	return t.Intern(Origin{Kind: OriginBranch2, K: t.nextK(OriginBranch2), PC: pc})
}

func (t *VarTable) Original(slot int, debugName string) Var {
	return t.Intern(Origin{Kind: OriginOriginal, LocalSlot: slot, DebugName: debugName})
}

func (t *VarTable) nextK(kind OriginKind) int {
	n := 0
	for _, o := range t.origins {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// VarType records the declared type of each variable, set once at the
// point of its defining AffectVar (spec §8's "type_of_expr agrees with
// the declared type of its producing AffectVar" invariant). Kept
// alongside the VarTable rather than folded into Origin because a
// variable's type is a synthesis-time fact, not part of its identity.
type VarTypes struct {
	t []classfile.Type
}

func NewVarTypes(n int) *VarTypes { return &VarTypes{t: make([]classfile.Type, n)} }

func (vt *VarTypes) Set(v Var, typ classfile.Type) {
	for len(vt.t) <= int(v) {
		vt.t = append(vt.t, nil)
	}
	vt.t[v] = typ
}

func (vt *VarTypes) Get(v Var) classfile.Type {
	if int(v) >= len(vt.t) {
		return nil
	}
	return vt.t[v]
}
