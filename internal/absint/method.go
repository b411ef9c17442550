package absint

import (
	"sawja/internal/ir"
	"sawja/internal/solver"
)

// AbMethod is a method summary {args, return, exc_return} spec §4.4
// names. reached distinguishes Bot ("not yet reached") from a summary
// whose fields all happen to be Bot themselves.
type AbMethod struct {
	reached   bool
	Args      []AbVSet
	Return    AbVSet
	ExcReturn AbVSet
}

func MethodBot() AbMethod { return AbMethod{} }

func (m AbMethod) IsBot() bool { return !m.reached }

// NewMethod builds a reached summary with the given argument abstractions.
func NewMethod(args []AbVSet) AbMethod {
	return AbMethod{reached: true, Args: args, Return: Bot(), ExcReturn: Bot()}
}

// JoinMethod merges two summaries argument-wise, and their return/
// exc_return independently.
func JoinMethod(a, b AbMethod) (AbMethod, bool) {
	if a.IsBot() {
		return b, b.reached
	}
	if b.IsBot() {
		return a, false
	}
	changed := false
	args := make([]AbVSet, len(a.Args))
	for i := range args {
		var bv AbVSet
		if i < len(b.Args) {
			bv = b.Args[i]
		} else {
			bv = Bot()
		}
		merged, ch := Join(a.Args[i], bv)
		args[i] = merged
		changed = changed || ch
	}
	ret, ch := Join(a.Return, b.Return)
	changed = changed || ch
	exc, ch := Join(a.ExcReturn, b.ExcReturn)
	changed = changed || ch
	return AbMethod{reached: true, Args: args, Return: ret, ExcReturn: exc}, changed
}

func (m AbMethod) JoinV(other solver.Value) (solver.Value, bool) {
	b := other.(AbMethod)
	r, changed := JoinMethod(m, b)
	return r, changed
}

// InitLocals projects a method summary's argument abstractions onto the
// target method's parameter variables, reading each Param's Var straight
// off the IR's own debug info (spec §4.4: "init_locals... projects args
// onto the target method's parameter variables, reading debug info from
// the IR").
func InitLocals(m *ir.MethodIR, summary AbMethod) AbLocals {
	if summary.IsBot() {
		return LocalsBot()
	}
	locals := AbLocals{m: make(map[int]AbVSet, len(m.Params))}
	for i, p := range m.Params {
		v := Bot()
		if i < len(summary.Args) {
			v = summary.Args[i]
		}
		locals = SetVar(locals, int(p.Var), v)
	}
	return locals
}
