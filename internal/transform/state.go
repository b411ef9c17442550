package transform

import (
	"sawja/internal/classfile"
	"sawja/internal/ir"
)

// stackItem is one symbolic-stack slot: either an ordinary expression
// tree (possibly non-basic, pending flush) or an Uninit marker pushed by
// `new` and not yet consumed by its matching invokespecial <init> (spec
// §4.1 step 4).
type stackItem struct {
	expr   ir.Expr // nil iff uninit != nil
	uninit *uninitMarker
}

type uninitMarker struct {
	id    int
	pc    int // bytecode pc of the `new`
	class classfile.ClassName
}

func exprItem(e ir.Expr) stackItem { return stackItem{expr: e} }

func (s stackItem) isUninit() bool { return s.uninit != nil }

// shape is the minimal per-slot signature compared across a join to
// decide whether a stack shape is consistent with what was previously
// observed at the same bytecode pc (spec §4.1 step 1: "stack height
// convergence").
type shape struct {
	uninitID int // 0 if not uninit, else uninitMarker.id
}

func shapeOf(stack []stackItem) []shape {
	out := make([]shape, len(stack))
	for i, it := range stack {
		if it.isUninit() {
			out[i] = shape{uninitID: it.uninit.id}
		}
	}
	return out
}

func sameShape(a, b []shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].uninitID != b[i].uninitID {
			return false
		}
	}
	return true
}
