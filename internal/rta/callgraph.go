package rta

import (
	"sawja/internal/classfile"
	sawjaerrors "sawja/internal/errors"
	"sawja/internal/hierarchy"
)

// StaticLookupMethod exposes the dispatch cache for one call site (spec
// §6's "static_lookup_method(class, method_signature, pc)"): given the
// statically-declared class/signature and the opcode at pc (to pick
// which of the four caches applies), it returns every concrete method
// that call site could reach given everything instantiated so far.
func (p *Program) StaticLookupMethod(declClass classfile.ClassName, sig classfile.MethodSignature, op classfile.Opcode) ([]Edge, error) {
	key := dispatchKey{Class: declClass, Sig: sig}
	switch op {
	case classfile.OpInvokeVirtual:
		return toEdges(declClass, sig, p.virtualLookup[key]), nil
	case classfile.OpInvokeInterface:
		return toEdges(declClass, sig, p.interfaceLookup[key]), nil
	case classfile.OpInvokeStatic:
		if r, ok := p.staticLookup[key]; ok {
			return []Edge{{CalleeClass: r.Method.Owner, CalleeSig: r.Method.Sig}}, nil
		}
		return nil, nil
	case classfile.OpInvokeSpecial:
		if r, ok := p.specialLookup[key]; ok {
			return []Edge{{CalleeClass: r.Method.Owner, CalleeSig: r.Method.Sig}}, nil
		}
		return nil, nil
	default:
		return nil, sawjaerrors.New(sawjaerrors.KindDomainPrecondition, sawjaerrors.Location{},
			"opcode %v is not an invoke site", op)
	}
}

func toEdges(declClass classfile.ClassName, sig classfile.MethodSignature, m map[hierarchy.NodeID]resolved) []Edge {
	out := make([]Edge, 0, len(m))
	for _, r := range m {
		out = append(out, Edge{CalleeClass: r.Method.Owner, CalleeSig: r.Method.Sig})
	}
	return out
}
