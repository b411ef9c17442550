package rta

import (
	"sawja/internal/classfile"
	"sawja/internal/hierarchy"
)

var clinitSig = classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}

// resolveVirtual walks up from start's own class looking for the first
// concrete (non-abstract) method matching sig, falling back to a default
// method on any implemented interface if no superclass declares one.
func (p *Program) resolveVirtual(start *hierarchy.Node, sig classfile.MethodSignature) (*hierarchy.Node, *classfile.Method) {
	for n := start; n != nil; {
		if m := n.CF.Method(sig); m != nil && !m.IsAbstract {
			return n, m
		}
		if n.Super == hierarchy.Invalid {
			break
		}
		n = p.hier.Node(n.Super)
	}
	for _, id := range p.hier.AllInterfaces(start.ID()) {
		in := p.hier.Node(id)
		if m := in.CF.Method(sig); m != nil && !m.IsAbstract {
			return in, m
		}
	}
	return nil, nil
}

// resolveStatic walks the superclass chain of start for the first static
// method matching sig.
func (p *Program) resolveStatic(start *hierarchy.Node, sig classfile.MethodSignature) (*hierarchy.Node, *classfile.Method) {
	for n := start; n != nil; {
		if m := n.CF.Method(sig); m != nil && m.IsStatic {
			return n, m
		}
		if n.Super == hierarchy.Invalid {
			break
		}
		n = p.hier.Node(n.Super)
	}
	return nil, nil
}

// resolveSpecial handles invokespecial: a direct (non-virtual) call on
// the instruction's named class — used for <init>, private methods, and
// explicit super calls. It never considers subclasses, only named's own
// chain.
func (p *Program) resolveSpecial(named *hierarchy.Node, sig classfile.MethodSignature) (*hierarchy.Node, *classfile.Method) {
	if m := named.CF.Method(sig); m != nil {
		return named, m
	}
	return p.resolveVirtual(named, sig)
}

// resolveField walks start's superclass chain, then its interfaces,
// looking for the declaring owner of sig; it also returns every node
// visited along the way so the caller can run <clinit> on each of them
// (spec: "the path to the defining class" of a field reference triggers
// initialization along that path).
func (p *Program) resolveField(start *hierarchy.Node, sig classfile.FieldSignature) (*hierarchy.Node, *classfile.Field, []*hierarchy.Node) {
	var path []*hierarchy.Node
	for n := start; n != nil; {
		path = append(path, n)
		if f := n.CF.Field(sig); f != nil {
			return n, f, path
		}
		if n.Super == hierarchy.Invalid {
			break
		}
		n = p.hier.Node(n.Super)
	}
	for _, id := range p.hier.AllInterfaces(start.ID()) {
		in := p.hier.Node(id)
		if f := in.CF.Field(sig); f != nil {
			return in, f, append(path, in)
		}
	}
	return nil, nil, path
}
