package rta

import (
	"sawja/internal/classfile"
	sawjaerrors "sawja/internal/errors"
	"sawja/internal/hierarchy"
)

// step dispatches one instruction from a parsed method, growing the
// hierarchy/dispatch caches/workset as spec §4.3's opcode handlers
// describe. Every branch here only ever adds to state; nothing is ever
// retracted (spec's Monotonicity property).
func (p *Program) step(item workItem, instr classfile.Instr) error {
	switch instr.Op {
	case classfile.OpNew:
		return p.handleNew(item, instr)
	case classfile.OpLdc, classfile.OpLdcW:
		if obj, ok := instr.Const.(classfile.ObjectType); ok && obj.Array == nil {
			if _, err := p.loadClass(obj.ClassName); err != nil {
				return err
			}
			classNode, err := p.loadClass("java/lang/Class")
			if err != nil {
				return err
			}
			p.instantiate(item, instr.PC, classNode)
			return nil
		}
		return nil
	case classfile.OpGetStatic, classfile.OpPutStatic:
		return p.handleStaticField(item, instr)
	case classfile.OpInvokeVirtual:
		return p.handleInvokeVirtual(item, instr, false)
	case classfile.OpInvokeInterface:
		return p.handleInvokeVirtual(item, instr, true)
	case classfile.OpInvokeSpecial:
		return p.handleInvokeSpecial(item, instr)
	case classfile.OpInvokeStatic:
		return p.handleInvokeStatic(item, instr)
	default:
		return nil
	}
}

func (p *Program) addEdge(item workItem, pc int, calleeClass classfile.ClassName, calleeSig classfile.MethodSignature) {
	p.edges = append(p.edges, Edge{
		CallerClass: item.Node.Name,
		CallerSig:   item.Method.Sig,
		PC:          pc,
		CalleeClass: calleeClass,
		CalleeSig:   calleeSig,
	})
}

// handleNew loads the instantiated class (if not already present) and
// instantiates it — spec §4.3's "new C" handler. Like the ldc and
// native-stub paths that also call instantiate, it grows dispatch caches
// without a fresh call site driving them.
func (p *Program) handleNew(item workItem, instr classfile.Instr) error {
	node, err := p.loadClass(instr.ClassName)
	if err != nil {
		return err
	}
	p.instantiate(item, instr.PC, node)
	return nil
}

// instantiate marks node instantiated (a no-op if it already is),
// schedules its <clinit> chain, and re-resolves every virtual/interface
// call site already memoized on one of its ancestors or implemented
// interfaces. This is the shared "a class just became instantiated"
// effect spec §4.3 names for both `new C` and native-stub allocations;
// factored out so a class first instantiated via a native stub gets the
// same re-resolution a `new` would have given it.
func (p *Program) instantiate(item workItem, pc int, node *hierarchy.Node) {
	if node.IsInstantiated {
		return
	}
	node.IsInstantiated = true
	p.scheduleClinit(node)

	for _, anc := range append([]hierarchy.NodeID{node.ID()}, p.hier.Ancestors(node.ID())...) {
		an := p.hier.Node(anc)
		for sig := range an.MemorizedVirtualCalls {
			p.resolveAndAddVirtual(item, pc, an, sig, node)
		}
	}
	for _, id := range p.hier.AllInterfaces(node.ID()) {
		in := p.hier.Node(id)
		for sig := range in.MemorizedInterfaceCalls {
			p.resolveAndAddVirtual(item, pc, in, sig, node)
		}
	}
}

// resolveAndAddVirtual resolves sig (declared on declNode) against an
// instantiated receiver and records an edge from item at pc to the
// resolved method. The dispatch is memoized per (declared class, sig,
// receiver); the resolved method is enqueued only the first time that
// triple is seen.
func (p *Program) resolveAndAddVirtual(item workItem, pc int, declNode *hierarchy.Node, sig classfile.MethodSignature, recv *hierarchy.Node) {
	key := dispatchKey{Class: declNode.Name, Sig: sig}
	cache := p.virtualLookup
	if declNode.Kind == hierarchy.KindInterface {
		cache = p.interfaceLookup
	}
	if cache[key] == nil {
		cache[key] = make(map[hierarchy.NodeID]resolved)
	}
	if r, done := cache[key][recv.ID()]; done {
		p.addEdge(item, pc, r.Method.Owner, r.Method.Sig)
		return
	}
	targetNode, m := p.resolveVirtual(recv, sig)
	if m == nil {
		p.warn(sawjaerrors.KindAbstractMethod, sawjaerrors.Location{Class: recv.Name, PC: pc},
			"no concrete override of %s found on %s", sig, recv.Name)
		return
	}
	cache[key][recv.ID()] = resolved{Node: targetNode.ID(), Method: m}
	p.addEdge(item, pc, targetNode.Name, m.Sig)
	p.enqueue(targetNode, m)
}

func (p *Program) handleInvokeVirtual(item workItem, instr classfile.Instr, isInterface bool) error {
	declNode, err := p.loadClass(instr.ClassName)
	if err != nil {
		return err
	}
	if isInterface || instr.IsInterfaceMethod {
		declNode.MemorizedInterfaceCalls[instr.MethodSig] = true
		for recvID := range p.interfaces[declNode.Name] {
			if recv := p.hier.Node(recvID); recv.IsInstantiated {
				p.resolveAndAddVirtual(item, instr.PC, declNode, instr.MethodSig, recv)
			}
		}
		return nil
	}
	declNode.MemorizedVirtualCalls[instr.MethodSig] = true
	for _, sub := range p.subtypesOf(declNode) {
		if sub.IsInstantiated {
			p.resolveAndAddVirtual(item, instr.PC, declNode, instr.MethodSig, sub)
		}
	}
	return nil
}

// subtypesOf returns every node in the arena that is a (reflexive,
// transitive) subclass of n — linear in hierarchy size, acceptable since
// it only runs once per distinct virtual call site, not per instantiation.
func (p *Program) subtypesOf(n *hierarchy.Node) []*hierarchy.Node {
	var out []*hierarchy.Node
	for _, cand := range p.hier.Nodes() {
		if cand.Kind == hierarchy.KindClass && p.hier.IsSubtypeOf(cand.ID(), n.ID()) {
			out = append(out, cand)
		}
	}
	return out
}

func (p *Program) handleInvokeSpecial(item workItem, instr classfile.Instr) error {
	key := dispatchKey{Class: instr.ClassName, Sig: instr.MethodSig}
	if r, ok := p.specialLookup[key]; ok {
		p.addEdge(item, instr.PC, r.Method.Owner, r.Method.Sig)
		return nil
	}
	named, err := p.loadClass(instr.ClassName)
	if err != nil {
		return err
	}
	targetNode, m := p.resolveSpecial(named, instr.MethodSig)
	if m == nil {
		p.warn(sawjaerrors.KindNoSuchMethod, sawjaerrors.Location{Class: instr.ClassName, PC: instr.PC},
			"invokespecial target %s not found", instr.MethodSig)
		return nil
	}
	p.specialLookup[key] = resolved{Node: targetNode.ID(), Method: m}
	p.addEdge(item, instr.PC, targetNode.Name, m.Sig)
	p.enqueue(targetNode, m)
	return nil
}

func (p *Program) handleInvokeStatic(item workItem, instr classfile.Instr) error {
	key := dispatchKey{Class: instr.ClassName, Sig: instr.MethodSig}
	if r, ok := p.staticLookup[key]; ok {
		p.addEdge(item, instr.PC, r.Method.Owner, r.Method.Sig)
		return nil
	}
	named, err := p.loadClass(instr.ClassName)
	if err != nil {
		return err
	}
	p.scheduleClinit(named)
	targetNode, m := p.resolveStatic(named, instr.MethodSig)
	if m == nil {
		p.warn(sawjaerrors.KindNoSuchMethod, sawjaerrors.Location{Class: instr.ClassName, PC: instr.PC},
			"invokestatic target %s not found", instr.MethodSig)
		return nil
	}
	p.staticLookup[key] = resolved{Node: targetNode.ID(), Method: m}
	p.addEdge(item, instr.PC, targetNode.Name, m.Sig)
	p.enqueue(targetNode, m)
	return nil
}

func (p *Program) handleStaticField(item workItem, instr classfile.Instr) error {
	named, err := p.loadClass(instr.ClassName)
	if err != nil {
		return err
	}
	_, f, path := p.resolveField(named, instr.FieldSig)
	if f == nil {
		p.warn(sawjaerrors.KindNoSuchField, sawjaerrors.Location{Class: instr.ClassName, PC: instr.PC},
			"field %v not found", instr.FieldSig)
		return nil
	}
	for _, n := range path {
		p.scheduleClinit(n)
	}
	return nil
}

// handleNative treats a native method per spec §4: with a loaded stub,
// its declared allocations and callees feed the worklist exactly like a
// real method body; without one it is recorded as opaque and the
// analysis proceeds (a native method's effects are unknowable, not an
// error).
func (p *Program) handleNative(item workItem) {
	key := dispatchKey{Class: item.Node.Name, Sig: item.Method.Sig}
	if !p.opts.ParseNatives {
		p.nativeMethods = append(p.nativeMethods, key)
		return
	}
	stub, ok := p.opts.Natives.Lookup(item.Node.Name, item.Method.Sig)
	if !ok {
		p.nativeMethods = append(p.nativeMethods, key)
		return
	}
	for _, t := range stub.AllocatedTypes() {
		obj, ok := t.(classfile.ObjectType)
		if !ok || obj.Array != nil {
			continue
		}
		node, err := p.loadClass(obj.ClassName)
		if err != nil {
			p.warn(sawjaerrors.KindNoClassDefFound, sawjaerrors.Location{Class: item.Node.Name, Method: item.Method.Sig.String()},
				"native stub allocation: %v", err)
			continue
		}
		p.instantiate(item, -1, node)
	}
	for _, c := range stub.Callees {
		node, err := p.loadClass(c.Class)
		if err != nil {
			p.warn(sawjaerrors.KindNoClassDefFound, sawjaerrors.Location{Class: item.Node.Name, Method: item.Method.Sig.String()},
				"native stub callee: %v", err)
			continue
		}
		m := node.CF.Method(c.Sig)
		if m == nil {
			p.warn(sawjaerrors.KindNoSuchMethod, sawjaerrors.Location{Class: item.Node.Name, Method: item.Method.Sig.String()},
				"native stub callee %s not found on %s", c.Sig, c.Class)
			continue
		}
		p.addEdge(item, -1, node.Name, m.Sig)
		p.enqueue(node, m)
	}
}
