// Package hierarchy maintains the class/interface hierarchy RTA walks
// and mutates: an arena of nodes addressed by index rather than pointer,
// so the parent/child/implements cycle spec §9 calls out ("shared,
// cyclic class hierarchy... model as an arena... edges are indices, not
// back-pointers") never has to be broken by hand in a host language
// without a tracing GC opinion on it — which, conveniently, Go already
// has, but indices still keep lookup-by-name and mutation-during-RTA
// simple and allocation-free.
package hierarchy

import "sawja/internal/classfile"

// NodeID is an arena index. The first node added gets index 0; Invalid
// (-1) marks a missing node.
type NodeID int

const Invalid NodeID = -1

type Kind uint8

const (
	KindClass Kind = iota
	KindInterface
)

// Node is one class or interface hierarchy entry. The core fields
// (Name, Kind, Super, Interfaces) are set once at load time; the rest
// are mutated only by internal/rta, and only monotonically (spec §4.3
// "Monotonicity": sets grow, flags go false->true).
type Node struct {
	id    NodeID
	Name  classfile.ClassName
	Kind  Kind
	CF    *classfile.ClassFile

	Super      NodeID // Invalid for java/lang/Object
	Interfaces []NodeID

	// Children mirrors Super/Interfaces in reverse: a class's
	// ChildrenClasses are its direct subclasses; an interface's
	// ChildrenInterfaces are its direct extending sub-interfaces.
	ChildrenClasses    []NodeID
	ChildrenInterfaces []NodeID

	IsInstantiated         bool
	InstantiatedSubclasses map[classfile.ClassName]NodeID

	// Dispatch memoization, keyed by call-site method signature, so a
	// later instantiation can re-resolve only the sites that could be
	// affected (spec §4.3's opcode handler for `new C`).
	MemorizedVirtualCalls   map[classfile.MethodSignature]bool
	MemorizedInterfaceCalls map[classfile.MethodSignature]bool
}

func (n *Node) ID() NodeID { return n.id }

func (n *Node) IsInterface() bool { return n.Kind == KindInterface }

// Hierarchy is the arena: the single owner of every Node, addressed by
// name or by NodeID.
type Hierarchy struct {
	nodes   []*Node
	byName  map[classfile.ClassName]NodeID
}

func New() *Hierarchy {
	return &Hierarchy{byName: make(map[classfile.ClassName]NodeID)}
}

func (h *Hierarchy) Lookup(name classfile.ClassName) (NodeID, bool) {
	id, ok := h.byName[name]
	return id, ok
}

func (h *Hierarchy) Node(id NodeID) *Node {
	if id == Invalid {
		return nil
	}
	return h.nodes[id]
}

func (h *Hierarchy) NodeByName(name classfile.ClassName) *Node {
	id, ok := h.Lookup(name)
	if !ok {
		return nil
	}
	return h.nodes[id]
}

// Add inserts a new node for cf, wiring it to its already-loaded super
// and interface nodes (both must already be present in the arena — the
// caller, internal/rta, loads ancestors before children per spec
// §4.3's "On first visit of a class, load it eagerly with all
// superclasses and interfaces"). Returns the existing node unchanged if
// cf.Name is already present.
func (h *Hierarchy) Add(cf *classfile.ClassFile, super NodeID, ifaces []NodeID) *Node {
	if id, ok := h.byName[cf.Name]; ok {
		return h.nodes[id]
	}
	kind := KindClass
	if cf.IsInterface {
		kind = KindInterface
	}
	n := &Node{
		id:                      NodeID(len(h.nodes)),
		Name:                    cf.Name,
		Kind:                    kind,
		CF:                      cf,
		Super:                   super,
		Interfaces:              ifaces,
		InstantiatedSubclasses:  make(map[classfile.ClassName]NodeID),
		MemorizedVirtualCalls:   make(map[classfile.MethodSignature]bool),
		MemorizedInterfaceCalls: make(map[classfile.MethodSignature]bool),
	}
	h.nodes = append(h.nodes, n)
	h.byName[cf.Name] = n.id

	if super != Invalid {
		sn := h.nodes[super]
		sn.ChildrenClasses = append(sn.ChildrenClasses, n.id)
	}
	for _, i := range ifaces {
		in := h.nodes[i]
		if kind == KindInterface {
			in.ChildrenInterfaces = append(in.ChildrenInterfaces, n.id)
		} else {
			// A class's implemented interfaces do not record it under
			// ChildrenInterfaces (that slice is interface-extends-interface
			// only); implementer tracking for dispatch lives in RTA's
			// `interfaces` map (spec §4.3 component E state), not here.
		}
	}
	return n
}

// Ancestors returns super, then super's super, ... up to (and
// including) the node for java/lang/Object, in that order.
func (h *Hierarchy) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for cur := h.Node(id).Super; cur != Invalid; cur = h.Node(cur).Super {
		out = append(out, cur)
	}
	return out
}

// AllInterfaces returns the transitive set of interfaces id implements
// (for a class) or extends (for an interface), each exactly once.
func (h *Hierarchy) AllInterfaces(id NodeID) []NodeID {
	seen := make(map[NodeID]bool)
	var out []NodeID
	var walk func(NodeID)
	walk = func(cur NodeID) {
		n := h.Node(cur)
		for _, i := range n.Interfaces {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
				walk(i)
			}
		}
		if n.Super != Invalid {
			walk(n.Super)
		}
	}
	walk(id)
	return out
}

// IsSubtypeOf reports whether sub is of itself, a (transitive) subclass
// of of, or (transitive) implementer of of when of is an interface.
func (h *Hierarchy) IsSubtypeOf(sub, of NodeID) bool {
	if sub == of {
		return true
	}
	n := h.Node(sub)
	for cur := n.Super; cur != Invalid; cur = h.Node(cur).Super {
		if cur == of {
			return true
		}
	}
	for _, i := range h.AllInterfaces(sub) {
		if i == of {
			return true
		}
	}
	return false
}

// Nodes returns every node in load order, for callers (persistence,
// tests) that need to walk the whole arena.
func (h *Hierarchy) Nodes() []*Node { return h.nodes }
