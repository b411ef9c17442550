// Package rta drives Rapid Type Analysis (spec §4.3): a worklist over
// concrete methods that lazily loads classes from a classpath, tracks
// instantiated classes, and resolves every invoke site to a monotonically
// growing set of possible callees. The enqueue/has-been-parsed discipline
// and the eager ancestor-loading-on-first-visit policy are adapted from
// the teacher's internal/vm.ModuleLoader, generalized from "which module
// is already cached" to "which method has already been queued".
package rta

import (
	"sawja/internal/classfile"
	"sawja/internal/classpath"
	"sawja/internal/diagnostics"
	sawjaerrors "sawja/internal/errors"
	"sawja/internal/hierarchy"
	"sawja/internal/nativestubs"
)

// EntryPoint names one (class, method) RTA seeds its worklist with.
type EntryPoint struct {
	Class classfile.ClassName
	Sig   classfile.MethodSignature
}

// BootstrapEntryPoints is the default entry set spec §6 names: the JVM's
// own bootstrap chain, which every program implicitly runs before main.
var BootstrapEntryPoints = []EntryPoint{
	{Class: "java/lang/Object", Sig: classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}},
	{Class: "java/lang/System", Sig: classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}},
	{Class: "java/lang/System", Sig: classfile.MethodSignature{Name: "initializeSystemClass", Descriptor: "()V"}},
	{Class: "java/lang/ThreadGroup", Sig: classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}},
	{Class: "java/lang/Thread", Sig: classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}},
	{Class: "java/lang/ref/Finalizer", Sig: classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}},
	{Class: "java/lang/Class", Sig: classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}},
	{Class: "java/lang/OutOfMemoryError", Sig: classfile.MethodSignature{Name: "<clinit>", Descriptor: "()V"}},
}

// Options configures one RTA run (spec §6's configuration options that
// are this component's concern).
type Options struct {
	// ParseNatives follows native-method stubs instead of treating every
	// native method as opaque. Implicitly true when Natives is non-nil.
	ParseNatives bool
	Natives      *nativestubs.Table
	Diagnostics  *diagnostics.Reporter
}

type dispatchKey struct {
	Class classfile.ClassName
	Sig   classfile.MethodSignature
}

// resolved names one concrete callee: the hierarchy node it was found on
// and the concrete method record.
type resolved struct {
	Node   hierarchy.NodeID
	Method *classfile.Method
}

// Edge is one callgraph edge, spec §6's export shape.
type Edge struct {
	CallerClass classfile.ClassName
	CallerSig   classfile.MethodSignature
	PC          int
	CalleeClass classfile.ClassName
	CalleeSig   classfile.MethodSignature
}

// Program is RTA's accumulated whole-program result: the hierarchy, the
// set of parsed methods, and the dispatch caches spec §4.3 names.
type Program struct {
	cp   *classpath.ClassPath
	hier *hierarchy.Hierarchy
	opts Options

	// interfaces[I] is the set of classes transitively implementing I
	// (spec §4.3 state: "map interface class_name -> set of classes
	// transitively implementing it").
	interfaces map[classfile.ClassName]map[hierarchy.NodeID]bool

	clinits map[classfile.ClassName]bool

	// Dispatch caches, one per call-site kind, keyed by the call site's
	// statically-declared (class, signature): virtual/interface dispatch
	// can resolve to many receivers as more subtypes are instantiated,
	// while static/special dispatch resolves to exactly one method that
	// never changes once found (spec §4.3's four caches).
	virtualLookup   map[dispatchKey]map[hierarchy.NodeID]resolved
	interfaceLookup map[dispatchKey]map[hierarchy.NodeID]resolved
	staticLookup    map[dispatchKey]resolved
	specialLookup   map[dispatchKey]resolved

	workset []workItem

	edges         []Edge
	parsedMethods []*classfile.Method
	nativeMethods []dispatchKey
}

type workItem struct {
	Node   *hierarchy.Node
	Method *classfile.Method
}

// Hierarchy exposes the class/interface arena RTA built.
func (p *Program) Hierarchy() *hierarchy.Hierarchy { return p.hier }

// ParsedMethods returns every concrete method RTA's worklist dequeued.
func (p *Program) ParsedMethods() []*classfile.Method { return p.parsedMethods }

// Edges returns the discovered callgraph (spec §6's callgraph export).
func (p *Program) Edges() []Edge { return p.edges }

// NativeMethods returns every native method RTA recorded as opaque
// (ParseNatives off, or no stub found for it).
func (p *Program) NativeMethods() []dispatchKey { return p.nativeMethods }

func (p *Program) warn(kind sawjaerrors.Kind, loc sawjaerrors.Location, format string, args ...interface{}) {
	if p.opts.Diagnostics != nil {
		p.opts.Diagnostics.Warn(kind, loc, format, args...)
	}
}

// Run seeds the worklist from entryPoints and drives it to completion
// (spec §4.3's main loop).
func Run(cp *classpath.ClassPath, entryPoints []EntryPoint, opts Options) (*Program, error) {
	if opts.Natives != nil {
		opts.ParseNatives = true
	}
	p := &Program{
		cp:              cp,
		hier:            hierarchy.New(),
		opts:            opts,
		interfaces:      make(map[classfile.ClassName]map[hierarchy.NodeID]bool),
		clinits:         make(map[classfile.ClassName]bool),
		virtualLookup:   make(map[dispatchKey]map[hierarchy.NodeID]resolved),
		interfaceLookup: make(map[dispatchKey]map[hierarchy.NodeID]resolved),
		staticLookup:    make(map[dispatchKey]resolved),
		specialLookup:   make(map[dispatchKey]resolved),
	}

	for _, ep := range entryPoints {
		node, err := p.loadClass(ep.Class)
		if err != nil {
			return nil, err
		}
		m := node.CF.Method(ep.Sig)
		if m == nil {
			return nil, sawjaerrors.New(sawjaerrors.KindNoSuchMethod,
				sawjaerrors.Location{Class: ep.Class}, "entry point method %s not found", ep.Sig)
		}
		p.enqueue(node, m)
	}

	if err := p.drain(); err != nil {
		return nil, err
	}
	return p, nil
}

// enqueue adds m to the worklist unless it has already been parsed or
// queued (spec's has_been_parsed monotone transition).
func (p *Program) enqueue(node *hierarchy.Node, m *classfile.Method) {
	if m == nil || m.HasBeenParsed() || m.IsAbstract {
		return
	}
	m.MarkParsed()
	p.workset = append(p.workset, workItem{Node: node, Method: m})
}

func (p *Program) drain() error {
	for len(p.workset) > 0 {
		item := p.workset[0]
		p.workset = p.workset[1:]
		p.parsedMethods = append(p.parsedMethods, item.Method)

		if item.Method.IsNative {
			p.handleNative(item)
			continue
		}
		if item.Method.Code == nil {
			continue
		}
		for _, instr := range item.Method.Code.Instrs {
			if err := p.step(item, instr); err != nil {
				p.warn(sawjaerrors.KindInvokeNotFound,
					sawjaerrors.Location{Class: item.Node.Name, Method: item.Method.Sig.String(), PC: instr.PC},
					"%v", err)
			}
		}
	}
	return nil
}

// loadClass returns the hierarchy node for name, loading it (and, eagerly,
// every ancestor and interface it names) on first reference.
func (p *Program) loadClass(name classfile.ClassName) (*hierarchy.Node, error) {
	if n := p.hier.NodeByName(name); n != nil {
		return n, nil
	}
	cf, err := p.cp.Load(name)
	if err != nil {
		return nil, sawjaerrors.Wrap(err, sawjaerrors.KindNoClassDefFound,
			sawjaerrors.Location{Class: name}, "loading class %s", name)
	}

	super := hierarchy.Invalid
	if cf.SuperName != "" {
		sn, err := p.loadClass(cf.SuperName)
		if err != nil {
			return nil, err
		}
		super = sn.ID()
	}
	ifaces := make([]hierarchy.NodeID, 0, len(cf.Interfaces))
	for _, in := range cf.Interfaces {
		inode, err := p.loadClass(in)
		if err != nil {
			return nil, err
		}
		ifaces = append(ifaces, inode.ID())
	}

	node := p.hier.Add(cf, super, ifaces)
	if !cf.IsInterface {
		for _, id := range p.hier.AllInterfaces(node.ID()) {
			iname := p.hier.Node(id).Name
			if p.interfaces[iname] == nil {
				p.interfaces[iname] = make(map[hierarchy.NodeID]bool)
			}
			p.interfaces[iname][node.ID()] = true
		}
	}
	return node, nil
}
