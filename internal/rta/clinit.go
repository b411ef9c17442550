package rta

import "sawja/internal/hierarchy"

// scheduleClinit enqueues node's <clinit>, if present and not already
// scheduled, and — only for classes, never interfaces — recurses up the
// superclass chain (Open Question ii: a class's initialization runs its
// whole superclass chain; an interface's own clinit is enqueued whenever
// it has one, and never propagates to a super-interface, since interface
// static fields are not inherited the way class statics are).
func (p *Program) scheduleClinit(node *hierarchy.Node) {
	if node == nil || p.clinits[node.Name] {
		return
	}
	p.clinits[node.Name] = true

	if m := node.CF.Method(clinitSig); m != nil {
		p.enqueue(node, m)
	}

	if node.Kind == hierarchy.KindClass && node.Super != hierarchy.Invalid {
		p.scheduleClinit(p.hier.Node(node.Super))
	}
}
