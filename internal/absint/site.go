// Package absint implements the abstract domains spec §4.4 names:
// AbVSet (allocation-site powerset), AbFSet (field abstraction), AbLocals
// (per-pc variable environment), and AbMethod (method summary). AbVSet's
// site-set arm is built on golang.org/x/tools/container/intsets.Sparse;
// AbFSet and AbLocals are plain maps keyed by site and by variable.
package absint

import "sawja/internal/classfile"

// Site is one allocation site: the instruction that created the object
// plus the class it created (spec glossary: "a list of program points
// (context) paired with an object type" — context-insensitively, a site
// degenerates to just the (pc, class) pair).
type Site struct {
	PC    int
	Class classfile.ClassName
}

// SiteTable interns Sites to small integers, program-wide (spec §9's
// "global mutable state... refactor to an explicit interner owned by
// the program object").
type SiteTable struct {
	sites []Site
	index map[Site]int
}

func NewSiteTable() *SiteTable {
	return &SiteTable{index: make(map[Site]int)}
}

// Intern returns the stable id for (pc, class), minting one if needed.
func (t *SiteTable) Intern(pc int, class classfile.ClassName) int {
	s := Site{PC: pc, Class: class}
	if id, ok := t.index[s]; ok {
		return id
	}
	id := len(t.sites)
	t.sites = append(t.sites, s)
	t.index[s] = id
	return id
}

// Site returns the (pc, class) a previously-interned id stands for.
func (t *SiteTable) Site(id int) Site { return t.sites[id] }

// Class is shorthand for Site(id).Class — the "concretize" projection
// spec §4.4 names (dropping the pc context, keeping only the object
// type) applied to one site at a time.
func (t *SiteTable) Class(id int) classfile.ClassName { return t.sites[id].Class }
