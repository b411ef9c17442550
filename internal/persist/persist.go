// Package persist supplies the persisted, incrementally-reusable RTA
// result spec §6 asks for, behind one pluggable Store interface — the
// same shape as the teacher's internal/database.DBManager, which lets
// callers swap sqlite/postgres/mysql behind one Connect/Query/Close
// contract. Here the two backends are GobStore (a flat single-file
// snapshot) and SQLiteStore (a keyed cache a repeated run can look up
// before paying for a fresh fixpoint), instead of the teacher's
// general-purpose scripting database clients.
package persist

import (
	"sawja/internal/classfile"
	"sawja/internal/rta"
)

// MethodKey names one concrete method RTA's worklist reached.
type MethodKey struct {
	Class classfile.ClassName
	Sig   classfile.MethodSignature
}

// Snapshot is the persisted projection of an rta.Program: enough to
// reconstruct the call graph and the set of reachable/instantiated
// classes without re-running the worklist, but not the full class
// hierarchy (ClassFile bodies are re-derived from the classpath on
// load, cheaply, since decoding itself is an injected external
// collaborator, not this module's cost center).
type Snapshot struct {
	RunID             string
	Edges             []rta.Edge
	ParsedMethods     []MethodKey
	NativeMethods     []MethodKey
	InstantiatedNames []classfile.ClassName
}

// NewSnapshot builds a Snapshot from a completed RTA run, tagging it
// with runID (spec §6's "each cache row tagged with a run ID so a
// caller can distinguish a reused fixpoint from a recomputed one").
func NewSnapshot(runID string, prog *rta.Program) *Snapshot {
	s := &Snapshot{RunID: runID, Edges: prog.Edges()}

	for _, m := range prog.ParsedMethods() {
		s.ParsedMethods = append(s.ParsedMethods, MethodKey{Class: m.Owner, Sig: m.Sig})
	}
	for _, nm := range prog.NativeMethods() {
		s.NativeMethods = append(s.NativeMethods, MethodKey{Class: nm.Class, Sig: nm.Sig})
	}
	for _, n := range prog.Hierarchy().Nodes() {
		if n.IsInstantiated {
			s.InstantiatedNames = append(s.InstantiatedNames, n.Name)
		}
	}
	return s
}

// Store is the pluggable persistence backend both GobStore and
// SQLiteStore implement.
type Store interface {
	// Put persists snap under key, overwriting whatever was there.
	Put(key string, snap *Snapshot) error
	// Get retrieves the Snapshot last Put under key, if any.
	Get(key string) (*Snapshot, bool, error)
	Close() error
}
