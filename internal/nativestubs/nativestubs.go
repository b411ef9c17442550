// Package nativestubs defines the side table that substitutes for the
// bodies of native methods during RTA (spec §4's "native-method stub file
// parsing" boundary): for each native method, a list of classes it may
// allocate and a list of methods it may call. The file format itself is
// out of scope — this package only binds JSON onto the contract type, the
// same thin data-binding role internal/classfile's Decoder plays for
// classfiles.
package nativestubs

import (
	"encoding/json"
	"io"

	"sawja/internal/classfile"
)

// Callee names one method a native stub may invoke.
type Callee struct {
	Class classfile.ClassName       `json:"class"`
	Sig   classfile.MethodSignature `json:"method"`
}

// Stub is the per-native-method effect summary spec.md names: the classes
// it may instantiate and the methods it may call, both driving ordinary
// worklist enqueues exactly as if the native method had a real body.
// AllocatedClasses holds raw type descriptors (spec §4.7's "list<type_
// descriptor>"); callers resolve them with classfile.ParseFieldDescriptor
// on demand rather than paying the parse cost for every stub at load time.
type Stub struct {
	AllocatedClasses []string `json:"allocated_classes"`
	Callees          []Callee `json:"callees"`
}

// AllocatedTypes parses every raw descriptor in AllocatedClasses.
func (s Stub) AllocatedTypes() []classfile.Type {
	out := make([]classfile.Type, len(s.AllocatedClasses))
	for i, d := range s.AllocatedClasses {
		out[i] = classfile.ParseFieldDescriptor(d)
	}
	return out
}

// Table maps a native method signature, scoped to its declaring class, to
// its Stub. Lookup miss is not an error: spec.md says a missing stub
// leaves the method opaque and the caller records it and warns.
type Table struct {
	entries map[classfile.ClassName]map[classfile.MethodSignature]Stub
}

// Lookup returns the stub for (class, sig), if any was loaded.
func (t *Table) Lookup(class classfile.ClassName, sig classfile.MethodSignature) (Stub, bool) {
	if t == nil {
		return Stub{}, false
	}
	methods, ok := t.entries[class]
	if !ok {
		return Stub{}, false
	}
	s, ok := methods[sig]
	return s, ok
}

// rawEntry is the on-the-wire shape: one object per native method, naming
// its own class/signature alongside its Stub fields, since the stub file
// is a flat list rather than nested per spec's "consumed as an opaque
// map" framing (the nesting is this package's choice, not the format's).
type rawEntry struct {
	Class            classfile.ClassName       `json:"class"`
	Method           classfile.MethodSignature `json:"method"`
	AllocatedClasses []string                  `json:"allocated_classes"`
	Callees          []Callee                  `json:"callees"`
}

// Load decodes a native-stub file from r into a Table. The expected shape
// is a JSON array of rawEntry objects.
func Load(r io.Reader) (*Table, error) {
	var raw []rawEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	t := &Table{entries: make(map[classfile.ClassName]map[classfile.MethodSignature]Stub)}
	for _, e := range raw {
		if t.entries[e.Class] == nil {
			t.entries[e.Class] = make(map[classfile.MethodSignature]Stub)
		}
		t.entries[e.Class][e.Method] = Stub{
			AllocatedClasses: e.AllocatedClasses,
			Callees:          e.Callees,
		}
	}
	return t, nil
}
