package rta

import (
	"os"
	"path/filepath"
	"testing"

	"sawja/internal/classfile"
	"sawja/internal/classpath"
)

// canned builds a fake classfile.Decoder that ignores the raw bytes
// (which, in this test's fixture directory, just hold the class's own
// name) and returns pre-built classfile.ClassFile values from a map —
// standing in for the external decoder spec.md marks out of scope.
func canned(classes map[classfile.ClassName]*classfile.ClassFile) classfile.Decoder {
	return func(raw []byte) (*classfile.ClassFile, error) {
		name := string(raw)
		cf, ok := classes[name]
		if !ok {
			return nil, os.ErrNotExist
		}
		return cf, nil
	}
}

func writeFixture(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		path := filepath.Join(dir, n+".class")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func sig(name, desc string) classfile.MethodSignature {
	return classfile.MethodSignature{Name: name, Descriptor: desc}
}

// TestSingleInstantiationResolvesToSubclass implements spec §8 scenario
// 5: a program whose only instantiation is B (subclass of A) and whose
// only invoke is a.m() on a variable of static type A yields a single
// callgraph edge to B.m.
func TestSingleInstantiationResolvesToSubclass(t *testing.T) {
	dir := t.TempDir()

	object := &classfile.ClassFile{Name: "java/lang/Object"}
	a := &classfile.ClassFile{
		Name:      "A",
		SuperName: "java/lang/Object",
		Methods: []*classfile.Method{
			{Owner: "A", Sig: sig("m", "()V"), Code: &classfile.Code{}},
		},
	}
	b := &classfile.ClassFile{
		Name:      "B",
		SuperName: "A",
		Methods: []*classfile.Method{
			{Owner: "B", Sig: sig("m", "()V"), Code: &classfile.Code{}},
		},
	}
	main := &classfile.ClassFile{
		Name:      "Main",
		SuperName: "java/lang/Object",
		Methods: []*classfile.Method{
			{Owner: "Main", Sig: sig("run", "()V"), Code: &classfile.Code{
				Instrs: []classfile.Instr{
					{PC: 0, Op: classfile.OpNew, ClassName: "B"},
					{PC: 4, Op: classfile.OpInvokeVirtual, ClassName: "A", MethodSig: sig("m", "()V")},
					{PC: 7, Op: classfile.OpReturn},
				},
			}},
		},
	}

	classes := map[classfile.ClassName]*classfile.ClassFile{
		"java/lang/Object": object, "A": a, "B": b, "Main": main,
	}
	writeFixture(t, dir, "java/lang/Object", "A", "B", "Main")

	cp, err := classpath.Open(dir, canned(classes))
	if err != nil {
		t.Fatalf("opening classpath: %v", err)
	}
	defer cp.Close()

	prog, err := Run(cp, []EntryPoint{{Class: "Main", Sig: sig("run", "()V")}}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var virtualEdges []Edge
	for _, e := range prog.Edges() {
		if e.CallerClass == "Main" {
			virtualEdges = append(virtualEdges, e)
		}
	}
	if len(virtualEdges) != 1 {
		t.Fatalf("expected exactly 1 callgraph edge from Main, got %d: %#v", len(virtualEdges), virtualEdges)
	}
	edge := virtualEdges[0]
	if edge.CalleeClass != "B" || edge.CalleeSig != sig("m", "()V") {
		t.Fatalf("expected edge to B.m, got %+v", edge)
	}

	edges, err := prog.StaticLookupMethod("A", sig("m", "()V"), classfile.OpInvokeVirtual)
	if err != nil {
		t.Fatalf("StaticLookupMethod: %v", err)
	}
	if len(edges) != 1 || edges[0].CalleeClass != "B" {
		t.Fatalf("expected static_lookup_method(A, m, invokevirtual) = {B.m}, got %#v", edges)
	}
}

func TestNativeMethodWithoutStubRecordedOpaque(t *testing.T) {
	dir := t.TempDir()
	object := &classfile.ClassFile{Name: "java/lang/Object"}
	c := &classfile.ClassFile{
		Name:      "C",
		SuperName: "java/lang/Object",
		Methods: []*classfile.Method{
			{Owner: "C", Sig: sig("n", "()V"), IsNative: true},
		},
	}
	classes := map[classfile.ClassName]*classfile.ClassFile{"java/lang/Object": object, "C": c}
	writeFixture(t, dir, "java/lang/Object", "C")

	cp, err := classpath.Open(dir, canned(classes))
	if err != nil {
		t.Fatalf("opening classpath: %v", err)
	}
	defer cp.Close()

	prog, err := Run(cp, []EntryPoint{{Class: "C", Sig: sig("n", "()V")}}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(prog.NativeMethods()) != 1 {
		t.Fatalf("expected native method C.n recorded as opaque, got %#v", prog.NativeMethods())
	}
}
