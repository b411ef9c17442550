package nativestubs

import (
	"strings"
	"testing"

	"sawja/internal/classfile"
)

func TestLoadAndLookup(t *testing.T) {
	const doc = `[
		{
			"class": "java/io/FileInputStream",
			"method": {"Name": "open", "Descriptor": "(Ljava/lang/String;)V"},
			"allocated_classes": ["Ljava/io/FileNotFoundException;"],
			"callees": [
				{"class": "java/io/FileDescriptor", "method": {"Name": "<init>", "Descriptor": "()V"}}
			]
		}
	]`

	table, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sig := classfile.MethodSignature{Name: "open", Descriptor: "(Ljava/lang/String;)V"}
	stub, ok := table.Lookup("java/io/FileInputStream", sig)
	if !ok {
		t.Fatal("expected stub to be found")
	}
	types := stub.AllocatedTypes()
	if len(types) != 1 {
		t.Fatalf("expected 1 allocated type, got %d", len(types))
	}
	obj, ok := types[0].(classfile.ObjectType)
	if !ok || obj.ClassName != "java/io/FileNotFoundException" {
		t.Fatalf("unexpected allocated type: %#v", types[0])
	}
	if len(stub.Callees) != 1 || stub.Callees[0].Class != "java/io/FileDescriptor" {
		t.Fatalf("unexpected callees: %#v", stub.Callees)
	}

	if _, ok := table.Lookup("java/io/FileInputStream", classfile.MethodSignature{Name: "close", Descriptor: "()V"}); ok {
		t.Fatal("expected lookup miss for unknown method")
	}
}

func TestLookupOnNilTable(t *testing.T) {
	var table *Table
	if _, ok := table.Lookup("Any", classfile.MethodSignature{Name: "m", Descriptor: "()V"}); ok {
		t.Fatal("expected nil table to report a miss, not a match")
	}
}
