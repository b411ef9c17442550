package persist

import (
	"path/filepath"
	"testing"

	"sawja/internal/classfile"
	"sawja/internal/rta"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		RunID: "run-1",
		Edges: []rta.Edge{
			{
				CallerClass: "Main",
				CallerSig:   classfile.MethodSignature{Name: "main", Descriptor: "([Ljava/lang/String;)V"},
				PC:          3,
				CalleeClass: "Greeter",
				CalleeSig:   classfile.MethodSignature{Name: "greet", Descriptor: "()V"},
			},
		},
		ParsedMethods: []MethodKey{
			{Class: "Main", Sig: classfile.MethodSignature{Name: "main", Descriptor: "([Ljava/lang/String;)V"}},
		},
		NativeMethods: []MethodKey{
			{Class: "java/lang/Object", Sig: classfile.MethodSignature{Name: "hashCode", Descriptor: "()I"}},
		},
		InstantiatedNames: []classfile.ClassName{"Main", "Greeter"},
	}
}

func assertSnapshotsEqual(t *testing.T, want, got *Snapshot) {
	t.Helper()
	if got.RunID != want.RunID {
		t.Errorf("RunID = %q, want %q", got.RunID, want.RunID)
	}
	if len(got.Edges) != len(want.Edges) || got.Edges[0] != want.Edges[0] {
		t.Errorf("Edges = %+v, want %+v", got.Edges, want.Edges)
	}
	if len(got.ParsedMethods) != len(want.ParsedMethods) || got.ParsedMethods[0] != want.ParsedMethods[0] {
		t.Errorf("ParsedMethods = %+v, want %+v", got.ParsedMethods, want.ParsedMethods)
	}
	if len(got.NativeMethods) != len(want.NativeMethods) || got.NativeMethods[0] != want.NativeMethods[0] {
		t.Errorf("NativeMethods = %+v, want %+v", got.NativeMethods, want.NativeMethods)
	}
	if len(got.InstantiatedNames) != len(want.InstantiatedNames) {
		t.Errorf("InstantiatedNames = %v, want %v", got.InstantiatedNames, want.InstantiatedNames)
	}
}

func TestGobStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.gob")
	want := sampleSnapshot()

	store, err := OpenGobStore(path)
	if err != nil {
		t.Fatalf("OpenGobStore: %v", err)
	}
	if err := store.Put("k1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	store.Close()

	reopened, err := OpenGobStore(path)
	if err != nil {
		t.Fatalf("reopen OpenGobStore: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get("k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after reopening the store")
	}
	assertSnapshotsEqual(t, want, got)

	if _, ok, _ := reopened.Get("missing"); ok {
		t.Fatal("expected a miss for an unwritten key")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	want := sampleSnapshot()

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer store.Close()

	key := HashKey("classpath:/tmp/app.jar", "entry:Main.main([Ljava/lang/String;)V")
	if err := store.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit for the key just written")
	}
	assertSnapshotsEqual(t, want, got)

	other := HashKey("classpath:/tmp/app.jar", "entry:Main.main([Ljava/lang/String;)V")
	if other != key {
		t.Fatal("HashKey must be deterministic across calls with identical parts")
	}
	differs := HashKey("classpath:/tmp/other.jar", "entry:Main.main([Ljava/lang/String;)V")
	if differs == key {
		t.Fatal("HashKey must distinguish different classpath identities")
	}
}

func TestSQLiteStoreMissReturnsNoError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get on miss returned error: %v", err)
	}
	if ok {
		t.Fatal("expected a miss")
	}
}
