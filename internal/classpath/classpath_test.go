package classpath

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/txtar"

	"sawja/internal/classfile"
)

// fixture lays out a small multi-directory classpath root as a single
// embeddable text blob — one archive member per "file" — rather than a
// directory-per-fixture tree on disk, per spec §4.8's test-tooling
// commitment.
const fixture = `
-- A.class --
stand-in bytes for A
-- pkg/B.class --
stand-in bytes for pkg/B
`

// echoDecoder is a stand-in classfile.Decoder: real constant-pool
// decoding is out of scope (spec §1), so this just proves the right raw
// bytes reached the decoder for the right class name.
func echoDecoder(raw []byte) (*classfile.ClassFile, error) {
	return &classfile.ClassFile{Name: strings.TrimSpace(string(raw))}, nil
}

func writeFixture(t *testing.T, root string) {
	t.Helper()
	ar := txtar.Parse([]byte(fixture))
	for _, f := range ar.Files {
		full := filepath.Join(root, f.Name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadFromTxtarFixture(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root)

	cp, err := Open(root, echoDecoder)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cp.Close()

	cf, err := cp.Load("A")
	if err != nil {
		t.Fatalf("Load(A): %v", err)
	}
	if cf.Name != "stand-in bytes for A" {
		t.Fatalf("Load(A).Name = %q, want %q", cf.Name, "stand-in bytes for A")
	}

	cf, err = cp.Load("pkg/B")
	if err != nil {
		t.Fatalf("Load(pkg/B): %v", err)
	}
	if cf.Name != "stand-in bytes for pkg/B" {
		t.Fatalf("Load(pkg/B).Name = %q, want %q", cf.Name, "stand-in bytes for pkg/B")
	}

	if _, err := cp.Load("Missing"); err == nil {
		t.Fatal("expected an error loading a class absent from every root")
	}
}

func TestLoadCachesDecodedResult(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root)

	calls := 0
	counting := func(raw []byte) (*classfile.ClassFile, error) {
		calls++
		return echoDecoder(raw)
	}

	cp, err := Open(root, counting)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cp.Close()

	if _, err := cp.Load("A"); err != nil {
		t.Fatalf("Load(A): %v", err)
	}
	if _, err := cp.Load("A"); err != nil {
		t.Fatalf("Load(A) second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("decoder called %d times, want 1 (second Load should hit the cache)", calls)
	}
}
