package absint

import (
	"testing"

	"sawja/internal/classfile"
	"sawja/internal/hierarchy"
)

func TestJoinLatticeLaws(t *testing.T) {
	vals := []AbVSet{Bot(), Primitive(), Top(), NewSet(1, 2), NewSet(2, 3), Singleton(5)}

	for _, a := range vals {
		for _, b := range vals {
			ab, _ := Join(a, b)
			ba, _ := Join(b, a)
			if !Equal(ab, ba) {
				t.Errorf("join not commutative for %+v, %+v", a, b)
			}
		}
	}

	for _, a := range vals {
		for _, b := range vals {
			for _, c := range vals {
				left, _ := Join(a, b)
				left, _ = Join(left, c)
				right, _ := Join(b, c)
				right, _ = Join(a, right)
				if !Equal(left, right) {
					t.Errorf("join not associative for %+v, %+v, %+v", a, b, c)
				}
			}
		}
	}

	for _, a := range vals {
		r, changed := Join(a, a)
		if !Equal(r, a) || changed {
			t.Errorf("join not idempotent for %+v", a)
		}
	}

	for _, a := range vals {
		r, changed := Join(a, Bot())
		if !Equal(r, a) || changed {
			t.Errorf("Bot is not identity for %+v", a)
		}
	}

	for _, a := range vals {
		for _, b := range vals {
			r, changed := Join(a, b)
			agrees := Equal(r, a) && func() bool { ba, _ := Join(b, a); return Equal(ba, b) }()
			if Equal(a, b) && !agrees {
				t.Errorf("equal values should agree per join-equality law: %+v, %+v", a, b)
			}
			wantChanged := !Equal(r, a)
			if changed != wantChanged {
				t.Errorf("modifies flag wrong for %+v join %+v: got %v want %v", a, b, changed, wantChanged)
			}
		}
	}
}

func TestJoinPrimitiveSetCoercesToTop(t *testing.T) {
	var warned string
	WarnHook = func(msg string) { warned = msg }
	defer func() { WarnHook = nil }()

	r, changed := Join(Primitive(), NewSet(1))
	if !r.IsTop() || !changed {
		t.Fatalf("expected Primitive join Set = Top, got %+v changed=%v", r, changed)
	}
	if warned == "" {
		t.Fatal("expected WarnHook to fire on Primitive/Set coercion")
	}
}

func TestConcretize(t *testing.T) {
	table := NewSiteTable()
	s1 := table.Intern(0, "B")
	s2 := table.Intern(1, "C")
	set := NewSet(s1, s2)

	types := Concretize(set, table)
	if len(types) != 2 {
		t.Fatalf("expected 2 concrete types, got %d: %v", len(types), types)
	}
}

// TestFilterWithCompatible builds a tiny A <- B, A <- C hierarchy and
// checks that filtering a set of sites by compatibility with B keeps
// only the B site, discarding the C site, and vice versa for
// FilterWithUncompatible.
func TestFilterWithCompatible(t *testing.T) {
	hier := hierarchy.New()
	object := hier.Add(&classfile.ClassFile{Name: "java/lang/Object"}, hierarchy.Invalid, nil)
	a := hier.Add(&classfile.ClassFile{Name: "A"}, object.ID(), nil)
	hier.Add(&classfile.ClassFile{Name: "B", SuperName: "A"}, a.ID(), nil)
	hier.Add(&classfile.ClassFile{Name: "C", SuperName: "A"}, a.ID(), nil)

	table := NewSiteTable()
	siteB := table.Intern(0, "B")
	siteC := table.Intern(1, "C")
	set := NewSet(siteB, siteC)

	compatible := FilterWithCompatible(set, table, hier, "B")
	if !compatible.IsSet() {
		t.Fatalf("expected a Set, got %+v", compatible)
	}
	if got := Concretize(compatible, table); len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected only B to survive filtering for compatibility with B, got %v", got)
	}

	uncompatible := FilterWithUncompatible(set, table, hier, "B")
	if got := Concretize(uncompatible, table); len(got) != 1 || got[0] != "C" {
		t.Fatalf("expected only C to survive filtering for incompatibility with B, got %v", got)
	}
}
