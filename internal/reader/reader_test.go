package reader

import (
	"testing"

	"opal/internal/object"
	"opal/internal/runtime"
)

func readAll(t *testing.T, src string) []object.Object {
	t.Helper()
	forms, err := New(src, runtime.NewContext()).ReadAll()
	if err != nil {
		t.Fatalf("read error for %q: %v", src, err)
	}
	return forms
}

func readOne(t *testing.T, src string) object.Object {
	t.Helper()
	forms := readAll(t, src)
	if len(forms) != 1 {
		t.Fatalf("expected one form for %q, got %d", src, len(forms))
	}
	return forms[0]
}

func TestReadLiterals(t *testing.T) {
	if n := readOne(t, "42").(*object.Integer); n.Value != 42 {
		t.Errorf("integer = %d, want 42", n.Value)
	}
	if f := readOne(t, "-1.5").(*object.Float); f.Value != -1.5 {
		t.Errorf("float = %v, want -1.5", f.Value)
	}
	if s := readOne(t, `"hi"`).(*object.String); s.Value != "hi" {
		t.Errorf("string = %q, want hi", s.Value)
	}
	if readOne(t, "nil") != object.NIL {
		t.Errorf("nil did not read as the singleton")
	}
	if readOne(t, "true") != object.TRUE {
		t.Errorf("true did not read as the singleton")
	}
}

func TestKeywordsAreInterned(t *testing.T) {
	ctx := runtime.NewContext()
	forms, err := New(":a :a :user/a", ctx).ReadAll()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if forms[0] != forms[1] {
		t.Errorf("identical keywords are distinct instances")
	}
	if forms[0] == forms[2] {
		t.Errorf("qualified keyword shares the bare keyword's instance")
	}
}

func TestReadCollections(t *testing.T) {
	list := readOne(t, "(1 2 3)").(*object.PersistentList)
	if len(list.Elements) != 3 {
		t.Fatalf("list has %d elements, want 3", len(list.Elements))
	}

	vec := readOne(t, "[1 2]").(*object.PersistentVector)
	if len(vec.Elements) != 2 {
		t.Fatalf("vector has %d elements, want 2", len(vec.Elements))
	}

	m := readOne(t, "{:a 1 :b 2}").(*object.PersistentArrayMap)
	if m.Count() != 2 {
		t.Fatalf("map has %d entries, want 2", m.Count())
	}

	set := readOne(t, "#{:a :b}").(*object.PersistentHashSet)
	if len(set.Elems) != 2 {
		t.Fatalf("set has %d elements, want 2", len(set.Elems))
	}
}

func TestOddMapLiteralFails(t *testing.T) {
	if _, err := New("{:a 1 :b}", runtime.NewContext()).ReadAll(); err == nil {
		t.Errorf("expected an error for an odd map literal")
	}
}

func TestReaderMacros(t *testing.T) {
	quoted := readOne(t, "'x").(*object.PersistentList)
	if head := quoted.Elements[0].(*object.Symbol); head.Name != "quote" {
		t.Errorf("quote macro expanded to %s", head.Name)
	}

	deref := readOne(t, "@x").(*object.PersistentList)
	if head := deref.Elements[0].(*object.Symbol); head.Name != "deref" {
		t.Errorf("deref macro expanded to %s", head.Name)
	}

	varref := readOne(t, "#'x").(*object.PersistentList)
	if head := varref.Elements[0].(*object.Symbol); head.Name != "var" {
		t.Errorf("var ref macro expanded to %s", head.Name)
	}
}

func TestMetaShorthand(t *testing.T) {
	sym := readOne(t, "^:dynamic *depth*").(*object.Symbol)
	if sym.Meta == nil {
		t.Fatalf("meta was not attached")
	}
	m := sym.Meta.(*object.PersistentArrayMap)
	v, ok := m.Get(&object.Keyword{Name: "dynamic"})
	if !ok || v != object.TRUE {
		t.Errorf(":dynamic shorthand did not expand to {:dynamic true}")
	}
}

func TestDiscardDropsForm(t *testing.T) {
	forms := readAll(t, "1 #_(+ 2 3) 4")
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms after discard, got %d", len(forms))
	}
	if forms[1].(*object.Integer).Value != 4 {
		t.Errorf("discard consumed the wrong form")
	}
}

func TestIncompleteInput(t *testing.T) {
	for _, src := range []string{"(+ 1", "[1 2", "{:a", "#{", `(str "open`} {
		_, err := New(src, runtime.NewContext()).ReadAll()
		if err == nil {
			t.Errorf("%q: expected an error", src)
			continue
		}
		if src != `(str "open` && !IsIncomplete(err) {
			t.Errorf("%q: expected an incomplete-input error, got %v", src, err)
		}
	}

	if _, err := New("(+ 1 2) extra)", runtime.NewContext()).ReadAll(); err == nil || IsIncomplete(err) {
		t.Errorf("stray closer should be a hard error, got %v", err)
	}
}

func TestQualifiedSymbols(t *testing.T) {
	sym := readOne(t, "my.ns/f").(*object.Symbol)
	if sym.Ns != "my.ns" || sym.Name != "f" {
		t.Errorf("qualified symbol read as %q/%q", sym.Ns, sym.Name)
	}

	div := readOne(t, "/").(*object.Symbol)
	if div.Ns != "" || div.Name != "/" {
		t.Errorf("division symbol read as %q/%q", div.Ns, div.Name)
	}
}
