package runtime

import (
	"strings"
	"testing"

	"opal/internal/object"
)

func TestInternVarUsesCurrentNs(t *testing.T) {
	ctx := NewContext()
	v, err := ctx.InternVar(&object.Symbol{Name: "x"})
	if err != nil {
		t.Fatalf("intern error: %v", err)
	}
	if got := ctx.FindVar(CoreNs + "/x"); got != v {
		t.Errorf("var not reachable through its qualified name")
	}

	again, _ := ctx.InternVar(&object.Symbol{Name: "x"})
	if again != v {
		t.Errorf("re-interning produced a different var")
	}
}

func TestInternVarQualified(t *testing.T) {
	ctx := NewContext()
	v, err := ctx.InternVar(&object.Symbol{Ns: "other.ns", Name: "y"})
	if err != nil {
		t.Fatalf("intern error: %v", err)
	}
	if ctx.FindVar("other.ns/y") != v {
		t.Errorf("qualified intern did not land in its namespace")
	}
	if ctx.FindVar(CoreNs+"/y") != nil {
		t.Errorf("qualified intern leaked into the current namespace")
	}
}

func TestDefineVarHonorsDynamicMeta(t *testing.T) {
	ctx := NewContext()
	meta := &object.PersistentArrayMap{Pairs: []object.Object{
		&object.Keyword{Name: "dynamic"}, object.TRUE,
	}}
	sym := &object.Symbol{Name: "*level*", Meta: meta}

	v, err := ctx.DefineVar(sym, &object.Integer{Value: 1}, true)
	if err != nil {
		t.Fatalf("define error: %v", err)
	}
	if !v.IsDynamic() {
		t.Errorf("dynamic meta not honored")
	}
	if v.Deref().(*object.Integer).Value != 1 {
		t.Errorf("root binding missing")
	}
	if v.Meta != meta {
		t.Errorf("symbol metadata not copied onto the var")
	}
}

func TestDefineVarUnbound(t *testing.T) {
	ctx := NewContext()
	v, err := ctx.DefineVar(&object.Symbol{Name: "later"}, nil, false)
	if err != nil {
		t.Fatalf("define error: %v", err)
	}
	if v.Deref() != object.NIL {
		t.Errorf("unbound var should deref to nil, got %s", v.Deref().Inspect())
	}
}

func TestBindingRestoresPreviousValue(t *testing.T) {
	ctx := NewContext()
	v, _ := ctx.DefineVar(&object.Symbol{Name: "b"}, &object.Integer{Value: 1}, true)

	release := ctx.Binding(v, &object.Integer{Value: 2})
	if v.Deref().(*object.Integer).Value != 2 {
		t.Fatalf("binding did not take effect")
	}
	release()
	if v.Deref().(*object.Integer).Value != 1 {
		t.Errorf("release did not restore the previous value")
	}
}

func TestAllowNativeReturnDefaultsOff(t *testing.T) {
	ctx := NewContext()
	if ctx.AllowNativeReturn() {
		t.Fatalf("native returns should be disallowed by default")
	}
	v := ctx.FindVar(CoreNs + "/" + AllowNativeReturnVar)
	if v == nil || !v.IsDynamic() {
		t.Fatalf("the flag var should exist and be dynamic")
	}
	release := ctx.Binding(v, object.TRUE)
	if !ctx.AllowNativeReturn() {
		t.Errorf("binding the flag did not enable native returns")
	}
	release()
	if ctx.AllowNativeReturn() {
		t.Errorf("release did not restore the flag")
	}
}

func TestKeywordInterning(t *testing.T) {
	ctx := NewContext()
	a := ctx.InternKeyword("", "foo")
	b := ctx.InternKeyword("", "foo")
	if a != b {
		t.Errorf("same keyword interned twice")
	}
	if ctx.InternKeyword("ns", "foo") == a {
		t.Errorf("qualified keyword collides with the bare one")
	}
}

func TestUniqueNamespacedString(t *testing.T) {
	ctx := NewContext()
	a := ctx.UniqueNamespacedString("repl_fn")
	b := ctx.UniqueNamespacedString("repl_fn")
	if a == b {
		t.Errorf("two calls produced the same name: %s", a)
	}
	if !strings.HasPrefix(a, CoreNs+"/repl_fn_") {
		t.Errorf("unexpected shape: %s", a)
	}
}

func TestMunge(t *testing.T) {
	cases := map[string]string{
		"repl_fn_1": "repl_fn_1",
		"even?":     "even_QMARK_",
		"set!":      "set_BANG_",
		"+":         "_PLUS_",
		"my.ns/f-g": "my_ns_SLASH_f_g",
		"a$b":       "a_DOLLAR_b",
		"<=>":       "_LT__EQ__GT_",
	}
	for in, want := range cases {
		if got := Munge(in); got != want {
			t.Errorf("Munge(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNestModule(t *testing.T) {
	if got := NestModule("opal.core", "repl_fn_1"); got != "opal.core$repl_fn_1" {
		t.Errorf("got %q", got)
	}
}
