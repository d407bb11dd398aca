package jit

import (
	"strings"
	"testing"

	"opal/internal/codegen"
	"opal/internal/object"
	"opal/internal/runtime"
)

func constantFn(name string, value int64) *object.Fn {
	return &object.Fn{
		Name:       name,
		UniqueName: name,
		Arities: []*object.FnArity{
			{ParamCount: 0, Body: func([]object.Object) (object.Object, error) {
				return &object.Integer{Value: value}, nil
			}},
		},
	}
}

func sumFn(name string) *object.Fn {
	return &object.Fn{
		Name:       name,
		UniqueName: name,
		Arities: []*object.FnArity{
			{ParamCount: 2, Body: func(args []object.Object) (object.Object, error) {
				a := args[0].(*object.Integer).Value
				b := args[1].(*object.Integer).Value
				return &object.Integer{Value: a + b}, nil
			}},
		},
	}
}

func testModule(name string, fn *object.Fn) *codegen.Module {
	return &codegen.Module{
		Name:    name,
		Symbol:  fn.Name + "_0",
		Decl:    "(module " + name + ")",
		ExprSrc: fn.Name + "_0",
		Entry:   fn,
	}
}

func TestLoadModuleAndFindSymbol(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	m := testModule("user.repl_fn_1", constantFn("repl_fn_1", 42))

	if err := p.LoadModule(m); err != nil {
		t.Fatalf("load error: %v", err)
	}
	fn, err := p.FindSymbol("repl_fn_1_0")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	res, err := fn.Invoke(nil)
	if err != nil {
		t.Fatalf("invoke error: %v", err)
	}
	if res.(*object.Integer).Value != 42 {
		t.Errorf("got %s, want 42", res.Inspect())
	}
}

func TestLoadModuleWithoutEntry(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	err := p.LoadModule(&codegen.Module{Name: "user.empty"})
	if err == nil || !strings.Contains(err.Error(), "no entry function") {
		t.Errorf("expected missing-entry error, got %v", err)
	}
}

func TestFindSymbolUnresolved(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	_, err := p.FindSymbol("nope_0")
	if err == nil || !strings.Contains(err.Error(), "unresolved symbol") {
		t.Errorf("expected unresolved-symbol error, got %v", err)
	}
}

func TestEvalDeclarationRegisters(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	m := testModule("user.repl_fn_2", constantFn("repl_fn_2", 7))

	if err := p.EvalDeclaration(m); err != nil {
		t.Fatalf("eval declaration error: %v", err)
	}
	if _, err := p.FindSymbol("repl_fn_2_0"); err != nil {
		t.Errorf("declaration did not register its symbol: %v", err)
	}
}

func TestReloadReplacesSymbol(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	if err := p.LoadModule(testModule("user.f", constantFn("f", 1))); err != nil {
		t.Fatalf("load error: %v", err)
	}
	if err := p.LoadModule(testModule("user.f", constantFn("f", 2))); err != nil {
		t.Fatalf("reload error: %v", err)
	}
	fn, err := p.FindSymbol("f_0")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	res, _ := fn.Invoke(nil)
	if res.(*object.Integer).Value != 2 {
		t.Errorf("reload kept the old entry, got %s", res.Inspect())
	}
}

func TestParseAndExecuteBareSymbol(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	fn := constantFn("g", 5)
	if err := p.LoadModule(testModule("user.g", fn)); err != nil {
		t.Fatalf("load error: %v", err)
	}
	res, err := p.ParseAndExecute("g_0")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if got, ok := res.(*object.Fn); !ok || got != fn {
		t.Errorf("bare symbol should yield the function object, got %s", res.Inspect())
	}
}

func TestParseAndExecuteInvocation(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	if err := p.LoadModule(testModule("user.add", sumFn("add"))); err != nil {
		t.Fatalf("load error: %v", err)
	}
	res, err := p.ParseAndExecute("(add_0 2 40)")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if res.(*object.Integer).Value != 42 {
		t.Errorf("got %s, want 42", res.Inspect())
	}
}

func TestParseAndExecuteMalformed(t *testing.T) {
	p := NewProcessor(runtime.NewContext(), nil)
	if err := p.LoadModule(testModule("user.add", sumFn("add"))); err != nil {
		t.Fatalf("load error: %v", err)
	}
	for _, src := range []string{
		"",
		"   ",
		"add_0 extra",
		"(add_0 2",
		"()",
		"(add_0 :kw)",
		"(missing_0 1)",
	} {
		if _, err := p.ParseAndExecute(src); err == nil {
			t.Errorf("%q: expected an error", src)
		}
	}
}
