package codegen

import (
	"strings"
	"testing"

	"opal/internal/analyze"
	"opal/internal/object"
	"opal/internal/reader"
	"opal/internal/runtime"
)

func wrapSource(t *testing.T, ctx *runtime.Context, src string) *analyze.Function {
	t.Helper()
	forms, err := reader.New(src, ctx).ReadAll()
	if err != nil {
		t.Fatalf("read error for %q: %v", src, err)
	}
	an := analyze.NewProcessor(ctx)
	exprs, err := an.AnalyzeAll(forms)
	if err != nil {
		t.Fatalf("analyze error for %q: %v", src, err)
	}
	return analyze.WrapExpressions(ctx, exprs, an.RootFrame, "repl_fn")
}

func TestGenProducesInvocableEntry(t *testing.T) {
	ctx := runtime.NewContext()
	fn := wrapSource(t, ctx, "(if true 1 2)")
	m, err := NewProcessor(ctx, fn, "user.repl", TargetNative).Gen()
	if err != nil {
		t.Fatalf("gen error: %v", err)
	}
	if m.Entry == nil {
		t.Fatalf("module has no entry")
	}
	if !strings.HasSuffix(m.Symbol, "_0") {
		t.Errorf("entry symbol %q lacks the arity suffix", m.Symbol)
	}
	res, err := object.DynamicCall(m.Entry, nil)
	if err != nil {
		t.Fatalf("invoke error: %v", err)
	}
	if res.(*object.Integer).Value != 1 {
		t.Errorf("got %s, want 1", res.Inspect())
	}
}

func TestDeclarationIsDeterministic(t *testing.T) {
	ctx := runtime.NewContext()
	fn := wrapSource(t, ctx, "(let* [x 1 y 2] (if x y 0))")
	p := NewProcessor(ctx, fn, "user.repl", TargetSource)
	first := p.DeclarationStr()
	for i := 0; i < 5; i++ {
		if got := p.DeclarationStr(); got != first {
			t.Fatalf("render %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestDeclarationNamesModuleAndSymbol(t *testing.T) {
	ctx := runtime.NewContext()
	fn := wrapSource(t, ctx, "42")
	p := NewProcessor(ctx, fn, "user.repl", TargetSource)
	decl := p.DeclarationStr()
	if !strings.Contains(decl, "user.repl") {
		t.Errorf("declaration does not name the module:\n%s", decl)
	}
	if !strings.Contains(decl, p.ExpressionStr()) {
		t.Errorf("declaration does not contain the entry symbol %q:\n%s",
			p.ExpressionStr(), decl)
	}
}

func TestExpressionStrIsBareSymbol(t *testing.T) {
	ctx := runtime.NewContext()
	fn := wrapSource(t, ctx, "42")
	p := NewProcessor(ctx, fn, "user.repl", TargetSource)
	expr := p.ExpressionStr()
	if strings.ContainsAny(expr, " ()") {
		t.Errorf("expression %q should be a bare symbol", expr)
	}
}

func TestDistinctWrappersRenderDistinctSymbols(t *testing.T) {
	ctx := runtime.NewContext()
	a := wrapSource(t, ctx, "1")
	b := wrapSource(t, ctx, "1")
	pa := NewProcessor(ctx, a, "user.a", TargetSource)
	pb := NewProcessor(ctx, b, "user.b", TargetSource)
	if pa.ExpressionStr() == pb.ExpressionStr() {
		t.Errorf("two wrapper functions share the symbol %q", pa.ExpressionStr())
	}
}

func TestTargetString(t *testing.T) {
	if TargetNative.String() != "native" || TargetSource.String() != "source" {
		t.Errorf("target names: native=%q source=%q",
			TargetNative.String(), TargetSource.String())
	}
}
