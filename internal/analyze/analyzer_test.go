package analyze

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"opal/internal/object"
	"opal/internal/reader"
	"opal/internal/runtime"
)

func analyzeOne(t *testing.T, src string) (Expr, *Processor) {
	t.Helper()
	ctx := runtime.NewContext()
	ctx.InternNs(runtime.CoreNs).Intern("+")
	forms, err := reader.New(src, ctx).ReadAll()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	p := NewProcessor(ctx)
	expr, err := p.Analyze(forms[0], p.RootFrame, Value)
	if err != nil {
		t.Fatalf("analyze error for %q: %v", src, err)
	}
	return expr, p
}

func TestAnalyzeLiteralLiftsConstant(t *testing.T) {
	expr, p := analyzeOne(t, "42")
	lit, ok := expr.(*PrimitiveLiteral)
	if !ok {
		t.Fatalf("expected a literal, got %s", expr.Kind())
	}
	if lit.Value.(*object.Integer).Value != 42 {
		t.Errorf("literal value = %s", lit.Value.Inspect())
	}
	if len(p.RootFrame.LiftedConstants) != 1 {
		t.Errorf("expected 1 lifted constant, got %d", len(p.RootFrame.LiftedConstants))
	}
}

func TestAnalyzeUnresolvedSymbol(t *testing.T) {
	ctx := runtime.NewContext()
	forms, _ := reader.New("nowhere", ctx).ReadAll()
	p := NewProcessor(ctx)
	if _, err := p.Analyze(forms[0], p.RootFrame, Value); err == nil {
		t.Errorf("expected a resolution error")
	}
}

func TestAnalyzeCallShape(t *testing.T) {
	expr, _ := analyzeOne(t, "(+ 1 2)")
	call, ok := expr.(*Call)
	if !ok {
		t.Fatalf("expected a call, got %s", expr.Kind())
	}
	if call.Source.Kind() != KindVarDeref {
		t.Errorf("call source is %s, want var-deref", call.Source.Kind())
	}
	if len(call.Args) != 2 {
		t.Errorf("call has %d args, want 2", len(call.Args))
	}
	if call.Form == nil {
		t.Errorf("original form was not retained")
	}
}

func TestAnalyzeDefInternsEagerly(t *testing.T) {
	_, p := analyzeOne(t, "(def x 1)")
	if p.Ctx.FindVar(runtime.CoreNs+"/x") == nil {
		t.Errorf("def did not intern the var during analysis")
	}
}

func TestAnalyzeFnArities(t *testing.T) {
	expr, _ := analyzeOne(t, "(fn* f ([a] a) ([a & more] more))")
	fn, ok := expr.(*Function)
	if !ok {
		t.Fatalf("expected a function, got %s", expr.Kind())
	}
	if fn.Name != "f" {
		t.Errorf("fn name = %q, want f", fn.Name)
	}
	if len(fn.Arities) != 2 {
		t.Fatalf("fn has %d arities, want 2", len(fn.Arities))
	}
	if fn.Arities[0].Variadic {
		t.Errorf("first arity should be fixed")
	}
	second := fn.Arities[1]
	if !second.Variadic {
		t.Fatalf("second arity should be variadic")
	}
	got := []string{}
	for _, p := range second.Params {
		got = append(got, p.Name)
	}
	if diff := cmp.Diff([]string{"a", "more"}, got); diff != "" {
		t.Errorf("variadic params mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeLetBindingsAreSequential(t *testing.T) {
	expr, _ := analyzeOne(t, "(let* [a 1 b a] b)")
	let, ok := expr.(*Let)
	if !ok {
		t.Fatalf("expected a let, got %s", expr.Kind())
	}
	if len(let.Bindings) != 2 {
		t.Fatalf("let has %d bindings, want 2", len(let.Bindings))
	}
	// b's value must resolve to the local a, not a var.
	if let.Bindings[1].Value.Kind() != KindLocalReference {
		t.Errorf("second binding value is %s, want local-reference", let.Bindings[1].Value.Kind())
	}
}

func TestAnalyzeInnerFnRegistersCapture(t *testing.T) {
	expr, _ := analyzeOne(t, "(let* [x 1] (fn* [] x))")
	let := expr.(*Let)
	fn := let.Body.Values[0].(*Function)
	if _, ok := fn.Arities[0].Frame.Captures["x"]; !ok {
		t.Errorf("inner fn did not capture x")
	}
}

func TestAnalyzeCaseClauses(t *testing.T) {
	expr, _ := analyzeOne(t, `(case* 2 1 "one" 2 "two" "other")`)
	c, ok := expr.(*Case)
	if !ok {
		t.Fatalf("expected a case, got %s", expr.Kind())
	}
	if len(c.Clauses) != 2 {
		t.Errorf("case has %d clauses, want 2", len(c.Clauses))
	}
	if c.Default == nil {
		t.Errorf("case default clause missing")
	}
	if c.Clauses[0].Test.(*object.Integer).Value != 1 {
		t.Errorf("first clause test = %s", c.Clauses[0].Test.Inspect())
	}
}

func TestAnalyzeTryClauses(t *testing.T) {
	expr, _ := analyzeOne(t, "(try 1 (catch e e) (finally 2))")
	tr, ok := expr.(*Try)
	if !ok {
		t.Fatalf("expected a try, got %s", expr.Kind())
	}
	if tr.CatchSym == nil || tr.CatchSym.Name != "e" {
		t.Errorf("catch binding not analyzed")
	}
	if tr.Finally == nil {
		t.Fatalf("finally body missing")
	}
	if tr.Finally.Position() != Statement {
		t.Errorf("finally body position = %s, want statement", tr.Finally.Position())
	}
	if tr.CatchBody.Values[0].Kind() != KindLocalReference {
		t.Errorf("catch body did not resolve e as a local")
	}
}

func TestAnalyzeQuoteProducesLiteral(t *testing.T) {
	expr, _ := analyzeOne(t, "'(a b)")
	lit, ok := expr.(*PrimitiveLiteral)
	if !ok {
		t.Fatalf("expected a literal, got %s", expr.Kind())
	}
	if _, ok := lit.Value.(*object.PersistentList); !ok {
		t.Errorf("quoted list evaluated instead of quoted")
	}
}

func TestAnalyzeNamedFnSelfReference(t *testing.T) {
	expr, _ := analyzeOne(t, "(fn* f [n] (f n))")
	fn := expr.(*Function)
	body := fn.Arities[0].Body.Values[0]
	if body.Kind() != KindNamedRecursion {
		t.Errorf("self call analyzed as %s, want named-recursion", body.Kind())
	}
}
