// Package evaluate drives interactive evaluation: it dispatches analyzed
// expressions either to direct tree evaluation or, for forms only the
// backend can run, to wrap-compile-invoke through the jit session.
package evaluate

import (
	"fmt"
	"log/slog"
	"strings"

	"opal/internal/analyze"
	"opal/internal/codegen"
	"opal/internal/jit"
	"opal/internal/object"
	"opal/internal/reader"
	"opal/internal/runtime"
)

type Processor struct {
	Ctx      *runtime.Context
	Analyzer *analyze.Processor
	Jit      *jit.Processor
	Target   codegen.Target
}

func NewProcessor(ctx *runtime.Context, an *analyze.Processor, session *jit.Processor, target codegen.Target) *Processor {
	return &Processor{Ctx: ctx, Analyzer: an, Jit: session, Target: target}
}

// EvalString reads, analyzes and evaluates source text. Multiple top-level
// forms are wrapped into one synthetic fn and run as a unit.
func (p *Processor) EvalString(src string) (object.Object, error) {
	forms, err := reader.New(src, p.Ctx).ReadAll()
	if err != nil {
		return nil, err
	}
	exprs, err := p.Analyzer.AnalyzeAll(forms)
	if err != nil {
		return nil, err
	}
	fnExpr := analyze.WrapExpressions(p.Ctx, exprs, p.Analyzer.RootFrame, "repl_fn")
	fn, err := p.evalFunction(fnExpr)
	if err != nil {
		return nil, err
	}
	return object.DynamicCall(fn, nil)
}

// EvalForm analyzes and evaluates one already-read form.
func (p *Processor) EvalForm(form object.Object) (object.Object, error) {
	expr, err := p.Analyzer.Analyze(form, p.Analyzer.RootFrame, analyze.Value)
	if err != nil {
		return nil, err
	}
	return p.Eval(expr)
}

// Eval evaluates a single analyzed expression. Node kinds with a cheap direct
// interpretation are handled here; everything else is wrapped into a
// synthetic fn, compiled, and invoked.
func (p *Processor) Eval(expr analyze.Expr) (object.Object, error) {
	switch t := expr.(type) {
	case *analyze.PrimitiveLiteral:
		if kw, ok := t.Value.(*object.Keyword); ok {
			return p.Ctx.InternKeyword(kw.Ns, kw.Name), nil
		}
		return t.Value, nil

	case *analyze.Def:
		return p.evalDef(t)

	case *analyze.VarDeref:
		v := p.Ctx.FindVar(t.QualifiedName)
		if v == nil {
			return nil, fmt.Errorf("unable to resolve var: %s", t.QualifiedName)
		}
		return object.Deref(v), nil

	case *analyze.VarRef:
		v := p.Ctx.FindVar(t.QualifiedName)
		if v == nil {
			return nil, fmt.Errorf("unable to resolve var: %s", t.QualifiedName)
		}
		return v, nil

	case *analyze.Call:
		return p.evalCall(t)

	case *analyze.If:
		c, err := p.Eval(t.Condition)
		if err != nil {
			return nil, err
		}
		if object.Truthy(c) {
			return p.Eval(t.Then)
		}
		if t.Else != nil {
			return p.Eval(t.Else)
		}
		return object.NIL, nil

	case *analyze.Do:
		result := object.Object(object.NIL)
		for _, v := range t.Values {
			var err error
			result, err = p.Eval(v)
			if err != nil {
				return nil, err
			}
		}
		return result, nil

	case *analyze.Throw:
		v, err := p.Eval(t.Value)
		if err != nil {
			return nil, err
		}
		return nil, object.Throw(v)

	case *analyze.Try:
		return p.evalTry(t)

	case *analyze.Function:
		return p.evalFunction(t)

	case *analyze.List:
		elements, err := p.evalSeq(t.Elements)
		if err != nil {
			return nil, err
		}
		return &object.PersistentList{Meta: t.Meta, Elements: elements}, nil

	case *analyze.Vector:
		elements, err := p.evalSeq(t.Elements)
		if err != nil {
			return nil, err
		}
		return &object.PersistentVector{Meta: t.Meta, Elements: elements}, nil

	case *analyze.Set:
		elements, err := p.evalSeq(t.Elements)
		if err != nil {
			return nil, err
		}
		elems := map[object.MapKey]object.Object{}
		for _, v := range elements {
			h, ok := v.(object.Hashable)
			if !ok {
				return nil, fmt.Errorf("set element is not hashable: %s", v.Inspect())
			}
			elems[h.MapKey()] = v
		}
		return &object.PersistentHashSet{Meta: t.Meta, Elems: elems}, nil

	case *analyze.Map:
		return p.evalMap(t)

	case *analyze.LocalReference, *analyze.Recur, *analyze.RecursionReference, *analyze.NamedRecursion:
		// These only make sense inside a function body; evaluating one
		// directly means the caller handed us a fragment.
		return nil, object.NewEvalError(object.ErrUnsupportedEval,
			"unsupported direct evaluation of %s expression", expr.Kind())
	}

	// let, letfn, case and the native interop forms need real compilation.
	return p.wrapAndInvoke(expr)
}

func (p *Processor) evalSeq(exprs []analyze.Expr) ([]object.Object, error) {
	vals := make([]object.Object, 0, len(exprs))
	for _, e := range exprs {
		v, err := p.Eval(e)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (p *Processor) evalDef(t *analyze.Def) (object.Object, error) {
	var value object.Object
	if t.Value != nil {
		var err error
		value, err = p.Eval(t.Value)
		if err != nil {
			return nil, err
		}
	}
	return p.Ctx.DefineVar(t.Name, value, t.Value != nil)
}

// evalCall evaluates the callee and every argument left to right, then
// dispatches through the shared calling convention. Failures are tagged with
// the original form so the user sees what call blew up.
func (p *Processor) evalCall(t *analyze.Call) (object.Object, error) {
	callee, err := p.Eval(t.Source)
	if err != nil {
		return nil, err
	}
	args, err := p.evalSeq(t.Args)
	if err != nil {
		return nil, err
	}
	res, err := object.Apply(callee, args)
	if err != nil {
		return nil, object.WithSource(err, t.Form)
	}
	return res, nil
}

func (p *Processor) evalTry(t *analyze.Try) (object.Object, error) {
	res, err := p.Eval(t.Body)
	if err != nil && t.CatchBody != nil {
		if u, ok := object.AsUnwind(err); ok {
			// The catch body becomes a one-parameter fn invoked with the
			// thrown value.
			handler := analyze.WrapExpression(p.Ctx, t.CatchBody, "catch_fn", []*object.Symbol{t.CatchSym})
			fn, ferr := p.evalFunction(handler)
			if ferr != nil {
				return nil, ferr
			}
			res, err = object.DynamicCall(fn, []object.Object{u.Value})
		}
	}
	// One finally execution on every exit path, value discarded.
	if t.Finally != nil {
		if _, ferr := p.Eval(t.Finally); ferr != nil && err == nil {
			err = ferr
		}
	}
	return res, err
}

func (p *Processor) evalMap(t *analyze.Map) (object.Object, error) {
	keys, err := p.evalSeq(t.Keys)
	if err != nil {
		return nil, err
	}
	vals, err := p.evalSeq(t.Vals)
	if err != nil {
		return nil, err
	}
	if len(keys) <= object.ArrayMapMaxSize {
		pairs := make([]object.Object, 0, len(keys)*2)
		for i := range keys {
			pairs = append(pairs, keys[i], vals[i])
		}
		return &object.PersistentArrayMap{Meta: t.Meta, Pairs: pairs}, nil
	}
	m := &object.PersistentHashMap{Meta: t.Meta}
	for i := range keys {
		h, ok := keys[i].(object.Hashable)
		if !ok {
			return nil, fmt.Errorf("map key is not hashable: %s", keys[i].Inspect())
		}
		m.Put(h, vals[i])
	}
	return m, nil
}

// wrapAndInvoke rewrites an expression into a zero-parameter fn, compiles it
// through the backend, and calls it.
func (p *Processor) wrapAndInvoke(expr analyze.Expr) (object.Object, error) {
	fnExpr := analyze.WrapExpression(p.Ctx, expr, "repl_fn", nil)
	fn, err := p.evalFunction(fnExpr)
	if err != nil {
		return nil, err
	}
	return object.DynamicCall(fn, nil)
}

// evalFunction runs a function expression through codegen and the jit
// session, following the configured compilation target.
func (p *Processor) evalFunction(fnExpr *analyze.Function) (*object.Fn, error) {
	_, local, found := strings.Cut(fnExpr.UniqueName, "/")
	if !found {
		local = fnExpr.UniqueName
	}
	moduleName := runtime.NestModule(p.Ctx.CurrentNs().Name, runtime.Munge(local))

	proc := codegen.NewProcessor(p.Ctx, fnExpr, moduleName, p.Target)
	mod, err := proc.Gen()
	if err != nil {
		return nil, object.NewEvalError(object.ErrCodegenFailure, "failed to compile %s: %v", moduleName, err)
	}

	switch p.Target {
	case codegen.TargetSource:
		slog.Debug("evaluating declaration",
			slog.String("module", mod.Name),
			slog.Int("size", len(mod.Decl)))
		if err := p.Jit.EvalDeclaration(mod); err != nil {
			return nil, object.NewEvalError(object.ErrCodegenFailure, "failed to load %s: %v", moduleName, err)
		}
		res, err := p.Jit.ParseAndExecute(mod.ExprSrc)
		if err != nil {
			return nil, object.NewEvalError(object.ErrCodegenFailure, "failed to resolve %s: %v", mod.ExprSrc, err)
		}
		fn, ok := res.(*object.Fn)
		if !ok {
			return nil, object.NewEvalError(object.ErrCodegenFailure, "%s did not produce a fn", mod.ExprSrc)
		}
		return fn, nil

	default:
		if err := p.Jit.LoadModule(mod); err != nil {
			return nil, object.NewEvalError(object.ErrCodegenFailure, "failed to load %s: %v", moduleName, err)
		}
		fn, err := p.Jit.FindSymbol(mod.Symbol)
		if err != nil {
			return nil, object.NewEvalError(object.ErrCodegenFailure, "failed to resolve %s: %v", mod.Symbol, err)
		}
		return fn, nil
	}
}
