package analyze

import (
	"opal/internal/object"
	"opal/internal/runtime"
)

// WrapExpression rewrites an arbitrary expression into a synthetic fn of the
// given parameters, so the backend only ever compiles functions. The original
// expression keeps its frame, which is re-parented under the wrapper's fn
// frame; the wrapper inherits the lifted tables of the nearest enclosing fn
// frame so lifted constants and vars stay reachable.
func WrapExpression(ctx *runtime.Context, expr Expr, name string, params []*object.Symbol) *Function {
	uniqueName := ctx.UniqueNamespacedString(name)
	origFrame := expr.Frame()

	// The lifted tables to inherit come from the frame tree as it stood
	// before the wrapper is spliced in.
	closest := origFrame.FindClosestFnFrame()

	fnFrame := NewFrame(FrameFn, origFrame.Parent)
	origFrame.Parent = fnFrame

	if closest != fnFrame {
		for qualified, v := range closest.LiftedVars {
			fnFrame.LiftVar(qualified, v)
		}
		fnFrame.LiftedConstants = append(fnFrame.LiftedConstants, closest.LiftedConstants...)
	}

	// Params whose binding already exists inside the wrapped expression's
	// frame chain keep that binding, so references resolve to the same slot.
	for _, param := range params {
		if found, ok := origFrame.FindLocalOrCapture(param.Name); ok {
			fnFrame.Locals[param.Name] = found.Binding
		} else {
			fnFrame.AddLocal(param)
		}
	}

	body := expr
	if st := StaticTypeOf(expr); st != ObjectType {
		// Non-object results must be boxed before crossing the call
		// boundary; whether the raw native value may pass instead is decided
		// at invocation time.
		body = &NativeCast{
			base:     base{kind: KindNativeCast, pos: expr.Position(), frame: origFrame},
			Policy:   PolicyNativePrint,
			FromType: st,
			Value:    expr,
		}
	}

	bodyDo := &Do{base: base{kind: KindDo, frame: fnFrame}, Values: []Expr{body}}
	fnCtx := &FunctionContext{Name: name, UniqueName: uniqueName, ParamCount: len(params)}
	fnFrame.FnCtx = fnCtx
	arity := &FunctionArity{Params: params, Body: bodyDo, Frame: fnFrame, FnCtx: fnCtx}

	fn := &Function{
		base:       base{kind: KindFunction, pos: Value, frame: fnFrame.Parent},
		Name:       name,
		UniqueName: uniqueName,
		Arities:    []*FunctionArity{arity},
	}
	fnCtx.Fn = fn

	bodyDo.PropagatePosition(Tail)
	collectCaptures(arity)
	return fn
}

// WrapExpressions wraps a whole sequence of top-level expressions into one
// zero-parameter fn whose body runs them in order. An empty sequence becomes
// a fn returning nil.
func WrapExpressions(ctx *runtime.Context, exprs []Expr, rootFrame *Frame, name string) *Function {
	if len(exprs) == 0 {
		rootFrame.FindClosestFnFrame().LiftConstant(object.NIL)
		lit := &PrimitiveLiteral{
			base:  base{kind: KindPrimitiveLiteral, pos: Tail, frame: rootFrame},
			Value: object.NIL,
		}
		return WrapExpression(ctx, lit, name, nil)
	}

	fn := WrapExpression(ctx, exprs[0], name, nil)
	arity := fn.Arities[0]
	for _, e := range exprs[1:] {
		// Later expressions usually share the first one's frame, which is
		// already re-parented; stragglers with their own frame get the same
		// treatment.
		if f := e.Frame(); f != exprs[0].Frame() && !under(f, arity.Frame) {
			f.Parent = arity.Frame
		}
		arity.Body.Values = append(arity.Body.Values, e)
	}
	arity.Body.PropagatePosition(Tail)
	collectCaptures(arity)
	return fn
}

func under(f, ancestor *Frame) bool {
	for cur := f; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// collectCaptures records every local referenced from inside the arity whose
// resolution crosses the arity's fn boundary. The capture table is the
// closure layout the backend allocates.
func collectCaptures(arity *FunctionArity) {
	WalkArity(arity, func(e Expr) {
		lr, ok := e.(*LocalReference)
		if !ok {
			return
		}
		found, ok := lr.Frame().FindLocalOrCapture(lr.Name.Name)
		if !ok {
			return
		}
		if found.CrossedFns > 0 && under(lr.Frame(), arity.Frame) {
			arity.Frame.Captures[lr.Name.Name] = found.Binding
		}
	})
}
