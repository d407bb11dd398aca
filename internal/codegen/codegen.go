// Package codegen lowers analyzed functions into runnable modules. A module
// carries two faces of the same compilation: the closure-compiled entry
// function invoked directly, and the rendered declaration plus invocation
// expression handed to the jit session for the source-driven path.
package codegen

import (
	"fmt"
	"io"

	"opal/internal/analyze"
	"opal/internal/object"
	"opal/internal/runtime"
)

type Target int

const (
	TargetNative Target = iota
	TargetSource
)

func (t Target) String() string {
	switch t {
	case TargetNative:
		return "native"
	case TargetSource:
		return "source"
	}
	return "unknown"
}

// Module is the unit of compilation the jit session loads.
type Module struct {
	Name    string
	Symbol  string // munged entry symbol, arity suffix included
	Decl    string
	ExprSrc string
	Entry   *object.Fn
}

type Processor struct {
	ctx        *runtime.Context
	fn         *analyze.Function
	moduleName string
	target     Target
}

func NewProcessor(ctx *runtime.Context, fn *analyze.Function, moduleName string, target Target) *Processor {
	return &Processor{ctx: ctx, fn: fn, moduleName: moduleName, target: target}
}

// Gen compiles the function and renders its declaration.
func (p *Processor) Gen() (*Module, error) {
	entryThunk, err := p.compileFunction(p.fn)
	if err != nil {
		return nil, err
	}
	entry, err := entryThunk(nil)
	if err != nil {
		return nil, err
	}
	fnObj, ok := entry.(*object.Fn)
	if !ok {
		return nil, fmt.Errorf("compiled entry is not a fn: %s", entry.Type())
	}

	symbol := runtime.Munge(p.fn.UniqueName) + "_0"
	return &Module{
		Name:    p.moduleName,
		Symbol:  symbol,
		Decl:    p.DeclarationStr(),
		ExprSrc: p.ExpressionStr(),
		Entry:   fnObj,
	}, nil
}

// DeclarationStr renders the module declaration the jit session registers.
func (p *Processor) DeclarationStr() string {
	return renderModule(p.moduleName, p.fn)
}

// ExpressionStr renders the expression that resolves the entry symbol to its
// function object in the jit session.
func (p *Processor) ExpressionStr() string {
	return runtime.Munge(p.fn.UniqueName) + "_0"
}

// thunk is a compiled expression, evaluated against a lexical environment.
type thunk func(e *env) (object.Object, error)

type env struct {
	parent  *env
	vals    map[*analyze.LocalBinding]object.Object
	selfCtx *analyze.FunctionContext
	self    *object.Fn
}

func newEnv(parent *env) *env {
	return &env{parent: parent, vals: map[*analyze.LocalBinding]object.Object{}}
}

func (e *env) bind(b *analyze.LocalBinding, val object.Object) {
	e.vals[b] = val
}

func (e *env) lookup(b *analyze.LocalBinding) (object.Object, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vals[b]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) lookupSelf(ctx *analyze.FunctionContext) (*object.Fn, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.selfCtx == ctx {
			return cur.self, true
		}
	}
	return nil, false
}

// recurSignal carries rebinding arguments to the nearest recursion point.
type recurSignal struct {
	args []object.Object
}

func (r *recurSignal) Error() string { return "recur used outside a recursion point" }

func (p *Processor) compile(e analyze.Expr) (thunk, error) {
	switch t := e.(type) {
	case *analyze.PrimitiveLiteral:
		value := t.Value
		if kw, ok := value.(*object.Keyword); ok {
			// Literals must resolve to the interned instance.
			value = p.ctx.InternKeyword(kw.Ns, kw.Name)
		}
		return func(*env) (object.Object, error) { return value, nil }, nil

	case *analyze.Def:
		return p.compileDef(t)

	case *analyze.VarDeref:
		v := p.ctx.FindVar(t.QualifiedName)
		if v == nil {
			return nil, fmt.Errorf("unable to resolve var: %s", t.QualifiedName)
		}
		return func(*env) (object.Object, error) { return object.Deref(v), nil }, nil

	case *analyze.VarRef:
		v := p.ctx.FindVar(t.QualifiedName)
		if v == nil {
			return nil, fmt.Errorf("unable to resolve var: %s", t.QualifiedName)
		}
		return func(*env) (object.Object, error) { return v, nil }, nil

	case *analyze.Call:
		return p.compileCall(t)

	case *analyze.If:
		return p.compileIf(t)

	case *analyze.Do:
		return p.compileDo(t)

	case *analyze.Let:
		return p.compileLet(t)

	case *analyze.Letfn:
		return p.compileLetfn(t)

	case *analyze.Case:
		return p.compileCase(t)

	case *analyze.LocalReference:
		binding := t.Binding
		name := t.Name.Qualified()
		return func(e *env) (object.Object, error) {
			if v, ok := e.lookup(binding); ok {
				return v, nil
			}
			return nil, fmt.Errorf("unbound local: %s", name)
		}, nil

	case *analyze.Recur:
		args, err := p.compileSeq(t.Args)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			vals, err := evalSeq(args, e)
			if err != nil {
				return nil, err
			}
			return nil, &recurSignal{args: vals}
		}, nil

	case *analyze.RecursionReference:
		ctx := t.FnCtx
		return func(e *env) (object.Object, error) {
			if fn, ok := e.lookupSelf(ctx); ok {
				return fn, nil
			}
			return nil, fmt.Errorf("recursion reference outside fn: %s", ctx.Name)
		}, nil

	case *analyze.NamedRecursion:
		ctx := t.FnCtx
		args, err := p.compileSeq(t.Args)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			fn, ok := e.lookupSelf(ctx)
			if !ok {
				return nil, fmt.Errorf("recursion reference outside fn: %s", ctx.Name)
			}
			vals, err := evalSeq(args, e)
			if err != nil {
				return nil, err
			}
			return object.DynamicCall(fn, vals)
		}, nil

	case *analyze.Throw:
		value, err := p.compile(t.Value)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			v, err := value(e)
			if err != nil {
				return nil, err
			}
			return nil, object.Throw(v)
		}, nil

	case *analyze.Try:
		return p.compileTry(t)

	case *analyze.Function:
		return p.compileFunction(t)

	case *analyze.List:
		elements, err := p.compileSeq(t.Elements)
		if err != nil {
			return nil, err
		}
		meta := t.Meta
		return func(e *env) (object.Object, error) {
			vals, err := evalSeq(elements, e)
			if err != nil {
				return nil, err
			}
			return &object.PersistentList{Meta: meta, Elements: vals}, nil
		}, nil

	case *analyze.Vector:
		elements, err := p.compileSeq(t.Elements)
		if err != nil {
			return nil, err
		}
		meta := t.Meta
		return func(e *env) (object.Object, error) {
			vals, err := evalSeq(elements, e)
			if err != nil {
				return nil, err
			}
			return &object.PersistentVector{Meta: meta, Elements: vals}, nil
		}, nil

	case *analyze.Set:
		elements, err := p.compileSeq(t.Elements)
		if err != nil {
			return nil, err
		}
		meta := t.Meta
		return func(e *env) (object.Object, error) {
			vals, err := evalSeq(elements, e)
			if err != nil {
				return nil, err
			}
			elems := map[object.MapKey]object.Object{}
			for _, v := range vals {
				h, ok := v.(object.Hashable)
				if !ok {
					return nil, fmt.Errorf("set element is not hashable: %s", v.Inspect())
				}
				elems[h.MapKey()] = v
			}
			return &object.PersistentHashSet{Meta: meta, Elems: elems}, nil
		}, nil

	case *analyze.Map:
		return p.compileMap(t)
	}

	return p.compileNative(e)
}

func (p *Processor) compileDef(t *analyze.Def) (thunk, error) {
	sym := t.Name
	var value thunk
	if t.Value != nil {
		var err error
		value, err = p.compile(t.Value)
		if err != nil {
			return nil, err
		}
	}
	ctx := p.ctx
	return func(e *env) (object.Object, error) {
		var val object.Object
		if value != nil {
			var err error
			val, err = value(e)
			if err != nil {
				return nil, err
			}
		}
		return ctx.DefineVar(sym, val, value != nil)
	}, nil
}

func (p *Processor) compileCall(t *analyze.Call) (thunk, error) {
	source, err := p.compile(t.Source)
	if err != nil {
		return nil, err
	}
	args, err := p.compileSeq(t.Args)
	if err != nil {
		return nil, err
	}
	form := t.Form
	return func(e *env) (object.Object, error) {
		callee, err := source(e)
		if err != nil {
			return nil, err
		}
		vals, err := evalSeq(args, e)
		if err != nil {
			return nil, err
		}
		res, err := object.Apply(callee, vals)
		if err != nil {
			return nil, object.WithSource(err, form)
		}
		return res, nil
	}, nil
}

func (p *Processor) compileIf(t *analyze.If) (thunk, error) {
	condition, err := p.compile(t.Condition)
	if err != nil {
		return nil, err
	}
	then, err := p.compile(t.Then)
	if err != nil {
		return nil, err
	}
	var els thunk
	if t.Else != nil {
		els, err = p.compile(t.Else)
		if err != nil {
			return nil, err
		}
	}
	return func(e *env) (object.Object, error) {
		c, err := condition(e)
		if err != nil {
			return nil, err
		}
		if object.Truthy(c) {
			return then(e)
		}
		if els != nil {
			return els(e)
		}
		return object.NIL, nil
	}, nil
}

func (p *Processor) compileDo(t *analyze.Do) (thunk, error) {
	values, err := p.compileSeq(t.Values)
	if err != nil {
		return nil, err
	}
	return func(e *env) (object.Object, error) {
		result := object.Object(object.NIL)
		for _, v := range values {
			var err error
			result, err = v(e)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	}, nil
}

func (p *Processor) compileLet(t *analyze.Let) (thunk, error) {
	type slot struct {
		binding *analyze.LocalBinding
		value   thunk
	}
	slots := make([]slot, 0, len(t.Bindings))
	for _, b := range t.Bindings {
		value, err := p.compile(b.Value)
		if err != nil {
			return nil, err
		}
		binding := t.Frame().Locals[b.Name.Name]
		if binding == nil {
			return nil, fmt.Errorf("missing binding for %s", b.Name.Name)
		}
		slots = append(slots, slot{binding: binding, value: value})
	}
	body, err := p.compile(t.Body)
	if err != nil {
		return nil, err
	}

	loop := t.Loop
	return func(e *env) (object.Object, error) {
		scope := newEnv(e)
		for _, s := range slots {
			v, err := s.value(scope)
			if err != nil {
				return nil, err
			}
			scope.bind(s.binding, v)
		}
		for {
			res, err := body(scope)
			var rs *recurSignal
			if loop && asRecur(err, &rs) {
				if len(rs.args) != len(slots) {
					return nil, fmt.Errorf("recur expects %d args, got %d", len(slots), len(rs.args))
				}
				for i, s := range slots {
					scope.bind(s.binding, rs.args[i])
				}
				continue
			}
			return res, err
		}
	}, nil
}

func asRecur(err error, out **recurSignal) bool {
	if err == nil {
		return false
	}
	rs, ok := err.(*recurSignal)
	if ok {
		*out = rs
	}
	return ok
}

func (p *Processor) compileLetfn(t *analyze.Letfn) (thunk, error) {
	type slot struct {
		binding *analyze.LocalBinding
		fn      thunk
	}
	slots := make([]slot, 0, len(t.Bindings))
	for _, b := range t.Bindings {
		fn, err := p.compileFunction(b.Fn)
		if err != nil {
			return nil, err
		}
		binding := t.Frame().Locals[b.Name.Name]
		if binding == nil {
			return nil, fmt.Errorf("missing binding for %s", b.Name.Name)
		}
		slots = append(slots, slot{binding: binding, fn: fn})
	}
	body, err := p.compile(t.Body)
	if err != nil {
		return nil, err
	}
	return func(e *env) (object.Object, error) {
		scope := newEnv(e)
		// Names are visible to every fn body, so bind placeholders first and
		// swap the real fns in before the body runs.
		for _, s := range slots {
			scope.bind(s.binding, object.NIL)
		}
		for _, s := range slots {
			fn, err := s.fn(scope)
			if err != nil {
				return nil, err
			}
			scope.bind(s.binding, fn)
		}
		return body(scope)
	}, nil
}

func (p *Processor) compileCase(t *analyze.Case) (thunk, error) {
	value, err := p.compile(t.Value)
	if err != nil {
		return nil, err
	}
	type clause struct {
		test object.Object
		body thunk
	}
	clauses := make([]clause, 0, len(t.Clauses))
	for _, c := range t.Clauses {
		body, err := p.compile(c.Body)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause{test: c.Test, body: body})
	}
	var def thunk
	if t.Default != nil {
		def, err = p.compile(t.Default)
		if err != nil {
			return nil, err
		}
	}
	return func(e *env) (object.Object, error) {
		v, err := value(e)
		if err != nil {
			return nil, err
		}
		for _, c := range clauses {
			if object.Equals(v, c.test) {
				return c.body(e)
			}
		}
		if def != nil {
			return def(e)
		}
		return nil, fmt.Errorf("no matching clause: %s", v.Inspect())
	}, nil
}

func (p *Processor) compileTry(t *analyze.Try) (thunk, error) {
	body, err := p.compile(t.Body)
	if err != nil {
		return nil, err
	}

	var catchBody thunk
	var catchBinding *analyze.LocalBinding
	if t.CatchBody != nil {
		catchBody, err = p.compile(t.CatchBody)
		if err != nil {
			return nil, err
		}
		catchBinding = t.CatchBody.Frame().Locals[t.CatchSym.Name]
		if catchBinding == nil {
			return nil, fmt.Errorf("missing catch binding for %s", t.CatchSym.Name)
		}
	}

	var finally thunk
	if t.Finally != nil {
		finally, err = p.compile(t.Finally)
		if err != nil {
			return nil, err
		}
	}

	return func(e *env) (object.Object, error) {
		res, err := body(e)
		if err != nil && catchBody != nil {
			if u, ok := object.AsUnwind(err); ok {
				scope := newEnv(e)
				scope.bind(catchBinding, u.Value)
				res, err = catchBody(scope)
			}
		}
		// The finally body runs exactly once on every exit path. Its value is
		// discarded; a failure inside it surfaces only when nothing else did.
		if finally != nil {
			if _, ferr := finally(e); ferr != nil && err == nil {
				err = ferr
			}
		}
		return res, err
	}, nil
}

func (p *Processor) compileFunction(t *analyze.Function) (thunk, error) {
	type arityCode struct {
		fnCtx      *analyze.FunctionContext
		bindings   []*analyze.LocalBinding
		paramCount int
		variadic   bool
		body       thunk
	}

	codes := make([]arityCode, 0, len(t.Arities))
	for _, arity := range t.Arities {
		body, err := p.compile(arity.Body)
		if err != nil {
			return nil, err
		}
		bindings := make([]*analyze.LocalBinding, 0, len(arity.Params))
		for _, param := range arity.Params {
			b := arity.Frame.Locals[param.Name]
			if b == nil {
				return nil, fmt.Errorf("missing binding for parameter %s", param.Name)
			}
			bindings = append(bindings, b)
		}
		paramCount := len(arity.Params)
		if arity.Variadic {
			paramCount--
		}
		codes = append(codes, arityCode{
			fnCtx:      arity.FnCtx,
			bindings:   bindings,
			paramCount: paramCount,
			variadic:   arity.Variadic,
			body:       body,
		})
	}

	name := t.Name
	uniqueName := runtime.Munge(t.UniqueName)
	meta := t.Meta
	return func(e *env) (object.Object, error) {
		fnObj := &object.Fn{Name: name, UniqueName: uniqueName, Meta: meta}
		for _, ac := range codes {
			ac := ac
			fnObj.Arities = append(fnObj.Arities, &object.FnArity{
				ParamCount: ac.paramCount,
				Variadic:   ac.variadic,
				Body: func(args []object.Object) (object.Object, error) {
					scope := newEnv(e)
					scope.selfCtx = ac.fnCtx
					scope.self = fnObj
					for i, b := range ac.bindings {
						scope.bind(b, args[i])
					}
					for {
						res, err := ac.body(scope)
						var rs *recurSignal
						if asRecur(err, &rs) {
							if len(rs.args) != len(ac.bindings) {
								return nil, fmt.Errorf("recur expects %d args, got %d", len(ac.bindings), len(rs.args))
							}
							for i, b := range ac.bindings {
								scope.bind(b, rs.args[i])
							}
							continue
						}
						return res, err
					}
				},
			})
		}
		return fnObj, nil
	}, nil
}

func (p *Processor) compileMap(t *analyze.Map) (thunk, error) {
	keys, err := p.compileSeq(t.Keys)
	if err != nil {
		return nil, err
	}
	vals, err := p.compileSeq(t.Vals)
	if err != nil {
		return nil, err
	}
	meta := t.Meta
	return func(e *env) (object.Object, error) {
		ks, err := evalSeq(keys, e)
		if err != nil {
			return nil, err
		}
		vs, err := evalSeq(vals, e)
		if err != nil {
			return nil, err
		}
		if len(ks) <= object.ArrayMapMaxSize {
			pairs := make([]object.Object, 0, len(ks)*2)
			for i := range ks {
				pairs = append(pairs, ks[i], vs[i])
			}
			return &object.PersistentArrayMap{Meta: meta, Pairs: pairs}, nil
		}
		m := &object.PersistentHashMap{Meta: meta}
		for i := range ks {
			h, ok := ks[i].(object.Hashable)
			if !ok {
				return nil, fmt.Errorf("map key is not hashable: %s", ks[i].Inspect())
			}
			m.Put(h, vs[i])
		}
		return m, nil
	}, nil
}

func (p *Processor) compileSeq(exprs []analyze.Expr) ([]thunk, error) {
	thunks := make([]thunk, 0, len(exprs))
	for _, e := range exprs {
		t, err := p.compile(e)
		if err != nil {
			return nil, err
		}
		thunks = append(thunks, t)
	}
	return thunks, nil
}

func evalSeq(thunks []thunk, e *env) ([]object.Object, error) {
	vals := make([]object.Object, 0, len(thunks))
	for _, t := range thunks {
		v, err := t(e)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (p *Processor) compileNative(e analyze.Expr) (thunk, error) {
	host := p.ctx.Host
	ctx := p.ctx

	switch t := e.(type) {
	case *analyze.NativeRaw:
		code := t.Code
		return func(*env) (object.Object, error) {
			res, err := host.Raw(code)
			if err != nil {
				return nil, err
			}
			return runtime.IntoObject(res), nil
		}, nil

	case *analyze.NativeValue:
		name := t.Name
		return func(*env) (object.Object, error) {
			v, ok := host.Value(name)
			if !ok {
				return nil, fmt.Errorf("unknown native value: %s", name)
			}
			return &object.NativeValue{Value: v}, nil
		}, nil

	case *analyze.NativeCast:
		value, err := p.compile(t.Value)
		if err != nil {
			return nil, err
		}
		policy := t.Policy
		return func(e *env) (object.Object, error) {
			v, err := value(e)
			if err != nil {
				return nil, err
			}
			nv, ok := v.(*object.NativeValue)
			if !ok {
				// Already object-typed, nothing to convert.
				return v, nil
			}
			switch policy {
			case analyze.PolicyIntoObject:
				return runtime.IntoObject(nv.Value), nil
			case analyze.PolicyNativePrint:
				if ctx.AllowNativeReturn() {
					return nv, nil
				}
				return runtime.StringizeNative(nv.Value), nil
			}
			return nil, fmt.Errorf("unknown conversion policy")
		}, nil

	case *analyze.NativeCall:
		name := t.Name
		args, err := p.compileSeq(t.Args)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			raw, err := evalNativeArgs(args, e)
			if err != nil {
				return nil, err
			}
			res, err := host.Call(name, raw)
			if err != nil {
				return nil, err
			}
			return &object.NativeValue{Value: res}, nil
		}, nil

	case *analyze.NativeConstructorCall:
		typeName := t.TypeName
		args, err := p.compileSeq(t.Args)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			raw, err := evalNativeArgs(args, e)
			if err != nil {
				return nil, err
			}
			// A registered factory function wins over field-wise construction.
			if _, ok := host.Value(typeName); ok {
				res, err := host.Call(typeName, raw)
				if err != nil {
					return nil, err
				}
				return &object.NativeValue{Value: res}, nil
			}
			res, err := host.New(typeName, raw)
			if err != nil {
				return nil, err
			}
			return &object.NativeValue{Value: res}, nil
		}, nil

	case *analyze.NativeMemberCall:
		method := t.Method
		target, err := p.compile(t.Target)
		if err != nil {
			return nil, err
		}
		args, err := p.compileSeq(t.Args)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			tv, err := target(e)
			if err != nil {
				return nil, err
			}
			raw, err := evalNativeArgs(args, e)
			if err != nil {
				return nil, err
			}
			res, err := host.MemberCall(runtime.FromObject(tv), method, raw)
			if err != nil {
				return nil, err
			}
			return &object.NativeValue{Value: res}, nil
		}, nil

	case *analyze.NativeMemberAccess:
		field := t.Field
		target, err := p.compile(t.Target)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			tv, err := target(e)
			if err != nil {
				return nil, err
			}
			res, err := host.MemberAccess(runtime.FromObject(tv), field)
			if err != nil {
				return nil, err
			}
			return &object.NativeValue{Value: res}, nil
		}, nil

	case *analyze.NativeOperatorCall:
		op := t.Op
		args, err := p.compileSeq(t.Args)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			raw, err := evalNativeArgs(args, e)
			if err != nil {
				return nil, err
			}
			res, err := host.Operator(op, raw)
			if err != nil {
				return nil, err
			}
			return &object.NativeValue{Value: res}, nil
		}, nil

	case *analyze.NativeBox:
		value, err := p.compile(t.Value)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			v, err := value(e)
			if err != nil {
				return nil, err
			}
			return &object.NativeValue{Value: runtime.FromObject(v)}, nil
		}, nil

	case *analyze.NativeUnbox:
		typeName := t.TypeName
		value, err := p.compile(t.Value)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			v, err := value(e)
			if err != nil {
				return nil, err
			}
			raw := runtime.FromObject(v)
			if typeName != "" {
				if got := fmt.Sprintf("%T", raw); got != typeName {
					return nil, fmt.Errorf("cannot unbox %s as %s", got, typeName)
				}
			}
			return &object.NativeValue{Value: raw}, nil
		}, nil

	case *analyze.NativeNew:
		typeName := t.TypeName
		args, err := p.compileSeq(t.Args)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			raw, err := evalNativeArgs(args, e)
			if err != nil {
				return nil, err
			}
			res, err := host.New(typeName, raw)
			if err != nil {
				return nil, err
			}
			return &object.NativeValue{Value: res}, nil
		}, nil

	case *analyze.NativeDelete:
		target, err := p.compile(t.Target)
		if err != nil {
			return nil, err
		}
		return func(e *env) (object.Object, error) {
			tv, err := target(e)
			if err != nil {
				return nil, err
			}
			if closer, ok := runtime.FromObject(tv).(io.Closer); ok {
				if err := closer.Close(); err != nil {
					return nil, err
				}
			}
			return object.NIL, nil
		}, nil
	}

	return nil, fmt.Errorf("cannot compile %s expression", e.Kind())
}

func evalNativeArgs(thunks []thunk, e *env) ([]any, error) {
	vals, err := evalSeq(thunks, e)
	if err != nil {
		return nil, err
	}
	raw := make([]any, len(vals))
	for i, v := range vals {
		raw[i] = runtime.FromObject(v)
	}
	return raw, nil
}
