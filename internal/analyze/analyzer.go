package analyze

import (
	"fmt"
	"log/slog"

	"opal/internal/object"
	"opal/internal/runtime"
)

// Processor analyzes read forms into the typed expression tree. It owns the
// root frame whose lifted tables back top-level expressions.
type Processor struct {
	Ctx       *runtime.Context
	RootFrame *Frame
}

func NewProcessor(ctx *runtime.Context) *Processor {
	return &Processor{
		Ctx:       ctx,
		RootFrame: NewFrame(FrameOrdinary, nil),
	}
}

// AnalyzeAll analyzes a sequence of top-level forms.
func (p *Processor) AnalyzeAll(forms []object.Object) ([]Expr, error) {
	exprs := make([]Expr, 0, len(forms))
	for _, form := range forms {
		e, err := p.Analyze(form, p.RootFrame, Value)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (p *Processor) Analyze(form object.Object, frame *Frame, pos Position) (Expr, error) {
	switch f := form.(type) {
	case *object.Nil, *object.Boolean, *object.Integer, *object.Float, *object.String, *object.Keyword:
		return p.literal(form, frame, pos), nil

	case *object.Symbol:
		return p.analyzeSymbol(f, frame, pos)

	case *object.PersistentVector:
		elements, err := p.analyzeSeq(f.Elements, frame)
		if err != nil {
			return nil, err
		}
		return &Vector{base: base{kind: KindVector, pos: pos, frame: frame}, Meta: f.Meta, Elements: elements}, nil

	case *object.PersistentHashSet:
		var members []object.Object
		for _, e := range f.Elems {
			members = append(members, e)
		}
		elements, err := p.analyzeSeq(members, frame)
		if err != nil {
			return nil, err
		}
		return &Set{base: base{kind: KindSet, pos: pos, frame: frame}, Meta: f.Meta, Elements: elements}, nil

	case *object.PersistentArrayMap:
		m := &Map{base: base{kind: KindMap, pos: pos, frame: frame}, Meta: f.Meta}
		for i := 0; i+1 < len(f.Pairs); i += 2 {
			k, err := p.Analyze(f.Pairs[i], frame, Value)
			if err != nil {
				return nil, err
			}
			v, err := p.Analyze(f.Pairs[i+1], frame, Value)
			if err != nil {
				return nil, err
			}
			m.Keys = append(m.Keys, k)
			m.Vals = append(m.Vals, v)
		}
		return m, nil

	case *object.PersistentHashMap:
		m := &Map{base: base{kind: KindMap, pos: pos, frame: frame}, Meta: f.Meta}
		for _, pair := range f.Pairs {
			k, err := p.Analyze(pair.Key, frame, Value)
			if err != nil {
				return nil, err
			}
			v, err := p.Analyze(pair.Value, frame, Value)
			if err != nil {
				return nil, err
			}
			m.Keys = append(m.Keys, k)
			m.Vals = append(m.Vals, v)
		}
		return m, nil

	case *object.PersistentList:
		return p.analyzeList(f, frame, pos)
	}

	return nil, fmt.Errorf("unable to analyze form: %s", form.Inspect())
}

func (p *Processor) literal(value object.Object, frame *Frame, pos Position) Expr {
	frame.FindClosestFnFrame().LiftConstant(value)
	return &PrimitiveLiteral{base: base{kind: KindPrimitiveLiteral, pos: pos, frame: frame}, Value: value}
}

func (p *Processor) analyzeSeq(forms []object.Object, frame *Frame) ([]Expr, error) {
	var exprs []Expr
	for _, form := range forms {
		e, err := p.Analyze(form, frame, Value)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (p *Processor) analyzeSymbol(sym *object.Symbol, frame *Frame, pos Position) (Expr, error) {
	if sym.Ns == "" {
		if found, ok := frame.FindLocalOrCapture(sym.Name); ok {
			if found.CrossedFns > 0 {
				frame.FindClosestFnFrame().Captures[sym.Name] = found.Binding
			}
			return &LocalReference{
				base:    base{kind: KindLocalReference, pos: pos, frame: frame},
				Name:    sym,
				Binding: found.Binding,
			}, nil
		}
		if fnCtx := enclosingFnCtx(frame, sym.Name); fnCtx != nil {
			return &RecursionReference{
				base:  base{kind: KindRecursionReference, pos: pos, frame: frame},
				FnCtx: fnCtx,
			}, nil
		}
	}

	qualified, v, err := p.resolveVar(sym)
	if err != nil {
		return nil, err
	}
	frame.FindClosestFnFrame().LiftVar(qualified, v)
	return &VarDeref{base: base{kind: KindVarDeref, pos: pos, frame: frame}, QualifiedName: qualified}, nil
}

func (p *Processor) resolveVar(sym *object.Symbol) (string, *object.Var, error) {
	if sym.Ns != "" {
		qualified := sym.Qualified()
		if v := p.Ctx.FindVar(qualified); v != nil {
			return qualified, v, nil
		}
		return "", nil, fmt.Errorf("unable to resolve symbol: %s", qualified)
	}
	current := p.Ctx.CurrentNs()
	if v := current.FindVar(sym.Name); v != nil {
		return current.Name + "/" + sym.Name, v, nil
	}
	if v := p.Ctx.FindVar(runtime.CoreNs + "/" + sym.Name); v != nil {
		return runtime.CoreNs + "/" + sym.Name, v, nil
	}
	return "", nil, fmt.Errorf("unable to resolve symbol: %s", sym.Name)
}

func enclosingFnCtx(frame *Frame, name string) *FunctionContext {
	for cur := frame; cur != nil; cur = cur.Parent {
		if cur.FnCtx != nil && cur.FnCtx.Name == name {
			return cur.FnCtx
		}
	}
	return nil
}

func (p *Processor) analyzeList(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	if len(list.Elements) == 0 {
		return p.literal(list, frame, pos), nil
	}

	if head, ok := list.Elements[0].(*object.Symbol); ok && head.Ns == "" {
		switch head.Name {
		case "def":
			return p.analyzeDef(list, frame, pos)
		case "if":
			return p.analyzeIf(list, frame, pos)
		case "do":
			return p.analyzeDo(list.Elements[1:], frame, pos)
		case "let*":
			return p.analyzeLet(list, frame, pos, false)
		case "loop*":
			return p.analyzeLet(list, frame, pos, true)
		case "letfn*":
			return p.analyzeLetfn(list, frame, pos)
		case "fn*":
			return p.analyzeFn(list, frame, pos)
		case "case*":
			return p.analyzeCase(list, frame, pos)
		case "quote":
			if len(list.Elements) != 2 {
				return nil, fmt.Errorf("quote expects exactly one form")
			}
			return p.literal(list.Elements[1], frame, pos), nil
		case "var":
			return p.analyzeVarRef(list, frame, pos)
		case "throw":
			return p.analyzeThrow(list, frame, pos)
		case "try":
			return p.analyzeTry(list, frame, pos)
		case "recur":
			args, err := p.analyzeSeq(list.Elements[1:], frame)
			if err != nil {
				return nil, err
			}
			return &Recur{base: base{kind: KindRecur, pos: pos, frame: frame}, Args: args}, nil
		}
	}

	if head, ok := list.Elements[0].(*object.Symbol); ok && head.Ns == "native" {
		return p.analyzeNative(head.Name, list, frame, pos)
	}

	// Self-call of the enclosing named fn.
	if head, ok := list.Elements[0].(*object.Symbol); ok && head.Ns == "" {
		if _, isLocal := frame.FindLocalOrCapture(head.Name); !isLocal {
			if fnCtx := enclosingFnCtx(frame, head.Name); fnCtx != nil {
				args, err := p.analyzeSeq(list.Elements[1:], frame)
				if err != nil {
					return nil, err
				}
				return &NamedRecursion{
					base:  base{kind: KindNamedRecursion, pos: pos, frame: frame},
					Name:  head,
					Args:  args,
					FnCtx: fnCtx,
				}, nil
			}
		}
	}

	source, err := p.Analyze(list.Elements[0], frame, Value)
	if err != nil {
		return nil, err
	}
	args, err := p.analyzeSeq(list.Elements[1:], frame)
	if err != nil {
		return nil, err
	}
	return &Call{
		base:   base{kind: KindCall, pos: pos, frame: frame},
		Source: source,
		Args:   args,
		Form:   list,
	}, nil
}

func (p *Processor) analyzeDef(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	if len(list.Elements) < 2 || len(list.Elements) > 3 {
		return nil, fmt.Errorf("def expects a name and an optional value")
	}
	name, ok := list.Elements[1].(*object.Symbol)
	if !ok {
		return nil, fmt.Errorf("def name must be a symbol, got %s", list.Elements[1].Type())
	}

	// Intern eagerly so the value expression can refer to the var
	// (self-reference is how recursive top-level fns are analyzed).
	if _, err := p.Ctx.InternVar(name); err != nil {
		return nil, err
	}

	def := &Def{base: base{kind: KindDef, pos: pos, frame: frame}, Name: name}
	if len(list.Elements) == 3 {
		value, err := p.Analyze(list.Elements[2], frame, Value)
		if err != nil {
			return nil, err
		}
		def.Value = value
	}
	return def, nil
}

func (p *Processor) analyzeIf(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	if len(list.Elements) < 3 || len(list.Elements) > 4 {
		return nil, fmt.Errorf("if expects a condition, a then branch, and an optional else branch")
	}
	condition, err := p.Analyze(list.Elements[1], frame, Value)
	if err != nil {
		return nil, err
	}
	then, err := p.Analyze(list.Elements[2], frame, pos)
	if err != nil {
		return nil, err
	}
	node := &If{
		base:      base{kind: KindIf, pos: pos, frame: frame},
		Condition: condition,
		Then:      then,
	}
	if len(list.Elements) == 4 {
		els, err := p.Analyze(list.Elements[3], frame, pos)
		if err != nil {
			return nil, err
		}
		node.Else = els
	}
	return node, nil
}

func (p *Processor) analyzeDo(forms []object.Object, frame *Frame, pos Position) (*Do, error) {
	node := &Do{base: base{kind: KindDo, pos: pos, frame: frame}}
	for i, form := range forms {
		childPos := Statement
		if i == len(forms)-1 {
			childPos = pos
		}
		e, err := p.Analyze(form, frame, childPos)
		if err != nil {
			return nil, err
		}
		node.Values = append(node.Values, e)
	}
	return node, nil
}

func (p *Processor) analyzeLet(list *object.PersistentList, frame *Frame, pos Position, loop bool) (Expr, error) {
	if len(list.Elements) < 2 {
		return nil, fmt.Errorf("let expects a binding vector")
	}
	bindingsVec, ok := list.Elements[1].(*object.PersistentVector)
	if !ok || len(bindingsVec.Elements)%2 != 0 {
		return nil, fmt.Errorf("let bindings must be a vector with an even number of forms")
	}

	letFrame := NewFrame(FrameOrdinary, frame)
	node := &Let{base: base{kind: KindLet, pos: pos, frame: letFrame}, Loop: loop}
	for i := 0; i+1 < len(bindingsVec.Elements); i += 2 {
		sym, ok := bindingsVec.Elements[i].(*object.Symbol)
		if !ok || sym.Ns != "" {
			return nil, fmt.Errorf("let binding name must be an unqualified symbol")
		}
		value, err := p.Analyze(bindingsVec.Elements[i+1], letFrame, Value)
		if err != nil {
			return nil, err
		}
		letFrame.AddLocal(sym)
		node.Bindings = append(node.Bindings, LetBinding{Name: sym, Value: value})
	}

	body, err := p.analyzeDo(list.Elements[2:], letFrame, pos)
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

func (p *Processor) analyzeLetfn(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	if len(list.Elements) < 2 {
		return nil, fmt.Errorf("letfn expects a binding vector")
	}
	bindingsVec, ok := list.Elements[1].(*object.PersistentVector)
	if !ok || len(bindingsVec.Elements)%2 != 0 {
		return nil, fmt.Errorf("letfn bindings must be a vector with an even number of forms")
	}

	letFrame := NewFrame(FrameOrdinary, frame)
	node := &Letfn{base: base{kind: KindLetfn, pos: pos, frame: letFrame}}

	// All names are in scope in every fn body, so register them first.
	var names []*object.Symbol
	for i := 0; i+1 < len(bindingsVec.Elements); i += 2 {
		sym, ok := bindingsVec.Elements[i].(*object.Symbol)
		if !ok || sym.Ns != "" {
			return nil, fmt.Errorf("letfn binding name must be an unqualified symbol")
		}
		letFrame.AddLocal(sym)
		names = append(names, sym)
	}
	for i := 0; i+1 < len(bindingsVec.Elements); i += 2 {
		fnExpr, err := p.Analyze(bindingsVec.Elements[i+1], letFrame, Value)
		if err != nil {
			return nil, err
		}
		fn, ok := fnExpr.(*Function)
		if !ok {
			return nil, fmt.Errorf("letfn binding value must be a fn form")
		}
		node.Bindings = append(node.Bindings, LetfnBinding{Name: names[i/2], Fn: fn})
	}

	body, err := p.analyzeDo(list.Elements[2:], letFrame, pos)
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

func (p *Processor) analyzeCase(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	if len(list.Elements) < 2 {
		return nil, fmt.Errorf("case expects a value form")
	}
	value, err := p.Analyze(list.Elements[1], frame, Value)
	if err != nil {
		return nil, err
	}
	node := &Case{base: base{kind: KindCase, pos: pos, frame: frame}, Value: value}

	rest := list.Elements[2:]
	for i := 0; i+1 < len(rest); i += 2 {
		body, err := p.Analyze(rest[i+1], frame, pos)
		if err != nil {
			return nil, err
		}
		node.Clauses = append(node.Clauses, CaseClause{Test: rest[i], Body: body})
	}
	if len(rest)%2 == 1 {
		def, err := p.Analyze(rest[len(rest)-1], frame, pos)
		if err != nil {
			return nil, err
		}
		node.Default = def
	}
	return node, nil
}

func (p *Processor) analyzeVarRef(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	if len(list.Elements) != 2 {
		return nil, fmt.Errorf("var expects exactly one symbol")
	}
	sym, ok := list.Elements[1].(*object.Symbol)
	if !ok {
		return nil, fmt.Errorf("var expects a symbol, got %s", list.Elements[1].Type())
	}
	qualified, v, err := p.resolveVar(sym)
	if err != nil {
		return nil, err
	}
	frame.FindClosestFnFrame().LiftVar(qualified, v)
	return &VarRef{base: base{kind: KindVarRef, pos: pos, frame: frame}, QualifiedName: qualified}, nil
}

func (p *Processor) analyzeThrow(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	if len(list.Elements) != 2 {
		return nil, fmt.Errorf("throw expects exactly one form")
	}
	value, err := p.Analyze(list.Elements[1], frame, Value)
	if err != nil {
		return nil, err
	}
	return &Throw{base: base{kind: KindThrow, pos: pos, frame: frame}, Value: value}, nil
}

func (p *Processor) analyzeTry(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	node := &Try{base: base{kind: KindTry, pos: pos, frame: frame}}

	var bodyForms []object.Object
	for _, form := range list.Elements[1:] {
		if clause, ok := form.(*object.PersistentList); ok && len(clause.Elements) > 0 {
			if head, ok := clause.Elements[0].(*object.Symbol); ok {
				switch head.Name {
				case "catch":
					if len(clause.Elements) < 2 {
						return nil, fmt.Errorf("catch expects a binding symbol")
					}
					sym, ok := clause.Elements[1].(*object.Symbol)
					if !ok || sym.Ns != "" {
						return nil, fmt.Errorf("catch binding must be an unqualified symbol")
					}
					catchFrame := NewFrame(FrameOrdinary, frame)
					catchFrame.AddLocal(sym)
					catchBody, err := p.analyzeDo(clause.Elements[2:], catchFrame, pos)
					if err != nil {
						return nil, err
					}
					node.CatchSym = sym
					node.CatchBody = catchBody
					continue
				case "finally":
					finallyBody, err := p.analyzeDo(clause.Elements[1:], frame, Statement)
					if err != nil {
						return nil, err
					}
					node.Finally = finallyBody
					continue
				}
			}
		}
		bodyForms = append(bodyForms, form)
	}

	body, err := p.analyzeDo(bodyForms, frame, pos)
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

func (p *Processor) analyzeFn(list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	rest := list.Elements[1:]
	name := "fn"
	if len(rest) > 0 {
		if sym, ok := rest[0].(*object.Symbol); ok {
			name = sym.Name
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return nil, fmt.Errorf("fn expects at least one arity")
	}

	fn := &Function{
		base:       base{kind: KindFunction, pos: pos, frame: frame},
		Name:       name,
		UniqueName: p.Ctx.UniqueNamespacedString(name),
	}
	fnCtx := &FunctionContext{Name: name, UniqueName: fn.UniqueName, Fn: fn}

	var arityForms [][]object.Object
	if _, ok := rest[0].(*object.PersistentVector); ok {
		arityForms = [][]object.Object{rest}
	} else {
		for _, form := range rest {
			arity, ok := form.(*object.PersistentList)
			if !ok {
				return nil, fmt.Errorf("fn arity must be a list, got %s", form.Type())
			}
			arityForms = append(arityForms, arity.Elements)
		}
	}

	for _, forms := range arityForms {
		arity, err := p.analyzeFnArity(forms, frame, fnCtx)
		if err != nil {
			return nil, err
		}
		fn.Arities = append(fn.Arities, arity)
	}

	// The context mirrors the first arity for recursion dispatch.
	fnCtx.ParamCount = len(fn.Arities[0].Params)
	fnCtx.Variadic = fn.Arities[0].Variadic

	slog.Debug("analyzed fn",
		slog.String("name", fn.UniqueName),
		slog.Int("arities", len(fn.Arities)))
	return fn, nil
}

func (p *Processor) analyzeFnArity(forms []object.Object, parent *Frame, fnCtx *FunctionContext) (*FunctionArity, error) {
	if len(forms) == 0 {
		return nil, fmt.Errorf("fn arity expects a parameter vector")
	}
	paramsVec, ok := forms[0].(*object.PersistentVector)
	if !ok {
		return nil, fmt.Errorf("fn parameters must be a vector, got %s", forms[0].Type())
	}

	fnFrame := NewFrame(FrameFn, parent)
	fnFrame.FnCtx = fnCtx

	arity := &FunctionArity{Frame: fnFrame, FnCtx: fnCtx}
	for i := 0; i < len(paramsVec.Elements); i++ {
		sym, ok := paramsVec.Elements[i].(*object.Symbol)
		if !ok || sym.Ns != "" {
			return nil, fmt.Errorf("fn parameter must be an unqualified symbol")
		}
		if sym.Name == "&" {
			if i != len(paramsVec.Elements)-2 {
				return nil, fmt.Errorf("variadic marker must precede the final parameter")
			}
			restSym, ok := paramsVec.Elements[i+1].(*object.Symbol)
			if !ok || restSym.Ns != "" {
				return nil, fmt.Errorf("variadic parameter must be an unqualified symbol")
			}
			arity.Variadic = true
			arity.Params = append(arity.Params, restSym)
			fnFrame.AddLocal(restSym)
			break
		}
		arity.Params = append(arity.Params, sym)
		fnFrame.AddLocal(sym)
	}

	body, err := p.analyzeDo(forms[1:], fnFrame, Tail)
	if err != nil {
		return nil, err
	}
	arity.Body = body
	return arity, nil
}

func (p *Processor) analyzeNative(name string, list *object.PersistentList, frame *Frame, pos Position) (Expr, error) {
	args := list.Elements[1:]
	switch name {
	case "raw":
		code, ok := stringArg(args, 0)
		if !ok {
			return nil, fmt.Errorf("native/raw expects a code string")
		}
		return &NativeRaw{base: base{kind: KindNativeRaw, pos: pos, frame: frame}, Code: code}, nil

	case "value":
		valueName, ok := stringArg(args, 0)
		if !ok {
			return nil, fmt.Errorf("native/value expects a name string")
		}
		return &NativeValue{base: base{kind: KindNativeValue, pos: pos, frame: frame}, Name: valueName}, nil

	case "call":
		fnName, ok := stringArg(args, 0)
		if !ok {
			return nil, fmt.Errorf("native/call expects a name string")
		}
		callArgs, err := p.analyzeSeq(args[1:], frame)
		if err != nil {
			return nil, err
		}
		return &NativeCall{base: base{kind: KindNativeCall, pos: pos, frame: frame}, Name: fnName, Args: callArgs}, nil

	case "constructor":
		typeName, ok := stringArg(args, 0)
		if !ok {
			return nil, fmt.Errorf("native/constructor expects a type name string")
		}
		ctorArgs, err := p.analyzeSeq(args[1:], frame)
		if err != nil {
			return nil, err
		}
		return &NativeConstructorCall{base: base{kind: KindNativeConstructorCall, pos: pos, frame: frame}, TypeName: typeName, Args: ctorArgs}, nil

	case "member-call":
		method, ok := stringArg(args, 0)
		if !ok || len(args) < 2 {
			return nil, fmt.Errorf("native/member-call expects a method name and a target")
		}
		target, err := p.Analyze(args[1], frame, Value)
		if err != nil {
			return nil, err
		}
		callArgs, err := p.analyzeSeq(args[2:], frame)
		if err != nil {
			return nil, err
		}
		return &NativeMemberCall{base: base{kind: KindNativeMemberCall, pos: pos, frame: frame}, Method: method, Target: target, Args: callArgs}, nil

	case "member-access":
		field, ok := stringArg(args, 0)
		if !ok || len(args) != 2 {
			return nil, fmt.Errorf("native/member-access expects a field name and a target")
		}
		target, err := p.Analyze(args[1], frame, Value)
		if err != nil {
			return nil, err
		}
		return &NativeMemberAccess{base: base{kind: KindNativeMemberAccess, pos: pos, frame: frame}, Field: field, Target: target}, nil

	case "op":
		op, ok := stringArg(args, 0)
		if !ok {
			return nil, fmt.Errorf("native/op expects an operator string")
		}
		opArgs, err := p.analyzeSeq(args[1:], frame)
		if err != nil {
			return nil, err
		}
		return &NativeOperatorCall{base: base{kind: KindNativeOperatorCall, pos: pos, frame: frame}, Op: op, Args: opArgs}, nil

	case "box":
		if len(args) != 1 {
			return nil, fmt.Errorf("native/box expects exactly one form")
		}
		value, err := p.Analyze(args[0], frame, Value)
		if err != nil {
			return nil, err
		}
		return &NativeBox{base: base{kind: KindNativeBox, pos: pos, frame: frame}, Value: value}, nil

	case "unbox":
		typeName, ok := stringArg(args, 0)
		if !ok || len(args) != 2 {
			return nil, fmt.Errorf("native/unbox expects a type name and a form")
		}
		value, err := p.Analyze(args[1], frame, Value)
		if err != nil {
			return nil, err
		}
		return &NativeUnbox{base: base{kind: KindNativeUnbox, pos: pos, frame: frame}, TypeName: typeName, Value: value}, nil

	case "new":
		typeName, ok := stringArg(args, 0)
		if !ok {
			return nil, fmt.Errorf("native/new expects a type name string")
		}
		ctorArgs, err := p.analyzeSeq(args[1:], frame)
		if err != nil {
			return nil, err
		}
		return &NativeNew{base: base{kind: KindNativeNew, pos: pos, frame: frame}, TypeName: typeName, Args: ctorArgs}, nil

	case "delete":
		if len(args) != 1 {
			return nil, fmt.Errorf("native/delete expects exactly one form")
		}
		target, err := p.Analyze(args[0], frame, Value)
		if err != nil {
			return nil, err
		}
		return &NativeDelete{base: base{kind: KindNativeDelete, pos: pos, frame: frame}, Target: target}, nil
	}

	return nil, fmt.Errorf("unknown native interop form: native/%s", name)
}

func stringArg(args []object.Object, idx int) (string, bool) {
	if idx >= len(args) {
		return "", false
	}
	s, ok := args[idx].(*object.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}
