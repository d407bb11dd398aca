// Package analyze defines the typed expression tree the evaluator consumes:
// a closed set of node kinds, each carrying a position tag and a reference to
// its lexical frame, plus the analyzer that builds the tree from read forms.
package analyze

import (
	"opal/internal/object"
)

type Kind int

const (
	KindPrimitiveLiteral Kind = iota
	KindDef
	KindVarDeref
	KindVarRef
	KindCall
	KindIf
	KindDo
	KindLet
	KindLetfn
	KindCase
	KindLocalReference
	KindRecur
	KindRecursionReference
	KindNamedRecursion
	KindThrow
	KindTry
	KindFunction
	KindList
	KindVector
	KindSet
	KindMap
	KindNativeRaw
	KindNativeValue
	KindNativeCast
	KindNativeCall
	KindNativeConstructorCall
	KindNativeMemberCall
	KindNativeMemberAccess
	KindNativeOperatorCall
	KindNativeBox
	KindNativeUnbox
	KindNativeNew
	KindNativeDelete
)

var kindNames = map[Kind]string{
	KindPrimitiveLiteral:      "primitive-literal",
	KindDef:                   "def",
	KindVarDeref:              "var-deref",
	KindVarRef:                "var-ref",
	KindCall:                  "call",
	KindIf:                    "if",
	KindDo:                    "do",
	KindLet:                   "let",
	KindLetfn:                 "letfn",
	KindCase:                  "case",
	KindLocalReference:        "local-reference",
	KindRecur:                 "recur",
	KindRecursionReference:    "recursion-reference",
	KindNamedRecursion:        "named-recursion",
	KindThrow:                 "throw",
	KindTry:                   "try",
	KindFunction:              "function",
	KindList:                  "list",
	KindVector:                "vector",
	KindSet:                   "set",
	KindMap:                   "map",
	KindNativeRaw:             "native-raw",
	KindNativeValue:           "native-value",
	KindNativeCast:            "native-cast",
	KindNativeCall:            "native-call",
	KindNativeConstructorCall: "native-constructor-call",
	KindNativeMemberCall:      "native-member-call",
	KindNativeMemberAccess:    "native-member-access",
	KindNativeOperatorCall:    "native-operator-call",
	KindNativeBox:             "native-box",
	KindNativeUnbox:           "native-unbox",
	KindNativeNew:             "native-new",
	KindNativeDelete:          "native-delete",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Position says what happens to a node's result: discarded, used, or
// returned from the enclosing function body.
type Position int

const (
	Statement Position = iota
	Value
	Tail
)

func (p Position) String() string {
	switch p {
	case Statement:
		return "statement"
	case Value:
		return "value"
	case Tail:
		return "tail"
	}
	return "unknown"
}

type Expr interface {
	Kind() Kind
	Position() Position
	Frame() *Frame
	// PropagatePosition assigns pos to this node and pushes it downward so
	// that the last form of any nested sequence inherits it.
	PropagatePosition(pos Position)
}

type base struct {
	kind  Kind
	pos   Position
	frame *Frame
}

func (b *base) Kind() Kind                     { return b.kind }
func (b *base) Position() Position             { return b.pos }
func (b *base) Frame() *Frame                  { return b.frame }
func (b *base) PropagatePosition(pos Position) { b.pos = pos }

// StaticTyped is implemented by nodes whose value is not the universal
// object representation. Everything else is implicitly object-typed.
type StaticTyped interface {
	StaticType() string
}

// ObjectType is the universal boxed representation every wrapped expression
// must return unless *allow-native-return* is bound.
const ObjectType = "object"

// StaticTypeOf reports the static type of any expression.
func StaticTypeOf(e Expr) string {
	if t, ok := e.(StaticTyped); ok {
		return t.StaticType()
	}
	return ObjectType
}

type PrimitiveLiteral struct {
	base
	Value object.Object
}

type Def struct {
	base
	Name  *object.Symbol
	Value Expr // nil when the def has no value form
}

type VarDeref struct {
	base
	QualifiedName string
}

type VarRef struct {
	base
	QualifiedName string
}

type Call struct {
	base
	Source Expr
	Args   []Expr
	Form   object.Object // original form, kept for diagnostics
}

type If struct {
	base
	Condition Expr
	Then      Expr
	Else      Expr // nil when absent
}

func (e *If) PropagatePosition(pos Position) {
	e.pos = pos
	e.Condition.PropagatePosition(Value)
	e.Then.PropagatePosition(pos)
	if e.Else != nil {
		e.Else.PropagatePosition(pos)
	}
}

type Do struct {
	base
	Values []Expr
}

func (e *Do) PropagatePosition(pos Position) {
	e.pos = pos
	for i, v := range e.Values {
		if i == len(e.Values)-1 {
			v.PropagatePosition(pos)
		} else {
			v.PropagatePosition(Statement)
		}
	}
}

type LetBinding struct {
	Name  *object.Symbol
	Value Expr
}

type Let struct {
	base
	Loop     bool
	Bindings []LetBinding
	Body     *Do
}

func (e *Let) PropagatePosition(pos Position) {
	e.pos = pos
	e.Body.PropagatePosition(pos)
}

type LetfnBinding struct {
	Name *object.Symbol
	Fn   *Function
}

type Letfn struct {
	base
	Bindings []LetfnBinding
	Body     *Do
}

func (e *Letfn) PropagatePosition(pos Position) {
	e.pos = pos
	e.Body.PropagatePosition(pos)
}

type CaseClause struct {
	Test object.Object // compared structurally, never evaluated
	Body Expr
}

type Case struct {
	base
	Value   Expr
	Clauses []CaseClause
	Default Expr // nil when absent
}

func (e *Case) PropagatePosition(pos Position) {
	e.pos = pos
	e.Value.PropagatePosition(Value)
	for _, c := range e.Clauses {
		c.Body.PropagatePosition(pos)
	}
	if e.Default != nil {
		e.Default.PropagatePosition(pos)
	}
}

type LocalReference struct {
	base
	Name    *object.Symbol
	Binding *LocalBinding
}

type Recur struct {
	base
	Args []Expr
}

type RecursionReference struct {
	base
	FnCtx *FunctionContext
}

type NamedRecursion struct {
	base
	Name  *object.Symbol
	Args  []Expr
	FnCtx *FunctionContext
}

type Throw struct {
	base
	Value Expr
}

type Try struct {
	base
	Body      *Do
	CatchSym  *object.Symbol // nil when no catch clause
	CatchBody *Do
	Finally   *Do // nil when no finally clause
}

func (e *Try) PropagatePosition(pos Position) {
	e.pos = pos
	e.Body.PropagatePosition(pos)
	if e.CatchBody != nil {
		e.CatchBody.PropagatePosition(pos)
	}
	if e.Finally != nil {
		// A finally body's value is always discarded.
		e.Finally.PropagatePosition(Statement)
	}
}

type FunctionContext struct {
	Name       string
	UniqueName string
	ParamCount int
	Variadic   bool
	Fn         *Function
}

type FunctionArity struct {
	Params   []*object.Symbol
	Variadic bool
	Body     *Do
	Frame    *Frame
	FnCtx    *FunctionContext
}

type Function struct {
	base
	Name       string
	UniqueName string
	Meta       object.Object
	Arities    []*FunctionArity
}

type List struct {
	base
	Meta     object.Object
	Elements []Expr
}

type Vector struct {
	base
	Meta     object.Object
	Elements []Expr
}

type Set struct {
	base
	Meta     object.Object
	Elements []Expr
}

type Map struct {
	base
	Meta object.Object
	Keys []Expr
	Vals []Expr
}

// ConversionPolicy controls how a native-typed value becomes an object when
// it crosses back into lisp land.
type ConversionPolicy int

const (
	// PolicyIntoObject converts through the interop boxing machinery.
	PolicyIntoObject ConversionPolicy = iota
	// PolicyNativePrint falls back to a stringized box; whether the raw
	// native value may pass through instead is checked at runtime against
	// *allow-native-return*.
	PolicyNativePrint
)

type NativeRaw struct {
	base
	Code string
}

type NativeValue struct {
	base
	Name string
}

func (e *NativeValue) StaticType() string { return "native" }

type NativeCast struct {
	base
	Policy   ConversionPolicy
	FromType string
	Value    Expr
}

type NativeCall struct {
	base
	Name string
	Args []Expr
}

func (e *NativeCall) StaticType() string { return "native" }

type NativeConstructorCall struct {
	base
	TypeName string
	Args     []Expr
}

func (e *NativeConstructorCall) StaticType() string { return "native" }

type NativeMemberCall struct {
	base
	Method string
	Target Expr
	Args   []Expr
}

func (e *NativeMemberCall) StaticType() string { return "native" }

type NativeMemberAccess struct {
	base
	Field  string
	Target Expr
}

func (e *NativeMemberAccess) StaticType() string { return "native" }

type NativeOperatorCall struct {
	base
	Op   string
	Args []Expr
}

func (e *NativeOperatorCall) StaticType() string { return "native" }

type NativeBox struct {
	base
	Value Expr
}

type NativeUnbox struct {
	base
	TypeName string
	Value    Expr
}

func (e *NativeUnbox) StaticType() string { return "native" }

type NativeNew struct {
	base
	TypeName string
	Args     []Expr
}

func (e *NativeNew) StaticType() string { return "native" }

type NativeDelete struct {
	base
	Target Expr
}

// Walk visits every child expression depth-first, calling f on each node
// after its children (postorder).
func Walk(e Expr, f func(Expr)) {
	switch t := e.(type) {
	case *Call:
		Walk(t.Source, f)
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *Def:
		if t.Value != nil {
			Walk(t.Value, f)
		}
	case *If:
		Walk(t.Condition, f)
		Walk(t.Then, f)
		if t.Else != nil {
			Walk(t.Else, f)
		}
	case *Do:
		for _, v := range t.Values {
			Walk(v, f)
		}
	case *Let:
		for _, b := range t.Bindings {
			Walk(b.Value, f)
		}
		Walk(t.Body, f)
	case *Letfn:
		for _, b := range t.Bindings {
			Walk(b.Fn, f)
		}
		Walk(t.Body, f)
	case *Case:
		Walk(t.Value, f)
		for _, c := range t.Clauses {
			Walk(c.Body, f)
		}
		if t.Default != nil {
			Walk(t.Default, f)
		}
	case *Throw:
		Walk(t.Value, f)
	case *Try:
		Walk(t.Body, f)
		if t.CatchBody != nil {
			Walk(t.CatchBody, f)
		}
		if t.Finally != nil {
			Walk(t.Finally, f)
		}
	case *Function:
		for _, arity := range t.Arities {
			Walk(arity.Body, f)
		}
	case *List:
		for _, el := range t.Elements {
			Walk(el, f)
		}
	case *Vector:
		for _, el := range t.Elements {
			Walk(el, f)
		}
	case *Set:
		for _, el := range t.Elements {
			Walk(el, f)
		}
	case *Map:
		for i := range t.Keys {
			Walk(t.Keys[i], f)
			Walk(t.Vals[i], f)
		}
	case *Recur:
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *NamedRecursion:
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *NativeCast:
		Walk(t.Value, f)
	case *NativeCall:
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *NativeConstructorCall:
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *NativeMemberCall:
		Walk(t.Target, f)
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *NativeMemberAccess:
		Walk(t.Target, f)
	case *NativeOperatorCall:
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *NativeBox:
		Walk(t.Value, f)
	case *NativeUnbox:
		Walk(t.Value, f)
	case *NativeNew:
		for _, a := range t.Args {
			Walk(a, f)
		}
	case *NativeDelete:
		Walk(t.Target, f)
	}
	f(e)
}

// WalkArity walks one function arity's body.
func WalkArity(arity *FunctionArity, f func(Expr)) {
	Walk(arity.Body, f)
}
