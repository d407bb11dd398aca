package runtime

import (
	"fmt"
	"reflect"
	"sync"

	"opal/internal/object"
)

// Host exposes Go values, functions and types to the native interop forms.
// Everything goes through reflection, so registrations are plain Go values.
type Host struct {
	mu     sync.RWMutex
	values map[string]any
	types  map[string]reflect.Type

	// EvalRaw, when set, handles raw code snippets. Left nil, raw forms fail
	// with a descriptive error.
	EvalRaw func(code string) (any, error)
}

func NewHost() *Host {
	return &Host{
		values: map[string]any{},
		types:  map[string]reflect.Type{},
	}
}

func (h *Host) RegisterValue(name string, v any) {
	h.mu.Lock()
	h.values[name] = v
	h.mu.Unlock()
}

// RegisterType registers the dynamic type of sample under name so that
// constructor forms can instantiate it.
func (h *Host) RegisterType(name string, sample any) {
	h.mu.Lock()
	h.types[name] = reflect.TypeOf(sample)
	h.mu.Unlock()
}

func (h *Host) Value(name string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.values[name]
	return v, ok
}

func (h *Host) Raw(code string) (any, error) {
	h.mu.RLock()
	eval := h.EvalRaw
	h.mu.RUnlock()
	if eval == nil {
		return nil, fmt.Errorf("no raw code evaluator registered")
	}
	return eval(code)
}

func (h *Host) Call(name string, args []any) (any, error) {
	fn, ok := h.Value(name)
	if !ok {
		return nil, fmt.Errorf("unknown native function: %s", name)
	}
	return callReflect(reflect.ValueOf(fn), name, args)
}

// New instantiates a registered type. With no arguments it produces the zero
// value; with arguments it assigns exported struct fields in order.
func (h *Host) New(typeName string, args []any) (any, error) {
	h.mu.RLock()
	typ, ok := h.types[typeName]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown native type: %s", typeName)
	}
	ptr := reflect.New(typ)
	if len(args) > 0 {
		if typ.Kind() != reflect.Struct {
			return nil, fmt.Errorf("native type %s takes no constructor arguments", typeName)
		}
		if len(args) > typ.NumField() {
			return nil, fmt.Errorf("too many constructor arguments for %s", typeName)
		}
		for i, arg := range args {
			field := ptr.Elem().Field(i)
			if !field.CanSet() {
				return nil, fmt.Errorf("field %s.%s is not settable", typeName, typ.Field(i).Name)
			}
			converted, err := convertArg(reflect.ValueOf(arg), field.Type())
			if err != nil {
				return nil, fmt.Errorf("constructor argument %d for %s: %w", i, typeName, err)
			}
			field.Set(converted)
		}
	}
	return ptr.Interface(), nil
}

func (h *Host) MemberCall(target any, method string, args []any) (any, error) {
	v := reflect.ValueOf(target)
	m := v.MethodByName(method)
	if !m.IsValid() && v.Kind() != reflect.Ptr {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		m = ptr.MethodByName(method)
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("unknown method %s on %T", method, target)
	}
	return callReflect(m, method, args)
}

func (h *Host) MemberAccess(target any, field string) (any, error) {
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot access field %s on %T", field, target)
	}
	f := v.FieldByName(field)
	if !f.IsValid() {
		return nil, fmt.Errorf("unknown field %s on %T", field, target)
	}
	return f.Interface(), nil
}

// Operator applies a binary numeric or string operator left to right over all
// arguments, so (native/op "+" 1 2 3) folds the whole sequence.
func (h *Host) Operator(op string, args []any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("operator %q needs at least one argument", op)
	}
	acc := args[0]
	for _, next := range args[1:] {
		var err error
		acc, err = applyOperator(op, acc, next)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func applyOperator(op string, a, b any) (any, error) {
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return nil, fmt.Errorf("operator %q: mismatched operand types %T and %T", op, a, b)
		}
		switch op {
		case "+":
			return as + bs, nil
		case "==":
			return as == bs, nil
		case "!=":
			return as != bs, nil
		}
		return nil, fmt.Errorf("operator %q not defined for strings", op)
	}

	af, aIsFloat, err := numericOperand(a)
	if err != nil {
		return nil, fmt.Errorf("operator %q: %w", op, err)
	}
	bf, bIsFloat, err := numericOperand(b)
	if err != nil {
		return nil, fmt.Errorf("operator %q: %w", op, err)
	}

	wantFloat := aIsFloat || bIsFloat
	switch op {
	case "+", "-", "*", "/":
		if wantFloat {
			switch op {
			case "+":
				return af + bf, nil
			case "-":
				return af - bf, nil
			case "*":
				return af * bf, nil
			default:
				return af / bf, nil
			}
		}
		ai, bi := int64(af), int64(bf)
		switch op {
		case "+":
			return ai + bi, nil
		case "-":
			return ai - bi, nil
		case "*":
			return ai * bi, nil
		default:
			if bi == 0 {
				return nil, fmt.Errorf("integer division by zero")
			}
			return ai / bi, nil
		}
	case "==":
		return af == bf, nil
	case "!=":
		return af != bf, nil
	case "<":
		return af < bf, nil
	case "<=":
		return af <= bf, nil
	case ">":
		return af > bf, nil
	case ">=":
		return af >= bf, nil
	}
	return nil, fmt.Errorf("unknown operator: %q", op)
}

func numericOperand(v any) (float64, bool, error) {
	switch n := v.(type) {
	case int:
		return float64(n), false, nil
	case int32:
		return float64(n), false, nil
	case int64:
		return float64(n), false, nil
	case float32:
		return float64(n), true, nil
	case float64:
		return n, true, nil
	}
	return 0, false, fmt.Errorf("non-numeric operand %T", v)
}

func callReflect(fn reflect.Value, name string, args []any) (any, error) {
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not callable (%s)", name, fn.Kind())
	}
	typ := fn.Type()

	fixed := typ.NumIn()
	if typ.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%s expects at least %d args, got %d", name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%s expects %d args, got %d", name, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if i < fixed {
			want = typ.In(i)
		} else {
			want = typ.In(typ.NumIn() - 1).Elem()
		}
		converted, err := convertArg(reflect.ValueOf(arg), want)
		if err != nil {
			return nil, fmt.Errorf("argument %d to %s: %w", i, name, err)
		}
		in[i] = converted
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if typ.Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	case 2:
		if typ.Out(1) == errorType {
			return out[0].Interface(), asError(out[1])
		}
	}
	return nil, fmt.Errorf("%s has an unsupported return signature", name)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func convertArg(v reflect.Value, want reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(want), nil
	}
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	if v.Type().ConvertibleTo(want) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), want)
}

// IntoObject boxes a host value into the object representation. Primitives
// map to their lisp counterparts; anything else rides in a NativeValue.
func IntoObject(v any) object.Object {
	switch n := v.(type) {
	case nil:
		return object.NIL
	case object.Object:
		return n
	case bool:
		return object.NativeBool(n)
	case int:
		return &object.Integer{Value: int64(n)}
	case int32:
		return &object.Integer{Value: int64(n)}
	case int64:
		return &object.Integer{Value: n}
	case float32:
		return &object.Float{Value: float64(n)}
	case float64:
		return &object.Float{Value: n}
	case string:
		return &object.String{Value: n}
	}
	return &object.NativeValue{Value: v}
}

// FromObject unboxes an object into a plain host value.
func FromObject(o object.Object) any {
	switch v := o.(type) {
	case *object.Nil:
		return nil
	case *object.Boolean:
		return v.Value
	case *object.Integer:
		return v.Value
	case *object.Float:
		return v.Value
	case *object.String:
		return v.Value
	case *object.NativeValue:
		return v.Value
	}
	return o
}

// StringizeNative renders a native value as a string object, the fallback
// used when native returns are not allowed to cross the boundary raw.
func StringizeNative(v any) *object.String {
	return &object.String{Value: fmt.Sprintf("%v", v)}
}
