package evaluate

import (
	"fmt"
	"strings"

	"opal/internal/object"
	"opal/internal/runtime"
)

// InstallCore interns the built-in fns into the core namespace.
func InstallCore(ctx *runtime.Context) {
	core := ctx.InternNs(runtime.CoreNs)
	for name, fn := range coreFns() {
		core.Intern(name).BindRoot(fn)
	}
}

func coreFns() map[string]*object.GoFn {
	return map[string]*object.GoFn{
		"+":   fnAdd(),
		"-":   fnSub(),
		"*":   fnMul(),
		"/":   fnDiv(),
		"=":   fnEq(),
		"<":   fnLt(),
		">":   fnGt(),
		"not": fnNot(),

		"println": fnPrintLn(),
		"str":     fnStr(),

		"list":   fnList(),
		"vector": fnVector(),
		"count":  fnCount(),
		"first":  fnFirst(),
		"rest":   fnRest(),
		"conj":   fnConj(),
		"get":    fnGet(),
		"nth":    fnNth(),

		"deref": fnDeref(),
	}
}

// numeric pulls an int or float operand, normalizing to float when mixed.
func numeric(o object.Object) (int64, float64, bool, error) {
	switch n := o.(type) {
	case *object.Integer:
		return n.Value, float64(n.Value), false, nil
	case *object.Float:
		return 0, n.Value, true, nil
	}
	return 0, 0, false, fmt.Errorf("expected a number, got %s", o.Type())
}

func reduceNumeric(name string, args []object.Object, identity int64,
	intOp func(a, b int64) (int64, error), floatOp func(a, b float64) float64) (object.Object, error) {
	if len(args) == 0 {
		return &object.Integer{Value: identity}, nil
	}
	ai, af, isFloat, err := numeric(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	for _, arg := range args[1:] {
		bi, bf, bFloat, err := numeric(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", name, err)
		}
		if isFloat || bFloat {
			if !isFloat {
				af = float64(ai)
				isFloat = true
			}
			af = floatOp(af, bf)
			continue
		}
		ai, err = intOp(ai, bi)
		if err != nil {
			return nil, err
		}
		af = float64(ai)
	}
	if isFloat {
		return &object.Float{Value: af}, nil
	}
	return &object.Integer{Value: ai}, nil
}

func fnAdd() *object.GoFn {
	return &object.GoFn{Name: "+", Fn: func(args []object.Object) (object.Object, error) {
		return reduceNumeric("+", args, 0,
			func(a, b int64) (int64, error) { return a + b, nil },
			func(a, b float64) float64 { return a + b })
	}}
}

func fnSub() *object.GoFn {
	return &object.GoFn{Name: "-", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("wrong number of arguments. got=0, want=1+")
		}
		if len(args) == 1 {
			args = []object.Object{&object.Integer{Value: 0}, args[0]}
		}
		return reduceNumeric("-", args, 0,
			func(a, b int64) (int64, error) { return a - b, nil },
			func(a, b float64) float64 { return a - b })
	}}
}

func fnMul() *object.GoFn {
	return &object.GoFn{Name: "*", Fn: func(args []object.Object) (object.Object, error) {
		return reduceNumeric("*", args, 1,
			func(a, b int64) (int64, error) { return a * b, nil },
			func(a, b float64) float64 { return a * b })
	}}
}

func fnDiv() *object.GoFn {
	return &object.GoFn{Name: "/", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("wrong number of arguments. got=0, want=1+")
		}
		return reduceNumeric("/", args, 1,
			func(a, b int64) (int64, error) {
				if b == 0 {
					return 0, fmt.Errorf("divide by zero")
				}
				return a / b, nil
			},
			func(a, b float64) float64 { return a / b })
	}}
}

func fnEq() *object.GoFn {
	return &object.GoFn{Name: "=", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) < 2 {
			return object.TRUE, nil
		}
		for _, arg := range args[1:] {
			if !object.Equals(args[0], arg) {
				return object.FALSE, nil
			}
		}
		return object.TRUE, nil
	}}
}

func compareNumeric(name string, args []object.Object, cmp func(a, b float64) bool) (object.Object, error) {
	if len(args) < 2 {
		return object.TRUE, nil
	}
	_, prev, _, err := numeric(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	for _, arg := range args[1:] {
		_, cur, _, err := numeric(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", name, err)
		}
		if !cmp(prev, cur) {
			return object.FALSE, nil
		}
		prev = cur
	}
	return object.TRUE, nil
}

func fnLt() *object.GoFn {
	return &object.GoFn{Name: "<", Fn: func(args []object.Object) (object.Object, error) {
		return compareNumeric("<", args, func(a, b float64) bool { return a < b })
	}}
}

func fnGt() *object.GoFn {
	return &object.GoFn{Name: ">", Fn: func(args []object.Object) (object.Object, error) {
		return compareNumeric(">", args, func(a, b float64) bool { return a > b })
	}}
}

func fnNot() *object.GoFn {
	return &object.GoFn{Name: "not", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=1", len(args))
		}
		return object.NativeBool(!object.Truthy(args[0])), nil
	}}
}

func fnPrintLn() *object.GoFn {
	return &object.GoFn{Name: "println", Fn: func(args []object.Object) (object.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, object.ToString(arg))
		}
		fmt.Println(strings.Join(parts, " "))
		return object.NIL, nil
	}}
}

func fnStr() *object.GoFn {
	return &object.GoFn{Name: "str", Fn: func(args []object.Object) (object.Object, error) {
		var out strings.Builder
		for _, arg := range args {
			if _, ok := arg.(*object.Nil); ok {
				continue
			}
			out.WriteString(object.ToString(arg))
		}
		return &object.String{Value: out.String()}, nil
	}}
}

func fnList() *object.GoFn {
	return &object.GoFn{Name: "list", Fn: func(args []object.Object) (object.Object, error) {
		return object.NewList(args), nil
	}}
}

func fnVector() *object.GoFn {
	return &object.GoFn{Name: "vector", Fn: func(args []object.Object) (object.Object, error) {
		return &object.PersistentVector{Elements: args}, nil
	}}
}

func fnCount() *object.GoFn {
	return &object.GoFn{Name: "count", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=1", len(args))
		}
		switch c := args[0].(type) {
		case *object.Nil:
			return &object.Integer{Value: 0}, nil
		case *object.PersistentList:
			return &object.Integer{Value: int64(len(c.Elements))}, nil
		case *object.PersistentVector:
			return &object.Integer{Value: int64(len(c.Elements))}, nil
		case *object.PersistentHashSet:
			return &object.Integer{Value: int64(len(c.Elems))}, nil
		case *object.PersistentArrayMap:
			return &object.Integer{Value: int64(c.Count())}, nil
		case *object.PersistentHashMap:
			return &object.Integer{Value: int64(c.Count())}, nil
		case *object.String:
			return &object.Integer{Value: int64(len(c.Value))}, nil
		}
		return nil, fmt.Errorf("count not supported on %s", args[0].Type())
	}}
}

func seqElements(o object.Object) ([]object.Object, bool) {
	switch c := o.(type) {
	case *object.Nil:
		return nil, true
	case *object.PersistentList:
		return c.Elements, true
	case *object.PersistentVector:
		return c.Elements, true
	}
	return nil, false
}

func fnFirst() *object.GoFn {
	return &object.GoFn{Name: "first", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=1", len(args))
		}
		elements, ok := seqElements(args[0])
		if !ok {
			return nil, fmt.Errorf("first not supported on %s", args[0].Type())
		}
		if len(elements) == 0 {
			return object.NIL, nil
		}
		return elements[0], nil
	}}
}

func fnRest() *object.GoFn {
	return &object.GoFn{Name: "rest", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=1", len(args))
		}
		elements, ok := seqElements(args[0])
		if !ok {
			return nil, fmt.Errorf("rest not supported on %s", args[0].Type())
		}
		if len(elements) == 0 {
			return object.NewList(nil), nil
		}
		return object.NewList(elements[1:]), nil
	}}
}

func fnConj() *object.GoFn {
	return &object.GoFn{Name: "conj", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=2+", len(args))
		}
		switch c := args[0].(type) {
		case *object.PersistentList:
			// Lists grow at the front.
			elements := c.Elements
			for _, item := range args[1:] {
				elements = append([]object.Object{item}, elements...)
			}
			return &object.PersistentList{Meta: c.Meta, Elements: elements}, nil
		case *object.PersistentVector:
			elements := make([]object.Object, 0, len(c.Elements)+len(args)-1)
			elements = append(elements, c.Elements...)
			elements = append(elements, args[1:]...)
			return &object.PersistentVector{Meta: c.Meta, Elements: elements}, nil
		case *object.PersistentHashSet:
			elems := map[object.MapKey]object.Object{}
			for k, v := range c.Elems {
				elems[k] = v
			}
			for _, item := range args[1:] {
				h, ok := item.(object.Hashable)
				if !ok {
					return nil, fmt.Errorf("set element is not hashable: %s", item.Inspect())
				}
				elems[h.MapKey()] = item
			}
			return &object.PersistentHashSet{Meta: c.Meta, Elems: elems}, nil
		}
		return nil, fmt.Errorf("conj not supported on %s", args[0].Type())
	}}
}

func fnGet() *object.GoFn {
	return &object.GoFn{Name: "get", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=2 or 3", len(args))
		}
		fallback := object.Object(object.NIL)
		if len(args) == 3 {
			fallback = args[2]
		}
		// Vectors and sets only dispatch as 1-argument callables, so the
		// fallback is applied here rather than through the call path.
		switch c := args[0].(type) {
		case *object.Nil:
			return fallback, nil
		case *object.PersistentVector:
			idx, ok := args[1].(*object.Integer)
			if !ok {
				return fallback, nil
			}
			if v, found := c.Nth(idx.Value); found {
				return v, nil
			}
			return fallback, nil
		case *object.PersistentHashSet:
			if c.Contains(args[1]) {
				return c.Lookup(args[1]), nil
			}
			return fallback, nil
		}
		return object.Apply(args[0], []object.Object{args[1], fallback})
	}}
}

func fnNth() *object.GoFn {
	return &object.GoFn{Name: "nth", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=2", len(args))
		}
		idx, ok := args[1].(*object.Integer)
		if !ok {
			return nil, fmt.Errorf("nth index must be an integer, got %s", args[1].Type())
		}
		elements, ok := seqElements(args[0])
		if !ok {
			return nil, fmt.Errorf("nth not supported on %s", args[0].Type())
		}
		if idx.Value < 0 || idx.Value >= int64(len(elements)) {
			return nil, fmt.Errorf("index %d out of bounds", idx.Value)
		}
		return elements[idx.Value], nil
	}}
}

func fnDeref() *object.GoFn {
	return &object.GoFn{Name: "deref", Fn: func(args []object.Object) (object.Object, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("wrong number of arguments. got=%d, want=1", len(args))
		}
		return object.Deref(args[0]), nil
	}}
}
