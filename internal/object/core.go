package object

// Truthy implements the language's truthiness: nil and false are falsey,
// everything else is truthy.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case *Nil:
		return false
	case *Boolean:
		return v.Value
	case nil:
		return false
	default:
		return true
	}
}

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Deref unwraps var indirection of arbitrary depth.
func Deref(o Object) Object {
	for {
		v, ok := o.(*Var)
		if !ok {
			return o
		}
		o = v.Deref()
	}
}

// Equals compares two values structurally.
func Equals(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch av := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Integer:
		bv, ok := b.(*Integer)
		return ok && av.Value == bv.Value
	case *Float:
		bv, ok := b.(*Float)
		return ok && av.Value == bv.Value
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av.Ns == bv.Ns && av.Name == bv.Name
	case *Keyword:
		bv, ok := b.(*Keyword)
		return ok && av.Ns == bv.Ns && av.Name == bv.Name
	case *PersistentList:
		bv, ok := b.(*PersistentList)
		return ok && seqEquals(av.Elements, bv.Elements)
	case *PersistentVector:
		bv, ok := b.(*PersistentVector)
		return ok && seqEquals(av.Elements, bv.Elements)
	case *PersistentArrayMap:
		return mapEquals(a, b)
	case *PersistentHashMap:
		return mapEquals(a, b)
	case *PersistentHashSet:
		bv, ok := b.(*PersistentHashSet)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for k := range av.Elems {
			if _, found := bv.Elems[k]; !found {
				return false
			}
		}
		return true
	}
	return false
}

func seqEquals(a, b []Object) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equals(a[i], b[i]) {
			return false
		}
	}
	return true
}

// mapEquals compares array maps and hash maps interchangeably: the backing
// representation is a size-driven implementation detail, not an identity.
func mapEquals(a, b Object) bool {
	ap, aok := mapPairs(a)
	bp, bok := mapPairs(b)
	if !aok || !bok || len(ap) != len(bp) {
		return false
	}
	for _, pair := range ap {
		found := false
		for _, other := range bp {
			if Equals(pair.Key, other.Key) && Equals(pair.Value, other.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func mapPairs(o Object) ([]MapPair, bool) {
	switch m := o.(type) {
	case *PersistentArrayMap:
		pairs := make([]MapPair, 0, len(m.Pairs)/2)
		for i := 0; i+1 < len(m.Pairs); i += 2 {
			pairs = append(pairs, MapPair{Key: m.Pairs[i], Value: m.Pairs[i+1]})
		}
		return pairs, true
	case *PersistentHashMap:
		pairs := make([]MapPair, 0, len(m.Pairs))
		for _, pair := range m.Pairs {
			pairs = append(pairs, pair)
		}
		return pairs, true
	}
	return nil, false
}

// DynamicCall invokes a callable with the shared fixed/variadic convention:
// dedicated paths cover 0 through MaxFixedArity arguments; beyond that the
// overflow is packed into one trailing list. Interpreted and compiled calls
// must agree on this boundary exactly.
func DynamicCall(c Callable, args []Object) (Object, error) {
	if len(args) <= MaxFixedArity {
		return c.Invoke(args)
	}
	packed := make([]Object, 0, MaxFixedArity+1)
	packed = append(packed, args[:MaxFixedArity]...)
	packed = append(packed, NewList(args[MaxFixedArity:]))
	return c.Invoke(packed)
}

// Apply calls a value with already-evaluated arguments. Vars are unwrapped
// first, callable objects go through DynamicCall, and keywords, vectors, sets
// and maps act as lookup functions with strict argument counts.
func Apply(callee Object, args []Object) (Object, error) {
	callee = Deref(callee)

	switch c := callee.(type) {
	case Callable:
		return DynamicCall(c, args)
	case *Keyword:
		switch len(args) {
		case 1:
			return c.Get(args[0], NIL), nil
		case 2:
			return c.Get(args[0], args[1]), nil
		}
	case *PersistentVector:
		if len(args) == 1 {
			idx, ok := args[0].(*Integer)
			if !ok {
				return nil, NewEvalError(ErrInvalidCall, "vector index must be an integer, got %s", args[0].Type())
			}
			v, ok := c.Nth(idx.Value)
			if !ok {
				return nil, NewEvalError(ErrInvalidCall, "vector index %d out of bounds", idx.Value)
			}
			return v, nil
		}
	case *PersistentHashSet:
		if len(args) == 1 {
			return c.Lookup(args[0]), nil
		}
	case *PersistentArrayMap:
		switch len(args) {
		case 1, 2:
			if v, ok := c.Get(args[0]); ok {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return NIL, nil
		}
	case *PersistentHashMap:
		switch len(args) {
		case 1, 2:
			if v, ok := c.Get(args[0]); ok {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return NIL, nil
		}
	default:
		return nil, NewEvalError(ErrInvalidCall, "Invalid call with %d args to: %s", len(args), callee.Inspect())
	}

	return nil, NewEvalError(ErrInvalidCall, "Invalid call with %d args to: %s", len(args), callee.Inspect())
}

// ToString renders a value for display: strings come out raw, everything else
// prints its readable form.
func ToString(o Object) string {
	if s, ok := o.(*String); ok {
		return s.Value
	}
	return o.Inspect()
}

// ToCodeString renders a value as readable code.
func ToCodeString(o Object) string {
	return o.Inspect()
}
