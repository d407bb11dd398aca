package object

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	NIL_OBJ     = "NIL"
	BOOLEAN_OBJ = "BOOLEAN"
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	STRING_OBJ  = "STRING"
	SYMBOL_OBJ  = "SYMBOL"
	KEYWORD_OBJ = "KEYWORD"

	LIST_OBJ      = "LIST"
	VECTOR_OBJ    = "VECTOR"
	ARRAY_MAP_OBJ = "ARRAY_MAP"
	HASH_MAP_OBJ  = "HASH_MAP"
	HASH_SET_OBJ  = "HASH_SET"

	VAR_OBJ    = "VAR"
	NS_OBJ     = "NS"
	FN_OBJ     = "FN"
	GO_FN_OBJ  = "GO_FN"
	NATIVE_OBJ = "NATIVE"
)

// MaxFixedArity is the largest argument count with a dedicated call path.
// Calls beyond it pack the overflow into a single trailing list. The closure
// backend relies on the identical packing, so this constant is shared.
const MaxFixedArity = 10

// ArrayMapMaxSize is the entry count at which map literals switch from the
// flat array-backed representation to the hashed one.
const ArrayMapMaxSize = 8

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Metable is implemented by values that can carry a metadata map.
type Metable interface {
	Object
	Metadata() Object
	WithMeta(meta Object) Object
}

type Hashable interface {
	Object
	MapKey() MapKey
}

type MapKey struct {
	Type  ObjectType
	Value uint64
}

// Callable is the generic invocation protocol. Values that are "callable" in
// the data-structure sense (keywords, vectors, sets, maps) are not Callable;
// the evaluator dispatches those through their own lookup operations.
type Callable interface {
	Object
	Invoke(args []Object) (Object, error)
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }
func (n *Nil) MapKey() MapKey   { return MapKey{Type: NIL_OBJ, Value: 0} }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) MapKey() MapKey {
	var v uint64
	if b.Value {
		v = 1
	}
	return MapKey{Type: b.Type(), Value: v}
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) MapKey() MapKey {
	return MapKey{Type: i.Type(), Value: uint64(i.Value)}
}

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (f *Float) MapKey() MapKey {
	return MapKey{Type: f.Type(), Value: math.Float64bits(f.Value)}
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }
func (s *String) MapKey() MapKey {
	h := fnv.New64a()
	h.Write([]byte(s.Value))
	return MapKey{Type: s.Type(), Value: h.Sum64()}
}

// Symbol is an identifier, optionally namespace-qualified, optionally
// carrying metadata attached by the reader.
type Symbol struct {
	Ns   string
	Name string
	Meta Object
}

func (s *Symbol) Type() ObjectType { return SYMBOL_OBJ }
func (s *Symbol) Inspect() string  { return s.Qualified() }
func (s *Symbol) Qualified() string {
	if s.Ns != "" {
		return s.Ns + "/" + s.Name
	}
	return s.Name
}
func (s *Symbol) MapKey() MapKey {
	h := fnv.New64a()
	h.Write([]byte(s.Ns))
	h.Write([]byte{'/'})
	h.Write([]byte(s.Name))
	return MapKey{Type: s.Type(), Value: h.Sum64()}
}
func (s *Symbol) Metadata() Object { return s.Meta }
func (s *Symbol) WithMeta(meta Object) Object {
	return &Symbol{Ns: s.Ns, Name: s.Name, Meta: meta}
}

// Keyword instances are interned by the runtime context: there is exactly one
// canonical instance per ns/name pair, so identity comparison is sound.
type Keyword struct {
	Ns   string
	Name string
}

func (k *Keyword) Type() ObjectType { return KEYWORD_OBJ }
func (k *Keyword) Inspect() string {
	if k.Ns != "" {
		return ":" + k.Ns + "/" + k.Name
	}
	return ":" + k.Name
}
func (k *Keyword) MapKey() MapKey {
	h := fnv.New64a()
	h.Write([]byte(k.Ns))
	h.Write([]byte{'/'})
	h.Write([]byte(k.Name))
	return MapKey{Type: k.Type(), Value: h.Sum64()}
}

// Get looks the keyword up in an associative value, with an optional default.
func (k *Keyword) Get(coll Object, fallback Object) Object {
	switch c := coll.(type) {
	case *PersistentArrayMap:
		if v, ok := c.Get(k); ok {
			return v
		}
	case *PersistentHashMap:
		if v, ok := c.Get(k); ok {
			return v
		}
	case *PersistentHashSet:
		if c.Contains(k) {
			return k
		}
	}
	return fallback
}

type PersistentList struct {
	Meta     Object
	Elements []Object
}

func NewList(elements []Object) *PersistentList {
	return &PersistentList{Elements: elements}
}

func (l *PersistentList) Type() ObjectType { return LIST_OBJ }
func (l *PersistentList) Inspect() string {
	return inspectSeq("(", ")", l.Elements)
}
func (l *PersistentList) Metadata() Object { return l.Meta }
func (l *PersistentList) WithMeta(meta Object) Object {
	return &PersistentList{Meta: meta, Elements: l.Elements}
}

type PersistentVector struct {
	Meta     Object
	Elements []Object
}

func (v *PersistentVector) Type() ObjectType { return VECTOR_OBJ }
func (v *PersistentVector) Inspect() string {
	return inspectSeq("[", "]", v.Elements)
}
func (v *PersistentVector) Metadata() Object { return v.Meta }
func (v *PersistentVector) WithMeta(meta Object) Object {
	return &PersistentVector{Meta: meta, Elements: v.Elements}
}

// Nth returns the element at idx, reporting whether it was in range.
func (v *PersistentVector) Nth(idx int64) (Object, bool) {
	if idx < 0 || idx >= int64(len(v.Elements)) {
		return nil, false
	}
	return v.Elements[idx], true
}

type MapPair struct {
	Key   Object
	Value Object
}

// PersistentArrayMap keeps entries in insertion order as a flat [k v k v ...]
// slice. Lookup is linear, which is the right trade below ArrayMapMaxSize.
type PersistentArrayMap struct {
	Meta  Object
	Pairs []Object
}

func (m *PersistentArrayMap) Type() ObjectType { return ARRAY_MAP_OBJ }
func (m *PersistentArrayMap) Inspect() string {
	var out bytes.Buffer
	out.WriteString("{")
	parts := []string{}
	for i := 0; i+1 < len(m.Pairs); i += 2 {
		parts = append(parts, m.Pairs[i].Inspect()+" "+m.Pairs[i+1].Inspect())
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString("}")
	return out.String()
}
func (m *PersistentArrayMap) Metadata() Object { return m.Meta }
func (m *PersistentArrayMap) WithMeta(meta Object) Object {
	return &PersistentArrayMap{Meta: meta, Pairs: m.Pairs}
}
func (m *PersistentArrayMap) Count() int { return len(m.Pairs) / 2 }
func (m *PersistentArrayMap) Get(k Object) (Object, bool) {
	for i := 0; i+1 < len(m.Pairs); i += 2 {
		if Equals(m.Pairs[i], k) {
			return m.Pairs[i+1], true
		}
	}
	return nil, false
}

type PersistentHashMap struct {
	Meta  Object
	Pairs map[MapKey]MapPair
}

func (m *PersistentHashMap) Type() ObjectType { return HASH_MAP_OBJ }
func (m *PersistentHashMap) Inspect() string {
	parts := []string{}
	for _, pair := range m.Pairs {
		parts = append(parts, pair.Key.Inspect()+" "+pair.Value.Inspect())
	}
	// Map iteration order is unspecified; sort for stable printing.
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
func (m *PersistentHashMap) Metadata() Object { return m.Meta }
func (m *PersistentHashMap) WithMeta(meta Object) Object {
	return &PersistentHashMap{Meta: meta, Pairs: m.Pairs}
}
func (m *PersistentHashMap) Count() int { return len(m.Pairs) }
func (m *PersistentHashMap) Get(k Object) (Object, bool) {
	h, ok := k.(Hashable)
	if !ok {
		return nil, false
	}
	pair, ok := m.Pairs[h.MapKey()]
	if !ok {
		return nil, false
	}
	return pair.Value, true
}
func (m *PersistentHashMap) Put(k Hashable, v Object) *PersistentHashMap {
	if m.Pairs == nil {
		m.Pairs = map[MapKey]MapPair{}
	}
	m.Pairs[k.MapKey()] = MapPair{Key: k, Value: v}
	return m
}

type PersistentHashSet struct {
	Meta  Object
	Elems map[MapKey]Object
}

func (s *PersistentHashSet) Type() ObjectType { return HASH_SET_OBJ }
func (s *PersistentHashSet) Inspect() string {
	parts := []string{}
	for _, e := range s.Elems {
		parts = append(parts, e.Inspect())
	}
	sort.Strings(parts)
	return "#{" + strings.Join(parts, " ") + "}"
}
func (s *PersistentHashSet) Metadata() Object { return s.Meta }
func (s *PersistentHashSet) WithMeta(meta Object) Object {
	return &PersistentHashSet{Meta: meta, Elems: s.Elems}
}
func (s *PersistentHashSet) Contains(o Object) bool {
	h, ok := o.(Hashable)
	if !ok {
		return false
	}
	_, found := s.Elems[h.MapKey()]
	return found
}

// Lookup returns the stored element equal to o, or nil.
func (s *PersistentHashSet) Lookup(o Object) Object {
	h, ok := o.(Hashable)
	if !ok {
		return NIL
	}
	if e, found := s.Elems[h.MapKey()]; found {
		return e
	}
	return NIL
}

// Var is a named, mutable root binding within a namespace.
type Var struct {
	mu      sync.RWMutex
	Ns      string
	Name    string
	Meta    Object
	root    Object
	dynamic bool
}

func (v *Var) Type() ObjectType { return VAR_OBJ }
func (v *Var) Inspect() string  { return "#'" + v.Qualified() }
func (v *Var) Qualified() string {
	return v.Ns + "/" + v.Name
}

func (v *Var) Deref() Object {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.root == nil {
		return NIL
	}
	return v.root
}

func (v *Var) BindRoot(value Object) {
	v.mu.Lock()
	v.root = value
	v.mu.Unlock()
}

func (v *Var) SetDynamic(dynamic bool) {
	v.mu.Lock()
	v.dynamic = dynamic
	v.mu.Unlock()
}

func (v *Var) IsDynamic() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dynamic
}

type Ns struct {
	mu   sync.RWMutex
	Name string
	Vars map[string]*Var
}

func NewNs(name string) *Ns {
	return &Ns{Name: name, Vars: map[string]*Var{}}
}

func (n *Ns) Type() ObjectType { return NS_OBJ }
func (n *Ns) Inspect() string  { return n.Name }

func (n *Ns) Intern(name string) *Var {
	n.mu.Lock()
	defer n.mu.Unlock()
	if v, ok := n.Vars[name]; ok {
		return v
	}
	v := &Var{Ns: n.Name, Name: name}
	n.Vars[name] = v
	return v
}

func (n *Ns) FindVar(name string) *Var {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.Vars[name]
}

// FnArity is one compiled arity of a function. Body receives exactly
// ParamCount arguments; variadic arities receive ParamCount fixed arguments
// plus the rest list as one extra trailing argument.
type FnArity struct {
	ParamCount int
	Variadic   bool
	Body       func(args []Object) (Object, error)
}

// Fn is a compiled callable produced by the backend.
type Fn struct {
	Name       string
	UniqueName string
	Meta       Object
	Arities    []*FnArity
}

func (f *Fn) Type() ObjectType { return FN_OBJ }
func (f *Fn) Inspect() string {
	name := f.Name
	if name == "" {
		name = "fn"
	}
	return "#<fn " + name + ">"
}

func (f *Fn) Invoke(args []Object) (Object, error) {
	// Flatten convention-packed overflow before binding against our own
	// arities; the packing boundary is shared with the call dispatcher.
	if len(args) == MaxFixedArity+1 {
		if rest, ok := args[MaxFixedArity].(*PersistentList); ok {
			flat := make([]Object, 0, MaxFixedArity+len(rest.Elements))
			flat = append(flat, args[:MaxFixedArity]...)
			flat = append(flat, rest.Elements...)
			args = flat
		}
	}

	var variadic *FnArity
	for _, arity := range f.Arities {
		if !arity.Variadic && arity.ParamCount == len(args) {
			return arity.Body(args)
		}
		if arity.Variadic && arity.ParamCount <= len(args) {
			if variadic == nil || arity.ParamCount > variadic.ParamCount {
				variadic = arity
			}
		}
	}
	if variadic != nil {
		fixed := make([]Object, 0, variadic.ParamCount+1)
		fixed = append(fixed, args[:variadic.ParamCount]...)
		fixed = append(fixed, NewList(args[variadic.ParamCount:]))
		return variadic.Body(fixed)
	}
	return nil, fmt.Errorf("wrong number of args (%d) passed to %s", len(args), f.Inspect())
}

// GoFn is a host function exposed to opal code. It receives arguments exactly
// as the call dispatcher packed them.
type GoFn struct {
	Name string
	Fn   func(args []Object) (Object, error)
}

func (g *GoFn) Type() ObjectType { return GO_FN_OBJ }
func (g *GoFn) Inspect() string  { return "#<go-fn " + g.Name + ">" }
func (g *GoFn) Invoke(args []Object) (Object, error) {
	return g.Fn(args)
}

// NativeValue boxes an arbitrary host value flowing through the interop forms.
type NativeValue struct {
	Value any
}

func (n *NativeValue) Type() ObjectType { return NATIVE_OBJ }
func (n *NativeValue) Inspect() string  { return fmt.Sprintf("#<native %v>", n.Value) }

func inspectSeq(open, close string, elements []Object) string {
	var out bytes.Buffer
	out.WriteString(open)
	parts := []string{}
	for _, e := range elements {
		parts = append(parts, e.Inspect())
	}
	out.WriteString(strings.Join(parts, " "))
	out.WriteString(close)
	return out.String()
}
