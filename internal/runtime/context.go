// Package runtime holds the process-wide interpreter context: namespaces,
// interned vars and keywords, unique name generation, and the dynamic vars
// the evaluator consults. State that belongs to the hosted compiler session
// lives in the jit package instead.
package runtime

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"opal/internal/object"
)

const CoreNs = "opal.core"

// AllowNativeReturnVar names the dynamic var that permits wrapped expressions
// with non-object static types to return their native representation
// unboxed. The check happens at invocation time, so callers can toggle it
// without recompiling.
const AllowNativeReturnVar = "*allow-native-return*"

type Context struct {
	mu         sync.RWMutex
	namespaces map[string]*object.Ns
	keywords   map[string]*object.Keyword
	current    *object.Ns
	counter    atomic.Int64

	// Host carries the values and types reachable from native interop forms.
	Host *Host
}

func NewContext() *Context {
	ctx := &Context{
		namespaces: map[string]*object.Ns{},
		keywords:   map[string]*object.Keyword{},
		Host:       NewHost(),
	}
	core := ctx.InternNs(CoreNs)
	ctx.current = core

	anr := core.Intern(AllowNativeReturnVar)
	anr.SetDynamic(true)
	anr.BindRoot(object.FALSE)
	return ctx
}

func (c *Context) InternNs(name string) *object.Ns {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ns, ok := c.namespaces[name]; ok {
		return ns
	}
	ns := object.NewNs(name)
	c.namespaces[name] = ns
	return ns
}

func (c *Context) FindNs(name string) *object.Ns {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.namespaces[name]
}

func (c *Context) CurrentNs() *object.Ns {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Context) SetCurrentNs(ns *object.Ns) {
	c.mu.Lock()
	c.current = ns
	c.mu.Unlock()
}

// InternVar finds or creates the var for a name. Unqualified names intern
// into the current namespace.
func (c *Context) InternVar(sym *object.Symbol) (*object.Var, error) {
	ns := c.CurrentNs()
	if sym.Ns != "" {
		ns = c.InternNs(sym.Ns)
	}
	return ns.Intern(sym.Name), nil
}

// DefineVar interns the var for sym, binds value when bound is true, copies
// the symbol's metadata onto the var, and honors a truthy :dynamic entry.
func (c *Context) DefineVar(sym *object.Symbol, value object.Object, bound bool) (*object.Var, error) {
	v, err := c.InternVar(sym)
	if err != nil {
		return nil, err
	}
	if sym.Meta != nil {
		v.Meta = sym.Meta
		dyn := (&object.Keyword{Name: "dynamic"}).Get(sym.Meta, object.NIL)
		if object.Truthy(dyn) {
			v.SetDynamic(true)
		}
	}
	if bound {
		v.BindRoot(value)
	}
	return v, nil
}

// FindVar resolves an already-qualified name, returning nil when either the
// namespace or the var is unknown.
func (c *Context) FindVar(qualified string) *object.Var {
	nsName, name, ok := strings.Cut(qualified, "/")
	if !ok {
		nsName = c.CurrentNs().Name
		name = qualified
	}
	ns := c.FindNs(nsName)
	if ns == nil {
		return nil
	}
	return ns.FindVar(name)
}

// InternKeyword returns the canonical keyword instance for ns/name.
func (c *Context) InternKeyword(ns, name string) *object.Keyword {
	key := ns + "/" + name
	c.mu.Lock()
	defer c.mu.Unlock()
	if kw, ok := c.keywords[key]; ok {
		return kw
	}
	kw := &object.Keyword{Ns: ns, Name: name}
	c.keywords[key] = kw
	return kw
}

// UniqueNamespacedString produces a fresh globally-unique name derived from
// prefix, scoped under the current namespace.
func (c *Context) UniqueNamespacedString(prefix string) string {
	n := c.counter.Add(1)
	return fmt.Sprintf("%s/%s_%d", c.CurrentNs().Name, prefix, n)
}

// AllowNativeReturn reads the dynamic flag at call time.
func (c *Context) AllowNativeReturn() bool {
	v := c.FindVar(CoreNs + "/" + AllowNativeReturnVar)
	if v == nil {
		return false
	}
	return object.Truthy(v.Deref())
}

// Binding rebinds a var for a dynamic extent and returns the release
// function. Callers must invoke the release exactly once, usually via defer.
func (c *Context) Binding(v *object.Var, value object.Object) func() {
	old := v.Deref()
	v.BindRoot(value)
	return func() {
		v.BindRoot(old)
	}
}

// NestModule derives a nested module name under parent.
func NestModule(parent, child string) string {
	return parent + "$" + child
}

var mungeTable = map[rune]string{
	'-':  "_",
	'.':  "_",
	'/':  "_SLASH_",
	'?':  "_QMARK_",
	'!':  "_BANG_",
	'*':  "_STAR_",
	'+':  "_PLUS_",
	'>':  "_GT_",
	'<':  "_LT_",
	'=':  "_EQ_",
	'&':  "_AMP_",
	'%':  "_PERCENT_",
	'#':  "_SHARP_",
	'\'': "_SQUOTE_",
	'$':  "_DOLLAR_",
}

// Munge converts a lisp name into an identifier the backend accepts.
func Munge(name string) string {
	var out strings.Builder
	for _, r := range name {
		if repl, ok := mungeTable[r]; ok {
			out.WriteString(repl)
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
