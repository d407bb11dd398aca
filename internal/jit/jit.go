// Package jit holds the hosted compiler session: the accumulating symbol
// table modules register into, plus the cache that recognizes declarations
// the session has seen before. All entry points serialize on one mutex, so
// concurrent evaluations contend here rather than corrupting session state.
package jit

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"opal/internal/cache"
	"opal/internal/codegen"
	"opal/internal/object"
	"opal/internal/runtime"

	"log/slog"
)

type Processor struct {
	mu      sync.Mutex
	ctx     *runtime.Context
	store   *cache.Store
	symbols map[string]*object.Fn
	modules map[string]*codegen.Module
}

// NewProcessor creates a session. store may be nil, in which case declaration
// caching is disabled.
func NewProcessor(ctx *runtime.Context, store *cache.Store) *Processor {
	return &Processor{
		ctx:     ctx,
		store:   store,
		symbols: map[string]*object.Fn{},
		modules: map[string]*codegen.Module{},
	}
}

// LoadModule registers a compiled module's entry symbol in the session.
func (p *Processor) LoadModule(m *codegen.Module) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.register(m)
}

func (p *Processor) register(m *codegen.Module) error {
	if m.Entry == nil {
		return fmt.Errorf("module %s has no entry function", m.Name)
	}
	p.symbols[m.Symbol] = m.Entry
	p.modules[m.Name] = m
	slog.Debug("loaded module",
		slog.String("module", m.Name),
		slog.String("symbol", m.Symbol))
	return nil
}

// FindSymbol resolves a previously registered symbol.
func (p *Processor) FindSymbol(name string) (*object.Fn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn, ok := p.symbols[name]
	if !ok {
		return nil, fmt.Errorf("unresolved symbol: %s", name)
	}
	return fn, nil
}

// EvalDeclaration registers a module from its declaration text, consulting
// the cache so identical declarations are recognized on repeat evaluation.
func (p *Processor) EvalDeclaration(m *codegen.Module) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		hash := cache.Hash(m.Decl)
		if _, hit, err := p.store.Get(hash); err != nil {
			return err
		} else if hit {
			slog.Debug("declaration cache hit", slog.String("module", m.Name))
		} else if err := p.store.Put(hash, m.Name, m.Decl); err != nil {
			return err
		}
	}
	return p.register(m)
}

// ParseAndExecute evaluates an expression against the session's symbol
// table. A bare symbol resolves to its function object; "(symbol arg ...)"
// invokes it. Arguments are limited to integer literals; compiled expressions
// never need more.
func (p *Processor) ParseAndExecute(exprSrc string) (object.Object, error) {
	src := strings.TrimSpace(exprSrc)
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}
	if !strings.HasPrefix(src, "(") {
		if strings.ContainsAny(src, " \t()") {
			return nil, fmt.Errorf("malformed expression: %s", exprSrc)
		}
		fn, err := p.FindSymbol(src)
		if err != nil {
			return nil, err
		}
		return fn, nil
	}
	if !strings.HasSuffix(src, ")") {
		return nil, fmt.Errorf("malformed invocation expression: %s", exprSrc)
	}
	fields := strings.Fields(src[1 : len(src)-1])
	if len(fields) == 0 {
		return nil, fmt.Errorf("malformed invocation expression: %s", exprSrc)
	}

	fn, err := p.FindSymbol(fields[0])
	if err != nil {
		return nil, err
	}

	args := make([]object.Object, 0, len(fields)-1)
	for _, field := range fields[1:] {
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unsupported argument literal %q in: %s", field, exprSrc)
		}
		args = append(args, &object.Integer{Value: n})
	}
	return object.DynamicCall(fn, args)
}
