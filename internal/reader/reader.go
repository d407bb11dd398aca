// Package reader turns source text into data forms: lists, vectors, maps,
// sets, symbols, keywords, and literals. The analyzer consumes these forms;
// the evaluator never sees raw text.
package reader

import (
	"errors"
	"fmt"
	"strconv"

	"opal/internal/lexer"
	"opal/internal/object"
	"opal/internal/runtime"
	"opal/internal/token"
)

// ErrIncomplete reports source that ends in the middle of a form. The REPL
// uses it to decide whether to keep prompting for continuation lines.
var ErrIncomplete = errors.New("unexpected end of input")

type Reader struct {
	l   *lexer.Lexer
	ctx *runtime.Context
	cur token.Token
}

func New(input string, ctx *runtime.Context) *Reader {
	r := &Reader{l: lexer.New(input), ctx: ctx}
	r.next()
	return r
}

func (r *Reader) next() {
	r.cur = r.l.NextToken()
}

// ReadAll reads every top-level form in the input.
func (r *Reader) ReadAll() ([]object.Object, error) {
	var forms []object.Object
	for r.cur.Type != token.EOF {
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		if form != nil {
			forms = append(forms, form)
		}
	}
	return forms, nil
}

func (r *Reader) readForm() (object.Object, error) {
	switch r.cur.Type {
	case token.EOF:
		return nil, fmt.Errorf("%w at position %d", ErrIncomplete, r.cur.Position)

	case token.INTEGER:
		v, err := strconv.ParseInt(r.cur.Literal, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q at position %d", r.cur.Literal, r.cur.Position)
		}
		r.next()
		return &object.Integer{Value: v}, nil

	case token.FLOAT:
		v, err := strconv.ParseFloat(r.cur.Literal, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q at position %d", r.cur.Literal, r.cur.Position)
		}
		r.next()
		return &object.Float{Value: v}, nil

	case token.STRING:
		s := &object.String{Value: r.cur.Literal}
		r.next()
		return s, nil

	case token.KEYWORD:
		ns, name := splitQualified(r.cur.Literal)
		r.next()
		return r.ctx.InternKeyword(ns, name), nil

	case token.SYMBOL:
		lit := r.cur.Literal
		r.next()
		switch lit {
		case "nil":
			return object.NIL, nil
		case "true":
			return object.TRUE, nil
		case "false":
			return object.FALSE, nil
		}
		ns, name := splitQualified(lit)
		return &object.Symbol{Ns: ns, Name: name}, nil

	case token.LPAREN:
		elements, err := r.readSeq(token.RPAREN)
		if err != nil {
			return nil, err
		}
		return object.NewList(elements), nil

	case token.LBRACKET:
		elements, err := r.readSeq(token.RBRACKET)
		if err != nil {
			return nil, err
		}
		return &object.PersistentVector{Elements: elements}, nil

	case token.LBRACE:
		elements, err := r.readSeq(token.RBRACE)
		if err != nil {
			return nil, err
		}
		if len(elements)%2 != 0 {
			return nil, fmt.Errorf("map literal must contain an even number of forms")
		}
		return &object.PersistentArrayMap{Pairs: elements}, nil

	case token.SETOPEN:
		elements, err := r.readSeq(token.RBRACE)
		if err != nil {
			return nil, err
		}
		set := &object.PersistentHashSet{Elems: map[object.MapKey]object.Object{}}
		for _, e := range elements {
			h, ok := e.(object.Hashable)
			if !ok {
				return nil, fmt.Errorf("unusable as set element: %s", e.Type())
			}
			set.Elems[h.MapKey()] = e
		}
		return set, nil

	case token.QUOTE:
		r.next()
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		return object.NewList([]object.Object{&object.Symbol{Name: "quote"}, form}), nil

	case token.DEREF:
		r.next()
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		return object.NewList([]object.Object{&object.Symbol{Name: "deref"}, form}), nil

	case token.VARREF:
		r.next()
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		return object.NewList([]object.Object{&object.Symbol{Name: "var"}, form}), nil

	case token.META:
		r.next()
		meta, err := r.readForm()
		if err != nil {
			return nil, err
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		return attachMeta(form, normalizeMeta(meta, r.ctx))
	case token.DISCARD:
		r.next()
		if _, err := r.readForm(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return nil, fmt.Errorf("unexpected token %q at position %d", r.cur.Literal, r.cur.Position)
}

func (r *Reader) readSeq(closing token.TokenType) ([]object.Object, error) {
	opening := r.cur
	r.next()
	var elements []object.Object
	for {
		switch r.cur.Type {
		case closing:
			r.next()
			return elements, nil
		case token.EOF:
			return nil, fmt.Errorf("%w: unclosed %q at position %d", ErrIncomplete, opening.Literal, opening.Position)
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		if form != nil {
			elements = append(elements, form)
		}
	}
}

// normalizeMeta expands the ^:kw shorthand into {:kw true}.
func normalizeMeta(meta object.Object, ctx *runtime.Context) object.Object {
	if kw, ok := meta.(*object.Keyword); ok {
		return &object.PersistentArrayMap{Pairs: []object.Object{kw, object.TRUE}}
	}
	return meta
}

func attachMeta(form, meta object.Object) (object.Object, error) {
	m, ok := form.(object.Metable)
	if !ok {
		return nil, fmt.Errorf("metadata not supported on %s", form.Type())
	}
	return m.WithMeta(meta), nil
}

func splitQualified(lit string) (string, string) {
	for i := 0; i < len(lit); i++ {
		// A leading slash is the division symbol, not a separator.
		if lit[i] == '/' && i > 0 && i < len(lit)-1 {
			return lit[:i], lit[i+1:]
		}
	}
	return "", lit
}

// IsIncomplete reports whether err means the source text stopped mid-form.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}
