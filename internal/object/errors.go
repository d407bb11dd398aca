package object

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so callers can tell a rejected input
// apart from a backend fault.
type ErrorKind string

const (
	ErrUnsupportedEval ErrorKind = "unsupported-evaluation"
	ErrInvalidCall     ErrorKind = "invalid-call"
	ErrCodegenFailure  ErrorKind = "internal-codegen-failure"
)

// EvalError is an engine-level failure. It is distinct from Unwind, which
// carries a user value thrown from lisp code.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Source  string // printable originating form, "" when unknown
}

func (e *EvalError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s (in %s)", e.Message, e.Source)
	}
	return e.Message
}

func NewEvalError(kind ErrorKind, format string, a ...interface{}) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// WithSource attaches the originating form to err when err is an EvalError
// that does not already carry one.
func WithSource(err error, form Object) error {
	var ee *EvalError
	if errors.As(err, &ee) && ee.Source == "" {
		ee.Source = form.Inspect()
	}
	return err
}

// Unwind carries a thrown lisp value up the Go stack as an error.
type Unwind struct {
	Value Object
}

func (u *Unwind) Error() string {
	return "uncaught throw: " + u.Value.Inspect()
}

func Throw(value Object) error {
	return &Unwind{Value: value}
}

// AsUnwind extracts the thrown value when err represents a lisp throw.
func AsUnwind(err error) (*Unwind, bool) {
	var u *Unwind
	if errors.As(err, &u) {
		return u, true
	}
	return nil, false
}
