package analyze

import (
	"opal/internal/object"
)

type FrameType int

const (
	FrameOrdinary FrameType = iota
	FrameFn
)

// LocalBinding ties a local name to the frame that introduced it.
type LocalBinding struct {
	Name  *object.Symbol
	Frame *Frame
}

// Frame is one lexical scope. Parent links are used only for lookup
// chaining; re-parenting during expression wrapping mutates Parent in place.
type Frame struct {
	Type   FrameType
	Parent *Frame
	Locals map[string]*LocalBinding
	// Captures holds bindings defined outside this frame's function that the
	// compiled body must close over. Populated during wrapping and fn
	// analysis, read during codegen.
	Captures map[string]*LocalBinding
	// LiftedVars and LiftedConstants are flat tables of runtime values the
	// compiled body references indirectly. Populated during analysis.
	LiftedVars      map[string]*object.Var
	LiftedConstants []object.Object
	FnCtx           *FunctionContext
}

func NewFrame(typ FrameType, parent *Frame) *Frame {
	return &Frame{
		Type:     typ,
		Parent:   parent,
		Locals:   map[string]*LocalBinding{},
		Captures: map[string]*LocalBinding{},
	}
}

func (f *Frame) AddLocal(sym *object.Symbol) *LocalBinding {
	b := &LocalBinding{Name: sym, Frame: f}
	f.Locals[sym.Name] = b
	return b
}

// FindClosestFnFrame walks the parent chain to the nearest function-type
// frame. Expressions analyzed at the top level have no fn frame, so their
// lifted tables live on the root frame; that root is returned instead.
func (f *Frame) FindClosestFnFrame() *Frame {
	cur := f
	for {
		if cur.Type == FrameFn {
			return cur
		}
		if cur.Parent == nil {
			return cur
		}
		cur = cur.Parent
	}
}

// FoundLocal is a lookup result: the binding plus how many function
// boundaries were crossed to reach it.
type FoundLocal struct {
	Binding    *LocalBinding
	CrossedFns int
}

// FindLocalOrCapture resolves name through the frame chain, counting the
// function boundaries crossed between the reference and the definition.
func (f *Frame) FindLocalOrCapture(name string) (FoundLocal, bool) {
	crossed := 0
	for cur := f; cur != nil; cur = cur.Parent {
		if b, ok := cur.Locals[name]; ok {
			return FoundLocal{Binding: b, CrossedFns: crossed}, true
		}
		if b, ok := cur.Captures[name]; ok {
			return FoundLocal{Binding: b, CrossedFns: crossed}, true
		}
		if cur.Type == FrameFn {
			crossed++
		}
	}
	return FoundLocal{}, false
}

// LiftConstant records a constant in the frame's lifted table.
func (f *Frame) LiftConstant(value object.Object) {
	f.LiftedConstants = append(f.LiftedConstants, value)
}

// LiftVar records a var reference in the frame's lifted table.
func (f *Frame) LiftVar(qualified string, v *object.Var) {
	if f.LiftedVars == nil {
		f.LiftedVars = map[string]*object.Var{}
	}
	f.LiftedVars[qualified] = v
}
