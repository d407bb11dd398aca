package runtime

import (
	"errors"
	"strings"
	"testing"

	"opal/internal/object"
)

func TestHostCall(t *testing.T) {
	h := NewHost()
	h.RegisterValue("add", func(a, b int64) int64 { return a + b })

	res, err := h.Call("add", []any{int64(2), int64(40)})
	if err != nil {
		t.Fatalf("call error: %v", err)
	}
	if res.(int64) != 42 {
		t.Errorf("got %v, want 42", res)
	}
}

func TestHostCallConvertsArgs(t *testing.T) {
	h := NewHost()
	h.RegisterValue("half", func(f float64) float64 { return f / 2 })

	res, err := h.Call("half", []any{int64(5)})
	if err != nil {
		t.Fatalf("call error: %v", err)
	}
	if res.(float64) != 2.5 {
		t.Errorf("got %v, want 2.5", res)
	}
}

func TestHostCallVariadic(t *testing.T) {
	h := NewHost()
	h.RegisterValue("join", func(sep string, parts ...string) string {
		return strings.Join(parts, sep)
	})

	res, err := h.Call("join", []any{"-", "a", "b", "c"})
	if err != nil {
		t.Fatalf("call error: %v", err)
	}
	if res.(string) != "a-b-c" {
		t.Errorf("got %q, want %q", res, "a-b-c")
	}
}

func TestHostCallErrorReturn(t *testing.T) {
	boom := errors.New("boom")
	h := NewHost()
	h.RegisterValue("fail", func() (int64, error) { return 0, boom })
	h.RegisterValue("ok", func() (int64, error) { return 9, nil })

	if _, err := h.Call("fail", nil); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	res, err := h.Call("ok", nil)
	if err != nil || res.(int64) != 9 {
		t.Errorf("got %v, %v", res, err)
	}
}

func TestHostCallArityErrors(t *testing.T) {
	h := NewHost()
	h.RegisterValue("one", func(int64) {})
	h.RegisterValue("notfn", 5)

	if _, err := h.Call("one", nil); err == nil {
		t.Errorf("missing argument not reported")
	}
	if _, err := h.Call("notfn", nil); err == nil {
		t.Errorf("non-function registration not reported")
	}
	if _, err := h.Call("unknown", nil); err == nil {
		t.Errorf("unknown function not reported")
	}
}

type point struct {
	X int64
	Y int64
}

func (p point) Sum() int64     { return p.X + p.Y }
func (p *point) Shift(d int64) { p.X += d }

func TestHostNew(t *testing.T) {
	h := NewHost()
	h.RegisterType("point", point{})

	raw, err := h.New("point", []any{int64(3), int64(4)})
	if err != nil {
		t.Fatalf("new error: %v", err)
	}
	p := raw.(*point)
	if p.X != 3 || p.Y != 4 {
		t.Errorf("constructed %+v", *p)
	}

	zero, err := h.New("point", nil)
	if err != nil {
		t.Fatalf("zero-value new error: %v", err)
	}
	if z := zero.(*point); z.X != 0 || z.Y != 0 {
		t.Errorf("zero value is %+v", *z)
	}

	if _, err := h.New("point", []any{int64(1), int64(2), int64(3)}); err == nil {
		t.Errorf("excess constructor arguments not reported")
	}
	if _, err := h.New("missing", nil); err == nil {
		t.Errorf("unknown type not reported")
	}
}

func TestHostMemberCall(t *testing.T) {
	h := NewHost()
	p := &point{X: 3, Y: 4}

	res, err := h.MemberCall(p, "Sum", nil)
	if err != nil {
		t.Fatalf("member call error: %v", err)
	}
	if res.(int64) != 7 {
		t.Errorf("got %v, want 7", res)
	}

	// Pointer-receiver methods reach values too.
	if _, err := h.MemberCall(point{X: 1}, "Shift", []any{int64(5)}); err != nil {
		t.Errorf("pointer-receiver call on value failed: %v", err)
	}

	if _, err := h.MemberCall(p, "Missing", nil); err == nil {
		t.Errorf("unknown method not reported")
	}
}

func TestHostMemberAccess(t *testing.T) {
	h := NewHost()
	p := &point{X: 11, Y: 22}

	res, err := h.MemberAccess(p, "Y")
	if err != nil {
		t.Fatalf("member access error: %v", err)
	}
	if res.(int64) != 22 {
		t.Errorf("got %v, want 22", res)
	}
	if _, err := h.MemberAccess(p, "Z"); err == nil {
		t.Errorf("unknown field not reported")
	}
	if _, err := h.MemberAccess(int64(1), "X"); err == nil {
		t.Errorf("field access on non-struct not reported")
	}
}

func TestHostOperator(t *testing.T) {
	h := NewHost()

	cases := []struct {
		op   string
		args []any
		want any
	}{
		{"+", []any{int64(1), int64(2), int64(3)}, int64(6)},
		{"-", []any{int64(10), int64(3)}, int64(7)},
		{"*", []any{int64(2), float64(1.5)}, float64(3)},
		{"/", []any{int64(7), int64(2)}, int64(3)},
		{"<", []any{int64(1), int64(2)}, true},
		{">=", []any{float64(2), int64(2)}, true},
		{"+", []any{"foo", "bar"}, "foobar"},
		{"==", []any{"a", "a"}, true},
	}
	for _, c := range cases {
		got, err := h.Operator(c.op, c.args)
		if err != nil {
			t.Errorf("%q %v: %v", c.op, c.args, err)
			continue
		}
		if got != c.want {
			t.Errorf("%q %v = %v, want %v", c.op, c.args, got, c.want)
		}
	}

	if _, err := h.Operator("/", []any{int64(1), int64(0)}); err == nil {
		t.Errorf("integer division by zero not reported")
	}
	if _, err := h.Operator("+", []any{"s", int64(1)}); err == nil {
		t.Errorf("mismatched operand types not reported")
	}
	if _, err := h.Operator("**", []any{int64(1), int64(2)}); err == nil {
		t.Errorf("unknown operator not reported")
	}
}

func TestHostRawrequiresEvaluator(t *testing.T) {
	h := NewHost()
	if _, err := h.Raw("anything"); err == nil {
		t.Fatalf("raw without an evaluator should fail")
	}
	h.EvalRaw = func(code string) (any, error) { return code + "!", nil }
	res, err := h.Raw("hi")
	if err != nil || res.(string) != "hi!" {
		t.Errorf("got %v, %v", res, err)
	}
}

func TestIntoObjectFromObjectRoundTrip(t *testing.T) {
	cases := []struct {
		in   any
		want object.Object
	}{
		{nil, object.NIL},
		{true, object.TRUE},
		{int64(5), &object.Integer{Value: 5}},
		{3.5, &object.Float{Value: 3.5}},
		{"s", &object.String{Value: "s"}},
	}
	for _, c := range cases {
		got := IntoObject(c.in)
		if !object.Equals(got, c.want) {
			t.Errorf("IntoObject(%v) = %s, want %s", c.in, got.Inspect(), c.want.Inspect())
		}
	}

	p := &point{X: 1}
	boxed := IntoObject(p)
	nv, ok := boxed.(*object.NativeValue)
	if !ok || nv.Value != any(p) {
		t.Errorf("struct pointer should ride in a native value, got %s", boxed.Inspect())
	}
	if FromObject(boxed) != any(p) {
		t.Errorf("unboxing did not return the original pointer")
	}

	if FromObject(&object.Integer{Value: 7}) != int64(7) {
		t.Errorf("integer unboxing failed")
	}
}

func TestStringizeNative(t *testing.T) {
	if s := StringizeNative(int64(42)); s.Value != "42" {
		t.Errorf("got %q", s.Value)
	}
}
