package codegen

import (
	"fmt"
	"strings"

	"opal/internal/analyze"
	"opal/internal/runtime"
)

// renderModule produces the deterministic declaration text for a compiled
// function. The jit session keys its cache on this text, so two structurally
// identical compilations must render byte for byte the same.
func renderModule(moduleName string, fn *analyze.Function) string {
	var out strings.Builder
	out.WriteString("(module ")
	out.WriteString(moduleName)
	out.WriteString("\n  ")
	out.WriteString(renderFn(fn))
	out.WriteString(")\n")
	return out.String()
}

func renderFn(fn *analyze.Function) string {
	var out strings.Builder
	out.WriteString("(fn ")
	out.WriteString(runtime.Munge(fn.UniqueName))
	for _, arity := range fn.Arities {
		out.WriteString("\n    (arity")
		for _, param := range arity.Params {
			out.WriteString(" ")
			out.WriteString(param.Name)
		}
		if arity.Variadic {
			out.WriteString(" :variadic")
		}
		out.WriteString(" ")
		out.WriteString(renderExpr(arity.Body))
		out.WriteString(")")
	}
	out.WriteString(")")
	return out.String()
}

func renderExpr(e analyze.Expr) string {
	switch t := e.(type) {
	case *analyze.PrimitiveLiteral:
		return t.Value.Inspect()
	case *analyze.Def:
		if t.Value == nil {
			return "(def " + t.Name.Qualified() + ")"
		}
		return "(def " + t.Name.Qualified() + " " + renderExpr(t.Value) + ")"
	case *analyze.VarDeref:
		return t.QualifiedName
	case *analyze.VarRef:
		return "#'" + t.QualifiedName
	case *analyze.Call:
		return renderSeq("(call", append([]analyze.Expr{t.Source}, t.Args...))
	case *analyze.If:
		if t.Else == nil {
			return "(if " + renderExpr(t.Condition) + " " + renderExpr(t.Then) + ")"
		}
		return "(if " + renderExpr(t.Condition) + " " + renderExpr(t.Then) + " " + renderExpr(t.Else) + ")"
	case *analyze.Do:
		return renderSeq("(do", t.Values)
	case *analyze.Let:
		head := "(let ["
		if t.Loop {
			head = "(loop ["
		}
		parts := make([]string, 0, len(t.Bindings))
		for _, b := range t.Bindings {
			parts = append(parts, b.Name.Name+" "+renderExpr(b.Value))
		}
		return head + strings.Join(parts, " ") + "] " + renderExpr(t.Body) + ")"
	case *analyze.Letfn:
		parts := make([]string, 0, len(t.Bindings))
		for _, b := range t.Bindings {
			parts = append(parts, b.Name.Name+" "+renderFn(b.Fn))
		}
		return "(letfn [" + strings.Join(parts, " ") + "] " + renderExpr(t.Body) + ")"
	case *analyze.Case:
		var out strings.Builder
		out.WriteString("(case " + renderExpr(t.Value))
		for _, c := range t.Clauses {
			out.WriteString(" " + c.Test.Inspect() + " " + renderExpr(c.Body))
		}
		if t.Default != nil {
			out.WriteString(" " + renderExpr(t.Default))
		}
		out.WriteString(")")
		return out.String()
	case *analyze.LocalReference:
		return t.Name.Name
	case *analyze.Recur:
		return renderSeq("(recur", t.Args)
	case *analyze.RecursionReference:
		return runtime.Munge(t.FnCtx.UniqueName)
	case *analyze.NamedRecursion:
		return renderSeq("(call "+runtime.Munge(t.FnCtx.UniqueName), t.Args)
	case *analyze.Throw:
		return "(throw " + renderExpr(t.Value) + ")"
	case *analyze.Try:
		var out strings.Builder
		out.WriteString("(try " + renderExpr(t.Body))
		if t.CatchBody != nil {
			out.WriteString(" (catch " + t.CatchSym.Name + " " + renderExpr(t.CatchBody) + ")")
		}
		if t.Finally != nil {
			out.WriteString(" (finally " + renderExpr(t.Finally) + ")")
		}
		out.WriteString(")")
		return out.String()
	case *analyze.Function:
		return renderFn(t)
	case *analyze.List:
		return renderSeq("(list", t.Elements)
	case *analyze.Vector:
		return renderSeq("(vector", t.Elements)
	case *analyze.Set:
		return renderSeq("(set", t.Elements)
	case *analyze.Map:
		var out strings.Builder
		out.WriteString("(map")
		for i := range t.Keys {
			out.WriteString(" " + renderExpr(t.Keys[i]) + " " + renderExpr(t.Vals[i]))
		}
		out.WriteString(")")
		return out.String()
	case *analyze.NativeRaw:
		return fmt.Sprintf("(native-raw %q)", t.Code)
	case *analyze.NativeValue:
		return "(native-value " + t.Name + ")"
	case *analyze.NativeCast:
		policy := "into-object"
		if t.Policy == analyze.PolicyNativePrint {
			policy = "native-print"
		}
		return "(native-cast " + policy + " " + renderExpr(t.Value) + ")"
	case *analyze.NativeCall:
		return renderSeq("(native-call "+t.Name, t.Args)
	case *analyze.NativeConstructorCall:
		return renderSeq("(native-constructor "+t.TypeName, t.Args)
	case *analyze.NativeMemberCall:
		return renderSeq("(native-member-call "+t.Method+" "+renderExpr(t.Target), t.Args)
	case *analyze.NativeMemberAccess:
		return "(native-member-access " + t.Field + " " + renderExpr(t.Target) + ")"
	case *analyze.NativeOperatorCall:
		return renderSeq("(native-op "+t.Op, t.Args)
	case *analyze.NativeBox:
		return "(native-box " + renderExpr(t.Value) + ")"
	case *analyze.NativeUnbox:
		return "(native-unbox " + t.TypeName + " " + renderExpr(t.Value) + ")"
	case *analyze.NativeNew:
		return renderSeq("(native-new "+t.TypeName, t.Args)
	case *analyze.NativeDelete:
		return "(native-delete " + renderExpr(t.Target) + ")"
	}
	return "(unknown " + e.Kind().String() + ")"
}

func renderSeq(head string, exprs []analyze.Expr) string {
	var out strings.Builder
	out.WriteString(head)
	for _, e := range exprs {
		out.WriteString(" ")
		out.WriteString(renderExpr(e))
	}
	out.WriteString(")")
	return out.String()
}
