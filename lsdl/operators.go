package lsdl

import "fmt"

// mapperDecl is the node_decl payload for a SignalMapper: an expression
// in the executor's small closed sublanguage, closing over the ordered
// bind variables a0..aN-1, one per upstream.
type mapperDecl struct {
	Kind     string   `json:"kind"`
	BindVars []string `json:"bind_vars"`
	Expr     string   `json:"expr"`
}

// Map applies a pure expression over this signal's current value,
// binding it to "a0". It is the general-purpose escape hatch operator
// overloads are built on top of.
func (h Handle) Map(expr string, outputType Type) Handle {
	decl := mapperDecl{Kind: "SignalMapper", BindVars: []string{"a0"}, Expr: expr}
	return h.b.addNode(KindSignalMapper, false, outputType, []Ref{h.ref}, decl)
}

// mapN builds a mapper over an arbitrary tuple of upstream handles.
func mapN(b *Builder, expr string, outputType Type, ups ...Handle) Handle {
	bindVars := make([]string, len(ups))
	refs := make([]Ref, len(ups))
	for i, u := range ups {
		bindVars[i] = fmt.Sprintf("a%d", i)
		refs[i] = u.ref
	}
	decl := mapperDecl{Kind: "SignalMapper", BindVars: bindVars, Expr: expr}
	return b.addNode(KindSignalMapper, false, outputType, refs, decl)
}

func (h Handle) binOp(other interface{}, op string, outputType Type) Handle {
	rhs := h.b.toHandle(other, h.typ)
	expr := fmt.Sprintf("a0 %s a1", op)
	return mapN(h.b, expr, outputType, h, rhs)
}

// toHandle wraps a raw Go literal into a Const handle, or passes an
// existing Handle through unchanged.
func (b *Builder) toHandle(v interface{}, hint Type) Handle {
	if h, ok := v.(Handle); ok {
		return h
	}
	return b.Const(v, hint)
}

func (h Handle) Eq(other interface{}) Handle { return h.binOp(other, "==", Bool()) }
func (h Handle) Ne(other interface{}) Handle { return h.binOp(other, "!=", Bool()) }
func (h Handle) Lt(other interface{}) Handle { return h.binOp(other, "<", Bool()) }
func (h Handle) Gt(other interface{}) Handle { return h.binOp(other, ">", Bool()) }
func (h Handle) Le(other interface{}) Handle { return h.binOp(other, "<=", Bool()) }
func (h Handle) Ge(other interface{}) Handle { return h.binOp(other, ">=", Bool()) }
func (h Handle) And(other interface{}) Handle { return h.binOp(other, "&&", Bool()) }
func (h Handle) Or(other interface{}) Handle  { return h.binOp(other, "||", Bool()) }
func (h Handle) Xor(other interface{}) Handle { return h.binOp(other, "^", Bool()) }
func (h Handle) Add(other interface{}) Handle { return h.binOp(other, "+", h.typ) }
func (h Handle) Sub(other interface{}) Handle { return h.binOp(other, "-", h.typ) }
func (h Handle) Mul(other interface{}) Handle { return h.binOp(other, "*", h.typ) }
func (h Handle) Div(other interface{}) Handle { return h.binOp(other, "/", h.typ) }

// Not is the unary `~`/`!` overload: logical negation for booleans.
func (h Handle) Not() Handle {
	decl := mapperDecl{Kind: "SignalMapper", BindVars: []string{"a0"}, Expr: "!a0"}
	return h.b.addNode(KindSignalMapper, false, Bool(), []Ref{h.ref}, decl)
}

// MakeTuple packs several signals into one tuple-typed signal, itself a
// signal mapper cloning its upstream tuple.
func MakeTuple(b *Builder, handles ...Handle) Handle {
	bindVars := make([]string, len(handles))
	for i := range handles {
		bindVars[i] = fmt.Sprintf("a%d", i)
	}
	elemTypes := make([]Type, len(handles))
	for i, h := range handles {
		elemTypes[i] = h.typ
	}
	return mapN(b, "("+joinBindVars(bindVars)+")", Tuple(elemTypes...), handles...)
}

func joinBindVars(vars []string) string {
	out := ""
	for i, v := range vars {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}
