package lsdl

import "fmt"

// Const wraps a literal Go value as a constant-valued Handle. If hint is
// the unknown type, the type is inferred from the Go value's dynamic
// type the same way the original builder inferred types for literal
// arguments (int -> i32, string -> string, float64 -> f64, bool -> bool).
func (b *Builder) Const(value interface{}, hint Type) Handle {
	t := hint
	if t.IsUnknown() {
		t = inferLiteralType(value)
	}
	rendered, err := t.RenderLiteral(value)
	if err != nil {
		panic(fmt.Sprintf("lsdl: cannot render constant %v: %v", value, err))
	}
	return Handle{
		b:   b,
		ref: Ref{Kind: RefConstant, ConstValue: rendered, ConstType: t.TypeName()},
		typ: t,
	}
}

func inferLiteralType(value interface{}) Type {
	switch value.(type) {
	case bool:
		return Bool()
	case string:
		return String()
	case float32, float64:
		return Float64()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return I32()
	default:
		return Unknown()
	}
}

// Input resolves a schema member to a Handle referencing the input
// signal directly (not wrapped in Peek -- see AddMetric for the
// signal/measurement parity rule).
func (b *Builder) Input(name string) Handle {
	m, err := b.Schema.Member(name)
	if err != nil {
		panic(err)
	}
	return Handle{b: b, ref: Ref{Kind: RefInputSignal, InputName: name}, typ: m.Type}
}

// InputClock resolves the companion clock of a schema member.
func (b *Builder) InputClock(name string) Handle {
	m, err := b.Schema.Member(name)
	if err != nil {
		panic(err)
	}
	return Handle{b: b, ref: Ref{Kind: RefInputSignal, InputName: m.ClockName()}, typ: U64()}
}
