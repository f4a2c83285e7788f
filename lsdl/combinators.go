package lsdl

import "fmt"

// MapMeasurement applies a pure expression over a measurement's
// read-out value, binding it to "a0". Unlike Handle.Map (a signal
// mapper), this produces another measurement, not a signal.
func (b *Builder) MapMeasurement(m Handle, expr string, outputType Type) Handle {
	mustMeasurement(m, "MapMeasurement")
	decl := mapperDecl{Kind: "MappedMeasurement", BindVars: []string{"a0"}, Expr: expr}
	return b.addNode(KindMeasurementMapper, true, outputType, []Ref{m.ref}, decl)
}

// ScopeMeasurement restricts a measurement to only the history within
// the current level of scope: its read-out is the measurement's value
// minus the value it had when scope last changed value, so it reflects
// only "since the current scope level began."
func (b *Builder) ScopeMeasurement(scope, m Handle) Handle {
	mustMeasurement(m, "ScopeMeasurement")
	decl := map[string]interface{}{"kind": "ScopedMeasurement"}
	return b.addNode(KindMeasurementScope, true, m.typ, []Ref{scope.ref, m.ref}, decl)
}

// CombineMeasurements combines two measurements' read-out values with a
// pure binary expression over bind vars "a0","a1".
func (b *Builder) CombineMeasurements(lhs, rhs Handle, expr string, outputType Type) Handle {
	mustMeasurement(lhs, "CombineMeasurements")
	mustMeasurement(rhs, "CombineMeasurements")
	decl := mapperDecl{Kind: "BinaryCombinedMeasurement", BindVars: []string{"a0", "a1"}, Expr: expr}
	return b.addNode(KindMeasurementBinary, true, outputType, []Ref{lhs.ref, rhs.ref}, decl)
}

func mustMeasurement(h Handle, who string) {
	if !h.isMeasurement {
		panic(fmt.Sprintf("lsdl: %s requires a measurement handle, got a signal", who))
	}
}
