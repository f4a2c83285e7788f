package lsdl

// Peek reads a signal's current value as of the read-out moment. It is
// the measurement every plain signal is implicitly wrapped in when it
// reaches an output metric directly.
func (b *Builder) Peek(signal Handle) Handle {
	decl := map[string]interface{}{"kind": "Peek"}
	h := b.addNode(KindPeek, true, signal.typ, []Ref{signal.ref}, decl)
	return h
}

// builtinDateTimeFormat is the nanosecond-epoch-to-UTC-string layout
// PeekTimestamp renders with, matching the original's default
// formatter: "YYYY-MM-DD HH:MM:SS.ffffff UTC".
const builtinDateTimeFormat = "2006-01-02 15:04:05.000000 UTC"

// PeekTimestamp reads the wall-clock timestamp of the current moment,
// rendered through formatLayout (a Go time layout string; empty means
// the builtin default UTC microsecond format).
func (b *Builder) PeekTimestamp(signal Handle, formatLayout string) Handle {
	if formatLayout == "" {
		formatLayout = builtinDateTimeFormat
	}
	decl := map[string]interface{}{"kind": "PeekTimestamp", "format": formatLayout}
	return b.addNode(KindPeekTimestamp, true, String(), []Ref{signal.ref}, decl)
}

// DurationTrue measures the cumulative nanoseconds signal has spent
// truthy up to the read-out moment. signal must be boolean-typed.
func (b *Builder) DurationTrue(signal Handle) Handle {
	mustBoolType(signal)
	decl := map[string]interface{}{"kind": "DurationTrue"}
	return b.addNode(KindDurationTrue, true, I64(), []Ref{signal.ref}, decl)
}

// DurationSinceBecomeTrue measures the nanoseconds elapsed since
// signal's most recent false-to-true edge; it is zero while signal is
// false.
func (b *Builder) DurationSinceBecomeTrue(signal Handle) Handle {
	mustBoolType(signal)
	decl := map[string]interface{}{"kind": "DurationSinceBecomeTrue"}
	return b.addNode(KindDurationSinceBecomeTrue, true, I64(), []Ref{signal.ref}, decl)
}

// DurationOfCurrentLevel measures the nanoseconds elapsed since
// signal's most recent clock tick (a change of value, of any type).
func (b *Builder) DurationOfCurrentLevel(signal Handle) Handle {
	decl := map[string]interface{}{"kind": "DurationOfCurrentLevel"}
	return b.addNode(KindDurationOfCurrentLevel, true, I64(), []Ref{signal.ref}, decl)
}

// LinearChange measures the time integral of a numeric signal's level
// history: the sum, over each elapsed interval, of the level held
// during it times its length in nanoseconds.
func (b *Builder) LinearChange(signal Handle) Handle {
	decl := map[string]interface{}{"kind": "LinearChange"}
	return b.addNode(KindLinearChange, true, Float64(), []Ref{signal.ref}, decl)
}

// DiffSinceCurrentLevel measures data's current value minus the value
// it held at the moment control most recently changed, via diffExpr
// (an expression over bind vars "current","baseline").
func (b *Builder) DiffSinceCurrentLevel(control, data Handle, diffExpr string, outputType Type) Handle {
	if diffExpr == "" {
		diffExpr = "current - baseline"
	}
	decl := map[string]interface{}{"kind": "DiffSinceCurrentLevel", "diff_expr": diffExpr}
	return b.addNode(KindDiffSinceCurrentLevel, true, outputType, []Ref{control.ref, data.ref}, decl)
}
