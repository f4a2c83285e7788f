package lsdl

import "fmt"

// latchDecl is the node_decl payload shared by the level- and
// edge-triggered latch kinds.
type latchDecl struct {
	Kind           string `json:"kind"`
	ForgetDuration int64  `json:"forget_duration_ns"` // -1 means never
	FilterExpr     string `json:"filter_expr"`        // expression over bind var "control"
}

// LevelTriggeredLatch adopts data's current value whenever control is
// truthy (non-default); it retains its last adopted value while control
// is falsy. With forgetDuration >= 0, the latch reverts to the type
// default once that much time has elapsed since the last adoption edge
// without a further re-adoption. Pass -1 to never forget.
func (b *Builder) LevelTriggeredLatch(control, data Handle, forgetDuration int64) Handle {
	decl := latchDecl{Kind: "Latch", ForgetDuration: forgetDuration, FilterExpr: "true"}
	return b.addNode(KindLevelTriggeredLatch, false, data.typ, []Ref{control.ref, data.ref}, decl)
}

// EdgeTriggeredLatch is like LevelTriggeredLatch, but adoption happens
// only on changes of control, not continuously while control is truthy.
// filterExpr, an expression over bind var "control" bound to control's
// new value, restricts which edges cause an adoption; empty means every
// edge adopts.
func (b *Builder) EdgeTriggeredLatch(control, data Handle, forgetDuration int64, filterExpr string) Handle {
	if filterExpr == "" {
		filterExpr = "true"
	}
	decl := latchDecl{Kind: "EdgeLatch", ForgetDuration: forgetDuration, FilterExpr: filterExpr}
	return b.addNode(KindEdgeTriggeredLatch, false, data.typ, []Ref{control.ref, data.ref}, decl)
}

// accumulatorDecl is the node_decl payload for Accumulator.
type accumulatorDecl struct {
	Kind        string `json:"kind"`
	InitExpr    string `json:"init_expr"`
	FilterExpr  string `json:"filter_expr"` // expression over bind var "control"
}

// Accumulator folds data into running state on every control tick for
// which filterExpr (an expression over bind var "control", the tick's
// new control value) holds: state = state + data, where "+" is defined
// by outputType's arithmetic.
func (b *Builder) Accumulator(control, data Handle, initExpr string, filterExpr string, outputType Type) Handle {
	if filterExpr == "" {
		filterExpr = "true"
	}
	if initExpr == "" {
		initExpr = "0"
	}
	decl := accumulatorDecl{Kind: "Accumulator", InitExpr: initExpr, FilterExpr: filterExpr}
	return b.addNode(KindAccumulator, false, outputType, []Ref{control.ref, data.ref}, decl)
}

// CountChanges is a shortcut: a monotonically increasing counter of
// clock's ticks, equivalent to an accumulator that always adds 1 but
// expressed as its own dedicated node so the executor need not special
// case a constant-data accumulator.
func (b *Builder) CountChanges(clock Handle) Handle {
	decl := map[string]interface{}{"kind": "ValueChangeCounter"}
	return b.addNode(KindValueChangeCounter, false, I32(), []Ref{clock.ref}, decl)
}

// stateMachineDecl is the node_decl payload for StateMachine.
type stateMachineDecl struct {
	Kind           string `json:"kind"`
	InitStateExpr  string `json:"init_state_expr"`
	TransitionExpr string `json:"transition_expr"` // expression over bind vars "state","data"
	Scoped         bool   `json:"scoped"`
}

// StateMachine recomputes state = transitionExpr(state, data) on every
// clock tick.
func (b *Builder) StateMachine(clock, data Handle, initStateExpr, transitionExpr string, outputType Type) Handle {
	decl := stateMachineDecl{Kind: "StateMachine", InitStateExpr: initStateExpr, TransitionExpr: transitionExpr}
	return b.addNode(KindStateMachine, false, outputType, []Ref{clock.ref, data.ref}, decl)
}

// ScopedStateMachine widens the machine to reset to initStateExpr
// whenever scope changes level, in addition to its normal clock-driven
// transitions.
func (b *Builder) ScopedStateMachine(scope, clock, data Handle, initStateExpr, transitionExpr string, outputType Type) Handle {
	decl := stateMachineDecl{Kind: "StateMachine", InitStateExpr: initStateExpr, TransitionExpr: transitionExpr, Scoped: true}
	return b.addNode(KindStateMachine, false, outputType, []Ref{scope.ref, clock.ref, data.ref}, decl)
}

// slidingWindowDecl is the node_decl payload shared by both window
// variants.
type slidingWindowDecl struct {
	Kind           string `json:"kind"`
	EmitExpr       string `json:"emit_expr"` // reducer name: "sum","min","max","count" or "last" (empty means "last"); no other expression is evaluated
	CountSize      int    `json:"count_size,omitempty"`
	TimeWindowNS   int64  `json:"time_window_ns,omitempty"`
	InitExpr       string `json:"init_expr"`
}

// SlidingWindowCount keeps the last windowSize (timestamp, data) pairs,
// emitting the emitExpr reducer applied to the queue on each clock tick.
func (b *Builder) SlidingWindowCount(clock, data Handle, windowSize int, emitExpr, initExpr string, outputType Type) Handle {
	decl := slidingWindowDecl{Kind: "SlidingWindow", EmitExpr: emitExpr, CountSize: windowSize, InitExpr: initExpr}
	return b.addNode(KindSlidingWindowCount, false, outputType, []Ref{clock.ref, data.ref}, decl)
}

// SlidingWindowTime keeps all points with now-t <= window, emitting
// the emitExpr reducer applied to the queue on each clock tick.
func (b *Builder) SlidingWindowTime(clock, data Handle, window int64, emitExpr, initExpr string, outputType Type) Handle {
	decl := slidingWindowDecl{Kind: "SlidingTimeWindow", EmitExpr: emitExpr, TimeWindowNS: window, InitExpr: initExpr}
	return b.addNode(KindSlidingWindowTime, false, outputType, []Ref{clock.ref, data.ref}, decl)
}

// livenessDecl is the node_decl payload for LivenessChecker.
type livenessDecl struct {
	Kind        string `json:"kind"`
	EventFilter string `json:"event_filter_expr"` // expression over bind var "event", reading clock's current value
	TimeoutNS   int64  `json:"timeout_ns"`
}

// LivenessChecker outputs true while at least one qualifying event has
// occurred within the trailing timeout window of livenessClock, false
// otherwise; it is a latch whose forget_duration is the timeout.
func (b *Builder) LivenessChecker(livenessClock Handle, eventFilterExpr string, timeoutNS int64) Handle {
	if eventFilterExpr == "" {
		eventFilterExpr = "true"
	}
	decl := livenessDecl{Kind: "LivenessChecker", EventFilter: eventFilterExpr, TimeoutNS: timeoutNS}
	return b.addNode(KindLivenessChecker, false, Bool(), []Ref{livenessClock.ref}, decl)
}

// SquareWave is a pure time-driven boolean source toggling every half
// period, offset by phase.
func (b *Builder) SquareWave(periodNS int64, phaseNS int64) Handle {
	decl := map[string]interface{}{"kind": "SquareWave", "period_ns": periodNS, "phase_ns": phaseNS}
	return b.addNode(KindSquareWave, false, Bool(), nil, decl)
}

// MonotonicSteps is a pure time-driven floating source stepping by
// `step` every period, starting at `start`, offset by phase.
func (b *Builder) MonotonicSteps(periodNS int64, start, step float64, phaseNS int64) Handle {
	decl := map[string]interface{}{"kind": "MonotonicSteps", "period_ns": periodNS, "start": start, "step": step, "phase_ns": phaseNS}
	return b.addNode(KindMonotonicSteps, false, Float64(), nil, decl)
}

// SignalGeneratorFn is an arbitrary time-driven source: fnExpr is
// evaluated on every moment with bind var "t" set to the moment's
// timestamp in nanoseconds, and its result is the output value. There
// is no separate next-fire-time scheduling.
func (b *Builder) SignalGeneratorFn(fnExpr string, outputType Type) Handle {
	decl := map[string]interface{}{"kind": "SignalGeneratorFn", "fn_expr": fnExpr}
	return b.addNode(KindSignalGeneratorFn, false, outputType, nil, decl)
}

// MomentClock is a builtin signal whose value is the current moment's
// timestamp in nanoseconds; it updates on every moment. It exists so
// that epoch signals and other moment-aware computations can reference
// "now" as an ordinary upstream.
func (b *Builder) MomentClock() Handle {
	decl := map[string]interface{}{"kind": "MomentClock"}
	return b.addNode(KindSignalGeneratorFn, false, U64(), nil, decl)
}

// SignalFilterBuilder composes signal mappers and level-triggered
// latches into a clock filter (a counter that ticks only when a
// predicate holds) or a value filter (the original value, frozen while
// the predicate is false).
type SignalFilterBuilder struct {
	b            *Builder
	filterSignal Handle
	clockSignal  Handle
	predicate    Handle // boolean signal used as latch control
}

// NewSignalFilter starts a filter builder over filterSignal, gating
// clockSignal.
func (b *Builder) NewSignalFilter(filterSignal, clockSignal Handle) *SignalFilterBuilder {
	return &SignalFilterBuilder{b: b, filterSignal: filterSignal, clockSignal: clockSignal}
}

// FilterTrue filters on the signal itself being true (it must already
// be boolean-typed).
func (f *SignalFilterBuilder) FilterTrue() *SignalFilterBuilder {
	f.predicate = f.filterSignal
	return f
}

// FilterFn filters by a boolean expression over bind var "a0" bound to
// filterSignal's current value.
func (f *SignalFilterBuilder) FilterFn(expr string) *SignalFilterBuilder {
	f.predicate = f.filterSignal.Map(expr, Bool())
	return f
}

// BuildClockFilter returns a monotonically increasing counter that
// ticks only when the predicate holds.
func (f *SignalFilterBuilder) BuildClockFilter() Handle {
	if f.predicate.b == nil {
		panic("lsdl: signal filter has no predicate; call FilterTrue or FilterFn first")
	}
	return f.b.LevelTriggeredLatch(f.predicate, f.clockSignal, -1)
}

// BuildValueFilter returns the original signal's value, frozen while
// the predicate is false.
func (f *SignalFilterBuilder) BuildValueFilter() Handle {
	if f.predicate.b == nil {
		panic("lsdl: signal filter has no predicate; call FilterTrue or FilterFn first")
	}
	return f.b.LevelTriggeredLatch(f.predicate, f.filterSignal, -1)
}

// ThenFilter performs cascade filtering: builds this filter's clock
// filter, then returns a new builder gating nextSignal using that
// clock as its companion clock.
func (f *SignalFilterBuilder) ThenFilter(nextSignal Handle) *SignalFilterBuilder {
	clock := f.BuildClockFilter()
	next := f.b.NewSignalFilter(nextSignal, clock)
	if nextSignal.typ.Kind == KindBool {
		next.FilterTrue()
	}
	return next
}

func mustBoolType(h Handle) {
	if h.typ.Kind != KindBool {
		panic(fmt.Sprintf("lsdl: expected bool signal, got %s", h.typ.TypeName()))
	}
}
