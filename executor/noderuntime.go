package executor

import (
	"encoding/json"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

type windowPoint struct {
	ts   int64
	data interface{}
}

// nodeRuntime is a node's executor-side evaluator: its parsed
// node_decl plus whatever private state its kind accumulates across
// moments. One nodeRuntime exists per node id, for the life of the
// run, matching spec.md §5's "fixed-size vector of node states keyed
// by id."
type nodeRuntime struct {
	id            int
	kind          string
	isMeasurement bool

	value   interface{}
	changed bool

	// SignalMapper / MappedMeasurement / BinaryCombinedMeasurement
	bodyExpr expr

	// Latch / EdgeLatch
	forgetNS      int64
	filterExpr    expr
	latchHasValue bool
	lastAdoptNS   int64
	hasAdopted    bool

	// Accumulator
	accInitExpr expr
	accHasState bool

	// StateMachine
	smInitExpr       expr
	smTransitionExpr expr
	smHasState       bool
	smScoped         bool
	smLastScope      interface{}
	smHasScope       bool

	// SlidingWindow / SlidingTimeWindow. emit_expr is not a general
	// bind-var expression (the small interpreter has no array/fold
	// operators): it names one of a fixed set of reducers over the
	// queue's data values, the supplemented time_domain_fold helpers
	// (sum/min/max/count/last).
	swIsTime    bool
	swCountSize int
	swWindowNS  int64
	swEmitMode  string
	swInitExpr  expr
	swQueue     []windowPoint

	// LivenessChecker
	liveFilter    expr
	liveTimeoutNS int64
	liveLastTrueNS int64
	liveEverTrue  bool

	// Signal generators
	genKind      string
	genPeriodNS  int64
	genPhaseNS   int64
	genStart     float64
	genStep      float64
	genFnExpr    expr
	genNextFireNS int64
	genStepCount  int64

	// ValueChangeCounter
	vccCount int64

	// PeekTimestamp
	peekTimestampFormat string

	// DurationTrue
	durTrueAccumNS  int64
	durTruePrevBool bool
	durTrueInit     bool

	// DurationSinceBecomeTrue
	dsbtEdgeNS   int64
	dsbtHasEdge  bool
	dsbtPrevBool bool

	// DurationOfCurrentLevel
	doclLastChangeNS int64
	doclInit         bool
	doclPrevValue    interface{}

	// LinearChange
	lcAccum     float64
	lcPrevValue float64
	lcHasPrev   bool

	// DiffSinceCurrentLevel
	diffExpr       expr
	diffBaseline   interface{}
	diffHasBaseline bool
	diffPrevControl interface{}
	diffHasControl  bool

	// ScopedMeasurement
	scopeBaseline    interface{}
	scopeHasBaseline bool
	scopeLastValue   interface{}
	scopeHasLast     bool
}

// runtimeLimits carries the operational safety-valve defaults from
// config.RunConfig down into per-node construction, so a node_decl that
// leaves a tuning value unset (or a queue that would otherwise grow
// unbounded) falls back to an operator-controlled default rather than a
// hardcoded one.
type runtimeLimits struct {
	defaultLivenessTimeoutNS int64
	maxSlidingWindowCapacity int
}

// buildNodeRuntime parses a node's node_decl once at load time.
func buildNodeRuntime(n NodeIR, limits runtimeLimits) (*nodeRuntime, error) {
	kind, err := n.declKind()
	if err != nil {
		return nil, err
	}
	nr := &nodeRuntime{id: n.ID, kind: kind, isMeasurement: n.IsMeasurement}

	parseOpt := func(src string) (expr, error) {
		if src == "" {
			return nil, nil
		}
		return parseExpr(src)
	}

	switch kind {
	case "SignalMapper", "MappedMeasurement", "BinaryCombinedMeasurement":
		var d mapperDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.bodyExpr, err = parseExpr(d.Expr)
	case "Latch", "EdgeLatch":
		var d latchDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.forgetNS = d.ForgetDuration
		nr.filterExpr, err = parseOpt(d.FilterExpr)
	case "Accumulator":
		var d accumulatorDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.accInitExpr, err = parseExpr(d.InitExpr)
		if err == nil {
			nr.filterExpr, err = parseOpt(d.FilterExpr)
		}
	case "StateMachine":
		var d stateMachineDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.smScoped = d.Scoped
		nr.smInitExpr, err = parseExpr(d.InitStateExpr)
		if err == nil {
			nr.smTransitionExpr, err = parseExpr(d.TransitionExpr)
		}
	case "SlidingWindow", "SlidingTimeWindow":
		var d slidingWindowDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.swIsTime = kind == "SlidingTimeWindow"
		nr.swCountSize = d.CountSize
		if !nr.swIsTime && limits.maxSlidingWindowCapacity > 0 && (nr.swCountSize <= 0 || nr.swCountSize > limits.maxSlidingWindowCapacity) {
			nr.swCountSize = limits.maxSlidingWindowCapacity
		}
		nr.swWindowNS = d.TimeWindowNS
		nr.swEmitMode = d.EmitExpr
		nr.swInitExpr, err = parseExpr(d.InitExpr)
	case "LivenessChecker":
		var d livenessDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.liveTimeoutNS = d.TimeoutNS
		if nr.liveTimeoutNS <= 0 {
			nr.liveTimeoutNS = limits.defaultLivenessTimeoutNS
		}
		nr.liveFilter, err = parseExpr(d.EventFilter)
	case "SquareWave", "MonotonicSteps", "SignalGeneratorFn", "MomentClock":
		var d generatorDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.genKind = kind
		nr.genPeriodNS = d.PeriodNS
		nr.genPhaseNS = d.PhaseNS
		nr.genStart = d.Start
		nr.genStep = d.Step
		if d.FnExpr != "" {
			nr.genFnExpr, err = parseExpr(d.FnExpr)
		}
	case "ValueChangeCounter":
		// no parameters
	case "Peek":
		// no parameters
	case "PeekTimestamp":
		var d peekTimestampDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.peekTimestampFormat = d.Format
	case "DurationTrue", "DurationSinceBecomeTrue", "DurationOfCurrentLevel", "LinearChange":
		// no parameters
	case "DiffSinceCurrentLevel":
		var d diffDecl
		if err := json.Unmarshal([]byte(n.NodeDecl), &d); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
		}
		nr.diffExpr, err = parseExpr(d.DiffExpr)
	case "ScopedMeasurement":
		// no parameters
	default:
		return nil, errors.Newf("ir_malformed: unknown node kind %q at node %d", kind, n.ID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "ir_malformed: node %d", n.ID)
	}
	return nr, nil
}
