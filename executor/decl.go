package executor

// These mirror the node_decl JSON payloads lsdl's processors/measurements
// encode (see lsdl/processors.go, lsdl/operators.go, lsdl/measurements.go,
// lsdl/combinators.go). The executor package is deliberately decoupled
// from lsdl, so the shapes are redeclared here rather than imported.

type mapperDecl struct {
	Kind     string   `json:"kind"`
	BindVars []string `json:"bind_vars"`
	Expr     string   `json:"expr"`
}

type latchDecl struct {
	Kind           string `json:"kind"`
	ForgetDuration int64  `json:"forget_duration_ns"`
	FilterExpr     string `json:"filter_expr"`
}

type accumulatorDecl struct {
	Kind       string `json:"kind"`
	InitExpr   string `json:"init_expr"`
	FilterExpr string `json:"filter_expr"`
}

type stateMachineDecl struct {
	Kind           string `json:"kind"`
	InitStateExpr  string `json:"init_state_expr"`
	TransitionExpr string `json:"transition_expr"`
	Scoped         bool   `json:"scoped"`
}

type slidingWindowDecl struct {
	Kind         string `json:"kind"`
	EmitExpr     string `json:"emit_expr"`
	CountSize    int    `json:"count_size,omitempty"`
	TimeWindowNS int64  `json:"time_window_ns,omitempty"`
	InitExpr     string `json:"init_expr"`
}

type livenessDecl struct {
	Kind        string `json:"kind"`
	EventFilter string `json:"event_filter_expr"`
	TimeoutNS   int64  `json:"timeout_ns"`
}

type generatorDecl struct {
	Kind     string  `json:"kind"`
	PeriodNS int64   `json:"period_ns"`
	PhaseNS  int64   `json:"phase_ns"`
	Start    float64 `json:"start"`
	Step     float64 `json:"step"`
	FnExpr   string  `json:"fn_expr"`
}

type diffDecl struct {
	Kind     string `json:"kind"`
	DiffExpr string `json:"diff_expr"`
}

type peekTimestampDecl struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`
}
