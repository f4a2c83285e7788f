package lsdl

// MeasurementPolicy describes how and when measurements are drained to
// output: the trigger (an event filter expression, or a trigger
// signal's edge), which side of a discontinuity to read at the trigger
// moment, the metrics attached for output, and the optional interval
// (reset-switch) complement.
type MeasurementPolicy struct {
	metrics []metricEntry

	// EventFilterExpr, when non-empty, is evaluated against the current
	// moment on every moment; a true result triggers emission. Mutually
	// exclusive with TriggerSignal.
	EventFilterExpr string

	// TriggerSignal, when set, triggers emission on every clock tick of
	// the referenced signal (its edge), rather than on a per-moment
	// predicate.
	TriggerSignal *Handle

	// UseLeftLimit selects reading measurements just before the trigger
	// moment's update is applied (the left limit) instead of just after
	// (the right limit, the default).
	UseLeftLimit bool

	// ResetSwitch, when set, is a signal of any type whose change of
	// value starts a new interval; every emission is then followed by an
	// interval-metric complement record alongside the ordinary
	// measurement output.
	ResetSwitch *Handle
}

type metricEntry struct {
	Name  string
	Value Handle
}

func newMeasurementPolicy() *MeasurementPolicy {
	return &MeasurementPolicy{}
}

// AddMetric attaches name -> value to the output row. If value is a
// plain signal (not already a measurement), it is implicitly wrapped in
// Peek, so `h.AddMetric(...)` and `h.Peek().AddMetric(...)` on the
// builder produce identical IR, per the read-out parity rule.
func (b *Builder) AddMetric(name string, value Handle) {
	if !value.isMeasurement {
		value = b.Peek(value)
	}
	b.Measurement.metrics = append(b.Measurement.metrics, metricEntry{Name: name, Value: value})
}

// TriggerOnEventFilter sets the emission trigger to the moments for
// which expr (an expression over bind var "now", the current moment
// timestamp in nanoseconds) evaluates true.
func (b *Builder) TriggerOnEventFilter(expr string) {
	b.Measurement.EventFilterExpr = expr
	b.Measurement.TriggerSignal = nil
}

// TriggerOnSignal sets the emission trigger to every clock tick of
// signal.
func (b *Builder) TriggerOnSignal(signal Handle) {
	b.Measurement.TriggerSignal = &signal
	b.Measurement.EventFilterExpr = ""
}

// UseLeftLimitAtTrigger reads measurements just before the triggering
// update is applied, instead of just after (the default).
func (b *Builder) UseLeftLimitAtTrigger() {
	b.Measurement.UseLeftLimit = true
}

// SetResetSwitch arms the interval-metric complement: each emitted row
// is followed by a second record carrying "interval_<metric>" for every
// metric whose name starts with "life", holding that metric's value
// minus its value at the last change of resetSwitch's value.
func (b *Builder) SetResetSwitch(resetSwitch Handle) {
	b.Measurement.ResetSwitch = &resetSwitch
}

// ToDict renders the policy in the IR shape spec.md §6 names:
// measure_at_event_filter (XOR measure_trigger_signal),
// measure_left_side_limit_signal, output_schema, and, when a reset
// switch is armed, complementary_output_config.
func (p *MeasurementPolicy) ToDict() map[string]interface{} {
	outputSchema := newOrderedDict()
	var lifeMetrics []string
	for _, m := range p.metrics {
		outputSchema.set(m.Name, map[string]interface{}{
			"source": m.Value.ref,
			"type":   m.Value.typ.TypeName(),
		})
		if len(m.Name) >= 4 && m.Name[:4] == "life" {
			lifeMetrics = append(lifeMetrics, m.Name)
		}
	}
	d := map[string]interface{}{
		"output_schema":                  outputSchema,
		"measure_left_side_limit_signal": p.UseLeftLimit,
	}
	if p.TriggerSignal != nil {
		d["measure_trigger_signal"] = p.TriggerSignal.ref
	} else {
		expr := p.EventFilterExpr
		if expr == "" {
			expr = "true"
		}
		d["measure_at_event_filter"] = expr
	}
	if p.ResetSwitch != nil {
		d["complementary_output_config"] = map[string]interface{}{
			"reset_switch": p.ResetSwitch.ref,
			"life_metrics": lifeMetrics,
		}
	}
	return d
}

// ProcessingPolicy governs moment-level execution semantics shared by
// the whole DAG.
type ProcessingPolicy struct {
	// MergeSimultaneousMoments collapses multiple patches carrying the
	// same timestamp into one moment before propagation, so downstream
	// nodes observe one coherent update rather than a flicker of
	// intermediate states. Defaults to true.
	MergeSimultaneousMoments bool
}

func newProcessingPolicy() *ProcessingPolicy {
	return &ProcessingPolicy{MergeSimultaneousMoments: true}
}

// SetMergeSimultaneousMoments overrides the default moment-merging
// behavior.
func (b *Builder) SetMergeSimultaneousMoments(merge bool) {
	b.Processing.MergeSimultaneousMoments = merge
}

func (p *ProcessingPolicy) ToDict() map[string]interface{} {
	return map[string]interface{}{
		"merge_simultaneous_moments": p.MergeSimultaneousMoments,
	}
}
