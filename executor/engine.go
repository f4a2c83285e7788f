package executor

import (
	"strconv"
	"strings"
	"time"

	"github.com/ShapelessCat/leveled-signal-proc/config"
	"github.com/ShapelessCat/leveled-signal-proc/errors"
	"github.com/ShapelessCat/leveled-signal-proc/logger"
)

// builtinDateTimeFormat mirrors lsdl's PeekTimestamp default layout;
// the executor package is decoupled from lsdl so it keeps its own copy.
const builtinDateTimeFormat = "2006-01-02 15:04:05.000000 UTC"

// Engine drives one loaded IR document against a stream of patches. It
// owns every piece of runtime state: per-node evaluator state, input
// member values/clocks, and the bookkeeping the trigger/output policies
// need (left-limit snapshots, reset-switch baselines). One Engine is
// built once per run and consumed moment by moment.
type Engine struct {
	doc    *Document
	schema *runtimeSchema
	nodes  []*nodeRuntime

	memberValues  map[*memberSlot]interface{}
	memberClocks  map[*memberSlot]uint64
	memberChanged map[*memberSlot]bool

	mergeSimultaneous bool
	useLeftLimit      bool
	eventFilter       expr // nil when a trigger signal drives emission instead

	prevNodeValues   []interface{}
	prevMemberValues map[*memberSlot]interface{}

	resetSwitchPrev    interface{}
	resetSwitchHasPrev bool
	lifeBaselines      map[string]interface{}

	hasMoment    bool
	lastMomentNS int64
}

// NewEngine builds the runtime evaluator vector and schema index for
// doc using the default tuning configuration. Construction parses every
// node_decl and policy expression once, so a malformed IR fails fast
// instead of mid-run.
func NewEngine(doc *Document) (*Engine, error) {
	return NewEngineWithConfig(doc, config.Default())
}

// NewEngineWithConfig is NewEngine with an explicit tuning configuration,
// used by lsprun so operators can override the liveness-timeout and
// sliding-window-capacity safety valves without touching the IR.
func NewEngineWithConfig(doc *Document, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	limits := runtimeLimits{
		defaultLivenessTimeoutNS: cfg.Run.DefaultLivenessTimeoutNS,
		maxSlidingWindowCapacity: cfg.Run.MaxSlidingWindowCapacity,
	}

	schema, err := buildRuntimeSchema(doc.Schema)
	if err != nil {
		return nil, err
	}

	nodes := make([]*nodeRuntime, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nr, err := buildNodeRuntime(n, limits)
		if err != nil {
			return nil, err
		}
		nodes[i] = nr
	}

	eng := &Engine{
		doc:               doc,
		schema:            schema,
		nodes:             nodes,
		memberValues:      map[*memberSlot]interface{}{},
		memberClocks:      map[*memberSlot]uint64{},
		memberChanged:     map[*memberSlot]bool{},
		mergeSimultaneous: doc.ProcessingPolicy.MergeSimultaneousMoments,
		useLeftLimit:      doc.MeasurementPolicy.MeasureLeftSideLimitSignal,
		prevMemberValues:  map[*memberSlot]interface{}{},
		lifeBaselines:     map[string]interface{}{},
	}
	for _, slot := range schema.allSlots {
		eng.memberValues[slot] = slot.initialValue()
	}

	if doc.MeasurementPolicy.MeasureTriggerSignal == nil {
		filterSrc := doc.MeasurementPolicy.MeasureAtEventFilter
		if filterSrc == "" {
			filterSrc = "true"
		}
		eng.eventFilter, err = parseExpr(filterSrc)
		if err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: measure_at_event_filter")
		}
	}
	return eng, nil
}

func (s *memberSlot) initialValue() interface{} {
	if s.isVolatile {
		return s.resetValue
	}
	return zeroValue(s.typeName, s.enumVariants)
}

// setMemberValue records a patch-supplied value for a member, ticking
// its companion clock. Coercion failures are logged and the field is
// skipped rather than aborting the run, per spec.md §7's
// patch_parse error handling.
func (eng *Engine) setMemberValue(slot *memberSlot, raw interface{}) {
	v, err := coercePatchValue(slot.typeName, raw)
	if err != nil {
		logger.Warnw("skipping unparsable patch field", logger.FieldSchemaKey, slot.name, "error", err.Error())
		return
	}
	eng.memberValues[slot] = v
	eng.memberClocks[slot]++
	eng.memberChanged[slot] = true
}

// resolveRef resolves one IR ref to its current value and whether it
// ticked this moment.
func (eng *Engine) resolveRef(ref RefIR) (interface{}, bool, error) {
	switch ref.Type {
	case "Component":
		id, ok := ref.ComponentID()
		if !ok || id < 0 || id >= len(eng.nodes) {
			return nil, false, errors.Newf("ir_malformed: ref to unknown component %s", string(ref.ID))
		}
		nr := eng.nodes[id]
		return nr.value, nr.changed, nil

	case "InputSignal":
		name, ok := ref.InputName()
		if !ok {
			return nil, false, errors.Newf("ir_malformed: InputSignal ref missing id")
		}
		if slot, ok := eng.schema.byClockName[name]; ok {
			return int64(eng.memberClocks[slot]), eng.memberChanged[slot], nil
		}
		slot, ok := eng.schema.bySlug[name]
		if !ok {
			return nil, false, errors.Newf("ir_malformed: unknown input signal %q", name)
		}
		changed := eng.memberChanged[slot]
		if slot.isVolatile {
			if changed {
				return eng.memberValues[slot], true, nil
			}
			return slot.resetValue, false, nil
		}
		return eng.memberValues[slot], changed, nil

	case "Constant":
		v, err := parseLiteral(ref.TypeName, ref.Value)
		return v, false, err

	case "Tuple":
		vals := make([]interface{}, len(ref.Values))
		changed := false
		for i, r := range ref.Values {
			v, c, err := eng.resolveRef(r)
			if err != nil {
				return nil, false, err
			}
			vals[i] = v
			changed = changed || c
		}
		return vals, changed, nil

	default:
		return nil, false, errors.Newf("ir_malformed: unknown ref type %q", ref.Type)
	}
}

// closeMoment evaluates every node in id order against the current
// input state, decides whether this moment triggers an emission, and
// returns the rendered output records (the primary metric record, plus
// an optional interval complement record).
func (eng *Engine) closeMoment(nowNS int64) ([]map[string]interface{}, error) {
	elapsedNS := int64(0)
	if eng.hasMoment {
		elapsedNS = nowNS - eng.lastMomentNS
	}

	leftNodeValues := make([]interface{}, len(eng.nodes))
	for i, nr := range eng.nodes {
		leftNodeValues[i] = nr.value
	}
	leftMemberValues := make(map[*memberSlot]interface{}, len(eng.memberValues))
	for slot, v := range eng.memberValues {
		leftMemberValues[slot] = v
	}

	verbosity := logger.Verbosity()
	traceEval := logger.ShouldShowNodeEval(verbosity)
	dumpValues := logger.ShouldShowNodeValues(verbosity)
	log := logger.Logger

	for _, nr := range eng.nodes {
		n := eng.doc.Nodes[nr.id]
		ups := make([]interface{}, len(n.Upstreams))
		upsChanged := make([]bool, len(n.Upstreams))
		for i, ref := range n.Upstreams {
			v, c, err := eng.resolveRef(ref)
			if err != nil {
				return nil, err
			}
			ups[i] = v
			upsChanged[i] = c
		}
		value, err := nr.evaluate(ups, upsChanged, nowNS, elapsedNS)
		if err != nil {
			return nil, errors.WithDetailf(err, "node %d, debug_info %s", nr.id, string(n.DebugInfo))
		}
		if traceEval {
			log.Debugw("node evaluated", logger.FieldNodeID, nr.id, logger.FieldMomentNS, nowNS)
		}
		if dumpValues {
			log.Debugw("node value", logger.FieldNodeID, nr.id, "value", value)
		}
	}

	fire, err := eng.shouldEmit(nowNS)
	if err != nil {
		return nil, err
	}

	var records []map[string]interface{}
	if fire {
		useLeft := eng.useLeftLimit
		record, err := eng.renderOutput(nowNS, useLeft, leftNodeValues, leftMemberValues)
		if err != nil {
			return nil, err
		}
		records = append(records, record)

		if eng.doc.MeasurementPolicy.ComplementaryOutputConfig != nil {
			interval, err := eng.renderInterval(nowNS, record)
			if err != nil {
				return nil, err
			}
			if interval != nil {
				records = append(records, interval)
			}
		}
	}

	eng.prevNodeValues = leftNodeValues
	eng.prevMemberValues = leftMemberValues
	eng.hasMoment = true
	eng.lastMomentNS = nowNS

	for slot := range eng.memberChanged {
		delete(eng.memberChanged, slot)
	}

	return records, nil
}

func (eng *Engine) shouldEmit(nowNS int64) (bool, error) {
	mp := eng.doc.MeasurementPolicy
	if mp.MeasureTriggerSignal != nil {
		_, changed, err := eng.resolveRef(*mp.MeasureTriggerSignal)
		if err != nil {
			return false, err
		}
		return changed, nil
	}
	env := map[string]interface{}{"now": nowNS}
	v, err := eng.eventFilter.eval(env)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func (eng *Engine) renderOutput(nowNS int64, useLeft bool, leftNode []interface{}, leftMember map[*memberSlot]interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	mp := eng.doc.MeasurementPolicy
	for name, metric := range mp.OutputSchema {
		v, err := eng.resolveOutputRef(metric.Source, useLeft, leftNode, leftMember)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// resolveOutputRef resolves an output-schema source either against the
// engine's post-moment (right-limit) state or the pre-moment
// (left-limit) snapshot, per measure_left_side_limit_signal.
func (eng *Engine) resolveOutputRef(ref RefIR, useLeft bool, leftNode []interface{}, leftMember map[*memberSlot]interface{}) (interface{}, error) {
	if !useLeft {
		v, _, err := eng.resolveRef(ref)
		return v, err
	}
	switch ref.Type {
	case "Component":
		id, ok := ref.ComponentID()
		if !ok || id < 0 || id >= len(leftNode) {
			return nil, errors.Newf("ir_malformed: ref to unknown component %s", string(ref.ID))
		}
		return leftNode[id], nil
	case "InputSignal":
		name, ok := ref.InputName()
		if !ok {
			return nil, errors.Newf("ir_malformed: InputSignal ref missing id")
		}
		if slot, ok := eng.schema.byClockName[name]; ok {
			return int64(eng.memberClocks[slot]), nil
		}
		slot, ok := eng.schema.bySlug[name]
		if !ok {
			return nil, errors.Newf("ir_malformed: unknown input signal %q", name)
		}
		if slot.isVolatile {
			if eng.memberChanged[slot] {
				return leftMember[slot], nil
			}
			return slot.resetValue, nil
		}
		return leftMember[slot], nil
	case "Constant":
		return parseLiteral(ref.TypeName, ref.Value)
	case "Tuple":
		vals := make([]interface{}, len(ref.Values))
		for i, r := range ref.Values {
			v, err := eng.resolveOutputRef(r, useLeft, leftNode, leftMember)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	default:
		return nil, errors.Newf("ir_malformed: unknown ref type %q", ref.Type)
	}
}

// renderInterval produces the complementary "interval_<metric>" record:
// each life* metric's value minus its value at the last moment the
// reset switch ticked to a new value (or at its first tick).
func (eng *Engine) renderInterval(nowNS int64, record map[string]interface{}) (map[string]interface{}, error) {
	cfg := eng.doc.MeasurementPolicy.ComplementaryOutputConfig
	switchVal, switchChanged, err := eng.resolveRef(cfg.ResetSwitch)
	if err != nil {
		return nil, err
	}
	resetEdge := switchChanged && (!eng.resetSwitchHasPrev || !valuesEqual(switchVal, eng.resetSwitchPrev))

	out := map[string]interface{}{}
	for _, name := range cfg.LifeMetrics {
		current, ok := record[name]
		if !ok {
			continue
		}
		baseline, hasBaseline := eng.lifeBaselines[name]
		var interval interface{}
		if hasBaseline {
			interval, err = applyBinaryOp("-", current, baseline)
			if err != nil {
				return nil, err
			}
		} else {
			interval = current
		}
		out["interval_"+name] = interval
		if resetEdge {
			eng.lifeBaselines[name] = current
		}
	}
	eng.resetSwitchPrev = switchVal
	eng.resetSwitchHasPrev = true
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// coercePatchValue converts a JSON-decoded patch field (whose dynamic
// type is always one of string/bool/float64/[]interface{}/map, per
// encoding/json's default decoding) into the Go value the expression
// interpreter and output writer expect for typeName.
func coercePatchValue(typeName string, raw interface{}) (interface{}, error) {
	switch {
	case typeName == "string", strings.HasPrefix(typeName, "enum:"):
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Newf("expected string, got %T", raw)
		}
		return s, nil
	case typeName == "bool":
		b, ok := raw.(bool)
		if !ok {
			return nil, errors.Newf("expected bool, got %T", raw)
		}
		return b, nil
	case typeName == "datetime":
		return coerceTimestamp(raw)
	case strings.HasPrefix(typeName, "i") || strings.HasPrefix(typeName, "u"):
		f, ok := raw.(float64)
		if !ok {
			return nil, errors.Newf("expected number, got %T", raw)
		}
		return int64(f), nil
	case strings.HasPrefix(typeName, "f"):
		f, ok := raw.(float64)
		if !ok {
			return nil, errors.Newf("expected number, got %T", raw)
		}
		return f, nil
	case strings.HasPrefix(typeName, "list<"):
		elemType := typeName[len("list<") : len(typeName)-1]
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, errors.Newf("expected list, got %T", raw)
		}
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			v, err := coercePatchValue(elemType, e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return raw, nil
	}
}

// coerceTimestamp accepts either integer nanoseconds since epoch or
// the schema's formatted UTC string, matching spec.md §4.F step 1.
func coerceTimestamp(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case string:
		return parseTimestampString(v)
	default:
		return 0, errors.Newf("patch_parse: unrecognized timestamp value %v (%T)", raw, raw)
	}
}

func parseTimestampString(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range []string{
		builtinDateTimeFormat,
		"2006-01-02 15:04:05.000000",
		time.RFC3339Nano,
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixNano(), nil
		}
	}
	return 0, errors.Newf("patch_parse: unparsable timestamp %q", s)
}
