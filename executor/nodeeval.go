package executor

import (
	"time"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// evaluate recomputes this node's value from its upstreams' current
// values and tick flags, mutating whatever private state its kind
// carries. elapsedNS is the time since the previous moment, used by
// the duration/integral measurements.
func (nr *nodeRuntime) evaluate(ups []interface{}, upsChanged []bool, nowNS, elapsedNS int64) (interface{}, error) {
	old := nr.value
	var newVal interface{}
	var err error

	switch nr.kind {
	case "SignalMapper", "MappedMeasurement", "BinaryCombinedMeasurement":
		env := bindEnv(ups)
		newVal, err = nr.bodyExpr.eval(env)

	case "Latch":
		control, data := ups[0], ups[1]
		if truthy(control) {
			nr.value = data
			nr.latchHasValue = true
			nr.lastAdoptNS = nowNS
			nr.hasAdopted = true
		}
		newVal = nr.latchValueOrZero(nowNS)

	case "EdgeLatch":
		control, data := ups[0], ups[1]
		if upsChanged[0] {
			ok, ferr := evalFilter(nr.filterExpr, control)
			if ferr != nil {
				return nil, ferr
			}
			if ok {
				nr.value = data
				nr.latchHasValue = true
				nr.lastAdoptNS = nowNS
				nr.hasAdopted = true
			}
		}
		newVal = nr.latchValueOrZero(nowNS)

	case "Accumulator":
		control, data := ups[0], ups[1]
		if !nr.accHasState {
			nr.value, err = nr.accInitExpr.eval(nil)
			nr.accHasState = true
		}
		if err == nil && upsChanged[0] {
			var ok bool
			ok, err = evalFilter(nr.filterExpr, control)
			if err == nil && ok {
				nr.value, err = applyBinaryOp("+", nr.value, data)
			}
		}
		newVal = nr.value

	case "StateMachine":
		var clockChanged bool
		var data interface{}
		if nr.smScoped {
			scope, clock := ups[0], ups[1]
			data = ups[2]
			if !nr.smHasScope || !valuesEqual(scope, nr.smLastScope) {
				nr.value, err = nr.smInitExpr.eval(nil)
				nr.smLastScope = scope
				nr.smHasScope = true
			}
			clockChanged = upsChanged[1]
		} else {
			data = ups[1]
			clockChanged = upsChanged[0]
		}
		if !nr.smHasState {
			nr.value, err = nr.smInitExpr.eval(nil)
			nr.smHasState = true
		}
		if err == nil && clockChanged {
			nr.value, err = nr.smTransitionExpr.eval(map[string]interface{}{"state": nr.value, "data": data})
		}
		newVal = nr.value

	case "SlidingWindow", "SlidingTimeWindow":
		clock, data := ups[0], ups[1]
		if !nr.accHasState {
			nr.value, err = nr.swInitExpr.eval(nil)
			nr.accHasState = true
		}
		if err == nil && upsChanged[0] {
			_ = clock
			nr.swQueue = append(nr.swQueue, windowPoint{ts: nowNS, data: data})
			if nr.swIsTime {
				cutoff := nowNS - nr.swWindowNS
				i := 0
				for i < len(nr.swQueue) && nr.swQueue[i].ts < cutoff {
					i++
				}
				nr.swQueue = nr.swQueue[i:]
			} else if len(nr.swQueue) > nr.swCountSize {
				nr.swQueue = nr.swQueue[len(nr.swQueue)-nr.swCountSize:]
			}
			nr.value, err = reduceWindow(nr.swEmitMode, nr.swQueue)
		}
		newVal = nr.value

	case "LivenessChecker":
		event := ups[0]
		if upsChanged[0] {
			var ok bool
			ok, err = evalNamed(nr.liveFilter, "event", event)
			if err == nil && ok {
				nr.liveLastTrueNS = nowNS
				nr.liveEverTrue = true
			}
		}
		newVal = nr.liveEverTrue && (nowNS-nr.liveLastTrueNS) <= nr.liveTimeoutNS

	case "SquareWave":
		pos := modInt64(nowNS-nr.genPhaseNS, nr.genPeriodNS)
		newVal = pos < nr.genPeriodNS/2

	case "MonotonicSteps":
		idx := int64(0)
		if nowNS > nr.genPhaseNS && nr.genPeriodNS > 0 {
			idx = (nowNS - nr.genPhaseNS) / nr.genPeriodNS
		}
		newVal = nr.genStart + float64(idx)*nr.genStep

	case "SignalGeneratorFn":
		newVal, err = nr.genFnExpr.eval(map[string]interface{}{"t": nowNS})

	case "MomentClock":
		newVal = nowNS

	case "ValueChangeCounter":
		if upsChanged[0] {
			nr.vccCount++
		}
		newVal = nr.vccCount

	case "Peek":
		newVal = ups[0]

	case "PeekTimestamp":
		layout := nr.peekTimestampFormat
		newVal = time.Unix(0, nowNS).UTC().Format(layout)

	case "DurationTrue":
		b, berr := asBool(ups[0])
		if berr != nil {
			return nil, berr
		}
		if nr.durTrueInit && nr.durTruePrevBool {
			nr.durTrueAccumNS += elapsedNS
		}
		nr.durTruePrevBool = b
		nr.durTrueInit = true
		newVal = nr.durTrueAccumNS

	case "DurationSinceBecomeTrue":
		b, berr := asBool(ups[0])
		if berr != nil {
			return nil, berr
		}
		if b && !nr.dsbtPrevBool {
			nr.dsbtEdgeNS = nowNS
			nr.dsbtHasEdge = true
		}
		nr.dsbtPrevBool = b
		if b && nr.dsbtHasEdge {
			newVal = nowNS - nr.dsbtEdgeNS
		} else {
			newVal = int64(0)
		}

	case "DurationOfCurrentLevel":
		if !nr.doclInit || !valuesEqual(nr.doclPrevValue, ups[0]) {
			nr.doclLastChangeNS = nowNS
			nr.doclPrevValue = ups[0]
			nr.doclInit = true
		}
		newVal = nowNS - nr.doclLastChangeNS

	case "LinearChange":
		v, ok := asFloat(ups[0])
		if !ok {
			return nil, errors.Newf("evaluation_fatal: node %d: LinearChange requires a numeric upstream", nr.id)
		}
		if nr.lcHasPrev {
			nr.lcAccum += nr.lcPrevValue * float64(elapsedNS)
		}
		nr.lcPrevValue = v
		nr.lcHasPrev = true
		newVal = nr.lcAccum

	case "DiffSinceCurrentLevel":
		control, data := ups[0], ups[1]
		if upsChanged[0] || !nr.diffHasBaseline {
			nr.diffBaseline = data
			nr.diffHasBaseline = true
		}
		_ = control
		newVal, err = nr.diffExpr.eval(map[string]interface{}{"current": data, "baseline": nr.diffBaseline})

	case "ScopedMeasurement":
		scope, measurement := ups[0], ups[1]
		if !nr.scopeHasBaseline || !valuesEqual(scope, nr.scopeLastValue) {
			nr.scopeBaseline = measurement
			nr.scopeHasBaseline = true
		}
		nr.scopeLastValue = scope
		nr.scopeHasLast = true
		if diff, derr := applyBinaryOp("-", measurement, nr.scopeBaseline); derr == nil {
			newVal = diff
		} else {
			newVal = measurement
		}

	default:
		return nil, errors.Newf("evaluation_fatal: node %d: no evaluator for kind %q", nr.id, nr.kind)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "evaluation_fatal: node %d (%s)", nr.id, nr.kind)
	}
	nr.value = newVal
	nr.changed = !valuesEqual(old, newVal)
	return newVal, nil
}

func (nr *nodeRuntime) latchValueOrZero(nowNS int64) interface{} {
	if nr.forgetNS >= 0 && nr.hasAdopted && (nowNS-nr.lastAdoptNS) > nr.forgetNS {
		return dynamicZero(nr.value)
	}
	if !nr.latchHasValue {
		return nil
	}
	return nr.value
}

func bindEnv(ups []interface{}) map[string]interface{} {
	env := make(map[string]interface{}, len(ups))
	for i, v := range ups {
		env[bindVarName(i)] = v
	}
	return env
}

func bindVarName(i int) string {
	const letters = "0123456789"
	_ = letters
	return "a" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func evalFilter(e expr, controlValue interface{}) (bool, error) {
	return evalNamed(e, "control", controlValue)
}

func evalNamed(e expr, varName string, value interface{}) (bool, error) {
	if e == nil {
		return true, nil
	}
	v, err := e.eval(map[string]interface{}{varName: value})
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func modInt64(a, m int64) int64 {
	if m == 0 {
		return 0
	}
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func reduceWindow(mode string, queue []windowPoint) (interface{}, error) {
	switch mode {
	case "", "last":
		if len(queue) == 0 {
			return nil, nil
		}
		return queue[len(queue)-1].data, nil
	case "count":
		return int64(len(queue)), nil
	case "sum":
		var sum float64
		allInt := true
		var isum int64
		for _, p := range queue {
			f, ok := asFloat(p.data)
			if !ok {
				return nil, errors.Newf("evaluation_fatal: sliding window sum requires numeric data")
			}
			sum += f
			if iv, ok := p.data.(int64); ok {
				isum += iv
			} else {
				allInt = false
			}
		}
		if allInt {
			return isum, nil
		}
		return sum, nil
	case "min", "max":
		if len(queue) == 0 {
			return nil, nil
		}
		best, ok := asFloat(queue[0].data)
		if !ok {
			return nil, errors.Newf("evaluation_fatal: sliding window %s requires numeric data", mode)
		}
		bestVal := queue[0].data
		for _, p := range queue[1:] {
			f, ok := asFloat(p.data)
			if !ok {
				return nil, errors.Newf("evaluation_fatal: sliding window %s requires numeric data", mode)
			}
			if (mode == "min" && f < best) || (mode == "max" && f > best) {
				best = f
				bestVal = p.data
			}
		}
		return bestVal, nil
	default:
		return nil, errors.Newf("evaluation_fatal: unknown sliding window reducer %q", mode)
	}
}
