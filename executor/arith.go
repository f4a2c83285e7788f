package executor

import (
	"fmt"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// asBool coerces a runtime value to bool; only bool values are valid
// truth values in this sublanguage, same as the DAG model's "truthy"
// meaning non-default for control signals being resolved before
// reaching an expression.
func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errors.Newf("evaluation_fatal: expected bool, got %T (%v)", v, v)
	}
	return b, nil
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func negateNumeric(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case int64:
		return -n, nil
	case float64:
		return -n, nil
	}
	return nil, errors.Newf("evaluation_fatal: cannot negate non-numeric value %T", v)
}

// applyBinaryOp dispatches +,-,*,/,==,!=,<,>,<=,>=,^ over the runtime
// value's dynamic type, promoting int64/float64 mixes to float64 the
// same way the original's dynamically typed arithmetic did.
func applyBinaryOp(op string, l, r interface{}) (interface{}, error) {
	switch op {
	case "==":
		return valuesEqual(l, r), nil
	case "!=":
		return !valuesEqual(l, r), nil
	case "^":
		lb, err := asBool(l)
		if err != nil {
			return nil, err
		}
		rb, err := asBool(r)
		if err != nil {
			return nil, err
		}
		return lb != rb, nil
	}

	lf, lok := asFloat(l)
	rf, rok := asFloat(r)
	if lok && rok {
		_, lIsInt := l.(int64)
		_, rIsInt := r.(int64)
		bothInt := lIsInt && rIsInt
		switch op {
		case "<":
			return lf < rf, nil
		case ">":
			return lf > rf, nil
		case "<=":
			return lf <= rf, nil
		case ">=":
			return lf >= rf, nil
		case "+":
			if bothInt {
				return l.(int64) + r.(int64), nil
			}
			return lf + rf, nil
		case "-":
			if bothInt {
				return l.(int64) - r.(int64), nil
			}
			return lf - rf, nil
		case "*":
			if bothInt {
				return l.(int64) * r.(int64), nil
			}
			return lf * rf, nil
		case "/":
			if bothInt {
				if r.(int64) == 0 {
					return nil, errors.Newf("evaluation_fatal: integer division by zero")
				}
				return l.(int64) / r.(int64), nil
			}
			return lf / rf, nil
		}
	}

	if op == "+" {
		ls, lIsStr := l.(string)
		rs, rIsStr := r.(string)
		if lIsStr && rIsStr {
			return ls + rs, nil
		}
	}

	return nil, errors.Newf("evaluation_fatal: operator %q not defined for %T and %T", op, l, r)
}

func valuesEqual(l, r interface{}) bool {
	if lf, lok := asFloat(l); lok {
		if rf, rok := asFloat(r); rok {
			return lf == rf
		}
	}
	return fmt.Sprintf("%v", l) == fmt.Sprintf("%v", r) && sameKind(l, r)
}

// truthy reports whether a value counts as "non-default" for a
// control signal of any type, per spec.md §4.E's level-triggered latch
// wording ("whenever control is truthy (non-default)").
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	case int64:
		return x != 0
	case float64:
		return x != 0
	case nil:
		return false
	default:
		return true
	}
}

// dynamicZero returns the canonical zero for a value's own dynamic
// Go type, used by latches reverting to "the type default" when the
// executor has no separately carried static type for a processor
// node's output (processor nodes aren't type-annotated in the IR;
// only schema members and output metrics are).
func dynamicZero(v interface{}) interface{} {
	switch v.(type) {
	case bool:
		return false
	case string:
		return ""
	case int64:
		return int64(0)
	case float64:
		return float64(0)
	case []interface{}:
		return []interface{}{}
	default:
		return nil
	}
}

func sameKind(l, r interface{}) bool {
	switch l.(type) {
	case bool:
		_, ok := r.(bool)
		return ok
	case string:
		_, ok := r.(string)
		return ok
	default:
		return true
	}
}
