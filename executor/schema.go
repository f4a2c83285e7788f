package executor

import (
	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// memberSlot is one addressable input member's runtime home: its
// patch-matching key, its value type tag, and (for volatile members)
// its parsed reset value.
type memberSlot struct {
	name         string
	inputKey     string
	typeName     string
	enumVariants []string
	isObject     bool
	children     map[string]*memberSlot // keyed by child's own input key, present only for object members
	isVolatile   bool
	resetValue   interface{}
}

// runtimeSchema is the executor's own view of the input schema,
// derived from the IR once at load time; it never references lsdl
// types.
type runtimeSchema struct {
	timestampKey string
	topLevel     []*memberSlot
	bySlug       map[string]*memberSlot // dotted path, e.g. "location.city"
	byClockName  map[string]*memberSlot // "<member>_clock" -> member
	allSlots     []*memberSlot          // every slot, top-level and nested, for reset/init passes
}

func buildRuntimeSchema(ir SchemaIR) (*runtimeSchema, error) {
	rs := &runtimeSchema{
		timestampKey: ir.TimestampKey,
		bySlug:       map[string]*memberSlot{},
		byClockName:  map[string]*memberSlot{},
	}
	for name, m := range ir.Members {
		slot, err := buildMemberSlot(name, m)
		if err != nil {
			return nil, err
		}
		rs.topLevel = append(rs.topLevel, slot)
		rs.register(name, slot, m.ClockCompanion)
		for childName, child := range m.Members {
			rs.register(name+"."+childName, slot.children[child.InputKey], child.ClockCompanion)
		}
	}
	return rs, nil
}

func (rs *runtimeSchema) register(slug string, slot *memberSlot, clockName string) {
	rs.bySlug[slug] = slot
	rs.allSlots = append(rs.allSlots, slot)
	if clockName == "" {
		clockName = slug + "_clock"
	}
	rs.byClockName[clockName] = slot
}

func buildMemberSlot(name string, m MemberIR) (*memberSlot, error) {
	slot := &memberSlot{
		name:         name,
		inputKey:     m.InputKey,
		typeName:     m.Type,
		enumVariants: m.EnumVariants,
	}
	if m.SignalBehavior != nil {
		v, err := parseLiteral(m.Type, m.SignalBehavior.DefaultExpr)
		if err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: member %q has unparsable reset default", name)
		}
		slot.isVolatile = true
		slot.resetValue = v
	}
	if len(m.Members) > 0 {
		slot.isObject = true
		slot.children = map[string]*memberSlot{}
		for childName, child := range m.Members {
			cs, err := buildMemberSlot(childName, child)
			if err != nil {
				return nil, err
			}
			slot.children[child.InputKey] = cs
		}
	}
	return slot, nil
}

// applyPatch walks patch against the schema's top-level members,
// updating values/clocks for every member present, recursing one level
// into object-typed members. Unknown top-level keys are ignored, per
// spec.md §4.F step 1.
func (rs *runtimeSchema) applyPatch(eng *Engine, patch map[string]interface{}) {
	for _, slot := range rs.topLevel {
		raw, present := patch[slot.inputKey]
		if !present {
			continue
		}
		if slot.isObject {
			nested, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			for _, child := range slot.children {
				if v, ok := nested[child.inputKey]; ok {
					eng.setMemberValue(child, v)
				}
			}
			continue
		}
		eng.setMemberValue(slot, raw)
	}
}
