package lsdl

import (
	"encoding/json"
	"fmt"
)

// RefKind tags how an upstream or output-schema source resolves: to a
// built node, to a schema input member, to an inline constant, or to an
// ordered tuple of any of the above.
type RefKind string

const (
	RefComponent  RefKind = "Component"
	RefInputSignal RefKind = "InputSignal"
	RefConstant   RefKind = "Constant"
	RefTuple      RefKind = "Tuple"
)

// Ref is the IR's polymorphic reference to "whatever produces a value":
// a previously built component node, a schema input member, an inline
// constant, or a tuple thereof.
type Ref struct {
	Kind        RefKind
	ComponentID int
	InputName   string
	ConstValue  string
	ConstType   string
	Tuple       []Ref
}

// MarshalJSON renders a Ref in the IR's tagged-union shape.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RefComponent:
		return json.Marshal(map[string]interface{}{"type": "Component", "id": r.ComponentID})
	case RefInputSignal:
		return json.Marshal(map[string]interface{}{"type": "InputSignal", "id": r.InputName})
	case RefConstant:
		return json.Marshal(map[string]interface{}{"type": "Constant", "value": r.ConstValue, "type_name": r.ConstType})
	case RefTuple:
		return json.Marshal(map[string]interface{}{"type": "Tuple", "values": r.Tuple})
	default:
		return nil, fmt.Errorf("ref with unknown kind %q", r.Kind)
	}
}

// NodeKind tags the taxonomy of a built component node.
type NodeKind string

const (
	KindSignalMapper         NodeKind = "SignalMapper"
	KindLevelTriggeredLatch  NodeKind = "Latch"
	KindEdgeTriggeredLatch   NodeKind = "EdgeLatch"
	KindAccumulator          NodeKind = "Accumulator"
	KindStateMachine         NodeKind = "StateMachine"
	KindSlidingWindowCount   NodeKind = "SlidingWindow"
	KindSlidingWindowTime    NodeKind = "SlidingTimeWindow"
	KindLivenessChecker      NodeKind = "LivenessChecker"
	KindSquareWave           NodeKind = "SignalGenerator::SquareWave"
	KindMonotonicSteps       NodeKind = "SignalGenerator::MonotonicSteps"
	KindSignalGeneratorFn    NodeKind = "SignalGenerator::Fn"
	KindValueChangeCounter   NodeKind = "ValueChangeCounter"

	KindPeek                    NodeKind = "Peek"
	KindPeekTimestamp           NodeKind = "PeekTimestamp"
	KindDurationTrue            NodeKind = "DurationTrue"
	KindDurationSinceBecomeTrue NodeKind = "DurationSinceBecomeTrue"
	KindDurationOfCurrentLevel  NodeKind = "DurationOfCurrentLevel"
	KindLinearChange            NodeKind = "LinearChange"
	KindDiffSinceCurrentLevel   NodeKind = "DiffSinceCurrentLevel"

	KindMeasurementMapper NodeKind = "MappedMeasurement"
	KindMeasurementScope  NodeKind = "ScopedMeasurement"
	KindMeasurementBinary NodeKind = "BinaryCombinedMeasurement"
)

// Node is a built, uniquely-identified DAG node: a processor, a
// measurement, or a measurement combinator. Input members and constants
// are not Nodes; they are resolved directly to a Ref.
type Node struct {
	ID            int
	Kind          NodeKind
	IsMeasurement bool
	OutputType    Type
	Upstreams     []Ref
	Decl          string // opaque kind-specific construction snippet, JSON-encoded
	DebugInfo     DebugInfo
}

func (n *Node) ToDict() map[string]interface{} {
	return map[string]interface{}{
		"id":             n.ID,
		"is_measurement": n.IsMeasurement,
		"node_decl":      n.Decl,
		"upstreams":      n.Upstreams,
		"package":        "lsp-component",
		"namespace":      fmt.Sprintf("lsp_component::%s::%s", roleDir(n.IsMeasurement), n.Kind),
		"debug_info":     n.DebugInfo.ToDict(),
	}
}

func roleDir(isMeasurement bool) string {
	if isMeasurement {
		return "measurements"
	}
	return "processors"
}

// Builder is the construction-time context: it accumulates nodes, the
// schema, and the measurement/processing policies that together become
// one IR document. There is exactly one Builder per DAG under
// construction; the executor never shares state with it.
type Builder struct {
	Schema     *Schema
	Measurement *MeasurementPolicy
	Processing  *ProcessingPolicy

	nodes    []*Node
	nextID   int
}

// NewBuilder creates an empty builder context over the given schema.
func NewBuilder(schema *Schema) *Builder {
	return &Builder{
		Schema:      schema,
		Measurement: newMeasurementPolicy(),
		Processing:  newProcessingPolicy(),
	}
}

// Handle is a reference to a value-producing thing in the DAG: an input
// member, a constant, or a built node (signal or measurement). All
// author-facing chaining methods (operators, .peek(), .add_metric(), the
// processor/measurement constructors) operate on Handle.
type Handle struct {
	b             *Builder
	ref           Ref
	typ           Type
	isMeasurement bool
	node          *Node // non-nil when ref.Kind == RefComponent
}

func (h Handle) Ref() Ref          { return h.ref }
func (h Handle) Type() Type        { return h.typ }
func (h Handle) IsSignal() bool    { return !h.isMeasurement }
func (h Handle) IsMeasurement() bool { return h.isMeasurement }

// addNode registers a fresh node with the next dense id and wraps it in
// a Handle. The recorded debug info is the file/line of the caller of
// the constructor that called addNode.
func (b *Builder) addNode(kind NodeKind, isMeasurement bool, outputType Type, upstreams []Ref, decl interface{}) Handle {
	declJSON, err := json.Marshal(decl)
	if err != nil {
		panic(fmt.Sprintf("lsdl: failed to encode node_decl for %s: %v", kind, err))
	}
	n := &Node{
		ID:            b.nextID,
		Kind:          kind,
		IsMeasurement: isMeasurement,
		OutputType:    outputType,
		Upstreams:     upstreams,
		Decl:          string(declJSON),
		DebugInfo:     captureDebugInfo(2),
	}
	b.nextID++
	b.nodes = append(b.nodes, n)
	return Handle{b: b, ref: Ref{Kind: RefComponent, ComponentID: n.ID}, typ: outputType, isMeasurement: isMeasurement, node: n}
}

// Nodes returns every built node in insertion (id) order.
func (b *Builder) Nodes() []*Node { return b.nodes }
