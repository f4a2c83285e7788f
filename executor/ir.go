// Package executor consumes an IR document emitted by the lsdl builder
// and drives it against a JSONL patch stream, emitting a JSONL metric
// stream. It is deliberately decoupled from the lsdl package: it only
// ever sees the serialized IR, never a live *lsdl.Builder, mirroring
// the source's own builder/executor separation.
package executor

import (
	"encoding/json"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// Document is the deserialized IR: schema, the ordered node list, and
// the two policies governing trigger/output and moment semantics.
type Document struct {
	Schema            SchemaIR            `json:"schema"`
	Nodes             []NodeIR            `json:"nodes"`
	MeasurementPolicy MeasurementPolicyIR `json:"measurement_policy"`
	ProcessingPolicy  ProcessingPolicyIR  `json:"processing_policy"`
}

// SchemaIR mirrors lsdl.Schema.ToDict's shape.
type SchemaIR struct {
	TypeName     string                 `json:"type_name"`
	TimestampKey string                 `json:"patch_timestamp_key"`
	Members      map[string]MemberIR    `json:"members"`
}

// MemberIR mirrors lsdl.Member.toDict's shape.
type MemberIR struct {
	Type            string                 `json:"type"`
	ClockCompanion  string                 `json:"clock_companion"`
	InputKey        string                 `json:"input_key"`
	SignalBehavior  *SignalBehaviorIR      `json:"signal_behavior,omitempty"`
	EnumVariants    []string               `json:"enum_variants,omitempty"`
	Members         map[string]MemberIR    `json:"members,omitempty"`
}

type SignalBehaviorIR struct {
	Name        string `json:"name"`
	DefaultExpr string `json:"default_expr"`
}

// RefIR mirrors lsdl.Ref's tagged-union JSON shape.
type RefIR struct {
	Type     string  `json:"type"`
	ID       json.RawMessage `json:"id,omitempty"`
	Value    string  `json:"value,omitempty"`
	TypeName string  `json:"type_name,omitempty"`
	Values   []RefIR `json:"values,omitempty"`
}

// ComponentID returns the node id this ref points at, and false when
// the ref is not a Component ref or its id is not an integer.
func (r RefIR) ComponentID() (int, bool) {
	if r.Type != "Component" {
		return 0, false
	}
	var id int
	if err := json.Unmarshal(r.ID, &id); err != nil {
		return 0, false
	}
	return id, true
}

// InputName returns the referenced schema member name, when this ref
// is an InputSignal.
func (r RefIR) InputName() (string, bool) {
	if r.Type != "InputSignal" {
		return "", false
	}
	var name string
	if err := json.Unmarshal(r.ID, &name); err != nil {
		return "", false
	}
	return name, true
}

// NodeIR mirrors lsdl.Node.ToDict's shape.
type NodeIR struct {
	ID            int             `json:"id"`
	IsMeasurement bool            `json:"is_measurement"`
	NodeDecl      string          `json:"node_decl"`
	Upstreams     []RefIR         `json:"upstreams"`
	Package       string          `json:"package"`
	Namespace     string          `json:"namespace"`
	DebugInfo     json.RawMessage `json:"debug_info"`
}

// declKind extracts the node_decl payload's own "kind" discriminator,
// which is authoritative over Namespace for dispatch.
func (n NodeIR) declKind() (string, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(n.NodeDecl), &head); err != nil {
		return "", errors.Wrapf(err, "ir_malformed: node %d has unparsable node_decl", n.ID)
	}
	return head.Kind, nil
}

type MeasurementPolicyIR struct {
	OutputSchema                map[string]OutputMetricIR `json:"output_schema"`
	MeasureAtEventFilter         string                    `json:"measure_at_event_filter,omitempty"`
	MeasureTriggerSignal         *RefIR                    `json:"measure_trigger_signal,omitempty"`
	MeasureLeftSideLimitSignal   bool                      `json:"measure_left_side_limit_signal"`
	ComplementaryOutputConfig    *ComplementaryOutputIR    `json:"complementary_output_config,omitempty"`
}

type OutputMetricIR struct {
	Source RefIR  `json:"source"`
	Type   string `json:"type"`
}

type ComplementaryOutputIR struct {
	ResetSwitch RefIR    `json:"reset_switch"`
	LifeMetrics []string `json:"life_metrics"`
}

type ProcessingPolicyIR struct {
	MergeSimultaneousMoments bool `json:"merge_simultaneous_moments"`
}

// LoadDocument parses a full IR document, failing with ir_malformed on
// any structural problem.
func LoadDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "ir_malformed: failed to parse IR document")
	}
	for id, n := range doc.Nodes {
		if n.ID != id {
			return nil, errors.Newf("ir_malformed: node ids must be dense 0..N-1 in order, got id %d at position %d", n.ID, id)
		}
	}
	return &doc, nil
}
