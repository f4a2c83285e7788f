package lsdl

import "encoding/json"

// Document is the IR's top-level shape: the schema, the ordered list
// of built nodes, and the two policies governing trigger/output and
// moment-processing behavior. It is exactly what a build script emits
// on stdout and a run invocation consumes from --ir.
type Document struct {
	Schema             *Schema
	Nodes              []*Node
	MeasurementPolicy  *MeasurementPolicy
	ProcessingPolicy   *ProcessingPolicy
}

// Build finalizes the builder's accumulated state into an IR document.
func (b *Builder) Build() *Document {
	return &Document{
		Schema:            b.Schema,
		Nodes:             b.nodes,
		MeasurementPolicy: b.Measurement,
		ProcessingPolicy:  b.Processing,
	}
}

// MarshalJSON renders the document in the executor's expected shape:
// {"schema": ..., "nodes": [...], "measurement_policy": ..., "processing_policy": ...}.
func (d *Document) MarshalJSON() ([]byte, error) {
	nodes := make([]map[string]interface{}, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = n.ToDict()
	}
	return json.Marshal(map[string]interface{}{
		"schema":              d.Schema.ToDict(),
		"nodes":               nodes,
		"measurement_policy":  d.MeasurementPolicy.ToDict(),
		"processing_policy":   d.ProcessingPolicy.ToDict(),
	})
}

// MarshalIndent renders the document as pretty-printed JSON, the form
// emitted by `lspbuild build` to stdout.
func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
