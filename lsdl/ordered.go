package lsdl

import (
	"bytes"
	"encoding/json"
)

// orderedDict renders as a JSON object whose keys appear in insertion
// order rather than the sorted order Go's map marshaling would use.
// The IR's member and output-schema maps carry declaration order that
// property tests rely on (spec.md §4.B), so every such map in this
// package is built through orderedDict instead of a plain map.
type orderedDict struct {
	keys   []string
	values []interface{}
}

func newOrderedDict() *orderedDict {
	return &orderedDict{}
}

func (d *orderedDict) set(key string, value interface{}) {
	d.keys = append(d.keys, key)
	d.values = append(d.values, value)
}

func (d *orderedDict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
