package lsdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderAddNodeAssignsDenseIDsInInsertionOrder(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("x", "", I32())
	require.NoError(t, err)
	b := NewBuilder(s)

	h0 := b.Input("x").Map("a0", I32())
	h1 := h0.Add(1)
	h2 := h1.Add(2)

	nodes := b.Nodes()
	require.Len(t, nodes, 3)
	for i, n := range nodes {
		assert.Equal(t, i, n.ID)
	}
	assert.Equal(t, 0, h0.Ref().ComponentID)
	assert.Equal(t, 1, h1.Ref().ComponentID)
	assert.Equal(t, 2, h2.Ref().ComponentID)
}

func TestRefMarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		ref  Ref
		want string
	}{
		{"component", Ref{Kind: RefComponent, ComponentID: 3}, `{"id":3,"type":"Component"}`},
		{"input signal", Ref{Kind: RefInputSignal, InputName: "x"}, `{"id":"x","type":"InputSignal"}`},
		{"constant", Ref{Kind: RefConstant, ConstValue: "1i32", ConstType: "i32"}, `{"type":"Constant","type_name":"i32","value":"1i32"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := c.ref.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, c.want, string(b))
		})
	}
}

func TestNodeToDictNamespace(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("x", "", Bool())
	require.NoError(t, err)
	b := NewBuilder(s)
	h := b.Input("x").Not()

	d := h.node.ToDict()
	assert.Equal(t, "lsp_component::processors::SignalMapper", d["namespace"])
	assert.Equal(t, false, d["is_measurement"])
}
