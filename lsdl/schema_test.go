package lsdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaAddMemberDefaultsInputKey(t *testing.T) {
	s := NewSchema("Event", "")
	m, err := s.AddMember("player_state", "", String())
	require.NoError(t, err)
	assert.Equal(t, "player_state", m.InputKey)
	assert.Equal(t, "player_state_clock", m.ClockName())
	assert.Equal(t, "timestamp", s.TimestampKey)
}

func TestSchemaAddMemberRejectsDuplicate(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("x", "", I32())
	require.NoError(t, err)

	_, err = s.AddMember("x", "", I32())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_conflict")
}

func TestSchemaAddVolatileMember(t *testing.T) {
	s := NewSchema("Event", "t")
	m, err := s.AddVolatileMember("boundary", "", Bool(), "false")
	require.NoError(t, err)
	assert.True(t, m.Volatile)
	assert.Equal(t, "false", m.ResetExpr)
}

func TestSchemaMemberLookupUnknown(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.Member("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_member")
}

func TestSchemaAddObjectMemberExposesDottedChildren(t *testing.T) {
	s := NewSchema("Event", "t")
	child, err := s.AddMember("x", "", I32())
	require.NoError(t, err)
	// re-declare x under an object, children addressable by dotted path
	_, err = s.AddObjectMember("position", "", child)
	require.NoError(t, err)

	got, err := s.Member("position.x")
	require.NoError(t, err)
	assert.Same(t, child, got)
}

func TestSchemaAddObjectMemberRejectsDuplicateName(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("position", "", I32())
	require.NoError(t, err)

	child, err := s.AddMember("x", "", I32())
	require.NoError(t, err)
	_, err = s.AddObjectMember("position", "", child)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_conflict")
}

func TestSchemaToDictPreservesDeclarationOrder(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("b", "", I32())
	require.NoError(t, err)
	_, err = s.AddMember("a", "", I32())
	require.NoError(t, err)

	d := s.ToDict()
	assert.Equal(t, "Event", d["type_name"])
	assert.Equal(t, "t", d["patch_timestamp_key"])

	members := d["members"].(*orderedDict)
	assert.Equal(t, []string{"b", "a"}, members.keys)
}
