package lsdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaSessionizeRejectsUnknownMember(t *testing.T) {
	s := NewSchema("Event", "t")
	err := s.Sessionize("missing")
	assert.Error(t, err)
	assert.False(t, s.Sessionized)
}

func TestSchemaSessionizeRecordsSessionAndEpochKeys(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("session_id", "", String())
	require.NoError(t, err)

	require.NoError(t, s.Sessionize("session_id"))
	assert.True(t, s.Sessionized)
	assert.Equal(t, "session_id", s.SessionSignalKey)
	assert.Equal(t, "session_id_clock", s.EpochSignalKey)
}

func TestBuilderSessionizePanicsWithoutSchemaSessionize(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("x", "", I32())
	require.NoError(t, err)
	b := NewBuilder(s)

	assert.Panics(t, func() {
		b.Sessionize(b.Input("x"))
	})
}

func TestBuilderSessionizeBuildsSessionAndEpochSignals(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("session_id", "", String())
	require.NoError(t, err)
	_, err = s.AddMember("x", "", I32())
	require.NoError(t, err)
	require.NoError(t, s.Sessionize("session_id"))
	b := NewBuilder(s)

	x := b.Input("x")
	session, epoch, sessionized := b.Sessionize(x)

	assert.Equal(t, "i32", session.Type().TypeName())
	assert.Equal(t, KindValueChangeCounter, session.node.Kind)

	// InputClock never allocates a node of its own -- it resolves
	// directly to the member's companion clock ref.
	assert.Equal(t, RefInputSignal, epoch.ref.Kind)
	assert.Equal(t, "session_id_clock", epoch.ref.InputName)
	assert.Equal(t, "u64", epoch.Type().TypeName())

	require.Len(t, sessionized, 1)
	assert.Equal(t, "i32", sessionized[0].Type().TypeName())
}

func TestSessionizeRequiresRawInputMembers(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("session_id", "", String())
	require.NoError(t, err)
	_, err = s.AddMember("x", "", I32())
	require.NoError(t, err)
	require.NoError(t, s.Sessionize("session_id"))
	b := NewBuilder(s)

	derived := b.Input("x").Add(b.Const(1, I32()))

	assert.Panics(t, func() {
		b.Sessionize(derived)
	})
}

func TestSessionizedMemberFallsBackToTypeDefaultConstant(t *testing.T) {
	s := NewSchema("Event", "t")
	_, err := s.AddMember("session_id", "", String())
	require.NoError(t, err)
	_, err = s.AddMember("x", "", String())
	require.NoError(t, err)
	require.NoError(t, s.Sessionize("session_id"))
	b := NewBuilder(s)

	_, _, sessionized := b.Sessionize(b.Input("x"))
	held := sessionized[0]

	// a0 <= a1 ? a2 : a3 mapper, with a3 the type default constant.
	require.Len(t, held.node.Upstreams, 4)
	defaultRef := held.node.Upstreams[3]
	assert.Equal(t, RefConstant, defaultRef.Kind)
	assert.Equal(t, `""`, defaultRef.ConstValue)

	memberRef := held.node.Upstreams[2]
	assert.Equal(t, RefInputSignal, memberRef.Kind)
	assert.Equal(t, "x", memberRef.InputName)
}
