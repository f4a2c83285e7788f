package lsdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measurementBuilder(t *testing.T) (*Builder, Handle) {
	t.Helper()
	s := NewSchema("Event", "t")
	_, err := s.AddMember("flag", "", Bool())
	require.NoError(t, err)
	_, err = s.AddMember("x", "", I32())
	require.NoError(t, err)
	b := NewBuilder(s)
	return b, b.Input("flag")
}

func TestPeekProducesMeasurementOfSignalType(t *testing.T) {
	b, flag := measurementBuilder(t)
	h := b.Peek(flag)
	assert.True(t, h.isMeasurement)
	assert.Equal(t, "bool", h.Type().TypeName())
	assert.Equal(t, KindPeek, h.node.Kind)
}

func TestPeekTimestampDefaultsFormatLayout(t *testing.T) {
	b, flag := measurementBuilder(t)
	h := b.PeekTimestamp(flag, "")
	assert.Contains(t, h.node.Decl, builtinDateTimeFormat)
	assert.Equal(t, "string", h.Type().TypeName())
}

func TestPeekTimestampHonorsCustomFormat(t *testing.T) {
	b, flag := measurementBuilder(t)
	h := b.PeekTimestamp(flag, "2006-01-02")
	assert.Contains(t, h.node.Decl, "2006-01-02")
}

func TestDurationTrueRejectsNonBoolSignal(t *testing.T) {
	b, _ := measurementBuilder(t)
	assert.Panics(t, func() { b.DurationTrue(b.Input("x")) })
}

func TestDurationTrueProducesI64Measurement(t *testing.T) {
	b, flag := measurementBuilder(t)
	h := b.DurationTrue(flag)
	assert.True(t, h.isMeasurement)
	assert.Equal(t, "i64", h.Type().TypeName())
	assert.Equal(t, KindDurationTrue, h.node.Kind)
}

func TestDurationSinceBecomeTrueRejectsNonBoolSignal(t *testing.T) {
	b, _ := measurementBuilder(t)
	assert.Panics(t, func() { b.DurationSinceBecomeTrue(b.Input("x")) })
}

func TestDurationOfCurrentLevelAcceptsAnySignalType(t *testing.T) {
	b, _ := measurementBuilder(t)
	h := b.DurationOfCurrentLevel(b.Input("x"))
	assert.Equal(t, "i64", h.Type().TypeName())
	assert.Equal(t, KindDurationOfCurrentLevel, h.node.Kind)
}

func TestLinearChangeProducesFloatMeasurement(t *testing.T) {
	b, _ := measurementBuilder(t)
	h := b.LinearChange(b.Input("x"))
	assert.Equal(t, "f64", h.Type().TypeName())
}

func TestDiffSinceCurrentLevelDefaultsExprAndTakesTwoUpstreams(t *testing.T) {
	b, flag := measurementBuilder(t)
	x := b.Input("x")
	h := b.DiffSinceCurrentLevel(flag, x, "", I32())
	assert.Contains(t, h.node.Decl, "current - baseline")
	assert.Len(t, h.node.Upstreams, 2)
}

func TestDiffSinceCurrentLevelHonorsCustomExpr(t *testing.T) {
	b, flag := measurementBuilder(t)
	x := b.Input("x")
	h := b.DiffSinceCurrentLevel(flag, x, "baseline - current", I32())
	assert.Contains(t, h.node.Decl, "baseline - current")
}
