package lsdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func combinatorBuilder(t *testing.T) (*Builder, Handle) {
	t.Helper()
	s := NewSchema("Event", "t")
	_, err := s.AddMember("flag", "", Bool())
	require.NoError(t, err)
	b := NewBuilder(s)
	return b, b.Input("flag")
}

func TestMapMeasurementRequiresMeasurementHandle(t *testing.T) {
	b, flag := combinatorBuilder(t)
	assert.Panics(t, func() { b.MapMeasurement(flag, "a0", Bool()) })
}

func TestMapMeasurementProducesMeasurement(t *testing.T) {
	b, flag := combinatorBuilder(t)
	m := b.Peek(flag)
	mapped := b.MapMeasurement(m, "!a0", Bool())
	assert.True(t, mapped.isMeasurement)
	assert.Equal(t, KindMeasurementMapper, mapped.node.Kind)
	assert.Len(t, mapped.node.Upstreams, 1)
}

func TestScopeMeasurementRequiresMeasurementHandle(t *testing.T) {
	b, flag := combinatorBuilder(t)
	assert.Panics(t, func() { b.ScopeMeasurement(flag, flag) })
}

func TestScopeMeasurementAllowsNonMeasurementScope(t *testing.T) {
	b, flag := combinatorBuilder(t)
	m := b.DurationTrue(flag)
	scoped := b.ScopeMeasurement(flag, m)
	assert.True(t, scoped.isMeasurement)
	assert.Equal(t, m.Type().TypeName(), scoped.Type().TypeName())
	assert.Equal(t, KindMeasurementScope, scoped.node.Kind)
	assert.Len(t, scoped.node.Upstreams, 2)
}

func TestCombineMeasurementsRequiresBothSidesAreMeasurements(t *testing.T) {
	b, flag := combinatorBuilder(t)
	m := b.Peek(flag)
	assert.Panics(t, func() { b.CombineMeasurements(m, flag, "a0 && a1", Bool()) })
	assert.Panics(t, func() { b.CombineMeasurements(flag, m, "a0 && a1", Bool()) })
}

func TestCombineMeasurementsProducesBinaryMeasurement(t *testing.T) {
	b, flag := combinatorBuilder(t)
	m1 := b.Peek(flag)
	m2 := b.DurationTrue(flag)
	combined := b.CombineMeasurements(m1, m2, "a0 ? a1 : 0", I64())
	assert.True(t, combined.isMeasurement)
	assert.Equal(t, KindMeasurementBinary, combined.node.Kind)
	assert.Len(t, combined.node.Upstreams, 2)
}
