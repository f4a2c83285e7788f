package lsdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processorBuilder(t *testing.T) *Builder {
	t.Helper()
	s := NewSchema("Event", "t")
	_, err := s.AddMember("ctrl", "", Bool())
	require.NoError(t, err)
	_, err = s.AddMember("x", "", I32())
	require.NoError(t, err)
	return NewBuilder(s)
}

func TestLevelTriggeredLatchPreservesDataType(t *testing.T) {
	b := processorBuilder(t)
	h := b.LevelTriggeredLatch(b.Input("ctrl"), b.Input("x"), -1)
	assert.Equal(t, "i32", h.Type().TypeName())
	assert.False(t, h.isMeasurement)
	assert.Equal(t, KindLevelTriggeredLatch, h.node.Kind)
	assert.Contains(t, h.node.Decl, `"forget_duration_ns":-1`)
}

func TestEdgeTriggeredLatchDefaultsFilterExprToTrue(t *testing.T) {
	b := processorBuilder(t)
	h := b.EdgeTriggeredLatch(b.Input("ctrl"), b.Input("x"), -1, "")
	assert.Contains(t, h.node.Decl, `"filter_expr":"true"`)
	assert.Equal(t, KindEdgeTriggeredLatch, h.node.Kind)
}

func TestAccumulatorDefaultsInitAndFilterExpr(t *testing.T) {
	b := processorBuilder(t)
	h := b.Accumulator(b.Input("ctrl"), b.Input("x"), "", "", I32())
	assert.Contains(t, h.node.Decl, `"init_expr":"0"`)
	assert.Contains(t, h.node.Decl, `"filter_expr":"true"`)
}

func TestCountChangesProducesI32ValueChangeCounter(t *testing.T) {
	b := processorBuilder(t)
	h := b.CountChanges(b.Input("ctrl"))
	assert.Equal(t, "i32", h.Type().TypeName())
	assert.Equal(t, KindValueChangeCounter, h.node.Kind)
	assert.Len(t, h.node.Upstreams, 1)
}

func TestStateMachineCarriesTransitionExpr(t *testing.T) {
	b := processorBuilder(t)
	h := b.StateMachine(b.Input("ctrl"), b.Input("x"), "0", "state + data", I32())
	assert.Contains(t, h.node.Decl, `"transition_expr":"state + data"`)
	assert.Contains(t, h.node.Decl, `"scoped":false`)
	assert.Len(t, h.node.Upstreams, 2)
}

func TestScopedStateMachineMarksScopedAndTakesThreeUpstreams(t *testing.T) {
	b := processorBuilder(t)
	h := b.ScopedStateMachine(b.Input("ctrl"), b.Input("ctrl"), b.Input("x"), "0", "state + data", I32())
	assert.Contains(t, h.node.Decl, `"scoped":true`)
	assert.Len(t, h.node.Upstreams, 3)
}

func TestSlidingWindowCountCarriesCountSize(t *testing.T) {
	b := processorBuilder(t)
	h := b.SlidingWindowCount(b.Input("ctrl"), b.Input("x"), 5, "queue", "0", I32())
	assert.Contains(t, h.node.Decl, `"count_size":5`)
	assert.Equal(t, KindSlidingWindowCount, h.node.Kind)
}

func TestSlidingWindowTimeCarriesTimeWindow(t *testing.T) {
	b := processorBuilder(t)
	h := b.SlidingWindowTime(b.Input("ctrl"), b.Input("x"), 5_000_000_000, "queue", "0", I32())
	assert.Contains(t, h.node.Decl, `"time_window_ns":5000000000`)
	assert.Equal(t, KindSlidingWindowTime, h.node.Kind)
}

func TestLivenessCheckerDefaultsEventFilterToTrue(t *testing.T) {
	b := processorBuilder(t)
	h := b.LivenessChecker(b.Input("ctrl"), "", 1_000_000_000)
	assert.Contains(t, h.node.Decl, `"event_filter_expr":"true"`)
	assert.Equal(t, "bool", h.Type().TypeName())
}

func TestSquareWaveHasNoUpstreams(t *testing.T) {
	b := processorBuilder(t)
	h := b.SquareWave(1_000_000_000, 0)
	assert.Empty(t, h.node.Upstreams)
	assert.Equal(t, "bool", h.Type().TypeName())
}

func TestMonotonicStepsProducesFloatSource(t *testing.T) {
	b := processorBuilder(t)
	h := b.MonotonicSteps(1_000_000_000, 0, 1, 0)
	assert.Equal(t, "f64", h.Type().TypeName())
	assert.Empty(t, h.node.Upstreams)
}

func TestMomentClockProducesU64Source(t *testing.T) {
	b := processorBuilder(t)
	h := b.MomentClock()
	assert.Equal(t, "u64", h.Type().TypeName())
	assert.Empty(t, h.node.Upstreams)
}

func TestSignalFilterBuilderRequiresPredicateBeforeBuild(t *testing.T) {
	b := processorBuilder(t)
	f := b.NewSignalFilter(b.Input("x"), b.Input("ctrl"))
	assert.Panics(t, func() { f.BuildClockFilter() })
}

func TestSignalFilterBuilderFilterTrueBuildsClockFilter(t *testing.T) {
	b := processorBuilder(t)
	f := b.NewSignalFilter(b.Input("ctrl"), b.Input("ctrl"))
	h := f.FilterTrue().BuildClockFilter()
	assert.Equal(t, KindLevelTriggeredLatch, h.node.Kind)
}

func TestSignalFilterBuilderFilterFnBuildsValueFilter(t *testing.T) {
	b := processorBuilder(t)
	f := b.NewSignalFilter(b.Input("x"), b.Input("ctrl"))
	h := f.FilterFn("a0 > 0").BuildValueFilter()
	assert.Equal(t, "i32", h.Type().TypeName())
}

func TestSignalFilterBuilderThenFilterChainsOnBoolSignal(t *testing.T) {
	b := processorBuilder(t)
	f := b.NewSignalFilter(b.Input("ctrl"), b.Input("ctrl")).FilterTrue()
	next := f.ThenFilter(b.Input("ctrl"))
	require.NotNil(t, next.predicate.b)
}

func TestMustBoolTypePanicsOnNonBool(t *testing.T) {
	b := processorBuilder(t)
	assert.Panics(t, func() { mustBoolType(b.Input("x")) })
}
