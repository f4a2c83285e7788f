package executor_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ShapelessCat/leveled-signal-proc/examples"
	"github.com/ShapelessCat/leveled-signal-proc/executor"
	"github.com/ShapelessCat/leveled-signal-proc/lsdl"
)

// runScenario serializes a built DAG the way lspbuild would, loads it
// back the way lsprun would, and drives it against patches, returning
// the decoded output records in emission order.
func runScenario(t *testing.T, doc *lsdl.Document, patches []map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	loaded, err := executor.LoadDocument(raw)
	require.NoError(t, err)

	var lines []string
	for _, p := range patches {
		b, err := json.Marshal(p)
		require.NoError(t, err)
		lines = append(lines, string(b))
	}

	var out bytes.Buffer
	err = executor.Run(loaded, strings.NewReader(strings.Join(lines, "\n")), &out)
	require.NoError(t, err)

	var records []map[string]interface{}
	dec := json.NewDecoder(&out)
	for dec.More() {
		var rec map[string]interface{}
		require.NoError(t, dec.Decode(&rec))
		records = append(records, rec)
	}
	return records
}

func TestScenarioPlaytimeAccumulatesTimeSpentPlaying(t *testing.T) {
	doc := examples.PlaytimeScenario()
	records := runScenario(t, doc, []map[string]interface{}{
		{"t": 0, "player_state": "play"},
		{"t": 5_000_000_000, "player_state": "pause"},
		{"t": 10_000_000_000, "player_state": "play"},
		{"t": 12_000_000_000, "player_state": "stop"},
	})
	require.Len(t, records, 4)
	require.Equal(t, float64(7_000_000_000), records[3]["playtime"])
}

func TestScenarioBufferingSessionResetsAtSessionBoundary(t *testing.T) {
	doc := examples.BufferingSessionScenario()
	records := runScenario(t, doc, []map[string]interface{}{
		{"t": 0, "session_id": "s1", "player_state": "idle"},
		{"t": 1_000_000_000, "player_state": "buffering"},
		{"t": 3_000_000_000, "player_state": "play"},
		{"t": 5_000_000_000, "session_id": "s2", "player_state": "buffering"},
		{"t": 6_000_000_000, "player_state": "play"},
	})
	require.Len(t, records, 5)

	require.Equal(t, float64(1), records[0]["session"])
	require.Equal(t, float64(0), records[0]["buffering_duration"])

	require.Equal(t, float64(1), records[2]["session"])
	require.Equal(t, float64(2_000_000_000), records[2]["buffering_duration"])

	require.Equal(t, float64(2), records[3]["session"])
	require.Equal(t, float64(0), records[3]["buffering_duration"])

	require.Equal(t, float64(2), records[4]["session"])
	require.Equal(t, float64(1_000_000_000), records[4]["buffering_duration"])
}

func TestScenarioLatchForgetReverts(t *testing.T) {
	doc := examples.LatchForgetScenario()
	records := runScenario(t, doc, []map[string]interface{}{
		{"t": 0, "ctrl": true},
		{"t": 500_000_000, "ctrl": false},
		{"t": 2_000_000_000, "ctrl": false},
	})
	require.Len(t, records, 3)
	require.Equal(t, true, records[0]["latched"])
	require.Equal(t, true, records[1]["latched"])
	require.Equal(t, false, records[2]["latched"])
}

func TestScenarioAccumulatorFilterSumsThreeEvents(t *testing.T) {
	doc := examples.AccumulatorFilterScenario()
	records := runScenario(t, doc, []map[string]interface{}{
		{"t": 0, "event": 1},
		{"t": 1_000_000_000, "event": 2},
		{"t": 2_000_000_000, "event": 3},
	})
	require.Len(t, records, 3)
	require.Equal(t, float64(3), records[2]["total"])
}

func TestScenarioStateMachineSaturatesAtCap(t *testing.T) {
	doc := examples.StateMachineScenario()
	records := runScenario(t, doc, []map[string]interface{}{
		{"t": 0, "tick": 10},
		{"t": 1_000_000_000, "tick": 20},
		{"t": 2_000_000_000, "tick": 30},
		{"t": 3_000_000_000, "tick": 40},
	})
	require.Len(t, records, 4)

	gotStates := make([]float64, len(records))
	for i, r := range records {
		gotStates[i] = r["state"].(float64)
	}
	require.Equal(t, []float64{1, 2, 2, 2}, gotStates)

	require.Equal(t, true, records[0]["state_eq_1"])
	require.Equal(t, false, records[1]["state_eq_1"])

	for _, r := range records {
		require.Equal(t, true, r["state_ge_1"])
	}
}

func TestScenarioIntervalComplementTracksSessionDelta(t *testing.T) {
	doc := examples.IntervalComplementScenario()
	records := runScenario(t, doc, []map[string]interface{}{
		{"t": 0, "player_state": "play"},
		{"t": 5_000_000_000, "player_state": "pause"},
		{"t": 10_000_000_000, "session_boundary": true, "player_state": "play"},
		{"t": 15_000_000_000, "player_state": "pause"},
	})
	require.Len(t, records, 4)

	require.Equal(t, float64(10_000_000_000), records[3]["life_session_playtime"])
	require.Equal(t, float64(5_000_000_000), records[3]["interval_life_session_playtime"])
}

func TestScenarioSessionizedMemberRevertsAtSessionBoundary(t *testing.T) {
	doc := examples.SessionizedMemberScenario()
	records := runScenario(t, doc, []map[string]interface{}{
		{"t": 0, "session_id": "A", "reward_tier": "gold"},
		{"t": 1_000_000_000, "session_id": "B"},
		{"t": 2_000_000_000},
		{"t": 3_000_000_000, "reward_tier": "silver"},
	})
	require.Len(t, records, 4)

	require.Equal(t, float64(1), records[0]["session"])
	require.Equal(t, "gold", records[0]["sessionized_reward_tier"])

	require.Equal(t, float64(2), records[1]["session"])
	require.Equal(t, "", records[1]["sessionized_reward_tier"])

	require.Equal(t, float64(2), records[2]["session"])
	require.Equal(t, "", records[2]["sessionized_reward_tier"])

	require.Equal(t, float64(2), records[3]["session"])
	require.Equal(t, "silver", records[3]["sessionized_reward_tier"])
}

func TestAllRegisteredScenariosBuildWithoutPanicking(t *testing.T) {
	for name, scenario := range examples.Scenarios {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				doc := scenario.Build()
				require.NotEmpty(t, doc.Nodes)
				_, err := json.Marshal(doc)
				require.NoError(t, err)
			})
		})
	}
}

func TestScenarioNamesMatchRegistry(t *testing.T) {
	names := examples.Names()
	require.Len(t, names, len(examples.Scenarios))
	for _, n := range names {
		_, ok := examples.Scenarios[n]
		require.True(t, ok, fmt.Sprintf("Names() returned unregistered scenario %q", n))
	}
}
