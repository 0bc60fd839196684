package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntryBuildsAllFields(t *testing.T) {
	entry := NewEntry().
		RunID("run-1").
		Component("colgen").
		Action(ActionAdmit).
		Outcome(OutcomeSuccess).
		Flow("flow-3").
		Node("7").
		Cycle(42).
		Duration(100 * time.Millisecond).
		Meta("key1", "value1").
		Build()

	assert.Equal(t, "run-1", entry.RunID)
	assert.Equal(t, "colgen", entry.Component)
	assert.Equal(t, ActionAdmit, entry.Action)
	assert.Equal(t, OutcomeSuccess, entry.Outcome)
	assert.Equal(t, "flow-3", entry.FlowID)
	assert.Equal(t, "7", entry.NodeID)
	assert.EqualValues(t, 42, entry.Cycle)
	assert.EqualValues(t, 100, entry.DurationMs)
	assert.Equal(t, "value1", entry.Metadata["key1"])
	assert.NotEmpty(t, entry.ID)
}

func TestBuilderError(t *testing.T) {
	entry := NewEntry().
		Component("node").
		Action(ActionDrop).
		Outcome(OutcomeFailure).
		Error("MAPPING_MISS", "no mapping for label").
		Build()

	assert.Equal(t, "MAPPING_MISS", entry.ErrorCode)
	assert.Equal(t, "no mapping for label", entry.ErrorMessage)
}

func TestEntryMarshalJSONRoundTrips(t *testing.T) {
	entry := NewEntry().
		RunID("run-1").
		Component("rmp").
		Action(ActionColGen).
		Outcome(OutcomeSuccess).
		Build()

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded Entry
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, entry.RunID, decoded.RunID)
	assert.Equal(t, entry.Action, decoded.Action)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "stdout", cfg.Backend)
	assert.Equal(t, 1000, cfg.BufferSize)
	assert.Equal(t, 5*time.Second, cfg.FlushPeriod)
}

func TestActionConstants(t *testing.T) {
	cases := map[Action]string{
		ActionConfigLoad:  "CONFIG_LOAD",
		ActionColGen:      "COLGEN",
		ActionAdmit:       "ADMIT",
		ActionReject:      "REJECT",
		ActionForward:     "FORWARD",
		ActionDrop:        "DROP",
		ActionRunComplete: "RUN_COMPLETE",
	}
	for action, expected := range cases {
		assert.Equal(t, expected, string(action))
	}
}

func TestOutcomeConstants(t *testing.T) {
	cases := map[Outcome]string{
		OutcomeSuccess: "SUCCESS",
		OutcomeFailure: "FAILURE",
		OutcomeDenied:  "DENIED",
	}
	for outcome, expected := range cases {
		assert.Equal(t, expected, string(outcome))
	}
}

func TestQueryFilter(t *testing.T) {
	now := time.Now()
	filter := &QueryFilter{
		StartTime: &now,
		EndTime:   &now,
		RunID:     "run-1",
		Component: "node",
		Action:    ActionForward,
		Outcome:   OutcomeSuccess,
		FlowID:    "flow-1",
		NodeID:    "3",
		Limit:     100,
	}

	assert.Equal(t, "run-1", filter.RunID)
	assert.Equal(t, 100, filter.Limit)
}

func TestGenerateIDProducesTimestampPrefixedID(t *testing.T) {
	id := generateID()

	assert.NotEmpty(t, id)
	assert.GreaterOrEqual(t, len(id), 14)
}
