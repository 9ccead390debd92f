package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	s := NewState()
	p := s.AddProgram("bob", "martingale")
	p.Statements = []Statement{
		{Condition: "init", Action: "variable create bet 1"},
		{Condition: "true", Action: "bet pass {bet}; print placed"},
	}
	s.AddProgram("bob", "idle")
	s.Active["bob"] = "martingale"
	s.SetFunction("alice", &Function{Name: "add2", Params: []string{"a", "b"}, Body: "a + b"})
	s.SetFunction("alice", &Function{Name: "one", Body: "1"})
	s.SetVariable("alice", "x", Number(5))
	s.SetVariable("alice", "flag", Boolean(true))
	return s
}

func TestStateMarshalJSON_Document(t *testing.T) {
	data, err := json.Marshal(sampleState())
	require.NoError(t, err)

	want := `{
		"playerPrograms": [
			["bob", [
				["martingale", [
					{"condition": "init", "action": "variable create bet 1"},
					{"condition": "true", "action": "bet pass {bet}; print placed"}
				]],
				["idle", []]
			]]
		],
		"activePlayerPrograms": [["bob", "martingale"]],
		"playerFunctions": [
			["alice", [
				["add2", {"params": ["a", "b"], "body": "a + b"}],
				["one", {"params": [], "body": "1"}]
			]]
		],
		"playerVariables": [
			["alice", [
				["flag", {"type": "boolean", "value": true}],
				["x", {"type": "number", "value": 5}]
			]]
		]
	}`
	assert.JSONEq(t, want, string(data))
}

func TestStateMarshalJSON_Empty(t *testing.T) {
	data, err := json.Marshal(NewState())
	require.NoError(t, err)
	assert.JSONEq(t, `{"playerPrograms":[],"activePlayerPrograms":[],"playerFunctions":[],"playerVariables":[]}`, string(data))
}

func TestStateRoundTrip(t *testing.T) {
	orig := sampleState()
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var loaded State
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.Equal(t, orig, &loaded)

	again, err := json.Marshal(&loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestStateUnmarshalJSON_Errors(t *testing.T) {
	tests := map[string]string{
		"pair too short":      `{"playerPrograms":[["bob"]]}`,
		"dangling active":     `{"activePlayerPrograms":[["bob","missing"]]}`,
		"bad variable type":   `{"playerVariables":[["bob",[["x",{"type":"text","value":"y"}]]]]}`,
		"non-string username": `{"playerFunctions":[[1,[]]]}`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			var s State
			assert.Error(t, json.Unmarshal([]byte(doc), &s))
		})
	}
}

func TestStateTables(t *testing.T) {
	s := NewState()

	assert.False(t, s.SetVariable("u", "x", Number(1)))
	assert.True(t, s.SetVariable("u", "x", Number(2)))
	v, ok := s.Variable("u", "x")
	require.True(t, ok)
	assert.Equal(t, Number(2), v)

	assert.True(t, s.DeleteVariable("u", "x"))
	assert.False(t, s.DeleteVariable("u", "x"))
	assert.NotContains(t, s.Variables, "u", "empty per-user tables are pruned")

	s.AddProgram("u", "a")
	s.AddProgram("u", "b")
	_, idx := s.Program("u", "b")
	assert.Equal(t, 1, idx)
	s.DeleteProgram("u", 0)
	p, idx := s.Program("u", "b")
	require.NotNil(t, p)
	assert.Equal(t, 0, idx)
	s.DeleteProgram("u", 0)
	assert.NotContains(t, s.Programs, "u")
}

func TestActiveUsersSorted(t *testing.T) {
	s := NewState()
	s.Active["zed"] = "p"
	s.Active["amy"] = "p"
	s.Active["kim"] = "p"
	assert.Equal(t, []string{"amy", "kim", "zed"}, s.ActiveUsers())
}
