package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuedpixel/twitch-craps-bot/internal/engine"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
	"github.com/queuedpixel/twitch-craps-bot/internal/table"
	"github.com/queuedpixel/twitch-craps-bot/internal/testutil"
)

var sampleLines = []string{"a", "b", "a", "c"}

func TestAssertOutputContains(t *testing.T) {
	assert.NoError(t, assertOutputContains(sampleLines, Assertion{Line: "c"}))

	err := assertOutputContains(sampleLines, Assertion{Line: "z"})
	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, AssertOutputContains, ae.Type)
	assert.Contains(t, err.Error(), "[4] c", "failure lists the output")
}

func TestAssertOutputOrder(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		ok    bool
	}{
		{"in order", []string{"a", "c"}, true},
		{"not consecutive", []string{"b", "c"}, true},
		{"repeated line", []string{"a", "a"}, true},
		{"reversed", []string{"c", "a"}, false},
		{"missing", []string{"a", "z"}, false},
		{"too many repeats", []string{"a", "a", "a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertOutputOrder(sampleLines, Assertion{Lines: tt.lines})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAssertOutputCount(t *testing.T) {
	assert.NoError(t, assertOutputCount(sampleLines, Assertion{Line: "a", Count: 2}))
	assert.NoError(t, assertOutputCount(sampleLines, Assertion{Line: "z", Count: 0}))
	assert.Error(t, assertOutputCount(sampleLines, Assertion{Line: "a", Count: 1}))
}

func sampleState() *ir.State {
	st := ir.NewState()
	st.SetVariable("alice", "n", ir.Number(3))
	st.SetVariable("alice", "flag", ir.Boolean(true))
	p := st.AddProgram("alice", "p")
	p.Statements = []ir.Statement{{Condition: "true", Action: "print x"}}
	st.Active["alice"] = "p"
	return st
}

func TestAssertVariable(t *testing.T) {
	st := sampleState()

	assert.NoError(t, assertVariable(st, Assertion{User: "alice", Name: "n", Value: 3}))
	assert.NoError(t, assertVariable(st, Assertion{User: "alice", Name: "n", Value: 3.0}))
	assert.NoError(t, assertVariable(st, Assertion{User: "alice", Name: "flag", Value: true}))

	assert.Error(t, assertVariable(st, Assertion{User: "alice", Name: "n", Value: 4}))
	assert.Error(t, assertVariable(st, Assertion{User: "alice", Name: "flag", Value: 1}), "types must match")
	assert.Error(t, assertVariable(st, Assertion{User: "bob", Name: "n", Value: 3}))
	assert.Error(t, assertVariable(st, Assertion{User: "alice", Name: "n", Value: "3"}), "strings are not values")
}

func TestAssertActiveProgram(t *testing.T) {
	st := sampleState()

	assert.NoError(t, assertActiveProgram(st, Assertion{User: "alice", Program: "p"}))
	assert.NoError(t, assertActiveProgram(st, Assertion{User: "bob"}))

	err := assertActiveProgram(st, Assertion{User: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: no program running")
	assert.Contains(t, err.Error(), "Actual: program p running")
}

func TestAssertProgramLength(t *testing.T) {
	st := sampleState()

	assert.NoError(t, assertProgramLength(st, Assertion{User: "alice", Program: "p", Count: 1}))
	assert.Error(t, assertProgramLength(st, Assertion{User: "alice", Program: "p", Count: 2}))
	assert.Error(t, assertProgramLength(st, Assertion{User: "alice", Program: "q", Count: 0}))
}

func TestAssertBalance(t *testing.T) {
	tb := table.New(table.Settings{StartingBalance: 50}, testutil.NewScriptedDice(),
		table.OutputFunc(func(engine.Message) {}))

	assert.NoError(t, assertBalance(tb, Assertion{User: "alice", Value: 50}))
	assert.NoError(t, assertBalance(tb, Assertion{User: "alice", Value: 50.0}))
	assert.Error(t, assertBalance(tb, Assertion{User: "alice", Value: 49.99}))
	assert.Error(t, assertBalance(tb, Assertion{User: "alice", Value: true}))
}

func TestEvaluateAssertions_CollectsFailures(t *testing.T) {
	result := NewResult()
	result.Transcript = []Entry{{Input: "x", Output: sampleLines}}

	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertOutputContains, Line: "a"},
		{Type: AssertOutputContains, Line: "z"},
		{Type: AssertVariable, User: "alice", Name: "n", Value: 3},
		{Type: "bogus"},
	}, &AssertionContext{State: sampleState()})

	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "assertions[1]")
	assert.Contains(t, failures[1], `assertions[3]: unknown assertion type "bogus"`)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
