package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: one line
flow:
  - user: alice
    say: "!craps balance"
assertions:
  - type: output_contains
    line: "@alice, balance: §10,000.00"
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Flow, 1)
	assert.Equal(t, "alice: !craps balance", s.Flow[0].Input())
	assert.Nil(t, s.Flow[0].Expect)
	assert.Zero(t, s.Config.Kind, "no config overrides")
}

func TestLoadScenario_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStep_Input(t *testing.T) {
	assert.Equal(t, "roll 3 4", Step{Roll: []int{3, 4}}.Input())
	assert.Equal(t, "bob: hi", Step{User: "bob", Say: "hi"}.Input())
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nflows: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nflow: [{user: a, say: hi}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nflow: [{user: a, say: hi}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "description is required",
		},
		{
			name:    "empty flow",
			yaml:    "name: x\ndescription: d\nflow: []\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "flow list is required",
		},
		{
			name:    "no assertions",
			yaml:    "name: x\ndescription: d\nflow: [{user: a, say: hi}]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "say without user",
			yaml:    "name: x\ndescription: d\nflow: [{say: hi}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "flow[0]: user is required with say",
		},
		{
			name:    "say and roll",
			yaml:    "name: x\ndescription: d\nflow: [{user: a, say: hi, roll: [1, 2]}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "empty step",
			yaml:    "name: x\ndescription: d\nflow: [{user: a}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "say or roll is required",
		},
		{
			name:    "one die",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3]}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "two dice values are required",
		},
		{
			name:    "die out of range",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 7]}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "between 1 and 6",
		},
		{
			name:    "bad scripted dice",
			yaml:    "name: x\ndescription: d\ndice: [[0, 1]]\nflow: [{roll: [3, 4]}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "dice[0]",
		},
		{
			name:    "bad setup step",
			yaml:    "name: x\ndescription: d\nsetup: [{user: a}]\nflow: [{roll: [3, 4]}]\nassertions: [{type: output_contains, line: x}]\n",
			wantErr: "setup[0]",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{type: trace_contains}]\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "assertion without type",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{line: x}]\n",
			wantErr: "type is required",
		},
		{
			name:    "output_order without lines",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{type: output_order}]\n",
			wantErr: "lines list is required",
		},
		{
			name:    "negative count",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{type: output_count, line: x, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "variable without value",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{type: variable, user: a, name: v}]\n",
			wantErr: "required for variable",
		},
		{
			name:    "balance without user",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{type: balance, value: 3}]\n",
			wantErr: "required for balance",
		},
		{
			name:    "program_length without program",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{type: program_length, user: a}]\n",
			wantErr: "required for program_length",
		},
		{
			name:    "active_program without user",
			yaml:    "name: x\ndescription: d\nflow: [{roll: [3, 4]}]\nassertions: [{type: active_program}]\n",
			wantErr: "user is required for active_program",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
