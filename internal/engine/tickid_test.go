package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	a, b := gen.Generate(), gen.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator_RepeatsLast(t *testing.T) {
	gen := NewFixedGenerator("tick-1", "tick-2")

	assert.Equal(t, "tick-1", gen.Generate())
	assert.Equal(t, "tick-2", gen.Generate())
	assert.Equal(t, "tick-2", gen.Generate())

	assert.Equal(t, "tick", NewFixedGenerator().Generate())
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in, word, rest string
	}{
		{"eval {1}", "eval", "{1}"},
		{"  PROGRAM\tadd p  x ; y ", "program", "add p  x ; y"},
		{"print", "print", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		word, rest := splitCommand(tt.in)
		assert.Equal(t, tt.word, word, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}
