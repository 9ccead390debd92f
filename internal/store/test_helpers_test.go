package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleState builds a state touching every table.
func sampleState() *ir.State {
	s := ir.NewState()
	p := s.AddProgram("bob", "martingale")
	p.Statements = []ir.Statement{
		{Condition: "init", Action: "variable create bet 1"},
		{Condition: "point == 0 && passbet == 0", Action: "bet pass {bet}; print placed"},
	}
	s.AddProgram("bob", "idle")
	s.AddProgram("alice", "watch").Statements = []ir.Statement{
		{Condition: "total == 7", Action: "print seven"},
	}
	s.Active["bob"] = "martingale"
	s.SetFunction("alice", &ir.Function{Name: "add2", Params: []string{"a", "b"}, Body: "a + b"})
	s.SetFunction("alice", &ir.Function{Name: "one", Body: "1"})
	s.SetVariable("alice", "x", ir.Number(-2.5))
	s.SetVariable("alice", "flag", ir.Boolean(true))
	s.SetVariable("bob", "bet", ir.Number(1))
	return s
}

// diffState reports differences between states, treating nil and empty
// collections as equal.
func diffState(want, got *ir.State) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}
