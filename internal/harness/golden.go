package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Render renders a result as the text stored in golden files: each
// step's input prefixed with "> ", followed by the chat lines it produced.
func (r *Result) Render() []byte {
	var buf strings.Builder
	for _, e := range r.Transcript {
		buf.WriteString("> ")
		buf.WriteString(e.Input)
		buf.WriteByte('\n')
		for _, line := range e.Output {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares its transcript against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's transcript against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, result.Render())
}
