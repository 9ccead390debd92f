package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
	"github.com/queuedpixel/twitch-craps-bot/internal/table"
)

// AssertionContext provides the final state assertions inspect.
type AssertionContext struct {
	Table *table.Table
	State *ir.State
}

// AssertionError is returned when an assertion fails.
// It includes the transcript to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Lines    []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Lines) > 0 {
		fmt.Fprintf(&buf, "\nChat output:\n")
		for i, line := range e.Lines {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	lines := result.Lines()

	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOutputContains:
			err = assertOutputContains(lines, a)
		case AssertOutputOrder:
			err = assertOutputOrder(lines, a)
		case AssertOutputCount:
			err = assertOutputCount(lines, a)
		case AssertVariable:
			err = assertVariable(actx.State, a)
		case AssertActiveProgram:
			err = assertActiveProgram(actx.State, a)
		case AssertProgramLength:
			err = assertProgramLength(actx.State, a)
		case AssertBalance:
			err = assertBalance(actx.Table, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func assertOutputContains(lines []string, a Assertion) error {
	if slices.Contains(lines, a.Line) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputContains,
		Expected: fmt.Sprintf("line %q", a.Line),
		Actual:   "not found in output",
		Lines:    lines,
	}
}

// assertOutputOrder checks that lines appear in order. They need not be
// consecutive.
func assertOutputOrder(lines []string, a Assertion) error {
	pos := 0
	for _, want := range a.Lines {
		idx := slices.Index(lines[pos:], want)
		if idx < 0 {
			return &AssertionError{
				Type:     AssertOutputOrder,
				Expected: fmt.Sprintf("lines in order: %q", a.Lines),
				Actual:   fmt.Sprintf("%q not found after line %d", want, pos),
				Lines:    lines,
			}
		}
		pos += idx + 1
	}
	return nil
}

func assertOutputCount(lines []string, a Assertion) error {
	count := 0
	for _, line := range lines {
		if line == a.Line {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputCount,
		Expected: fmt.Sprintf("%q exactly %d time(s)", a.Line, a.Count),
		Actual:   fmt.Sprintf("%d time(s)", count),
		Lines:    lines,
	}
}

func assertVariable(st *ir.State, a Assertion) error {
	want, err := toValue(a.Value)
	if err != nil {
		return err
	}
	got, ok := st.Variable(a.User, a.Name)
	if !ok {
		return &AssertionError{
			Type:     AssertVariable,
			Expected: fmt.Sprintf("%s's %s = %s", a.User, a.Name, want),
			Actual:   "not defined",
		}
	}
	if !ir.Equal(got, want) {
		return &AssertionError{
			Type:     AssertVariable,
			Expected: fmt.Sprintf("%s's %s = %s", a.User, a.Name, want),
			Actual:   got.String(),
		}
	}
	return nil
}

func assertActiveProgram(st *ir.State, a Assertion) error {
	got := st.Active[a.User]
	if got == a.Program {
		return nil
	}
	describe := func(name string) string {
		if name == "" {
			return "no program running"
		}
		return "program " + name + " running"
	}
	return &AssertionError{
		Type:     AssertActiveProgram,
		Expected: describe(a.Program),
		Actual:   describe(got),
	}
}

func assertProgramLength(st *ir.State, a Assertion) error {
	p, _ := st.Program(a.User, a.Program)
	if p == nil {
		return &AssertionError{
			Type:     AssertProgramLength,
			Expected: fmt.Sprintf("program %s with %d statement(s)", a.Program, a.Count),
			Actual:   "program not found",
		}
	}
	if len(p.Statements) != a.Count {
		return &AssertionError{
			Type:     AssertProgramLength,
			Expected: fmt.Sprintf("program %s with %d statement(s)", a.Program, a.Count),
			Actual:   fmt.Sprintf("%d statement(s)", len(p.Statements)),
		}
	}
	return nil
}

func assertBalance(t *table.Table, a Assertion) error {
	want, err := toValue(a.Value)
	if err != nil {
		return err
	}
	n, ok := want.(ir.Number)
	if !ok {
		return fmt.Errorf("balance value must be a number, got %s", want.Type())
	}

	hundredths := int64(math.Round(float64(n) * 100))
	got := t.Balance(a.User)
	if hundredths == got {
		return nil
	}
	return &AssertionError{
		Type:     AssertBalance,
		Expected: fmt.Sprintf("%s has %s", a.User, table.FormatCurrency(hundredths)),
		Actual:   table.FormatCurrency(got),
	}
}

// toValue converts a YAML-decoded scalar to a Value.
func toValue(v any) (ir.Value, error) {
	switch v := v.(type) {
	case int:
		return ir.Number(float64(v)), nil
	case int64:
		return ir.Number(float64(v)), nil
	case float64:
		return ir.Number(v), nil
	case bool:
		return ir.Boolean(v), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
