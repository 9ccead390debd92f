package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a chat scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides the default bot configuration.
	Config yaml.Node `yaml:"config,omitempty"`

	// Dice are returned, in order, by random rolls.
	Dice [][]int `yaml:"dice,omitempty"`

	// Setup steps run before the flow; their output is not recorded.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow steps are recorded in the transcript.
	Flow []Step `yaml:"flow"`

	// Assertions validate the transcript and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one chat line or one dice roll.
type Step struct {
	// User says Say in chat.
	User string `yaml:"user,omitempty"`
	Say  string `yaml:"say,omitempty"`

	// Roll rolls the table with two given values.
	Roll []int `yaml:"roll,omitempty"`

	// Expect, when set, is the exact chat output of the step.
	Expect []string `yaml:"expect,omitempty"`
}

// Input renders the step as it appears in transcripts.
func (s Step) Input() string {
	if s.Roll != nil {
		return fmt.Sprintf("roll %d %d", s.Roll[0], s.Roll[1])
	}
	return s.User + ": " + s.Say
}

// Assertion validates the transcript or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Line is a chat line (output_contains, output_count).
	Line string `yaml:"line,omitempty"`

	// Lines must appear in this order (output_order).
	Lines []string `yaml:"lines,omitempty"`

	// Count is the expected number of occurrences (output_count,
	// program_length).
	Count int `yaml:"count,omitempty"`

	// User owns the state being checked.
	User string `yaml:"user,omitempty"`

	// Name is a variable name (variable).
	Name string `yaml:"name,omitempty"`

	// Program is a program name (active_program, program_length). An empty
	// program in active_program means none is running.
	Program string `yaml:"program,omitempty"`

	// Value is a number or boolean (variable) or whole units (balance).
	Value any `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputContains = "output_contains"
	AssertOutputOrder    = "output_order"
	AssertOutputCount    = "output_count"
	AssertVariable       = "variable"
	AssertActiveProgram  = "active_program"
	AssertProgramLength  = "program_length"
	AssertBalance        = "balance"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, d := range s.Dice {
		if err := validateDice(d); err != nil {
			return fmt.Errorf("dice[%d]: %w", i, err)
		}
	}
	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(s Step) error {
	switch {
	case s.Roll != nil && s.Say != "":
		return fmt.Errorf("say and roll are mutually exclusive")
	case s.Roll != nil:
		return validateDice(s.Roll)
	case s.Say == "":
		return fmt.Errorf("say or roll is required")
	case s.User == "":
		return fmt.Errorf("user is required with say")
	}
	return nil
}

func validateDice(d []int) error {
	if len(d) != 2 {
		return fmt.Errorf("two dice values are required, got %d", len(d))
	}
	for _, v := range d {
		if v < 1 || v > 6 {
			return fmt.Errorf("dice values must be between 1 and 6, got %d", v)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutputContains:
		if a.Line == "" {
			return fmt.Errorf("assertions[%d]: line is required for output_contains", index)
		}
	case AssertOutputOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for output_order", index)
		}
	case AssertOutputCount:
		if a.Line == "" {
			return fmt.Errorf("assertions[%d]: line is required for output_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for output_count", index)
		}
	case AssertVariable:
		if a.User == "" || a.Name == "" || a.Value == nil {
			return fmt.Errorf("assertions[%d]: user, name and value are required for variable", index)
		}
	case AssertActiveProgram:
		if a.User == "" {
			return fmt.Errorf("assertions[%d]: user is required for active_program", index)
		}
	case AssertProgramLength:
		if a.User == "" || a.Program == "" {
			return fmt.Errorf("assertions[%d]: user and program are required for program_length", index)
		}
	case AssertBalance:
		if a.User == "" || a.Value == nil {
			return fmt.Errorf("assertions[%d]: user and value are required for balance", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
