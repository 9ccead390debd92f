package harness

import "github.com/queuedpixel/twitch-craps-bot/internal/ir"

// Entry is one recorded flow step and the chat lines it produced.
type Entry struct {
	Input  string   `json:"input"`
	Output []string `json:"output"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Transcript holds every flow step in order.
	Transcript []Entry `json:"transcript"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final state as reloaded from the repository.
	State *ir.State `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []Entry{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Lines returns every output line of the transcript in order.
func (r *Result) Lines() []string {
	var lines []string
	for _, e := range r.Transcript {
		lines = append(lines, e.Output...)
	}
	return lines
}
