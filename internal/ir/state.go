package ir

import (
	"slices"
	"strings"
)

// Statement is one condition/action rule within a program.
// Condition is expression text; Action is compound-statement text and may
// itself contain ';' separators.
type Statement struct {
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

// String renders the statement the way it was entered.
func (s Statement) String() string {
	return s.Condition + " ; " + s.Action
}

// Program is a named, ordered list of statements owned by one user.
// Statement indices are dense 0-based positions.
type Program struct {
	Name       string
	Statements []Statement
}

// Function is a user-defined function.
// Params are unique identifiers; Body is expression text.
type Function struct {
	Name   string
	Params []string
	Body   string
}

// Signature renders name(p1, p2).
func (f *Function) Signature() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// State holds every user's programs, active-program pointer, functions and
// variables. It is the unit of persistence.
//
// INVARIANTS:
//   - Program names are unique within a user's list
//   - Active[user], when present, names an existing program of that user
//   - Per-user tables are pruned when they become empty
type State struct {
	Programs  map[string][]*Program
	Active    map[string]string
	Functions map[string]map[string]*Function
	Variables map[string]map[string]Value
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Programs:  make(map[string][]*Program),
		Active:    make(map[string]string),
		Functions: make(map[string]map[string]*Function),
		Variables: make(map[string]map[string]Value),
	}
}

// Program returns the user's program with the given name and its position
// in the user's list, or (nil, -1).
func (s *State) Program(user, name string) (*Program, int) {
	for i, p := range s.Programs[user] {
		if p.Name == name {
			return p, i
		}
	}
	return nil, -1
}

// AddProgram appends an empty program for user. The caller checks uniqueness.
func (s *State) AddProgram(user, name string) *Program {
	p := &Program{Name: name}
	s.Programs[user] = append(s.Programs[user], p)
	return p
}

// DeleteProgram removes the user's program at position idx.
func (s *State) DeleteProgram(user string, idx int) {
	progs := slices.Delete(s.Programs[user], idx, idx+1)
	if len(progs) == 0 {
		delete(s.Programs, user)
		return
	}
	s.Programs[user] = progs
}

// Function returns a user function by name.
func (s *State) Function(user, name string) (*Function, bool) {
	fn, ok := s.Functions[user][name]
	return fn, ok
}

// SetFunction stores fn for user and reports whether it replaced an existing one.
func (s *State) SetFunction(user string, fn *Function) (replaced bool) {
	table, ok := s.Functions[user]
	if !ok {
		table = make(map[string]*Function)
		s.Functions[user] = table
	}
	_, replaced = table[fn.Name]
	table[fn.Name] = fn
	return replaced
}

// DeleteFunction removes a user function and reports whether it existed.
func (s *State) DeleteFunction(user, name string) bool {
	table := s.Functions[user]
	if _, ok := table[name]; !ok {
		return false
	}
	delete(table, name)
	if len(table) == 0 {
		delete(s.Functions, user)
	}
	return true
}

// Variable returns a user variable by name.
func (s *State) Variable(user, name string) (Value, bool) {
	v, ok := s.Variables[user][name]
	return v, ok
}

// SetVariable stores v for user and reports whether it replaced an existing value.
func (s *State) SetVariable(user, name string, v Value) (replaced bool) {
	table, ok := s.Variables[user]
	if !ok {
		table = make(map[string]Value)
		s.Variables[user] = table
	}
	_, replaced = table[name]
	table[name] = v
	return replaced
}

// DeleteVariable removes a user variable and reports whether it existed.
func (s *State) DeleteVariable(user, name string) bool {
	table := s.Variables[user]
	if _, ok := table[name]; !ok {
		return false
	}
	delete(table, name)
	if len(table) == 0 {
		delete(s.Variables, user)
	}
	return true
}

// ActiveUsers returns users with an active program, sorted.
// Sorting gives ticks a stable iteration order.
func (s *State) ActiveUsers() []string {
	return sortedKeys(s.Active)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
