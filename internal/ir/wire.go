package ir

import (
	"encoding/json"
	"fmt"
)

// pair is a [key, value] JSON array, the persisted form of one map entry.
type pair[V any] struct {
	Key   string
	Value V
}

// MarshalJSON implements json.Marshaler.
func (p pair[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *pair[V]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [key, value] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return fmt.Errorf("pair key: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Value); err != nil {
		return fmt.Errorf("pair %q: %w", p.Key, err)
	}
	return nil
}

// persistedFunction is the value half of a playerFunctions entry.
type persistedFunction struct {
	Params []string `json:"params"`
	Body   string   `json:"body"`
}

// persistedValue adapts Value to encoding/json.
type persistedValue struct {
	Value Value
}

func (v persistedValue) MarshalJSON() ([]byte, error) { return MarshalValue(v.Value) }

func (v *persistedValue) UnmarshalJSON(data []byte) error {
	val, err := UnmarshalValue(data)
	if err != nil {
		return err
	}
	v.Value = val
	return nil
}

// document is the persisted state file.
// Each field is a list of [username, list-of-[key, value]] pairs, except
// activePlayerPrograms whose value is the program name.
type document struct {
	PlayerPrograms       []pair[[]pair[[]Statement]]       `json:"playerPrograms"`
	ActivePlayerPrograms []pair[string]                    `json:"activePlayerPrograms"`
	PlayerFunctions      []pair[[]pair[persistedFunction]] `json:"playerFunctions"`
	PlayerVariables      []pair[[]pair[persistedValue]]    `json:"playerVariables"`
}

// MarshalJSON encodes the state as the persisted document.
// Users are sorted; programs keep their creation order; functions and
// variables are sorted by name.
func (s *State) MarshalJSON() ([]byte, error) {
	doc := document{
		PlayerPrograms:       []pair[[]pair[[]Statement]]{},
		ActivePlayerPrograms: []pair[string]{},
		PlayerFunctions:      []pair[[]pair[persistedFunction]]{},
		PlayerVariables:      []pair[[]pair[persistedValue]]{},
	}

	for _, user := range sortedKeys(s.Programs) {
		progs := make([]pair[[]Statement], 0, len(s.Programs[user]))
		for _, p := range s.Programs[user] {
			stmts := p.Statements
			if stmts == nil {
				stmts = []Statement{}
			}
			progs = append(progs, pair[[]Statement]{Key: p.Name, Value: stmts})
		}
		doc.PlayerPrograms = append(doc.PlayerPrograms, pair[[]pair[[]Statement]]{Key: user, Value: progs})
	}

	for _, user := range sortedKeys(s.Active) {
		doc.ActivePlayerPrograms = append(doc.ActivePlayerPrograms, pair[string]{Key: user, Value: s.Active[user]})
	}

	for _, user := range sortedKeys(s.Functions) {
		table := s.Functions[user]
		fns := make([]pair[persistedFunction], 0, len(table))
		for _, name := range sortedKeys(table) {
			fn := table[name]
			params := fn.Params
			if params == nil {
				params = []string{}
			}
			fns = append(fns, pair[persistedFunction]{Key: name, Value: persistedFunction{Params: params, Body: fn.Body}})
		}
		doc.PlayerFunctions = append(doc.PlayerFunctions, pair[[]pair[persistedFunction]]{Key: user, Value: fns})
	}

	for _, user := range sortedKeys(s.Variables) {
		table := s.Variables[user]
		vars := make([]pair[persistedValue], 0, len(table))
		for _, name := range sortedKeys(table) {
			vars = append(vars, pair[persistedValue]{Key: name, Value: persistedValue{Value: table[name]}})
		}
		doc.PlayerVariables = append(doc.PlayerVariables, pair[[]pair[persistedValue]]{Key: user, Value: vars})
	}

	return json.Marshal(doc)
}

// UnmarshalJSON decodes the persisted document, replacing s entirely.
func (s *State) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	st := NewState()

	for _, up := range doc.PlayerPrograms {
		progs := make([]*Program, 0, len(up.Value))
		for _, pp := range up.Value {
			stmts := pp.Value
			if len(stmts) == 0 {
				stmts = nil
			}
			progs = append(progs, &Program{Name: pp.Key, Statements: stmts})
		}
		st.Programs[up.Key] = progs
	}

	for _, ap := range doc.ActivePlayerPrograms {
		if p, _ := st.Program(ap.Key, ap.Value); p == nil {
			return fmt.Errorf("active program %q of %s does not exist", ap.Value, ap.Key)
		}
		st.Active[ap.Key] = ap.Value
	}

	for _, uf := range doc.PlayerFunctions {
		table := make(map[string]*Function, len(uf.Value))
		for _, fp := range uf.Value {
			params := fp.Value.Params
			if len(params) == 0 {
				params = nil
			}
			table[fp.Key] = &Function{Name: fp.Key, Params: params, Body: fp.Value.Body}
		}
		st.Functions[uf.Key] = table
	}

	for _, uv := range doc.PlayerVariables {
		table := make(map[string]Value, len(uv.Value))
		for _, vp := range uv.Value {
			table[vp.Key] = vp.Value.Value
		}
		st.Variables[uv.Key] = table
	}

	*s = *st
	return nil
}
