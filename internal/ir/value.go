package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Type identifies the runtime type of a Value.
type Type int

const (
	// TypeNumber is the type of Number values.
	TypeNumber Type = iota + 1
	// TypeBoolean is the type of Boolean values.
	TypeBoolean
)

// String returns the user-facing type name.
func (t Type) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseType maps a persisted type name back to a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "number":
		return TypeNumber, nil
	case "boolean":
		return TypeBoolean, nil
	default:
		return 0, fmt.Errorf("unknown value type %q", name)
	}
}

// Value is a sealed interface representing a runtime value.
// Only Number and Boolean implement this.
type Value interface {
	irValue() // Sealed - only these types implement it

	// Type reports the runtime type.
	Type() Type

	// String returns the literal textual form substituted into commands.
	String() string
}

// Number is a numeric value. All arithmetic is float64.
type Number float64

func (Number) irValue() {}

// Type implements Value.
func (Number) Type() Type { return TypeNumber }

// String implements Value.
func (n Number) String() string { return FormatNumber(float64(n)) }

// Boolean is a truth value.
type Boolean bool

func (Boolean) irValue() {}

// Type implements Value.
func (Boolean) Type() Type { return TypeBoolean }

// String implements Value.
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// FormatNumber renders f in the shortest form that parses back to f.
// Integral values print without a fractional part; negative zero prints as "0".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal reports whether a and b have the same type and the same value.
// Values of different types are never equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	default:
		return false
	}
}

// taggedValue is the persisted {type, value} form of a Value.
type taggedValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalValue encodes v as a {"type": ..., "value": ...} object.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %s cannot be persisted", FormatNumber(f))
		}
		raw, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		return json.Marshal(taggedValue{Type: TypeNumber.String(), Value: raw})
	case Boolean:
		raw, err := json.Marshal(bool(val))
		if err != nil {
			return nil, err
		}
		return json.Marshal(taggedValue{Type: TypeBoolean.String(), Value: raw})
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// UnmarshalValue decodes a {"type": ..., "value": ...} object.
func UnmarshalValue(data []byte) (Value, error) {
	var tv taggedValue
	if err := json.Unmarshal(data, &tv); err != nil {
		return nil, err
	}
	typ, err := ParseType(tv.Type)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeNumber:
		var f float64
		if err := json.Unmarshal(tv.Value, &f); err != nil {
			return nil, fmt.Errorf("number value: %w", err)
		}
		return Number(f), nil
	default:
		var b bool
		if err := json.Unmarshal(tv.Value, &b); err != nil {
			return nil, fmt.Errorf("boolean value: %w", err)
		}
		return Boolean(b), nil
	}
}
