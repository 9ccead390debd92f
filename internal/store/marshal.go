package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// marshalParams converts parameter names to a JSON array for storage.
// A function without parameters stores [].
func marshalParams(params []string) (string, error) {
	if params == nil {
		params = []string{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// unmarshalParams parses a stored JSON array; [] becomes nil.
func unmarshalParams(data string) ([]string, error) {
	var params []string
	if err := json.Unmarshal([]byte(data), &params); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

// encodeValue splits a value into its stored type name and text.
// Numbers use the same text form as expression substitution.
func encodeValue(v ir.Value) (typ, text string) {
	return v.Type().String(), v.String()
}

// decodeValue rebuilds a value from its stored type name and text.
func decodeValue(typ, text string) (ir.Value, error) {
	t, err := ir.ParseType(typ)
	if err != nil {
		return nil, err
	}

	switch t {
	case ir.TypeNumber:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("decode number %q: %w", text, err)
		}
		return ir.Number(f), nil
	case ir.TypeBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("decode boolean %q: %w", text, err)
		}
		return ir.Boolean(b), nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", t)
	}
}
