package expr

import (
	"math"
	"slices"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// Builtin is a code-level function available to every user.
// Arguments are type-checked against Params before Fn is called.
type Builtin struct {
	Name   string
	Params []ir.Type
	Result ir.Type
	Fn     func(args []ir.Value) ir.Value
}

// Signature renders name(type, ...) -> type.
func (b *Builtin) Signature() string {
	params := make([]string, len(b.Params))
	for i, p := range b.Params {
		params[i] = p.String()
	}
	return b.Name + "(" + strings.Join(params, ", ") + ") -> " + b.Result.String()
}

func numeric1(name string, f func(float64) float64) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []ir.Type{ir.TypeNumber},
		Result: ir.TypeNumber,
		Fn: func(args []ir.Value) ir.Value {
			return ir.Number(f(float64(args[0].(ir.Number))))
		},
	}
}

func numeric2(name string, f func(float64, float64) float64) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []ir.Type{ir.TypeNumber, ir.TypeNumber},
		Result: ir.TypeNumber,
		Fn: func(args []ir.Value) ir.Value {
			return ir.Number(f(float64(args[0].(ir.Number)), float64(args[1].(ir.Number))))
		},
	}
}

// round rounds halves up, so round(-2.5) is -2.
func round(f float64) float64 { return math.Floor(f + 0.5) }

var builtins = map[string]*Builtin{
	"floor": numeric1("floor", math.Floor),
	"ceil":  numeric1("ceil", math.Ceil),
	"round": numeric1("round", round),
	"abs":   numeric1("abs", math.Abs),
	"min":   numeric2("min", math.Min),
	"max":   numeric2("max", math.Max),
}

// LookupBuiltin returns the built-in function with the given name.
func LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// IsBuiltin reports whether name is reserved by a built-in function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Builtins returns every built-in function sorted by name.
func Builtins() []*Builtin {
	out := make([]*Builtin, 0, len(builtins))
	for _, b := range builtins {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Builtin) int { return strings.Compare(a.Name, b.Name) })
	return out
}
