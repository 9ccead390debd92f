package expr

import (
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// Constant names. true and false are resolved by the evaluator; init is
// resolved by the engine's Scope before any host or user variable.
const (
	ConstTrue  = "true"
	ConstFalse = "false"
	ConstInit  = "init"
)

// IsIdentifier reports whether s matches ^[A-Za-z_]\w*$.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// IsConstant reports whether name is shadowed by an engine constant.
func IsConstant(name string) bool {
	return name == ConstTrue || name == ConstFalse || name == ConstInit
}

// ValidateFunction checks a user function definition before it is stored.
func ValidateFunction(fn *ir.Function) error {
	if !IsIdentifier(fn.Name) {
		return newError(ErrCodeDefinition, -1, "function name %q is not a valid identifier", fn.Name)
	}
	if IsBuiltin(fn.Name) {
		return newError(ErrCodeDefinition, -1, "%s is a built-in function", fn.Name)
	}

	seen := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		if !IsIdentifier(p) {
			return newError(ErrCodeDefinition, -1, "parameter name %q is not a valid identifier", p)
		}
		if seen[p] {
			return newError(ErrCodeDefinition, -1, "parameter %s is declared more than once", p)
		}
		seen[p] = true
	}

	if strings.TrimSpace(fn.Body) == "" {
		return newError(ErrCodeDefinition, -1, "function %s has an empty body", fn.Name)
	}
	if _, err := Tokenize(fn.Body); err != nil {
		return err
	}
	return nil
}

// ValidateVariableName checks a variable name before it is stored.
func ValidateVariableName(name string) error {
	if !IsIdentifier(name) {
		return newError(ErrCodeDefinition, -1, "variable name %q is not a valid identifier", name)
	}
	if IsConstant(name) {
		return newError(ErrCodeDefinition, -1, "%s is a constant and cannot be used as a variable name", name)
	}
	return nil
}
