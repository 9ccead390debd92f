package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
)

// variableCommand handles "variable <create|list|delete> ...".
// It is also reachable from program actions, where list is refused.
func (e *Engine) variableCommand(user, text string, fromScript bool) error {
	sub, rest := splitCommand(text)

	switch sub {
	case "create":
		return e.createVariable(user, rest, fromScript)
	case "list":
		if fromScript {
			return commandError(ErrCodePermissionDenied, "variable list cannot be used from a program.")
		}
		return e.listVariables(user)
	case "delete":
		return e.deleteVariable(user, rest, fromScript)
	default:
		return usageError("variable")
	}
}

func (e *Engine) createVariable(user, text string, fromScript bool) error {
	name, src := splitWord(text)
	if name == "" || src == "" {
		return usageError("variable create")
	}
	if err := expr.ValidateVariableName(name); err != nil {
		return err
	}
	if _, ok := e.host.Variable(user, name); ok {
		return commandError(ErrCodeInvalidName, "%s is provided by the table and cannot be redefined.", name)
	}

	v, err := e.evaluate(user, src)
	if err != nil {
		return err
	}

	verb := "created"
	if e.state.SetVariable(user, name, v) {
		verb = "updated"
	}
	e.send(user, fromScript, fmt.Sprintf("Variable %s %s: %s", name, verb, v))
	return nil
}

func (e *Engine) listVariables(user string) error {
	table := e.state.Variables[user]
	if len(table) == 0 {
		e.send(user, false, "No variables defined.")
		return nil
	}

	pairs := make([]string, 0, len(table))
	for _, name := range sortedNames(table) {
		pairs = append(pairs, name+" = "+table[name].String())
	}
	e.send(user, false, "Variables: "+strings.Join(pairs, ", "))
	return nil
}

func (e *Engine) deleteVariable(user, text string, fromScript bool) error {
	name, err := singleName("variable delete", text)
	if err != nil {
		return err
	}
	if !e.state.DeleteVariable(user, name) {
		return commandError(ErrCodeVariableNotFound, "Variable %s not found.", name)
	}

	e.send(user, fromScript, fmt.Sprintf("Variable %s deleted.", name))
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
