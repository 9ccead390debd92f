package engine

import (
	"fmt"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// functionCommand handles "function <create|list|delete> ...".
func (e *Engine) functionCommand(user, text string) error {
	sub, rest := splitCommand(text)

	switch sub {
	case "create":
		return e.createFunction(user, rest)
	case "list":
		return e.listFunctions(user)
	case "delete":
		return e.deleteFunction(user, rest)
	default:
		return usageError("function")
	}
}

// parseFunction parses "name(p1, p2) body".
func parseFunction(text string) (*ir.Function, error) {
	open := strings.IndexByte(text, '(')
	end := strings.IndexByte(text, ')')
	if open < 0 || end < open {
		return nil, usageError("function create")
	}

	fn := &ir.Function{
		Name: strings.TrimSpace(text[:open]),
		Body: strings.TrimSpace(text[end+1:]),
	}
	if params := strings.TrimSpace(text[open+1 : end]); params != "" {
		for _, p := range strings.Split(params, ",") {
			fn.Params = append(fn.Params, strings.TrimSpace(p))
		}
	}
	return fn, nil
}

func (e *Engine) createFunction(user, text string) error {
	fn, err := parseFunction(text)
	if err != nil {
		return err
	}
	if err := expr.ValidateFunction(fn); err != nil {
		return err
	}

	verb := "created"
	if e.state.SetFunction(user, fn) {
		verb = "updated"
	}
	e.send(user, false, fmt.Sprintf("Function %s %s.", fn.Signature(), verb))
	return nil
}

func (e *Engine) listFunctions(user string) error {
	table := e.state.Functions[user]
	if len(table) == 0 {
		e.send(user, false, "No functions defined.")
		return nil
	}

	for _, name := range sortedNames(table) {
		fn := table[name]
		e.send(user, false, fmt.Sprintf("%s = %s", fn.Signature(), fn.Body))
	}
	return nil
}

func (e *Engine) deleteFunction(user, text string) error {
	name, err := singleName("function delete", text)
	if err != nil {
		return err
	}
	if !e.state.DeleteFunction(user, name) {
		return commandError(ErrCodeFunctionNotFound, "Function %s not found.", name)
	}

	e.send(user, false, fmt.Sprintf("Function %s deleted.", name))
	return nil
}
