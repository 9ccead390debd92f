package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// execCompound runs each ';'-separated statement of text in order.
// A failing statement is reported and the next one still runs.
func (e *Engine) execCompound(ctx context.Context, user, text string, fromScript bool) {
	slog.Debug("compound statement", "user", user, "text", text)

	for _, stmt := range strings.Split(text, ";") {
		if err := e.execStatement(ctx, user, strings.TrimSpace(stmt), fromScript); err != nil {
			e.report(user, fromScript, err)
		}
	}
}

// execStatement substitutes every {expr} block in stmt and dispatches the
// result. A statement that is a single {expr} block reports its value.
func (e *Engine) execStatement(ctx context.Context, user, stmt string, fromScript bool) error {
	resolved, value, err := e.substitute(user, stmt)
	if err != nil {
		return err
	}
	if value != nil {
		e.send(user, fromScript, value.String())
		return nil
	}
	return e.dispatch(ctx, user, resolved, fromScript)
}

// substitute replaces {expr} blocks left to right with their values.
// It returns the value instead when the whole statement is one block.
func (e *Engine) substitute(user, stmt string) (string, ir.Value, error) {
	for first := true; ; first = false {
		open := strings.IndexByte(stmt, '{')
		end := strings.IndexByte(stmt, '}')

		switch {
		case open < 0 && end < 0:
			return stmt, nil, nil
		case open < 0 || (end >= 0 && end < open):
			return "", nil, &expr.Error{Code: expr.ErrCodeParse, Message: "Missing opening bracket: {", Pos: end}
		case end < 0:
			return "", nil, &expr.Error{Code: expr.ErrCodeParse, Message: "Missing closing bracket: }", Pos: open}
		}

		v, err := e.evaluate(user, stmt[open+1:end])
		if err != nil {
			return "", nil, err
		}

		if first && open == 0 && end == len(stmt)-1 {
			return "", v, nil
		}
		stmt = stmt[:open] + v.String() + stmt[end+1:]
	}
}

// dispatch routes a resolved statement: host commands first, then print
// and variable.
func (e *Engine) dispatch(ctx context.Context, user, command string, fromScript bool) error {
	if command == "" {
		return commandError(ErrCodeUsage, "No command specified.")
	}

	slog.Debug("dispatch", "user", user, "command", command, "from_script", fromScript)

	if e.host.TryCommand(user, command) {
		return nil
	}

	word, rest := splitCommand(command)
	switch word {
	case "print":
		e.send(user, fromScript, "print - "+rest)
		return nil
	case "variable":
		return e.variableCommand(user, rest, fromScript)
	default:
		return commandError(ErrCodeUnknownCommand, "Unrecognized command: %s", word)
	}
}
