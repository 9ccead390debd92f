package engine

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// usages holds the argument synopsis of every engine command.
var usages = map[string]string{
	"eval":     "eval <statement> [; <statement> ...]",
	"program":  "program <create|list|view|add|insert|update|remove|run|stop|delete> ...",
	"function": "function <create <name>(<params>) <body> | list | delete <name>>",
	"variable": "variable <create <name> <expression> | list | delete <name>>",
	"print":    "print <text>",

	"program create": "program create <name>",
	"program view":   "program view <name>",
	"program add":    "program add <name> <condition> ; <action>",
	"program insert": "program insert <name> <index> <condition> ; <action>",
	"program update": "program update <name> <index> <condition> ; <action>",
	"program remove": "program remove <name> <index>",
	"program run":    "program run <name>",
	"program delete": "program delete <name>",

	"function create": "function create <name>(<params>) <body>",
	"function delete": "function delete <name>",

	"variable create": "variable create <name> <expression>",
	"variable delete": "variable delete <name>",
}

// Usage returns the synopsis for a command such as "program" or
// "program add", or "" if there is none.
func Usage(command string) string {
	return usages[strings.Join(strings.Fields(strings.ToLower(command)), " ")]
}

// Commands returns the top-level engine command words.
func Commands() []string {
	return []string{"eval", "program", "function", "variable"}
}

// splitCommand returns the case-folded first word of text and the trimmed
// remainder. Words are separated by any run of whitespace.
func splitCommand(text string) (word, rest string) {
	text = strings.TrimSpace(text)
	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		return cases.Fold().String(text), ""
	}
	return cases.Fold().String(text[:end]), strings.TrimSpace(text[end:])
}

// splitWord returns the first word of text, unchanged, and the trimmed remainder.
func splitWord(text string) (word, rest string) {
	text = strings.TrimSpace(text)
	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		return text, ""
	}
	return text[:end], strings.TrimSpace(text[end:])
}

// parseStatement splits statement text on its first ';'.
// Both the condition and the action must be non-empty.
func parseStatement(command, text string) (ir.Statement, error) {
	cond, action, ok := strings.Cut(text, ";")
	cond, action = strings.TrimSpace(cond), strings.TrimSpace(action)
	if !ok || cond == "" || action == "" {
		return ir.Statement{}, usageError(command)
	}
	return ir.Statement{Condition: cond, Action: action}, nil
}

// parseIndex parses a statement index argument.
func parseIndex(command, text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, usageError(command)
	}
	return n, nil
}
