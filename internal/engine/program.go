package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// programCommand handles "program <subcommand> ...".
func (e *Engine) programCommand(ctx context.Context, user, text string) error {
	sub, rest := splitCommand(text)

	switch sub {
	case "create":
		return e.createProgram(user, rest)
	case "list":
		return e.listPrograms(user)
	case "view":
		return e.viewProgram(user, rest)
	case "add":
		name, stmt := splitWord(rest)
		return e.addStatement(user, name, stmt)
	case "insert", "update":
		name, rest := splitWord(rest)
		index, stmt := splitWord(rest)
		return e.editStatement(user, sub, name, index, stmt)
	case "remove":
		name, index := splitWord(rest)
		return e.removeStatement(user, name, index)
	case "run":
		return e.runProgram(ctx, user, rest)
	case "stop":
		return e.stopProgram(user)
	case "delete":
		return e.deleteProgram(user, rest)
	default:
		return usageError("program")
	}
}

// program finds one of user's programs by name.
func (e *Engine) program(user, name string) (*ir.Program, int, error) {
	p, idx := e.state.Program(user, name)
	if p == nil {
		return nil, -1, commandError(ErrCodeProgramNotFound, "Program %s not found.", name)
	}
	return p, idx, nil
}

// singleName checks that text is exactly one word.
func singleName(command, text string) (string, error) {
	name, rest := splitWord(text)
	if name == "" || rest != "" {
		return "", usageError(command)
	}
	return name, nil
}

func (e *Engine) createProgram(user, text string) error {
	name, err := singleName("program create", text)
	if err != nil {
		return err
	}
	if p, _ := e.state.Program(user, name); p != nil {
		return commandError(ErrCodeProgramExists, "Program %s already exists.", name)
	}

	e.state.AddProgram(user, name)
	e.send(user, false, fmt.Sprintf("Program %s created.", name))
	return nil
}

func (e *Engine) listPrograms(user string) error {
	progs := e.state.Programs[user]
	if len(progs) == 0 {
		e.send(user, false, "No programs defined.")
		return nil
	}

	active := e.state.Active[user]
	names := make([]string, len(progs))
	for i, p := range progs {
		names[i] = p.Name
		if p.Name == active {
			names[i] += " (running)"
		}
	}
	e.send(user, false, "Programs: "+strings.Join(names, ", "))
	return nil
}

func (e *Engine) viewProgram(user, text string) error {
	name, err := singleName("program view", text)
	if err != nil {
		return err
	}
	p, _, err := e.program(user, name)
	if err != nil {
		return err
	}

	if len(p.Statements) == 0 {
		e.send(user, false, fmt.Sprintf("Program %s has no statements.", name))
		return nil
	}
	for i, st := range p.Statements {
		e.send(user, false, fmt.Sprintf("%s[%d]: %s", name, i, st))
	}
	return nil
}

func (e *Engine) addStatement(user, name, text string) error {
	if name == "" {
		return usageError("program add")
	}
	p, _, err := e.program(user, name)
	if err != nil {
		return err
	}
	st, err := parseStatement("program add", text)
	if err != nil {
		return err
	}

	p.Statements = append(p.Statements, st)
	e.send(user, false, fmt.Sprintf("Statement %d added to program %s.", len(p.Statements)-1, name))
	return nil
}

// editStatement handles insert (index <= length) and update (index < length).
func (e *Engine) editStatement(user, sub, name, indexText, text string) error {
	command := "program " + sub
	if name == "" || indexText == "" {
		return usageError(command)
	}
	p, _, err := e.program(user, name)
	if err != nil {
		return err
	}
	index, err := parseIndex(command, indexText)
	if err != nil {
		return err
	}

	limit := len(p.Statements)
	if sub == "update" {
		limit--
	}
	if index < 0 || index > limit {
		return indexError(p, index)
	}

	st, err := parseStatement(command, text)
	if err != nil {
		return err
	}

	if sub == "insert" {
		p.Statements = slices.Insert(p.Statements, index, st)
		e.send(user, false, fmt.Sprintf("Statement %d inserted into program %s.", index, name))
		return nil
	}
	p.Statements[index] = st
	e.send(user, false, fmt.Sprintf("Statement %d of program %s updated.", index, name))
	return nil
}

func (e *Engine) removeStatement(user, name, indexText string) error {
	if name == "" || indexText == "" {
		return usageError("program remove")
	}
	p, _, err := e.program(user, name)
	if err != nil {
		return err
	}
	index, err := parseIndex("program remove", indexText)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(p.Statements) {
		return indexError(p, index)
	}

	p.Statements = slices.Delete(p.Statements, index, index+1)
	e.send(user, false, fmt.Sprintf("Statement %d removed from program %s.", index, name))
	return nil
}

func indexError(p *ir.Program, index int) error {
	return commandError(ErrCodeIndexOutOfRange,
		"Index %d is out of range; program %s has %d statement(s).", index, p.Name, len(p.Statements))
}

// runProgram makes the program active and runs one tick for user with
// init set.
func (e *Engine) runProgram(ctx context.Context, user, text string) error {
	name, err := singleName("program run", text)
	if err != nil {
		return err
	}
	if _, _, err := e.program(user, name); err != nil {
		return err
	}

	e.state.Active[user] = name
	e.send(user, false, fmt.Sprintf("Program %s is running.", name))
	slog.Info("program started", "user", user, "program", name)

	tick := func(ctx context.Context) error {
		return e.initTick(ctx, user)
	}
	if sched, ok := e.host.(TickScheduler); ok {
		return sched.ScheduleTick(ctx, user, tick)
	}
	return tick(ctx)
}

func (e *Engine) stopProgram(user string) error {
	name, ok := e.state.Active[user]
	if !ok {
		return commandError(ErrCodeNoActiveProgram, "No program is running.")
	}

	delete(e.state.Active, user)
	e.send(user, false, fmt.Sprintf("Program %s stopped.", name))
	slog.Info("program stopped", "user", user, "program", name)
	return nil
}

func (e *Engine) deleteProgram(user, text string) error {
	name, err := singleName("program delete", text)
	if err != nil {
		return err
	}
	_, idx, err := e.program(user, name)
	if err != nil {
		return err
	}
	if e.state.Active[user] == name {
		return commandError(ErrCodeProgramActive, "Program %s is running; stop it before deleting it.", name)
	}

	e.state.DeleteProgram(user, idx)
	e.send(user, false, fmt.Sprintf("Program %s deleted.", name))
	return nil
}
