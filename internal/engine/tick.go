package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// RunPrograms runs one tick: every active program is evaluated once.
// Hosts call it once per game event. The returned error is a persistence
// failure only.
func (e *Engine) RunPrograms(ctx context.Context) error {
	return e.tick(ctx, "")
}

// initTick runs the tick that follows "program run", restricted to user,
// with init true.
func (e *Engine) initTick(ctx context.Context, user string) error {
	e.initUser = user
	defer func() { e.initUser = "" }()
	return e.tick(ctx, user)
}

// tick visits active users in sorted order, or only the given user.
//
// A tick started while another is running (a program action whose host
// command triggers a tick) is skipped.
func (e *Engine) tick(ctx context.Context, only string) error {
	if e.ticking {
		slog.Warn("tick skipped: tick already running", "user", only)
		return nil
	}
	e.ticking = true
	defer func() { e.ticking = false }()

	id := e.tickIDs.Generate()
	seq := e.clock.Next()
	log := slog.With("tick", id, "seq", seq)
	log.Debug("tick started", "user", only)

	users := e.state.ActiveUsers()
	if only != "" {
		users = slices.DeleteFunc(users, func(u string) bool { return u != only })
	}

	ran := 0
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := e.state.Active[user]
		p, _ := e.state.Program(user, name)
		if p == nil {
			log.Warn("active program missing", "user", user, "program", name)
			continue
		}
		ran += e.runStatements(ctx, log, user, p)
	}

	e.metrics.tick()
	log.Debug("tick finished", "users", len(users), "actions", ran)

	return e.persist(ctx)
}

// runStatements evaluates every statement of p in order, always to the end.
// It returns how many actions ran.
func (e *Engine) runStatements(ctx context.Context, log *slog.Logger, user string, p *ir.Program) int {
	stmts := slices.Clone(p.Statements)
	ran := 0

	for i, st := range stmts {
		ok, err := e.condition(user, st.Condition)
		if err != nil {
			e.metrics.statement(statementFailed)
			log.Warn("statement condition failed",
				"user", user,
				"program", p.Name,
				"index", i,
				"error", err,
			)
			e.reportAt(user, true, fmt.Sprintf("%s[%d]", p.Name, i), err)
			continue
		}
		if !ok {
			e.metrics.statement(statementSkipped)
			continue
		}

		e.metrics.statement(statementRan)
		e.execCompound(ctx, user, st.Action, true)
		ran++
	}
	return ran
}

// condition evaluates a statement condition, which must be boolean.
func (e *Engine) condition(user, src string) (bool, error) {
	v, err := e.evaluate(user, src)
	if err != nil {
		return false, err
	}
	b, ok := v.(ir.Boolean)
	if !ok {
		return false, &expr.Error{
			Code:    expr.ErrCodeType,
			Message: fmt.Sprintf("condition %q is a %s, not a boolean", src, v.Type()),
			Pos:     -1,
		}
	}
	return bool(b), nil
}
