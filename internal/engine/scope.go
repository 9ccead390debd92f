package engine

import (
	"log/slog"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// userScope resolves identifiers for one user.
//
// Lookup order after parameter bindings and true/false:
//  1. init
//  2. host variables
//  3. the user's variables
type userScope struct {
	e    *Engine
	user string
}

var _ expr.Scope = userScope{}

// Lookup implements expr.Scope.
func (s userScope) Lookup(name string) (ir.Value, bool) {
	if name == expr.ConstInit {
		return ir.Boolean(s.e.initUser != "" && s.e.initUser == s.user), true
	}
	if v, ok := s.e.host.Variable(s.user, name); ok {
		return v, true
	}
	return s.e.state.Variable(s.user, name)
}

// Function implements expr.Scope.
func (s userScope) Function(name string) (*ir.Function, bool) {
	return s.e.state.Function(s.user, name)
}

// evaluate evaluates src for user in a fresh top-level context.
func (e *Engine) evaluate(user, src string) (ir.Value, error) {
	ev := expr.NewEvaluator(userScope{e: e, user: user},
		expr.WithMaxCallDepth(e.maxCallDepth),
		expr.WithMaxNesting(e.maxNesting),
	)

	v, err := ev.Evaluate(src)
	e.metrics.evaluation(err)
	if err != nil {
		slog.Debug("evaluation failed", "user", user, "expression", src, "error", err)
		return nil, err
	}

	slog.Debug("evaluated", "user", user, "expression", src, "result", v.String())
	return v, nil
}
