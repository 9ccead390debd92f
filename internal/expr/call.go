package expr

import (
	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// call invokes a built-in or user function.
// Arguments are evaluated in the caller's context; a user function body is
// evaluated in a new context holding only its parameter bindings, one call
// deeper than the caller.
func (ev *Evaluator) call(ctx *Context, name Token, args [][]Token) (ir.Value, error) {
	if b, ok := builtins[name.Name]; ok {
		return ev.callBuiltin(ctx, name, b, args)
	}

	var fn *ir.Function
	if ev.scope != nil {
		fn, _ = ev.scope.Function(name.Name)
	}
	if fn == nil {
		return nil, newError(ErrCodeUnknownFunction, name.Pos, "unknown function %s", name.Name)
	}

	if len(args) != len(fn.Params) {
		return nil, arityError(name, len(fn.Params), len(args))
	}

	depth := ctx.Depth + 1
	if depth > ev.maxCallDepth {
		return nil, newError(ErrCodeStackLimit, name.Pos, "calling %s exceeded the maximum call depth of %d", name.Name, ev.maxCallDepth)
	}

	vals, err := ev.evalArgs(ctx, args)
	if err != nil {
		return nil, err
	}

	body, err := ev.body(fn)
	if err != nil {
		return nil, err
	}

	locals := make(map[string]ir.Value, len(fn.Params))
	for i, p := range fn.Params {
		locals[p] = vals[i]
	}

	return ev.Eval(&Context{Depth: depth, Locals: locals}, body)
}

func (ev *Evaluator) callBuiltin(ctx *Context, name Token, b *Builtin, args [][]Token) (ir.Value, error) {
	if len(args) != len(b.Params) {
		return nil, arityError(name, len(b.Params), len(args))
	}

	vals, err := ev.evalArgs(ctx, args)
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		if v.Type() != b.Params[i] {
			return nil, newError(ErrCodeType, name.Pos, "argument %d of %s must be a %s, got %s", i+1, b.Name, b.Params[i], v.Type())
		}
	}

	return b.Fn(vals), nil
}

func (ev *Evaluator) evalArgs(ctx *Context, args [][]Token) ([]ir.Value, error) {
	vals := make([]ir.Value, len(args))
	for i, arg := range args {
		v, err := ev.Eval(ctx, arg)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// body returns fn's tokenized body, tokenizing each distinct body text once
// per evaluator.
func (ev *Evaluator) body(fn *ir.Function) ([]Token, error) {
	if toks, ok := ev.bodies[fn.Body]; ok {
		return toks, nil
	}
	toks, err := Tokenize(fn.Body)
	if err != nil {
		return nil, err
	}
	ev.bodies[fn.Body] = toks
	return toks, nil
}

func arityError(name Token, want, got int) error {
	return newError(ErrCodeArity, name.Pos, "%s expects %d %s, got %d", name.Name, want, plural(want, "argument"), got)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
