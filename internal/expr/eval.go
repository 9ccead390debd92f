package expr

import (
	"math"
	"strings"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

const (
	// DefaultMaxCallDepth bounds nested user function calls.
	DefaultMaxCallDepth = 1000

	// DefaultMaxNesting bounds parenthesis depth, which the call-depth
	// ceiling does not cover.
	DefaultMaxNesting = 256
)

// Scope supplies the names an expression can see beyond its own parameter
// bindings and the true/false constants.
type Scope interface {
	// Lookup resolves a non-local identifier.
	Lookup(name string) (ir.Value, bool)

	// Function resolves a user-defined function.
	Function(name string) (*ir.Function, bool)
}

// Context is the scratch state threaded through one top-level evaluation.
// Locals holds function parameter bindings only.
type Context struct {
	Depth  int
	Locals map[string]ir.Value
}

// NewContext returns a fresh top-level context.
func NewContext() *Context {
	return &Context{Locals: map[string]ir.Value{}}
}

// Evaluator evaluates token slices against a Scope.
// An Evaluator is cheap; create one per top-level evaluation.
type Evaluator struct {
	scope        Scope
	maxCallDepth int
	maxNesting   int
	bodies       map[string][]Token // tokenized function bodies, keyed by body text
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxCallDepth sets the user function call-depth ceiling.
func WithMaxCallDepth(n int) Option {
	return func(ev *Evaluator) {
		ev.maxCallDepth = n
	}
}

// WithMaxNesting sets the parenthesis nesting ceiling. Zero disables it.
func WithMaxNesting(n int) Option {
	return func(ev *Evaluator) {
		ev.maxNesting = n
	}
}

// NewEvaluator creates an evaluator over scope. scope may be nil.
func NewEvaluator(scope Scope, opts ...Option) *Evaluator {
	ev := &Evaluator{
		scope:        scope,
		maxCallDepth: DefaultMaxCallDepth,
		maxNesting:   DefaultMaxNesting,
		bodies:       make(map[string][]Token),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Evaluate tokenizes src and evaluates it in a fresh context.
func (ev *Evaluator) Evaluate(src string) (ir.Value, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ev.Eval(NewContext(), toks)
}

// Eval evaluates toks in ctx.
func (ev *Evaluator) Eval(ctx *Context, toks []Token) (ir.Value, error) {
	if len(toks) == 0 {
		return nil, newError(ErrCodeEmpty, -1, "empty expression")
	}
	if len(toks) == 1 {
		return ev.single(ctx, toks[0])
	}

	l, err := ev.scan(toks)
	if err != nil {
		return nil, err
	}

	last := len(toks) - 1

	// (expr)
	if l.groups == 1 && toks[0].Kind == TokenOpenParen && toks[last].Kind == TokenCloseParen {
		return ev.Eval(ctx, toks[1:last])
	}

	// name(args)
	if l.groups == 1 && toks[0].Kind == TokenIdentifier &&
		toks[1].Kind == TokenOpenParen && toks[last].Kind == TokenCloseParen {
		return ev.call(ctx, toks[0], splitArgs(toks[2:last]))
	}

	if l.op >= 0 {
		return ev.apply(ctx, toks, l.op)
	}

	return nil, newError(ErrCodeMalformed, toks[0].Pos, "cannot evaluate %q", render(toks))
}

// layout describes the top level of a token slice.
type layout struct {
	op     int // index of the loosest-binding top-level operator, -1 if none
	groups int // number of top-level parenthesized groups
}

// scan finds the split operator and counts top-level groups, checking that
// parentheses balance.
func (ev *Evaluator) scan(toks []Token) (layout, error) {
	l := layout{op: -1}
	depth := 0

	for i, t := range toks {
		switch t.Kind {
		case TokenOpenParen:
			if depth == 0 {
				l.groups++
			}
			depth++
			if ev.maxNesting > 0 && depth > ev.maxNesting {
				return l, newError(ErrCodeParse, t.Pos, "parentheses nested deeper than %d", ev.maxNesting)
			}

		case TokenCloseParen:
			if depth == 0 {
				return l, newError(ErrCodeParse, t.Pos, "missing opening parenthesis: (")
			}
			depth--

		case TokenOperator:
			if depth != 0 {
				continue
			}
			if l.op < 0 {
				l.op = i
				continue
			}
			best := toks[l.op].Op
			switch {
			case t.Op.Precedence() < best.Precedence():
				l.op = i
			case t.Op.Precedence() == best.Precedence() && !t.Op.Unary():
				// rightmost binary operator: left associativity
				l.op = i
			}
		}
	}

	if depth != 0 {
		return l, newError(ErrCodeParse, toks[len(toks)-1].Pos, "missing closing parenthesis: )")
	}
	return l, nil
}

// single evaluates a one-token expression.
func (ev *Evaluator) single(ctx *Context, t Token) (ir.Value, error) {
	switch t.Kind {
	case TokenIdentifier:
		return ev.resolve(ctx, t)
	case TokenNumber:
		return ir.Number(t.Number), nil
	case TokenBoolean:
		return ir.Boolean(t.Bool), nil
	default:
		return nil, newError(ErrCodeMalformed, t.Pos, "unexpected %q", t.String())
	}
}

// resolve looks an identifier up in parameter bindings, constants, then scope.
func (ev *Evaluator) resolve(ctx *Context, t Token) (ir.Value, error) {
	if v, ok := ctx.Locals[t.Name]; ok {
		return v, nil
	}
	switch t.Name {
	case ConstTrue:
		return ir.Boolean(true), nil
	case ConstFalse:
		return ir.Boolean(false), nil
	}
	if ev.scope != nil {
		if v, ok := ev.scope.Lookup(t.Name); ok {
			return v, nil
		}
	}
	return nil, newError(ErrCodeUnknownIdentifier, t.Pos, "unknown identifier %s", t.Name)
}

// apply splits toks at the operator at index i and applies it.
func (ev *Evaluator) apply(ctx *Context, toks []Token, i int) (ir.Value, error) {
	t := toks[i]
	op := t.Op

	if op.Unary() {
		if i != 0 {
			return nil, newError(ErrCodeParse, t.Pos, "operator %s must come before its operand", op)
		}
		operand, err := ev.Eval(ctx, toks[1:])
		if err != nil {
			return nil, err
		}
		if err := checkOperand(t, "", operand); err != nil {
			return nil, err
		}
		if op == OpNegate {
			return ir.Number(-float64(operand.(ir.Number))), nil
		}
		return ir.Boolean(!bool(operand.(ir.Boolean))), nil
	}

	if i == 0 {
		return nil, newError(ErrCodeParse, t.Pos, "operator %s is missing its left operand", op)
	}
	if i == len(toks)-1 {
		return nil, newError(ErrCodeParse, t.Pos, "operator %s is missing its right operand", op)
	}

	left, err := ev.Eval(ctx, toks[:i])
	if err != nil {
		return nil, err
	}
	right, err := ev.Eval(ctx, toks[i+1:])
	if err != nil {
		return nil, err
	}
	if err := checkOperand(t, "left ", left); err != nil {
		return nil, err
	}
	if err := checkOperand(t, "right ", right); err != nil {
		return nil, err
	}

	return binary(t, left, right)
}

func checkOperand(t Token, side string, v ir.Value) error {
	want := operators[t.Op].operand
	if want == 0 || v.Type() == want {
		return nil
	}
	return newError(ErrCodeType, t.Pos, "operator %s expects a %s %soperand, got %s", t.Op, want, side, v.Type())
}

// binary applies a type-checked binary operator.
func binary(t Token, left, right ir.Value) (ir.Value, error) {
	switch t.Op {
	case OpOr:
		return ir.Boolean(bool(left.(ir.Boolean)) || bool(right.(ir.Boolean))), nil
	case OpAnd:
		return ir.Boolean(bool(left.(ir.Boolean)) && bool(right.(ir.Boolean))), nil
	case OpEqual:
		return ir.Boolean(ir.Equal(left, right)), nil
	case OpNotEqual:
		return ir.Boolean(!ir.Equal(left, right)), nil
	}

	l, r := float64(left.(ir.Number)), float64(right.(ir.Number))

	var result float64
	switch t.Op {
	case OpLessThan:
		return ir.Boolean(l < r), nil
	case OpLessThanOrEqual:
		return ir.Boolean(l <= r), nil
	case OpGreaterThan:
		return ir.Boolean(l > r), nil
	case OpGreaterThanOrEqual:
		return ir.Boolean(l >= r), nil
	case OpAdd:
		result = l + r
	case OpSubtract:
		result = l - r
	case OpMultiply:
		result = l * r
	case OpDivide:
		if r == 0 {
			return nil, newError(ErrCodeArithmetic, t.Pos, "division by zero")
		}
		result = l / r
	case OpRemainder:
		if r == 0 {
			return nil, newError(ErrCodeArithmetic, t.Pos, "remainder by zero")
		}
		result = math.Mod(l, r)
	default:
		return nil, newError(ErrCodeMalformed, t.Pos, "unsupported operator %s", t.Op)
	}

	return finite(t, result)
}

func finite(t Token, f float64) (ir.Value, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, newError(ErrCodeArithmetic, t.Pos, "result of %s is not a finite number", t.String())
	}
	return ir.Number(f), nil
}

// splitArgs splits a call's interior on top-level commas.
// An empty interior is a call with no arguments.
func splitArgs(toks []Token) [][]Token {
	if len(toks) == 0 {
		return nil
	}
	var args [][]Token
	depth, start := 0, 0
	for i, t := range toks {
		switch t.Kind {
		case TokenOpenParen:
			depth++
		case TokenCloseParen:
			depth--
		case TokenComma:
			if depth == 0 {
				args = append(args, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(args, toks[start:])
}

// render reassembles tokens for error messages.
func render(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
