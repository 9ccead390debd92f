package expr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// mapScope is a Scope backed by plain maps.
type mapScope struct {
	vars  map[string]ir.Value
	funcs map[string]*ir.Function
}

func newMapScope() *mapScope {
	return &mapScope{vars: map[string]ir.Value{}, funcs: map[string]*ir.Function{}}
}

func (s *mapScope) Lookup(name string) (ir.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *mapScope) Function(name string) (*ir.Function, bool) {
	fn, ok := s.funcs[name]
	return fn, ok
}

func (s *mapScope) define(name, body string, params ...string) {
	s.funcs[name] = &ir.Function{Name: name, Params: params, Body: body}
}

func eval(t *testing.T, scope Scope, src string, opts ...Option) (ir.Value, error) {
	t.Helper()
	return NewEvaluator(scope, opts...).Evaluate(src)
}

func TestEval_Arithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"10 - 3 - 2", 5},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"-2 + 3", 1},
		{"3 + -2", 1},
		{"100 / 10 / 5", 2},
		{"7 % 4", 3},
		{"-7 % 4", -3},
		{"2 * (3 + (4 - 1))", 12},
		{"((5))", 5},
		{"- -2", 2},
		{"-(2 + 3)", -5},
		{"-2 * -3", 6},
		{"1 / 4", 0.25},
		{"8 - 2 * 3 + 1", 3},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := eval(t, nil, tt.src)
			require.NoError(t, err)
			assert.Equal(t, ir.Number(tt.want), v)
		})
	}
}

func TestEval_Logic(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"true", true},
		{"!true", false},
		{"!!true", true},
		{"true || false && false", true},
		{"(true || false) && false", false},
		{"1 < 2 && 2 <= 2", true},
		{"3 > 4 || 4 >= 5", false},
		{"1 + 1 == 2", true},
		{"1 != 1", false},
		{"true == true", true},
		{"!false == true", true},
		{"1 == true", false},
		{"1 != true", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := eval(t, nil, tt.src)
			require.NoError(t, err)
			assert.Equal(t, ir.Boolean(tt.want), v)
		})
	}
}

func TestEval_Identifiers(t *testing.T) {
	scope := newMapScope()
	scope.vars["balance"] = ir.Number(10)
	scope.vars["hot"] = ir.Boolean(true)

	v, err := eval(t, scope, "balance + 5")
	require.NoError(t, err)
	assert.Equal(t, ir.Number(15), v)

	v, err = eval(t, scope, "hot && balance > 5")
	require.NoError(t, err)
	assert.Equal(t, ir.Boolean(true), v)

	_, err = eval(t, scope, "missing + 1")
	assert.Equal(t, ErrCodeUnknownIdentifier, CodeOf(err))
}

func TestEval_ConstantsBeatScope(t *testing.T) {
	scope := newMapScope()
	scope.vars["true"] = ir.Number(1)

	v, err := eval(t, scope, "true")
	require.NoError(t, err)
	assert.Equal(t, ir.Boolean(true), v)
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		src  string
		code ErrorCode
	}{
		{"", ErrCodeEmpty},
		{"()", ErrCodeEmpty},
		{"(1 + 2", ErrCodeParse},
		{"1 + 2)", ErrCodeParse},
		{")(", ErrCodeParse},
		{"* 2", ErrCodeParse},
		{"2 *", ErrCodeParse},
		{"2 !true", ErrCodeParse},
		{"1 2", ErrCodeMalformed},
		{"1, 2", ErrCodeMalformed},
		{"(1)(2)", ErrCodeMalformed},
		{",", ErrCodeMalformed},
		{"1 + true", ErrCodeType},
		{"true + 1", ErrCodeType},
		{"-true", ErrCodeType},
		{"!1", ErrCodeType},
		{"1 && true", ErrCodeType},
		{"1 < false", ErrCodeType},
		{"1 / 0", ErrCodeArithmetic},
		{"1 % 0", ErrCodeArithmetic},
		{"a = 1", ErrCodeLexical},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := eval(t, nil, tt.src)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err), err.Error())
		})
	}
}

func TestEval_Overflow(t *testing.T) {
	huge := "1" + strings.Repeat("0", 200)
	_, err := eval(t, nil, huge+" * "+huge)
	assert.Equal(t, ErrCodeArithmetic, CodeOf(err))
}

func TestEval_NestingLimit(t *testing.T) {
	src := strings.Repeat("(", 5) + "1" + strings.Repeat(")", 5)

	v, err := eval(t, nil, src, WithMaxNesting(5))
	require.NoError(t, err)
	assert.Equal(t, ir.Number(1), v)

	_, err = eval(t, nil, "("+src+")", WithMaxNesting(5))
	assert.Equal(t, ErrCodeParse, CodeOf(err))
}

func TestEval_BooleanToken(t *testing.T) {
	ev := NewEvaluator(nil)
	v, err := ev.Eval(NewContext(), []Token{{Kind: TokenBoolean, Bool: true}})
	require.NoError(t, err)
	assert.Equal(t, ir.Boolean(true), v)

	_, err = ev.Eval(NewContext(), []Token{{Kind: TokenComma}})
	assert.Equal(t, ErrCodeMalformed, CodeOf(err))
}
