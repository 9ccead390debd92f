package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

func TestCall_Builtins(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"floor(7 / 2)", 3},
		{"floor(-1 / 2)", -1},
		{"ceil(7 / 2)", 4},
		{"round(5 / 2)", 3},
		{"round(-5 / 2)", -2},
		{"abs(-4)", 4},
		{"min(3, -1)", -1},
		{"max(3, -1)", 3},
		{"max(min(1, 2), 0)", 1},
		{"max(1 + 1, (3))", 3},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := eval(t, nil, tt.src)
			require.NoError(t, err)
			assert.Equal(t, ir.Number(tt.want), v)
		})
	}
}

func TestCall_BuiltinErrors(t *testing.T) {
	tests := []struct {
		src  string
		code ErrorCode
	}{
		{"floor()", ErrCodeArity},
		{"min(1)", ErrCodeArity},
		{"abs(1, 2)", ErrCodeArity},
		{"abs(true)", ErrCodeType},
		{"max(1, false)", ErrCodeType},
		{"abs(1 +)", ErrCodeParse},
		{"min(1, )", ErrCodeEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := eval(t, nil, tt.src)
			assert.Equal(t, tt.code, CodeOf(err), "%v", err)
		})
	}
}

func TestCall_UserFunction(t *testing.T) {
	scope := newMapScope()
	scope.define("add2", "a + b", "a", "b")
	scope.define("double", "add2(x, x)", "x")
	scope.define("seven", "7")

	v, err := eval(t, scope, "add2(3, 4)")
	require.NoError(t, err)
	assert.Equal(t, ir.Number(7), v)

	v, err = eval(t, scope, "double(add2(1, 2)) * 2")
	require.NoError(t, err)
	assert.Equal(t, ir.Number(12), v)

	v, err = eval(t, scope, "seven()")
	require.NoError(t, err)
	assert.Equal(t, ir.Number(7), v)
}

func TestCall_ArityMessage(t *testing.T) {
	scope := newMapScope()
	scope.define("add2", "a + b", "a", "b")

	_, err := eval(t, scope, "add2(1)")
	require.Error(t, err)
	assert.Equal(t, ErrCodeArity, CodeOf(err))
	assert.Contains(t, err.Error(), "add2 expects 2 arguments, got 1")
}

func TestCall_UnknownFunction(t *testing.T) {
	_, err := eval(t, newMapScope(), "nope(1)")
	assert.Equal(t, ErrCodeUnknownFunction, CodeOf(err))

	_, err = eval(t, nil, "nope()")
	assert.Equal(t, ErrCodeUnknownFunction, CodeOf(err))
}

func TestCall_ParametersShadowScope(t *testing.T) {
	scope := newMapScope()
	scope.vars["x"] = ir.Number(100)
	scope.define("inc", "x + 1", "x")

	v, err := eval(t, scope, "inc(1) + x")
	require.NoError(t, err)
	assert.Equal(t, ir.Number(102), v)
}

func TestCall_BodyCannotSeeCallerParameters(t *testing.T) {
	scope := newMapScope()
	scope.define("outer", "inner()", "secret")
	scope.define("inner", "secret")

	_, err := eval(t, scope, "outer(1)")
	assert.Equal(t, ErrCodeUnknownIdentifier, CodeOf(err))
}

func TestCall_BodyTypeErrorPropagates(t *testing.T) {
	scope := newMapScope()
	scope.define("neg", "-b", "b")

	_, err := eval(t, scope, "neg(true)")
	assert.Equal(t, ErrCodeType, CodeOf(err))
}

func TestCall_DepthLimit(t *testing.T) {
	scope := newMapScope()
	scope.define("a", "b()")
	scope.define("b", "c()")
	scope.define("c", "1")

	v, err := eval(t, scope, "a()", WithMaxCallDepth(3))
	require.NoError(t, err)
	assert.Equal(t, ir.Number(1), v)

	_, err = eval(t, scope, "a()", WithMaxCallDepth(2))
	require.Error(t, err)
	assert.True(t, IsStackLimit(err))
}

func TestCall_Recursion(t *testing.T) {
	scope := newMapScope()
	scope.define("loop", "loop(n + 1)", "n")

	_, err := eval(t, scope, "loop(0)")
	require.Error(t, err)
	assert.True(t, IsStackLimit(err))
	assert.Contains(t, err.Error(), "1000")
}

func TestCall_Validate(t *testing.T) {
	tests := []struct {
		name string
		fn   *ir.Function
		ok   bool
	}{
		{"valid", &ir.Function{Name: "add2", Params: []string{"a", "b"}, Body: "a + b"}, true},
		{"no params", &ir.Function{Name: "seven", Body: "7"}, true},
		{"bad name", &ir.Function{Name: "2x", Body: "1"}, false},
		{"builtin", &ir.Function{Name: "floor", Params: []string{"x"}, Body: "x"}, false},
		{"bad param", &ir.Function{Name: "f", Params: []string{"a-b"}, Body: "1"}, false},
		{"duplicate param", &ir.Function{Name: "f", Params: []string{"a", "a"}, Body: "a"}, false},
		{"empty body", &ir.Function{Name: "f", Body: "  "}, false},
		{"untokenizable body", &ir.Function{Name: "f", Body: "a = 1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFunction(tt.fn)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestValidateVariableName(t *testing.T) {
	assert.NoError(t, ValidateVariableName("bet_size"))
	assert.NoError(t, ValidateVariableName("_x1"))

	for _, name := range []string{"", "1x", "a b", "init", "true", "false"} {
		assert.Error(t, ValidateVariableName(name), name)
	}
}

func TestBuiltins_Sorted(t *testing.T) {
	var names []string
	for _, b := range Builtins() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"abs", "ceil", "floor", "max", "min", "round"}, names)

	b, ok := LookupBuiltin("max")
	require.True(t, ok)
	assert.Equal(t, "max(number, number) -> number", b.Signature())
}
