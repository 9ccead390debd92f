package expr

import (
	"fmt"

	"github.com/queuedpixel/twitch-craps-bot/internal/ir"
)

// TokenKind distinguishes token variants.
type TokenKind int

const (
	TokenIdentifier TokenKind = iota + 1
	TokenNumber
	TokenBoolean
	TokenOperator
	TokenOpenParen
	TokenCloseParen
	TokenComma
)

// Operator identifies an operator token.
type Operator int

const (
	OpOr Operator = iota + 1
	OpAnd
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpNegate
	OpNot
)

type operatorInfo struct {
	symbol     string
	precedence int
	unary      bool
	operand    ir.Type // required operand type; 0 accepts any matching pair
	result     ir.Type
}

var operators = map[Operator]operatorInfo{
	OpOr:                 {"||", 1, false, ir.TypeBoolean, ir.TypeBoolean},
	OpAnd:                {"&&", 2, false, ir.TypeBoolean, ir.TypeBoolean},
	OpEqual:              {"==", 3, false, 0, ir.TypeBoolean},
	OpNotEqual:           {"!=", 3, false, 0, ir.TypeBoolean},
	OpLessThan:           {"<", 4, false, ir.TypeNumber, ir.TypeBoolean},
	OpLessThanOrEqual:    {"<=", 4, false, ir.TypeNumber, ir.TypeBoolean},
	OpGreaterThan:        {">", 4, false, ir.TypeNumber, ir.TypeBoolean},
	OpGreaterThanOrEqual: {">=", 4, false, ir.TypeNumber, ir.TypeBoolean},
	OpAdd:                {"+", 5, false, ir.TypeNumber, ir.TypeNumber},
	OpSubtract:           {"-", 5, false, ir.TypeNumber, ir.TypeNumber},
	OpMultiply:           {"*", 6, false, ir.TypeNumber, ir.TypeNumber},
	OpDivide:             {"/", 6, false, ir.TypeNumber, ir.TypeNumber},
	OpRemainder:          {"%", 6, false, ir.TypeNumber, ir.TypeNumber},
	OpNegate:             {"-", 7, true, ir.TypeNumber, ir.TypeNumber},
	OpNot:                {"!", 7, true, ir.TypeBoolean, ir.TypeBoolean},
}

// Precedence returns the binding strength; lower binds looser.
func (o Operator) Precedence() int { return operators[o].precedence }

// Unary reports whether the operator takes a single right-hand operand.
func (o Operator) Unary() bool { return operators[o].unary }

// String returns the operator's source symbol.
func (o Operator) String() string {
	if info, ok := operators[o]; ok {
		return info.symbol
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Token is one lexical element of an expression.
// Which payload field is meaningful depends on Kind.
type Token struct {
	Kind   TokenKind
	Name   string   // TokenIdentifier
	Number float64  // TokenNumber
	Bool   bool     // TokenBoolean
	Op     Operator // TokenOperator
	Pos    int      // byte offset in the source
}

// String renders the token as it would appear in source.
func (t Token) String() string {
	switch t.Kind {
	case TokenIdentifier:
		return t.Name
	case TokenNumber:
		return ir.FormatNumber(t.Number)
	case TokenBoolean:
		return ir.Boolean(t.Bool).String()
	case TokenOperator:
		return t.Op.String()
	case TokenOpenParen:
		return "("
	case TokenCloseParen:
		return ")"
	case TokenComma:
		return ","
	default:
		return "?"
	}
}
