package expr

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// Tokenize turns one expression (without its enclosing braces) into tokens.
//
// Any character the language does not use aborts tokenization with an
// ErrCodeLexical error naming it; no partial result is returned.
//
// '-' is resolved here: it is unary negation when it starts the expression
// or follows an operator, '(' or ','; otherwise it is subtraction.
func Tokenize(src string) ([]Token, error) {
	var toks []Token

	for i := 0; i < len(src); {
		c := src[i]
		start := i

		switch {
		case isSpace(c):
			i++

		case isIdentStart(c):
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokenIdentifier, Name: src[start:i], Pos: start})

		case isDigit(c):
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			n, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil || math.IsInf(n, 0) {
				return nil, newError(ErrCodeLexical, start, "numeric literal %s is out of range", src[start:i])
			}
			toks = append(toks, Token{Kind: TokenNumber, Number: n, Pos: start})

		case c == '(':
			i++
			toks = append(toks, Token{Kind: TokenOpenParen, Pos: start})
		case c == ')':
			i++
			toks = append(toks, Token{Kind: TokenCloseParen, Pos: start})
		case c == ',':
			i++
			toks = append(toks, Token{Kind: TokenComma, Pos: start})

		case c == '+':
			i++
			toks = append(toks, opToken(OpAdd, start))
		case c == '*':
			i++
			toks = append(toks, opToken(OpMultiply, start))
		case c == '/':
			i++
			toks = append(toks, opToken(OpDivide, start))
		case c == '%':
			i++
			toks = append(toks, opToken(OpRemainder, start))

		case c == '-':
			i++
			if minusIsUnary(toks) {
				toks = append(toks, opToken(OpNegate, start))
			} else {
				toks = append(toks, opToken(OpSubtract, start))
			}

		case c == '|' || c == '&' || c == '=' || c == '!' || c == '<' || c == '>':
			op, width, err := scanCompound(src, i)
			if err != nil {
				return nil, err
			}
			i += width
			toks = append(toks, opToken(op, start))

		default:
			r, _ := utf8.DecodeRuneInString(src[start:])
			return nil, newError(ErrCodeLexical, start, "unexpected character %q", r)
		}
	}

	return toks, nil
}

// scanCompound reads an operator starting with one of | & = ! < >.
// It returns the operator and how many bytes it used.
func scanCompound(src string, i int) (Operator, int, error) {
	c := src[i]
	var next byte
	if i+1 < len(src) {
		next = src[i+1]
	}

	switch c {
	case '|':
		if next == '|' {
			return OpOr, 2, nil
		}
	case '&':
		if next == '&' {
			return OpAnd, 2, nil
		}
	case '=':
		if next == '=' {
			return OpEqual, 2, nil
		}
	case '!':
		if next == '=' {
			return OpNotEqual, 2, nil
		}
		return OpNot, 1, nil
	case '<':
		if next == '=' {
			return OpLessThanOrEqual, 2, nil
		}
		return OpLessThan, 1, nil
	case '>':
		if next == '=' {
			return OpGreaterThanOrEqual, 2, nil
		}
		return OpGreaterThan, 1, nil
	}

	return 0, 0, newError(ErrCodeLexical, i, "unexpected character %q; did you mean %q?", rune(c), string([]byte{c, c}))
}

func minusIsUnary(toks []Token) bool {
	if len(toks) == 0 {
		return true
	}
	switch toks[len(toks)-1].Kind {
	case TokenOperator, TokenOpenParen, TokenComma:
		return true
	default:
		return false
	}
}

func opToken(op Operator, pos int) Token {
	return Token{Kind: TokenOperator, Op: op, Pos: pos}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
