package expr

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes expression errors.
type ErrorCode string

const (
	// ErrCodeLexical indicates a character the tokenizer cannot accept.
	ErrCodeLexical ErrorCode = "LEXICAL_ERROR"

	// ErrCodeParse indicates unbalanced parentheses or braces, or an
	// operator in a position it cannot occupy.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeEmpty indicates an empty expression or operand.
	ErrCodeEmpty ErrorCode = "EMPTY_EXPRESSION"

	// ErrCodeMalformed indicates tokens that form no operator, group, or call.
	ErrCodeMalformed ErrorCode = "MALFORMED_EXPRESSION"

	// ErrCodeUnknownIdentifier indicates a name with no binding.
	ErrCodeUnknownIdentifier ErrorCode = "UNKNOWN_IDENTIFIER"

	// ErrCodeType indicates an operand, argument, or condition of the wrong type.
	ErrCodeType ErrorCode = "TYPE_ERROR"

	// ErrCodeArity indicates a call with the wrong number of arguments.
	ErrCodeArity ErrorCode = "ARITY_ERROR"

	// ErrCodeUnknownFunction indicates a call to an undefined function.
	ErrCodeUnknownFunction ErrorCode = "UNKNOWN_FUNCTION"

	// ErrCodeStackLimit indicates user function calls nested past the ceiling.
	ErrCodeStackLimit ErrorCode = "STACK_LIMIT_EXCEEDED"

	// ErrCodeArithmetic indicates division by zero or a non-finite result.
	ErrCodeArithmetic ErrorCode = "ARITHMETIC_ERROR"

	// ErrCodeDefinition indicates an invalid function or variable definition.
	ErrCodeDefinition ErrorCode = "INVALID_DEFINITION"
)

// Error is an expression tokenizing, parsing, or evaluation failure.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Pos is the byte offset in the expression text, or -1 when unknown.
	Pos int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, pos int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsStackLimit reports whether err is a call-depth ceiling failure.
func IsStackLimit(err error) bool {
	return CodeOf(err) == ErrCodeStackLimit
}
