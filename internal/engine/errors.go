package engine

import (
	"errors"
	"fmt"

	"github.com/queuedpixel/twitch-craps-bot/internal/expr"
)

// CommandError is a failure of an engine command, reported to the acting user.
type CommandError struct {
	// Code identifies the error category.
	Code CommandErrorCode

	// Message is the user-facing description.
	Message string
}

// CommandErrorCode categorizes command errors.
type CommandErrorCode string

const (
	// ErrCodeUnknownCommand indicates a command word nothing recognizes.
	ErrCodeUnknownCommand CommandErrorCode = "UNKNOWN_COMMAND"

	// ErrCodeUsage indicates missing or malformed command arguments.
	ErrCodeUsage CommandErrorCode = "USAGE"

	// ErrCodeProgramNotFound indicates a program name the user does not own.
	ErrCodeProgramNotFound CommandErrorCode = "PROGRAM_NOT_FOUND"

	// ErrCodeProgramExists indicates create with a name already in use.
	ErrCodeProgramExists CommandErrorCode = "PROGRAM_ALREADY_EXISTS"

	// ErrCodeProgramActive indicates deleting the user's active program.
	ErrCodeProgramActive CommandErrorCode = "PROGRAM_ACTIVE"

	// ErrCodeNoActiveProgram indicates stop with nothing running.
	ErrCodeNoActiveProgram CommandErrorCode = "NO_ACTIVE_PROGRAM"

	// ErrCodeIndexOutOfRange indicates a statement index past the program end.
	ErrCodeIndexOutOfRange CommandErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeFunctionNotFound indicates deleting an undefined function.
	ErrCodeFunctionNotFound CommandErrorCode = "FUNCTION_NOT_FOUND"

	// ErrCodeVariableNotFound indicates deleting an undefined variable.
	ErrCodeVariableNotFound CommandErrorCode = "VARIABLE_NOT_FOUND"

	// ErrCodePermissionDenied indicates an interactive-only command run from a program.
	ErrCodePermissionDenied CommandErrorCode = "PERMISSION_DENIED"

	// ErrCodeInvalidName indicates a name reserved by the host.
	ErrCodeInvalidName CommandErrorCode = "INVALID_NAME"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func commandError(code CommandErrorCode, format string, args ...any) *CommandError {
	return &CommandError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func usageError(command string) *CommandError {
	return &CommandError{Code: ErrCodeUsage, Message: "usage: " + Usage(command)}
}

// IsCommandError reports whether err is a CommandError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCommandError(err error, code CommandErrorCode) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// ErrorCode returns the code of a reportable error: a CommandError code or an
// expression error code. Anything else is "INTERNAL".
func ErrorCode(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	if code := expr.CodeOf(err); code != "" {
		return string(code)
	}
	return "INTERNAL"
}

// reportable reports whether err is shown to the user rather than returned.
func reportable(err error) bool {
	var ce *CommandError
	var ee *expr.Error
	return errors.As(err, &ce) || errors.As(err, &ee)
}

// userMessage returns the text shown to a user for a reportable error.
func userMessage(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Message
	}
	var ee *expr.Error
	if errors.As(err, &ee) {
		return ee.Message
	}
	return err.Error()
}

// needsHelp reports whether the user should be pointed at command help.
func needsHelp(err error) bool {
	return IsCommandError(err, ErrCodeUsage) || IsCommandError(err, ErrCodeUnknownCommand)
}
