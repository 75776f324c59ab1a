// Package apperr defines the error categories used across GeoAccuRate-cli.
//
// Error taxonomy
//
//	InvalidInputError  – malformed or mismatched input data (length mismatch,
//	                     empty label sequences, unknown class codes, negative
//	                     areas, out-of-range parameters). Fatal; the offending
//	                     parameter is always named. Exit code: 1.
//
//	PreconditionError  – the input is well-formed but a required condition
//	                     upstream is not met (geographic CRS supplied for area
//	                     estimation). Fatal; must be corrected by the caller.
//	                     Exit code: 1.
//
//	UserError          – invalid CLI usage (wrong flag, bad value, …).
//	                     The CLI prints only the message; usage help is NOT
//	                     repeated. Exit code: 1.
//
//	ErrCancelled       – the user deliberately aborted an interactive flow.
//	                     Exit code: 0 (not a failure).
//
// Degenerate statistical cases (zero-sample classes, single-sample strata,
// undefined Kappa) are NOT errors; they are reported as warnings by the
// finding and rules packages.
//
// Everything else is a plain Go error (I/O, decoding, …) and is propagated
// with fmt.Errorf("context: %w", err) wrapping.
package apperr

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user explicitly aborts an interactive
// operation.  The CLI should exit 0 rather than 1 when it sees this error.
var ErrCancelled = errors.New("operation cancelled")

// UserError represents an error caused by invalid or missing user input.
// Cobra command handlers return this instead of a bare fmt.Errorf so that
// the root command can suppress repeated usage output and format the message
// in a user-friendly way.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// User creates a UserError with the given message.
func User(msg string) error { return &UserError{Message: msg} }

// Userf creates a formatted UserError.
func Userf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUser reports whether err is (or wraps) a *UserError.
func IsUser(err error) bool {
	var u *UserError
	return errors.As(err, &u)
}

// InvalidInputError reports malformed or mismatched input. Param names the
// offending parameter (for example "predicted", "mapped_area[3]").
type InvalidInputError struct {
	Param   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Param == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid input %s: %s", e.Param, e.Message)
}

// Invalid creates an InvalidInputError for param.
func Invalid(param, msg string) error {
	return &InvalidInputError{Param: param, Message: msg}
}

// Invalidf creates a formatted InvalidInputError for param.
func Invalidf(param, format string, args ...any) error {
	return &InvalidInputError{Param: param, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err is (or wraps) an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}

// PreconditionError reports an unmet upstream requirement.
type PreconditionError struct {
	Param   string
	Message string
}

func (e *PreconditionError) Error() string {
	if e.Param == "" {
		return "precondition failed: " + e.Message
	}
	return fmt.Sprintf("precondition failed (%s): %s", e.Param, e.Message)
}

// Precondition creates a PreconditionError for param.
func Precondition(param, msg string) error {
	return &PreconditionError{Param: param, Message: msg}
}

// IsPrecondition reports whether err is (or wraps) a *PreconditionError.
func IsPrecondition(err error) bool {
	var e *PreconditionError
	return errors.As(err, &e)
}
