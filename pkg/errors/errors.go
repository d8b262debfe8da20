package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedLine   = errors.New("malformed query line")
	ErrFieldMismatch   = errors.New("weight and field counts differ")
	ErrInputNotFound   = errors.New("input file not found")
	ErrSinkUnavailable = errors.New("sink unavailable")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInternal        = errors.New("internal error")
)

// Process exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitInternal    = 1
	ExitUsage       = 2
	ExitInput       = 3
	ExitMalformed   = 4
	ExitUnavailable = 5
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// LineError reports an input line that could not be split into an index
// and a query.
type LineError struct {
	Line int
	Text string
	Seps int
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: expected exactly one ':' separator, found %d: %q", e.Line, e.Seps, e.Text)
}

func (e *LineError) Unwrap() error {
	return ErrMalformedLine
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrFieldMismatch):
		return ExitUsage
	case errors.Is(err, ErrInputNotFound):
		return ExitInput
	case errors.Is(err, ErrMalformedLine):
		return ExitMalformed
	case errors.Is(err, ErrSinkUnavailable):
		return ExitUnavailable
	default:
		return ExitInternal
	}
}
