package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"app error wins", New(ErrMalformedLine, 42, "custom"), 42},
		{"config", fmt.Errorf("loading: %w", ErrInvalidConfig), ExitUsage},
		{"mismatch", ErrFieldMismatch, ExitUsage},
		{"input", fmt.Errorf("open: %w", ErrInputNotFound), ExitInput},
		{"line error", &LineError{Line: 3, Text: "nocolon", Seps: 0}, ExitMalformed},
		{"sink", ErrSinkUnavailable, ExitUnavailable},
		{"other", errors.New("boom"), ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLineErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("reformulating: %w", &LineError{Line: 7, Text: "a:b:c", Seps: 2})
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatal("expected LineError to match ErrMalformedLine")
	}
	var le *LineError
	if !errors.As(err, &le) || le.Line != 7 {
		t.Fatalf("errors.As failed or wrong line: %+v", le)
	}
}
