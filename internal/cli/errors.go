package cli

import (
	"errors"
	"fmt"
)

// ExitError carries the process exit code out of a Cobra RunE function.
//
// Commands print their own error message through the [output.Printer] and
// then return NewExitError(1); [RunWithConfig] turns it into an
// [ExecuteResult] and only [Execute] calls os.Exit. Tests can therefore
// assert on exit codes without terminating the test binary.
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
}

// Error returns "exit status N", matching os/exec.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError reports whether err is or wraps an [ExitError] and returns its
// code. It returns (0, false) for nil and for other errors.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
