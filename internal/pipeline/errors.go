package pipeline

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel matched by every [ValidationError].
//
// Callers that only care whether construction was rejected can use
// errors.Is(err, ErrValidation); callers that need the details use errors.As
// with a *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a condition or step that was constructed without
// the fields its kind requires.
//
// Validation errors are raised synchronously by [NewCondition] and [NewStep]
// and are fatal to a generation run: the CLI exits non-zero without writing
// any document.
type ValidationError struct {
	// Subject identifies what was being constructed, e.g. `step "deploy"`.
	Subject string

	// Reason describes the missing or invalid field.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Subject, e.Reason)
}

// Is reports whether target is [ErrValidation].
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(subject, format string, args ...any) *ValidationError {
	return &ValidationError{
		Subject: subject,
		Reason:  fmt.Sprintf(format, args...),
	}
}
