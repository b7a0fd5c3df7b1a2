package devbolt

import (
	"errors"
	"fmt"
)

// ErrFlagNotFound is matched by errors.Is against the typed
// [FlagNotFoundError] returned in strict mode.
var ErrFlagNotFound = errors.New("flag not found")

// ValidationError reports a structural violation in a raw flags config.
// Field is a dotted/bracketed path to the offending location, e.g.
// "my_flag.targeting[2].operator"; the path format is a compatibility
// contract for tooling that surfaces these errors.
type ValidationError struct {
	Message string
	Field   string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (field %s)", e.Message, e.Field)
}

func validationErrorf(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
		Field:   field,
		Value:   value,
	}
}

// FlagNotFoundError is returned by strict-mode evaluation when the flag name
// is absent from the active configuration.
type FlagNotFoundError struct {
	FlagName string
}

func (e *FlagNotFoundError) Error() string {
	return fmt.Sprintf("flag %q not found", e.FlagName)
}

// Is makes errors.Is(err, ErrFlagNotFound) match.
func (e *FlagNotFoundError) Is(target error) bool {
	return target == ErrFlagNotFound
}

// ParseError reports a failure to read or decode a flags config document.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
