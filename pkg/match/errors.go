package match

import (
	"errors"
	"fmt"
)

// InvalidInputError reports a violation of the (text, pattern) input contract.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsInvalidInput reports whether err, or anything it wraps, is an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

var (
	errEmptyPattern = &InvalidInputError{Field: "pattern", Reason: "must not be empty"}
	errEmptyText    = &InvalidInputError{Field: "text", Reason: "must not be empty"}
)
