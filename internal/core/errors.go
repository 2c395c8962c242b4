package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// GenericErrorMessage is the only failure text shown to users when a model
// call fails. Details stay in the server log.
const GenericErrorMessage = "An AI error occurred. Please try again."

// ErrService matches every ServiceError via errors.Is.
var ErrService = errors.New("ai service error")

// ServiceError wraps a failed call to the model, speech or transcription
// service.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrService }

// ValidationError carries human-readable messages per input field, keyed by
// the field's JSON name.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
