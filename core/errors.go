package core

import "github.com/pkg/errors"

// FieldError ties a rejection message to a single payload field, eg. a
// duplicate email on registration.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is the app-level bad-input error. The API layer maps
// it to a 400 response, rendering Fields as a field→message map when
// present and Err's message otherwise.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an error fatal enough that serving more requests would
// do harm (eg. a poisoned database pool); the server drains and exits
// when it sees one.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
