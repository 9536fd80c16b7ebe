package services

import (
	"errors"
	"fmt"
)

// ErrConflict marks operations rejected because the record is in a
// state that does not admit them (already linked, already finalized).
var ErrConflict = errors.New("conflicting state")

// ValidationError reports rejected caller input. Handlers map it to a
// 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a caller-input rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
