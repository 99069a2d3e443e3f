package lifecycle

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing required input: an empty
// name, a reference to an unknown stage, a self-loop connection. It is
// always returned before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a violated uniqueness constraint — a second tool
// with the same name (case-insensitive) under the same stage.
type ConflictError struct {
	StageID string
	Name    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("tool %q already exists for stage %s", e.Name, e.StageID)
}

// NotFoundError reports a targeted lookup or update whose key does not
// exist. Deletes never return it; absence there is an idempotent no-op.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
