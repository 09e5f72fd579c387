package core

import (
	"errors"
)

// ErrValidation is a sentinel error for malformed or missing required input.
// Callers hitting this have a bug on their side - the operation must not be retried.
var ErrValidation = errors.New("validation failed")

// ErrStorage is a sentinel error for failed durable-store operations.
// Retry policy belongs to the caller (e.g. the webhook provider's own backoff).
var ErrStorage = errors.New("storage operation failed")

// IsValidationError checks if an error originated from input validation
func IsValidationError(err error) bool {
	return err != nil && errors.Is(err, ErrValidation)
}

// IsStorageError checks if an error originated from the durable store
func IsStorageError(err error) bool {
	return err != nil && errors.Is(err, ErrStorage)
}
