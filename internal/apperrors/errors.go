package apperrors

import "fmt"

// ValidationError means the request was rejected before reaching the store.
// Fields, when set, maps offending field names to the failed rule.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.What)
}

// StorageError wraps a failure of the underlying store. Error() is safe to
// show to users; the driver error is only reachable through Unwrap.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
