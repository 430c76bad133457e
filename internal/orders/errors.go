package orders

import "fmt"

// The order workflow reports failures through a closed set of error kinds so
// the HTTP layer can map each one to a status class in a single place.
// Anything outside this set is treated as an internal failure.

// ValidationError marks a caller-fixable request problem: missing fields,
// farmer/product mismatch, insufficient stock, unrecognized status.
type ValidationError struct {
	msg string
}

func validationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

// NotFoundError marks a reference to an entity that does not exist.
type NotFoundError struct {
	msg string
}

func notFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string { return e.msg }

// AuthorizationError marks an actor lacking the owner/admin relationship
// required for the operation.
type AuthorizationError struct {
	msg string
}

func authorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{msg: fmt.Sprintf(format, args...)}
}

func (e *AuthorizationError) Error() string { return e.msg }
