// Package apperr defines the application error taxonomy shared by the
// service layer and the HTTP boundary. Errors are classified by Kind so
// the boundary can map them to responses without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindStorage covers connection and transaction failures in the store.
	KindStorage Kind = iota
	// KindValidation covers malformed input, with optional per-field detail.
	KindValidation
	// KindSelfMessage rejects a send where sender equals recipient.
	KindSelfMessage
	// KindAuthMissing means no viewer identity was asserted on the request.
	KindAuthMissing
	// KindForbidden means the asserted viewer is not allowed the operation.
	KindForbidden
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
)

// FieldError carries per-field validation detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an application error with a kind, a caller-facing message,
// optional field details and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation error with field-level detail.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// SelfMessage returns the error for a send addressed to the sender.
func SelfMessage() *Error {
	return &Error{Kind: KindSelfMessage, Message: "Cannot send message to yourself"}
}

// AuthMissing returns the error for a request with no asserted identity.
func AuthMissing() *Error {
	return &Error{Kind: KindAuthMissing, Message: "Authentication required"}
}

// Forbidden returns an authorization-denied error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound returns a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Storage wraps a store failure.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "Server error", Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors are
// treated as storage failures, the only unexpected failure mode here.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// FieldsOf extracts field-level detail from an error chain, if any.
func FieldsOf(err error) []FieldError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
