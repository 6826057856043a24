package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	// Authorization failures: the caller lacks the required standing.
	CodeNotRegistered    Code = "not_registered"
	CodeInsufficientRole Code = "insufficient_role"
	CodeNotOwner         Code = "not_owner"

	// Validation failures: malformed batch input.
	CodeLengthMismatch Code = "length_mismatch"
	CodeInvalidRole    Code = "invalid_role"
	CodeBadRequest     Code = "bad_request"
	CodeValidation     Code = "validation_failed"

	// State failures: the operation target is not in the required state.
	CodeNotAStudent      Code = "not_a_student"
	CodeAlreadyCertified Code = "already_certified"
	CodeNotFound         Code = "not_found"

	// CodeTransferRejected marks any attempt to move a badge between
	// identities outside issuance and termination.
	CodeTransferRejected Code = "transfer_rejected"

	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
