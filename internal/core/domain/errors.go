// Package domain defines the core domain models for CartVault.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "CV-CART-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Cart Errors (CART)
// ============================================================================

var (
	// ErrCartNotFound indicates the cart is missing or already expired.
	// Expiry is deterministic: an expired cart is indistinguishable from
	// one that never existed.
	ErrCartNotFound = NewDomainError("CV-CART-4040", "cart not found")

	// ErrLineNotFound indicates the targeted cart line does not exist.
	ErrLineNotFound = NewDomainError("CV-CART-4041", "cart line not found")

	// ErrCartValidation indicates cart data validation failed.
	ErrCartValidation = NewDomainError("CV-CART-4001", "cart validation failed")
)

// ============================================================================
// Recovery Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenMalformed indicates the token format is invalid.
	ErrTokenMalformed = NewDomainError("CV-TOKN-4000", "malformed recovery token")

	// ErrTokenSignatureInvalid indicates the token signature does not verify.
	ErrTokenSignatureInvalid = NewDomainError("CV-TOKN-4010", "recovery token signature invalid")

	// ErrTokenPayloadInvalid indicates the token payload cannot be decoded
	// or has the wrong structure.
	ErrTokenPayloadInvalid = NewDomainError("CV-TOKN-4020", "recovery token payload invalid")

	// ErrTokenExpired indicates the token aged out or is future-dated.
	ErrTokenExpired = NewDomainError("CV-TOKN-4011", "recovery token expired")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("CV-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("CV-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("CV-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("CV-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("CV-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("CV-ARG-1002", "missing required argument")
)
