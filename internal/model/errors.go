package model

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation     ErrorCategory = "validation"     // Malformed input at an entry point
	ErrCatNotFound       ErrorCategory = "not_found"      // Statement or evidence missing
	ErrCatAuthorization  ErrorCategory = "authorization"  // Caller is not creator/admin
	ErrCatClassification ErrorCategory = "classification" // Evidence classifier failed
	ErrCatPartialBatch   ErrorCategory = "partial_batch"  // Some options in a batch failed
	ErrCatStore          ErrorCategory = "store"          // Persistence failure
)

// DomainError represents a structured error from the scoring core.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on category alone so that callers can test
// errors.Is(err, model.ErrNotFound) regardless of code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && (t.Code == "" || e.Code == t.Code)
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// Category sentinels for errors.Is checks.
var (
	ErrValidation     = &DomainError{Category: ErrCatValidation}
	ErrNotFound       = &DomainError{Category: ErrCatNotFound}
	ErrAuthorization  = &DomainError{Category: ErrCatAuthorization}
	ErrClassification = &DomainError{Category: ErrCatClassification}
	ErrStore          = &DomainError{Category: ErrCatStore}
)

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Category: ErrCatValidation, Code: code, Message: message}
}

// NewNotFoundError creates a not-found error for the given kind and id.
func NewNotFoundError(kind, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s %q not found", kind, id),
	}
}

// NewAuthorizationError creates an authorization error.
func NewAuthorizationError(callerID, statementID string) *DomainError {
	return &DomainError{
		Category: ErrCatAuthorization,
		Code:     "NOT_CREATOR_OR_ADMIN",
		Message:  fmt.Sprintf("caller %q may not administer statement %q", callerID, statementID),
	}
}

// NewClassificationError creates a classifier failure error.
func NewClassificationError(provider string, cause error) *DomainError {
	return &DomainError{
		Category: ErrCatClassification,
		Code:     "CLASSIFIER_FAILED",
		Message:  fmt.Sprintf("provider %s could not classify evidence", provider),
		Cause:    cause,
	}
}

// NewStoreError wraps a persistence failure.
func NewStoreError(op string, cause error) *DomainError {
	return &DomainError{Category: ErrCatStore, Code: "STORE_FAILED", Message: op, Cause: cause}
}

// CategoryOf returns the category of err, or "" when err is not a DomainError.
func CategoryOf(err error) ErrorCategory {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category
	}
	return ""
}
