package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Billing engine errors
	ErrorCodeUnknownCycle           ErrorCode = "CYCLE_UNKNOWN"
	ErrorCodeIncompleteSubscription ErrorCode = "SUBSCRIPTION_INCOMPLETE"
	ErrorCodeInvalidReferenceDate   ErrorCode = "REFERENCE_DATE_INVALID"

	// Lookup errors
	ErrorCodeSubscriptionNotFound ErrorCode = "SUBSCRIPTION_NOT_FOUND"
	ErrorCodeContributionNotFound ErrorCode = "CONTRIBUTION_NOT_FOUND"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeValidationCycleInvalid  ErrorCode = "VALIDATION_CYCLE_INVALID"

	// Internal errors (INTERNAL_*)
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrUnknownCycle) matches any unknown-cycle error regardless
// of message or details.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithDetail returns a copy of the error with a detail field added.
// The package-level sentinels are shared, so they are never mutated.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Err:     e.Err,
		Details: details,
		Code:    e.Code,
		Message: e.Message,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeSubscriptionNotFound ||
		code == ErrorCodeContributionNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeValidationCycleInvalid
}

// InvalidCycleInput reports a cycle supplied by a caller that is not one of
// the known cycles. It still matches ErrUnknownCycle under errors.Is, but
// classifies as a validation error rather than an engine error.
func InvalidCycleInput(value string) *DomainError {
	return WrapError(ErrorCodeValidationCycleInvalid, "invalid billing cycle",
		ErrUnknownCycle.WithDetail("cycle", value)).WithDetail("cycle", value)
}

// IsEngineError checks if an error was raised by the billing engine's own input checks
func IsEngineError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeUnknownCycle ||
		code == ErrorCodeIncompleteSubscription ||
		code == ErrorCodeInvalidReferenceDate
}

var (
	ErrUnknownCycle           = NewDomainError(ErrorCodeUnknownCycle, "unknown billing cycle")
	ErrIncompleteSubscription = NewDomainError(ErrorCodeIncompleteSubscription, "subscription is missing price or activation date")
	ErrInvalidReferenceDate   = NewDomainError(ErrorCodeInvalidReferenceDate, "reference date is required")

	ErrSubscriptionNotFound = NewDomainError(ErrorCodeSubscriptionNotFound, "subscription not found")
	ErrContributionNotFound = NewDomainError(ErrorCodeContributionNotFound, "contribution not found")

	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid = NewDomainError(ErrorCodeValidationAmountInvalid, "invalid amount")
	ErrValidationMissingField  = NewDomainError(ErrorCodeValidationMissingField, "required field missing")

	ErrDatabaseError = NewDomainError(ErrorCodeDatabaseError, "database error")
)
