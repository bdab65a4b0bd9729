package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific failure class in the auth and chat pipelines.
type ErrorCode string

const (
	// ErrCodeUnsupportedProvider indicates a login attempt against an unknown provider.
	ErrCodeUnsupportedProvider ErrorCode = "UNSUPPORTED_PROVIDER"
	// ErrCodeProfileUnavailable indicates no profile path yielded a subject id.
	ErrCodeProfileUnavailable ErrorCode = "PROFILE_UNAVAILABLE"
	// ErrCodeIncompleteProfile indicates a provider payload without a stable subject id.
	ErrCodeIncompleteProfile ErrorCode = "INCOMPLETE_PROFILE"
	// ErrCodeUnauthenticated indicates an invalid, expired, or mis-scoped session token.
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	// ErrCodeUnknownScenario indicates the requested scenario id is not in the catalog.
	ErrCodeUnknownScenario ErrorCode = "UNKNOWN_SCENARIO"
	// ErrCodeMissingInput indicates a required request field is absent or empty.
	ErrCodeMissingInput ErrorCode = "MISSING_INPUT"
	// ErrCodeUpstreamFailure indicates a provider or completion endpoint failure.
	ErrCodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"
)

// ServiceError is a structured error carrying a code, a message safe to log,
// and an optional cause.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the error code from err, or empty if err is not a ServiceError.
func CodeOf(err error) ErrorCode {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Convenience constructors for common error types.

// UnsupportedProvider creates an unsupported provider error.
func UnsupportedProvider(name string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeUnsupportedProvider,
		Message: fmt.Sprintf("unsupported provider: %s", name),
	}
}

// ProfileUnavailable creates a profile unavailable error.
func ProfileUnavailable(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeProfileUnavailable, Message: msg, Cause: cause}
}

// IncompleteProfile creates an incomplete profile error.
func IncompleteProfile(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeIncompleteProfile, Message: msg}
}

// Unauthenticated creates an unauthenticated error. The message is for
// server-side logs only; callers must never surface it to the client.
func Unauthenticated(msg string) *ServiceError {
	return &ServiceError{Code: ErrCodeUnauthenticated, Message: msg}
}

// UnknownScenario creates an unknown scenario error.
func UnknownScenario(id string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeUnknownScenario,
		Message: fmt.Sprintf("unknown scenario: %s", id),
	}
}

// MissingInput creates a missing input error.
func MissingInput(field string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeMissingInput,
		Message: fmt.Sprintf("missing required field: %s", field),
	}
}

// UpstreamFailure creates an upstream failure error.
func UpstreamFailure(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeUpstreamFailure, Message: msg, Cause: cause}
}
