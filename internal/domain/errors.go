package domain

import (
	"errors"
	"net/http"
)

// ErrorKind is the stable, machine-readable error identifier returned to clients.
type ErrorKind string

const (
	KindUnauthenticated      ErrorKind = "unauthenticated"
	KindNotFound             ErrorKind = "not_found"
	KindValidationFailed     ErrorKind = "validation_failed"
	KindConflict             ErrorKind = "conflict"
	KindPayloadTooLarge      ErrorKind = "payload_too_large"
	KindUnsupportedMediaType ErrorKind = "unsupported_media_type"
	KindUpstreamFailure      ErrorKind = "upstream_failure"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
	Kind() ErrorKind
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUpstream        = errors.New("upstream failure")

	// ErrHierarchyCycle is returned when a parent chain revisits a folder
	// or runs deeper than the configured maximum.
	ErrHierarchyCycle = errors.New("folder hierarchy is corrupted")
)

// AuthFailureReason distinguishes why a credential was rejected.
// The HTTP layer collapses all of them to 401, but logs keep the reason.
type AuthFailureReason string

const (
	AuthReasonMissing       AuthFailureReason = "missing"
	AuthReasonMalformed     AuthFailureReason = "malformed"
	AuthReasonExpired       AuthFailureReason = "expired"
	AuthReasonUnknownSigner AuthFailureReason = "unknown_signer"
	AuthReasonInvalidClaims AuthFailureReason = "invalid_claims"
)

// Domain error types implementing HTTPError interface
type (
	// UnauthenticatedError indicates a missing or unusable credential
	UnauthenticatedError struct {
		Reason  AuthFailureReason
		Message string
	}

	// NotFoundError indicates a resource was not found or is not visible to the caller
	NotFoundError struct {
		Message      string
		ResourceType string
		ResourceID   string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// PayloadTooLargeError indicates an upload above the configured ceiling
	PayloadTooLargeError struct {
		Message  string
		MaxBytes int64
	}

	// UnsupportedMediaTypeError indicates an upload whose type is not allow-listed
	UnsupportedMediaTypeError struct {
		Message     string
		ContentType string
	}

	// UpstreamError wraps a failure of the entity store or object storage.
	// Message is safe to return; Err is only logged.
	UpstreamError struct {
		Op  string
		Err error
	}
)

func (e *UnauthenticatedError) Error() string      { return e.Message }
func (e *NotFoundError) Error() string             { return e.Message }
func (e *ValidationError) Error() string           { return e.Message }
func (e *PayloadTooLargeError) Error() string      { return e.Message }
func (e *UnsupportedMediaTypeError) Error() string { return e.Message }
func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *UnauthenticatedError) StatusCode() int      { return http.StatusUnauthorized }
func (e *NotFoundError) StatusCode() int             { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int           { return http.StatusBadRequest }
func (e *PayloadTooLargeError) StatusCode() int      { return http.StatusRequestEntityTooLarge }
func (e *UnsupportedMediaTypeError) StatusCode() int { return http.StatusUnsupportedMediaType }
func (e *UpstreamError) StatusCode() int             { return http.StatusInternalServerError }

func (e *UnauthenticatedError) Kind() ErrorKind      { return KindUnauthenticated }
func (e *NotFoundError) Kind() ErrorKind             { return KindNotFound }
func (e *ValidationError) Kind() ErrorKind           { return KindValidationFailed }
func (e *PayloadTooLargeError) Kind() ErrorKind      { return KindPayloadTooLarge }
func (e *UnsupportedMediaTypeError) Kind() ErrorKind { return KindUnsupportedMediaType }
func (e *UpstreamError) Kind() ErrorKind             { return KindUpstreamFailure }

// Is allows errors.Is() to match the typed errors against their sentinels
func (e *UnauthenticatedError) Is(target error) bool { return target == ErrUnauthenticated }
func (e *NotFoundError) Is(target error) bool        { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool      { return target == ErrValidation }
func (e *PayloadTooLargeError) Is(target error) bool { return target == ErrValidation }
func (e *UnsupportedMediaTypeError) Is(target error) bool {
	return target == ErrValidation
}
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (data_room, folder, file)
	ResourceID   string // ID of the existing/conflicting resource, empty if unknown
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Kind implements the HTTPError interface
func (e *ConflictError) Kind() ErrorKind {
	return KindConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewNotFound builds the error returned for both missing and not-owned resources.
func NewNotFound(resourceType, id string) *NotFoundError {
	return &NotFoundError{
		Message:      resourceType + " not found",
		ResourceType: resourceType,
		ResourceID:   id,
	}
}

// NewUpstream wraps a store or storage failure.
func NewUpstream(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

// KindOf returns the client-facing kind for any error.
// Unknown errors map to upstream_failure.
func KindOf(err error) ErrorKind {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind()
	}
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidationFailed
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindUpstreamFailure
	}
}
