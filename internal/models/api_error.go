package models

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies an ApiError. The same taxonomy is used by every
// directory adapter so callers can handle failures uniformly regardless of
// which adapter produced them.
type ErrorKind string

const (
	KindInvalidArgument  ErrorKind = "INVALID_ARGUMENT"
	KindValidationFailed ErrorKind = "VALIDATION_FAILED"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindConflict         ErrorKind = "CONFLICT"
	KindUnavailable      ErrorKind = "UNAVAILABLE"
	KindTimeout          ErrorKind = "TIMEOUT"
	KindUnknown          ErrorKind = "UNKNOWN"
)

// ApiError is the single error shape surfaced by all directory operations
// and written on the wire by the HTTP server.
type ApiError struct {
	Kind       ErrorKind `json:"error"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path,omitempty"`
}

func (e *ApiError) Error() string {
	if e.Details != "" {
		return string(e.Kind) + ": " + e.Message + " (" + e.Details + ")"
	}
	return string(e.Kind) + ": " + e.Message
}

func newAPIError(kind ErrorKind, message, details string) *ApiError {
	return &ApiError{
		Kind:       kind,
		StatusCode: kindStatus(kind),
		Message:    message,
		Details:    details,
		Timestamp:  time.Now(),
	}
}

// ErrInvalidArgument reports a structurally invalid caller parameter
// (page < 1, id < 1, malformed id).
func ErrInvalidArgument(message string) *ApiError {
	return newAPIError(KindInvalidArgument, message, "")
}

// ErrValidationFailed reports one or more violated field rules. All
// violations are joined into the message, not just the first.
func ErrValidationFailed(violations []string) *ApiError {
	return newAPIError(KindValidationFailed, strings.Join(violations, "; "), "")
}

// ErrNotFound reports that the referenced product does not exist.
func ErrNotFound(message string) *ApiError {
	return newAPIError(KindNotFound, message, "")
}

// ErrUnavailable reports that the backend could not be reached or answered
// with a server error.
func ErrUnavailable(message, details string) *ApiError {
	return newAPIError(KindUnavailable, message, details)
}

// ErrTimeout reports that an operation exceeded its time budget.
func ErrTimeout(message string) *ApiError {
	return newAPIError(KindTimeout, message, "")
}

// ErrUnknown wraps an unclassified failure, preserving the original
// status/message in the details for diagnostics.
func ErrUnknown(message, details string) *ApiError {
	return newAPIError(KindUnknown, message, details)
}

// kindStatus maps the taxonomy onto HTTP status codes.
func kindStatus(kind ErrorKind) int {
	switch kind {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindValidationFailed:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// KindFromStatus normalizes a transport status code into the taxonomy. It
// is the inverse of kindStatus, with every unmapped status collapsing to
// UNKNOWN and all remaining 5xx to UNAVAILABLE.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return KindInvalidArgument
	case status == http.StatusUnprocessableEntity:
		return KindValidationFailed
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// FromStatus builds an ApiError out of a raw transport status and message.
func FromStatus(status int, message, details string) *ApiError {
	kind := KindFromStatus(status)
	e := newAPIError(kind, message, details)
	e.StatusCode = status
	return e
}

// AsApiError extracts the ApiError from err, wrapping foreign errors as
// UNKNOWN so callers always observe the taxonomy.
func AsApiError(err error) *ApiError {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrUnknown("unexpected error", err.Error())
}
