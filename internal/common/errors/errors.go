// Package errors provides the standardized error taxonomy for the chat pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"
	ErrCodeMethodNotAllowed        ErrorCode = "METHOD_NOT_ALLOWED"

	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"

	ErrCodeMarkerParseFailed ErrorCode = "MARKER_PARSE_FAILED"

	ErrCodePersistenceFailed      ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeQueuePublishFailed     ErrorCode = "QUEUE_PUBLISH_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRequestValidationError is returned before any collaborator is contacted.
func NewRequestValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "Messages required",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewMethodNotAllowedError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   "Method not allowed",
		Details:   fmt.Sprintf("method: %s", method),
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError wraps an upstream generation failure.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Reply generation failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewGenerationTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Reply generation timed out",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMarkerParseError records a marker whose interior was not a JSON object.
func NewMarkerParseError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMarkerParseFailed,
		Message:   "Structured marker could not be parsed",
		Details:   fmt.Sprintf("kind: %s, error: %s", kind, err.Error()),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPersistenceError records a failed best-effort store write.
func NewPersistenceError(record string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Record write failed",
		Details:   fmt.Sprintf("record: %s, error: %s", record, err.Error()),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewQueuePublishError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueuePublishFailed,
		Message:   "Notification event publish failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError is used by the relay. Delivery can be
// attempted again on a later poll, so it is the only retryable code.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError unwraps err looking for a StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HTTPStatus maps an error code onto the status returned to the caller.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeRequestValidationFailed:
		return http.StatusBadRequest
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the only text a caller ever sees for a code.
func PublicMessage(code ErrorCode) string {
	switch code {
	case ErrCodeRequestValidationFailed:
		return "Messages required"
	case ErrCodeMethodNotAllowed:
		return "Method not allowed"
	default:
		return "Internal server error"
	}
}

// IsRetryableErrorCode reports whether a later attempt may succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	return code == ErrCodeNotificationSendFailed
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case strings.HasPrefix(c, "REQUEST_"), code == ErrCodeMethodNotAllowed:
		return "validation"
	case strings.HasPrefix(c, "GENERATION_"):
		return "upstream"
	case strings.HasPrefix(c, "MARKER_"):
		return "extraction"
	case strings.HasPrefix(c, "PERSISTENCE_"), strings.HasPrefix(c, "QUEUE_"):
		return "persistence"
	case strings.HasPrefix(c, "NOTIFICATION_"):
		return "delivery"
	default:
		return "internal"
	}
}
