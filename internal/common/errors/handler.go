// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns pipeline errors into the JSON error body returned to
// the browser widget. Details are logged, never written to the response.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WriteHTTPError normalizes err, logs it and writes {"error": "..."}.
func (h *ErrorHandler) WriteHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(r, stdErr, status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": PublicMessage(stdErr.Code),
	})
}

func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"status":        status,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if r != nil {
		fields["method"] = r.Method
		fields["path"] = r.URL.Path
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if status < http.StatusInternalServerError {
		h.logger.Warn("request rejected", fields)
		return
	}
	h.logger.Error("request failed", fields)
}
