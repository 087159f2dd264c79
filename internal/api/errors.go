//
//
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wlan-control/wland/internal/adapter"
	"github.com/wlan-control/wland/internal/monitor"
)

// APIError represents an API-layer error with HTTP status code.
type APIError struct {
	Code       string
	Message    string
	Details    interface{}
	StatusCode int
}

// NewAPIError creates a new API error.
func NewAPIError(code string, message string, statusCode int, details interface{}) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: statusCode,
	}
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ToAPIError converts an error to an HTTP status code and JSON body.
func ToAPIError(err error) (int, []byte) {
	if err == nil {
		return http.StatusOK, nil
	}

	var apiErr *APIError
	var driverErr *adapter.DriverError

	// Already an API error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, marshalErrorResponse(apiErr.Code, apiErr.Message, apiErr.Details)
	}

	// Driver error from an adapter
	if errors.As(err, &driverErr) {
		code, statusCode := mapAdapterError(driverErr.Code)
		return statusCode, marshalErrorResponse(code, getErrorMessage(driverErr.Code, driverErr.Original), driverErr.Details)
	}

	// Bare adapter sentinels
	if errors.Is(err, adapter.ErrNotConnected) {
		return http.StatusConflict, marshalErrorResponse("NOT_CONNECTED", getErrorMessage(adapter.ErrNotConnected, err), nil)
	}
	if errors.Is(err, adapter.ErrBusy) {
		return http.StatusServiceUnavailable, marshalErrorResponse("BUSY", getErrorMessage(adapter.ErrBusy, err), nil)
	}
	if errors.Is(err, adapter.ErrUnavailable) {
		return http.StatusServiceUnavailable, marshalErrorResponse("UNAVAILABLE", getErrorMessage(adapter.ErrUnavailable, err), nil)
	}
	if errors.Is(err, adapter.ErrInternal) {
		return http.StatusInternalServerError, marshalErrorResponse("INTERNAL", getErrorMessage(adapter.ErrInternal, err), nil)
	}

	// Monitor-layer errors
	if errors.Is(err, monitor.ErrInvalidParameter) {
		return http.StatusBadRequest, marshalErrorResponse("BAD_REQUEST", "Malformed or missing required parameter", nil)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError, marshalErrorResponse("INTERNAL", "Internal server error", map[string]interface{}{
		"original": err.Error(),
	})
}

// mapAdapterError maps adapter error codes to API error codes and HTTP status codes.
func mapAdapterError(adapterErr error) (string, int) {
	switch {
	case errors.Is(adapterErr, adapter.ErrNotConnected):
		return "NOT_CONNECTED", http.StatusConflict
	case errors.Is(adapterErr, adapter.ErrBusy):
		return "BUSY", http.StatusServiceUnavailable
	case errors.Is(adapterErr, adapter.ErrUnavailable):
		return "UNAVAILABLE", http.StatusServiceUnavailable
	default:
		return "INTERNAL", http.StatusInternalServerError
	}
}

// getErrorMessage returns a user-facing message for the given error code.
func getErrorMessage(code error, original error) string {
	switch {
	case errors.Is(code, adapter.ErrNotConnected):
		return "No association to act on"
	case errors.Is(code, adapter.ErrBusy):
		return "Driver is busy, please retry with backoff"
	case errors.Is(code, adapter.ErrUnavailable):
		return "Driver is temporarily unavailable"
	case errors.Is(code, adapter.ErrInternal):
		return "Internal driver error"
	default:
		if original != nil {
			return original.Error()
		}
		return "Unknown error"
	}
}

// marshalErrorResponse creates a JSON error response with correlation ID.
func marshalErrorResponse(code, message string, details interface{}) []byte {
	response := ErrorResponse(code, message, details)

	jsonBytes, err := json.Marshal(response)
	if err != nil {
		fallback := ErrorResponse("INTERNAL", "Failed to marshal error response", nil)
		jsonBytes, _ = json.Marshal(fallback)
	}

	return jsonBytes
}

// writeMappedError writes the ToAPIError translation of err.
func writeMappedError(w http.ResponseWriter, err error) {
	status, body := ToAPIError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
