// Package apierror defines the error shape that crosses the HTTP boundary.
package apierror

import (
	"fmt"
	"net/http"
)

// APIError carries a stable machine code, a human message, and the HTTP
// status to respond with. Details optionally names the offending field.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Validation builds the 400 rejection used for malformed request fields.
// The field name goes in Details so clients can highlight the right input.
func Validation(message string, field string) *APIError {
	return New("VALIDATION_ERROR", message, field, http.StatusBadRequest)
}
