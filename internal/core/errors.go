package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeConnection indicates a network failure or timeout talking to the responder
	ErrorTypeConnection ErrorType = "connection_error"
	// ErrorTypeHTTPStatus indicates the responder answered with a non-2xx status
	ErrorTypeHTTPStatus ErrorType = "http_status_error"
	// ErrorTypeParse indicates a body that is not a valid StatusPayload document
	ErrorTypeParse ErrorType = "parse_error"
	// ErrorTypeMissingField indicates a required payload field is absent
	ErrorTypeMissingField ErrorType = "missing_field_error"
	// ErrorTypeDateParse indicates a date-time string that could not be parsed
	ErrorTypeDateParse ErrorType = "date_parse_error"
	// ErrorTypeInvalidRequest indicates a malformed request to the responder (4xx)
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
)

// ContractError is the base error type for every failure crossing the
// responder/consumer boundary.
type ContractError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
	// Field names the payload field for missing_field_error.
	Field string `json:"field,omitempty"`
	// Timeout is set for connection errors caused by a deadline.
	Timeout bool `json:"-"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *ContractError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Type, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ContractError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the HTTP status code the responder uses for this error.
func (e *ContractError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest, ErrorTypeDateParse:
		if e.StatusCode >= 400 && e.StatusCode < 500 {
			return e.StatusCode
		}
		return http.StatusBadRequest
	case ErrorTypeHTTPStatus:
		if e.StatusCode != 0 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	case ErrorTypeConnection, ErrorTypeParse, ErrorTypeMissingField:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *ContractError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewConnectionError creates a new connection error. Timeouts set Timeout.
func NewConnectionError(message string, timeout bool, err error) *ContractError {
	return &ContractError{
		Type:    ErrorTypeConnection,
		Message: message,
		Timeout: timeout,
		Err:     err,
	}
}

// NewHTTPStatusError creates an error for a non-2xx response.
func NewHTTPStatusError(statusCode int, body []byte) *ContractError {
	message := fmt.Sprintf("unexpected status %d", statusCode)
	if snippet := bodySnippet(body); snippet != "" {
		message += ": " + snippet
	}
	return &ContractError{
		Type:       ErrorTypeHTTPStatus,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewParseError creates an error for a body that is not a valid payload.
func NewParseError(message string, err error) *ContractError {
	return &ContractError{
		Type:    ErrorTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewMissingFieldError creates an error for an absent payload field.
func NewMissingFieldError(field string) *ContractError {
	return &ContractError{
		Type:    ErrorTypeMissingField,
		Message: "required field is missing",
		Field:   field,
	}
}

// NewDateParseError creates an error for an unparsable date-time string.
func NewDateParseError(value string, err error) *ContractError {
	return &ContractError{
		Type:    ErrorTypeDateParse,
		Message: fmt.Sprintf("cannot parse date-time %q", value),
		Err:     err,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string, err error) *ContractError {
	return &ContractError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// ErrorTypeOf returns the ContractError type found in err's chain, or "" if none.
func ErrorTypeOf(err error) ErrorType {
	var contractErr *ContractError
	if errors.As(err, &contractErr) {
		return contractErr.Type
	}
	return ""
}

// IsUnavailable reports whether err means no result could be obtained from the
// responder at all, as opposed to a result that could not be interpreted.
func IsUnavailable(err error) bool {
	switch ErrorTypeOf(err) {
	case ErrorTypeConnection, ErrorTypeHTTPStatus:
		return true
	default:
		return false
	}
}

func bodySnippet(body []byte) string {
	const maxSnippet = 256
	if len(body) > maxSnippet {
		return string(body[:maxSnippet]) + "..."
	}
	return string(body)
}
