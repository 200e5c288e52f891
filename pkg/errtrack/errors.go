// Package errtrack provides the classified error taxonomy for the research
// pipeline, the structured error envelope returned to clients, and a bounded
// ledger of tracked errors persisted to disk.
package errtrack

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Classified is implemented by errors that carry a structured error code and
// diagnostic details. Anything else is formatted as an unknown error.
type Classified interface {
	error
	ErrorCode() string
	ErrorDetails() map[string]any
	OccurredAt() time.Time
}

// ValidationError reports bad request input. It carries a reason per
// offending field so a caller can highlight several at once.
type ValidationError struct {
	Message   string
	Fields    map[string]string
	Timestamp time.Time
}

// NewValidationError creates a ValidationError for the given field reasons.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{
		Message:   "Invalid request parameters",
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(names, ", "))
}

func (e *ValidationError) ErrorCode() string { return "VALIDATION_ERROR" }

func (e *ValidationError) ErrorDetails() map[string]any {
	return map[string]any{"invalid_fields": e.Fields}
}

func (e *ValidationError) OccurredAt() time.Time { return e.Timestamp }

// Is supports errors.Is matching against the type.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ProviderError reports a search-provider failure. It carries an HTTP-like
// status code and the raw response body for diagnostics.
type ProviderError struct {
	Message      string
	StatusCode   int
	ResponseBody any
	Timestamp    time.Time
}

// NewProviderError creates a ProviderError with the given status and body.
func NewProviderError(message string, statusCode int, responseBody any) *ProviderError {
	return &ProviderError{
		Message:      "Search provider error: " + message,
		StatusCode:   statusCode,
		ResponseBody: responseBody,
		Timestamp:    time.Now().UTC(),
	}
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) ErrorCode() string { return fmt.Sprintf("API_%d", e.StatusCode) }

func (e *ProviderError) ErrorDetails() map[string]any {
	return map[string]any{
		"status_code":   e.StatusCode,
		"response_body": e.ResponseBody,
	}
}

func (e *ProviderError) OccurredAt() time.Time { return e.Timestamp }

// Is supports errors.Is matching against the type.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)
	return ok
}

// providerStatusMessages maps well-known provider statuses to operator-facing text.
var providerStatusMessages = map[int]string{
	400: "Bad request - check the query parameters",
	401: "Unauthorized - invalid API key",
	403: "Forbidden - check API permissions",
	404: "No results found",
	422: "Unprocessable entity - invalid request format",
	429: "Too many requests - rate limit exceeded",
	500: "Internal error - the provider is experiencing issues",
	503: "Service unavailable - the provider is temporarily down",
}

// ProviderErrorForStatus creates a ProviderError with the canonical message
// for a known status code.
func ProviderErrorForStatus(statusCode int, responseBody any) *ProviderError {
	message, ok := providerStatusMessages[statusCode]
	if !ok {
		message = fmt.Sprintf("Unknown error occurred (status: %d)", statusCode)
	}
	return NewProviderError(message, statusCode, responseBody)
}

// SerializationError reports that a result could not be made transmittable.
// It indicates an internal bug rather than bad input.
type SerializationError struct {
	Message   string
	Cause     error
	Timestamp time.Time
}

// NewSerializationError creates a SerializationError wrapping cause.
func NewSerializationError(message string, cause error) *SerializationError {
	return &SerializationError{
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

func (e *SerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SerializationError) Unwrap() error { return e.Cause }

func (e *SerializationError) ErrorCode() string { return "SERIALIZATION_ERROR" }

func (e *SerializationError) ErrorDetails() map[string]any {
	details := map[string]any{}
	if e.Cause != nil {
		details["cause"] = e.Cause.Error()
	}
	return details
}

func (e *SerializationError) OccurredAt() time.Time { return e.Timestamp }

// Is supports errors.Is matching against the type.
func (e *SerializationError) Is(target error) bool {
	_, ok := target.(*SerializationError)
	return ok
}
