package errtrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// ErrorResponse is the structured envelope every failure is converted to
// before it crosses the module boundary. The HTTP layer serves it verbatim.
type ErrorResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	ErrorCode string         `json:"error_code"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// FormatError converts any error into an ErrorResponse. The formatting step
// is fail-safe: details that cannot be serialized degrade to a fixed
// SERIALIZATION_ERROR envelope, and a panic anywhere in here degrades to a
// minimal CRITICAL_ERROR envelope rather than throwing.
func FormatError(err error) (resp ErrorResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = ErrorResponse{
				Status:    "error",
				Message:   "Critical error in error handling",
				ErrorCode: "CRITICAL_ERROR",
				Timestamp: time.Now().UTC(),
			}
		}
	}()

	var classified Classified
	if errors.As(err, &classified) {
		resp = ErrorResponse{
			Status:    "error",
			Message:   classified.Error(),
			ErrorCode: classified.ErrorCode(),
			Details:   classified.ErrorDetails(),
			Timestamp: classified.OccurredAt(),
		}
	} else {
		resp = ErrorResponse{
			Status:    "error",
			Message:   err.Error(),
			ErrorCode: "UNKNOWN_ERROR",
			Details: map[string]any{
				"type":  fmt.Sprintf("%T", err),
				"stack": string(debug.Stack()),
			},
			Timestamp: time.Now().UTC(),
		}
	}

	if _, merr := json.Marshal(resp); merr != nil {
		resp = ErrorResponse{
			Status:    "error",
			Message:   "Internal server error - response not serializable",
			ErrorCode: "SERIALIZATION_ERROR",
			Details: map[string]any{
				"original_error":      err.Error(),
				"serialization_error": merr.Error(),
			},
			Timestamp: time.Now().UTC(),
		}
	}

	return resp
}

// Kind returns the taxonomy name for an error, used as the ledger's per-kind
// counter key.
func Kind(err error) string {
	var (
		validation    *ValidationError
		provider      *ProviderError
		serialization *SerializationError
	)
	switch {
	case errors.As(err, &validation):
		return "ValidationError"
	case errors.As(err, &provider):
		return "ProviderError"
	case errors.As(err, &serialization):
		return "SerializationError"
	default:
		return fmt.Sprintf("%T", err)
	}
}
