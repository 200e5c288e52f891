package errtrack

import "strings"

// Depth bounds for a research request.
const (
	MinDepth = 1
	MaxDepth = 5
)

// MinQueryLength is the minimum trimmed query length.
const MinQueryLength = 3

// ValidateRequest checks a research query and depth. It returns a
// *ValidationError naming every offending field, or nil when the request is
// acceptable.
func ValidateRequest(query string, depth int) error {
	fields := map[string]string{}

	if query == "" {
		fields["query"] = "Query must be a non-empty string"
	} else if len(strings.TrimSpace(query)) < MinQueryLength {
		fields["query"] = "Query must be at least 3 characters long"
	}

	if depth < MinDepth || depth > MaxDepth {
		fields["depth"] = "Depth must be between 1 and 5"
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}
