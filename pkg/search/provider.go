// Package search defines the outbound web-search provider interface, the
// Tavily client implementing it, and the normalization step that turns a raw
// provider payload into a structured form.
package search

import (
	"context"
	"encoding/json"
)

// Mode selects how thorough a provider search is.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeAdvanced Mode = "advanced"
)

// ModeForDepth maps a research depth onto a search mode: basic at depth 1,
// advanced beyond.
func ModeForDepth(depth int) Mode {
	if depth > 1 {
		return ModeAdvanced
	}
	return ModeBasic
}

// Options carries per-call search parameters.
type Options struct {
	Mode           Mode
	IncludeAnswer  bool
	MaxTokens      int
	IncludeDomains []string
	ExcludeDomains []string
}

// Provider is the external web-search collaborator. Search returns the raw
// provider payload; callers normalize it with Normalize. Implementations must
// honor ctx cancellation where the underlying transport allows it.
type Provider interface {
	Search(ctx context.Context, query string, opts Options) (json.RawMessage, error)
}
