// Package dto defines the request and response bodies of the HTTP API.
package dto

import (
	"github.com/soundprediction/inquiro/pkg/types"
)

// DefaultDepth is applied when a research request omits the depth field.
const DefaultDepth = 3

// ResearchRequest is the body of POST /api/research.
type ResearchRequest struct {
	Query string `json:"query"`
	Depth *int   `json:"depth,omitempty"`
}

// ResolvedDepth returns the requested depth, or DefaultDepth when omitted.
func (r *ResearchRequest) ResolvedDepth() int {
	if r.Depth == nil {
		return DefaultDepth
	}
	return *r.Depth
}

// ResearchResponse wraps a research report with the ID it was stored under.
type ResearchResponse struct {
	ResearchID string                `json:"research_id"`
	Report     *types.ResearchReport `json:"report"`
}

// SynthesizeRequest is the body of POST /api/synthesize.
type SynthesizeRequest struct {
	ResearchID string `json:"research_id"`
}
