package inquiro

import (
	"context"

	"github.com/soundprediction/inquiro/pkg/errtrack"
	"github.com/soundprediction/inquiro/pkg/types"
)

// This file defines focused interfaces so consumers can depend on the
// smallest surface that meets their needs.

// Researcher runs the research pipeline for a single query.
type Researcher interface {
	// SearchAndAnalyze resolves a query at the given depth into a research
	// report. Errors implement errtrack.Classified where the failure is
	// attributable.
	SearchAndAnalyze(ctx context.Context, query string, depth int) (*types.ResearchReport, error)
}

// ErrorReporter exposes the accumulated error ledger.
type ErrorReporter interface {
	// ErrorStats returns a snapshot of the tracked error statistics.
	ErrorStats() errtrack.Stats

	// ErrorAnalysis summarizes the ledger: per-kind shares and the recent
	// failure window.
	ErrorAnalysis() errtrack.Analysis
}

// Ensure Agent satisfies the focused interfaces.
var _ interface {
	Researcher
	ErrorReporter
} = (*Agent)(nil)
