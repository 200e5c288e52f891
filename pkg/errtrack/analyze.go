package errtrack

import "time"

// KindShare is one entry of the per-kind error distribution.
type KindShare struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Analysis summarizes the ledger: lifetime totals, per-kind distribution, and
// activity within the recent window.
type Analysis struct {
	TotalErrors  int                  `json:"total_errors"`
	LastUpdated  time.Time            `json:"last_updated"`
	Distribution map[string]KindShare `json:"distribution"`
	RecentCount  int                  `json:"recent_count"`
	RecentKinds  map[string]int       `json:"recent_kinds"`
	RecentWindow string               `json:"recent_window"`
}

// recentWindow is the lookback used for the "recent" figures.
const recentWindow = 24 * time.Hour

// Analyze produces a summary of the tracked errors as of now.
func (t *Tracker) Analyze(now time.Time) Analysis {
	stats := t.Snapshot()

	analysis := Analysis{
		TotalErrors:  stats.TotalErrors,
		LastUpdated:  stats.LastUpdated,
		Distribution: make(map[string]KindShare, len(stats.ErrorKinds)),
		RecentKinds:  map[string]int{},
		RecentWindow: recentWindow.String(),
	}

	for kind, count := range stats.ErrorKinds {
		share := KindShare{Count: count}
		if stats.TotalErrors > 0 {
			share.Percent = float64(count) / float64(stats.TotalErrors) * 100
		}
		analysis.Distribution[kind] = share
	}

	cutoff := now.Add(-recentWindow)
	for _, record := range stats.Timeline {
		if record.Timestamp.After(cutoff) {
			analysis.RecentCount++
			analysis.RecentKinds[record.Kind]++
		}
	}

	return analysis
}
