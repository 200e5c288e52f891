package errtrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		depth      int
		wantFields []string
	}{
		{"valid request", "golang concurrency", 3, nil},
		{"valid at depth bounds", "golang", 1, nil},
		{"empty query", "", 3, []string{"query"}},
		{"short query", "ab", 3, []string{"query"}},
		{"whitespace query", "   a   ", 3, []string{"query"}},
		{"depth too low", "golang", 0, []string{"depth"}},
		{"depth too high", "golang", 6, []string{"depth"}},
		{"both invalid", "ab", 9, []string{"query", "depth"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.query, tt.depth)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Fields, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		err := NewValidationError(map[string]string{"query": "too short"})
		resp := FormatError(err)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
		assert.Equal(t, map[string]string{"query": "too short"}, resp.Details["invalid_fields"])
	})

	t.Run("provider error carries status and body", func(t *testing.T) {
		err := ProviderErrorForStatus(422, map[string]any{"error": "bad"})
		resp := FormatError(err)
		assert.Equal(t, "API_422", resp.ErrorCode)
		assert.Equal(t, 422, resp.Details["status_code"])
	})

	t.Run("wrapped classified error still classified", func(t *testing.T) {
		err := fmt.Errorf("stage normalize: %w", ProviderErrorForStatus(404, nil))
		resp := FormatError(err)
		assert.Equal(t, "API_404", resp.ErrorCode)
	})

	t.Run("unknown error gets type and stack", func(t *testing.T) {
		resp := FormatError(errors.New("boom"))
		assert.Equal(t, "UNKNOWN_ERROR", resp.ErrorCode)
		assert.Equal(t, "boom", resp.Message)
		assert.Contains(t, resp.Details, "type")
		assert.Contains(t, resp.Details, "stack")
	})

	t.Run("unserializable details degrade safely", func(t *testing.T) {
		err := NewProviderError("bad payload", 500, map[string]any{"ch": make(chan int)})
		resp := FormatError(err)
		assert.Equal(t, "SERIALIZATION_ERROR", resp.ErrorCode)
		_, merr := json.Marshal(resp)
		assert.NoError(t, merr)
	})
}

func TestKind(t *testing.T) {
	assert.Equal(t, "ValidationError", Kind(NewValidationError(nil)))
	assert.Equal(t, "ProviderError", Kind(ProviderErrorForStatus(404, nil)))
	assert.Equal(t, "SerializationError", Kind(NewSerializationError("x", nil)))
	assert.Equal(t, "ProviderError", Kind(fmt.Errorf("wrapped: %w", ProviderErrorForStatus(500, nil))))
	assert.Equal(t, "*errors.errorString", Kind(errors.New("plain")))
}

func TestTrackerTimelineCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_statistics.json")
	tracker := NewTracker(path, nil)

	for i := 0; i < 150; i++ {
		tracker.Track(fmt.Errorf("failure %d", i), map[string]any{"i": i})
	}

	stats := tracker.Snapshot()
	assert.Equal(t, 150, stats.TotalErrors)
	require.Len(t, stats.Timeline, TimelineCap)
	// The 100 most recent survive: failures 50..149.
	assert.Equal(t, "failure 50", stats.Timeline[0].Message)
	assert.Equal(t, "failure 149", stats.Timeline[len(stats.Timeline)-1].Message)
}

func TestTrackerLifetimeCounters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_statistics.json")
	tracker := NewTracker(path, nil)

	tracker.Track(NewValidationError(map[string]string{"query": "bad"}), nil)
	tracker.Track(ProviderErrorForStatus(404, nil), nil)
	tracker.Track(ProviderErrorForStatus(500, nil), nil)

	stats := tracker.Snapshot()
	assert.Equal(t, 3, stats.TotalErrors)
	assert.Equal(t, 1, stats.ErrorKinds["ValidationError"])
	assert.Equal(t, 2, stats.ErrorKinds["ProviderError"])
}

func TestTrackerPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_statistics.json")

	tracker := NewTracker(path, nil)
	tracker.Track(ProviderErrorForStatus(429, nil), map[string]any{"query": "q"})

	// A fresh tracker on the same file sees the persisted statistics.
	reloaded := NewTracker(path, nil)
	stats := reloaded.Snapshot()
	assert.Equal(t, 1, stats.TotalErrors)
	require.Len(t, stats.Timeline, 1)
	assert.Equal(t, "ProviderError", stats.Timeline[0].Kind)
}

func TestTrackerCorruptFileReinitializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_statistics.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	tracker := NewTracker(path, nil)
	stats := tracker.Snapshot()
	assert.Equal(t, 0, stats.TotalErrors)
	assert.Empty(t, stats.Timeline)
}

func TestTrackerPersistFailureDoesNotRaise(t *testing.T) {
	// Point the tracker at a directory so the write fails.
	dir := t.TempDir()
	tracker := NewTracker(dir, nil)

	assert.NotPanics(t, func() {
		tracker.Track(errors.New("boom"), nil)
	})
	assert.Equal(t, 1, tracker.Snapshot().TotalErrors)
}

func TestAnalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_statistics.json")
	tracker := NewTracker(path, nil)

	tracker.Track(ProviderErrorForStatus(404, nil), nil)
	tracker.Track(ProviderErrorForStatus(404, nil), nil)
	tracker.Track(NewValidationError(map[string]string{"depth": "bad"}), nil)

	analysis := tracker.Analyze(time.Now().UTC())
	assert.Equal(t, 3, analysis.TotalErrors)
	assert.Equal(t, 3, analysis.RecentCount)
	assert.InDelta(t, 66.6, analysis.Distribution["ProviderError"].Percent, 0.1)
	assert.Equal(t, 2, analysis.RecentKinds["ProviderError"])

	// Nothing is recent when analyzed far in the future.
	later := tracker.Analyze(time.Now().UTC().Add(48 * time.Hour))
	assert.Equal(t, 0, later.RecentCount)
	assert.Equal(t, 3, later.TotalErrors)
}
