package inquiro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/inquiro/pkg/errtrack"
	"github.com/soundprediction/inquiro/pkg/search"
	"github.com/soundprediction/inquiro/pkg/types"
)

// stubProvider returns canned payloads and records call concurrency.
type stubProvider struct {
	payload json.RawMessage
	err     error
	delay   time.Duration

	calls      atomic.Int64
	inFlight   atomic.Int64
	peakMu     sync.Mutex
	peakActive int64
}

func (s *stubProvider) Search(ctx context.Context, query string, opts search.Options) (json.RawMessage, error) {
	s.calls.Add(1)
	active := s.inFlight.Add(1)
	s.peakMu.Lock()
	if active > s.peakActive {
		s.peakActive = active
	}
	s.peakMu.Unlock()
	defer s.inFlight.Add(-1)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func (s *stubProvider) peak() int64 {
	s.peakMu.Lock()
	defer s.peakMu.Unlock()
	return s.peakActive
}

func payloadWithResults(n int) json.RawMessage {
	results := make([]map[string]any, n)
	for i := range results {
		results[i] = map[string]any{
			"title":   fmt.Sprintf("Result %d", i),
			"url":     fmt.Sprintf("https://example.com/%d", i),
			"content": fmt.Sprintf("content about topic number %d with several interesting keywords", i),
		}
	}
	raw, _ := json.Marshal(map[string]any{
		"answer":  "a short answer",
		"results": results,
	})
	return raw
}

func newTestAgent(t *testing.T, provider search.Provider, cfg AgentConfig) *Agent {
	t.Helper()
	tracker := errtrack.NewTracker(filepath.Join(t.TempDir(), "error_stats.json"), nil)
	return NewAgent(provider, tracker, cfg, nil)
}

func TestSearchAndAnalyzeSuccess(t *testing.T) {
	provider := &stubProvider{payload: payloadWithResults(3)}
	agent := newTestAgent(t, provider, AgentConfig{})

	report, err := agent.SearchAndAnalyze(context.Background(), "golang concurrency", 2)
	require.NoError(t, err)

	assert.Equal(t, "success", report.Status)
	assert.Equal(t, "golang concurrency", report.Query)
	assert.Equal(t, 2, report.Depth)
	assert.Equal(t, "a short answer", report.Answer)
	assert.Len(t, report.Sources, 3)
	assert.Equal(t, 3, report.Metadata.TotalSources)
	assert.Equal(t, 3, report.Metadata.ProcessedSources)
	require.NotNil(t, report.KnowledgeGraph)
	assert.Equal(t, len(report.KnowledgeGraph.Nodes), report.Metadata.GraphNodes)
	assert.Equal(t, len(report.KnowledgeGraph.Edges), report.Metadata.GraphEdges)
	assert.NotEmpty(t, report.KnowledgeGraph.Nodes)
}

func TestSearchAndAnalyzeValidation(t *testing.T) {
	provider := &stubProvider{payload: payloadWithResults(1)}
	agent := newTestAgent(t, provider, AgentConfig{})

	_, err := agent.SearchAndAnalyze(context.Background(), "ab", 9)
	require.Error(t, err)

	var verr *errtrack.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "query")
	assert.Contains(t, verr.Fields, "depth")

	// The provider is never reached on invalid input.
	assert.EqualValues(t, 0, provider.calls.Load())

	stats := agent.ErrorStats()
	assert.Equal(t, 1, stats.TotalErrors)
	assert.Equal(t, 1, stats.ErrorKinds["ValidationError"])
}

func TestSearchAndAnalyzeCacheHit(t *testing.T) {
	provider := &stubProvider{payload: payloadWithResults(2)}
	agent := newTestAgent(t, provider, AgentConfig{})
	ctx := context.Background()

	first, err := agent.SearchAndAnalyze(ctx, "repeat query", 1)
	require.NoError(t, err)

	second, err := agent.SearchAndAnalyze(ctx, "repeat query", 1)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, provider.calls.Load())

	// A different depth is a different cache entry.
	_, err = agent.SearchAndAnalyze(ctx, "repeat query", 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, provider.calls.Load())
	assert.Equal(t, 2, agent.CacheSize())
}

func TestSearchAndAnalyzeProviderFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		provider   *stubProvider
		wantStatus int
	}{
		{
			name:       "transport error",
			provider:   &stubProvider{err: errors.New("connection refused")},
			wantStatus: 503,
		},
		{
			name:       "malformed payload",
			provider:   &stubProvider{payload: json.RawMessage(`null`)},
			wantStatus: 500,
		},
		{
			name:       "provider error field",
			provider:   &stubProvider{payload: json.RawMessage(`{"error": "invalid request"}`)},
			wantStatus: 422,
		},
		{
			name:       "no results",
			provider:   &stubProvider{payload: json.RawMessage(`{"results": []}`)},
			wantStatus: 404,
		},
		{
			name:       "only non-object results",
			provider:   &stubProvider{payload: json.RawMessage(`{"results": [42, null, "text"]}`)},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := newTestAgent(t, tt.provider, AgentConfig{})
			_, err := agent.SearchAndAnalyze(ctx, "failing query", 1)
			require.Error(t, err)

			var perr *errtrack.ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantStatus, perr.StatusCode)

			stats := agent.ErrorStats()
			assert.Equal(t, 1, stats.TotalErrors)
			assert.Equal(t, 1, stats.ErrorKinds["ProviderError"])
		})
	}
}

func TestSearchAndAnalyzeSkipsNonObjectResults(t *testing.T) {
	payload := json.RawMessage(`{
		"results": [
			{"title": "Good", "url": "https://good.example", "content": "useful material about testing"},
			"not an object",
			{"title": "Also good", "url": "https://also.example", "content": "more useful material"}
		]
	}`)
	agent := newTestAgent(t, &stubProvider{payload: payload}, AgentConfig{})

	report, err := agent.SearchAndAnalyze(context.Background(), "partial results", 1)
	require.NoError(t, err)

	require.Len(t, report.Sources, 2)
	assert.Equal(t, "Good", report.Sources[0].Title)
	assert.Equal(t, "Also good", report.Sources[1].Title)
}

func TestSearchAndAnalyzeDefaultsEmptyObjectResult(t *testing.T) {
	agent := newTestAgent(t, &stubProvider{payload: json.RawMessage(`{"results": [{}]}`)}, AgentConfig{})

	report, err := agent.SearchAndAnalyze(context.Background(), "sparse results", 1)
	require.NoError(t, err)

	require.Len(t, report.Sources, 1)
	assert.Equal(t, types.DefaultTitle, report.Sources[0].Title)
	assert.Equal(t, types.DefaultContent, report.Sources[0].Content)
	assert.Equal(t, types.ContentTypeUnknown, report.Sources[0].ContentType)
	assert.Equal(t, 1, report.Metadata.TotalSources)
}

func TestSearchAndAnalyzeTruncatesSources(t *testing.T) {
	agent := newTestAgent(t, &stubProvider{payload: payloadWithResults(8)}, AgentConfig{MaxURLs: 3})

	report, err := agent.SearchAndAnalyze(context.Background(), "many results", 1)
	require.NoError(t, err)

	assert.Len(t, report.Sources, 3)
	assert.Equal(t, 8, report.Metadata.TotalSources)
	assert.Equal(t, 3, report.Metadata.ProcessedSources)
}

func TestSearchAndAnalyzeBoundsConcurrency(t *testing.T) {
	provider := &stubProvider{payload: payloadWithResults(1), delay: 20 * time.Millisecond}
	agent := newTestAgent(t, provider, AgentConfig{RateLimit: 5})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := agent.SearchAndAnalyze(ctx, fmt.Sprintf("distinct query %d", i), 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, provider.peak(), int64(5))
	assert.EqualValues(t, 20, provider.calls.Load())
}

// panickyProvider panics on every call.
type panickyProvider struct{}

func (panickyProvider) Search(ctx context.Context, query string, opts search.Options) (json.RawMessage, error) {
	panic("provider blew up")
}

func TestSearchAndAnalyzeReleasesSlotOnProviderPanic(t *testing.T) {
	agent := newTestAgent(t, panickyProvider{}, AgentConfig{RateLimit: 1})

	func() {
		defer func() { require.NotNil(t, recover()) }()
		_, _ = agent.SearchAndAnalyze(context.Background(), "panicking query", 1)
	}()

	// The single slot must be free again after the panic unwinds.
	assert.Equal(t, 0, agent.limiter.InUse())
}

func TestSearchAndAnalyzeContextCancellation(t *testing.T) {
	provider := &stubProvider{payload: payloadWithResults(1), delay: time.Second}
	agent := newTestAgent(t, provider, AgentConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := agent.SearchAndAnalyze(ctx, "slow query", 1)
	require.Error(t, err)
}

func TestErrorAnalysis(t *testing.T) {
	provider := &stubProvider{payload: json.RawMessage(`{"error": "boom"}`)}
	agent := newTestAgent(t, provider, AgentConfig{})

	_, err := agent.SearchAndAnalyze(context.Background(), "doomed query", 1)
	require.Error(t, err)

	analysis := agent.ErrorAnalysis()
	assert.Equal(t, 1, analysis.TotalErrors)
	assert.Equal(t, 1, analysis.RecentCount)
	share, ok := analysis.Distribution["ProviderError"]
	require.True(t, ok)
	assert.InDelta(t, 100.0, share.Percent, 0.01)
}
