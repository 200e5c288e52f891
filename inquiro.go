package inquiro

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/soundprediction/inquiro/pkg/cache"
	"github.com/soundprediction/inquiro/pkg/errtrack"
	"github.com/soundprediction/inquiro/pkg/graph"
	"github.com/soundprediction/inquiro/pkg/ratelimit"
	"github.com/soundprediction/inquiro/pkg/search"
	"github.com/soundprediction/inquiro/pkg/types"
)

// Defaults applied when AgentConfig leaves a knob zero.
const (
	DefaultMaxURLs         = 5
	DefaultCacheExpiry     = 60 * time.Minute
	DefaultMaxAnswerTokens = 8000
)

// AgentConfig holds configuration for the research agent.
type AgentConfig struct {
	// MaxURLs caps how many sources a report carries. Zero means DefaultMaxURLs.
	MaxURLs int
	// RateLimit bounds concurrent provider calls. Zero means the package default.
	RateLimit int
	// CacheExpiry is the configured report lifetime carried by the cache.
	CacheExpiry time.Duration
	// MaxAnswerTokens is forwarded to the provider when requesting an inline answer.
	MaxAnswerTokens int
}

// Agent is the main implementation of the Researcher interface. It owns the
// report cache, the provider concurrency gate, and the graph builder, and
// records every pipeline failure in the error tracker.
type Agent struct {
	provider        search.Provider
	tracker         *errtrack.Tracker
	cache           *cache.Store
	limiter         *ratelimit.Limiter
	builder         *graph.Builder
	logger          *slog.Logger
	maxURLs         int
	answerMaxTokens int
}

// NewAgent creates a research agent around a search provider and an error
// tracker.
func NewAgent(provider search.Provider, tracker *errtrack.Tracker, cfg AgentConfig, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	maxURLs := cfg.MaxURLs
	if maxURLs <= 0 {
		maxURLs = DefaultMaxURLs
	}
	expiry := cfg.CacheExpiry
	if expiry <= 0 {
		expiry = DefaultCacheExpiry
	}
	answerTokens := cfg.MaxAnswerTokens
	if answerTokens <= 0 {
		answerTokens = DefaultMaxAnswerTokens
	}

	return &Agent{
		provider:        provider,
		tracker:         tracker,
		cache:           cache.New(expiry),
		limiter:         ratelimit.New(cfg.RateLimit),
		builder:         graph.NewBuilder(),
		logger:          logger,
		maxURLs:         maxURLs,
		answerMaxTokens: answerTokens,
	}
}

// SearchAndAnalyze implements Researcher.
func (a *Agent) SearchAndAnalyze(ctx context.Context, query string, depth int) (*types.ResearchReport, error) {
	if err := errtrack.ValidateRequest(query, depth); err != nil {
		a.track(err, query, depth, "validation")
		return nil, err
	}

	key := cache.Key(query, depth)
	if report, ok := a.cache.Get(key); ok {
		a.logger.Info("cache hit", "query", query, "depth", depth)
		return report, nil
	}

	if err := a.limiter.Acquire(ctx); err != nil {
		a.track(err, query, depth, "rate_limit")
		return nil, err
	}

	raw, err := func() (json.RawMessage, error) {
		// Released even when the provider panics.
		defer a.limiter.Release()
		return a.provider.Search(ctx, query, search.Options{
			Mode:          search.ModeForDepth(depth),
			IncludeAnswer: true,
			MaxTokens:     a.answerMaxTokens,
		})
	}()
	if err != nil {
		perr := errtrack.NewProviderError(err.Error(), 503, nil)
		a.track(perr, query, depth, "search")
		return nil, perr
	}

	payload, err := search.Normalize(raw)
	if err != nil {
		perr := errtrack.ProviderErrorForStatus(500, string(raw))
		a.track(perr, query, depth, "normalize")
		return nil, perr
	}
	if payload.ProviderError != "" {
		perr := errtrack.ProviderErrorForStatus(422, payload.ProviderError)
		a.track(perr, query, depth, "normalize")
		return nil, perr
	}

	if len(payload.Results) == 0 {
		perr := errtrack.ProviderErrorForStatus(404, payload.Raw)
		a.track(perr, query, depth, "results")
		return nil, perr
	}

	sources := a.collectSources(payload.Results)
	if len(sources) == 0 {
		perr := errtrack.ProviderErrorForStatus(404, payload.Raw)
		a.track(perr, query, depth, "sources")
		return nil, perr
	}

	// The graph covers every processed source; the report's source list is
	// truncated afterwards.
	kg := a.buildGraph(sources, query, depth)

	totalSources := len(sources)
	if len(sources) > a.maxURLs {
		sources = sources[:a.maxURLs]
	}

	report := &types.ResearchReport{
		Status:         "success",
		Query:          query,
		Depth:          depth,
		Timestamp:      time.Now().UTC(),
		Answer:         payload.Answer,
		Sources:        sources,
		KnowledgeGraph: kg,
		Metadata: types.ReportMetadata{
			TotalSources:     totalSources,
			ProcessedSources: len(sources),
			GraphNodes:       len(kg.Nodes),
			GraphEdges:       len(kg.Edges),
		},
	}

	a.cache.Put(key, report)
	a.logger.Info("research complete",
		"query", query,
		"depth", depth,
		"sources", len(sources),
		"graph_nodes", len(kg.Nodes))

	return report, nil
}

// collectSources normalizes raw provider results, skipping non-object entries
// so one bad entry does not abort the batch. Object results always normalize;
// missing fields take defaults.
func (a *Agent) collectSources(results []map[string]any) []types.Source {
	sources := make([]types.Source, 0, len(results))
	for i, result := range results {
		source, err := types.SourceFromResult(result)
		if err != nil {
			a.logger.Debug("skipping non-object result", "index", i, "error", err)
			continue
		}
		sources = append(sources, source)
	}
	return sources
}

// buildGraph constructs the knowledge graph, degrading to an empty graph when
// construction panics. A report without a graph is still a useful report.
func (a *Agent) buildGraph(sources []types.Source, query string, depth int) (kg *types.KnowledgeGraph) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("knowledge graph construction failed", "query", query, "panic", r)
			kg = types.EmptyKnowledgeGraph()
		}
	}()
	return a.builder.Build(sources)
}

// track records a pipeline failure with its stage and request parameters.
func (a *Agent) track(err error, query string, depth int, stage string) {
	if a.tracker == nil {
		return
	}
	a.tracker.Track(err, map[string]any{
		"query": query,
		"depth": depth,
		"stage": stage,
	})
}

// ErrorStats implements ErrorReporter.
func (a *Agent) ErrorStats() errtrack.Stats {
	return a.tracker.Snapshot()
}

// ErrorAnalysis implements ErrorReporter.
func (a *Agent) ErrorAnalysis() errtrack.Analysis {
	return a.tracker.Analyze(time.Now().UTC())
}

// CacheSize returns the number of cached reports. Exposed for diagnostics.
func (a *Agent) CacheSize() int { return a.cache.Len() }
