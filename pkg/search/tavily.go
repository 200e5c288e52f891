package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTavilyBaseURL = "https://api.tavily.com"
	tavilyKeyPrefix      = "tvly-"
)

// TavilyClient calls the Tavily search API over HTTP.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// TavilyOption configures a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithBaseURL overrides the API endpoint, e.g. for a test server.
func WithBaseURL(baseURL string) TavilyOption {
	return func(c *TavilyClient) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(c *TavilyClient) { c.httpClient = client }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) TavilyOption {
	return func(c *TavilyClient) { c.logger = logger }
}

// NewTavilyClient creates a Tavily client. The API key is required and must
// carry the provider's key prefix.
func NewTavilyClient(apiKey string, opts ...TavilyOption) (*TavilyClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tavily API key is not configured")
	}
	if !strings.HasPrefix(apiKey, tavilyKeyPrefix) {
		return nil, fmt.Errorf("invalid tavily API key format: key should start with %q", tavilyKeyPrefix)
	}

	c := &TavilyClient{
		apiKey:  apiKey,
		baseURL: defaultTavilyBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// tavilyRequest is the request body for the Tavily search endpoint.
type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	IncludeAnswer  bool     `json:"include_answer"`
	IncludeDomains []string `json:"include_domains"`
	ExcludeDomains []string `json:"exclude_domains"`
	MaxTokens      int      `json:"max_tokens,omitempty"`
}

// Search implements Provider. It returns whatever body the provider sent,
// including on non-2xx statuses, so the normalization step can classify
// provider-reported errors; only transport-level failures return an error.
func (c *TavilyClient) Search(ctx context.Context, query string, opts Options) (json.RawMessage, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeBasic
	}

	req := tavilyRequest{
		APIKey:         c.apiKey,
		Query:          query,
		SearchDepth:    string(mode),
		IncludeAnswer:  opts.IncludeAnswer,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: opts.ExcludeDomains,
		MaxTokens:      opts.MaxTokens,
	}
	if req.IncludeDomains == nil {
		req.IncludeDomains = []string{}
	}
	if req.ExcludeDomains == nil {
		req.ExcludeDomains = []string{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info("calling search provider", "mode", mode, "include_answer", opts.IncludeAnswer)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	c.logger.Debug("provider response received", "status", resp.StatusCode, "bytes", len(payload))
	return payload, nil
}
