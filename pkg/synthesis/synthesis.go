// Package synthesis drafts a prose answer from a stored research report using
// an OpenAI-compatible chat model.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/soundprediction/inquiro/pkg/types"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// maxContentPerSource bounds how much of each source is quoted in the prompt.
const maxContentPerSource = 500

const synthesisPrompt = `Based on the following research data, provide a comprehensive and well-structured answer.

Research Data:
%s

Please analyze the information and provide:
1. A concise summary
2. Key findings and insights
3. Supporting evidence and sources
4. Any potential limitations or gaps in the research

Answer:`

// Config holds settings for the synthesis agent.
type Config struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// Agent turns research reports into prose syntheses.
type Agent struct {
	client *openai.Client
	cfg    Config
	logger *slog.Logger
}

// NewAgent creates a synthesis agent. The API key is required.
func NewAgent(cfg Config, logger *slog.Logger) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("synthesis API key is not configured")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Agent{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Synthesize drafts an answer from the report's sources.
func (a *Agent) Synthesize(ctx context.Context, researchID string, report *types.ResearchReport) (*types.Synthesis, error) {
	if report == nil || len(report.Sources) == 0 {
		return nil, fmt.Errorf("report has no sources to synthesize")
	}

	prompt := fmt.Sprintf(synthesisPrompt, formatResearchData(report))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("synthesis returned no choices")
	}

	a.logger.Info("synthesis complete", "research_id", researchID, "sources", len(report.Sources))

	return &types.Synthesis{
		ResearchID:  researchID,
		Text:        resp.Choices[0].Message.Content,
		SourceCount: len(report.Sources),
		Model:       a.cfg.Model,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// formatResearchData flattens the report's sources into the prompt body.
func formatResearchData(report *types.ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", report.Query)
	for _, src := range report.Sources {
		content := src.Content
		if len(content) > maxContentPerSource {
			content = content[:maxContentPerSource] + "..."
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", src.Title, src.Domain, content)
	}
	return b.String()
}
