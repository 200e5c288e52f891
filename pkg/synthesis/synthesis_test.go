package synthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/inquiro/pkg/types"
)

func sampleReport() *types.ResearchReport {
	return &types.ResearchReport{
		Query: "solid state batteries",
		Sources: []types.Source{
			{Title: "A", Domain: "a.example", Content: "dense cathode material research"},
			{Title: "B", Domain: "b.example", Content: strings.Repeat("x", 600)},
		},
	}
}

func newFakeOpenAI(t *testing.T, reply string) (*httptest.Server, *string) {
	t.Helper()
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		gotPrompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(server.Close)
	return server, &gotPrompt
}

func TestNewAgentRequiresAPIKey(t *testing.T) {
	_, err := NewAgent(Config{}, nil)
	assert.Error(t, err)
}

func TestSynthesize(t *testing.T) {
	server, gotPrompt := newFakeOpenAI(t, "batteries are improving")

	agent, err := NewAgent(Config{APIKey: "sk-test", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	synthesis, err := agent.Synthesize(context.Background(), "res-1", sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "res-1", synthesis.ResearchID)
	assert.Equal(t, "batteries are improving", synthesis.Text)
	assert.Equal(t, 2, synthesis.SourceCount)
	assert.Equal(t, DefaultModel, synthesis.Model)

	// The prompt carries the query and every source, with long content truncated.
	assert.Contains(t, *gotPrompt, "solid state batteries")
	assert.Contains(t, *gotPrompt, "a.example")
	assert.Contains(t, *gotPrompt, strings.Repeat("x", maxContentPerSource)+"...")
	assert.NotContains(t, *gotPrompt, strings.Repeat("x", maxContentPerSource+1))
}

func TestSynthesizeRejectsEmptyReport(t *testing.T) {
	agent, err := NewAgent(Config{APIKey: "sk-test"}, nil)
	require.NoError(t, err)

	_, err = agent.Synthesize(context.Background(), "res-1", &types.ResearchReport{})
	assert.Error(t, err)

	_, err = agent.Synthesize(context.Background(), "res-1", nil)
	assert.Error(t, err)
}
