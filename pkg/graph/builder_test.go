package graph

import (
	"strings"
	"testing"

	"github.com/soundprediction/inquiro/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	b := NewBuilder()

	t.Run("empty content", func(t *testing.T) {
		assert.Nil(t, b.Keywords(""))
	})

	t.Run("short tokens and stop words dropped", func(t *testing.T) {
		got := b.Keywords("the quick brown fox jumps over lazy dogs because reasons")
		// "quick"(5), "brown"(5), "jumps"(5), "because" is a stop word,
		// "reasons"(7); "the"/"fox"/"over"/"lazy"/"dogs" are too short.
		assert.Equal(t, []string{"quick", "brown", "jumps", "reasons"}, got)
	})

	t.Run("lowercased and deduplicated in first-occurrence order", func(t *testing.T) {
		got := b.Keywords("Concurrency CONCURRENCY channels Channels concurrency")
		assert.Equal(t, []string{"concurrency", "channels"}, got)
	})

	t.Run("capped at ten", func(t *testing.T) {
		words := []string{
			"alpha1", "bravo1", "charlie", "delta1", "echo12",
			"foxtrot", "golf12", "hotel1", "india1", "juliet",
			"kilo12", "lima12",
		}
		got := b.Keywords(strings.Join(words, " "))
		require.Len(t, got, 10)
		assert.Equal(t, words[:10], got)
	})
}

func TestBuild(t *testing.T) {
	b := NewBuilder()

	sources := []types.Source{
		{Title: "Go Concurrency Patterns", Content: "goroutines channels select goroutines"},
		{Title: "Channels in Depth", Content: "channels buffered unbuffered"},
	}

	g := b.Build(sources)

	// Two source nodes plus five distinct keywords; "channels" is shared.
	var sourceNodes, keywordNodes int
	for _, n := range g.Nodes {
		switch n.Kind {
		case types.NodeKindSource:
			sourceNodes++
		case types.NodeKindKeyword:
			keywordNodes++
		}
	}
	assert.Equal(t, 2, sourceNodes)
	assert.Equal(t, 5, keywordNodes)
	assert.Len(t, g.Edges, 6)

	// "channels" links to both sources but appears as one node.
	var channelNodes int
	for _, n := range g.Nodes {
		if n.ID == "channels" {
			channelNodes++
		}
	}
	assert.Equal(t, 1, channelNodes)
}

func TestBuildCollapsesMultiEdges(t *testing.T) {
	b := NewBuilder()
	// Two sources with the same title and overlapping content would produce
	// duplicate (source, keyword) pairs in a multigraph.
	sources := []types.Source{
		{Title: "Same Title", Content: "shared keyword"},
		{Title: "Same Title", Content: "shared keyword again12"},
	}

	g := b.Build(sources)

	assert.Len(t, g.Edges, 3) // shared, keyword, again12
	seen := map[[2]string]int{}
	for _, e := range g.Edges {
		seen[[2]string{e.Source, e.Target}]++
	}
	for pair, count := range seen {
		assert.Equal(t, 1, count, "duplicate edge %v", pair)
	}
}

func TestBuildKeywordTakesOverCollidingTitle(t *testing.T) {
	b := NewBuilder()
	sources := []types.Source{
		{Title: "channels", Content: "goroutines"},
		{Title: "Pipelines", Content: "channels fanout"},
	}

	g := b.Build(sources)

	// One shared node: the title of the first source reappears as a keyword
	// of the second, keeps its position, and takes the keyword kind.
	require.Len(t, g.Nodes, 4)
	assert.Equal(t, "channels", g.Nodes[0].ID)
	assert.Equal(t, types.NodeKindKeyword, g.Nodes[0].Kind)
}

func TestBuildTruncatesLongTitles(t *testing.T) {
	b := NewBuilder()
	long := strings.Repeat("x", 80)
	g := b.Build([]types.Source{{Title: long, Content: ""}})

	require.Len(t, g.Nodes, 1)
	assert.Len(t, g.Nodes[0].ID, 50)
}

func TestBuildDeterministic(t *testing.T) {
	b := NewBuilder()
	sources := []types.Source{
		{Title: "First", Content: "delta alpha1 gamma1 alpha1 omega1"},
		{Title: "Second", Content: "omega1 sigma1 gamma1"},
		{Title: "Third", Content: "lambda kappa1 sigma1 delta"},
	}

	first := b.Build(sources)
	for i := 0; i < 10; i++ {
		again := b.Build(sources)
		assert.Equal(t, first.Nodes, again.Nodes)
		assert.Equal(t, first.Edges, again.Edges)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	g := NewBuilder().Build(nil)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Edges)
}
