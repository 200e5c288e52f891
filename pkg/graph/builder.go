// Package graph builds a lightweight knowledge graph linking source documents
// to keyword terms extracted from their content.
package graph

import (
	"strings"

	"github.com/soundprediction/inquiro/pkg/types"
)

// Builder constructs knowledge graphs from normalized sources. Construction
// is a pure function of its input: node and edge iteration order is
// first-insertion order, so identical input yields identical output.
type Builder struct {
	maxKeywordsPerSource int
	minKeywordLength     int
	maxTitleRunes        int
	stopWords            map[string]struct{}
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxKeywords caps the keywords extracted per source.
func WithMaxKeywords(n int) Option {
	return func(b *Builder) { b.maxKeywordsPerSource = n }
}

// WithStopWords replaces the default stop-word set.
func WithStopWords(words map[string]struct{}) Option {
	return func(b *Builder) { b.stopWords = words }
}

// NewBuilder creates a builder with the default limits: 10 keywords per
// source, tokens longer than 4 characters, titles truncated to 50 runes.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		maxKeywordsPerSource: 10,
		minKeywordLength:     4,
		maxTitleRunes:        50,
		stopWords:            defaultStopWords,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates a simple undirected graph over the given sources: one node
// per truncated title (kind source), one node per extracted keyword (kind
// keyword), and one edge per (source, keyword) pair. Nodes and edges are
// reused on repeats, so the graph never contains duplicates or multi-edges.
// A node added again keeps its position but takes the latest kind, so a
// keyword colliding with an earlier title ends up kind keyword.
func (b *Builder) Build(sources []types.Source) *types.KnowledgeGraph {
	g := types.EmptyKnowledgeGraph()
	nodeIndex := map[string]int{}
	seenEdges := map[[2]string]struct{}{}

	addNode := func(id string, kind types.NodeKind) {
		if i, ok := nodeIndex[id]; ok {
			g.Nodes[i].Kind = kind
			return
		}
		nodeIndex[id] = len(g.Nodes)
		g.Nodes = append(g.Nodes, types.GraphNode{ID: id, Label: id, Kind: kind})
	}

	for _, source := range sources {
		titleID := truncateRunes(source.Title, b.maxTitleRunes)
		addNode(titleID, types.NodeKindSource)

		for _, keyword := range b.Keywords(source.Content) {
			addNode(keyword, types.NodeKindKeyword)

			pair := [2]string{titleID, keyword}
			if _, ok := seenEdges[pair]; ok {
				continue
			}
			seenEdges[pair] = struct{}{}
			g.Edges = append(g.Edges, types.GraphEdge{Source: titleID, Target: keyword})
		}
	}

	return g
}

// Keywords extracts up to maxKeywordsPerSource terms from content: lowercase
// whitespace tokens longer than minKeywordLength that are not stop words,
// deduplicated in tokenization order (first occurrence wins).
func (b *Builder) Keywords(content string) []string {
	if content == "" {
		return nil
	}

	var keywords []string
	seen := map[string]struct{}{}
	for _, token := range strings.Fields(strings.ToLower(content)) {
		if len(token) <= b.minKeywordLength {
			continue
		}
		if _, stop := b.stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == b.maxKeywordsPerSource {
			break
		}
	}
	return keywords
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
