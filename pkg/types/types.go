package types

import (
	"time"
)

// ContextKey is the type used for context values set by server middleware.
type ContextKey string

const (
	// ContextKeyRequestID carries the opaque research/request ID.
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyRequestSource identifies where a request entered the system.
	ContextKeyRequestSource ContextKey = "request_source"
)

// SearchRequest is a validated research query. Immutable once validated.
type SearchRequest struct {
	Query string `json:"query"`
	Depth int    `json:"depth"`
}

// ReportMetadata summarizes a research report.
type ReportMetadata struct {
	TotalSources     int `json:"total_sources"`
	ProcessedSources int `json:"processed_sources"`
	GraphNodes       int `json:"graph_nodes"`
	GraphEdges       int `json:"graph_edges"`
}

// ResearchReport is the response envelope assembled for one research query.
// It is the unit stored in the cache and persisted by the storage layer.
type ResearchReport struct {
	Status         string          `json:"status"`
	Query          string          `json:"query"`
	Depth          int             `json:"depth"`
	Timestamp      time.Time       `json:"timestamp"`
	Answer         string          `json:"answer,omitempty"`
	Sources        []Source        `json:"sources"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph"`
	Metadata       ReportMetadata  `json:"metadata"`
}

// Synthesis is a prose answer drafted from a stored research report.
type Synthesis struct {
	ResearchID  string    `json:"research_id"`
	Text        string    `json:"synthesis"`
	SourceCount int       `json:"source_count"`
	Model       string    `json:"model,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
