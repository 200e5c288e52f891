// Package types defines the shared data model for the research pipeline:
// search requests, normalized sources, the knowledge graph, and the
// response envelope cached and served to clients.
package types
