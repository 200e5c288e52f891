package types

// NodeKind distinguishes source-document nodes from keyword nodes.
type NodeKind string

const (
	NodeKindSource  NodeKind = "source"
	NodeKindKeyword NodeKind = "keyword"
)

// GraphNode is a node in the knowledge graph. ID and Label are the same
// string today; they are kept separate so rendering can diverge later.
type GraphNode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"type"`
}

// GraphEdge is an undirected link between a source node and a keyword node.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// KnowledgeGraph is a simple undirected graph linking source documents to
// extracted keyword terms. Node and edge order is first-insertion order, so
// identical input always produces identical output.
type KnowledgeGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"links"`
}

// EmptyKnowledgeGraph returns a graph with allocated, zero-length slices so
// it serializes as empty arrays rather than null.
func EmptyKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		Nodes: []GraphNode{},
		Edges: []GraphEdge{},
	}
}
