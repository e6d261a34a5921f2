package common

// Graph represents a knowledge graph built from a document corpus with a
// single extraction strategy. It is the unit of persistence: a build run
// produces one graph per strategy, and queries load one graph back.
//
// A graph contains:
//   - Nodes: entities such as people, organizations, or concepts
//   - Edges: directional relations between two nodes
//   - Chunks: the text segments that provide provenance
type Graph struct {
	Strategy Strategy `json:"strategy"`
	Nodes    []*Node  `json:"nodes"`
	Edges    []*Edge  `json:"edges"`
	Chunks   []*Chunk `json:"chunks"`
}

// Node represents an entity in the graph. A node can be an organization,
// person, location, or any other relevant concept. ChunkIDs records every
// chunk the node was extracted from.
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	ChunkIDs    []string `json:"chunk_ids"`
}

// Edge represents a directional relation between two nodes, referenced by
// their IDs. Strength scores how strongly the text supports the relation
// on a 0.0 to 1.0 scale. Inferred marks relations that were not stated in
// the text but derived from it.
type Edge struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Strength    float64  `json:"strength"`
	Inferred    bool     `json:"inferred"`
	ChunkIDs    []string `json:"chunk_ids"`
}

// Chunk represents a contiguous, token-limited segment of text cut from a
// document page. Chunks are the smallest building blocks in the graph and
// serve as the provenance for nodes and edges.
//
// Start and End give the half-open sentence span within the page text.
type Chunk struct {
	ID     string `json:"id"`
	FileID string `json:"file_id"`
	Path   string `json:"path"`
	Page   int    `json:"page"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
}

// Document is the extracted text of one page of a source file. Plain text
// files produce a single document with page zero; PDFs produce one
// document per page.
type Document struct {
	FileID string `json:"file_id"`
	Path   string `json:"path"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}
