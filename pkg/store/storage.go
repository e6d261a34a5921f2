// Package store defines the persistence contract for built knowledge
// graphs. Each extraction strategy owns one storage directory; a store is
// bound to exactly one of them and never touches another strategy's data.
package store

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/trellis/pkg/common"
)

// ErrNotFound is returned when a store is asked to load a graph that was
// never persisted to its directory.
var ErrNotFound = errors.New("no persisted graph in storage directory")

// ChunkHit is a chunk returned by a vector search, together with its
// distance to the query embedding (smaller is closer).
type ChunkHit struct {
	Chunk    *common.Chunk
	Distance float64
}

// Subgraph is a connected fragment of a persisted graph: the nodes and
// edges a retrieval step selected. Every edge endpoint is included in
// Nodes.
type Subgraph struct {
	Nodes []*common.Node
	Edges []*common.Edge
}

// Embedder computes vector embeddings for text inputs. The AI clients in
// pkg/ai satisfy this interface.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
}

// GraphStore persists one strategy's graph and serves the retrieval
// primitives of the query pipeline.
//
// Save is an idempotent overwrite: re-running a build replaces the prior
// contents of the strategy directory. There is no locking; concurrent
// writers to the same directory are undefined behavior. Load always
// returns the whole graph, never a partial view.
type GraphStore interface {
	Save(ctx context.Context, graph *common.Graph) error
	Load(ctx context.Context) (*common.Graph, error)

	// SearchChunks runs a KNN search over the stored chunk embeddings.
	SearchChunks(ctx context.Context, embedding []float32, k int) ([]ChunkHit, error)
	// SubgraphForChunks returns the nodes and edges extracted from the
	// given chunks.
	SubgraphForChunks(ctx context.Context, chunkIDs []string) (*Subgraph, error)
	// MatchLabels finds nodes whose name or label matches any of the
	// keywords, case-insensitively. The result seeds graph traversal.
	MatchLabels(ctx context.Context, keywords []string) ([]*common.Node, error)
	// Neighborhood expands the seed nodes up to depth hops along edges.
	Neighborhood(ctx context.Context, nodeIDs []string, depth int) (*Subgraph, error)

	Close() error
}
