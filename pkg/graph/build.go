// Package graph turns loaded documents into a knowledge graph. Documents
// are cut into token-limited chunks, every chunk is handed to a language
// model for entity and relationship extraction, and the per-chunk results
// are merged into a single deduplicated graph.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/trellis/pkg/ai"
	"github.com/OFFIS-RIT/trellis/pkg/common"
	"github.com/OFFIS-RIT/trellis/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// BuildGraphParams describes one build run.
//
// Schema bounds the vocabulary of the schema strategy and seeds the
// dynamic and implicit strategies. A zero Schema falls back to the
// built-in labels.
type BuildGraphParams struct {
	Documents []common.Document
	Strategy  common.Strategy
	Schema    Schema
}

// BuildGraph extracts a knowledge graph from the given documents. Chunks
// whose extraction fails are logged and skipped, so a single bad model
// response cannot sink a long build. The returned graph carries every
// chunk of the corpus, including those that yielded no entities, since
// chunks feed retrieval independently of the graph structure.
func (c *GraphClient) BuildGraph(
	ctx context.Context,
	aiClient ai.GraphAIClient,
	params BuildGraphParams,
) (*common.Graph, error) {
	if _, err := common.ParseStrategy(params.Strategy.String()); err != nil {
		return nil, err
	}
	if len(params.Documents) == 0 {
		return nil, errors.New("no documents to process")
	}

	var chunks []*common.Chunk
	for _, doc := range params.Documents {
		docChunks, err := chunkDocument(doc, c.tokenEncoder, c.chunkTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk document '%s': %w", doc.Path, err)
		}
		chunks = append(chunks, docChunks...)
	}

	logger.Info("[Graph] Corpus chunked",
		"strategy", params.Strategy,
		"documents", len(params.Documents),
		"chunks", len(chunks))

	var (
		mu    sync.Mutex
		nodes []*common.Node
		edges []*common.Edge
	)

	var genOpts []ai.GenerateOption
	if c.temperature > 0 {
		genOpts = append(genOpts, ai.WithTemperature(c.temperature))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.parallelRequests)

	for _, chunk := range chunks {
		eg.Go(func() error {
			chunkNodes, chunkEdges, err := extractFromChunk(egCtx, aiClient, chunk, params.Strategy, params.Schema, genOpts...)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.Warn("[Graph] Chunk extraction failed, skipping",
					"chunk_id", chunk.ID,
					"file", chunk.Path,
					"page", chunk.Page,
					"err", err)
				return nil
			}

			mu.Lock()
			nodes, edges = mergeGraphParts(nodes, chunkNodes, edges, chunkEdges)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	edges = resolveEdges(nodes, edges)

	logger.Info("[Graph] Build complete",
		"strategy", params.Strategy,
		"nodes", len(nodes),
		"edges", len(edges),
		"chunks", len(chunks))

	return &common.Graph{
		Strategy: params.Strategy,
		Nodes:    nodes,
		Edges:    edges,
		Chunks:   chunks,
	}, nil
}
