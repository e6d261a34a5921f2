// Package query answers natural-language questions against a persisted
// knowledge graph. Every question runs two retrievers over the store: a
// vector search across chunk embeddings and a synonym expansion that
// broadens the question into keywords before matching node names and
// labels. The merged subgraph is handed to the model as grounding context
// for the final answer.
package query

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/OFFIS-RIT/trellis/internal/util"
	"github.com/OFFIS-RIT/trellis/pkg/ai"
	"github.com/OFFIS-RIT/trellis/pkg/common"
	"github.com/OFFIS-RIT/trellis/pkg/logger"
	"github.com/OFFIS-RIT/trellis/pkg/store"
)

const (
	defaultPathDepth   = 2
	defaultMaxKeywords = 10
	defaultTopChunks   = 8
)

// Options tunes retrieval. All fields are stateless across queries; every
// Ask re-embeds the question and re-invokes the model.
type Options struct {
	// PathDepth is how many hops the synonym retriever expands matched
	// nodes along edges.
	PathDepth int
	// MaxKeywords caps the synonym expansion of the question.
	MaxKeywords int
	// TopChunks is the k of the vector search.
	TopChunks int
	// IncludeSourceText adds the matched chunk texts to the answer
	// context.
	IncludeSourceText bool
	// Temperature overrides the model's sampling temperature for every
	// generation the engine makes when greater than zero.
	Temperature float64
	// Tracer receives retrieval events when set.
	Tracer Tracer
}

// Engine answers questions against one strategy's persisted graph.
//
// An Engine should be created using NewEngine.
type Engine struct {
	store    store.GraphStore
	aiClient ai.GraphAIClient
	options  Options
}

// Result is the answer together with the retrieved context it was
// grounded in.
type Result struct {
	Answer   string
	Keywords []string
	Nodes    []*common.Node
	Edges    []*common.Edge
	Chunks   []store.ChunkHit
}

// NewEngine creates an Engine over the given store and AI client. Zero
// option fields fall back to defaults: depth 2, 10 keywords, 8 chunks.
func NewEngine(graphStore store.GraphStore, aiClient ai.GraphAIClient, options Options) *Engine {
	if options.PathDepth <= 0 {
		options.PathDepth = defaultPathDepth
	}
	if options.MaxKeywords <= 0 {
		options.MaxKeywords = defaultMaxKeywords
	}
	if options.TopChunks <= 0 {
		options.TopChunks = defaultTopChunks
	}

	return &Engine{
		store:    graphStore,
		aiClient: aiClient,
		options:  options,
	}
}

// Ask answers the last user message of the conversation. Earlier messages
// give the keyword expansion context for follow-up questions; they are
// also passed to the answering model. When neither retriever finds
// anything, the model is asked for an explicit no-data response instead
// of answering without grounding.
func (e *Engine) Ask(ctx context.Context, msgs []ai.ChatMessage) (*Result, error) {
	if len(msgs) == 0 {
		return nil, errors.New("no question to answer")
	}
	question := msgs[len(msgs)-1].Message

	hits, vectorSub, err := e.retrieveByVector(ctx, question)
	if err != nil {
		return nil, err
	}

	keywords, synonymSub, err := e.retrieveBySynonyms(ctx, msgs)
	if err != nil {
		return nil, err
	}

	nodes, edges := mergeSubgraphs(vectorSub, synonymSub)
	result := &Result{
		Keywords: keywords,
		Nodes:    nodes,
		Edges:    edges,
		Chunks:   hits,
	}

	logger.Debug("[Query] Context retrieved",
		"keywords", len(keywords),
		"nodes", len(nodes),
		"edges", len(edges),
		"chunks", len(hits))

	if len(nodes) == 0 && len(edges) == 0 && len(hits) == 0 {
		answer, err := e.generateNoDataResponse(ctx, question)
		if err != nil {
			return nil, err
		}
		result.Answer = answer
		return result, nil
	}

	contextText := e.buildContext(result)
	systemPrompt := fmt.Sprintf(ai.QueryPrompt, contextText)

	start := time.Now()
	answer, err := e.aiClient.GenerateChat(ctx, msgs, e.genOpts(ai.WithSystemPrompts(systemPrompt))...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	recordSynthesis(e.options.Tracer, time.Since(start).Milliseconds())

	result.Answer = util.NormalizeCitations(answer)
	return result, nil
}

// retrieveByVector embeds the question, finds the nearest chunks, and
// pulls in the graph elements extracted from them.
func (e *Engine) retrieveByVector(ctx context.Context, question string) ([]store.ChunkHit, *store.Subgraph, error) {
	embedding, err := e.aiClient.GenerateEmbedding(ctx, []byte(question))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := e.store.SearchChunks(ctx, embedding, e.options.TopChunks)
	if err != nil {
		return nil, nil, err
	}

	chunkIDs := make([]string, 0, len(hits))
	for _, hit := range hits {
		chunkIDs = append(chunkIDs, hit.Chunk.ID)
	}
	recordConsideredChunks(e.options.Tracer, chunkIDs...)

	sub, err := e.store.SubgraphForChunks(ctx, chunkIDs)
	if err != nil {
		return nil, nil, err
	}
	return hits, sub, nil
}

type keywordResponse struct {
	Keywords []string `json:"keywords" jsonschema_description:"Up to the requested number of search terms, most specific first"`
}

// retrieveBySynonyms expands the question into keywords, matches them
// against node names and labels, and walks outward from the matches.
func (e *Engine) retrieveBySynonyms(ctx context.Context, msgs []ai.ChatMessage) ([]string, *store.Subgraph, error) {
	question := msgs[len(msgs)-1].Message
	previousAnswer := lastAssistantMessage(msgs)

	prompt := fmt.Sprintf(ai.KeywordPrompt, previousAnswer, question, e.options.MaxKeywords)

	var res keywordResponse
	err := e.aiClient.GenerateCompletionWithFormat(ctx,
		"expand_keywords",
		"Expand a user question into search keywords for knowledge graph retrieval.",
		prompt, &res, e.genOpts()...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to expand keywords: %w", err)
	}

	keywords := res.Keywords
	if len(keywords) > e.options.MaxKeywords {
		keywords = keywords[:e.options.MaxKeywords]
	}
	recordKeywords(e.options.Tracer, keywords...)

	seeds, err := e.store.MatchLabels(ctx, keywords)
	if err != nil {
		return nil, nil, err
	}
	if len(seeds) == 0 {
		return keywords, &store.Subgraph{}, nil
	}

	seedIDs := make([]string, 0, len(seeds))
	for _, node := range seeds {
		seedIDs = append(seedIDs, node.ID)
	}
	recordQueriedNodes(e.options.Tracer, seedIDs...)

	sub, err := e.store.Neighborhood(ctx, seedIDs, e.options.PathDepth)
	if err != nil {
		return nil, nil, err
	}

	// Seeds without any edges still belong in the context.
	sub.Nodes = append(sub.Nodes, seeds...)
	return keywords, sub, nil
}

func (e *Engine) generateNoDataResponse(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(ai.NoDataPrompt, question)
	answer, err := e.aiClient.GenerateCompletion(ctx, prompt, e.genOpts()...)
	if err != nil {
		return "", fmt.Errorf("failed to generate no-data response: %w", err)
	}
	return answer, nil
}

// genOpts prepends the engine-wide generation options to per-call ones.
func (e *Engine) genOpts(opts ...ai.GenerateOption) []ai.GenerateOption {
	if e.options.Temperature > 0 {
		opts = append([]ai.GenerateOption{ai.WithTemperature(e.options.Temperature)}, opts...)
	}
	return opts
}

// mergeSubgraphs unions the two retrieval paths, de-duplicating nodes and
// edges by identity. Vector results come first so the context leads with
// the semantically closest material.
func mergeSubgraphs(subs ...*store.Subgraph) ([]*common.Node, []*common.Edge) {
	var nodes []*common.Node
	var edges []*common.Edge
	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)

	for _, sub := range subs {
		if sub == nil {
			continue
		}
		for _, node := range sub.Nodes {
			if seenNodes[node.ID] {
				continue
			}
			seenNodes[node.ID] = true
			nodes = append(nodes, node)
		}
		for _, edge := range sub.Edges {
			if seenEdges[edge.ID] {
				continue
			}
			seenEdges[edge.ID] = true
			edges = append(edges, edge)
		}
	}
	return nodes, edges
}

// buildContext renders the retrieved material into the sectioned layout
// the answer prompt documents. Citations reference chunk IDs.
func (e *Engine) buildContext(result *Result) string {
	nameByID := make(map[string]string, len(result.Nodes))
	for _, node := range result.Nodes {
		nameByID[node.ID] = node.Name
	}

	var sections []string

	if len(result.Nodes) > 0 {
		var b strings.Builder
		b.WriteString("Relevant Entities:\n")
		for _, node := range result.Nodes {
			if node.Description == "" {
				continue
			}
			fmt.Fprintf(&b, "%s,%s: %s\n", node.Name, firstChunkID(node.ChunkIDs), node.Description)
		}
		sections = append(sections, b.String())
	}

	if len(result.Edges) > 0 {
		var b strings.Builder
		b.WriteString("Connecting Relationships:\n")
		for _, edge := range result.Edges {
			if edge.Description == "" {
				continue
			}
			source := nameByID[edge.Source]
			target := nameByID[edge.Target]
			if source == "" || target == "" {
				continue
			}
			fmt.Fprintf(&b, "%s<->%s,%s: %s\n", source, target, firstChunkID(edge.ChunkIDs), edge.Description)
		}
		sections = append(sections, b.String())
	}

	if e.options.IncludeSourceText && len(result.Chunks) > 0 {
		var b strings.Builder
		b.WriteString("Source Text:\n")
		for _, hit := range result.Chunks {
			fmt.Fprintf(&b, "%s,%s: %s\n", filepath.Base(hit.Chunk.Path), hit.Chunk.ID, hit.Chunk.Text)
		}
		sections = append(sections, b.String())
	}

	return strings.Join(sections, "\n")
}

func firstChunkID(ids []string) string {
	if len(ids) == 0 {
		return "unknown"
	}
	return ids[0]
}

func lastAssistantMessage(msgs []ai.ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "assistant" {
			return msgs[i].Message
		}
	}
	return ""
}
