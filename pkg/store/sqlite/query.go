package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/trellis/pkg/common"
	"github.com/OFFIS-RIT/trellis/pkg/store"
)

const (
	// matchLimit caps how many seed nodes a keyword match may return so
	// a generic keyword cannot pull the whole graph into the context.
	matchLimit = 64
	// minKeywordLength filters out keywords too short to match anything
	// but noise.
	minKeywordLength = 3
)

// SearchChunks runs a KNN search over the stored chunk embeddings and
// returns the k nearest chunks with their distances.
func (s *Store) SearchChunks(ctx context.Context, embedding []float32, k int) ([]store.ChunkHit, error) {
	if len(embedding) == 0 || k <= 0 {
		return nil, nil
	}

	db, err := s.database()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT v.distance, c.id, c.file_id, c.path, c.page, c.sentence_start, c.sentence_end, c.text
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var hits []store.ChunkHit
	for rows.Next() {
		chunk := &common.Chunk{}
		var distance float64
		if err := rows.Scan(&distance, &chunk.ID, &chunk.FileID, &chunk.Path,
			&chunk.Page, &chunk.Start, &chunk.End, &chunk.Text); err != nil {
			return nil, err
		}
		hits = append(hits, store.ChunkHit{Chunk: chunk, Distance: distance})
	}
	return hits, rows.Err()
}

// SubgraphForChunks returns every node and edge that was extracted from
// at least one of the given chunks, plus the endpoint nodes of those
// edges.
func (s *Store) SubgraphForChunks(ctx context.Context, chunkIDs []string) (*store.Subgraph, error) {
	chunkIDs = store.DedupeStrings(chunkIDs)
	if len(chunkIDs) == 0 {
		return &store.Subgraph{}, nil
	}

	db, err := s.database()
	if err != nil {
		return nil, err
	}

	args := stringArgs(chunkIDs)
	placeholders := placeholderList(len(chunkIDs))

	nodeRows, err := db.QueryContext(ctx, `
		SELECT DISTINCT n.id, n.name, n.label, n.description, n.chunk_ids
		FROM nodes n, json_each(n.chunk_ids) j
		WHERE j.value IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find nodes for chunks: %w", err)
	}
	defer nodeRows.Close()

	sub := &store.Subgraph{}
	seenNodes := make(map[string]bool)
	for nodeRows.Next() {
		node, err := scanNode(nodeRows)
		if err != nil {
			return nil, err
		}
		sub.Nodes = append(sub.Nodes, node)
		seenNodes[node.ID] = true
	}
	if err := nodeRows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := db.QueryContext(ctx, `
		SELECT DISTINCT e.id, e.source, e.target, e.label, e.description, e.strength, e.inferred, e.chunk_ids
		FROM edges e, json_each(e.chunk_ids) j
		WHERE j.value IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find edges for chunks: %w", err)
	}
	defer edgeRows.Close()

	var endpointIDs []string
	for edgeRows.Next() {
		edge, err := scanEdge(edgeRows)
		if err != nil {
			return nil, err
		}
		sub.Edges = append(sub.Edges, edge)
		for _, id := range []string{edge.Source, edge.Target} {
			if !seenNodes[id] {
				seenNodes[id] = true
				endpointIDs = append(endpointIDs, id)
			}
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	endpoints, err := s.nodesByID(ctx, endpointIDs)
	if err != nil {
		return nil, err
	}
	sub.Nodes = append(sub.Nodes, endpoints...)
	return sub, nil
}

// MatchLabels finds nodes whose name contains one of the keywords or
// whose label equals one, case-insensitively. Keywords shorter than three
// characters are ignored.
func (s *Store) MatchLabels(ctx context.Context, keywords []string) ([]*common.Node, error) {
	var conditions []string
	var args []any
	for _, keyword := range store.DedupeStrings(keywords) {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if len(keyword) < minKeywordLength {
			continue
		}
		conditions = append(conditions, "LOWER(name) LIKE ? OR LOWER(label) = ?")
		args = append(args, "%"+keyword+"%", keyword)
	}
	if len(conditions) == 0 {
		return nil, nil
	}
	args = append(args, matchLimit)

	db, err := s.database()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, name, label, description, chunk_ids FROM nodes WHERE "+
			strings.Join(conditions, " OR ")+" LIMIT ?", args...)
	if err != nil {
		return nil, fmt.Errorf("keyword match failed: %w", err)
	}
	defer rows.Close()

	var nodes []*common.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// Neighborhood expands the seed nodes along edges, one hop per depth
// step, and returns the visited subgraph. Edges are followed in both
// directions.
func (s *Store) Neighborhood(ctx context.Context, nodeIDs []string, depth int) (*store.Subgraph, error) {
	frontier := store.DedupeStrings(nodeIDs)
	if len(frontier) == 0 || depth < 1 {
		return &store.Subgraph{}, nil
	}

	db, err := s.database()
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool, len(frontier))
	for _, id := range frontier {
		visited[id] = true
	}
	seenEdges := make(map[string]bool)
	sub := &store.Subgraph{}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		placeholders := placeholderList(len(frontier))
		args := stringArgs(frontier)
		args = append(args, stringArgs(frontier)...)

		rows, err := db.QueryContext(ctx, `
			SELECT id, source, target, label, description, strength, inferred, chunk_ids
			FROM edges
			WHERE source IN (`+placeholders+`) OR target IN (`+placeholders+`)
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("neighborhood expansion failed: %w", err)
		}

		var next []string
		for rows.Next() {
			edge, err := scanEdge(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			if seenEdges[edge.ID] {
				continue
			}
			seenEdges[edge.ID] = true
			sub.Edges = append(sub.Edges, edge)

			for _, id := range []string{edge.Source, edge.Target} {
				if !visited[id] {
					visited[id] = true
					next = append(next, id)
				}
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		frontier = next
	}

	allIDs := make([]string, 0, len(visited))
	for id := range visited {
		allIDs = append(allIDs, id)
	}
	if sub.Nodes, err = s.nodesByID(ctx, allIDs); err != nil {
		return nil, err
	}
	return sub, nil
}

// nodesByID loads the given nodes in stable rowid order. Unknown IDs are
// silently absent from the result.
func (s *Store) nodesByID(ctx context.Context, ids []string) ([]*common.Node, error) {
	ids = store.DedupeStrings(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	db, err := s.database()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, name, label, description, chunk_ids FROM nodes WHERE id IN ("+
			placeholderList(len(ids))+") ORDER BY rowid", stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes by id: %w", err)
	}
	defer rows.Close()

	var nodes []*common.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func placeholderList(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
