package graph

import (
	"strings"

	"github.com/OFFIS-RIT/trellis/pkg/common"
)

// mergeGraphParts folds newly extracted nodes and edges into the running
// accumulation. Nodes merge case-insensitively by name, edges by source,
// target, and label. The passed slices are extended in place and returned.
func mergeGraphParts(
	nodes []*common.Node,
	newNodes []*common.Node,
	edges []*common.Edge,
	newEdges []*common.Edge,
) ([]*common.Node, []*common.Edge) {
	return mergeNodes(nodes, newNodes), mergeEdges(edges, newEdges)
}

// mergeNodes deduplicates nodes by case-insensitive name. The first
// occurrence keeps its ID and casing; later occurrences contribute their
// chunk references, any missing label, and unseen description text.
func mergeNodes(nodes []*common.Node, newNodes []*common.Node) []*common.Node {
	byName := make(map[string]*common.Node, len(nodes))
	for _, node := range nodes {
		byName[strings.ToLower(node.Name)] = node
	}

	for _, node := range newNodes {
		key := strings.ToLower(node.Name)
		existing, ok := byName[key]
		if !ok {
			byName[key] = node
			nodes = append(nodes, node)
			continue
		}

		if existing.Label == "" {
			existing.Label = node.Label
		}
		existing.Description = concatDescription(existing.Description, node.Description)
		existing.ChunkIDs = unionStrings(existing.ChunkIDs, node.ChunkIDs)
	}

	return nodes
}

// mergeEdges deduplicates edges by (source, target, label), matching
// endpoints case-insensitively. Duplicate findings average their strength,
// union their chunk references, and stay inferred only while every
// occurrence was inferred.
func mergeEdges(edges []*common.Edge, newEdges []*common.Edge) []*common.Edge {
	type edgeKey struct {
		source string
		target string
		label  string
	}
	keyFor := func(edge *common.Edge) edgeKey {
		return edgeKey{
			source: strings.ToLower(edge.Source),
			target: strings.ToLower(edge.Target),
			label:  strings.ToUpper(edge.Label),
		}
	}

	byKey := make(map[edgeKey]*common.Edge, len(edges))
	for _, edge := range edges {
		byKey[keyFor(edge)] = edge
	}

	for _, edge := range newEdges {
		key := keyFor(edge)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = edge
			edges = append(edges, edge)
			continue
		}

		existing.Strength = (existing.Strength + edge.Strength) / 2
		existing.Description = concatDescription(existing.Description, edge.Description)
		if !edge.Inferred {
			existing.Inferred = false
		}
		existing.ChunkIDs = unionStrings(existing.ChunkIDs, edge.ChunkIDs)
	}

	return edges
}

// resolveEdges rewrites edge endpoints from entity names to the node IDs
// of the merged graph. Edges whose endpoints did not survive merging are
// dropped.
func resolveEdges(nodes []*common.Node, edges []*common.Edge) []*common.Edge {
	byName := make(map[string]*common.Node, len(nodes))
	for _, node := range nodes {
		byName[strings.ToLower(node.Name)] = node
	}

	resolved := make([]*common.Edge, 0, len(edges))
	for _, edge := range edges {
		source, ok := byName[strings.ToLower(edge.Source)]
		if !ok {
			continue
		}
		target, ok := byName[strings.ToLower(edge.Target)]
		if !ok {
			continue
		}

		edge.Source = source.ID
		edge.Target = target.ID
		resolved = append(resolved, edge)
	}

	return resolved
}

// concatDescription appends the new text on its own line, skipping text
// the existing description already contains.
func concatDescription(existing, added string) string {
	if added == "" {
		return existing
	}
	if existing == "" {
		return added
	}
	if strings.Contains(existing, added) {
		return existing
	}
	return existing + "\n" + added
}

func unionStrings(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range src {
		if !seen[v] {
			seen[v] = true
			dst = append(dst, v)
		}
	}
	return dst
}
