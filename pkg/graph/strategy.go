package graph

import (
	"strings"

	"github.com/OFFIS-RIT/trellis/pkg/common"
)

// FallbackLabel replaces entity labels that fall outside the schema when
// coercion is enabled.
const FallbackLabel = "OTHER"

// DefaultEntityLabels seeds extraction when no labels are configured. The
// schema strategy treats them as the complete label set, dynamic and
// implicit extraction treat them as a starting point the model may extend.
var DefaultEntityLabels = []string{
	"ORGANIZATION",
	"PERSON",
	"LOCATION",
	"CONCEPT",
	"CREATIVE_WORK",
	"DATE",
	"PRODUCT",
	"EVENT",
}

// DefaultRelationLabels is the relation vocabulary of the built-in schema.
// RELATED_TO acts as the catch-all so schema extraction never has to drop
// a clear relationship for lack of a fitting label.
var DefaultRelationLabels = []string{
	"RELATED_TO",
	"PART_OF",
	"LOCATED_IN",
	"WORKS_FOR",
	"CREATED_BY",
	"PARTICIPATED_IN",
	"OCCURRED_ON",
	"PRODUCES",
}

// Schema bounds the vocabulary of schema extraction. Empty RelationLabels
// or Triples leave the corresponding check unrestricted.
type Schema struct {
	EntityLabels   []string
	RelationLabels []string
	// Triples lists the permitted (source label, relation label, target
	// label) combinations, checked after any label coercion.
	Triples [][3]string
	// CoerceLabels rewrites out-of-schema entity labels to FallbackLabel.
	// When false the node is dropped instead, together with its edges.
	CoerceLabels bool
}

// DefaultSchema returns the schema compiled into the binary. Entity labels
// can be overridden through configuration.
func DefaultSchema() Schema {
	return Schema{
		EntityLabels:   append([]string(nil), DefaultEntityLabels...),
		RelationLabels: append([]string(nil), DefaultRelationLabels...),
		CoerceLabels:   true,
	}
}

// applySchema validates extracted nodes and edges against the schema.
// Nodes with out-of-schema labels are coerced or dropped depending on
// Schema.CoerceLabels. Edges lose out when either endpoint was dropped,
// when their label is not in RelationLabels, or when the (source label,
// relation, target label) triple is not permitted.
//
// Edge endpoints still hold entity names at this stage.
func applySchema(schema Schema, nodes []*common.Node, edges []*common.Edge) ([]*common.Node, []*common.Edge) {
	allowedEntities := upperSet(schema.EntityLabels)
	allowedRelations := upperSet(schema.RelationLabels)

	allowedTriples := make(map[[3]string]bool, len(schema.Triples))
	for _, t := range schema.Triples {
		allowedTriples[[3]string{
			strings.ToUpper(t[0]),
			strings.ToUpper(t[1]),
			strings.ToUpper(t[2]),
		}] = true
	}

	labelByName := make(map[string]string, len(nodes))
	keptNodes := make([]*common.Node, 0, len(nodes))
	for _, node := range nodes {
		if len(allowedEntities) > 0 && !allowedEntities[strings.ToUpper(node.Label)] {
			if !schema.CoerceLabels {
				continue
			}
			node.Label = FallbackLabel
		}
		keptNodes = append(keptNodes, node)
		labelByName[strings.ToLower(node.Name)] = strings.ToUpper(node.Label)
	}

	keptEdges := make([]*common.Edge, 0, len(edges))
	for _, edge := range edges {
		sourceLabel, ok := labelByName[strings.ToLower(edge.Source)]
		if !ok {
			continue
		}
		targetLabel, ok := labelByName[strings.ToLower(edge.Target)]
		if !ok {
			continue
		}

		label := strings.ToUpper(edge.Label)
		if len(allowedRelations) > 0 && !allowedRelations[label] {
			continue
		}
		if len(allowedTriples) > 0 && !allowedTriples[[3]string{sourceLabel, label, targetLabel}] {
			continue
		}
		keptEdges = append(keptEdges, edge)
	}

	return keptNodes, keptEdges
}

func upperSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}
