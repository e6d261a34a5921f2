package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/trellis/pkg/ai"
	"github.com/OFFIS-RIT/trellis/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type extractEntity struct {
	EntityName        string `json:"entity_name" jsonschema_description:"Name of the entity, all letters capitalized"`
	EntityType        string `json:"entity_type" jsonschema_description:"Label categorizing the entity, all letters capitalized"`
	EntityDescription string `json:"entity_description" jsonschema_description:"Comprehensive description of the entity's attributes, activities and information provided by the source."`
}

type extractRelationship struct {
	SourceEntity            string  `json:"source_entity" jsonschema_description:"Name of the source entity, as identified in step 1"`
	TargetEntity            string  `json:"target_entity" jsonschema_description:"Name of the target entity, as identified in step 1"`
	RelationshipType        string  `json:"relationship_type" jsonschema_description:"Short all-caps label naming the kind of relationship, such as WORKS_FOR"`
	RelationshipDescription string  `json:"relationship_description" jsonschema_description:"Explanation as to why you think the source entity and the target entity are related to each other"`
	RelationshipStrength    float64 `json:"relationship_strength" jsonschema_description:"A numeric score between 0.0 and 1.0 indicating strength of the relationship between the source entity and target entity"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"All entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"All relationships identified between the entities"`
}

// implicitRelationship carries the extra inferred marker the implicit
// strategy asks the model for.
type implicitRelationship struct {
	SourceEntity            string  `json:"source_entity" jsonschema_description:"Name of the source entity, as identified in step 1"`
	TargetEntity            string  `json:"target_entity" jsonschema_description:"Name of the target entity, as identified in step 1"`
	RelationshipType        string  `json:"relationship_type" jsonschema_description:"Short all-caps label naming the kind of relationship, such as WORKS_FOR"`
	RelationshipDescription string  `json:"relationship_description" jsonschema_description:"Explanation as to why you think the source entity and the target entity are related to each other"`
	RelationshipStrength    float64 `json:"relationship_strength" jsonschema_description:"A numeric score between 0.0 and 1.0 indicating strength of the relationship between the source entity and target entity"`
	Inferred                bool    `json:"inferred" jsonschema_description:"True when the relationship is implied by the text rather than stated"`
}

type implicitExtractResponse struct {
	Entities      []extractEntity        `json:"entities" jsonschema_description:"All entities identified in the text"`
	Relationships []implicitRelationship `json:"relationships" jsonschema_description:"All stated and implied relationships identified between the entities"`
}

// extractionPrompt assembles the system prompt for one strategy. The
// schema strategy advertises the full schema vocabulary, dynamic and
// implicit advertise the entity labels as seeds, free gets no labels.
func extractionPrompt(strategy common.Strategy, schema Schema, documentName string) (string, error) {
	entityLabels := schema.EntityLabels
	if len(entityLabels) == 0 {
		entityLabels = DefaultEntityLabels
	}
	relationLabels := schema.RelationLabels
	if len(relationLabels) == 0 {
		relationLabels = DefaultRelationLabels
	}

	entityList := strings.Join(entityLabels, ", ")
	relationList := strings.Join(relationLabels, ", ")

	switch strategy {
	case common.StrategySchema:
		return fmt.Sprintf(ai.ExtractPromptSchema,
			entityList, relationList, documentName, entityList, entityList, relationList), nil
	case common.StrategyFree:
		return fmt.Sprintf(ai.ExtractPromptFree, documentName), nil
	case common.StrategyDynamic:
		return fmt.Sprintf(ai.ExtractPromptDynamic, entityList, documentName, entityList), nil
	case common.StrategyImplicit:
		return fmt.Sprintf(ai.ExtractPromptImplicit, entityList, documentName, entityList), nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrStrategyUnknown, strategy)
}

// extractFromChunk asks the model for the entities and relationships of a
// single chunk and converts the response into graph parts. Edge endpoints
// hold entity names until the merged graph assigns canonical node IDs.
func extractFromChunk(
	ctx context.Context,
	aiClient ai.GraphAIClient,
	chunk *common.Chunk,
	strategy common.Strategy,
	schema Schema,
	genOpts ...ai.GenerateOption,
) ([]*common.Node, []*common.Edge, error) {
	systemPrompt, err := extractionPrompt(strategy, schema, filepath.Base(chunk.Path))
	if err != nil {
		return nil, nil, err
	}

	opts := append([]ai.GenerateOption{ai.WithSystemPrompts(systemPrompt)}, genOpts...)

	var (
		entities  []extractEntity
		relations []implicitRelationship
	)
	if strategy == common.StrategyImplicit {
		var res implicitExtractResponse
		err := aiClient.GenerateCompletionWithFormat(ctx,
			"extract_entities_and_relationships",
			"Extract entities and their stated and implied relationships from a provided document.",
			chunk.Text, &res, opts...)
		if err != nil {
			return nil, nil, err
		}
		entities = res.Entities
		relations = res.Relationships
	} else {
		var res extractResponse
		err := aiClient.GenerateCompletionWithFormat(ctx,
			"extract_entities_and_relationships",
			"Extract entities and relationships from a provided document.",
			chunk.Text, &res, opts...)
		if err != nil {
			return nil, nil, err
		}
		entities = res.Entities
		relations = make([]implicitRelationship, 0, len(res.Relationships))
		for _, rel := range res.Relationships {
			relations = append(relations, implicitRelationship{
				SourceEntity:            rel.SourceEntity,
				TargetEntity:            rel.TargetEntity,
				RelationshipType:        rel.RelationshipType,
				RelationshipDescription: rel.RelationshipDescription,
				RelationshipStrength:    rel.RelationshipStrength,
			})
		}
	}

	nodes := make([]*common.Node, 0, len(entities))
	byName := make(map[string]*common.Node, len(entities))
	for _, entity := range entities {
		name := strings.TrimSpace(entity.EntityName)
		if name == "" {
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, nil, err
		}
		node := &common.Node{
			ID:          id,
			Name:        name,
			Label:       strings.ToUpper(strings.TrimSpace(entity.EntityType)),
			Description: strings.TrimSpace(entity.EntityDescription),
			ChunkIDs:    []string{chunk.ID},
		}
		nodes = append(nodes, node)
		byName[strings.ToLower(name)] = node
	}

	edges := make([]*common.Edge, 0, len(relations))
	for _, rel := range relations {
		source := byName[strings.ToLower(strings.TrimSpace(rel.SourceEntity))]
		target := byName[strings.ToLower(strings.TrimSpace(rel.TargetEntity))]
		if source == nil || target == nil {
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, nil, err
		}
		edges = append(edges, &common.Edge{
			ID:          id,
			Source:      source.Name,
			Target:      target.Name,
			Label:       strings.ToUpper(strings.TrimSpace(rel.RelationshipType)),
			Description: strings.TrimSpace(rel.RelationshipDescription),
			Strength:    clampStrength(rel.RelationshipStrength),
			Inferred:    rel.Inferred,
			ChunkIDs:    []string{chunk.ID},
		})
	}

	if strategy == common.StrategySchema {
		nodes, edges = applySchema(schema, nodes, edges)
	}

	return nodes, edges, nil
}

func clampStrength(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
