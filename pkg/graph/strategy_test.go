package graph

import (
	"testing"

	"github.com/OFFIS-RIT/trellis/pkg/common"
)

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()

	if len(schema.EntityLabels) != len(DefaultEntityLabels) {
		t.Errorf("DefaultSchema() has %d entity labels, want %d", len(schema.EntityLabels), len(DefaultEntityLabels))
	}
	if len(schema.RelationLabels) != len(DefaultRelationLabels) {
		t.Errorf("DefaultSchema() has %d relation labels, want %d", len(schema.RelationLabels), len(DefaultRelationLabels))
	}
	if !schema.CoerceLabels {
		t.Error("DefaultSchema() should coerce out-of-schema labels")
	}

	// Callers may append to the returned slices without touching the
	// package defaults.
	schema.EntityLabels[0] = "CHANGED"
	if DefaultEntityLabels[0] == "CHANGED" {
		t.Error("DefaultSchema() returned the shared label slice instead of a copy")
	}
}

func TestApplySchemaCoercesUnknownLabels(t *testing.T) {
	schema := Schema{
		EntityLabels: []string{"PERSON"},
		CoerceLabels: true,
	}
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice", Label: "PERSON"},
		{ID: "n2", Name: "Quantum Drive", Label: "SPACESHIP_PART"},
	}

	gotNodes, _ := applySchema(schema, nodes, nil)

	if len(gotNodes) != 2 {
		t.Fatalf("applySchema() kept %d nodes, want 2", len(gotNodes))
	}
	if gotNodes[0].Label != "PERSON" {
		t.Errorf("in-schema label = %q, want PERSON", gotNodes[0].Label)
	}
	if gotNodes[1].Label != FallbackLabel {
		t.Errorf("out-of-schema label = %q, want %q", gotNodes[1].Label, FallbackLabel)
	}
}

func TestApplySchemaDropsUnknownLabels(t *testing.T) {
	schema := Schema{
		EntityLabels: []string{"PERSON"},
		CoerceLabels: false,
	}
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice", Label: "PERSON"},
		{ID: "n2", Name: "Quantum Drive", Label: "SPACESHIP_PART"},
	}
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Quantum Drive", Label: "BUILT"},
	}

	gotNodes, gotEdges := applySchema(schema, nodes, edges)

	if len(gotNodes) != 1 {
		t.Fatalf("applySchema() kept %d nodes, want 1", len(gotNodes))
	}
	if gotNodes[0].Name != "Alice" {
		t.Errorf("kept node = %q, want Alice", gotNodes[0].Name)
	}
	if len(gotEdges) != 0 {
		t.Errorf("applySchema() kept %d edges, want 0 after dropping an endpoint", len(gotEdges))
	}
}

func TestApplySchemaFiltersRelationLabels(t *testing.T) {
	schema := Schema{
		EntityLabels:   []string{"PERSON", "ORGANIZATION"},
		RelationLabels: []string{"WORKS_FOR"},
		CoerceLabels:   true,
	}
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice", Label: "PERSON"},
		{ID: "n2", Name: "Meridian Labs", Label: "ORGANIZATION"},
	}
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Meridian Labs", Label: "WORKS_FOR"},
		{ID: "e2", Source: "Alice", Target: "Meridian Labs", Label: "FOUNDED"},
	}

	_, gotEdges := applySchema(schema, nodes, edges)

	if len(gotEdges) != 1 {
		t.Fatalf("applySchema() kept %d edges, want 1", len(gotEdges))
	}
	if gotEdges[0].Label != "WORKS_FOR" {
		t.Errorf("kept edge label = %q, want WORKS_FOR", gotEdges[0].Label)
	}
}

func TestApplySchemaFiltersTriples(t *testing.T) {
	schema := Schema{
		EntityLabels:   []string{"PERSON", "ORGANIZATION", "LOCATION"},
		RelationLabels: []string{"WORKS_FOR", "LOCATED_IN"},
		Triples: [][3]string{
			{"PERSON", "WORKS_FOR", "ORGANIZATION"},
			{"ORGANIZATION", "LOCATED_IN", "LOCATION"},
		},
		CoerceLabels: true,
	}
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice", Label: "PERSON"},
		{ID: "n2", Name: "Meridian Labs", Label: "ORGANIZATION"},
		{ID: "n3", Name: "Porto", Label: "LOCATION"},
	}
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Meridian Labs", Label: "WORKS_FOR"},
		{ID: "e2", Source: "Porto", Target: "Meridian Labs", Label: "LOCATED_IN"},
	}

	_, gotEdges := applySchema(schema, nodes, edges)

	if len(gotEdges) != 1 {
		t.Fatalf("applySchema() kept %d edges, want 1", len(gotEdges))
	}
	if gotEdges[0].ID != "e1" {
		t.Errorf("kept edge = %q, want e1 with a permitted triple", gotEdges[0].ID)
	}
}

func TestApplySchemaWithoutLabelsKeepsEverything(t *testing.T) {
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice", Label: "ASTRONAUT"},
	}
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Alice", Label: "SELF"},
	}

	gotNodes, gotEdges := applySchema(Schema{}, nodes, edges)

	if len(gotNodes) != 1 || len(gotEdges) != 1 {
		t.Fatalf("applySchema() with empty schema kept %d nodes and %d edges, want 1 and 1", len(gotNodes), len(gotEdges))
	}
	if gotNodes[0].Label != "ASTRONAUT" {
		t.Errorf("node label = %q, want untouched ASTRONAUT", gotNodes[0].Label)
	}
}
