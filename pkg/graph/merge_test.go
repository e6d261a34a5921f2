package graph

import (
	"math"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/trellis/pkg/common"
)

func TestMergeNodesCaseInsensitive(t *testing.T) {
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice Weber", Label: "PERSON", Description: "Works at the lab.", ChunkIDs: []string{"c1"}},
	}
	newNodes := []*common.Node{
		{ID: "n2", Name: "ALICE WEBER", Label: "RESEARCHER", Description: "Leads the sensor team.", ChunkIDs: []string{"c2"}},
	}

	got := mergeNodes(nodes, newNodes)

	if len(got) != 1 {
		t.Fatalf("mergeNodes() returned %d nodes, want 1", len(got))
	}

	node := got[0]
	if node.ID != "n1" {
		t.Errorf("merged node ID = %q, want %q", node.ID, "n1")
	}
	if node.Name != "Alice Weber" {
		t.Errorf("merged node Name = %q, want first occurrence %q", node.Name, "Alice Weber")
	}
	if node.Label != "PERSON" {
		t.Errorf("merged node Label = %q, want first occurrence %q", node.Label, "PERSON")
	}
	if node.Description != "Works at the lab.\nLeads the sensor team." {
		t.Errorf("merged node Description = %q, want concatenated descriptions", node.Description)
	}
	if !reflect.DeepEqual(node.ChunkIDs, []string{"c1", "c2"}) {
		t.Errorf("merged node ChunkIDs = %v, want [c1 c2]", node.ChunkIDs)
	}
}

func TestMergeNodesBackfillsEmptyLabel(t *testing.T) {
	nodes := []*common.Node{
		{ID: "n1", Name: "Meridian Labs", Label: "", ChunkIDs: []string{"c1"}},
	}
	newNodes := []*common.Node{
		{ID: "n2", Name: "MERIDIAN LABS", Label: "ORGANIZATION", ChunkIDs: []string{"c2"}},
	}

	got := mergeNodes(nodes, newNodes)

	if len(got) != 1 {
		t.Fatalf("mergeNodes() returned %d nodes, want 1", len(got))
	}
	if got[0].Label != "ORGANIZATION" {
		t.Errorf("merged node Label = %q, want backfilled %q", got[0].Label, "ORGANIZATION")
	}
}

func TestMergeNodesSkipsRepeatedDescription(t *testing.T) {
	nodes := []*common.Node{
		{ID: "n1", Name: "Porto", Label: "LOCATION", Description: "A city in Portugal.", ChunkIDs: []string{"c1"}},
	}
	newNodes := []*common.Node{
		{ID: "n2", Name: "Porto", Label: "LOCATION", Description: "A city in Portugal.", ChunkIDs: []string{"c2"}},
	}

	got := mergeNodes(nodes, newNodes)

	if len(got) != 1 {
		t.Fatalf("mergeNodes() returned %d nodes, want 1", len(got))
	}
	if got[0].Description != "A city in Portugal." {
		t.Errorf("merged node Description = %q, want unrepeated description", got[0].Description)
	}
}

func TestMergeNodesKeepsDistinctNames(t *testing.T) {
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice", ChunkIDs: []string{"c1"}},
	}
	newNodes := []*common.Node{
		{ID: "n2", Name: "Bob", ChunkIDs: []string{"c1"}},
	}

	got := mergeNodes(nodes, newNodes)

	if len(got) != 2 {
		t.Fatalf("mergeNodes() returned %d nodes, want 2", len(got))
	}
}

func TestMergeEdgesAveragesStrength(t *testing.T) {
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Meridian Labs", Label: "WORKS_FOR", Strength: 0.8, ChunkIDs: []string{"c1"}},
	}
	newEdges := []*common.Edge{
		{ID: "e2", Source: "ALICE", Target: "MERIDIAN LABS", Label: "WORKS_FOR", Strength: 0.4, ChunkIDs: []string{"c2"}},
	}

	got := mergeEdges(edges, newEdges)

	if len(got) != 1 {
		t.Fatalf("mergeEdges() returned %d edges, want 1", len(got))
	}

	edge := got[0]
	if edge.ID != "e1" {
		t.Errorf("merged edge ID = %q, want %q", edge.ID, "e1")
	}
	if math.Abs(edge.Strength-0.6) > 1e-9 {
		t.Errorf("merged edge Strength = %v, want 0.6", edge.Strength)
	}
	if !reflect.DeepEqual(edge.ChunkIDs, []string{"c1", "c2"}) {
		t.Errorf("merged edge ChunkIDs = %v, want [c1 c2]", edge.ChunkIDs)
	}
}

func TestMergeEdgesKeepsDirection(t *testing.T) {
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Bob", Label: "MANAGES", Strength: 0.9, ChunkIDs: []string{"c1"}},
	}
	newEdges := []*common.Edge{
		{ID: "e2", Source: "Bob", Target: "Alice", Label: "MANAGES", Strength: 0.9, ChunkIDs: []string{"c1"}},
	}

	got := mergeEdges(edges, newEdges)

	if len(got) != 2 {
		t.Fatalf("mergeEdges() returned %d edges, want 2 for opposite directions", len(got))
	}
}

func TestMergeEdgesKeepsDistinctLabels(t *testing.T) {
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Meridian Labs", Label: "WORKS_FOR", ChunkIDs: []string{"c1"}},
	}
	newEdges := []*common.Edge{
		{ID: "e2", Source: "Alice", Target: "Meridian Labs", Label: "FOUNDED", ChunkIDs: []string{"c1"}},
	}

	got := mergeEdges(edges, newEdges)

	if len(got) != 2 {
		t.Fatalf("mergeEdges() returned %d edges, want 2 for distinct labels", len(got))
	}
}

func TestMergeEdgesExplicitClearsInferred(t *testing.T) {
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Porto", Label: "LIVES_IN", Inferred: true, ChunkIDs: []string{"c1"}},
	}
	newEdges := []*common.Edge{
		{ID: "e2", Source: "Alice", Target: "Porto", Label: "LIVES_IN", Inferred: false, ChunkIDs: []string{"c2"}},
	}

	got := mergeEdges(edges, newEdges)

	if len(got) != 1 {
		t.Fatalf("mergeEdges() returned %d edges, want 1", len(got))
	}
	if got[0].Inferred {
		t.Error("merged edge stayed inferred although one occurrence was stated")
	}
}

func TestMergeEdgesStaysInferred(t *testing.T) {
	edges := []*common.Edge{
		{ID: "e1", Source: "Alice", Target: "Porto", Label: "LIVES_IN", Inferred: true, ChunkIDs: []string{"c1"}},
	}
	newEdges := []*common.Edge{
		{ID: "e2", Source: "Alice", Target: "Porto", Label: "LIVES_IN", Inferred: true, ChunkIDs: []string{"c2"}},
	}

	got := mergeEdges(edges, newEdges)

	if len(got) != 1 {
		t.Fatalf("mergeEdges() returned %d edges, want 1", len(got))
	}
	if !got[0].Inferred {
		t.Error("merged edge lost its inferred marker although every occurrence was inferred")
	}
}

func TestResolveEdges(t *testing.T) {
	nodes := []*common.Node{
		{ID: "n1", Name: "Alice"},
		{ID: "n2", Name: "Bob"},
	}
	edges := []*common.Edge{
		{ID: "e1", Source: "ALICE", Target: "bob", Label: "KNOWS"},
		{ID: "e2", Source: "Alice", Target: "Carol", Label: "KNOWS"},
	}

	got := resolveEdges(nodes, edges)

	if len(got) != 1 {
		t.Fatalf("resolveEdges() returned %d edges, want 1", len(got))
	}
	if got[0].Source != "n1" || got[0].Target != "n2" {
		t.Errorf("resolved edge endpoints = (%q, %q), want (n1, n2)", got[0].Source, got[0].Target)
	}
}
