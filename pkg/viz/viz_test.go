package viz

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/trellis/pkg/common"
)

func renderGraph() *common.Graph {
	return &common.Graph{
		Strategy: common.StrategyDynamic,
		Nodes: []*common.Node{
			{ID: "n1", Name: "Meridian Labs", Label: "ORGANIZATION"},
			{ID: "n2", Name: "Ada Okafor", Label: "PERSON"},
			{ID: "n3", Name: "Bremen", Label: "LOCATION"},
		},
		Edges: []*common.Edge{
			{ID: "e1", Source: "n2", Target: "n1", Label: "WORKS_FOR", Strength: 0.9},
			{ID: "e2", Source: "n1", Target: "n3", Label: "LOCATED_IN", Strength: 0.7},
		},
	}
}

func TestRenderNodeAndEdgeCounts(t *testing.T) {
	graph := renderGraph()

	var buf bytes.Buffer
	if err := Render(graph, &buf); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	html := buf.String()

	// Every node carries a symbolSize and every link a source; neither
	// key appears anywhere else in the rendered output.
	if got := strings.Count(html, `"symbolSize"`); got != len(graph.Nodes) {
		t.Errorf("node entry count mismatch: got %d, want %d", got, len(graph.Nodes))
	}
	if got := strings.Count(html, `"source"`); got != len(graph.Edges) {
		t.Errorf("edge entry count mismatch: got %d, want %d", got, len(graph.Edges))
	}

	for _, node := range graph.Nodes {
		if !strings.Contains(html, node.Name) {
			t.Errorf("node %q missing from output", node.Name)
		}
	}
	for _, edge := range graph.Edges {
		if !strings.Contains(html, edge.Label) {
			t.Errorf("edge label %q missing from output", edge.Label)
		}
	}
}

func TestRenderEmptyGraph(t *testing.T) {
	graph := &common.Graph{Strategy: common.StrategyFree}

	var buf bytes.Buffer
	if err := Render(graph, &buf); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if strings.Count(buf.String(), `"symbolSize"`) != 0 {
		t.Error("empty graph rendered node entries")
	}
}

func TestRenderNilGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(nil, &buf); err == nil {
		t.Fatal("expected error for nil graph")
	}
}

func TestExportWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dynamic.html")

	if err := Export(renderGraph(), path); err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("exported file unreadable: %v", err)
	}
	if !strings.Contains(string(content), "<html") {
		t.Error("exported file is not an HTML document")
	}
}

func TestRenderIsDeterministicInStructure(t *testing.T) {
	graph := renderGraph()

	var first, second bytes.Buffer
	if err := Render(graph, &first); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if err := Render(graph, &second); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	// Chart IDs are random per render; node and edge entries are not.
	for _, fragment := range []string{
		`"name":"Meridian Labs"`,
		`"name":"Ada Okafor"`,
		`"name":"Bremen"`,
		`"target":"Meridian Labs"`,
	} {
		if !strings.Contains(first.String(), fragment) {
			t.Errorf("fragment %s missing from first render", fragment)
		}
		if !strings.Contains(second.String(), fragment) {
			t.Errorf("fragment %s missing from second render", fragment)
		}
	}
}
