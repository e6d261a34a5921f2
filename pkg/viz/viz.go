// Package viz renders a knowledge graph as a standalone interactive HTML
// file with a force-directed layout. The node and edge sets are a pure
// function of the graph; only the physics layout varies between renders.
package viz

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/OFFIS-RIT/trellis/pkg/common"
	"github.com/OFFIS-RIT/trellis/pkg/logger"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	minSymbolSize = 10
	maxSymbolSize = 40
)

// Export writes the graph as a self-contained HTML file at path, creating
// parent directories as needed.
func Export(graph *common.Graph, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create visualization file '%s': %w", path, err)
	}
	defer file.Close()

	if err := Render(graph, file); err != nil {
		return err
	}

	logger.Info("[Viz] Graph exported",
		"strategy", graph.Strategy,
		"path", path,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges))
	return nil
}

// Render writes the chart HTML to w. Every node of the graph becomes
// exactly one chart node and every edge exactly one chart link; nodes are
// grouped into categories by entity label.
func Render(graph *common.Graph, w io.Writer) error {
	if graph == nil {
		return fmt.Errorf("cannot render a nil graph")
	}

	categories, categoryIndex := buildCategories(graph.Nodes)
	degree := nodeDegrees(graph)

	nameByID := make(map[string]string, len(graph.Nodes))
	nodes := make([]opts.GraphNode, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		nameByID[node.ID] = node.Name
		nodes = append(nodes, opts.GraphNode{
			Name:       node.Name,
			Category:   categoryIndex[node.Label],
			SymbolSize: symbolSize(degree[node.ID]),
			Value:      float32(degree[node.ID]),
		})
	}

	links := make([]opts.GraphLink, 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		source, ok := nameByID[edge.Source]
		if !ok {
			source = edge.Source
		}
		target, ok := nameByID[edge.Target]
		if !ok {
			target = edge.Target
		}
		links = append(links, opts.GraphLink{
			Source: source,
			Target: target,
			Value:  float32(edge.Strength),
			Label: &opts.EdgeLabel{
				Show:      opts.Bool(false),
				Formatter: edge.Label,
			},
		})
	}

	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("Knowledge Graph (%s)", graph.Strategy),
			Width:     "1400px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Knowledge Graph (%s)", graph.Strategy),
			Subtitle: fmt.Sprintf("%d nodes, %d edges", len(graph.Nodes), len(graph.Edges)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	chart.AddSeries("graph", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:             "force",
			Force:              &opts.GraphForce{Repulsion: 400, EdgeLength: 60},
			Roam:               opts.Bool(true),
			Draggable:          opts.Bool(true),
			FocusNodeAdjacency: opts.Bool(true),
			Categories:         categories,
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render graph chart: %w", err)
	}
	return nil
}

// buildCategories groups nodes by entity label in sorted order so the
// legend is stable across runs.
func buildCategories(nodes []*common.Node) ([]*opts.GraphCategory, map[string]int) {
	labels := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		labels[node.Label] = true
	}

	sorted := make([]string, 0, len(labels))
	for label := range labels {
		sorted = append(sorted, label)
	}
	sort.Strings(sorted)

	categories := make([]*opts.GraphCategory, 0, len(sorted))
	index := make(map[string]int, len(sorted))
	for i, label := range sorted {
		index[label] = i
		categories = append(categories, &opts.GraphCategory{Name: label})
	}
	return categories, index
}

func nodeDegrees(graph *common.Graph) map[string]int {
	degree := make(map[string]int, len(graph.Nodes))
	for _, edge := range graph.Edges {
		degree[edge.Source]++
		degree[edge.Target]++
	}
	return degree
}

func symbolSize(degree int) int {
	size := minSymbolSize + degree*3
	if size > maxSymbolSize {
		return maxSymbolSize
	}
	return size
}
