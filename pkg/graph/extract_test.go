package graph

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/OFFIS-RIT/trellis/pkg/ai"
	"github.com/OFFIS-RIT/trellis/pkg/common"
)

// fakeAIClient answers structured extraction calls with canned JSON. When
// payloadFor is set it picks the payload per prompt, otherwise payload is
// used for every call.
type fakeAIClient struct {
	payload    string
	payloadFor func(prompt string) (string, error)

	mu            sync.Mutex
	calls         int
	systemPrompts []string
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("fakeAIClient: GenerateCompletion not supported")
}

func (f *fakeAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	options := &ai.GenerateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	f.mu.Lock()
	f.calls++
	f.systemPrompts = options.SystemPrompts
	f.mu.Unlock()

	payload := f.payload
	if f.payloadFor != nil {
		var err error
		payload, err = f.payloadFor(prompt)
		if err != nil {
			return err
		}
	}

	return json.Unmarshal([]byte(payload), out)
}

func (f *fakeAIClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("fakeAIClient: GenerateChat not supported")
}

func (f *fakeAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, errors.New("fakeAIClient: GenerateEmbedding not supported")
}

func (f *fakeAIClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	return nil, errors.New("fakeAIClient: GenerateEmbeddings not supported")
}

func (f *fakeAIClient) ResetMetrics() {}

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics {
	return ai.ModelMetrics{}
}

func (f *fakeAIClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAIClient) lastSystemPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.systemPrompts) == 0 {
		return ""
	}
	return f.systemPrompts[0]
}

func testChunk(text string) *common.Chunk {
	return &common.Chunk{
		ID:     "chunk-1",
		FileID: "file-1",
		Path:   "docs/report.txt",
		Page:   0,
		Start:  0,
		End:    1,
		Text:   text,
	}
}

func TestExtractFromChunkBuildsNodesAndEdges(t *testing.T) {
	client := &fakeAIClient{payload: `{
		"entities": [
			{"entity_name": "ALICE WEBER", "entity_type": "person", "entity_description": "Heads the sensor division."},
			{"entity_name": "MERIDIAN LABS", "entity_type": "ORGANIZATION", "entity_description": "A research company."},
			{"entity_name": "", "entity_type": "PERSON", "entity_description": "No name, should be dropped."}
		],
		"relationships": [
			{"source_entity": "alice weber", "target_entity": "Meridian Labs", "relationship_type": "works_for", "relationship_description": "Alice heads a division of Meridian Labs.", "relationship_strength": 0.9},
			{"source_entity": "ALICE WEBER", "target_entity": "UNKNOWN CORP", "relationship_type": "WORKS_FOR", "relationship_description": "Dangling target.", "relationship_strength": 0.5}
		]
	}`}

	nodes, edges, err := extractFromChunk(context.Background(), client, testChunk("Alice Weber heads the sensor division at Meridian Labs."), common.StrategyFree, Schema{})
	if err != nil {
		t.Fatalf("extractFromChunk() error = %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("extractFromChunk() returned %d nodes, want 2", len(nodes))
	}
	for i, node := range nodes {
		if node.ID == "" {
			t.Errorf("node[%d].ID is empty", i)
		}
		if len(node.ChunkIDs) != 1 || node.ChunkIDs[0] != "chunk-1" {
			t.Errorf("node[%d].ChunkIDs = %v, want [chunk-1]", i, node.ChunkIDs)
		}
	}
	if nodes[0].Label != "PERSON" {
		t.Errorf("node label = %q, want uppercased PERSON", nodes[0].Label)
	}

	if len(edges) != 1 {
		t.Fatalf("extractFromChunk() returned %d edges, want 1 after dropping the dangling relationship", len(edges))
	}
	edge := edges[0]
	if edge.Source != "ALICE WEBER" || edge.Target != "MERIDIAN LABS" {
		t.Errorf("edge endpoints = (%q, %q), want entity names resolved case-insensitively", edge.Source, edge.Target)
	}
	if edge.Label != "WORKS_FOR" {
		t.Errorf("edge label = %q, want uppercased WORKS_FOR", edge.Label)
	}
	if edge.Inferred {
		t.Error("edge from a non-implicit strategy must not be inferred")
	}
}

func TestExtractFromChunkClampsStrength(t *testing.T) {
	client := &fakeAIClient{payload: `{
		"entities": [
			{"entity_name": "A", "entity_type": "CONCEPT", "entity_description": "a"},
			{"entity_name": "B", "entity_type": "CONCEPT", "entity_description": "b"}
		],
		"relationships": [
			{"source_entity": "A", "target_entity": "B", "relationship_type": "RELATED_TO", "relationship_description": "x", "relationship_strength": 8.5}
		]
	}`}

	_, edges, err := extractFromChunk(context.Background(), client, testChunk("A relates to B."), common.StrategyFree, Schema{})
	if err != nil {
		t.Fatalf("extractFromChunk() error = %v", err)
	}

	if len(edges) != 1 {
		t.Fatalf("extractFromChunk() returned %d edges, want 1", len(edges))
	}
	if edges[0].Strength != 1.0 {
		t.Errorf("edge strength = %v, want clamped 1.0", edges[0].Strength)
	}
}

func TestExtractFromChunkImplicitMarksInferred(t *testing.T) {
	client := &fakeAIClient{payload: `{
		"entities": [
			{"entity_name": "MARTA REYES", "entity_type": "PERSON", "entity_description": "Founder."},
			{"entity_name": "PORTO", "entity_type": "LOCATION", "entity_description": "A city."}
		],
		"relationships": [
			{"source_entity": "MARTA REYES", "target_entity": "PORTO", "relationship_type": "LIVES_IN", "relationship_description": "Her garage is in Porto.", "relationship_strength": 0.6, "inferred": true}
		]
	}`}

	_, edges, err := extractFromChunk(context.Background(), client, testChunk("Marta Reyes founded Helix Robotics in Porto."), common.StrategyImplicit, Schema{})
	if err != nil {
		t.Fatalf("extractFromChunk() error = %v", err)
	}

	if len(edges) != 1 {
		t.Fatalf("extractFromChunk() returned %d edges, want 1", len(edges))
	}
	if !edges[0].Inferred {
		t.Error("implicit extraction lost the inferred marker")
	}
}

func TestExtractFromChunkSchemaCoercesLabels(t *testing.T) {
	client := &fakeAIClient{payload: `{
		"entities": [
			{"entity_name": "ALICE", "entity_type": "PERSON", "entity_description": "a"},
			{"entity_name": "WARP CORE", "entity_type": "SPACESHIP_PART", "entity_description": "b"}
		],
		"relationships": []
	}`}

	schema := Schema{EntityLabels: []string{"PERSON"}, CoerceLabels: true}

	nodes, _, err := extractFromChunk(context.Background(), client, testChunk("Alice inspects the warp core."), common.StrategySchema, schema)
	if err != nil {
		t.Fatalf("extractFromChunk() error = %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("extractFromChunk() returned %d nodes, want 2", len(nodes))
	}
	if nodes[1].Label != FallbackLabel {
		t.Errorf("out-of-schema node label = %q, want %q", nodes[1].Label, FallbackLabel)
	}
}

func TestExtractFromChunkUnknownStrategy(t *testing.T) {
	client := &fakeAIClient{payload: `{"entities": [], "relationships": []}`}

	_, _, err := extractFromChunk(context.Background(), client, testChunk("text"), common.Strategy("hybrid"), Schema{})
	if !errors.Is(err, common.ErrStrategyUnknown) {
		t.Fatalf("extractFromChunk() error = %v, want ErrStrategyUnknown", err)
	}
	if client.callCount() != 0 {
		t.Errorf("extractFromChunk() made %d model calls for an unknown strategy, want 0", client.callCount())
	}
}

func TestExtractionPromptCarriesLabels(t *testing.T) {
	schema := Schema{
		EntityLabels:   []string{"SHIP", "HARBOR"},
		RelationLabels: []string{"DOCKED_AT"},
	}

	tests := []struct {
		name         string
		strategy     common.Strategy
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "schema lists entity and relation labels",
			strategy:     common.StrategySchema,
			wantContains: []string{"SHIP, HARBOR", "DOCKED_AT", "report.txt"},
		},
		{
			name:         "dynamic lists seed labels",
			strategy:     common.StrategyDynamic,
			wantContains: []string{"SHIP, HARBOR", "report.txt"},
		},
		{
			name:         "implicit lists seed labels",
			strategy:     common.StrategyImplicit,
			wantContains: []string{"SHIP, HARBOR", "report.txt", "inferred"},
		},
		{
			name:         "free carries no labels",
			strategy:     common.StrategyFree,
			wantContains: []string{"report.txt"},
			wantAbsent:   []string{"SHIP, HARBOR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractionPrompt(tt.strategy, schema, "report.txt")
			if err != nil {
				t.Fatalf("extractionPrompt() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("extractionPrompt(%s) does not contain %q", tt.strategy, want)
				}
			}
			for _, unwanted := range tt.wantAbsent {
				if strings.Contains(got, unwanted) {
					t.Errorf("extractionPrompt(%s) unexpectedly contains %q", tt.strategy, unwanted)
				}
			}
		})
	}
}
