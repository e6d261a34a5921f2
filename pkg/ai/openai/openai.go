package openai

import (
	"sync"

	"github.com/OFFIS-RIT/trellis/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultEmbeddingDimensions is the native vector width of the default
// embedding model. Callers that persist vectors should size their storage
// with this value when no explicit width is configured.
const DefaultEmbeddingDimensions = 1536

// GraphOpenAIClient implements the ai.GraphAIClient interface against an
// OpenAI-compatible chat completions API. It uses one chat model for
// extraction and answer generation and one embedding model for vectors.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	model          string
	embeddingModel string
	dimensions     int

	baseURL string
	apiKey  string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *openai.Client
}

// NewGraphOpenAIClientParams defines the configuration parameters for creating
// a new GraphOpenAIClient.
//
// Model specifies the chat model used for extraction and answering.
// EmbeddingModel specifies the model used for embeddings.
// BaseURL and ApiKey configure the API endpoint; an empty BaseURL targets
// the official OpenAI endpoint.
// EmbeddingDimensions pins the vector width; embeddings are padded or
// truncated to it so all stored vectors share one dimension.
type NewGraphOpenAIClientParams struct {
	Model          string
	EmbeddingModel string

	BaseURL string
	ApiKey  string

	EmbeddingDimensions int
}

// NewGraphOpenAIClient creates and returns a new GraphOpenAIClient configured
// with the provided parameters.
//
// Example:
//
//	client := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
//		Model:          "gpt-4o-mini",
//		EmbeddingModel: "text-embedding-3-small",
//		ApiKey:         os.Getenv("OPENAI_API_KEY"),
//	})
func NewGraphOpenAIClient(
	params NewGraphOpenAIClientParams,
) *GraphOpenAIClient {
	dimensions := params.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}

	return &GraphOpenAIClient{
		model:          params.Model,
		embeddingModel: params.EmbeddingModel,
		dimensions:     dimensions,

		baseURL: params.BaseURL,
		apiKey:  params.ApiKey,

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		Client: newOpenaiClient(params.BaseURL, params.ApiKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
