package graph

const (
	defaultTokenEncoder     = "o200k_base"
	defaultChunkTokens      = 600
	defaultParallelRequests = 1
)

// GraphClient builds knowledge graphs from document corpora. It manages
// token encoding, chunk sizing, and concurrent extraction requests.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	tokenEncoder     string
	chunkTokens      int
	parallelRequests int
	temperature      float64
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// TokenEncoder names the tiktoken encoding used to measure chunk sizes.
// ChunkTokens caps the token count of a single chunk.
// ParallelRequests controls how many extraction requests run concurrently.
// Temperature overrides the model's sampling temperature for extraction
// calls when greater than zero.
type NewGraphClientParams struct {
	TokenEncoder     string
	ChunkTokens      int
	ParallelRequests int
	Temperature      float64
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters. Zero values fall back to defaults: the
// o200k_base encoding, 600 tokens per chunk, and sequential extraction.
//
// Example:
//
//	client := graph.NewGraphClient(graph.NewGraphClientParams{
//		ChunkTokens:      600,
//		ParallelRequests: 4,
//	})
func NewGraphClient(params NewGraphClientParams) *GraphClient {
	g := &GraphClient{
		tokenEncoder:     params.TokenEncoder,
		chunkTokens:      params.ChunkTokens,
		parallelRequests: params.ParallelRequests,
		temperature:      params.Temperature,
	}
	if g.tokenEncoder == "" {
		g.tokenEncoder = defaultTokenEncoder
	}
	if g.chunkTokens <= 0 {
		g.chunkTokens = defaultChunkTokens
	}
	if g.parallelRequests <= 0 {
		g.parallelRequests = defaultParallelRequests
	}

	return g
}
