package config

import (
	"fmt"
	"os"

	"github.com/OFFIS-RIT/trellis/internal/util"

	"github.com/pelletier/go-toml/v2"
)

// LLMConfig selects the model provider and the models used for extraction,
// answering, and embeddings. APIKey can be left empty and provided through
// the OPENAI_API_KEY environment variable instead; when both are set, the
// environment wins. EmbeddingDimensions pins the stored vector width and
// defaults to the provider's native width when zero.
type LLMConfig struct {
	Provider            string  `toml:"provider"`
	Model               string  `toml:"model"`
	EmbeddingModel      string  `toml:"embedding_model"`
	APIKey              string  `toml:"api_key"`
	BaseURL             string  `toml:"base_url"`
	Temperature         float64 `toml:"temperature"`
	EmbeddingDimensions int     `toml:"embedding_dimensions"`
}

// ExtractConfig tunes the chunking and extraction stage. An empty
// EntityLabels list means the built-in label set. ParallelRequests caps
// how many chunk extractions run against the model at once.
type ExtractConfig struct {
	ChunkTokens      int      `toml:"chunk_tokens"`
	ParallelRequests int      `toml:"parallel_requests"`
	EntityLabels     []string `toml:"entity_labels"`
}

// RetrievalConfig tunes the query stage.
type RetrievalConfig struct {
	PathDepth         int  `toml:"path_depth"`
	MaxKeywords       int  `toml:"max_keywords"`
	IncludeSourceText bool `toml:"include_source_text"`
}

// Config is the full TOML configuration for a build or query run.
type Config struct {
	InputDir   string `toml:"input_dir"`
	StorageDir string `toml:"storage_dir"`
	OutputDir  string `toml:"output_dir"`

	LLM       LLMConfig       `toml:"llm"`
	Extract   ExtractConfig   `toml:"extract"`
	Retrieval RetrievalConfig `toml:"retrieval"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{
		InputDir:   "./data",
		StorageDir: "./storage",
		OutputDir:  "./out",
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4.1-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.2,
		},
		Extract: ExtractConfig{
			ChunkTokens:      600,
			ParallelRequests: 1,
		},
		Retrieval: RetrievalConfig{
			PathDepth:         2,
			MaxKeywords:       10,
			IncludeSourceText: true,
		},
	}
	applyEnv(cfg)
	return cfg
}

// Load reads a TOML config file. Keys that are absent from the file keep
// their defaults, so a minimal config only has to name what it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with their environment counterparts.
func applyEnv(cfg *Config) {
	if cfg.LLM.Provider != "ollama" {
		if key := util.GetEnv("OPENAI_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
	}
}

// Validate checks the ranges the pipeline depends on.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	switch c.LLM.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	if c.LLM.EmbeddingModel == "" {
		return fmt.Errorf("llm.embedding_model must not be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.EmbeddingDimensions < 0 {
		return fmt.Errorf("llm.embedding_dimensions must not be negative, got %d", c.LLM.EmbeddingDimensions)
	}

	if c.Extract.ChunkTokens < 1 {
		return fmt.Errorf("extract.chunk_tokens must be at least 1, got %d", c.Extract.ChunkTokens)
	}
	if c.Extract.ParallelRequests < 1 {
		return fmt.Errorf("extract.parallel_requests must be at least 1, got %d", c.Extract.ParallelRequests)
	}

	if c.Retrieval.PathDepth < 1 {
		return fmt.Errorf("retrieval.path_depth must be at least 1, got %d", c.Retrieval.PathDepth)
	}
	if c.Retrieval.MaxKeywords < 1 {
		return fmt.Errorf("retrieval.max_keywords must be at least 1, got %d", c.Retrieval.MaxKeywords)
	}

	return nil
}
