// Command trellis builds knowledge graphs from a document corpus and
// answers questions against them.
//
//	trellis build [-config path] [-strategy name]
//	trellis ask   [-config path] [-strategy name] [question...]
//
// build ingests the corpus, runs every requested extraction strategy,
// persists each graph to its own storage directory, and exports one HTML
// visualization per strategy. ask loads one persisted graph and answers
// questions; without a question argument it reads them interactively.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/trellis/internal/config"
	"github.com/OFFIS-RIT/trellis/internal/timing"
	"github.com/OFFIS-RIT/trellis/internal/util"
	"github.com/OFFIS-RIT/trellis/pkg/ai"
	oai "github.com/OFFIS-RIT/trellis/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/trellis/pkg/ai/openai"
	"github.com/OFFIS-RIT/trellis/pkg/common"
	"github.com/OFFIS-RIT/trellis/pkg/graph"
	"github.com/OFFIS-RIT/trellis/pkg/loader"
	"github.com/OFFIS-RIT/trellis/pkg/logger"
	"github.com/OFFIS-RIT/trellis/pkg/logger/console"
	"github.com/OFFIS-RIT/trellis/pkg/query"
	"github.com/OFFIS-RIT/trellis/pkg/store/sqlite"
	"github.com/OFFIS-RIT/trellis/pkg/viz"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(ctx, os.Args[2:])
	case "ask":
		err = runAsk(ctx, os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Command failed", "err", err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage:
  trellis build [-config path] [-strategy name]
  trellis ask   [-config path] [-strategy name] [question...]

Strategies: schema, free, dynamic, implicit (build default: all; ask default: dynamic)
`)
}

func runBuild(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := flags.String("config", "", "path to trellis.toml")
	strategyName := flags.String("strategy", "", "single strategy to build (default: all)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	strategies := common.Strategies()
	if *strategyName != "" {
		strategy, err := common.ParseStrategy(*strategyName)
		if err != nil {
			return err
		}
		strategies = []common.Strategy{strategy}
	}

	dimensions := embeddingDimensions(cfg)
	aiClient, err := newAIClient(cfg, dimensions)
	if err != nil {
		return err
	}

	// The corpus is loaded once, before anything is written, so an empty
	// or missing input directory can never leave partial storage behind.
	stopwatch := timing.NewStopwatch()
	docs, err := loader.NewDirLoader().LoadDir(ctx, cfg.InputDir)
	if err != nil {
		return err
	}
	logger.Info("[Build] Ingestion finished", "duration_ms", stopwatch.Lap("ingest"))

	schema := graph.DefaultSchema()
	if len(cfg.Extract.EntityLabels) > 0 {
		schema.EntityLabels = cfg.Extract.EntityLabels
	}

	graphClient := graph.NewGraphClient(graph.NewGraphClientParams{
		ChunkTokens:      cfg.Extract.ChunkTokens,
		ParallelRequests: cfg.Extract.ParallelRequests,
		Temperature:      cfg.LLM.Temperature,
	})

	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info("[Build] Strategy started", "strategy", strategy)

		builtGraph, err := graphClient.BuildGraph(ctx, aiClient, graph.BuildGraphParams{
			Documents: docs,
			Strategy:  strategy,
			Schema:    schema,
		})
		if err != nil {
			return fmt.Errorf("extraction failed for strategy '%s': %w", strategy, err)
		}
		extractMs := stopwatch.Lap("extract:" + strategy.String())

		graphStore := sqlite.NewStore(sqlite.NewStoreParams{
			Dir:                 filepath.Join(cfg.StorageDir, strategy.String()),
			Embedder:            aiClient,
			EmbeddingDimensions: dimensions,
		})
		if err := graphStore.Save(ctx, builtGraph); err != nil {
			graphStore.Close()
			return fmt.Errorf("persistence failed for strategy '%s': %w", strategy, err)
		}
		graphStore.Close()
		persistMs := stopwatch.Lap("persist:" + strategy.String())

		htmlPath := filepath.Join(cfg.OutputDir, strategy.String()+".html")
		if err := viz.Export(builtGraph, htmlPath); err != nil {
			return fmt.Errorf("visualization export failed for strategy '%s': %w", strategy, err)
		}
		exportMs := stopwatch.Lap("export:" + strategy.String())

		logger.Info("[Build] Strategy finished",
			"strategy", strategy,
			"extract_ms", extractMs,
			"persist_ms", persistMs,
			"export_ms", exportMs)
		logAIMetrics(aiClient)
		aiClient.ResetMetrics()
	}

	logger.Info("[Build] Done",
		"strategies", len(strategies),
		"total_ms", stopwatch.TotalMs())
	return nil
}

func runAsk(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := flags.String("config", "", "path to trellis.toml")
	strategyName := flags.String("strategy", common.StrategyDynamic.String(), "strategy graph to query")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	strategy, err := common.ParseStrategy(*strategyName)
	if err != nil {
		return err
	}

	dimensions := embeddingDimensions(cfg)
	aiClient, err := newAIClient(cfg, dimensions)
	if err != nil {
		return err
	}

	graphStore := sqlite.NewStore(sqlite.NewStoreParams{
		Dir:                 filepath.Join(cfg.StorageDir, strategy.String()),
		Embedder:            aiClient,
		EmbeddingDimensions: dimensions,
	})
	defer graphStore.Close()

	// A failed load is fatal to the whole query session.
	loaded, err := graphStore.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("[Ask] Graph loaded",
		"strategy", loaded.Strategy,
		"nodes", len(loaded.Nodes),
		"edges", len(loaded.Edges),
		"chunks", len(loaded.Chunks))

	engine := query.NewEngine(graphStore, aiClient, query.Options{
		PathDepth:         cfg.Retrieval.PathDepth,
		MaxKeywords:       cfg.Retrieval.MaxKeywords,
		IncludeSourceText: cfg.Retrieval.IncludeSourceText,
		Temperature:       cfg.LLM.Temperature,
	})

	if question := strings.TrimSpace(strings.Join(flags.Args(), " ")); question != "" {
		return askOnce(ctx, engine, question)
	}
	return askLoop(ctx, engine)
}

func askOnce(ctx context.Context, engine *query.Engine, question string) error {
	start := time.Now()
	result, err := engine.Ask(ctx, []ai.ChatMessage{{Role: "user", Message: question}})
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	logger.Debug("[Ask] Answered", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// askLoop reads questions from stdin until EOF or interrupt. Answers stay
// in the conversation so follow-up questions can reference them.
func askLoop(ctx context.Context, engine *query.Engine) error {
	fmt.Println("Ask a question (Ctrl-D to quit):")

	var history []ai.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		history = append(history, ai.ChatMessage{Role: "user", Message: question})
		result, err := engine.Ask(ctx, history)
		if err != nil {
			return err
		}
		history = append(history, ai.ChatMessage{Role: "assistant", Message: result.Answer})

		fmt.Println(result.Answer)
		fmt.Println()
	}
}

// loadConfig reads the config at path, or falls back to trellis.toml in
// the working directory, or defaults when neither exists. An explicitly
// given path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("trellis.toml"); err == nil {
		return config.Load("trellis.toml")
	}
	return config.Default(), nil
}

// embeddingDimensions resolves the one vector width shared by the AI
// client and the store. An unset width falls back to the provider's
// native width; resolving here keeps the embedder and the vector table
// from disagreeing.
func embeddingDimensions(cfg *config.Config) int {
	if cfg.LLM.EmbeddingDimensions > 0 {
		return cfg.LLM.EmbeddingDimensions
	}
	if cfg.LLM.Provider == "ollama" {
		return oai.DefaultEmbeddingDimensions
	}
	return gai.DefaultEmbeddingDimensions
}

func newAIClient(cfg *config.Config, dimensions int) (ai.GraphAIClient, error) {
	switch cfg.LLM.Provider {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			Model:               cfg.LLM.Model,
			EmbeddingModel:      cfg.LLM.EmbeddingModel,
			BaseURL:             cfg.LLM.BaseURL,
			ApiKey:              cfg.LLM.APIKey,
			EmbeddingDimensions: dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, nil
	default:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			Model:               cfg.LLM.Model,
			EmbeddingModel:      cfg.LLM.EmbeddingModel,
			BaseURL:             cfg.LLM.BaseURL,
			ApiKey:              cfg.LLM.APIKey,
			EmbeddingDimensions: dimensions,
		}), nil
	}
}

func logAIMetrics(aiClient ai.GraphAIClient) {
	metrics := aiClient.GetMetrics()
	duration := time.Duration(metrics.DurationMs) * time.Millisecond
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60
	logger.Info(
		"AI Metrics",
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
		"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
	)
}
