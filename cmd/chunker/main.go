package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"studybuddy/internal/chunker"
	"studybuddy/internal/config"
	"studybuddy/internal/database"
	"studybuddy/internal/embedding"
	"studybuddy/internal/logger"
	"studybuddy/internal/pipeline"
	"studybuddy/internal/tokenizer"
	"studybuddy/internal/topics"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to config file")
	pgConnString := flag.String("pg", "", "PostgreSQL connection string (overrides config)")
	ollamaHost := flag.String("ollama", "", "Ollama host (default uses OLLAMA_HOST env var)")
	embeddingModel := flag.String("model", "", "Ollama model for embeddings (overrides config)")
	targetTokens := flag.Int("target-tokens", 0, "Soft token bound for closing a chunk (overrides config)")
	maxTokens := flag.Int("max-tokens", 0, "Hard token bound per chunk (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *pgConnString != "" {
		cfg.Database.URL = *pgConnString
	}
	if *ollamaHost != "" {
		cfg.Ollama.Host = *ollamaHost
	}
	if *embeddingModel != "" {
		cfg.Ollama.EmbeddingModel = *embeddingModel
	}
	if *targetTokens > 0 {
		cfg.Chunking.TargetTokens = *targetTokens
	}
	if *maxTokens > 0 {
		cfg.Chunking.MaxTokens = *maxTokens
	}

	logr, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logr.Sync()

	// Create context
	ctx := context.Background()

	// Connect to database
	db, err := database.NewDB(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize database schema
	if err := db.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	counter, err := tokenizer.NewTiktoken(cfg.Chunking.Encoding)
	if err != nil {
		log.Fatalf("Failed to load tokenizer: %v", err)
	}

	embedder, err := embedding.NewOllamaEmbedder(cfg.Ollama.Host, cfg.Ollama.EmbeddingModel)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	ch := chunker.New(counter, cfg.Chunking.TargetTokens, cfg.Chunking.MaxTokens)
	thresholds := topics.Thresholds{
		Top1:  cfg.Matching.Top1Threshold,
		Top2:  cfg.Matching.Top2Threshold,
		Delta: cfg.Matching.DeltaThreshold,
	}

	logr.Infow("starting chunking run",
		"target_tokens", cfg.Chunking.TargetTokens,
		"max_tokens", cfg.Chunking.MaxTokens,
		"encoding", cfg.Chunking.Encoding,
		"embedding_model", cfg.Ollama.EmbeddingModel)

	start := time.Now()
	summary, _, err := pipeline.New(db, embedder, ch, thresholds, logr).Run(ctx)
	if err != nil {
		logr.Fatalw("run aborted", "error", err)
	}

	logr.Infow("run complete",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"chunks", summary.Chunks,
		"associations", summary.Associations,
		"duration", time.Since(start).Round(time.Millisecond))

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
