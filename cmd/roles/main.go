package main

import (
	"context"
	"flag"
	"log"

	"studybuddy/internal/config"
	"studybuddy/internal/database"
	"studybuddy/internal/llm"
	"studybuddy/internal/logger"
	"studybuddy/internal/models"
	"studybuddy/internal/roles"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to config file")
	pgConnString := flag.String("pg", "", "PostgreSQL connection string (overrides config)")
	ollamaHost := flag.String("ollama", "", "Ollama host (default uses OLLAMA_HOST env var)")
	roleModel := flag.String("model", "", "Ollama model for role inference (overrides config)")
	heuristicsOnly := flag.Bool("heuristics-only", false, "Skip the LLM fallback, rely on filename keywords alone")
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
	if *roleModel != "" {
		cfg.Ollama.RoleModel = *roleModel
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

	var generator roles.Generator
	if !*heuristicsOnly {
		llmClient, err := llm.NewOllamaLLM(cfg.Ollama.Host, cfg.Ollama.RoleModel)
		if err != nil {
			log.Fatalf("Failed to create LLM client: %v", err)
		}
		generator = llmClient
	}
	classifier := roles.NewClassifier(generator)

	docs, err := db.ParsedDocuments(ctx)
	if err != nil {
		logr.Fatalw("failed to load documents", "error", err)
	}
	logr.Infow("documents to classify", "count", len(docs))

	updated := 0
	for _, doc := range docs {
		role, err := classifier.Classify(ctx, doc)
		if err != nil {
			// Keep going; an unknown role still gets stored
			logr.Warnw("classification fell back to unknown", "document", doc.ID, "error", err)
			role = models.RoleUnknown
		}

		if err := db.UpdateRole(ctx, doc.ID, role); err != nil {
			logr.Errorw("failed to update role", "document", doc.ID, "error", err)
			continue
		}

		logr.Infow("role assigned", "document", doc.ID, "title", doc.Title, "role", role)
		updated++
	}

	logr.Infow("role inference complete", "updated", updated, "total", len(docs))
}
