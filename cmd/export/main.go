package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"studybuddy/internal/config"
	"studybuddy/internal/database"
	"studybuddy/internal/logger"
)

// exportedChunk is the JSON shape downstream notebooks consume.
type exportedChunk struct {
	ChunkID    string `json:"chunk_id"`
	CourseID   string `json:"course_id"`
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

func main() {
	// Parse command line flags
	outPath := flag.String("out", "exported_chunks.json", "Output JSON path")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	pgConnString := flag.String("pg", "", "PostgreSQL connection string (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *pgConnString != "" {
		cfg.Database.URL = *pgConnString
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

	chunks, err := db.AllChunks(ctx)
	if err != nil {
		logr.Fatalw("failed to load chunks", "error", err)
	}
	logr.Infow("exporting chunks", "count", len(chunks))

	exported := make([]exportedChunk, len(chunks))
	for i, c := range chunks {
		exported[i] = exportedChunk{
			ChunkID:    c.ID,
			CourseID:   c.CourseID,
			DocumentID: c.DocumentID,
			ChunkIndex: c.Index,
			Text:       c.Text,
		}
	}

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		logr.Fatalw("failed to marshal chunks", "error", err)
	}

	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logr.Fatalw("failed to write output", "path", *outPath, "error", err)
	}

	logr.Infow("export complete", "path", *outPath)
}
