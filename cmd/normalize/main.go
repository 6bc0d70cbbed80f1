package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"studybuddy/internal/classroom"
	"studybuddy/internal/config"
	"studybuddy/internal/database"
	"studybuddy/internal/logger"
)

func main() {
	// Parse command line flags
	dumpPath := flag.String("dump", "classroom_dump.json", "Path to classroom dump JSON")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	pgConnString := flag.String("pg", "", "PostgreSQL connection string (overrides config)")
	flag.Parse()

	if _, err := os.Stat(*dumpPath); os.IsNotExist(err) {
		log.Fatalf("Dump file does not exist: %s", *dumpPath)
	}

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

	data, err := os.ReadFile(*dumpPath)
	if err != nil {
		log.Fatalf("Failed to read dump: %v", err)
	}

	var dump classroom.Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		log.Fatalf("Failed to parse dump: %v", err)
	}
	logr.Infow("dump loaded", "courses", len(dump))

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

	stats, err := classroom.NewNormalizer(db, logr).Import(ctx, dump)
	if err != nil {
		logr.Fatalw("import failed", "error", err,
			"courses", stats.Courses, "documents", stats.Documents, "assessments", stats.Assessments)
	}

	logr.Infow("normalization complete",
		"courses", stats.Courses,
		"documents", stats.Documents,
		"assessments", stats.Assessments)
}
