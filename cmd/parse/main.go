package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"studybuddy/internal/config"
	"studybuddy/internal/database"
	"studybuddy/internal/logger"
	"studybuddy/internal/processor"
)

func main() {
	// Parse command line flags
	filesDir := flag.String("files", "files", "Directory of locally mirrored drive files, named <drive_file_id>.pdf")
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

	docs, err := db.UnparsedDocuments(ctx)
	if err != nil {
		logr.Fatalw("failed to load unparsed documents", "error", err)
	}
	logr.Infow("unparsed documents found", "count", len(docs))

	pdfProcessor := processor.NewPDFProcessor()
	parsed := 0
	skipped := 0

	for _, doc := range docs {
		if doc.FileType != "pdf" {
			// DOCX/PPTX extraction happens elsewhere
			logr.Debugw("unsupported file type, skipping", "document", doc.ID, "file_type", doc.FileType)
			skipped++
			continue
		}

		path := filepath.Join(*filesDir, doc.DriveFileID+".pdf")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logr.Warnw("file not mirrored locally, skipping", "document", doc.ID, "path", path)
			skipped++
			continue
		}

		text, err := pdfProcessor.ExtractDocumentText(path)
		if err != nil {
			logr.Errorw("failed to extract text", "document", doc.ID, "error", err)
			skipped++
			continue
		}
		if strings.TrimSpace(text) == "" {
			logr.Warnw("no text extracted, skipping", "document", doc.ID)
			skipped++
			continue
		}

		if err := db.MarkParsed(ctx, doc.ID, text); err != nil {
			logr.Errorw("failed to store extracted text", "document", doc.ID, "error", err)
			skipped++
			continue
		}

		logr.Infow("document parsed", "document", doc.ID, "title", doc.Title, "chars", len(text))
		parsed++
	}

	logr.Infow("parsing complete", "parsed", parsed, "skipped", skipped)
}
